package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Order log statuses. An order moves new -> pending_sync -> {processed|failed};
// processed is terminal and idempotent. completed is set when the courier
// reports delivery.
const (
	StatusPendingSync = "pending_sync"
	StatusProcessed   = "processed"
	StatusFailed      = "failed"
	StatusCompleted   = "completed"
)

// SourceOrder is the typed decode of a storefront order payload.
// The webhook ingress decodes exactly once into this shape and rejects
// anything that fails validation - no wrapper-key sniffing.
type SourceOrder struct {
	ID                  int64             `json:"id" validate:"required,gt=0"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	Note                string            `json:"note"`
	Currency            string            `json:"currency" validate:"required"`
	TotalPrice          string            `json:"total_price" validate:"required"`
	FinancialStatus     string            `json:"financial_status"`
	Gateway             string            `json:"gateway"`
	PaymentGatewayNames []string          `json:"payment_gateway_names"`
	CreatedAt           time.Time         `json:"created_at"`
	Customer            *SourceCustomer   `json:"customer"`
	ShippingAddress     *SourceAddress    `json:"shipping_address"`
	BillingAddress      *SourceAddress    `json:"billing_address"`
	LineItems           []SourceLineItem  `json:"line_items" validate:"required,min=1,dive"`
}

// SourceCustomer is the buyer identity attached to a storefront order.
type SourceCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// SourceAddress is a human-entered address from the storefront.
// Address1/Address2 carry the free-form text the parser works on.
type SourceAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Note      string `json:"note"`
}

// FullName returns the display name for the address, preferring the
// pre-composed name field.
func (a *SourceAddress) FullName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// SourceLineItem is one purchasable line on a storefront order.
// Grams is the unit weight; Price is the unit price as a decimal string.
type SourceLineItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Quantity         int     `json:"quantity" validate:"required,gt=0"`
	Price            string  `json:"price"`
	Grams            int     `json:"grams"`
	Weight           float64 `json:"weight"`
	RequiresShipping bool    `json:"requires_shipping"`
}

// CustomerName returns the best available buyer name for the order.
func (o *SourceOrder) CustomerName() string {
	if o.Customer != nil {
		name := (&SourceAddress{FirstName: o.Customer.FirstName, LastName: o.Customer.LastName}).FullName()
		if name != "" {
			return name
		}
	}
	if o.ShippingAddress != nil {
		return o.ShippingAddress.FullName()
	}
	return ""
}

var validate = validator.New()

// DecodeSourceOrder decodes and validates a raw storefront order payload.
// It is the single decode step for webhook and sync ingress: a payload
// either produces a well-formed SourceOrder or a ValidationError.
func DecodeSourceOrder(data []byte) (*SourceOrder, error) {
	var order SourceOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, WrapError(err, EINVALID, "order.decode", "order payload is not valid JSON")
	}

	if err := validate.Struct(&order); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			var ve error
			for _, fe := range invalid {
				ve = AddFieldError(ve, fe.Field(), "failed "+fe.Tag()+" check")
			}
			if v, ok := ve.(*ValidationError); ok {
				v.Op = "order.decode"
			}
			return nil, ve
		}
		return nil, WrapError(err, EINVALID, "order.decode", "order payload failed validation")
	}

	return &order, nil
}

// OrderLogEntry is one row of the idempotency ledger: the persisted record
// of a processing attempt. A processed entry with a provider order ID
// short-circuits any reprocessing of the same source order for that shop.
type OrderLogEntry struct {
	ID              int64
	Shop            string
	SourceOrderID   int64
	ProviderOrderID string
	Status          string
	ErrorMessage    string
	TotalPrice      decimal.Decimal
	Currency        string
	CustomerName    string
	Phone           string
	SourceCreatedAt time.Time
	FinancialStatus string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsProcessed reports whether the entry terminally succeeded, carrying a
// courier-assigned order ID.
func (e *OrderLogEntry) IsProcessed() bool {
	return e != nil && e.Status == StatusProcessed && e.ProviderOrderID != ""
}

// Ledger persists order processing attempts and backs the idempotency
// check. Implementations must treat (shop, source order ID) as the
// natural key.
type Ledger interface {
	// Find returns the entry for the given shop and source order ID,
	// or nil when none exists.
	Find(ctx context.Context, shop string, sourceOrderID int64) (*OrderLogEntry, error)

	// Upsert inserts the entry or updates the existing row for the same
	// shop and source order ID.
	Upsert(ctx context.Context, entry *OrderLogEntry) error

	// ListByShop returns the most recent entries for a shop.
	ListByShop(ctx context.Context, shop string, limit int) ([]OrderLogEntry, error)

	// DeleteShop removes all entries for a shop (app uninstall cascade).
	DeleteShop(ctx context.Context, shop string) error
}
