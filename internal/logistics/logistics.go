// Package logistics integrates with the delivery courier's API: master
// data lookups, shipping estimates, order creation and tracking.
package logistics

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider defines the courier operations the sync pipeline consumes.
type Provider interface {
	// EstimateShipping returns the delivery cost for an order.
	// Estimates are advisory; failures must never block order creation.
	EstimateShipping(ctx context.Context, order *Order) (*Estimate, error)

	// CreateOrder submits an order to the courier and returns the
	// courier-assigned order ID.
	CreateOrder(ctx context.Context, order *Order) (*CreateResult, error)

	// TrackOrder returns tracking information for a courier order.
	TrackOrder(ctx context.Context, providerOrderID string) (*TrackingInfo, error)
}

// Order is the fully assembled payload sent to the courier.
// Destination.BlockID must be validated against live master data before
// submission; pickup fields must be populated.
type Order struct {
	OrderType    string   `json:"order_type"`
	ServiceType  string   `json:"service_type"`
	Reference    string   `json:"reference"`
	Pickup       Point    `json:"pickup"`
	Destination  Point    `json:"destination"`
	Instructions string   `json:"instructions"`
	Packages     []Package `json:"packages"`

	IsCOD     bool            `json:"is_cod"`
	CODAmount decimal.Decimal `json:"cod_amount"`
}

// Point is one end of a delivery: a contact plus a resolved location.
// RoadID and BuildingID are zero when unresolved; Address carries the
// display string assembled in the courier's required building-road-
// block-flat order.
type Point struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	BlockID    int64  `json:"block_id"`
	RoadID     int64  `json:"road_id,omitempty"`
	BuildingID int64  `json:"building_id,omitempty"`
	Flat       string `json:"flat"`
	Address    string `json:"address"`
}

// Package is one parcel line on a courier order. WeightKg is floored to
// a minimum of 1 at assembly time, as is Value.
type Package struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	WeightKg    int    `json:"weight"`
	Value       int64  `json:"value"`
}

// Estimate is the courier's advisory delivery cost.
type Estimate struct {
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency"`
}

// CreateResult is the courier's response to a successful order creation.
type CreateResult struct {
	OrderID     string `json:"order_id"`
	TrackingURL string `json:"tracking_url"`
}

// TrackingInfo contains courier tracking state for an order.
type TrackingInfo struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Events  []TrackingEvent `json:"events"`
}

// TrackingEvent is a single tracking update.
type TrackingEvent struct {
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
	Description string `json:"description"`
}
