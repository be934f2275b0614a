package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/masterdata"
)

const (
	defaultOrderType    = "DELIVERY"
	defaultServiceType  = "NEXT_DAY"
	defaultPhone        = "+97300000000"
	defaultInstructions = "Please call the customer before delivery"

	// Assumed unit weight when a line item carries no weight data.
	fallbackUnitWeightKg = 0.5
)

// codKeywords mark a payment gateway as cash on delivery.
var codKeywords = []string{"cod", "cash on delivery", "cash_on_delivery", "cash-on-delivery"}

// TransformConfig carries the mapping constants applied to every order.
type TransformConfig struct {
	OrderType    string
	ServiceType  string
	Phone        string // destination phone placeholder
	Instructions string // final fallback for delivery instructions
}

func (c TransformConfig) withDefaults() TransformConfig {
	if c.OrderType == "" {
		c.OrderType = defaultOrderType
	}
	if c.ServiceType == "" {
		c.ServiceType = defaultServiceType
	}
	if c.Phone == "" {
		c.Phone = defaultPhone
	}
	if c.Instructions == "" {
		c.Instructions = defaultInstructions
	}
	return c
}

// Transformer maps storefront orders to courier order payloads. The
// destination address is parsed and resolved here; the pickup side
// comes from the shop's resolved pickup location.
type Transformer struct {
	parser   *address.Parser
	resolver *masterdata.Resolver
	pickups  *PickupResolver
	cfg      TransformConfig
	logger   *slog.Logger
}

// NewTransformer creates a transformer.
func NewTransformer(
	parser *address.Parser,
	resolver *masterdata.Resolver,
	pickups *PickupResolver,
	cfg TransformConfig,
	logger *slog.Logger,
) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		parser:   parser,
		resolver: resolver,
		pickups:  pickups,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "transformer"),
	}
}

// Transform builds the courier payload for a storefront order.
func (t *Transformer) Transform(ctx context.Context, order *domain.SourceOrder, shopKey string) (*logistics.Order, error) {
	const op = "transform"

	pickup, err := t.pickups.GetPickupLocation(ctx, shopKey)
	if err != nil {
		return nil, err
	}

	dest := order.ShippingAddress
	if dest == nil {
		dest = order.BillingAddress
	}
	if dest == nil {
		return nil, domain.Invalid(op, "order has no shipping or billing address")
	}

	numbers := t.parser.Parse(address.Fields{
		Line1:      dest.Address1,
		Line2:      dest.Address2,
		City:       dest.City,
		PostalCode: dest.Zip,
	})
	if numbers == nil {
		return nil, domain.Invalid(op, "destination address has no block number")
	}

	hint := address.AreaHint(dest.Address2, dest.City)
	ids, err := t.resolver.ConvertNumbersToIDs(ctx, *numbers, hint)
	if err != nil {
		return nil, err
	}

	name := dest.FullName()
	if name == "" {
		name = order.CustomerName()
	}
	phone := dest.Phone
	if phone == "" && order.Customer != nil {
		phone = order.Customer.Phone
	}
	if phone == "" {
		phone = t.cfg.Phone
	}

	isCOD := InferCOD(order)
	codAmount := decimal.Zero
	if isCOD {
		codAmount, err = decimal.NewFromString(order.TotalPrice)
		if err != nil {
			return nil, domain.Unprocessable(op, fmt.Sprintf("order has unparseable total price %q", order.TotalPrice))
		}
	}

	return &logistics.Order{
		OrderType:   t.cfg.OrderType,
		ServiceType: t.cfg.ServiceType,
		Reference:   orderReference(order),
		Pickup: logistics.Point{
			Name:       pickup.ContactName,
			Phone:      pickup.ContactPhone,
			BlockID:    pickup.BlockID,
			RoadID:     pickup.RoadID,
			BuildingID: pickup.BuildingID,
			Flat:       pickup.Flat,
			Address:    pickup.Address,
		},
		Destination: logistics.Point{
			Name:       name,
			Phone:      phone,
			BlockID:    ids.BlockID,
			RoadID:     ids.RoadID,
			BuildingID: ids.BuildingID,
			Flat:       numbers.Flat,
			Address:    courierAddress(ids, *numbers),
		},
		Instructions: t.instructions(order, dest),
		Packages:     buildPackages(order.LineItems),
		IsCOD:        isCOD,
		CODAmount:    codAmount,
	}, nil
}

func (t *Transformer) instructions(order *domain.SourceOrder, dest *domain.SourceAddress) string {
	if order.Note != "" {
		return order.Note
	}
	if dest.Note != "" {
		return dest.Note
	}
	return t.cfg.Instructions
}

func orderReference(order *domain.SourceOrder) string {
	if order.Name != "" {
		return order.Name
	}
	return fmt.Sprintf("#%d", order.ID)
}

// InferCOD classifies an order as cash on delivery. Orders that are
// pending or authorized default to COD unless a gateway hint says
// otherwise; paid orders are always prepaid.
func InferCOD(order *domain.SourceOrder) bool {
	status := strings.ToLower(order.FinancialStatus)
	if status != "pending" && status != "authorized" {
		return false
	}

	hints := strings.ToLower(strings.TrimSpace(
		order.Gateway + " " + strings.Join(order.PaymentGatewayNames, " ")))
	if hints == "" {
		return true
	}
	for _, kw := range codKeywords {
		if strings.Contains(hints, kw) {
			return true
		}
	}
	return false
}

// buildPackages maps line items to courier packages. Weight comes from
// grams, then an explicit weight field, then a fallback per unit; the
// per-package weight is floored to a minimum of 1 kg as an integer
// because the courier rejects fractional or zero weights. Values are
// rounded with a minimum of 1.
func buildPackages(lines []domain.SourceLineItem) []logistics.Package {
	packages := make([]logistics.Package, 0, len(lines))
	for _, line := range lines {
		unitKg := float64(line.Grams) / 1000
		if unitKg == 0 {
			unitKg = line.Weight
		}
		if unitKg == 0 {
			unitKg = fallbackUnitWeightKg
		}
		weight := int(unitKg * float64(line.Quantity))
		if weight < 1 {
			weight = 1
		}

		price, err := decimal.NewFromString(line.Price)
		if err != nil {
			price = decimal.Zero
		}
		value := price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(0).IntPart()
		if value < 1 {
			value = 1
		}

		packages = append(packages, logistics.Package{
			Description: line.Title,
			Quantity:    line.Quantity,
			WeightKg:    weight,
			Value:       value,
		})
	}
	return packages
}

// courierAddress assembles the address string in the fixed order the
// courier's auto-routing expects: building, road, block, flat. Resolved
// IDs are preferred; raw parsed numbers fill in when a component was
// not confirmed in master data.
func courierAddress(ids domain.ResolvedAddressIDs, n domain.AddressNumbers) string {
	var parts []string

	switch {
	case ids.BuildingID != 0:
		parts = append(parts, fmt.Sprintf("Building %d", ids.BuildingID))
	case n.Building > 0:
		parts = append(parts, fmt.Sprintf("Building %d", n.Building))
	}
	switch {
	case ids.RoadID != 0:
		parts = append(parts, fmt.Sprintf("Road %d", ids.RoadID))
	case n.Road > 0:
		parts = append(parts, fmt.Sprintf("Road %d", n.Road))
	}
	if ids.BlockID != 0 {
		parts = append(parts, fmt.Sprintf("Block %d", ids.BlockID))
	} else {
		parts = append(parts, fmt.Sprintf("Block %d", n.Block))
	}
	if n.Flat != "" && n.Flat != domain.FlatNotAvailable {
		parts = append(parts, fmt.Sprintf("Flat %s", n.Flat))
	}

	return strings.Join(parts, ", ")
}
