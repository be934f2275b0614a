package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/telemetry"
)

// defaultBatchDelay spaces out sequential batch submissions so the
// courier's rate limits are respected.
const defaultBatchDelay = 500 * time.Millisecond

// Result is the outcome of processing one order.
type Result struct {
	SourceOrderID   int64
	Success         bool
	Skipped         bool
	ProviderOrderID string
	TrackingURL     string
	// ShippingCharge is nil when the estimate call failed; estimate
	// failures never block order creation.
	ShippingCharge *decimal.Decimal
	Error          error
}

// Processor drives an order through the pipeline: idempotency check,
// transform, master-data re-validation, estimate, submission, ledger
// write. An order is processed at most once per shop.
type Processor struct {
	ledger      domain.Ledger
	transformer *Transformer
	provider    logistics.Provider
	source      masterdata.Source
	batchDelay  time.Duration
	logger      *slog.Logger
}

// NewProcessor creates a processor. batchDelay of zero selects the
// default inter-order delay for batch processing.
func NewProcessor(
	ledger domain.Ledger,
	transformer *Transformer,
	provider logistics.Provider,
	source masterdata.Source,
	batchDelay time.Duration,
	logger *slog.Logger,
) *Processor {
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ledger:      ledger,
		transformer: transformer,
		provider:    provider,
		source:      source,
		batchDelay:  batchDelay,
		logger:      logger.With("component", "processor"),
	}
}

// Process runs one order through the pipeline. A processed ledger entry
// with a courier order ID short-circuits to success without any
// external calls. Every failure after the idempotency check is recorded
// in the ledger.
func (p *Processor) Process(ctx context.Context, order *domain.SourceOrder, shopKey string) Result {
	logger := p.logger.With("shop", shopKey, "order_id", order.ID)

	entry, err := p.ledger.Find(ctx, shopKey, order.ID)
	if err != nil {
		// Without the ledger the idempotency guarantee is gone, so the
		// order is not submitted.
		return Result{
			SourceOrderID: order.ID,
			Error:         domain.Internal(err, "processor.process", "idempotency check failed"),
		}
	}
	if entry.IsProcessed() {
		logger.Info("order already processed, skipping", "provider_order_id", entry.ProviderOrderID)
		if telemetry.Business != nil {
			telemetry.Business.OrdersSkipped.WithLabelValues(shopKey).Inc()
		}
		return Result{
			SourceOrderID:   order.ID,
			Success:         true,
			Skipped:         true,
			ProviderOrderID: entry.ProviderOrderID,
		}
	}

	payload, err := p.transformer.Transform(ctx, order, shopKey)
	if err != nil {
		return p.fail(ctx, logger, order, shopKey, err)
	}
	if err := p.validateDestination(ctx, logger, payload); err != nil {
		return p.fail(ctx, logger, order, shopKey, err)
	}

	charge := p.estimate(ctx, logger, shopKey, payload)

	created, err := p.provider.CreateOrder(ctx, payload)
	if err != nil {
		return p.fail(ctx, logger, order, shopKey, err)
	}
	if created.OrderID == "" {
		return p.fail(ctx, logger, order, shopKey,
			domain.Internal(logistics.ErrMalformedResponse, "processor.process", "courier accepted the order but returned no order ID"))
	}

	p.record(ctx, logger, order, shopKey, domain.StatusProcessed, created.OrderID, "")

	logger.Info("order submitted",
		"provider_order_id", created.OrderID,
		"cod", payload.IsCOD)
	if telemetry.Business != nil {
		telemetry.Business.OrdersProcessed.WithLabelValues(shopKey).Inc()
		if payload.IsCOD {
			telemetry.Business.CODOrders.WithLabelValues(shopKey).Inc()
		}
		if total, perr := decimal.NewFromString(order.TotalPrice); perr == nil {
			f, _ := total.Float64()
			telemetry.Business.OrderValue.WithLabelValues(shopKey, order.Currency).Observe(f)
		}
	}

	return Result{
		SourceOrderID:   order.ID,
		Success:         true,
		ProviderOrderID: created.OrderID,
		TrackingURL:     created.TrackingURL,
		ShippingCharge:  charge,
	}
}

// ProcessBatch processes orders strictly sequentially with a fixed
// delay between submissions. Partial failures do not abort the batch;
// the result slice has one entry per input order.
func (p *Processor) ProcessBatch(ctx context.Context, orders []*domain.SourceOrder, shopKey string) []Result {
	results := make([]Result, 0, len(orders))
	for i, order := range orders {
		if i > 0 {
			select {
			case <-time.After(p.batchDelay):
			case <-ctx.Done():
				results = append(results, Result{SourceOrderID: order.ID, Error: ctx.Err()})
				continue
			}
		}
		results = append(results, p.Process(ctx, order, shopKey))
	}
	return results
}

// validateDestination re-checks the resolved destination IDs against
// live master data. Resolution already validated them, but stale cached
// IDs or upstream data changes slip through; block and road failures
// are fatal, building failures are logged only.
func (p *Processor) validateDestination(ctx context.Context, logger *slog.Logger, payload *logistics.Order) error {
	const op = "processor.validate"
	dest := payload.Destination

	blocks, err := p.source.ListBlocks(ctx, "")
	if err != nil {
		return domain.Unavailable(err, op, "could not confirm destination block against master data")
	}
	if !containsID(blocks, dest.BlockID) {
		return domain.Unprocessable(op, "destination block no longer exists in courier master data")
	}

	if dest.RoadID != 0 {
		roads, err := p.source.ListRoads(ctx, dest.BlockID, "")
		if err != nil {
			return domain.Unavailable(err, op, "could not confirm destination road against master data")
		}
		if !containsID(roads, dest.RoadID) {
			return domain.Unprocessable(op, "destination road no longer exists in courier master data")
		}
	}

	if dest.BuildingID != 0 {
		buildings, err := p.source.ListBuildings(ctx, dest.RoadID, dest.BlockID, "")
		if err != nil || !containsID(buildings, dest.BuildingID) {
			logger.Warn("destination building could not be confirmed", "building_id", dest.BuildingID, "error", err)
		}
	}

	return nil
}

// estimate fetches the advisory shipping cost. Failures are swallowed;
// the order is created either way and the charge reported as unknown.
func (p *Processor) estimate(ctx context.Context, logger *slog.Logger, shopKey string, payload *logistics.Order) *decimal.Decimal {
	est, err := p.provider.EstimateShipping(ctx, payload)
	if err != nil {
		logger.Warn("shipping estimate failed", "error", err)
		if telemetry.Business != nil {
			telemetry.Business.EstimateFailures.WithLabelValues(shopKey).Inc()
		}
		return nil
	}
	return &est.Cost
}

func (p *Processor) fail(ctx context.Context, logger *slog.Logger, order *domain.SourceOrder, shopKey string, err error) Result {
	logger.Error("order processing failed",
		"error", err,
		"code", domain.ErrorCode(err))

	p.record(ctx, logger, order, shopKey, domain.StatusFailed, "", err.Error())

	if telemetry.Business != nil {
		telemetry.Business.OrdersFailed.WithLabelValues(shopKey, domain.ErrorCode(err)).Inc()
	}
	return Result{SourceOrderID: order.ID, Error: err}
}

// record writes the ledger entry for this attempt. Ledger write
// failures are logged and swallowed so they never mask the processing
// outcome.
func (p *Processor) record(ctx context.Context, logger *slog.Logger, order *domain.SourceOrder, shopKey, status, providerOrderID, errMsg string) {
	entry := newLogEntry(order, shopKey)
	entry.Status = status
	entry.ProviderOrderID = providerOrderID
	entry.ErrorMessage = errMsg

	if err := p.ledger.Upsert(ctx, entry); err != nil {
		logger.Error("ledger write failed", "status", status, "error", err)
	}
}

func newLogEntry(order *domain.SourceOrder, shopKey string) *domain.OrderLogEntry {
	total, err := decimal.NewFromString(order.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}

	phone := ""
	if order.ShippingAddress != nil {
		phone = order.ShippingAddress.Phone
	}
	if phone == "" && order.Customer != nil {
		phone = order.Customer.Phone
	}

	return &domain.OrderLogEntry{
		Shop:            shopKey,
		SourceOrderID:   order.ID,
		TotalPrice:      total,
		Currency:        order.Currency,
		CustomerName:    order.CustomerName(),
		Phone:           phone,
		SourceCreatedAt: order.CreatedAt,
		FinancialStatus: order.FinancialStatus,
	}
}

func containsID(records []masterdata.Record, id int64) bool {
	for _, r := range records {
		if r.ID == id {
			return true
		}
	}
	return false
}
