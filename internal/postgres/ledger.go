package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/tawseel/internal/domain"
)

// LedgerStore implements domain.Ledger using PostgreSQL.
type LedgerStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Compile-time check to ensure LedgerStore implements domain.Ledger.
var _ domain.Ledger = (*LedgerStore)(nil)

// NewLedgerStore creates a new LedgerStore instance.
func NewLedgerStore(pool *pgxpool.Pool, logger *slog.Logger) *LedgerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerStore{
		pool:   pool,
		logger: logger.With("component", "ledger"),
	}
}

const ledgerColumns = `id, shop, source_order_id, provider_order_id, status,
	error_message, total_price::text, currency, customer_name, phone,
	source_created_at, financial_status, created_at, updated_at`

// Find returns the entry for the given shop and source order ID, or nil
// when none exists.
func (s *LedgerStore) Find(ctx context.Context, shop string, sourceOrderID int64) (*domain.OrderLogEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM order_logs
		WHERE shop = $1 AND source_order_id = $2`, ledgerColumns)

	entry, err := scanEntry(s.pool.QueryRow(ctx, query, shop, sourceOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "ledger.find", "failed to query order log")
	}
	return entry, nil
}

// Upsert inserts the entry or updates the existing row for the same
// shop and source order ID.
func (s *LedgerStore) Upsert(ctx context.Context, entry *domain.OrderLogEntry) error {
	query := `
		INSERT INTO order_logs (
			shop, source_order_id, provider_order_id, status, error_message,
			total_price, currency, customer_name, phone,
			source_created_at, financial_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (shop, source_order_id) DO UPDATE SET
			provider_order_id = EXCLUDED.provider_order_id,
			status            = EXCLUDED.status,
			error_message     = EXCLUDED.error_message,
			financial_status  = EXCLUDED.financial_status,
			updated_at        = now()`

	_, err := s.pool.Exec(ctx, query,
		entry.Shop,
		entry.SourceOrderID,
		entry.ProviderOrderID,
		entry.Status,
		entry.ErrorMessage,
		entry.TotalPrice.String(),
		entry.Currency,
		entry.CustomerName,
		entry.Phone,
		entry.SourceCreatedAt,
		entry.FinancialStatus,
	)
	if err != nil {
		return domain.Internal(err, "ledger.upsert", "failed to persist order log")
	}
	return nil
}

// ListByShop returns the most recent entries for a shop.
func (s *LedgerStore) ListByShop(ctx context.Context, shop string, limit int) ([]domain.OrderLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM order_logs
		WHERE shop = $1
		ORDER BY created_at DESC
		LIMIT $2`, ledgerColumns)

	rows, err := s.pool.Query(ctx, query, shop, limit)
	if err != nil {
		return nil, domain.Internal(err, "ledger.list", "failed to query order logs")
	}
	defer rows.Close()

	var entries []domain.OrderLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, domain.Internal(err, "ledger.list", "failed to scan order log")
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "ledger.list", "failed to read order logs")
	}
	return entries, nil
}

// DeleteShop removes all entries for a shop (app uninstall cascade).
func (s *LedgerStore) DeleteShop(ctx context.Context, shop string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM order_logs WHERE shop = $1`, shop)
	if err != nil {
		return domain.Internal(err, "ledger.delete_shop", "failed to delete shop order logs")
	}

	s.logger.Info("deleted shop ledger data", "shop", shop, "rows", tag.RowsAffected())
	return nil
}

func scanEntry(row pgx.Row) (*domain.OrderLogEntry, error) {
	var entry domain.OrderLogEntry
	var totalPrice string

	err := row.Scan(
		&entry.ID,
		&entry.Shop,
		&entry.SourceOrderID,
		&entry.ProviderOrderID,
		&entry.Status,
		&entry.ErrorMessage,
		&totalPrice,
		&entry.Currency,
		&entry.CustomerName,
		&entry.Phone,
		&entry.SourceCreatedAt,
		&entry.FinancialStatus,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid total_price %q: %w", totalPrice, err)
	}
	return &entry, nil
}
