package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/shared"
)

// StockLedgerRepository persists the append-only stock ledger.
// There is deliberately no update or delete: the ledger is immutable.
type StockLedgerRepository interface {
	// Append stores a new ledger entry, assigning the next per-product sequence
	Append(ctx context.Context, entry *StockLedgerEntry) error

	// FindByProduct returns entries for a product ordered by sequence
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockLedgerEntry, error)

	// FindByKind returns entries of one kind across products
	FindByKind(ctx context.Context, kind EntryKind, filter shared.Filter) ([]StockLedgerEntry, error)

	// SumChangesByProduct returns the sum of all signed changes for a product.
	// For a consistent ledger this equals quantity minus initial quantity.
	SumChangesByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// CountByProduct counts entries for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
