package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM.
// The ledger is append-only; there are no update or delete paths.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// Append stores a new ledger entry, assigning the next per-product sequence.
// The sequence read and the insert run in one transaction; callers appending
// from concurrent order flows are already serialized by the product's
// optimistic lock, so a plain MAX+1 is safe here.
func (r *GormStockLedgerRepository) Append(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		if err := tx.Model(&inventory.StockLedgerEntry{}).
			Where("product_id = ?", entry.ProductID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		entry.Sequence = maxSeq + 1
		return tx.Create(entry).Error
	})
}

// FindByProduct returns entries for a product, ordered by sequence unless the
// filter asks otherwise
func (r *GormStockLedgerRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockLedgerEntry, error) {
	var entries []inventory.StockLedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLedgerEntry{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByKind returns entries of one kind across products
func (r *GormStockLedgerRepository) FindByKind(ctx context.Context, kind inventory.EntryKind, filter shared.Filter) ([]inventory.StockLedgerEntry, error) {
	var entries []inventory.StockLedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLedgerEntry{}).
			Where("kind = ?", kind),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumChangesByProduct returns the sum of all signed changes for a product
func (r *GormStockLedgerRepository) SumChangesByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).Model(&inventory.StockLedgerEntry{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(change), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// CountByProduct counts entries for a product
func (r *GormStockLedgerRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.StockLedgerEntry{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "occurred_from":
			query = query.Where("occurred_at >= ?", value)
		case "occurred_to":
			query = query.Where("occurred_at <= ?", value)
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, LedgerSortFields, "sequence")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// Replay order
		query = query.Order("sequence ASC")
	}

	return query
}
