package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM.
// Error details live in a JSON text column; they are marshalled on save and
// restored on load.
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import history by its ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	var history bulk.ImportHistory
	if err := r.db.WithContext(ctx).First(&history, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := history.UnmarshalErrorDetails(); err != nil {
		return nil, err
	}
	return &history, nil
}

// FindAll returns import histories matching the filter
func (r *GormImportHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]bulk.ImportHistory, error) {
	var histories []bulk.ImportHistory
	query := r.applyFilter(r.db.WithContext(ctx).Model(&bulk.ImportHistory{}), filter)

	if err := query.Find(&histories).Error; err != nil {
		return nil, err
	}
	for i := range histories {
		if err := histories[i].UnmarshalErrorDetails(); err != nil {
			return nil, err
		}
	}
	return histories, nil
}

// Save creates or updates an import history
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	if err := history.MarshalErrorDetails(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(history).Error
}

// Count returns the number of histories matching the filter
func (r *GormImportHistoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&bulk.ImportHistory{})
	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormImportHistoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ImportHistorySortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
