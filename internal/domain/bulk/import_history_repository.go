package bulk

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/shared"
)

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	// FindByID finds an import history by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ImportHistory, error)

	// FindAll returns import histories matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ImportHistory, error)

	// Save saves an import history (create or update)
	Save(ctx context.Context, history *ImportHistory) error

	// Count returns the number of histories matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
