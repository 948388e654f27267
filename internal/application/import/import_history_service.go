package importapp

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/shared"
)

// ImportHistoryService exposes read access to past import runs.
type ImportHistoryService struct {
	historyRepo bulk.ImportHistoryRepository
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(historyRepo bulk.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{historyRepo: historyRepo}
}

// GetByID retrieves a single import history
func (s *ImportHistoryService) GetByID(ctx context.Context, id uuid.UUID) (*ImportHistoryResponse, error) {
	history, err := s.historyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toHistoryResponse(history), nil
}

// List retrieves import histories matching the filter
func (s *ImportHistoryService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[ImportHistoryResponse], error) {
	histories, err := s.historyRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ImportHistoryResponse]{}, err
	}
	total, err := s.historyRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ImportHistoryResponse]{}, err
	}

	items := make([]ImportHistoryResponse, 0, len(histories))
	for i := range histories {
		items = append(items, *toHistoryResponse(&histories[i]))
	}

	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
