package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
)

// adjustRetryAttempts bounds the optimistic-lock retry loop for an adjustment
const adjustRetryAttempts = 3

// StockService handles manual stock corrections and ledger queries.
// Sales never go through this service; they are written by order placement.
type StockService struct {
	productRepo    catalog.ProductRepository
	ledgerRepo     inventory.StockLedgerRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo catalog.ProductRepository,
	ledgerRepo inventory.StockLedgerRepository,
	txScope TransactionScope,
) *StockService {
	return &StockService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		txScope:     txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AdjustStock applies a signed manual correction to a product's quantity and
// records it in the ledger. The correction can never take the quantity below
// zero; a conflicting concurrent write is retried a bounded number of times.
func (s *StockService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Adjustment delta cannot be zero")
	}
	kind := inventory.EntryKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.IsValid() || kind == inventory.EntryKindSale {
		return nil, shared.NewDomainError("INVALID_ENTRY_KIND",
			fmt.Sprintf("Manual adjustments cannot use kind %q", req.Kind))
	}

	reason := inventory.AdjustmentReason(kind, req.Note)

	var (
		product *catalog.Product
		events  []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = s.adjustWithRetry(ctx, repos.ProductRepo(), productID, req.Delta)
		if err != nil {
			return err
		}

		entry, err := inventory.NewStockLedgerEntry(productID, req.Delta, kind, reason, product.Quantity)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return err
		}

		events = product.GetDomainEvents()
		product.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	return &AdjustStockResponse{
		ProductID:   productID,
		Delta:       req.Delta,
		NewQuantity: product.Quantity,
		Kind:        kind.String(),
		Reason:      reason,
	}, nil
}

// adjustWithRetry applies the delta with an optimistic version check,
// re-reading the product on each conflict. Exhausting the attempts surfaces
// ErrStockConflict.
func (s *StockService) adjustWithRetry(ctx context.Context, repo catalog.ProductRepository, productID uuid.UUID, delta int64) (*catalog.Product, error) {
	for attempt := 0; attempt < adjustRetryAttempts; attempt++ {
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := product.Adjust(delta); err != nil {
			return nil, err
		}
		err = repo.SaveWithLock(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	return nil, shared.ErrStockConflict
}

// LedgerForProduct returns a product's ledger entries, oldest first
func (s *StockService) LedgerForProduct(ctx context.Context, productID uuid.UUID, filter LedgerListFilter) ([]LedgerEntryResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "sequence",
		OrderDir: "asc",
	}
	if filter.Kind != "" {
		domainFilter.Filters = map[string]interface{}{"kind": filter.Kind}
	}

	entries, err := s.ledgerRepo.FindByProduct(ctx, productID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToLedgerEntryResponse(&entries[i]))
	}
	return responses, nil
}

// VerifyLedgerReplay replays a product's full ledger and checks it against
// the live quantity: each entry's NewQuantity must follow from the previous
// one, and the final entry must match what the product currently holds.
// Products with no entries are consistent by definition (their quantity is
// the initial stock).
func (s *StockService) VerifyLedgerReplay(ctx context.Context, productID uuid.UUID) (*LedgerAuditResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.FindByProduct(ctx, productID, shared.Filter{
		OrderBy:  "sequence",
		OrderDir: "asc",
	})
	if err != nil {
		return nil, err
	}

	audit := &LedgerAuditResponse{
		ProductID:       productID,
		EntryCount:      len(entries),
		CurrentQuantity: product.Quantity,
		Consistent:      true,
	}

	for i := range entries {
		entry := &entries[i]
		audit.LedgerSum += entry.Change
		if i > 0 {
			expected := entries[i-1].NewQuantity + entry.Change
			if entry.NewQuantity != expected {
				audit.Consistent = false
				audit.Issues = append(audit.Issues, fmt.Sprintf(
					"sequence %d: recorded quantity %d, replay expected %d",
					entry.Sequence, entry.NewQuantity, expected))
			}
		}
	}

	if len(entries) > 0 {
		last := &entries[len(entries)-1]
		if last.NewQuantity != product.Quantity {
			audit.Consistent = false
			audit.Issues = append(audit.Issues, fmt.Sprintf(
				"final ledger quantity %d does not match product quantity %d",
				last.NewQuantity, product.Quantity))
		}
	}

	return audit, nil
}
