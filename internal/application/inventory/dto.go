package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/inventory"
)

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta int64  `json:"delta" binding:"required"`
	Kind  string `json:"kind" binding:"required,oneof=ADJUSTMENT RETURN RECEIVED"`
	Note  string `json:"note" binding:"max=200"`
}

// AdjustStockResponse reports the outcome of a stock adjustment
type AdjustStockResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	Delta       int64     `json:"delta"`
	NewQuantity int64     `json:"new_quantity"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Change      int64     `json:"change"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason"`
	NewQuantity int64     `json:"new_quantity"`
	Sequence    int64     `json:"sequence"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LedgerListFilter represents filter options for ledger queries
type LedgerListFilter struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=SALE RETURN ADJUSTMENT RECEIVED"`
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
}

// LedgerAuditResponse is the result of replaying a product's ledger against
// its current quantity
type LedgerAuditResponse struct {
	ProductID       uuid.UUID `json:"product_id"`
	EntryCount      int       `json:"entry_count"`
	LedgerSum       int64     `json:"ledger_sum"`
	CurrentQuantity int64     `json:"current_quantity"`
	Consistent      bool      `json:"consistent"`
	Issues          []string  `json:"issues,omitempty"`
}

// ToLedgerEntryResponse converts a domain ledger entry to its response DTO
func ToLedgerEntryResponse(entry *inventory.StockLedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          entry.ID,
		ProductID:   entry.ProductID,
		Change:      entry.Change,
		Kind:        entry.Kind.String(),
		Reason:      entry.Reason,
		NewQuantity: entry.NewQuantity,
		Sequence:    entry.Sequence,
		OccurredAt:  entry.OccurredAt,
	}
}
