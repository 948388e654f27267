package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/shared"
)

// EntryKind classifies a stock ledger entry.
// The kind is stored at write time; it is never inferred from the reason text
// except when classifying rows written before the kind column existed.
type EntryKind string

const (
	// EntryKindSale is a decrement caused by a committed order line
	EntryKindSale EntryKind = "SALE"
	// EntryKindReturn is an increment caused by returned goods
	EntryKindReturn EntryKind = "RETURN"
	// EntryKindAdjustment is a manual correction in either direction
	EntryKindAdjustment EntryKind = "ADJUSTMENT"
	// EntryKindReceived is an increment from incoming supplier stock
	EntryKindReceived EntryKind = "RECEIVED"
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// IsValid returns true if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindSale, EntryKindReturn, EntryKindAdjustment, EntryKindReceived:
		return true
	}
	return false
}

// KindFromReason classifies a legacy ledger row from its free-text reason.
// Rows written by this engine carry an explicit kind; this exists only for
// entries imported from systems that encoded the kind in the reason string.
func KindFromReason(change int64, reason string) EntryKind {
	lower := strings.ToLower(reason)
	if change > 0 {
		if strings.Contains(lower, "return") {
			return EntryKindReturn
		}
		return EntryKindReceived
	}
	if strings.Contains(lower, "sale") || strings.Contains(lower, "invoice") || strings.Contains(lower, "purchase") {
		return EntryKindSale
	}
	return EntryKindAdjustment
}

// StockLedgerEntry is an immutable audit record of a single stock movement.
// Entries are append-only: corrections are made with new entries, never by
// mutating or deleting existing ones. Sequence is server-assigned per product
// so that entries for one product are totally ordered and the ledger can be
// replayed against the product quantity.
type StockLedgerEntry struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_product_seq,priority:1"`
	Change      int64     `gorm:"not null"`
	Kind        EntryKind `gorm:"type:varchar(20);not null;index"`
	Reason      string    `gorm:"type:varchar(255);not null"`
	NewQuantity int64     `gorm:"not null"`
	Sequence    int64     `gorm:"not null;index:idx_ledger_product_seq,priority:2"`
	OccurredAt  time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (StockLedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// NewStockLedgerEntry creates a new ledger entry.
// Change is signed: negative for sales, positive for received stock and
// returns; adjustments go either way. NewQuantity is the product quantity
// after the change was applied.
func NewStockLedgerEntry(productID uuid.UUID, change int64, kind EntryKind, reason string, newQuantity int64) (*StockLedgerEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if change == 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Ledger change cannot be zero")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_KIND", fmt.Sprintf("Unknown ledger entry kind %q", kind))
	}
	if kind == EntryKindSale && change > 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Sale entries must decrease stock")
	}
	if (kind == EntryKindReceived || kind == EntryKindReturn) && change < 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Received and return entries must increase stock")
	}
	if newQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Resulting quantity cannot be negative")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Ledger reason cannot be empty")
	}

	return &StockLedgerEntry{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		Change:      change,
		Kind:        kind,
		Reason:      reason,
		NewQuantity: newQuantity,
		OccurredAt:  time.Now(),
	}, nil
}

// SaleReason builds the reason string recorded for an order-line decrement
func SaleReason(invoiceNumber string) string {
	return fmt.Sprintf("Sale against invoice %s", invoiceNumber)
}

// AdjustmentReason builds the reason string for a manual adjustment.
// The note is optional.
func AdjustmentReason(kind EntryKind, note string) string {
	if strings.TrimSpace(note) == "" {
		return kind.String()
	}
	return fmt.Sprintf("%s: %s", kind, note)
}
