package ordering

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order record by its ID, items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByInvoiceNumber returns every record sharing the invoice number.
	// Legacy invoices have one record per line; itemized invoices have one.
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) ([]Order, error)

	// FindByCustomer returns order records for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAll returns order records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// GenerateInvoiceNumber produces the next invoice number
	GenerateInvoiceNumber(ctx context.Context) (string, error)

	// Save creates or updates an order record with its items
	Save(ctx context.Context, order *Order) error

	// SaveAll persists a batch of records; used by the payment transition so
	// that every record sharing an invoice is written in one transaction
	SaveAll(ctx context.Context, orders []*Order) error

	// Count counts order records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
