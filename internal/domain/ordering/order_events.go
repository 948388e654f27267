package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced = "OrderPlaced"
	EventTypeInvoicePaid = "InvoicePaid"
)

// OrderPlacedEvent is published after an order commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number"`
	LineCount     int             `json:"line_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order, subtotal decimal.Decimal) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		InvoiceNumber:   order.InvoiceNumber,
		LineCount:       len(order.Items),
		Subtotal:        subtotal,
	}
}

// InvoicePaidEvent is published on a genuine Unpaid to Paid transition
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Method        string    `json:"method"`
	PaidAt        time.Time `json:"paid_at"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(order *Order, method string, paidAt time.Time) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeOrder, order.ID),
		InvoiceNumber:   order.InvoiceNumber,
		CustomerID:      order.CustomerID,
		Method:          method,
		PaidAt:          paidAt,
	}
}
