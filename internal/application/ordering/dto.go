package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/ordering"
)

// ==================== Order DTOs ====================

// PlaceOrderItemInput represents one line of an order being placed
type PlaceOrderItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,min=1"`
	Discount  *decimal.Decimal `json:"discount"`
}

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	CustomerID uuid.UUID             `json:"customer_id" binding:"required"`
	Items      []PlaceOrderItemInput `json:"items" binding:"required,min=1,dive"`
	ServiceFee *decimal.Decimal      `json:"service_fee"`
	OrderDate  *time.Time            `json:"order_date"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order record in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	InvoiceNumber string              `json:"invoice_number"`
	OrderDate     time.Time           `json:"order_date"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	PaymentDate   *time.Time          `json:"payment_date,omitempty"`
	ServiceFee    decimal.Decimal     `json:"service_fee"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// PlaceOrderResponse is returned from order placement. NewReferralCode is set
// only when this placement minted the customer's shareable code.
type PlaceOrderResponse struct {
	Order           OrderResponse `json:"order"`
	NewReferralCode *string       `json:"new_referral_code,omitempty"`
}

// OrderListFilter represents filter options for order list queries
type OrderListFilter struct {
	CustomerID    *uuid.UUID `form:"customer_id"`
	InvoiceNumber string     `form:"invoice_number"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=Unpaid Paid"`
	Page          int        `form:"page" binding:"min=1"`
	PageSize      int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents a merged logical invoice in API responses
type InvoiceResponse struct {
	InvoiceNumber string                 `json:"invoice_number"`
	CustomerID    uuid.UUID              `json:"customer_id"`
	OrderDate     time.Time              `json:"order_date"`
	PaymentStatus string                 `json:"payment_status"`
	PaymentMethod *string                `json:"payment_method,omitempty"`
	PaymentDate   *time.Time             `json:"payment_date,omitempty"`
	ServiceFee    decimal.Decimal        `json:"service_fee"`
	Lines         []ordering.CanonicalLine `json:"lines"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Tax           decimal.Decimal        `json:"tax"`
	Total         decimal.Decimal        `json:"total"`
	GrandTotal    decimal.Decimal        `json:"grand_total"`
}

// ==================== Payment DTOs ====================

// SetPaymentStatusRequest represents a request to update an invoice's payment state
type SetPaymentStatusRequest struct {
	Status        string     `json:"status" binding:"required,oneof=Paid"`
	PaymentMethod string     `json:"payment_method" binding:"required,min=1,max=50"`
	PaymentDate   *time.Time `json:"payment_date"`
}

// SetPaymentStatusResponse reports the outcome of a payment update.
// Transitioned is false when the invoice was already paid and the call was a
// no-op.
type SetPaymentStatusResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
	Transitioned  bool   `json:"transitioned"`
}

// ==================== Mappers ====================

// ToOrderItemResponse converts a domain order item to its response DTO
func ToOrderItemResponse(item *ordering.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Discount:    item.Discount,
		Amount:      item.Amount(),
	}
}

// ToOrderResponse converts a domain order to its response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		items = append(items, ToOrderItemResponse(&order.Items[i]))
	}
	return OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		InvoiceNumber: order.InvoiceNumber,
		OrderDate:     order.OrderDate,
		PaymentStatus: order.PaymentStatus.String(),
		PaymentMethod: order.PaymentMethod,
		PaymentDate:   order.PaymentDate,
		ServiceFee:    order.ServiceFee,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToInvoiceResponse converts a merged invoice to its response DTO.
// GrandTotal adds the service fee on top of the taxed total.
func ToInvoiceResponse(invoice *ordering.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		OrderDate:     invoice.OrderDate,
		PaymentStatus: invoice.PaymentStatus.String(),
		PaymentMethod: invoice.PaymentMethod,
		PaymentDate:   invoice.PaymentDate,
		ServiceFee:    invoice.ServiceFee,
		Lines:         invoice.Lines,
		Subtotal:      invoice.Totals.Subtotal,
		Tax:           invoice.Totals.Tax,
		Total:         invoice.Totals.Total,
		GrandTotal:    invoice.Totals.Total.Add(invoice.ServiceFee),
	}
}
