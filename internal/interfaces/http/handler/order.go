package handler

import (
	"github.com/gin-gonic/gin"

	orderingapp "github.com/shopstack/backend/internal/application/ordering"
	"github.com/shopstack/backend/internal/domain/ordering"
)

// OrderHandler handles order placement and invoice query endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderingapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// NormalizationWarningResponse reports a field that had to be repaired while
// normalizing legacy order records
type NormalizationWarningResponse struct {
	OrderID       string `json:"order_id"`
	InvoiceNumber string `json:"invoice_number"`
	Field         string `json:"field"`
	Message       string `json:"message"`
}

// InvoiceLinesResponse carries an invoice's canonical lines plus any
// normalization warnings raised while assembling them
type InvoiceLinesResponse struct {
	InvoiceNumber string                         `json:"invoice_number"`
	Lines         []ordering.CanonicalLine       `json:"lines"`
	Warnings      []NormalizationWarningResponse `json:"warnings,omitempty"`
}

// PlaceOrder handles POST /ordering/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req orderingapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetOrder handles GET /ordering/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListInvoices handles GET /ordering/invoices
func (h *OrderHandler) ListInvoices(c *gin.Context) {
	filter := orderingapp.OrderListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	invoices, err := h.orderService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}

// GetInvoice handles GET /ordering/invoices/:invoice_number
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	invoiceNumber := c.Param("invoice_number")
	if invoiceNumber == "" {
		h.BadRequest(c, "Invoice number is required")
		return
	}

	resp, err := h.orderService.GetInvoice(c.Request.Context(), invoiceNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetInvoiceLines handles GET /ordering/invoices/:invoice_number/lines
func (h *OrderHandler) GetInvoiceLines(c *gin.Context) {
	invoiceNumber := c.Param("invoice_number")
	if invoiceNumber == "" {
		h.BadRequest(c, "Invoice number is required")
		return
	}

	lines, warnings, err := h.orderService.CanonicalLines(c.Request.Context(), invoiceNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := InvoiceLinesResponse{
		InvoiceNumber: invoiceNumber,
		Lines:         lines,
	}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, NormalizationWarningResponse{
			OrderID:       w.OrderID.String(),
			InvoiceNumber: w.InvoiceNumber,
			Field:         w.Field,
			Message:       w.Message,
		})
	}

	h.Success(c, resp)
}
