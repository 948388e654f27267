package handler

import (
	"github.com/gin-gonic/gin"

	orderingapp "github.com/shopstack/backend/internal/application/ordering"
)

// PaymentHandler handles invoice payment state endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *orderingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *orderingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// SetPaymentStatus handles PUT /ordering/invoices/:invoice_number/payment
func (h *PaymentHandler) SetPaymentStatus(c *gin.Context) {
	invoiceNumber := c.Param("invoice_number")
	if invoiceNumber == "" {
		h.BadRequest(c, "Invoice number is required")
		return
	}

	var req orderingapp.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.paymentService.SetPaymentStatus(c.Request.Context(), invoiceNumber, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
