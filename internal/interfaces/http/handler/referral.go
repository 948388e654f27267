package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/shopstack/backend/internal/application/partner"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/interfaces/http/dto"
)

// ReferralHandler handles referral reward endpoints
type ReferralHandler struct {
	BaseHandler
	referralService *partnerapp.ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referralService *partnerapp.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// MarkRewardPaid handles POST /partner/referrals/:id/mark-paid
func (h *ReferralHandler) MarkRewardPaid(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid referral ID format")
		return
	}

	resp, err := h.referralService.MarkRewardAsPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ReferrerSummary handles GET /partner/customers/:id/referral-summary
func (h *ReferralHandler) ReferrerSummary(c *gin.Context) {
	customerID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	resp, err := h.referralService.ReferrerSummary(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByReferrer handles GET /partner/customers/:id/referrals
func (h *ReferralHandler) ListByReferrer(c *gin.Context) {
	customerID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	referrals, err := h.referralService.ListByReferrer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, referrals)
}
