package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/partner"
)

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=200"`
	Phone        string  `json:"phone" binding:"max=50"`
	Email        string  `json:"email" binding:"omitempty,email,max=200"`
	Address      string  `json:"address" binding:"max=500"`
	ReferrerCode *string `json:"referrer_code" binding:"omitempty,min=6,max=20"`
}

// UpdateCustomerContactRequest represents a contact detail update
type UpdateCustomerContactRequest struct {
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=500"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address,omitempty"`
	ReferralCode *string   `json:"referral_code,omitempty"`
	ReferrerCode *string   `json:"referrer_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ==================== Referral DTOs ====================

// ReferralResponse represents a referral reward in API responses
type ReferralResponse struct {
	ID           uuid.UUID       `json:"id"`
	ReferrerID   uuid.UUID       `json:"referrer_id"`
	RefereeID    uuid.UUID       `json:"referee_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	Date         time.Time       `json:"date"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
	Status       string          `json:"status"`
}

// ReferrerSummaryResponse aggregates a referrer's standing
type ReferrerSummaryResponse struct {
	ReferrerID    uuid.UUID       `json:"referrer_id"`
	ReferralCount int64           `json:"referral_count"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// ==================== Mappers ====================

// ToCustomerResponse converts a domain customer to its response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		Name:         customer.Name,
		Phone:        customer.Phone,
		Email:        customer.Email,
		Address:      customer.Address,
		ReferralCode: customer.ReferralCode,
		ReferrerCode: customer.ReferrerCode,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
	}
}

// ToReferralResponse converts a domain referral to its response DTO
func ToReferralResponse(referral *partner.Referral) ReferralResponse {
	return ReferralResponse{
		ID:           referral.ID,
		ReferrerID:   referral.ReferrerID,
		RefereeID:    referral.RefereeID,
		OrderID:      referral.OrderID,
		Date:         referral.Date,
		RewardAmount: referral.RewardAmount,
		Status:       referral.Status.String(),
	}
}
