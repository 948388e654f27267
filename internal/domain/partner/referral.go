package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
)

// ReferralStatus represents the lifecycle state of a referral reward
type ReferralStatus string

const (
	// ReferralStatusCompleted means the qualifying purchase happened and the
	// reward is owed but not yet disbursed
	ReferralStatusCompleted ReferralStatus = "Completed"
	// ReferralStatusRewardPaid means the reward has been disbursed
	ReferralStatusRewardPaid ReferralStatus = "RewardPaid"
)

// IsValid checks if the status is a valid ReferralStatus
func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralStatusCompleted, ReferralStatusRewardPaid:
		return true
	}
	return false
}

// String returns the string representation of ReferralStatus
func (s ReferralStatus) String() string {
	return string(s)
}

// RewardAmount is the fixed reward per referral, in INR
var RewardAmount = decimal.NewFromInt(500)

// QualifyingSubtotal is the minimum pre-tax invoice subtotal, in INR, that
// earns the referrer a reward
var QualifyingSubtotal = decimal.NewFromInt(10000)

// Referral records one earned referral reward.
// At most one exists per (referrer, referee) pair: the first qualifying paid
// order creates it, later qualifying orders by the same referee do not.
type Referral struct {
	shared.BaseAggregateRoot
	ReferrerID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_referral_pair,priority:1"`
	RefereeID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_referral_pair,priority:2"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null"`
	Date         time.Time       `gorm:"type:timestamptz;not null"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status       ReferralStatus  `gorm:"type:varchar(20);not null;default:'Completed'"`
}

// TableName returns the table name for GORM
func (Referral) TableName() string {
	return "referrals"
}

// NewReferral creates a referral reward in Completed state
func NewReferral(referrerID, refereeID, orderID uuid.UUID) (*Referral, error) {
	if referrerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERRER", "Referrer ID cannot be empty")
	}
	if refereeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFEREE", "Referee ID cannot be empty")
	}
	if referrerID == refereeID {
		return nil, shared.NewDomainError("INVALID_REFERRAL", "Customers cannot refer themselves")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	return &Referral{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReferrerID:        referrerID,
		RefereeID:         refereeID,
		OrderID:           orderID,
		Date:              time.Now(),
		RewardAmount:      RewardAmount,
		Status:            ReferralStatusCompleted,
	}, nil
}

// MarkRewardPaid transitions Completed to RewardPaid, exactly once.
// A second call fails with ErrAlreadyPaid so the reward can never be
// disbursed twice.
func (r *Referral) MarkRewardPaid() error {
	if r.Status == ReferralStatusRewardPaid {
		return shared.ErrAlreadyPaid
	}

	r.Status = ReferralStatusRewardPaid
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
