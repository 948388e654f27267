package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByReferralCode finds the customer owning a shareable code
	FindByReferralCode(ctx context.Context, code string) (*Customer, error)

	// FindAll finds customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ReferralRepository defines the interface for referral persistence
type ReferralRepository interface {
	// FindByID finds a referral by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Referral, error)

	// FindByPair finds the referral for a (referrer, referee) pair, if any.
	// Returns shared.ErrNotFound when the pair has no referral yet.
	FindByPair(ctx context.Context, referrerID, refereeID uuid.UUID) (*Referral, error)

	// FindByReferrer returns all referrals credited to a referrer
	FindByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) ([]Referral, error)

	// CountByReferrer counts referrals credited to a referrer
	CountByReferrer(ctx context.Context, referrerID uuid.UUID) (int64, error)

	// SumPaidRewards sums reward amounts over a referrer's RewardPaid referrals
	SumPaidRewards(ctx context.Context, referrerID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a referral
	Save(ctx context.Context, referral *Referral) error
}
