package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormReferralRepository implements ReferralRepository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// FindByID finds a referral by its ID
func (r *GormReferralRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Referral, error) {
	var referral partner.Referral
	if err := r.db.WithContext(ctx).First(&referral, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &referral, nil
}

// FindByPair finds the referral for a (referrer, referee) pair, if any
func (r *GormReferralRepository) FindByPair(ctx context.Context, referrerID, refereeID uuid.UUID) (*partner.Referral, error) {
	var referral partner.Referral
	if err := r.db.WithContext(ctx).
		Where("referrer_id = ? AND referee_id = ?", referrerID, refereeID).
		First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &referral, nil
}

// FindByReferrer returns all referrals credited to a referrer
func (r *GormReferralRepository) FindByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) ([]partner.Referral, error) {
	var referrals []partner.Referral
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&partner.Referral{}).
			Where("referrer_id = ?", referrerID),
		filter,
	)

	if err := query.Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

// CountByReferrer counts referrals credited to a referrer
func (r *GormReferralRepository) CountByReferrer(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Referral{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPaidRewards sums reward amounts over a referrer's disbursed referrals
func (r *GormReferralRepository) SumPaidRewards(ctx context.Context, referrerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&partner.Referral{}).
		Where("referrer_id = ? AND status = ?", referrerID, partner.ReferralStatusRewardPaid).
		Select("COALESCE(SUM(reward_amount), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Save creates or updates a referral.
// The (referrer, referee) pair carries a unique index; a concurrent insert
// of the same pair comes back as ErrAlreadyExists so crediting stays
// exactly-once under races.
func (r *GormReferralRepository) Save(ctx context.Context, referral *partner.Referral) error {
	if err := r.db.WithContext(ctx).Save(referral).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormReferralRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "referee_id":
			query = query.Where("referee_id = ?", value)
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ReferralSortFields, "date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		// Default ordering
		query = query.Order("date DESC")
	}

	return query
}
