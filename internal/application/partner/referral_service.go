package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/ordering"
	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
)

// ReferralService credits referral rewards for qualifying paid invoices and
// manages reward payout.
//
// A reward is credited when the paying customer was referred, the invoice's
// pre-tax subtotal reaches the qualifying threshold, and the (referrer,
// referee) pair has not been credited before. The pair check is structural:
// FindByPair guards the common path and the unique index on the pair catches
// the race, so replays and concurrent payments cannot double-credit.
type ReferralService struct {
	referralRepo partner.ReferralRepository
	customerRepo partner.CustomerRepository
	orderRepo    ordering.OrderRepository
	logger       *zap.Logger
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	referralRepo partner.ReferralRepository,
	customerRepo partner.CustomerRepository,
	orderRepo ordering.OrderRepository,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the service logger
func (s *ReferralService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ProcessQualifyingOrder evaluates a freshly paid invoice for a referral
// reward. Non-qualifying invoices are skipped silently; only infrastructure
// failures surface as errors, so the caller can replay safely.
func (s *ReferralService) ProcessQualifyingOrder(ctx context.Context, invoiceNumber string) error {
	records, err := s.orderRepo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return shared.ErrNotFound
	}

	referee, err := s.customerRepo.FindByID(ctx, records[0].CustomerID)
	if err != nil {
		return err
	}
	if !referee.WasReferred() {
		return nil
	}

	referrer, err := s.customerRepo.FindByReferralCode(ctx, *referee.ReferrerCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Dangling code from an import; nothing to credit.
			s.logger.Warn("referrer code does not resolve",
				zap.String("invoice_number", invoiceNumber),
				zap.String("referrer_code", *referee.ReferrerCode),
			)
			return nil
		}
		return err
	}
	if referrer.ID == referee.ID {
		return nil
	}

	// Qualification uses the pre-tax subtotal of the whole invoice,
	// independent of how its records are stored.
	lines, _ := ordering.NormalizeOrders(records, ordering.NoCatalogLookup)
	subtotal := ordering.OrderTotals(lines, decimal.Zero).Subtotal
	if subtotal.LessThan(partner.QualifyingSubtotal) {
		return nil
	}

	if _, err := s.referralRepo.FindByPair(ctx, referrer.ID, referee.ID); err == nil {
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	referral, err := partner.NewReferral(referrer.ID, referee.ID, records[0].ID)
	if err != nil {
		return err
	}
	if err := s.referralRepo.Save(ctx, referral); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost the race to a concurrent payment of the same pair.
			return nil
		}
		return err
	}

	s.logger.Info("referral reward credited",
		zap.String("invoice_number", invoiceNumber),
		zap.String("referrer_id", referrer.ID.String()),
		zap.String("referee_id", referee.ID.String()),
		zap.String("amount", referral.RewardAmount.String()),
	)
	return nil
}

// MarkRewardAsPaid disburses a referral reward exactly once
func (s *ReferralService) MarkRewardAsPaid(ctx context.Context, referralID uuid.UUID) (*ReferralResponse, error) {
	referral, err := s.referralRepo.FindByID(ctx, referralID)
	if err != nil {
		return nil, err
	}

	if err := referral.MarkRewardPaid(); err != nil {
		return nil, err
	}

	if err := s.referralRepo.Save(ctx, referral); err != nil {
		return nil, err
	}

	response := ToReferralResponse(referral)
	return &response, nil
}

// ReferrerSummary reports a referrer's total referrals and paid-out earnings
func (s *ReferralService) ReferrerSummary(ctx context.Context, customerID uuid.UUID) (*ReferrerSummaryResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	count, err := s.referralRepo.CountByReferrer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	earnings, err := s.referralRepo.SumPaidRewards(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &ReferrerSummaryResponse{
		ReferrerID:    customerID,
		ReferralCount: count,
		TotalEarnings: earnings,
	}, nil
}

// ListByReferrer returns a referrer's referrals
func (s *ReferralService) ListByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) ([]ReferralResponse, error) {
	referrals, err := s.referralRepo.FindByReferrer(ctx, referrerID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ReferralResponse, 0, len(referrals))
	for i := range referrals {
		responses = append(responses, ToReferralResponse(&referrals[i]))
	}
	return responses, nil
}
