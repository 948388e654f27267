package ordering

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/ordering"
	"github.com/shopstack/backend/internal/domain/shared"
)

// ReferralProcessor evaluates a freshly paid invoice for a referral reward.
// Processing is structurally idempotent, so re-invocation after a crash or
// retried delivery cannot double-credit a reward.
type ReferralProcessor interface {
	ProcessQualifyingOrder(ctx context.Context, invoiceNumber string) error
}

// PaymentService handles the Unpaid to Paid transition at invoice granularity.
// An invoice may span several legacy order records; the transition is applied
// to all of them in one transaction so the invoice can never be half paid.
type PaymentService struct {
	orderRepo         ordering.OrderRepository
	txScope           TransactionScope
	eventPublisher    shared.EventPublisher
	referralProcessor ReferralProcessor
	logger            *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(orderRepo ordering.OrderRepository, txScope TransactionScope) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		txScope:   txScope,
		logger:    zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReferralProcessor sets the processor invoked on genuine Paid transitions
func (s *PaymentService) SetReferralProcessor(processor ReferralProcessor) {
	s.referralProcessor = processor
}

// SetLogger sets the service logger
func (s *PaymentService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetPaymentStatus marks an invoice paid. Repeating the call for an invoice
// that is already paid succeeds without side effects and reports
// Transitioned=false, so downstream triggers fire at most once per invoice.
func (s *PaymentService) SetPaymentStatus(ctx context.Context, invoiceNumber string, req SetPaymentStatusRequest) (*SetPaymentStatusResponse, error) {
	if ordering.PaymentStatus(req.Status) != ordering.PaymentStatusPaid {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Only the Paid status can be set")
	}

	paidAt := time.Now()
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}

	var (
		transitioned   bool
		representative *ordering.Order
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		records, err := repos.OrderRepo().FindByInvoiceNumber(ctx, invoiceNumber)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return shared.ErrNotFound
		}

		updated := make([]*ordering.Order, 0, len(records))
		for i := range records {
			changed, err := records[i].MarkPaid(req.PaymentMethod, paidAt)
			if err != nil {
				return err
			}
			if changed {
				transitioned = true
				updated = append(updated, &records[i])
			}
		}

		if !transitioned {
			return nil
		}
		representative = updated[0]
		return repos.OrderRepo().SaveAll(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		if s.eventPublisher != nil {
			_ = s.eventPublisher.Publish(ctx, ordering.NewInvoicePaidEvent(representative, req.PaymentMethod, paidAt))
		}
		// Reward evaluation rides on the genuine transition only. The payment
		// itself is already committed; a processing failure is logged and can
		// be replayed safely because reward creation is idempotent per pair.
		if s.referralProcessor != nil {
			if err := s.referralProcessor.ProcessQualifyingOrder(ctx, invoiceNumber); err != nil {
				s.logger.Error("referral processing failed",
					zap.String("invoice_number", invoiceNumber),
					zap.Error(err),
				)
			}
		}
	}

	return &SetPaymentStatusResponse{
		InvoiceNumber: invoiceNumber,
		Status:        ordering.PaymentStatusPaid.String(),
		Transitioned:  transitioned,
	}, nil
}
