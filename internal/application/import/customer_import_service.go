package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
	csvimport "github.com/shopstack/backend/internal/infrastructure/import"
)

var customerRequiredHeaders = []string{"name", "phone"}

// CustomerImportService imports customers from CSV files. A referrer_code
// column links imported customers to existing referrers; codes that do not
// resolve are reported as row errors rather than silently dropped.
type CustomerImportService struct {
	customerRepo partner.CustomerRepository
	historyRepo  bulk.ImportHistoryRepository
	logger       *zap.Logger
}

// NewCustomerImportService creates a new CustomerImportService
func NewCustomerImportService(
	customerRepo partner.CustomerRepository,
	historyRepo bulk.ImportHistoryRepository,
) *CustomerImportService {
	return &CustomerImportService{
		customerRepo: customerRepo,
		historyRepo:  historyRepo,
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the service logger
func (s *CustomerImportService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

func (s *CustomerImportService) validationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("phone").Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		csvimport.Field("email").Email().MaxLength(200).Build(),
		csvimport.Field("address").String().MaxLength(1000).Build(),
		csvimport.Field("referrer_code").String().MaxLength(20).Reference("referral_code").Build(),
	}
}

// Import reads a customer CSV and creates the customers it describes.
func (s *CustomerImportService) Import(ctx context.Context, fileName string, fileSize int64, r io.Reader) (*ImportResult, error) {
	history, err := bulk.NewImportHistory(bulk.ImportEntityCustomers, fileName, fileSize, bulk.ConflictModeSkip)
	if err != nil {
		return nil, err
	}

	rows, err := readRows(r, customerRequiredHeaders)
	if err != nil {
		return nil, err
	}

	if err := history.StartProcessing(len(rows)); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	validator := csvimport.NewFieldValidator(s.validationRules(), maxImportErrors)
	errs := validator.Errors()
	refValidator := s.newReferrerValidator(ctx, errs)
	result := &ImportResult{HistoryID: history.ID, TotalRows: len(rows)}

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !validator.ValidateRow(row) {
			result.ErrorRows++
			continue
		}
		if !refValidator.ValidateReference(row.LineNumber, "referrer_code", "referral_code", row.Get("referrer_code")) {
			result.ErrorRows++
			continue
		}

		if err := s.importRow(ctx, row, result, errs); err != nil {
			if failErr := history.Fail(toErrorDetails(errs.Errors())); failErr == nil {
				if saveErr := s.historyRepo.Save(ctx, history); saveErr != nil {
					s.logger.Error("failed to record failed import", zap.Error(saveErr))
				}
			}
			return nil, err
		}
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	if err := history.Complete(result.ImportedRows, result.ErrorRows, result.SkippedRows, result.UpdatedRows, toErrorDetails(result.Errors)); err != nil {
		return nil, err
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	s.logger.Info("customer import finished",
		zap.String("file", fileName),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("errors", result.ErrorRows),
	)

	return result, nil
}

// newReferrerValidator resolves referrer codes against existing customers,
// caching lookups across rows. Errors land in the shared collection so the
// result carries one flat error list.
func (s *CustomerImportService) newReferrerValidator(ctx context.Context, errs *csvimport.ErrorCollection) *csvimport.ReferenceValidator {
	v := csvimport.NewReferenceValidatorWithErrors(func(refType, value string) (bool, error) {
		_, err := s.customerRepo.FindByReferralCode(ctx, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}, errs)
	return v
}

func (s *CustomerImportService) importRow(ctx context.Context, row *csvimport.Row, result *ImportResult, errs *csvimport.ErrorCollection) error {
	var referrerCode *string
	if code := row.Get("referrer_code"); code != "" {
		referrerCode = &code
	}

	customer, err := partner.NewCustomer(row.Get("name"), row.Get("phone"), row.Get("email"), row.Get("address"), referrerCode)
	if err != nil {
		errs.AddValidationError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error())
		result.ErrorRows++
		return nil
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	result.ImportedRows++
	return nil
}
