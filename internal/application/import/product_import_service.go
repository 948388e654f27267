package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/shared/valueobject"
	csvimport "github.com/shopstack/backend/internal/infrastructure/import"
)

// productRequiredHeaders are the columns a product CSV must carry. Optional
// columns (quantity, low_stock_threshold, dealer, category) default to zero
// values when absent.
var productRequiredHeaders = []string{"name", "sku", "cost_price", "selling_price"}

// ProductImportService imports products from CSV files. Each run is recorded
// as an ImportHistory with per-row error details.
type ProductImportService struct {
	productRepo catalog.ProductRepository
	historyRepo bulk.ImportHistoryRepository
	logger      *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(
	productRepo catalog.ProductRepository,
	historyRepo bulk.ImportHistoryRepository,
) *ProductImportService {
	return &ProductImportService{
		productRepo: productRepo,
		historyRepo: historyRepo,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the service logger
func (s *ProductImportService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// validationRules returns the per-column rules for product rows
func (s *ProductImportService) validationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("sku").Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		csvimport.Field("cost_price").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("selling_price").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("quantity").Int().MinValue(zero).Build(),
		csvimport.Field("low_stock_threshold").Int().MinValue(zero).Build(),
		csvimport.Field("dealer").String().MaxLength(200).Build(),
		csvimport.Field("category").String().MaxLength(100).Build(),
	}
}

// Import reads a product CSV and creates or updates products according to
// the conflict mode. Row-level failures do not abort the run; they are
// collected and reported in the result and the stored history.
func (s *ProductImportService) Import(ctx context.Context, fileName string, fileSize int64, r io.Reader, mode bulk.ConflictMode) (*ImportResult, error) {
	history, err := bulk.NewImportHistory(bulk.ImportEntityProducts, fileName, fileSize, mode)
	if err != nil {
		return nil, err
	}

	rows, err := readRows(r, productRequiredHeaders)
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

		if err := s.importRow(ctx, row, mode, result, errs); err != nil {
			failErr := history.Fail(toErrorDetails(errs.Errors()))
			if failErr == nil {
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

	s.logger.Info("product import finished",
		zap.String("file", fileName),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows),
	)

	return result, nil
}

// importRow processes a single validated row. A row-level problem is added
// to the error collection and returns nil; only repository failures abort
// the run.
func (s *ProductImportService) importRow(ctx context.Context, row *csvimport.Row, mode bulk.ConflictMode, result *ImportResult, errs *csvimport.ErrorCollection) error {
	name := row.Get("name")
	sku := row.Get("sku")
	dealer := row.Get("dealer")
	category := row.Get("category")

	costPrice, err := decimal.NewFromString(row.Get("cost_price"))
	if err != nil {
		errs.AddTypeError(row.LineNumber, "cost_price", "decimal", row.Get("cost_price"))
		result.ErrorRows++
		return nil
	}
	sellingPrice, err := decimal.NewFromString(row.Get("selling_price"))
	if err != nil {
		errs.AddTypeError(row.LineNumber, "selling_price", "decimal", row.Get("selling_price"))
		result.ErrorRows++
		return nil
	}

	quantity, err := parseOptionalInt(row.Get("quantity"))
	if err != nil {
		errs.AddTypeError(row.LineNumber, "quantity", "int", row.Get("quantity"))
		result.ErrorRows++
		return nil
	}
	threshold, err := parseOptionalInt(row.Get("low_stock_threshold"))
	if err != nil {
		errs.AddTypeError(row.LineNumber, "low_stock_threshold", "int", row.Get("low_stock_threshold"))
		result.ErrorRows++
		return nil
	}

	existing, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check existing product: %w", err)
	}

	if existing != nil {
		switch mode {
		case bulk.ConflictModeSkip:
			result.SkippedRows++
			return nil
		case bulk.ConflictModeFail:
			errs.AddDuplicateError(row.LineNumber, "sku", sku, true)
			result.ErrorRows++
			return nil
		case bulk.ConflictModeUpdate:
			if err := existing.Update(name, dealer, category); err != nil {
				errs.AddValidationError(row.LineNumber, "name", csvimport.ErrCodeImportValidation, err.Error())
				result.ErrorRows++
				return nil
			}
			if err := existing.SetPrices(valueobject.NewMoneyINR(costPrice), valueobject.NewMoneyINR(sellingPrice)); err != nil {
				errs.AddValidationError(row.LineNumber, "cost_price", csvimport.ErrCodeImportValidation, err.Error())
				result.ErrorRows++
				return nil
			}
			if err := existing.SetLowStockThreshold(threshold); err != nil {
				errs.AddValidationError(row.LineNumber, "low_stock_threshold", csvimport.ErrCodeImportValidation, err.Error())
				result.ErrorRows++
				return nil
			}
			if err := s.productRepo.Save(ctx, existing); err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
			result.UpdatedRows++
			return nil
		}
	}

	product, err := catalog.NewProduct(name, sku, valueobject.NewMoneyINR(costPrice), valueobject.NewMoneyINR(sellingPrice), quantity)
	if err != nil {
		errs.AddValidationError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error())
		result.ErrorRows++
		return nil
	}
	if dealer != "" || category != "" {
		if err := product.Update(name, dealer, category); err != nil {
			errs.AddValidationError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error())
			result.ErrorRows++
			return nil
		}
	}
	if threshold > 0 {
		if err := product.SetLowStockThreshold(threshold); err != nil {
			errs.AddValidationError(row.LineNumber, "low_stock_threshold", csvimport.ErrCodeImportValidation, err.Error())
			result.ErrorRows++
			return nil
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	result.ImportedRows++
	return nil
}

// readRows opens the CSV, checks the header, and reads all non-empty data
// rows. File-level problems come back as INVALID_INPUT domain errors.
func readRows(r io.Reader, required []string) ([]*csvimport.Row, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Cannot read CSV file: %v", err))
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Cannot parse CSV header: %v", err))
	}
	if missing := parser.ValidateHeaders(required); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Missing required columns: %v", missing))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Cannot read CSV rows: %v", err))
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "CSV file contains no data rows")
	}
	return rows, nil
}

// parseOptionalInt parses an optional non-negative integer column
func parseOptionalInt(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
