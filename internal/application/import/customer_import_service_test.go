package importapp

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
	csvimport "github.com/shopstack/backend/internal/infrastructure/import"
)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByReferralCode(ctx context.Context, code string) (*partner.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newCustomerImportFixture() (*CustomerImportService, *MockCustomerRepository, *MockImportHistoryRepository) {
	customerRepo := new(MockCustomerRepository)
	historyRepo := new(MockImportHistoryRepository)
	service := NewCustomerImportService(customerRepo, historyRepo)
	return service, customerRepo, historyRepo
}

func TestCustomerImport_CreatesCustomers(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	csv := "name,phone,email,address\n" +
		"Asha Traders,9800000001,asha@example.com,12 MG Road\n" +
		"Binod Stores,9800000002,,\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 128, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Equal(t, 0, result.ErrorRows)

	customerRepo.AssertNumberOfCalls(t, "Save", 2)

	history := historyRepo.lastSaved
	require.NotNil(t, history)
	assert.Equal(t, bulk.ImportEntityCustomers, history.EntityType)
	assert.Equal(t, bulk.ImportStatusCompleted, history.Status)
}

func TestCustomerImport_ResolvesReferrerCode(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	referrer, err := partner.NewCustomer("Referrer", "9800000000", "", "", nil)
	require.NoError(t, err)

	csv := "name,phone,referrer_code\n" +
		"Asha Traders,9800000001,REF123XYZ\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	customerRepo.On("FindByReferralCode", mock.Anything, "REF123XYZ").Return(referrer, nil)

	var saved *partner.Customer
	customerRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*partner.Customer)
	}).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 64, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedRows)
	require.NotNil(t, saved)
	require.NotNil(t, saved.ReferrerCode)
	assert.Equal(t, "REF123XYZ", *saved.ReferrerCode)
}

func TestCustomerImport_UnknownReferrerCode(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	csv := "name,phone,referrer_code\n" +
		"Asha Traders,9800000001,NOSUCH1\n" +
		"Binod Stores,9800000002,\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	customerRepo.On("FindByReferralCode", mock.Anything, "NOSUCH1").Return(nil, shared.ErrNotFound)
	customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 128, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, csvimport.ErrCodeImportReferenceNotFound, result.Errors[0].Code)
	assert.Equal(t, "referrer_code", result.Errors[0].Column)

	// The row with the bad reference is never saved
	customerRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestCustomerImport_ReferrerLookupCached(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	referrer, err := partner.NewCustomer("Referrer", "9800000000", "", "", nil)
	require.NoError(t, err)

	csv := "name,phone,referrer_code\n" +
		"Asha Traders,9800000001,REF123XYZ\n" +
		"Binod Stores,9800000002,REF123XYZ\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	customerRepo.On("FindByReferralCode", mock.Anything, "REF123XYZ").Return(referrer, nil)
	customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 128, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedRows)
	customerRepo.AssertNumberOfCalls(t, "FindByReferralCode", 1)
}

func TestCustomerImport_DuplicatePhoneInFile(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	csv := "name,phone\n" +
		"Asha Traders,9800000001\n" +
		"Asha Again,9800000001\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	customerRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 128, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, csvimport.ErrCodeImportDuplicateInFile, result.Errors[0].Code)
}

func TestCustomerImport_InvalidEmail(t *testing.T) {
	service, customerRepo, historyRepo := newCustomerImportFixture()

	csv := "name,phone,email\n" +
		"Asha Traders,9800000001,not-an-email\n"

	historyRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Import(context.Background(), "customers.csv", 64, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, csvimport.ErrCodeImportInvalidType, result.Errors[0].Code)
	customerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerImport_MissingRequiredHeader(t *testing.T) {
	service, _, _ := newCustomerImportFixture()

	csv := "name,email\n" +
		"Asha Traders,asha@example.com\n"

	_, err := service.Import(context.Background(), "customers.csv", 64, strings.NewReader(csv))

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	assert.Contains(t, domainErr.Message, "phone")
}
