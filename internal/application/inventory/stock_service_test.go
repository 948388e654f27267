package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/shared/valueobject"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBelowThreshold(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockLedgerRepository is a mock implementation of inventory.StockLedgerRepository
type MockStockLedgerRepository struct {
	mock.Mock
}

func (m *MockStockLedgerRepository) Append(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStockLedgerRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockLedgerEntry, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLedgerEntry), args.Error(1)
}

func (m *MockStockLedgerRepository) FindByKind(ctx context.Context, kind inventory.EntryKind, filter shared.Filter) ([]inventory.StockLedgerEntry, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockLedgerEntry), args.Error(1)
}

func (m *MockStockLedgerRepository) SumChangesByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockLedgerRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func newStockFixture() (*MockProductRepository, *MockStockLedgerRepository, *StockService) {
	productRepo := new(MockProductRepository)
	ledgerRepo := new(MockStockLedgerRepository)
	scope := NewNoOpTransactionScope(productRepo, ledgerRepo)
	service := NewStockService(productRepo, ledgerRepo, scope)
	return productRepo, ledgerRepo, service
}

func newStockedProduct(t *testing.T, quantity int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Soap", "SOAP-1",
		valueobject.NewMoneyINRFromInt(20),
		valueobject.NewMoneyINRFromInt(40),
		quantity)
	require.NoError(t, err)
	return product
}

func mustLedgerEntry(t *testing.T, productID uuid.UUID, change int64, kind inventory.EntryKind, reason string, newQuantity, sequence int64) inventory.StockLedgerEntry {
	t.Helper()
	entry, err := inventory.NewStockLedgerEntry(productID, change, kind, reason, newQuantity)
	require.NoError(t, err)
	entry.Sequence = sequence
	return *entry
}

func TestStockService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("applies positive correction and appends ledger entry", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 10)

		var appended *inventory.StockLedgerEntry
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("SaveWithLock", ctx, product).Return(nil)
		ledgerRepo.On("Append", ctx, mock.Anything).Run(func(args mock.Arguments) {
			appended = args.Get(1).(*inventory.StockLedgerEntry)
		}).Return(nil)

		resp, err := service.AdjustStock(ctx, product.ID, AdjustStockRequest{
			Delta: 5,
			Kind:  "Received",
			Note:  "supplier delivery",
		})

		require.NoError(t, err)
		assert.EqualValues(t, 15, resp.NewQuantity)
		assert.Equal(t, "RECEIVED", resp.Kind)
		require.NotNil(t, appended)
		assert.Equal(t, inventory.EntryKindReceived, appended.Kind)
		assert.EqualValues(t, 5, appended.Change)
		assert.EqualValues(t, 15, appended.NewQuantity)
		assert.Equal(t, "RECEIVED: supplier delivery", appended.Reason)
	})

	t.Run("refuses to take the quantity negative", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 3)

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := service.AdjustStock(ctx, product.ID, AdjustStockRequest{
			Delta: -5,
			Kind:  "Adjustment",
			Note:  "damaged",
		})

		assert.ErrorIs(t, err, shared.ErrNegativeStock)
		assert.EqualValues(t, 3, product.Quantity)
		ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		_, _, service := newStockFixture()

		_, err := service.AdjustStock(ctx, uuid.New(), AdjustStockRequest{Delta: 0, Kind: "Adjustment"})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CHANGE", domainErr.Code)
	})

	t.Run("rejects the sale kind for manual corrections", func(t *testing.T) {
		_, _, service := newStockFixture()

		_, err := service.AdjustStock(ctx, uuid.New(), AdjustStockRequest{Delta: -1, Kind: "Sale"})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_ENTRY_KIND", domainErr.Code)
	})

	t.Run("retries on version conflict and gives up after the limit", func(t *testing.T) {
		productRepo, _, service := newStockFixture()
		product := newStockedProduct(t, 10)

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := service.AdjustStock(ctx, product.ID, AdjustStockRequest{Delta: 1, Kind: "Adjustment"})

		assert.ErrorIs(t, err, shared.ErrStockConflict)
		productRepo.AssertNumberOfCalls(t, "SaveWithLock", adjustRetryAttempts)
	})
}

func TestStockService_VerifyLedgerReplay(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent ledger replays cleanly", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 7)
		entries := []inventory.StockLedgerEntry{
			mustLedgerEntry(t, product.ID, -3, inventory.EntryKindSale, "Sale against invoice INV-1", 12, 1),
			mustLedgerEntry(t, product.ID, -2, inventory.EntryKindSale, "Sale against invoice INV-2", 10, 2),
			mustLedgerEntry(t, product.ID, -3, inventory.EntryKindAdjustment, "ADJUSTMENT: damaged", 7, 3),
		}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ledgerRepo.On("FindByProduct", ctx, product.ID, mock.Anything).Return(entries, nil)

		audit, err := service.VerifyLedgerReplay(ctx, product.ID)

		require.NoError(t, err)
		assert.True(t, audit.Consistent)
		assert.Equal(t, 3, audit.EntryCount)
		assert.EqualValues(t, -8, audit.LedgerSum)
		assert.Empty(t, audit.Issues)
	})

	t.Run("detects a break in the replay chain", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 9)
		entries := []inventory.StockLedgerEntry{
			mustLedgerEntry(t, product.ID, -3, inventory.EntryKindSale, "Sale against invoice INV-1", 12, 1),
			mustLedgerEntry(t, product.ID, -2, inventory.EntryKindSale, "Sale against invoice INV-2", 9, 2),
		}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ledgerRepo.On("FindByProduct", ctx, product.ID, mock.Anything).Return(entries, nil)

		audit, err := service.VerifyLedgerReplay(ctx, product.ID)

		require.NoError(t, err)
		assert.False(t, audit.Consistent)
		require.Len(t, audit.Issues, 1)
		assert.Contains(t, audit.Issues[0], "sequence 2")
	})

	t.Run("detects divergence from the live quantity", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 5)
		entries := []inventory.StockLedgerEntry{
			mustLedgerEntry(t, product.ID, -3, inventory.EntryKindSale, "Sale against invoice INV-1", 12, 1),
		}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ledgerRepo.On("FindByProduct", ctx, product.ID, mock.Anything).Return(entries, nil)

		audit, err := service.VerifyLedgerReplay(ctx, product.ID)

		require.NoError(t, err)
		assert.False(t, audit.Consistent)
		require.Len(t, audit.Issues, 1)
		assert.Contains(t, audit.Issues[0], "does not match product quantity")
	})

	t.Run("empty ledger is consistent", func(t *testing.T) {
		productRepo, ledgerRepo, service := newStockFixture()
		product := newStockedProduct(t, 5)

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		ledgerRepo.On("FindByProduct", ctx, product.ID, mock.Anything).Return([]inventory.StockLedgerEntry{}, nil)

		audit, err := service.VerifyLedgerReplay(ctx, product.ID)

		require.NoError(t, err)
		assert.True(t, audit.Consistent)
		assert.Zero(t, audit.EntryCount)
	})
}
