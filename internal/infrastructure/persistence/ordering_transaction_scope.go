package persistence

import (
	"context"

	"gorm.io/gorm"

	appordering "github.com/shopstack/backend/internal/application/ordering"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/ordering"
	"github.com/shopstack/backend/internal/domain/partner"
)

// GormOrderingTransactionScope implements the ordering TransactionScope using
// GORM transactions. Order placement runs its stock decrements, ledger
// appends, order insert and referral code mint through one scope so they
// commit or roll back together.
type GormOrderingTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderingTransactionScope creates a new GormOrderingTransactionScope
func NewGormOrderingTransactionScope(db *gorm.DB) *GormOrderingTransactionScope {
	return &GormOrderingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormOrderingTransactionScope) Execute(ctx context.Context, fn func(repos appordering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormOrderingRepositories{tx: tx}
		return fn(repos)
	})
}

// gormOrderingRepositories provides repositories scoped to one transaction
type gormOrderingRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormOrderingRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormOrderingRepositories) OrderRepo() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// LedgerRepo returns the stock ledger repository scoped to the current transaction
func (r *gormOrderingRepositories) LedgerRepo() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction
func (r *gormOrderingRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// Ensure GormOrderingTransactionScope implements TransactionScope
var _ appordering.TransactionScope = (*GormOrderingTransactionScope)(nil)

// Ensure gormOrderingRepositories implements TransactionalRepositories
var _ appordering.TransactionalRepositories = (*gormOrderingRepositories)(nil)
