package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/shopstack/backend/internal/application/inventory"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
)

// GormStockTransactionScope implements the inventory TransactionScope using
// GORM transactions. Manual adjustments write the product quantity and the
// ledger entry atomically.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormStockRepositories{tx: tx}
		return fn(repos)
	})
}

// gormStockRepositories provides repositories scoped to one transaction
type gormStockRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormStockRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// LedgerRepo returns the stock ledger repository scoped to the current transaction
func (r *gormStockRepositories) LedgerRepo() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

// Ensure GormStockTransactionScope implements TransactionScope
var _ appinventory.TransactionScope = (*GormStockTransactionScope)(nil)

// Ensure gormStockRepositories implements TransactionalRepositories
var _ appinventory.TransactionalRepositories = (*gormStockRepositories)(nil)
