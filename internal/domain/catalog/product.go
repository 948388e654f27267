package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/shared/valueobject"
)

// Product represents a product/SKU in the catalog.
// It is the aggregate root for product operations. Quantity is the on-hand
// stock level; all order-triggered mutations go through Decrease/Adjust so the
// non-negative invariant and the stock ledger stay consistent.
type Product struct {
	shared.BaseAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity          int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
	Dealer            string          `gorm:"type:varchar(200)"`
	Category          string          `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, sku string, costPrice, sellingPrice valueobject.Money, quantity int64) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               strings.ToUpper(sku),
		CostPrice:         costPrice.Amount(),
		SellingPrice:      sellingPrice.Amount(),
		Quantity:          quantity,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive information
func (p *Product) Update(name, dealer, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Dealer = dealer
	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrices updates cost and selling price
func (p *Product) SetPrices(costPrice, sellingPrice valueobject.Money) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	p.CostPrice = costPrice.Amount()
	p.SellingPrice = sellingPrice.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetLowStockThreshold updates the alert threshold
func (p *Product) SetLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasAvailable reports whether the requested quantity can be fulfilled
func (p *Product) HasAvailable(requested int64) bool {
	return requested > 0 && p.Quantity >= requested
}

// Decrease removes stock for a committed order line.
// The caller must have validated availability for the whole order first;
// Decrease still guards the invariant and fails rather than going negative.
func (p *Product) Decrease(requested int64) error {
	if requested <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if p.Quantity < requested {
		return shared.ErrInsufficientStock
	}

	p.Quantity -= requested
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockDecreasedEvent(p, requested))

	return nil
}

// Adjust applies a signed manual stock correction.
// Fails with ErrNegativeStock when the result would drop below zero.
func (p *Product) Adjust(delta int64) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if p.Quantity+delta < 0 {
		return shared.ErrNegativeStock
	}

	p.Quantity += delta
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockAdjustedEvent(p, delta))

	return nil
}

// IsBelowThreshold reports whether stock has fallen below the alert threshold
func (p *Product) IsBelowThreshold() bool {
	return p.LowStockThreshold > 0 && p.Quantity < p.LowStockThreshold
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}
