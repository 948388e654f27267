package catalog

import (
	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeStockDecreased = "StockDecreased"
	EventTypeStockAdjusted  = "StockAdjusted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		SKU:             product.SKU,
		Name:            product.Name,
		Quantity:        product.Quantity,
	}
}

// StockDecreasedEvent is published when order fulfillment removes stock
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Removed        int64     `json:"removed"`
	NewQuantity    int64     `json:"new_quantity"`
	BelowThreshold bool      `json:"below_threshold"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(product *Product, removed int64) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ProductName:     product.Name,
		Removed:         removed,
		NewQuantity:     product.Quantity,
		BelowThreshold:  product.IsBelowThreshold(),
	}
}

// StockAdjustedEvent is published on manual stock corrections
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Delta       int64     `json:"delta"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(product *Product, delta int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ProductName:     product.Name,
		Delta:           delta,
		NewQuantity:     product.Quantity,
	}
}
