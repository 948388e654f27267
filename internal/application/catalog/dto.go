package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	SKU               string          `json:"sku" binding:"required,min=1,max=50"`
	CostPrice         decimal.Decimal `json:"cost_price" binding:"required"`
	SellingPrice      decimal.Decimal `json:"selling_price" binding:"required"`
	Quantity          int64           `json:"quantity" binding:"min=0"`
	LowStockThreshold *int64          `json:"low_stock_threshold"`
	Dealer            string          `json:"dealer" binding:"max=200"`
	Category          string          `json:"category" binding:"max=100"`
}

// UpdateProductRequest represents a request to update product details
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	LowStockThreshold *int64           `json:"low_stock_threshold"`
	Dealer            *string          `json:"dealer" binding:"omitempty,max=200"`
	Category          *string          `json:"category" binding:"omitempty,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	Quantity          int64           `json:"quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	BelowThreshold    bool            `json:"below_threshold"`
	Dealer            string          `json:"dealer,omitempty"`
	Category          string          `json:"category,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for product list queries
type ProductListFilter struct {
	Search         string `form:"search"`
	Category       string `form:"category"`
	BelowThreshold bool   `form:"below_threshold"`
	Page           int    `form:"page" binding:"min=1"`
	PageSize       int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain product to its response DTO
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                product.ID,
		Name:              product.Name,
		SKU:               product.SKU,
		CostPrice:         product.CostPrice,
		SellingPrice:      product.SellingPrice,
		Quantity:          product.Quantity,
		LowStockThreshold: product.LowStockThreshold,
		BelowThreshold:    product.IsBelowThreshold(),
		Dealer:            product.Dealer,
		Category:          product.Category,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}
