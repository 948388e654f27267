package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FallbackProductName is used when no name can be resolved for a line
const FallbackProductName = "Item"

// CanonicalLine is the normalized representation of a purchased line,
// independent of how the underlying order record is stored.
type CanonicalLine struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderDate     time.Time       `json:"order_date"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// Amount returns (unitPrice - discount) * quantity for this line
func (l CanonicalLine) Amount() decimal.Decimal {
	return LineAmount(l.UnitPrice, l.Discount, l.Quantity)
}

// NormalizationWarning records a data-quality issue found while normalizing.
// Warnings are logged by callers; they never fail the projection.
type NormalizationWarning struct {
	OrderID       uuid.UUID
	InvoiceNumber string
	Field         string
	Message       string
}

// ProductNameLookup resolves a product name from the live catalog.
// The second return value reports whether the product was found.
type ProductNameLookup func(productID uuid.UUID) (string, bool)

// NoCatalogLookup is a ProductNameLookup that never resolves, for callers
// that have no catalog access.
func NoCatalogLookup(uuid.UUID) (string, bool) {
	return "", false
}

// NormalizeOrders projects stored order records of either shape into a flat,
// ordered sequence of canonical lines. It is a pure read-time projection: it
// never mutates its inputs, never fails, and degrades missing or invalid
// values instead of raising. Name resolution order is item-level name, then
// order-level name, then catalog lookup, then the literal fallback.
func NormalizeOrders(orders []Order, lookup ProductNameLookup) ([]CanonicalLine, []NormalizationWarning) {
	if lookup == nil {
		lookup = NoCatalogLookup
	}

	lines := make([]CanonicalLine, 0, len(orders))
	var warnings []NormalizationWarning

	for i := range orders {
		order := &orders[i]
		if order.IsItemized() {
			for j := range order.Items {
				item := &order.Items[j]
				line, ws := normalizeLine(
					order, item.ID, item.ProductID, item.ProductName,
					item.Quantity, item.UnitPrice, item.Discount, lookup,
				)
				lines = append(lines, line)
				warnings = append(warnings, ws...)
			}
			continue
		}

		var productID uuid.UUID
		if order.ProductID != nil {
			productID = *order.ProductID
		} else {
			warnings = append(warnings, NormalizationWarning{
				OrderID:       order.ID,
				InvoiceNumber: order.InvoiceNumber,
				Field:         "product_id",
				Message:       "legacy record has no product reference",
			})
		}
		line, ws := normalizeLine(
			order, order.ID, productID, order.ProductName,
			order.Quantity, order.UnitPrice, order.Discount, lookup,
		)
		lines = append(lines, line)
		warnings = append(warnings, ws...)
	}

	return lines, warnings
}

func normalizeLine(order *Order, lineID, productID uuid.UUID, name string, quantity int64, unitPrice, discount decimal.Decimal, lookup ProductNameLookup) (CanonicalLine, []NormalizationWarning) {
	var warnings []NormalizationWarning

	warn := func(field, format string, args ...interface{}) {
		warnings = append(warnings, NormalizationWarning{
			OrderID:       order.ID,
			InvoiceNumber: order.InvoiceNumber,
			Field:         field,
			Message:       fmt.Sprintf(format, args...),
		})
	}

	if name == "" {
		name = order.ProductName
	}
	if name == "" && productID != uuid.Nil {
		if resolved, ok := lookup(productID); ok {
			name = resolved
		}
	}
	if name == "" {
		name = FallbackProductName
		warn("product_name", "no name resolvable for product %s", productID)
	}

	if quantity < 0 {
		warn("quantity", "negative quantity %d coerced to 0", quantity)
		quantity = 0
	}
	if unitPrice.IsNegative() {
		warn("unit_price", "negative unit price %s coerced to 0", unitPrice)
		unitPrice = decimal.Zero
	}
	if discount.IsNegative() {
		warn("discount", "negative discount %s coerced to 0", discount)
		discount = decimal.Zero
	}

	return CanonicalLine{
		ID:            lineID,
		ProductID:     productID,
		ProductName:   name,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Discount:      discount,
		InvoiceNumber: order.InvoiceNumber,
		OrderDate:     order.OrderDate,
		PaymentStatus: order.PaymentStatus,
	}, warnings
}
