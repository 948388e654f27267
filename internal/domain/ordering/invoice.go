package ordering

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the documented default applied when no rate is configured
var DefaultTaxRate = decimal.NewFromFloat(0.18)

// LineAmount computes the amount of a single line:
// (unitPrice - discount) * quantity.
func LineAmount(unitPrice, discount decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Sub(discount).Mul(decimal.NewFromInt(quantity))
}

// Totals holds the aggregate amounts for a set of lines
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// OrderTotals computes subtotal, tax and total over canonical lines.
// Subtotal is the sum of line amounts; tax = subtotal * taxRate.
func OrderTotals(lines []CanonicalLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Invoice is one logical customer transaction: all records and lines sharing
// an invoice number merged into a single view. Representative metadata comes
// from the most recently dated constituent record.
type Invoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	OrderDate     time.Time       `json:"order_date"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	ServiceFee    decimal.Decimal `json:"service_fee"`
	Lines         []CanonicalLine `json:"lines"`
	Totals        Totals          `json:"totals"`
}

// GroupByInvoice merges order records sharing an invoice number into logical
// invoices. The result is independent of storage shape: an itemized record
// and an equivalent set of legacy flat records produce identical totals and
// status. Invoices are returned most recent first.
func GroupByInvoice(orders []Order, lookup ProductNameLookup, taxRate decimal.Decimal) []Invoice {
	byInvoice := make(map[string][]Order)
	for _, order := range orders {
		byInvoice[order.InvoiceNumber] = append(byInvoice[order.InvoiceNumber], order)
	}

	invoices := make([]Invoice, 0, len(byInvoice))
	for invoiceNumber, group := range byInvoice {
		representative := &group[0]
		serviceFee := decimal.Zero
		for i := range group {
			if group[i].OrderDate.After(representative.OrderDate) {
				representative = &group[i]
			}
			serviceFee = serviceFee.Add(group[i].ServiceFee)
		}

		lines, _ := NormalizeOrders(group, lookup)
		totals := OrderTotals(lines, taxRate)

		invoices = append(invoices, Invoice{
			InvoiceNumber: invoiceNumber,
			CustomerID:    representative.CustomerID,
			OrderDate:     representative.OrderDate,
			PaymentStatus: representative.PaymentStatus,
			PaymentMethod: representative.PaymentMethod,
			PaymentDate:   representative.PaymentDate,
			ServiceFee:    serviceFee,
			Lines:         lines,
			Totals:        totals,
		})
	}

	sort.Slice(invoices, func(i, j int) bool {
		if invoices[i].OrderDate.Equal(invoices[j].OrderDate) {
			return invoices[i].InvoiceNumber > invoices[j].InvoiceNumber
		}
		return invoices[i].OrderDate.After(invoices[j].OrderDate)
	})

	return invoices
}
