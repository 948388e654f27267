package ordering

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack/backend/internal/domain/shared/valueobject"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice int64
		discount  int64
		quantity  int64
		want      string
	}{
		{"plain", 100, 0, 3, "300"},
		{"with discount", 100, 20, 3, "240"},
		{"zero quantity", 100, 0, 0, "0"},
		{"full discount", 50, 50, 2, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(decimal.NewFromInt(tt.unitPrice), decimal.NewFromInt(tt.discount), tt.quantity)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestOrderTotals(t *testing.T) {
	lines := []CanonicalLine{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100), Discount: decimal.Zero},
		{Quantity: 1, UnitPrice: decimal.NewFromInt(50), Discount: decimal.NewFromInt(10)},
	}

	totals := OrderTotals(lines, DefaultTaxRate)

	assert.Equal(t, "240", totals.Subtotal.String())
	assert.Equal(t, "43.2", totals.Tax.String())
	assert.Equal(t, "283.2", totals.Total.String())
}

func TestOrderTotals_CustomRate(t *testing.T) {
	lines := []CanonicalLine{
		{Quantity: 1, UnitPrice: decimal.NewFromInt(100), Discount: decimal.Zero},
	}

	totals := OrderTotals(lines, decimal.NewFromFloat(0.05))

	assert.Equal(t, "5", totals.Tax.String())
	assert.Equal(t, "105", totals.Total.String())
}

// Grouping an itemized record must match grouping the equivalent set of
// legacy one-record-per-line rows for the same invoice.
func TestGroupByInvoice_SchemaEquivalence(t *testing.T) {
	customerID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()
	orderDate := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	itemized, err := NewOrder(customerID, "INV-EQ-1", orderDate)
	require.NoError(t, err)
	_, err = itemized.AddItem(productA, "Bucket", 2, valueobject.NewMoneyINRFromInt(180), valueobject.NewMoneyINRFromInt(10))
	require.NoError(t, err)
	_, err = itemized.AddItem(productB, "Mop", 3, valueobject.NewMoneyINRFromInt(90), valueobject.ZeroINR())
	require.NoError(t, err)

	legacyA, err := NewLegacyOrder(customerID, "INV-EQ-1", orderDate,
		productA, "Bucket", 2, valueobject.NewMoneyINRFromInt(180), valueobject.NewMoneyINRFromInt(10))
	require.NoError(t, err)
	legacyB, err := NewLegacyOrder(customerID, "INV-EQ-1", orderDate,
		productB, "Mop", 3, valueobject.NewMoneyINRFromInt(90), valueobject.ZeroINR())
	require.NoError(t, err)

	fromItemized := GroupByInvoice([]Order{*itemized}, nil, DefaultTaxRate)
	fromLegacy := GroupByInvoice([]Order{*legacyA, *legacyB}, nil, DefaultTaxRate)

	require.Len(t, fromItemized, 1)
	require.Len(t, fromLegacy, 1)

	assert.Equal(t, fromItemized[0].InvoiceNumber, fromLegacy[0].InvoiceNumber)
	assert.Equal(t, fromItemized[0].CustomerID, fromLegacy[0].CustomerID)
	assert.Equal(t, fromItemized[0].PaymentStatus, fromLegacy[0].PaymentStatus)
	assert.True(t, fromItemized[0].Totals.Subtotal.Equal(fromLegacy[0].Totals.Subtotal))
	assert.True(t, fromItemized[0].Totals.Tax.Equal(fromLegacy[0].Totals.Tax))
	assert.True(t, fromItemized[0].Totals.Total.Equal(fromLegacy[0].Totals.Total))
	assert.Len(t, fromLegacy[0].Lines, len(fromItemized[0].Lines))
}

func TestGroupByInvoice_RepresentativeMetadata(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()
	earlier := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	later := earlier.Add(2 * time.Hour)

	first, err := NewLegacyOrder(customerID, "INV-META-1", earlier,
		productID, "A", 1, valueobject.NewMoneyINRFromInt(10), valueobject.ZeroINR())
	require.NoError(t, err)

	second, err := NewLegacyOrder(customerID, "INV-META-1", later,
		productID, "B", 1, valueobject.NewMoneyINRFromInt(20), valueobject.ZeroINR())
	require.NoError(t, err)
	_, err = second.MarkPaid("Cash", later.Add(time.Minute))
	require.NoError(t, err)

	invoices := GroupByInvoice([]Order{*first, *second}, nil, DefaultTaxRate)

	require.Len(t, invoices, 1)
	// metadata comes from the most recently dated constituent
	assert.True(t, invoices[0].OrderDate.Equal(later))
	assert.Equal(t, PaymentStatusPaid, invoices[0].PaymentStatus)
	require.NotNil(t, invoices[0].PaymentMethod)
	assert.Equal(t, "Cash", *invoices[0].PaymentMethod)
	assert.Equal(t, "30", invoices[0].Totals.Subtotal.String())
}

func TestGroupByInvoice_MultipleInvoicesSorted(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()
	older := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a, err := NewLegacyOrder(customerID, "INV-A", older,
		productID, "A", 1, valueobject.NewMoneyINRFromInt(10), valueobject.ZeroINR())
	require.NoError(t, err)
	b, err := NewLegacyOrder(customerID, "INV-B", newer,
		productID, "B", 1, valueobject.NewMoneyINRFromInt(20), valueobject.ZeroINR())
	require.NoError(t, err)

	invoices := GroupByInvoice([]Order{*a, *b}, nil, DefaultTaxRate)

	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-B", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-A", invoices[1].InvoiceNumber)
}
