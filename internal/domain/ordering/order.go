package ordering

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/shared/valueobject"
)

// OrderItem represents a line item in an itemized order record
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Amount returns (unitPrice - discount) * quantity for this line
func (i *OrderItem) Amount() decimal.Decimal {
	return LineAmount(i.UnitPrice, i.Discount, i.Quantity)
}

// Order is the aggregate root for a stored order record.
//
// Two storage shapes coexist. New records are itemized: all purchased lines
// live in Items under a single record. Records imported from the previous
// system are flat: one record per line, with the line embedded directly on
// the record (ProductID/ProductName/Quantity/UnitPrice/Discount) and several
// records sharing one InvoiceNumber. The shape is discriminated by presence
// of the items collection; downstream logic only ever sees canonical lines
// produced by the normalizer, never the raw shape.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;index"`
	OrderDate     time.Time       `gorm:"type:timestamptz;not null"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'Unpaid'"`
	PaymentMethod *string         `gorm:"type:varchar(50)"`
	PaymentDate   *time.Time      `gorm:"type:timestamptz"`
	ServiceFee    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// Itemized shape
	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`

	// Legacy flat shape: a single line embedded on the record
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    int64           `gorm:"not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new itemized order record in Unpaid state.
// All orders written by this engine are itemized; the flat shape exists only
// for records carried over from the previous system.
func NewOrder(customerID uuid.UUID, invoiceNumber string, orderDate time.Time) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateInvoiceNumber(invoiceNumber); err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		InvoiceNumber:     invoiceNumber,
		OrderDate:         orderDate,
		PaymentStatus:     PaymentStatusUnpaid,
		ServiceFee:        decimal.Zero,
		Items:             make([]OrderItem, 0),
	}, nil
}

// NewLegacyOrder rehydrates a flat single-line order record.
// Used by data imports and tests; the engine never writes this shape for new
// orders.
func NewLegacyOrder(customerID uuid.UUID, invoiceNumber string, orderDate time.Time, productID uuid.UUID, productName string, quantity int64, unitPrice, discount valueobject.Money) (*Order, error) {
	order, err := NewOrder(customerID, invoiceNumber, orderDate)
	if err != nil {
		return nil, err
	}

	pid := productID
	order.Items = nil
	order.ProductID = &pid
	order.ProductName = productName
	order.Quantity = quantity
	order.UnitPrice = unitPrice.Amount()
	order.Discount = discount.Amount()

	return order, nil
}

// IsItemized discriminates the storage shape: true when the record carries an
// items collection, false for a legacy flat record.
func (o *Order) IsItemized() bool {
	return len(o.Items) > 0
}

// AddItem appends a validated line item to an itemized order
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int64, unitPrice, discount valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	now := time.Now()
	item := OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Discount:    discount.Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.Items = append(o.Items, item)
	o.UpdatedAt = now

	return &o.Items[len(o.Items)-1], nil
}

// SetServiceFee sets an optional order-level service fee
func (o *Order) SetServiceFee(fee valueobject.Money) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Service fee cannot be negative")
	}
	o.ServiceFee = fee.Amount()
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaid transitions the record from Unpaid to Paid.
// Returns true when a genuine transition happened, false for the idempotent
// re-application on an already-Paid record. Only the Paid target is reachable;
// there is no reverse transition.
func (o *Order) MarkPaid(method string, at time.Time) (bool, error) {
	if o.PaymentStatus == PaymentStatusPaid {
		return false, nil
	}
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusPaid) {
		return false, shared.ErrInvalidState
	}
	if strings.TrimSpace(method) == "" {
		return false, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}
	if at.IsZero() {
		at = time.Now()
	}

	o.PaymentStatus = PaymentStatusPaid
	o.PaymentMethod = &method
	o.PaymentDate = &at
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return true, nil
}

func validateInvoiceNumber(invoiceNumber string) error {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	return nil
}
