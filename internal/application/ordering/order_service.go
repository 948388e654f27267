package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/ordering"
	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/shared/valueobject"
)

// stockRetryAttempts bounds the optimistic-lock retry loop for a single line.
// After this many version conflicts on the same product the placement fails
// with ErrStockConflict instead of spinning.
const stockRetryAttempts = 3

// OrderService handles order placement and invoice queries
type OrderService struct {
	orderRepo      ordering.OrderRepository
	productRepo    catalog.ProductRepository
	customerRepo   partner.CustomerRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	taxRate        decimal.Decimal
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo ordering.OrderRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	txScope TransactionScope,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		txScope:      txScope,
		taxRate:      ordering.DefaultTaxRate,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetTaxRate overrides the configured tax rate used for invoice totals
func (s *OrderService) SetTaxRate(rate decimal.Decimal) {
	if rate.IsNegative() {
		return
	}
	s.taxRate = rate
}

// PlaceOrder places an order atomically: every line's stock is checked before
// any is decremented, each decrement is written with an optimistic version
// check and paired with a ledger entry, and the order record is created with
// payment status Unpaid. If the customer has no shareable referral code yet,
// one is minted in the same transaction and returned.
//
// Any failure rolls the whole placement back; there is no partial fulfillment.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order must have at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		if item.Discount != nil && item.Discount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_DISCOUNT", "Item discount cannot be negative")
		}
	}
	if req.ServiceFee != nil && req.ServiceFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SERVICE_FEE", "Service fee cannot be negative")
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	var (
		placed      *ordering.Order
		mintedCode  *string
		stockEvents []shared.DomainEvent
	)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoiceNumber, err := repos.OrderRepo().GenerateInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		order, err := ordering.NewOrder(req.CustomerID, invoiceNumber, orderDate)
		if err != nil {
			return err
		}
		if req.ServiceFee != nil {
			if err := order.SetServiceFee(valueobject.NewMoneyINR(*req.ServiceFee)); err != nil {
				return err
			}
		}

		// Availability for every line is checked before any stock moves.
		products, err := s.loadProducts(ctx, repos.ProductRepo(), req.Items)
		if err != nil {
			return err
		}
		required := requiredQuantities(req.Items)
		for productID, quantity := range required {
			if product := products[productID]; !product.HasAvailable(quantity) {
				return fmt.Errorf("%w: product %s requested %d, available %d",
					shared.ErrInsufficientStock, product.SKU, quantity, product.Quantity)
			}
		}

		for _, item := range req.Items {
			product := products[item.ProductID]

			discount := decimal.Zero
			if item.Discount != nil {
				discount = *item.Discount
			}
			unitPrice := product.SellingPrice

			if _, err := order.AddItem(product.ID, product.Name, item.Quantity,
				valueobject.NewMoneyINR(unitPrice), valueobject.NewMoneyINR(discount)); err != nil {
				return err
			}

			updated, err := s.decrementWithRetry(ctx, repos.ProductRepo(), product.ID, item.Quantity)
			if err != nil {
				return err
			}
			products[item.ProductID] = updated

			entry, err := inventory.NewStockLedgerEntry(
				product.ID,
				-item.Quantity,
				inventory.EntryKindSale,
				inventory.SaleReason(invoiceNumber),
				updated.Quantity,
			)
			if err != nil {
				return err
			}
			if err := repos.LedgerRepo().Append(ctx, entry); err != nil {
				return err
			}

			stockEvents = append(stockEvents, updated.GetDomainEvents()...)
			updated.ClearDomainEvents()
		}

		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}

		if !customer.HasReferralCode() {
			code := partner.GenerateReferralCode()
			if err := customer.MintReferralCode(code); err != nil {
				return err
			}
			if err := repos.CustomerRepo().Save(ctx, customer); err != nil {
				return err
			}
			mintedCode = customer.ReferralCode
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, stockEvents)
	if s.eventPublisher != nil {
		lines, _ := ordering.NormalizeOrders([]ordering.Order{*placed}, ordering.NoCatalogLookup)
		subtotal := ordering.OrderTotals(lines, decimal.Zero).Subtotal
		_ = s.eventPublisher.Publish(ctx, ordering.NewOrderPlacedEvent(placed, subtotal))
	}

	response := ToOrderResponse(placed)
	return &PlaceOrderResponse{Order: response, NewReferralCode: mintedCode}, nil
}

// publishEvents publishes collected domain events after the transaction has
// committed; publish failures are handled by the bus, not propagated
func (s *OrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// decrementWithRetry applies an optimistic stock decrement, re-reading the
// product and re-checking availability on each version conflict. Exhausting
// the attempts surfaces ErrStockConflict.
func (s *OrderService) decrementWithRetry(ctx context.Context, repo catalog.ProductRepository, productID uuid.UUID, quantity int64) (*catalog.Product, error) {
	for attempt := 0; attempt < stockRetryAttempts; attempt++ {
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := product.Decrease(quantity); err != nil {
			return nil, err
		}
		err = repo.SaveWithLock(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	return nil, shared.ErrStockConflict
}

// loadProducts fetches every referenced product, failing when any is missing
func (s *OrderService) loadProducts(ctx context.Context, repo catalog.ProductRepository, items []PlaceOrderItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.ErrNotFound
		}
	}
	return byID, nil
}

// requiredQuantities sums requested quantities per product so duplicate lines
// for the same product are checked against stock together
func requiredQuantities(items []PlaceOrderItemInput) map[uuid.UUID]int64 {
	required := make(map[uuid.UUID]int64, len(items))
	for _, item := range items {
		required[item.ProductID] += item.Quantity
	}
	return required
}

// GetOrder retrieves a single order record by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// CanonicalLines returns the normalized lines for an invoice regardless of
// how its records are stored. Data-quality warnings are returned alongside
// the lines; they never fail the projection.
func (s *OrderService) CanonicalLines(ctx context.Context, invoiceNumber string) ([]ordering.CanonicalLine, []ordering.NormalizationWarning, error) {
	orders, err := s.orderRepo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, nil, err
	}
	if len(orders) == 0 {
		return nil, nil, shared.ErrNotFound
	}
	lines, warnings := ordering.NormalizeOrders(orders, s.catalogLookup(ctx))
	return lines, warnings, nil
}

// GetInvoice returns the merged logical invoice for an invoice number.
// Legacy flat records and itemized records produce the same view.
func (s *OrderService) GetInvoice(ctx context.Context, invoiceNumber string) (*InvoiceResponse, error) {
	orders, err := s.orderRepo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, shared.ErrNotFound
	}

	invoices := ordering.GroupByInvoice(orders, s.catalogLookup(ctx), s.taxRate)
	response := ToInvoiceResponse(&invoices[0])
	return &response, nil
}

// ListInvoices returns merged invoices matching the filter, most recent first
func (s *OrderService) ListInvoices(ctx context.Context, filter OrderListFilter) ([]InvoiceResponse, error) {
	domainFilter := toDomainFilter(filter)

	var (
		orders []ordering.Order
		err    error
	)
	if filter.CustomerID != nil {
		orders, err = s.orderRepo.FindByCustomer(ctx, *filter.CustomerID, domainFilter)
	} else {
		orders, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	invoices := ordering.GroupByInvoice(orders, s.catalogLookup(ctx), s.taxRate)
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}
	return responses, nil
}

// catalogLookup adapts the product repository into the normalizer's name
// lookup. Lookup misses degrade to the fallback name, never to an error.
func (s *OrderService) catalogLookup(ctx context.Context) ordering.ProductNameLookup {
	cache := make(map[uuid.UUID]string)
	return func(productID uuid.UUID) (string, bool) {
		if name, ok := cache[productID]; ok {
			return name, name != ""
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			cache[productID] = ""
			return "", false
		}
		cache[productID] = product.Name
		return product.Name, true
	}
}

func toDomainFilter(filter OrderListFilter) shared.Filter {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters = map[string]interface{}{"payment_status": filter.PaymentStatus}
	}
	return domainFilter
}
