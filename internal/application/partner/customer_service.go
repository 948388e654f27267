package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/partner"
	"github.com/shopstack/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// Create creates a new customer. A supplied referrer code must resolve to an
// existing customer's shareable code and cannot be the customer's own.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.ReferrerCode != nil {
		if _, err := s.customerRepo.FindByReferralCode(ctx, *req.ReferrerCode); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("UNKNOWN_REFERRER_CODE", "Referrer code does not belong to any customer")
			}
			return nil, err
		}
	}

	customer, err := partner.NewCustomer(req.Name, req.Phone, req.Email, req.Address, req.ReferrerCode)
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// UpdateContact updates a customer's contact details
func (s *CustomerService) UpdateContact(ctx context.Context, id uuid.UUID, req UpdateCustomerContactRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.UpdateContact(req.Phone, req.Email, req.Address)

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List returns customers matching the filter
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[CustomerResponse], error) {
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize), nil
}
