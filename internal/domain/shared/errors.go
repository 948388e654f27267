package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrNegativeStock        = NewDomainError("NEGATIVE_STOCK", "Adjustment would make stock negative")
	ErrStockConflict        = NewDomainError("CONCURRENT_STOCK_CONFLICT", "Stock was modified concurrently, retry exhausted")
	ErrAlreadyPaid          = NewDomainError("ALREADY_PAID", "Reward has already been paid out")
	ErrReferralCodeAssigned = NewDomainError("REFERRAL_CODE_ASSIGNED", "Customer already has a referral code")
)
