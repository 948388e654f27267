package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Customer is the aggregate root for customer records.
//
// ReferralCode is the customer's own shareable code. It is minted lazily: the
// engine assigns it the first time it observes an order for a customer that
// has none yet, and never re-mints. ReferrerCode is the code supplied when the
// customer was created, linking them to the customer who referred them.
type Customer struct {
	shared.BaseAggregateRoot
	Name         string  `gorm:"type:varchar(200);not null"`
	Phone        string  `gorm:"type:varchar(50);index"`
	Email        string  `gorm:"type:varchar(200);index"`
	Address      string  `gorm:"type:text"`
	ReferralCode *string `gorm:"type:varchar(20);uniqueIndex"`
	ReferrerCode *string `gorm:"type:varchar(20);index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

var referralCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,20}$`)

// NewCustomer creates a new customer. referrerCode is optional; when present
// it must look like a referral code, but whether it resolves to an existing
// customer is checked at reward time, not here.
func NewCustomer(name, phone, email, address string, referrerCode *string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	if referrerCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*referrerCode))
		if !referralCodePattern.MatchString(code) {
			return nil, shared.NewDomainError("INVALID_REFERRER_CODE", "Referrer code has an invalid format")
		}
		referrerCode = &code
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Email:             email,
		Address:           address,
		ReferrerCode:      referrerCode,
	}, nil
}

// HasReferralCode reports whether this customer's own code has been minted
func (c *Customer) HasReferralCode() bool {
	return c.ReferralCode != nil && *c.ReferralCode != ""
}

// MintReferralCode assigns the customer's own shareable code, exactly once.
// A second call fails with ErrReferralCodeAssigned.
func (c *Customer) MintReferralCode(code string) error {
	if c.HasReferralCode() {
		return shared.ErrReferralCodeAssigned
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !referralCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code has an invalid format")
	}

	c.ReferralCode = &code
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// UpdateContact updates the customer's contact fields
func (c *Customer) UpdateContact(phone, email, address string) {
	c.Phone = phone
	c.Email = email
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// WasReferred reports whether the customer was created with a referrer code
func (c *Customer) WasReferred() bool {
	return c.ReferrerCode != nil && *c.ReferrerCode != ""
}
