package partner

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReferralCode produces a new shareable code candidate. Uniqueness is
// enforced by the database index on customers.referral_code; callers retry on
// the (unlikely) collision.
func GenerateReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return raw[:8]
}
