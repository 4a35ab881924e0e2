package domain

import "fmt"

// DefaultTenantID is used when an upload names no tenant.
const DefaultTenantID = "default"

// MaxTenantIDLength bounds tenant identifiers.
const MaxTenantIDLength = 64

// ValidateTenantID checks that id is 1 to MaxTenantIDLength characters drawn
// from letters, digits, hyphen and underscore.
func ValidateTenantID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTenant)
	}
	if len(id) > MaxTenantIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidTenant, MaxTenantIDLength)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidTenant, c)
		}
	}
	return nil
}
