package enums

import "fmt"

// RenewalStatus is the date-driven classification of a service relative to its
// end date. It ignores the admin override and the activity flag.
type RenewalStatus string

const (
	RenewalStatusActiveLongTerm RenewalStatus = "active_long_term"
	RenewalStatusRenewalDue     RenewalStatus = "renewal_due"
	RenewalStatusExpiringSoon   RenewalStatus = "expiring_soon"
	RenewalStatusExpired        RenewalStatus = "expired"
)

var validRenewalStatuses = []RenewalStatus{
	RenewalStatusActiveLongTerm,
	RenewalStatusRenewalDue,
	RenewalStatusExpiringSoon,
	RenewalStatusExpired,
}

// String implements fmt.Stringer.
func (s RenewalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s RenewalStatus) IsValid() bool {
	for _, candidate := range validRenewalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRenewalStatus converts raw input into a RenewalStatus.
func ParseRenewalStatus(value string) (RenewalStatus, error) {
	for _, candidate := range validRenewalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid renewal status %q", value)
}
