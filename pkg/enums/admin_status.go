package enums

import "fmt"

// AdminStatus is the manual enable/suspend override on a client service. It is
// independent of the date-derived operational state.
type AdminStatus string

const (
	AdminStatusEnabled   AdminStatus = "ENABLED"
	AdminStatusSuspended AdminStatus = "SUSPENDED"
)

var validAdminStatuses = []AdminStatus{
	AdminStatusEnabled,
	AdminStatusSuspended,
}

// String implements fmt.Stringer.
func (s AdminStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s AdminStatus) IsValid() bool {
	for _, candidate := range validAdminStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAdminStatus converts raw input into an AdminStatus.
func ParseAdminStatus(value string) (AdminStatus, error) {
	for _, candidate := range validAdminStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin status %q", value)
}
