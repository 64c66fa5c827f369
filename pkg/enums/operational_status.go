package enums

import "fmt"

// OperationalStatus filters services purely by admin override and activity
// flag, ignoring dates and payments.
type OperationalStatus string

const (
	OperationalStatusActive    OperationalStatus = "active"
	OperationalStatusInactive  OperationalStatus = "inactive"
	OperationalStatusSuspended OperationalStatus = "suspended"
)

var validOperationalStatuses = []OperationalStatus{
	OperationalStatusActive,
	OperationalStatusInactive,
	OperationalStatusSuspended,
}

// String implements fmt.Stringer.
func (s OperationalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s OperationalStatus) IsValid() bool {
	for _, candidate := range validOperationalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOperationalStatus converts raw input into an OperationalStatus.
func ParseOperationalStatus(value string) (OperationalStatus, error) {
	for _, candidate := range validOperationalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operational status %q", value)
}
