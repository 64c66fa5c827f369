package enums

import "fmt"

// ReactivationStatus buckets a client by engagement for re-engagement prompts.
type ReactivationStatus string

const (
	ReactivationStatusActive           ReactivationStatus = "active"
	ReactivationStatusNew              ReactivationStatus = "new"
	ReactivationStatusRecentlyInactive ReactivationStatus = "recently_inactive"
	ReactivationStatusLongInactive     ReactivationStatus = "long_inactive"
)

var validReactivationStatuses = []ReactivationStatus{
	ReactivationStatusActive,
	ReactivationStatusNew,
	ReactivationStatusRecentlyInactive,
	ReactivationStatusLongInactive,
}

// String implements fmt.Stringer.
func (s ReactivationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ReactivationStatus) IsValid() bool {
	for _, candidate := range validReactivationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReactivationStatus converts raw input into a ReactivationStatus.
func ParseReactivationStatus(value string) (ReactivationStatus, error) {
	for _, candidate := range validReactivationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reactivation status %q", value)
}
