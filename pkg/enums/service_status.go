package enums

import "fmt"

// ServiceStatus is the combined status label derived from admin override,
// activity flag, period history and end date. First-match classification lives
// in internal/status.
type ServiceStatus string

const (
	ServiceStatusSuspended      ServiceStatus = "suspended"
	ServiceStatusInactive       ServiceStatus = "inactive"
	ServiceStatusNoPeriods      ServiceStatus = "no_periods"
	ServiceStatusPendingPayment ServiceStatus = "pending_payment"
	ServiceStatusExpired        ServiceStatus = "expired"
	ServiceStatusExpiringSoon   ServiceStatus = "expiring_soon"
	ServiceStatusRenewalDue     ServiceStatus = "renewal_due"
	ServiceStatusActive         ServiceStatus = "active"
)

var validServiceStatuses = []ServiceStatus{
	ServiceStatusSuspended,
	ServiceStatusInactive,
	ServiceStatusNoPeriods,
	ServiceStatusPendingPayment,
	ServiceStatusExpired,
	ServiceStatusExpiringSoon,
	ServiceStatusRenewalDue,
	ServiceStatusActive,
}

// String implements fmt.Stringer.
func (s ServiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ServiceStatus) IsValid() bool {
	for _, candidate := range validServiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceStatus converts raw input into a ServiceStatus.
func ParseServiceStatus(value string) (ServiceStatus, error) {
	for _, candidate := range validServiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service status %q", value)
}
