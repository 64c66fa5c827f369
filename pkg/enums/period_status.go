package enums

import "fmt"

// PeriodStatus tracks the payment state of one billing period.
//
// PERIOD_CREATED and AWAITING_START both describe a period registered without
// a payment yet; the former predates the latter and is kept so historical rows
// keep classifying as usable history.
type PeriodStatus string

const (
	PeriodStatusCreated       PeriodStatus = "PERIOD_CREATED"
	PeriodStatusAwaitingStart PeriodStatus = "AWAITING_START"
	PeriodStatusUnpaidActive  PeriodStatus = "UNPAID_ACTIVE"
	PeriodStatusPaid          PeriodStatus = "PAID"
	PeriodStatusOverdue       PeriodStatus = "OVERDUE"
	PeriodStatusRefunded      PeriodStatus = "REFUNDED"
)

var validPeriodStatuses = []PeriodStatus{
	PeriodStatusCreated,
	PeriodStatusAwaitingStart,
	PeriodStatusUnpaidActive,
	PeriodStatusPaid,
	PeriodStatusOverdue,
	PeriodStatusRefunded,
}

// PendingPeriodStatuses are the statuses of periods that exist on the timeline
// but have not been settled yet.
func PendingPeriodStatuses() []PeriodStatus {
	return []PeriodStatus{
		PeriodStatusCreated,
		PeriodStatusAwaitingStart,
		PeriodStatusUnpaidActive,
	}
}

// CreatedPeriodStatuses are the statuses that count as "created" periods when
// bounding a termination date: future or running periods plus settled ones.
func CreatedPeriodStatuses() []PeriodStatus {
	return []PeriodStatus{
		PeriodStatusAwaitingStart,
		PeriodStatusUnpaidActive,
		PeriodStatusPaid,
	}
}

// UsableHistoryStatuses mark periods that count as usable payment history when
// classifying a service.
func UsableHistoryStatuses() []PeriodStatus {
	return []PeriodStatus{
		PeriodStatusPaid,
		PeriodStatusUnpaidActive,
		PeriodStatusCreated,
	}
}

// String implements fmt.Stringer.
func (s PeriodStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s PeriodStatus) IsValid() bool {
	for _, candidate := range validPeriodStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePeriodStatus converts raw input into a PeriodStatus.
func ParsePeriodStatus(value string) (PeriodStatus, error) {
	for _, candidate := range validPeriodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid period status %q", value)
}
