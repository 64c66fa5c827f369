// Package status derives service statuses from dates and period history.
// Everything in here is a pure function of its inputs so callers can classify
// in bulk without extra queries.
package status

import (
	"time"

	"github.com/gestorialabs/gestoria-backend/pkg/dates"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

const (
	// ExpiringSoonDays is the upper bound of the "expiring soon" window.
	ExpiringSoonDays = 7
	// RenewalDueDays is the upper bound of the "renewal due" window.
	RenewalDueDays = 30
)

// Classify derives the combined status of a service. Rules are evaluated in
// order and the first match wins: administrative suspension, then the active
// flag, then period history, then the date buckets.
func Classify(svc *models.ClientService, periods []models.ServicePeriod, today time.Time) enums.ServiceStatus {
	if svc.AdminStatus == enums.AdminStatusSuspended {
		return enums.ServiceStatusSuspended
	}
	if !svc.IsActive {
		return enums.ServiceStatusInactive
	}
	if len(periods) == 0 {
		return enums.ServiceStatusNoPeriods
	}
	if !hasUsableHistory(periods) {
		return enums.ServiceStatusPendingPayment
	}

	daysLeft, bounded := DaysLeft(svc, today)
	if !bounded {
		return enums.ServiceStatusActive
	}
	switch {
	case daysLeft < 0:
		return enums.ServiceStatusExpired
	case daysLeft <= ExpiringSoonDays:
		return enums.ServiceStatusExpiringSoon
	case daysLeft <= RenewalDueDays:
		return enums.ServiceStatusRenewalDue
	default:
		return enums.ServiceStatusActive
	}
}

// DaysLeft returns the whole days between today and the service end date.
// The second return is false for open-ended services.
func DaysLeft(svc *models.ClientService, today time.Time) (int, bool) {
	if svc.EndDate == nil {
		return 0, false
	}
	return dates.DaysBetween(today, *svc.EndDate), true
}

// OperationalOf is the query-time operational predicate: admin override first,
// then the active flag. It ignores dates entirely.
func OperationalOf(svc *models.ClientService) enums.OperationalStatus {
	if svc.AdminStatus == enums.AdminStatusSuspended {
		return enums.OperationalStatusSuspended
	}
	if svc.IsActive {
		return enums.OperationalStatusActive
	}
	return enums.OperationalStatusInactive
}

// PaymentOf returns the status of the period ending last. The second return is
// false when the service has no periods, which callers render with the
// no_payments sentinel.
func PaymentOf(periods []models.ServicePeriod) (enums.PeriodStatus, bool) {
	if len(periods) == 0 {
		return "", false
	}
	latest := periods[0]
	for _, period := range periods[1:] {
		if period.PeriodEnd.After(latest.PeriodEnd) {
			latest = period
		}
	}
	return latest.Status, true
}

// RenewalOf is the purely date-driven predicate. It ignores the admin override
// and the active flag; open-ended services always count as long-term active.
func RenewalOf(svc *models.ClientService, today time.Time) enums.RenewalStatus {
	daysLeft, bounded := DaysLeft(svc, today)
	if !bounded {
		return enums.RenewalStatusActiveLongTerm
	}
	switch {
	case daysLeft < 0:
		return enums.RenewalStatusExpired
	case daysLeft <= ExpiringSoonDays:
		return enums.RenewalStatusExpiringSoon
	case daysLeft <= RenewalDueDays:
		return enums.RenewalStatusRenewalDue
	default:
		return enums.RenewalStatusActiveLongTerm
	}
}

// EffectiveEndDate is the later of the declared end date and the last paid
// period end. Nil when neither exists.
func EffectiveEndDate(svc *models.ClientService, periods []models.ServicePeriod) *time.Time {
	paidEnd := lastPaidEnd(periods)
	switch {
	case svc.EndDate == nil:
		return paidEnd
	case paidEnd == nil:
		return svc.EndDate
	case paidEnd.After(*svc.EndDate):
		return paidEnd
	default:
		return svc.EndDate
	}
}

func hasUsableHistory(periods []models.ServicePeriod) bool {
	usable := enums.UsableHistoryStatuses()
	for _, period := range periods {
		for _, status := range usable {
			if period.Status == status {
				return true
			}
		}
	}
	return false
}

func lastPaidEnd(periods []models.ServicePeriod) *time.Time {
	var last *time.Time
	for i := range periods {
		if periods[i].Status != enums.PeriodStatusPaid {
			continue
		}
		if last == nil || periods[i].PeriodEnd.After(*last) {
			end := periods[i].PeriodEnd
			last = &end
		}
	}
	return last
}
