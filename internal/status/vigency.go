package status

import (
	"time"

	"github.com/gestorialabs/gestoria-backend/pkg/dates"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
)

// DiscrepancyType names the direction of a vigency mismatch.
type DiscrepancyType string

const (
	// DiscrepancyEarlyTermination means the declared end date falls before the
	// last paid period end, leaving paid time unused.
	DiscrepancyEarlyTermination DiscrepancyType = "early_termination"
	// DiscrepancyLatePayment means a payment covers time beyond the declared
	// end date.
	DiscrepancyLatePayment DiscrepancyType = "late_payment"
)

// VigencyInfo surfaces the relation between the declared end date and the
// paid timeline. Mismatches are reported, never resolved.
type VigencyInfo struct {
	EndDate          *time.Time
	PaidEndDate      *time.Time
	EffectiveEndDate *time.Time
	HasPaidPeriods   bool
	HasDiscrepancy   bool
	DiscrepancyType  DiscrepancyType
	DiscrepancyDays  int
}

// Vigency computes the vigency info for a service from its periods.
func Vigency(svc *models.ClientService, periods []models.ServicePeriod) VigencyInfo {
	paidEnd := lastPaidEnd(periods)

	info := VigencyInfo{
		EndDate:          svc.EndDate,
		PaidEndDate:      paidEnd,
		EffectiveEndDate: EffectiveEndDate(svc, periods),
		HasPaidPeriods:   paidEnd != nil,
	}

	if svc.EndDate != nil && paidEnd != nil && !svc.EndDate.Equal(*paidEnd) {
		info.HasDiscrepancy = true
		info.DiscrepancyDays = dates.DaysBetween(*svc.EndDate, *paidEnd)
		if info.DiscrepancyDays < 0 {
			info.DiscrepancyDays = -info.DiscrepancyDays
		}
		if svc.EndDate.Before(*paidEnd) {
			info.DiscrepancyType = DiscrepancyEarlyTermination
		} else {
			info.DiscrepancyType = DiscrepancyLatePayment
		}
	}

	return info
}
