package status

import (
	"fmt"

	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

// DisplayData pairs a localized label with a CSS class tag.
type DisplayData struct {
	Label string
	Class string
}

const fallbackClass = "bg-gray-100 text-gray-800"

var serviceStatusLabels = map[enums.ServiceStatus]string{
	enums.ServiceStatusActive:         "Activo",
	enums.ServiceStatusNoPeriods:      "Sin períodos",
	enums.ServiceStatusPendingPayment: "Pendiente de pago",
	enums.ServiceStatusRenewalDue:     "Renovar pronto",
	enums.ServiceStatusExpiringSoon:   "Vence pronto",
	enums.ServiceStatusExpired:        "Vencido",
	enums.ServiceStatusInactive:       "Pausado",
	enums.ServiceStatusSuspended:      "Suspendido",
}

var serviceStatusClasses = map[enums.ServiceStatus]string{
	enums.ServiceStatusActive:         "bg-green-100 text-green-800",
	enums.ServiceStatusNoPeriods:      "bg-slate-100 text-slate-800",
	enums.ServiceStatusPendingPayment: "bg-blue-100 text-blue-800",
	enums.ServiceStatusRenewalDue:     "bg-yellow-100 text-yellow-800",
	enums.ServiceStatusExpiringSoon:   "bg-orange-100 text-orange-800",
	enums.ServiceStatusExpired:        "bg-red-100 text-red-800",
	enums.ServiceStatusInactive:       "bg-gray-100 text-gray-800",
	enums.ServiceStatusSuspended:      "bg-red-100 text-red-800",
}

var periodStatusLabels = map[enums.PeriodStatus]string{
	enums.PeriodStatusCreated:       "Período creado",
	enums.PeriodStatusAwaitingStart: "Pendiente de pago",
	enums.PeriodStatusUnpaidActive:  "Sin pagar",
	enums.PeriodStatusPaid:          "Pagado",
	enums.PeriodStatusOverdue:       "Vencido",
	enums.PeriodStatusRefunded:      "Reembolsado",
}

var periodStatusClasses = map[enums.PeriodStatus]string{
	enums.PeriodStatusCreated:       "bg-slate-100 text-slate-800",
	enums.PeriodStatusAwaitingStart: "bg-blue-100 text-blue-800",
	enums.PeriodStatusUnpaidActive:  "bg-orange-100 text-orange-800",
	enums.PeriodStatusPaid:          "bg-green-100 text-green-800",
	enums.PeriodStatusOverdue:       "bg-red-100 text-red-800",
	enums.PeriodStatusRefunded:      "bg-purple-100 text-purple-800",
}

// ServiceStatusDisplay maps a combined status to its label and class. When
// daysLeft is provided the date-adjacent labels interpolate the day count.
// Day zero renders as "Vence hoy" under expiring_soon; a service only reads
// as expired once the end date is strictly in the past.
func ServiceStatusDisplay(status enums.ServiceStatus, daysLeft *int) DisplayData {
	label, ok := serviceStatusLabels[status]
	if !ok {
		label = status.String()
	}

	if daysLeft != nil {
		switch status {
		case enums.ServiceStatusRenewalDue:
			if *daysLeft > 0 {
				label = fmt.Sprintf("Renovar en %d días", *daysLeft)
			}
		case enums.ServiceStatusExpiringSoon:
			if *daysLeft > 0 {
				label = fmt.Sprintf("Vence en %d días", *daysLeft)
			} else {
				label = "Vence hoy"
			}
		case enums.ServiceStatusExpired:
			if *daysLeft < 0 {
				label = fmt.Sprintf("Vencido hace %d días", -*daysLeft)
			}
		}
	}

	class, ok := serviceStatusClasses[status]
	if !ok {
		class = fallbackClass
	}
	return DisplayData{Label: label, Class: class}
}

// PeriodStatusDisplay maps a period payment status to its label and class.
func PeriodStatusDisplay(status enums.PeriodStatus) DisplayData {
	label, ok := periodStatusLabels[status]
	if !ok {
		label = status.String()
	}
	class, ok := periodStatusClasses[status]
	if !ok {
		class = fallbackClass
	}
	return DisplayData{Label: label, Class: class}
}
