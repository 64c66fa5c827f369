package status

import (
	"fmt"

	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

// Filters are the query-time status filters a caller may combine. Status is
// the legacy combined filter; the three specific filters win when both are
// supplied (they are ANDed into the query), but the combination is reported
// as incompatible.
type Filters struct {
	Status      *enums.ServiceStatus
	Operational *enums.OperationalStatus
	Payment     string
	Renewal     *enums.RenewalStatus
}

// ActiveFilter describes one applied filter for summary rendering.
type ActiveFilter struct {
	Key   string
	Value string
	Label string
}

// semanticConflicts lists (general status, renewal status) pairs that
// contradict each other even though both values validate individually.
var semanticConflicts = map[enums.ServiceStatus][]enums.RenewalStatus{
	enums.ServiceStatusActive:       {enums.RenewalStatusExpiringSoon, enums.RenewalStatusRenewalDue},
	enums.ServiceStatusExpired:      {enums.RenewalStatusActiveLongTerm},
	enums.ServiceStatusExpiringSoon: {enums.RenewalStatusActiveLongTerm},
	enums.ServiceStatusRenewalDue:   {enums.RenewalStatusExpired},
}

var legacyStatusLabels = map[enums.ServiceStatus]string{
	enums.ServiceStatusActive:       "Al día (>30 días)",
	enums.ServiceStatusRenewalDue:   "Pendiente renovación (7-30 días)",
	enums.ServiceStatusExpiringSoon: "Vence pronto (<7 días)",
	enums.ServiceStatusExpired:      "Vencido",
	enums.ServiceStatusSuspended:    "Suspendido",
	enums.ServiceStatusInactive:     "Inactivo",
}

var operationalLabels = map[enums.OperationalStatus]string{
	enums.OperationalStatusActive:    "Operacional activo",
	enums.OperationalStatusSuspended: "Operacional suspendido",
	enums.OperationalStatusInactive:  "Operacional inactivo",
}

var paymentFilterLabels = map[string]string{
	string(enums.PeriodStatusPaid):          "Pagos al día",
	string(enums.PeriodStatusAwaitingStart): "Pago pendiente",
	string(enums.PeriodStatusUnpaidActive):  "Sin pagar",
	string(enums.PeriodStatusOverdue):       "Pago vencido",
	enums.PaymentFilterNoPayments:           "Sin pagos",
}

var renewalLabels = map[enums.RenewalStatus]string{
	enums.RenewalStatusActiveLongTerm: "Activo a largo plazo",
	enums.RenewalStatusRenewalDue:     "Renovar pronto",
	enums.RenewalStatusExpiringSoon:   "Vence pronto",
	enums.RenewalStatusExpired:        "Vencido",
}

// AreCompatible reports whether the filter set is free of conflicts.
func AreCompatible(f Filters) bool {
	return len(Conflicts(f)) == 0
}

// Conflicts returns human-readable messages for every conflicting combination
// in the filter set.
func Conflicts(f Filters) []string {
	var conflicts []string

	if f.Status != nil && (f.Operational != nil || f.Payment != "" || f.Renewal != nil) {
		conflicts = append(conflicts,
			"Se está usando tanto el filtro general como filtros específicos. "+
				"Los filtros específicos pueden sobrescribir el comportamiento del filtro general.")
	}

	if f.Status != nil && f.Renewal != nil {
		for _, renewal := range semanticConflicts[*f.Status] {
			if renewal == *f.Renewal {
				conflicts = append(conflicts, fmt.Sprintf(
					"El filtro general %q puede no ser compatible con el filtro de renovación %q.",
					*f.Status, *f.Renewal))
				break
			}
		}
	}

	return conflicts
}

// FilterSummary lists the applied filters with their localized labels.
func FilterSummary(f Filters) []ActiveFilter {
	var active []ActiveFilter

	if f.Status != nil {
		active = append(active, ActiveFilter{
			Key:   "status",
			Value: f.Status.String(),
			Label: labelOr(legacyStatusLabels[*f.Status], f.Status.String()),
		})
	}
	if f.Operational != nil {
		active = append(active, ActiveFilter{
			Key:   "operational_status",
			Value: f.Operational.String(),
			Label: labelOr(operationalLabels[*f.Operational], f.Operational.String()),
		})
	}
	if f.Payment != "" {
		active = append(active, ActiveFilter{
			Key:   "payment_status",
			Value: f.Payment,
			Label: labelOr(paymentFilterLabels[f.Payment], f.Payment),
		})
	}
	if f.Renewal != nil {
		active = append(active, ActiveFilter{
			Key:   "renewal_status",
			Value: f.Renewal.String(),
			Label: labelOr(renewalLabels[*f.Renewal], f.Renewal.String()),
		})
	}

	return active
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
