// Package reactivation classifies clients by how recently they stopped
// contracting services, so commercial follow-up can prioritize warm leads.
package reactivation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/clients"
	"github.com/gestorialabs/gestoria-backend/pkg/dates"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
)

// RecentlyInactiveDays is the window inside which an inactive client still
// counts as a warm reactivation lead.
const RecentlyInactiveDays = 90

// ClientStatus is the advisory result for one client. LastService is set for
// inactive clients so the contracting form can be pre-filled.
type ClientStatus struct {
	Status        enums.ReactivationStatus
	Label         string
	Description   string
	Action        string
	Badge         string
	DaysSinceLast int
	LastService   *models.ClientService
}

// Tally counts clients per bucket for the dashboard widget.
type Tally map[enums.ReactivationStatus]int

// Service advises on client reactivation.
type Service interface {
	GetClientStatus(ctx context.Context, clientID uuid.UUID) (*ClientStatus, error)
	ShouldPrefillFrom(status *ClientStatus) *models.ClientService
	GetClientsByStatus(ctx context.Context, clientIDs []uuid.UUID) (Tally, error)
}

// ServiceParams configure the reactivation service.
type ServiceParams struct {
	Logger  *logger.Logger
	Clients clients.Repository
	Now     func() time.Time
}

type service struct {
	logg    *logger.Logger
	clients clients.Repository
	now     func() time.Time
}

// NewService builds a reactivation advisor.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{logg: params.Logger, clients: params.Clients, now: now}, nil
}

// GetClientStatus classifies one client. Any active service wins; otherwise
// the age of the most recent ended service decides between the warm and cold
// buckets. A client with no history at all is simply new.
func (s *service) GetClientStatus(ctx context.Context, clientID uuid.UUID) (*ClientStatus, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}

	latest, err := s.clients.FindLatestService(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find latest service")
	}
	if latest == nil {
		return statusNew(), nil
	}

	summaries, err := s.clients.ServiceSummaries(ctx, []uuid.UUID{clientID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize services")
	}
	summary := summaries[clientID]
	if summary.ActiveCount > 0 {
		return statusActive(), nil
	}

	// open-ended but inactive counts as just ended
	daysSince := 0
	if latest.EndDate != nil {
		daysSince = dates.DaysBetween(*latest.EndDate, s.now())
		if daysSince < 0 {
			daysSince = 0
		}
	}
	if daysSince <= RecentlyInactiveDays {
		return statusRecentlyInactive(daysSince, latest), nil
	}
	return statusLongInactive(daysSince, latest), nil
}

// ShouldPrefillFrom returns the service to copy into a new contracting form,
// or nil when starting from scratch is more appropriate.
func (s *service) ShouldPrefillFrom(status *ClientStatus) *models.ClientService {
	if status == nil {
		return nil
	}
	switch status.Status {
	case enums.ReactivationStatusRecentlyInactive, enums.ReactivationStatusLongInactive:
		return status.LastService
	}
	return nil
}

// GetClientsByStatus tallies the buckets for a set of clients in two queries.
func (s *service) GetClientsByStatus(ctx context.Context, clientIDs []uuid.UUID) (Tally, error) {
	tally := Tally{}
	if len(clientIDs) == 0 {
		return tally, nil
	}

	summaries, err := s.clients.ServiceSummaries(ctx, clientIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize services")
	}

	today := s.now()
	for _, id := range clientIDs {
		summary, ok := summaries[id]
		switch {
		case !ok || summary.TotalServices == 0:
			tally[enums.ReactivationStatusNew]++
		case summary.ActiveCount > 0:
			tally[enums.ReactivationStatusActive]++
		case summary.OpenEndedCount > 0 || summary.LatestEndDate == nil:
			// inactive without an end date counts as just ended
			tally[enums.ReactivationStatusRecentlyInactive]++
		case dates.DaysBetween(*summary.LatestEndDate, today) <= RecentlyInactiveDays:
			tally[enums.ReactivationStatusRecentlyInactive]++
		default:
			tally[enums.ReactivationStatusLongInactive]++
		}
	}
	return tally, nil
}

func statusActive() *ClientStatus {
	return &ClientStatus{
		Status:      enums.ReactivationStatusActive,
		Label:       "Cliente activo",
		Description: "El cliente tiene servicios activos actualmente",
		Action:      "Contratar servicio adicional",
		Badge:       "bg-green-100 text-green-800",
	}
}

func statusNew() *ClientStatus {
	return &ClientStatus{
		Status:      enums.ReactivationStatusNew,
		Label:       "Cliente nuevo",
		Description: "El cliente nunca ha contratado un servicio",
		Action:      "Contratar primer servicio",
		Badge:       "bg-blue-100 text-blue-800",
	}
}

func statusRecentlyInactive(daysSince int, last *models.ClientService) *ClientStatus {
	return &ClientStatus{
		Status:        enums.ReactivationStatusRecentlyInactive,
		Label:         "Inactivo reciente",
		Description:   fmt.Sprintf("El último servicio finalizó hace %d días", daysSince),
		Action:        "Reactivar con datos del último servicio",
		Badge:         "bg-yellow-100 text-yellow-800",
		DaysSinceLast: daysSince,
		LastService:   last,
	}
}

func statusLongInactive(daysSince int, last *models.ClientService) *ClientStatus {
	return &ClientStatus{
		Status:        enums.ReactivationStatusLongInactive,
		Label:         "Inactivo",
		Description:   fmt.Sprintf("El último servicio finalizó hace %d días", daysSince),
		Action:        "Contratar como cliente nuevo",
		Badge:         "bg-gray-100 text-gray-800",
		DaysSinceLast: daysSince,
		LastService:   last,
	}
}
