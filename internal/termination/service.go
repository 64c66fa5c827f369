package termination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/notes"
	"github.com/gestorialabs/gestoria-backend/internal/periods"
	"github.com/gestorialabs/gestoria-backend/internal/services"
	"github.com/gestorialabs/gestoria-backend/pkg/dates"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service ends client services early, rewriting their period timeline
// atomically.
type Service interface {
	Terminate(ctx context.Context, serviceID uuid.UUID, input TerminateInput) (*models.ClientService, error)
	CanTerminate(ctx context.Context, serviceID uuid.UUID) (bool, error)
	GetLimits(ctx context.Context, serviceID uuid.UUID) (*DateLimits, error)
	AffectedPeriodsInfo(ctx context.Context, serviceID uuid.UUID, terminationDate time.Time) (*AffectedInfo, error)
}

// TerminateInput carries the optional termination date and reason. A nil date
// defaults to today.
type TerminateInput struct {
	Date   *time.Time
	Reason string
}

// DateLimits bounds the date picker for a termination without attempting the
// mutation.
type DateLimits struct {
	MinDate        time.Time
	MaxDate        *time.Time
	HasPaidPeriods bool
	LastPaidDate   *time.Time
}

// AffectedInfo is the pre-flight count of periods a termination would touch.
type AffectedInfo struct {
	FuturePeriods     []models.ServicePeriod
	AdjustablePeriods []models.ServicePeriod
	FutureCount       int
	AdjustableCount   int
	TotalAffected     int
}

// ServiceParams configure the termination service.
type ServiceParams struct {
	Logger   *logger.Logger
	Services services.Repository
	Periods  periods.Repository
	Tx       txRunner
	Now      func() time.Time
}

type service struct {
	logg     *logger.Logger
	services services.Repository
	periods  periods.Repository
	tx       txRunner
	now      func() time.Time
}

// NewService builds a termination service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("services repository required")
	}
	if params.Periods == nil {
		return nil, fmt.Errorf("period repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:     params.Logger,
		services: params.Services,
		periods:  params.Periods,
		tx:       params.Tx,
		now:      now,
	}, nil
}

// Terminate validates and applies an early termination. The whole rewrite
// runs in one transaction with the service row locked, so a concurrent
// attempt sees the updated state and fails its precondition instead of
// corrupting the timeline.
func (s *service) Terminate(ctx context.Context, serviceID uuid.UUID, input TerminateInput) (*models.ClientService, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}

	var terminated *models.ClientService
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		svcRepo := s.services.WithTx(tx)
		periodRepo := s.periods.WithTx(tx)

		svc, err := svcRepo.FindByIDForUpdate(ctx, serviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}

		today := dates.DateOnly(s.now())
		if !svc.IsActive {
			return errAlreadyInactive()
		}
		if svc.EndDate != nil && svc.EndDate.Before(today) {
			return errAlreadyTerminated()
		}

		terminationDate := today
		if input.Date != nil {
			terminationDate = dates.DateOnly(*input.Date)
		}

		if err := s.validateDate(ctx, periodRepo, svc, terminationDate); err != nil {
			return err
		}

		// fully future periods never began; drop them outright
		if _, err := periodRepo.DeleteStartingAfter(ctx, serviceID, terminationDate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete future periods")
		}
		// the period straddling the cut keeps its start and loses its tail
		if _, err := periodRepo.TruncateStraddling(ctx, serviceID, terminationDate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "truncate straddling period")
		}
		// safety sweep for anything the two passes missed
		remaining, err := periodRepo.ListEndingAfter(ctx, serviceID, terminationDate)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan remaining periods")
		}
		for i := range remaining {
			period := remaining[i]
			if period.PeriodStart.After(terminationDate) {
				if err := periodRepo.Delete(ctx, period.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete remaining period")
				}
				continue
			}
			period.PeriodEnd = terminationDate
			if err := periodRepo.Update(ctx, &period); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "truncate remaining period")
			}
		}

		end := terminationDate
		svc.EndDate = &end
		if !terminationDate.After(today) {
			svc.IsActive = false
		}
		if input.Reason != "" {
			note := fmt.Sprintf("Servicio finalizado el %s - Motivo: %s",
				terminationDate.Format("02/01/2006"), input.Reason)
			svc.Notes = notes.AddNote(svc.Notes, note)
		}
		if err := svcRepo.Update(ctx, svc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service")
		}

		terminated = svc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithServiceID(ctx, serviceID.String())
	s.logg.Info(logCtx, "service terminated")
	return terminated, nil
}

// CanTerminate is the pure precondition check, reusable before offering the
// termination action at all.
func (s *service) CanTerminate(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	if !svc.IsActive {
		return false, nil
	}
	today := dates.DateOnly(s.now())
	if svc.EndDate != nil && svc.EndDate.Before(today) {
		return false, nil
	}
	return true, nil
}

// GetLimits exposes the valid termination window for a service.
func (s *service) GetLimits(ctx context.Context, serviceID uuid.UUID) (*DateLimits, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	limits := &DateLimits{
		MinDate: svc.StartDate.AddDate(0, 0, 1),
	}

	lastCreated, err := s.periods.LatestByStatuses(ctx, serviceID, enums.CreatedPeriodStatuses())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find last created period")
	}
	if lastCreated != nil {
		maxDate := lastCreated.PeriodEnd
		limits.MaxDate = &maxDate
	}

	lastPaid, err := s.periods.LatestByStatuses(ctx, serviceID, []enums.PeriodStatus{enums.PeriodStatusPaid})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find last paid period")
	}
	if lastPaid != nil {
		limits.HasPaidPeriods = true
		lastPaidDate := lastPaid.PeriodEnd
		limits.LastPaidDate = &lastPaidDate
	}

	return limits, nil
}

// AffectedPeriodsInfo reports what a termination at the given date would
// delete and truncate, for pre-flight confirmation dialogs.
func (s *service) AffectedPeriodsInfo(ctx context.Context, serviceID uuid.UUID, terminationDate time.Time) (*AffectedInfo, error) {
	rows, err := s.periods.ListByService(ctx, serviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list periods")
	}

	cutoff := dates.DateOnly(terminationDate)
	info := &AffectedInfo{}
	for _, period := range rows {
		switch {
		case period.PeriodStart.After(cutoff):
			info.FuturePeriods = append(info.FuturePeriods, period)
		case period.PeriodEnd.After(cutoff):
			info.AdjustablePeriods = append(info.AdjustablePeriods, period)
		}
	}
	info.FutureCount = len(info.FuturePeriods)
	info.AdjustableCount = len(info.AdjustablePeriods)
	info.TotalAffected = info.FutureCount + info.AdjustableCount
	return info, nil
}

func (s *service) validateDate(ctx context.Context, periodRepo periods.Repository, svc *models.ClientService, terminationDate time.Time) error {
	if !terminationDate.After(svc.StartDate) {
		return errDateBeforeStart(svc.StartDate)
	}

	lastCreated, err := periodRepo.LatestByStatuses(ctx, svc.ID, enums.CreatedPeriodStatuses())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find last created period")
	}
	if lastCreated != nil && terminationDate.After(lastCreated.PeriodEnd) {
		return errDateBeyondLastPeriod(lastCreated.PeriodEnd)
	}
	return nil
}
