package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/services"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
)

// daysPerMonth is the commercial month length used when extending by months.
const daysPerMonth = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes billing period creation and service extension semantics.
type Service interface {
	CreatePeriod(ctx context.Context, serviceID uuid.UUID, input CreatePeriodInput) (*models.ServicePeriod, error)
	ExtendServiceToDate(ctx context.Context, serviceID uuid.UUID, newEndDate time.Time, notes string) (*models.ServicePeriod, error)
	ExtendService(ctx context.Context, serviceID uuid.UUID, months int, notes string) (*models.ServicePeriod, error)
	ListPeriods(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePeriod, error)
	LastPeriod(ctx context.Context, serviceID uuid.UUID) (*models.ServicePeriod, error)
	PendingSummary(ctx context.Context, serviceID uuid.UUID) (*PendingSummary, error)
}

// CreatePeriodInput holds the values for a new billing period.
type CreatePeriodInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Notes       string
}

// PendingSummary aggregates the periods still awaiting payment.
type PendingSummary struct {
	Periods       []models.ServicePeriod
	Count         int
	TotalDays     int
	TotalMonths   float64
	TotalAmount   decimal.Decimal
	EarliestStart *time.Time
	LatestEnd     *time.Time
}

// ServiceParams configure the period service.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	Services services.Repository
	Tx       txRunner
}

type service struct {
	logg     *logger.Logger
	repo     Repository
	services services.Repository
	tx       txRunner
}

// NewService builds a period service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("period repository required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("services repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		services: params.Services,
		tx:       params.Tx,
	}, nil
}

func (s *service) CreatePeriod(ctx context.Context, serviceID uuid.UUID, input CreatePeriodInput) (*models.ServicePeriod, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	if !input.PeriodStart.Before(input.PeriodEnd) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la fecha de inicio debe ser anterior a la fecha de fin")
	}

	if _, err := s.services.FindByID(ctx, serviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	overlaps, err := s.repo.HasOverlapping(ctx, serviceID, input.PeriodStart, input.PeriodEnd, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check overlapping periods")
	}
	if overlaps {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "el período se solapa con un período existente")
	}

	period := &models.ServicePeriod{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      enums.PeriodStatusCreated,
		Notes:       input.Notes,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create period")
	}

	logCtx := s.logg.WithServiceID(ctx, serviceID.String())
	s.logg.Info(logCtx, "billing period created")
	return period, nil
}

// ExtendServiceToDate creates a period reaching newEndDate and moves the
// service end date forward. The new period starts the day after the current
// end date, or at the service start date when the service is open-ended.
func (s *service) ExtendServiceToDate(ctx context.Context, serviceID uuid.UUID, newEndDate time.Time, notes string) (*models.ServicePeriod, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}

	var created *models.ServicePeriod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		svcRepo := s.services.WithTx(tx)
		periodRepo := s.repo.WithTx(tx)

		svc, err := svcRepo.FindByIDForUpdate(ctx, serviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}

		var periodStart time.Time
		if svc.EndDate == nil {
			periodStart = svc.StartDate
		} else {
			if !newEndDate.After(*svc.EndDate) {
				return pkgerrors.New(pkgerrors.CodeValidation, "la nueva fecha de fin debe ser posterior a la fecha actual")
			}
			periodStart = svc.EndDate.AddDate(0, 0, 1)
		}
		if !periodStart.Before(newEndDate) {
			return pkgerrors.New(pkgerrors.CodeValidation, "la fecha de inicio debe ser anterior a la fecha de fin")
		}

		overlaps, err := periodRepo.HasOverlapping(ctx, serviceID, periodStart, newEndDate, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check overlapping periods")
		}
		if overlaps {
			return pkgerrors.New(pkgerrors.CodeConflict, "el período se solapa con un período existente")
		}

		period := &models.ServicePeriod{
			ID:          uuid.New(),
			ServiceID:   serviceID,
			PeriodStart: periodStart,
			PeriodEnd:   newEndDate,
			Status:      enums.PeriodStatusCreated,
			Notes:       notes,
		}
		if err := periodRepo.Create(ctx, period); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create period")
		}

		end := newEndDate
		svc.EndDate = &end
		if err := svcRepo.Update(ctx, svc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service end date")
		}

		created = period
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithServiceID(ctx, serviceID.String())
	s.logg.Info(logCtx, "service extended")
	return created, nil
}

// ExtendService extends by whole commercial months of 30 days. The new period
// covers months*30 days counted inclusively from the day after the current end.
func (s *service) ExtendService(ctx context.Context, serviceID uuid.UUID, months int, notes string) (*models.ServicePeriod, error) {
	if months <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "extension months must be positive")
	}

	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}

	currentEnd := svc.StartDate
	if svc.EndDate != nil {
		currentEnd = *svc.EndDate
	}
	newStart := currentEnd.AddDate(0, 0, 1)
	newEnd := newStart.AddDate(0, 0, months*daysPerMonth-1)

	return s.ExtendServiceToDate(ctx, serviceID, newEnd, notes)
}

func (s *service) ListPeriods(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePeriod, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	rows, err := s.repo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list periods")
	}
	return rows, nil
}

func (s *service) LastPeriod(ctx context.Context, serviceID uuid.UUID) (*models.ServicePeriod, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	period, err := s.repo.LatestByEnd(ctx, serviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find last period")
	}
	return period, nil
}

func (s *service) PendingSummary(ctx context.Context, serviceID uuid.UUID) (*PendingSummary, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}

	rows, err := s.repo.ListByStatuses(ctx, serviceID, enums.PendingPeriodStatuses())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending periods")
	}

	summary := &PendingSummary{
		Periods:     rows,
		Count:       len(rows),
		TotalAmount: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalDays += row.DurationDays()
		if row.Amount != nil {
			summary.TotalAmount = summary.TotalAmount.Add(*row.Amount)
		}
	}
	summary.TotalMonths = roundToTenth(float64(summary.TotalDays) / daysPerMonth)
	if len(rows) > 0 {
		first := rows[0].PeriodStart
		last := rows[len(rows)-1].PeriodEnd
		summary.EarliestStart = &first
		summary.LatestEnd = &last
	}
	return summary, nil
}

func roundToTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
