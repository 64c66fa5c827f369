package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/services"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
)

const defaultSweepBatchSize = 250

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TerminationSweepJobParams configure the sweep that deactivates services
// whose scheduled end date has passed.
type TerminationSweepJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Services  services.Repository
	BatchSize int
	Now       func() time.Time
}

// NewTerminationSweepJob builds the cron job that flips is_active off for
// services terminated with a future date once that date arrives.
func NewTerminationSweepJob(params TerminationSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("services repository required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &terminationSweepJob{
		logg:      params.Logger,
		db:        params.DB,
		services:  params.Services,
		batchSize: batchSize,
		now:       now,
	}, nil
}

type terminationSweepJob struct {
	logg      *logger.Logger
	db        txRunner
	services  services.Repository
	batchSize int
	now       func() time.Time
}

func (j *terminationSweepJob) Name() string { return "termination-sweep" }

// Run deactivates every due service individually so one failure does not
// block the rest of the batch.
func (j *terminationSweepJob) Run(ctx context.Context) error {
	today := j.today()
	due, err := j.services.ListDueForDeactivation(ctx, today, j.batchSize)
	if err != nil {
		return fmt.Errorf("query services due for deactivation: %w", err)
	}

	var errs []error
	count := 0
	for _, svc := range due {
		if err := j.deactivate(ctx, svc.ID, today); err != nil {
			failCtx := j.logg.WithServiceID(ctx, svc.ID.String())
			failCtx = j.logg.WithField(failCtx, "error_dump", pkgerrors.Dump(err))
			j.logg.Error(failCtx, "service deactivation failed", err)
			errs = append(errs, fmt.Errorf("deactivate service %s: %w", svc.ID, err))
			continue
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"due":         len(due),
		"deactivated": count,
	})
	j.logg.Info(logCtx, "termination sweep complete")
	return multierr.Combine(errs...)
}

func (j *terminationSweepJob) deactivate(ctx context.Context, serviceID uuid.UUID, today time.Time) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.services.WithTx(tx)
		svc, err := repo.FindByIDForUpdate(ctx, serviceID)
		if err != nil {
			return err
		}
		// re-check under the lock: the service may have been extended or
		// already deactivated since the batch query ran
		if !svc.IsActive || svc.EndDate == nil || svc.EndDate.After(today) {
			return nil
		}
		return repo.SetActive(ctx, svc.ID, false)
	})
}

func (j *terminationSweepJob) today() time.Time {
	now := j.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
