package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/services"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
	"github.com/gestorialabs/gestoria-backend/pkg/pagination"
)

func TestTerminationSweepDeactivatesDueServices(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	past := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	due := &models.ClientService{ID: uuid.New(), IsActive: true, EndDate: &past}
	notYet := &models.ClientService{ID: uuid.New(), IsActive: true, EndDate: &future}
	repo := newSweepFakeServicesRepo(due, notYet)

	job := newSweepJob(t, repo, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if repo.services[due.ID].IsActive {
		t.Fatal("expected due service deactivated")
	}
	if !repo.services[notYet.ID].IsActive {
		t.Fatal("expected future-dated service untouched")
	}
}

func TestTerminationSweepRechecksUnderLock(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	extended := &models.ClientService{ID: uuid.New(), IsActive: true, EndDate: &past}
	repo := newSweepFakeServicesRepo(extended)
	// the batch query saw the old row; by lock time the service was extended
	later := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	repo.onLock = func(svc *models.ClientService) {
		svc.EndDate = &later
	}

	job := newSweepJob(t, repo, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !repo.services[extended.ID].IsActive {
		t.Fatal("expected extended service to stay active")
	}
}

func TestTerminationSweepAggregatesFailures(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	broken := &models.ClientService{ID: uuid.New(), IsActive: true, EndDate: &past}
	healthy := &models.ClientService{ID: uuid.New(), IsActive: true, EndDate: &past}
	repo := newSweepFakeServicesRepo(broken, healthy)
	repo.failLock = map[uuid.UUID]error{broken.ID: errors.New("boom")}

	job := newSweepJob(t, repo, now)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}

	if repo.services[healthy.ID].IsActive {
		t.Fatal("expected healthy service deactivated despite sibling failure")
	}
}

func newSweepJob(t *testing.T, repo *sweepFakeServicesRepo, now time.Time) Job {
	t.Helper()
	job, err := NewTerminationSweepJob(TerminationSweepJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		DB:       sweepFakeTxRunner{},
		Services: repo,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewTerminationSweepJob: %v", err)
	}
	return job
}

type sweepFakeServicesRepo struct {
	services map[uuid.UUID]*models.ClientService
	failLock map[uuid.UUID]error
	onLock   func(svc *models.ClientService)
}

func newSweepFakeServicesRepo(rows ...*models.ClientService) *sweepFakeServicesRepo {
	repo := &sweepFakeServicesRepo{services: map[uuid.UUID]*models.ClientService{}}
	for _, row := range rows {
		repo.services[row.ID] = row
	}
	return repo
}

func (f *sweepFakeServicesRepo) WithTx(tx *gorm.DB) services.Repository { return f }

func (f *sweepFakeServicesRepo) Create(ctx context.Context, svc *models.ClientService) error {
	return nil
}

func (f *sweepFakeServicesRepo) Update(ctx context.Context, svc *models.ClientService) error {
	return nil
}

func (f *sweepFakeServicesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return svc, nil
}

func (f *sweepFakeServicesRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	if err, ok := f.failLock[id]; ok {
		return nil, err
	}
	svc, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if f.onLock != nil {
		f.onLock(svc)
	}
	return svc, nil
}

func (f *sweepFakeServicesRepo) List(ctx context.Context, params services.ListQuery) ([]models.ClientService, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *sweepFakeServicesRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientService, error) {
	return nil, nil
}

func (f *sweepFakeServicesRepo) ListDueForDeactivation(ctx context.Context, asOf time.Time, limit int) ([]models.ClientService, error) {
	var rows []models.ClientService
	for _, svc := range f.services {
		if svc.IsActive && svc.EndDate != nil && !svc.EndDate.After(asOf) {
			rows = append(rows, *svc)
		}
	}
	return rows, nil
}

func (f *sweepFakeServicesRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if svc, ok := f.services[id]; ok {
		svc.IsActive = active
	}
	return nil
}

type sweepFakeTxRunner struct{}

func (sweepFakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
