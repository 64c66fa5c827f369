package termination

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/internal/periods"
	"github.com/gestorialabs/gestoria-backend/internal/services"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/logger"
	"github.com/gestorialabs/gestoria-backend/pkg/pagination"
)

// fakeServicesRepo keeps services in memory with repository semantics.
type fakeServicesRepo struct {
	services map[uuid.UUID]*models.ClientService
}

func newFakeServicesRepo() *fakeServicesRepo {
	return &fakeServicesRepo{services: map[uuid.UUID]*models.ClientService{}}
}

func (f *fakeServicesRepo) WithTx(tx *gorm.DB) services.Repository { return f }

func (f *fakeServicesRepo) Create(ctx context.Context, svc *models.ClientService) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeServicesRepo) Update(ctx context.Context, svc *models.ClientService) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeServicesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeServicesRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeServicesRepo) List(ctx context.Context, params services.ListQuery) ([]models.ClientService, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeServicesRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientService, error) {
	return nil, nil
}

func (f *fakeServicesRepo) ListDueForDeactivation(ctx context.Context, asOf time.Time, limit int) ([]models.ClientService, error) {
	return nil, nil
}

func (f *fakeServicesRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if svc, ok := f.services[id]; ok {
		svc.IsActive = active
	}
	return nil
}

// fakePeriodsRepo mirrors the timeline-rewriting repository operations.
type fakePeriodsRepo struct {
	periods map[uuid.UUID]*models.ServicePeriod
}

func newFakePeriodsRepo() *fakePeriodsRepo {
	return &fakePeriodsRepo{periods: map[uuid.UUID]*models.ServicePeriod{}}
}

func (f *fakePeriodsRepo) WithTx(tx *gorm.DB) periods.Repository { return f }

func (f *fakePeriodsRepo) Create(ctx context.Context, period *models.ServicePeriod) error {
	f.periods[period.ID] = period
	return nil
}

func (f *fakePeriodsRepo) Update(ctx context.Context, period *models.ServicePeriod) error {
	copied := *period
	f.periods[period.ID] = &copied
	return nil
}

func (f *fakePeriodsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ServicePeriod, error) {
	period, ok := f.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *period
	return &copied, nil
}

func (f *fakePeriodsRepo) ListByService(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	for _, period := range f.periods {
		if period.ServiceID == serviceID {
			rows = append(rows, *period)
		}
	}
	sortByStart(rows)
	return rows, nil
}

func (f *fakePeriodsRepo) ListByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	for _, period := range f.periods {
		if period.ServiceID != serviceID {
			continue
		}
		for _, status := range statuses {
			if period.Status == status {
				rows = append(rows, *period)
				break
			}
		}
	}
	sortByStart(rows)
	return rows, nil
}

func (f *fakePeriodsRepo) LatestByEnd(ctx context.Context, serviceID uuid.UUID) (*models.ServicePeriod, error) {
	var latest *models.ServicePeriod
	for _, period := range f.periods {
		if period.ServiceID != serviceID {
			continue
		}
		if latest == nil || period.PeriodEnd.After(latest.PeriodEnd) {
			copied := *period
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakePeriodsRepo) LatestByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) (*models.ServicePeriod, error) {
	var latest *models.ServicePeriod
	for _, period := range f.periods {
		if period.ServiceID != serviceID {
			continue
		}
		matched := false
		for _, status := range statuses {
			if period.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if latest == nil || period.PeriodEnd.After(latest.PeriodEnd) {
			copied := *period
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakePeriodsRepo) HasOverlapping(ctx context.Context, serviceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	for _, period := range f.periods {
		if period.ServiceID != serviceID || period.ID == excludeID {
			continue
		}
		if !period.PeriodStart.After(end) && !period.PeriodEnd.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodsRepo) DeleteStartingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, period := range f.periods {
		if period.ServiceID == serviceID && period.PeriodStart.After(cutoff) {
			delete(f.periods, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakePeriodsRepo) TruncateStraddling(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error) {
	var truncated int64
	for _, period := range f.periods {
		if period.ServiceID == serviceID && !period.PeriodStart.After(cutoff) && period.PeriodEnd.After(cutoff) {
			period.PeriodEnd = cutoff
			truncated++
		}
	}
	return truncated, nil
}

func (f *fakePeriodsRepo) ListEndingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	for _, period := range f.periods {
		if period.ServiceID == serviceID && period.PeriodEnd.After(cutoff) {
			rows = append(rows, *period)
		}
	}
	sortByStart(rows)
	return rows, nil
}

func (f *fakePeriodsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.periods, id)
	return nil
}

func sortByStart(rows []models.ServicePeriod) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].PeriodStart.Before(rows[j-1].PeriodStart); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

type fixture struct {
	svc      Service
	services *fakeServicesRepo
	periods  *fakePeriodsRepo
	service  *models.ClientService
}

// newFixture seeds the base scenario: service started 2024-01-01, one PAID
// period for January, one AWAITING_START period for February, open-ended.
func newFixture(t *testing.T, today string) *fixture {
	t.Helper()

	svcRepo := newFakeServicesRepo()
	periodRepo := newFakePeriodsRepo()

	clientService := &models.ClientService{
		ID:        uuid.New(),
		ClientID:  uuid.New(),
		StartDate: date(t, "2024-01-01"),
		IsActive:  true,
	}
	require.NoError(t, svcRepo.Create(context.Background(), clientService))

	require.NoError(t, periodRepo.Create(context.Background(), &models.ServicePeriod{
		ID:          uuid.New(),
		ServiceID:   clientService.ID,
		PeriodStart: date(t, "2024-01-01"),
		PeriodEnd:   date(t, "2024-01-31"),
		Status:      enums.PeriodStatusPaid,
	}))
	require.NoError(t, periodRepo.Create(context.Background(), &models.ServicePeriod{
		ID:          uuid.New(),
		ServiceID:   clientService.ID,
		PeriodStart: date(t, "2024-02-01"),
		PeriodEnd:   date(t, "2024-02-28"),
		Status:      enums.PeriodStatusAwaitingStart,
	}))

	now := date(t, today)
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Services: svcRepo,
		Periods:  periodRepo,
		Tx:       fakeTxRunner{},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	return &fixture{svc: svc, services: svcRepo, periods: periodRepo, service: clientService}
}

func TestTerminateTruncatesStraddlingPeriod(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()
	cut := date(t, "2024-02-15")

	terminated, err := f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut})
	require.NoError(t, err)

	require.NotNil(t, terminated.EndDate)
	assert.Equal(t, cut, *terminated.EndDate)
	assert.False(t, terminated.IsActive, "termination date in the past flips the flag")

	rows, err := f.periods.ListByService(ctx, f.service.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, date(t, "2024-01-31"), rows[0].PeriodEnd)
	assert.Equal(t, cut, rows[1].PeriodEnd)
}

func TestTerminateFutureDatedKeepsServiceActive(t *testing.T) {
	f := newFixture(t, "2024-02-01")
	ctx := context.Background()
	cut := date(t, "2024-02-15")

	terminated, err := f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut})
	require.NoError(t, err)

	require.NotNil(t, terminated.EndDate)
	assert.Equal(t, cut, *terminated.EndDate)
	assert.True(t, terminated.IsActive, "future-dated termination waits for the sweep")
}

func TestTerminateDeletesFullyFuturePeriods(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()
	cut := date(t, "2024-01-15")

	_, err := f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut})
	require.NoError(t, err)

	rows, err := f.periods.ListByService(ctx, f.service.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "february period never began and is removed")
	assert.Equal(t, cut, rows[0].PeriodEnd)

	// post-condition: nothing starts or ends past the cut
	for _, row := range rows {
		assert.False(t, row.PeriodStart.After(cut))
		assert.False(t, row.PeriodEnd.After(cut))
	}
}

func TestTerminateRejectsDateBeforeStart(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	cut := date(t, "2023-12-01")

	_, err := f.svc.Terminate(context.Background(), f.service.ID, TerminateInput{Date: &cut})
	require.Error(t, err)
	typed := AsError(err)
	require.NotNil(t, typed)
	assert.Equal(t, KindDateBeforeStart, typed.Kind)

	// fail-fast: the timeline was not touched
	rows, listErr := f.periods.ListByService(context.Background(), f.service.ID)
	require.NoError(t, listErr)
	assert.Len(t, rows, 2)
}

func TestTerminateRejectsDateBeyondLastCreatedPeriod(t *testing.T) {
	f := newFixture(t, "2024-02-01")
	cut := date(t, "2024-03-15")

	_, err := f.svc.Terminate(context.Background(), f.service.ID, TerminateInput{Date: &cut})
	require.Error(t, err)
	typed := AsError(err)
	require.NotNil(t, typed)
	assert.Equal(t, KindDateBeyondLastPeriod, typed.Kind)
	assert.Contains(t, typed.Reason, "28/02/2024")
}

func TestTerminateRejectsInactiveService(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	f.services.services[f.service.ID].IsActive = false

	_, err := f.svc.Terminate(context.Background(), f.service.ID, TerminateInput{})
	require.Error(t, err)
	typed := AsError(err)
	require.NotNil(t, typed)
	assert.Equal(t, KindAlreadyInactive, typed.Kind)
}

func TestTerminateRejectsDoubleInvocation(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()
	cut := date(t, "2024-02-15")

	_, err := f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut})
	require.NoError(t, err)

	_, err = f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut})
	require.Error(t, err)
	typed := AsError(err)
	require.NotNil(t, typed)
	// flipped inactive by the first call, so the precondition fails first
	assert.Equal(t, KindAlreadyInactive, typed.Kind)
}

func TestTerminateAppendsReasonNoteOnce(t *testing.T) {
	f := newFixture(t, "2024-02-01")
	ctx := context.Background()
	cut := date(t, "2024-02-15")

	terminated, err := f.svc.Terminate(ctx, f.service.ID, TerminateInput{Date: &cut, Reason: "Baja voluntaria"})
	require.NoError(t, err)
	assert.Equal(t, "Servicio finalizado el 15/02/2024 - Motivo: Baja voluntaria", terminated.Notes)
}

func TestCanTerminate(t *testing.T) {
	f := newFixture(t, "2024-03-01")
	ctx := context.Background()

	ok, err := f.svc.CanTerminate(ctx, f.service.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	past := date(t, "2024-01-10")
	f.services.services[f.service.ID].EndDate = &past
	ok, err = f.svc.CanTerminate(ctx, f.service.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetLimits(t *testing.T) {
	f := newFixture(t, "2024-02-01")

	limits, err := f.svc.GetLimits(context.Background(), f.service.ID)
	require.NoError(t, err)

	assert.Equal(t, date(t, "2024-01-02"), limits.MinDate)
	require.NotNil(t, limits.MaxDate)
	assert.Equal(t, date(t, "2024-02-28"), *limits.MaxDate)
	assert.True(t, limits.HasPaidPeriods)
	require.NotNil(t, limits.LastPaidDate)
	assert.Equal(t, date(t, "2024-01-31"), *limits.LastPaidDate)
}

func TestGetLimitsIgnoresRefundedPeriods(t *testing.T) {
	f := newFixture(t, "2024-02-01")
	ctx := context.Background()

	require.NoError(t, f.periods.Create(ctx, &models.ServicePeriod{
		ID:          uuid.New(),
		ServiceID:   f.service.ID,
		PeriodStart: date(t, "2024-03-01"),
		PeriodEnd:   date(t, "2024-03-31"),
		Status:      enums.PeriodStatusRefunded,
	}))

	limits, err := f.svc.GetLimits(ctx, f.service.ID)
	require.NoError(t, err)
	require.NotNil(t, limits.MaxDate)
	assert.Equal(t, date(t, "2024-02-28"), *limits.MaxDate)
}

func TestAffectedPeriodsInfo(t *testing.T) {
	f := newFixture(t, "2024-02-01")

	info, err := f.svc.AffectedPeriodsInfo(context.Background(), f.service.ID, date(t, "2024-02-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, info.FutureCount)
	assert.Equal(t, 1, info.AdjustableCount)
	assert.Equal(t, 1, info.TotalAffected)

	info, err = f.svc.AffectedPeriodsInfo(context.Background(), f.service.ID, date(t, "2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, 1, info.FutureCount)
	assert.Equal(t, 1, info.AdjustableCount)
	assert.Equal(t, 2, info.TotalAffected)
}

func TestTerminateUnknownServiceNotFound(t *testing.T) {
	f := newFixture(t, "2024-02-01")

	_, err := f.svc.Terminate(context.Background(), uuid.New(), TerminateInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
