package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	clients := `
CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  dni TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	clientServices := `
CREATE TABLE IF NOT EXISTS client_services (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  business_line_id TEXT NOT NULL,
  category TEXT NOT NULL,
  price TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME,
  admin_status TEXT NOT NULL DEFAULT 'ENABLED',
  is_active INTEGER NOT NULL DEFAULT 1,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	servicePeriods := `
CREATE TABLE IF NOT EXISTS service_periods (
  id TEXT PRIMARY KEY,
  service_id TEXT NOT NULL,
  period_start DATETIME NOT NULL,
  period_end DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'PERIOD_CREATED',
  amount TEXT,
  payment_method TEXT,
  payment_date DATETIME,
  refunded_amount TEXT NOT NULL DEFAULT '0',
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(clients).Error)
	require.NoError(t, db.Exec(clientServices).Error)
	require.NoError(t, db.Exec(servicePeriods).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM service_periods")
		db.Exec("DELETE FROM client_services")
		db.Exec("DELETE FROM clients")
	})
	return db
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func newClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:       uuid.New(),
		FullName: name,
		DNI:      uuid.NewString()[:9],
		IsActive: true,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func newService(t *testing.T, db *gorm.DB, clientID uuid.UUID, start string, end *string, active bool) *models.ClientService {
	t.Helper()

	svc := &models.ClientService{
		ID:             uuid.New(),
		ClientID:       clientID,
		BusinessLineID: uuid.New(),
		Category:       enums.ServiceCategoryWhite,
		Price:          decimal.NewFromInt(100),
		PaymentMethod:  enums.PaymentMethodTransfer,
		StartDate:      date(t, start),
		AdminStatus:    enums.AdminStatusEnabled,
		IsActive:       active,
	}
	if end != nil {
		e := date(t, *end)
		svc.EndDate = &e
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func newServicePeriod(t *testing.T, db *gorm.DB, serviceID uuid.UUID, start, end string, status enums.PeriodStatus) {
	t.Helper()

	require.NoError(t, db.Create(&models.ServicePeriod{
		ID:          uuid.New(),
		ServiceID:   serviceID,
		PeriodStart: date(t, start),
		PeriodEnd:   date(t, end),
		Status:      status,
	}).Error)
}

func TestListFiltersByClientName(t *testing.T) {
	db := setupServicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	garcia := newClient(t, db, "María García")
	lopez := newClient(t, db, "Juan López")
	newService(t, db, garcia.ID, "2025-01-01", nil, true)
	newService(t, db, lopez.ID, "2025-01-01", nil, true)

	rows, cursor, err := repo.List(ctx, ListQuery{ClientName: "garcía"})
	require.NoError(t, err)
	assert.Nil(t, cursor)
	require.Len(t, rows, 1)
	assert.Equal(t, garcia.ID, rows[0].ClientID)
}

func TestListFiltersByLatestPeriodStatus(t *testing.T) {
	db := setupServicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	client := newClient(t, db, "Cliente Uno")
	paid := newService(t, db, client.ID, "2025-01-01", nil, true)
	unpaid := newService(t, db, client.ID, "2025-01-01", nil, true)
	bare := newService(t, db, client.ID, "2025-01-01", nil, true)

	newServicePeriod(t, db, paid.ID, "2025-01-01", "2025-01-31", enums.PeriodStatusUnpaidActive)
	newServicePeriod(t, db, paid.ID, "2025-02-01", "2025-02-28", enums.PeriodStatusPaid)
	newServicePeriod(t, db, unpaid.ID, "2025-01-01", "2025-01-31", enums.PeriodStatusUnpaidActive)

	status := enums.PeriodStatusPaid
	rows, _, err := repo.List(ctx, ListQuery{PaymentStatus: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, paid.ID, rows[0].ID)

	rows, _, err = repo.List(ctx, ListQuery{NoPayments: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bare.ID, rows[0].ID)
}

func TestListDueForDeactivation(t *testing.T) {
	db := setupServicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	asOf := date(t, "2025-06-15")

	client := newClient(t, db, "Cliente Dos")
	past := "2025-06-01"
	future := "2025-12-31"
	due := newService(t, db, client.ID, "2025-01-01", &past, true)
	newService(t, db, client.ID, "2025-01-01", &future, true)
	newService(t, db, client.ID, "2025-01-01", nil, true)
	alreadyOff := newService(t, db, client.ID, "2025-01-01", &past, false)

	rows, err := repo.ListDueForDeactivation(ctx, asOf, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, due.ID, rows[0].ID)
	assert.NotEqual(t, alreadyOff.ID, rows[0].ID)
}

func TestSetActiveFlipsFlag(t *testing.T) {
	db := setupServicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	client := newClient(t, db, "Cliente Tres")
	svc := newService(t, db, client.ID, "2025-01-01", nil, true)

	require.NoError(t, repo.SetActive(ctx, svc.ID, false))

	reloaded, err := repo.FindByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestListCursorPagination(t *testing.T) {
	db := setupServicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	client := newClient(t, db, "Cliente Cuatro")
	for i := 0; i < 3; i++ {
		svc := newService(t, db, client.ID, "2025-01-01", nil, true)
		// spread creation times so cursor ordering is deterministic
		require.NoError(t, db.Model(svc).
			Update("created_at", time.Date(2025, 1, 1, 10, i, 0, 0, time.UTC)).Error)
	}

	first, cursor, err := repo.List(ctx, ListQuery{ClientID: &client.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)

	second, next, err := repo.List(ctx, ListQuery{ClientID: &client.ID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, next)
}
