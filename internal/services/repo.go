package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
	"github.com/gestorialabs/gestoria-backend/pkg/pagination"
)

// Repository handles client service persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, service *models.ClientService) error
	Update(ctx context.Context, service *models.ClientService) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClientService, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientService, error)
	List(ctx context.Context, params ListQuery) ([]models.ClientService, *pagination.Cursor, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientService, error)
	ListDueForDeactivation(ctx context.Context, asOf time.Time, limit int) ([]models.ClientService, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ListQuery configures client service list queries. Date-bucket statuses are
// resolved against AsOf so listings stay reproducible in tests.
type ListQuery struct {
	ClientID         *uuid.UUID
	BusinessLineID   *uuid.UUID
	Category         *enums.ServiceCategory
	AdminStatus      *enums.AdminStatus
	IsActive         *bool
	ClientName       string
	PaymentStatus    *enums.PeriodStatus
	NoPayments       bool
	EndDateBefore    *time.Time
	EndDateAfter     *time.Time
	IncludeOpenEnded bool
	Limit            int
	Cursor           *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a client service repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, service *models.ClientService) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *repository) Update(ctx context.Context, service *models.ClientService) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	var service models.ClientService
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// FindByIDForUpdate locks the row for the duration of the surrounding
// transaction. Callers must run inside WithTx.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientService, error) {
	var service models.ClientService
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.ClientService, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.ClientService{})

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.BusinessLineID != nil {
		query = query.Where("business_line_id = ?", *params.BusinessLineID)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.AdminStatus != nil {
		query = query.Where("admin_status = ?", *params.AdminStatus)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.ClientName != "" {
		query = query.Where(
			"client_id IN (SELECT id FROM clients WHERE LOWER(full_name) LIKE LOWER(?))",
			"%"+params.ClientName+"%",
		)
	}
	if params.PaymentStatus != nil {
		query = query.Where(
			"id IN (SELECT service_id FROM service_periods sp WHERE sp.period_end = "+
				"(SELECT MAX(period_end) FROM service_periods WHERE service_id = sp.service_id) AND sp.status = ?)",
			*params.PaymentStatus,
		)
	}
	if params.NoPayments {
		query = query.Where("id NOT IN (SELECT DISTINCT service_id FROM service_periods)")
	}
	if params.EndDateBefore != nil {
		if params.IncludeOpenEnded {
			query = query.Where("end_date < ? OR end_date IS NULL", *params.EndDateBefore)
		} else {
			query = query.Where("end_date < ?", *params.EndDateBefore)
		}
	}
	if params.EndDateAfter != nil {
		if params.IncludeOpenEnded {
			query = query.Where("end_date > ? OR end_date IS NULL", *params.EndDateAfter)
		} else {
			query = query.Where("end_date > ?", *params.EndDateAfter)
		}
	}
	if params.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.ClientService
	if err := query.
		Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > limit {
		next := rows[limit]
		rows = rows[:limit]
		return rows, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}
	return rows, nil, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientService, error) {
	var rows []models.ClientService
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("start_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDueForDeactivation returns services still flagged active whose end date
// has already passed.
func (r *repository) ListDueForDeactivation(ctx context.Context, asOf time.Time, limit int) ([]models.ClientService, error) {
	if limit <= 0 {
		limit = 250
	}
	var rows []models.ClientService
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date <= ?", true, asOf).
		Order("end_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.ClientService{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
