package clients

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/pkg/db"
	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	pkgerrors "github.com/gestorialabs/gestoria-backend/pkg/errors"
	"github.com/gestorialabs/gestoria-backend/pkg/pagination"
)

// dniConstraint matches both the Postgres constraint name (clients_dni_key)
// and the sqlite violation message (clients.dni).
const dniConstraint = "dni"

// Repository handles client persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByDNI(ctx context.Context, dni string) (*models.Client, error)
	List(ctx context.Context, params ListQuery) ([]models.Client, *pagination.Cursor, error)
	ServiceSummaries(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]ServiceSummary, error)
	FindLatestService(ctx context.Context, clientID uuid.UUID) (*models.ClientService, error)
}

// ListQuery configures client listings.
type ListQuery struct {
	Name     string
	DNI      string
	IsActive *bool
	Limit    int
	Cursor   *pagination.Cursor
}

// ServiceSummary aggregates a client's service history in one row, so a
// listing can classify every client without per-client queries.
type ServiceSummary struct {
	ClientID       uuid.UUID  `gorm:"column:client_id"`
	TotalServices  int        `gorm:"column:total_services"`
	ActiveCount    int        `gorm:"column:active_count"`
	LatestEndDate  *time.Time `gorm:"column:latest_end_date"`
	OpenEndedCount int        `gorm:"column:open_ended_count"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a client repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if db.IsUniqueViolation(err, dniConstraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Ya existe un cliente con ese DNI")
		}
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		if db.IsUniqueViolation(err, dniConstraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Ya existe un cliente con ese DNI")
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindByDNI(ctx context.Context, dni string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("dni = ?", dni).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Client, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("is_deleted = ?", false)

	if params.Name != "" {
		query = query.Where("LOWER(full_name) LIKE LOWER(?)", "%"+params.Name+"%")
	}
	if params.DNI != "" {
		query = query.Where("dni = ?", params.DNI)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Client
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

// ServiceSummaries groups the service table by client in a single query.
// Clients without services are absent from the result map.
func (r *repository) ServiceSummaries(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]ServiceSummary, error) {
	summaries := map[uuid.UUID]ServiceSummary{}
	if len(clientIDs) == 0 {
		return summaries, nil
	}

	var rows []ServiceSummary
	if err := r.db.WithContext(ctx).
		Model(&models.ClientService{}).
		Select(
			"client_id, "+
				"COUNT(*) AS total_services, "+
				"SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS active_count, "+
				"MAX(end_date) AS latest_end_date, "+
				"SUM(CASE WHEN end_date IS NULL THEN 1 ELSE 0 END) AS open_ended_count",
		).
		Where("client_id IN ?", clientIDs).
		Group("client_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		summaries[row.ClientID] = row
	}
	return summaries, nil
}

// FindLatestService returns the client's most recent service: open-ended
// services rank ahead of everything, then by end date descending. Returns
// nil when the client never had a service.
func (r *repository) FindLatestService(ctx context.Context, clientID uuid.UUID) (*models.ClientService, error) {
	var rows []models.ClientService
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("end_date IS NULL DESC").
		Order("end_date DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
