package periods

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gestorialabs/gestoria-backend/pkg/db/models"
	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

// Repository handles billing period persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, period *models.ServicePeriod) error
	Update(ctx context.Context, period *models.ServicePeriod) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServicePeriod, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePeriod, error)
	ListByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) ([]models.ServicePeriod, error)
	LatestByEnd(ctx context.Context, serviceID uuid.UUID) (*models.ServicePeriod, error)
	LatestByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) (*models.ServicePeriod, error)
	HasOverlapping(ctx context.Context, serviceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
	DeleteStartingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error)
	TruncateStraddling(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error)
	ListEndingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) ([]models.ServicePeriod, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a period repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, period *models.ServicePeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) Update(ctx context.Context, period *models.ServicePeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServicePeriod, error) {
	var period models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("period_start ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND status IN (?)", serviceID, statuses).
		Order("period_start ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) LatestByEnd(ctx context.Context, serviceID uuid.UUID) (*models.ServicePeriod, error) {
	var period models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("period_end DESC").
		First(&period).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *repository) LatestByStatuses(ctx context.Context, serviceID uuid.UUID, statuses []enums.PeriodStatus) (*models.ServicePeriod, error) {
	var period models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND status IN (?)", serviceID, statuses).
		Order("period_end DESC").
		First(&period).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// HasOverlapping reports whether any period intersects [start, end]. Ranges
// touching at the boundary count as overlap because period dates are inclusive.
func (r *repository) HasOverlapping(ctx context.Context, serviceID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ServicePeriod{}).
		Where("service_id = ? AND period_start <= ? AND period_end >= ?", serviceID, end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) DeleteStartingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("service_id = ? AND period_start > ?", serviceID, cutoff).
		Delete(&models.ServicePeriod{})
	return result.RowsAffected, result.Error
}

func (r *repository) TruncateStraddling(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ServicePeriod{}).
		Where("service_id = ? AND period_start <= ? AND period_end > ?", serviceID, cutoff, cutoff).
		Update("period_end", cutoff)
	return result.RowsAffected, result.Error
}

func (r *repository) ListEndingAfter(ctx context.Context, serviceID uuid.UUID, cutoff time.Time) ([]models.ServicePeriod, error) {
	var rows []models.ServicePeriod
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND period_end > ?", serviceID, cutoff).
		Order("period_start ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ServicePeriod{}).Error
}
