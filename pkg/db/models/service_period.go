package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

// ServicePeriod is one billing interval on a service's timeline. Within one
// service the [PeriodStart, PeriodEnd] ranges never overlap; the timeline is
// walked in PeriodStart order.
type ServicePeriod struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID      uuid.UUID            `gorm:"column:service_id;type:uuid;not null;index"`
	PeriodStart    time.Time            `gorm:"column:period_start;type:date;not null;index"`
	PeriodEnd      time.Time            `gorm:"column:period_end;type:date;not null;index"`
	Status         enums.PeriodStatus   `gorm:"column:status;not null;default:'PERIOD_CREATED'"`
	Amount         *decimal.Decimal     `gorm:"column:amount;type:numeric(10,2)"`
	PaymentMethod  *enums.PaymentMethod `gorm:"column:payment_method"`
	PaymentDate    *time.Time           `gorm:"column:payment_date;type:date"`
	RefundedAmount decimal.Decimal      `gorm:"column:refunded_amount;type:numeric(10,2);not null;default:0"`
	Notes          string               `gorm:"column:notes"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (ServicePeriod) TableName() string {
	return "service_periods"
}

// DurationDays returns the inclusive day count covered by the period.
func (p ServicePeriod) DurationDays() int {
	return int(p.PeriodEnd.Sub(p.PeriodStart).Hours()/24) + 1
}
