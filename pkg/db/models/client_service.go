package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestorialabs/gestoria-backend/pkg/enums"
)

// ClientService is a client's subscription to a business line offering. The
// date pair bounds the declared lifetime: a nil EndDate means open-ended.
// EndDate, when set, is never before StartDate.
type ClientService struct {
	ID             uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID       uuid.UUID             `gorm:"column:client_id;type:uuid;not null;index"`
	BusinessLineID uuid.UUID             `gorm:"column:business_line_id;type:uuid;not null;index"`
	Category       enums.ServiceCategory `gorm:"column:category;not null"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	StartDate      time.Time             `gorm:"column:start_date;type:date;not null;index"`
	EndDate        *time.Time            `gorm:"column:end_date;type:date;index"`
	AdminStatus    enums.AdminStatus     `gorm:"column:admin_status;not null;default:'ENABLED'"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true;index"`
	Notes          string                `gorm:"column:notes"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Client  *Client         `gorm:"foreignKey:ClientID"`
	Periods []ServicePeriod `gorm:"foreignKey:ServiceID"`
}

// TableName overrides the default GORM naming.
func (ClientService) TableName() string {
	return "client_services"
}
