package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of the practice. Clients are soft-deleted: rows stay
// referenced by services and are only flagged.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	DNI       string    `gorm:"column:dni;not null;unique"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	Notes     string    `gorm:"column:notes"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true;index"`
	IsDeleted bool      `gorm:"column:is_deleted;not null;default:false;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Services []ClientService `gorm:"foreignKey:ClientID"`
}

// TableName overrides the default GORM naming.
func (Client) TableName() string {
	return "clients"
}
