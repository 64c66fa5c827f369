package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessLine is a node in the practice's offering tree. Services hang off a
// line/category pair.
type BusinessLine struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (BusinessLine) TableName() string {
	return "business_lines"
}
