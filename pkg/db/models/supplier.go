package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a vendor that products can be purchased from.
type Supplier struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string     `gorm:"column:name;type:text;not null"`
	ContactPerson *string    `gorm:"column:contact_person"`
	Email         string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone         *string    `gorm:"column:phone"`
	Address       *string    `gorm:"column:address"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	DeactivatedAt *time.Time `gorm:"column:deactivated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
