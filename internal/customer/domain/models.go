// Package domain contains persistence models for customers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the counterpart on a supply. Exactly one of Cpr/Cvr is set.
type Customer struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierIdentityID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name               string    `gorm:"type:text;not null"`
	Cpr                *string   `gorm:"type:text"`
	Cvr                *string   `gorm:"type:text"`
	Address            *string   `gorm:"type:text"`
	Email              *string   `gorm:"type:text"`
	Phone              *string   `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
