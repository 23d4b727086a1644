// Package domain contains persistence models for supplier identities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SupplierIdentity is a market participant we act as (or against) on DataHub.
type SupplierIdentity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Gln        string    `gorm:"type:text;not null;uniqueIndex"`
	Name       string    `gorm:"type:text;not null"`
	Cvr        *string   `gorm:"type:text"`
	IsActive   bool      `gorm:"not null;default:true"`
	IsArchived bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SupplierIdentity) TableName() string { return "supplier_identities" }
