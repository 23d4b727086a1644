// Package domain contains persistence models for supplies.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/period"
)

// Supply is a time-bounded contract linking a customer to a metering point.
// At most one supply per metering point may have an overlapping open period.
type Supply struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MeteringPointID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplyStart     time.Time  `gorm:"not null"`
	SupplyEnd       *time.Time `gorm:""`
	// EndedByProcessID links the BRS process that terminated the supply.
	EndedByProcessID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Supply) TableName() string { return "supplies" }

// Period returns the supply period as a half-open interval.
func (s Supply) Period() period.Period {
	return period.Period{Start: s.SupplyStart, End: s.SupplyEnd}
}

// IsActiveAt reports whether the supply covers t.
func (s Supply) IsActiveAt(t time.Time) bool {
	return s.Period().Contains(t)
}

// SupplyProductPeriod assigns a supplier product to a supply for a period.
// Multiple concurrent addon periods are allowed.
type SupplyProductPeriod struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SupplyID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierProductID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PeriodStart       time.Time  `gorm:"not null"`
	PeriodEnd         *time.Time `gorm:""`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SupplyProductPeriod) TableName() string { return "supply_product_periods" }

// Period returns the assignment period.
func (p SupplyProductPeriod) Period() period.Period {
	return period.Period{Start: p.PeriodStart, End: p.PeriodEnd}
}
