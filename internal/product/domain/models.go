// Package domain contains persistence models for supplier products and
// their margins.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingModel decides how the electricity cost lines are generated.
type PricingModel string

const (
	// SpotAddon bills spot price plus the supplier margin.
	SpotAddon PricingModel = "SPOT_ADDON"
	// Fixed bills a flat per-kWh price (the combined margin rate).
	Fixed PricingModel = "FIXED"
)

// SupplierProduct is a retail product sold on top of a supply.
type SupplierProduct struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey"`
	SupplierIdentityID uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:ux_product_supplier_name"`
	Name               string       `gorm:"type:text;not null;uniqueIndex:ux_product_supplier_name"`
	PricingModel       PricingModel `gorm:"type:text;not null;default:'SPOT_ADDON'"`
	IsActive           bool         `gorm:"not null;default:true"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SupplierProduct) TableName() string { return "supplier_products" }

// SupplierMargin is the per-kWh mark-up of a product, a step function
// over ValidFrom.
type SupplierMargin struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SupplierProductID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_margin_product_validfrom"`
	ValidFrom         time.Time       `gorm:"not null;uniqueIndex:ux_margin_product_validfrom"`
	PriceDkkPerKwh    decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SupplierMargin) TableName() string { return "supplier_margins" }
