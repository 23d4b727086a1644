// Package domain contains the regulated charge catalogue: prices, their
// dated price points, per-metering-point links and spot prices.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/shopspring/decimal"
)

// PriceType is the DataHub charge type.
type PriceType string

const (
	Tariff       PriceType = "TARIFF"
	Subscription PriceType = "SUBSCRIPTION"
	Fee          PriceType = "FEE"
)

// PriceCategory buckets charges for settlement-completeness checks.
type PriceCategory string

const (
	CategorySpotPris           PriceCategory = "SPOT_PRIS"
	CategoryNettarif           PriceCategory = "NETTARIF"
	CategorySystemtarif        PriceCategory = "SYSTEMTARIF"
	CategoryTransmissionstarif PriceCategory = "TRANSMISSIONSTARIF"
	CategoryElafgift           PriceCategory = "ELAFGIFT"
	CategoryBalancetarif       PriceCategory = "BALANCETARIF"
	CategoryLeverandoertillaeg PriceCategory = "LEVERANDOER_TILLAEG"
	CategoryNetabonnement      PriceCategory = "NET_ABONNEMENT"
	CategoryOther              PriceCategory = "OTHER"
)

// DisplayName returns the operator-facing Danish name.
func (c PriceCategory) DisplayName() string {
	switch c {
	case CategorySpotPris:
		return "SpotPris"
	case CategoryNettarif:
		return "Nettarif"
	case CategorySystemtarif:
		return "Systemtarif"
	case CategoryTransmissionstarif:
		return "Transmissionstarif"
	case CategoryElafgift:
		return "Elafgift"
	case CategoryBalancetarif:
		return "Balancetarif"
	case CategoryLeverandoertillaeg:
		return "Leverandørtillæg"
	case CategoryNetabonnement:
		return "Net abonnement"
	default:
		return string(c)
	}
}

// Price is a regulated charge definition. Unique on (ChargeId, OwnerGln).
type Price struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ChargeID        string             `gorm:"type:text;not null;uniqueIndex:ux_price_charge_owner"`
	OwnerGln        string             `gorm:"type:text;not null;uniqueIndex:ux_price_charge_owner"`
	Type            PriceType          `gorm:"type:text;not null"`
	Description     string             `gorm:"type:text;not null"`
	ValidityStart   time.Time          `gorm:"not null"`
	ValidityEnd     *time.Time         `gorm:""`
	VatExempt       bool               `gorm:"not null;default:false"`
	IsTax           bool               `gorm:"not null;default:false"`
	IsPassThrough   bool               `gorm:"not null;default:false"`
	Category        PriceCategory      `gorm:"type:text;not null;default:'OTHER'"`
	PriceResolution *market.Resolution `gorm:"type:text"`
	CreatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Price) TableName() string { return "prices" }

// PricePoint is a dated rate on a price. Unique per (PriceId, Timestamp).
type PricePoint struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PriceID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_pricepoint_price_ts"`
	Timestamp time.Time       `gorm:"not null;uniqueIndex:ux_pricepoint_price_ts"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PricePoint) TableName() string { return "price_points" }

// PriceLink assigns a price to a metering point for a period. At most one
// open link per (metering point, price).
type PriceLink struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MeteringPointID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PriceID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	LinkStart       time.Time  `gorm:"not null"`
	LinkEnd         *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PriceLink) TableName() string { return "price_links" }

// SpotPrice is the Nordpool day-ahead price, DKK/kWh, unique per
// (area, timestamp).
type SpotPrice struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	PriceArea      market.PriceArea `gorm:"type:text;not null;uniqueIndex:ux_spot_area_ts"`
	Timestamp      time.Time        `gorm:"not null;uniqueIndex:ux_spot_area_ts"`
	PriceDkkPerKwh decimal.Decimal  `gorm:"type:numeric;not null"`
	CreatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SpotPrice) TableName() string { return "spot_prices" }
