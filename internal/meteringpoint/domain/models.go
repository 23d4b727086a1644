// Package domain contains persistence models for metering points.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
)

type MeteringPointType string

const (
	TypeConsumption MeteringPointType = "E17"
	TypeProduction  MeteringPointType = "E18"
	TypeExchange    MeteringPointType = "E20"
)

type MeteringPointCategory string

const (
	CategoryParent MeteringPointCategory = "PARENT"
	CategoryChild  MeteringPointCategory = "CHILD"
)

type SettlementMethod string

const (
	SettlementFlex      SettlementMethod = "D01"
	SettlementNonProfiled SettlementMethod = "E02"
	SettlementProfiled  SettlementMethod = "D02"
)

type ConnectionState string

const (
	StateNew          ConnectionState = "NEW"
	StateConnected    ConnectionState = "CONNECTED"
	StateDisconnected ConnectionState = "DISCONNECTED"
	StateClosedDown   ConnectionState = "CLOSED_DOWN"
)

// MeteringPoint mirrors the master data DataHub holds for a GSRN.
// HasActiveSupply tracks whether any supply is currently active.
type MeteringPoint struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Gsrn             string                `gorm:"type:text;not null;uniqueIndex"`
	Type             MeteringPointType     `gorm:"type:text;not null"`
	Category         MeteringPointCategory `gorm:"type:text;not null;default:'PARENT'"`
	SettlementMethod SettlementMethod      `gorm:"type:text;not null"`
	Resolution       market.Resolution     `gorm:"type:text;not null"`
	GridArea         string                `gorm:"type:text;not null;index"`
	PriceArea        market.PriceArea      `gorm:"type:text;not null;default:'DK1'"`
	GridCompanyGln   string                `gorm:"type:text;not null"`
	ConnectionState  ConnectionState       `gorm:"type:text;not null;default:'NEW'"`
	HasActiveSupply  bool                  `gorm:"not null;default:false"`
	CreatedAt        time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MeteringPoint) TableName() string { return "metering_points" }
