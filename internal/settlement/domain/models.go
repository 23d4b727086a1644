// Package domain holds the settlement aggregate: monthly billing results per
// metering point, their line items, and the completeness issues that gate
// invoicing.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type SettlementStatus string

const (
	StatusCalculated SettlementStatus = "CALCULATED"
	StatusInvoiced   SettlementStatus = "INVOICED"
	StatusAdjusted   SettlementStatus = "ADJUSTED"
	StatusMigrated   SettlementStatus = "MIGRATED"
)

// LineSource tells where a line's rate came from.
type LineSource string

const (
	SourceDataHubCharge  LineSource = "DATAHUB_CHARGE"
	SourceSpotPrice      LineSource = "SPOT_PRICE"
	SourceSupplierMargin LineSource = "SUPPLIER_MARGIN"
)

type Settlement struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	MeteringPointID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:ux_settlement_mp_period" json:"metering_point_id"`
	SupplyID             uuid.UUID        `gorm:"type:uuid;not null;index" json:"supply_id"`
	PeriodStart          time.Time        `gorm:"not null;uniqueIndex:ux_settlement_mp_period" json:"period_start"`
	PeriodEnd            time.Time        `gorm:"not null;uniqueIndex:ux_settlement_mp_period" json:"period_end"`
	TimeSeriesID         uuid.UUID        `gorm:"type:uuid;not null" json:"time_series_id"`
	TimeSeriesVersion    int              `gorm:"not null" json:"time_series_version"`
	TotalEnergy          decimal.Decimal  `gorm:"type:numeric;not null" json:"total_energy"`
	TotalAmount          decimal.Decimal  `gorm:"type:numeric;not null" json:"total_amount"`
	Status               SettlementStatus `gorm:"size:16;not null" json:"status"`
	IsCorrection         bool             `gorm:"not null;default:false;uniqueIndex:ux_settlement_mp_period" json:"is_correction"`
	PreviousSettlementID *uuid.UUID       `gorm:"type:uuid" json:"previous_settlement_id,omitempty"`
	DocumentNumber       int              `gorm:"not null" json:"document_number"`
	CalculatedAt         time.Time        `gorm:"not null" json:"calculated_at"`
	InvoicedAt           *time.Time       `json:"invoiced_at,omitempty"`
	ExternalInvoiceRef   *string          `gorm:"size:64" json:"external_invoice_ref,omitempty"`
	MigratedHourlyJson   datatypes.JSON   `json:"migrated_hourly_json,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Settlement) TableName() string { return "settlements" }

func (s Settlement) Period() period.Period {
	p, _ := period.Closed(s.PeriodStart, s.PeriodEnd)
	return p
}

// DocumentID formats the invoice document identifier, e.g. WO-2026-00042.
func (s Settlement) DocumentID() string {
	return fmt.Sprintf("WO-%d-%05d", s.CalculatedAt.Year(), s.DocumentNumber)
}

func (s Settlement) IsTerminal() bool {
	return s.Status == StatusMigrated
}

type SettlementLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SettlementID uuid.UUID       `gorm:"type:uuid;not null;index" json:"settlement_id"`
	Position     int             `gorm:"not null" json:"position"`
	Source       LineSource      `gorm:"size:24;not null" json:"source"`
	PriceID      *uuid.UUID      `gorm:"type:uuid" json:"price_id,omitempty"`
	Description  string          `gorm:"size:255;not null" json:"description"`
	Quantity     decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	Amount       decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}

func (SettlementLine) TableName() string { return "settlement_lines" }

type IssueType string

const (
	IssueMissingPriceCategory IssueType = "MISSING_PRICE_CATEGORY"
	IssueMissingPricePoints   IssueType = "MISSING_PRICE_POINTS"
	IssueMissingSpotPrices    IssueType = "MISSING_SPOT_PRICES"
	IssueCalculationFailed    IssueType = "CALCULATION_FAILED"
)

type IssueStatus string

const (
	IssueOpen      IssueStatus = "OPEN"
	IssueResolved  IssueStatus = "RESOLVED"
	IssueDismissed IssueStatus = "DISMISSED"
)

type SettlementIssue struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MeteringPointID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"metering_point_id"`
	PeriodStart       time.Time   `gorm:"not null" json:"period_start"`
	PeriodEnd         time.Time   `gorm:"not null" json:"period_end"`
	TimeSeriesID      *uuid.UUID  `gorm:"type:uuid" json:"time_series_id,omitempty"`
	TimeSeriesVersion int         `json:"time_series_version"`
	IssueType         IssueType   `gorm:"size:32;not null" json:"issue_type"`
	Message           string      `gorm:"size:255;not null" json:"message"`
	Details           string      `gorm:"type:text" json:"details"`
	Status            IssueStatus `gorm:"size:16;not null" json:"status"`
	ResolvedAt        *time.Time  `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SettlementIssue) TableName() string { return "settlement_issues" }
