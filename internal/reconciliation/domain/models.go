// Package domain models the wholesale settlement the hub sends per grid
// area and the reconciliation of our own settlement totals against it.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
)

// WholesaleSettlement is DataHub's own settlement for a grid area and
// period, ingested through BRS-027. Stored as-is.
type WholesaleSettlement struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GridArea         string    `gorm:"size:8;not null;index:idx_wholesale_area_period,priority:1" json:"grid_area"`
	PeriodStart      time.Time `gorm:"not null;index:idx_wholesale_area_period,priority:2" json:"period_start"`
	PeriodEnd        time.Time `gorm:"not null;index:idx_wholesale_area_period,priority:3" json:"period_end"`
	CounterpartGln   string    `gorm:"size:13" json:"counterpart_gln"`
	ProcessReference *string   `gorm:"size:64" json:"process_reference,omitempty"`
	ReceivedAt       time.Time `gorm:"not null" json:"received_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (WholesaleSettlement) TableName() string { return "wholesale_settlements" }

func (w WholesaleSettlement) Period() period.Period {
	p, _ := period.Closed(w.PeriodStart, w.PeriodEnd)
	return p
}

type WholesaleSettlementLine struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	WholesaleSettlementID uuid.UUID       `gorm:"type:uuid;not null;index" json:"wholesale_settlement_id"`
	ChargeID              *string         `gorm:"size:64" json:"charge_id,omitempty"`
	Description           string          `gorm:"size:255;not null" json:"description"`
	Quantity              decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Amount                decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}

func (WholesaleSettlementLine) TableName() string { return "wholesale_settlement_lines" }

type ReconciliationStatus string

const (
	StatusBalanced  ReconciliationStatus = "BALANCED"
	StatusDeviating ReconciliationStatus = "DEVIATING"
)

// BalanceThresholdPercent is the absolute deviation tolerated before a run
// is flagged.
var BalanceThresholdPercent = decimal.RequireFromString("0.5")

type ReconciliationResult struct {
	ID                uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	GridArea          string               `gorm:"size:8;not null;index" json:"grid_area"`
	PeriodStart       time.Time            `gorm:"not null" json:"period_start"`
	PeriodEnd         time.Time            `gorm:"not null" json:"period_end"`
	OurTotalDkk       decimal.Decimal      `gorm:"type:numeric;not null" json:"our_total_dkk"`
	DataHubTotalDkk   decimal.Decimal      `gorm:"type:numeric;not null" json:"datahub_total_dkk"`
	DifferenceDkk     decimal.Decimal      `gorm:"type:numeric;not null" json:"difference_dkk"`
	DifferencePercent decimal.Decimal      `gorm:"type:numeric;not null" json:"difference_percent"`
	Status            ReconciliationStatus `gorm:"size:16;not null" json:"status"`
	RunAt             time.Time            `gorm:"not null" json:"run_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReconciliationResult) TableName() string { return "reconciliation_results" }

type ReconciliationLine struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReconciliationResultID uuid.UUID       `gorm:"type:uuid;not null;index" json:"reconciliation_result_id"`
	Description            string          `gorm:"size:255;not null" json:"description"`
	OurAmountDkk           decimal.Decimal `gorm:"type:numeric;not null" json:"our_amount_dkk"`
	DataHubAmountDkk       decimal.Decimal `gorm:"type:numeric;not null" json:"datahub_amount_dkk"`
	DifferenceDkk          decimal.Decimal `gorm:"type:numeric;not null" json:"difference_dkk"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReconciliationLine) TableName() string { return "reconciliation_lines" }
