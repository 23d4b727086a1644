// Package domain holds the versioned metered-data model. A time series is
// keyed by (metering point, period, version); at most one version per key
// carries IsLatest.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
)

type TimeSeries struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	MeteringPointID uuid.UUID         `gorm:"type:uuid;index:idx_ts_mp_period,priority:1;not null" json:"metering_point_id"`
	PeriodStart     time.Time         `gorm:"index:idx_ts_mp_period,priority:2;not null" json:"period_start"`
	PeriodEnd       time.Time         `gorm:"index:idx_ts_mp_period,priority:3;not null" json:"period_end"`
	Resolution      market.Resolution `gorm:"size:8;not null" json:"resolution"`
	Version         int               `gorm:"not null" json:"version"`
	IsLatest        bool              `gorm:"not null;default:false" json:"is_latest"`
	TransactionID   *string           `gorm:"size:64" json:"transaction_id,omitempty"`
	ReceivedAt      time.Time         `gorm:"not null" json:"received_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TimeSeries) TableName() string { return "time_series" }

func (ts TimeSeries) Period() period.Period {
	p, _ := period.Closed(ts.PeriodStart, ts.PeriodEnd)
	return p
}

type Observation struct {
	ID           uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	TimeSeriesID uuid.UUID              `gorm:"type:uuid;uniqueIndex:uq_obs_series_ts,priority:1;not null" json:"time_series_id"`
	Timestamp    time.Time              `gorm:"uniqueIndex:uq_obs_series_ts,priority:2;not null" json:"timestamp"`
	Quantity     decimal.Decimal        `gorm:"type:numeric;not null" json:"quantity"`
	Quality      market.QuantityQuality `gorm:"size:16;not null" json:"quality"`

	CreatedAt time.Time `json:"created_at"`
}

func (Observation) TableName() string { return "observations" }

// SeriesWithObservations pairs a series with its ordered observations.
type SeriesWithObservations struct {
	Series       TimeSeries
	Observations []Observation
}

func (s SeriesWithObservations) TotalEnergy() decimal.Decimal {
	return TotalEnergy(s.Observations)
}
