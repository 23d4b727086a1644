package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
)

var (
	ErrSeriesNotFound   = apperr.New(apperr.ErrNotFound, "time series not found")
	ErrEmptyTimeSeries  = apperr.New(apperr.ErrValidation, "time series has no observations")
	ErrObservationAlign = apperr.New(apperr.ErrValidation, "observation not aligned to resolution")
)

type ObservationInput struct {
	Timestamp time.Time
	Quantity  decimal.Decimal
	Quality   market.QuantityQuality
}

type IngestRequest struct {
	MeteringPointID uuid.UUID
	Period          period.Period
	Resolution      market.Resolution
	TransactionID   *string
	Observations    []ObservationInput
}

// IngestResult reports the stored series and which series, if any, it
// superseded. SupersededVersion is 0 when this is the first version.
type IngestResult struct {
	Series            TimeSeries
	SupersededID      *uuid.UUID
	SupersededVersion int
}

type Service interface {
	// Ingest stores a new series. If a latest series already exists for the
	// same (metering point, period), it is superseded and the new series
	// takes Version = old.Version + 1, all in one transaction.
	Ingest(ctx context.Context, req IngestRequest) (IngestResult, error)

	GetByID(ctx context.Context, id uuid.UUID) (SeriesWithObservations, error)
	LatestFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) (*SeriesWithObservations, error)
	VersionsFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]TimeSeries, error)
}
