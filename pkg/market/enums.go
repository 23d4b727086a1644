// Package market holds the enumerations shared across the DataHub data model.
package market

import (
	"time"

	"github.com/samber/lo"

	"github.com/nordlux/elcore/pkg/apperr"
)

// Resolution is the bucket size of a time series or price series.
type Resolution string

const (
	ResolutionPT1H  Resolution = "PT1H"
	ResolutionPT15M Resolution = "PT15M"
	ResolutionP1D   Resolution = "P1D"
	ResolutionP1M   Resolution = "P1M"
)

func (r Resolution) Validate() error {
	allowed := []Resolution{ResolutionPT1H, ResolutionPT15M, ResolutionP1D, ResolutionP1M}
	if !lo.Contains(allowed, r) {
		return apperr.New(apperr.ErrValidation, "unknown resolution %q", string(r))
	}
	return nil
}

// Duration is zero for calendar resolutions (P1M has no fixed length).
func (r Resolution) Duration() time.Duration {
	switch r {
	case ResolutionPT1H:
		return time.Hour
	case ResolutionPT15M:
		return 15 * time.Minute
	case ResolutionP1D:
		return 24 * time.Hour
	default:
		return 0
	}
}

// BucketStart truncates t down to the start of its bucket. P1M truncates to
// the first of the month in UTC.
func (r Resolution) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	switch r {
	case ResolutionPT1H:
		return t.Truncate(time.Hour)
	case ResolutionPT15M:
		return t.Truncate(15 * time.Minute)
	case ResolutionP1D:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case ResolutionP1M:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Aligned reports whether t sits exactly on a bucket boundary.
func (r Resolution) Aligned(t time.Time) bool {
	return r.BucketStart(t).Equal(t.UTC())
}

// QuantityQuality is the metering quality flag on an observation.
type QuantityQuality string

const (
	QualityMeasured   QuantityQuality = "MEASURED"
	QualityEstimated  QuantityQuality = "ESTIMATED"
	QualityCalculated QuantityQuality = "CALCULATED"
	QualityMissing    QuantityQuality = "MISSING"
)

func (q QuantityQuality) Validate() error {
	allowed := []QuantityQuality{QualityMeasured, QualityEstimated, QualityCalculated, QualityMissing}
	if !lo.Contains(allowed, q) {
		return apperr.New(apperr.ErrValidation, "unknown quantity quality %q", string(q))
	}
	return nil
}

// PriceArea is a Nordpool bidding zone.
type PriceArea string

const (
	PriceAreaDK1 PriceArea = "DK1"
	PriceAreaDK2 PriceArea = "DK2"
)

func (a PriceArea) Validate() error {
	if a != PriceAreaDK1 && a != PriceAreaDK2 {
		return apperr.New(apperr.ErrValidation, "unknown price area %q", string(a))
	}
	return nil
}

// CopenhagenLocation is loaded once; Danish civil time is used only for
// display grouping, never for storage.
var CopenhagenLocation = mustLoadLocation("Europe/Copenhagen")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
