package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/internal/timeseries/repository"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.TimeSeries{}, &domain.Observation{}))
	return New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
}

func january(t *testing.T) period.Period {
	t.Helper()
	p, err := period.Closed(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func hourlyObservations(p period.Period, qty string) []domain.ObservationInput {
	var out []domain.ObservationInput
	for ts := p.Start; ts.Before(*p.End); ts = ts.Add(time.Hour) {
		out = append(out, domain.ObservationInput{
			Timestamp: ts,
			Quantity:  decimal.RequireFromString(qty),
			Quality:   market.QualityMeasured,
		})
	}
	return out
}

func TestIngestSupersedesPreviousVersion(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	mp := uuid.New()
	p := january(t)

	first, err := svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations:    hourlyObservations(p, "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Series.Version)
	assert.True(t, first.Series.IsLatest)
	assert.Nil(t, first.SupersededID)

	second, err := svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations:    hourlyObservations(p, "0.9"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Series.Version)
	require.NotNil(t, second.SupersededID)
	assert.Equal(t, first.Series.ID, *second.SupersededID)
	assert.Equal(t, 1, second.SupersededVersion)

	versions, err := svc.VersionsFor(ctx, mp, p)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].IsLatest)
	assert.True(t, versions[1].IsLatest)

	latest, err := svc.LatestFor(ctx, mp, p)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.Series.ID, latest.Series.ID)
	assert.Len(t, latest.Observations, 744)
	assert.True(t, latest.TotalEnergy().Equal(decimal.RequireFromString("669.6")))
}

func TestIngestRejectsBadObservations(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	mp := uuid.New()
	p := january(t)

	_, err := svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
	})
	assert.True(t, apperr.IsValidation(err), "empty series must be rejected")

	_, err = svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations: []domain.ObservationInput{
			{Timestamp: p.Start.Add(30 * time.Minute), Quantity: decimal.NewFromInt(1), Quality: market.QualityMeasured},
		},
	})
	assert.True(t, apperr.IsValidation(err), "off-boundary timestamp must be rejected")

	_, err = svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations: []domain.ObservationInput{
			{Timestamp: p.End.Add(time.Hour), Quantity: decimal.NewFromInt(1), Quality: market.QualityMeasured},
		},
	})
	assert.True(t, apperr.IsValidation(err), "timestamp outside the period must be rejected")

	_, err = svc.Ingest(ctx, domain.IngestRequest{
		MeteringPointID: mp,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations: []domain.ObservationInput{
			{Timestamp: p.Start, Quantity: decimal.NewFromInt(1), Quality: market.QualityMeasured},
			{Timestamp: p.Start, Quantity: decimal.NewFromInt(2), Quality: market.QualityMeasured},
		},
	})
	assert.True(t, apperr.IsIntegrityViolation(err), "duplicate timestamps must be rejected")
}

func TestHourlyTotals(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := []domain.Observation{
		{Timestamp: base, Quantity: decimal.RequireFromString("0.25")},
		{Timestamp: base.Add(15 * time.Minute), Quantity: decimal.RequireFromString("0.25")},
		{Timestamp: base.Add(30 * time.Minute), Quantity: decimal.RequireFromString("0.25")},
		{Timestamp: base.Add(45 * time.Minute), Quantity: decimal.RequireFromString("0.25")},
		{Timestamp: base.Add(time.Hour), Quantity: decimal.RequireFromString("0.5")},
	}

	buckets := domain.HourlyTotals(obs)
	require.Len(t, buckets, 2)
	assert.Equal(t, base, buckets[0].Hour)
	assert.True(t, buckets[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, buckets[1].Quantity.Equal(decimal.RequireFromString("0.5")))
}
