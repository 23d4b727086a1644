package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/internal/price/repository"
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
	require.NoError(t, db.AutoMigrate(
		&domain.Price{},
		&domain.PricePoint{},
		&domain.PriceLink{},
		&domain.SpotPrice{},
	))
	return New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
}

func TestSpotUpsertIdempotency(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]domain.SpotUpsert, 0, 24)
	for h := 0; h < 24; h++ {
		entries = append(entries, domain.SpotUpsert{
			PriceArea:      market.PriceAreaDK1,
			Timestamp:      base.Add(time.Duration(h) * time.Hour),
			PriceDkkPerKwh: decimal.RequireFromString("0.50"),
		})
	}

	result, err := svc.UpsertSpotPrices(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 24, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	result, err = svc.UpsertSpotPrices(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 24, result.Updated)

	end := base.Add(24 * time.Hour)
	p, err := period.Closed(base, end)
	require.NoError(t, err)
	spots, err := svc.SpotPricesFor(ctx, market.PriceAreaDK1, p)
	require.NoError(t, err)
	assert.Len(t, spots, 24, "replay must not change the stored set")
}

func TestReplacePricePoints(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	validity, err := period.Closed(start, start.AddDate(1, 0, 0))
	require.NoError(t, err)

	price, err := svc.Create(ctx, domain.CreatePriceRequest{
		ChargeID:    "NT-001",
		OwnerGln:    "5790000432752",
		Type:        domain.Tariff,
		Description: "Nettarif C",
		Validity:    validity,
		Category:    domain.CategoryNettarif,
	})
	require.NoError(t, err)

	// Seed two points, one inside the replace range and one outside.
	_, err = svc.AddPricePoint(ctx, price.ID, start, decimal.RequireFromString("0.40"))
	require.NoError(t, err)
	outside := start.AddDate(0, 2, 0)
	_, err = svc.AddPricePoint(ctx, price.ID, outside, decimal.RequireFromString("0.45"))
	require.NoError(t, err)

	end := start.AddDate(0, 1, 0)
	written, err := svc.ReplacePricePoints(ctx, price.ID, start, end, []domain.PointUpsert{
		{Timestamp: start, Price: decimal.RequireFromString("0.41")},
		{Timestamp: start.AddDate(0, 0, 15), Price: decimal.RequireFromString("0.42")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	pwp, err := svc.WithPoints(ctx, price.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pwp.PointCount(), "point outside the range must survive")

	v, ok := pwp.PriceAt(start)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("0.41")))

	v, _ = pwp.PriceAt(outside)
	assert.True(t, v.Equal(decimal.RequireFromString("0.45")))
}

func TestAddPricePointRejectsDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	validity, _ := period.Closed(start, start.AddDate(1, 0, 0))
	price, err := svc.Create(ctx, domain.CreatePriceRequest{
		ChargeID:    "SYS-001",
		OwnerGln:    "5790000432752",
		Type:        domain.Tariff,
		Description: "Systemtarif",
		Validity:    validity,
		Category:    domain.CategorySystemtarif,
	})
	require.NoError(t, err)

	_, err = svc.AddPricePoint(ctx, price.ID, start, decimal.RequireFromString("0.054"))
	require.NoError(t, err)

	_, err = svc.AddPricePoint(ctx, price.ID, start, decimal.RequireFromString("0.055"))
	assert.Error(t, err)
}
