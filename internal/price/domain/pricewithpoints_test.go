package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func point(priceID uuid.UUID, ts time.Time, v string) PricePoint {
	return PricePoint{
		ID:        uuid.New(),
		PriceID:   priceID,
		Timestamp: ts,
		Price:     decimal.RequireFromString(v),
	}
}

func TestPriceAtStepFunction(t *testing.T) {
	priceID := uuid.New()
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 1, 0)
	t3 := t1.AddDate(0, 2, 0)

	// Unsorted on purpose; the constructor sorts.
	pwp := NewPriceWithPoints(
		Price{ID: priceID, Type: Tariff},
		[]PricePoint{
			point(priceID, t3, "3"),
			point(priceID, t1, "1"),
			point(priceID, t2, "2"),
		},
		nil,
	)

	_, ok := pwp.PriceAt(t1.Add(-time.Second))
	assert.False(t, ok, "before the first point nothing resolves")

	v, ok := pwp.PriceAt(t1)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(1)))

	v, _ = pwp.PriceAt(t2.Add(-time.Second))
	assert.True(t, v.Equal(decimal.NewFromInt(1)))

	v, _ = pwp.PriceAt(t2)
	assert.True(t, v.Equal(decimal.NewFromInt(2)))

	v, _ = pwp.PriceAt(t3.AddDate(1, 0, 0))
	assert.True(t, v.Equal(decimal.NewFromInt(3)))
}

func TestPriceAtSubscriptionAlwaysFirstPoint(t *testing.T) {
	priceID := uuid.New()
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 1, 0)

	pwp := NewPriceWithPoints(
		Price{ID: priceID, Type: Subscription},
		[]PricePoint{
			point(priceID, t1, "21.56"),
			point(priceID, t2, "23.00"),
		},
		nil,
	)

	for _, at := range []time.Time{t1.Add(-time.Hour), t1, t2, t2.AddDate(0, 6, 0)} {
		v, ok := pwp.PriceAt(at)
		assert.True(t, ok)
		assert.True(t, v.Equal(decimal.RequireFromString("21.56")))
	}
}

func TestAveragePriceInHour(t *testing.T) {
	priceID := uuid.New()
	hour := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	pwp := NewPriceWithPoints(
		Price{ID: priceID, Type: Tariff},
		[]PricePoint{
			point(priceID, hour, "0.40"),
			point(priceID, hour.Add(15*time.Minute), "0.42"),
			point(priceID, hour.Add(30*time.Minute), "0.44"),
			point(priceID, hour.Add(45*time.Minute), "0.46"),
		},
		nil,
	)

	v, ok := pwp.AveragePriceInHour(hour)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("0.43")), "got %s", v)

	// No point in the hour falls back to the step lookup.
	v, ok = pwp.AveragePriceInHour(hour.Add(2 * time.Hour))
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("0.46")))
}

func TestPointsCutoffFreezesMigratedRates(t *testing.T) {
	priceID := uuid.New()
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	pwp := NewPriceWithPoints(
		Price{ID: priceID, Type: Tariff},
		[]PricePoint{
			point(priceID, t1, "0.50"),
			point(priceID, t2, "0.60"),
		},
		&cutoff,
	)

	assert.Equal(t, 1, pwp.PointCount())
	v, ok := pwp.PriceAt(t2.AddDate(0, 1, 0))
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("0.50")), "post-cutoff point must be ignored")
}
