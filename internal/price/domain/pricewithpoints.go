package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PriceWithPoints couples a price with its sorted, immutable point series
// and answers "what was the rate at t" queries.
//
// A points cutoff freezes migrated settlements to the rates that were
// effective when the legacy system billed: points with timestamp >= cutoff
// are ignored.
type PriceWithPoints struct {
	Price  Price
	points []PricePoint
}

// NewPriceWithPoints sorts the points ascending and applies the optional
// cutoff. The input slice is not retained.
func NewPriceWithPoints(price Price, points []PricePoint, pointsCutoff *time.Time) *PriceWithPoints {
	kept := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if pointsCutoff != nil && !p.Timestamp.Before(*pointsCutoff) {
			continue
		}
		kept = append(kept, p)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Timestamp.Before(kept[j].Timestamp)
	})
	return &PriceWithPoints{Price: price, points: kept}
}

// PriceAt resolves the rate at t. Subscriptions return the first point's
// value regardless of t; tariffs and fees return the latest point with
// timestamp <= t. The second return is false when no point resolves.
func (p *PriceWithPoints) PriceAt(t time.Time) (decimal.Decimal, bool) {
	if len(p.points) == 0 {
		return decimal.Zero, false
	}
	if p.Price.Type == Subscription {
		return p.points[0].Price, true
	}
	// Latest point with Timestamp <= t.
	idx := sort.Search(len(p.points), func(i int) bool {
		return p.points[i].Timestamp.After(t)
	})
	if idx == 0 {
		return decimal.Zero, false
	}
	return p.points[idx-1].Price, true
}

// AveragePriceInHour averages the points inside [hourStart, hourStart+1h).
// With no point in the hour it falls back to PriceAt(hourStart).
func (p *PriceWithPoints) AveragePriceInHour(hourStart time.Time) (decimal.Decimal, bool) {
	hourEnd := hourStart.Add(time.Hour)
	sum := decimal.Zero
	count := 0
	for _, point := range p.points {
		if point.Timestamp.Before(hourStart) {
			continue
		}
		if !point.Timestamp.Before(hourEnd) {
			break
		}
		sum = sum.Add(point.Price)
		count++
	}
	if count == 0 {
		return p.PriceAt(hourStart)
	}
	return sum.Div(decimal.NewFromInt(int64(count))), true
}

// PointCount reports how many points survived the cutoff.
func (p *PriceWithPoints) PointCount() int { return len(p.points) }
