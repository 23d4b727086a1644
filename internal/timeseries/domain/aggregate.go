package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TotalEnergy sums observation quantities, rounded to 3 dp.
func TotalEnergy(observations []Observation) decimal.Decimal {
	total := decimal.Zero
	for _, o := range observations {
		total = total.Add(o.Quantity)
	}
	return total.RoundBank(3)
}

// HourlyBucket is one hour of aggregated energy.
type HourlyBucket struct {
	Hour     time.Time
	Quantity decimal.Decimal
}

// HourlyTotals truncates each observation down to its hour boundary and sums
// quantities per bucket, returned in ascending hour order. Used when
// sub-hourly data has to be compared against an hourly series.
func HourlyTotals(observations []Observation) []HourlyBucket {
	sums := make(map[time.Time]decimal.Decimal, len(observations))
	for _, o := range observations {
		hour := o.Timestamp.UTC().Truncate(time.Hour)
		sums[hour] = sums[hour].Add(o.Quantity)
	}
	buckets := make([]HourlyBucket, 0, len(sums))
	for hour, qty := range sums {
		buckets = append(buckets, HourlyBucket{Hour: hour, Quantity: qty.RoundBank(3)})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour.Before(buckets[j].Hour) })
	return buckets
}
