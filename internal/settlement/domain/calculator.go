package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	productdomain "github.com/nordlux/elcore/internal/product/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/money"
	"github.com/shopspring/decimal"
)

// MarginEntry is one active margin, base product or addon. The effective
// rate of a supply is the sum of its entries.
type MarginEntry struct {
	Name           string
	PriceDkkPerKwh decimal.Decimal
}

// CalculationInput carries everything the calculator needs. It performs no
// I/O; the service assembles the input from the stores.
type CalculationInput struct {
	Series        tsdomain.SeriesWithObservations
	DatahubPrices []*pricedomain.PriceWithPoints
	SpotPrices    []pricedomain.SpotPrice
	Margins       []MarginEntry
	PricingModel  productdomain.PricingModel
}

// LineDraft is a settlement line before persistence assigns identity.
type LineDraft struct {
	Source      LineSource
	PriceID     *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// CalculationResult is the frozen output of one calculator run.
type CalculationResult struct {
	TotalEnergy decimal.Decimal
	TotalAmount decimal.Decimal
	Lines       []LineDraft
}

// Calculate produces settlement lines from a time series, the linked DataHub
// charges, the spot series and the supplier margins.
//
// Lines come out in a fixed order: one per DataHub price in input order,
// then Spot, then Margin. Each line's amount is rounded to 2 dp exactly
// once, at line creation; the total sums the rounded amounts.
func Calculate(input CalculationInput) (CalculationResult, error) {
	if len(input.Series.Observations) == 0 {
		return CalculationResult{}, tsdomain.ErrEmptyTimeSeries
	}

	observations := make([]tsdomain.Observation, len(input.Series.Observations))
	copy(observations, input.Series.Observations)
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Timestamp.Before(observations[j].Timestamp)
	})

	seriesResolution := input.Series.Series.Resolution
	settlementPeriod := input.Series.Series.Period()

	var lines []LineDraft
	for _, pw := range input.DatahubPrices {
		switch pw.Price.Type {
		case pricedomain.Tariff:
			lines = append(lines, tariffLine(pw, observations, seriesResolution))
		case pricedomain.Subscription:
			days := decimal.NewFromInt(int64(settlementPeriod.Days()))
			rate, ok := pw.PriceAt(settlementPeriod.Start)
			if !ok {
				rate = decimal.Zero
			}
			id := pw.Price.ID
			lines = append(lines, LineDraft{
				Source:      SourceDataHubCharge,
				PriceID:     &id,
				Description: pw.Price.Description,
				Quantity:    days,
				UnitPrice:   rate,
				Amount:      money.RoundAmount(days.Mul(rate)),
			})
		case pricedomain.Fee:
			// Fees are event-driven and billed outside the monthly run.
		}
	}

	totalEnergy := tsdomain.TotalEnergy(observations)
	marginRate := decimal.Zero
	marginNames := make([]string, 0, len(input.Margins))
	for _, m := range input.Margins {
		marginRate = marginRate.Add(m.PriceDkkPerKwh)
		if m.Name != "" {
			marginNames = append(marginNames, m.Name)
		}
	}
	marginDescription := "Leverandørtillæg"
	if len(marginNames) > 0 {
		marginDescription = strings.Join(marginNames, " + ")
	}

	switch input.PricingModel {
	case productdomain.Fixed:
		lines = append(lines, LineDraft{
			Source:      SourceSupplierMargin,
			Description: "Elpris (fast)",
			Quantity:    totalEnergy,
			UnitPrice:   marginRate,
			Amount:      money.RoundAmount(totalEnergy.Mul(marginRate)),
		})
	default: // SpotAddon
		lines = append(lines, spotLine(observations, input.SpotPrices, seriesResolution))
		if len(input.Margins) > 0 {
			lines = append(lines, LineDraft{
				Source:      SourceSupplierMargin,
				Description: marginDescription,
				Quantity:    totalEnergy,
				UnitPrice:   marginRate,
				Amount:      money.RoundAmount(totalEnergy.Mul(marginRate)),
			})
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return CalculationResult{
		TotalEnergy: totalEnergy,
		TotalAmount: money.RoundAmount(total),
		Lines:       lines,
	}, nil
}

// tariffLine aggregates one DataHub tariff over the observations. An
// observation without a resolvable rate is skipped entirely; it does not
// count toward the line's quantity.
func tariffLine(pw *pricedomain.PriceWithPoints, observations []tsdomain.Observation, seriesResolution market.Resolution) LineDraft {
	subHourlyPrice := pw.Price.PriceResolution != nil && *pw.Price.PriceResolution == market.ResolutionPT15M
	quantity := decimal.Zero
	total := decimal.Zero
	for _, o := range observations {
		var rate decimal.Decimal
		var ok bool
		if seriesResolution == market.ResolutionPT1H && subHourlyPrice {
			rate, ok = pw.AveragePriceInHour(o.Timestamp)
		} else {
			rate, ok = pw.PriceAt(o.Timestamp)
		}
		if !ok {
			continue
		}
		quantity = quantity.Add(o.Quantity)
		total = total.Add(o.Quantity.Mul(rate))
	}
	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = total.Div(quantity)
	}
	id := pw.Price.ID
	return LineDraft{
		Source:      SourceDataHubCharge,
		PriceID:     &id,
		Description: pw.Price.Description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      money.RoundAmount(total),
	}
}

// spotLine prices the consumption against the day-ahead series. For an
// hourly series the rate is the average of the PT15M spots found inside the
// hour; missing quarters are not counted. Observations with no spot value at
// all do not contribute.
func spotLine(observations []tsdomain.Observation, spots []pricedomain.SpotPrice, seriesResolution market.Resolution) LineDraft {
	byTimestamp := make(map[int64]decimal.Decimal, len(spots))
	for _, s := range spots {
		byTimestamp[s.Timestamp.UTC().Unix()] = s.PriceDkkPerKwh
	}

	rateAt := func(t time.Time) (decimal.Decimal, bool) {
		t = t.UTC()
		if seriesResolution != market.ResolutionPT1H {
			v, ok := byTimestamp[t.Unix()]
			return v, ok
		}
		sum := decimal.Zero
		found := 0
		for q := 0; q < 4; q++ {
			if v, ok := byTimestamp[t.Add(time.Duration(q)*15*time.Minute).Unix()]; ok {
				sum = sum.Add(v)
				found++
			}
		}
		if found == 0 {
			return decimal.Zero, false
		}
		return sum.Div(decimal.NewFromInt(int64(found))), true
	}

	quantity := decimal.Zero
	total := decimal.Zero
	for _, o := range observations {
		rate, ok := rateAt(o.Timestamp)
		if !ok {
			continue
		}
		quantity = quantity.Add(o.Quantity)
		total = total.Add(o.Quantity.Mul(rate))
	}
	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = total.Div(quantity)
	}
	return LineDraft{
		Source:      SourceSpotPrice,
		Description: "Spotpris",
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      money.RoundAmount(total),
	}
}
