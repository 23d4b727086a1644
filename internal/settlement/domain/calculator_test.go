package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	productdomain "github.com/nordlux/elcore/internal/product/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	janStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	janEnd   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
)

func hourlySeries(t *testing.T, factor string) tsdomain.SeriesWithObservations {
	t.Helper()
	series := tsdomain.TimeSeries{
		ID:              uuid.New(),
		MeteringPointID: uuid.New(),
		PeriodStart:     janStart,
		PeriodEnd:       janEnd,
		Resolution:      market.ResolutionPT1H,
		Version:         1,
		IsLatest:        true,
	}
	qty := decimal.RequireFromString(factor)
	var observations []tsdomain.Observation
	for ts := janStart; ts.Before(janEnd); ts = ts.Add(time.Hour) {
		observations = append(observations, tsdomain.Observation{
			ID:           uuid.New(),
			TimeSeriesID: series.ID,
			Timestamp:    ts,
			Quantity:     qty,
			Quality:      market.QualityMeasured,
		})
	}
	return tsdomain.SeriesWithObservations{Series: series, Observations: observations}
}

func flatPrice(priceType pricedomain.PriceType, category pricedomain.PriceCategory, description, rate string) *pricedomain.PriceWithPoints {
	price := pricedomain.Price{
		ID:            uuid.New(),
		ChargeID:      string(category),
		OwnerGln:      "5790000432752",
		Type:          priceType,
		Description:   description,
		ValidityStart: janStart,
		Category:      category,
	}
	points := []pricedomain.PricePoint{{
		ID:        uuid.New(),
		PriceID:   price.ID,
		Timestamp: janStart,
		Price:     decimal.RequireFromString(rate),
	}}
	return pricedomain.NewPriceWithPoints(price, points, nil)
}

func nominalPrices() []*pricedomain.PriceWithPoints {
	return []*pricedomain.PriceWithPoints{
		flatPrice(pricedomain.Tariff, pricedomain.CategoryNettarif, "Nettarif C", "0.40"),
		flatPrice(pricedomain.Tariff, pricedomain.CategorySystemtarif, "Systemtarif", "0.054"),
		flatPrice(pricedomain.Tariff, pricedomain.CategoryTransmissionstarif, "Transmissionstarif", "0.049"),
		flatPrice(pricedomain.Tariff, pricedomain.CategoryElafgift, "Elafgift", "0.761"),
		flatPrice(pricedomain.Tariff, pricedomain.CategoryBalancetarif, "Balancetarif", "0.00229"),
		flatPrice(pricedomain.Subscription, pricedomain.CategoryNetabonnement, "Net abonnement", "21.56"),
	}
}

func constantSpots(rate string) []pricedomain.SpotPrice {
	value := decimal.RequireFromString(rate)
	var spots []pricedomain.SpotPrice
	for ts := janStart; ts.Before(janEnd); ts = ts.Add(time.Hour) {
		spots = append(spots, pricedomain.SpotPrice{
			ID:             uuid.New(),
			PriceArea:      market.PriceAreaDK1,
			Timestamp:      ts,
			PriceDkkPerKwh: value,
		})
	}
	return spots
}

func nominalInput(t *testing.T, factor string) CalculationInput {
	return CalculationInput{
		Series:        hourlySeries(t, factor),
		DatahubPrices: nominalPrices(),
		SpotPrices:    constantSpots("0.50"),
		Margins:       []MarginEntry{{Name: "Nordlux Spot", PriceDkkPerKwh: decimal.RequireFromString("0.15")}},
		PricingModel:  productdomain.SpotAddon,
	}
}

func lineAmount(t *testing.T, lines []LineDraft, description string) decimal.Decimal {
	t.Helper()
	for _, l := range lines {
		if l.Description == description {
			return l.Amount
		}
	}
	t.Fatalf("no line %q", description)
	return decimal.Zero
}

func TestCalculateNominalJanuary(t *testing.T) {
	result, err := Calculate(nominalInput(t, "1"))
	require.NoError(t, err)

	assert.True(t, result.TotalEnergy.Equal(decimal.NewFromInt(744)),
		"total energy: %s", result.TotalEnergy)
	require.Len(t, result.Lines, 8)

	// Six DataHub lines first, in input order, then Spot, then Margin.
	assert.Equal(t, SourceDataHubCharge, result.Lines[0].Source)
	assert.Equal(t, SourceDataHubCharge, result.Lines[5].Source)
	assert.Equal(t, SourceSpotPrice, result.Lines[6].Source)
	assert.Equal(t, SourceSupplierMargin, result.Lines[7].Source)

	for _, l := range result.Lines[:5] {
		assert.True(t, l.Quantity.Equal(decimal.NewFromInt(744)), "%s quantity: %s", l.Description, l.Quantity)
	}

	assert.Equal(t, "297.6", lineAmount(t, result.Lines, "Nettarif C").String())
	assert.Equal(t, "40.18", lineAmount(t, result.Lines, "Systemtarif").String())
	assert.Equal(t, "36.46", lineAmount(t, result.Lines, "Transmissionstarif").String())
	assert.Equal(t, "566.18", lineAmount(t, result.Lines, "Elafgift").String())
	assert.Equal(t, "1.7", lineAmount(t, result.Lines, "Balancetarif").String())

	subscription := result.Lines[5]
	assert.True(t, subscription.Quantity.Equal(decimal.NewFromInt(31)))
	assert.Equal(t, "668.36", subscription.Amount.String())

	assert.Equal(t, "372", lineAmount(t, result.Lines, "Spotpris").String())
	assert.Equal(t, "111.6", lineAmount(t, result.Lines, "Nordlux Spot").String())

	sum := decimal.Zero
	for _, l := range result.Lines {
		sum = sum.Add(l.Amount)
	}
	assert.True(t, result.TotalAmount.Equal(sum), "total must equal the sum of rounded lines")
	assert.Equal(t, "2094.08", result.TotalAmount.StringFixed(2))
}

func TestCalculateDeterminism(t *testing.T) {
	a, err := Calculate(nominalInput(t, "1"))
	require.NoError(t, err)
	b, err := Calculate(nominalInput(t, "1"))
	require.NoError(t, err)

	require.Len(t, b.Lines, len(a.Lines))
	for i := range a.Lines {
		assert.Equal(t, a.Lines[i].Description, b.Lines[i].Description)
		assert.True(t, a.Lines[i].Quantity.Equal(b.Lines[i].Quantity))
		assert.True(t, a.Lines[i].Amount.Equal(b.Lines[i].Amount))
	}
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
}

func TestCalculateEmptySeries(t *testing.T) {
	input := nominalInput(t, "1")
	input.Series.Observations = nil
	_, err := Calculate(input)
	assert.ErrorIs(t, err, tsdomain.ErrEmptyTimeSeries)
}

func TestCalculateFixedPricingModel(t *testing.T) {
	input := nominalInput(t, "1")
	input.PricingModel = productdomain.Fixed
	input.Margins = []MarginEntry{{Name: "Nordlux Fast", PriceDkkPerKwh: decimal.RequireFromString("0.65")}}

	result, err := Calculate(input)
	require.NoError(t, err)

	// No spot line under the fixed model.
	for _, l := range result.Lines {
		assert.NotEqual(t, SourceSpotPrice, l.Source)
	}
	fixed := result.Lines[len(result.Lines)-1]
	assert.Equal(t, SourceSupplierMargin, fixed.Source)
	assert.Equal(t, "Elpris (fast)", fixed.Description)
	assert.True(t, fixed.Quantity.Equal(decimal.NewFromInt(744)))
	assert.Equal(t, "483.6", fixed.Amount.String())
}

func TestSpotAveragingSubHourly(t *testing.T) {
	hour := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	series := tsdomain.SeriesWithObservations{
		Series: tsdomain.TimeSeries{
			ID:          uuid.New(),
			PeriodStart: hour,
			PeriodEnd:   hour.Add(time.Hour),
			Resolution:  market.ResolutionPT1H,
			Version:     1,
		},
		Observations: []tsdomain.Observation{{
			Timestamp: hour,
			Quantity:  decimal.NewFromInt(1),
			Quality:   market.QualityMeasured,
		}},
	}
	var spots []pricedomain.SpotPrice
	for i, rate := range []string{"0.40", "0.42", "0.44", "0.46"} {
		spots = append(spots, pricedomain.SpotPrice{
			PriceArea:      market.PriceAreaDK1,
			Timestamp:      hour.Add(time.Duration(i) * 15 * time.Minute),
			PriceDkkPerKwh: decimal.RequireFromString(rate),
		})
	}

	result, err := Calculate(CalculationInput{
		Series:       series,
		SpotPrices:   spots,
		PricingModel: productdomain.SpotAddon,
	})
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, "0.43", result.Lines[0].Amount.String())
}

func TestTariffSubHourlyPriceOnHourlySeries(t *testing.T) {
	hour := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	res := market.ResolutionPT15M
	price := pricedomain.Price{
		ID:              uuid.New(),
		ChargeID:        "NT-Q",
		OwnerGln:        "5790000432752",
		Type:            pricedomain.Tariff,
		Description:     "Nettarif kvarter",
		ValidityStart:   janStart,
		Category:        pricedomain.CategoryNettarif,
		PriceResolution: &res,
	}
	var points []pricedomain.PricePoint
	for i, rate := range []string{"0.40", "0.42", "0.44", "0.46"} {
		points = append(points, pricedomain.PricePoint{
			ID:        uuid.New(),
			PriceID:   price.ID,
			Timestamp: hour.Add(time.Duration(i) * 15 * time.Minute),
			Price:     decimal.RequireFromString(rate),
		})
	}

	series := tsdomain.SeriesWithObservations{
		Series: tsdomain.TimeSeries{
			ID:          uuid.New(),
			PeriodStart: hour,
			PeriodEnd:   hour.Add(time.Hour),
			Resolution:  market.ResolutionPT1H,
			Version:     1,
		},
		Observations: []tsdomain.Observation{{
			Timestamp: hour,
			Quantity:  decimal.NewFromInt(1),
			Quality:   market.QualityMeasured,
		}},
	}

	result, err := Calculate(CalculationInput{
		Series:        series,
		DatahubPrices: []*pricedomain.PriceWithPoints{pricedomain.NewPriceWithPoints(price, points, nil)},
		PricingModel:  productdomain.SpotAddon,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.43", lineAmount(t, result.Lines, "Nettarif kvarter").String())
}

func asSettlementLines(drafts []LineDraft) []SettlementLine {
	lines := make([]SettlementLine, 0, len(drafts))
	for i, d := range drafts {
		lines = append(lines, SettlementLine{
			ID:           uuid.New(),
			SettlementID: uuid.New(),
			Position:     i + 1,
			Source:       d.Source,
			PriceID:      d.PriceID,
			Description:  d.Description,
			Quantity:     d.Quantity,
			UnitPrice:    d.UnitPrice,
			Amount:       d.Amount,
		})
	}
	return lines
}

func TestCorrectionIdenticalSeriesIsZero(t *testing.T) {
	input := nominalInput(t, "1")
	original, err := Calculate(input)
	require.NoError(t, err)

	correction, err := CalculateCorrection(input, original.TotalEnergy, asSettlementLines(original.Lines))
	require.NoError(t, err)
	assert.Empty(t, correction.Lines)
	assert.True(t, correction.TotalAmount.IsZero())
	assert.True(t, correction.TotalEnergy.IsZero())
}

func TestCorrectionAfterMeterRevision(t *testing.T) {
	input := nominalInput(t, "1")
	original, err := Calculate(input)
	require.NoError(t, err)

	revised := nominalInput(t, "0.9")
	// The same price catalogue must be used so line keys match.
	revised.DatahubPrices = input.DatahubPrices

	correction, err := CalculateCorrection(revised, original.TotalEnergy, asSettlementLines(original.Lines))
	require.NoError(t, err)

	assert.Equal(t, "-74.4", correction.TotalEnergy.String())

	// The subscription does not change with energy, so it is omitted. Five
	// tariffs plus spot plus margin remain.
	require.Len(t, correction.Lines, 7)
	for _, l := range correction.Lines {
		assert.Contains(t, l.Description, "(justering)")
		assert.True(t, l.Amount.IsNegative(), "%s should be negative: %s", l.Description, l.Amount)
	}

	assert.Equal(t, "-29.76", lineAmount(t, correction.Lines, "Nettarif C (justering)").String())
	assert.Equal(t, "-37.2", lineAmount(t, correction.Lines, "Spotpris (justering)").String())
	assert.Equal(t, "-11.16", lineAmount(t, correction.Lines, "Nordlux Spot (justering)").String())

	// The energy-dependent part of the original total is everything except
	// the subscription line; minus ten percent of it, to the ore.
	assert.Equal(t, "-142.57", correction.TotalAmount.StringFixed(2))
}
