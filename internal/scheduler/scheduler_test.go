package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	cdomain "github.com/nordlux/elcore/internal/customer/domain"
	customerrepo "github.com/nordlux/elcore/internal/customer/repository"
	customersvc "github.com/nordlux/elcore/internal/customer/service"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	mprepo "github.com/nordlux/elcore/internal/meteringpoint/repository"
	mpsvc "github.com/nordlux/elcore/internal/meteringpoint/service"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	pricerepo "github.com/nordlux/elcore/internal/price/repository"
	pricesvc "github.com/nordlux/elcore/internal/price/service"
	productdomain "github.com/nordlux/elcore/internal/product/domain"
	productrepo "github.com/nordlux/elcore/internal/product/repository"
	productsvc "github.com/nordlux/elcore/internal/product/service"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	settlementrepo "github.com/nordlux/elcore/internal/settlement/repository"
	settlementsvc "github.com/nordlux/elcore/internal/settlement/service"
	supplydomain "github.com/nordlux/elcore/internal/supply/domain"
	supplyrepo "github.com/nordlux/elcore/internal/supply/repository"
	supplysvc "github.com/nordlux/elcore/internal/supply/service"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	tsrepo "github.com/nordlux/elcore/internal/timeseries/repository"
	tssvc "github.com/nordlux/elcore/internal/timeseries/service"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	janStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	janEnd   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	scheduler   *Scheduler
	clock       *clock.FakeClock
	settlements settlementdomain.Service
	series      tsdomain.Service

	meteringPoint mpdomain.MeteringPoint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&mpdomain.MeteringPoint{},
		&cdomain.Customer{},
		&supplydomain.Supply{},
		&supplydomain.SupplyProductPeriod{},
		&productdomain.SupplierProduct{},
		&productdomain.SupplierMargin{},
		&pricedomain.Price{},
		&pricedomain.PricePoint{},
		&pricedomain.PriceLink{},
		&pricedomain.SpotPrice{},
		&tsdomain.TimeSeries{},
		&tsdomain.Observation{},
		&settlementdomain.Settlement{},
		&settlementdomain.SettlementLine{},
		&settlementdomain.SettlementIssue{},
	))

	log := zap.NewNop()
	fc := clock.NewFakeClock(time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC))

	mp := mpsvc.New(mpsvc.Params{DB: db, Log: log, Repo: mprepo.Provide()})
	customers := customersvc.New(customersvc.Params{DB: db, Log: log, Repo: customerrepo.Provide()})
	supplies := supplysvc.New(supplysvc.Params{DB: db, Log: log, Repo: supplyrepo.Provide(), MpSvc: mp, MpRepo: mprepo.Provide()})
	products := productsvc.New(productsvc.Params{DB: db, Log: log, Repo: productrepo.Provide()})
	prices := pricesvc.New(pricesvc.Params{DB: db, Log: log, Repo: pricerepo.Provide()})
	series := tssvc.New(tssvc.Params{DB: db, Log: log, Repo: tsrepo.Provide()})
	settlements := settlementsvc.New(settlementsvc.Params{
		DB:             db,
		Log:            log,
		Clock:          fc,
		Repo:           settlementrepo.Provide(),
		MeteringPoints: mp,
		Supplies:       supplies,
		TimeSeries:     series,
		Prices:         prices,
		Products:       products,
	})

	scheduler := &Scheduler{
		db:          db,
		log:         log,
		clock:       fc,
		cfg:         config.WorkerConfig{SettlementBatch: 25},
		settlements: settlements,
	}

	ctx := context.Background()
	f := &fixture{scheduler: scheduler, clock: fc, settlements: settlements, series: series}

	f.meteringPoint, err = mp.Create(ctx, mpdomain.CreateMeteringPointRequest{
		Gsrn:             "571313180400013562",
		Type:             mpdomain.TypeConsumption,
		SettlementMethod: mpdomain.SettlementFlex,
		Resolution:       market.ResolutionPT1H,
		GridArea:         "344",
		PriceArea:        market.PriceAreaDK1,
		GridCompanyGln:   "5790000432752",
	})
	require.NoError(t, err)

	cpr := "0101901234"
	customer, err := customers.Create(ctx, cdomain.CreateCustomerRequest{Name: "Jens Hansen", Cpr: &cpr})
	require.NoError(t, err)

	supply, err := supplies.Create(ctx, supplydomain.CreateSupplyRequest{
		MeteringPointID: f.meteringPoint.ID,
		CustomerID:      customer.ID,
		Start:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	product, err := products.Create(ctx, productdomain.CreateProductRequest{
		SupplierIdentityID: uuid.New(),
		Name:               "Nordlux Spot",
		PricingModel:       productdomain.SpotAddon,
	})
	require.NoError(t, err)
	_, err = products.UpsertMargins(ctx, []productdomain.MarginUpsert{{
		SupplierProductID: product.ID,
		ValidFrom:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PriceDkkPerKwh:    decimal.RequireFromString("0.15"),
	}})
	require.NoError(t, err)
	_, err = supplies.AssignProduct(ctx, supplydomain.AssignProductRequest{
		SupplyID:          supply.ID,
		SupplierProductID: product.ID,
		Start:             time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	spots := make([]pricedomain.SpotUpsert, 0, 744)
	for ts := janStart; ts.Before(janEnd); ts = ts.Add(time.Hour) {
		spots = append(spots, pricedomain.SpotUpsert{
			PriceArea:      market.PriceAreaDK1,
			Timestamp:      ts,
			PriceDkkPerKwh: decimal.RequireFromString("0.50"),
		})
	}
	_, err = prices.UpsertSpotPrices(ctx, spots)
	require.NoError(t, err)

	f.ingestJanuary(t, "1")
	return f
}

func (f *fixture) ingestJanuary(t *testing.T, hourlyKwh string) {
	t.Helper()
	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	quantity := decimal.RequireFromString(hourlyKwh)
	observations := make([]tsdomain.ObservationInput, 0, 744)
	for ts := janStart; ts.Before(janEnd); ts = ts.Add(time.Hour) {
		observations = append(observations, tsdomain.ObservationInput{
			Timestamp: ts,
			Quantity:  quantity,
			Quality:   market.QualityMeasured,
		})
	}
	_, err = f.series.Ingest(context.Background(), tsdomain.IngestRequest{
		MeteringPointID: f.meteringPoint.ID,
		Period:          p,
		Resolution:      market.ResolutionPT1H,
		Observations:    observations,
	})
	require.NoError(t, err)
}

func TestRunOnceSchedulesCompletedPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.scheduler.RunOnce(ctx))

	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	settlement, err := f.settlements.FindFor(ctx, f.meteringPoint.ID, p, false)
	require.NoError(t, err)
	require.NotNil(t, settlement)
	assert.Equal(t, settlementdomain.StatusCalculated, settlement.Status)
	assert.Equal(t, "744", settlement.TotalEnergy.String())

	// A second run finds nothing new.
	require.NoError(t, f.scheduler.RunOnce(ctx))
	all, err := f.settlements.ListForMeteringPoint(ctx, f.meteringPoint.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunOnceSkipsUnfinishedPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Roll the clock back into January; the period has not ended yet.
	f.clock.Advance(-20 * 24 * time.Hour)
	require.NoError(t, f.scheduler.RunOnce(ctx))

	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	settlement, err := f.settlements.FindFor(ctx, f.meteringPoint.ID, p, false)
	require.NoError(t, err)
	assert.Nil(t, settlement)
}

func TestRunOnceSchedulesCorrectionAfterSupersession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.scheduler.RunOnce(ctx))
	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	original, err := f.settlements.FindFor(ctx, f.meteringPoint.ID, p, false)
	require.NoError(t, err)
	require.NotNil(t, original)

	// Clear the validator's findings so the settlement can be invoiced.
	issues, err := f.settlements.OpenIssuesFor(ctx, f.meteringPoint.ID, p)
	require.NoError(t, err)
	for _, issue := range issues {
		_, err = f.settlements.DismissIssue(ctx, issue.ID)
		require.NoError(t, err)
	}
	_, err = f.settlements.MarkInvoiced(ctx, original.ID, "INV-1001")
	require.NoError(t, err)

	// No correction while the invoiced settlement matches the latest series.
	require.NoError(t, f.scheduler.RunOnce(ctx))
	correction, err := f.settlements.FindFor(ctx, f.meteringPoint.ID, p, true)
	require.NoError(t, err)
	assert.Nil(t, correction)

	f.ingestJanuary(t, "0.9")
	require.NoError(t, f.scheduler.RunOnce(ctx))

	correction, err = f.settlements.FindFor(ctx, f.meteringPoint.ID, p, true)
	require.NoError(t, err)
	require.NotNil(t, correction)
	assert.True(t, correction.IsCorrection)
	require.NotNil(t, correction.PreviousSettlementID)
	assert.Equal(t, original.ID, *correction.PreviousSettlementID)
	assert.Equal(t, "-74.4", correction.TotalEnergy.String())

	adjusted, err := f.settlements.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, settlementdomain.StatusAdjusted, adjusted.Settlement.Status)
}
