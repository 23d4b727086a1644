package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	"github.com/nordlux/elcore/internal/reconciliation/domain"
	"github.com/nordlux/elcore/internal/reconciliation/repository"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
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

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&mpdomain.MeteringPoint{},
		&settlementdomain.Settlement{},
		&settlementdomain.SettlementLine{},
		&domain.WholesaleSettlement{},
		&domain.WholesaleSettlementLine{},
		&domain.ReconciliationResult{},
		&domain.ReconciliationLine{},
	))
	fc := clock.NewFakeClock(time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{DB: db, Log: zap.NewNop(), Clock: fc, Repo: repository.Provide()})
	return svc, db
}

func seedOurSettlement(t *testing.T, db *gorm.DB, gridArea string, lineAmounts map[string]string) {
	t.Helper()
	mp := mpdomain.MeteringPoint{
		ID:               uuid.New(),
		Gsrn:             "571313180400013562",
		Type:             mpdomain.TypeConsumption,
		Category:         mpdomain.CategoryParent,
		SettlementMethod: mpdomain.SettlementFlex,
		Resolution:       "PT1H",
		GridArea:         gridArea,
		PriceArea:        "DK1",
		GridCompanyGln:   "5790000432752",
	}
	require.NoError(t, db.Create(&mp).Error)

	total := decimal.Zero
	for _, amount := range lineAmounts {
		total = total.Add(decimal.RequireFromString(amount))
	}
	settlement := settlementdomain.Settlement{
		ID:              uuid.New(),
		MeteringPointID: mp.ID,
		SupplyID:        uuid.New(),
		PeriodStart:     janStart,
		PeriodEnd:       janEnd,
		TimeSeriesID:    uuid.New(),
		TotalEnergy:     decimal.NewFromInt(744),
		TotalAmount:     total,
		Status:          settlementdomain.StatusInvoiced,
		DocumentNumber:  1,
		CalculatedAt:    time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&settlement).Error)

	position := 1
	for description, amount := range lineAmounts {
		line := settlementdomain.SettlementLine{
			ID:           uuid.New(),
			SettlementID: settlement.ID,
			Position:     position,
			Source:       settlementdomain.SourceDataHubCharge,
			Description:  description,
			Quantity:     decimal.NewFromInt(744),
			UnitPrice:    decimal.Zero,
			Amount:       decimal.RequireFromString(amount),
		}
		require.NoError(t, db.Create(&line).Error)
		position++
	}
}

func ingest(t *testing.T, svc domain.Service, gridArea string, lineAmounts map[string]string) {
	t.Helper()
	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	var lines []domain.WholesaleLineInput
	for description, amount := range lineAmounts {
		lines = append(lines, domain.WholesaleLineInput{
			Description: description,
			Quantity:    decimal.NewFromInt(744),
			Amount:      decimal.RequireFromString(amount),
		})
	}
	_, err = svc.IngestWholesale(context.Background(), domain.IngestWholesaleRequest{
		GridArea:       gridArea,
		Period:         p,
		CounterpartGln: "5790000432752",
		Lines:          lines,
	})
	require.NoError(t, err)
}

func TestRunBalanced(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	seedOurSettlement(t, db, "344", map[string]string{
		"Nettarif C":  "297.60",
		"Systemtarif": "40.18",
	})
	ingest(t, svc, "344", map[string]string{
		"Nettarif C":  "297.60",
		"Systemtarif": "40.20",
	})

	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	result, err := svc.Run(ctx, "344", p)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusBalanced, result.Result.Status)
	assert.Equal(t, "-0.02", result.Result.DifferenceDkk.StringFixed(2))
	require.Len(t, result.Lines, 2)
	assert.Equal(t, "Nettarif C", result.Lines[0].Description)
	assert.True(t, result.Lines[0].DifferenceDkk.IsZero())
	assert.Equal(t, "-0.02", result.Lines[1].DifferenceDkk.StringFixed(2))
}

func TestRunDeviating(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	seedOurSettlement(t, db, "344", map[string]string{"Nettarif C": "297.60"})
	ingest(t, svc, "344", map[string]string{"Nettarif C": "350.00"})

	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	result, err := svc.Run(ctx, "344", p)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDeviating, result.Result.Status)
	assert.True(t, result.Result.DifferencePercent.Abs().GreaterThan(domain.BalanceThresholdPercent))
}

func TestRunLatestWholesaleWins(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	seedOurSettlement(t, db, "344", map[string]string{"Nettarif C": "297.60"})

	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)

	// First ingest deviates badly; the re-delivered one matches. The run
	// must pick the one with the newest ReceivedAt.
	_, err = svc.IngestWholesale(ctx, domain.IngestWholesaleRequest{
		GridArea:   "344",
		Period:     p,
		ReceivedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Lines: []domain.WholesaleLineInput{
			{Description: "Nettarif C", Quantity: decimal.NewFromInt(744), Amount: decimal.RequireFromString("999.99")},
		},
	})
	require.NoError(t, err)
	_, err = svc.IngestWholesale(ctx, domain.IngestWholesaleRequest{
		GridArea:   "344",
		Period:     p,
		ReceivedAt: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		Lines: []domain.WholesaleLineInput{
			{Description: "Nettarif C", Quantity: decimal.NewFromInt(744), Amount: decimal.RequireFromString("297.60")},
		},
	})
	require.NoError(t, err)

	result, err := svc.Run(ctx, "344", p)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBalanced, result.Result.Status)
	assert.True(t, result.Result.DifferenceDkk.IsZero())
}

func TestRunWithoutWholesaleFails(t *testing.T) {
	svc, _ := newService(t)
	p, err := period.Closed(janStart, janEnd)
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), "344", p)
	assert.Error(t, err)
}
