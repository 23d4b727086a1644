package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
)

type WholesaleLineInput struct {
	ChargeID    *string
	Description string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
}

type IngestWholesaleRequest struct {
	GridArea         string
	Period           period.Period
	CounterpartGln   string
	ProcessReference *string
	ReceivedAt       time.Time
	Lines            []WholesaleLineInput
}

type ResultWithLines struct {
	Result ReconciliationResult
	Lines  []ReconciliationLine
}

type Service interface {
	// IngestWholesale stores a hub wholesale settlement (BRS-027 data).
	IngestWholesale(ctx context.Context, req IngestWholesaleRequest) (WholesaleSettlement, error)

	// Run reconciles our settlement line totals for (gridArea, period)
	// against the latest wholesale settlement of the same key. Line
	// matching is by description.
	Run(ctx context.Context, gridArea string, p period.Period) (ResultWithLines, error)

	GetResult(ctx context.Context, id uuid.UUID) (ResultWithLines, error)
	ListResults(ctx context.Context, gridArea string) ([]ReconciliationResult, error)
}
