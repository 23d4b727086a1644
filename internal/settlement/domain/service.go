package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/period"
)

var (
	ErrNoActiveSupply = apperr.New(apperr.ErrPreconditionFailed, "no active supply for the settlement period")
	ErrNoTimeSeries   = apperr.New(apperr.ErrPreconditionFailed, "no time series covers the settlement period")
	ErrAlreadySettled = apperr.New(apperr.ErrConflict, "settlement already exists for this period")
)

type SettlementWithLines struct {
	Settlement Settlement
	Lines      []SettlementLine
}

type CreateMigratedRequest struct {
	MeteringPointID uuid.UUID
	SupplyID        uuid.UUID
	Period          period.Period
	TotalEnergy     string
	TotalAmount     string
	HourlyJson      []byte
}

type OpenIssueRequest struct {
	MeteringPointID   uuid.UUID
	Period            period.Period
	TimeSeriesID      *uuid.UUID
	TimeSeriesVersion int
	IssueType         IssueType
	Message           string
	Details           string
}

type Service interface {
	// CalculateForPeriod assembles the pricing context for the metering
	// point, runs the validator and the calculator, and persists a
	// settlement in status Calculated. Creation is guarded by the
	// (mp, period, isCorrection) uniqueness key.
	CalculateForPeriod(ctx context.Context, meteringPointID uuid.UUID, p period.Period) (SettlementWithLines, error)

	// CalculateCorrection recalculates an invoiced settlement's period
	// against the latest time series version and persists the delta
	// settlement. The original moves to status Adjusted.
	CalculateCorrection(ctx context.Context, originalID uuid.UUID) (SettlementWithLines, error)

	// MarkInvoiced requires status Calculated and no open issues for the
	// settlement's (mp, period).
	MarkInvoiced(ctx context.Context, id uuid.UUID, externalInvoiceRef string) (Settlement, error)

	CreateMigrated(ctx context.Context, req CreateMigratedRequest) (Settlement, error)

	GetByID(ctx context.Context, id uuid.UUID) (SettlementWithLines, error)
	ListForMeteringPoint(ctx context.Context, meteringPointID uuid.UUID) ([]Settlement, error)
	ListByStatus(ctx context.Context, status SettlementStatus) ([]Settlement, error)
	FindFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period, isCorrection bool) (*Settlement, error)

	// OpenIssue is a no-op returning the existing row when an identical
	// issue is already open for the same (mp, period, type, message).
	OpenIssue(ctx context.Context, req OpenIssueRequest) (SettlementIssue, error)
	ResolveIssue(ctx context.Context, id uuid.UUID) (SettlementIssue, error)
	DismissIssue(ctx context.Context, id uuid.UUID) (SettlementIssue, error)
	OpenIssuesFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]SettlementIssue, error)
	ListIssues(ctx context.Context, status IssueStatus) ([]SettlementIssue, error)
}
