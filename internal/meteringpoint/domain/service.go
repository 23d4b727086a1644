package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
)

// CreateMeteringPointRequest carries BRS-004 master data for a new GSRN.
type CreateMeteringPointRequest struct {
	Gsrn             string
	Type             MeteringPointType
	Category         MeteringPointCategory
	SettlementMethod SettlementMethod
	Resolution       market.Resolution
	GridArea         string
	PriceArea        market.PriceArea
	GridCompanyGln   string
}

// UpdateMasterDataRequest carries a BRS-006 change. Nil fields stay as-is.
type UpdateMasterDataRequest struct {
	Gsrn             string
	SettlementMethod *SettlementMethod
	Resolution       *market.Resolution
	GridArea         *string
	GridCompanyGln   *string
}

type Service interface {
	Create(ctx context.Context, req CreateMeteringPointRequest) (MeteringPoint, error)
	UpdateMasterData(ctx context.Context, req UpdateMasterDataRequest) (MeteringPoint, error)
	// SetConnectionState handles BRS-008 (connection), BRS-013
	// (disconnect/reconnect) and BRS-007 (closedown).
	SetConnectionState(ctx context.Context, gsrn string, state ConnectionState) (MeteringPoint, error)
	SetHasActiveSupply(ctx context.Context, gsrn string, active bool) error
	GetByGsrn(ctx context.Context, gsrn string) (MeteringPoint, error)
	GetByID(ctx context.Context, id uuid.UUID) (MeteringPoint, error)
}
