package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
)

type CreatePriceRequest struct {
	ChargeID      string
	OwnerGln      string
	Type          PriceType
	Description   string
	Validity      period.Period
	VatExempt     bool
	Resolution    *market.Resolution
	IsTax         bool
	IsPassThrough bool
	Category      PriceCategory
}

type UpdatePriceInfoRequest struct {
	PriceID       uuid.UUID
	Description   *string
	IsTax         *bool
	IsPassThrough *bool
}

type PointUpsert struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

type SpotUpsert struct {
	PriceArea      market.PriceArea
	Timestamp      time.Time
	PriceDkkPerKwh decimal.Decimal
}

// UpsertResult counts the effect of an idempotent upsert.
type UpsertResult struct {
	Inserted int
	Updated  int
}

type CreateLinkRequest struct {
	MeteringPointID uuid.UUID
	PriceID         uuid.UUID
	Start           time.Time
	End             *time.Time
}

type Service interface {
	Create(ctx context.Context, req CreatePriceRequest) (Price, error)
	GetByChargeID(ctx context.Context, chargeID, ownerGln string) (Price, error)
	UpdatePriceInfo(ctx context.Context, req UpdatePriceInfoRequest) (Price, error)
	UpdateValidity(ctx context.Context, priceID uuid.UUID, validity period.Period) (Price, error)
	UpdateCategory(ctx context.Context, priceID uuid.UUID, category PriceCategory) (Price, error)
	UpdateVatExempt(ctx context.Context, priceID uuid.UUID, vatExempt bool) (Price, error)

	AddPricePoint(ctx context.Context, priceID uuid.UUID, at time.Time, value decimal.Decimal) (PricePoint, error)
	// ReplacePricePoints replaces every point with timestamp in
	// [start, end) by the supplied sequence and returns the number of
	// points written.
	ReplacePricePoints(ctx context.Context, priceID uuid.UUID, start, end time.Time, points []PointUpsert) (int, error)

	UpsertSpotPrices(ctx context.Context, entries []SpotUpsert) (UpsertResult, error)
	SpotPricesFor(ctx context.Context, area market.PriceArea, p period.Period) ([]SpotPrice, error)

	CreateLink(ctx context.Context, req CreateLinkRequest) (PriceLink, error)
	EndLink(ctx context.Context, linkID uuid.UUID, at time.Time) (PriceLink, error)
	// ActiveLinkedPrices loads the prices linked to the metering point
	// whose link overlaps p, each with its full point series.
	ActiveLinkedPrices(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]*PriceWithPoints, error)
	// WithPoints loads one price and its points, applying the optional
	// migration cutoff.
	WithPoints(ctx context.Context, priceID uuid.UUID, pointsCutoff *time.Time) (*PriceWithPoints, error)
}
