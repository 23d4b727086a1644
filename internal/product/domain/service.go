package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	SupplierIdentityID uuid.UUID
	Name               string
	PricingModel       PricingModel
}

type MarginUpsert struct {
	SupplierProductID uuid.UUID
	ValidFrom         time.Time
	PriceDkkPerKwh    decimal.Decimal
}

// UpsertResult mirrors the spot-price upsert contract: replays are
// idempotent and counted as updates.
type UpsertResult struct {
	Inserted int
	Updated  int
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (SupplierProduct, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (SupplierProduct, error)
	UpsertMargins(ctx context.Context, entries []MarginUpsert) (UpsertResult, error)
	// MarginAt resolves the step function: the margin with the latest
	// ValidFrom <= at, or nil when none applies yet.
	MarginAt(ctx context.Context, productID uuid.UUID, at time.Time) (*SupplierMargin, error)
}
