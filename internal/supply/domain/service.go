package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateSupplyRequest struct {
	MeteringPointID uuid.UUID
	CustomerID      uuid.UUID
	Start           time.Time
}

type AssignProductRequest struct {
	SupplyID          uuid.UUID
	SupplierProductID uuid.UUID
	Start             time.Time
	End               *time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateSupplyRequest) (Supply, error)
	// End closes the supply at the effective date; endedBy records the
	// BRS process responsible.
	End(ctx context.Context, supplyID uuid.UUID, at time.Time, endedBy *uuid.UUID) (Supply, error)
	ActiveAt(ctx context.Context, meteringPointID uuid.UUID, at time.Time) (*Supply, error)
	AssignProduct(ctx context.Context, req AssignProductRequest) (SupplyProductPeriod, error)
	ProductPeriods(ctx context.Context, supplyID uuid.UUID) ([]SupplyProductPeriod, error)
}
