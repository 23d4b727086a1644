package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, supply *Supply) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Supply, error)
	// FindOverlappingOpen returns supplies on the metering point whose
	// period overlaps [from, ...).
	FindOverlappingOpen(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, from time.Time) ([]Supply, error)
	FindActiveAt(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, at time.Time) (*Supply, error)
	Update(ctx context.Context, db *gorm.DB, supply *Supply) error

	InsertProductPeriod(ctx context.Context, db *gorm.DB, spp *SupplyProductPeriod) error
	FindProductPeriods(ctx context.Context, db *gorm.DB, supplyID uuid.UUID) ([]SupplyProductPeriod, error)
}
