package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *SupplierProduct) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*SupplierProduct, error)
	FindByName(ctx context.Context, db *gorm.DB, supplierIdentityID uuid.UUID, name string) (*SupplierProduct, error)
	Update(ctx context.Context, db *gorm.DB, product *SupplierProduct) error

	FindMargin(ctx context.Context, db *gorm.DB, productID uuid.UUID, validFrom time.Time) (*SupplierMargin, error)
	InsertMargin(ctx context.Context, db *gorm.DB, margin *SupplierMargin) error
	UpdateMargin(ctx context.Context, db *gorm.DB, margin *SupplierMargin) error
	FindMarginAt(ctx context.Context, db *gorm.DB, productID uuid.UUID, at time.Time) (*SupplierMargin, error)
}
