package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, supplier *SupplierIdentity) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*SupplierIdentity, error)
	FindByGln(ctx context.Context, db *gorm.DB, gln string) (*SupplierIdentity, error)
	Update(ctx context.Context, db *gorm.DB, supplier *SupplierIdentity) error
	List(ctx context.Context, db *gorm.DB) ([]SupplierIdentity, error)
}
