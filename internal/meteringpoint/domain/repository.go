package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, mp *MeteringPoint) error
	FindByGsrn(ctx context.Context, db *gorm.DB, gsrn string) (*MeteringPoint, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*MeteringPoint, error)
	Update(ctx context.Context, db *gorm.DB, mp *MeteringPoint) error
}
