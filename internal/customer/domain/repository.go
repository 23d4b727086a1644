package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
}
