package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *BrsProcess) error
	Update(ctx context.Context, db *gorm.DB, p *BrsProcess) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*BrsProcess, error)
	FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*BrsProcess, error)
	FindMany(ctx context.Context, db *gorm.DB, filter ListFilter) ([]BrsProcess, error)

	InsertTransitions(ctx context.Context, db *gorm.DB, transitions []ProcessTransition) error
	FindTransitions(ctx context.Context, db *gorm.DB, processID uuid.UUID) ([]ProcessTransition, error)
}
