package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, series *TimeSeries) error
	Update(ctx context.Context, db *gorm.DB, series *TimeSeries) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*TimeSeries, error)
	FindLatest(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) (*TimeSeries, error)
	FindVersions(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) ([]TimeSeries, error)

	InsertObservations(ctx context.Context, db *gorm.DB, observations []Observation) error
	FindObservations(ctx context.Context, db *gorm.DB, seriesID uuid.UUID) ([]Observation, error)
}
