package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/supply/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, supply *domain.Supply) error {
	return db.WithContext(ctx).Create(supply).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Supply, error) {
	var supply domain.Supply
	err := db.WithContext(ctx).First(&supply, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *repo) FindOverlappingOpen(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, from time.Time) ([]domain.Supply, error) {
	var supplies []domain.Supply
	err := db.WithContext(ctx).
		Where("metering_point_id = ?", meteringPointID).
		Where("supply_end IS NULL OR supply_end > ?", from).
		Order("supply_start asc").
		Find(&supplies).Error
	return supplies, err
}

func (r *repo) FindActiveAt(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, at time.Time) (*domain.Supply, error) {
	var supply domain.Supply
	err := db.WithContext(ctx).
		Where("metering_point_id = ?", meteringPointID).
		Where("supply_start <= ?", at).
		Where("supply_end IS NULL OR supply_end > ?", at).
		Order("supply_start desc").
		First(&supply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, supply *domain.Supply) error {
	return db.WithContext(ctx).Save(supply).Error
}

func (r *repo) InsertProductPeriod(ctx context.Context, db *gorm.DB, spp *domain.SupplyProductPeriod) error {
	return db.WithContext(ctx).Create(spp).Error
}

func (r *repo) FindProductPeriods(ctx context.Context, db *gorm.DB, supplyID uuid.UUID) ([]domain.SupplyProductPeriod, error) {
	var periods []domain.SupplyProductPeriod
	err := db.WithContext(ctx).
		Where("supply_id = ?", supplyID).
		Order("period_start asc").
		Find(&periods).Error
	return periods, err
}
