package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/timeseries/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func first[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	err := db.First(&row, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, series *domain.TimeSeries) error {
	return db.WithContext(ctx).Create(series).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, series *domain.TimeSeries) error {
	return db.WithContext(ctx).Save(series).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.TimeSeries, error) {
	return first[domain.TimeSeries](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) (*domain.TimeSeries, error) {
	return first[domain.TimeSeries](db.WithContext(ctx),
		"metering_point_id = ? AND period_start = ? AND period_end = ? AND is_latest = ?",
		meteringPointID, periodStart, periodEnd, true)
}

func (r *repo) FindVersions(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, periodStart, periodEnd time.Time) ([]domain.TimeSeries, error) {
	var versions []domain.TimeSeries
	err := db.WithContext(ctx).
		Where("metering_point_id = ? AND period_start = ? AND period_end = ?",
			meteringPointID, periodStart, periodEnd).
		Order("version asc").
		Find(&versions).Error
	return versions, err
}

func (r *repo) InsertObservations(ctx context.Context, db *gorm.DB, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(observations, 500).Error
}

func (r *repo) FindObservations(ctx context.Context, db *gorm.DB, seriesID uuid.UUID) ([]domain.Observation, error) {
	var observations []domain.Observation
	err := db.WithContext(ctx).
		Where("time_series_id = ?", seriesID).
		Order("timestamp asc").
		Find(&observations).Error
	return observations, err
}
