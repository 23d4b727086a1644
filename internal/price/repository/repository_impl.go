package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/pkg/market"
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, price *domain.Price) error {
	return db.WithContext(ctx).Create(price).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Price, error) {
	return first[domain.Price](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindByChargeID(ctx context.Context, db *gorm.DB, chargeID, ownerGln string) (*domain.Price, error) {
	return first[domain.Price](db.WithContext(ctx), "charge_id = ? AND owner_gln = ?", chargeID, ownerGln)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, price *domain.Price) error {
	return db.WithContext(ctx).Save(price).Error
}

func (r *repo) InsertPoint(ctx context.Context, db *gorm.DB, point *domain.PricePoint) error {
	return db.WithContext(ctx).Create(point).Error
}

func (r *repo) FindPoints(ctx context.Context, db *gorm.DB, priceID uuid.UUID) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	err := db.WithContext(ctx).
		Where("price_id = ?", priceID).
		Order("timestamp asc").
		Find(&points).Error
	return points, err
}

func (r *repo) FindPointAt(ctx context.Context, db *gorm.DB, priceID uuid.UUID, at time.Time) (*domain.PricePoint, error) {
	return first[domain.PricePoint](db.WithContext(ctx), "price_id = ? AND timestamp = ?", priceID, at)
}

func (r *repo) DeletePointsInRange(ctx context.Context, db *gorm.DB, priceID uuid.UUID, start, end time.Time) error {
	return db.WithContext(ctx).
		Where("price_id = ? AND timestamp >= ? AND timestamp < ?", priceID, start, end).
		Delete(&domain.PricePoint{}).Error
}

func (r *repo) FindSpot(ctx context.Context, db *gorm.DB, area market.PriceArea, at time.Time) (*domain.SpotPrice, error) {
	return first[domain.SpotPrice](db.WithContext(ctx), "price_area = ? AND timestamp = ?", area, at)
}

func (r *repo) InsertSpot(ctx context.Context, db *gorm.DB, spot *domain.SpotPrice) error {
	return db.WithContext(ctx).Create(spot).Error
}

func (r *repo) UpdateSpot(ctx context.Context, db *gorm.DB, spot *domain.SpotPrice) error {
	return db.WithContext(ctx).Save(spot).Error
}

func (r *repo) FindSpotRange(ctx context.Context, db *gorm.DB, area market.PriceArea, start time.Time, end *time.Time) ([]domain.SpotPrice, error) {
	stmt := db.WithContext(ctx).
		Where("price_area = ?", area).
		Where("timestamp >= ?", start)
	if end != nil {
		stmt = stmt.Where("timestamp < ?", *end)
	}
	var spots []domain.SpotPrice
	err := stmt.Order("timestamp asc").Find(&spots).Error
	return spots, err
}

func (r *repo) InsertLink(ctx context.Context, db *gorm.DB, link *domain.PriceLink) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) FindLinkByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.PriceLink, error) {
	return first[domain.PriceLink](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindOpenLink(ctx context.Context, db *gorm.DB, meteringPointID, priceID uuid.UUID) (*domain.PriceLink, error) {
	return first[domain.PriceLink](db.WithContext(ctx),
		"metering_point_id = ? AND price_id = ? AND link_end IS NULL", meteringPointID, priceID)
}

func (r *repo) FindLinksOverlapping(ctx context.Context, db *gorm.DB, meteringPointID uuid.UUID, start time.Time, end *time.Time) ([]domain.PriceLink, error) {
	stmt := db.WithContext(ctx).
		Where("metering_point_id = ?", meteringPointID).
		Where("link_end IS NULL OR link_end > ?", start)
	if end != nil {
		stmt = stmt.Where("link_start < ?", *end)
	}
	var links []domain.PriceLink
	err := stmt.Order("link_start asc").Find(&links).Error
	return links, err
}

func (r *repo) UpdateLink(ctx context.Context, db *gorm.DB, link *domain.PriceLink) error {
	return db.WithContext(ctx).Save(link).Error
}
