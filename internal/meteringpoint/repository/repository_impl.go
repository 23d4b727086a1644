package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/meteringpoint/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, mp *domain.MeteringPoint) error {
	return db.WithContext(ctx).Create(mp).Error
}

func (r *repo) FindByGsrn(ctx context.Context, db *gorm.DB, gsrn string) (*domain.MeteringPoint, error) {
	var mp domain.MeteringPoint
	err := db.WithContext(ctx).First(&mp, "gsrn = ?", gsrn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.MeteringPoint, error) {
	var mp domain.MeteringPoint
	err := db.WithContext(ctx).First(&mp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, mp *domain.MeteringPoint) error {
	return db.WithContext(ctx).Save(mp).Error
}
