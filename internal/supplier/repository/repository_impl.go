package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/supplier/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, supplier *domain.SupplierIdentity) error {
	return db.WithContext(ctx).Create(supplier).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.SupplierIdentity, error) {
	var supplier domain.SupplierIdentity
	err := db.WithContext(ctx).First(&supplier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) FindByGln(ctx context.Context, db *gorm.DB, gln string) (*domain.SupplierIdentity, error) {
	var supplier domain.SupplierIdentity
	err := db.WithContext(ctx).First(&supplier, "gln = ?", gln).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, supplier *domain.SupplierIdentity) error {
	return db.WithContext(ctx).Save(supplier).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.SupplierIdentity, error) {
	var suppliers []domain.SupplierIdentity
	err := db.WithContext(ctx).Order("created_at asc").Find(&suppliers).Error
	return suppliers, err
}
