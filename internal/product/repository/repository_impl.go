package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.SupplierProduct) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.SupplierProduct, error) {
	var product domain.SupplierProduct
	err := db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, supplierIdentityID uuid.UUID, name string) (*domain.SupplierProduct, error) {
	var product domain.SupplierProduct
	err := db.WithContext(ctx).
		First(&product, "supplier_identity_id = ? AND name = ?", supplierIdentityID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.SupplierProduct) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) FindMargin(ctx context.Context, db *gorm.DB, productID uuid.UUID, validFrom time.Time) (*domain.SupplierMargin, error) {
	var margin domain.SupplierMargin
	err := db.WithContext(ctx).
		First(&margin, "supplier_product_id = ? AND valid_from = ?", productID, validFrom).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &margin, nil
}

func (r *repo) InsertMargin(ctx context.Context, db *gorm.DB, margin *domain.SupplierMargin) error {
	return db.WithContext(ctx).Create(margin).Error
}

func (r *repo) UpdateMargin(ctx context.Context, db *gorm.DB, margin *domain.SupplierMargin) error {
	return db.WithContext(ctx).Save(margin).Error
}

func (r *repo) FindMarginAt(ctx context.Context, db *gorm.DB, productID uuid.UUID, at time.Time) (*domain.SupplierMargin, error) {
	var margin domain.SupplierMargin
	err := db.WithContext(ctx).
		Where("supplier_product_id = ?", productID).
		Where("valid_from <= ?", at).
		Order("valid_from desc").
		First(&margin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &margin, nil
}
