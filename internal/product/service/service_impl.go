package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/product/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("product.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.SupplierProduct, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.SupplierProduct{}, apperr.New(apperr.ErrValidation, "product name is required")
	}
	model := req.PricingModel
	if model == "" {
		model = domain.SpotAddon
	}
	if model != domain.SpotAddon && model != domain.Fixed {
		return domain.SupplierProduct{}, apperr.New(apperr.ErrValidation, "unknown pricing model %q", string(model))
	}

	existing, err := s.repo.FindByName(ctx, s.db, req.SupplierIdentityID, name)
	if err != nil {
		return domain.SupplierProduct{}, err
	}
	if existing != nil {
		return domain.SupplierProduct{}, apperr.New(apperr.ErrIntegrityViolation, "product %q already exists", name)
	}

	now := time.Now().UTC()
	product := domain.SupplierProduct{
		ID:                 uuid.New(),
		SupplierIdentityID: req.SupplierIdentityID,
		Name:               name,
		PricingModel:       model,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.SupplierProduct{}, err
	}
	return product, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperr.New(apperr.ErrNotFound, "product %s not found", id)
	}
	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, product)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.SupplierProduct, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SupplierProduct{}, err
	}
	if product == nil {
		return domain.SupplierProduct{}, apperr.New(apperr.ErrNotFound, "product %s not found", id)
	}
	return *product, nil
}

// UpsertMargins replaces the value for an existing (product, validFrom) key
// and inserts otherwise. Replays are idempotent.
func (s *Service) UpsertMargins(ctx context.Context, entries []domain.MarginUpsert) (domain.UpsertResult, error) {
	var result domain.UpsertResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			existing, err := s.repo.FindMargin(ctx, tx, entry.SupplierProductID, entry.ValidFrom.UTC())
			if err != nil {
				return err
			}
			if existing != nil {
				existing.PriceDkkPerKwh = entry.PriceDkkPerKwh
				existing.UpdatedAt = time.Now().UTC()
				if err := s.repo.UpdateMargin(ctx, tx, existing); err != nil {
					return err
				}
				result.Updated++
				continue
			}
			now := time.Now().UTC()
			margin := domain.SupplierMargin{
				ID:                uuid.New(),
				SupplierProductID: entry.SupplierProductID,
				ValidFrom:         entry.ValidFrom.UTC(),
				PriceDkkPerKwh:    entry.PriceDkkPerKwh,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := s.repo.InsertMargin(ctx, tx, &margin); err != nil {
				return err
			}
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	return result, nil
}

func (s *Service) MarginAt(ctx context.Context, productID uuid.UUID, at time.Time) (*domain.SupplierMargin, error) {
	return s.repo.FindMarginAt(ctx, s.db, productID, at)
}
