package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/supplier/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/marketid"
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
		log:  p.Log.Named("supplier.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (domain.SupplierIdentity, error) {
	gln, err := marketid.NewGln(strings.TrimSpace(req.Gln))
	if err != nil {
		return domain.SupplierIdentity{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.SupplierIdentity{}, apperr.New(apperr.ErrValidation, "supplier name is required")
	}
	if req.Cvr != nil {
		if _, err := marketid.NewCvr(*req.Cvr); err != nil {
			return domain.SupplierIdentity{}, err
		}
	}

	existing, err := s.repo.FindByGln(ctx, s.db, gln.String())
	if err != nil {
		return domain.SupplierIdentity{}, err
	}
	if existing != nil {
		return domain.SupplierIdentity{}, apperr.New(apperr.ErrIntegrityViolation, "supplier with gln %s already exists", gln)
	}

	now := time.Now().UTC()
	supplier := domain.SupplierIdentity{
		ID:        uuid.New(),
		Gln:       gln.String(),
		Name:      name,
		Cvr:       req.Cvr,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &supplier); err != nil {
		return domain.SupplierIdentity{}, err
	}
	return supplier, nil
}

func (s *Service) GetByGln(ctx context.Context, gln string) (domain.SupplierIdentity, error) {
	supplier, err := s.repo.FindByGln(ctx, s.db, strings.TrimSpace(gln))
	if err != nil {
		return domain.SupplierIdentity{}, err
	}
	if supplier == nil {
		return domain.SupplierIdentity{}, apperr.New(apperr.ErrNotFound, "supplier %s not found", gln)
	}
	return *supplier, nil
}

// Archive retires the identity. An archived identity can no longer be active.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return apperr.New(apperr.ErrNotFound, "supplier %s not found", id)
	}
	supplier.IsActive = false
	supplier.IsArchived = true
	supplier.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, supplier)
}

func (s *Service) List(ctx context.Context) ([]domain.SupplierIdentity, error) {
	return s.repo.List(ctx, s.db)
}
