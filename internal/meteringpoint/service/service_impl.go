package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/meteringpoint/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
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
		log:  p.Log.Named("meteringpoint.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMeteringPointRequest) (domain.MeteringPoint, error) {
	gsrn, err := marketid.NewGsrn(strings.TrimSpace(req.Gsrn))
	if err != nil {
		return domain.MeteringPoint{}, err
	}
	if _, err := marketid.GlnFromTrusted(req.GridCompanyGln); err != nil {
		return domain.MeteringPoint{}, err
	}
	if err := req.Resolution.Validate(); err != nil {
		return domain.MeteringPoint{}, err
	}
	if strings.TrimSpace(req.GridArea) == "" {
		return domain.MeteringPoint{}, apperr.New(apperr.ErrValidation, "grid area is required")
	}
	priceArea := req.PriceArea
	if priceArea == "" {
		priceArea = market.PriceAreaDK1
	}
	if err := priceArea.Validate(); err != nil {
		return domain.MeteringPoint{}, err
	}

	existing, err := s.repo.FindByGsrn(ctx, s.db, gsrn.String())
	if err != nil {
		return domain.MeteringPoint{}, err
	}
	if existing != nil {
		return domain.MeteringPoint{}, apperr.New(apperr.ErrIntegrityViolation, "metering point %s already exists", gsrn)
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryParent
	}

	now := time.Now().UTC()
	mp := domain.MeteringPoint{
		ID:               uuid.New(),
		Gsrn:             gsrn.String(),
		Type:             req.Type,
		Category:         category,
		SettlementMethod: req.SettlementMethod,
		Resolution:       req.Resolution,
		GridArea:         req.GridArea,
		PriceArea:        priceArea,
		GridCompanyGln:   req.GridCompanyGln,
		ConnectionState:  domain.StateNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, &mp); err != nil {
		return domain.MeteringPoint{}, err
	}
	return mp, nil
}

func (s *Service) UpdateMasterData(ctx context.Context, req domain.UpdateMasterDataRequest) (domain.MeteringPoint, error) {
	mp, err := s.mustFind(ctx, req.Gsrn)
	if err != nil {
		return domain.MeteringPoint{}, err
	}

	if req.SettlementMethod != nil {
		mp.SettlementMethod = *req.SettlementMethod
	}
	if req.Resolution != nil {
		if err := req.Resolution.Validate(); err != nil {
			return domain.MeteringPoint{}, err
		}
		mp.Resolution = *req.Resolution
	}
	if req.GridArea != nil {
		mp.GridArea = *req.GridArea
	}
	if req.GridCompanyGln != nil {
		if _, err := marketid.GlnFromTrusted(*req.GridCompanyGln); err != nil {
			return domain.MeteringPoint{}, err
		}
		mp.GridCompanyGln = *req.GridCompanyGln
	}
	mp.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, mp); err != nil {
		return domain.MeteringPoint{}, err
	}
	return *mp, nil
}

func (s *Service) SetConnectionState(ctx context.Context, gsrn string, state domain.ConnectionState) (domain.MeteringPoint, error) {
	mp, err := s.mustFind(ctx, gsrn)
	if err != nil {
		return domain.MeteringPoint{}, err
	}
	// Closedown is terminal.
	if mp.ConnectionState == domain.StateClosedDown {
		return domain.MeteringPoint{}, apperr.New(apperr.ErrConflict, "metering point %s is closed down", gsrn)
	}
	mp.ConnectionState = state
	mp.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, mp); err != nil {
		return domain.MeteringPoint{}, err
	}
	return *mp, nil
}

func (s *Service) SetHasActiveSupply(ctx context.Context, gsrn string, active bool) error {
	mp, err := s.mustFind(ctx, gsrn)
	if err != nil {
		return err
	}
	if mp.HasActiveSupply == active {
		return nil
	}
	mp.HasActiveSupply = active
	mp.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, mp)
}

func (s *Service) GetByGsrn(ctx context.Context, gsrn string) (domain.MeteringPoint, error) {
	mp, err := s.mustFind(ctx, gsrn)
	if err != nil {
		return domain.MeteringPoint{}, err
	}
	return *mp, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.MeteringPoint, error) {
	mp, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MeteringPoint{}, err
	}
	if mp == nil {
		return domain.MeteringPoint{}, apperr.New(apperr.ErrNotFound, "metering point %s not found", id)
	}
	return *mp, nil
}

func (s *Service) mustFind(ctx context.Context, gsrn string) (*domain.MeteringPoint, error) {
	mp, err := s.repo.FindByGsrn(ctx, s.db, strings.TrimSpace(gsrn))
	if err != nil {
		return nil, err
	}
	if mp == nil {
		return nil, apperr.New(apperr.ErrNotFound, "metering point %s not found", gsrn)
	}
	return mp, nil
}
