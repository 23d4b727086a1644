package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	"github.com/nordlux/elcore/internal/supply/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	MpSvc   mpdomain.Service
	MpRepo  mpdomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	mpSvc  mpdomain.Service
	mpRepo mpdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("supply.service"),
		repo:   p.Repo,
		mpSvc:  p.MpSvc,
		mpRepo: p.MpRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplyRequest) (domain.Supply, error) {
	if req.Start.IsZero() {
		return domain.Supply{}, apperr.New(apperr.ErrValidation, "supply start is required")
	}

	overlapping, err := s.repo.FindOverlappingOpen(ctx, s.db, req.MeteringPointID, req.Start)
	if err != nil {
		return domain.Supply{}, err
	}
	if len(overlapping) > 0 {
		return domain.Supply{}, apperr.New(apperr.ErrConflict,
			"metering point %s already has a supply overlapping %s", req.MeteringPointID, req.Start.Format(time.RFC3339))
	}

	now := time.Now().UTC()
	supply := domain.Supply{
		ID:              uuid.New(),
		MeteringPointID: req.MeteringPointID,
		CustomerID:      req.CustomerID,
		SupplyStart:     req.Start.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &supply); err != nil {
		return domain.Supply{}, err
	}
	s.mirrorActiveSupply(ctx, req.MeteringPointID, true)
	return supply, nil
}

func (s *Service) End(ctx context.Context, supplyID uuid.UUID, at time.Time, endedBy *uuid.UUID) (domain.Supply, error) {
	supply, err := s.repo.FindByID(ctx, s.db, supplyID)
	if err != nil {
		return domain.Supply{}, err
	}
	if supply == nil {
		return domain.Supply{}, apperr.New(apperr.ErrNotFound, "supply %s not found", supplyID)
	}
	if supply.SupplyEnd != nil {
		return domain.Supply{}, apperr.New(apperr.ErrConflict, "supply %s already ended", supplyID)
	}
	if !at.After(supply.SupplyStart) {
		return domain.Supply{}, apperr.New(apperr.ErrValidation, "supply end must be after start")
	}

	end := at.UTC()
	supply.SupplyEnd = &end
	supply.EndedByProcessID = endedBy
	supply.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, supply); err != nil {
		return domain.Supply{}, err
	}
	s.mirrorActiveSupply(ctx, supply.MeteringPointID, false)
	return *supply, nil
}

func (s *Service) ActiveAt(ctx context.Context, meteringPointID uuid.UUID, at time.Time) (*domain.Supply, error) {
	return s.repo.FindActiveAt(ctx, s.db, meteringPointID, at)
}

func (s *Service) AssignProduct(ctx context.Context, req domain.AssignProductRequest) (domain.SupplyProductPeriod, error) {
	supply, err := s.repo.FindByID(ctx, s.db, req.SupplyID)
	if err != nil {
		return domain.SupplyProductPeriod{}, err
	}
	if supply == nil {
		return domain.SupplyProductPeriod{}, apperr.New(apperr.ErrNotFound, "supply %s not found", req.SupplyID)
	}
	if req.End != nil && !req.End.After(req.Start) {
		return domain.SupplyProductPeriod{}, apperr.New(apperr.ErrValidation, "product period end must be after start")
	}

	spp := domain.SupplyProductPeriod{
		ID:                uuid.New(),
		SupplyID:          req.SupplyID,
		SupplierProductID: req.SupplierProductID,
		PeriodStart:       req.Start.UTC(),
		CreatedAt:         time.Now().UTC(),
	}
	if req.End != nil {
		e := req.End.UTC()
		spp.PeriodEnd = &e
	}
	if err := s.repo.InsertProductPeriod(ctx, s.db, &spp); err != nil {
		return domain.SupplyProductPeriod{}, err
	}
	return spp, nil
}

func (s *Service) ProductPeriods(ctx context.Context, supplyID uuid.UUID) ([]domain.SupplyProductPeriod, error) {
	return s.repo.FindProductPeriods(ctx, s.db, supplyID)
}

// mirrorActiveSupply keeps MeteringPoint.HasActiveSupply in sync. Lookup by
// id; failures are logged, not fatal, since the flag is derived data.
func (s *Service) mirrorActiveSupply(ctx context.Context, meteringPointID uuid.UUID, active bool) {
	var mp mpdomain.MeteringPoint
	if err := s.db.WithContext(ctx).First(&mp, "id = ?", meteringPointID).Error; err != nil {
		s.log.Warn("mirror active supply: metering point lookup failed", zap.Error(err))
		return
	}
	if err := s.mpSvc.SetHasActiveSupply(ctx, mp.Gsrn, active); err != nil {
		s.log.Warn("mirror active supply failed", zap.String("gsrn", mp.Gsrn), zap.Error(err))
	}
}
