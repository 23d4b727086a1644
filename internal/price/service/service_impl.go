package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/market"
	"github.com/nordlux/elcore/pkg/marketid"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
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
		log:  p.Log.Named("price.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePriceRequest) (domain.Price, error) {
	chargeID := strings.TrimSpace(req.ChargeID)
	if chargeID == "" {
		return domain.Price{}, apperr.New(apperr.ErrValidation, "charge id is required")
	}
	if _, err := marketid.GlnFromTrusted(req.OwnerGln); err != nil {
		return domain.Price{}, err
	}
	if req.Resolution != nil {
		if err := req.Resolution.Validate(); err != nil {
			return domain.Price{}, err
		}
	}

	existing, err := s.repo.FindByChargeID(ctx, s.db, chargeID, req.OwnerGln)
	if err != nil {
		return domain.Price{}, err
	}
	if existing != nil {
		return domain.Price{}, apperr.New(apperr.ErrIntegrityViolation,
			"price (%s, %s) already exists", chargeID, req.OwnerGln)
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryOther
	}

	now := time.Now().UTC()
	price := domain.Price{
		ID:              uuid.New(),
		ChargeID:        chargeID,
		OwnerGln:        req.OwnerGln,
		Type:            req.Type,
		Description:     req.Description,
		ValidityStart:   req.Validity.Start,
		ValidityEnd:     req.Validity.End,
		VatExempt:       req.VatExempt,
		IsTax:           req.IsTax,
		IsPassThrough:   req.IsPassThrough,
		Category:        category,
		PriceResolution: req.Resolution,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &price); err != nil {
		return domain.Price{}, err
	}
	return price, nil
}

func (s *Service) GetByChargeID(ctx context.Context, chargeID, ownerGln string) (domain.Price, error) {
	price, err := s.repo.FindByChargeID(ctx, s.db, strings.TrimSpace(chargeID), strings.TrimSpace(ownerGln))
	if err != nil {
		return domain.Price{}, err
	}
	if price == nil {
		return domain.Price{}, apperr.New(apperr.ErrNotFound, "price (%s, %s) not found", chargeID, ownerGln)
	}
	return *price, nil
}

func (s *Service) UpdatePriceInfo(ctx context.Context, req domain.UpdatePriceInfoRequest) (domain.Price, error) {
	price, err := s.mustFind(ctx, req.PriceID)
	if err != nil {
		return domain.Price{}, err
	}
	if req.Description != nil {
		price.Description = *req.Description
	}
	if req.IsTax != nil {
		price.IsTax = *req.IsTax
	}
	if req.IsPassThrough != nil {
		price.IsPassThrough = *req.IsPassThrough
	}
	return s.save(ctx, price)
}

func (s *Service) UpdateValidity(ctx context.Context, priceID uuid.UUID, validity period.Period) (domain.Price, error) {
	price, err := s.mustFind(ctx, priceID)
	if err != nil {
		return domain.Price{}, err
	}
	price.ValidityStart = validity.Start
	price.ValidityEnd = validity.End
	return s.save(ctx, price)
}

func (s *Service) UpdateCategory(ctx context.Context, priceID uuid.UUID, category domain.PriceCategory) (domain.Price, error) {
	price, err := s.mustFind(ctx, priceID)
	if err != nil {
		return domain.Price{}, err
	}
	price.Category = category
	return s.save(ctx, price)
}

func (s *Service) UpdateVatExempt(ctx context.Context, priceID uuid.UUID, vatExempt bool) (domain.Price, error) {
	price, err := s.mustFind(ctx, priceID)
	if err != nil {
		return domain.Price{}, err
	}
	price.VatExempt = vatExempt
	return s.save(ctx, price)
}

func (s *Service) AddPricePoint(ctx context.Context, priceID uuid.UUID, at time.Time, value decimal.Decimal) (domain.PricePoint, error) {
	if _, err := s.mustFind(ctx, priceID); err != nil {
		return domain.PricePoint{}, err
	}
	existing, err := s.repo.FindPointAt(ctx, s.db, priceID, at.UTC())
	if err != nil {
		return domain.PricePoint{}, err
	}
	if existing != nil {
		return domain.PricePoint{}, apperr.New(apperr.ErrIntegrityViolation,
			"price point at %s already exists", at.Format(time.RFC3339))
	}
	point := domain.PricePoint{
		ID:        uuid.New(),
		PriceID:   priceID,
		Timestamp: at.UTC(),
		Price:     value,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertPoint(ctx, s.db, &point); err != nil {
		return domain.PricePoint{}, err
	}
	return point, nil
}

// ReplacePricePoints drops every point in [start, end) and writes the
// supplied sequence, in one transaction (BRS-031 D08 semantics).
func (s *Service) ReplacePricePoints(ctx context.Context, priceID uuid.UUID, start, end time.Time, points []domain.PointUpsert) (int, error) {
	if _, err := s.mustFind(ctx, priceID); err != nil {
		return 0, err
	}
	if !end.After(start) {
		return 0, apperr.New(apperr.ErrValidation, "replace range end must be after start")
	}

	written := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeletePointsInRange(ctx, tx, priceID, start.UTC(), end.UTC()); err != nil {
			return err
		}
		for _, p := range points {
			ts := p.Timestamp.UTC()
			if ts.Before(start.UTC()) || !ts.Before(end.UTC()) {
				return apperr.New(apperr.ErrValidation,
					"point %s outside replace range", ts.Format(time.RFC3339))
			}
			point := domain.PricePoint{
				ID:        uuid.New(),
				PriceID:   priceID,
				Timestamp: ts,
				Price:     p.Price,
				CreatedAt: time.Now().UTC(),
			}
			if err := s.repo.InsertPoint(ctx, tx, &point); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertSpotPrices is a pure upsert keyed on (area, timestamp); replays are
// idempotent.
func (s *Service) UpsertSpotPrices(ctx context.Context, entries []domain.SpotUpsert) (domain.UpsertResult, error) {
	var result domain.UpsertResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := entry.PriceArea.Validate(); err != nil {
				return err
			}
			existing, err := s.repo.FindSpot(ctx, tx, entry.PriceArea, entry.Timestamp.UTC())
			if err != nil {
				return err
			}
			if existing != nil {
				existing.PriceDkkPerKwh = entry.PriceDkkPerKwh
				existing.UpdatedAt = time.Now().UTC()
				if err := s.repo.UpdateSpot(ctx, tx, existing); err != nil {
					return err
				}
				result.Updated++
				continue
			}
			now := time.Now().UTC()
			spot := domain.SpotPrice{
				ID:             uuid.New(),
				PriceArea:      entry.PriceArea,
				Timestamp:      entry.Timestamp.UTC(),
				PriceDkkPerKwh: entry.PriceDkkPerKwh,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.repo.InsertSpot(ctx, tx, &spot); err != nil {
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

func (s *Service) SpotPricesFor(ctx context.Context, area market.PriceArea, p period.Period) ([]domain.SpotPrice, error) {
	return s.repo.FindSpotRange(ctx, s.db, area, p.Start, p.End)
}

func (s *Service) CreateLink(ctx context.Context, req domain.CreateLinkRequest) (domain.PriceLink, error) {
	if _, err := s.mustFind(ctx, req.PriceID); err != nil {
		return domain.PriceLink{}, err
	}
	open, err := s.repo.FindOpenLink(ctx, s.db, req.MeteringPointID, req.PriceID)
	if err != nil {
		return domain.PriceLink{}, err
	}
	if open != nil && req.End == nil {
		return domain.PriceLink{}, apperr.New(apperr.ErrConflict,
			"open link already exists for price %s on metering point %s", req.PriceID, req.MeteringPointID)
	}

	now := time.Now().UTC()
	link := domain.PriceLink{
		ID:              uuid.New(),
		MeteringPointID: req.MeteringPointID,
		PriceID:         req.PriceID,
		LinkStart:       req.Start.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.End != nil {
		e := req.End.UTC()
		link.LinkEnd = &e
	}
	if err := s.repo.InsertLink(ctx, s.db, &link); err != nil {
		return domain.PriceLink{}, err
	}
	return link, nil
}

func (s *Service) EndLink(ctx context.Context, linkID uuid.UUID, at time.Time) (domain.PriceLink, error) {
	link, err := s.repo.FindLinkByID(ctx, s.db, linkID)
	if err != nil {
		return domain.PriceLink{}, err
	}
	if link == nil {
		return domain.PriceLink{}, apperr.New(apperr.ErrNotFound, "price link %s not found", linkID)
	}
	if link.LinkEnd != nil {
		return domain.PriceLink{}, apperr.New(apperr.ErrConflict, "price link %s already ended", linkID)
	}
	end := at.UTC()
	link.LinkEnd = &end
	link.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateLink(ctx, s.db, link); err != nil {
		return domain.PriceLink{}, err
	}
	return *link, nil
}

func (s *Service) ActiveLinkedPrices(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]*domain.PriceWithPoints, error) {
	links, err := s.repo.FindLinksOverlapping(ctx, s.db, meteringPointID, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	prices := make([]*domain.PriceWithPoints, 0, len(links))
	for _, link := range links {
		pwp, err := s.WithPoints(ctx, link.PriceID, nil)
		if err != nil {
			return nil, err
		}
		prices = append(prices, pwp)
	}
	return prices, nil
}

func (s *Service) WithPoints(ctx context.Context, priceID uuid.UUID, pointsCutoff *time.Time) (*domain.PriceWithPoints, error) {
	price, err := s.mustFind(ctx, priceID)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.FindPoints(ctx, s.db, priceID)
	if err != nil {
		return nil, err
	}
	return domain.NewPriceWithPoints(*price, points, pointsCutoff), nil
}

func (s *Service) mustFind(ctx context.Context, id uuid.UUID) (*domain.Price, error) {
	price, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, apperr.New(apperr.ErrNotFound, "price %s not found", id)
	}
	return price, nil
}

func (s *Service) save(ctx context.Context, price *domain.Price) (domain.Price, error) {
	price.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, price); err != nil {
		return domain.Price{}, err
	}
	return *price, nil
}
