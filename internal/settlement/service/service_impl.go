package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	mpdomain "github.com/nordlux/elcore/internal/meteringpoint/domain"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	productdomain "github.com/nordlux/elcore/internal/product/domain"
	"github.com/nordlux/elcore/internal/settlement/domain"
	supplydomain "github.com/nordlux/elcore/internal/supply/domain"
	tsdomain "github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	Repo           domain.Repository
	MeteringPoints mpdomain.Service
	Supplies       supplydomain.Service
	TimeSeries     tsdomain.Service
	Prices         pricedomain.Service
	Products       productdomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	repo           domain.Repository
	meteringPoints mpdomain.Service
	supplies       supplydomain.Service
	timeSeries     tsdomain.Service
	prices         pricedomain.Service
	products       productdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("settlement.service"),
		clock:          p.Clock,
		repo:           p.Repo,
		meteringPoints: p.MeteringPoints,
		supplies:       p.Supplies,
		timeSeries:     p.TimeSeries,
		prices:         p.Prices,
		products:       p.Products,
	}
}

// pricingContext is everything one calculator run needs, fetched up front so
// the calculation itself stays free of I/O.
type pricingContext struct {
	meteringPoint mpdomain.MeteringPoint
	supply        supplydomain.Supply
	series        tsdomain.SeriesWithObservations
	datahubPrices []*pricedomain.PriceWithPoints
	spotPrices    []pricedomain.SpotPrice
	margins       []domain.MarginEntry
	pricingModel  productdomain.PricingModel
}

func (s *Service) loadPricingContext(ctx context.Context, meteringPointID uuid.UUID, p period.Period) (pricingContext, error) {
	var pc pricingContext

	mp, err := s.meteringPoints.GetByID(ctx, meteringPointID)
	if err != nil {
		return pc, err
	}
	pc.meteringPoint = mp

	supply, err := s.supplies.ActiveAt(ctx, meteringPointID, p.Start)
	if err != nil {
		return pc, err
	}
	if supply == nil {
		return pc, domain.ErrNoActiveSupply
	}
	pc.supply = *supply

	series, err := s.timeSeries.LatestFor(ctx, meteringPointID, p)
	if err != nil {
		return pc, err
	}
	if series == nil {
		return pc, domain.ErrNoTimeSeries
	}
	pc.series = *series

	pc.datahubPrices, err = s.prices.ActiveLinkedPrices(ctx, meteringPointID, p)
	if err != nil {
		return pc, err
	}
	pc.spotPrices, err = s.prices.SpotPricesFor(ctx, mp.PriceArea, p)
	if err != nil {
		return pc, err
	}

	pc.pricingModel = productdomain.SpotAddon
	productPeriods, err := s.supplies.ProductPeriods(ctx, supply.ID)
	if err != nil {
		return pc, err
	}
	for i, pp := range productPeriods {
		if !pp.Period().Contains(p.Start) {
			continue
		}
		product, err := s.products.GetByID(ctx, pp.SupplierProductID)
		if err != nil {
			return pc, err
		}
		// The base product (first assignment) decides the pricing model.
		if i == 0 || len(pc.margins) == 0 {
			pc.pricingModel = product.PricingModel
		}
		margin, err := s.products.MarginAt(ctx, product.ID, p.Start)
		if err != nil {
			return pc, err
		}
		if margin != nil {
			pc.margins = append(pc.margins, domain.MarginEntry{
				Name:           product.Name,
				PriceDkkPerKwh: margin.PriceDkkPerKwh,
			})
		}
	}
	return pc, nil
}

func (s *Service) CalculateForPeriod(ctx context.Context, meteringPointID uuid.UUID, p period.Period) (domain.SettlementWithLines, error) {
	if p.End == nil {
		return domain.SettlementWithLines{}, apperr.New(apperr.ErrValidation, "settlement period must be bounded")
	}

	pc, err := s.loadPricingContext(ctx, meteringPointID, p)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}

	s.recordFindings(ctx, meteringPointID, p, pc)

	result, err := domain.Calculate(domain.CalculationInput{
		Series:        pc.series,
		DatahubPrices: pc.datahubPrices,
		SpotPrices:    pc.spotPrices,
		Margins:       pc.margins,
		PricingModel:  pc.pricingModel,
	})
	if err != nil {
		return domain.SettlementWithLines{}, err
	}

	if pc.pricingModel == productdomain.SpotAddon && len(pc.spotPrices) == 0 {
		s.openIssueQuiet(ctx, domain.OpenIssueRequest{
			MeteringPointID:   meteringPointID,
			Period:            p,
			TimeSeriesID:      &pc.series.Series.ID,
			TimeSeriesVersion: pc.series.Series.Version,
			IssueType:         domain.IssueMissingSpotPrices,
			Message:           "Spotpriser mangler",
			Details:           "no spot prices stored for " + p.String(),
		})
	}

	return s.persist(ctx, pc, p, result, false, nil)
}

func (s *Service) CalculateCorrection(ctx context.Context, originalID uuid.UUID) (domain.SettlementWithLines, error) {
	original, err := s.mustFind(ctx, originalID)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}
	if original.Status != domain.StatusInvoiced {
		return domain.SettlementWithLines{}, apperr.New(apperr.ErrPreconditionFailed,
			"settlement %s is %s, corrections require an invoiced original", originalID, original.Status)
	}

	p := original.Period()
	pc, err := s.loadPricingContext(ctx, original.MeteringPointID, p)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}
	if pc.series.Series.Version <= original.TimeSeriesVersion {
		return domain.SettlementWithLines{}, apperr.New(apperr.ErrPreconditionFailed,
			"no newer time series version than the invoiced settlement's (v%d)", original.TimeSeriesVersion)
	}

	originalLines, err := s.repo.FindLines(ctx, s.db, original.ID)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}

	result, err := domain.CalculateCorrection(domain.CalculationInput{
		Series:        pc.series,
		DatahubPrices: pc.datahubPrices,
		SpotPrices:    pc.spotPrices,
		Margins:       pc.margins,
		PricingModel:  pc.pricingModel,
	}, original.TotalEnergy, originalLines)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}

	return s.persist(ctx, pc, p, result, true, &original.ID)
}

// persist writes the settlement and its lines, allocating the document
// number inside the transaction. The (mp, period, isCorrection) key is
// checked first, which makes concurrent scheduler runs lose cleanly.
func (s *Service) persist(ctx context.Context, pc pricingContext, p period.Period, result domain.CalculationResult, isCorrection bool, previousID *uuid.UUID) (domain.SettlementWithLines, error) {
	var out domain.SettlementWithLines
	now := s.clock.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindFor(ctx, tx, pc.meteringPoint.ID, p.Start, *p.End, isCorrection)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadySettled
		}

		docNumber, err := s.repo.NextDocumentNumber(ctx, tx, now.Year())
		if err != nil {
			return err
		}

		settlement := domain.Settlement{
			ID:                   uuid.New(),
			MeteringPointID:      pc.meteringPoint.ID,
			SupplyID:             pc.supply.ID,
			PeriodStart:          p.Start,
			PeriodEnd:            *p.End,
			TimeSeriesID:         pc.series.Series.ID,
			TimeSeriesVersion:    pc.series.Series.Version,
			TotalEnergy:          result.TotalEnergy,
			TotalAmount:          result.TotalAmount,
			Status:               domain.StatusCalculated,
			IsCorrection:         isCorrection,
			PreviousSettlementID: previousID,
			DocumentNumber:       docNumber,
			CalculatedAt:         now,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.repo.Insert(ctx, tx, &settlement); err != nil {
			return err
		}

		lines := make([]domain.SettlementLine, 0, len(result.Lines))
		for i, draft := range result.Lines {
			lines = append(lines, domain.SettlementLine{
				ID:           uuid.New(),
				SettlementID: settlement.ID,
				Position:     i + 1,
				Source:       draft.Source,
				PriceID:      draft.PriceID,
				Description:  draft.Description,
				Quantity:     draft.Quantity,
				UnitPrice:    draft.UnitPrice,
				Amount:       draft.Amount,
				CreatedAt:    now,
			})
		}
		if err := s.repo.InsertLines(ctx, tx, lines); err != nil {
			return err
		}

		if isCorrection && previousID != nil {
			original, err := s.repo.FindByID(ctx, tx, *previousID)
			if err != nil {
				return err
			}
			original.Status = domain.StatusAdjusted
			original.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, original); err != nil {
				return err
			}
		}

		out = domain.SettlementWithLines{Settlement: settlement, Lines: lines}
		return nil
	})
	if err != nil {
		return domain.SettlementWithLines{}, err
	}

	s.log.Info("settlement calculated",
		zap.String("settlement_id", out.Settlement.ID.String()),
		zap.String("metering_point_id", pc.meteringPoint.ID.String()),
		zap.String("document_id", out.Settlement.DocumentID()),
		zap.Bool("is_correction", isCorrection),
		zap.String("total_amount", out.Settlement.TotalAmount.StringFixed(2)))
	return out, nil
}

func (s *Service) recordFindings(ctx context.Context, meteringPointID uuid.UUID, p period.Period, pc pricingContext) {
	for _, finding := range domain.ValidatePricing(pc.datahubPrices, p) {
		s.openIssueQuiet(ctx, domain.OpenIssueRequest{
			MeteringPointID:   meteringPointID,
			Period:            p,
			TimeSeriesID:      &pc.series.Series.ID,
			TimeSeriesVersion: pc.series.Series.Version,
			IssueType:         finding.IssueType,
			Message:           finding.Message,
			Details:           finding.Details,
		})
	}
}

func (s *Service) openIssueQuiet(ctx context.Context, req domain.OpenIssueRequest) {
	if _, err := s.OpenIssue(ctx, req); err != nil {
		s.log.Warn("failed to record settlement issue",
			zap.String("metering_point_id", req.MeteringPointID.String()),
			zap.String("issue_type", string(req.IssueType)),
			zap.Error(err))
	}
}

func (s *Service) MarkInvoiced(ctx context.Context, id uuid.UUID, externalInvoiceRef string) (domain.Settlement, error) {
	settlement, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.Settlement{}, err
	}
	if settlement.Status != domain.StatusCalculated {
		return domain.Settlement{}, apperr.New(apperr.ErrConflict,
			"settlement %s is %s, only calculated settlements can be invoiced", id, settlement.Status)
	}

	open, err := s.repo.FindOpenIssues(ctx, s.db, settlement.MeteringPointID, settlement.PeriodStart, settlement.PeriodEnd)
	if err != nil {
		return domain.Settlement{}, err
	}
	if len(open) > 0 {
		return domain.Settlement{}, apperr.New(apperr.ErrPreconditionFailed,
			"%d open issue(s) block invoicing of settlement %s", len(open), id)
	}

	now := s.clock.Now().UTC()
	settlement.Status = domain.StatusInvoiced
	settlement.InvoicedAt = &now
	if externalInvoiceRef != "" {
		settlement.ExternalInvoiceRef = &externalInvoiceRef
	}
	settlement.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, settlement); err != nil {
		return domain.Settlement{}, err
	}
	return *settlement, nil
}

func (s *Service) CreateMigrated(ctx context.Context, req domain.CreateMigratedRequest) (domain.Settlement, error) {
	if req.Period.End == nil {
		return domain.Settlement{}, apperr.New(apperr.ErrValidation, "settlement period must be bounded")
	}
	totalEnergy, err := decimal.NewFromString(req.TotalEnergy)
	if err != nil {
		return domain.Settlement{}, apperr.New(apperr.ErrValidation, "bad total energy %q", req.TotalEnergy)
	}
	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return domain.Settlement{}, apperr.New(apperr.ErrValidation, "bad total amount %q", req.TotalAmount)
	}

	now := s.clock.Now().UTC()
	var settlement domain.Settlement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindFor(ctx, tx, req.MeteringPointID, req.Period.Start, *req.Period.End, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadySettled
		}
		docNumber, err := s.repo.NextDocumentNumber(ctx, tx, now.Year())
		if err != nil {
			return err
		}
		settlement = domain.Settlement{
			ID:                 uuid.New(),
			MeteringPointID:    req.MeteringPointID,
			SupplyID:           req.SupplyID,
			PeriodStart:        req.Period.Start,
			PeriodEnd:          *req.Period.End,
			TotalEnergy:        totalEnergy.RoundBank(3),
			TotalAmount:        totalAmount.RoundBank(2),
			Status:             domain.StatusMigrated,
			DocumentNumber:     docNumber,
			CalculatedAt:       now,
			MigratedHourlyJson: req.HourlyJson,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return s.repo.Insert(ctx, tx, &settlement)
	})
	if err != nil {
		return domain.Settlement{}, err
	}
	return settlement, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.SettlementWithLines, error) {
	settlement, err := s.mustFind(ctx, id)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}
	lines, err := s.repo.FindLines(ctx, s.db, id)
	if err != nil {
		return domain.SettlementWithLines{}, err
	}
	return domain.SettlementWithLines{Settlement: *settlement, Lines: lines}, nil
}

func (s *Service) ListForMeteringPoint(ctx context.Context, meteringPointID uuid.UUID) ([]domain.Settlement, error) {
	return s.repo.ListForMeteringPoint(ctx, s.db, meteringPointID)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.SettlementStatus) ([]domain.Settlement, error) {
	return s.repo.ListByStatus(ctx, s.db, status)
}

func (s *Service) FindFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period, isCorrection bool) (*domain.Settlement, error) {
	if p.End == nil {
		return nil, apperr.New(apperr.ErrValidation, "settlement period must be bounded")
	}
	return s.repo.FindFor(ctx, s.db, meteringPointID, p.Start, *p.End, isCorrection)
}

func (s *Service) OpenIssue(ctx context.Context, req domain.OpenIssueRequest) (domain.SettlementIssue, error) {
	if req.Period.End == nil {
		return domain.SettlementIssue{}, apperr.New(apperr.ErrValidation, "issue period must be bounded")
	}
	existing, err := s.repo.FindOpenIssue(ctx, s.db, req.MeteringPointID, req.Period.Start, *req.Period.End, req.IssueType, req.Message)
	if err != nil {
		return domain.SettlementIssue{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := s.clock.Now().UTC()
	issue := domain.SettlementIssue{
		ID:                uuid.New(),
		MeteringPointID:   req.MeteringPointID,
		PeriodStart:       req.Period.Start,
		PeriodEnd:         *req.Period.End,
		TimeSeriesID:      req.TimeSeriesID,
		TimeSeriesVersion: req.TimeSeriesVersion,
		IssueType:         req.IssueType,
		Message:           req.Message,
		Details:           req.Details,
		Status:            domain.IssueOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.InsertIssue(ctx, s.db, &issue); err != nil {
		return domain.SettlementIssue{}, err
	}
	return issue, nil
}

func (s *Service) ResolveIssue(ctx context.Context, id uuid.UUID) (domain.SettlementIssue, error) {
	return s.closeIssue(ctx, id, domain.IssueResolved)
}

func (s *Service) DismissIssue(ctx context.Context, id uuid.UUID) (domain.SettlementIssue, error) {
	return s.closeIssue(ctx, id, domain.IssueDismissed)
}

func (s *Service) closeIssue(ctx context.Context, id uuid.UUID, status domain.IssueStatus) (domain.SettlementIssue, error) {
	issue, err := s.repo.FindIssueByID(ctx, s.db, id)
	if err != nil {
		return domain.SettlementIssue{}, err
	}
	if issue == nil {
		return domain.SettlementIssue{}, apperr.New(apperr.ErrNotFound, "settlement issue %s not found", id)
	}
	if issue.Status != domain.IssueOpen {
		return domain.SettlementIssue{}, apperr.New(apperr.ErrConflict, "settlement issue %s is already %s", id, issue.Status)
	}
	now := s.clock.Now().UTC()
	issue.Status = status
	issue.ResolvedAt = &now
	issue.UpdatedAt = now
	if err := s.repo.UpdateIssue(ctx, s.db, issue); err != nil {
		return domain.SettlementIssue{}, err
	}
	return *issue, nil
}

func (s *Service) OpenIssuesFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]domain.SettlementIssue, error) {
	if p.End == nil {
		return nil, apperr.New(apperr.ErrValidation, "issue period must be bounded")
	}
	return s.repo.FindOpenIssues(ctx, s.db, meteringPointID, p.Start, *p.End)
}

func (s *Service) ListIssues(ctx context.Context, status domain.IssueStatus) ([]domain.SettlementIssue, error) {
	return s.repo.ListIssuesByStatus(ctx, s.db, status)
}

func (s *Service) mustFind(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
	settlement, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, apperr.New(apperr.ErrNotFound, "settlement %s not found", id)
	}
	return settlement, nil
}
