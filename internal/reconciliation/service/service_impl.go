package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/reconciliation/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/marketid"
	"github.com/nordlux/elcore/pkg/money"
	"github.com/nordlux/elcore/pkg/period"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reconciliation.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) IngestWholesale(ctx context.Context, req domain.IngestWholesaleRequest) (domain.WholesaleSettlement, error) {
	if strings.TrimSpace(req.GridArea) == "" {
		return domain.WholesaleSettlement{}, apperr.New(apperr.ErrValidation, "grid area is required")
	}
	if req.Period.End == nil {
		return domain.WholesaleSettlement{}, apperr.New(apperr.ErrValidation, "wholesale period must be bounded")
	}
	if req.CounterpartGln != "" {
		if _, err := marketid.GlnFromTrusted(req.CounterpartGln); err != nil {
			return domain.WholesaleSettlement{}, err
		}
	}

	now := s.clock.Now().UTC()
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}

	ws := domain.WholesaleSettlement{
		ID:               uuid.New(),
		GridArea:         req.GridArea,
		PeriodStart:      req.Period.Start,
		PeriodEnd:        *req.Period.End,
		CounterpartGln:   req.CounterpartGln,
		ProcessReference: req.ProcessReference,
		ReceivedAt:       receivedAt.UTC(),
		CreatedAt:        now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertWholesale(ctx, tx, &ws); err != nil {
			return err
		}
		lines := make([]domain.WholesaleSettlementLine, 0, len(req.Lines))
		for _, in := range req.Lines {
			lines = append(lines, domain.WholesaleSettlementLine{
				ID:                    uuid.New(),
				WholesaleSettlementID: ws.ID,
				ChargeID:              in.ChargeID,
				Description:           in.Description,
				Quantity:              in.Quantity,
				Amount:                money.RoundAmount(in.Amount),
				CreatedAt:             now,
			})
		}
		return s.repo.InsertWholesaleLines(ctx, tx, lines)
	})
	if err != nil {
		return domain.WholesaleSettlement{}, err
	}
	return ws, nil
}

func (s *Service) Run(ctx context.Context, gridArea string, p period.Period) (domain.ResultWithLines, error) {
	if p.End == nil {
		return domain.ResultWithLines{}, apperr.New(apperr.ErrValidation, "reconciliation period must be bounded")
	}

	wholesale, err := s.repo.FindLatestWholesale(ctx, s.db, gridArea, p.Start, *p.End)
	if err != nil {
		return domain.ResultWithLines{}, err
	}
	if wholesale == nil {
		return domain.ResultWithLines{}, apperr.New(apperr.ErrNotFound,
			"no wholesale settlement for grid area %s in %s", gridArea, p)
	}
	hubLines, err := s.repo.FindWholesaleLines(ctx, s.db, wholesale.ID)
	if err != nil {
		return domain.ResultWithLines{}, err
	}

	ourLines, err := s.repo.FindOurLines(ctx, s.db, gridArea, p.Start, *p.End)
	if err != nil {
		return domain.ResultWithLines{}, err
	}

	ourByDescription := make(map[string]decimal.Decimal)
	for _, l := range ourLines {
		ourByDescription[l.Description] = ourByDescription[l.Description].Add(l.Amount)
	}
	hubByDescription := make(map[string]decimal.Decimal)
	for _, l := range hubLines {
		hubByDescription[l.Description] = hubByDescription[l.Description].Add(l.Amount)
	}

	descriptions := make(map[string]struct{}, len(ourByDescription)+len(hubByDescription))
	for d := range ourByDescription {
		descriptions[d] = struct{}{}
	}
	for d := range hubByDescription {
		descriptions[d] = struct{}{}
	}
	ordered := make([]string, 0, len(descriptions))
	for d := range descriptions {
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	now := s.clock.Now().UTC()
	resultID := uuid.New()
	ourTotal := decimal.Zero
	hubTotal := decimal.Zero
	lines := make([]domain.ReconciliationLine, 0, len(ordered))
	for _, description := range ordered {
		our := ourByDescription[description]
		hub := hubByDescription[description]
		ourTotal = ourTotal.Add(our)
		hubTotal = hubTotal.Add(hub)
		lines = append(lines, domain.ReconciliationLine{
			ID:                     uuid.New(),
			ReconciliationResultID: resultID,
			Description:            description,
			OurAmountDkk:           our,
			DataHubAmountDkk:       hub,
			DifferenceDkk:          our.Sub(hub),
			CreatedAt:              now,
		})
	}

	difference := ourTotal.Sub(hubTotal)
	percent := decimal.Zero
	if !hubTotal.IsZero() {
		percent = difference.Div(hubTotal).Mul(decimal.NewFromInt(100)).RoundBank(4)
	} else if !difference.IsZero() {
		percent = decimal.NewFromInt(100)
	}

	status := domain.StatusBalanced
	if percent.Abs().GreaterThan(domain.BalanceThresholdPercent) {
		status = domain.StatusDeviating
	}

	result := domain.ReconciliationResult{
		ID:                resultID,
		GridArea:          gridArea,
		PeriodStart:       p.Start,
		PeriodEnd:         *p.End,
		OurTotalDkk:       ourTotal,
		DataHubTotalDkk:   hubTotal,
		DifferenceDkk:     difference,
		DifferencePercent: percent,
		Status:            status,
		RunAt:             now,
		CreatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertResult(ctx, tx, &result); err != nil {
			return err
		}
		return s.repo.InsertResultLines(ctx, tx, lines)
	})
	if err != nil {
		return domain.ResultWithLines{}, err
	}

	s.log.Info("reconciliation run",
		zap.String("grid_area", gridArea),
		zap.String("status", string(status)),
		zap.String("difference_dkk", difference.StringFixed(2)))
	return domain.ResultWithLines{Result: result, Lines: lines}, nil
}

func (s *Service) GetResult(ctx context.Context, id uuid.UUID) (domain.ResultWithLines, error) {
	result, err := s.repo.FindResultByID(ctx, s.db, id)
	if err != nil {
		return domain.ResultWithLines{}, err
	}
	if result == nil {
		return domain.ResultWithLines{}, apperr.New(apperr.ErrNotFound, "reconciliation result %s not found", id)
	}
	lines, err := s.repo.FindResultLines(ctx, s.db, id)
	if err != nil {
		return domain.ResultWithLines{}, err
	}
	return domain.ResultWithLines{Result: *result, Lines: lines}, nil
}

func (s *Service) ListResults(ctx context.Context, gridArea string) ([]domain.ReconciliationResult, error) {
	return s.repo.ListResults(ctx, s.db, gridArea)
}
