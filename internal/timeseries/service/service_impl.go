package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/timeseries/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/period"
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
		log:  p.Log.Named("timeseries.service"),
		repo: p.Repo,
	}
}

func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	if req.MeteringPointID == uuid.Nil {
		return domain.IngestResult{}, apperr.New(apperr.ErrValidation, "metering point id is required")
	}
	if req.Period.End == nil {
		return domain.IngestResult{}, apperr.New(apperr.ErrValidation, "time series period must be bounded")
	}
	if err := req.Resolution.Validate(); err != nil {
		return domain.IngestResult{}, err
	}
	if len(req.Observations) == 0 {
		return domain.IngestResult{}, domain.ErrEmptyTimeSeries
	}

	inputs := make([]domain.ObservationInput, len(req.Observations))
	copy(inputs, req.Observations)
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Timestamp.Before(inputs[j].Timestamp) })

	seen := make(map[time.Time]struct{}, len(inputs))
	for _, in := range inputs {
		ts := in.Timestamp.UTC()
		if !req.Resolution.Aligned(ts) {
			return domain.IngestResult{}, apperr.New(apperr.ErrValidation,
				"observation %s not aligned to %s", ts.Format(time.RFC3339), req.Resolution)
		}
		if !req.Period.Contains(ts) {
			return domain.IngestResult{}, apperr.New(apperr.ErrValidation,
				"observation %s outside series period %s", ts.Format(time.RFC3339), req.Period)
		}
		if _, dup := seen[ts]; dup {
			return domain.IngestResult{}, apperr.New(apperr.ErrIntegrityViolation,
				"duplicate observation at %s", ts.Format(time.RFC3339))
		}
		if err := in.Quality.Validate(); err != nil {
			return domain.IngestResult{}, err
		}
		seen[ts] = struct{}{}
	}

	var result domain.IngestResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := s.repo.FindLatest(ctx, tx, req.MeteringPointID, req.Period.Start, *req.Period.End)
		if err != nil {
			return err
		}

		version := 1
		if previous != nil {
			previous.IsLatest = false
			previous.UpdatedAt = time.Now().UTC()
			if err := s.repo.Update(ctx, tx, previous); err != nil {
				return err
			}
			version = previous.Version + 1
			result.SupersededID = &previous.ID
			result.SupersededVersion = previous.Version
		}

		now := time.Now().UTC()
		series := domain.TimeSeries{
			ID:              uuid.New(),
			MeteringPointID: req.MeteringPointID,
			PeriodStart:     req.Period.Start,
			PeriodEnd:       *req.Period.End,
			Resolution:      req.Resolution,
			Version:         version,
			IsLatest:        true,
			TransactionID:   req.TransactionID,
			ReceivedAt:      now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, tx, &series); err != nil {
			return err
		}

		observations := make([]domain.Observation, 0, len(inputs))
		for _, in := range inputs {
			observations = append(observations, domain.Observation{
				ID:           uuid.New(),
				TimeSeriesID: series.ID,
				Timestamp:    in.Timestamp.UTC(),
				Quantity:     in.Quantity.RoundBank(3),
				Quality:      in.Quality,
				CreatedAt:    now,
			})
		}
		if err := s.repo.InsertObservations(ctx, tx, observations); err != nil {
			return err
		}

		result.Series = series
		return nil
	})
	if err != nil {
		return domain.IngestResult{}, err
	}

	s.log.Info("time series ingested",
		zap.String("metering_point_id", req.MeteringPointID.String()),
		zap.Int("version", result.Series.Version),
		zap.Int("observations", len(inputs)))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.SeriesWithObservations, error) {
	series, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SeriesWithObservations{}, err
	}
	if series == nil {
		return domain.SeriesWithObservations{}, apperr.New(apperr.ErrNotFound, "time series %s not found", id)
	}
	observations, err := s.repo.FindObservations(ctx, s.db, id)
	if err != nil {
		return domain.SeriesWithObservations{}, err
	}
	return domain.SeriesWithObservations{Series: *series, Observations: observations}, nil
}

func (s *Service) LatestFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) (*domain.SeriesWithObservations, error) {
	if p.End == nil {
		return nil, apperr.New(apperr.ErrValidation, "time series period must be bounded")
	}
	series, err := s.repo.FindLatest(ctx, s.db, meteringPointID, p.Start, *p.End)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, nil
	}
	observations, err := s.repo.FindObservations(ctx, s.db, series.ID)
	if err != nil {
		return nil, err
	}
	return &domain.SeriesWithObservations{Series: *series, Observations: observations}, nil
}

func (s *Service) VersionsFor(ctx context.Context, meteringPointID uuid.UUID, p period.Period) ([]domain.TimeSeries, error) {
	if p.End == nil {
		return nil, apperr.New(apperr.ErrValidation, "time series period must be bounded")
	}
	return s.repo.FindVersions(ctx, s.db, meteringPointID, p.Start, *p.End)
}
