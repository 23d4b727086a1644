// Package scheduler drives settlement creation: it watches for completed
// periods whose latest time series has no settlement yet, and for invoiced
// settlements whose series was superseded and therefore needs a correction.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	"github.com/nordlux/elcore/internal/observability/metrics"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/nordlux/elcore/pkg/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	LC          fx.Lifecycle
	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Cfg         config.Config
	Settlements settlementdomain.Service
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.WorkerConfig
	settlements settlementdomain.Service
	stop        chan struct{}
	done        chan struct{}
}

func New(p Params) *Scheduler {
	s := &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		clock:       p.Clock,
		cfg:         p.Cfg.Workers,
		settlements: p.Settlements,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.loop()
			return nil
		},
		OnStop: func(context.Context) error {
			close(s.stop)
			<-s.done
			return nil
		},
	})
	return s
}

func (s *Scheduler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.SchedulerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			started := time.Now()
			metrics.IncJobRun("settlement_scheduler")
			if err := s.RunOnce(context.Background()); err != nil {
				metrics.IncJobError("settlement_scheduler")
				s.log.Error("scheduler run failed", zap.Error(err))
			}
			metrics.ObserveJobDuration("settlement_scheduler", time.Since(started))
		}
	}
}

// RunOnce schedules one batch of due settlements and due corrections.
// Per-candidate precondition failures are logged and skipped so a single
// incomplete metering point cannot stall the rest.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now().UTC()

	due, err := s.findDueSettlements(ctx, now, s.cfg.SettlementBatch)
	if err != nil {
		return err
	}
	for _, candidate := range due {
		p, err := period.Closed(candidate.PeriodStart, candidate.PeriodEnd)
		if err != nil {
			return err
		}
		if _, err := s.settlements.CalculateForPeriod(ctx, candidate.MeteringPointID, p); err != nil {
			if apperr.IsPreconditionFailed(err) || apperr.IsConflict(err) {
				s.log.Debug("settlement skipped",
					zap.String("metering_point_id", candidate.MeteringPointID.String()),
					zap.String("period", p.String()),
					zap.Error(err))
				continue
			}
			return err
		}
		s.log.Info("settlement scheduled",
			zap.String("metering_point_id", candidate.MeteringPointID.String()),
			zap.String("period", p.String()))
	}

	corrections, err := s.findDueCorrections(ctx, s.cfg.SettlementBatch)
	if err != nil {
		return err
	}
	for _, originalID := range corrections {
		if _, err := s.settlements.CalculateCorrection(ctx, originalID); err != nil {
			if apperr.IsPreconditionFailed(err) || apperr.IsConflict(err) {
				s.log.Debug("correction skipped",
					zap.String("settlement_id", originalID.String()),
					zap.Error(err))
				continue
			}
			return err
		}
		s.log.Info("correction scheduled", zap.String("settlement_id", originalID.String()))
	}
	return nil
}

// dueCandidate is a latest series over a finished period with no settlement.
type dueCandidate struct {
	MeteringPointID uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

func (s *Scheduler) findDueSettlements(ctx context.Context, now time.Time, limit int) ([]dueCandidate, error) {
	var candidates []dueCandidate
	err := s.db.WithContext(ctx).
		Table("time_series ts").
		Select("ts.metering_point_id, ts.period_start, ts.period_end").
		Where("ts.is_latest = ?", true).
		Where("ts.period_end <= ?", now).
		Where(`NOT EXISTS (
			SELECT 1 FROM settlements s
			WHERE s.metering_point_id = ts.metering_point_id
			  AND s.period_start = ts.period_start
			  AND s.period_end = ts.period_end
			  AND s.is_correction = ?)`, false).
		Order("ts.period_end asc").
		Limit(limit).
		Scan(&candidates).Error
	return candidates, err
}

func (s *Scheduler) findDueCorrections(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("settlements s").
		Select("s.id").
		Joins(`JOIN time_series ts ON ts.metering_point_id = s.metering_point_id
			AND ts.period_start = s.period_start
			AND ts.period_end = s.period_end
			AND ts.is_latest = ?`, true).
		Where("s.status = ?", settlementdomain.StatusInvoiced).
		Where("s.is_correction = ?", false).
		Where("ts.version > s.time_series_version").
		Where("NOT EXISTS (SELECT 1 FROM settlements c WHERE c.previous_settlement_id = s.id)").
		Limit(limit).
		Scan(&ids).Error
	return ids, err
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(*Scheduler) {}),
)
