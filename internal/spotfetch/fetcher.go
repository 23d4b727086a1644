package spotfetch

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	"github.com/nordlux/elcore/internal/observability/metrics"
	pricedomain "github.com/nordlux/elcore/internal/price/domain"
	"github.com/nordlux/elcore/pkg/market"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Log    *zap.Logger
	Clock  clock.Clock
	Cfg    config.Config
	Client *Client
	Prices pricedomain.Service
}

// Fetcher keeps the spot price store current. Nordpool publishes tomorrow's
// hours around 13:00 CET, so one window covering yesterday through tomorrow
// picks up both the fresh publication and any intraday republication.
type Fetcher struct {
	log        *zap.Logger
	clock      clock.Clock
	client     *Client
	prices     pricedomain.Service
	interval   time.Duration
	maxRetries uint64
	stop       chan struct{}
	done       chan struct{}
}

func New(p Params) *Fetcher {
	f := &Fetcher{
		log:        p.Log.Named("spotfetch"),
		clock:      p.Clock,
		client:     p.Client,
		prices:     p.Prices,
		interval:   p.Cfg.Workers.SpotFetchInterval,
		maxRetries: 4,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go f.loop()
			return nil
		},
		OnStop: func(context.Context) error {
			close(f.stop)
			<-f.done
			return nil
		},
	})
	return f
}

func (f *Fetcher) loop() {
	defer close(f.done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.runWithMetrics()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			f.runWithMetrics()
		}
	}
}

func (f *Fetcher) runWithMetrics() {
	started := time.Now()
	metrics.IncJobRun("spot_fetch")
	if err := f.RunOnce(context.Background()); err != nil {
		metrics.IncJobError("spot_fetch")
		f.log.Error("spot fetch failed", zap.Error(err))
	}
	metrics.ObserveJobDuration("spot_fetch", time.Since(started))
}

// RunOnce fetches the current window for both Danish areas and upserts it.
// Transient energinet failures are retried with exponential backoff before
// the run is declared failed.
func (f *Fetcher) RunOnce(ctx context.Context) error {
	now := f.clock.Now().UTC()
	start := now.Truncate(24 * time.Hour).Add(-24 * time.Hour)
	end := start.Add(3 * 24 * time.Hour)

	var entries []pricedomain.SpotUpsert
	fetch := func() error {
		var err error
		entries, err = f.client.FetchDayAhead(ctx, start, end,
			[]market.PriceArea{market.PriceAreaDK1, market.PriceAreaDK2})
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.maxRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return err
	}

	result, err := f.prices.UpsertSpotPrices(ctx, entries)
	if err != nil {
		return err
	}
	f.log.Info("spot prices refreshed",
		zap.Time("window_start", start),
		zap.Time("window_end", end),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated))
	return nil
}

var Module = fx.Module("spotfetch",
	fx.Provide(NewClient),
	fx.Provide(New),
	fx.Invoke(func(*Fetcher) {}),
)
