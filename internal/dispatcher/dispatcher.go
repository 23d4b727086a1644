package dispatcher

import (
	"context"
	"time"

	"github.com/nordlux/elcore/internal/config"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	"github.com/nordlux/elcore/internal/observability/metrics"
	processdomain "github.com/nordlux/elcore/internal/process/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	LC        fx.Lifecycle
	Log       *zap.Logger
	Cfg       config.Config
	Messaging messagingdomain.Service
	Processes processdomain.Service
	Transport Transport
}

// inboundRouter is the slice of the process service the inbox worker needs.
type inboundRouter interface {
	HandleInbound(ctx context.Context, msg messagingdomain.InboxMessage) error
}

// Dispatcher runs the inbox and outbox workers.
type Dispatcher struct {
	log       *zap.Logger
	cfg       config.WorkerConfig
	messaging messagingdomain.Service
	processes inboundRouter
	transport Transport
	stop      chan struct{}
	done      chan struct{}
}

func New(p Params) *Dispatcher {
	d := &Dispatcher{
		log:       p.Log.Named("dispatcher"),
		cfg:       p.Cfg.Workers,
		messaging: p.Messaging,
		processes: p.Processes,
		transport: p.Transport,
		stop:      make(chan struct{}),
		done:      make(chan struct{}, 2),
	}
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go d.loop("inbox_dispatcher", d.cfg.InboxPollInterval, d.ProcessInboxBatch)
			go d.loop("outbox_sender", d.cfg.OutboxPollInterval, d.SendOutboxBatch)
			return nil
		},
		OnStop: func(context.Context) error {
			close(d.stop)
			<-d.done
			<-d.done
			return nil
		},
	})
	return d
}

func (d *Dispatcher) loop(job string, interval time.Duration, fn func(context.Context) (int, error)) {
	defer func() { d.done <- struct{}{} }()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			started := time.Now()
			metrics.IncJobRun(job)
			if _, err := fn(context.Background()); err != nil {
				metrics.IncJobError(job)
				d.log.Error("worker run failed", zap.String("job", job), zap.Error(err))
			}
			metrics.ObserveJobDuration(job, time.Since(started))
		}
	}
}

// ProcessInboxBatch routes one claim of inbound envelopes. A handler error
// pushes the message onto its retry schedule and never blocks the rest of
// the batch.
func (d *Dispatcher) ProcessInboxBatch(ctx context.Context) (int, error) {
	batch, err := d.messaging.ClaimInboxBatch(ctx, d.cfg.InboxBatchSize)
	if err != nil {
		return 0, err
	}
	handled := 0
	for _, msg := range batch {
		if err := d.processes.HandleInbound(ctx, msg); err != nil {
			d.log.Warn("inbound message failed",
				zap.String("message_id", msg.MessageID),
				zap.String("business_process", msg.BusinessProcess),
				zap.Error(err))
			if markErr := d.messaging.MarkProcessingFailed(ctx, msg.ID, err); markErr != nil {
				return handled, markErr
			}
			continue
		}
		if err := d.messaging.MarkProcessed(ctx, msg.ID); err != nil {
			return handled, err
		}
		handled++
	}
	return handled, nil
}

// SendOutboxBatch ships one claim of due outbound envelopes.
func (d *Dispatcher) SendOutboxBatch(ctx context.Context) (int, error) {
	batch, err := d.messaging.ClaimOutboxBatch(ctx, d.cfg.OutboxBatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, msg := range batch {
		response, err := d.transport.Send(ctx, msg)
		if err != nil {
			d.log.Warn("outbound send failed",
				zap.String("message_id", msg.MessageID),
				zap.String("document_type", msg.DocumentType),
				zap.Error(err))
			if markErr := d.messaging.MarkSendFailed(ctx, msg.ID, err); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := d.messaging.MarkSent(ctx, msg.ID, response); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

var Module = fx.Module("dispatcher",
	fx.Provide(NewLogTransport),
	fx.Provide(New),
	fx.Invoke(func(*Dispatcher) {}),
)
