package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	"github.com/nordlux/elcore/internal/messaging/domain"
	"github.com/nordlux/elcore/internal/observability/metrics"
	"github.com/nordlux/elcore/pkg/apperr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Cfg   config.Config
	Repo  domain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	repo        domain.Repository
	node        *snowflake.Node
	supplierGln string
	datahubGln  string
	maxAttempts int
}

func New(p Params) (domain.Service, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("messaging.service"),
		clock:       p.Clock,
		repo:        p.Repo,
		node:        node,
		supplierGln: p.Cfg.SupplierGln,
		datahubGln:  p.Cfg.DatahubGln,
		maxAttempts: p.Cfg.Workers.MaxAttempts,
	}, nil
}

func (s *Service) Receive(ctx context.Context, req domain.ReceiveRequest) (domain.InboxMessage, bool, error) {
	messageID := strings.TrimSpace(req.MessageID)
	if messageID == "" {
		return domain.InboxMessage{}, false, apperr.New(apperr.ErrValidation, "message id is required")
	}
	if len(req.Payload) == 0 {
		return domain.InboxMessage{}, false, apperr.New(apperr.ErrValidation, "payload is required")
	}

	existing, err := s.repo.FindInboxByMessageID(ctx, s.db, messageID)
	if err != nil {
		return domain.InboxMessage{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	now := s.clock.Now().UTC()
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	msg := domain.InboxMessage{
		ID:              uuid.New(),
		MessageID:       messageID,
		DocumentType:    req.DocumentType,
		BusinessProcess: req.BusinessProcess,
		SenderGln:       req.SenderGln,
		ReceiverGln:     req.ReceiverGln,
		Payload:         req.Payload,
		ReceivedAt:      receivedAt.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.InsertInbox(ctx, s.db, &msg); err != nil {
		return domain.InboxMessage{}, false, err
	}
	metrics.IncMessage("inbox", "received")
	return msg, true, nil
}

func (s *Service) ClaimInboxBatch(ctx context.Context, limit int) ([]domain.InboxMessage, error) {
	return s.repo.FindUnprocessedInbox(ctx, s.db, s.clock.Now().UTC(), s.maxAttempts, limit)
}

func (s *Service) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	msg, err := s.mustFindInbox(ctx, id)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	msg.IsProcessed = true
	msg.ProcessedAt = &now
	msg.ProcessingError = nil
	msg.NextAttemptAt = nil
	msg.UpdatedAt = now
	if err := s.repo.UpdateInbox(ctx, s.db, msg); err != nil {
		return err
	}
	metrics.IncMessage("inbox", "processed")
	return nil
}

func (s *Service) MarkProcessingFailed(ctx context.Context, id uuid.UUID, cause error) error {
	msg, err := s.mustFindInbox(ctx, id)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	msg.ProcessingAttempts++
	errText := cause.Error()
	msg.ProcessingError = &errText
	next := now.Add(retryDelay(msg.ProcessingAttempts))
	msg.NextAttemptAt = &next
	msg.UpdatedAt = now
	if err := s.repo.UpdateInbox(ctx, s.db, msg); err != nil {
		return err
	}
	metrics.IncMessage("inbox", "failed")
	if msg.ProcessingAttempts >= s.maxAttempts {
		s.log.Error("inbox message quarantined",
			zap.String("message_id", msg.MessageID),
			zap.Int("attempts", msg.ProcessingAttempts),
			zap.String("error", errText))
	}
	return nil
}

func (s *Service) Enqueue(ctx context.Context, req domain.EnqueueRequest) (domain.OutboxMessage, error) {
	if len(req.Payload) == 0 {
		return domain.OutboxMessage{}, apperr.New(apperr.ErrValidation, "payload is required")
	}
	now := s.clock.Now().UTC()
	msg := domain.OutboxMessage{
		ID:              uuid.New(),
		MessageID:       s.node.Generate().String(),
		DocumentType:    req.DocumentType,
		BusinessProcess: req.BusinessProcess,
		SenderGln:       s.supplierGln,
		ReceiverGln:     req.ReceiverGln,
		Payload:         req.Payload,
		ScheduledFor:    req.ScheduledFor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if msg.ReceiverGln == "" {
		msg.ReceiverGln = s.datahubGln
	}
	if err := s.repo.InsertOutbox(ctx, s.db, &msg); err != nil {
		return domain.OutboxMessage{}, err
	}
	metrics.IncMessage("outbox", "enqueued")
	return msg, nil
}

func (s *Service) ClaimOutboxBatch(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	return s.repo.FindDueOutbox(ctx, s.db, s.clock.Now().UTC(), s.maxAttempts, limit)
}

func (s *Service) MarkSent(ctx context.Context, id uuid.UUID, response string) error {
	msg, err := s.mustFindOutbox(ctx, id)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	msg.IsSent = true
	msg.SentAt = &now
	if response != "" {
		msg.Response = &response
	}
	msg.SendError = nil
	msg.NextAttemptAt = nil
	msg.UpdatedAt = now
	if err := s.repo.UpdateOutbox(ctx, s.db, msg); err != nil {
		return err
	}
	metrics.IncMessage("outbox", "sent")
	return nil
}

func (s *Service) MarkSendFailed(ctx context.Context, id uuid.UUID, cause error) error {
	msg, err := s.mustFindOutbox(ctx, id)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	msg.SendAttempts++
	errText := cause.Error()
	msg.SendError = &errText
	next := now.Add(retryDelay(msg.SendAttempts))
	msg.NextAttemptAt = &next
	msg.UpdatedAt = now
	if err := s.repo.UpdateOutbox(ctx, s.db, msg); err != nil {
		return err
	}
	metrics.IncMessage("outbox", "failed")
	return nil
}

func (s *Service) ResetForRetry(ctx context.Context, id uuid.UUID) (domain.OutboxMessage, error) {
	msg, err := s.mustFindOutbox(ctx, id)
	if err != nil {
		return domain.OutboxMessage{}, err
	}
	if msg.IsSent {
		return domain.OutboxMessage{}, apperr.New(apperr.ErrConflict, "outbox message %s is already sent", id)
	}
	msg.SendError = nil
	msg.NextAttemptAt = nil
	msg.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.UpdateOutbox(ctx, s.db, msg); err != nil {
		return domain.OutboxMessage{}, err
	}
	return *msg, nil
}

func (s *Service) GetInbox(ctx context.Context, id uuid.UUID) (domain.InboxMessage, error) {
	msg, err := s.mustFindInbox(ctx, id)
	if err != nil {
		return domain.InboxMessage{}, err
	}
	return *msg, nil
}

func (s *Service) GetOutbox(ctx context.Context, id uuid.UUID) (domain.OutboxMessage, error) {
	msg, err := s.mustFindOutbox(ctx, id)
	if err != nil {
		return domain.OutboxMessage{}, err
	}
	return *msg, nil
}

func (s *Service) QuarantinedInbox(ctx context.Context) ([]domain.InboxMessage, error) {
	return s.repo.FindExhaustedInbox(ctx, s.db, s.maxAttempts)
}

// retryDelay doubles per attempt from a one second base, capped at an hour.
func retryDelay(attempts int) time.Duration {
	delay := time.Second
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= time.Hour {
			return time.Hour
		}
	}
	return delay
}

func (s *Service) mustFindInbox(ctx context.Context, id uuid.UUID) (*domain.InboxMessage, error) {
	msg, err := s.repo.FindInboxByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.New(apperr.ErrNotFound, "inbox message %s not found", id)
	}
	return msg, nil
}

func (s *Service) mustFindOutbox(ctx context.Context, id uuid.UUID) (*domain.OutboxMessage, error) {
	msg, err := s.repo.FindOutboxByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.New(apperr.ErrNotFound, "outbox message %s not found", id)
	}
	return msg, nil
}
