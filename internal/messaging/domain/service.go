package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ReceiveRequest struct {
	MessageID       string
	DocumentType    string
	BusinessProcess string
	SenderGln       string
	ReceiverGln     string
	Payload         []byte
	ReceivedAt      time.Time
}

type EnqueueRequest struct {
	DocumentType    string
	BusinessProcess string
	ReceiverGln     string
	Payload         []byte
	ScheduledFor    *time.Time
}

type Service interface {
	// Receive stores an inbound envelope. Re-delivery of an already known
	// MessageId is a no-op; the second return is false when the message
	// was seen before.
	Receive(ctx context.Context, req ReceiveRequest) (InboxMessage, bool, error)

	// ClaimInboxBatch returns up to limit unprocessed messages whose
	// retry window has opened, oldest first.
	ClaimInboxBatch(ctx context.Context, limit int) ([]InboxMessage, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	// MarkProcessingFailed bumps the attempt counter and pushes the next
	// attempt out exponentially.
	MarkProcessingFailed(ctx context.Context, id uuid.UUID, cause error) error

	// Enqueue creates an outbound envelope with a generated MessageId.
	Enqueue(ctx context.Context, req EnqueueRequest) (OutboxMessage, error)
	ClaimOutboxBatch(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, response string) error
	MarkSendFailed(ctx context.Context, id uuid.UUID, cause error) error
	// ResetForRetry clears the send error and reopens the message for the
	// dispatcher. Attempts are kept. Sent messages cannot be reset.
	ResetForRetry(ctx context.Context, id uuid.UUID) (OutboxMessage, error)

	GetInbox(ctx context.Context, id uuid.UUID) (InboxMessage, error)
	GetOutbox(ctx context.Context, id uuid.UUID) (OutboxMessage, error)
	QuarantinedInbox(ctx context.Context) ([]InboxMessage, error)
}
