package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	InsertInbox(ctx context.Context, db *gorm.DB, msg *InboxMessage) error
	UpdateInbox(ctx context.Context, db *gorm.DB, msg *InboxMessage) error
	FindInboxByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*InboxMessage, error)
	FindInboxByMessageID(ctx context.Context, db *gorm.DB, messageID string) (*InboxMessage, error)
	FindUnprocessedInbox(ctx context.Context, db *gorm.DB, now time.Time, maxAttempts, limit int) ([]InboxMessage, error)
	FindExhaustedInbox(ctx context.Context, db *gorm.DB, maxAttempts int) ([]InboxMessage, error)

	InsertOutbox(ctx context.Context, db *gorm.DB, msg *OutboxMessage) error
	UpdateOutbox(ctx context.Context, db *gorm.DB, msg *OutboxMessage) error
	FindOutboxByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*OutboxMessage, error)
	FindDueOutbox(ctx context.Context, db *gorm.DB, now time.Time, maxAttempts, limit int) ([]OutboxMessage, error)
}
