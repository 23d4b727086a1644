package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/messaging/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func first[T any](db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	err := db.First(&row, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) InsertInbox(ctx context.Context, db *gorm.DB, msg *domain.InboxMessage) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) UpdateInbox(ctx context.Context, db *gorm.DB, msg *domain.InboxMessage) error {
	return db.WithContext(ctx).Save(msg).Error
}

func (r *repo) FindInboxByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.InboxMessage, error) {
	return first[domain.InboxMessage](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindInboxByMessageID(ctx context.Context, db *gorm.DB, messageID string) (*domain.InboxMessage, error) {
	return first[domain.InboxMessage](db.WithContext(ctx), "message_id = ?", messageID)
}

func (r *repo) FindUnprocessedInbox(ctx context.Context, db *gorm.DB, now time.Time, maxAttempts, limit int) ([]domain.InboxMessage, error) {
	var messages []domain.InboxMessage
	err := db.WithContext(ctx).
		Where("is_processed = ?", false).
		Where("processing_attempts < ?", maxAttempts).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("received_at asc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *repo) FindExhaustedInbox(ctx context.Context, db *gorm.DB, maxAttempts int) ([]domain.InboxMessage, error) {
	var messages []domain.InboxMessage
	err := db.WithContext(ctx).
		Where("is_processed = ? AND processing_attempts >= ?", false, maxAttempts).
		Order("received_at asc").
		Find(&messages).Error
	return messages, err
}

func (r *repo) InsertOutbox(ctx context.Context, db *gorm.DB, msg *domain.OutboxMessage) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) UpdateOutbox(ctx context.Context, db *gorm.DB, msg *domain.OutboxMessage) error {
	return db.WithContext(ctx).Save(msg).Error
}

func (r *repo) FindOutboxByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.OutboxMessage, error) {
	return first[domain.OutboxMessage](db.WithContext(ctx), "id = ?", id)
}

func (r *repo) FindDueOutbox(ctx context.Context, db *gorm.DB, now time.Time, maxAttempts, limit int) ([]domain.OutboxMessage, error) {
	var messages []domain.OutboxMessage
	err := db.WithContext(ctx).
		Where("is_sent = ?", false).
		Where("send_attempts < ?", maxAttempts).
		Where("scheduled_for IS NULL OR scheduled_for <= ?", now).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("created_at asc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
