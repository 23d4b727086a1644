// Package domain holds the DataHub message inbox and outbox. The inbox is
// idempotent on MessageId; the outbox is drained by the dispatcher.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InboxMessage struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID          string         `gorm:"size:64;not null;uniqueIndex" json:"message_id"`
	DocumentType       string         `gorm:"size:64;not null" json:"document_type"`
	BusinessProcess    string         `gorm:"size:16;not null;index" json:"business_process"`
	SenderGln          string         `gorm:"size:13;not null" json:"sender_gln"`
	ReceiverGln        string         `gorm:"size:13;not null" json:"receiver_gln"`
	Payload            datatypes.JSON `gorm:"not null" json:"payload"`
	ReceivedAt         time.Time      `gorm:"not null;index" json:"received_at"`
	IsProcessed        bool           `gorm:"not null;default:false;index" json:"is_processed"`
	ProcessedAt        *time.Time     `json:"processed_at,omitempty"`
	ProcessingError    *string        `gorm:"type:text" json:"processing_error,omitempty"`
	ProcessingAttempts int            `gorm:"not null;default:0" json:"processing_attempts"`
	NextAttemptAt      *time.Time     `json:"next_attempt_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InboxMessage) TableName() string { return "inbox_messages" }

type OutboxMessage struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID       string         `gorm:"size:64;not null;uniqueIndex" json:"message_id"`
	DocumentType    string         `gorm:"size:64;not null" json:"document_type"`
	BusinessProcess string         `gorm:"size:16;not null" json:"business_process"`
	SenderGln       string         `gorm:"size:13;not null" json:"sender_gln"`
	ReceiverGln     string         `gorm:"size:13;not null" json:"receiver_gln"`
	Payload         datatypes.JSON `gorm:"not null" json:"payload"`
	ScheduledFor    *time.Time     `json:"scheduled_for,omitempty"`
	IsSent          bool           `gorm:"not null;default:false;index" json:"is_sent"`
	SentAt          *time.Time     `json:"sent_at,omitempty"`
	SendAttempts    int            `gorm:"not null;default:0" json:"send_attempts"`
	Response        *string        `gorm:"type:text" json:"response,omitempty"`
	SendError       *string        `gorm:"type:text" json:"send_error,omitempty"`
	NextAttemptAt   *time.Time     `json:"next_attempt_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OutboxMessage) TableName() string { return "outbox_messages" }
