// Package domain contains the BRS process models and state machines.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessType is the BRS number of a business process.
type ProcessType string

const (
	BRS001 ProcessType = "BRS-001" // supplier change
	BRS002 ProcessType = "BRS-002" // end of supply
	BRS003 ProcessType = "BRS-003" // incorrect supplier change
	BRS004 ProcessType = "BRS-004" // new metering point
	BRS005 ProcessType = "BRS-005" // request master data
	BRS006 ProcessType = "BRS-006" // master data update
	BRS007 ProcessType = "BRS-007" // closedown
	BRS008 ProcessType = "BRS-008" // connection
	BRS009 ProcessType = "BRS-009" // move-in
	BRS010 ProcessType = "BRS-010" // move-out
	BRS011 ProcessType = "BRS-011" // incorrect move
	BRS013 ProcessType = "BRS-013" // disconnect / reconnect
	BRS015 ProcessType = "BRS-015" // customer master data update
	BRS021 ProcessType = "BRS-021" // metered data
	BRS023 ProcessType = "BRS-023" // request aggregated measure data
	BRS024 ProcessType = "BRS-024" // request yearly sum
	BRS025 ProcessType = "BRS-025" // request metered data
	BRS027 ProcessType = "BRS-027" // request wholesale settlement
	BRS031 ProcessType = "BRS-031" // price data
	BRS034 ProcessType = "BRS-034" // request prices
	BRS036 ProcessType = "BRS-036" // product obligation
	BRS038 ProcessType = "BRS-038" // request charge links
	BRS039 ProcessType = "BRS-039" // service request
	BRS041 ProcessType = "BRS-041" // electrical heating
	BRS044 ProcessType = "BRS-044" // forced transfer
)

type ProcessRole string

const (
	RoleInitiator ProcessRole = "INITIATOR"
	RoleRecipient ProcessRole = "RECIPIENT"
)

type ProcessState string

const (
	StateCreated               ProcessState = "CREATED"
	StateSubmitted             ProcessState = "SUBMITTED"
	StateConfirmed             ProcessState = "CONFIRMED"
	StateRejected              ProcessState = "REJECTED"
	StateActive                ProcessState = "ACTIVE"
	StateDataReceived          ProcessState = "DATA_RECEIVED"
	StateAcknowledged          ProcessState = "ACKNOWLEDGED"
	StateAwaitingEffectiveDate ProcessState = "AWAITING_EFFECTIVE_DATE"
	StateFinalSettlement       ProcessState = "FINAL_SETTLEMENT"
	StateCompleted             ProcessState = "COMPLETED"
)

type ProcessStatus string

const (
	StatusPending   ProcessStatus = "PENDING"
	StatusCompleted ProcessStatus = "COMPLETED"
	StatusRejected  ProcessStatus = "REJECTED"
	StatusFailed    ProcessStatus = "FAILED"
)

// BrsProcess is one run of a business process against DataHub.
type BrsProcess struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey"`
	ProcessType    ProcessType   `gorm:"type:text;not null;index"`
	Role           ProcessRole   `gorm:"type:text;not null"`
	CurrentState   ProcessState  `gorm:"type:text;not null"`
	Status         ProcessStatus `gorm:"type:text;not null;index"`
	TransactionID  *string       `gorm:"type:text;index"`
	Gsrn           *string       `gorm:"type:text;index"`
	EffectiveDate  *time.Time
	CounterpartGln *string   `gorm:"type:text"`
	ErrorMessage   *string   `gorm:"type:text"`
	StartedAt      time.Time `gorm:"not null"`
	CompletedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BrsProcess) TableName() string { return "brs_processes" }

// IsTerminal reports whether the process can take no further transitions.
func (p BrsProcess) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusRejected
}

// ProcessTransition is one append-only state change of a process.
type ProcessTransition struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ProcessID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	FromState      ProcessState `gorm:"type:text;not null"`
	ToState        ProcessState `gorm:"type:text;not null"`
	Reason         string       `gorm:"type:text;not null"`
	TransitionedAt time.Time    `gorm:"not null"`
}

func (ProcessTransition) TableName() string { return "process_transitions" }

// ProcessWithTransitions pairs a process with its ordered transition log.
type ProcessWithTransitions struct {
	Process     BrsProcess
	Transitions []ProcessTransition
}
