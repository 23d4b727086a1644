package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/internal/cim"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
)

// CorrectionWindow is the deadline for BRS-003 / BRS-011 reversals counted
// from the effective date.
const CorrectionWindow = 60 * 24 * time.Hour

type InitiateSupplierChangeRequest struct {
	Gsrn                string
	EffectiveDate       time.Time
	Cpr                 *string
	Cvr                 *string
	PreviousSupplierGln string
}

// InitiateRequestInput starts any request/response process. Fields are
// merged into the single MktActivityRecord of the outbound document.
type InitiateRequestInput struct {
	ProcessType   ProcessType
	Gsrn          *string
	EffectiveDate *time.Time
	Fields        cim.Record
}

type InitiateReversalRequest struct {
	ProcessType   ProcessType // BRS-003 or BRS-011
	Gsrn          string
	EffectiveDate time.Time
	Reason        string
}

// RecipientChangeRequest is an inbound supplier change landing on us as the
// losing party.
type RecipientChangeRequest struct {
	ProcessType    ProcessType
	Gsrn           string
	EffectiveDate  time.Time
	TransactionID  *string
	CounterpartGln string
}

type ListFilter struct {
	ProcessType *ProcessType
	Status      *ProcessStatus
	Gsrn        *string
	Limit       int
}

type Service interface {
	// InitiateSupplierChange opens a BRS-001 as initiator. Exactly one of
	// Cpr and Cvr must be set.
	InitiateSupplierChange(ctx context.Context, req InitiateSupplierChangeRequest) (BrsProcess, error)
	// HandleConfirmation records the hub confirmation; a Created process
	// first moves through Submitted.
	HandleConfirmation(ctx context.Context, processID uuid.UUID, transactionID string) (BrsProcess, error)
	HandleRejection(ctx context.Context, processID uuid.UUID, reason string) (BrsProcess, error)
	// ExecuteSupplierChange ends the incumbent supply at the effective date
	// and opens ours. Requires the process to be Confirmed.
	ExecuteSupplierChange(ctx context.Context, processID, customerID uuid.UUID) (BrsProcess, error)
	// HandleSupplierChangeAsRecipient runs the losing-supplier arm: our
	// supply ends at the effective date.
	HandleSupplierChangeAsRecipient(ctx context.Context, req RecipientChangeRequest) (BrsProcess, error)

	// InitiateRequest starts a request/response process and enqueues the
	// outbound document; the process is left Submitted.
	InitiateRequest(ctx context.Context, input InitiateRequestInput) (BrsProcess, error)
	// InitiateReversal starts a BRS-003 or BRS-011 correction. Fails when
	// the effective date is more than 60 days back.
	InitiateReversal(ctx context.Context, req InitiateReversalRequest) (BrsProcess, error)
	// HandleDataReceived marks a Confirmed request/response process as
	// having received its data payload.
	HandleDataReceived(ctx context.Context, processID uuid.UUID) (BrsProcess, error)
	Complete(ctx context.Context, processID uuid.UUID, reason string) (BrsProcess, error)

	// HandleInbound routes one inbox envelope to the matching handler and
	// applies its domain effects.
	HandleInbound(ctx context.Context, msg messagingdomain.InboxMessage) error

	GetByID(ctx context.Context, id uuid.UUID) (ProcessWithTransitions, error)
	List(ctx context.Context, filter ListFilter) ([]BrsProcess, error)
}
