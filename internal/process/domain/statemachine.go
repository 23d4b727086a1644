package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/samber/lo"
)

// Machine maps each state to the states reachable from it. Rejected and
// Completed have no outgoing edges.
type Machine map[ProcessState][]ProcessState

var requestResponseMachine = Machine{
	StateCreated:      {StateSubmitted},
	StateSubmitted:    {StateConfirmed, StateRejected},
	StateConfirmed:    {StateDataReceived, StateCompleted},
	StateDataReceived: {StateCompleted},
}

var bidirectionalInitiatorMachine = Machine{
	StateCreated:   {StateSubmitted},
	StateSubmitted: {StateConfirmed, StateRejected},
	StateConfirmed: {StateActive},
	StateActive:    {StateCompleted},
}

var recipientMachine = Machine{
	StateCreated:               {StateAcknowledged},
	StateAcknowledged:          {StateAwaitingEffectiveDate, StateCompleted},
	StateAwaitingEffectiveDate: {StateFinalSettlement},
	StateFinalSettlement:       {StateCompleted},
}

// MachineFor resolves the state machine governing a (process type, role)
// pair.
func MachineFor(pt ProcessType, role ProcessRole) (Machine, error) {
	spec, err := Catalog(pt)
	if err != nil {
		return nil, err
	}
	if role == RoleRecipient {
		return recipientMachine, nil
	}
	if spec.Shape == ShapeBidirectional {
		return bidirectionalInitiatorMachine, nil
	}
	return requestResponseMachine, nil
}

// Transition moves the process to the next state, appending to the log.
// Illegal moves, including any move out of a terminal state, fail with a
// conflict.
func Transition(p *BrsProcess, to ProcessState, reason string, at time.Time) (ProcessTransition, error) {
	machine, err := MachineFor(p.ProcessType, p.Role)
	if err != nil {
		return ProcessTransition{}, err
	}
	if p.IsTerminal() {
		return ProcessTransition{}, apperr.New(apperr.ErrConflict,
			"%s process %s is terminal in state %s", p.ProcessType, p.ID, p.CurrentState)
	}
	if !lo.Contains(machine[p.CurrentState], to) {
		return ProcessTransition{}, apperr.New(apperr.ErrConflict,
			"%s %s cannot transition %s -> %s", p.ProcessType, p.Role, p.CurrentState, to)
	}

	tr := ProcessTransition{
		ID:             uuid.New(),
		ProcessID:      p.ID,
		FromState:      p.CurrentState,
		ToState:        to,
		Reason:         reason,
		TransitionedAt: at,
	}
	p.CurrentState = to
	p.UpdatedAt = at
	switch to {
	case StateCompleted:
		p.Status = StatusCompleted
		p.CompletedAt = &tr.TransitionedAt
	case StateRejected:
		p.Status = StatusRejected
		p.CompletedAt = &tr.TransitionedAt
	}
	return tr, nil
}
