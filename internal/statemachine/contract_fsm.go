package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/counselflow/counselflow-api/internal/models"
)

// ErrUnknownStatus is returned for a target outside the contract status enum
var ErrUnknownStatus = errors.New("unknown contract status")

// Transition records a status change
type Transition struct {
	From string
	To   string
}

// ContractFSM wraps a contract with its state machine.
// Contract status is free-form: every status may move to every other status.
// The machine exists so each change flows through one place that can be observed.
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
	changed  *Transition
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cffsm := &ContractFSM{
		contract: contract,
	}

	events := make(fsm.Events, 0, len(models.ContractStatuses))
	for _, status := range models.ContractStatuses {
		// One event per target status, reachable from anywhere
		events = append(events, fsm.EventDesc{
			Name: status,
			Src:  models.ContractStatuses,
			Dst:  status,
		})
	}

	cffsm.fsm = fsm.NewFSM(
		contract.Status,
		events,
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				cffsm.changed = &Transition{From: e.Src, To: e.Dst}
			},
		},
	)

	return cffsm
}

// TransitionTo moves the contract to status. It returns a nil Transition when the
// contract already has that status.
func (c *ContractFSM) TransitionTo(ctx context.Context, status string) (*Transition, error) {
	if !isStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if !isStatus(c.fsm.Current()) {
		// Legacy rows may carry a status outside the enum; adopt the target directly
		t := &Transition{From: c.contract.Status, To: status}
		c.fsm.SetState(status)
		c.contract.Status = status
		return t, nil
	}

	c.changed = nil
	if err := c.fsm.Event(ctx, status); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to move contract to %s: %w", status, err)
	}

	c.contract.Status = c.fsm.Current()
	return c.changed, nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(status string) bool {
	return c.fsm.Can(status)
}

func isStatus(s string) bool {
	for _, status := range models.ContractStatuses {
		if status == s {
			return true
		}
	}
	return false
}
