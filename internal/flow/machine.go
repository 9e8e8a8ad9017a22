// internal/flow/machine.go
package flow

import (
	"fmt"
	"sync"
)

// State is one phase of a transaction flow.
type State string

const (
	StateEdit    State = "edit"
	StatePreview State = "preview"
	StateProcess State = "process"
	StateDone    State = "done"
	StateError   State = "error"
)

// Event drives the machine between states.
type Event string

const (
	EventSubmit  Event = "SUBMIT"
	EventCancel  Event = "CANCEL"
	EventSuccess Event = "SUCCESS"
	EventFail    Event = "FAIL"
)

// transitions is the complete acceptance table. Anything not listed is
// rejected, which is what prevents duplicate submissions while a
// transaction is in flight: process accepts only its own outcome
// events.
var transitions = map[State]map[Event]State{
	StateEdit: {
		EventSubmit: StatePreview,
	},
	StatePreview: {
		EventSubmit: StateProcess,
		EventCancel: StateEdit,
	},
	StateProcess: {
		EventSuccess: StateDone,
		EventFail:    StateError,
	},
	StateDone: {
		EventCancel: StateEdit,
	},
	StateError: {
		EventCancel: StateEdit,
	},
}

// Machine is the transaction flow state machine. Safe for concurrent
// use; the async command outcome and UI events may race.
type Machine struct {
	mu      sync.Mutex
	state   State
	lastErr string
}

// NewMachine creates a machine in the edit state.
func NewMachine() *Machine {
	return &Machine{state: StateEdit}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the retained failure message. It is non-empty only
// in the error state.
func (m *Machine) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Dispatch applies an event and returns the resulting state. Events the
// current state does not accept leave the machine unchanged and return
// an error. A FAIL event carries the failure message; re-entering edit
// clears it.
func (m *Machine) Dispatch(event Event, errMsg string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := transitions[m.state][event]
	if !ok {
		return m.state, fmt.Errorf("event %s not accepted in state %s", event, m.state)
	}

	switch {
	case event == EventFail:
		if errMsg == "" {
			errMsg = "transaction failed"
		}
		m.lastErr = errMsg
	case next == StateEdit:
		m.lastErr = ""
	}

	m.state = next
	return next, nil
}
