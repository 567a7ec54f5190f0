package dialog

import (
	"fmt"
	"slices"

	"github.com/voicedesk/voicedesk/internal/config"
)

type State string

const (
	StateUnidentified  State = "unidentified"
	StateIdentified    State = "identified"
	StateBrowsingSlots State = "browsing_slots"
	StateBooking       State = "booking"
	StateRetrieving    State = "retrieving"
	StateCancelling    State = "cancelling"
	StateModifying     State = "modifying"
	StateCompleted     State = "completed"
)

type Action string

const (
	ActionIdentifyUser         Action = "identify_user"
	ActionFetchSlots           Action = "fetch_slots"
	ActionBookAppointment      Action = "book_appointment"
	ActionRetrieveAppointments Action = "retrieve_appointments"
	ActionCancelAppointment    Action = "cancel_appointment"
	ActionModifyAppointment    Action = "modify_appointment"
	ActionEndConversation      Action = "end_conversation"
)

// transition is one row of the legality table: the states an action may run
// from, the state it lands in, and (for read-modify actions) the state the
// session settles back to once the tool finishes. The transient state is
// never observable between invocations.
type transition struct {
	from   []State
	to     State
	settle State
	final  bool
}

var transitions = map[Action]transition{
	ActionIdentifyUser: {
		from: []State{StateUnidentified},
		to:   StateIdentified,
	},
	ActionFetchSlots: {
		from: []State{StateIdentified, StateCompleted},
		to:   StateBrowsingSlots,
	},
	ActionBookAppointment: {
		from: []State{StateBrowsingSlots, StateIdentified},
		to:   StateCompleted,
	},
	ActionRetrieveAppointments: {
		from:   []State{StateIdentified, StateCompleted},
		to:     StateRetrieving,
		settle: StateIdentified,
	},
	ActionCancelAppointment: {
		from:   []State{StateIdentified, StateCompleted},
		to:     StateCancelling,
		settle: StateIdentified,
	},
	ActionModifyAppointment: {
		from:   []State{StateIdentified, StateCompleted},
		to:     StateModifying,
		settle: StateIdentified,
	},
	ActionEndConversation: {
		from: []State{StateIdentified, StateBrowsingSlots, StateBooking,
			StateRetrieving, StateCancelling, StateModifying, StateCompleted},
		to:    StateCompleted,
		final: true,
	},
}

// Outcome describes an allowed transition.
type Outcome struct {
	Transient State // state during the invocation
	Settled   State // state committed after the tool succeeds
	Final     bool  // the session has been ended by the caller
}

// TransitionError is a normal, recoverable outcome, not a fault: the router
// reports it to the caller as an invalid_state_transition result.
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %s is not allowed in state %s", e.Action, e.From)
}

// Machine is the pure legality check. It owns no session data; callers pass
// the session's current state in and commit the returned outcome themselves.
type Machine struct {
	reentry config.ReentryPolicy
}

func NewMachine(reentry config.ReentryPolicy) Machine {
	if reentry == "" {
		reentry = config.ReentryIdentified
	}
	return Machine{reentry: reentry}
}

// Next reports whether action may run from current. ended marks a session
// whose caller already ran end_conversation; under the terminal re-entry
// policy nothing is legal after that.
func (m Machine) Next(current State, ended bool, action Action) (Outcome, error) {
	t, ok := transitions[action]
	if !ok {
		return Outcome{}, &TransitionError{From: current, Action: action}
	}
	if ended && m.reentry == config.ReentryTerminal {
		return Outcome{}, &TransitionError{From: current, Action: action}
	}
	if !slices.Contains(t.from, current) {
		return Outcome{}, &TransitionError{From: current, Action: action}
	}

	settled := t.to
	if t.settle != "" {
		settled = t.settle
	}
	return Outcome{Transient: t.to, Settled: settled, Final: t.final}, nil
}

// Known reports whether action exists in the legality table at all.
func Known(action Action) bool {
	_, ok := transitions[action]
	return ok
}
