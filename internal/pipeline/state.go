package pipeline

import "fmt"

// State is a stage of a single run
type State string

const (
	StateIdle               State = "idle"
	StateCollecting         State = "collecting"
	StateCollectingFallback State = "collecting_fallback"
	StateNormalizing        State = "normalizing"
	StateAnalyzing          State = "analyzing"
	StateRendering          State = "rendering"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// transitions lists the legal successors of each state. Done and failed are
// terminal.
var transitions = map[State][]State{
	StateIdle:               {StateCollecting, StateFailed},
	StateCollecting:         {StateCollectingFallback, StateNormalizing, StateFailed},
	StateCollectingFallback: {StateNormalizing, StateFailed},
	StateNormalizing:        {StateAnalyzing, StateFailed},
	StateAnalyzing:          {StateRendering, StateFailed},
	StateRendering:          {StateDone, StateFailed},
}

// CanTransition reports whether from -> to is a legal transition
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Observer receives every state transition of a run
type Observer func(query string, from, to State)

// machine tracks the state of one run
type machine struct {
	query    string
	state    State
	observer Observer
}

func newMachine(query string, observer Observer) *machine {
	return &machine{query: query, state: StateIdle, observer: observer}
}

// to moves to next, or returns an error if the table forbids it
func (m *machine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("illegal transition %s -> %s", m.state, next)
	}
	prev := m.state
	m.state = next
	if m.observer != nil {
		m.observer(m.query, prev, next)
	}
	return nil
}

// fail moves to failed and builds the run error for the current stage.
// A machine already in a terminal state keeps it.
func (m *machine) fail(kind, cause error) *RunError {
	stage := m.state
	if stage != StateFailed && stage != StateDone {
		_ = m.to(StateFailed)
	}
	return &RunError{Stage: stage, Kind: kind, Err: cause}
}
