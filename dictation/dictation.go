package dictation

import (
	"errors"
	"sync"

	apperrors "github.com/kbukum/voxscribe/errors"
)

// State is where a voice session stands.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// EventType names a recognizer callback.
type EventType string

const (
	EventStart  EventType = "start"
	EventResult EventType = "result"
	EventError  EventType = "error"
	EventEnd    EventType = "end"
)

// ErrorNoSpeech is reported when a result event carries no alternatives.
const ErrorNoSpeech = "no-speech"

// ErrInvalidTransition marks an event that does not apply to the current
// state. The machine is left unchanged.
var ErrInvalidTransition = errors.New("dictation: invalid transition")

// Alternative is one recognition hypothesis.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Event is a recognizer callback as reported by the browser. Results
// mirrors the recognizer's result list: results[i][j] is alternative j of
// result i.
type Event struct {
	Type    EventType       `json:"type" validate:"required,oneof=start result error end"`
	Results [][]Alternative `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Transcript returns results[0][0], or false when there is none.
func (e Event) Transcript() (string, bool) {
	if len(e.Results) == 0 || len(e.Results[0]) == 0 {
		return "", false
	}
	return e.Results[0][0].Transcript, true
}

// Outcome describes one applied transition.
type Outcome struct {
	From State
	To   State
	// Text is set when a result was accepted.
	Text string
	// Error is set when the session failed.
	Error string
}

var transitions = map[State]map[EventType]State{
	StateIdle:      {EventStart: StateRecording},
	StateRecording: {EventResult: StateCompleted, EventError: StateFailed, EventEnd: StateIdle},
	StateCompleted: {EventStart: StateRecording, EventEnd: StateCompleted},
	StateFailed:    {EventStart: StateRecording, EventEnd: StateFailed},
}

// Machine is the state of one voice session. It is safe for concurrent
// use.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine returns a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply moves the machine by ev. A result event without alternatives is
// handled as an error event with ErrorNoSpeech.
func (m *Machine) Apply(ev Event) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Outcome{From: m.state}
	typ := ev.Type
	if typ == EventResult {
		text, ok := ev.Transcript()
		if ok {
			out.Text = text
		} else {
			typ = EventError
			ev.Error = ErrorNoSpeech
		}
	}
	if typ == EventError {
		out.Error = ev.Error
		if out.Error == "" {
			out.Error = "unknown"
		}
	}

	next, ok := transitions[m.state][typ]
	if !ok {
		return Outcome{From: m.state, To: m.state},
			apperrors.InvalidTransition(string(m.state), string(ev.Type)).WithCause(ErrInvalidTransition)
	}
	m.state = next
	out.To = next
	return out, nil
}

// Active reports whether a recording is in progress.
func (m *Machine) Active() bool {
	return m.State() == StateRecording
}
