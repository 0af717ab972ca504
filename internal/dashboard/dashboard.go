// Package dashboard implements the Dashboard/Task contract the engine
// treats as an external collaborator: it reports each ActionDriver's
// lifecycle through it without knowing whether the other end is a
// terminal table, a JSON listener, or a test double.
package dashboard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State mirrors engine.State for display purposes, kept as its own
// type so this package has no import-time dependency on internal/engine.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
	StatePassed
	StateFailed
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateDone:
		return "DONE"
	case StatePassed:
		return "PASSED"
	case StateFailed:
		return "FAILED"
	case StateBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// Task is one row of dashboard state, bound to a single ActionDriver's
// run: its state transitions and any log text it emits via
// ActionContext.Log.
type Task interface {
	ID() string
	SetState(s State)
	AddOutput(text string)
}

// Dashboard begins a new Task for a verb/noun pair (e.g. "build",
// "src/foo.cpp"). silent suppresses console output for built-in,
// uninteresting actions (the extract-type factory's own runs).
type Dashboard interface {
	BeginTask(verb, noun string, silent bool) Task
	Close() error
}

// Snapshot is one Task's state as of the moment it was read, the shape
// both the console renderer and the JSON listener format for display.
type Snapshot struct {
	ID     string   `json:"id"`
	Verb   string   `json:"verb"`
	Noun   string   `json:"noun"`
	State  string   `json:"state"`
	Output []string `json:"output,omitempty"`
	Silent bool     `json:"-"`
}

type registry struct {
	mu    sync.Mutex
	tasks []*baseTask
}

func newRegistry() *registry { return &registry{} }

func (r *registry) add(t *baseTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, t)
}

func (r *registry) snapshot() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.snapshot())
	}
	return out
}

// baseTask implements the bookkeeping every Task implementation shares.
// After each SetState/AddOutput it calls onChange, when one is set: the
// console dashboard passes a callback that repaints its table, and the
// network dashboard passes none, serving snapshots only when /status is
// requested.
type baseTask struct {
	mu     sync.Mutex
	id     string
	verb   string
	noun   string
	state  State
	output []string
	silent bool
	onChange func(*baseTask)
}

func newBaseTask(verb, noun string, silent bool, onChange func(*baseTask)) *baseTask {
	return &baseTask{
		id:       uuid.NewString(),
		verb:     verb,
		noun:     noun,
		state:    StatePending,
		silent:   silent,
		onChange: onChange,
	}
}

func (t *baseTask) ID() string { return t.id }

func (t *baseTask) SetState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(t)
	}
}

func (t *baseTask) AddOutput(text string) {
	t.mu.Lock()
	t.output = append(t.output, text)
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(t)
	}
}

func (t *baseTask) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.output))
	copy(out, t.output)
	return Snapshot{
		ID:     t.id,
		Verb:   t.verb,
		Noun:   t.noun,
		State:  t.state.String(),
		Output: out,
		Silent: t.silent,
	}
}

func (t *baseTask) label() string {
	return fmt.Sprintf("%s %s", t.verb, t.noun)
}
