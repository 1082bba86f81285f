package boxopt

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-air/gini/z"
)

// EventKind identifies what a traced Event describes.
type EventKind int

const (
	// Decided is emitted once per decided bit.
	Decided EventKind = iota
	// Released is emitted when an incomplete objective is pushed back.
	Released
	// Completed is emitted when an objective's last bit is decided.
	Completed
	// Exited is emitted when a worker leaves its loop.
	Exited
)

func (k EventKind) String() string {
	switch k {
	case Decided:
		return "decided"
	case Released:
		return "released"
	case Completed:
		return "completed"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes one step of a run. Fields that do not apply to Kind
// are zero.
type Event struct {
	Kind      EventKind
	Worker    int
	Objective int
	// Decided is the assignment length after the step.
	Decided int
	// Lit is the decided literal for Decided events.
	Lit z.Lit
	// FastPath is set when the cached model decided the bit.
	FastPath bool
	// Pending is the number of incomplete objectives seen by an exiting
	// worker. A non-zero value on exit is the early-exit race.
	Pending int
}

// Tracer observes a run. Implementations are called concurrently from
// every worker.
type Tracer interface {
	Trace(e Event)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Event) {
}

// LoggingTracer writes one block per event to Writer.
type LoggingTracer struct {
	Writer io.Writer
	mu     sync.Mutex
}

func (t *LoggingTracer) Trace(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.Writer, "---\nEvent: %s\nWorker: %d\n", e.Kind, e.Worker)
	switch e.Kind {
	case Decided:
		fmt.Fprintf(t.Writer, "Objective: %d\nLiteral: %d\nDecided: %d\nFastPath: %t\n", e.Objective, e.Lit.Dimacs(), e.Decided, e.FastPath)
	case Released, Completed:
		fmt.Fprintf(t.Writer, "Objective: %d\nDecided: %d\n", e.Objective, e.Decided)
	case Exited:
		fmt.Fprintf(t.Writer, "Pending: %d\n", e.Pending)
	}
}

// Tracers fans events out to every tracer in order.
type Tracers []Tracer

func (ts Tracers) Trace(e Event) {
	for _, t := range ts {
		t.Trace(e)
	}
}
