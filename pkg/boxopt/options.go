package boxopt

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// SessionPolicy controls how long a worker keeps an oracle session.
type SessionPolicy int

const (
	// SessionPerWorker keeps one session for the lifetime of a worker.
	SessionPerWorker SessionPolicy = iota
	// SessionPerObjective opens a fresh session for every popped item.
	SessionPerObjective
)

func (p SessionPolicy) String() string {
	switch p {
	case SessionPerWorker:
		return "per-worker"
	case SessionPerObjective:
		return "per-objective"
	default:
		return fmt.Sprintf("SessionPolicy(%d)", int(p))
	}
}

func ParseSessionPolicy(s string) (SessionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per-worker", "worker":
		return SessionPerWorker, nil
	case "per-objective", "objective":
		return SessionPerObjective, nil
	}
	return SessionPerWorker, fmt.Errorf("unknown session policy %q", s)
}

// ExitPolicy controls what an idle worker does when the queue is empty.
type ExitPolicy int

const (
	// ExitWhenEmpty exits as soon as a pop finds the queue empty, even if
	// another worker still holds an incomplete objective.
	ExitWhenEmpty ExitPolicy = iota
	// WaitForCompletion blocks idle workers until every objective is
	// complete.
	WaitForCompletion
)

func (p ExitPolicy) String() string {
	switch p {
	case ExitWhenEmpty:
		return "exit-when-empty"
	case WaitForCompletion:
		return "wait-for-completion"
	default:
		return fmt.Sprintf("ExitPolicy(%d)", int(p))
	}
}

func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exit-when-empty", "exit":
		return ExitWhenEmpty, nil
	case "wait-for-completion", "wait":
		return WaitForCompletion, nil
	}
	return ExitWhenEmpty, fmt.Errorf("unknown exit policy %q", s)
}

type Option func(o *Optimizer) error

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(o *Optimizer) error {
		if n < 1 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		o.workers = n
		return nil
	}
}

// WithBatchSize sets how many bits a worker decides before releasing an
// objective. Values <= 0 decide the whole objective at once.
func WithBatchSize(n int) Option {
	return func(o *Optimizer) error {
		o.batchSize = n
		return nil
	}
}

func WithSessionPolicy(p SessionPolicy) Option {
	return func(o *Optimizer) error {
		o.sessionPolicy = p
		return nil
	}
}

func WithExitPolicy(p ExitPolicy) Option {
	return func(o *Optimizer) error {
		o.exitPolicy = p
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Optimizer) error {
		o.logger = l
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(o *Optimizer) error {
		o.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(o *Optimizer) error {
		if o.workers == 0 {
			o.workers = runtime.GOMAXPROCS(0)
		}
		return nil
	},
	func(o *Optimizer) error {
		if o.logger == nil {
			l := logrus.New()
			l.SetOutput(io.Discard)
			o.logger = l
		}
		return nil
	},
	func(o *Optimizer) error {
		if o.tracer == nil {
			o.tracer = DefaultTracer{}
		}
		return nil
	},
}
