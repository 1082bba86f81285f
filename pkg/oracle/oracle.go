package oracle

import (
	"context"
	"fmt"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// Outcome is the result of a single satisfiability query. The values
// match the integers returned by gini.
type Outcome int

const (
	Unknown       Outcome = 0
	Satisfiable   Outcome = 1
	Unsatisfiable Outcome = -1
)

func (o Outcome) String() string {
	switch o {
	case Satisfiable:
		return "sat"
	case Unsatisfiable:
		return "unsat"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionClosed is returned by Solve after Close.
	ErrSessionClosed = errors.New("oracle session closed")
	// ErrIndeterminate is returned when an engine answers neither
	// satisfiable nor unsatisfiable.
	ErrIndeterminate = errors.New("oracle returned an indeterminate outcome")
)

// UnknownEngine is returned by ForEngine for unregistered names.
type UnknownEngine string

func (e UnknownEngine) Error() string {
	return fmt.Sprintf("unknown sat engine %q", string(e))
}

// Session answers satisfiability queries over one hard formula. A
// Session is owned by a single goroutine at a time.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o oraclefakes/fake_session.go . Session
type Session interface {
	// Solve decides the hard formula under assumptions. The returned
	// Model is only non-nil for Satisfiable and remains valid after
	// subsequent calls.
	Solve(ctx context.Context, assumptions []z.Lit) (Outcome, Model, error)
	Close() error
}

// Oracle opens sessions over hard formulas. Sessions opened by one Oracle
// are used by different goroutines at the same time, one goroutine per
// session. An engine whose solvers share state across instances must
// serialize that state itself, as Gophersat does.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o oraclefakes/fake_oracle.go . Oracle
type Oracle interface {
	Open(f *formula.HardFormula) (Session, error)
}

// Model is a snapshot of a satisfying assignment indexed by variable.
// Index 0 is unused. Variables beyond the snapshot read as false.
type Model []bool

var _ inter.Model = Model(nil)

// ModelOf copies the values of variables 1..max out of src.
func ModelOf(src inter.Model, max z.Var) Model {
	m := make(Model, max+1)
	for v := z.Var(1); v <= max; v++ {
		m[v] = src.Value(v.Pos())
	}
	return m
}

// Value reports whether lit is true under the model.
func (m Model) Value(lit z.Lit) bool {
	v := lit.Var()
	if int(v) >= len(m) {
		return !lit.IsPos()
	}
	if lit.IsPos() {
		return m[v]
	}
	return !m[v]
}

// Satisfies reports whether every literal in ms is true under the model.
func (m Model) Satisfies(ms ...z.Lit) bool {
	for _, lit := range ms {
		if !m.Value(lit) {
			return false
		}
	}
	return true
}

// Dimacs renders the model as signed DIMACS integers.
func (m Model) Dimacs() []int {
	if len(m) == 0 {
		return nil
	}
	out := make([]int, 0, len(m)-1)
	for v := 1; v < len(m); v++ {
		if m[v] {
			out = append(out, v)
		} else {
			out = append(out, -v)
		}
	}
	return out
}
