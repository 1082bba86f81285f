package oracle

import (
	"context"
	"sync"

	"github.com/crillab/gophersat/solver"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// Gophersat is a non-incremental engine: every query builds a fresh
// gophersat problem from the hard clauses plus one unit clause per
// assumption.
//
// gophersat solvers share package level scratch buffers while learning
// clauses, so queries of all gophersat sessions are serialized through
// gophersatMu. Workers using this engine still overlap their
// bookkeeping but never solve at the same time.
type Gophersat struct{}

var gophersatMu sync.Mutex

func (Gophersat) Open(f *formula.HardFormula) (Session, error) {
	return &gophersatSession{clauses: f.Dimacs(), max: f.MaxVar()}, nil
}

type gophersatSession struct {
	mu      sync.Mutex
	clauses [][]int
	max     z.Var
	closed  bool
}

func (s *gophersatSession) Solve(ctx context.Context, assumptions []z.Lit) (Outcome, Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Unknown, nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return Unknown, nil, err
	}

	max := s.max
	for _, m := range assumptions {
		if v := m.Var(); v > max {
			max = v
		}
	}
	if len(s.clauses) == 0 && len(assumptions) == 0 {
		return Satisfiable, make(Model, max+1), nil
	}

	cnf := make([][]int, len(s.clauses), len(s.clauses)+len(assumptions))
	copy(cnf, s.clauses)
	for _, m := range assumptions {
		cnf = append(cnf, []int{m.Dimacs()})
	}
	status, values := solveGophersat(cnf)
	switch status {
	case solver.Sat:
		model := make(Model, max+1)
		for i, b := range values {
			if v := i + 1; v < len(model) {
				model[v] = b
			}
		}
		return Satisfiable, model, nil
	case solver.Unsat:
		return Unsatisfiable, nil, nil
	}
	return Unknown, nil, ErrIndeterminate
}

// solveGophersat runs one gophersat query while holding gophersatMu.
// The model is only read for a satisfiable status.
func solveGophersat(cnf [][]int) (solver.Status, []bool) {
	gophersatMu.Lock()
	defer gophersatMu.Unlock()

	gs := solver.New(solver.ParseSlice(cnf))
	status := gs.Solve()
	if status != solver.Sat {
		return status, nil
	}
	return status, gs.Model()
}

func (s *gophersatSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.clauses = nil
	return nil
}
