package oracle

import (
	"context"
	"sync"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// Gini is the incremental engine. Each session owns one gini solver and
// keeps learned clauses across queries.
type Gini struct{}

func (Gini) Open(f *formula.HardFormula) (Session, error) {
	for i := 0; i < f.Len(); i++ {
		if len(f.Clause(i)) == 0 {
			return &giniSession{empty: true}, nil
		}
	}
	g := gini.NewVc(int(f.MaxVar()), f.Len())
	f.AddTo(g)
	return &giniSession{g: g, max: f.MaxVar()}, nil
}

type giniSession struct {
	mu     sync.Mutex
	g      *gini.Gini
	max    z.Var
	closed bool
	// empty is set when the formula contains the empty clause.
	empty bool
}

func (s *giniSession) Solve(ctx context.Context, assumptions []z.Lit) (Outcome, Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Unknown, nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return Unknown, nil, err
	}
	if s.empty {
		return Unsatisfiable, nil, nil
	}
	s.grow(assumptions)
	s.g.Assume(assumptions...)
	switch Outcome(s.g.Solve()) {
	case Satisfiable:
		return Satisfiable, ModelOf(s.g, s.max), nil
	case Unsatisfiable:
		return Unsatisfiable, nil, nil
	}
	return Unknown, nil, ErrIndeterminate
}

// grow registers variables that only appear in assumptions. gini sizes
// its variable tables from added clauses, so a tautology is added for
// each new variable before it may be assumed.
func (s *giniSession) grow(assumptions []z.Lit) {
	for _, m := range assumptions {
		for v := m.Var(); v > s.max; s.max++ {
			n := s.max + 1
			s.g.Add(n.Pos())
			s.g.Add(n.Neg())
			s.g.Add(z.LitNull)
		}
	}
}

func (s *giniSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.g = nil
	return nil
}
