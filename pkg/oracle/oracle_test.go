package oracle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/boxopt/pkg/formula"
)

func mustFormula(t *testing.T, clauses [][]int) *formula.HardFormula {
	t.Helper()
	f, err := formula.FromDimacs(clauses)
	require.NoError(t, err)
	return f
}

func TestSessionSolve(t *testing.T) {
	type tc struct {
		Name        string
		Clauses     [][]int
		Assumptions []int
		Outcome     Outcome
		True        []int
	}

	for _, engine := range Engines() {
		for _, tt := range []tc{
			{
				Name:    "empty formula",
				Outcome: Satisfiable,
			},
			{
				Name:    "unit clauses",
				Clauses: [][]int{{1}, {-2}},
				Outcome: Satisfiable,
				True:    []int{1, -2},
			},
			{
				Name:        "assumption forces value",
				Clauses:     [][]int{{1, 2}},
				Assumptions: []int{-1},
				Outcome:     Satisfiable,
				True:        []int{-1, 2},
			},
			{
				Name:        "assumption conflicts",
				Clauses:     [][]int{{1}},
				Assumptions: []int{-1},
				Outcome:     Unsatisfiable,
			},
			{
				Name:    "contradiction",
				Clauses: [][]int{{1}, {-1}},
				Outcome: Unsatisfiable,
			},
			{
				Name:    "empty clause",
				Clauses: [][]int{{1, 2}, {}},
				Outcome: Unsatisfiable,
			},
			{
				Name:        "assumption on unmentioned variable",
				Clauses:     [][]int{{1, 2}},
				Assumptions: []int{5},
				Outcome:     Satisfiable,
				True:        []int{5},
			},
		} {
			t.Run(fmt.Sprintf("%s/%s", engine, tt.Name), func(t *testing.T) {
				o, err := ForEngine(engine)
				require.NoError(t, err)
				s, err := o.Open(mustFormula(t, tt.Clauses))
				require.NoError(t, err)
				defer s.Close()

				outcome, model, err := s.Solve(context.Background(), formula.Lits(tt.Assumptions...))
				require.NoError(t, err)
				assert.Equal(t, tt.Outcome, outcome)
				if outcome == Satisfiable {
					require.NotNil(t, model)
					assert.True(t, model.Satisfies(formula.Lits(tt.True...)...), "model %v", model.Dimacs())
				} else {
					assert.Nil(t, model)
				}
			})
		}
	}
}

func TestSessionIsIncremental(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			o, err := ForEngine(engine)
			require.NoError(t, err)
			s, err := o.Open(mustFormula(t, [][]int{{1, 2}, {-1, -2}}))
			require.NoError(t, err)
			defer s.Close()

			ctx := context.Background()
			outcome, first, err := s.Solve(ctx, formula.Lits(1))
			require.NoError(t, err)
			require.Equal(t, Satisfiable, outcome)

			outcome, _, err = s.Solve(ctx, formula.Lits(1, 2))
			require.NoError(t, err)
			assert.Equal(t, Unsatisfiable, outcome)

			outcome, second, err := s.Solve(ctx, formula.Lits(2))
			require.NoError(t, err)
			require.Equal(t, Satisfiable, outcome)

			// Earlier snapshots are unaffected by later queries.
			assert.True(t, first.Satisfies(formula.Lits(1, -2)...))
			assert.True(t, second.Satisfies(formula.Lits(-1, 2)...))
		})
	}
}

func TestSessionClosedAndCancelled(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			o, err := ForEngine(engine)
			require.NoError(t, err)
			s, err := o.Open(mustFormula(t, [][]int{{1}}))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err = s.Solve(ctx, nil)
			assert.ErrorIs(t, err, context.Canceled)

			require.NoError(t, s.Close())
			_, _, err = s.Solve(context.Background(), nil)
			assert.ErrorIs(t, err, ErrSessionClosed)
		})
	}
}

func TestEnginesAgree(t *testing.T) {
	f := formula.RandomFormula(30, 120, 11)
	g, err := Gini{}.Open(f)
	require.NoError(t, err)
	p, err := Gophersat{}.Open(f)
	require.NoError(t, err)

	ctx := context.Background()
	for v := 1; v <= 30; v++ {
		for _, d := range []int{v, -v} {
			assumptions := formula.Lits(d)
			og, mg, err := g.Solve(ctx, assumptions)
			require.NoError(t, err)
			op, mp, err := p.Solve(ctx, assumptions)
			require.NoError(t, err)
			assert.Equal(t, og, op, "assumption %d", d)
			if og == Satisfiable {
				assert.True(t, satisfiesAll(f, mg))
				assert.True(t, satisfiesAll(f, mp))
			}
		}
	}
}

func TestGophersatConcurrentSessions(t *testing.T) {
	const (
		vars     = 120
		sessions = 8
	)
	f := formula.RandomFormula(vars, 500, 12)
	ctx := context.Background()

	g, err := Gini{}.Open(f)
	require.NoError(t, err)
	defer g.Close()
	expected := make([]Outcome, 2*vars)
	for i := range expected {
		outcome, _, err := g.Solve(ctx, formula.Lits(assumption(i)))
		require.NoError(t, err)
		expected[i] = outcome
	}

	var wg sync.WaitGroup
	for w := 0; w < sessions; w++ {
		s, err := Gophersat{}.Open(f)
		require.NoError(t, err)
		wg.Add(1)
		go func(w int, s Session) {
			defer wg.Done()
			defer s.Close()
			for i := w; i < len(expected); i += sessions {
				outcome, m, err := s.Solve(ctx, formula.Lits(assumption(i)))
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, expected[i], outcome, "assumption %d", assumption(i))
				if outcome == Satisfiable {
					assert.True(t, satisfiesAll(f, m), "assumption %d", assumption(i))
					assert.True(t, m.Value(formula.Lits(assumption(i))[0]))
				}
			}
		}(w, s)
	}
	wg.Wait()
}

// assumption maps 0, 1, 2, 3, ... to 1, -1, 2, -2, ...
func assumption(i int) int {
	if i%2 == 1 {
		return -(i/2 + 1)
	}
	return i/2 + 1
}

func satisfiesAll(f *formula.HardFormula, m Model) bool {
	for i := 0; i < f.Len(); i++ {
		ok := false
		for _, lit := range f.Clause(i) {
			if m.Value(lit) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestModelValue(t *testing.T) {
	m := Model{false, true, false}
	assert.True(t, m.Value(z.Var(1).Pos()))
	assert.True(t, m.Value(z.Var(2).Neg()))
	assert.False(t, m.Value(z.Var(9).Pos()))
	assert.True(t, m.Value(z.Var(9).Neg()))
	assert.Equal(t, []int{1, -2}, m.Dimacs())
	assert.Nil(t, Model(nil).Dimacs())
}

func TestForEngine(t *testing.T) {
	assert.Equal(t, []string{EngineGini, EngineGophersat}, Engines())
	_, err := ForEngine("minisat")
	assert.Equal(t, UnknownEngine("minisat"), err)
	assert.EqualError(t, err, `unknown sat engine "minisat"`)
}

func TestInstrument(t *testing.T) {
	var outcomes []Outcome
	o := Instrument(Gini{}, EngineGini, func(engine string, outcome Outcome, d time.Duration) {
		assert.Equal(t, EngineGini, engine)
		assert.True(t, d >= 0)
		outcomes = append(outcomes, outcome)
	})
	s, err := o.Open(mustFormula(t, [][]int{{1}}))
	require.NoError(t, err)
	_, _, err = s.Solve(context.Background(), nil)
	require.NoError(t, err)
	_, _, err = s.Solve(context.Background(), formula.Lits(-1))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{Satisfiable, Unsatisfiable}, outcomes)
}
