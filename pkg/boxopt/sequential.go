package boxopt

import (
	"context"
	"math/big"
	"time"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

// Sequential is the reference engine. It scores objectives one at a time,
// each with a fresh session, deciding every bit in a single batch.
type Sequential struct {
	Oracle oracle.Oracle
}

var _ Engine = Sequential{}

func (s Sequential) Optimize(ctx context.Context, f *formula.HardFormula, objectives []formula.Objective) (*Result, error) {
	start := time.Now()
	result := &Result{
		Scores:      make([]*big.Int, len(objectives)),
		Assignments: make([][]z.Lit, len(objectives)),
	}
	decided := false
	for id, obj := range objectives {
		if err := obj.Validate(); err != nil {
			return nil, err
		}
		if obj.Len() == 0 {
			result.Scores[id] = new(big.Int)
			result.Assignments[id] = []z.Lit{}
			continue
		}
		r, err := s.decide(ctx, f, &result.Stats, id, obj)
		if err != nil {
			return nil, err
		}
		decided = true
		if result.Scores[id], err = Score(obj, r); err != nil {
			return nil, err
		}
		result.Assignments[id] = r
	}

	if !decided && len(objectives) > 0 {
		calls, err := checkSatisfiable(ctx, s.Oracle, f)
		result.Stats.OracleCalls += calls
		if err != nil {
			return nil, err
		}
	}

	result.Timing.Solve = time.Since(start)
	result.Timing.Total = result.Timing.Solve
	return result, nil
}

func (s Sequential) decide(ctx context.Context, f *formula.HardFormula, stats *Stats, id int, obj formula.Objective) ([]z.Lit, error) {
	sess, err := s.Oracle.Open(f)
	if err != nil {
		return nil, &OracleFailure{Objective: id, Err: errors.Wrap(err, "opening session")}
	}
	defer sess.Close()

	d := NewDecider(sess)
	r, err := d.DecideNextBatch(ctx, obj, nil, obj.Len())
	stats.OracleCalls += d.OracleCalls
	stats.FastPath += d.FastPath
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, ErrFormulaUnsat):
		return nil, ErrFormulaUnsat
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}
	return nil, &OracleFailure{Objective: id, Err: err}
}

// checkSatisfiable runs one unconstrained query and returns the number of
// oracle calls made.
func checkSatisfiable(ctx context.Context, o oracle.Oracle, f *formula.HardFormula) (int64, error) {
	sess, err := o.Open(f)
	if err != nil {
		return 0, &OracleFailure{Objective: -1, Err: errors.Wrap(err, "opening session")}
	}
	defer sess.Close()
	d := NewDecider(sess)
	outcome, _, err := d.solve(ctx, nil)
	switch {
	case err != nil && ctx.Err() != nil:
		return d.OracleCalls, ctx.Err()
	case err != nil:
		return d.OracleCalls, &OracleFailure{Objective: -1, Err: err}
	case outcome == oracle.Unsatisfiable:
		return d.OracleCalls, ErrFormulaUnsat
	}
	return d.OracleCalls, nil
}
