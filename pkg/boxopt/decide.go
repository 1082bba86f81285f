package boxopt

import (
	"context"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

// Decider decides objective bits against one oracle session. It caches
// the last model returned by the session and answers a bit without a
// query whenever that model already satisfies it. A Decider is not safe
// for concurrent use.
type Decider struct {
	session oracle.Session
	model   oracle.Model

	// OnDecide, if set, is called after every decided bit.
	OnDecide func(lit z.Lit, decided int, fastPath bool)

	OracleCalls int64
	FastPath    int64
}

func NewDecider(session oracle.Session) *Decider {
	return &Decider{session: session}
}

// Invalidate drops the cached model.
func (d *Decider) Invalidate() {
	d.model = nil
}

// Model returns the cached model, or nil.
func (d *Decider) Model() oracle.Model {
	return d.model
}

// DecideNextBatch extends the partial assignment r of obj by up to
// batchSize bits and returns the extended assignment. r must be
// consistent with the hard formula. A batchSize <= 0 decides every
// remaining bit.
//
// When r is empty and no model is cached, the hard formula is checked
// first; ErrFormulaUnsat is returned if it has no model.
func (d *Decider) DecideNextBatch(ctx context.Context, obj formula.Objective, r []z.Lit, batchSize int) ([]z.Lit, error) {
	n := obj.Len()
	if batchSize <= 0 {
		batchSize = n
	}
	if cap(r) < n {
		grown := make([]z.Lit, len(r), n)
		copy(grown, r)
		r = grown
	}

	if d.model == nil && len(r) == 0 && n > 0 {
		outcome, model, err := d.solve(ctx, nil)
		if err != nil {
			return r, err
		}
		if outcome == oracle.Unsatisfiable {
			return r, ErrFormulaUnsat
		}
		d.model = model
	}

	for i := 0; i < batchSize && len(r) < n; i++ {
		lit := obj.Lits[len(r)]
		candidate := append(r, lit)

		if d.model != nil && d.model.Satisfies(candidate...) {
			d.FastPath++
			r = candidate
			d.decided(lit, len(r), true)
			continue
		}

		outcome, model, err := d.solve(ctx, candidate)
		if err != nil {
			return r, err
		}
		switch outcome {
		case oracle.Satisfiable:
			r = candidate
			d.model = model
		case oracle.Unsatisfiable:
			r = append(r, lit.Not())
		}
		d.decided(r[len(r)-1], len(r), false)
	}
	return r, nil
}

func (d *Decider) solve(ctx context.Context, assumptions []z.Lit) (oracle.Outcome, oracle.Model, error) {
	d.OracleCalls++
	outcome, model, err := d.session.Solve(ctx, assumptions)
	if err != nil {
		return outcome, nil, err
	}
	switch outcome {
	case oracle.Satisfiable, oracle.Unsatisfiable:
		return outcome, model, nil
	}
	return outcome, nil, oracle.ErrIndeterminate
}

func (d *Decider) decided(lit z.Lit, decided int, fastPath bool) {
	if d.OnDecide != nil {
		d.OnDecide(lit, decided, fastPath)
	}
}
