package bench

import (
	"fmt"
	"math/rand"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/instance"
)

// RandomSpec describes a generated benchmark instance.
type RandomSpec struct {
	Vars       int
	Clauses    int
	Objectives int
	Width      int
	Seed       int64
}

// RandomInstance builds a random 3-CNF hard formula with objectives over
// distinct random variables of random polarity. Odd objectives are
// minimized. The same spec always yields the same instance.
func RandomInstance(spec RandomSpec) (*instance.Instance, error) {
	if spec.Vars < 3 {
		return nil, fmt.Errorf("random instance needs at least 3 variables, got %d", spec.Vars)
	}
	if spec.Width < 0 || spec.Width > spec.Vars {
		return nil, fmt.Errorf("objective width %d must be between 0 and %d", spec.Width, spec.Vars)
	}
	if spec.Clauses < 0 || spec.Objectives < 0 {
		return nil, fmt.Errorf("clause and objective counts must not be negative")
	}

	f := formula.RandomFormula(spec.Vars, spec.Clauses, spec.Seed)
	rng := rand.New(rand.NewSource(spec.Seed))
	objectives := make([]formula.Objective, spec.Objectives)
	for i := range objectives {
		lits := make([]z.Lit, spec.Width)
		for j, v := range rng.Perm(spec.Vars)[:spec.Width] {
			m := z.Var(v + 1).Pos()
			if rng.Intn(2) == 1 {
				m = m.Not()
			}
			lits[j] = m
		}
		d := formula.Maximize
		if i%2 == 1 {
			d = formula.Minimize
		}
		objectives[i] = formula.Objective{Name: fmt.Sprintf("objective-%d", i), Lits: lits, Direction: d}
	}

	return &instance.Instance{
		Name:       fmt.Sprintf("random-v%d-c%d-o%dx%d-s%d", spec.Vars, spec.Clauses, spec.Objectives, spec.Width, spec.Seed),
		Hard:       f,
		Objectives: objectives,
	}, nil
}
