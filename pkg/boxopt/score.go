package boxopt

import (
	"fmt"
	"math/big"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// Score converts a completed assignment into the objective's value. Bit i
// (weight 2^(n-1-i)) is set when r[i] equals the objective literal at i.
// Minimized objectives are reported as the n-bit complement, so the
// result is always in [0, 2^n-1].
func Score(obj formula.Objective, r []z.Lit) (*big.Int, error) {
	n := obj.Len()
	if len(r) != n {
		return nil, fmt.Errorf("objective %q: assignment has %d of %d bits", obj.Name, len(r), n)
	}
	raw := new(big.Int)
	for i, m := range r {
		switch m {
		case obj.Lits[i]:
			raw.SetBit(raw, n-1-i, 1)
		case obj.Lits[i].Not():
		default:
			return nil, fmt.Errorf("objective %q: bit %d decided on literal %d, expected %d", obj.Name, i, m.Dimacs(), obj.Lits[i].Dimacs())
		}
	}
	if obj.Direction == formula.Minimize {
		return complement(raw, n), nil
	}
	return raw, nil
}

// MaxScore returns 2^n-1.
func MaxScore(n int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return max.Sub(max, big.NewInt(1))
}

func complement(raw *big.Int, n int) *big.Int {
	max := MaxScore(n)
	return max.Sub(max, raw)
}
