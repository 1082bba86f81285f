package formula

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/gini/z"
)

// Direction says whether an objective is maximized or minimized.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	switch d {
	case Maximize:
		return "maximize"
	case Minimize:
		return "minimize"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Maximize {
		return Minimize
	}
	return Maximize
}

// ParseDirection accepts the spellings used by instance files, including
// the numeric flags 1 for maximize and 0 for minimize.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize", "maximise", "1":
		return Maximize, nil
	case "min", "minimize", "minimise", "0":
		return Minimize, nil
	}
	return Maximize, fmt.Errorf("unknown objective direction %q", s)
}

// BitOrder describes how a raw objective literal list is ordered.
type BitOrder int

const (
	// MSBFirst lists the most significant bit first.
	MSBFirst BitOrder = iota
	// LSBFirst lists the least significant bit first.
	LSBFirst
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "msb-first"
	case LSBFirst:
		return "lsb-first"
	default:
		return fmt.Sprintf("BitOrder(%d)", int(o))
	}
}

func ParseBitOrder(s string) (BitOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "msb", "msb-first", "msb_first":
		return MSBFirst, nil
	case "lsb", "lsb-first", "lsb_first":
		return LSBFirst, nil
	}
	return MSBFirst, fmt.Errorf("unknown bit order %q", s)
}

// Objective is a pseudo-Boolean objective over a significance-ordered
// literal sequence. Lits[0] carries weight 2^(n-1) and Lits[n-1] weight 1.
// A bit is set when the literal at its position is true.
type Objective struct {
	Name      string
	Lits      []z.Lit
	Direction Direction
}

// Len returns the bit width of the objective.
func (o Objective) Len() int {
	return len(o.Lits)
}

func (o Objective) String() string {
	s := make([]string, len(o.Lits))
	for i, m := range o.Lits {
		s[i] = fmt.Sprint(m.Dimacs())
	}
	return fmt.Sprintf("%s %s [%s]", o.Direction, o.Name, strings.Join(s, " "))
}

// Validate rejects objectives containing the null literal.
func (o Objective) Validate() error {
	for i, m := range o.Lits {
		if m == z.LitNull {
			return fmt.Errorf("objective %q: null literal at position %d", o.Name, i)
		}
	}
	return nil
}

// Normalize reorders raw so that the most significant literal comes
// first. Polarities are never changed and raw is not modified.
func Normalize(name string, raw []z.Lit, order BitOrder, d Direction) Objective {
	lits := make([]z.Lit, len(raw))
	copy(lits, raw)
	if order == LSBFirst {
		for i, j := 0, len(lits)-1; i < j; i, j = i+1, j-1 {
			lits[i], lits[j] = lits[j], lits[i]
		}
	}
	return Objective{Name: name, Lits: lits, Direction: d}
}

// NormalizeWeighted orders lits by their significance exponents, highest
// first. exponents must be a permutation of 0..len(lits)-1.
func NormalizeWeighted(name string, lits []z.Lit, exponents []int, d Direction) (Objective, error) {
	if len(lits) != len(exponents) {
		return Objective{}, fmt.Errorf("objective %q: %d literals but %d exponents", name, len(lits), len(exponents))
	}
	seen := make([]bool, len(lits))
	for _, e := range exponents {
		if e < 0 || e >= len(lits) || seen[e] {
			return Objective{}, fmt.Errorf("objective %q: exponents must be a permutation of 0..%d", name, len(lits)-1)
		}
		seen[e] = true
	}
	idx := make([]int, len(lits))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return exponents[idx[a]] > exponents[idx[b]]
	})
	ordered := make([]z.Lit, len(lits))
	for i, j := range idx {
		ordered[i] = lits[j]
	}
	return Objective{Name: name, Lits: ordered, Direction: d}, nil
}

// Lits converts DIMACS integers to literals.
func Lits(ds ...int) []z.Lit {
	ms := make([]z.Lit, len(ds))
	for i, d := range ds {
		ms[i] = z.Dimacs2Lit(d)
	}
	return ms
}
