package formula

import (
	"fmt"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

// HardFormula is an immutable set of clauses shared by every objective of
// a run.
type HardFormula struct {
	clauses [][]z.Lit
	maxVar  z.Var
}

// NewHardFormula copies clauses into a new HardFormula.
func NewHardFormula(clauses [][]z.Lit) *HardFormula {
	b := NewBuilder()
	for _, c := range clauses {
		b.AddClause(c...)
	}
	return b.Formula()
}

// FromDimacs builds a HardFormula from DIMACS integer clauses.
func FromDimacs(clauses [][]int) (*HardFormula, error) {
	b := NewBuilder()
	for i, c := range clauses {
		for _, d := range c {
			if d == 0 {
				return nil, fmt.Errorf("clause %d: literal 0 is not allowed", i)
			}
			b.Add(z.Dimacs2Lit(d))
		}
		b.Add(z.LitNull)
	}
	return b.Formula(), nil
}

// Len returns the number of clauses.
func (f *HardFormula) Len() int {
	return len(f.clauses)
}

// MaxVar returns the largest variable mentioned by any clause.
func (f *HardFormula) MaxVar() z.Var {
	return f.maxVar
}

// Clause returns the i-th clause. The result must not be modified.
func (f *HardFormula) Clause(i int) []z.Lit {
	return f.clauses[i]
}

// AddTo teaches every clause to dst, terminating each with z.LitNull.
func (f *HardFormula) AddTo(dst inter.Adder) {
	for _, c := range f.clauses {
		for _, m := range c {
			dst.Add(m)
		}
		dst.Add(z.LitNull)
	}
}

// Dimacs returns the clauses as DIMACS integers.
func (f *HardFormula) Dimacs() [][]int {
	out := make([][]int, len(f.clauses))
	for i, c := range f.clauses {
		ds := make([]int, len(c))
		for j, m := range c {
			ds[j] = m.Dimacs()
		}
		out[i] = ds
	}
	return out
}

// Builder accumulates clauses through the inter.Adder protocol used by
// gini: literals are added one at a time and z.LitNull ends a clause.
type Builder struct {
	clauses [][]z.Lit
	pending []z.Lit
	maxVar  z.Var
}

var _ inter.Adder = &Builder{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(m z.Lit) {
	if m == z.LitNull {
		c := make([]z.Lit, len(b.pending))
		copy(c, b.pending)
		b.clauses = append(b.clauses, c)
		b.pending = b.pending[:0]
		return
	}
	if v := m.Var(); v > b.maxVar {
		b.maxVar = v
	}
	b.pending = append(b.pending, m)
}

// AddClause adds a complete clause. An empty clause makes the formula
// unsatisfiable.
func (b *Builder) AddClause(ms ...z.Lit) {
	for _, m := range ms {
		b.Add(m)
	}
	b.Add(z.LitNull)
}

// Formula returns the clauses added so far. Literals of an unterminated
// clause are dropped.
func (b *Builder) Formula() *HardFormula {
	clauses := make([][]z.Lit, len(b.clauses))
	copy(clauses, b.clauses)
	return &HardFormula{clauses: clauses, maxVar: b.maxVar}
}
