package formula

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/crillab/gophersat/bf"
	"github.com/go-air/gini/dimacs"
	"github.com/go-air/gini/gen"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// dimacsVis adapts a Builder to the gini DIMACS reader.
type dimacsVis struct {
	*Builder
}

func (v dimacsVis) Init(vars, clauses int) {
	if len(v.clauses) == 0 && clauses > 0 && clauses <= 1<<16 {
		v.clauses = make([][]z.Lit, 0, clauses)
	}
}

func (v dimacsVis) Eof() {}

// ReadDimacs reads a DIMACS CNF stream.
func ReadDimacs(r io.Reader) (*HardFormula, error) {
	b := NewBuilder()
	if err := dimacs.ReadCnf(r, dimacsVis{b}); err != nil {
		return nil, errors.Wrap(err, "reading dimacs cnf")
	}
	return b.Formula(), nil
}

// ParseBooleanFormula parses a propositional formula such as
// "a & (b | ^c) -> d" and returns its CNF together with the variable
// assigned to every name appearing in the input. Auxiliary variables
// introduced by the CNF translation are not named.
func ParseBooleanFormula(r io.Reader) (*HardFormula, map[string]z.Var, error) {
	f, err := bf.Parse(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing boolean formula")
	}
	var cnf bytes.Buffer
	if err := bf.Dimacs(f, &cnf); err != nil {
		return nil, nil, err
	}

	// Names are carried in "c name=index" comment lines.
	names := make(map[string]z.Var)
	var body bytes.Buffer
	scanner := bufio.NewScanner(&cnf)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "c ") {
			body.WriteString(line)
			body.WriteByte('\n')
			continue
		}
		eq := strings.LastIndexByte(line, '=')
		if eq < 0 {
			continue
		}
		idx, err := strconv.Atoi(line[eq+1:])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "malformed variable comment %q", line)
		}
		names[line[2:eq]] = z.Var(idx)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	hard, err := ReadDimacs(&body)
	if err != nil {
		return nil, nil, err
	}
	return hard, names, nil
}

var randomMu sync.Mutex

// RandomFormula generates a random 3-CNF over vars variables with the
// given number of clauses. The same seed always yields the same formula.
func RandomFormula(vars, clauses int, seed int64) *HardFormula {
	randomMu.Lock()
	defer randomMu.Unlock()
	gen.Seed(seed)
	b := NewBuilder()
	gen.Rand3Cnf(b, vars, clauses)
	return b.Formula()
}
