// Package compare checks optimizer scores against an externally produced
// reference vector.
package compare

import (
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// Mismatch is one objective whose score differs from the reference.
type Mismatch struct {
	Index int
	Got   *big.Int
	Want  *big.Int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("objective %d: got %s, want %s", m.Index, m.Got, m.Want)
}

// Scores compares got against want position by position.
func Scores(got, want []*big.Int) ([]Mismatch, error) {
	if len(got) != len(want) {
		return nil, fmt.Errorf("score vectors differ in length: got %d, want %d", len(got), len(want))
	}
	var mismatches []Mismatch
	for i := range got {
		if got[i] == nil || want[i] == nil {
			return nil, fmt.Errorf("objective %d: missing score", i)
		}
		if got[i].Cmp(want[i]) != 0 {
			mismatches = append(mismatches, Mismatch{Index: i, Got: got[i], Want: want[i]})
		}
	}
	return mismatches, nil
}

// Diff renders a human readable difference, or "" when the vectors are
// equal.
func Diff(got, want []*big.Int) string {
	return cmp.Diff(decimal(want), decimal(got))
}

func decimal(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = v.String()
	}
	return out
}

var z3Entry = regexp.MustCompile(`\(\s*(?:\|[^|]*\||[^\s()]+|\([^()]*\))\s+(#x[0-9a-fA-F]+|#b[01]+|-?[0-9]+)\s*\)`)

// ErrReferenceUnsat is returned when the reference solver output starts
// with an unsat status line.
var ErrReferenceUnsat = errors.New("reference solver reported unsat")

// ParseScores reads a reference score vector. Two layouts are accepted:
// integers separated by whitespace or commas, optionally in brackets,
// and an SMT-LIB "(objectives (name value) ...)" block whose values may
// be decimal, #x hexadecimal or #b binary. Text around the block, such
// as the leading "sat" line printed by z3, is ignored.
func ParseScores(r io.Reader) ([]*big.Int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if status, _, _ := strings.Cut(text, "\n"); strings.TrimSpace(status) == "unsat" {
		return nil, ErrReferenceUnsat
	}
	if i := strings.Index(text, "(objectives"); i >= 0 {
		return parseObjectives(objectivesBlock(text[i:]))
	}

	fields := strings.FieldsFunc(text, func(c rune) bool {
		switch c {
		case '[', ']', ',', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})
	scores := make([]*big.Int, 0, len(fields))
	for _, f := range fields {
		v, ok := new(big.Int).SetString(f, 10)
		if !ok {
			return nil, fmt.Errorf("invalid score %q", f)
		}
		scores = append(scores, v)
	}
	return scores, nil
}

// objectivesBlock cuts text after the parenthesis closing its first
// expression. Quoted |symbols| may contain parentheses.
func objectivesBlock(text string) string {
	depth := 0
	quoted := false
	for i, c := range text {
		switch {
		case c == '|':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}

func parseObjectives(text string) ([]*big.Int, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(text, "(objectives"), ")")
	matches := z3Entry.FindAllStringSubmatch(body, -1)
	scores := make([]*big.Int, 0, len(matches))
	for _, m := range matches {
		v, err := parseLiteral(m[1])
		if err != nil {
			return nil, err
		}
		scores = append(scores, v)
	}
	if len(scores) == 0 && strings.TrimSpace(body) != "" {
		return nil, errors.Errorf("no objective values found in %q", text)
	}
	return scores, nil
}

func parseLiteral(s string) (*big.Int, error) {
	var (
		v  *big.Int
		ok bool
	)
	switch {
	case strings.HasPrefix(s, "#x"):
		v, ok = new(big.Int).SetString(s[2:], 16)
	case strings.HasPrefix(s, "#b"):
		v, ok = new(big.Int).SetString(s[2:], 2)
	default:
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, errors.Errorf("invalid objective value %q", s)
	}
	return v, nil
}
