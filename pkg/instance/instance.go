// Package instance loads optimization problems from YAML files.
package instance

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-air/gini/z"
	"github.com/mitchellh/hashstructure"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/lib/codec"
)

// File is the on-disk layout of an instance.
type File struct {
	Name       string          `mapstructure:"name"`
	Hard       Hard            `mapstructure:"hard"`
	Objectives []ObjectiveSpec `mapstructure:"objectives"`
	Reference  []*big.Int      `mapstructure:"reference"`
}

// Hard names exactly one source for the hard clauses.
type Hard struct {
	Dimacs  string  `mapstructure:"dimacs"`
	Clauses [][]int `mapstructure:"clauses"`
	Formula string  `mapstructure:"formula"`
}

type ObjectiveSpec struct {
	Name      string            `mapstructure:"name"`
	Lits      []int             `mapstructure:"lits"`
	Vars      []string          `mapstructure:"vars"`
	Order     formula.BitOrder  `mapstructure:"order"`
	Direction formula.Direction `mapstructure:"direction"`
}

// Instance is a decoded problem ready to be optimized.
type Instance struct {
	Name       string
	Hard       *formula.HardFormula
	Objectives []formula.Objective
	// Reference is an optional externally produced score vector.
	Reference []*big.Int
	// Names maps formula variable names to variables. It is empty unless
	// the hard clauses came from a boolean formula.
	Names map[string]z.Var
}

// Load reads the instance at path. Relative DIMACS paths are resolved
// against the instance's directory.
func Load(path string) (*Instance, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := Parse(f, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading instance %s", path)
	}
	return inst, nil
}

// Parse decodes an instance document. dir is used to resolve relative
// DIMACS paths.
func Parse(r io.Reader, dir string) (*Instance, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var file File
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			codec.BigIntHookFunc(),
			codec.DirectionHookFunc(),
			codec.BitOrderHookFunc(),
		),
		ErrorUnused: true,
		Result:      &file,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return file.Build(dir)
}

// Build resolves the hard clauses and objectives of f.
func (f *File) Build(dir string) (*Instance, error) {
	inst := &Instance{Name: f.Name, Reference: f.Reference, Names: map[string]z.Var{}}

	sources := 0
	for _, set := range []bool{f.Hard.Dimacs != "", f.Hard.Clauses != nil, f.Hard.Formula != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("hard: exactly one of dimacs, clauses or formula is required")
	}

	var err error
	switch {
	case f.Hard.Dimacs != "":
		path := f.Hard.Dimacs
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		var cnf *os.File
		if cnf, err = os.Open(path); err != nil {
			return nil, err
		}
		defer cnf.Close()
		inst.Hard, err = formula.ReadDimacs(cnf)
	case f.Hard.Clauses != nil:
		inst.Hard, err = formula.FromDimacs(f.Hard.Clauses)
	default:
		inst.Hard, inst.Names, err = formula.ParseBooleanFormula(strings.NewReader(f.Hard.Formula))
	}
	if err != nil {
		return nil, errors.Wrap(err, "hard")
	}

	for i, spec := range f.Objectives {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("objective-%d", i)
		}
		lits, err := spec.lits(inst.Names)
		if err != nil {
			return nil, errors.Wrapf(err, "objective %s", name)
		}
		inst.Objectives = append(inst.Objectives, formula.Normalize(name, lits, spec.Order, spec.Direction))
	}
	return inst, nil
}

func (s ObjectiveSpec) lits(names map[string]z.Var) ([]z.Lit, error) {
	if s.Lits != nil && s.Vars != nil {
		return nil, errors.New("lits and vars are mutually exclusive")
	}
	if s.Vars == nil {
		for _, d := range s.Lits {
			if d == 0 {
				return nil, errors.New("literal 0 is not allowed")
			}
		}
		return formula.Lits(s.Lits...), nil
	}

	lits := make([]z.Lit, len(s.Vars))
	for i, v := range s.Vars {
		name := strings.TrimLeft(v, "!^-")
		negated := (len(v)-len(name))%2 == 1
		x, ok := names[name]
		if !ok {
			return nil, fmt.Errorf("unknown variable %q", name)
		}
		lits[i] = x.Pos()
		if negated {
			lits[i] = x.Neg()
		}
	}
	return lits, nil
}

type fingerprint struct {
	Clauses    [][]int
	Objectives []fingerprintObjective
}

type fingerprintObjective struct {
	Lits      []int
	Direction int
}

// Fingerprint hashes the hard clauses and objectives. Names and the
// reference vector do not contribute.
func (inst *Instance) Fingerprint() (uint64, error) {
	fp := fingerprint{Clauses: inst.Hard.Dimacs()}
	for _, obj := range inst.Objectives {
		ds := make([]int, len(obj.Lits))
		for i, m := range obj.Lits {
			ds[i] = m.Dimacs()
		}
		fp.Objectives = append(fp.Objectives, fingerprintObjective{Lits: ds, Direction: int(obj.Direction)})
	}
	return hashstructure.Hash(fp, nil)
}
