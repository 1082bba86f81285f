package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/boxopt/pkg/oracle"
)

// o1 = 10b because the two objective variables exclude each other; o2
// reaches raw 11b, reported as 0 when minimized.
const satInstance = `
name: small
hard:
  clauses: [[1, 2], [-1, -2], [3]]
objectives:
  - name: o1
    lits: [1, 2]
  - name: o2
    lits: [2, 3]
    direction: minimize
reference: [2, 0]
`

const unsatInstance = `
name: contradiction
hard:
  clauses: [[1], [-1]]
objectives:
  - name: o1
    lits: [1]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolve(t *testing.T) {
	sat := writeFile(t, "sat.yaml", satInstance)
	unsat := writeFile(t, "unsat.yaml", unsatInstance)
	wrongReference := writeFile(t, "reference.txt", "[3, 0]\n")

	type tc struct {
		Name     string
		Args     []string
		Contains []string
		Error    error
		ExitCode int
	}

	for _, tt := range []tc{
		{
			Name:     "text output with matching reference",
			Args:     []string{"solve", "--instance", sat},
			Contains: []string{"o1\tmaximize\t2\n", "o2\tminimize\t0\n", "reference\tmatch\n"},
		},
		{
			Name:     "sequential engine",
			Args:     []string{"solve", "--instance", sat, "--sequential", "--engine", oracle.EngineGophersat},
			Contains: []string{"o1\tmaximize\t2\n", "o2\tminimize\t0\n"},
		},
		{
			Name:     "per objective sessions waiting for completion",
			Args:     []string{"solve", "--instance", sat, "--workers", "4", "--session-policy", "per-objective", "--exit-policy", "wait-for-completion"},
			Contains: []string{"o1\tmaximize\t2\n", "o2\tminimize\t0\n"},
		},
		{
			Name:     "unsatisfiable formula",
			Args:     []string{"solve", "--instance", unsat},
			Contains: []string{"unsat\n"},
			Error:    errUnsat,
			ExitCode: 2,
		},
		{
			Name:     "reference file overrides the instance",
			Args:     []string{"solve", "--instance", sat, "--reference", wrongReference},
			Contains: []string{"reference\tmismatch\n", "objective 0: got 2, want 3"},
			Error:    errMismatch,
			ExitCode: 3,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out, err := execute(tt.Args...)
			if tt.Error != nil {
				require.ErrorIs(t, err, tt.Error)
				assert.Equal(t, tt.ExitCode, exitCode(err))
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.Contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestSolveInvalidFlags(t *testing.T) {
	sat := writeFile(t, "sat.yaml", satInstance)

	for _, args := range [][]string{
		{"solve"},
		{"solve", "--instance", sat, "--engine", "nope"},
		{"solve", "--instance", sat, "--workers", "0"},
		{"solve", "--instance", sat, "--session-policy", "sometimes"},
		{"solve", "--instance", sat, "--output", "xml"},
		{"solve", "--instance", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		_, err := execute(args...)
		require.Error(t, err, "%v", args)
		assert.Equal(t, 1, exitCode(err))
	}
}

func TestSolveFlagsOverrideConfig(t *testing.T) {
	sat := writeFile(t, "sat.yaml", satInstance)
	cfg := writeFile(t, "config.yaml", `
optimizer:
  workers: 2
  batchSize: 3
  engine: gophersat
`)

	out, err := execute("solve", "--instance", sat, "--config", cfg, "--workers", "5", "--output", "yaml")
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "small", rep.Instance)
	assert.Equal(t, 5, rep.Workers, "the flag wins over the file")
	assert.Equal(t, 3, rep.BatchSize, "unset flags keep the file value")
	assert.Equal(t, oracle.EngineGophersat, rep.Engine)
	require.Len(t, rep.Objectives, 2)
	assert.Equal(t, "2", rep.Objectives[0].Score)
	assert.Equal(t, 2, rep.Objectives[0].Width)
	assert.Equal(t, "0", rep.Objectives[1].Score)
	require.NotNil(t, rep.Reference)
	assert.True(t, rep.Reference.Matched)
	assert.NotEmpty(t, rep.Fingerprint)
}

func TestSolveJSON(t *testing.T) {
	sat := writeFile(t, "sat.yaml", satInstance)

	out, err := execute("solve", "--instance", sat, "--output", "json", "--workers", "2", "--batch-size", "1")
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Workers)
	assert.Equal(t, 1, rep.BatchSize)
	assert.True(t, rep.Stats.OracleCalls > 0)
	assert.NotEmpty(t, rep.Timing.Total)
}

func TestBench(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "bench.csv")

	out, err := execute("bench",
		"--random-vars", "16", "--random-clauses", "30",
		"--random-objectives", "3", "--random-width", "5",
		"--workers", "1,2", "--batch-sizes", "1,0",
		"--runs", "2", "--csv", csvPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "MATCHED")

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	assert.Len(t, lines, 5, "header plus one row per grid point")
}

func TestBenchRejectsZeroRuns(t *testing.T) {
	_, err := execute("bench", "--runs", "0")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "boxopt version: devel")
}
