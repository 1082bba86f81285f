package boxopt

import (
	"context"
	"math/big"
	"time"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// Result holds the outcome of a run. Scores and Assignments are indexed
// like the input objectives.
type Result struct {
	Scores      []*big.Int
	Assignments [][]z.Lit
	Timing      Timing
	Stats       Stats
}

// Timing is the wall-clock telemetry of a run.
type Timing struct {
	// Enqueue covers filling the work queue.
	Enqueue time.Duration
	// Solve covers the worker pool from start until every worker exits.
	Solve time.Duration
	// Total covers the whole call.
	Total time.Duration
}

type Stats struct {
	OracleCalls int64
	FastPath    int64
	// Releases counts incomplete objectives pushed back to the queue.
	Releases int64
	// EarlyExits counts workers that left while objectives were pending.
	EarlyExits int64
}

// Engine computes a score for every objective.
type Engine interface {
	Optimize(ctx context.Context, f *formula.HardFormula, objectives []formula.Objective) (*Result, error)
}
