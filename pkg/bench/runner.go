package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/boxopt/pkg/boxopt"
	"github.com/operator-framework/boxopt/pkg/compare"
	"github.com/operator-framework/boxopt/pkg/instance"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

// Case is one point of the benchmark grid.
type Case struct {
	Workers   int
	BatchSize int
}

// Grid returns every combination of workers and batch sizes.
func Grid(workers, batchSizes []int) []Case {
	cases := make([]Case, 0, len(workers)*len(batchSizes))
	for _, k := range workers {
		for _, b := range batchSizes {
			cases = append(cases, Case{Workers: k, BatchSize: b})
		}
	}
	return cases
}

type Record struct {
	Instance    string
	Fingerprint uint64
	Workers     int
	BatchSize   int
	Runs        int

	EnqueueMs Stats
	SolveMs   Stats
	TotalMs   Stats

	OracleCalls Stats
	FastPath    Stats
	Releases    Stats
	EarlyExits  Stats

	// Matched is true when every run reproduced the sequential scores.
	Matched bool
}

type Runner struct {
	Runs   int
	Oracle oracle.Oracle
	// Options are applied to every case before its workers and batch size.
	Options       []boxopt.Option
	PerRunTimeout time.Duration // 0 = no timeout
	Logger        logrus.FieldLogger
}

func (r Runner) logger() logrus.FieldLogger {
	if r.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return l
	}
	return r.Logger
}

// Reference scores inst with the sequential engine.
func (r Runner) Reference(ctx context.Context, inst *instance.Instance) ([]*big.Int, error) {
	res, err := boxopt.Sequential{Oracle: r.Oracle}.Optimize(ctx, inst.Hard, inst.Objectives)
	if err != nil {
		return nil, errors.Wrap(err, "sequential reference")
	}
	return res.Scores, nil
}

// RunGrid computes the sequential reference once and runs every case.
func (r Runner) RunGrid(ctx context.Context, inst *instance.Instance, cases []Case) ([]Record, error) {
	want, err := r.Reference(ctx, inst)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(cases))
	for _, c := range cases {
		rec, err := r.RunCase(ctx, inst, want, c)
		if err != nil {
			return records, errors.Wrapf(err, "workers=%d batch=%d", c.Workers, c.BatchSize)
		}
		r.logger().WithFields(logrus.Fields{
			"workers":    rec.Workers,
			"batch":      rec.BatchSize,
			"total_mean": rec.TotalMs.Mean,
			"calls_mean": rec.OracleCalls.Mean,
			"matched":    rec.Matched,
		}).Info("case done")
		records = append(records, rec)
	}
	return records, nil
}

// RunCase runs one grid point r.Runs times and compares every run against
// want.
func (r Runner) RunCase(ctx context.Context, inst *instance.Instance, want []*big.Int, c Case) (Record, error) {
	fp, err := inst.Fingerprint()
	if err != nil {
		return Record{}, errors.Wrap(err, "fingerprinting instance")
	}

	options := append(append([]boxopt.Option{}, r.Options...),
		boxopt.WithWorkers(c.Workers),
		boxopt.WithBatchSize(c.BatchSize),
	)
	opt, err := boxopt.New(r.Oracle, options...)
	if err != nil {
		return Record{}, err
	}

	var enqueue, solve, total, calls, fast, releases, exits []float64
	matched := true
	for i := 0; i < r.Runs; i++ {
		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		res, err := opt.Optimize(runCtx, inst.Hard, inst.Objectives)
		cancel()
		if err != nil {
			return Record{}, fmt.Errorf("run %d: %w", i, err)
		}

		mismatches, err := compare.Scores(res.Scores, want)
		if err != nil || len(mismatches) > 0 {
			matched = false
		}

		enqueue = append(enqueue, ms(res.Timing.Enqueue))
		solve = append(solve, ms(res.Timing.Solve))
		total = append(total, ms(res.Timing.Total))
		calls = append(calls, float64(res.Stats.OracleCalls))
		fast = append(fast, float64(res.Stats.FastPath))
		releases = append(releases, float64(res.Stats.Releases))
		exits = append(exits, float64(res.Stats.EarlyExits))
	}

	return Record{
		Instance:    inst.Name,
		Fingerprint: fp,
		Workers:     c.Workers,
		BatchSize:   c.BatchSize,
		Runs:        r.Runs,

		EnqueueMs: CalcStats(enqueue),
		SolveMs:   CalcStats(solve),
		TotalMs:   CalcStats(total),

		OracleCalls: CalcStats(calls),
		FastPath:    CalcStats(fast),
		Releases:    CalcStats(releases),
		EarlyExits:  CalcStats(exits),

		Matched: matched,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := filepath.Dir(path); d != "." {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"instance", "fingerprint", "workers", "batch_size", "runs",
		"enqueue_best_ms", "enqueue_mean_ms", "enqueue_std_ms",
		"solve_best_ms", "solve_mean_ms", "solve_std_ms",
		"total_best_ms", "total_mean_ms", "total_std_ms",
		"oracle_calls_mean", "fast_path_mean", "releases_mean", "early_exits_mean",
		"matched",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Instance,
			strconv.FormatUint(r.Fingerprint, 16),
			strconv.Itoa(r.Workers),
			strconv.Itoa(r.BatchSize),
			strconv.Itoa(r.Runs),

			ftoa(r.EnqueueMs.Best), ftoa(r.EnqueueMs.Mean), ftoa(r.EnqueueMs.Std),
			ftoa(r.SolveMs.Best), ftoa(r.SolveMs.Mean), ftoa(r.SolveMs.Std),
			ftoa(r.TotalMs.Best), ftoa(r.TotalMs.Mean), ftoa(r.TotalMs.Std),

			ftoa(r.OracleCalls.Mean),
			ftoa(r.FastPath.Mean),
			ftoa(r.Releases.Mean),
			ftoa(r.EarlyExits.Mean),
			strconv.FormatBool(r.Matched),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
