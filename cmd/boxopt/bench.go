package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/boxopt/pkg/bench"
	"github.com/operator-framework/boxopt/pkg/boxopt"
	"github.com/operator-framework/boxopt/pkg/instance"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

type benchOptions struct {
	instance      string
	random        bench.RandomSpec
	workers       []int
	batchSizes    []int
	runs          int
	engine        string
	sessionPolicy string
	exitPolicy    string
	csv           string
}

func newBenchCmd(g *globalOptions) *cobra.Command {
	o := benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time a grid of worker counts and batch sizes against the sequential engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, logger := g.setup(cmd)
			defer cancel()

			return o.run(ctx, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.instance, "instance", "", "path to the instance file; a random instance is generated when empty")
	cmd.Flags().IntVar(&o.random.Vars, "random-vars", 60, "variables of the random instance")
	cmd.Flags().IntVar(&o.random.Clauses, "random-clauses", 150, "3-CNF clauses of the random instance")
	cmd.Flags().IntVar(&o.random.Objectives, "random-objectives", 8, "objectives of the random instance")
	cmd.Flags().IntVar(&o.random.Width, "random-width", 16, "bit width of every random objective")
	cmd.Flags().Int64Var(&o.random.Seed, "seed", 1, "seed of the random instance")
	cmd.Flags().IntSliceVar(&o.workers, "workers", []int{1, 2, 4, 8}, "worker counts to benchmark")
	cmd.Flags().IntSliceVar(&o.batchSizes, "batch-sizes", []int{1, 2, 4, 0}, "batch sizes to benchmark, 0 decides a whole objective")
	cmd.Flags().IntVar(&o.runs, "runs", 5, "repetitions per grid point")
	cmd.Flags().StringVar(&o.engine, "engine", oracle.EngineGini, fmt.Sprintf("sat engine, one of %v", oracle.Engines()))
	cmd.Flags().StringVar(&o.sessionPolicy, "session-policy", boxopt.SessionPerWorker.String(), "per-worker or per-objective")
	cmd.Flags().StringVar(&o.exitPolicy, "exit-policy", boxopt.ExitWhenEmpty.String(), "exit-when-empty or wait-for-completion")
	cmd.Flags().StringVar(&o.csv, "csv", "", "write the records to this CSV file")

	return cmd
}

func (o *benchOptions) run(ctx context.Context, logger *logrus.Logger, out io.Writer) error {
	if o.runs < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", o.runs)
	}

	var inst *instance.Instance
	var err error
	if o.instance != "" {
		inst, err = instance.Load(o.instance)
	} else {
		inst, err = bench.RandomInstance(o.random)
	}
	if err != nil {
		return err
	}

	orc, err := oracle.ForEngine(o.engine)
	if err != nil {
		return err
	}
	session, err := boxopt.ParseSessionPolicy(o.sessionPolicy)
	if err != nil {
		return err
	}
	exit, err := boxopt.ParseExitPolicy(o.exitPolicy)
	if err != nil {
		return err
	}

	r := bench.Runner{
		Runs:   o.runs,
		Oracle: orc,
		Options: []boxopt.Option{
			boxopt.WithSessionPolicy(session),
			boxopt.WithExitPolicy(exit),
			boxopt.WithLogger(logger),
		},
		Logger: logger,
	}
	records, err := r.RunGrid(ctx, inst, bench.Grid(o.workers, o.batchSizes))
	if err != nil {
		return err
	}

	if err := writeTable(out, records); err != nil {
		return err
	}
	if o.csv != "" {
		if err := bench.WriteCSV(o.csv, records); err != nil {
			return errors.Wrap(err, "writing csv")
		}
		logger.WithField("path", o.csv).Info("records written")
	}
	for _, rec := range records {
		if !rec.Matched {
			return errMismatch
		}
	}
	return nil
}

func writeTable(out io.Writer, records []bench.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tBATCH\tTOTAL MEAN (ms)\tTOTAL STD (ms)\tSOLVE BEST (ms)\tCALLS\tFAST PATH\tMATCHED")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.3f\t%.3f\t%.0f\t%.0f\t%t\n",
			r.Workers, r.BatchSize, r.TotalMs.Mean, r.TotalMs.Std, r.SolveMs.Best, r.OracleCalls.Mean, r.FastPath.Mean, r.Matched)
	}
	return w.Flush()
}
