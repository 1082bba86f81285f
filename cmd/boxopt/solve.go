package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/boxopt/pkg/boxopt"
	"github.com/operator-framework/boxopt/pkg/compare"
	"github.com/operator-framework/boxopt/pkg/config"
	"github.com/operator-framework/boxopt/pkg/instance"
	"github.com/operator-framework/boxopt/pkg/lib/server"
	"github.com/operator-framework/boxopt/pkg/metrics"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

type solveOptions struct {
	instance       string
	config         string
	workers        int
	batchSize      int
	engine         string
	sessionPolicy  string
	exitPolicy     string
	sequential     bool
	reference      string
	output         string
	metricsAddress string
	profiling      bool
	profilingTrace bool
	trace          bool
}

func newSolveCmd(g *globalOptions) *cobra.Command {
	o := solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Score every objective of an instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			ctx, cancel, logger := g.setup(cmd)
			defer cancel()

			return o.run(ctx, logger, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&o.instance, "instance", "", "path to the instance file")
	cmd.Flags().StringVar(&o.config, "config", "", "path to a run configuration file")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "number of workers (overrides the configuration)")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 0, "bits decided per acquisition, 0 or less decides a whole objective (overrides the configuration)")
	cmd.Flags().StringVar(&o.engine, "engine", "", fmt.Sprintf("sat engine, one of %v (overrides the configuration)", oracle.Engines()))
	cmd.Flags().StringVar(&o.sessionPolicy, "session-policy", "", "per-worker or per-objective (overrides the configuration)")
	cmd.Flags().StringVar(&o.exitPolicy, "exit-policy", "", "exit-when-empty or wait-for-completion (overrides the configuration)")
	cmd.Flags().BoolVar(&o.sequential, "sequential", false, "use the sequential reference engine")
	cmd.Flags().StringVar(&o.reference, "reference", "", "path to reference scores, overrides the instance reference")
	cmd.Flags().StringVarP(&o.output, "output", "o", outputText, "output format, one of text, yaml or json")
	cmd.Flags().StringVar(&o.metricsAddress, "metrics-address", "", "serve /metrics and /healthz on this address (overrides the configuration)")
	cmd.Flags().BoolVar(&o.profiling, "profiling", false, "serve the pprof index and CPU profile next to /metrics")
	cmd.Flags().BoolVar(&o.profilingTrace, "profiling-trace", false, "also serve the execution trace handler (requires --profiling)")
	cmd.Flags().BoolVar(&o.trace, "trace", false, "write every scheduler event to stderr")

	cmd.MarkFlagRequired("instance")

	return cmd
}

// loadConfig reads the configuration file, if any, and lets explicitly set
// flags override it.
func (o *solveOptions) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.LoadConfig(o.config); err != nil {
			return nil, errors.Wrap(err, "loading configuration")
		}
	}

	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = o.batchSize
	}
	if flags.Changed("engine") {
		cfg.Engine = o.engine
	}
	if flags.Changed("session-policy") {
		cfg.SessionPolicy = o.sessionPolicy
	}
	if flags.Changed("exit-policy") {
		cfg.ExitPolicy = o.exitPolicy
	}
	if flags.Changed("metrics-address") {
		cfg.MetricsAddress = o.metricsAddress
	}

	switch o.output {
	case outputText, outputYAML, outputJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}
	return cfg, nil
}

func (o *solveOptions) run(ctx context.Context, logger *logrus.Logger, cfg *config.Config, out, errOut io.Writer) error {
	inst, err := instance.Load(o.instance)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"instance":   inst.Name,
		"clauses":    inst.Hard.Len(),
		"vars":       inst.Hard.MaxVar(),
		"objectives": len(inst.Objectives),
	}).Info("instance loaded")

	want := inst.Reference
	if o.reference != "" {
		if want, err = readReference(o.reference); err != nil {
			return err
		}
	}

	engine, err := o.buildEngine(ctx, logger, cfg, errOut)
	if err != nil {
		return err
	}

	res, err := engine.Optimize(ctx, inst.Hard, inst.Objectives)
	if errors.Is(err, boxopt.ErrFormulaUnsat) {
		fmt.Fprintln(out, "unsat")
		return errUnsat
	}
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"enqueue":  res.Timing.Enqueue,
		"solve":    res.Timing.Solve,
		"total":    res.Timing.Total,
		"calls":    res.Stats.OracleCalls,
		"fastpath": res.Stats.FastPath,
		"releases": res.Stats.Releases,
	}).Info("optimization complete")

	rep, err := newReport(inst, cfg, o.sequential, res)
	if err != nil {
		return err
	}

	var mismatched bool
	if want != nil {
		mismatches, err := compare.Scores(res.Scores, want)
		if err != nil {
			return errors.Wrap(err, "comparing against the reference")
		}
		mismatched = len(mismatches) > 0
		rep.Reference = &referenceReport{Matched: !mismatched}
		for _, m := range mismatches {
			rep.Reference.Mismatches = append(rep.Reference.Mismatches, m.String())
		}
		logger.WithField("matched", !mismatched).Info("compared against reference")
	}

	if err := rep.write(out, o.output); err != nil {
		return err
	}
	if mismatched {
		fmt.Fprint(out, compare.Diff(res.Scores, want))
		return errMismatch
	}
	return nil
}

// buildEngine assembles the oracle and optimizer described by cfg. Metrics are
// registered and served only when a metrics address is configured.
func (o *solveOptions) buildEngine(ctx context.Context, logger *logrus.Logger, cfg *config.Config, errOut io.Writer) (boxopt.Engine, error) {
	orc, err := oracle.ForEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	serveMetrics := cfg.MetricsAddress != ""
	var tracers boxopt.Tracers
	if serveMetrics {
		metrics.Register()
		orc = oracle.Instrument(orc, cfg.Engine, metrics.EmitOracleCall)
		tracers = append(tracers, metrics.Tracer{})

		serve, err := server.GetListenAndServeFunc(
			server.WithAddress(cfg.MetricsAddress),
			server.WithLogger(logger),
			server.WithProfiling(o.profiling),
			server.WithExecutionTrace(o.profilingTrace),
		)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := serve(ctx); err != nil {
				logger.WithError(err).Warn("metrics server stopped")
			}
		}()
	}
	if o.trace {
		tracers = append(tracers, &boxopt.LoggingTracer{Writer: errOut})
	}

	var engine boxopt.Engine
	if o.sequential {
		engine = boxopt.Sequential{Oracle: orc}
	} else {
		options, err := cfg.Options()
		if err != nil {
			return nil, err
		}
		options = append(options, boxopt.WithLogger(logger))
		if len(tracers) > 0 {
			options = append(options, boxopt.WithTracer(tracers))
		}
		if engine, err = boxopt.New(orc, options...); err != nil {
			return nil, err
		}
	}

	if serveMetrics {
		engine = boxopt.NewInstrumentedEngine(engine, metrics.RegisterRunSuccess, metrics.RegisterRunFailure)
	}
	return engine, nil
}

func readReference(path string) ([]*big.Int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading reference scores")
	}
	defer f.Close()
	return compare.ParseScores(f)
}

type report struct {
	Instance    string            `json:"instance"`
	Fingerprint string            `json:"fingerprint"`
	Engine      string            `json:"engine"`
	Sequential  bool              `json:"sequential,omitempty"`
	Workers     int               `json:"workers,omitempty"`
	BatchSize   int               `json:"batchSize,omitempty"`
	Objectives  []objectiveReport `json:"objectives"`
	Timing      timingReport      `json:"timing"`
	Stats       statsReport       `json:"stats"`
	Reference   *referenceReport  `json:"reference,omitempty"`
}

type objectiveReport struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
	// Score is decimal so that arbitrarily wide objectives survive JSON.
	Score string `json:"score"`
}

type timingReport struct {
	Enqueue string `json:"enqueue"`
	Solve   string `json:"solve"`
	Total   string `json:"total"`
}

type statsReport struct {
	OracleCalls int64 `json:"oracleCalls"`
	FastPath    int64 `json:"fastPath"`
	Releases    int64 `json:"releases"`
	EarlyExits  int64 `json:"earlyExits"`
}

type referenceReport struct {
	Matched    bool     `json:"matched"`
	Mismatches []string `json:"mismatches,omitempty"`
}

func newReport(inst *instance.Instance, cfg *config.Config, sequential bool, res *boxopt.Result) (*report, error) {
	fp, err := inst.Fingerprint()
	if err != nil {
		return nil, errors.Wrap(err, "fingerprinting instance")
	}
	rep := &report{
		Instance:    inst.Name,
		Fingerprint: strconv.FormatUint(fp, 16),
		Engine:      cfg.Engine,
		Sequential:  sequential,
		Timing: timingReport{
			Enqueue: res.Timing.Enqueue.String(),
			Solve:   res.Timing.Solve.String(),
			Total:   res.Timing.Total.String(),
		},
		Stats: statsReport(res.Stats),
	}
	if !sequential {
		rep.Workers = cfg.Workers
		rep.BatchSize = cfg.BatchSize
	}
	for i, obj := range inst.Objectives {
		rep.Objectives = append(rep.Objectives, objectiveReport{
			Name:      obj.Name,
			Direction: obj.Direction.String(),
			Width:     obj.Len(),
			Score:     res.Scores[i].String(),
		})
	}
	return rep, nil
}

func (r *report) write(w io.Writer, format string) error {
	switch format {
	case outputYAML:
		b, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case outputJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	for _, obj := range r.Objectives {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", obj.Name, obj.Direction, obj.Score); err != nil {
			return err
		}
	}
	if r.Reference != nil {
		status := "match"
		if !r.Reference.Matched {
			status = "mismatch"
		}
		if _, err := fmt.Fprintf(w, "reference\t%s\n", status); err != nil {
			return err
		}
		for _, m := range r.Reference.Mismatches {
			if _, err := fmt.Fprintln(w, m); err != nil {
				return err
			}
		}
	}
	return nil
}
