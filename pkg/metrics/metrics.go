package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/operator-framework/boxopt/pkg/boxopt"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

const (
	EngineLabel = "engine"
	Outcome     = "outcome"
	Succeeded   = "succeeded"
	Failed      = "failed"
	FastLabel   = "fast_path"
)

var (
	oracleCallSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "boxopt_oracle_call_duration_seconds",
			Help:       "The duration of a single satisfiability query",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{EngineLabel, Outcome},
	)

	bitDecisionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxopt_bit_decisions_total",
			Help: "Monotonic count of decided objective bits",
		},
		[]string{FastLabel},
	)

	objectiveReleaseCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boxopt_objective_releases_total",
			Help: "Monotonic count of incomplete objectives pushed back to the work queue",
		},
	)

	objectiveCompletedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boxopt_objectives_completed_total",
			Help: "Monotonic count of objectives whose every bit was decided",
		},
	)

	workerExitCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxopt_worker_exits_total",
			Help: "Monotonic count of worker exits, labeled early when objectives were still pending",
		},
		[]string{"early"},
	)

	runSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "boxopt_run_duration_seconds",
			Help:       "The duration of an optimization run",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{Outcome},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		oracleCallSummary,
		bitDecisionCount,
		objectiveReleaseCount,
		objectiveCompletedCount,
		workerExitCount,
		runSummary,
	}
}

var registerOnce sync.Once

// Register adds every optimizer metric to the default registry. Calls
// after the first are no-ops.
func Register() {
	registerOnce.Do(func() {
		RegisterWith(prometheus.DefaultRegisterer)
	})
}

func RegisterWith(r prometheus.Registerer) {
	r.MustRegister(collectors()...)
}

// EmitOracleCall matches oracle.Emitter.
func EmitOracleCall(engine string, outcome oracle.Outcome, d time.Duration) {
	oracleCallSummary.WithLabelValues(engine, outcome.String()).Observe(d.Seconds())
}

var _ oracle.Emitter = EmitOracleCall

func RegisterRunSuccess(duration time.Duration) {
	runSummary.WithLabelValues(Succeeded).Observe(duration.Seconds())
}

func RegisterRunFailure(duration time.Duration) {
	runSummary.WithLabelValues(Failed).Observe(duration.Seconds())
}

// Tracer counts optimizer events.
type Tracer struct{}

var _ boxopt.Tracer = Tracer{}

func (Tracer) Trace(e boxopt.Event) {
	switch e.Kind {
	case boxopt.Decided:
		BitDecisions(e.FastPath).Inc()
	case boxopt.Released:
		objectiveReleaseCount.Inc()
	case boxopt.Completed:
		objectiveCompletedCount.Inc()
	case boxopt.Exited:
		if e.Pending > 0 {
			workerExitCount.WithLabelValues("true").Inc()
		} else {
			workerExitCount.WithLabelValues("false").Inc()
		}
	}
}

// ObjectiveReleases exposes the release counter for tests and dashboards.
func ObjectiveReleases() prometheus.Counter {
	return objectiveReleaseCount
}

func ObjectivesCompleted() prometheus.Counter {
	return objectiveCompletedCount
}

func BitDecisions(fastPath bool) prometheus.Counter {
	if fastPath {
		return bitDecisionCount.WithLabelValues("true")
	}
	return bitDecisionCount.WithLabelValues("false")
}
