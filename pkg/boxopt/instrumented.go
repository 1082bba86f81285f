package boxopt

import (
	"context"
	"time"

	"github.com/operator-framework/boxopt/pkg/formula"
)

// InstrumentedEngine reports the duration of every run to one of two
// emitters depending on whether the run failed.
type InstrumentedEngine struct {
	engine                Engine
	successMetricsEmitter func(time.Duration)
	failureMetricsEmitter func(time.Duration)
}

var _ Engine = &InstrumentedEngine{}

func NewInstrumentedEngine(engine Engine, successMetricsEmitter, failureMetricsEmitter func(time.Duration)) *InstrumentedEngine {
	return &InstrumentedEngine{
		engine:                engine,
		successMetricsEmitter: successMetricsEmitter,
		failureMetricsEmitter: failureMetricsEmitter,
	}
}

func (ie *InstrumentedEngine) Optimize(ctx context.Context, f *formula.HardFormula, objectives []formula.Objective) (*Result, error) {
	start := time.Now()
	result, err := ie.engine.Optimize(ctx, f, objectives)
	if err != nil {
		ie.failureMetricsEmitter(time.Since(start))
	} else {
		ie.successMetricsEmitter(time.Since(start))
	}
	return result, err
}
