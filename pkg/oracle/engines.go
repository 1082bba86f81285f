package oracle

import (
	"context"
	"sort"
	"time"

	"github.com/go-air/gini/z"

	"github.com/operator-framework/boxopt/pkg/formula"
)

const (
	EngineGini      = "gini"
	EngineGophersat = "gophersat"
)

var engines = map[string]Oracle{
	EngineGini:      Gini{},
	EngineGophersat: Gophersat{},
}

// ForEngine returns the oracle registered under name.
func ForEngine(name string) (Oracle, error) {
	if o, ok := engines[name]; ok {
		return o, nil
	}
	return nil, UnknownEngine(name)
}

// Engines lists the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emitter receives the outcome and duration of every query.
type Emitter func(engine string, outcome Outcome, d time.Duration)

// Instrument wraps o so that every session query is reported to emit.
func Instrument(o Oracle, engine string, emit Emitter) Oracle {
	return &instrumented{Oracle: o, engine: engine, emit: emit}
}

type instrumented struct {
	Oracle
	engine string
	emit   Emitter
}

func (o *instrumented) Open(f *formula.HardFormula) (Session, error) {
	s, err := o.Oracle.Open(f)
	if err != nil {
		return nil, err
	}
	return &instrumentedSession{Session: s, engine: o.engine, emit: o.emit}, nil
}

type instrumentedSession struct {
	Session
	engine string
	emit   Emitter
}

func (s *instrumentedSession) Solve(ctx context.Context, assumptions []z.Lit) (Outcome, Model, error) {
	start := time.Now()
	outcome, model, err := s.Session.Solve(ctx, assumptions)
	s.emit(s.engine, outcome, time.Since(start))
	return outcome, model, err
}
