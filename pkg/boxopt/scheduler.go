package boxopt

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

// Optimizer scores every objective of a hard formula with a pool of
// workers sharing one work queue. Each worker repeatedly pops an
// objective, decides up to batchSize of its bits and pushes it back
// until it is complete.
type Optimizer struct {
	oracle        oracle.Oracle
	workers       int
	batchSize     int
	sessionPolicy SessionPolicy
	exitPolicy    ExitPolicy
	logger        logrus.FieldLogger
	tracer        Tracer
}

var _ Engine = &Optimizer{}

func New(o oracle.Oracle, options ...Option) (*Optimizer, error) {
	if o == nil {
		return nil, errors.New("an oracle is required")
	}
	opt := Optimizer{oracle: o}
	for _, option := range append(options, defaults...) {
		if err := option(&opt); err != nil {
			return nil, err
		}
	}
	return &opt, nil
}

// Optimize returns the score of every objective. ErrFormulaUnsat is
// returned, without scores, when the hard formula is unsatisfiable.
// Cancellation of ctx is observed between batches.
func (o *Optimizer) Optimize(ctx context.Context, f *formula.HardFormula, objectives []formula.Objective) (*Result, error) {
	start := time.Now()
	for _, obj := range objectives {
		if err := obj.Validate(); err != nil {
			return nil, err
		}
	}

	r := &run{
		opt:        o,
		f:          f,
		objectives: objectives,
		table:      make([][]z.Lit, len(objectives)),
		queue:      newWorkQueue(len(objectives)),
		done:       make(chan struct{}),
	}
	result := &Result{}
	if len(objectives) == 0 {
		result.Timing.Total = time.Since(start)
		return result, nil
	}

	for id, obj := range objectives {
		if obj.Len() > 0 {
			r.queue.push(id)
			r.remaining++
		}
	}
	result.Timing.Enqueue = time.Since(start)

	if r.remaining == 0 {
		// Nothing to decide, but the formula still has to be satisfiable.
		if err := r.check(ctx); err != nil {
			return nil, err
		}
	} else {
		solveStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < o.workers; w++ {
			w := w
			g.Go(func() error {
				return r.work(gctx, w)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		result.Timing.Solve = time.Since(solveStart)
	}

	result.Scores = make([]*big.Int, len(objectives))
	result.Assignments = r.table
	for id, obj := range objectives {
		score, err := Score(obj, r.table[id])
		if err != nil {
			return nil, err
		}
		result.Scores[id] = score
	}
	result.Stats = Stats{
		OracleCalls: atomic.LoadInt64(&r.stats.OracleCalls),
		FastPath:    atomic.LoadInt64(&r.stats.FastPath),
		Releases:    atomic.LoadInt64(&r.stats.Releases),
		EarlyExits:  atomic.LoadInt64(&r.stats.EarlyExits),
	}
	result.Timing.Total = time.Since(start)
	o.logger.WithFields(logrus.Fields{
		"objectives": len(objectives),
		"workers":    o.workers,
		"batch":      o.batchSize,
		"calls":      result.Stats.OracleCalls,
		"fastpath":   result.Stats.FastPath,
	}).Debug("run complete")
	return result, nil
}

// run is the state shared by the workers of one Optimize call. Only the
// queue and table are shared; table[id] is written exclusively by the
// worker holding id.
type run struct {
	opt        *Optimizer
	f          *formula.HardFormula
	objectives []formula.Objective
	table      [][]z.Lit
	queue      workQueue

	remaining int64
	done      chan struct{}
	doneOnce  sync.Once

	stats Stats
}

func (r *run) check(ctx context.Context) error {
	calls, err := checkSatisfiable(ctx, r.opt.oracle, r.f)
	atomic.AddInt64(&r.stats.OracleCalls, calls)
	return err
}

func (r *run) complete() {
	if atomic.AddInt64(&r.remaining, -1) == 0 {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

func (r *run) pop(ctx context.Context) (int, bool) {
	if r.opt.exitPolicy == WaitForCompletion {
		return r.queue.pop(ctx, r.done)
	}
	return r.queue.tryPop()
}

type worker struct {
	id      int
	run     *run
	session oracle.Session
	decider *Decider
	// held is the objective currently owned, or -1.
	held int
	// last is the objective the cached model belongs to, or -1.
	last   int
	logger logrus.FieldLogger
}

func (r *run) work(ctx context.Context, id int) (err error) {
	w := &worker{id: id, run: r, held: -1, last: -1}
	w.logger = r.opt.logger.WithField("worker", id)
	defer func() {
		if p := recover(); p != nil {
			w.logger.WithField("objective", w.held).Errorf("worker panicked: %v", p)
			err = &WorkerFailure{Worker: id, Objective: w.held, Panic: p}
		}
	}()
	defer func() {
		if cerr := w.release(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if r.opt.sessionPolicy == SessionPerWorker {
		if err := w.open(); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj, ok := r.pop(ctx)
		if !ok {
			break
		}
		w.held = obj
		if err := w.step(ctx, obj); err != nil {
			return err
		}
		w.held = -1
	}

	pending := int(atomic.LoadInt64(&r.remaining))
	if pending > 0 && ctx.Err() == nil {
		atomic.AddInt64(&r.stats.EarlyExits, 1)
	}
	w.logger.WithField("pending", pending).Debug("worker exiting")
	r.opt.tracer.Trace(Event{Kind: Exited, Worker: id, Objective: -1, Pending: pending})
	return ctx.Err()
}

// step advances one held objective by a batch and hands it back.
func (w *worker) step(ctx context.Context, id int) error {
	r := w.run
	if r.opt.sessionPolicy == SessionPerObjective {
		if err := w.open(); err != nil {
			return err
		}
	} else if w.last != id {
		w.decider.Invalidate()
	}
	w.last = id

	obj := r.objectives[id]
	w.decider.OnDecide = func(lit z.Lit, decided int, fastPath bool) {
		r.opt.tracer.Trace(Event{Kind: Decided, Worker: w.id, Objective: id, Decided: decided, Lit: lit, FastPath: fastPath})
	}
	next, err := w.decider.DecideNextBatch(ctx, obj, r.table[id], r.opt.batchSize)
	r.table[id] = next
	if err != nil {
		return w.fail(ctx, id, err)
	}

	if r.opt.sessionPolicy == SessionPerObjective {
		if err := w.release(); err != nil {
			return err
		}
	}

	complete := len(next) == obj.Len()
	w.logger.WithFields(logrus.Fields{
		"objective": id,
		"decided":   len(next),
		"complete":  complete,
	}).Debug("batch done")

	if complete {
		r.opt.tracer.Trace(Event{Kind: Completed, Worker: w.id, Objective: id, Decided: len(next)})
		r.complete()
		return nil
	}
	atomic.AddInt64(&r.stats.Releases, 1)
	r.opt.tracer.Trace(Event{Kind: Released, Worker: w.id, Objective: id, Decided: len(next)})
	r.queue.push(id)
	return nil
}

func (w *worker) fail(ctx context.Context, id int, err error) error {
	switch {
	case errors.Is(err, ErrFormulaUnsat):
		w.logger.WithField("objective", id).Debug("hard formula is unsatisfiable")
		return ErrFormulaUnsat
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	}
	return &OracleFailure{Worker: w.id, Objective: id, Err: err}
}

func (w *worker) open() error {
	s, err := w.run.opt.oracle.Open(w.run.f)
	if err != nil {
		return &OracleFailure{Worker: w.id, Objective: w.held, Err: errors.Wrap(err, "opening session")}
	}
	w.session = s
	w.decider = NewDecider(s)
	return nil
}

// release closes the current session and folds its counters into the
// run statistics.
func (w *worker) release() error {
	if w.session == nil {
		return nil
	}
	atomic.AddInt64(&w.run.stats.OracleCalls, w.decider.OracleCalls)
	atomic.AddInt64(&w.run.stats.FastPath, w.decider.FastPath)
	err := w.session.Close()
	w.session, w.decider = nil, nil
	if err != nil {
		return &OracleFailure{Worker: w.id, Objective: w.held, Err: errors.Wrap(err, "closing session")}
	}
	return nil
}
