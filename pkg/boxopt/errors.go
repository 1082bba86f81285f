package boxopt

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrFormulaUnsat means the hard formula has no satisfying assignment, so
// no objective can be scored.
var ErrFormulaUnsat = errors.New("hard formula is unsatisfiable")

// OracleFailure is returned when the oracle errors while a worker holds
// an objective. Objective is -1 when no objective was held.
type OracleFailure struct {
	Worker    int
	Objective int
	Err       error
}

func (e *OracleFailure) Error() string {
	if e.Objective < 0 {
		return fmt.Sprintf("worker %d: oracle failure: %v", e.Worker, e.Err)
	}
	return fmt.Sprintf("worker %d: oracle failure on objective %d: %v", e.Worker, e.Objective, e.Err)
}

func (e *OracleFailure) Unwrap() error {
	return e.Err
}

func (e *OracleFailure) Cause() error {
	return e.Err
}

// WorkerFailure is returned when a worker terminates abnormally. The
// objective it held is lost and is not requeued.
type WorkerFailure struct {
	Worker    int
	Objective int
	Panic     interface{}
}

func (e *WorkerFailure) Error() string {
	if e.Objective < 0 {
		return fmt.Sprintf("worker %d failed: %v", e.Worker, e.Panic)
	}
	return fmt.Sprintf("worker %d failed holding objective %d: %v", e.Worker, e.Objective, e.Panic)
}
