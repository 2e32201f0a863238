package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/g4basic/pkg/geometry"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation exceeds its time limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer Evaluate call started first.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult is the internal type used to pass evaluation results through channels.
type evalResult struct {
	tree   *geometry.Tree
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds timeout. When stale is non-nil it is consulted
// on completion and a stale result is discarded.
//
// On timeout, the goroutine may still be running; it owns its tree, so the
// late result is simply dropped.
func waitWithTimeout(ch <-chan evalResult, timeout time.Duration, stale func() bool) (*geometry.Tree, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if stale != nil && stale() {
			return nil, nil, ErrSuperseded
		}
		return res.tree, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
