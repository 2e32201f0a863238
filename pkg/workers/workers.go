// Package workers runs geometry construction the way a multi-threaded
// transport engine does: one independently owned tree per worker, all
// sharing a single frozen material registry.
package workers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/material"
)

// ErrNoWorkers is returned when fewer than one worker is requested.
var ErrNoWorkers = errors.New("at least one worker is required")

// Constructor builds a volume tree. detector.Builder and engine.Script
// satisfy it.
type Constructor interface {
	Construct() (*geometry.Tree, error)
}

// ConstructAll builds one tree per worker. A warm-up construction on the
// calling goroutine populates reg, which is then frozen so the parallel
// builds can only read it. Workers run concurrently, at most limit at a
// time when limit > 0. The first error cancels the remaining workers.
//
// The warm-up tree is returned as the first element, so the result always
// holds n trees.
func ConstructAll(ctx context.Context, c Constructor, reg *material.Registry, n, limit int) ([]*geometry.Tree, error) {
	if n < 1 {
		return nil, ErrNoWorkers
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first, err := c.Construct()
	if err != nil {
		return nil, fmt.Errorf("warm-up construction: %w", err)
	}
	if reg != nil {
		reg.Freeze()
	}

	trees := make([]*geometry.Tree, n)
	trees[0] = first

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 1; i < n; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			tree, err := c.Construct()
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}
