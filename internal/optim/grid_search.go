package optim

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/buoysim/internal/control"
)

// CellFunc evaluates one grid cell. idx is the cell's k1-major position.
type CellFunc func(ctx context.Context, idx int, g control.Gains) error

type GridSearch struct {
	grid    Grid
	workers int
	log     logrus.FieldLogger
}

// NewGridSearch evaluates grid with up to workers cells in flight; a
// non-positive count means one per CPU.
func NewGridSearch(grid Grid, workers int) *GridSearch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &GridSearch{grid: grid, workers: workers, log: logrus.StandardLogger()}
}

func (g *GridSearch) WithLogger(log logrus.FieldLogger) *GridSearch {
	g.log = log
	return g
}

func (g *GridSearch) Grid() Grid { return g.grid }

func (g *GridSearch) Workers() int { return g.workers }

// Search calls fn for every cell. The first error cancels the cells still
// pending and is returned.
func (g *GridSearch) Search(ctx context.Context, fn CellFunc) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i := 0; i < g.grid.Len(); i++ {
		if egCtx.Err() != nil {
			break
		}
		i := i
		gains := g.grid.At(i)
		eg.Go(func() error {
			g.log.WithFields(logrus.Fields{"k1": gains.K1, "k2": gains.K2}).Debug("evaluating cell")
			return fn(egCtx, i, gains)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Minimize returns the cell with the smallest objective value. Cells whose
// objective returns NaN are ignored.
func (g *GridSearch) Minimize(
	ctx context.Context,
	objective func(ctx context.Context, gains control.Gains) (float64, error),
) (control.Gains, float64, error) {
	var mu sync.Mutex
	best := math.Inf(1)
	bestIdx := -1

	err := g.Search(ctx, func(ctx context.Context, idx int, gains control.Gains) error {
		val, err := objective(ctx, gains)
		if err != nil {
			return err
		}
		if math.IsNaN(val) {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if val < best || (val == best && idx < bestIdx) {
			best = val
			bestIdx = idx
		}
		return nil
	})
	if err != nil {
		return control.Gains{}, 0, err
	}
	if bestIdx < 0 {
		return control.Gains{}, best, nil
	}
	return g.grid.At(bestIdx), best, nil
}
