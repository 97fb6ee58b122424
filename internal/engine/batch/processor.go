package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Batch size bounds.
const (
	MinBatchSize     = 1
	MaxBatchSize     = 100
)

// Processor errors.
var (
	ErrInvalidBatchSize = fmt.Errorf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrEmptyItems       = errors.New("items slice cannot be empty")
)

// ItemFunc processes one item. index is the item's position in the input.
type ItemFunc[T any] func(ctx context.Context, item T, index int) error

// ProgressCallback is invoked after each batch.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor applies an ItemFunc to items in fixed-size batches.
type Processor[T any] struct {
	batchSize  int
	onProgress ProgressCallback
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// WithProgressCallback sets the progress callback.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// Process calls fn for every item in order. A failing item is recorded and
// processing continues. The returned error is non-nil only for invalid
// arguments or cancellation; item failures are in the Report.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn ItemFunc[T]) (*Report, error) {
	return p.run(ctx, items, fn, 1)
}

// ProcessConcurrent is Process with up to maxConcurrency items of a batch in
// flight at once. Items within a batch may finish in any order.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	items []T,
	fn ItemFunc[T],
	maxConcurrency int,
) (*Report, error) {
	return p.run(ctx, items, fn, max(1, maxConcurrency))
}

func (p *Processor[T]) run(ctx context.Context, items []T, fn ItemFunc[T], limit int) (*Report, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	if fn == nil {
		return nil, ErrNilCallback
	}

	report := &Report{Total: len(items)}
	progress := NewProgress(len(items), p.calculateTotalBatches(len(items)))
	var mu sync.Mutex

	for _, bounds := range p.CalculateBatches(len(items)) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := bounds[0]; i < bounds[1]; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				err := fn(gctx, items[i], i)
				mu.Lock()
				report.record(i, err)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}

		progress.AddProcessed(bounds[1] - bounds[0])
		if p.onProgress != nil {
			p.onProgress(progress.Snapshot())
		}
	}
	report.sort()
	return report, nil
}

// CalculateBatches returns the [start, end) bounds of each batch.
func (p *Processor[T]) CalculateBatches(totalItems int) [][2]int {
	totalBatches := p.calculateTotalBatches(totalItems)
	batches := make([][2]int, totalBatches)
	for i := range totalBatches {
		start := i * p.batchSize
		batches[i] = [2]int{start, min(start+p.batchSize, totalItems)}
	}
	return batches
}

func (p *Processor[T]) calculateTotalBatches(totalItems int) int {
	return (totalItems + p.batchSize - 1) / p.batchSize
}
