package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/wowdata/wowapi"
	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

var _ AuctionEvaluator = (*ConcurrentEvaluator)(nil)

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator. Large
// auction lists are split into chunks evaluated in parallel.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   1000,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the auctions matching filter, in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	if len(auctions) == 0 {
		return []wowapi.Auction{}, nil
	}

	// Small houses and filters that cannot share state stay sequential
	if len(auctions) < e.batchSize || !filter.IsThreadSafe() {
		return evaluateSequential(filter, auctions), nil
	}

	return e.evaluateConcurrent(ctx, filter, auctions)
}

// EvaluateBatch evaluates multiple filters against the same auctions
// concurrently
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error) {
	results := make(map[string][]wowapi.Auction, len(filters))
	if len(filters) == 0 || len(auctions) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for name, filter := range filters {
		g.Go(func() error {
			matches, err := e.Evaluate(gctx, filter, auctions)
			if err != nil {
				return err
			}

			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateSequential(filter CompiledFilter, auctions []wowapi.Auction) []wowapi.Auction {
	matches := make([]wowapi.Auction, 0, len(auctions)/10)
	for _, auction := range auctions {
		if filter.Evaluate(auction) {
			matches = append(matches, auction)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	chunkSize := max(len(auctions)/e.workerCount, e.batchSize)
	chunks := (len(auctions) + chunkSize - 1) / chunkSize
	results := make([][]wowapi.Auction, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for index := range chunks {
		start := index * chunkSize
		chunk := auctions[start:min(start+chunkSize, len(auctions))]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[index] = evaluateSequential(filter, chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, matches := range results {
		total += len(matches)
	}
	all := make([]wowapi.Auction, 0, total)
	for _, matches := range results {
		all = append(all, matches...)
	}
	return all, nil
}
