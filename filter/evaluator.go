package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/postup/postup"
)

var (
	_ Evaluator      = (*ConcurrentEvaluator)(nil)
	_ BatchEvaluator = (*ConcurrentEvaluator)(nil)
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator interfaces
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.workerCount <= 0 {
		e.workerCount = 1
	}
	if e.batchSize <= 0 {
		e.batchSize = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the objects matching filter, in their original order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, objects []postup.Object) ([]postup.Object, error) {
	if len(objects) == 0 {
		return []postup.Object{}, nil
	}

	// Small inputs and filters that cannot run in parallel stay sequential
	if len(objects) < e.batchSize || !filter.IsThreadSafe() {
		return matchAll(filter, objects), nil
	}

	return e.evaluateConcurrent(ctx, filter, objects)
}

// EvaluateBatch evaluates multiple filters against objects concurrently.
// Filters that fail are left out of the result.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, objects []postup.Object) (map[string][]postup.Object, error) {
	results := make(map[string][]postup.Object, len(filters))
	if len(filters) == 0 || len(objects) == 0 {
		return results, nil
	}

	resultChan := make(chan BatchResult, len(filters))

	var wg sync.WaitGroup
	for name, filter := range filters {
		wg.Add(1)

		// Batch jobs only match sequentially so they never wait on the
		// pool they are running in
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				resultChan <- BatchResult{FilterName: name, Error: err}
				return
			}

			resultChan <- BatchResult{
				FilterName: name,
				Matches:    matchAll(filter, objects),
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Error != nil {
			continue
		}
		results[result.FilterName] = result.Matches
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func matchAll(filter CompiledFilter, objects []postup.Object) []postup.Object {
	matches := make([]postup.Object, 0, len(objects)/4)
	for _, obj := range objects {
		if filter.Match(obj) {
			matches = append(matches, obj)
		}
	}
	return matches
}

// evaluateConcurrent splits objects into chunks evaluated on the worker pool
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, objects []postup.Object) ([]postup.Object, error) {
	chunkSize := max(len(objects)/e.workerCount, e.batchSize)
	chunks := (len(objects) + chunkSize - 1) / chunkSize
	results := make([][]postup.Object, chunks)

	var wg sync.WaitGroup
	for index := 0; index < chunks; index++ {
		start := index * chunkSize
		chunk := objects[start:min(start+chunkSize, len(objects))]

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			// Each chunk writes its own slot
			results[index] = matchAll(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, matches := range results {
		total += len(matches)
	}
	all := make([]postup.Object, 0, total)
	for _, matches := range results {
		all = append(all, matches...)
	}
	return all, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
