package filter

import (
	"context"

	"github.com/s0up4200/postup/postup"
)

// Filter defines the basic interface for response object filters
type Filter interface {
	// Match checks if an object matches the filter criteria
	Match(obj postup.Object) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Evaluate runs the filter and reports evaluation failures
	Evaluate(obj postup.Object) (bool, error)

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against objects
type Evaluator interface {
	// Evaluate evaluates a filter against all objects
	Evaluate(ctx context.Context, filter CompiledFilter, objects []postup.Object) ([]postup.Object, error)
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	// EvaluateBatch evaluates multiple filters against objects concurrently
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, objects []postup.Object) (map[string][]postup.Object, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// BatchResult represents the result of evaluating a filter
type BatchResult struct {
	FilterName string
	Matches    []postup.Object
	Error      error
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit submits work to the pool, waiting for room until ctx is done
	Submit(ctx context.Context, work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
