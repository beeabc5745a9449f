package filter

import (
	"context"

	"github.com/s0up4200/wowdata/wowapi"
)

// Filter defines the basic interface for auction filters
type Filter interface {
	// Evaluate checks if an auction matches the filter criteria
	Evaluate(auction wowapi.Auction) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with runtime errors reported
	Match(auction wowapi.Auction) (bool, error)

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against auctions
type Evaluator interface {
	Evaluate(ctx context.Context, filter CompiledFilter, auctions []wowapi.Auction) ([]wowapi.Auction, error)
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error)
}

// AuctionEvaluator is what a Manager evaluates its filters with
type AuctionEvaluator interface {
	Evaluator
	BatchEvaluator
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
