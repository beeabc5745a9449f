// Package filter selects auctions with expr-lang expressions such as
// `UnitPrice > gold(10) and ItemID == 19019`.
//
// Available variables: ID, ItemID, Quantity, UnitPrice, Buyout, Bid, Price,
// Total, TimeLeft, IsCommodity and the raw Auction. Prices are in copper;
// gold(n) and silver(n) convert. longerThan("MEDIUM") compares time left
// buckets (SHORT < MEDIUM < LONG < VERY_LONG). hasText and hasPrefix match
// case-insensitively; the contains and startsWith operators do not.
package filter

import (
	"context"

	"github.com/s0up4200/wowdata/wowapi"
)

var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles an expression with the shared, cached compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// EvaluateFilters compiles and evaluates several named expressions against
// the same auctions
func EvaluateFilters(ctx context.Context, filters map[string]string, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error) {
	compiled := make(map[string]CompiledFilter, len(filters))
	for name, expression := range filters {
		filter, err := CompileFilter(expression)
		if err != nil {
			return nil, err
		}
		compiled[name] = filter
	}

	return NewConcurrentEvaluator().EvaluateBatch(ctx, compiled, auctions)
}
