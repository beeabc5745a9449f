package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/wowdata/gold"
	"github.com/s0up4200/wowdata/wowapi"
)

// timeLeftRank orders the API's time_left buckets.
var timeLeftRank = map[string]int{
	"SHORT":     1,
	"MEDIUM":    2,
	"LONG":      3,
	"VERY_LONG": 4,
}

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// A zero auction gives the checker the type of every variable, so
	// misspelled fields fail here instead of at evaluation time.
	program, err := expr.Compile(expression,
		expr.Env(createRuntimeEnvironment(wowapi.Auction{}, c.helperFuncs)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate reports whether the auction matches. Auctions the expression
// fails on do not match.
func (f *exprFilter) Evaluate(auction wowapi.Auction) bool {
	ok, err := f.Match(auction)
	return err == nil && ok
}

// Match evaluates the filter and reports runtime failures.
func (f *exprFilter) Match(auction wowapi.Auction) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(auction, f.helpers))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			AuctionID:  auction.ID,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// Currency helpers, all in copper
	funcs["gold"] = func(n int) int {
		return n * int(gold.Gold)
	}
	funcs["silver"] = func(n int) int {
		return n * int(gold.Silver)
	}
	funcs["formatGold"] = func(copper int) string {
		return gold.Format(int64(copper))
	}

	// Case-insensitive string helpers. contains and startsWith are expr
	// operators, so these need other names.
	funcs["hasText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	return funcs
}

// createRuntimeEnvironment creates the environment one auction is
// evaluated in
func createRuntimeEnvironment(auction wowapi.Auction, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	env["Auction"] = auction
	env["longerThan"] = createLongerThanFunc(auction.TimeLeft)

	env["ID"] = int(auction.ID)
	env["ItemID"] = int(auction.Item.ID)
	env["Quantity"] = int(auction.Quantity)
	env["UnitPrice"] = int(auction.UnitPrice)
	env["Buyout"] = int(auction.Buyout)
	env["Bid"] = int(auction.Bid)
	env["Price"] = int(auction.Price())
	env["Total"] = int(auction.Total())
	env["TimeLeft"] = auction.TimeLeft
	env["IsCommodity"] = auction.IsCommodity()

	return env
}

func createLongerThanFunc(timeLeft string) func(string) bool {
	rank := timeLeftRank[strings.ToUpper(timeLeft)]
	return func(bucket string) bool {
		return rank > timeLeftRank[strings.ToUpper(bucket)]
	}
}
