package filter

import (
	"context"
	"testing"

	"github.com/s0up4200/wowdata/wowapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timeLefts = []string{"SHORT", "MEDIUM", "LONG", "VERY_LONG"}

func generateTestAuctions(n int) []wowapi.Auction {
	auctions := make([]wowapi.Auction, n)
	for i := range auctions {
		a := wowapi.Auction{
			ID:       int64(i + 1),
			Item:     wowapi.AuctionItem{ID: int64(1000 + i%50)},
			Quantity: int64(i%300 + 1),
			TimeLeft: timeLefts[i%len(timeLefts)],
		}
		if i%2 == 0 {
			a.UnitPrice = int64(i * 100)
		} else {
			a.Buyout = int64(i * 10000)
		}
		auctions[i] = a
	}
	return auctions
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `ItemID == 19019`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasText(TimeLeft, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown variable",
			expression: `Stacks > 3`,
			wantErr:    true,
		},
		{
			name:       "not a boolean",
			expression: `UnitPrice + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `IsCommodity and UnitPrice > gold(10) and longerThan("MEDIUM")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, filter)
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	commodity := wowapi.Auction{
		ID:        1,
		Item:      wowapi.AuctionItem{ID: 2589},
		Quantity:  200,
		UnitPrice: 1250,
		TimeLeft:  "LONG",
	}
	gear := wowapi.Auction{
		ID:       2,
		Item:     wowapi.AuctionItem{ID: 19019},
		Quantity: 1,
		Buyout:   4308469686700,
		Bid:      4000000000000,
		TimeLeft: "SHORT",
	}

	tests := []struct {
		name       string
		expression string
		auction    wowapi.Auction
		expected   bool
	}{
		{"item id", `ItemID == 19019`, gear, true},
		{"commodity flag", `IsCommodity`, commodity, true},
		{"commodity flag on gear", `IsCommodity`, gear, false},
		{"gold helper", `Buyout > gold(400000000)`, gear, true},
		{"silver helper", `UnitPrice == silver(12) + 50`, commodity, true},
		{"price prefers unit price", `Price == 1250`, commodity, true},
		{"total multiplies quantity", `Total == 250000`, commodity, true},
		{"total of a single item", `Total == Buyout`, gear, true},
		{"total of a stacked listing is its buyout", `Total == 5000`, wowapi.Auction{Quantity: 20, Buyout: 5000}, true},
		{"time left bucket", `longerThan("MEDIUM")`, commodity, true},
		{"time left bucket short", `longerThan("SHORT")`, gear, false},
		{"text helper ignores case", `hasText(TimeLeft, "hor")`, gear, true},
		{"prefix helper ignores case", `hasPrefix(TimeLeft, "sho")`, gear, true},
		{"prefix helper miss", `hasPrefix(TimeLeft, "lo")`, gear, false},
		{"contains operator", `TimeLeft contains "HOR"`, gear, true},
		{"startsWith operator is case sensitive", `TimeLeft startsWith "sho"`, gear, false},
		{"case helpers", `lower(TimeLeft) == "short" and upper("long") == "LONG"`, gear, true},
		{"raw auction", `Auction.Item.ID == 2589`, commodity, true},
		{"formatted gold", `formatGold(Buyout) == "430,846,968g 67s 00c"`, gear, true},
		{"combined", `not IsCommodity and Bid > 0 and Quantity == 1`, gear, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, filter.Evaluate(tt.auction), tt.expression)
		})
	}
}

func TestMatchReportsRuntimeErrors(t *testing.T) {
	filter, err := CompileFilter(`Buyout / Quantity > 0`)
	require.NoError(t, err)

	ok, err := filter.Match(wowapi.Auction{ID: 9, Buyout: 100, Quantity: 0})
	// expr divides as float, so zero quantity is not an error
	require.NoError(t, err)
	assert.True(t, ok)

	filter, err = CompileFilter(`Auction.Item.ID % Quantity == 0`)
	require.NoError(t, err)

	ok, err = filter.Match(wowapi.Auction{ID: 9, Item: wowapi.AuctionItem{ID: 10}})
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, int64(9), evalErr.AuctionID)
	assert.False(t, ok)
	assert.False(t, filter.Evaluate(wowapi.Auction{ID: 9, Item: wowapi.AuctionItem{ID: 10}}))
}

func TestConcurrentEvaluation(t *testing.T) {
	auctions := generateTestAuctions(5000)

	filter, err := CompileFilter(`IsCommodity and TimeLeft == "LONG"`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(100))
	matches, err := evaluator.Evaluate(context.Background(), filter, auctions)
	require.NoError(t, err)

	expected := evaluateSequential(filter, auctions)
	assert.Equal(t, expected, matches)
	assert.NotEmpty(t, matches)
}

func TestConcurrentEvaluationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	filter, err := CompileFilter(`IsCommodity`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	_, err = evaluator.Evaluate(ctx, filter, generateTestAuctions(1000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchEvaluation(t *testing.T) {
	auctions := generateTestAuctions(500)

	filters := map[string]string{
		"commodities": `IsCommodity`,
		"expiring":    `TimeLeft == "SHORT"`,
		"none":        `ItemID == 1`,
	}

	results, err := EvaluateFilters(context.Background(), filters, auctions)
	require.NoError(t, err)

	assert.Len(t, results, len(filters))
	assert.Len(t, results["commodities"], 249)
	assert.Len(t, results["expiring"], 125)
	assert.Empty(t, results["none"])
}

func TestFilterManager(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	err := manager.RegisterFilters(map[string]string{
		"big-stacks": `Quantity >= 250`,
		"expiring":   `TimeLeft == "SHORT" and IsCommodity`,
	})
	require.NoError(t, err)

	names := manager.ListFilters()
	assert.Contains(t, names, "big-stacks")
	assert.Contains(t, names, "commodities")
	assert.IsIncreasing(t, names)

	filter, exists := manager.GetFilter("expiring")
	require.True(t, exists)
	assert.Equal(t, `TimeLeft == "SHORT" and IsCommodity`, filter.Expression())

	auctions := generateTestAuctions(300)
	matches, err := manager.EvaluateFilter(ctx, "big-stacks", auctions)
	require.NoError(t, err)
	assert.Len(t, matches, 51)

	_, err = manager.EvaluateFilter(ctx, "missing", auctions)
	assert.Error(t, err)

	selected, err := manager.EvaluateSelected(ctx, []string{"commodities", "expiring"}, auctions)
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	manager.UnregisterFilter("big-stacks")
	_, exists = manager.GetFilter("big-stacks")
	assert.False(t, exists)
}

func TestManagerRejectsPartialRegistration(t *testing.T) {
	manager := NewManager()

	err := manager.RegisterFilters(map[string]string{
		"good": `IsCommodity`,
		"bad":  `IsCommodity and`,
	})
	require.Error(t, err)

	_, exists := manager.GetFilter("good")
	assert.False(t, exists)
}

func TestDefaultPresetsCompile(t *testing.T) {
	compiler := NewExprCompiler()
	for name, expression := range DefaultPresets {
		_, err := compiler.Compile(expression)
		assert.NoError(t, err, name)
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))
	cachingCompiler, ok := compiler.(CachingCompiler)
	require.True(t, ok)

	first, err := compiler.Compile(`IsCommodity`)
	require.NoError(t, err)
	second, err := compiler.Compile(`  IsCommodity  `)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cachingCompiler.Size())

	_, err = compiler.Compile(`Bid > 0`)
	require.NoError(t, err)
	_, err = compiler.Compile(`Buyout > 0`)
	require.NoError(t, err)
	assert.Equal(t, 2, cachingCompiler.Size())

	cachingCompiler.Clear()
	assert.Equal(t, 0, cachingCompiler.Size())
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)

	// Touch a so b becomes the eviction candidate
	_, ok := cache.Get("a")
	require.True(t, ok)
	cache.Put("c", 3)

	_, ok = cache.Get("b")
	assert.False(t, ok)
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	cache.Put("a", 10)
	v, _ = cache.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, cache.Size())
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"watched": func(itemID int) bool { return itemID == 2589 },
	}))

	filter, err := compiler.Compile(`watched(ItemID)`)
	require.NoError(t, err)
	assert.True(t, filter.Evaluate(wowapi.Auction{Item: wowapi.AuctionItem{ID: 2589}}))
	assert.False(t, filter.Evaluate(wowapi.Auction{Item: wowapi.AuctionItem{ID: 1}}))
}

// countingEvaluator records how often the manager delegates to it
type countingEvaluator struct {
	*ConcurrentEvaluator
	single, batch int
}

func (e *countingEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	e.single++
	return e.ConcurrentEvaluator.Evaluate(ctx, filter, auctions)
}

func (e *countingEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error) {
	e.batch++
	return e.ConcurrentEvaluator.EvaluateBatch(ctx, filters, auctions)
}

func TestManagerEvaluateAll(t *testing.T) {
	evaluator := &countingEvaluator{ConcurrentEvaluator: NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(50))}
	manager := NewManager(WithEvaluator(evaluator))
	ctx := context.Background()

	auctions := generateTestAuctions(500)
	results, err := manager.EvaluateAll(ctx, auctions)
	require.NoError(t, err)

	assert.Equal(t, 1, evaluator.batch)
	assert.Len(t, results, len(DefaultPresets))
	assert.Len(t, results["commodities"], 249)
	assert.Len(t, results["expiring"], 125)

	_, err = manager.EvaluateFilter(ctx, "stacks", auctions)
	require.NoError(t, err)
	assert.Equal(t, 1, evaluator.single)
}

func TestManagerWithCompiler(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10), WithCustomFunctions(map[string]any{
		"reagent": func(itemID int) bool { return itemID == 1000 },
	}))
	manager := NewManager(WithCompiler(compiler))

	// presets go through the custom compiler and fill its cache
	assert.Equal(t, len(DefaultPresets), compiler.(CachingCompiler).Size())

	require.NoError(t, manager.RegisterFilter("reagents", `reagent(ItemID)`))
	matches, err := manager.EvaluateFilter(context.Background(), "reagents", generateTestAuctions(100))
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// the default compiler does not know the custom helper
	assert.Error(t, NewManager().RegisterFilter("reagents", `reagent(ItemID)`))
}
