package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/wowdata/wowapi"
)

// DefaultPresets are registered by NewManager. Presets from the
// configuration with the same name replace them.
var DefaultPresets = map[string]string{
	"commodities": `IsCommodity`,
	"expensive":   `Price >= gold(10000)`,
	"cheap":       `Price > 0 and Price < silver(1)`,
	"expiring":    `TimeLeft == "SHORT"`,
	"bid-only":    `Buyout == 0 and Bid > 0`,
	"stacks":      `Quantity >= 200`,
}

// Manager holds named, pre-compiled filters
type Manager struct {
	compiler  Compiler
	evaluator AuctionEvaluator
	filters   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator AuctionEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a filter manager with DefaultPresets registered
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  NewExprCompiler(WithCache(100)),
		evaluator: NewConcurrentEvaluator(),
		filters:   make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.RegisterFilters(DefaultPresets); err != nil {
		panic(fmt.Sprintf("invalid default preset: %v", err))
	}

	return m
}

// RegisterFilter registers a new filter or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple filters at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expr := range filters {
		filter, err := m.compiler.Compile(expr)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// UnregisterFilter removes a filter
func (m *Manager) UnregisterFilter(name string) {
	m.mu.Lock()
	delete(m.filters, name)
	m.mu.Unlock()
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// EvaluateFilter evaluates a single registered filter
func (m *Manager) EvaluateFilter(ctx context.Context, name string, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	filter, exists := m.GetFilter(name)
	if !exists {
		return nil, fmt.Errorf("filter '%s' not found", name)
	}

	return m.evaluator.Evaluate(ctx, filter, auctions)
}

// EvaluateExpression compiles an ad-hoc expression and evaluates it
func (m *Manager) EvaluateExpression(ctx context.Context, expression string, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return nil, err
	}

	return m.evaluator.Evaluate(ctx, filter, auctions)
}

// EvaluateAll evaluates all registered filters
func (m *Manager) EvaluateAll(ctx context.Context, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error) {
	m.mu.RLock()
	filters := maps.Clone(m.filters)
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, auctions)
}

// EvaluateSelected evaluates only the specified filters
func (m *Manager) EvaluateSelected(ctx context.Context, filterNames []string, auctions []wowapi.Auction) (map[string][]wowapi.Auction, error) {
	m.mu.RLock()
	filters := make(map[string]CompiledFilter, len(filterNames))
	for _, name := range filterNames {
		filter, exists := m.filters[name]
		if !exists {
			m.mu.RUnlock()
			return nil, fmt.Errorf("filter '%s' not found", name)
		}
		filters[name] = filter
	}
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, auctions)
}
