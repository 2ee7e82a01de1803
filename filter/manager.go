package filter

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/postup/postup"
)

// Preset is a named filter expression, as saved in the config file
type Preset struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
}

type compiledPreset struct {
	preset Preset
	filter CompiledFilter
}

// Manager holds the presets of a session compiled and ready to evaluate,
// and compiles ad hoc expressions with the same cache
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	presets   map[string]compiledPreset
	mu        sync.RWMutex
}

// NewManager creates a manager. Evaluator options tune its worker pool.
func NewManager(opts ...EvaluatorOption) *Manager {
	return &Manager{
		compiler:  NewExprCompiler(WithCache(100)),
		evaluator: NewConcurrentEvaluator(opts...),
		presets:   make(map[string]compiledPreset),
	}
}

// Compile compiles an ad hoc expression
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// RegisterPresets compiles and stores presets, replacing any with the same
// name. Nothing is stored unless every expression compiles.
func (m *Manager) RegisterPresets(presets []Preset) error {
	compiled := make(map[string]compiledPreset, len(presets))

	sorted := slices.SortedFunc(slices.Values(presets), func(a, b Preset) int {
		return cmp.Compare(a.Name, b.Name)
	})
	for _, p := range sorted {
		if p.Name == "" {
			return fmt.Errorf("preset with expression '%s' has no name", p.Expression)
		}
		filter, err := m.compiler.Compile(p.Expression)
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", p.Name, err)
		}
		compiled[p.Name] = compiledPreset{preset: p, filter: filter}
	}

	m.mu.Lock()
	maps.Copy(m.presets, compiled)
	m.mu.Unlock()

	return nil
}

// Lookup returns the compiled filter of a preset
func (m *Manager) Lookup(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	p, exists := m.presets[name]
	m.mu.RUnlock()
	return p.filter, exists
}

// Presets returns the registered presets sorted by name
func (m *Manager) Presets() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	presets := make([]Preset, 0, len(m.presets))
	for _, name := range slices.Sorted(maps.Keys(m.presets)) {
		presets = append(presets, m.presets[name].preset)
	}
	return presets
}

// Evaluate applies an already compiled filter
func (m *Manager) Evaluate(ctx context.Context, filter CompiledFilter, objects []postup.Object) ([]postup.Object, error) {
	return m.evaluator.Evaluate(ctx, filter, objects)
}

// EvaluatePreset applies a single registered preset
func (m *Manager) EvaluatePreset(ctx context.Context, name string, objects []postup.Object) ([]postup.Object, error) {
	filter, exists := m.Lookup(name)
	if !exists {
		return nil, fmt.Errorf("preset '%s' not found", name)
	}
	return m.evaluator.Evaluate(ctx, filter, objects)
}

// EvaluateAll applies every registered preset, keyed by preset name
func (m *Manager) EvaluateAll(ctx context.Context, objects []postup.Object) (map[string][]postup.Object, error) {
	m.mu.RLock()
	filters := make(map[string]CompiledFilter, len(m.presets))
	for name, p := range m.presets {
		filters[name] = p.filter
	}
	m.mu.RUnlock()

	return m.evaluator.EvaluateBatch(ctx, filters, objects)
}

// Close stops the evaluator's workers
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}
