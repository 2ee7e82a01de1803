// Package filter selects PostUp response objects with expr-lang boolean
// expressions such as
//
//	status == "N" and hasDemographic("city") and daysSince(dateJoined) < 30
//
// Every top level field of an object is available as a variable, the whole
// object as Object, together with date, string, demographic and brand helpers.
package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/s0up4200/postup/postup"
)

var defaultCompiler = NewExprCompiler(WithCache(100))

// Compile compiles expression with a shared caching compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Apply returns the objects matching f in their original order
func Apply(ctx context.Context, f CompiledFilter, objects []postup.Object) ([]postup.Object, error) {
	evaluator := NewConcurrentEvaluator()
	defer evaluator.Stop(context.Background())

	return evaluator.Evaluate(ctx, f, objects)
}

// EvaluateFilters compiles and evaluates several named expressions at once
func EvaluateFilters(ctx context.Context, expressions map[string]string, objects []postup.Object) (map[string][]postup.Object, error) {
	manager := NewManager()
	defer manager.Close(context.Background())

	presets := make([]Preset, 0, len(expressions))
	for name, expression := range expressions {
		presets = append(presets, Preset{Name: name, Expression: expression})
	}
	if err := manager.RegisterPresets(presets); err != nil {
		return nil, err
	}
	return manager.EvaluateAll(ctx, objects)
}

// Objects converts a response into the objects a filter can match. Typed
// results are re-encoded and normalized so they expose the same fields as
// the raw response.
func Objects(result any) ([]postup.Object, error) {
	switch v := result.(type) {
	case nil:
		return nil, nil
	case postup.Object:
		return []postup.Object{v}, nil
	case []postup.Object:
		return v, nil
	case []any:
		objects := make([]postup.Object, 0, len(v))
		for i, item := range v {
			obj, ok := item.(postup.Object)
			if !ok {
				return nil, fmt.Errorf("item %d is %T, not an object", i, item)
			}
			objects = append(objects, obj)
		}
		return objects, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	normalized, err := postup.Normalize(decoded)
	if err != nil {
		return nil, err
	}
	switch normalized.(type) {
	case nil, postup.Object, []any:
		return Objects(normalized)
	}
	return nil, fmt.Errorf("%T cannot be filtered", result)
}
