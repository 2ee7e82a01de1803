package filter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/postup/postup"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasDemographic("city")`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasDemographic("unclosed`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `lower("ABC")`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `status == "N" and hasBrand(7) and daysSince(dateJoined) > 30`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := Compile(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, filter)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	recipient := postup.Object{
		"recipientId":  float64(42),
		"address":      "Jane@Example.com",
		"status":       "N",
		"channel":      "E",
		"dateJoined":   time.Now().AddDate(0, -3, 0),
		"demographics": map[string]string{"city": "Oslo", "tier": "gold"},
		"brandIds":     []any{float64(3), float64(7)},
		"createTime":   "2020-01-02T03:04:05Z",
	}

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"field equality", `status == "N"`, true},
		{"field inequality", `channel != "E"`, false},
		{"has demographic", `hasDemographic("city")`, true},
		{"missing demographic", `hasDemographic("age")`, false},
		{"demographic value", `demographic("tier") == "gold"`, true},
		{"has brand", `hasBrand(7)`, true},
		{"missing brand", `hasBrand(8)`, false},
		{"contains ignores case", `icontains(address, "example.COM")`, true},
		{"starts with ignores case", `istartsWith(address, "jane")`, true},
		{"ends with ignores case", `iendsWith(address, ".org")`, false},
		{"contains operator", `address contains "Example"`, true},
		{"date comparison", `dateJoined < daysAgo(30)`, true},
		{"days since time", `daysSince(dateJoined) >= 85`, true},
		{"days since string", `daysSince(createTime) > 365`, true},
		{"object access", `Object["recipientId"] == 42`, true},
		{"complex expression", `status == "N" and demographic("city") == "Oslo" and not hasBrand(1)`, true},
		{"undefined field", `unknownField == "x"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.Match(recipient), tt.expression)
		})
	}
}

func TestFilterEvaluation_RuntimeError(t *testing.T) {
	filter, err := Compile(`lower(address) == "jane"`)
	require.NoError(t, err)

	ok, err := filter.Evaluate(postup.Object{"recipientId": float64(1), "address": 5})
	assert.False(t, ok)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "recipientId=1", evalErr.ObjectID)
	assert.False(t, filter.Match(postup.Object{"address": 5}))
}

func TestApply(t *testing.T) {
	objects := generateTestObjects(1000)

	filter, err := Compile(`hasDemographic("city") and recipientId > 500`)
	require.NoError(t, err)

	matches, err := Apply(context.Background(), filter, objects)
	require.NoError(t, err)

	var expected []postup.Object
	for _, obj := range objects {
		if filter.Match(obj) {
			expected = append(expected, obj)
		}
	}
	assert.Equal(t, expected, matches)
}

func TestConcurrentEvaluation(t *testing.T) {
	objects := generateTestObjects(1000)

	filter, err := Compile(`status == "N" and hasBrand(2)`)
	require.NoError(t, err)

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))
	defer evaluator.Stop(ctx)

	matches, err := evaluator.Evaluate(ctx, filter, objects)
	require.NoError(t, err)

	expected := matchAll(filter, objects)
	require.Len(t, matches, len(expected))
	assert.Equal(t, expected, matches, "order must be preserved")
}

func TestConcurrentEvaluation_Canceled(t *testing.T) {
	filter, err := Compile(`status == "N"`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	defer evaluator.Stop(context.Background())

	_, err = evaluator.Evaluate(ctx, filter, generateTestObjects(200))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchEvaluation(t *testing.T) {
	objects := generateTestObjects(500)

	filters := map[string]string{
		"normal": `status == "N"`,
		"oslo":   `demographic("city") == "Oslo"`,
		"brand3": `hasBrand(3)`,
	}

	results, err := EvaluateFilters(context.Background(), filters, objects)
	require.NoError(t, err)
	require.Len(t, results, len(filters))

	for name, matches := range results {
		assert.NotEmpty(t, matches, "filter %q matched nothing", name)
	}
}

func TestFilterManager(t *testing.T) {
	manager := NewManager(WithWorkers(2))
	ctx := context.Background()
	defer manager.Close(ctx)

	err := manager.RegisterPresets([]Preset{
		{Name: "normal", Expression: `status == "N"`, Description: "subscribed recipients"},
		{Name: "email", Expression: `channel == "E"`},
		{Name: "longtime", Expression: `daysSince(dateJoined) > 60`},
	})
	require.NoError(t, err)

	presets := manager.Presets()
	require.Len(t, presets, 3)
	assert.Equal(t, "email", presets[0].Name)
	assert.Equal(t, "longtime", presets[1].Name)
	assert.Equal(t, Preset{Name: "normal", Expression: `status == "N"`, Description: "subscribed recipients"}, presets[2])

	filter, exists := manager.Lookup("normal")
	require.True(t, exists)
	assert.Equal(t, `status == "N"`, filter.Expression())

	objects := generateTestObjects(100)
	matches, err := manager.EvaluatePreset(ctx, "normal", objects)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	_, err = manager.EvaluatePreset(ctx, "missing", objects)
	assert.EqualError(t, err, "preset 'missing' not found")

	all, err := manager.EvaluateAll(ctx, objects)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, matches, all["normal"])

	err = manager.RegisterPresets([]Preset{{Name: "ok", Expression: `status == "N"`}, {Name: "broken", Expression: `status ==`}})
	require.Error(t, err)
	_, exists = manager.Lookup("ok")
	assert.False(t, exists, "nothing is registered when one preset fails")

	err = manager.RegisterPresets([]Preset{{Expression: `status == "N"`}})
	assert.ErrorContains(t, err, "has no name")
}

func TestWorkerPool_AcceptedWorkRuns(t *testing.T) {
	for round := 0; round < 50; round++ {
		pool := NewWorkerPool(2)
		ctx := context.Background()

		var accepted, ran atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					if err := pool.Submit(ctx, func() { ran.Add(1) }); err != nil {
						assert.ErrorIs(t, err, ErrPoolStopped)
						return
					}
					accepted.Add(1)
				}
			}()
		}

		require.NoError(t, pool.Stop(ctx))
		wg.Wait()
		assert.Equal(t, accepted.Load(), ran.Load(), "round %d", round)
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1)
	require.NoError(t, pool.Stop(context.Background()))
	require.NoError(t, pool.Stop(context.Background()))

	err := pool.Submit(context.Background(), func() { t.Error("work ran after stop") })
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`status == "N"`)
	require.NoError(t, err)
	second, err := compiler.Compile(`status == "N"`)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cachingCompiler, ok := compiler.(CachingCompiler)
	require.True(t, ok)
	assert.Equal(t, 1, cachingCompiler.Size())

	_, _ = compiler.Compile(`status == "U"`)
	_, _ = compiler.Compile(`status == "H"`)
	assert.Equal(t, 2, cachingCompiler.Size())

	cachingCompiler.Clear()
	assert.Equal(t, 0, cachingCompiler.Size())
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isGold": func(tier string) bool { return tier == "gold" },
	}))

	filter, err := compiler.Compile(`isGold(demographic("tier"))`)
	require.NoError(t, err)
	assert.True(t, filter.Match(postup.Object{"demographics": map[string]string{"tier": "gold"}}))
}

func TestObjects(t *testing.T) {
	t.Run("normalized list", func(t *testing.T) {
		objects, err := Objects([]any{postup.Object{"listId": float64(1)}, postup.Object{"listId": float64(2)}})
		require.NoError(t, err)
		assert.Len(t, objects, 2)
	})

	t.Run("single object", func(t *testing.T) {
		objects, err := Objects(postup.Object{"listId": float64(1)})
		require.NoError(t, err)
		assert.Len(t, objects, 1)
	})

	t.Run("typed results", func(t *testing.T) {
		objects, err := Objects([]postup.Recipient{
			{RecipientID: 1, Address: "a@example.com", Demographics: map[string]string{"city": "Oslo"}},
		})
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, map[string]string{"city": "Oslo"}, objects[0]["demographics"])

		filter, err := Compile(`demographic("city") == "Oslo"`)
		require.NoError(t, err)
		assert.True(t, filter.Match(objects[0]))
	})

	t.Run("typed dates", func(t *testing.T) {
		joined := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		objects, err := Objects(&postup.Recipient{RecipientID: 1, DateJoined: &joined})
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, joined, objects[0]["dateJoined"])
		assert.NotContains(t, objects[0], "dateUnsub")

		filter, err := Compile(`daysSince(dateJoined) > 30`)
		require.NoError(t, err)
		assert.True(t, filter.Match(objects[0]))

		lists, err := Objects([]postup.List{{ListID: 3, BlockDomains: []string{"a.com", "b.com"}}})
		require.NoError(t, err)
		require.Len(t, lists, 1)
		assert.Equal(t, []any{"a.com", "b.com"}, lists[0]["blockDomains"])
	})

	t.Run("scalars", func(t *testing.T) {
		_, err := Objects([]any{"x"})
		assert.Error(t, err)
		_, err = Objects("x")
		assert.Error(t, err)
	})
}

func generateTestObjects(count int) []postup.Object {
	cities := []string{"Oslo", "Bergen", ""}
	statuses := []string{"N", "U", "H"}

	objects := make([]postup.Object, count)
	for i := range objects {
		obj := postup.Object{
			"recipientId": float64(i),
			"status":      statuses[i%len(statuses)],
			"channel":     "E",
			"dateJoined":  time.Now().AddDate(0, 0, -i),
			"brandIds":    []any{float64(i % 4), float64(i%5 + 1)},
		}
		if city := cities[i%len(cities)]; city != "" {
			obj["demographics"] = map[string]string{"city": city}
		}
		objects[i] = obj
	}
	return objects
}
