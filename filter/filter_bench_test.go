package filter

import (
	"context"
	"testing"
)

func BenchmarkCompileFilter(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `status == "N"`},
		{"complex", `status == "N" and hasBrand(2) and demographic("city") == "Oslo" and daysSince(dateJoined) > 30`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			compiler := NewExprCompiler()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := compiler.Compile(tc.expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluate(b *testing.B) {
	objects := generateTestObjects(5000)
	filter, err := Compile(`status == "N" and demographic("city") == "Oslo"`)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			matchAll(filter, objects)
		}
	})

	b.Run("concurrent", func(b *testing.B) {
		ctx := context.Background()
		evaluator := NewConcurrentEvaluator()
		defer evaluator.Stop(ctx)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := evaluator.Evaluate(ctx, filter, objects); err != nil {
				b.Fatal(err)
			}
		}
	})
}
