package filter

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/postup/postup"
)

// idKeys are checked in order to name an object in evaluation errors
var idKeys = []string{
	"recipientId", "mailingId", "listId", "campaignId", "brandId",
	"sendTemplateId", "importId", "importTemplateId", "customFieldId",
}

var _ CachingCompiler = (*exprCompiler)(nil)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
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
	cache       *lruCache
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

	// Object fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
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

// Match reports whether obj satisfies the filter. Objects that fail to
// evaluate do not match.
func (f *exprFilter) Match(obj postup.Object) bool {
	ok, err := f.Evaluate(obj)
	return err == nil && ok
}

// Evaluate runs the filter against obj
func (f *exprFilter) Evaluate(obj postup.Object) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(obj))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ObjectID:   objectID(obj),
			Reason:     "failed to run expression",
			Err:        err,
		}
	}

	// AsBool guarantees the result type
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

// createHelperFunctions creates the helper functions used during compilation.
// Object bound helpers are registered with empty data so their signatures
// are known to the type checker.
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 24)
	addHelperFunctions(funcs)
	addObjectHelpers(funcs, nil)
	return funcs
}

// addHelperFunctions adds the object independent helpers
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(v any) int {
		t, ok := toTime(v)
		if !ok {
			return 0
		}
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["parseDate"] = func(s string) time.Time {
		t, _ := postup.ParseTimestamp(s)
		return t
	}
	// String helpers. contains, startsWith and endsWith are expr operators,
	// these variants ignore case.
	env["icontains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["istartsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["iendsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}

// addObjectHelpers adds the helpers that read from obj
func addObjectHelpers(env map[string]any, obj postup.Object) {
	demographics := demographicsOf(obj)
	env["hasDemographic"] = func(key string) bool {
		_, ok := demographics[key]
		return ok
	}
	env["demographic"] = func(key string) string {
		return demographics[key]
	}

	brands := brandIDsOf(obj)
	env["hasBrand"] = func(id int) bool {
		_, ok := brands[int64(id)]
		return ok
	}
}

// createRuntimeEnvironment exposes every top level field of obj as a
// variable, the whole object as Object, and the helper functions
func createRuntimeEnvironment(obj postup.Object) map[string]any {
	env := make(map[string]any, len(obj)+24)
	maps.Copy(env, obj)
	env["Object"] = obj

	addHelperFunctions(env)
	addObjectHelpers(env, obj)

	return env
}

func demographicsOf(obj postup.Object) map[string]string {
	switch v := obj["demographics"].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for key, val := range v {
			out[key] = fmt.Sprint(val)
		}
		return out
	case []any:
		pairs := make([]string, 0, len(v))
		for _, item := range v {
			pairs = append(pairs, fmt.Sprint(item))
		}
		return postup.DemographicsToObject(pairs)
	}
	return nil
}

func brandIDsOf(obj postup.Object) map[int64]struct{} {
	ids := make(map[int64]struct{})
	items, _ := obj["brandIds"].([]any)
	for _, item := range items {
		if id, ok := toInt64(item); ok {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		parsed, err := postup.ParseTimestamp(t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	}
	return 0, false
}

func objectID(obj postup.Object) string {
	for _, key := range idKeys {
		if v, ok := obj[key]; ok && v != nil {
			return key + "=" + fmt.Sprint(v)
		}
	}
	return ""
}
