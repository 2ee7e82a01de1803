package postup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// maxJSONDepth is the deepest nesting accepted by ValidJSON.
const maxJSONDepth = 512

// OneOf checks value against a fixed set of literals. The zero value of T
// counts as absent: it passes when required is false and fails with
// KindMissing otherwise.
func OneOf[T comparable](field string, value T, allowed []T, required bool) error {
	var zero T
	if value == zero {
		return OneOfPtr[T](field, nil, allowed, required)
	}
	return OneOfPtr(field, &value, allowed, required)
}

// OneOfPtr is OneOf for values whose zero value is meaningful; nil is absent.
func OneOfPtr[T comparable](field string, value *T, allowed []T, required bool) error {
	if value == nil {
		if !required {
			return nil
		}
		return &ValidationError{
			Field:   field,
			Kind:    KindMissing,
			Message: "missing required value, must be one of " + quoteAll(allowed),
		}
	}
	if slices.Contains(allowed, *value) {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Kind:    KindNotAllowed,
		Message: fmt.Sprintf("invalid identifier %q supplied, must be one of %s", fmt.Sprint(*value), quoteAll(allowed)),
	}
}

// TypeOf checks that the dynamic type of value, as rendered by %T, is one of
// allowed. A nil value is absent.
func TypeOf(field string, value any, allowed []string, required bool) error {
	if isAbsent(value) {
		if !required {
			return nil
		}
		return &ValidationError{
			Field:   field,
			Kind:    KindMissing,
			Message: "missing required value, must be one type of " + quoteAll(allowed),
		}
	}
	name := fmt.Sprintf("%T", value)
	if slices.Contains(allowed, name) {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Kind:    KindType,
		Message: fmt.Sprintf("invalid type %s supplied, must be one type of %s", name, quoteAll(allowed)),
	}
}

// IsDate checks that value holds a usable time. A nil pointer is absent.
func IsDate(field string, value *time.Time, required bool) error {
	if value == nil {
		if !required {
			return nil
		}
		return &ValidationError{Field: field, Kind: KindMissing, Message: "a valid date/time must be provided"}
	}
	if value.IsZero() {
		return &ValidationError{Field: field, Kind: KindDate, Message: "a valid date/time must be provided"}
	}
	return nil
}

// NotAllNull fails when every value is absent.
func NotAllNull(values ...any) error {
	for _, v := range values {
		if !isAbsent(v) {
			return nil
		}
	}
	return &ValidationError{Kind: KindNull, Message: "at least one argument required"}
}

// NoNull fails when any value is absent.
func NoNull(values ...any) error {
	for _, v := range values {
		if isAbsent(v) {
			return &ValidationError{Kind: KindNull, Message: "all parameters required"}
		}
	}
	return nil
}

// ValidJSON reports whether data holds exactly one well-formed JSON value.
// Failures are classified by JSONErrorKind.
func ValidJSON(data []byte) error {
	if !utf8.Valid(data) {
		return jsonError(JSONErrorUTF8, nil)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	complete := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !complete {
				return jsonError(JSONErrorSyntax, err)
			}
			return nil
		}
		if err != nil {
			return jsonError(classifyJSONError(err), err)
		}
		if complete {
			// Data after the top-level value
			return jsonError(JSONErrorSyntax, nil)
		}

		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
				if depth > maxJSONDepth {
					return jsonError(JSONErrorDepth, nil)
				}
			case '}', ']':
				depth--
			}
		}

		if depth == 0 {
			complete = true
		}
	}
}

func classifyJSONError(err error) JSONErrorKind {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return JSONErrorSyntax
	}

	msg := syntaxErr.Error()
	switch {
	case strings.Contains(msg, "exceeded max depth"):
		return JSONErrorDepth
	case strings.Contains(msg, "in string literal"):
		return JSONErrorCtrlChar
	case (strings.Contains(msg, "'}'") || strings.Contains(msg, "']'")) &&
		(strings.Contains(msg, "after array element") || strings.Contains(msg, "after object key:value pair")):
		return JSONErrorStateMismatch
	default:
		return JSONErrorSyntax
	}
}

func jsonError(kind JSONErrorKind, cause error) *ValidationError {
	msg := kind.String()
	if cause != nil && kind == JSONErrorSyntax && !errors.Is(cause, io.EOF) {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &ValidationError{Kind: KindJSON, JSONKind: kind, Message: msg}
}

// isAbsent reports whether v is nil or a nil pointer, map, slice or interface.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func quoteAll[T any](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return strings.Join(quoted, ", ") + "."
}
