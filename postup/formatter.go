package postup

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Object is a normalized JSON object returned by the request pipeline.
type Object = map[string]any

// timestampLayouts are tried in order when parsing dateJoined and dateUnsub.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// wireTimeLayout is the layout PostUp expects for outbound timestamps.
const wireTimeLayout = "2006-01-02T15:04:05Z"

// DemographicsToObject converts "key=value" pairs into a map. Only the first
// "=" separates key from value, entries with an empty key are dropped and the
// last duplicate wins.
func DemographicsToObject(pairs []string) map[string]string {
	formatted := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		formatted[key] = value
	}
	return formatted
}

// DemographicsToString converts a demographics map into "key=value" pairs,
// ordered by key.
func DemographicsToString(demographics map[string]string) []string {
	keys := slices.Sorted(maps.Keys(demographics))
	formatted := make([]string, 0, len(keys))
	for _, key := range keys {
		formatted = append(formatted, key+"="+demographics[key])
	}
	return formatted
}

// ResponseToObject normalizes a decoded JSON object. Fields are converted by
// name at any depth:
//
//   - demographics: "k=v" pairs become a map[string]string
//   - dateJoined, dateUnsub: timestamps become time.Time
//   - blockDomains: a space-delimited string becomes []string
//   - brandIds: always a []any, even when sent as a keyed object
//
// Nested objects and arrays are normalized recursively.
func ResponseToObject(obj map[string]any) (Object, error) {
	formatted := make(Object, len(obj))
	for key, value := range obj {
		v, err := normalizeField(key, value)
		if err != nil {
			return nil, err
		}
		formatted[key] = v
	}
	return formatted, nil
}

// Normalize applies ResponseToObject to any decoded JSON value.
func Normalize(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return ResponseToObject(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return items, nil
	default:
		return value, nil
	}
}

func normalizeField(key string, value any) (any, error) {
	switch key {
	case "demographics":
		return demographicsValue(value), nil
	case "dateJoined", "dateUnsub":
		if s, ok := value.(string); ok {
			if s == "" {
				return nil, nil
			}
			t, err := ParseTimestamp(s)
			if err != nil {
				return nil, &ValidationError{Field: key, Kind: KindDate, Message: err.Error()}
			}
			return t, nil
		}
	case "blockDomains":
		if s, ok := value.(string); ok {
			return strings.Fields(s), nil
		}
	case "brandIds":
		n, err := Normalize(value)
		if err != nil {
			return nil, err
		}
		if obj, ok := n.(Object); ok {
			return objectToSlice(obj), nil
		}
		return n, nil
	}
	return Normalize(value)
}

func demographicsValue(value any) any {
	switch v := value.(type) {
	case []string:
		return DemographicsToObject(v)
	case []any:
		pairs := make([]string, 0, len(v))
		for _, item := range v {
			pairs = append(pairs, fmt.Sprint(item))
		}
		return DemographicsToObject(pairs)
	case map[string]any:
		formatted := make(map[string]string, len(v))
		for key, val := range v {
			if key == "" {
				continue
			}
			formatted[key] = fmt.Sprint(val)
		}
		return formatted
	default:
		return value
	}
}

// objectToSlice orders a keyed object's values by key, numerically when
// every key is an integer.
func objectToSlice(obj Object) []any {
	keys := slices.Collect(maps.Keys(obj))
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})

	items := make([]any, len(keys))
	for i, key := range keys {
		items[i] = obj[key]
	}
	return items
}

// ParseTimestamp parses a PostUp timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders t in the layout PostUp expects, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}
