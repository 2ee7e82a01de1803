package postup

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// BuildQuery encodes params into a query string including the leading "?".
// Absent values are skipped; an empty result yields "".
func BuildQuery(params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		if isAbsent(value) {
			continue
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
			value = rv.Interface()
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := 0; i < rv.Len(); i++ {
				values.Add(key, queryValue(rv.Index(i).Interface()))
			}
			continue
		}
		values.Set(key, queryValue(value))
	}

	if len(values) == 0 {
		return ""
	}
	// Encode sorts by key
	return "?" + values.Encode()
}

func queryValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
