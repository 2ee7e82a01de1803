package postup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemographicsToObject(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected map[string]string
	}{
		{
			name:     "simple pairs",
			input:    []string{"city=Oslo", "age=42"},
			expected: map[string]string{"city": "Oslo", "age": "42"},
		},
		{
			name:     "splits on first equals only",
			input:    []string{"formula=a=b"},
			expected: map[string]string{"formula": "a=b"},
		},
		{
			name:     "missing equals gives empty value",
			input:    []string{"flag"},
			expected: map[string]string{"flag": ""},
		},
		{
			name:     "empty key dropped",
			input:    []string{"=orphan", "ok=1"},
			expected: map[string]string{"ok": "1"},
		},
		{
			name:     "last duplicate wins",
			input:    []string{"k=1", "k=2"},
			expected: map[string]string{"k": "2"},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DemographicsToObject(tt.input))
		})
	}
}

func TestDemographicsToString(t *testing.T) {
	got := DemographicsToString(map[string]string{"zip": "0150", "city": "Oslo", "empty": ""})
	assert.Equal(t, []string{"city=Oslo", "empty=", "zip=0150"}, got)

	assert.Empty(t, DemographicsToString(nil))
}

func TestDemographicsRoundTrip(t *testing.T) {
	original := map[string]string{"city": "Oslo", "note": "a=b", "blank": ""}
	assert.Equal(t, original, DemographicsToObject(DemographicsToString(original)))
}

func TestResponseToObject_SpecialFields(t *testing.T) {
	input := map[string]any{
		"recipientId":  float64(7),
		"demographics": []any{"city=Oslo", "age=42"},
		"dateJoined":   "2024-03-01T10:15:00Z",
		"dateUnsub":    nil,
		"blockDomains": "gmail.com  yahoo.com",
		"brandIds":     map[string]any{"10": float64(3), "2": float64(1), "1": float64(9)},
	}

	obj, err := ResponseToObject(input)
	require.NoError(t, err)

	assert.Equal(t, float64(7), obj["recipientId"])
	assert.Equal(t, map[string]string{"city": "Oslo", "age": "42"}, obj["demographics"])
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), obj["dateJoined"])
	assert.Nil(t, obj["dateUnsub"])
	assert.Equal(t, []string{"gmail.com", "yahoo.com"}, obj["blockDomains"])
	assert.Equal(t, []any{float64(9), float64(1), float64(3)}, obj["brandIds"])
}

func TestResponseToObject_Nested(t *testing.T) {
	input := map[string]any{
		"recipient": map[string]any{
			"demographics": []any{"tier=gold"},
			"history": []any{
				map[string]any{"dateJoined": "2023-01-02"},
			},
		},
	}

	obj, err := ResponseToObject(input)
	require.NoError(t, err)

	recipient, ok := obj["recipient"].(Object)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"tier": "gold"}, recipient["demographics"])

	history, ok := recipient["history"].([]any)
	require.True(t, ok)
	entry, ok := history[0].(Object)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), entry["dateJoined"])
}

func TestResponseToObject_BrandIDsList(t *testing.T) {
	obj, err := ResponseToObject(map[string]any{"brandIds": []any{float64(1), float64(2)}})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, obj["brandIds"])
}

func TestResponseToObject_InvalidDate(t *testing.T) {
	_, err := ResponseToObject(map[string]any{"dateJoined": "yesterday"})
	vErr := validationKind(t, err)
	assert.Equal(t, KindDate, vErr.Kind)
	assert.Equal(t, "dateJoined", vErr.Field)
}

func TestResponseToObject_EmptyDate(t *testing.T) {
	obj, err := ResponseToObject(map[string]any{"dateJoined": "2024-01-02", "dateUnsub": ""})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), obj["dateJoined"])
	assert.Nil(t, obj["dateUnsub"])
}

func TestResponseToObject_PassThrough(t *testing.T) {
	input := map[string]any{"title": "Weekly", "count": float64(3), "active": true, "none": nil}
	obj, err := ResponseToObject(input)
	require.NoError(t, err)
	assert.Equal(t, Object(input), obj)
}

func TestNormalize_Array(t *testing.T) {
	out, err := Normalize([]any{
		map[string]any{"blockDomains": "a.com"},
		"scalar",
	})
	require.NoError(t, err)

	items, ok := out.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, Object{"blockDomains": []string{"a.com"}}, items[0])
	assert.Equal(t, "scalar", items[1])
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-03-01T10:15:00Z", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-03-01T10:15:00", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-03-01 10:15:00", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("03/01/2024")
	assert.Error(t, err)
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 1, 11, 15, 0, 0, loc)
	assert.Equal(t, "2024-03-01T10:15:00Z", FormatTimestamp(ts))
}
