package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/postup/postup"
)

const brandsJSON = `[
	{"brandId": 1, "title": "Main", "active": true},
	{"brandId": 2, "title": "Outlet", "active": false}
]`

type captured struct {
	mu     sync.Mutex
	method string
	path   string
	query  string
	body   map[string]any
}

// newAPI serves canned responses keyed by "METHOD /path" and records the
// last request
func newAPI(t *testing.T, routes map[string]string) (*httptest.Server, *captured) {
	t.Helper()
	last := &captured{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.mu.Lock()
		defer last.mu.Unlock()

		last.method = r.Method
		last.path = r.URL.Path
		last.query = r.URL.RawQuery
		last.body = nil
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &last.body)
		}

		key := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			if resp, ok := routes[key+"?"+r.URL.RawQuery]; ok {
				fmt.Fprint(w, resp)
				return
			}
		}
		resp, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": "not found"}`)
			return
		}
		fmt.Fprint(w, resp)
	}))
	t.Cleanup(server.Close)
	return server, last
}

func writeConfig(t *testing.T, url, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`api:
  url: %s
  username: user
  password: secret
  timeout: 2s
logging:
  level: error
  format: json
%s`, url, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// resetFlags restores every flag to its default between executions
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func decodeList(t *testing.T, out string) []map[string]any {
	t.Helper()
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	return items
}

func TestVersionCommand(t *testing.T) {
	oldVersion, oldBuild := version, buildTime
	t.Cleanup(func() { SetVersion(oldVersion, oldBuild) })

	SetVersion("1.2.3", "2024-01-01")
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "postup v1.2.3 (built 2024-01-01")

	SetVersion("dev", "unknown")
	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "postup dev (built unknown")
}

func TestCurrentVersion(t *testing.T) {
	oldVersion := version
	t.Cleanup(func() { version = oldVersion })

	version = "v1.4.0"
	v, err := currentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v.String())

	version = "dev"
	_, err = currentVersion()
	assert.Error(t, err)
}

func TestBrandsList(t *testing.T) {
	server, last := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "brands", "list", "--config", configPath)
	require.NoError(t, err)

	brands := decodeList(t, out)
	require.Len(t, brands, 2)
	assert.Equal(t, "Main", brands[0]["title"])
	assert.Equal(t, http.MethodGet, last.method)
	assert.Equal(t, "/brand/", last.path)
}

func TestFilterFlag(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "brands", "list", "--config", configPath, "--filter", `brandId == 2`)
	require.NoError(t, err)

	brands := decodeList(t, out)
	require.Len(t, brands, 1)
	assert.Equal(t, "Outlet", brands[0]["title"])

	out, err = execute(t, "brands", "list", "--config", configPath, "--filter", `title == "none"`)
	require.NoError(t, err)
	assert.Empty(t, decodeList(t, out))

	_, err = execute(t, "brands", "list", "--config", configPath, "--filter", `title ==`)
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, `filter:
  presets:
    active:
      expression: active == true
      description: Active brands
`)

	out, err := execute(t, "brands", "list", "--config", configPath, "--preset", "active")
	require.NoError(t, err)
	brands := decodeList(t, out)
	require.Len(t, brands, 1)
	assert.Equal(t, "Main", brands[0]["title"])

	_, err = execute(t, "brands", "list", "--config", configPath, "--preset", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preset 'missing' not found")
}

func TestPresetsCommand(t *testing.T) {
	configPath := writeConfig(t, "http://127.0.0.1:1", `filter:
  presets:
    subscribed:
      expression: status == "N"
      description: Subscribed recipients
    oslo:
      expression: demographic("city") == "Oslo"
`)

	out, err := execute(t, "presets", "--config", configPath)
	require.NoError(t, err)
	presets := decodeList(t, out)
	require.Len(t, presets, 2)
	assert.Equal(t, "oslo", presets[0]["name"])
	assert.NotContains(t, presets[0], "description")
	assert.Equal(t, "subscribed", presets[1]["name"])
	assert.Equal(t, `status == "N"`, presets[1]["expression"])
	assert.Equal(t, "Subscribed recipients", presets[1]["description"])

	broken := writeConfig(t, "http://127.0.0.1:1", `filter:
  presets:
    broken:
      expression: status ==
`)
	_, err = execute(t, "presets", "--config", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter preset")
}

func TestDefaultFilterOnlyAppliesToListings(t *testing.T) {
	server, _ := newAPI(t, map[string]string{
		"GET /brand/":           brandsJSON,
		"GET /brand/?brandId=2": `{"brandId": 2, "title": "Outlet", "active": false}`,
	})
	configPath := writeConfig(t, server.URL, `filter:
  default: brandId == 1
`)

	out, err := execute(t, "brands", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Len(t, decodeList(t, out), 1)

	out, err = execute(t, "brands", "get", "2", "--config", configPath)
	require.NoError(t, err)
	var brand map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &brand))
	assert.Equal(t, "Outlet", brand["title"])
}

func TestTableOutput(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "brands", "list", "--config", configPath, "-o", "table")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"active", "brandId", "title"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"true", "1", "Main"}, strings.Fields(lines[1]))

	_, err = execute(t, "brands", "list", "--config", configPath, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestStatusCommand(t *testing.T) {
	server, _ := newAPI(t, map[string]string{
		"GET /brand/":       brandsJSON,
		"GET /list/":        `[{"listId": 1, "title": "News"}]`,
		"GET /campaign/":    `[]`,
		"GET /customfield/": `[{"customFieldId": 1}, {"customFieldId": 2}, {"customFieldId": 3}]`,
	})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "status", "--config", configPath)
	require.NoError(t, err)

	var status accountStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, accountStatus{Brands: 2, Lists: 1, Campaigns: 0, CustomFields: 3}, status)
}

func TestStatusCommand_Failure(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")

	_, err := execute(t, "status", "--config", configPath)
	require.Error(t, err)
	assert.True(t, postup.IsNotFound(err))
}

func TestTestCommand(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "test", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Connection successful")

	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "unauthorized"}`)
	}))
	t.Cleanup(denied.Close)

	_, err = execute(t, "test", "--config", writeConfig(t, denied.URL, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials rejected")
}

func TestRequestCommand(t *testing.T) {
	server, last := newAPI(t, map[string]string{
		"POST /recipient/": `{"recipientId": 9, "address": "jane@example.com", "demographics": ["city=Oslo"]}`,
	})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "request", "post", "recipient/", "--config", configPath,
		"--data", `{"address": "jane@example.com", "externalId": null}`)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, map[string]any{"address": "jane@example.com"}, last.body)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, map[string]any{"city": "Oslo"}, result["demographics"])

	_, err = execute(t, "request", "PATCH", "/recipient/", "--config", configPath)
	assert.Error(t, err)

	_, err = execute(t, "request", "POST", "/recipient/", "--config", configPath, "--data", `{"address":`)
	assert.Error(t, err)
}

func TestRecipientsCreate(t *testing.T) {
	server, last := newAPI(t, map[string]string{
		"POST /recipient/": `{"recipientId": 5, "address": "jane@example.com", "externalId": "x1", "channel": "E"}`,
	})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "recipients", "create", "--config", configPath,
		"--address", "jane@example.com", "--external-id", "x1",
		"--demographic", "city=Oslo", "--demographic", "age=42")
	require.NoError(t, err)

	assert.Equal(t, "E", last.body["channel"])
	assert.Equal(t, []any{"age=42", "city=Oslo"}, last.body["demographics"])

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.EqualValues(t, 5, created["recipientId"])
}

func TestRecipientsGet_KeepsDates(t *testing.T) {
	server, _ := newAPI(t, map[string]string{
		"GET /recipient/1": `{"recipientId": 1, "address": "a@b.c", "status": "N",
			"dateJoined": "2020-01-02T03:04:05Z", "dateUnsub": null, "demographics": ["city=Oslo"]}`,
	})
	configPath := writeConfig(t, server.URL, "")

	out, err := execute(t, "recipients", "get", "1", "--config", configPath, "-o", "json")
	require.NoError(t, err)

	var recipient map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recipient), out)
	assert.Equal(t, "2020-01-02T03:04:05Z", recipient["dateJoined"])
	assert.NotContains(t, recipient, "dateUnsub")
	assert.Equal(t, map[string]any{"city": "Oslo"}, recipient["demographics"])

	out, err = execute(t, "recipients", "get", "1", "--config", configPath, "--filter", `daysSince(dateJoined) > 30`)
	require.NoError(t, err)
	matches := decodeList(t, out)
	require.Len(t, matches, 1)
	assert.EqualValues(t, 1, matches[0]["recipientId"])

	out, err = execute(t, "recipients", "get", "1", "--config", configPath, "--filter", `demographic("city") == "Oslo"`)
	require.NoError(t, err)
	assert.Len(t, decodeList(t, out), 1)
}

func TestListsSubscribers(t *testing.T) {
	server, last := newAPI(t, map[string]string{
		"GET /listsubscription/": `[{"recipientId": 1, "listId": 3, "status": "NORMAL"}]`,
	})
	configPath := writeConfig(t, server.URL, "")

	_, err := execute(t, "lists", "subscribers", "3", "--config", configPath,
		"--limit", "100", "--last-recipient", "50", "--last-list", "3")
	require.NoError(t, err)
	assert.Equal(t, "lastlistid=3&lastrecipid=50&limit=100&listid=3", last.query)

	_, err = execute(t, "lists", "subscribers", "abc", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid list id")
}

func TestImportsUpload(t *testing.T) {
	server, last := newAPI(t, map[string]string{
		"POST /import/": `{"importId": 11, "importTemplateId": 2, "status": "OPEN"}`,
	})
	configPath := writeConfig(t, server.URL, "")

	data := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(data, []byte("a@example.com,Oslo\r\n\nb@example.com,Bergen\n"), 0o600))

	_, err := execute(t, "imports", "upload", "2", "--config", configPath, "--file", data)
	require.NoError(t, err)
	assert.Equal(t, []any{"a@example.com,Oslo", "b@example.com,Bergen"}, last.body["data"])
	assert.EqualValues(t, 2, last.body["importTemplateId"])
}

func TestMetricsReport(t *testing.T) {
	server, _ := newAPI(t, map[string]string{"GET /brand/": brandsJSON})
	configPath := writeConfig(t, server.URL, "")
	t.Setenv("POSTUP_API_METRICS", "true")

	_, err := execute(t, "brands", "list", "--config", configPath)
	require.NoError(t, err)
	require.NotNil(t, registry)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "postup_requests_total")
}

func TestFormatCell(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(1000000), "1000000"},
		{1.5, "1.5"},
		{true, "true"},
		{when, "2024-01-02T03:04:05Z"},
		{map[string]string{"city": "Oslo"}, `{"city":"Oslo"}`},
		{[]any{float64(1), float64(2)}, "[1,2]"},
		{int64(7), "7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeTable(&out, nil))
	assert.Equal(t, "No results\n", out.String())
}

func TestSplitRows(t *testing.T) {
	rows := splitRows([]byte("one\r\n\n  \ntwo\nthree"))
	assert.Equal(t, []string{"one", "two", "three"}, rows)
	assert.Empty(t, splitRows(nil))
}
