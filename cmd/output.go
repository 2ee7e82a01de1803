package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/filter"
	"github.com/s0up4200/postup/postup"
)

// listing marks commands whose results the default filter applies to
const listing = "listing"

// render filters result with the active expression and prints it in the
// selected output format
func render(cmd *cobra.Command, result any) error {
	active, err := activeFilter(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if active == nil && outputFormat == "json" {
		return writeJSON(out, result)
	}

	objects, err := filter.Objects(result)
	if err != nil {
		if active != nil {
			return fmt.Errorf("cannot filter result: %w", err)
		}
		// scalar results have no columns
		return writeJSON(out, result)
	}

	if active != nil {
		total := len(objects)
		objects, err = filters.Evaluate(cmd.Context(), active, objects)
		if err != nil {
			return fmt.Errorf("failed to apply filter: %w", err)
		}
		logger.Debug().
			Str("filter", active.Expression()).
			Int("total", total).
			Int("matches", len(objects)).
			Msg("Applied filter")
	}

	if outputFormat == "table" {
		return writeTable(out, objects)
	}
	if objects == nil {
		objects = []postup.Object{}
	}
	return writeJSON(out, objects)
}

// activeFilter determines the filter to apply.
// Priority: command line filter > preset > default (listing commands only)
func activeFilter(cmd *cobra.Command) (filter.CompiledFilter, error) {
	if filterExpr != "" {
		return filters.Compile(filterExpr)
	}

	if preset != "" {
		if f, ok := filters.Lookup(preset); ok {
			return f, nil
		}
		return nil, fmt.Errorf("preset '%s' not found in config", preset)
	}

	if cfg != nil && cfg.Filter.DefaultExpression != "" && cmd.Annotations[listing] == "true" {
		return filters.Compile(cfg.Filter.DefaultExpression)
	}

	return nil, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeTable prints objects as aligned columns, one per field seen in any
// object
func writeTable(w io.Writer, objects []postup.Object) error {
	if len(objects) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	seen := make(map[string]struct{})
	for _, obj := range objects {
		for key := range obj {
			seen[key] = struct{}{}
		}
	}
	columns := slices.Sorted(maps.Keys(seen))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, obj := range objects {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = formatCell(obj[column])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return postup.FormatTimestamp(val)
	case map[string]any, map[string]string, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}
