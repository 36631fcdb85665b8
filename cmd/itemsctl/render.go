package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatTable:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected json or table)", format)
	}
}

// valueColumn holds entries that are not JSON objects in table output.
const valueColumn = "value"

// render prints a decoded response body. JSON output echoes it unchanged.
func render(w io.Writer, format string, v any) error {
	if format == formatTable {
		return renderTable(w, tableRows(v))
	}
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tableRows turns an array into one row per entry and any other value into a
// single row. Entries that are not objects land in the value column.
func tableRows(v any) []map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, e := range t {
			rows = append(rows, asRow(e))
		}
		return rows
	default:
		return []map[string]any{asRow(t)}
	}
}

func asRow(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{valueColumn: v}
}

// renderTable prints one row per entry over the union of their keys, "id" first.
func renderTable(w io.Writer, list []map[string]any) error {
	cols := columns(list)
	rows := make([][]string, 0, len(list))
	for _, it := range list {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = cell(it, col)
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(w)
	table.Header(cols)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return table.Render()
}

func columns(list []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, it := range list {
		for k := range it {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == "id" || cols[j] == "id" {
			return cols[i] == "id"
		}
		return cols[i] < cols[j]
	})
	return cols
}

func cell(it map[string]any, col string) string {
	v, ok := it[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
