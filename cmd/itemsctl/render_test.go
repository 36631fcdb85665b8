package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestColumnsPutIDFirst(t *testing.T) {
	got := columns([]map[string]any{
		{"name": "a", "id": 1},
		{"price": 2, "id": 2, "color": "red"},
	})
	want := []string{"id", "color", "name", "price"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCellFormatting(t *testing.T) {
	it := map[string]any{
		"s":      "text",
		"n":      1.5,
		"big":    json.Number("9007199254740993"),
		"nested": map[string]any{"k": true},
		"null":   nil,
	}
	cases := map[string]string{
		"s":       "text",
		"n":       "1.5",
		"big":     "9007199254740993",
		"nested":  `{"k":true}`,
		"null":    "",
		"missing": "",
	}
	for col, want := range cases {
		if got := cell(it, col); got != want {
			t.Fatalf("cell(%s) = %q, want %q", col, got, want)
		}
	}
}

func TestTableRowsWrapsNonObjects(t *testing.T) {
	got := tableRows([]any{map[string]any{"id": 1}, "a", nil})
	want := []map[string]any{{"id": 1}, {valueColumn: "a"}, {valueColumn: nil}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	if got := tableRows("created"); !reflect.DeepEqual(got, []map[string]any{{valueColumn: "created"}}) {
		t.Fatalf("unexpected scalar rows %#v", got)
	}
	if got := tableRows(nil); got != nil {
		t.Fatalf("expected no rows for null, got %#v", got)
	}
}

func TestRenderJSONEchoesValue(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, formatJSON, []any{json.Number("9007199254740993"), "a", nil}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if got := compact.String(); got != `[9007199254740993,"a",null]` {
		t.Fatalf("unexpected output %s", got)
	}

	buf.Reset()
	if err := render(&buf, formatTable, []any{"a", "b"}); err != nil {
		t.Fatalf("render table: %v", err)
	}
	out := strings.ToLower(buf.String())
	for _, want := range []string{valueColumn, "a", "b"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, buf.String())
		}
	}
}
