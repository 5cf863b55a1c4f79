package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		expected    Mode
		expectError bool
	}{
		{"text", Text, false},
		{"", Text, false},
		{"json", JSON, false},
		{"jsonl", JSONL, false},
		{"ndjson", JSONL, false},
		{"agent", Text, true},
		{"JSON", Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := Parse(tt.input)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("Expected mode %v, got %v", tt.expected, mode)
			}
			if mode.String() != strings.Replace(tt.input, "ndjson", "jsonl", 1) && tt.input != "" {
				t.Errorf("String() = %q for input %q", mode.String(), tt.input)
			}
		})
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if ModeFromContext(ctx) != Text || IsJSON(ctx) || IsCompact(ctx) || GetQuery(ctx) != "" || GetTemplate(ctx) != "" {
		t.Fatal("expected zero values on a bare context")
	}

	ctx = WithMode(ctx, JSONL)
	ctx = WithCompact(ctx, true)
	ctx = WithQuery(ctx, ".items")
	ctx = WithTemplate(ctx, "{{.name}}")

	if !IsJSON(ctx) {
		t.Error("JSONL should count as structured output")
	}
	if !IsCompact(ctx) {
		t.Error("expected compact")
	}
	if GetQuery(ctx) != ".items" || GetTemplate(ctx) != "{{.name}}" {
		t.Error("query or template not stored")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"chat_id": "oc_1"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"chat_id\": \"oc_1\"\n}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	if err := WriteJSONMaybeCompact(&buf, map[string]string{"chat_id": "oc_1"}, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"chat_id\":\"oc_1\"}\n" {
		t.Errorf("unexpected compact output %q", buf.String())
	}
}

type chat struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

func TestWriteJSONLines(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "slice",
			in:   []chat{{"oc_1", "a"}, {"oc_2", "b"}},
			want: "{\"chat_id\":\"oc_1\",\"name\":\"a\"}\n{\"chat_id\":\"oc_2\",\"name\":\"b\"}\n",
		},
		{
			name: "page",
			in:   map[string]any{"items": []chat{{"oc_3", "c"}}, "has_more": false},
			want: "{\"chat_id\":\"oc_3\",\"name\":\"c\"}\n",
		},
		{
			name: "nil slice",
			in:   []chat(nil),
			want: "",
		},
		{
			name: "single object",
			in:   chat{"oc_4", "d"},
			want: "{\"chat_id\":\"oc_4\",\"name\":\"d\"}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSONLines(&buf, tt.in); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNormalizeJSONOutput(t *testing.T) {
	wrapped, ok := normalizeJSONOutput([]chat(nil)).(map[string]any)
	if !ok {
		t.Fatal("nil slice should be wrapped")
	}
	data, _ := json.Marshal(wrapped)
	if string(data) != `{"items":[]}` {
		t.Errorf("nil slice encoded as %s", data)
	}

	ptr := &[]int{1}
	if _, ok := normalizeJSONOutput(ptr).(map[string]any); !ok {
		t.Error("pointer to slice should be wrapped")
	}

	raw := json.RawMessage(`[1,2]`)
	if _, ok := normalizeJSONOutput(raw).(json.RawMessage); !ok {
		t.Error("raw JSON should pass through")
	}
	if normalizeJSONOutput(nil) != nil {
		t.Error("nil should stay nil")
	}
	m := map[string]any{"code": 0}
	if got, ok := normalizeJSONOutput(m).(map[string]any); !ok || got["code"] != 0 {
		t.Error("maps should pass through")
	}
}

func TestApplyQuery(t *testing.T) {
	got, err := ApplyQuery([]chat{{"oc_1", "a"}, {"oc_2", "b"}}, ".items[1].name")
	if err != nil {
		t.Fatal(err)
	}
	if got != "b" {
		t.Errorf("got %v", got)
	}

	// Without a query the value is still converted to plain JSON values.
	plain, err := ApplyQuery(chat{"oc_1", "a"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := plain.(map[string]any); !ok || m["chat_id"] != "oc_1" {
		t.Errorf("got %#v", plain)
	}

	if _, err := ApplyQuery(chat{}, ".[[["); err == nil {
		t.Error("expected error for invalid query")
	}
}

func TestWriteJSONFiltered(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONFiltered(&buf, []chat{{"oc_1", "a"}}, ".items[0].chat_id", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\"oc_1\"\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteJSONFiltered(&buf, []chat{}, "", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"items\":[]}\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteTemplate(t *testing.T) {
	data := map[string]any{"name": "release", "create_time": "1700000000000", "members": []any{"a", "b"}}

	tests := []struct {
		name    string
		tmpl    string
		want    string
		wantErr string
	}{
		{name: "field", tmpl: "{{.name}}", want: "release"},
		{name: "missing key", tmpl: "[{{.nope}}]", want: "[<no value>]"},
		{name: "range", tmpl: "{{range .members}}{{.}};{{end}}", want: "a;b;"},
		{name: "time", tmpl: "{{time .create_time}}", want: "2023-11-14 22:13:20"},
		{name: "json", tmpl: "{{json .members}}", want: "[\n  \"a\",\n  \"b\"\n]\n"},
		{name: "parse error", tmpl: "{{.name", wantErr: "invalid template"},
		{name: "exec error", tmpl: "{{index .name 50}}", wantErr: "template execution error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteTemplate(&buf, data, tt.tmpl)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
