// Package filter runs jq expressions over command output.
package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/gojq"
)

// NormalizeExpression fixes shell-escaped operators in jq expressions.
// Zsh escapes ! to \! even in single quotes, breaking operators like !=.
func NormalizeExpression(expr string) string {
	return strings.ReplaceAll(expr, `\!`, `!`)
}

// Compile parses and compiles expression with the extra functions
// available to --jq:
//
//	ms_to_iso   converts a millisecond epoch (number or numeric string,
//	            as the platform returns create_time) to RFC 3339 UTC.
//	s_to_iso    does the same for second epochs.
func Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(NormalizeExpression(expression))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	code, err := gojq.Compile(query,
		gojq.WithFunction("ms_to_iso", 0, 0, epochFunc(time.UnixMilli)),
		gojq.WithFunction("s_to_iso", 0, 0, epochFunc(func(s int64) time.Time { return time.Unix(s, 0) })),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return code, nil
}

func epochFunc(conv func(int64) time.Time) func(any, []any) any {
	return func(v any, _ []any) any {
		var n int64
		switch x := v.(type) {
		case int:
			n = int64(x)
		case float64:
			n = int64(x)
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return fmt.Errorf("epoch: cannot parse %q", x)
			}
			n = parsed
		case nil:
			return nil
		default:
			return fmt.Errorf("epoch: unsupported input %T", v)
		}
		return conv(n).UTC().Format(time.RFC3339)
	}
}

// Apply applies a jq expression to data. A single result is returned as is;
// several results are returned as a slice.
func Apply(data any, expression string) (any, error) {
	if expression == "" {
		return data, nil
	}
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	results, err := run(code, data)
	if err != nil {
		// List output is wrapped as {"items": [...]}; let ".[]" style
		// queries address the items directly.
		if items, ok := itemsFallback(data, expression, err); ok {
			if retry, rerr := run(code, items); rerr == nil {
				return collapse(retry), nil
			}
		}
		return nil, err
	}
	return collapse(results), nil
}

func run(code *gojq.Code, data any) ([]any, error) {
	iter := code.Run(data)

	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func collapse(results []any) any {
	if len(results) == 1 {
		return results[0]
	}
	return results
}

func itemsFallback(data any, expression string, runErr error) (any, bool) {
	if !looksLikeRootArrayQuery(expression) {
		return nil, false
	}
	if !strings.Contains(runErr.Error(), "expected an object but got: array") &&
		!strings.Contains(runErr.Error(), "cannot iterate over") {
		return nil, false
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := m["items"].([]any)
	if !ok {
		return nil, false
	}
	return items, true
}

func looksLikeRootArrayQuery(expression string) bool {
	expr := strings.TrimSpace(expression)
	return strings.HasPrefix(expr, ".[") || strings.HasPrefix(expr, "[.[]") || strings.HasPrefix(expr, "(.[]")
}

// ApplyFromJSON unmarshals jsonData and applies expression to it.
func ApplyFromJSON(jsonData []byte, expression string) (any, error) {
	var data any
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(data, expression)
}

// ApplyToJSON applies expression to jsonData and returns pretty-printed JSON.
func ApplyToJSON(jsonData []byte, expression string) ([]byte, error) {
	if expression == "" {
		return jsonData, nil
	}
	result, err := ApplyFromJSON(jsonData, expression)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(result, "", "  ")
}
