package outfmt

import (
	"encoding/json"
	"reflect"
)

// normalizeJSONOutput wraps bare lists as {"items": [...]}, the same shape
// the platform uses for paged results, so jq expressions like .items[]
// work on every list command.
func normalizeJSONOutput(v any) any {
	if v == nil {
		return v
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		items := rv.Interface()
		// A nil slice would encode as null and break .items[].
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			items = []any{}
		}
		return map[string]any{"items": items}
	default:
		return v
	}
}

// listItems returns the elements of a list value or of the "items" field of
// a page, as generic values.
func listItems(v any) ([]any, bool) {
	data, err := json.Marshal(normalizeJSONOutput(v))
	if err != nil {
		return nil, false
	}
	var page struct {
		Items *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &page); err != nil || page.Items == nil {
		return nil, false
	}
	out := make([]any, 0, len(*page.Items))
	for _, raw := range *page.Items {
		out = append(out, raw)
	}
	return out, true
}
