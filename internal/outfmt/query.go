package outfmt

import (
	"encoding/json"
	"io"

	"github.com/larkkit/lark-cli/internal/filter"
)

// ApplyQuery normalizes v and applies a jq expression to it.
func ApplyQuery(v any, query string) (any, error) {
	v = normalizeJSONOutput(v)
	// Round-trip through JSON so jq sees plain maps and slices with the
	// API field names instead of Go structs.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if query == "" {
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return filter.ApplyFromJSON(data, query)
}

// WriteJSONFiltered writes JSON with optional jq filtering.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	if query == "" {
		return WriteJSONMaybeCompact(w, normalizeJSONOutput(v), compact)
	}
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}
