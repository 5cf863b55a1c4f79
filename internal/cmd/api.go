package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
)

var apiTokenTypes = map[string]api.AccessTokenType{
	"tenant": api.AccessTokenTenant,
	"app":    api.AccessTokenApp,
	"user":   api.AccessTokenUser,
	"none":   api.AccessTokenNone,
}

func newAPICmd() *cobra.Command {
	var (
		method    string
		fields    []string
		rawFields []string
		body      string
		tokenType string
		include   bool
		silent    bool
	)
	cmd := &cobra.Command{
		Use:   "api <path>",
		Short: "Call any open platform endpoint",
		Long: `Call any open platform endpoint with the configured credentials.

The path is relative to the base URL and should start with /open-apis/.
Fields become the JSON body for POST, PUT and PATCH and the query string
for GET and DELETE. Token refresh, retries and rate limiting apply as for
every other command.`,
		Example: `  lark api /open-apis/im/v1/chats -f page_size=5
  lark api /open-apis/im/v1/messages -X POST -f receive_id=oc_5ad1 \
    -f msg_type=text -F 'content={"text":"hi"}' -f receive_id_type=chat_id
  lark api /open-apis/calendar/v4/calendars -X POST --body @calendar.json
  lark api /open-apis/authen/v1/user_info --token-type user --jq .data.name`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			method = strings.ToUpper(method)
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return fmt.Errorf("invalid method %q: must be GET, POST, PUT, PATCH or DELETE", method)
			}
			kind, ok := apiTokenTypes[strings.ToLower(tokenType)]
			if !ok {
				return fmt.Errorf("invalid --token-type %q: must be tenant, app, user or none", tokenType)
			}
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			values, err := collectFields(fields, rawFields)
			if err != nil {
				return err
			}
			var payload any
			switch {
			case body != "":
				raw, err := iocontext.ReadValue(cmd.Context(), body)
				if err != nil {
					return err
				}
				if !json.Valid([]byte(raw)) {
					return fmt.Errorf("--body is not valid JSON")
				}
				if len(values) > 0 {
					merged := map[string]any{}
					if err := json.Unmarshal([]byte(raw), &merged); err != nil {
						return fmt.Errorf("--body must be a JSON object to combine with fields: %w", err)
					}
					for k, v := range values {
						merged[k] = v
					}
					payload = merged
				} else {
					payload = json.RawMessage(raw)
				}
			case len(values) == 0:
			case method == http.MethodGet || method == http.MethodDelete:
				path = appendQuery(path, values)
			default:
				payload = values
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			respBody, header, status, err := sess.Client.DoRaw(cmd.Context(), method, path, payload, kind, sess.opts()...)
			if err != nil {
				return err
			}
			if silent {
				return nil
			}
			if isJSON(cmd) {
				return printJSON(cmd, rawResponse(respBody, header, status, include))
			}

			out := iocontext.GetIO(cmd.Context()).Out
			if include {
				_, _ = fmt.Fprintf(out, "HTTP %d\n", status)
				names := make([]string, 0, len(header))
				for k := range header {
					names = append(names, k)
				}
				sort.Strings(names)
				for _, k := range names {
					for _, v := range header[k] {
						_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
					}
				}
				_, _ = fmt.Fprintln(out)
			}
			var pretty bytes.Buffer
			if json.Indent(&pretty, respBody, "", "  ") == nil {
				_, _ = fmt.Fprintln(out, pretty.String())
			} else if len(respBody) > 0 {
				_, _ = fmt.Fprintln(out, string(respBody))
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "key=value parameter; value parsed as JSON when possible")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "key=value parameter kept as a string")
	cmd.Flags().StringVarP(&body, "body", "d", "", "JSON body (@file or - for stdin)")
	cmd.Flags().StringVar(&tokenType, "token-type", "tenant", "Credential: tenant|app|user|none")
	cmd.Flags().BoolVarP(&include, "include", "i", false, "Include status and response headers")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Print nothing on success")
	return cmd
}

// collectFields merges -f and -F values. -f values that parse as JSON keep
// their JSON type, so page_size=5 is a number and has_more=true a bool.
func collectFields(fields, rawFields []string) (map[string]any, error) {
	values := map[string]any{}
	for _, f := range fields {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: must be key=value", f)
		}
		var parsed any
		if err := json.Unmarshal([]byte(val), &parsed); err == nil {
			values[key] = parsed
		} else {
			values[key] = val
		}
	}
	for _, f := range rawFields {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid raw field %q: must be key=value", f)
		}
		values[key] = val
	}
	return values, nil
}

func appendQuery(path string, values map[string]any) string {
	q := url.Values{}
	for k, v := range values {
		switch v := v.(type) {
		case string:
			q.Set(k, v)
		default:
			data, _ := json.Marshal(v)
			q.Set(k, string(data))
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func rawResponse(respBody []byte, header http.Header, status int, include bool) any {
	var body any
	switch {
	case len(respBody) == 0:
	case json.Valid(respBody):
		body = json.RawMessage(respBody)
	default:
		body = string(respBody)
	}
	if !include {
		return body
	}
	return map[string]any{"status": status, "headers": header, "body": body}
}
