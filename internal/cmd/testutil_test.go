// Test helpers for running commands against a mock open platform.
//
// A typical test registers the endpoints it needs, points the environment
// at the mock server and runs Execute:
//
//	handler := newRouteHandler().
//	    On("GET", "/open-apis/im/v1/chats", jsonResponse(200, `{"code":0,"data":{"items":[]}}`))
//	setupTestEnvWithHandler(t, handler)
//
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"chats", "list"}); err != nil {
//	        t.Fatalf("chats list: %v", err)
//	    }
//	})
//
// The token endpoints are always registered, so commands get a tenant or
// app token without extra setup.
package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/larkkit/lark-cli/internal/config"
)

const (
	testTenantToken = "t-test-tenant"
	testAppToken    = "a-test-app"
)

// captureStdout runs fn and returns what it wrote to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	<-done
	return buf.String()
}

// captureStderr runs fn and returns what it wrote to os.Stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	<-done
	return buf.String()
}

// withStdin replaces os.Stdin with input for the duration of the test.
func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	go func() {
		_, _ = io.WriteString(w, input)
		_ = w.Close()
	}()
	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
	})
}

// testEnv is the mock server a test's commands talk to.
type testEnv struct {
	server *httptest.Server
}

// setupTestEnvWithHandler starts handler on a test server and configures
// the environment so commands resolve app credentials from LARK_* variables
// and send every request there. Config and cache directories are private to
// the test.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvAppID, "cli_test")
	t.Setenv(config.EnvAppSecret, "test-secret")
	t.Setenv(config.EnvBaseURL, server.URL)
	t.Setenv(config.EnvTokenStore, config.TokenStoreMemory)
	t.Setenv(config.EnvProfile, "")
	t.Setenv(config.EnvUserAccessToken, "")
	t.Setenv(config.EnvHelpdeskID, "")
	t.Setenv(config.EnvHelpdeskToken, "")
	t.Setenv(config.EnvWebhookURL, "")
	t.Setenv(config.EnvWebhookSecret, "")
	t.Setenv("LARK_TESTING", "1")
	t.Setenv("LARK_OUTPUT", "text")

	return &testEnv{server: server}
}

// useTestKeyring installs one in-memory keyring shared by every open during
// the test, so saved profiles can be read back.
func useTestKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
	return ring
}

// clearAppEnv removes the app credentials so commands fall back to the
// keyring profile.
func clearAppEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAppID, "")
	t.Setenv(config.EnvAppSecret, "")
}

// jsonResponse returns a handler writing body with the given status.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// okData wraps data in the platform's success envelope.
func okData(data string) string {
	return `{"code":0,"msg":"success","data":` + data + `}`
}

// routeHandler routes requests by exact "METHOD PATH" and records them.
// Unmatched requests get a 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

func newRouteHandler() *routeHandler {
	h := &routeHandler{routes: make(map[string]http.HandlerFunc)}
	h.On("POST", "/open-apis/auth/v3/tenant_access_token/internal",
		jsonResponse(200, `{"code":0,"msg":"ok","tenant_access_token":"`+testTenantToken+`","expire":7200}`))
	h.On("POST", "/open-apis/auth/v3/app_access_token/internal",
		jsonResponse(200, `{"code":0,"msg":"ok","app_access_token":"`+testAppToken+`","tenant_access_token":"`+testTenantToken+`","expire":7200}`))
	return h
}

// On registers handler for method and path and returns h for chaining.
func (h *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[method+" "+path] = handler
	return h
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	h.mu.Lock()
	h.requests = append(h.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	handler, ok := h.routes[r.Method+" "+r.URL.Path]
	h.mu.Unlock()

	if !ok {
		jsonResponse(http.StatusNotFound, `{"code":404,"msg":"not found"}`)(w, r)
		return
	}
	handler(w, r)
}

// last returns the most recent request for method and path.
func (h *routeHandler) last(t *testing.T, method, path string) recordedRequest {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.requests) - 1; i >= 0; i-- {
		if h.requests[i].Method == method && h.requests[i].Path == path {
			return h.requests[i]
		}
	}
	t.Fatalf("no %s %s request recorded", method, path)
	return recordedRequest{}
}

// count returns how many requests hit method and path.
func (h *routeHandler) count(method, path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// decodeJSONBody unmarshals a recorded request body into a map.
func decodeJSONBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("request body is not JSON: %v\n%s", err, body)
	}
	return out
}

// decodeItems returns the "items" array of a list command's JSON output.
func decodeItems(t *testing.T, output string) []map[string]any {
	t.Helper()
	var page struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(output), &page); err != nil {
		t.Fatalf("output is not a JSON page: %v\n%s", err, output)
	}
	return page.Items
}

// decodeObject unmarshals a command's JSON output.
func decodeObject(t *testing.T, output string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(output), &out); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, output)
	}
	return out
}
