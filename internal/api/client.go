package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/larkkit/lark-cli/internal/cache"
	"github.com/larkkit/lark-cli/internal/debug"
	"github.com/larkkit/lark-cli/internal/validation"
)

const (
	DefaultTimeout = 30 * time.Second

	// DefaultBaseURL is the Feishu (mainland) open platform.
	DefaultBaseURL = "https://open.feishu.cn"
	// LarkBaseURL is the international Lark open platform.
	LarkBaseURL = "https://open.larksuite.com"

	headerLogID    = "X-Tt-Logid"
	headerHelpdesk = "X-Lark-Helpdesk-Authorization"
)

// Client is the open platform API client.
//
// A Client owns its credential cache: tenant and app access tokens fetched
// with AppID/AppSecret are stored in Tokens and shared by every call made
// through this client. Two clients built with different apps never see each
// other's tokens unless they are pointed at the same persistent store, in
// which case keys are scoped by app ID.
//
// The client includes a circuit breaker that tracks server failures across
// requests. Use ResetCircuitBreaker() to clear it when reusing a client
// after recovering from a known transient failure.
type Client struct {
	BaseURL           string
	AppID             string
	AppSecret         string
	HelpdeskID        string
	HelpdeskToken     string
	HTTP              *http.Client
	UserAgent         string
	RetryConfig       RetryConfig     // retry and circuit breaker configuration
	Tokens            *TokenManager   // tenant/app access token cache
	newUUID           func() string   // message de-duplication keys
	limiter           *rate.Limiter   // optional client-side throttle
	skipURLValidation bool            // internal flag for testing only
	circuitBreaker    *circuitBreaker // circuit breaker for retry logic
	validatedBaseURL  bool
	validateMu        sync.Mutex
	rateLimitMu       sync.Mutex
	lastRateLimit     *RateLimitInfo
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ Dispatcher   = (*Client)(nil)
)

var (
	validateBaseURL    = validation.ValidateBaseURL
	validateWebhookURL = validation.ValidateWebhookURL
)

// New creates a client for a self-built app. An empty baseURL selects
// DefaultBaseURL. Tokens are cached in memory until SetTokenStore is called.
func New(baseURL, appID, appSecret string) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	// Allow localhost URLs when LARK_TESTING=1 is set (for integration tests)
	skipValidation := os.Getenv("LARK_TESTING") == "1"

	retryCfg := DefaultRetryConfig()
	c := &Client{
		BaseURL:           strings.TrimRight(baseURL, "/"),
		AppID:             appID,
		AppSecret:         appSecret,
		RetryConfig:       retryCfg,
		skipURLValidation: skipValidation,
		newUUID:           uuid.NewString,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		circuitBreaker: newCircuitBreaker(retryCfg),
	}
	c.Tokens = NewTokenManager(appID, c, cache.NewMemoryStore())
	return c
}

// newTestClient creates a client with URL validation disabled for testing
func newTestClient(baseURL string) *Client {
	c := New(baseURL, "cli_test", "test-secret")
	c.skipURLValidation = true
	return c
}

// SetTokenStore moves the credential cache onto store, e.g. a FileStore so
// tokens survive between CLI runs or a RedisStore shared by several hosts.
func (c *Client) SetTokenStore(store cache.Store) {
	c.Tokens = NewTokenManager(c.AppID, c, store)
}

// SetHelpdesk configures the credentials sent with helpdesk endpoints.
func (c *Client) SetHelpdesk(id, token string) {
	c.HelpdeskID = id
	c.HelpdeskToken = token
}

// ResetCircuitBreaker clears the circuit breaker state, resetting failure counts
// and closing the circuit.
func (c *Client) ResetCircuitBreaker() {
	if c.circuitBreaker != nil {
		c.circuitBreaker.reset()
	}
}

// SetRetryConfig updates the retry configuration and aligns circuit breaker settings.
func (c *Client) SetRetryConfig(cfg RetryConfig) {
	c.RetryConfig = cfg
	if c.circuitBreaker != nil {
		c.circuitBreaker.threshold = cfg.CircuitBreakerThreshold
		c.circuitBreaker.resetTime = cfg.CircuitBreakerResetTime
	}
}

func (c *Client) ensureBaseURLValidated() error {
	if c.skipURLValidation {
		return nil
	}

	c.validateMu.Lock()
	defer c.validateMu.Unlock()

	if c.validatedBaseURL {
		return nil
	}

	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}

	c.validatedBaseURL = true
	return nil
}

func (c *Client) url(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return strings.TrimRight(c.BaseURL, "/") + path
}

// outbound is one fully rendered HTTP request. body is replayed verbatim on
// every attempt.
type outbound struct {
	method      string
	url         string
	body        []byte
	contentType string
	header      http.Header
	idempotent  bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) logID() string {
	if r == nil || r.header == nil {
		return ""
	}
	return r.header.Get(headerLogID)
}

func (r *response) isJSON() bool {
	if r == nil {
		return false
	}
	ct := strings.ToLower(r.header.Get("Content-Type"))
	if strings.Contains(ct, "json") {
		return true
	}
	return ct == "" && len(bytes.TrimSpace(r.body)) > 0 && bytes.TrimSpace(r.body)[0] == '{'
}

// envelope is the response wrapper every JSON endpoint returns.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// envelopeCode extracts the application code from a JSON body, or 0.
func envelopeCode(body []byte) int {
	var env struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return 0
	}
	return env.Code
}

// executeRequest performs one logical HTTP request with client-side
// throttling, rate limit backoff, 5xx retries for idempotent requests and
// the circuit breaker. Responses with status >= 400 are returned together
// with an *APIError built from the envelope.
func (c *Client) executeRequest(ctx context.Context, out outbound) (*response, error) {
	// Check circuit breaker at start
	if c.circuitBreaker != nil && c.circuitBreaker.isOpen() {
		return nil, &CircuitBreakerError{}
	}

	isIdempotent := out.idempotent || out.method == http.MethodGet || out.method == http.MethodHead || out.method == http.MethodOptions

	var retries429, retries5xx int
	attempt := 0

	for {
		attempt++
		if err := c.waitForSlot(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		// Create fresh body reader for each attempt
		var bodyReader io.Reader
		if out.body != nil {
			bodyReader = bytes.NewReader(out.body)
		}

		req, err := http.NewRequestWithContext(ctx, out.method, out.url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, values := range out.header {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		if out.contentType != "" {
			req.Header.Set("Content-Type", out.contentType)
		}
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if debug.IsEnabled(ctx) {
				slog.Debug("request failed", "method", out.method, "url", out.url, "attempt", attempt, "error", err)
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		c.recordRateLimit(resp.Header)
		result := &response{status: resp.StatusCode, header: resp.Header, body: respBody}
		if debug.IsEnabled(ctx) {
			slog.Debug("request complete", "method", out.method, "url", out.url, "status", resp.StatusCode,
				"attempt", attempt, "duration", time.Since(start), "log_id", result.logID())
		}

		// Handle rate limiting with exponential backoff (idempotent only).
		// The gateway reports it as 429 or as a 400 carrying the rate limit code.
		if resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode >= 400 && envelopeCode(respBody) == CodeRateLimited) {
			retryAfter, hasRetryAfter := retryAfterDuration(resp.Header)
			if !hasRetryAfter {
				retryAfter, hasRetryAfter = rateLimitResetDelay(resp.Header)
			}
			baseDelay := c.RetryConfig.RateLimitBaseDelay
			if !isIdempotent || retries429 >= c.RetryConfig.MaxRateLimitRetries {
				if hasRetryAfter {
					return result, &RateLimitError{RetryAfter: retryAfter}
				}
				return result, &RateLimitError{RetryAfter: baseDelay}
			}
			delay := retryAfter
			if !hasRetryAfter {
				delay = baseDelay * time.Duration(1<<retries429)
			}
			slog.Info("rate limited, retrying", "delay", delay, "attempt", retries429+1)
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
			retries429++
			continue
		}

		// Handle 5xx server errors
		if resp.StatusCode >= 500 {
			if c.circuitBreaker != nil {
				c.circuitBreaker.recordFailure()
			}
			if isIdempotent && retries5xx < c.RetryConfig.Max5xxRetries {
				slog.Info("server error, retrying", "status", resp.StatusCode)
				if err := sleepWithContext(ctx, c.RetryConfig.ServerErrorRetryDelay); err != nil {
					return nil, err
				}
				retries5xx++
				continue
			}
		}

		if resp.StatusCode >= 400 {
			return result, apiErrorFromResponse(result)
		}

		// Success (2xx) - record to circuit breaker
		if resp.StatusCode >= 200 && resp.StatusCode < 300 && c.circuitBreaker != nil {
			c.circuitBreaker.recordSuccess()
		}

		return result, nil
	}
}

// apiErrorFromResponse builds an APIError from a failed response, preferring
// the envelope's code and msg over the raw body.
func apiErrorFromResponse(r *response) *APIError {
	apiErr := &APIError{
		StatusCode: r.status,
		LogID:      r.logID(),
	}
	var env envelope
	if err := json.Unmarshal(r.body, &env); err == nil && (env.Code != 0 || env.Msg != "") {
		apiErr.Code = env.Code
		apiErr.Msg = env.Msg
		return apiErr
	}
	apiErr.Msg = sanitizeErrorBody(r.body)
	return apiErr
}

// sanitizeErrorBody returns a short description of a non-envelope error body
// without echoing arbitrary upstream content.
func sanitizeErrorBody(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return "API request failed (response body redacted for security)"
}

// DoRaw sends an arbitrary request authenticated with the given credential
// kind and returns the raw response. path is relative to BaseURL and may
// carry a query string. body is sent as JSON when non-nil.
func (c *Client) DoRaw(ctx context.Context, method, path string, body any, kind AccessTokenType, opts ...CallOption) ([]byte, http.Header, int, error) {
	o := collectOptions(opts)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	out := outbound{method: method, url: c.url(path)}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		out.body = data
		out.contentType = "application/json; charset=utf-8"
	}

	ep := Endpoint{Method: method, Path: path}
	if kind != AccessTokenNone {
		ep.AccessTokenTypes = []AccessTokenType{kind}
	}
	resp, err := c.send(ctx, ep, o, out)
	if resp == nil {
		return nil, nil, 0, err
	}
	return resp.body, resp.header, resp.status, err
}
