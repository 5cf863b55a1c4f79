package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/larkkit/lark-cli/internal/cache"
	"github.com/larkkit/lark-cli/internal/debug"
)

// ExpiryMargin is how long before its expiry a cached token is treated as
// stale and refreshed.
const ExpiryMargin = 3 * time.Minute

// DefaultTokenLifetime is assumed when a token response carries no usable
// expire. It matches the platform's documented two hour lifetime; a token
// revoked earlier is caught by the expired-token replay.
const DefaultTokenLifetime = 2 * time.Hour

const (
	tenantTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"
	appTokenPath    = "/open-apis/auth/v3/app_access_token/internal"
)

// tokenFetcher issues a fresh token of the given kind.
type tokenFetcher interface {
	fetchAccessToken(ctx context.Context, kind AccessTokenType) (cache.Entry, error)
}

// TokenManager caches tenant and app access tokens for one app.
//
// Lookups are served from the store until the token is within ExpiryMargin
// of expiring. At most one refresh per key is in flight at any time; callers
// that arrive while it runs wait for its result.
type TokenManager struct {
	appID   string
	fetcher tokenFetcher
	store   cache.Store
	group   singleflight.Group
	now     func() time.Time
	margin  time.Duration
}

// NewTokenManager returns a manager keyed by appID. A nil store falls back to
// an in-memory one.
func NewTokenManager(appID string, fetcher tokenFetcher, store cache.Store) *TokenManager {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &TokenManager{
		appID:   appID,
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		margin:  ExpiryMargin,
	}
}

// TenantAccessToken returns a valid tenant access token.
func (m *TokenManager) TenantAccessToken(ctx context.Context) (string, error) {
	return m.token(ctx, AccessTokenTenant)
}

// AppAccessToken returns a valid app access token.
func (m *TokenManager) AppAccessToken(ctx context.Context) (string, error) {
	return m.token(ctx, AccessTokenApp)
}

// Invalidate drops the cached token of kind so the next lookup refetches it.
func (m *TokenManager) Invalidate(ctx context.Context, kind AccessTokenType) error {
	return m.store.Delete(ctx, m.key(kind))
}

// invalidateStale drops the cached token only if it is still the one that
// was rejected. Concurrent calls that all saw the same stale token then
// cause a single refetch.
func (m *TokenManager) invalidateStale(ctx context.Context, kind AccessTokenType, stale string) error {
	entry, ok, err := m.store.Get(ctx, m.key(kind))
	if err != nil || !ok || entry.Value != stale {
		return err
	}
	return m.store.Delete(ctx, m.key(kind))
}

func (m *TokenManager) key(kind AccessTokenType) string {
	return kind.String() + ":" + m.appID
}

func (m *TokenManager) lookup(ctx context.Context, key string) (string, bool) {
	entry, ok, err := m.store.Get(ctx, key)
	if err != nil {
		slog.Warn("token cache read failed", "key", key, "error", err)
		return "", false
	}
	if !ok || entry.Expired(m.now(), m.margin) {
		return "", false
	}
	return entry.Value, true
}

func (m *TokenManager) token(ctx context.Context, kind AccessTokenType) (string, error) {
	if kind != AccessTokenTenant && kind != AccessTokenApp {
		return "", fmt.Errorf("token kind %s is not cached", kind)
	}
	key := m.key(kind)
	if v, ok := m.lookup(ctx, key); ok {
		return v, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		// The flight outlives any single waiter's cancellation.
		fctx := context.WithoutCancel(ctx)
		// Another flight may have stored a fresh token between our miss and now.
		if v, ok := m.lookup(fctx, key); ok {
			return v, nil
		}
		entry, err := m.fetcher.fetchAccessToken(fctx, kind)
		if err != nil {
			return "", err
		}
		if err := m.store.Set(fctx, key, entry); err != nil {
			slog.Warn("token cache write failed", "key", key, "error", err)
		}
		if debug.IsEnabled(ctx) {
			slog.Debug("token refreshed", "kind", kind.String(), "expires_at", entry.ExpiresAt)
		}
		return entry.Value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type accessTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	AppAccessToken    string `json:"app_access_token"`
	Expire            int    `json:"expire"`
}

// fetchAccessToken calls the internal-app token endpoint for kind.
func (c *Client) fetchAccessToken(ctx context.Context, kind AccessTokenType) (cache.Entry, error) {
	if c.AppID == "" || c.AppSecret == "" {
		return cache.Entry{}, &AuthError{Reason: "app ID and app secret are required"}
	}
	if err := c.ensureBaseURLValidated(); err != nil {
		return cache.Entry{}, err
	}

	path := tenantTokenPath
	if kind == AccessTokenApp {
		path = appTokenPath
	}
	body, err := json.Marshal(map[string]string{
		"app_id":     c.AppID,
		"app_secret": c.AppSecret,
	})
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to marshal token request: %w", err)
	}

	issuedAt := time.Now()
	resp, err := c.executeRequest(ctx, outbound{
		method:      http.MethodPost,
		url:         c.url(path),
		body:        body,
		contentType: "application/json; charset=utf-8",
		idempotent:  true,
	})
	if err != nil {
		return cache.Entry{}, err
	}

	var tr accessTokenResponse
	if err := json.Unmarshal(resp.body, &tr); err != nil {
		return cache.Entry{}, fmt.Errorf("unexpected token response format (JSON decode failed): %w", err)
	}
	if tr.Code != CodeOK {
		return cache.Entry{}, &APIError{StatusCode: resp.status, Code: tr.Code, Msg: tr.Msg, LogID: resp.logID()}
	}

	value := tr.TenantAccessToken
	if kind == AccessTokenApp {
		value = tr.AppAccessToken
	}
	if value == "" {
		return cache.Entry{}, fmt.Errorf("token response did not include %s", kind)
	}
	lifetime := time.Duration(tr.Expire) * time.Second
	if tr.Expire <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return cache.Entry{
		Value:     value,
		ExpiresAt: issuedAt.Add(lifetime),
	}, nil
}
