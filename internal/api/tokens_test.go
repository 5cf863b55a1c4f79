package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larkkit/lark-cli/internal/cache"
)

// fakeFetcher issues "<kind>-<n>" tokens valid for ttl, optionally blocking
// until release is closed.
type fakeFetcher struct {
	calls   atomic.Int32
	ttl     time.Duration
	now     func() time.Time
	release chan struct{}
	err     error
}

func (f *fakeFetcher) fetchAccessToken(ctx context.Context, kind AccessTokenType) (cache.Entry, error) {
	n := f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return cache.Entry{}, f.err
	}
	now := time.Now()
	if f.now != nil {
		now = f.now()
	}
	return cache.Entry{
		Value:     kind.String() + "-" + string(rune('0'+n)),
		ExpiresAt: now.Add(f.ttl),
	}, nil
}

func TestTokenManager_CachesUntilMargin(t *testing.T) {
	now := time.Date(2024, 10, 18, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := &fakeFetcher{ttl: 2 * time.Hour, now: clock}
	m := NewTokenManager("cli_a", f, nil)
	m.now = clock

	tok, err := m.TenantAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant_access_token-1", tok)

	now = now.Add(2*time.Hour - ExpiryMargin - time.Second)
	tok, err = m.TenantAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant_access_token-1", tok, "token outside the margin is reused")

	now = now.Add(2 * time.Second)
	tok, err = m.TenantAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant_access_token-2", tok, "token inside the margin is refreshed")
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestTokenManager_KindsAreCachedSeparately(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour}
	m := NewTokenManager("cli_a", f, cache.NewMemoryStore())

	tenant, err := m.TenantAccessToken(context.Background())
	require.NoError(t, err)
	app, err := m.AppAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tenant_access_token-1", tenant)
	assert.Equal(t, "app_access_token-2", app)
}

func TestTokenManager_SingleFlight(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour, release: make(chan struct{})}
	m := NewTokenManager("cli_a", f, nil)

	const callers = 20
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := m.TenantAccessToken(context.Background())
			assert.NoError(t, err)
			results[i] = tok
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
	for _, tok := range results {
		assert.Equal(t, "tenant_access_token-1", tok)
	}
}

func TestTokenManager_WaiterCancellationDoesNotAbortFlight(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour, release: make(chan struct{})}
	m := NewTokenManager("cli_a", f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.TenantAccessToken(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(f.release)
	require.Eventually(t, func() bool {
		entry, ok, _ := m.store.Get(context.Background(), m.key(AccessTokenTenant))
		return ok && entry.Value == "tenant_access_token-1"
	}, time.Second, time.Millisecond)

	tok, err := m.TenantAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant_access_token-1", tok)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestTokenManager_FetchError(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour, err: &APIError{Code: CodeInvalidAppCredentials, Msg: "app secret invalid"}}
	m := NewTokenManager("cli_a", f, nil)

	_, err := m.TenantAccessToken(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeInvalidAppCredentials, apiErr.Code)

	_, ok, _ := m.store.Get(context.Background(), m.key(AccessTokenTenant))
	assert.False(t, ok, "failed fetches are not cached")
}

func TestTokenManager_InvalidateStale(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour}
	m := NewTokenManager("cli_a", f, nil)
	ctx := context.Background()

	first, err := m.TenantAccessToken(ctx)
	require.NoError(t, err)

	require.NoError(t, m.invalidateStale(ctx, AccessTokenTenant, first))
	second, err := m.TenantAccessToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// A late caller still holding the first token must not evict the second.
	require.NoError(t, m.invalidateStale(ctx, AccessTokenTenant, first))
	again, err := m.TenantAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, again)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestTokenManager_Invalidate(t *testing.T) {
	f := &fakeFetcher{ttl: time.Hour}
	m := NewTokenManager("cli_a", f, nil)
	ctx := context.Background()

	_, err := m.AppAccessToken(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(ctx, AccessTokenApp))
	_, err = m.AppAccessToken(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestTokenManager_KeysScopedByApp(t *testing.T) {
	store := cache.NewMemoryStore()
	fa := &fakeFetcher{ttl: time.Hour}
	fb := &fakeFetcher{ttl: time.Hour}
	a := NewTokenManager("cli_a", fa, store)
	b := NewTokenManager("cli_b", fb, store)

	_, err := a.TenantAccessToken(context.Background())
	require.NoError(t, err)
	_, err = b.TenantAccessToken(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, fa.calls.Load())
	assert.EqualValues(t, 1, fb.calls.Load())
}

func TestTokenManager_RejectsUserKind(t *testing.T) {
	m := NewTokenManager("cli_a", &fakeFetcher{}, nil)
	_, err := m.token(context.Background(), AccessTokenUser)
	assert.Error(t, err)
}

func TestFetchAccessToken_ExpiryFromResponse(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {})
	client := newTestClient(ls.URL)

	before := time.Now()
	entry, err := client.fetchAccessToken(context.Background(), AccessTokenApp)
	require.NoError(t, err)
	assert.Equal(t, "a-1", entry.Value)
	assert.WithinDuration(t, before.Add(7200*time.Second), entry.ExpiresAt, 5*time.Second)
}

func TestFetchAccessToken_MissingExpireUsesDefaultLifetime(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case testTenantTokenPath:
			fetches.Add(1)
			writeJSON(w, map[string]any{"code": 0, "msg": "ok", "tenant_access_token": "t-noexpire"})
		default:
			assert.Equal(t, "Bearer t-noexpire", r.Header.Get("Authorization"))
			writeEnvelope(w, 0, "ok", map[string]any{"chat_id": "oc_1", "name": "Ops"})
		}
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	before := time.Now()
	entry, err := client.fetchAccessToken(context.Background(), AccessTokenTenant)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(DefaultTokenLifetime), entry.ExpiresAt, 5*time.Second)

	fetches.Store(0)
	for range 3 {
		_, err := client.Chats().Get(context.Background(), &ChatIDRequest{ChatID: "oc_1"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fetches.Load(), "a token without expire should still be cached")
}
