package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestUserAccessToken_OAuth2Token(t *testing.T) {
	issued := time.Date(2024, 10, 18, 9, 0, 0, 0, time.UTC)
	tok := (&UserAccessToken{AccessToken: "u-1", RefreshToken: "r-1", ExpiresIn: 7200}).OAuth2Token(issued)

	if tok.AccessToken != "u-1" || tok.RefreshToken != "r-1" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
	if !tok.Expiry.Equal(issued.Add(2 * time.Hour)) {
		t.Errorf("Expiry = %v", tok.Expiry)
	}
}

func TestUserTokenSource_RefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/open-apis/authen/v1/oidc/refresh_access_token" {
			t.Errorf("unexpected request %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer a-1" {
			t.Errorf("refresh should use the app token, got %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "r-old" {
			t.Errorf("refresh_token = %q", body["refresh_token"])
		}
		refreshes.Add(1)
		writeEnvelope(w, 0, "ok", map[string]any{
			"access_token": "u-new", "refresh_token": "r-new", "expires_in": 7200, "token_type": "Bearer",
		})
	})
	client := newTestClient(ls.URL)

	var persisted *oauth2.Token
	expired := &oauth2.Token{AccessToken: "u-old", RefreshToken: "r-old", Expiry: time.Now().Add(-time.Minute)}
	src := client.UserTokenSource(expired, func(tok *oauth2.Token) { persisted = tok })

	for i := 0; i < 2; i++ {
		tok, err := src.Token()
		if err != nil {
			t.Fatalf("Token() error: %v", err)
		}
		if tok.AccessToken != "u-new" {
			t.Errorf("AccessToken = %q", tok.AccessToken)
		}
	}
	if refreshes.Load() != 1 {
		t.Errorf("refreshed %d times, want 1", refreshes.Load())
	}
	if persisted == nil || persisted.RefreshToken != "r-new" {
		t.Errorf("onRefresh got %+v", persisted)
	}
}

func TestUserTokenSource_ValidTokenNotRefreshed(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	client := newTestClient(ls.URL)

	valid := &oauth2.Token{AccessToken: "u-ok", Expiry: time.Now().Add(time.Hour)}
	tok, err := client.UserTokenSource(valid, nil).Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok.AccessToken != "u-ok" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
}

func TestUserTokenSource_NoRefreshToken(t *testing.T) {
	client := newTestClient("https://open.feishu.cn")
	expired := &oauth2.Token{AccessToken: "u-old", Expiry: time.Now().Add(-time.Minute)}

	_, err := client.UserTokenSource(expired, nil).Token()
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestUserTokenSource_RefreshBoundByCallTimeout(t *testing.T) {
	ls := newLarkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/open-apis/authen/v1/oidc/refresh_access_token" {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	client := newTestClient(ls.URL)

	expired := &oauth2.Token{AccessToken: "u-old", RefreshToken: "r-old", Expiry: time.Now().Add(-time.Minute)}
	src := client.UserTokenSource(expired, nil)

	start := time.Now()
	_, err := client.Authen().GetUserInfo(context.Background(), WithUserTokenSource(src), WithTimeout(100*time.Millisecond))
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("refresh ignored the call timeout, took %v", elapsed)
	}
}
