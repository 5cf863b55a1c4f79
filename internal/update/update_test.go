package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestChecker(t *testing.T, handler http.HandlerFunc) (*Checker, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c := NewChecker("")
	c.URL = server.URL
	c.HTTP = server.Client()
	return c, &hits
}

func releaseHandler(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github.v3+json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://github.com/larkkit/lark-cli/releases/tag/` + tag + `"}`))
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{"1.0.0": "v1.0.0", "v1.0.0": "v1.0.0", "": "v"}
	for in, want := range tests {
		if got := normalizeVersion(in); got != want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheck_SkipsDevBuilds(t *testing.T) {
	c, hits := newTestChecker(t, releaseHandler("v9.9.9"))
	for _, v := range []string{"", "dev"} {
		if got := c.Check(context.Background(), v); got != nil {
			t.Errorf("Check(%q) = %+v, want nil", v, got)
		}
	}
	if hits.Load() != 0 {
		t.Error("dev builds should not hit the network")
	}
}

func TestCheck_Compare(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "v1.1.0", true},
		{"v1.0.0", "v1.0.1", true},
		{"1.2.0", "v2.0.0", true},
		{"1.0.0", "v1.0.0", false},
		{"2.0.0", "v1.9.9", false},
		{"1.0.0-beta.1", "v1.0.0", true},
		{"1.0.0", "1.0.0+build.5", false},
		{"not-a-version", "v1.0.0", false},
		{"1.0.0", "latest", false},
	}
	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			c, _ := newTestChecker(t, releaseHandler(tt.latest))
			got := c.Check(context.Background(), tt.current)
			if got == nil {
				t.Fatal("expected a result")
			}
			if got.UpdateAvailable != tt.want {
				t.Errorf("UpdateAvailable = %v, want %v", got.UpdateAvailable, tt.want)
			}
			if got.CurrentVersion != tt.current {
				t.Errorf("CurrentVersion = %q", got.CurrentVersion)
			}
			if got.LatestVersion == "" || got.LatestVersion[0] == 'v' {
				t.Errorf("LatestVersion should drop the v prefix, got %q", got.LatestVersion)
			}
		})
	}
}

func TestCheck_FailuresReturnNil(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"rate limited": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
		"invalid json": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"tag_name":`)) },
		"empty tag":    func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"html_url":"x"}`)) },
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestChecker(t, h)
			if got := c.Check(context.Background(), "1.0.0"); got != nil {
				t.Errorf("expected nil, got %+v", got)
			}
		})
	}

	t.Run("canceled context", func(t *testing.T) {
		c, _ := newTestChecker(t, releaseHandler("v2.0.0"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := c.Check(ctx, "1.0.0"); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		c := NewChecker("")
		c.URL = "://bad"
		if got := c.Check(context.Background(), "1.0.0"); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestCheck_CachesResult(t *testing.T) {
	dir := t.TempDir()
	c, hits := newTestChecker(t, releaseHandler("v1.5.0"))
	c.StatePath = filepath.Join(dir, "state", "update.json")

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	c.Now = func() time.Time { return now }

	first := c.Check(context.Background(), "1.0.0")
	if first == nil || !first.UpdateAvailable {
		t.Fatalf("unexpected first result %+v", first)
	}
	if _, err := os.Stat(c.StatePath); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	now = now.Add(time.Hour)
	// The cached answer is compared against the version running now.
	second := c.Check(context.Background(), "1.5.0")
	if second == nil || second.UpdateAvailable {
		t.Fatalf("unexpected cached result %+v", second)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request within the interval, got %d", hits.Load())
	}

	now = now.Add(CheckInterval)
	if c.Check(context.Background(), "1.0.0") == nil {
		t.Fatal("expected a fresh result")
	}
	if hits.Load() != 2 {
		t.Fatalf("expected a second request after the interval, got %d", hits.Load())
	}
}

func TestCheck_IgnoresCorruptState(t *testing.T) {
	dir := t.TempDir()
	c, hits := newTestChecker(t, releaseHandler("v1.0.1"))
	c.StatePath = filepath.Join(dir, "update.json")
	if err := os.WriteFile(c.StatePath, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := c.Check(context.Background(), "1.0.0"); got == nil || !got.UpdateAvailable {
		t.Fatalf("unexpected result %+v", got)
	}
	if hits.Load() != 1 {
		t.Fatal("corrupt state should fall through to the network")
	}
}

func TestNewChecker(t *testing.T) {
	c := NewChecker("/tmp/lark")
	if c.URL != DefaultReleasesURL || c.StatePath != filepath.Join("/tmp/lark", "update.json") {
		t.Errorf("unexpected checker %+v", c)
	}
	if NewChecker("").StatePath != "" {
		t.Error("empty dir should disable caching")
	}
}
