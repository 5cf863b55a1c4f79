package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/cache"
	"github.com/larkkit/lark-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("lark-cli/%s", version),
	}
}

// session is a configured client plus the per-call options every command
// passes along, such as the user access token.
type session struct {
	Client   *api.Client
	Settings config.Settings
	options  []api.CallOption
	closer   io.Closer
}

// opts returns the session's call options followed by extra.
func (s *session) opts(extra ...api.CallOption) []api.CallOption {
	out := make([]api.CallOption, 0, len(s.options)+len(extra))
	out = append(out, s.options...)
	return append(out, extra...)
}

func (s *session) Close() {
	if s == nil || s.closer == nil {
		return
	}
	if err := s.closer.Close(); err != nil {
		slog.Debug("closing token store failed", "error", err)
	}
}

func (f *clientFactory) open() (*session, error) {
	s, err := config.Resolve(flags.Profile)
	if err != nil {
		return nil, err
	}
	client := f.newClient(s.BaseURL, s.AppID, s.AppSecret)
	client.SetHelpdesk(s.HelpdeskID, s.HelpdeskToken)

	sess := &session{Client: client, Settings: s}
	if err := f.attachTokenStore(sess); err != nil {
		return nil, err
	}
	if s.HasUserToken() {
		sess.options = append(sess.options, api.WithUserTokenSource(userTokenSource(client, s)))
	}
	return sess, nil
}

func (f *clientFactory) newClient(baseURL, appID, appSecret string) *api.Client {
	client := api.New(baseURL, appID, appSecret)
	if f.timeout > 0 {
		client.HTTP.Timeout = f.timeout
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	if flags.RateLimit > 0 {
		client.SetRateLimit(flags.RateLimit, flags.RateBurst)
	}
	applyRetryOverrides(client)
	return client
}

func (f *clientFactory) attachTokenStore(sess *session) error {
	switch sess.Settings.TokenStore {
	case config.TokenStoreFile:
		dir, err := cache.DefaultDir()
		if err != nil {
			slog.Debug("token cache dir unavailable, using memory", "error", err)
			return nil
		}
		sess.Client.SetTokenStore(cache.NewFileStore(dir, sess.Client.BaseURL))
	case config.TokenStoreRedis:
		store, err := cache.NewRedisStoreFromURL(sess.Settings.RedisURL)
		if err != nil {
			return err
		}
		sess.Client.SetTokenStore(store)
		sess.closer = store
	}
	return nil
}

// userTokenSource refreshes the stored user token when it expires and
// writes the new pair back to the profile it came from.
func userTokenSource(client *api.Client, s config.Settings) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  s.UserAccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.UserRefreshToken,
		Expiry:       s.UserTokenExpiry,
	}
	return client.UserTokenSource(tok, func(t *oauth2.Token) {
		if s.Name == "" {
			return
		}
		if err := config.SaveUserToken(s.Name, t.AccessToken, t.RefreshToken, t.Expiry); err != nil {
			slog.Warn("could not save refreshed user token", "profile", s.Name, "error", err)
		}
	})
}

func applyRetryOverrides(client *api.Client) {
	cfg := client.RetryConfig

	if flags.MaxRateLimitRetriesSet {
		cfg.MaxRateLimitRetries = flags.MaxRateLimitRetries
	}
	if flags.Max5xxRetriesSet {
		cfg.Max5xxRetries = flags.Max5xxRetries
	}
	if flags.RateLimitDelaySet {
		cfg.RateLimitBaseDelay = flags.RateLimitDelay
	}
	if flags.ServerErrorDelaySet {
		cfg.ServerErrorRetryDelay = flags.ServerErrorDelay
	}
	if flags.CircuitBreakerThresholdSet {
		cfg.CircuitBreakerThreshold = flags.CircuitBreakerThreshold
	}
	if flags.CircuitBreakerResetTimeSet {
		cfg.CircuitBreakerResetTime = flags.CircuitBreakerResetTime
	}

	client.SetRetryConfig(cfg)
}

// openSession resolves the active profile into a ready client.
func openSession() (*session, error) {
	return newClientFactory().open()
}
