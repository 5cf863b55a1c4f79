package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvProfile         = "LARK_PROFILE"
	EnvAppID           = "LARK_APP_ID"
	EnvAppSecret       = "LARK_APP_SECRET"
	EnvBaseURL         = "LARK_BASE_URL"
	EnvHelpdeskID      = "LARK_HELPDESK_ID"
	EnvHelpdeskToken   = "LARK_HELPDESK_TOKEN"
	EnvWebhookURL      = "LARK_WEBHOOK_URL"
	EnvWebhookSecret   = "LARK_WEBHOOK_SECRET"
	EnvTokenStore      = "LARK_TOKEN_STORE"
	EnvRedisURL        = "LARK_REDIS_URL"
	EnvUserAccessToken = "LARK_USER_ACCESS_TOKEN"
)

// Settings is the effective configuration for one run.
type Settings struct {
	Profile
	// Name is the keyring profile the settings came from, empty when the
	// app credentials were taken from the environment.
	Name string
}

// HasUserToken reports whether a user access token is available.
func (s Settings) HasUserToken() bool {
	return s.UserAccessToken != ""
}

// DefaultEnvFile is the .env file loaded on every run if it exists.
func DefaultEnvFile() string {
	return filepath.Join(Dir(), ".env")
}

// LoadEnvFiles loads KEY=VALUE files into the process environment. Variables
// already set win over file values. A missing DefaultEnvFile is not an
// error; any other missing path is.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) && path == DefaultEnvFile() {
				continue
			}
			return fmt.Errorf("env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// ReadEnvFile parses a .env file into a Profile without touching the
// process environment. Used by 'lark auth login --from-env-file'.
func ReadEnvFile(path string) (Profile, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read %s: %w", path, err)
	}
	p := Profile{
		AppID:         values[EnvAppID],
		AppSecret:     values[EnvAppSecret],
		BaseURL:       values[EnvBaseURL],
		HelpdeskID:    values[EnvHelpdeskID],
		HelpdeskToken: values[EnvHelpdeskToken],
		WebhookURL:    values[EnvWebhookURL],
		WebhookSecret: values[EnvWebhookSecret],
		TokenStore:    values[EnvTokenStore],
		RedisURL:      values[EnvRedisURL],
	}
	return p, nil
}

// Resolve computes the settings for profileName (empty means LARK_PROFILE,
// then the current profile). LARK_APP_ID and LARK_APP_SECRET together
// bypass the keyring entirely; the remaining LARK_* variables override
// individual fields either way.
func Resolve(profileName string) (Settings, error) {
	var s Settings

	appID := env(EnvAppID)
	appSecret, hasSecret := firstNonBlankSecretEnv(EnvAppSecret)
	switch {
	case appID != "" || hasSecret:
		if appID == "" || !hasSecret {
			return Settings{}, fmt.Errorf("environment variables %s and %s must both be set", EnvAppID, EnvAppSecret)
		}
		s.AppID = appID
		s.AppSecret = appSecret
	default:
		name := profileName
		if name == "" {
			name = env(EnvProfile)
		}
		if name == "" {
			current, err := CurrentProfile()
			if err != nil {
				return Settings{}, err
			}
			name = current
		}
		p, err := LoadProfile(name)
		if err != nil {
			return Settings{}, err
		}
		s.Profile = p
		s.Name = name
	}

	overlay(&s.BaseURL, EnvBaseURL)
	overlay(&s.HelpdeskID, EnvHelpdeskID)
	overlaySecret(&s.HelpdeskToken, EnvHelpdeskToken)
	overlay(&s.WebhookURL, EnvWebhookURL)
	overlaySecret(&s.WebhookSecret, EnvWebhookSecret)
	overlay(&s.TokenStore, EnvTokenStore)
	overlaySecret(&s.RedisURL, EnvRedisURL)
	if tok, ok := firstNonBlankSecretEnv(EnvUserAccessToken); ok {
		// An env token is used as is and never refreshed.
		s.UserAccessToken = tok
		s.UserRefreshToken = ""
		s.UserTokenExpiry = time.Time{}
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	s.TokenStore = strings.ToLower(s.TokenStore)

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// ResolveWebhook finds the custom bot webhook, preferring explicit values,
// then the environment, then the current profile. Webhooks need no app
// credentials, so a missing profile is not an error here.
func ResolveWebhook(hookURL, secret string) (string, string, error) {
	if hookURL == "" {
		hookURL = env(EnvWebhookURL)
	}
	if secret == "" {
		secret, _ = firstNonBlankSecretEnv(EnvWebhookSecret)
	}
	if hookURL == "" || secret == "" {
		name := env(EnvProfile)
		if name == "" {
			name, _ = CurrentProfile()
		}
		if p, err := LoadProfile(name); err == nil {
			if hookURL == "" {
				hookURL = p.WebhookURL
				if secret == "" {
					secret = p.WebhookSecret
				}
			}
		} else if !errors.Is(err, ErrNotConfigured) {
			return "", "", err
		}
	}
	if hookURL == "" {
		return "", "", fmt.Errorf("webhook URL not configured (pass --webhook or set %s)", EnvWebhookURL)
	}
	return hookURL, secret, nil
}

func env(key string) string {
	return firstNonBlankEnv(key)
}

func overlay(field *string, key string) {
	if v := env(key); v != "" {
		*field = v
	}
}

func overlaySecret(field *string, key string) {
	if v, ok := firstNonBlankSecretEnv(key); ok {
		*field = v
	}
}
