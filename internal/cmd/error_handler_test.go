package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "not configured",
			err:  config.ErrNotConfigured,
			want: []string{"No app credentials configured", "lark auth login", "LARK_APP_ID"},
		},
		{
			name: "rate limit",
			err:  &api.RateLimitError{RetryAfter: 3 * time.Second},
			want: []string{"Rate limit exceeded (retry after 3s)", "--rate-limit"},
		},
		{
			name: "circuit breaker",
			err:  fmt.Errorf("send: %w", &api.CircuitBreakerError{}),
			want: []string{"circuit breaker open"},
		},
		{
			name: "auth",
			err:  &api.AuthError{Reason: "no user access token"},
			want: []string{"Authentication failed: no user access token", "lark auth user-login"},
		},
		{
			name: "validation",
			err:  &api.ValidationError{Op: "Chats.Get", Err: errors.New("chat_id: cannot be blank")},
			want: []string{"Error:", "chat_id"},
		},
		{
			name: "permission code",
			err:  &api.APIError{StatusCode: 200, Code: api.CodePermissionDenied, Msg: "Access denied", LogID: "20240101abc"},
			want: []string{"code 99991672", "Grant the missing scope", "Log ID: 20240101abc"},
		},
		{
			name: "bad app secret",
			err:  &api.APIError{StatusCode: 200, Code: api.CodeInvalidAppCredentials, Msg: "app secret invalid"},
			want: []string{"lark auth login"},
		},
		{
			name: "expired user token",
			err:  &api.APIError{StatusCode: 401, Code: api.CodeUserTokenExpired, Msg: "token expired"},
			want: []string{"lark auth user-login"},
		},
		{
			name: "plain status",
			err:  &api.APIError{StatusCode: 500, Msg: "internal"},
			want: []string{"status 500", "--debug"},
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:9: connect: connection refused"),
			want: []string{"Connection refused", "lark auth status"},
		},
		{
			name: "dns",
			err:  errors.New("dial tcp: lookup open.feishu.cm: no such host"),
			want: []string{"DNS resolution failed"},
		},
		{
			name: "generic",
			err:  errors.New("something odd"),
			want: []string{"Error: something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("HandleError() missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestHandleError_Nil(t *testing.T) {
	if got := HandleError(nil); got != "" {
		t.Fatalf("HandleError(nil) = %q, want empty", got)
	}
}
