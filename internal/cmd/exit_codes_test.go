package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/config"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"not configured", fmt.Errorf("resolve: %w", config.ErrNotConfigured), exitAuth},
		{"auth", &api.AuthError{Reason: "missing"}, exitAuth},
		{"token expired", &api.APIError{StatusCode: 200, Code: api.CodeTenantTokenInvalid, Msg: "invalid token"}, exitAuth},
		{"bad credentials", &api.APIError{StatusCode: 200, Code: api.CodeInvalidAppCredentials, Msg: "app secret invalid"}, exitAuth},
		{"permission", &api.APIError{StatusCode: 200, Code: api.CodePermissionDenied, Msg: "no scope"}, exitForbidden},
		{"not found", &api.APIError{StatusCode: 404, Msg: "not found"}, exitNotFound},
		{"forbidden", &api.APIError{StatusCode: 403, Msg: "forbidden"}, exitForbidden},
		{"rate limited", &api.RateLimitError{RetryAfter: time.Second}, exitRateLimited},
		{"server", &api.APIError{StatusCode: 502, Msg: "bad gateway"}, exitServer},
		{"circuit", &api.CircuitBreakerError{}, exitServer},
		{"validation", &api.ValidationError{Op: "Messages.Send", Err: errors.New("receive_id: cannot be blank")}, exitUsage},
		{"usage", errors.New(`unknown command "nope" for "lark"`), exitUsage},
		{"usage shorthand", errors.New("unknown shorthand flag: 'z' in -z"), exitUsage},
		{"missing flag", errors.New("--text is required"), exitUsage},
		{"network", errors.New("dial tcp 127.0.0.1:1: connection refused"), exitNetwork},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), exitNetwork},
		{"generic", errors.New("boom"), exitGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.code {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.code)
			}
		})
	}
}

func TestExitCode_HandledErrorUsesStoredCode(t *testing.T) {
	err := &handledError{err: errors.New("wrapped"), exitCode: exitNotFound}
	if got := ExitCode(err); got != exitNotFound {
		t.Fatalf("ExitCode(handled) = %d, want %d", got, exitNotFound)
	}
}

func TestExitCode_HandledErrorWithoutCodeInspectsCause(t *testing.T) {
	err := &handledError{err: &api.APIError{StatusCode: 404, Msg: "gone"}}
	if got := ExitCode(err); got != exitNotFound {
		t.Fatalf("ExitCode = %d, want %d", got, exitNotFound)
	}
}
