package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/config"
)

// HandleError renders err for a terminal with suggestions.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	var apiErr *api.APIError
	var rateLimitErr *api.RateLimitError
	var authErr *api.AuthError
	var validationErr *api.ValidationError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No app credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: lark auth login --app-id cli_xxx --app-secret ...\n")
		msg.WriteString("  - Or export LARK_APP_ID and LARK_APP_SECRET\n")

	case errors.As(err, &rateLimitErr):
		fmt.Fprintf(&msg, "Rate limit exceeded (retry after %s).\n\n", rateLimitErr.RetryAfter)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Wait a few seconds and retry\n")
		msg.WriteString("  - Throttle this run with --rate-limit\n")

	case api.IsCircuitBreakerError(err):
		msg.WriteString("Service temporarily unavailable (circuit breaker open).\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The API has failed repeatedly; wait 30 seconds and retry\n")

	case errors.As(err, &authErr):
		fmt.Fprintf(&msg, "Authentication failed: %s\n\n", authErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: lark auth status\n")
		msg.WriteString("  - Run: lark auth login (app credentials) or lark auth user-login (user token)\n")

	case errors.As(err, &validationErr):
		fmt.Fprintf(&msg, "Error: %s\n", validationErr.Error())

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "%s\n\n", apiErr.Error())
		msg.WriteString(suggestionsForAPIError(apiErr))
		if apiErr.LogID != "" {
			fmt.Fprintf(&msg, "\nLog ID: %s\n", apiErr.LogID)
		}

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL: lark auth status\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL spelling (open.feishu.cn or open.larksuite.com)\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForAPIError(apiErr *api.APIError) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	switch apiErr.Code {
	case api.CodeInvalidAppCredentials:
		s.WriteString("  - The app ID or secret is wrong; re-run: lark auth login\n")
		return s.String()
	case api.CodePermissionDenied, api.CodeUserPermissionDenied:
		s.WriteString("  - Grant the missing scope to the app in the developer console\n")
		s.WriteString("  - Publish a new app version so the scope takes effect\n")
		return s.String()
	case api.CodeUserTokenInvalid, api.CodeUserTokenExpired:
		s.WriteString("  - The user access token is no longer valid; run: lark auth user-login\n")
		return s.String()
	}

	code, ok := api.ErrorCodeFromVendor(apiErr.Code)
	if !ok {
		code = api.ErrorCodeFromStatus(apiErr.StatusCode)
	}
	if suggestion := code.Suggestion(); suggestion != "" {
		fmt.Fprintf(&s, "  - %s\n", suggestion)
	}
	s.WriteString("  - Use --debug to see the full request\n")
	return s.String()
}
