package api

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// CallOption adjusts a single endpoint call.
type CallOption func(*callOptions)

type callOptions struct {
	timeout         time.Duration
	header          http.Header
	userToken       string
	userTokenSource oauth2.TokenSource
}

func collectOptions(opts []CallOption) *callOptions {
	o := &callOptions{header: http.Header{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithTimeout bounds the whole call, including token refresh and retries.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}

// WithHeader adds a request header. Authorization cannot be overridden.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		o.header.Add(key, value)
	}
}

// WithUserAccessToken authenticates the call as a user on endpoints that
// accept a user access token.
func WithUserAccessToken(token string) CallOption {
	return func(o *callOptions) {
		o.userToken = token
	}
}

// WithUserTokenSource is like WithUserAccessToken but asks src for the token,
// letting it refresh an expired one first.
func WithUserTokenSource(src oauth2.TokenSource) CallOption {
	return func(o *callOptions) {
		o.userTokenSource = src
	}
}
