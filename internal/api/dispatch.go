package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/oauth2"
)

// File is a binary payload returned by download endpoints.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// credential is the bearer token chosen for one attempt.
type credential struct {
	kind  AccessTokenType
	token string
}

// cached reports whether the token came from the TokenManager and can be
// refreshed by invalidating it.
func (c credential) cached() bool {
	return c.kind == AccessTokenTenant || c.kind == AccessTokenApp
}

// dedupKeyed is implemented by requests that carry a server-side
// de-duplication key. Such requests are safe to retry.
type dedupKeyed interface {
	fillUUID(newUUID func() string)
}

func (c *Client) call(ctx context.Context, ep Endpoint, req any, result any, opts ...CallOption) error {
	o := collectOptions(opts)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	idempotent := false
	if d, ok := req.(dedupKeyed); ok && !isNilRequest(req) {
		d.fillUUID(c.newUUID)
		idempotent = true
	}

	if v, ok := req.(validation.Validatable); ok && !isNilRequest(req) {
		if err := v.Validate(); err != nil {
			return &ValidationError{Op: ep.String(), Err: err}
		}
	}

	params, err := extractParams(req)
	if err != nil {
		return &ValidationError{Op: ep.String(), Err: err}
	}
	u, err := c.requestURL(ep, params)
	if err != nil {
		return &ValidationError{Op: ep.String(), Err: err}
	}

	out := outbound{method: ep.Method, url: u, idempotent: idempotent}
	switch {
	case ep.Multipart:
		out.body, out.contentType, err = encodeMultipart(params.form, params.files)
		if err != nil {
			return err
		}
	case ep.hasBody() && !isNilRequest(req):
		out.body, err = json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		out.contentType = "application/json; charset=utf-8"
	}
	if ep.Download {
		out.header = http.Header{"Accept": {"*/*"}}
	}

	resp, err := c.send(ctx, ep, o, out)
	if err != nil {
		return err
	}
	return decodeResponse(ep, resp, result)
}

// send attaches credentials and executes out. When the platform rejects a
// cached tenant or app token the token is invalidated, refetched, and the
// request replayed exactly once; a second rejection is returned as is.
func (c *Client) send(ctx context.Context, ep Endpoint, o *callOptions, out outbound) (*response, error) {
	if err := c.ensureBaseURLValidated(); err != nil {
		return nil, err
	}

	base := out.header
	retried := false
	for {
		cred, err := c.authorize(ctx, ep, o)
		if err != nil {
			return nil, err
		}
		header, err := c.headers(ep, cred, o, base)
		if err != nil {
			return nil, err
		}
		out.header = header

		resp, err := c.executeRequest(ctx, out)
		code := responseCode(resp, err)
		if isTokenExpiredCode(code) && cred.cached() && !retried {
			retried = true
			slog.Info("access token expired, retrying", "kind", cred.kind.String(), "code", code)
			if ierr := c.Tokens.invalidateStale(ctx, cred.kind, cred.token); ierr != nil {
				slog.Warn("token cache invalidation failed", "error", ierr)
			}
			continue
		}
		return resp, err
	}
}

// authorize picks the credential for ep: a caller-supplied user token when
// the endpoint accepts one, else the tenant token, else the app token.
func (c *Client) authorize(ctx context.Context, ep Endpoint, o *callOptions) (credential, error) {
	if ep.accepts(AccessTokenUser) {
		if o.userToken != "" {
			return credential{kind: AccessTokenUser, token: o.userToken}, nil
		}
		if o.userTokenSource != nil {
			var tok *oauth2.Token
			var err error
			if cs, ok := o.userTokenSource.(contextTokenSource); ok {
				tok, err = cs.TokenContext(ctx)
			} else {
				tok, err = o.userTokenSource.Token()
			}
			if err != nil {
				return credential{}, &AuthError{Reason: fmt.Sprintf("user access token unavailable: %v", err)}
			}
			return credential{kind: AccessTokenUser, token: tok.AccessToken}, nil
		}
	}
	if ep.accepts(AccessTokenTenant) {
		token, err := c.Tokens.TenantAccessToken(ctx)
		if err != nil {
			return credential{}, err
		}
		return credential{kind: AccessTokenTenant, token: token}, nil
	}
	if ep.accepts(AccessTokenApp) {
		token, err := c.Tokens.AppAccessToken(ctx)
		if err != nil {
			return credential{}, err
		}
		return credential{kind: AccessTokenApp, token: token}, nil
	}
	if ep.accepts(AccessTokenUser) {
		return credential{}, &AuthError{Reason: fmt.Sprintf("%s requires a user access token", ep)}
	}
	return credential{kind: AccessTokenNone}, nil
}

func (c *Client) headers(ep Endpoint, cred credential, o *callOptions, base http.Header) (http.Header, error) {
	h := http.Header{}
	for k, v := range base {
		h[k] = append([]string(nil), v...)
	}
	for k, v := range o.header {
		h[k] = append(h[k], v...)
	}
	h.Del("Authorization")
	if cred.token != "" {
		h.Set("Authorization", "Bearer "+cred.token)
	}
	if ep.Helpdesk {
		if c.HelpdeskID == "" || c.HelpdeskToken == "" {
			return nil, &AuthError{Reason: "helpdesk ID and token are required"}
		}
		h.Set(headerHelpdesk, base64.StdEncoding.EncodeToString([]byte(c.HelpdeskID+":"+c.HelpdeskToken)))
	}
	return h, nil
}

// responseCode returns the application code of a response or error, or 0.
func responseCode(resp *response, err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	if err != nil || resp == nil || !resp.isJSON() {
		return 0
	}
	return envelopeCode(resp.body)
}

// decodeResponse unwraps the envelope into result. Download endpoints fill
// a *File unless the platform answered with a JSON error envelope.
func decodeResponse(ep Endpoint, resp *response, result any) error {
	if ep.Download && !resp.isJSON() {
		f, ok := result.(*File)
		if !ok {
			return fmt.Errorf("download endpoint %s needs a *File result", ep)
		}
		f.Data = resp.body
		f.ContentType = resp.header.Get("Content-Type")
		f.Name = fileNameFromHeader(resp.header)
		return nil
	}

	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	if env.Code != CodeOK {
		return &APIError{StatusCode: resp.status, Code: env.Code, Msg: env.Msg, LogID: resp.logID()}
	}
	if result == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if _, ok := result.(*File); ok {
		return fmt.Errorf("expected binary content from %s, got JSON", ep)
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

func fileNameFromHeader(h http.Header) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// isNilRequest reports whether req is nil or a typed nil pointer.
func isNilRequest(req any) bool {
	if req == nil {
		return true
	}
	rv := reflect.ValueOf(req)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
