package api

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/oauth2"
)

// UserAccessTokenRequest exchanges an authorization code from the OAuth
// redirect for a user access token.
type UserAccessTokenRequest struct {
	GrantType string `json:"grant_type"`
	Code      string `json:"code"`
}

func (r *UserAccessTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType, validation.Required, validation.In("authorization_code")),
		validation.Field(&r.Code, validation.Required),
	)
}

// RefreshUserAccessTokenRequest trades a refresh token for a new pair.
type RefreshUserAccessTokenRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshUserAccessTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType, validation.Required, validation.In("refresh_token")),
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// UserAccessToken is an issued user token pair. ExpiresIn and
// RefreshExpiresIn are seconds from issue.
type UserAccessToken struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	Scope            string `json:"scope,omitempty"`
}

// OAuth2Token converts t, issued at issuedAt, into an oauth2.Token.
func (t *UserAccessToken) OAuth2Token(issuedAt time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// UserInfo describes the user owning a user access token.
type UserInfo struct {
	Name            string `json:"name"`
	EnName          string `json:"en_name,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	OpenID          string `json:"open_id"`
	UnionID         string `json:"union_id"`
	Email           string `json:"email,omitempty"`
	EnterpriseEmail string `json:"enterprise_email,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	TenantKey       string `json:"tenant_key"`
	EmployeeNo      string `json:"employee_no,omitempty"`
}

// userTokenSource serves the current user token until it expires and then
// refreshes the pair through the OIDC refresh endpoint. oauth2.ReuseTokenSource
// decides when the current token is stale.
type userTokenSource struct {
	client    *Client
	onRefresh func(*oauth2.Token)

	mu      sync.Mutex
	current *oauth2.Token
}

// Token refreshes, when needed, under DefaultTimeout.
func (s *userTokenSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext is Token with the refresh bound to ctx, so a call's deadline
// or WithTimeout also limits the refresh it triggers. A ctx without deadline
// gets DefaultTimeout.
func (s *userTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refresh := tokenSourceFunc(func() (*oauth2.Token, error) { return s.refresh(ctx) })
	tok, err := oauth2.ReuseTokenSource(s.current, refresh).Token()
	if err != nil {
		return nil, err
	}
	s.current = tok
	return tok, nil
}

func (s *userTokenSource) refresh(ctx context.Context) (*oauth2.Token, error) {
	if s.current == nil || s.current.RefreshToken == "" {
		return nil, &AuthError{Reason: "user access token expired and no refresh token is available; run 'lark auth user-login'"}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	issuedAt := time.Now()
	issued, err := s.client.Authen().RefreshUserAccessToken(ctx, &RefreshUserAccessTokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: s.current.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	tok := issued.OAuth2Token(issuedAt)
	if s.onRefresh != nil {
		s.onRefresh(tok)
	}
	return tok, nil
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// contextTokenSource is implemented by token sources that can bound a
// refresh by the caller's context.
type contextTokenSource interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// UserTokenSource returns a token source that serves tok until it expires
// and then refreshes it with the app access token. onRefresh, if non-nil,
// receives every refreshed pair so callers can persist it. Passed through
// WithUserTokenSource, a refresh is bounded by the call's context.
func (c *Client) UserTokenSource(tok *oauth2.Token, onRefresh func(*oauth2.Token)) oauth2.TokenSource {
	return &userTokenSource{client: c, onRefresh: onRefresh, current: tok}
}
