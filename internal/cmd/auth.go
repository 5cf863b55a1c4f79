package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/cache"
	"github.com/larkkit/lark-cli/internal/config"
	"github.com/larkkit/lark-cli/internal/iocontext"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage app credentials, profiles and user tokens",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthTokenCmd())
	cmd.AddCommand(newAuthUserLoginCmd())
	cmd.AddCommand(newAuthWhoamiCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthClearCacheCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		p        config.Profile
		name     string
		envFile  string
		lark     bool
		noVerify bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store app credentials in the system keyring",
		Long: `Store a self-built app's credentials in the system keyring.

The credentials are checked by fetching a tenant access token unless
--no-verify is set. The saved profile becomes the current one.`,
		Example: `  lark auth login --app-id cli_a1b2c3 --app-secret -
  lark auth login --from-env-file ./prod.env --profile-name prod
  lark auth login --app-id cli_a1b2c3 --app-secret s3cr3t --lark --token-store file`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				fromFile, err := config.ReadEnvFile(envFile)
				if err != nil {
					return err
				}
				mergeProfile(&p, fromFile)
			}
			if p.AppSecret != "" {
				secret, err := iocontext.ReadValue(cmd.Context(), p.AppSecret)
				if err != nil {
					return err
				}
				p.AppSecret = strings.TrimSpace(secret)
			}
			if lark {
				if p.BaseURL != "" && p.BaseURL != api.LarkBaseURL {
					return fmt.Errorf("--lark conflicts with --base-url %s", p.BaseURL)
				}
				p.BaseURL = api.LarkBaseURL
			}
			p.BaseURL = strings.TrimRight(p.BaseURL, "/")
			p.TokenStore = strings.ToLower(p.TokenStore)
			if err := p.Validate(); err != nil {
				return err
			}

			if !noVerify {
				client := newClientFactory().newClient(p.BaseURL, p.AppID, p.AppSecret)
				if _, err := client.Tokens.TenantAccessToken(cmd.Context()); err != nil {
					return fmt.Errorf("credential check failed: %w", err)
				}
			}
			if err := config.SaveProfile(name, p); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "app_id": p.AppID, "base_url": baseURLOrDefault(p.BaseURL), "verified": !noVerify})
			}
			printAction(cmd, "Saved", "profile", fmt.Sprintf("%q for app %s", name, p.AppID))
			return nil
		}),
	}
	cmd.Flags().StringVar(&p.AppID, "app-id", "", "App ID (cli_...)")
	cmd.Flags().StringVar(&p.AppSecret, "app-secret", "", "App secret (- reads stdin, @path reads a file)")
	cmd.Flags().StringVar(&p.BaseURL, "base-url", "", "Open platform URL (default "+api.DefaultBaseURL+")")
	cmd.Flags().BoolVar(&lark, "lark", false, "Use the international Lark platform ("+api.LarkBaseURL+")")
	cmd.Flags().StringVar(&p.HelpdeskID, "helpdesk-id", "", "Helpdesk ID")
	cmd.Flags().StringVar(&p.HelpdeskToken, "helpdesk-token", "", "Helpdesk token")
	cmd.Flags().StringVar(&p.WebhookURL, "webhook", "", "Default custom bot webhook URL")
	cmd.Flags().StringVar(&p.WebhookSecret, "webhook-secret", "", "Webhook signing secret")
	cmd.Flags().StringVar(&p.TokenStore, "token-store", "", "Where access tokens are cached: memory|file|redis")
	cmd.Flags().StringVar(&p.RedisURL, "redis-url", "", "redis:// URL for --token-store redis")
	cmd.Flags().StringVar(&name, "profile-name", "default", "Profile name")
	cmd.Flags().StringVar(&envFile, "from-env-file", "", "Read LARK_* values from a .env file")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Save without checking the credentials")
	return cmd
}

// mergeProfile fills empty fields of dst from src.
func mergeProfile(dst *config.Profile, src config.Profile) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.AppID, src.AppID)
	fill(&dst.AppSecret, src.AppSecret)
	fill(&dst.BaseURL, src.BaseURL)
	fill(&dst.HelpdeskID, src.HelpdeskID)
	fill(&dst.HelpdeskToken, src.HelpdeskToken)
	fill(&dst.WebhookURL, src.WebhookURL)
	fill(&dst.WebhookSecret, src.WebhookSecret)
	fill(&dst.TokenStore, src.TokenStore)
	fill(&dst.RedisURL, src.RedisURL)
}

func baseURLOrDefault(u string) string {
	if u == "" {
		return api.DefaultBaseURL
	}
	return u
}

type authStatus struct {
	Profile       string     `json:"profile,omitempty"`
	Source        string     `json:"source"`
	AppID         string     `json:"app_id"`
	BaseURL       string     `json:"base_url"`
	TokenStore    string     `json:"token_store"`
	Helpdesk      bool       `json:"helpdesk"`
	Webhook       bool       `json:"webhook"`
	UserToken     bool       `json:"user_token"`
	UserExpiry    *time.Time `json:"user_token_expiry,omitempty"`
	Authenticated *bool      `json:"authenticated,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func newAuthStatusCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			s := sess.Settings
			st := authStatus{
				Profile:    s.Name,
				Source:     "keyring",
				AppID:      s.AppID,
				BaseURL:    sess.Client.BaseURL,
				TokenStore: s.TokenStore,
				Helpdesk:   s.HelpdeskID != "" && s.HelpdeskToken != "",
				Webhook:    s.WebhookURL != "",
				UserToken:  s.HasUserToken(),
			}
			if s.Name == "" {
				st.Source = "environment"
			}
			if st.TokenStore == "" {
				st.TokenStore = config.TokenStoreMemory
			}
			if !s.UserTokenExpiry.IsZero() {
				expiry := s.UserTokenExpiry
				st.UserExpiry = &expiry
			}
			if check {
				_, err := sess.Client.Tokens.TenantAccessToken(cmd.Context())
				ok := err == nil
				st.Authenticated = &ok
				if err != nil {
					st.Error = err.Error()
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, st)
			}
			expiry := ""
			if st.UserExpiry != nil {
				expiry = st.UserExpiry.Local().Format(time.RFC3339)
			}
			authenticated := ""
			if st.Authenticated != nil {
				authenticated = "yes"
				if !*st.Authenticated {
					authenticated = "no (" + st.Error + ")"
				}
			}
			printDetail(cmd, "",
				"Profile", st.Profile,
				"Source", st.Source,
				"App ID", st.AppID,
				"Base URL", st.BaseURL,
				"Token store", st.TokenStore,
				"Helpdesk", yesNo(st.Helpdesk),
				"Webhook", yesNo(st.Webhook),
				"User token", yesNo(st.UserToken),
				"User token expiry", expiry,
				"Authenticated", authenticated,
			)
			if st.Authenticated != nil && !*st.Authenticated {
				return &handledError{err: fmt.Errorf("credential check failed: %s", st.Error), exitCode: exitAuth}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&check, "check", false, "Fetch a tenant token to verify the credentials")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [profile]",
		Short: "Remove a stored profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := flags.Profile
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				name = os.Getenv(config.EnvProfile)
			}
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}
			if _, err := config.LoadProfile(name); err != nil {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Remove profile " + name + "?"})
			if err != nil || !ok {
				return err
			}
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "removed": true})
			}
			printAction(cmd, "Removed", "profile", name)
			return nil
		}),
	}
}

func newAuthTokenCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a tenant or app access token",
		Long: `Print an access token for use with other tools. The token comes from
the configured token store and is fetched when missing or near expiry.`,
		Example: `  curl -H "Authorization: Bearer $(lark auth token)" https://open.feishu.cn/open-apis/im/v1/chats`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			var token string
			switch kind {
			case "tenant":
				token, err = sess.Client.Tokens.TenantAccessToken(cmd.Context())
			case "app":
				token, err = sess.Client.Tokens.AppAccessToken(cmd.Context())
			default:
				return fmt.Errorf("invalid --type %q: must be tenant or app", kind)
			}
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"type": kind, "token": token})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, token)
			return nil
		}),
	}
	cmd.Flags().StringVar(&kind, "type", "tenant", "tenant or app")
	return cmd
}

// authorizeURL builds the browser URL that starts the OAuth code flow.
func authorizeURL(baseURL, appID, redirectURI, state string) string {
	q := url.Values{}
	q.Set("app_id", appID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return baseURLOrDefault(baseURL) + "/open-apis/authen/v1/authorize?" + q.Encode()
}

func newAuthUserLoginCmd() *cobra.Command {
	var code, redirectURI string
	cmd := &cobra.Command{
		Use:   "user-login",
		Short: "Obtain a user access token through OAuth",
		Long: `Obtain a user access token for endpoints that act on behalf of a user.

Run with --redirect-uri to print the authorization URL, open it in a
browser, then pass the code from the redirect with --code. The token pair
is saved on the current profile and refreshed automatically.`,
		Example: `  lark auth user-login --redirect-uri https://example.com/callback
  lark auth user-login --code 2Ed4xxxxx`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if code == "" && redirectURI == "" {
				return fmt.Errorf("--code or --redirect-uri is required")
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if code == "" {
				link := authorizeURL(sess.Client.BaseURL, sess.Settings.AppID, redirectURI, uuid.NewString())
				if isJSON(cmd) {
					return printJSON(cmd, map[string]string{"authorize_url": link})
				}
				out := iocontext.GetIO(cmd.Context()).Out
				_, _ = fmt.Fprintln(out, "Open this URL, approve access, then run 'lark auth user-login --code <code>':")
				_, _ = fmt.Fprintln(out, link)
				return nil
			}

			issuedAt := nowFunc()
			tok, err := sess.Client.Authen().GetUserAccessToken(cmd.Context(), &api.UserAccessTokenRequest{
				GrantType: "authorization_code",
				Code:      code,
			})
			if err != nil {
				return err
			}
			oauthTok := tok.OAuth2Token(issuedAt)

			saved := false
			if sess.Settings.Name != "" {
				if err := config.SaveUserToken(sess.Settings.Name, oauthTok.AccessToken, oauthTok.RefreshToken, oauthTok.Expiry); err != nil {
					return err
				}
				saved = true
			}
			if isJSON(cmd) {
				payload := map[string]any{
					"profile":    sess.Settings.Name,
					"saved":      saved,
					"expires_at": oauthTok.Expiry,
					"scope":      tok.Scope,
				}
				if !saved {
					payload["access_token"] = tok.AccessToken
					payload["refresh_token"] = tok.RefreshToken
				}
				return printJSON(cmd, payload)
			}
			if !saved {
				out := iocontext.GetIO(cmd.Context()).Out
				_, _ = fmt.Fprintln(out, "No keyring profile in use; export the token instead:")
				_, _ = fmt.Fprintf(out, "export %s=%s\n", config.EnvUserAccessToken, tok.AccessToken)
				return nil
			}
			printAction(cmd, "Saved", "user token on profile", sess.Settings.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the redirect")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Print the authorization URL for this redirect URI")
	cmd.MarkFlagsMutuallyExclusive("code", "redirect-uri")
	return cmd
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Describe the user owning the stored user token",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if !sess.Settings.HasUserToken() {
				return &api.AuthError{Reason: "no user access token; run 'lark auth user-login'"}
			}
			info, err := sess.Client.Authen().GetUserInfo(cmd.Context(), sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printDetail(cmd, info.Name,
				"Open ID", info.OpenID,
				"Union ID", info.UnionID,
				"User ID", info.UserID,
				"Email", info.Email,
				"Tenant", info.TenantKey,
			)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": current, "profiles": names})
			}
			f := newFormatter(cmd)
			if len(names) == 0 {
				f.Empty("No profiles. Run 'lark auth login'.")
				return nil
			}
			for _, n := range names {
				marker := " "
				if n == current {
					marker = "*"
				}
				f.Row(marker, n)
			}
			return f.EndTable()
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := config.SetCurrentProfile(args[0]); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"current": args[0]})
			}
			printAction(cmd, "Switched to", "profile", args[0])
			return nil
		}),
	})
	return cmd
}

func newAuthClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete cached access tokens from the file token store",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return err
			}
			if err := cache.ClearAll(dir); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"cleared": true, "dir": dir})
			}
			printAction(cmd, "Cleared", "token cache", dir)
			return nil
		}),
	}
}
