package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/config"
	"github.com/larkkit/lark-cli/internal/debug"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
	"github.com/larkkit/lark-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output       string
	JSON         bool
	JQ           string
	Template     string
	Compact      bool
	Debug        bool
	Quiet        bool
	Yes          bool
	AllowPrivate bool
	Profile      string
	EnvFile      string
	Timeout      time.Duration
	RateLimit    float64
	RateBurst    int

	MaxRateLimitRetries     int
	Max5xxRetries           int
	RateLimitDelay          time.Duration
	ServerErrorDelay        time.Duration
	CircuitBreakerThreshold int
	CircuitBreakerResetTime time.Duration

	MaxRateLimitRetriesSet     bool
	Max5xxRetriesSet           bool
	RateLimitDelaySet          bool
	ServerErrorDelaySet        bool
	CircuitBreakerThresholdSet bool
	CircuitBreakerResetTimeSet bool
}

// flags holds the global command flags. It is reset at the start of every
// Execute call; code outside a command's RunE reads the previous run's values.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv("LARK_ALLOW_PRIVATE"),
		Timeout:      api.DefaultTimeout,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("LARK_OUTPUT")); value != "" {
		return normalizeOutputFormat(value)
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "ndjson" {
		return "jsonl"
	}
	return value
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// The default .env is loaded before flag defaults are computed so that
	// LARK_OUTPUT and LARK_ALLOW_PRIVATE set there apply.
	_ = config.LoadEnvFiles(config.DefaultEnvFile())

	flags = defaultFlags()

	root := &cobra.Command{
		Use:   "lark",
		Short: "CLI for the Feishu / Lark open platform",
		Long: strings.TrimSpace(`
lark talks to the Feishu / Lark open platform as a self-built app.

Configure an app once with 'lark auth login', or export LARK_APP_ID and
LARK_APP_SECRET. Tenant access tokens are fetched and refreshed automatically.`),
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupRun(cmd)
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env LARK_OUTPUT)")
	pf.BoolVar(&flags.JSON, "json", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "jq expression applied to JSON output")
	pf.StringVar(&flags.Template, "template", "", "Go template (or @path) rendered against JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost base URLs (env LARK_ALLOW_PRIVATE)")
	pf.StringVarP(&flags.Profile, "profile", "p", "", "Credential profile to use (env LARK_PROFILE)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load LARK_* variables from a .env file")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&flags.RateLimit, "rate-limit", 0, "Max requests per second sent by this run (0 = unlimited)")
	pf.IntVar(&flags.RateBurst, "rate-burst", 1, "Burst size for --rate-limit")
	pf.IntVar(&flags.MaxRateLimitRetries, "max-rate-limit-retries", 0, "Max retries for rate limited calls (overrides env)")
	pf.IntVar(&flags.Max5xxRetries, "max-5xx-retries", 0, "Max retries for 5xx responses (overrides env)")
	pf.DurationVar(&flags.RateLimitDelay, "rate-limit-delay", 0, "Base delay for rate limit retries (overrides env)")
	pf.DurationVar(&flags.ServerErrorDelay, "server-error-delay", 0, "Delay between 5xx retries (overrides env)")
	pf.IntVar(&flags.CircuitBreakerThreshold, "circuit-breaker-threshold", 0, "Failures before the circuit opens (overrides env)")
	pf.DurationVar(&flags.CircuitBreakerResetTime, "circuit-breaker-reset-time", 0, "Circuit breaker reset time (overrides env)")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newMessagesCmd())
	root.AddCommand(newChatsCmd())
	root.AddCommand(newContactsCmd())
	root.AddCommand(newApprovalCmd())
	root.AddCommand(newCalendarCmd())
	root.AddCommand(newHelpdeskCmd())
	root.AddCommand(newDriveCmd())
	root.AddCommand(newImagesCmd())
	root.AddCommand(newFilesCmd())
	root.AddCommand(newBotCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

func setupRun(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if flags.EnvFile != "" {
		if err := config.LoadEnvFiles(flags.EnvFile); err != nil {
			return err
		}
	}

	flags.Output = normalizeOutputFormat(flags.Output)
	if flags.JSON {
		if cmd.Flags().Changed("output") && flags.Output != "json" {
			return fmt.Errorf("--json conflicts with --output %s", flags.Output)
		}
		flags.Output = "json"
	}
	if (flags.JQ != "" || flags.Template != "") && flags.Output == "text" {
		if cmd.Flags().Changed("output") {
			return fmt.Errorf("--jq and --template require --output json or jsonl")
		}
		flags.Output = "json"
	}

	mode, err := outfmt.Parse(flags.Output)
	if err != nil {
		return err
	}
	ctx = outfmt.WithMode(ctx, mode)
	ctx = outfmt.WithCompact(ctx, flags.Compact)
	if flags.JQ != "" {
		ctx = outfmt.WithQuery(ctx, flags.JQ)
	}
	if flags.Template != "" {
		tmpl, err := iocontext.ReadValue(ctx, flags.Template)
		if err != nil {
			return fmt.Errorf("--template: %w", err)
		}
		ctx = outfmt.WithTemplate(ctx, tmpl)
	}

	ioStreams := iocontext.DefaultIO()
	if flags.Quiet {
		ioStreams.ErrOut = io.Discard
		if mode == outfmt.Text {
			ioStreams.Out = io.Discard
		}
	}
	ctx = iocontext.WithIO(ctx, ioStreams)
	cmd.SetOut(ioStreams.Out)
	cmd.SetErr(ioStreams.ErrOut)

	validation.SetAllowPrivate(flags.AllowPrivate)
	if flags.AllowPrivate && !flags.Quiet {
		_, _ = fmt.Fprintln(ioStreams.ErrOut, "Warning: allowing private/localhost URLs (use only with trusted targets).")
	}

	debug.SetupLogger(flags.Debug)
	ctx = debug.WithDebug(ctx, flags.Debug)

	if err := recordRetryFlags(cmd.Flags()); err != nil {
		return err
	}
	if flags.RateLimit < 0 {
		return fmt.Errorf("--rate-limit must be >= 0")
	}

	cmd.SetContext(ctx)
	return nil
}

func recordRetryFlags(fs *pflag.FlagSet) error {
	flags.MaxRateLimitRetriesSet = fs.Changed("max-rate-limit-retries")
	flags.Max5xxRetriesSet = fs.Changed("max-5xx-retries")
	flags.RateLimitDelaySet = fs.Changed("rate-limit-delay")
	flags.ServerErrorDelaySet = fs.Changed("server-error-delay")
	flags.CircuitBreakerThresholdSet = fs.Changed("circuit-breaker-threshold")
	flags.CircuitBreakerResetTimeSet = fs.Changed("circuit-breaker-reset-time")

	switch {
	case flags.MaxRateLimitRetriesSet && flags.MaxRateLimitRetries < 0:
		return fmt.Errorf("--max-rate-limit-retries must be >= 0")
	case flags.Max5xxRetriesSet && flags.Max5xxRetries < 0:
		return fmt.Errorf("--max-5xx-retries must be >= 0")
	case flags.RateLimitDelaySet && flags.RateLimitDelay < 0:
		return fmt.Errorf("--rate-limit-delay must be >= 0")
	case flags.ServerErrorDelaySet && flags.ServerErrorDelay < 0:
		return fmt.Errorf("--server-error-delay must be >= 0")
	case flags.CircuitBreakerThresholdSet && flags.CircuitBreakerThreshold < 0:
		return fmt.Errorf("--circuit-breaker-threshold must be >= 0")
	case flags.CircuitBreakerResetTimeSet && flags.CircuitBreakerResetTime < 0:
		return fmt.Errorf("--circuit-breaker-reset-time must be >= 0")
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command
// and flag errors. targetCmd is the command cobra resolved, possibly root.
func enhanceUnknownError(err error, root, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		if targetCmd == nil {
			targetCmd = root
		}
		var names []string
		collect := func(f *pflag.Flag) {
			names = append(names, "--"+f.Name)
			if f.Shorthand != "" {
				names = append(names, "-"+f.Shorthand)
			}
		}
		targetCmd.Flags().VisitAll(collect)
		targetCmd.InheritedFlags().VisitAll(collect)

		help := strings.TrimSpace(targetCmd.CommandPath()) + " --help"
		if suggestion := suggestFlag(unknown, names); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, help)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, help)
	}

	return msg
}

// extractQuoted returns the first double-quoted substring of s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag pulls "--name" or "-x" out of a pflag error message.
func extractFlag(s string) string {
	if idx := strings.Index(s, "--"); idx >= 0 {
		rest := s[idx:]
		if end := strings.IndexAny(rest, " =\n"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimRight(rest, ".,;:!?\"'")
	}
	// "unknown shorthand flag: 'x' in -x"
	idx := strings.LastIndex(s, " -")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(s[idx+1:])
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) > 1 && strings.HasPrefix(rest, "-") {
		return rest
	}
	return ""
}
