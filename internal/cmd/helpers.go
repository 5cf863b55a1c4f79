package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// cmdContext returns the command context
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// newFormatter builds an output formatter on the command's streams.
func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

// printJSON outputs data honoring --output, --jq and --template.
func printJSON(cmd *cobra.Command, v any) error {
	return newFormatter(cmd).Output(v)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printAction reports a completed mutation in text mode.
func printAction(cmd *cobra.Command, action, resource, id string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}
	msg := action + " " + resource
	if id != "" {
		msg += " " + id
	}
	_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, msg)
}

// printDetail writes aligned "label: value" lines, skipping empty values.
func printDetail(cmd *cobra.Command, title string, pairs ...string) {
	out := iocontext.GetIO(cmd.Context()).Out
	if title != "" {
		_, _ = fmt.Fprintln(out, title)
	}
	width := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		width = max(width, len(pairs[i]))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		_, _ = fmt.Fprintf(out, "  %-*s  %s\n", width+1, pairs[i]+":", pairs[i+1])
	}
}

type confirmOptions struct {
	Prompt string
	Force  bool
}

// confirmAction asks for a y/N answer on the command's input unless --yes or
// Force is set. JSON output never prompts.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes || opts.Force {
		return true, nil
	}
	if isJSON(cmd) {
		return false, fmt.Errorf("--yes is required when using --output json")
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprint(ioStreams.ErrOut, opts.Prompt+" [y/N]: ")

	answer, err := bufio.NewReader(ioStreams.In).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		_, _ = fmt.Fprintln(ioStreams.ErrOut, "Cancelled.")
		return false, nil
	}
}

// splitList splits a comma separated flag value, trimming blanks.
func splitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseTimeFlag accepts RFC 3339, "2006-01-02", "2006-01-02 15:04" or a
// Unix epoch in seconds, and returns the time.
func parseTimeFlag(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	var epoch int64
	if _, err := fmt.Sscanf(value, "%d", &epoch); err == nil && fmt.Sprint(epoch) == value {
		return time.Unix(epoch, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q: use RFC 3339, YYYY-MM-DD or epoch seconds", name, value)
}

// epochSeconds converts an optional time flag to the platform's string form.
func epochSeconds(name, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := parseTimeFlag(name, value)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(t.Unix()), nil
}

// writeDownload stores a downloaded file. An empty dest uses the server's
// file name (or fallback) in the current directory; "-" writes to stdout.
func writeDownload(cmd *cobra.Command, file *api.File, dest, fallback string) (string, error) {
	if dest == "-" {
		_, err := iocontext.GetIO(cmd.Context()).Out.Write(file.Data)
		return "-", err
	}
	if dest == "" {
		dest = filepath.Base(file.Name)
		if file.Name == "" || dest == "." || dest == string(filepath.Separator) {
			dest = fallback
		}
	} else if info, err := os.Stat(dest); err == nil && info.IsDir() {
		name := file.Name
		if name == "" {
			name = fallback
		}
		dest = filepath.Join(dest, filepath.Base(name))
	}
	if err := os.WriteFile(dest, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// errAlreadyHandled marks an error that was already reported on stderr.
// Commands wrapped with RunE return it so cobra still fails the run without
// printing the error a second time.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		ioStreams := iocontext.GetIO(cmd.Context())
		if isJSON(cmd) {
			if structured := api.StructuredErrorFromError(err); structured != nil {
				_ = outfmt.WriteJSON(ioStreams.ErrOut, structured)
			}
		} else {
			_, _ = fmt.Fprint(ioStreams.ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}
