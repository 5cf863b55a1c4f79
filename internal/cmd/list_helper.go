package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/iocontext"
)

// tokenPage is one page of a page_token paginated listing.
type tokenPage[T any] struct {
	Items     []T
	PageToken string
	HasMore   bool
}

// listOutput is the JSON shape of every list command.
type listOutput[T any] struct {
	Items     []T    `json:"items"`
	PageToken string `json:"page_token,omitempty"`
	HasMore   bool   `json:"has_more"`
}

// listConfig defines how a list command behaves
type listConfig[T any] struct {
	Use     string
	Aliases []string
	Short   string
	Long    string
	Example string
	Args    cobra.PositionalArgs
	// MaxPageSize is the largest page_size the endpoint accepts.
	MaxPageSize int
	// Flags registers command specific flags.
	Flags func(cmd *cobra.Command)
	Fetch func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[T], error)

	Headers      []string
	RowFunc      func(T) []string
	EmptyMessage string
}

const (
	defaultListLimit    = 20
	defaultListMaxPages = 50
)

func newListCommand[T any](cfg listConfig[T]) *cobra.Command {
	var (
		limit     int
		pageToken string
		all       bool
		maxPages  int
	)
	args := cfg.Args
	if args == nil {
		args = cobra.NoArgs
	}

	cmd := &cobra.Command{
		Use:     cfg.Use,
		Aliases: cfg.Aliases,
		Short:   cfg.Short,
		Long:    cfg.Long,
		Example: cfg.Example,
		Args:    args,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if limit <= 0 && !all {
				return fmt.Errorf("--limit must be > 0")
			}
			if maxPages <= 0 {
				return fmt.Errorf("--max-pages must be > 0")
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			pageSize := cfg.MaxPageSize
			if !all && limit < pageSize {
				pageSize = limit
			}

			var out listOutput[T]
			token := pageToken
			for page := 0; page < maxPages; page++ {
				res, err := cfg.Fetch(cmd, args, sess, token, pageSize)
				if err != nil {
					return err
				}
				out.Items = append(out.Items, res.Items...)
				out.HasMore = res.HasMore
				out.PageToken = res.PageToken
				if !res.HasMore || res.PageToken == "" {
					out.PageToken = ""
					break
				}
				if !all && len(out.Items) >= limit {
					break
				}
				token = res.PageToken
			}
			if !all && len(out.Items) > limit {
				out.Items = out.Items[:limit]
			}
			if out.Items == nil {
				out.Items = []T{}
			}

			if isJSON(cmd) {
				return printJSON(cmd, out)
			}

			f := newFormatter(cmd)
			if len(out.Items) == 0 {
				msg := cfg.EmptyMessage
				if msg == "" {
					msg = "No results."
				}
				f.Empty(msg)
				return nil
			}
			f.StartTable(cfg.Headers)
			for _, item := range out.Items {
				f.Row(cfg.RowFunc(item)...)
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if out.HasMore && out.PageToken != "" && !flags.Quiet {
				_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).ErrOut,
					"More results available: --page-token %s (or --all)\n", out.PageToken)
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum number of items to return")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Resume from a page token")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Fetch every page")
	cmd.Flags().IntVar(&maxPages, "max-pages", defaultListMaxPages, "Stop after this many pages")
	if cfg.Flags != nil {
		cfg.Flags(cmd)
	}
	return cmd
}
