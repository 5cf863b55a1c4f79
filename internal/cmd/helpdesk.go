package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
)

func newHelpdeskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "helpdesk",
		Short: "Work with helpdesk tickets and FAQs",
		Long: `Work with helpdesk tickets and FAQs.

Helpdesk endpoints need the helpdesk ID and token in addition to the app
credentials (lark auth login --helpdesk-id ... --helpdesk-token ..., or
LARK_HELPDESK_ID and LARK_HELPDESK_TOKEN).`,
	}
	cmd.AddCommand(newHelpdeskTicketsCmd())
	cmd.AddCommand(newHelpdeskTicketCmd())
	cmd.AddCommand(newHelpdeskUpdateCmd())
	cmd.AddCommand(newHelpdeskMessagesCmd())
	cmd.AddCommand(newHelpdeskReplyCmd())
	cmd.AddCommand(newHelpdeskFAQsCmd())
	return cmd
}

var ticketStatusNames = map[string]int{
	"processing": api.TicketStatusProcessing,
	"replied":    api.TicketStatusReplied,
	"closed":     api.TicketStatusClosed,
}

func ticketStatusName(status int) string {
	for name, v := range ticketStatusNames {
		if v == status {
			return name
		}
	}
	return strconv.Itoa(status)
}

func parseTicketStatus(s string) (int, error) {
	if v, ok := ticketStatusNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("invalid status %q: must be processing, replied or closed", s)
}

func unixMilli(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

func helpdeskSession() (*session, error) {
	sess, err := openSession()
	if err != nil {
		return nil, err
	}
	if sess.Client.HelpdeskID == "" || sess.Client.HelpdeskToken == "" {
		sess.Close()
		return nil, fmt.Errorf("helpdesk credentials not configured (set LARK_HELPDESK_ID and LARK_HELPDESK_TOKEN)")
	}
	return sess, nil
}

func newHelpdeskTicketsCmd() *cobra.Command {
	var (
		page, limit int
		statuses    []string
		agent       string
		guest       string
	)
	cmd := &cobra.Command{
		Use:     "tickets",
		Short:   "List tickets",
		Example: `  lark helpdesk tickets --status processing --limit 50`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be >= 1")
			}
			if limit < 1 || limit > 200 {
				return fmt.Errorf("--limit must be between 1 and 200")
			}
			req := &api.ListTicketsRequest{Page: page, PageSize: limit, AgentID: agent, GuestName: guest}
			for _, s := range splitList(statuses...) {
				v, err := parseTicketStatus(s)
				if err != nil {
					return err
				}
				req.StatusList = append(req.StatusList, v)
			}
			sess, err := helpdeskSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Helpdesk().ListTickets(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			f := newFormatter(cmd)
			if len(resp.Tickets) == 0 {
				f.Empty("No tickets.")
				return nil
			}
			f.StartTable([]string{"ID", "STATUS", "GUEST", "UPDATED"})
			for _, t := range resp.Tickets {
				guestName := ""
				if t.Guest != nil {
					guestName = t.Guest.Name
				}
				f.Row(t.TicketID, ticketStatusName(t.Status), guestName, unixMilli(t.UpdatedAt))
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if shown := (page-1)*limit + len(resp.Tickets); shown < resp.Total && !flags.Quiet {
				_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).ErrOut, "Showing %d of %d (next: --page %d)\n", shown, resp.Total, page+1)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Tickets per page (max 200)")
	cmd.Flags().StringArrayVar(&statuses, "status", nil, "processing|replied|closed (repeatable)")
	cmd.Flags().StringVar(&agent, "agent", "", "Filter by agent ID")
	cmd.Flags().StringVar(&guest, "guest", "", "Filter by guest name")
	return cmd
}

func newHelpdeskTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <ticket-id>",
		Short: "Show a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := helpdeskSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Helpdesk().GetTicket(cmd.Context(), &api.TicketIDRequest{TicketID: args[0]}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.Ticket)
			}
			t := resp.Ticket
			guestName := ""
			if t.Guest != nil {
				guestName = t.Guest.Name
			}
			printDetail(cmd, "Ticket "+t.TicketID,
				"Status", ticketStatusName(t.Status),
				"Guest", guestName,
				"Chat", t.ChatID,
				"Created", unixMilli(t.CreatedAt),
				"Updated", unixMilli(t.UpdatedAt),
				"Closed", unixMilli(t.ClosedAt),
			)
			return nil
		}),
	}
}

func newHelpdeskUpdateCmd() *cobra.Command {
	var (
		status string
		tags   []string
		note   string
	)
	cmd := &cobra.Command{
		Use:     "update <ticket-id>",
		Short:   "Change a ticket's status or tags",
		Example: `  lark helpdesk update 6626871355780366331 --status closed`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req := &api.UpdateTicketRequest{TicketID: args[0], TagNames: splitList(tags...), Comment: note}
			if status != "" {
				v, err := parseTicketStatus(status)
				if err != nil {
					return err
				}
				req.Status = v
			}
			if req.Status == 0 && len(req.TagNames) == 0 && req.Comment == "" {
				return fmt.Errorf("at least one of --status, --tag or --comment is required")
			}
			sess, err := helpdeskSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Client.Helpdesk().UpdateTicket(cmd.Context(), req, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"ticket_id": args[0], "updated": true})
			}
			printAction(cmd, "Updated", "ticket", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "processing|replied|closed")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag name (repeatable)")
	cmd.Flags().StringVar(&note, "comment", "", "Internal comment")
	return cmd
}

func newHelpdeskMessagesCmd() *cobra.Command {
	var (
		page, limit int
		since       string
	)
	cmd := &cobra.Command{
		Use:   "messages <ticket-id>",
		Short: "Show a ticket's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req := &api.ListTicketMessagesRequest{TicketID: args[0], Page: page, PageSize: limit}
			if since != "" {
				t, err := parseTimeFlag("since", since)
				if err != nil {
					return err
				}
				req.TimeStart = t.UnixMilli()
				req.TimeEnd = nowFunc().UnixMilli()
			}
			sess, err := helpdeskSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Helpdesk().ListTicketMessages(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			f := newFormatter(cmd)
			if len(resp.Messages) == 0 {
				f.Empty("No messages.")
				return nil
			}
			f.StartTable([]string{"TIME", "FROM", "TYPE", "CONTENT"})
			for _, m := range resp.Messages {
				f.Row(unixMilli(m.CreatedAt), m.UserName, m.MessageType, outfmt.Truncate(m.Content, 70))
			}
			return f.EndTable()
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Messages per page")
	cmd.Flags().StringVar(&since, "since", "", "Only messages after this time")
	return cmd
}

func newHelpdeskReplyCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "reply <ticket-id>",
		Short: "Reply to a ticket as the helpdesk",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := iocontext.ReadValue(cmd.Context(), text)
			if err != nil {
				return err
			}
			body = strings.TrimRight(body, "\n")
			if body == "" {
				return fmt.Errorf("--text is empty")
			}
			sess, err := helpdeskSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Helpdesk().SendTicketMessage(cmd.Context(), &api.SendTicketMessageRequest{
				TicketID: args[0],
				MsgType:  api.MsgTypeText,
				Content:  map[string]any{"text": body},
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Sent", "ticket message", resp.MessageID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "Reply text (- reads stdin)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newHelpdeskFAQsCmd() *cobra.Command {
	var search, category string
	return newListCommand(listConfig[api.FAQ]{
		Use:         "faqs",
		Short:       "List or search FAQs",
		MaxPageSize: 100,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&search, "search", "", "Search keyword")
			cmd.Flags().StringVar(&category, "category", "", "Category ID")
		},
		Fetch: func(cmd *cobra.Command, _ []string, sess *session, pageToken string, pageSize int) (tokenPage[api.FAQ], error) {
			if sess.Client.HelpdeskID == "" || sess.Client.HelpdeskToken == "" {
				return tokenPage[api.FAQ]{}, fmt.Errorf("helpdesk credentials not configured (set LARK_HELPDESK_ID and LARK_HELPDESK_TOKEN)")
			}
			resp, err := sess.Client.Helpdesk().ListFAQs(cmd.Context(), &api.ListFAQsRequest{
				CategoryID: category,
				Search:     search,
				PageToken:  pageToken,
				PageSize:   pageSize,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.FAQ]{}, err
			}
			return tokenPage[api.FAQ]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "QUESTION", "ANSWER"},
		RowFunc: func(f api.FAQ) []string {
			return []string{f.FAQID, outfmt.Truncate(f.Question, 50), outfmt.Truncate(f.Answer, 50)}
		},
		EmptyMessage: "No FAQs.",
	})
}
