package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/outfmt"
)

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Manage calendars, events and free/busy lookups",
	}
	cmd.AddCommand(newCalendarListCmd())
	cmd.AddCommand(newCalendarGetCmd())
	cmd.AddCommand(newCalendarCreateCmd())
	cmd.AddCommand(newCalendarDeleteCmd())
	cmd.AddCommand(newCalendarEventsCmd())
	cmd.AddCommand(newCalendarCreateEventCmd())
	cmd.AddCommand(newCalendarDeleteEventCmd())
	cmd.AddCommand(newCalendarFreebusyCmd())
	return cmd
}

func newCalendarListCmd() *cobra.Command {
	return newListCommand(listConfig[api.Calendar]{
		Use:         "list",
		Aliases:     []string{"ls"},
		Short:       "List calendars",
		MaxPageSize: 1000,
		Fetch: func(cmd *cobra.Command, _ []string, sess *session, pageToken string, pageSize int) (tokenPage[api.Calendar], error) {
			// the endpoint rejects page sizes under 50
			resp, err := sess.Client.Calendar().ListCalendars(cmd.Context(), &api.ListCalendarsRequest{
				PageSize:  max(pageSize, 50),
				PageToken: pageToken,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.Calendar]{}, err
			}
			return tokenPage[api.Calendar]{Items: resp.CalendarList, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "SUMMARY", "TYPE", "ROLE"},
		RowFunc: func(c api.Calendar) []string {
			return []string{c.CalendarID, c.Summary, c.Type, c.Role}
		},
		EmptyMessage: "No calendars.",
	})
}

func newCalendarGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <calendar-id>",
		Short: "Show a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			c, err := sess.Client.Calendar().GetCalendar(cmd.Context(), &api.CalendarIDRequest{CalendarID: args[0]}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, c)
			}
			printDetail(cmd, c.Summary,
				"ID", c.CalendarID,
				"Description", c.Description,
				"Type", c.Type,
				"Role", c.Role,
				"Permissions", c.Permissions,
			)
			return nil
		}),
	}
}

func newCalendarCreateCmd() *cobra.Command {
	var req api.CreateCalendarRequest
	cmd := &cobra.Command{
		Use:   "create <summary>",
		Short: "Create a shared calendar",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req.Summary = args[0]
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Calendar().CreateCalendar(cmd.Context(), &req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.Calendar)
			}
			printAction(cmd, "Created", "calendar", resp.Calendar.CalendarID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "Calendar description")
	cmd.Flags().StringVar(&req.Permissions, "permissions", "", "private, show_only_free_busy or public")
	return cmd
}

func newCalendarDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <calendar-id>",
		Short: "Delete a shared calendar",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Delete calendar " + args[0] + "?"})
			if err != nil || !ok {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Client.Calendar().DeleteCalendar(cmd.Context(), &api.CalendarIDRequest{CalendarID: args[0]}, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"calendar_id": args[0], "deleted": true})
			}
			printAction(cmd, "Deleted", "calendar", args[0])
			return nil
		}),
	}
}

func newCalendarEventsCmd() *cobra.Command {
	var start, end string
	return newListCommand(listConfig[api.CalendarEvent]{
		Use:         "events <calendar-id>",
		Short:       "List events of a calendar",
		Example:     `  lark calendar events feishu.cn_xxx@group.calendar.feishu.cn --start 2024-05-01 --end 2024-05-08`,
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 500,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&start, "start", "", "Only events after this time")
			cmd.Flags().StringVar(&end, "end", "", "Only events before this time")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.CalendarEvent], error) {
			req := &api.ListCalendarEventsRequest{
				CalendarID: args[0],
				PageSize:   max(pageSize, 50),
				PageToken:  pageToken,
			}
			var err error
			if req.StartTime, err = epochSeconds("start", start); err != nil {
				return tokenPage[api.CalendarEvent]{}, err
			}
			if req.EndTime, err = epochSeconds("end", end); err != nil {
				return tokenPage[api.CalendarEvent]{}, err
			}
			resp, err := sess.Client.Calendar().ListEvents(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return tokenPage[api.CalendarEvent]{}, err
			}
			return tokenPage[api.CalendarEvent]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "START", "END", "SUMMARY"},
		RowFunc: func(e api.CalendarEvent) []string {
			return []string{e.EventID, formatTimeInfo(e.StartTime), formatTimeInfo(e.EndTime), outfmt.Truncate(e.Summary, 50)}
		},
		EmptyMessage: "No events.",
	})
}

func formatTimeInfo(t api.TimeInfo) string {
	if t.Date != "" {
		return t.Date
	}
	return outfmt.FormatEpoch(t.Timestamp)
}

func newCalendarCreateEventCmd() *cobra.Command {
	var (
		req        api.CreateCalendarEventRequest
		start, end string
		allDay     bool
		timezone   string
		notify     bool
	)
	cmd := &cobra.Command{
		Use:   "create-event <calendar-id>",
		Short: "Create an event",
		Example: `  lark calendar create-event feishu.cn_xxx@group.calendar.feishu.cn --summary "Retro" \
    --start "2024-05-10 15:00" --end "2024-05-10 16:00" --timezone Asia/Shanghai`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			from, err := parseTimeFlag("start", start)
			if err != nil {
				return err
			}
			to := from.Add(time.Hour)
			if end != "" {
				if to, err = parseTimeFlag("end", end); err != nil {
					return err
				}
			}
			if !to.After(from) {
				return fmt.Errorf("--end must be after --start")
			}
			req.CalendarID = args[0]
			if allDay {
				req.StartTime = api.TimeInfo{Date: from.Format("2006-01-02"), Timezone: timezone}
				req.EndTime = api.TimeInfo{Date: to.Format("2006-01-02"), Timezone: timezone}
			} else {
				req.StartTime = api.TimeInfo{Timestamp: strconv.FormatInt(from.Unix(), 10), Timezone: timezone}
				req.EndTime = api.TimeInfo{Timestamp: strconv.FormatInt(to.Unix(), 10), Timezone: timezone}
			}
			if cmd.Flags().Changed("notify") {
				req.NeedNotification = &notify
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Calendar().CreateEvent(cmd.Context(), &req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.Event)
			}
			printAction(cmd, "Created", "event", resp.Event.EventID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Summary, "summary", "", "Event title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Event description")
	cmd.Flags().StringVar(&start, "start", "", "Start time (required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (default start + 1h)")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "Create an all-day event using the dates of --start/--end")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone, e.g. Asia/Shanghai")
	cmd.Flags().StringVar(&req.Visibility, "visibility", "", "default, public or private")
	cmd.Flags().BoolVar(&notify, "notify", true, "Notify attendees")
	cmd.Flags().StringVar(&req.IdempotencyKey, "idempotency-key", "", "Create at most once for this key")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newCalendarDeleteEventCmd() *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "delete-event <calendar-id> <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Delete event " + args[1] + "?"})
			if err != nil || !ok {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			req := &api.DeleteCalendarEventRequest{CalendarID: args[0], EventID: args[1]}
			if cmd.Flags().Changed("notify") {
				req.NeedNotification = &notify
			}
			if err := sess.Client.Calendar().DeleteEvent(cmd.Context(), req, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"event_id": args[1], "deleted": true})
			}
			printAction(cmd, "Deleted", "event", args[1])
			return nil
		}),
	}
	cmd.Flags().BoolVar(&notify, "notify", true, "Notify attendees")
	return cmd
}

func newCalendarFreebusyCmd() *cobra.Command {
	var user, room, from, to, idType string
	cmd := &cobra.Command{
		Use:     "freebusy",
		Short:   "Show busy intervals of a user or meeting room",
		Example: `  lark calendar freebusy --user ou_3cda --from "2024-05-10" --to "2024-05-11"`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			start := nowFunc()
			if from != "" {
				t, err := parseTimeFlag("from", from)
				if err != nil {
					return err
				}
				start = t
			}
			finish := start.Add(24 * time.Hour)
			if to != "" {
				t, err := parseTimeFlag("to", to)
				if err != nil {
					return err
				}
				finish = t
			}
			if !finish.After(start) {
				return fmt.Errorf("--to must be after --from")
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Calendar().ListFreebusy(cmd.Context(), &api.ListFreebusyRequest{
				UserIDType: idType,
				TimeMin:    start.Format(time.RFC3339),
				TimeMax:    finish.Format(time.RFC3339),
				UserID:     user,
				RoomID:     room,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.FreebusyList)
			}
			f := newFormatter(cmd)
			if len(resp.FreebusyList) == 0 {
				f.Empty("Free for the whole window.")
				return nil
			}
			f.StartTable([]string{"BUSY FROM", "BUSY UNTIL"})
			for _, b := range resp.FreebusyList {
				f.Row(b.StartTime, b.EndTime)
			}
			return f.EndTable()
		}),
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID")
	cmd.Flags().StringVar(&room, "room", "", "Meeting room ID")
	cmd.Flags().StringVar(&from, "from", "", "Window start (default now)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (default from + 24h)")
	cmd.Flags().StringVar(&idType, "user-id-type", "", "ID type of --user")
	cmd.MarkFlagsMutuallyExclusive("user", "room")
	cmd.MarkFlagsOneRequired("user", "room")
	return cmd
}
