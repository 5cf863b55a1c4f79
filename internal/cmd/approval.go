package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
	"github.com/larkkit/lark-cli/internal/validation"
)

func newApprovalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approval",
		Aliases: []string{"approvals"},
		Short:   "Work with approval definitions, instances and tasks",
	}
	cmd.AddCommand(newApprovalDefinitionCmd())
	cmd.AddCommand(newApprovalCreateCmd())
	cmd.AddCommand(newApprovalGetCmd())
	cmd.AddCommand(newApprovalListCmd())
	cmd.AddCommand(newApprovalCancelCmd())
	cmd.AddCommand(newApprovalTaskCmd("approve", "Approve a pending task"))
	cmd.AddCommand(newApprovalTaskCmd("reject", "Reject a pending task"))
	cmd.AddCommand(newApprovalTransferCmd())
	cmd.AddCommand(newApprovalCommentCmd())
	return cmd
}

func newApprovalDefinitionCmd() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:     "definition <approval-code>",
		Aliases: []string{"def"},
		Short:   "Show an approval definition and its form",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			def, err := sess.Client.Approval().GetDefinition(cmd.Context(), &api.GetApprovalDefinitionRequest{
				ApprovalCode: args[0],
				Locale:       locale,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, def)
			}
			printDetail(cmd, def.ApprovalName, "Status", def.Status)
			f := newFormatter(cmd)
			f.StartTable([]string{"NODE", "NAME", "TYPE", "NEEDS APPROVER"})
			for _, n := range def.NodeList {
				f.Row(n.NodeID, n.Name, n.NodeType, strconv.FormatBool(n.NeedApprover))
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, "\nForm:\n%s\n", def.Form)
			return nil
		}),
	}
	cmd.Flags().StringVar(&locale, "locale", "", "zh-CN, en-US or ja-JP")
	return cmd
}

func newApprovalCreateCmd() *cobra.Command {
	var (
		req       api.CreateApprovalInstanceRequest
		form      string
		approvers []string
		cc        []string
	)
	cmd := &cobra.Command{
		Use:   "create <approval-code>",
		Short: "Start an approval instance",
		Example: `  lark approval create 7C468A54-8745-2245-9675-08B7C63E7A85 --open-id ou_3cda \
    --form '[{"id":"widget1","type":"input","value":"laptop"}]'`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			raw, err := iocontext.ReadValue(cmd.Context(), form)
			if err != nil {
				return err
			}
			if err := validation.ValidateJSONPayload(raw); err != nil {
				return fmt.Errorf("--form: %w", err)
			}
			if req.UserID == "" && req.OpenID == "" {
				return fmt.Errorf("--user-id or --open-id is required")
			}
			req.ApprovalCode = args[0]
			req.Form = raw
			req.NodeApproverUserIDList = splitList(approvers...)
			req.NodeCCUserIDList = splitList(cc...)

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Approval().CreateInstance(cmd.Context(), &req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Created", "approval instance", resp.InstanceCode)
			return nil
		}),
	}
	cmd.Flags().StringVar(&form, "form", "", "Form values as a JSON array (@file or - for stdin)")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "Initiator user_id")
	cmd.Flags().StringVar(&req.OpenID, "open-id", "", "Initiator open_id")
	cmd.Flags().StringVar(&req.DepartmentID, "department", "", "Initiator department")
	cmd.Flags().StringArrayVar(&approvers, "approver", nil, "Approver user IDs for self-select nodes")
	cmd.Flags().StringArrayVar(&cc, "cc", nil, "CC user IDs for self-select nodes")
	cmd.Flags().StringVar(&req.UUID, "uuid", "", "De-duplication key")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func newApprovalGetCmd() *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "get <instance-code>",
		Short: "Show an approval instance with its tasks and comments",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			inst, err := sess.Client.Approval().GetInstance(cmd.Context(), &api.GetApprovalInstanceRequest{
				InstanceID: args[0],
				Locale:     locale,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, inst)
			}
			printDetail(cmd, inst.ApprovalName,
				"Instance", inst.InstanceCode,
				"Serial", inst.SerialNumber,
				"Status", inst.Status,
				"Initiator", inst.UserID,
				"Started", outfmt.FormatEpoch(inst.StartTime),
				"Ended", outfmt.FormatEpoch(inst.EndTime),
			)
			if len(inst.TaskList) > 0 {
				_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, "\nTasks:")
				f := newFormatter(cmd)
				f.StartTable([]string{"TASK", "NODE", "ASSIGNEE", "STATUS"})
				for _, t := range inst.TaskList {
					f.Row(t.ID, t.NodeName, t.UserID, t.Status)
				}
				if err := f.EndTable(); err != nil {
					return err
				}
			}
			if len(inst.CommentList) > 0 {
				_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, "\nComments:")
				f := newFormatter(cmd)
				for _, c := range inst.CommentList {
					f.Row(outfmt.FormatEpoch(c.CreateTime), c.UserID, outfmt.Truncate(c.Comment, 80))
				}
				if err := f.EndTable(); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&locale, "locale", "", "zh-CN, en-US or ja-JP")
	return cmd
}

func newApprovalListCmd() *cobra.Command {
	var start, end string
	return newListCommand(listConfig[string]{
		Use:         "list <approval-code>",
		Short:       "List instance codes of an approval in a time window",
		Example:     `  lark approval list 7C468A54-8745-2245-9675-08B7C63E7A85 --start 2024-05-01 --end 2024-06-01 --all`,
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 100,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&start, "start", "", "Window start (required)")
			cmd.Flags().StringVar(&end, "end", "", "Window end (default now)")
			_ = cmd.MarkFlagRequired("start")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[string], error) {
			from, err := parseTimeFlag("start", start)
			if err != nil {
				return tokenPage[string]{}, err
			}
			req := &api.ListApprovalInstancesRequest{
				ApprovalCode: args[0],
				StartTime:    strconv.FormatInt(from.UnixMilli(), 10),
				PageSize:     pageSize,
				PageToken:    pageToken,
			}
			if end != "" {
				to, err := parseTimeFlag("end", end)
				if err != nil {
					return tokenPage[string]{}, err
				}
				req.EndTime = strconv.FormatInt(to.UnixMilli(), 10)
			} else {
				req.EndTime = strconv.FormatInt(nowFunc().UnixMilli(), 10)
			}
			resp, err := sess.Client.Approval().ListInstances(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return tokenPage[string]{}, err
			}
			return tokenPage[string]{Items: resp.InstanceCodeList, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers:      []string{"INSTANCE CODE"},
		RowFunc:      func(code string) []string { return []string{code} },
		EmptyMessage: "No instances in this window.",
	})
}

func newApprovalCancelCmd() *cobra.Command {
	var req api.CancelApprovalInstanceRequest
	cmd := &cobra.Command{
		Use:   "cancel <approval-code> <instance-code>",
		Short: "Withdraw an approval instance",
		Args:  cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Cancel approval instance " + args[1] + "?"})
			if err != nil || !ok {
				return err
			}
			req.ApprovalCode, req.InstanceCode = args[0], args[1]

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Client.Approval().CancelInstance(cmd.Context(), &req, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"instance_code": req.InstanceCode, "canceled": true})
			}
			printAction(cmd, "Canceled", "approval instance", req.InstanceCode)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "Initiator performing the cancel")
	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of --user-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// taskFlags are shared by approve, reject and transfer.
type taskFlags struct {
	approvalCode string
	instanceCode string
	userID       string
	userIDType   string
	taskID       string
	comment      string
}

func (t *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.approvalCode, "approval-code", "", "Approval definition code")
	cmd.Flags().StringVar(&t.instanceCode, "instance", "", "Instance code")
	cmd.Flags().StringVar(&t.userID, "user-id", "", "Assignee acting on the task")
	cmd.Flags().StringVar(&t.userIDType, "user-id-type", "", "ID type of user flags")
	cmd.Flags().StringVar(&t.comment, "comment", "", "Optional comment")
	for _, name := range []string{"approval-code", "instance", "user-id"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func newApprovalTaskCmd(action, short string) *cobra.Command {
	var (
		t    taskFlags
		form string
	)
	cmd := &cobra.Command{
		Use:   action + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			t.taskID = args[0]
			req := &api.ApprovalTaskActionRequest{
				UserIDType:   t.userIDType,
				ApprovalCode: t.approvalCode,
				InstanceCode: t.instanceCode,
				UserID:       t.userID,
				TaskID:       t.taskID,
				Comment:      t.comment,
			}
			if form != "" {
				raw, err := iocontext.ReadValue(cmd.Context(), form)
				if err != nil {
					return err
				}
				req.Form = raw
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			svc := sess.Client.Approval()
			do := svc.ApproveTask
			past := "Approved"
			if action == "reject" {
				do = svc.RejectTask
				past = "Rejected"
			}
			if err := do(cmd.Context(), req, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"task_id": t.taskID, "action": action})
			}
			printAction(cmd, past, "task", t.taskID)
			return nil
		}),
	}
	t.register(cmd)
	cmd.Flags().StringVar(&form, "form", "", "Updated form values for editable nodes (JSON)")
	return cmd
}

func newApprovalTransferCmd() *cobra.Command {
	var (
		t  taskFlags
		to string
	)
	cmd := &cobra.Command{
		Use:   "transfer <task-id>",
		Short: "Hand a pending task to another user",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			err = sess.Client.Approval().TransferTask(cmd.Context(), &api.TransferApprovalTaskRequest{
				UserIDType:     t.userIDType,
				ApprovalCode:   t.approvalCode,
				InstanceCode:   t.instanceCode,
				UserID:         t.userID,
				TaskID:         args[0],
				Comment:        t.comment,
				TransferUserID: to,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"task_id": args[0], "transferred_to": to})
			}
			printAction(cmd, "Transferred", "task", args[0]+" to "+to)
			return nil
		}),
	}
	t.register(cmd)
	cmd.Flags().StringVar(&to, "to", "", "User receiving the task")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newApprovalCommentCmd() *cobra.Command {
	var req api.AddApprovalCommentRequest
	var text string
	cmd := &cobra.Command{
		Use:   "comment <instance-code>",
		Short: "Comment on an approval instance",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			body, err := iocontext.ReadValue(cmd.Context(), text)
			if err != nil {
				return err
			}
			content, err := commentContent(body)
			if err != nil {
				return err
			}
			req.InstanceID = args[0]
			req.Content = content

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Approval().AddComment(cmd.Context(), &req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Added", "comment", resp.CommentID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "Comment text (- reads stdin)")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "Commenter")
	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of --user-id")
	cmd.Flags().StringVar(&req.ParentCommentID, "parent", "", "Reply to this comment")
	cmd.Flags().BoolVar(&req.DisableBot, "no-notify", false, "Do not notify through the approval bot")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// commentContent wraps text in the JSON document the comment API expects.
func commentContent(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("comment text is empty")
	}
	data, err := json.Marshal(map[string]any{"text": text, "files": []any{}})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
