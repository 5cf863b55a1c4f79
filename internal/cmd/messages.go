package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
	"github.com/larkkit/lark-cli/internal/resolve"
	"github.com/larkkit/lark-cli/internal/validation"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "msg", "im"},
		Short:   "Send, read and recall messages",
	}
	cmd.AddCommand(newMessagesSendCmd())
	cmd.AddCommand(newMessagesReplyCmd())
	cmd.AddCommand(newMessagesGetCmd())
	cmd.AddCommand(newMessagesListCmd())
	cmd.AddCommand(newMessagesRecallCmd())
	cmd.AddCommand(newMessagesDownloadCmd())
	cmd.AddCommand(newMessagesLegacySendCmd())
	cmd.AddCommand(newMessagesBatchSendCmd())
	return cmd
}

// contentFlags are the mutually exclusive ways to give a message body.
type contentFlags struct {
	text     string
	content  string
	msgType  string
	imageKey string
	fileKey  string
}

func (c *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.text, "text", "", "Plain text body (- reads stdin)")
	cmd.Flags().StringVar(&c.content, "content", "", "Raw JSON content for --msg-type (@file or - for stdin)")
	cmd.Flags().StringVar(&c.msgType, "msg-type", "", "Message type for --content: text|post|interactive|share_chat|...")
	cmd.Flags().StringVar(&c.imageKey, "image-key", "", "Send an uploaded image")
	cmd.Flags().StringVar(&c.fileKey, "file-key", "", "Send an uploaded file")
	cmd.MarkFlagsMutuallyExclusive("text", "content", "image-key", "file-key")
}

// build returns the msg_type and the JSON-encoded content string.
func (c *contentFlags) build(ctx context.Context) (string, string, error) {
	var msgType, content string
	switch {
	case c.text != "":
		text, err := iocontext.ReadValue(ctx, c.text)
		if err != nil {
			return "", "", err
		}
		text = strings.TrimRight(text, "\n")
		if text == "" {
			return "", "", fmt.Errorf("--text is empty")
		}
		msgType, content = api.MsgTypeText, api.TextContent(text)
	case c.imageKey != "":
		msgType, content = api.MsgTypeImage, api.ImageContent(c.imageKey)
	case c.fileKey != "":
		msgType, content = api.MsgTypeFile, api.FileContent(c.fileKey)
	case c.content != "":
		raw, err := iocontext.ReadValue(ctx, c.content)
		if err != nil {
			return "", "", err
		}
		if err := validation.ValidateJSONPayload(raw); err != nil {
			return "", "", fmt.Errorf("--content: %w", err)
		}
		if c.msgType == "" {
			return "", "", fmt.Errorf("--msg-type is required with --content")
		}
		msgType, content = c.msgType, strings.TrimSpace(raw)
	default:
		return "", "", fmt.Errorf("one of --text, --content, --image-key or --file-key is required")
	}
	if c.msgType != "" && c.msgType != msgType {
		return "", "", fmt.Errorf("--msg-type %s conflicts with the given body (%s)", c.msgType, msgType)
	}
	if err := validation.ValidateMessageContent(msgType, content); err != nil {
		return "", "", err
	}
	return msgType, content, nil
}

// buildObject is build for the legacy endpoints, which take content as an
// object. Interactive messages go in card instead.
func (c *contentFlags) buildObject(ctx context.Context) (msgType string, content, card map[string]any, err error) {
	msgType, raw, err := c.build(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", nil, nil, fmt.Errorf("content must be a JSON object: %w", err)
	}
	if msgType == api.MsgTypeInteractive {
		return msgType, nil, obj, nil
	}
	return msgType, obj, nil, nil
}

func newMessagesSendCmd() *cobra.Command {
	var (
		body   contentFlags
		to     []string
		chat   string
		idType string
		uuid   string
		conc   int64
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to users or chats",
		Long: `Send a message through the im/v1 API.

Recipients passed with --to are typed by prefix unless --id-type is set:
ou_ open_id, on_ union_id, oc_ chat_id, an address with @ is an email and
anything else is a user_id. --chat also accepts a chat name.`,
		Example: `  lark messages send --to ou_7d8a6e6df7621556ce0d21922b676706ccs --text "hello"
  lark messages send --chat "Release crew" --text @notes.txt
  lark messages send --to a@example.com --to b@example.com --text "standup in 5"
  lark messages send --chat oc_5ad11d72b830411d72b836c20 --msg-type interactive --content @card.json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recipients := splitList(to...)
			if chat == "" && len(recipients) == 0 {
				return fmt.Errorf("--to or --chat is required")
			}
			if uuid != "" && len(recipients)+boolInt(chat != "") > 1 {
				return fmt.Errorf("--uuid can only be used with a single recipient")
			}
			msgType, content, err := body.build(ctx)
			if err != nil {
				return err
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if chat != "" {
				chatID, err := resolve.ChatID(ctx, sess.Client.Chats(), chat, sess.opts()...)
				if err != nil {
					return err
				}
				recipients = append(recipients, chatID)
			}

			send := func(ctx context.Context, id string) (*api.Message, error) {
				typ := idType
				if typ == "" {
					detected, err := validation.DetectReceiveIDType(id)
					if err != nil {
						return nil, err
					}
					typ = detected
				}
				return sess.Client.Messages().Send(ctx, &api.SendMessageRequest{
					ReceiveIDType: typ,
					ReceiveID:     id,
					MsgType:       msgType,
					Content:       content,
					UUID:          uuid,
				}, sess.opts()...)
			}

			if len(recipients) == 1 {
				msg, err := send(ctx, recipients[0])
				if err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, msg)
				}
				printAction(cmd, "Sent", "message", msg.MessageID)
				return nil
			}

			ioStreams := iocontext.GetIO(ctx)
			results := runBulk(ctx, recipients, conc, !isJSON(cmd) && !flags.Quiet, ioStreams.ErrOut, send)
			ok, failed := countResults(results)
			if isJSON(cmd) {
				if err := printJSON(cmd, results); err != nil {
					return err
				}
			} else if !flags.Quiet {
				_, _ = fmt.Fprintf(ioStreams.Out, "Sent %d of %d messages\n", ok, len(results))
			}
			if failed > 0 {
				return bulkError(results)
			}
			return nil
		}),
	}
	body.register(cmd)
	cmd.Flags().StringArrayVar(&to, "to", nil, "Recipient ID (repeatable, comma separated)")
	cmd.Flags().StringVar(&chat, "chat", "", "Chat ID or chat name")
	cmd.Flags().StringVar(&idType, "id-type", "", "Force receive_id_type: open_id|union_id|user_id|email|chat_id")
	cmd.Flags().StringVar(&uuid, "uuid", "", "De-duplication key (generated when empty)")
	cmd.Flags().Int64Var(&conc, "concurrency", DefaultConcurrency, "Parallel sends for multiple recipients")
	return cmd
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newMessagesReplyCmd() *cobra.Command {
	var (
		body     contentFlags
		inThread bool
	)
	cmd := &cobra.Command{
		Use:     "reply <message-id>",
		Short:   "Reply to a message",
		Example: `  lark messages reply om_dc13264520392913993dd051dba21dcf --text "on it"`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			msgType, content, err := body.build(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			msg, err := sess.Client.Messages().Reply(cmd.Context(), &api.ReplyMessageRequest{
				MessageID:     args[0],
				MsgType:       msgType,
				Content:       content,
				ReplyInThread: inThread,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, msg)
			}
			printAction(cmd, "Replied with", "message", msg.MessageID)
			return nil
		}),
	}
	body.register(cmd)
	cmd.Flags().BoolVar(&inThread, "thread", false, "Reply inside a thread")
	return cmd
}

func newMessagesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <message-id>",
		Short: "Show a message",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Messages().Get(cmd.Context(), &api.MessageIDRequest{MessageID: args[0]}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			for _, m := range resp.Items {
				printDetail(cmd, "Message "+m.MessageID,
					"Chat", m.ChatID,
					"Type", m.MsgType,
					"Sender", senderID(m),
					"Created", outfmt.FormatEpoch(m.CreateTime),
					"Thread", m.ThreadID,
					"Parent", m.ParentID,
					"Content", messagePreview(m),
				)
			}
			return nil
		}),
	}
}

func newMessagesListCmd() *cobra.Command {
	var chat, thread, start, end, sort string
	return newListCommand(listConfig[api.Message]{
		Use:   "list",
		Short: "List messages in a chat or thread",
		Example: `  lark messages list --chat "Release crew" --start 2024-05-01 -n 50
  lark messages list --thread omt_1a3b --all --output jsonl`,
		MaxPageSize: 50,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&chat, "chat", "", "Chat ID or name")
			cmd.Flags().StringVar(&thread, "thread", "", "Thread ID")
			cmd.Flags().StringVar(&start, "start", "", "Only messages after this time")
			cmd.Flags().StringVar(&end, "end", "", "Only messages before this time")
			cmd.Flags().StringVar(&sort, "sort", "asc", "Order by create time: asc|desc")
			cmd.MarkFlagsMutuallyExclusive("chat", "thread")
			cmd.MarkFlagsOneRequired("chat", "thread")
		},
		Fetch: func(cmd *cobra.Command, _ []string, sess *session, pageToken string, pageSize int) (tokenPage[api.Message], error) {
			req := &api.ListMessagesRequest{PageSize: pageSize, PageToken: pageToken}
			switch sort {
			case "asc":
				req.SortType = "ByCreateTimeAsc"
			case "desc":
				req.SortType = "ByCreateTimeDesc"
			default:
				return tokenPage[api.Message]{}, fmt.Errorf("invalid --sort %q: must be asc or desc", sort)
			}
			var err error
			if req.StartTime, err = epochSeconds("start", start); err != nil {
				return tokenPage[api.Message]{}, err
			}
			if req.EndTime, err = epochSeconds("end", end); err != nil {
				return tokenPage[api.Message]{}, err
			}
			if thread != "" {
				req.ContainerIDType, req.ContainerID = "thread", thread
			} else {
				id, err := resolve.ChatID(cmd.Context(), sess.Client.Chats(), chat, sess.opts()...)
				if err != nil {
					return tokenPage[api.Message]{}, err
				}
				// resolve once; later pages reuse the ID
				chat = id
				req.ContainerIDType, req.ContainerID = "chat", id
			}
			resp, err := sess.Client.Messages().List(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return tokenPage[api.Message]{}, err
			}
			return tokenPage[api.Message]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "TIME", "SENDER", "TYPE", "CONTENT"},
		RowFunc: func(m api.Message) []string {
			return []string{m.MessageID, outfmt.FormatEpoch(m.CreateTime), senderID(m), m.MsgType, outfmt.Truncate(messagePreview(m), 60)}
		},
		EmptyMessage: "No messages found.",
	})
}

func newMessagesRecallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recall <message-id>",
		Aliases: []string{"delete"},
		Short:   "Recall a message sent by the app",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Recall message " + args[0] + "?"})
			if err != nil || !ok {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Client.Messages().Recall(cmd.Context(), &api.MessageIDRequest{MessageID: args[0]}, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"message_id": args[0], "recalled": true})
			}
			printAction(cmd, "Recalled", "message", args[0])
			return nil
		}),
	}
}

func newMessagesDownloadCmd() *cobra.Command {
	var typ, out string
	cmd := &cobra.Command{
		Use:     "download <message-id> <file-key>",
		Short:   "Download an image or file attached to a message",
		Example: `  lark messages download om_dc13 file_v2_9d1c --out ./downloads/`,
		Args:    cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			file, err := sess.Client.Messages().GetResource(cmd.Context(), &api.GetMessageResourceRequest{
				MessageID: args[0],
				FileKey:   args[1],
				Type:      typ,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			return reportDownload(cmd, file, out, args[1])
		}),
	}
	cmd.Flags().StringVar(&typ, "type", "file", "Resource type: image|file")
	cmd.Flags().StringVarP(&out, "out", "O", "", "Destination file or directory (- for stdout)")
	return cmd
}

// reportDownload writes file and reports where it went.
func reportDownload(cmd *cobra.Command, file *api.File, dest, fallback string) error {
	path, err := writeDownload(cmd, file, dest, fallback)
	if err != nil {
		return err
	}
	if path == "-" {
		return nil
	}
	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"path": path, "name": file.Name, "content_type": file.ContentType, "size": len(file.Data)})
	}
	printAction(cmd, "Saved", "file", path)
	return nil
}

func newMessagesLegacySendCmd() *cobra.Command {
	var (
		body                        contentFlags
		openID, userID, email, chat string
		rootID                      string
	)
	cmd := &cobra.Command{
		Use:   "legacy-send",
		Short: "Send through the v4 message endpoint",
		Long: `Send through the older message/v4 endpoint, which names the recipient
with a dedicated flag instead of a typed receive ID.`,
		Example: `  lark messages legacy-send --email a@example.com --text "hi"`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			msgType, content, card, err := body.buildObject(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Messages().SendLegacy(cmd.Context(), &api.LegacySendMessageRequest{
				OpenID:  openID,
				UserID:  userID,
				Email:   email,
				ChatID:  chat,
				RootID:  rootID,
				MsgType: msgType,
				Content: content,
				Card:    card,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Sent", "message", resp.MessageID)
			return nil
		}),
	}
	body.register(cmd)
	cmd.Flags().StringVar(&openID, "open-id", "", "Recipient open_id")
	cmd.Flags().StringVar(&userID, "user-id", "", "Recipient user_id")
	cmd.Flags().StringVar(&email, "email", "", "Recipient email")
	cmd.Flags().StringVar(&chat, "chat-id", "", "Recipient chat_id")
	cmd.Flags().StringVar(&rootID, "root-id", "", "Message to reply to")
	cmd.MarkFlagsMutuallyExclusive("open-id", "user-id", "email", "chat-id")
	cmd.MarkFlagsOneRequired("open-id", "user-id", "email", "chat-id")
	return cmd
}

func newMessagesBatchSendCmd() *cobra.Command {
	var (
		body                    contentFlags
		depts, openIDs, userIDs []string
	)
	cmd := &cobra.Command{
		Use:     "batch-send",
		Short:   "Send one message to many users and departments",
		Example: `  lark messages batch-send --department od-5b91c --open-id ou_1,ou_2 --text "all hands at 3"`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			msgType, content, card, err := body.buildObject(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Messages().BatchSendLegacy(cmd.Context(), &api.LegacyBatchSendMessageRequest{
				DepartmentIDs: splitList(depts...),
				OpenIDs:       splitList(openIDs...),
				UserIDs:       splitList(userIDs...),
				MsgType:       msgType,
				Content:       content,
				Card:          card,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Queued", "batch message", resp.MessageID)
			invalid := len(resp.InvalidDepartmentIDs) + len(resp.InvalidOpenIDs) + len(resp.InvalidUserIDs)
			if invalid > 0 && !flags.Quiet {
				errOut := iocontext.GetIO(cmd.Context()).ErrOut
				_, _ = fmt.Fprintf(errOut, "Skipped %d invalid recipients\n", invalid)
				for _, ids := range [][]string{resp.InvalidDepartmentIDs, resp.InvalidOpenIDs, resp.InvalidUserIDs} {
					for _, id := range ids {
						_, _ = fmt.Fprintf(errOut, "  %s\n", id)
					}
				}
			}
			return nil
		}),
	}
	body.register(cmd)
	cmd.Flags().StringArrayVar(&depts, "department", nil, "Department ID (repeatable, comma separated)")
	cmd.Flags().StringArrayVar(&openIDs, "open-id", nil, "open_id (repeatable, comma separated)")
	cmd.Flags().StringArrayVar(&userIDs, "user-id", nil, "user_id (repeatable, comma separated)")
	return cmd
}

func senderID(m api.Message) string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.ID
}

// messagePreview extracts readable text from a message body.
func messagePreview(m api.Message) string {
	if m.Body == nil {
		return ""
	}
	if m.MsgType == api.MsgTypeText {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(m.Body.Content), &body); err == nil {
			return body.Text
		}
	}
	return m.Body.Content
}
