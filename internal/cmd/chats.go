package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/resolve"
	"github.com/larkkit/lark-cli/internal/validation"
)

func newChatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chats",
		Aliases: []string{"chat", "groups"},
		Short:   "Manage group chats",
	}
	cmd.AddCommand(newChatsListCmd())
	cmd.AddCommand(newChatsSearchCmd())
	cmd.AddCommand(newChatsGetCmd())
	cmd.AddCommand(newChatsCreateCmd())
	cmd.AddCommand(newChatsUpdateCmd())
	cmd.AddCommand(newChatsDeleteCmd())
	cmd.AddCommand(newChatsMembersCmd())
	cmd.AddCommand(newChatsResolveCmd())
	return cmd
}

var chatHeaders = []string{"ID", "NAME", "OWNER", "EXTERNAL", "STATUS"}

func chatRow(c api.Chat) []string {
	return []string{c.ChatID, c.Name, c.OwnerID, fmt.Sprint(c.External), c.ChatStatus}
}

func newChatsListCmd() *cobra.Command {
	var sortType string
	return newListCommand(listConfig[api.Chat]{
		Use:         "list",
		Aliases:     []string{"ls"},
		Short:       "List chats the app or user belongs to",
		MaxPageSize: 100,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&sortType, "sort", "", "ByCreateTimeAsc or ByActiveTimeDesc")
		},
		Fetch: func(cmd *cobra.Command, _ []string, sess *session, pageToken string, pageSize int) (tokenPage[api.Chat], error) {
			resp, err := sess.Client.Chats().List(cmd.Context(), &api.ListChatsRequest{
				SortType:  sortType,
				PageToken: pageToken,
				PageSize:  pageSize,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.Chat]{}, err
			}
			return tokenPage[api.Chat]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers:      chatHeaders,
		RowFunc:      chatRow,
		EmptyMessage: "No chats found.",
	})
}

func newChatsSearchCmd() *cobra.Command {
	return newListCommand(listConfig[api.Chat]{
		Use:         "search <query>",
		Short:       "Search visible chats by name or member",
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 100,
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.Chat], error) {
			resp, err := sess.Client.Chats().Search(cmd.Context(), &api.SearchChatsRequest{
				Query:     args[0],
				PageToken: pageToken,
				PageSize:  pageSize,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.Chat]{}, err
			}
			return tokenPage[api.Chat]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers:      chatHeaders,
		RowFunc:      chatRow,
		EmptyMessage: "No matching chats.",
	})
}

func newChatsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <chat>",
		Short: "Show chat details (ID or name)",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			chatID, err := resolve.ChatID(cmd.Context(), sess.Client.Chats(), args[0], sess.opts()...)
			if err != nil {
				return err
			}
			info, err := sess.Client.Chats().Get(cmd.Context(), &api.ChatIDRequest{ChatID: chatID}, sess.opts()...)
			if err != nil {
				return err
			}
			if info.ChatID == "" {
				info.ChatID = chatID
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printDetail(cmd, info.Name,
				"ID", info.ChatID,
				"Description", info.Description,
				"Owner", info.OwnerID,
				"Mode", info.ChatMode,
				"Type", info.ChatType,
				"Users", info.UserCount,
				"Bots", info.BotCount,
				"Status", info.ChatStatus,
			)
			return nil
		}),
	}
}

func newChatsCreateCmd() *cobra.Command {
	var (
		req      api.CreateChatRequest
		members  []string
		bots     []string
		external bool
		manager  bool
	)
	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a group chat",
		Example: `  lark chats create "Release crew" --member ou_1,ou_2 --description "ship it"`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateChatName(args[0]); err != nil {
				return err
			}
			req.Name = args[0]
			req.UserIDList = splitList(members...)
			req.BotIDList = splitList(bots...)
			if cmd.Flags().Changed("external") {
				req.External = &external
			}
			if cmd.Flags().Changed("bot-manager") {
				req.SetBotManager = &manager
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			info, err := sess.Client.Chats().Create(cmd.Context(), &req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printAction(cmd, "Created", "chat", info.ChatID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "Chat description")
	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owner ID (defaults to the app)")
	cmd.Flags().StringVar(&req.UserIDType, "user-id-type", "", "ID type of --owner and --member: open_id|union_id|user_id")
	cmd.Flags().StringArrayVar(&members, "member", nil, "Member ID (repeatable, comma separated)")
	cmd.Flags().StringArrayVar(&bots, "bot", nil, "Bot app ID to add (repeatable, comma separated)")
	cmd.Flags().StringVar(&req.ChatType, "type", "", "private or public")
	cmd.Flags().BoolVar(&external, "external", false, "Allow members from other tenants")
	cmd.Flags().BoolVar(&manager, "bot-manager", false, "Make the app a chat manager")
	cmd.Flags().StringVar(&req.UUID, "uuid", "", "De-duplication key")
	return cmd
}

func newChatsUpdateCmd() *cobra.Command {
	var req api.UpdateChatRequest
	cmd := &cobra.Command{
		Use:   "update <chat>",
		Short: "Rename a chat or change its settings",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if req.Name == "" && req.Description == "" && req.OwnerID == "" && req.AddMemberPermission == "" &&
				req.ShareCardPermission == "" && req.MembershipApproval == "" {
				return fmt.Errorf("at least one of --name, --description, --owner or a permission flag is required")
			}
			if err := validation.ValidateChatName(req.Name); err != nil {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if req.ChatID, err = resolve.ChatID(cmd.Context(), sess.Client.Chats(), args[0], sess.opts()...); err != nil {
				return err
			}
			if err := sess.Client.Chats().Update(cmd.Context(), &req, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"chat_id": req.ChatID, "updated": true})
			}
			printAction(cmd, "Updated", "chat", req.ChatID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "New name")
	cmd.Flags().StringVar(&req.Description, "description", "", "New description")
	cmd.Flags().StringVar(&req.OwnerID, "owner", "", "Transfer ownership")
	cmd.Flags().StringVar(&req.AddMemberPermission, "add-member-permission", "", "only_owner or all_members")
	cmd.Flags().StringVar(&req.ShareCardPermission, "share-card-permission", "", "allowed or not_allowed")
	cmd.Flags().StringVar(&req.MembershipApproval, "membership-approval", "", "no_approval_required or approval_required")
	return cmd
}

func newChatsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <chat-id>",
		Aliases: []string{"disband"},
		Short:   "Disband a chat",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if !resolve.IsChatID(args[0]) {
				return fmt.Errorf("delete requires a chat ID (oc_...), got %q", args[0])
			}
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Disband chat " + args[0] + "?"})
			if err != nil || !ok {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Client.Chats().Delete(cmd.Context(), &api.ChatIDRequest{ChatID: args[0]}, sess.opts()...); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"chat_id": args[0], "deleted": true})
			}
			printAction(cmd, "Disbanded", "chat", args[0])
			return nil
		}),
	}
}

func newChatsMembersCmd() *cobra.Command {
	var memberIDType string
	cmd := newListCommand(listConfig[api.ChatMember]{
		Use:         "members <chat>",
		Short:       "List chat members",
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 100,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&memberIDType, "member-id-type", "", "open_id|union_id|user_id")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.ChatMember], error) {
			chatID, err := resolve.ChatID(cmd.Context(), sess.Client.Chats(), args[0], sess.opts()...)
			if err != nil {
				return tokenPage[api.ChatMember]{}, err
			}
			args[0] = chatID
			resp, err := sess.Client.Chats().ListMembers(cmd.Context(), &api.ListChatMembersRequest{
				ChatID:       chatID,
				MemberIDType: memberIDType,
				PageSize:     pageSize,
				PageToken:    pageToken,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.ChatMember]{}, err
			}
			return tokenPage[api.ChatMember]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "NAME", "TYPE"},
		RowFunc: func(m api.ChatMember) []string {
			return []string{m.MemberID, m.Name, m.MemberIDType}
		},
		EmptyMessage: "No members.",
	})
	cmd.AddCommand(newChatsAddMembersCmd())
	return cmd
}

func newChatsAddMembersCmd() *cobra.Command {
	var (
		ids          []string
		memberIDType string
		partial      bool
	)
	cmd := &cobra.Command{
		Use:     "add <chat>",
		Short:   "Add users or bots to a chat",
		Example: `  lark chats members add "Release crew" --id ou_1,ou_2`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			list := splitList(ids...)
			if len(list) == 0 {
				return fmt.Errorf("--id is required")
			}
			if len(list) > 50 {
				return fmt.Errorf("at most 50 members can be added at once, got %d", len(list))
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			chatID, err := resolve.ChatID(cmd.Context(), sess.Client.Chats(), args[0], sess.opts()...)
			if err != nil {
				return err
			}
			req := &api.AddChatMembersRequest{ChatID: chatID, MemberIDType: memberIDType, IDList: list}
			if partial {
				req.SucceedType = 1
			}
			resp, err := sess.Client.Chats().AddMembers(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			rejected := len(resp.InvalidIDList) + len(resp.NotExistedIDList)
			printAction(cmd, fmt.Sprintf("Added %d members to", len(list)-rejected-len(resp.PendingApprovalIDList)), "chat", chatID)
			errOut := iocontext.GetIO(cmd.Context()).ErrOut
			for _, id := range resp.InvalidIDList {
				_, _ = fmt.Fprintf(errOut, "  invalid: %s\n", id)
			}
			for _, id := range resp.NotExistedIDList {
				_, _ = fmt.Fprintf(errOut, "  not found: %s\n", id)
			}
			for _, id := range resp.PendingApprovalIDList {
				_, _ = fmt.Fprintf(errOut, "  pending approval: %s\n", id)
			}
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&ids, "id", nil, "Member ID (repeatable, comma separated)")
	cmd.Flags().StringVar(&memberIDType, "member-id-type", "", "open_id|union_id|user_id|app_id")
	cmd.Flags().BoolVar(&partial, "partial", false, "Add the valid IDs even if some are rejected")
	return cmd
}

func newChatsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print the chat ID for a chat name",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			id, err := resolve.ChatID(cmd.Context(), sess.Client.Chats(), args[0], sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"query": args[0], "chat_id": id})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, id)
			return nil
		}),
	}
}
