package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/validation"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact", "users"},
		Short:   "Look up users and departments",
	}
	cmd.AddCommand(newContactsUserCmd())
	cmd.AddCommand(newContactsFindIDCmd())
	cmd.AddCommand(newContactsDepartmentCmd())
	cmd.AddCommand(newContactsDepartmentUsersCmd())
	cmd.AddCommand(newContactsDepartmentChildrenCmd())
	return cmd
}

func newContactsUserCmd() *cobra.Command {
	var idType string
	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if idType == "" {
				detected, err := validation.DetectReceiveIDType(args[0])
				if err != nil {
					return err
				}
				if detected == validation.ReceiveIDEmail || detected == validation.ReceiveIDChatID {
					return fmt.Errorf("%q is not a user ID; use 'lark contacts find-id --email' for addresses", args[0])
				}
				idType = detected
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Contacts().GetUser(cmd.Context(), &api.GetUserRequest{
				UserID:     args[0],
				UserIDType: idType,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.User)
			}
			u := resp.User
			printDetail(cmd, u.Name,
				"Open ID", u.OpenID,
				"Union ID", u.UnionID,
				"User ID", u.UserID,
				"English name", u.EnName,
				"Email", u.Email,
				"Mobile", u.Mobile,
				"Title", u.JobTitle,
				"Departments", strings.Join(u.DepartmentIDs, ", "),
				"Status", userStatus(u.Status),
			)
			return nil
		}),
	}
	cmd.Flags().StringVar(&idType, "id-type", "", "open_id|union_id|user_id (detected from the prefix when empty)")
	return cmd
}

func userStatus(s *api.UserStatus) string {
	switch {
	case s == nil:
		return ""
	case s.IsResigned:
		return "resigned"
	case s.IsFrozen:
		return "frozen"
	case !s.IsActivated:
		return "inactive"
	default:
		return "active"
	}
}

func newContactsFindIDCmd() *cobra.Command {
	var (
		emails, mobiles []string
		idType          string
		resigned        bool
	)
	cmd := &cobra.Command{
		Use:     "find-id",
		Short:   "Resolve emails or mobile numbers to user IDs",
		Example: `  lark contacts find-id --email a@example.com,b@example.com --id-type open_id`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			req := &api.BatchGetUserIDRequest{
				UserIDType:      idType,
				Emails:          splitList(emails...),
				Mobiles:         splitList(mobiles...),
				IncludeResigned: resigned,
			}
			if len(req.Emails)+len(req.Mobiles) == 0 {
				return fmt.Errorf("--email or --mobile is required")
			}
			for _, e := range req.Emails {
				if err := validation.ValidateEmailFormat(e); err != nil {
					return err
				}
			}
			for _, m := range req.Mobiles {
				if err := validation.ValidatePhoneFormat(m); err != nil {
					return err
				}
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Contacts().BatchGetUserID(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.UserList)
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"QUERY", "USER ID"})
			for _, u := range resp.UserList {
				query := u.Email
				if query == "" {
					query = u.Mobile
				}
				id := u.UserID
				if id == "" {
					id = "(not found)"
				}
				f.Row(query, id)
			}
			return f.EndTable()
		}),
	}
	cmd.Flags().StringArrayVar(&emails, "email", nil, "Email (repeatable, comma separated)")
	cmd.Flags().StringArrayVar(&mobiles, "mobile", nil, "Mobile number (repeatable, comma separated)")
	cmd.Flags().StringVar(&idType, "id-type", api.IDTypeOpenID, "ID type to return")
	cmd.Flags().BoolVar(&resigned, "include-resigned", false, "Include resigned employees")
	return cmd
}

func newContactsDepartmentCmd() *cobra.Command {
	var deptIDType string
	cmd := &cobra.Command{
		Use:     "department <department-id>",
		Aliases: []string{"dept"},
		Short:   "Show a department (0 is the root)",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Contacts().GetDepartment(cmd.Context(), &api.GetDepartmentRequest{
				DepartmentID:     args[0],
				DepartmentIDType: deptIDType,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp.Department)
			}
			d := resp.Department
			printDetail(cmd, d.Name,
				"ID", d.DepartmentID,
				"Open ID", d.OpenDepartmentID,
				"Parent", d.ParentDepartmentID,
				"Leader", d.LeaderUserID,
				"Chat", d.ChatID,
				"Members", fmt.Sprint(d.MemberCount),
			)
			return nil
		}),
	}
	cmd.Flags().StringVar(&deptIDType, "department-id-type", "", "department_id or open_department_id")
	return cmd
}

func newContactsDepartmentUsersCmd() *cobra.Command {
	var deptIDType string
	return newListCommand(listConfig[api.User]{
		Use:         "department-users <department-id>",
		Short:       "List the direct members of a department",
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 50,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&deptIDType, "department-id-type", "", "department_id or open_department_id")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.User], error) {
			resp, err := sess.Client.Contacts().ListUsersByDepartment(cmd.Context(), &api.ListUsersByDepartmentRequest{
				DepartmentID:     args[0],
				DepartmentIDType: deptIDType,
				PageSize:         pageSize,
				PageToken:        pageToken,
			}, sess.opts()...)
			if err != nil {
				return tokenPage[api.User]{}, err
			}
			return tokenPage[api.User]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"OPEN ID", "NAME", "EMAIL", "TITLE"},
		RowFunc: func(u api.User) []string {
			return []string{u.OpenID, u.Name, u.Email, u.JobTitle}
		},
		EmptyMessage: "No users in this department.",
	})
}

func newContactsDepartmentChildrenCmd() *cobra.Command {
	var (
		deptIDType string
		recursive  bool
	)
	return newListCommand(listConfig[api.Department]{
		Use:         "department-children <department-id>",
		Short:       "List sub-departments",
		Args:        cobra.ExactArgs(1),
		MaxPageSize: 50,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&deptIDType, "department-id-type", "", "department_id or open_department_id")
			cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include every descendant")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.Department], error) {
			req := &api.ListDepartmentChildrenRequest{
				DepartmentID:     args[0],
				DepartmentIDType: deptIDType,
				PageSize:         pageSize,
				PageToken:        pageToken,
			}
			if recursive {
				req.FetchChild = &recursive
			}
			resp, err := sess.Client.Contacts().ListDepartmentChildren(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return tokenPage[api.Department]{}, err
			}
			return tokenPage[api.Department]{Items: resp.Items, PageToken: resp.PageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"ID", "NAME", "PARENT", "MEMBERS"},
		RowFunc: func(d api.Department) []string {
			return []string{d.OpenDepartmentID, d.Name, d.ParentDepartmentID, fmt.Sprint(d.MemberCount)}
		},
		EmptyMessage: "No sub-departments.",
	})
}
