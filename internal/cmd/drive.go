package cmd

import (
	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/outfmt"
)

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Browse and transfer files in cloud drive",
	}
	cmd.AddCommand(newDriveRootCmd())
	cmd.AddCommand(newDriveListCmd())
	cmd.AddCommand(newDriveMkdirCmd())
	cmd.AddCommand(newDriveUploadCmd())
	cmd.AddCommand(newDriveDownloadCmd())
	cmd.AddCommand(newDriveDeleteCmd())
	return cmd
}

func newDriveRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the root folder token",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			meta, err := sess.Client.Drive().RootFolderMeta(cmd.Context(), sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, meta)
			}
			printDetail(cmd, "", "Token", meta.Token, "ID", meta.ID, "Owner", meta.UserID)
			return nil
		}),
	}
}

func newDriveListCmd() *cobra.Command {
	var orderBy, direction string
	return newListCommand(listConfig[api.DriveFile]{
		Use:         "list [folder-token]",
		Aliases:     []string{"ls"},
		Short:       "List a folder (root when omitted)",
		Args:        cobra.MaximumNArgs(1),
		MaxPageSize: 200,
		Flags: func(cmd *cobra.Command) {
			cmd.Flags().StringVar(&orderBy, "order-by", "", "EditedTime or CreatedTime")
			cmd.Flags().StringVar(&direction, "direction", "", "ASC or DESC")
		},
		Fetch: func(cmd *cobra.Command, args []string, sess *session, pageToken string, pageSize int) (tokenPage[api.DriveFile], error) {
			req := &api.ListDriveFilesRequest{
				PageSize:  pageSize,
				PageToken: pageToken,
				OrderBy:   orderBy,
				Direction: direction,
			}
			if len(args) == 1 {
				req.FolderToken = args[0]
			}
			resp, err := sess.Client.Drive().ListFiles(cmd.Context(), req, sess.opts()...)
			if err != nil {
				return tokenPage[api.DriveFile]{}, err
			}
			return tokenPage[api.DriveFile]{Items: resp.Files, PageToken: resp.NextPageToken, HasMore: resp.HasMore}, nil
		},
		Headers: []string{"TOKEN", "TYPE", "NAME", "MODIFIED"},
		RowFunc: func(f api.DriveFile) []string {
			return []string{f.Token, f.Type, f.Name, outfmt.FormatEpoch(f.ModifiedTime)}
		},
		EmptyMessage: "Folder is empty.",
	})
}

func newDriveMkdirCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			folder, err := folderOrRoot(cmd, sess, parent)
			if err != nil {
				return err
			}
			resp, err := sess.Client.Drive().CreateFolder(cmd.Context(), &api.CreateFolderRequest{Name: args[0], FolderToken: folder}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Created", "folder", resp.Token)
			return nil
		}),
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder token (root when empty)")
	return cmd
}

// folderOrRoot returns token, or the caller's root folder when it is empty.
func folderOrRoot(cmd *cobra.Command, sess *session, token string) (string, error) {
	if token != "" {
		return token, nil
	}
	meta, err := sess.Client.Drive().RootFolderMeta(cmd.Context(), sess.opts()...)
	if err != nil {
		return "", err
	}
	return meta.Token, nil
}

func newDriveUploadCmd() *cobra.Command {
	var folder, name string
	cmd := &cobra.Command{
		Use:     "upload <path>",
		Short:   "Upload a file (up to 20 MB) into a folder",
		Example: `  lark drive upload ./report.pdf --folder fldcnqquW1svRIYVT2Np6Iabcef`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			file, err := readFormFile(cmd, args[0])
			if err != nil {
				return err
			}
			if name != "" {
				file.Name = name
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			parent, err := folderOrRoot(cmd, sess, folder)
			if err != nil {
				return err
			}
			resp, err := sess.Client.Drive().UploadAll(cmd.Context(), api.NewUploadAllRequest(parent, file), sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			printAction(cmd, "Uploaded", file.Name+" as", resp.FileToken)
			return nil
		}),
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder token (root when empty)")
	cmd.Flags().StringVar(&name, "name", "", "Name to store the file under")
	return cmd
}

// readFormFile loads path, or stdin for "-".
func readFormFile(cmd *cobra.Command, path string) (*api.FormFile, error) {
	if path == "-" {
		return api.NewFormFile("stdin", iocontext.GetIO(cmd.Context()).In)
	}
	return api.FormFileFromPath(path)
}

func newDriveDownloadCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <file-token>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			file, err := sess.Client.Drive().Download(cmd.Context(), &api.DriveFileTokenRequest{FileToken: args[0]}, sess.opts()...)
			if err != nil {
				return err
			}
			return reportDownload(cmd, file, out, args[0])
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "O", "", "Destination file or directory (- for stdout)")
	return cmd
}

func newDriveDeleteCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "delete <file-token>",
		Short: "Delete a file or folder",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, confirmOptions{Prompt: "Delete " + typ + " " + args[0] + "?"})
			if err != nil || !ok {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Drive().DeleteFile(cmd.Context(), &api.DeleteDriveFileRequest{FileToken: args[0], Type: typ}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"file_token": args[0], "deleted": true, "task_id": resp.TaskID})
			}
			if resp.TaskID != "" {
				printAction(cmd, "Deleting", typ, args[0]+" (task "+resp.TaskID+")")
				return nil
			}
			printAction(cmd, "Deleted", typ, args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&typ, "type", "file", "file, folder, docx, sheet, bitable, ...")
	return cmd
}
