package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/api"
)

func newImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Aliases: []string{"image"},
		Short:   "Upload and download message images",
	}
	cmd.AddCommand(newImagesUploadCmd())
	cmd.AddCommand(newImagesDownloadCmd())
	return cmd
}

func newImagesUploadCmd() *cobra.Command {
	var imageType string
	cmd := &cobra.Command{
		Use:     "upload <path>",
		Short:   "Upload an image and print its image_key",
		Example: `  key=$(lark images upload chart.png) && lark messages send --chat oc_5ad1 --image-key "$key"`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			file, err := readFormFile(cmd, args[0])
			if err != nil {
				return err
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Images().Upload(cmd.Context(), &api.UploadImageRequest{ImageType: imageType, Image: file}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.ImageKey)
			return nil
		}),
	}
	cmd.Flags().StringVar(&imageType, "type", "message", "message or avatar")
	return cmd
}

func newImagesDownloadCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <image-key>",
		Short: "Download an image uploaded by the app",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			file, err := sess.Client.Images().Download(cmd.Context(), &api.ImageKeyRequest{ImageKey: args[0]}, sess.opts()...)
			if err != nil {
				return err
			}
			return reportDownload(cmd, file, out, args[0])
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "O", "", "Destination file or directory (- for stdout)")
	return cmd
}

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload files for file and media messages",
	}
	cmd.AddCommand(newFilesUploadCmd())
	return cmd
}

// fileTypeFor maps an extension to the upload file_type.
func fileTypeFor(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "opus":
		return "opus"
	case "mp4":
		return "mp4"
	case "pdf":
		return "pdf"
	case "doc", "docx":
		return "doc"
	case "xls", "xlsx":
		return "xls"
	case "ppt", "pptx":
		return "ppt"
	default:
		return "stream"
	}
}

func newFilesUploadCmd() *cobra.Command {
	var fileType, name string
	var duration int
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file and print its file_key",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			file, err := readFormFile(cmd, args[0])
			if err != nil {
				return err
			}
			if name != "" {
				file.Name = name
			}
			if fileType == "" {
				fileType = fileTypeFor(file.Name)
			}
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			resp, err := sess.Client.Files().Upload(cmd.Context(), &api.UploadFileRequest{
				FileType: fileType,
				FileName: file.Name,
				Duration: duration,
				File:     file,
			}, sess.opts()...)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.FileKey)
			return nil
		}),
	}
	cmd.Flags().StringVar(&fileType, "type", "", "opus|mp4|pdf|doc|xls|ppt|stream (from the extension when empty)")
	cmd.Flags().StringVar(&name, "name", "", "File name shown to recipients")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in milliseconds for opus and mp4")
	return cmd
}
