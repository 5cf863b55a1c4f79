package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/iocontext"
	"github.com/larkkit/lark-cli/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the endpoints the client binds",
	}
	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())
	return cmd
}

type schemaRow struct {
	Service  string   `json:"service"`
	Endpoint string   `json:"endpoint"`
	Method   string   `json:"method"`
	Path     string   `json:"path"`
	Tokens   []string `json:"tokens"`
}

func newSchemaListCmd() *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bound endpoints",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			doc, err := schema.Builtin()
			if err != nil {
				return err
			}
			var rows []schemaRow
			for _, svc := range doc.Services {
				if service != "" && !strings.EqualFold(svc.Name, service) {
					continue
				}
				for _, ep := range svc.Endpoints {
					rows = append(rows, schemaRow{svc.Name, ep.Name, ep.Method, ep.Path, ep.Tokens})
				}
			}
			if service != "" && len(rows) == 0 {
				return fmt.Errorf("service %q not found; available: %s", service, strings.Join(doc.ServiceNames(), ", "))
			}
			if isJSON(cmd) {
				return printJSON(cmd, rows)
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"ENDPOINT", "METHOD", "PATH", "TOKENS"})
			for _, r := range rows {
				f.Row(r.Service+"."+r.Endpoint, r.Method, r.Path, strings.Join(r.Tokens, ","))
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if service == "" && !flags.Quiet {
				_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).ErrOut, "%d endpoints in %d services\n", doc.EndpointCount(), len(doc.Services))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&service, "service", "", "Only this service")
	return cmd
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <Service.Endpoint>",
		Short:   "Describe one endpoint",
		Example: `  lark schema show Messages.Send`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			doc, err := schema.Builtin()
			if err != nil {
				return err
			}
			svc, ep, err := doc.Find(args[0])
			if err != nil {
				return err
			}
			if ep == nil {
				return fmt.Errorf("%s is a service; use Service.Endpoint (see 'lark schema list --service %s')", svc.Name, svc.Name)
			}
			if isJSON(cmd) {
				return printJSON(cmd, ep)
			}
			helpdesk := ""
			if ep.Helpdesk {
				helpdesk = "yes"
			}
			kind := "json"
			switch {
			case ep.Multipart:
				kind = "multipart"
			case ep.Download:
				kind = "download"
			}
			printDetail(cmd, svc.Name+"."+ep.Name,
				"Method", ep.Method,
				"Path", ep.Path,
				"Path params", strings.Join(ep.PathParams(), ", "),
				"Tokens", strings.Join(ep.Tokens, ", "),
				"Request", ep.Request,
				"Response", ep.Response,
				"Body", kind,
				"Helpdesk", helpdesk,
				"Doc", ep.Doc,
			)
			return nil
		}),
	}
}
