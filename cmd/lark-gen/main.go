// Command lark-gen renders the endpoint schema into Go façade methods.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/larkkit/lark-cli/internal/codegen"
)

func newRootCmd() *cobra.Command {
	var (
		schemaPath string
		outPath    string
		pkg        string
		check      bool
	)

	cmd := &cobra.Command{
		Use:           "lark-gen",
		Short:         "Generate endpoint methods from the schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := codegen.Generate(schemaPath, outPath, pkg, check); err != nil {
				return err
			}
			if !check {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "endpoints.yaml", "Endpoint schema file")
	cmd.Flags().StringVar(&outPath, "out", "zz_generated_endpoints.go", "Output Go file")
	cmd.Flags().StringVar(&pkg, "package", "api", "Package name of the generated file")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if the output is out of date instead of writing it")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "lark-gen:", err)
		os.Exit(1)
	}
}
