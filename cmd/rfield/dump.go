package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfield/rfield/factory"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

// newDumpCmd builds a field tree for a type name (no on-disk ids, no
// store binding) and renders its shape as a schema descriptor document.
func newDumpCmd() *cobra.Command {
	var name, format string
	cmd := &cobra.Command{
		Use:   "dump <type-name>",
		Short: "Build a field tree and dump its shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := introspect.NewRegistry()
			f, err := factory.Create(svc, name, args[0])
			if err != nil {
				return fmt.Errorf("build field tree: %w", err)
			}

			var df field.DumpFormat
			switch format {
			case "json":
				df = field.DumpJSON
			case "yaml":
				df = field.DumpYAML
			default:
				return fmt.Errorf("unknown --format %q (want yaml or json)", format)
			}

			out, err := field.Dump(f, df)
			if err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "value", "name of the root field")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
