package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfield/rfield/typename"
)

// newParseCmd breaks a type-name spelling down into its array suffix (if
// any) and template arguments (if any), the same structural decomposition
// the field factory performs before dispatching on a canonical name.
func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <type-name>",
		Short: "Show the array suffix and template arguments of a type name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := typename.Normalize(args[0])

			if typename.HasArraySuffix(name) {
				base, sizes, err := typename.ParseArraySuffix(name)
				if err != nil {
					return fmt.Errorf("parse array suffix: %w", err)
				}
				fmt.Fprintf(out, "array suffix: base=%s sizes=%v\n", base, sizes)
				name = base
			}

			if prefix, body, ok := splitTemplate(name); ok {
				argList, err := typename.SplitTemplateArgs(body)
				if err != nil {
					return fmt.Errorf("split template args: %w", err)
				}
				fmt.Fprintf(out, "template: %s< %s >\n", prefix, strings.Join(argList, ", "))
				for i, a := range argList {
					fmt.Fprintf(out, "  arg[%d]: %s\n", i, a)
				}
				return nil
			}

			fmt.Fprintf(out, "bare type: %s\n", name)
			return nil
		},
	}
	return cmd
}

// splitTemplate splits "prefix<body>" into its prefix and body, reporting
// ok=false for a bare (non-templated) name.
func splitTemplate(name string) (prefix, body string, ok bool) {
	open := strings.Index(name, "<")
	if open < 0 || !strings.HasSuffix(name, ">") {
		return "", "", false
	}
	return name[:open], name[open+1 : len(name)-1], true
}
