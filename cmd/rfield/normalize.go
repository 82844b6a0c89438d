package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfield/rfield/introspect"
	"github.com/rfield/rfield/typename"
)

// newNormalizeCmd prints the normalized spelling and, given a (possibly
// empty) alias registry, the fully canonical spelling of a type name.
func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <type-name>",
		Short: "Normalize and canonicalize a type-name spelling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := introspect.NewRegistry()
			normalized := typename.Normalize(args[0])
			canonical := typename.Normalize(typename.Canonicalize(normalized, svc))
			fmt.Fprintf(cmd.OutOrStdout(), "normalized: %s\n", normalized)
			fmt.Fprintf(cmd.OutOrStdout(), "canonical:  %s\n", canonical)
			return nil
		},
	}
	return cmd
}
