// Command rfield is a small inspection and diagnostic tool over the field
// layer: normalizing/parsing type-name spellings, dumping a field tree's
// shape, and round-tripping a sample value through a column store.
//
// Grounded on the teacher's cmd/goskema, generalized from its flag-based
// dispatch into cobra subcommands per the wider pack's convention
// (voedger's cmd/ctool, cmd/vpm: one newXCmd() per subcommand, wired onto a
// root command).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rfield",
		Short:         "Inspect and exercise the rfield columnar field layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newNormalizeCmd(),
		newParseCmd(),
		newDumpCmd(),
		newRoundtripCmd(),
	)
	return root
}
