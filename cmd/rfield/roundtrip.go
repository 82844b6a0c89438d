package main

import (
	"fmt"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/rfield/rfield/columnstore"
	"github.com/rfield/rfield/columnstore/bboltstore"
	"github.com/rfield/rfield/factory"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

// newRoundtripCmd builds a field tree, writes a handful of generated
// sample values through a column store, reads them back through a cloned
// read-side tree, and reports how many entries were written and read back
// without error; the values read are not compared with the ones written.
//
// With --db it persists to a bbolt file (so the command can also be used
// to poke at an on-disk store); without it, it uses the in-memory store,
// matching the scope of a single invocation.
func newRoundtripCmd() *cobra.Command {
	var name, dbPath string
	var entries int
	cmd := &cobra.Command{
		Use:   "roundtrip <type-name>",
		Short: "Write and read back generated sample values for a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := introspect.NewRegistry()
			wf, err := factory.Create(svc, name, args[0])
			if err != nil {
				return fmt.Errorf("build field tree: %w", err)
			}
			assignOnDiskIDs(wf, 1)

			var sink field.ColumnSink
			var source field.ColumnSource
			if dbPath != "" {
				store, err := bboltstore.Open(dbPath, field.WriteOptions{})
				if err != nil {
					return fmt.Errorf("open %s: %w", dbPath, err)
				}
				defer store.Close()
				sink, source = store.Sink(), store.Source()
			} else {
				store := columnstore.NewStore(field.WriteOptions{})
				sink, source = store.Sink(), store.Source()
			}

			if err := wf.ConnectPageSink(sink, 0); err != nil {
				return fmt.Errorf("connect write side: %w", err)
			}

			size := wf.ValueSize()
			for i := 0; i < entries; i++ {
				buf := make([]byte, size)
				ptr := unsafe.Pointer(&buf[0])
				wf.GenerateValue(ptr)
				if _, err := wf.Append(ptr); err != nil {
					return fmt.Errorf("append entry %d: %w", i, err)
				}
				wf.DestroyValue(ptr, false)
			}

			rf, err := wf.Clone(wf.Name())
			if err != nil {
				return fmt.Errorf("clone read-side tree: %w", err)
			}
			if err := rf.ConnectPageSource(source); err != nil {
				return fmt.Errorf("connect read side: %w", err)
			}

			for i := 0; i < entries; i++ {
				buf := make([]byte, size)
				ptr := unsafe.Pointer(&buf[0])
				if err := rf.Read(uint64(i), ptr); err != nil {
					return fmt.Errorf("read entry %d: %w", i, err)
				}
				rf.DestroyValue(ptr, false)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "round-tripped %d entries of %s\n", entries, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "value", "name of the root field")
	cmd.Flags().StringVar(&dbPath, "db", "", "bbolt file to use instead of an in-memory store")
	cmd.Flags().IntVar(&entries, "entries", 3, "number of generated sample entries to round-trip")
	return cmd
}

// assignOnDiskIDs walks f pre-order, assigning sequential on-disk ids
// starting at first (mirrors concurrent.BuildAndConnectWrite's single-tree
// case, inlined here since main programs don't import the concurrent
// package's internals).
func assignOnDiskIDs(f *field.Field, first field.FieldID) {
	next := first
	var walk func(*field.Field)
	walk = func(n *field.Field) {
		n.SetOnDiskID(next)
		next++
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(f)
}
