// Package concurrent fans out independent field-tree construction across
// goroutines (spec §5: "different field trees belonging to different
// datasets are independent and may be exercised concurrently"). A single
// field tree stays single-threaded internally — nothing in this package
// touches one *field.Field concurrently with itself.
//
// Grounded on solidcoredata-dca's internal/start.RunAll: an errgroup fan-out
// over a list of independent units of work, the closest teacher-pack
// precedent for "run N unrelated things concurrently, fail on the first
// error."
package concurrent

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rfield/rfield/factory"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

// WriteTask describes one field tree to build and bind to a sink.
// FirstID seeds the pre-order on-disk id assignment for this tree; callers
// binding multiple tasks to the same sink must give each task a disjoint
// id range.
type WriteTask struct {
	Name       string
	TypeName   string
	FirstID    field.FieldID
	FirstEntry uint64
	Sink       field.ColumnSink
}

// BuildAndConnectWrite builds and write-connects each task's field tree
// concurrently, returning the built trees in task order (or the first
// error any task produced). A task's factory.Create/ConnectPageSink pair
// runs entirely on its own goroutine; no field.Field is ever touched from
// more than one goroutine.
func BuildAndConnectWrite(ctx context.Context, svc introspect.Service, tasks []WriteTask) ([]*field.Field, error) {
	group, _ := errgroup.WithContext(ctx)
	out := make([]*field.Field, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			f, err := factory.Create(svc, task.Name, task.TypeName)
			if err != nil {
				return fmt.Errorf("concurrent: build %q: %w", task.Name, err)
			}
			assignOnDiskIDs(f, task.FirstID)
			if err := f.ConnectPageSink(task.Sink, task.FirstEntry); err != nil {
				return fmt.Errorf("concurrent: connect %q: %w", task.Name, err)
			}
			out[i] = f
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadTask describes one already-built write-side field tree to clone and
// bind to a read-side source (spec §3 Lifecycle: Clone preserves on-disk
// ids, so the clone reads back exactly what its write-side counterpart
// wrote).
type ReadTask struct {
	WriteField *field.Field
	Source     field.ColumnSource
}

// BuildAndConnectReplayRead clones each task's write-side tree and
// read-connects the clone, concurrently, returning the read-side trees in
// task order.
func BuildAndConnectReplayRead(ctx context.Context, tasks []ReadTask) ([]*field.Field, error) {
	group, _ := errgroup.WithContext(ctx)
	out := make([]*field.Field, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			rf, err := task.WriteField.Clone(task.WriteField.Name())
			if err != nil {
				return fmt.Errorf("concurrent: clone %q: %w", task.WriteField.Name(), err)
			}
			if err := rf.ConnectPageSource(task.Source); err != nil {
				return fmt.Errorf("concurrent: connect %q: %w", task.WriteField.Name(), err)
			}
			out[i] = rf
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// assignOnDiskIDs walks f pre-order, assigning sequential ids starting at
// first — the same tree-walk order the factory itself builds children in,
// which ConnectPageSink relies on to keep principal index columns
// monotonically non-decreasing (spec §5 "Ordering").
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
