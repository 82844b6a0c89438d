package kinds_test

import (
	"testing"

	"github.com/rfield/rfield/columnstore"
	"github.com/rfield/rfield/field"
)

func newStore() *columnstore.Store {
	return columnstore.NewStore(field.WriteOptions{})
}

func mustField(t *testing.T, name, typeName string, structure field.Structure, nrep int, impl field.Kind) *field.Field {
	t.Helper()
	f, err := field.NewField(name, typeName, structure, nrep, impl)
	if err != nil {
		t.Fatalf("NewField(%s): %v", name, err)
	}
	return f
}

func assignIDs(f *field.Field, next *field.FieldID) {
	f.SetOnDiskID(*next)
	*next++
	for _, c := range f.Children() {
		assignIDs(c, next)
	}
}

// connectWrite assigns on-disk ids pre-order across the whole tree and binds
// it to store's write side.
func connectWrite(t *testing.T, f *field.Field, store *columnstore.Store) {
	t.Helper()
	var id field.FieldID = 1
	assignIDs(f, &id)
	if err := f.ConnectPageSink(store.Sink(), 0); err != nil {
		t.Fatalf("ConnectPageSink(%s): %v", f.Name(), err)
	}
}

// connectRead clones wf (preserving assigned on-disk ids down the whole
// tree) and binds the clone to store's read side, returning it.
func connectRead(t *testing.T, wf *field.Field, store *columnstore.Store) *field.Field {
	t.Helper()
	rf, err := wf.Clone(wf.Name())
	if err != nil {
		t.Fatalf("Clone(%s): %v", wf.Name(), err)
	}
	if err := rf.ConnectPageSource(store.Source()); err != nil {
		t.Fatalf("ConnectPageSource(%s): %v", wf.Name(), err)
	}
	return rf
}
