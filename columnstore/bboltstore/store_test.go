package bboltstore_test

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/columnstore/bboltstore"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func openStore(t *testing.T) *bboltstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfield.bolt")
	store, err := bboltstore.Open(path, field.WriteOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newConnectedField(t *testing.T, store *bboltstore.Store, id field.FieldID, name, typeName string, impl field.Kind) *field.Field {
	t.Helper()
	f, err := field.NewField(name, typeName, field.StructureLeaf, 0, impl)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	f.SetOnDiskID(id)
	if err := f.ConnectPageSink(store.Sink(), 0); err != nil {
		t.Fatalf("ConnectPageSink: %v", err)
	}
	return f
}

func TestStore_Int32RoundTrip(t *testing.T) {
	store := openStore(t)
	wf := newConnectedField(t, store, 1, "n", "i32", kinds.NewInt32())

	vals := []int32{7, -3, 42}
	for _, v := range vals {
		v := v
		if _, err := wf.Append(unsafe.Pointer(&v)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf, err := field.NewField("n", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	rf.SetOnDiskID(1)
	if err := rf.ConnectPageSource(store.Source()); err != nil {
		t.Fatalf("ConnectPageSource: %v", err)
	}

	for i, want := range vals {
		var got int32
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %d, want %d", i, got, want)
		}
	}
}

func TestStore_StringRoundTrip(t *testing.T) {
	store := openStore(t)
	wf := newConnectedField(t, store, 2, "s", "std::string", kinds.NewString())

	vals := []string{"hello", "", "rfield"}
	for _, v := range vals {
		v := v
		if _, err := wf.Append(unsafe.Pointer(&v)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf, err := field.NewField("s", "std::string", field.StructureLeaf, 0, kinds.NewString())
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	rf.SetOnDiskID(2)
	if err := rf.ConnectPageSource(store.Source()); err != nil {
		t.Fatalf("ConnectPageSource: %v", err)
	}

	for i, want := range vals {
		var got string
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %q, want %q", i, got, want)
		}
	}
}

func TestStoreDescriptor_ReportsWrittenColumnTypes(t *testing.T) {
	store := openStore(t)
	newConnectedField(t, store, 3, "n", "i32", kinds.NewInt32())

	desc := store.Source().Descriptor()
	types, ok := desc.ColumnTypesFor(3)
	if !ok {
		t.Fatalf("ColumnTypesFor(3): not found")
	}
	if len(types) != 1 {
		t.Errorf("ColumnTypesFor(3) = %v, want exactly 1 column", types)
	}
}

func TestStore_SetTypeVersion(t *testing.T) {
	store := openStore(t)
	if err := store.SetTypeVersion(5, 3); err != nil {
		t.Fatalf("SetTypeVersion: %v", err)
	}
	v, ok := store.Source().Descriptor().TypeVersion(5)
	if !ok || v != 3 {
		t.Errorf("TypeVersion(5) = (%d, %v), want (3, true)", v, ok)
	}
}

func TestStore_RunID_StableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfield.bolt")
	s1, err := bboltstore.Open(path, field.WriteOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id1 := s1.RunID()
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := bboltstore.Open(path, field.WriteOptions{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if s2.RunID() != id1 {
		t.Fatalf("RunID changed across reopen: %v != %v", s2.RunID(), id1)
	}
}
