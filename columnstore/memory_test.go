package columnstore_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/columnstore"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

// newConnectedField builds a standalone field, assigns it an on-disk id, and
// connects it to both sides of store in one step — the shape every
// kinds/ + columnstore round trip test below shares.
func newConnectedField(t *testing.T, store *columnstore.Store, id field.FieldID, name, typeName string, impl field.Kind) *field.Field {
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
	store := columnstore.NewStore(field.WriteOptions{})
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
	store := columnstore.NewStore(field.WriteOptions{})
	wf := newConnectedField(t, store, 2, "s", "std::string", kinds.NewString())

	vals := []string{"hello", "", "goskema rfield"}
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
	store := columnstore.NewStore(field.WriteOptions{})
	newConnectedField(t, store, 3, "n", "i32", kinds.NewInt32())

	desc := store.Source().Descriptor()
	types, ok := desc.ColumnTypesFor(3)
	if !ok {
		t.Fatalf("ColumnTypesFor(3): not found")
	}
	if len(types) != 1 || types[0] != field.ElemInt32 {
		t.Errorf("ColumnTypesFor(3) = %v, want [Int32]", types)
	}
}

func TestStore_SetTypeVersion(t *testing.T) {
	store := columnstore.NewStore(field.WriteOptions{})
	store.SetTypeVersion(5, 3)
	v, ok := store.Source().Descriptor().TypeVersion(5)
	if !ok || v != 3 {
		t.Errorf("TypeVersion(5) = (%d, %v), want (3, true)", v, ok)
	}
}
