package kinds_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

// TestNullable_DenseEncoding exercises the <4-byte item threshold, which
// picks the bit-mask (dense) encoding as the default representation.
func TestNullable_DenseEncoding(t *testing.T) {
	store := newStore()
	impl := kinds.NewNullable(1, 1) // byte item: itemSize < 4 -> dense default
	child := mustField(t, "_0", "char", field.StructureLeaf, 0, kinds.NewChar())
	wf := mustField(t, "opt", "std::optional<char>", field.StructureRecord, 0, impl)
	wf.Attach(child)
	connectWrite(t, wf, store)

	type entry struct {
		present bool
		value   byte
	}
	entries := []entry{{true, 'a'}, {false, 0}, {true, 'z'}}

	buf := make([]byte, impl.ValueSize())
	addr := unsafe.Pointer(&buf[0])
	for _, e := range entries {
		impl.SetPresent(addr, e.present)
		*(*byte)(addr) = e.value
		if _, err := wf.Append(addr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	dst := make([]byte, impl.ValueSize())
	dstAddr := unsafe.Pointer(&dst[0])
	for i, want := range entries {
		if err := rf.Read(uint64(i), dstAddr); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		present := impl.IsPresent(dstAddr)
		if present != want.present {
			t.Errorf("entry %d: present=%v want %v", i, present, want.present)
		}
		if present && *(*byte)(dstAddr) != want.value {
			t.Errorf("entry %d: value=%v want %v", i, *(*byte)(dstAddr), want.value)
		}
	}
}

// TestNullable_SparseEncoding exercises the >=4-byte item threshold, which
// picks the cumulative-index (sparse) encoding as the default representation.
func TestNullable_SparseEncoding(t *testing.T) {
	store := newStore()
	impl := kinds.NewNullable(4, 4) // int32 item: itemSize >= 4 -> sparse default
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "opt", "std::optional<i32>", field.StructureRecord, 0, impl)
	wf.Attach(child)
	connectWrite(t, wf, store)

	type entry struct {
		present bool
		value   int32
	}
	entries := []entry{{true, 100}, {false, 0}, {false, 0}, {true, -5}}

	buf := make([]byte, impl.ValueSize())
	addr := unsafe.Pointer(&buf[0])
	for _, e := range entries {
		impl.SetPresent(addr, e.present)
		*(*int32)(addr) = e.value
		if _, err := wf.Append(addr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	dst := make([]byte, impl.ValueSize())
	dstAddr := unsafe.Pointer(&dst[0])
	for i, want := range entries {
		if err := rf.Read(uint64(i), dstAddr); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		present := impl.IsPresent(dstAddr)
		if present != want.present {
			t.Errorf("entry %d: present=%v want %v", i, present, want.present)
		}
		if present && *(*int32)(dstAddr) != want.value {
			t.Errorf("entry %d: value=%v want %v", i, *(*int32)(dstAddr), want.value)
		}
	}
}
