package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

// TestSmallVector_Read_ReallocGrowth_TrivialDtor_ConstructsOnlyTail is
// SmallVector's counterpart to the Vector growth test: a trivially-
// destructible, non-trivially-constructible element must have its
// surviving bytes copied forward on reallocation, with only the new tail
// placement-constructed.
func TestSmallVector_Read_ReallocGrowth_TrivialDtor_ConstructsOnlyTail(t *testing.T) {
	store := newStore()
	spy := newSpyInt32()
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, spy)
	wf := mustField(t, "sv", "ROOT::RVec<i32>", field.StructureCollection, 0, kinds.NewSmallVector(reflect.TypeOf(int32(0)), false, true))
	wf.Attach(child)
	connectWrite(t, wf, store)

	entries := [][]int32{{1, 2}, {1, 2, 3, 4, 5}}
	for _, e := range entries {
		backing := append([]int32{}, e...)
		hdr := svHeader{size: int32(len(backing)), capacity: int32(len(backing))}
		if len(backing) > 0 {
			hdr.begin = unsafe.Pointer(&backing[0])
		}
		if _, err := wf.Append(unsafe.Pointer(&hdr)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	rfSpy := rf.Children()[0].Impl.(*spyInt32)

	var hdr svHeader
	if err := rf.Read(0, unsafe.Pointer(&hdr)); err != nil {
		t.Fatalf("Read(0): %v", err)
	}
	got := unsafe.Slice((*int32)(hdr.begin), int(hdr.size))
	if !reflect.DeepEqual([]int32(got), entries[0]) {
		t.Fatalf("entry 0: got %v want %v", got, entries[0])
	}
	if rfSpy.genCount != 2 {
		t.Fatalf("after entry 0: genCount = %d, want 2 (the full initial buffer)", rfSpy.genCount)
	}

	if err := rf.Read(1, unsafe.Pointer(&hdr)); err != nil {
		t.Fatalf("Read(1): %v", err)
	}
	got = unsafe.Slice((*int32)(hdr.begin), int(hdr.size))
	if !reflect.DeepEqual([]int32(got), entries[1]) {
		t.Fatalf("entry 1: got %v want %v", got, entries[1])
	}
	if rfSpy.genCount != 5 {
		t.Fatalf("after entry 1: genCount = %d, want 5 (2 survivors copied forward + 3 new tail elements constructed)", rfSpy.genCount)
	}
	if rfSpy.destroyCount != 0 {
		t.Fatalf("destroyCount = %d, want 0 (trivially-destructible elements are never destroyed on growth)", rfSpy.destroyCount)
	}
}
