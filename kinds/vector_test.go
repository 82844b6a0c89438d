package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func TestVector_RoundTrip(t *testing.T) {
	store := newStore()
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "v", "std::vector<i32>", field.StructureCollection, 0, kinds.NewVector(reflect.TypeOf(int32(0)), true, true))
	wf.Attach(child)
	connectWrite(t, wf, store)

	entries := [][]int32{{1, 2, 3}, nil, {7}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got []int32
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if !reflect.DeepEqual(got, want) && !(len(got) == 0 && len(want) == 0) {
			t.Errorf("entry %d: got %v want %v", i, got, want)
		}
	}
}

// TestVector_Read_GrowsReslicingBuffer exercises the in-capacity reslice path
// (grow within existing capacity) by repeatedly reading into the same
// backing slice variable; the buffer is pre-sized for both entries, so the
// reallocation path is not taken here (TestVector_RoundTrip's fresh
// destinations take it).
func TestVector_Read_GrowsReslicingBuffer(t *testing.T) {
	store := newStore()
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "v", "std::vector<i32>", field.StructureCollection, 0, kinds.NewVector(reflect.TypeOf(int32(0)), true, true))
	wf.Attach(child)
	connectWrite(t, wf, store)

	entries := [][]int32{{1, 2, 3}, {1, 2, 3, 4, 5}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	var buf []int32
	buf = make([]int32, 0, 8) // pre-sized with enough capacity for both reads
	for i, want := range entries {
		if err := rf.Read(uint64(i), unsafe.Pointer(&buf)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if !reflect.DeepEqual(buf, want) {
			t.Errorf("entry %d: got %v want %v", i, buf, want)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	store := newStore()
	wf := mustField(t, "s", "std::string", field.StructureLeaf, 0, kinds.NewString())
	connectWrite(t, wf, store)

	vals := []string{"hello", "", "goskema rfield"}
	for _, v := range vals {
		v := v
		if _, err := wf.Append(unsafe.Pointer(&v)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range vals {
		var got string
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %q want %q", i, got, want)
		}
	}
}
