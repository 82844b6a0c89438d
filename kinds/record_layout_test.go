package kinds_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

type tupleValue struct {
	X int32
	Y float64
	Z int32
}

func TestTuple_RoundTrip(t *testing.T) {
	store := newStore()
	var probe tupleValue
	offsets := []uintptr{
		unsafe.Offsetof(probe.X),
		unsafe.Offsetof(probe.Y),
		unsafe.Offsetof(probe.Z),
	}

	impl := kinds.NewTuple(unsafe.Sizeof(probe), unsafe.Alignof(probe), offsets, true)
	wf := mustField(t, "t", "std::tuple<i32,f64,i32>", field.StructureRecord, 0, impl)
	wf.Attach(mustField(t, kinds.TupleMemberName(0), "i32", field.StructureLeaf, 0, kinds.NewInt32()))
	wf.Attach(mustField(t, kinds.TupleMemberName(1), "f64", field.StructureLeaf, 0, kinds.NewFloat64()))
	wf.Attach(mustField(t, kinds.TupleMemberName(2), "i32", field.StructureLeaf, 0, kinds.NewInt32()))
	connectWrite(t, wf, store)

	entries := []tupleValue{{X: 1, Y: 2.5, Z: 3}, {X: -4, Y: 0, Z: 9}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got tupleValue
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %+v want %+v", i, got, want)
		}
	}
}

func TestTupleMemberName(t *testing.T) {
	if got := kinds.TupleMemberName(0); got != "_0" {
		t.Errorf("TupleMemberName(0) = %q, want _0", got)
	}
	if got := kinds.TupleMemberName(12); got != "_12" {
		t.Errorf("TupleMemberName(12) = %q, want _12", got)
	}
}
