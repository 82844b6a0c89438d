package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func TestUniquePtr_RoundTrip(t *testing.T) {
	store := newStore()
	elemType := reflect.TypeOf(int32(0)) // size 4 -> sparse default encoding
	impl := kinds.NewUniquePtr(elemType)
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "p", "std::unique_ptr<i32>", field.StructureRecord, 0, impl)
	wf.Attach(child)
	connectWrite(t, wf, store)

	v0, v1 := int32(10), int32(20)
	ptrs := [3]unsafe.Pointer{unsafe.Pointer(&v0), nil, unsafe.Pointer(&v1)}

	for _, p := range ptrs {
		p := p
		if _, err := wf.Append(unsafe.Pointer(&p)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	var dst unsafe.Pointer
	// entry 0: absent -> present, allocates.
	if err := rf.Read(0, unsafe.Pointer(&dst)); err != nil {
		t.Fatalf("Read(0): %v", err)
	}
	if dst == nil || *(*int32)(dst) != 10 {
		t.Fatalf("entry 0: got %v, want non-nil pointing at 10", dst)
	}
	// entry 1: present -> absent, frees (nils out).
	if err := rf.Read(1, unsafe.Pointer(&dst)); err != nil {
		t.Fatalf("Read(1): %v", err)
	}
	if dst != nil {
		t.Fatalf("entry 1: got %v, want nil", dst)
	}
	// entry 2: absent -> present again, re-allocates.
	if err := rf.Read(2, unsafe.Pointer(&dst)); err != nil {
		t.Fatalf("Read(2): %v", err)
	}
	if dst == nil || *(*int32)(dst) != 20 {
		t.Fatalf("entry 2: got %v, want non-nil pointing at 20", dst)
	}
}
