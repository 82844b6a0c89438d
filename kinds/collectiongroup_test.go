package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

type legacyGroupValue struct {
	A []int32
	B []int32
}

func TestCollectionGroup_RoundTrip(t *testing.T) {
	store := newStore()
	var probe legacyGroupValue
	offsets := []uintptr{unsafe.Offsetof(probe.A), unsafe.Offsetof(probe.B)}
	sizeOf := func(firstChildAddr unsafe.Pointer) int {
		return len(*(*[]int32)(firstChildAddr))
	}
	impl := kinds.NewCollectionGroup(offsets, sizeOf)

	aVec := mustField(t, "A", "std::vector<i32>", field.StructureCollection, 0, kinds.NewVector(reflect.TypeOf(int32(0)), true, true))
	aVec.Attach(mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32()))
	bVec := mustField(t, "B", "std::vector<i32>", field.StructureCollection, 0, kinds.NewVector(reflect.TypeOf(int32(0)), true, true))
	bVec.Attach(mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32()))

	wf := mustField(t, "group", "legacyGroup", field.StructureCollection, 0, impl)
	wf.Attach(aVec)
	wf.Attach(bVec)
	connectWrite(t, wf, store)

	entries := []legacyGroupValue{
		{A: []int32{1, 2}, B: []int32{9}},
		{A: nil, B: nil},
		{A: []int32{3}, B: []int32{4, 5, 6}},
	}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got legacyGroupValue
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if !reflect.DeepEqual(got.A, want.A) && len(got.A)+len(want.A) > 0 {
			t.Errorf("entry %d A: got %v want %v", i, got.A, want.A)
		}
		if !reflect.DeepEqual(got.B, want.B) && len(got.B)+len(want.B) > 0 {
			t.Errorf("entry %d B: got %v want %v", i, got.B, want.B)
		}
	}
}
