package kinds_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func TestEnum_RoundTrip(t *testing.T) {
	store := newStore()
	child := mustField(t, "__underlying__", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "color", "MyEnum", field.StructureRecord, 0, kinds.NewEnum(4, 4))
	wf.Attach(child)
	connectWrite(t, wf, store)

	vals := []int32{0, 1, 2}
	for _, v := range vals {
		v := v
		if _, err := wf.Append(unsafe.Pointer(&v)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range vals {
		var got int32
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %d want %d", i, got, want)
		}
	}
}

func TestArray_FixedLength_RoundTrip(t *testing.T) {
	store := newStore()
	child := mustField(t, "elem", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "xyz", "i32[3]", field.StructureRecord, 3, kinds.NewArray(3, 4, 4, true))
	wf.Attach(child)
	connectWrite(t, wf, store)

	type vec3 [3]int32
	entries := []vec3{{1, 2, 3}, {4, 5, 6}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e[0])); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got vec3
		if err := rf.Read(uint64(i), unsafe.Pointer(&got[0])); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %v want %v", i, got, want)
		}
	}
}

type recordValue struct {
	A int32
	B float64
}

func TestRecord_ByReflection_RoundTrip(t *testing.T) {
	store := newStore()
	var probe recordValue
	aOff := unsafe.Offsetof(probe.A)
	bOff := unsafe.Offsetof(probe.B)

	aField := mustField(t, "A", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	bField := mustField(t, "B", "f64", field.StructureLeaf, 0, kinds.NewFloat64())

	impl := kinds.NewRecord("recordValue", unsafe.Sizeof(probe), unsafe.Alignof(probe), []uintptr{aOff, bOff}, true, nil)
	wf := mustField(t, "rec", "recordValue", field.StructureRecord, 0, impl)
	wf.Attach(aField)
	wf.Attach(bField)
	connectWrite(t, wf, store)

	entries := []recordValue{{A: 1, B: 1.5}, {A: -2, B: 3.25}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got recordValue
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %+v want %+v", i, got, want)
		}
	}
}

type pairValue struct {
	First  int32
	Second int32
}

func TestPair_RoundTrip(t *testing.T) {
	store := newStore()
	var probe pairValue
	firstOff := unsafe.Offsetof(probe.First)
	secondOff := unsafe.Offsetof(probe.Second)

	first := mustField(t, "first", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	second := mustField(t, "second", "i32", field.StructureLeaf, 0, kinds.NewInt32())

	impl := kinds.NewPair(unsafe.Sizeof(probe), unsafe.Alignof(probe), []uintptr{firstOff, secondOff}, true)
	wf := mustField(t, "p", "std::pair<i32,i32>", field.StructureRecord, 0, impl)
	wf.Attach(first)
	wf.Attach(second)
	connectWrite(t, wf, store)

	entries := []pairValue{{1, 2}, {3, 4}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got pairValue
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %+v want %+v", i, got, want)
		}
	}
}

func TestNewTuple_RejectsEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing an empty tuple")
		}
	}()
	kinds.NewTuple(0, 1, nil, true)
}

func TestNewPair_RejectsWrongArity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing a pair with arity != 2")
		}
	}()
	kinds.NewPair(0, 1, []uintptr{0}, true)
}
