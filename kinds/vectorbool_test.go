package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func TestVectorBool_RoundTrip(t *testing.T) {
	store := newStore()
	wf := mustField(t, "flags", "std::vector<bool>", field.StructureCollection, 0, kinds.NewVectorBool())
	connectWrite(t, wf, store)

	entries := [][]bool{{true, false, true}, {}, {false, false, true, true}}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got []bool
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if len(got) != len(want) {
			t.Errorf("entry %d: got %v want %v", i, got, want)
			continue
		}
		if !reflect.DeepEqual(got, want) && len(want) > 0 {
			t.Errorf("entry %d: got %v want %v", i, got, want)
		}
	}
}
