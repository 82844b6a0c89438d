package kinds_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

func TestBitset_RoundTrip(t *testing.T) {
	store := newStore()
	const n = 10
	wf := mustField(t, "flags", "std::bitset<10>", field.StructureLeaf, 0, kinds.NewBitset(n))
	connectWrite(t, wf, store)

	type word [1]uint64 // wordCount = ceil(10/64) = 1
	entries := []word{
		{0b0000000101}, // bits 0 and 2 set
		{0},
		{0b1111111111}, // all 10 bits set
	}
	for _, e := range entries {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	for i, want := range entries {
		var got word
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("entry %d: got %#x want %#x", i, got, want)
		}
	}
}
