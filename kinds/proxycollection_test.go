package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
	"github.com/rfield/rfield/kinds"
)

func TestProxyCollection_RoundTrip(t *testing.T) {
	store := newStore()
	proxy := &introspect.CollectionProxyInfo{
		ElementTypeName: "i32",
		ElementSize:     4,
		ElementAlign:    4,
		Contiguous:      true,
	}
	impl := kinds.NewProxyCollection(reflect.TypeOf(int32(0)), proxy, true, true)
	if impl.Proxy() != proxy {
		t.Fatalf("Proxy() did not return the constructor's metadata")
	}

	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "deque", "std::deque<i32>", field.StructureCollection, 0, impl)
	wf.Attach(child)
	connectWrite(t, wf, store)

	entries := [][]int32{{1, 2}, {}, {5, 6, 7}}
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
		if len(got) != len(want) {
			t.Errorf("entry %d: got %v want %v", i, got, want)
			continue
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("entry %d[%d]: got %v want %v", i, j, got[j], want[j])
			}
		}
	}
}
