package kinds_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

// TestVector_CommitCluster_ResetsCumulativeIndex writes a first cluster's
// worth of entries, commits the cluster, then writes a second cluster's
// worth. Without CommitCluster resetting Vector's cumulative index counter
// and the store marking where the new cluster starts, the second cluster's
// small per-entry counts would be read back as deltas against the first
// cluster's much larger running total, going negative/overflowing.
func TestVector_CommitCluster_ResetsCumulativeIndex(t *testing.T) {
	store := newStore()
	child := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	wf := mustField(t, "v", "std::vector<i32>", field.StructureCollection, 0, kinds.NewVector(reflect.TypeOf(int32(0)), true, true))
	wf.Attach(child)
	connectWrite(t, wf, store)

	firstCluster := [][]int32{{1, 2}, {3, 4, 5}}
	for _, e := range firstCluster {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append (first cluster): %v", err)
		}
	}

	store.CommitCluster(wf)

	secondCluster := [][]int32{{9}, {10, 11}}
	for _, e := range secondCluster {
		e := e
		if _, err := wf.Append(unsafe.Pointer(&e)); err != nil {
			t.Fatalf("Append (second cluster): %v", err)
		}
	}

	rf := connectRead(t, wf, store)
	all := append(append([][]int32{}, firstCluster...), secondCluster...)
	var got []int32
	for i, want := range all {
		if err := rf.Read(uint64(i), unsafe.Pointer(&got)); err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("entry %d: got %v want %v", i, got, want)
		}
	}
}
