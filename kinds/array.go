package kinds

import (
	"unsafe"

	"github.com/rfield/rfield/field"
)

// Array is the fixed-length array kind: one child repeated N times, laid
// out contiguously (spec §4.5 "Array (fixed length)"). The element index
// used by the child is parent index × N + i, which Field.EntryToColumnElementIndex
// already computes via the ancestor-walk (the array field's nRepetitions is
// N); Array itself owns no columns.
type Array struct {
	n        int
	itemSize uintptr
	itemAlig uintptr
	trivial  bool
}

// NewArray constructs the array kind. n is the fixed repeat count,
// itemSize/itemAlign describe one element, trivial reports whether the
// element type needs no explicit construction/destruction.
func NewArray(n int, itemSize, itemAlign uintptr, trivial bool) *Array {
	return &Array{n: n, itemSize: itemSize, itemAlig: itemAlign, trivial: trivial}
}

func (a *Array) KindName() string { return "array" }

func (a *Array) ValueSize() uintptr      { return a.itemSize * uintptr(a.n) }
func (a *Array) ValueAlignment() uintptr { return a.itemAlig }

func (a *Array) DefaultTraits() field.Traits {
	if a.trivial {
		return field.TraitTrivialType
	}
	return 0
}

// ColumnRepresentations is empty: Array owns no column, its repeated child
// does (indexed by the ancestor-multiplied element index).
func (a *Array) ColumnRepresentations() field.ColumnRepresentations {
	return field.ColumnRepresentations{}
}

func (a *Array) elemAddr(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, uintptr(i)*a.itemSize)
}

// Append appends each of the n contiguous elements through the child field
// in turn.
func (a *Array) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	child := f.Children()[0]
	total := 0
	for i := 0; i < a.n; i++ {
		n, err := child.Append(a.elemAddr(from, i))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Read reconstructs all n elements. elem is the array field's own resolved
// column-element index (ancestor multipliers above the array already
// applied); the child's position for slot i is elem*N+i (spec §4.5 "element
// index in children is parent index × N + i").
func (a *Array) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	child := f.Children()[0]
	base := elem * uint64(a.n)
	for i := 0; i < a.n; i++ {
		if err := child.ReadAtElement(base+uint64(i), a.elemAddr(to, i)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) GenerateValue(f *field.Field, where unsafe.Pointer) {
	child := f.Children()[0]
	for i := 0; i < a.n; i++ {
		child.GenerateValue(a.elemAddr(where, i))
	}
}

func (a *Array) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	if a.trivial {
		return
	}
	child := f.Children()[0]
	for i := 0; i < a.n; i++ {
		child.DestroyValue(a.elemAddr(ptr, i), dtorOnly)
	}
}

func (a *Array) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	child := f.Children()[0]
	out := make([]field.ValueBinding, a.n)
	for i := 0; i < a.n; i++ {
		out[i] = field.ValueBinding{Field: child, Addr: a.elemAddr(value, i)}
	}
	return out, nil
}

func (a *Array) Accept(f *field.Field, v field.Visitor) { v.VisitArray(f) }

func (a *Array) Clone() field.Kind {
	return &Array{n: a.n, itemSize: a.itemSize, itemAlig: a.itemAlig, trivial: a.trivial}
}

func (a *Array) CommitCluster() {}
