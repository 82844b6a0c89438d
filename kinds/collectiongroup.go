package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// CollectionGroup is the field.Kind for the legacy hoisted "collection
// writer" (spec §4.5 "Collection grouping (legacy)"): its children are
// full sub-fields already addressable at fixed byte offsets (typically
// Vector fields of their own), and the group itself contributes only the
// shared index/cardinality column all children are implicitly read behind.
// SizeOf extracts the collection's element count from the first child's
// address at Append time — the factory supplies it once it knows that
// child's concrete Go slice type, since CollectionGroup itself only sees
// offsets and has no reflect.Type of its own to introspect with.
type CollectionGroup struct {
	offsets    []uintptr
	sizeOf     func(firstChildAddr unsafe.Pointer) int
	cumulative uint64
}

// NewCollectionGroup constructs the collection-group kind. offsets must be
// parallel, in order, to the children the caller subsequently Attach()es.
func NewCollectionGroup(offsets []uintptr, sizeOf func(firstChildAddr unsafe.Pointer) int) *CollectionGroup {
	os := make([]uintptr, len(offsets))
	copy(os, offsets)
	return &CollectionGroup{offsets: os, sizeOf: sizeOf}
}

// SetLayout (re)configures offsets/sizeOf after construction. The factory
// builds a bare "ROOT::CollectionGroup" field with an empty layout, since
// its children are attached by the caller after Create returns rather than
// discovered from a template argument; the caller supplies the real layout
// once it knows the concrete Go type backing each attached child.
func (g *CollectionGroup) SetLayout(offsets []uintptr, sizeOf func(firstChildAddr unsafe.Pointer) int) {
	os := make([]uintptr, len(offsets))
	copy(os, offsets)
	g.offsets = os
	g.sizeOf = sizeOf
}

func (g *CollectionGroup) KindName() string { return "collectiongroup:legacy" }

func (g *CollectionGroup) ValueSize() uintptr      { return 0 }
func (g *CollectionGroup) ValueAlignment() uintptr { return 1 }

func (g *CollectionGroup) DefaultTraits() field.Traits { return 0 }

// ColumnRepresentations reuses Vector's index-column table: the group's own
// column tracks cardinality the same way a vector's does.
func (g *CollectionGroup) ColumnRepresentations() field.ColumnRepresentations { return vectorReps() }

func (g *CollectionGroup) memberAddr(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, g.offsets[i])
}

func (g *CollectionGroup) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	total := 0
	for i, child := range f.Children() {
		n, err := child.Append(g.memberAddr(from, i))
		if err != nil {
			return total, fmt.Errorf("rfield: %s: %w", f.QualifiedName(), err)
		}
		total += n
	}
	if len(f.Children()) > 0 {
		g.cumulative += uint64(g.sizeOf(g.memberAddr(from, 0)))
	}
	idxBytes, err := writers[0].Append(g.cumulative)
	if err != nil {
		return total, err
	}
	return total + idxBytes, nil
}

func (g *CollectionGroup) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	for i, child := range f.Children() {
		if err := child.ReadAtElement(elem, g.memberAddr(to, i)); err != nil {
			return fmt.Errorf("rfield: %s: %w", f.QualifiedName(), err)
		}
	}
	return nil
}

func (g *CollectionGroup) GenerateValue(f *field.Field, where unsafe.Pointer) {
	for i, child := range f.Children() {
		child.GenerateValue(g.memberAddr(where, i))
	}
}

func (g *CollectionGroup) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	for i, child := range f.Children() {
		child.DestroyValue(g.memberAddr(ptr, i), dtorOnly)
	}
}

func (g *CollectionGroup) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	children := f.Children()
	out := make([]field.ValueBinding, len(children))
	for i, child := range children {
		out[i] = field.ValueBinding{Field: child, Addr: g.memberAddr(value, i)}
	}
	return out, nil
}

func (g *CollectionGroup) Accept(f *field.Field, v field.Visitor) { v.VisitCollectionGroup(f) }

func (g *CollectionGroup) Clone() field.Kind {
	return NewCollectionGroup(g.offsets, g.sizeOf)
}

// CommitCluster resets the shared cardinality index column (spec §4.5),
// mirroring RCollectionClassField/RCollectionField's per-cluster reset.
func (g *CollectionGroup) CommitCluster() { g.cumulative = 0 }
