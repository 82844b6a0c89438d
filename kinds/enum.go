package kinds

import (
	"unsafe"

	"github.com/rfield/rfield/field"
)

// Enum wraps a single integer child whose width matches the underlying
// integral type (spec §4.5 "Enum"). The enum field owns no columns of its
// own — its sole child does — so ColumnRepresentations returns an empty
// table and every operation forwards directly to the child at offset 0.
type Enum struct {
	size  uintptr
	align uintptr
}

// NewEnum constructs the enum kind wrapper. size/align are the underlying
// integer child's (the factory builds that child first and attaches it via
// Field.Attach before the field tree is used).
func NewEnum(size, align uintptr) *Enum {
	return &Enum{size: size, align: align}
}

func (e *Enum) KindName() string { return "enum" }

func (e *Enum) ValueSize() uintptr      { return e.size }
func (e *Enum) ValueAlignment() uintptr { return e.align }

func (e *Enum) DefaultTraits() field.Traits { return field.TraitTrivialType }

// ColumnRepresentations is empty: the enum itself binds no columns, its
// underlying-integer child does.
func (e *Enum) ColumnRepresentations() field.ColumnRepresentations {
	return field.ColumnRepresentations{}
}

func (e *Enum) child(f *field.Field) *field.Field { return f.Children()[0] }

func (e *Enum) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	return e.child(f).Append(from)
}

// Read forwards the already-resolved element index straight to the child:
// the enum field itself never multiplies (its nRepetitions is 0), so the
// index Field.Read already computed for this field is exactly the index the
// child would compute for itself too.
func (e *Enum) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	return e.child(f).ReadAtElement(elem, to)
}

func (e *Enum) GenerateValue(f *field.Field, where unsafe.Pointer) {
	e.child(f).GenerateValue(where)
}

func (e *Enum) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	e.child(f).DestroyValue(ptr, dtorOnly)
}

func (e *Enum) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return []field.ValueBinding{{Field: e.child(f), Addr: value}}, nil
}

func (e *Enum) Accept(f *field.Field, v field.Visitor) { v.VisitEnum(f) }

func (e *Enum) Clone() field.Kind { return &Enum{size: e.size, align: e.align} }

func (e *Enum) CommitCluster() {}
