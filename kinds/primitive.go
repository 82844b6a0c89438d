// Package kinds implements the concrete field-kind arms (spec §4.5):
// primitives, string, record, array, vector, small-vector, bitset, enum,
// variant, nullable, unique-ptr, pair/tuple, cardinality, proxy-collection,
// and collection-group. Every kind implements field.Kind and is constructed
// by factory/ once a canonical type name has been resolved.
//
// Grounded on dsl/primitives.go's per-type representation dispatch: one
// small, largely stateless implementation per wire type, registered by
// name rather than by a shared reflection-driven codec.
package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// Primitive is the field.Kind for every fixed-width scalar: bool, char,
// i8/u8/i16/u16/i32/u32/i64/u64, f32/f64, and cardinality (spec §4.5
// "Primitives"). T is the Go value type the column driver marshals.
type Primitive[T any] struct {
	name string
	reps field.ColumnRepresentations
}

// NewPrimitive constructs a primitive kind named name (the canonical type
// spelling, e.g. "i32") with the given column-representation table.
func NewPrimitive[T any](name string, reps field.ColumnRepresentations) *Primitive[T] {
	return &Primitive[T]{name: name, reps: reps}
}

func (p *Primitive[T]) KindName() string { return p.name }

func (p *Primitive[T]) ValueSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (p *Primitive[T]) ValueAlignment() uintptr {
	var zero T
	return unsafe.Alignof(zero)
}

func (p *Primitive[T]) DefaultTraits() field.Traits {
	return field.TraitTrivialType
}

func (p *Primitive[T]) ColumnRepresentations() field.ColumnRepresentations { return p.reps }

func (p *Primitive[T]) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	w, ok := f.PrincipalWriter()
	if !ok {
		return 0, fmt.Errorf("rfield: %s: Append: no column bound", f.QualifiedName())
	}
	v := *(*T)(from)
	return w.Append(v)
}

func (p *Primitive[T]) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	r, ok := f.PrincipalReader()
	if !ok {
		return fmt.Errorf("rfield: %s: Read: no column bound", f.QualifiedName())
	}
	var v T
	if err := r.Map(elem, &v); err != nil {
		return err
	}
	*(*T)(to) = v
	return nil
}

func (p *Primitive[T]) GenerateValue(f *field.Field, where unsafe.Pointer) {
	var zero T
	*(*T)(where) = zero
}

func (p *Primitive[T]) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {}

func (p *Primitive[T]) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return nil, nil
}

func (p *Primitive[T]) Accept(f *field.Field, v field.Visitor) {
	if p.name == "cardinality" {
		v.VisitCardinality(f)
		return
	}
	v.VisitPrimitive(f)
}

func (p *Primitive[T]) Clone() field.Kind {
	return &Primitive[T]{name: p.name, reps: p.reps}
}

func (p *Primitive[T]) CommitCluster() {}

// representation helpers shared by the concrete constructors below.

func reps1(def field.ColumnElementType, deserAlso ...field.ColumnElementType) field.ColumnRepresentations {
	ser := []field.Representation{{def}}
	deser := []field.Representation{{def}}
	for _, e := range deserAlso {
		deser = append(deser, field.Representation{e})
	}
	return field.ColumnRepresentations{Serialization: ser, Deserialization: deser}
}

func repsSplit(def, nonSplit field.ColumnElementType, crossAccept ...field.ColumnElementType) field.ColumnRepresentations {
	ser := []field.Representation{{def}, {nonSplit}}
	deser := []field.Representation{{def}, {nonSplit}}
	for _, e := range crossAccept {
		deser = append(deser, field.Representation{e})
	}
	return field.ColumnRepresentations{Serialization: ser, Deserialization: deser}
}

// NewBool returns the bool primitive kind: a single-bit column, no split
// alternative (spec §4.5 "bool uses a single-bit column").
func NewBool() *Primitive[bool] {
	return NewPrimitive[bool]("bool", reps1(field.ElemBit))
}

// NewChar returns the char primitive kind: a raw byte column (spec §4.5
// "char uses a byte column").
func NewChar() *Primitive[byte] {
	return NewPrimitive[byte]("char", reps1(field.ElemByte))
}

// NewInt8/NewUInt8 cross-accept each other on read but not on write (spec
// §4.5 "signed and unsigned variants cross-accept each other on read but
// not on write").
func NewInt8() *Primitive[int8] {
	return NewPrimitive[int8]("i8", reps1(field.ElemInt8, field.ElemUInt8))
}

func NewUInt8() *Primitive[uint8] {
	return NewPrimitive[uint8]("u8", reps1(field.ElemUInt8, field.ElemInt8))
}

func NewInt16() *Primitive[int16] {
	return NewPrimitive[int16]("i16", repsSplit(field.ElemSplitInt16, field.ElemInt16, field.ElemSplitUInt16, field.ElemUInt16))
}

func NewUInt16() *Primitive[uint16] {
	return NewPrimitive[uint16]("u16", repsSplit(field.ElemSplitUInt16, field.ElemUInt16, field.ElemSplitInt16, field.ElemInt16))
}

func NewInt32() *Primitive[int32] {
	return NewPrimitive[int32]("i32", repsSplit(field.ElemSplitInt32, field.ElemInt32, field.ElemSplitUInt32, field.ElemUInt32))
}

func NewUInt32() *Primitive[uint32] {
	return NewPrimitive[uint32]("u32", repsSplit(field.ElemSplitUInt32, field.ElemUInt32, field.ElemSplitInt32, field.ElemInt32))
}

func NewInt64() *Primitive[int64] {
	return NewPrimitive[int64]("i64", repsSplit(field.ElemSplitInt64, field.ElemInt64, field.ElemSplitUInt64, field.ElemUInt64))
}

func NewUInt64() *Primitive[uint64] {
	return NewPrimitive[uint64]("u64", repsSplit(field.ElemSplitUInt64, field.ElemUInt64, field.ElemSplitInt64, field.ElemInt64))
}

// NewFloat32/NewFloat64 have a split alternative but no cross-accept (no
// unsigned counterpart; spec §4.5). NewFloat64 also lists the 32-bit real
// rows, which AutoAdjustColumnTypes selects for a field carrying the
// Double32_t alias.
func NewFloat32() *Primitive[float32] {
	return NewPrimitive[float32]("f32", repsSplit(field.ElemSplitReal32, field.ElemReal32))
}

func NewFloat64() *Primitive[float64] {
	reps := repsSplit(field.ElemSplitReal64, field.ElemReal64)
	for _, e := range []field.ColumnElementType{field.ElemSplitReal32, field.ElemReal32} {
		reps.Serialization = append(reps.Serialization, field.Representation{e})
		reps.Deserialization = append(reps.Deserialization, field.Representation{e})
	}
	return NewPrimitive[float64]("f64", reps)
}

// NewCardinality returns the read-only collection-size leaf (spec §4.5
// "Cardinality"): 64-bit unsigned by default, 32-bit as a small-cluster
// alternative.
func NewCardinality() *Primitive[uint64] {
	reps := field.ColumnRepresentations{
		Serialization:   []field.Representation{{field.ElemUInt64}, {field.ElemUInt32}},
		Deserialization: []field.Representation{{field.ElemUInt64}, {field.ElemUInt32}},
	}
	return NewPrimitive[uint64]("cardinality", reps)
}
