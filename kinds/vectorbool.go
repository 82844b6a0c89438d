package kinds

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// VectorBool is the field.Kind for std::vector<bool> (spec §4.5 "Vector of
// bool"): special-cased, bit-by-bit append/read against the packed
// representation instead of going through a generic bool child field. The
// value address is interpreted as a *[]bool; bool's zero value needs no
// construction or destruction, so unlike Vector there is no ctor/dtor
// bookkeeping on resize.
type VectorBool struct {
	cumulative uint64
}

// NewVectorBool constructs the vector-of-bool kind.
func NewVectorBool() *VectorBool { return &VectorBool{} }

func (vb *VectorBool) KindName() string { return "vector<bool>" }

func (vb *VectorBool) ValueSize() uintptr      { var s []bool; return unsafe.Sizeof(s) }
func (vb *VectorBool) ValueAlignment() uintptr { var s []bool; return unsafe.Alignof(s) }

func (vb *VectorBool) DefaultTraits() field.Traits {
	return field.TraitTriviallyConstructible | field.TraitTriviallyDestructible
}

// ColumnRepresentations is a single-column table of (index, Bit) pairs: the
// index column tracks cumulative bit count the same way Vector's does, and
// the bit column is bound directly on this field rather than on a child.
func (vb *VectorBool) ColumnRepresentations() field.ColumnRepresentations {
	rows := []field.Representation{
		{field.ElemSplitIndex64, field.ElemBit},
		{field.ElemIndex64, field.ElemBit},
		{field.ElemSplitIndex32, field.ElemBit},
		{field.ElemIndex32, field.ElemBit},
	}
	return field.ColumnRepresentations{Serialization: rows, Deserialization: rows}
}

func (vb *VectorBool) slice(addr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(reflect.TypeOf([]bool(nil)), addr).Elem()
}

func (vb *VectorBool) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 2 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 2 bound columns, got %d", f.QualifiedName(), len(writers))
	}
	sv := vb.slice(from)
	n := sv.Len()
	for i := 0; i < n; i++ {
		var bit byte
		if sv.Index(i).Bool() {
			bit = 1
		}
		if _, err := writers[1].Append(bit); err != nil {
			return 0, err
		}
	}
	vb.cumulative += uint64(n)
	idxBytes, err := writers[0].Append(vb.cumulative)
	if err != nil {
		return 0, err
	}
	return idxBytes + n, nil
}

func (vb *VectorBool) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 2 {
		return fmt.Errorf("rfield: %s: Read: expected 2 bound columns, got %d", f.QualifiedName(), len(readers))
	}
	start, n64, err := readers[0].GetCollectionInfo(elem)
	if err != nil {
		return err
	}
	n := int(n64)
	fresh := make([]bool, n)
	for i := 0; i < n; i++ {
		var bit byte
		if err := readers[1].Map(start+uint64(i), &bit); err != nil {
			return err
		}
		fresh[i] = bit != 0
	}
	vb.slice(to).Set(reflect.ValueOf(fresh))
	return nil
}

func (vb *VectorBool) GenerateValue(f *field.Field, where unsafe.Pointer) {
	vb.slice(where).Set(reflect.Zero(reflect.TypeOf([]bool(nil))))
}

func (vb *VectorBool) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	vb.slice(ptr).Set(reflect.Zero(reflect.TypeOf([]bool(nil))))
}

func (vb *VectorBool) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return nil, nil
}

func (vb *VectorBool) Accept(f *field.Field, v field.Visitor) { v.VisitVectorBool(f) }

func (vb *VectorBool) Clone() field.Kind { return &VectorBool{} }

// CommitCluster resets the cumulative bit-count index (spec §4.5).
func (vb *VectorBool) CommitCluster() { vb.cumulative = 0 }
