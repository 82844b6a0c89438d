package kinds

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// vectorReps is the one-index-column representation shared by Vector
// (spec §4.5 "Vector. One child, one index column").
func vectorReps() field.ColumnRepresentations {
	rows := []field.Representation{
		{field.ElemSplitIndex64},
		{field.ElemIndex64},
		{field.ElemSplitIndex32},
		{field.ElemIndex32},
	}
	return field.ColumnRepresentations{Serialization: rows, Deserialization: rows}
}

// Vector is the field.Kind for std::vector<T> (spec §4.5 "Vector"). The
// value address is interpreted as a *[]T (elemType == T); Go's slice header
// already matches the pointer+size+capacity shape the original describes,
// so growth/shrink is expressed directly in terms of reflect.Value slice
// operations rather than manual malloc/free bookkeeping.
type Vector struct {
	elemType    reflect.Type
	trivialCtor bool
	trivialDtor bool
	cumulative  uint64
}

// NewVector constructs the vector kind over elements of elemType.
// trivialCtor/trivialDtor come from the element field's traits.
func NewVector(elemType reflect.Type, trivialCtor, trivialDtor bool) *Vector {
	return &Vector{elemType: elemType, trivialCtor: trivialCtor, trivialDtor: trivialDtor}
}

func (vec *Vector) KindName() string { return "vector" }

func (vec *Vector) sliceType() reflect.Type { return reflect.SliceOf(vec.elemType) }

func (vec *Vector) ValueSize() uintptr      { return vec.sliceType().Size() }
func (vec *Vector) ValueAlignment() uintptr { return uintptr(vec.sliceType().Align()) }

func (vec *Vector) DefaultTraits() field.Traits {
	var t field.Traits
	if vec.trivialCtor {
		t |= field.TraitTriviallyConstructible
	}
	if vec.trivialDtor {
		t |= field.TraitTriviallyDestructible
	}
	return t
}

func (vec *Vector) ColumnRepresentations() field.ColumnRepresentations { return vectorReps() }

func (vec *Vector) slice(addr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(vec.sliceType(), addr).Elem()
}

func (vec *Vector) elemAddr(sv reflect.Value, i int) unsafe.Pointer {
	return unsafe.Pointer(sv.Index(i).UnsafeAddr())
}

// Append iterates the contiguous buffer and appends the running cumulative
// element count as the new index value (spec §4.5 "Append iterates the
// contiguous buffer ... size/itemSize elements").
func (vec *Vector) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	child := f.Children()[0]
	sv := vec.slice(from)
	n := sv.Len()
	total := 0
	for i := 0; i < n; i++ {
		bn, err := child.Append(vec.elemAddr(sv, i))
		if err != nil {
			return total, err
		}
		total += bn
	}
	vec.cumulative += uint64(n)
	idxBytes, err := writers[0].Append(vec.cumulative)
	if err != nil {
		return total, err
	}
	return total + idxBytes, nil
}

// Read computes the new size n from the index column, reconciles the
// current backing storage against it (spec §4.5 "Vector" resize rules,
// §8 scenario 3), then reads child-by-child.
func (vec *Vector) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 1 {
		return fmt.Errorf("rfield: %s: Read: expected 1 bound column, got %d", f.QualifiedName(), len(readers))
	}
	start, n64, err := readers[0].GetCollectionInfo(elem)
	if err != nil {
		return err
	}
	n := int(n64)
	child := f.Children()[0]

	sv := vec.slice(to)
	oldN, oldCap := sv.Len(), sv.Cap()

	switch {
	case n <= oldCap:
		if !vec.trivialDtor && n < oldN {
			for i := n; i < oldN; i++ {
				child.DestroyValue(vec.elemAddr(sv, i), true)
			}
		}
		resliced := sv.Slice3(0, n, oldCap)
		sv.Set(resliced)
		if !vec.trivialCtor && n > oldN {
			for i := oldN; i < n; i++ {
				child.GenerateValue(vec.elemAddr(sv, i))
			}
		}
	default:
		fresh := reflect.MakeSlice(vec.sliceType(), n, n)
		if vec.trivialDtor {
			// Trivially-destructible elements' bytes survive the realloc
			// untouched (spec §8 scenario 3): copy the surviving items
			// forward and only construct the new tail.
			reflect.Copy(fresh, sv)
			sv.Set(fresh)
			if !vec.trivialCtor {
				for i := oldN; i < n; i++ {
					child.GenerateValue(vec.elemAddr(sv, i))
				}
			}
		} else {
			for i := 0; i < oldN; i++ {
				child.DestroyValue(vec.elemAddr(sv, i), true)
			}
			sv.Set(fresh)
			if !vec.trivialCtor {
				for i := 0; i < n; i++ {
					child.GenerateValue(vec.elemAddr(sv, i))
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		if err := child.ReadAtElement(start+uint64(i), vec.elemAddr(sv, i)); err != nil {
			return err
		}
	}
	return nil
}

func (vec *Vector) GenerateValue(f *field.Field, where unsafe.Pointer) {
	vec.slice(where).Set(reflect.Zero(vec.sliceType()))
}

func (vec *Vector) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	sv := vec.slice(ptr)
	if !vec.trivialDtor {
		child := f.Children()[0]
		for i := 0; i < sv.Len(); i++ {
			child.DestroyValue(vec.elemAddr(sv, i), true)
		}
	}
	sv.Set(reflect.Zero(vec.sliceType()))
}

func (vec *Vector) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	child := f.Children()[0]
	sv := vec.slice(value)
	out := make([]field.ValueBinding, sv.Len())
	for i := range out {
		out[i] = field.ValueBinding{Field: child, Addr: vec.elemAddr(sv, i)}
	}
	return out, nil
}

func (vec *Vector) Accept(f *field.Field, v field.Visitor) { v.VisitVector(f) }

func (vec *Vector) Clone() field.Kind {
	return &Vector{elemType: vec.elemType, trivialCtor: vec.trivialCtor, trivialDtor: vec.trivialDtor}
}

// CommitCluster resets the cumulative element-count index column (spec
// §4.5), the same reset RVectorField/RRVecField perform at every cluster
// boundary.
func (vec *Vector) CommitCluster() { vec.cumulative = 0 }
