package kinds

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// UniquePtr is the field.Kind for a unique-ownership pointer (spec §4.5
// "Unique-ownership pointer. Wraps Nullable"): it shares Nullable's dense/
// sparse column representation, but the value address is interpreted as a
// raw *T (nil = absent) that UniquePtr itself allocates and frees, rather
// than Nullable's always-constructed inline item.
type UniquePtr struct {
	elemType   reflect.Type
	reps       field.ColumnRepresentations
	cumulative uint64
}

// NewUniquePtr constructs the unique-pointer kind over elements of elemType.
func NewUniquePtr(elemType reflect.Type) *UniquePtr {
	return &UniquePtr{elemType: elemType, reps: nullableReps(elemType.Size())}
}

func (u *UniquePtr) KindName() string { return "uniqueptr" }

func (u *UniquePtr) ValueSize() uintptr      { var p unsafe.Pointer; return unsafe.Sizeof(p) }
func (u *UniquePtr) ValueAlignment() uintptr { var p unsafe.Pointer; return unsafe.Alignof(p) }

func (u *UniquePtr) DefaultTraits() field.Traits { return 0 }

func (u *UniquePtr) ColumnRepresentations() field.ColumnRepresentations { return u.reps }

func (u *UniquePtr) ptrAddr(base unsafe.Pointer) *unsafe.Pointer { return (*unsafe.Pointer)(base) }

// Append: if non-null, AppendValue(raw); else AppendNull (spec §4.5
// "Unique-ownership pointer").
func (u *UniquePtr) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	ptr := *u.ptrAddr(from)
	present := ptr != nil
	child := f.Children()[0]

	if writers[0].ElementType() == field.ElemBit {
		var bit byte
		if present {
			bit = 1
		}
		idxBytes, err := writers[0].Append(bit)
		if err != nil {
			return 0, err
		}
		if present {
			bn, err := child.Append(ptr)
			return idxBytes + bn, err
		}
		tmp := reflect.New(u.elemType)
		addr := unsafe.Pointer(tmp.Pointer())
		child.GenerateValue(addr)
		bn, err := child.Append(addr)
		return idxBytes + bn, err
	}

	return u.appendSparse(writers, child, present, ptr)
}

func (u *UniquePtr) appendSparse(writers []field.ColumnWriter, child *field.Field, present bool, ptr unsafe.Pointer) (int, error) {
	n := 0
	if present {
		bn, err := child.Append(ptr)
		if err != nil {
			return 0, err
		}
		n = bn
	}
	idxBytes, err := writers[0].Append(u.sparseCumulative(present))
	return n + idxBytes, err
}

// sparseCumulative advances and returns this instance's running index. The
// counter lives in the cumulative field, which Clone does not copy.
func (u *UniquePtr) sparseCumulative(present bool) uint64 {
	if present {
		u.cumulative++
	}
	return u.cumulative
}

func (u *UniquePtr) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 1 {
		return fmt.Errorf("rfield: %s: Read: expected 1 bound column, got %d", f.QualifiedName(), len(readers))
	}
	child := f.Children()[0]
	ptrP := u.ptrAddr(to)

	if readers[0].ElementType() == field.ElemBit {
		var bit byte
		if err := readers[0].Map(elem, &bit); err != nil {
			return err
		}
		return u.reconcile(child, ptrP, bit != 0, elem)
	}

	start, count, err := readers[0].GetCollectionInfo(elem)
	if err != nil {
		return err
	}
	return u.reconcile(child, ptrP, count > 0, start)
}

// reconcile frees if present->absent, allocates+constructs if absent-
// >present, and reads through in both present cases (spec §4.5 "Read:
// reconcile the current in-memory presence against on-disk presence").
func (u *UniquePtr) reconcile(child *field.Field, ptrP *unsafe.Pointer, present bool, itemPos uint64) error {
	hadValue := *ptrP != nil
	switch {
	case present && !hadValue:
		nv := reflect.New(u.elemType)
		addr := unsafe.Pointer(nv.Pointer())
		child.GenerateValue(addr)
		*ptrP = addr
	case !present && hadValue:
		child.DestroyValue(*ptrP, false)
		*ptrP = nil
		return nil
	case !present && !hadValue:
		return nil
	}
	return child.ReadAtElement(itemPos, *ptrP)
}

func (u *UniquePtr) GenerateValue(f *field.Field, where unsafe.Pointer) { *u.ptrAddr(where) = nil }

// DestroyValue releases the owned value, full teardown rather than
// placement-destructor only (spec §4.5 "Destroy releases the owned value").
func (u *UniquePtr) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	p := u.ptrAddr(ptr)
	if *p != nil {
		f.Children()[0].DestroyValue(*p, false)
		*p = nil
	}
}

func (u *UniquePtr) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	p := *u.ptrAddr(value)
	if p == nil {
		return nil, nil
	}
	return []field.ValueBinding{{Field: f.Children()[0], Addr: p}}, nil
}

func (u *UniquePtr) Accept(f *field.Field, v field.Visitor) { v.VisitUniquePtr(f) }

func (u *UniquePtr) Clone() field.Kind {
	return &UniquePtr{elemType: u.elemType, reps: u.reps}
}

// CommitCluster resets the cumulative index column's running count (spec
// §4.5).
func (u *UniquePtr) CommitCluster() { u.cumulative = 0 }
