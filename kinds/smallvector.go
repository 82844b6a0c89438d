package kinds

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rfield/rfield/field"
)

type smallVectorHeader struct {
	begin    unsafe.Pointer
	size     int32
	capacity int32
}

const (
	smallVectorCacheLine     = 64
	smallVectorMaxInlineSize = 1024
)

// SmallVector is the field.Kind for the inline-buffered small-vector (spec
// §4.5 "Inline-buffered small-vector"): `begin` points either at the inline
// buffer (capacity == -1) or at a separately allocated buffer (capacity ==
// n). The inline element count is a cache-line-driven heuristic capped at
// 1024 inline bytes, computed once at construction from the element's size
// and alignment.
type SmallVector struct {
	elemType    reflect.Type
	itemSize    uintptr
	trivialCtor bool
	trivialDtor bool

	inlineOffset uintptr
	inlineCount  int
	valueSize    uintptr
	valueAlign   uintptr
	cumulative   uint64
}

// NewSmallVector constructs the small-vector kind over elements of elemType.
func NewSmallVector(elemType reflect.Type, trivialCtor, trivialDtor bool) *SmallVector {
	var probe smallVectorHeader
	headerSize := unsafe.Sizeof(probe)
	headerAlign := uintptr(unsafe.Alignof(probe))

	itemSize := elemType.Size()
	itemAlign := uintptr(elemType.Align())
	if itemAlign == 0 {
		itemAlign = 1
	}

	inlineOffset := roundUpPow2(headerSize, itemAlign)

	budget := uintptr(smallVectorCacheLine)
	if inlineOffset < budget {
		budget -= inlineOffset
	} else {
		budget = uintptr(smallVectorCacheLine)
	}
	inlineCount := 1
	if itemSize > 0 {
		n := int(budget / itemSize)
		if n < 1 {
			n = 1
		}
		if uintptr(n)*itemSize > smallVectorMaxInlineSize {
			n = int(smallVectorMaxInlineSize / itemSize)
			if n < 1 {
				n = 1
			}
		}
		inlineCount = n
	}

	valueAlign := headerAlign
	if itemAlign > valueAlign {
		valueAlign = itemAlign
	}
	valueSize := roundUpPow2(inlineOffset+itemSize*uintptr(inlineCount), valueAlign)

	return &SmallVector{
		elemType:     elemType,
		itemSize:     itemSize,
		trivialCtor:  trivialCtor,
		trivialDtor:  trivialDtor,
		inlineOffset: inlineOffset,
		inlineCount:  inlineCount,
		valueSize:    valueSize,
		valueAlign:   valueAlign,
	}
}

func roundUpPow2(x, align uintptr) uintptr {
	if align <= 1 {
		return x
	}
	return (x + align - 1) / align * align
}

func (sv *SmallVector) KindName() string { return "smallvector" }

func (sv *SmallVector) ValueSize() uintptr      { return sv.valueSize }
func (sv *SmallVector) ValueAlignment() uintptr { return sv.valueAlign }

func (sv *SmallVector) DefaultTraits() field.Traits { return 0 }

func (sv *SmallVector) ColumnRepresentations() field.ColumnRepresentations { return vectorReps() }

func (sv *SmallVector) header(addr unsafe.Pointer) (begin *unsafe.Pointer, size *int32, capacity *int32) {
	begin = (*unsafe.Pointer)(addr)
	size = (*int32)(unsafe.Add(addr, unsafe.Offsetof(smallVectorHeader{}.size)))
	capacity = (*int32)(unsafe.Add(addr, unsafe.Offsetof(smallVectorHeader{}.capacity)))
	return
}

func (sv *SmallVector) inlineAddr(addr unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(addr, sv.inlineOffset)
}

func (sv *SmallVector) elemAddr(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, uintptr(i)*sv.itemSize)
}

// Append iterates size elements starting at begin (spec §4.5 "Append:
// iterate size elements starting at begin").
func (sv *SmallVector) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	begin, sizeP, _ := sv.header(from)
	n := int(*sizeP)
	child := f.Children()[0]
	total := 0
	for i := 0; i < n; i++ {
		bn, err := child.Append(sv.elemAddr(*begin, i))
		if err != nil {
			return total, err
		}
		total += bn
	}
	sv.cumulative += uint64(n)
	idxBytes, err := writers[0].Append(sv.cumulative)
	if err != nil {
		return total, err
	}
	return total + idxBytes, nil
}

// Read mirrors Vector's resize rules, with the added reallocation path that
// mallocs a new buffer sized exactly to n when n exceeds the current
// capacity (spec §4.5 "Read mirrors Vector with the added reallocation
// path..."). Go's GC reclaims the previous external buffer once begin is
// overwritten; there is no explicit free.
func (sv *SmallVector) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
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

	begin, sizeP, capP := sv.header(to)
	oldN := int(*sizeP)
	oldCap := *capP
	oldCapCount := sv.inlineCount
	if oldCap != -1 {
		oldCapCount = int(oldCap)
	}

	switch {
	case n <= oldCapCount:
		base := *begin
		if base == nil {
			base = sv.inlineAddr(to)
			*begin = base
		}
		if !sv.trivialDtor && n < oldN {
			for i := n; i < oldN; i++ {
				child.DestroyValue(sv.elemAddr(base, i), true)
			}
		}
		if !sv.trivialCtor && n > oldN {
			for i := oldN; i < n; i++ {
				child.GenerateValue(sv.elemAddr(base, i))
			}
		}
	default:
		base := *begin
		newBuf := reflect.New(reflect.ArrayOf(n, sv.elemType))
		newBase := unsafe.Pointer(newBuf.Pointer())
		if sv.trivialDtor {
			// Trivially-destructible elements' bytes survive the realloc
			// untouched (spec §8 scenario 3): copy the surviving items
			// forward and only construct the new tail.
			if base != nil && oldN > 0 {
				old := unsafe.Slice((*byte)(base), uintptr(oldN)*sv.itemSize)
				nw := unsafe.Slice((*byte)(newBase), uintptr(oldN)*sv.itemSize)
				copy(nw, old)
			}
			*begin = newBase
			*capP = int32(n)
			if !sv.trivialCtor {
				for i := oldN; i < n; i++ {
					child.GenerateValue(sv.elemAddr(newBase, i))
				}
			}
		} else {
			if base != nil {
				for i := 0; i < oldN; i++ {
					child.DestroyValue(sv.elemAddr(base, i), true)
				}
			}
			*begin = newBase
			*capP = int32(n)
			if !sv.trivialCtor {
				for i := 0; i < n; i++ {
					child.GenerateValue(sv.elemAddr(newBase, i))
				}
			}
		}
	}
	*sizeP = int32(n)

	base := *begin
	for i := 0; i < n; i++ {
		if err := child.ReadAtElement(start+uint64(i), sv.elemAddr(base, i)); err != nil {
			return err
		}
	}
	return nil
}

func (sv *SmallVector) GenerateValue(f *field.Field, where unsafe.Pointer) {
	begin, sizeP, capP := sv.header(where)
	*begin = sv.inlineAddr(where)
	*sizeP = 0
	*capP = -1
}

func (sv *SmallVector) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	begin, sizeP, capP := sv.header(ptr)
	if !sv.trivialDtor && *begin != nil {
		child := f.Children()[0]
		for i := 0; i < int(*sizeP); i++ {
			child.DestroyValue(sv.elemAddr(*begin, i), true)
		}
	}
	*begin = sv.inlineAddr(ptr)
	*sizeP = 0
	*capP = -1
}

func (sv *SmallVector) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	begin, sizeP, _ := sv.header(value)
	child := f.Children()[0]
	out := make([]field.ValueBinding, int(*sizeP))
	for i := range out {
		out[i] = field.ValueBinding{Field: child, Addr: sv.elemAddr(*begin, i)}
	}
	return out, nil
}

func (sv *SmallVector) Accept(f *field.Field, v field.Visitor) { v.VisitSmallVector(f) }

// CommitCluster resets the cumulative element-count index column (spec
// §4.5).
func (sv *SmallVector) CommitCluster() { sv.cumulative = 0 }

func (sv *SmallVector) Clone() field.Kind {
	return &SmallVector{
		elemType:     sv.elemType,
		itemSize:     sv.itemSize,
		trivialCtor:  sv.trivialCtor,
		trivialDtor:  sv.trivialDtor,
		inlineOffset: sv.inlineOffset,
		inlineCount:  sv.inlineCount,
		valueSize:    sv.valueSize,
		valueAlign:   sv.valueAlign,
	}
}
