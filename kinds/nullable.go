package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// nullableReps builds the dense-then-sparse or sparse-then-dense
// representation table: dense uses a bit mask column, sparse a
// monotonically non-decreasing index column (spec §4.5 "Nullable"). The
// item size < 4 bytes rule picks which encoding is the default (first
// serialization row); both are always accepted for read, and an explicit
// SetColumnRepresentative to the Bit row can force dense even above the
// 4-byte threshold (spec §9 open question 3 "forced by representative").
func nullableReps(itemSize uintptr) field.ColumnRepresentations {
	dense := field.Representation{field.ElemBit}
	sparse := []field.Representation{
		{field.ElemSplitIndex64},
		{field.ElemIndex64},
		{field.ElemSplitIndex32},
		{field.ElemIndex32},
	}
	var rows []field.Representation
	if itemSize < 4 {
		rows = append([]field.Representation{dense}, sparse...)
	} else {
		rows = append(append([]field.Representation{}, sparse...), dense)
	}
	return field.ColumnRepresentations{Serialization: rows, Deserialization: rows}
}

// Nullable is the field.Kind for an optional value field (spec §4.5
// "Nullable"), the base the unique-ownership pointer kind wraps. The item
// is stored inline (not behind a pointer) immediately followed by a
// one-byte presence flag, so the item is always constructed and Nullable
// needs no allocator of its own; UniquePtr adds real pointer/allocation
// semantics on top of the same column representation.
type Nullable struct {
	itemSize     uintptr
	itemAlign    uintptr
	presenceOff  uintptr
	valueSize    uintptr
	valueAlign   uintptr
	reps         field.ColumnRepresentations
	cumulative   uint64
}

// NewNullable constructs the nullable kind over an item of the given size
// and alignment.
func NewNullable(itemSize, itemAlign uintptr) *Nullable {
	if itemAlign == 0 {
		itemAlign = 1
	}
	presenceOff := itemSize
	valueSize := roundUpPow2(presenceOff+1, itemAlign)
	return &Nullable{
		itemSize:    itemSize,
		itemAlign:   itemAlign,
		presenceOff: presenceOff,
		valueSize:   valueSize,
		valueAlign:  itemAlign,
		reps:        nullableReps(itemSize),
	}
}

func (n *Nullable) KindName() string { return "nullable" }

func (n *Nullable) ValueSize() uintptr      { return n.valueSize }
func (n *Nullable) ValueAlignment() uintptr { return n.valueAlign }

func (n *Nullable) DefaultTraits() field.Traits { return 0 }

func (n *Nullable) ColumnRepresentations() field.ColumnRepresentations { return n.reps }

func (n *Nullable) itemAddr(base unsafe.Pointer) unsafe.Pointer { return base }
func (n *Nullable) presenceAddr(base unsafe.Pointer) *byte {
	return (*byte)(unsafe.Add(base, n.presenceOff))
}

// IsPresent/SetPresent expose the out-of-band presence flag for callers
// (and for UniquePtr's reconciliation logic) to inspect or toggle directly.
func (n *Nullable) IsPresent(addr unsafe.Pointer) bool { return *n.presenceAddr(addr) != 0 }
func (n *Nullable) SetPresent(addr unsafe.Pointer, present bool) {
	if present {
		*n.presenceAddr(addr) = 1
	} else {
		*n.presenceAddr(addr) = 0
	}
}

func (n *Nullable) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	present := n.IsPresent(from)
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
			bn, err := child.Append(n.itemAddr(from))
			return idxBytes + bn, err
		}
		// A default filler value is appended for null entries to keep rows
		// aligned with the mask column (spec §4.5).
		filler := make([]byte, n.itemSize)
		var fillerAddr unsafe.Pointer
		if n.itemSize > 0 {
			fillerAddr = unsafe.Pointer(&filler[0])
			child.GenerateValue(fillerAddr)
		}
		bn, err := child.Append(fillerAddr)
		return idxBytes + bn, err
	}

	// Sparse: a null repeats the previous cumulative index, a present value
	// increments it and appends the item (spec §4.5 "Nullable", sparse).
	if present {
		n.cumulative++
		if _, err := child.Append(n.itemAddr(from)); err != nil {
			return 0, err
		}
	}
	idxBytes, err := writers[0].Append(n.cumulative)
	return idxBytes, err
}

func (n *Nullable) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 1 {
		return fmt.Errorf("rfield: %s: Read: expected 1 bound column, got %d", f.QualifiedName(), len(readers))
	}
	child := f.Children()[0]

	if readers[0].ElementType() == field.ElemBit {
		var bit byte
		if err := readers[0].Map(elem, &bit); err != nil {
			return err
		}
		present := bit != 0
		n.SetPresent(to, present)
		if present {
			return child.ReadAtElement(elem, n.itemAddr(to))
		}
		return nil
	}

	start, count, err := readers[0].GetCollectionInfo(elem)
	if err != nil {
		return err
	}
	present := count > 0
	n.SetPresent(to, present)
	if present {
		return child.ReadAtElement(start, n.itemAddr(to))
	}
	return nil
}

func (n *Nullable) GenerateValue(f *field.Field, where unsafe.Pointer) {
	n.SetPresent(where, false)
	f.Children()[0].GenerateValue(n.itemAddr(where))
}

func (n *Nullable) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	f.Children()[0].DestroyValue(n.itemAddr(ptr), true)
}

func (n *Nullable) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return []field.ValueBinding{{Field: f.Children()[0], Addr: n.itemAddr(value)}}, nil
}

func (n *Nullable) Accept(f *field.Field, v field.Visitor) { v.VisitNullable(f) }

func (n *Nullable) Clone() field.Kind {
	return &Nullable{
		itemSize:    n.itemSize,
		itemAlign:   n.itemAlign,
		presenceOff: n.presenceOff,
		valueSize:   n.valueSize,
		valueAlign:  n.valueAlign,
		reps:        n.reps,
	}
}

// CommitCluster resets the cumulative index used for the sparse
// repeated-previous-index encoding (spec §4.5).
func (n *Nullable) CommitCluster() { n.cumulative = 0 }
