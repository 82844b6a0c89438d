package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// stringReps is the two-column representation: an index column (cluster-
// local cumulative character offset) and a char column (spec §4.5
// "String").
func stringReps() field.ColumnRepresentations {
	row := field.Representation{field.ElemSplitIndex64, field.ElemByte}
	alt := field.Representation{field.ElemIndex64, field.ElemByte}
	alt32 := field.Representation{field.ElemIndex32, field.ElemByte}
	splitAlt32 := field.Representation{field.ElemSplitIndex32, field.ElemByte}
	return field.ColumnRepresentations{
		Serialization:   []field.Representation{row, alt, splitAlt32, alt32},
		Deserialization: []field.Representation{row, alt, splitAlt32, alt32},
	}
}

// String is the field.Kind for std::string (spec §4.5 "String"). The value
// address is interpreted as a *string; Append copies bytes out, Read
// allocates a fresh Go string (strings are immutable, so there is no
// in-place resize path the way Vector has one).
type String struct {
	cumulative uint64
}

// NewString constructs the string kind.
func NewString() *String { return &String{} }

func (s *String) KindName() string { return "std::string" }

func (s *String) ValueSize() uintptr      { var v string; return unsafe.Sizeof(v) }
func (s *String) ValueAlignment() uintptr { var v string; return unsafe.Alignof(v) }

func (s *String) DefaultTraits() field.Traits {
	return field.TraitTriviallyConstructible // zero value "" needs no ctor; has a destructible string header
}

func (s *String) ColumnRepresentations() field.ColumnRepresentations { return stringReps() }

// Append writes the characters, advances the cumulative index, and appends
// the new index value (spec §4.5 "Append: write characters, advance
// cumulative index, append the new index value").
func (s *String) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 2 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 2 bound columns, got %d", f.QualifiedName(), len(writers))
	}
	val := *(*string)(from)
	n, err := writers[1].AppendBulk([]byte(val), len(val))
	if err != nil {
		return 0, err
	}
	s.cumulative += uint64(len(val))
	idxBytes, err := writers[0].Append(s.cumulative)
	if err != nil {
		return 0, err
	}
	return n + idxBytes, nil
}

// Read decodes (collectionStart, nChars) from the principal index column
// and bulk-copies the char range into a fresh string (spec §4.5 "Read: the
// principal (index) column yields (collectionStart, nChars); resize and
// bulk-copy").
func (s *String) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 2 {
		return fmt.Errorf("rfield: %s: Read: expected 2 bound columns, got %d", f.QualifiedName(), len(readers))
	}
	start, n, err := readers[0].GetCollectionInfo(elem)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if n > 0 {
		if err := readers[1].ReadV(start, n, &buf); err != nil {
			return err
		}
	}
	*(*string)(to) = string(buf)
	return nil
}

func (s *String) GenerateValue(f *field.Field, where unsafe.Pointer) {
	*(*string)(where) = ""
}

func (s *String) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	*(*string)(ptr) = ""
}

func (s *String) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return nil, nil
}

func (s *String) Accept(f *field.Field, v field.Visitor) { v.VisitString(f) }

// Clone resets the cumulative write counter: CommitCluster semantics (spec
// §4.5 "CommitCluster resets the cumulative index to 0") apply per bound
// instance, and a clone is never yet connected.
func (s *String) Clone() field.Kind { return &String{} }

// CommitCluster resets the cumulative character index to 0 (spec §4.5).
func (s *String) CommitCluster() { s.cumulative = 0 }
