package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

const bitsetWordBits = 64

// Bitset is the field.Kind for std::bitset<N> (spec §4.5 "Bitset"): a single
// bit column, N bits per value, packed into ceil(N/64) native uint64 words.
// Append walks the native words and emits each bit; Read ORs each decoded
// bit into the appropriate word, so a freshly zeroed destination is a
// precondition the caller (GenerateValue) upholds.
type Bitset struct {
	n         int
	wordCount int
}

// NewBitset constructs the bitset kind with n bits.
func NewBitset(n int) *Bitset {
	wc := (n + bitsetWordBits - 1) / bitsetWordBits
	if wc < 1 {
		wc = 1
	}
	return &Bitset{n: n, wordCount: wc}
}

func (b *Bitset) KindName() string { return "bitset" }

func (b *Bitset) ValueSize() uintptr      { return uintptr(b.wordCount) * 8 }
func (b *Bitset) ValueAlignment() uintptr { return 8 }

func (b *Bitset) DefaultTraits() field.Traits {
	return field.TraitTriviallyConstructible | field.TraitTriviallyDestructible
}

func (b *Bitset) ColumnRepresentations() field.ColumnRepresentations {
	row := field.Representation{field.ElemBit}
	return field.ColumnRepresentations{Serialization: []field.Representation{row}, Deserialization: []field.Representation{row}}
}

func (b *Bitset) wordAddr(base unsafe.Pointer, i int) *uint64 {
	return (*uint64)(unsafe.Add(base, uintptr(i)*8))
}

// Append walks native words and emits each bit (spec §4.5 "Append: walk
// native words, emit each bit").
func (b *Bitset) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	for i := 0; i < b.n; i++ {
		word := *b.wordAddr(from, i/bitsetWordBits)
		bit := byte((word >> uint(i%bitsetWordBits)) & 1)
		if _, err := writers[0].Append(bit); err != nil {
			return 0, err
		}
	}
	return b.n, nil
}

// Read ORs each decoded bit into the appropriate word at the appropriate
// position (spec §4.5 "Read: for each bit, OR into the appropriate word at
// the appropriate position"). elem*n+i addresses this field's own bit
// column directly; Bitset has no children to delegate to.
func (b *Bitset) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 1 {
		return fmt.Errorf("rfield: %s: Read: expected 1 bound column, got %d", f.QualifiedName(), len(readers))
	}
	base := elem * uint64(b.n)
	for i := 0; i < b.n; i++ {
		var bit byte
		if err := readers[0].Map(base+uint64(i), &bit); err != nil {
			return err
		}
		if bit != 0 {
			w := b.wordAddr(to, i/bitsetWordBits)
			*w |= uint64(1) << uint(i%bitsetWordBits)
		}
	}
	return nil
}

func (b *Bitset) GenerateValue(f *field.Field, where unsafe.Pointer) {
	for i := 0; i < b.wordCount; i++ {
		*b.wordAddr(where, i) = 0
	}
}

func (b *Bitset) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {}

func (b *Bitset) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	return nil, nil
}

func (b *Bitset) Accept(f *field.Field, v field.Visitor) { v.VisitBitset(f) }

func (b *Bitset) Clone() field.Kind { return NewBitset(b.n) }

func (b *Bitset) CommitCluster() {}
