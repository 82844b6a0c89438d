package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
)

// Variant is the field.Kind for a tagged union over N alternatives (spec
// §4.5 "Variant"). Value layout: the largest alternative's bytes, followed
// by a one-byte tag. On disk, tag 0 means "no alternative held" and
// alternatives are numbered 1..N; in memory the tag is 0-based (0..N-1
// selects an alternative, matching the original RVariantField::GetTag/
// SetTag convention), with -1 the distinct "never written" sentinel (spec
// §9 open question 1). Read never produces the in-memory sentinel from a
// stored value, since a tag-0 switch record leaves the destination
// untouched (spec §9 open question 2).
type Variant struct {
	payloadSize  uintptr
	payloadAlign uintptr
	tagOffset    uintptr
	valueSize    uintptr
	valueAlign   uintptr
	localCounts  []uint64
}

// NewVariant constructs the variant kind. altSizes/altAligns give each
// alternative's value size/alignment, in the same order children are
// subsequently attached.
func NewVariant(altSizes, altAligns []uintptr) *Variant {
	var maxSize, maxAlign uintptr = 0, 1
	for i := range altSizes {
		if altSizes[i] > maxSize {
			maxSize = altSizes[i]
		}
		if altAligns[i] > maxAlign {
			maxAlign = altAligns[i]
		}
	}
	tagOffset := maxSize
	valueSize := roundUpPow2(tagOffset+1, maxAlign)
	return &Variant{
		payloadSize:  maxSize,
		payloadAlign: maxAlign,
		tagOffset:    tagOffset,
		valueSize:    valueSize,
		valueAlign:   maxAlign,
		localCounts:  make([]uint64, len(altSizes)),
	}
}

func (v *Variant) KindName() string { return "variant" }

func (v *Variant) ValueSize() uintptr      { return v.valueSize }
func (v *Variant) ValueAlignment() uintptr { return v.valueAlign }

func (v *Variant) DefaultTraits() field.Traits { return 0 }

func (v *Variant) ColumnRepresentations() field.ColumnRepresentations {
	row := field.Representation{field.ElemSwitch}
	return field.ColumnRepresentations{Serialization: []field.Representation{row}, Deserialization: []field.Representation{row}}
}

func (v *Variant) payloadAddr(base unsafe.Pointer) unsafe.Pointer { return base }
func (v *Variant) tagAddr(base unsafe.Pointer) *int8 {
	return (*int8)(unsafe.Add(base, v.tagOffset))
}

// Append emits a switch record; an in-memory tag < 0 is written as on-disk
// tag 0 with no payload (spec §4.5 "Append: if tag > 0, append to child
// tag-1, incrementing that child's local write count; emit a switch
// record" — "tag" there is the on-disk, 1-based tag; the in-memory tag
// read here is 0-based and converted with +1, mirroring the original
// RVariantField::GetTag).
func (v *Variant) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	writers := f.Writers()
	if len(writers) != 1 {
		return 0, fmt.Errorf("rfield: %s: Append: expected 1 bound column, got %d", f.QualifiedName(), len(writers))
	}
	tag := *v.tagAddr(from)
	if tag < 0 {
		n, err := writers[0].Append(field.SwitchRecord{Tag: 0, WithinTagIndex: 0})
		return n, err
	}
	children := f.Children()
	idx := int(tag)
	if idx < 0 || idx >= len(children) {
		return 0, fmt.Errorf("rfield: %s: Append: tag %d out of range (%d alternatives)", f.QualifiedName(), tag, len(children))
	}
	n, err := children[idx].Append(v.payloadAddr(from))
	if err != nil {
		return n, err
	}
	pos := v.localCounts[idx]
	v.localCounts[idx]++
	onDiskTag := int8(idx) + 1
	idxBytes, err := writers[0].Append(field.SwitchRecord{Tag: onDiskTag, WithinTagIndex: pos})
	if err != nil {
		return n, err
	}
	return n + idxBytes, nil
}

// Read looks up the switch info; tag 0 leaves to untouched (spec §9 open
// question 2). A tag > 0 placement-constructs the alternative and reads
// into it at its own within-tag position.
func (v *Variant) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	readers := f.Readers()
	if len(readers) != 1 {
		return fmt.Errorf("rfield: %s: Read: expected 1 bound column, got %d", f.QualifiedName(), len(readers))
	}
	tag, withinTagIndex, err := readers[0].GetSwitchInfo(elem)
	if err != nil {
		return err
	}
	if tag == 0 {
		return nil
	}
	children := f.Children()
	idx := int(tag) - 1
	if idx < 0 || idx >= len(children) {
		return fmt.Errorf("rfield: %s: Read: on-disk tag %d out of range (%d alternatives)", f.QualifiedName(), tag, len(children))
	}
	if old := *v.tagAddr(to); old >= 0 && int(old) != idx {
		children[int(old)].DestroyValue(v.payloadAddr(to), true)
	}
	child := children[idx]
	child.GenerateValue(v.payloadAddr(to))
	if err := child.ReadAtElement(withinTagIndex, v.payloadAddr(to)); err != nil {
		return err
	}
	*v.tagAddr(to) = tag - 1
	return nil
}

func (v *Variant) GenerateValue(f *field.Field, where unsafe.Pointer) {
	*v.tagAddr(where) = -1
	if v.payloadSize > 0 {
		dst := unsafe.Slice((*byte)(v.payloadAddr(where)), v.payloadSize)
		for i := range dst {
			dst[i] = 0
		}
	}
}

func (v *Variant) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	tag := *v.tagAddr(ptr)
	if tag < 0 {
		return
	}
	children := f.Children()
	idx := int(tag)
	if idx >= 0 && idx < len(children) {
		children[idx].DestroyValue(v.payloadAddr(ptr), true)
	}
}

func (v *Variant) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	tag := *v.tagAddr(value)
	if tag < 0 {
		return nil, nil
	}
	children := f.Children()
	idx := int(tag)
	if idx < 0 || idx >= len(children) {
		return nil, nil
	}
	return []field.ValueBinding{{Field: children[idx], Addr: v.payloadAddr(value)}}, nil
}

func (v *Variant) Accept(f *field.Field, vis field.Visitor) { vis.VisitVariant(f) }

// CommitCluster resets every alternative's local within-tag write count
// (spec §4.5), mirroring RVariantField's per-cluster reset of its per-
// alternative counters.
func (v *Variant) CommitCluster() {
	for i := range v.localCounts {
		v.localCounts[i] = 0
	}
}

func (v *Variant) Clone() field.Kind {
	return &Variant{
		payloadSize:  v.payloadSize,
		payloadAlign: v.payloadAlign,
		tagOffset:    v.tagOffset,
		valueSize:    v.valueSize,
		valueAlign:   v.valueAlign,
		localCounts:  make([]uint64, len(v.localCounts)),
	}
}
