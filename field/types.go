package field

// Structure classifies a field node's shape (spec §3 "Field").
type Structure int

const (
	StructureLeaf Structure = iota
	StructureRecord
	StructureCollection
	StructureVariant
)

func (s Structure) String() string {
	switch s {
	case StructureLeaf:
		return "leaf"
	case StructureRecord:
		return "record"
	case StructureCollection:
		return "collection"
	case StructureVariant:
		return "variant"
	default:
		return "unknown"
	}
}

// Traits is a bitset of layout/lifecycle properties (spec §3).
type Traits uint8

const (
	// TraitMappable means the field's on-disk bytes can be mapped directly
	// (zero-copy) into the in-memory representation.
	TraitMappable Traits = 1 << iota
	// TraitTriviallyConstructible means the zero value needs no explicit
	// construction step.
	TraitTriviallyConstructible
	// TraitTriviallyDestructible means tearing down a value needs no
	// explicit destruction step beyond releasing memory.
	TraitTriviallyDestructible

	// TraitTrivialType is TriviallyConstructible + TriviallyDestructible +
	// Mappable, i.e. the value is raw bytes through and through.
	TraitTrivialType = TraitMappable | TraitTriviallyConstructible | TraitTriviallyDestructible
)

// Has reports whether all bits in want are set.
func (t Traits) Has(want Traits) bool { return t&want == want }

// WriteOptions are the observable, external write-time inputs (spec §4.4
// AutoAdjustColumnTypes, §6 ColumnSink.GetWriteOptions).
type WriteOptions struct {
	CompressionEnabled bool
	SmallClusterMode   bool
}

// ColumnElementType enumerates the on-disk column element kinds a
// representation can be built from (spec §3 "Column representation").
type ColumnElementType int

const (
	ElemUnknown ColumnElementType = iota
	ElemBit                       // packed single-bit column (bool, bitset, nullable mask)
	ElemByte                      // raw byte (char)
	ElemInt8
	ElemUInt8
	ElemInt16
	ElemUInt16
	ElemInt32
	ElemUInt32
	ElemInt64
	ElemUInt64
	ElemSplitInt16
	ElemSplitUInt16
	ElemSplitInt32
	ElemSplitUInt32
	ElemSplitInt64
	ElemSplitUInt64
	ElemReal32
	ElemReal64
	ElemSplitReal32
	ElemSplitReal64
	ElemIndex32     // cluster-local offset, 32-bit
	ElemIndex64     // cluster-local offset, 64-bit
	ElemSplitIndex32
	ElemSplitIndex64
	ElemSwitch // (tag, within-tag-index) switch record, for Variant
)

func (e ColumnElementType) String() string {
	switch e {
	case ElemBit:
		return "Bit"
	case ElemByte:
		return "Char"
	case ElemInt8:
		return "Int8"
	case ElemUInt8:
		return "UInt8"
	case ElemInt16:
		return "Int16"
	case ElemUInt16:
		return "UInt16"
	case ElemInt32:
		return "Int32"
	case ElemUInt32:
		return "UInt32"
	case ElemInt64:
		return "Int64"
	case ElemUInt64:
		return "UInt64"
	case ElemSplitInt16:
		return "SplitInt16"
	case ElemSplitUInt16:
		return "SplitUInt16"
	case ElemSplitInt32:
		return "SplitInt32"
	case ElemSplitUInt32:
		return "SplitUInt32"
	case ElemSplitInt64:
		return "SplitInt64"
	case ElemSplitUInt64:
		return "SplitUInt64"
	case ElemReal32:
		return "Real32"
	case ElemReal64:
		return "Real64"
	case ElemSplitReal32:
		return "SplitReal32"
	case ElemSplitReal64:
		return "SplitReal64"
	case ElemIndex32:
		return "Index32"
	case ElemIndex64:
		return "Index64"
	case ElemSplitIndex32:
		return "SplitIndex32"
	case ElemSplitIndex64:
		return "SplitIndex64"
	case ElemSwitch:
		return "Switch"
	default:
		return "Unknown"
	}
}

// FieldID is the on-disk identity assigned to a field when bound to a
// source or sink (spec §3 "onDiskId").
type FieldID uint64

// NoFieldID marks a field that has not yet been bound to a source.
const NoFieldID FieldID = 0
