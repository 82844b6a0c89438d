package field

// ColumnSink is the write-side column I/O collaborator (spec §6). It is
// implemented externally to this package; columnstore/ provides reference
// implementations used by tests and the CLI.
type ColumnSink interface {
	// WriteOptions reports the observable compression/small-cluster inputs
	// used by AutoAdjustColumnTypes.
	WriteOptions() WriteOptions
	// Connect binds a single column of the given element type for the named
	// field, returning a handle positioned at firstElementIndex.
	Connect(id FieldID, elem ColumnElementType, firstElementIndex uint64) (ColumnWriter, error)
	// Flush forces buffered pages downstream.
	Flush() error
}

// ColumnWriter is a single bound, append-only column (write side).
type ColumnWriter interface {
	ElementType() ColumnElementType
	// Append appends one decoded element value, returning the number of
	// bytes contributed.
	Append(v any) (int, error)
	// AppendBulk appends count contiguous elements from slice v.
	AppendBulk(v any, count int) (int, error)
	// PackedSize reports the encoded size an index/switch record would have
	// without writing it, for byte accounting.
	PackedSize(v any) int
}

// ColumnSource is the read-side column I/O collaborator (spec §6).
type ColumnSource interface {
	// Connect binds a single column of the given element type for the named
	// field.
	Connect(id FieldID, elem ColumnElementType) (ColumnReader, error)
	// Descriptor returns the read-only descriptor snapshot used for column
	// negotiation (spec §4.7 "Read").
	Descriptor() Descriptor
}

// ColumnReader is a single bound column (read side).
type ColumnReader interface {
	ElementType() ColumnElementType
	// GetCollectionInfo decodes an index-column entry into (start, count)
	// cluster-relative coordinates (spec §6).
	GetCollectionInfo(globalIndex uint64) (start uint64, count uint64, err error)
	// GetSwitchInfo decodes a variant switch record.
	GetSwitchInfo(globalIndex uint64) (tag int8, withinTagIndex uint64, err error)
	// Map decodes element i directly into out, a pointer to the expected Go
	// type for this element kind.
	Map(i uint64, out any) error
	// ReadV bulk-reads n contiguous elements starting at start into out, a
	// pointer to a slice of the expected Go type.
	ReadV(start uint64, n uint64, out any) error
}

// SwitchRecord is the (tag, within-tag-index) pair a Variant field appends
// to and decodes from its switch column (spec §3 "Switch record", §4.5
// "Variant"). Column driver implementations store/retrieve values of this
// type through ColumnWriter.Append / ColumnReader.Map for an ElemSwitch
// column.
type SwitchRecord struct {
	Tag            int8
	WithinTagIndex uint64
}

// Descriptor is the read-only, iterable column/field metadata catalog
// (spec §6 "Descriptor").
type Descriptor interface {
	// ColumnTypesFor returns the on-disk element type sequence recorded for
	// the given field id, in column order.
	ColumnTypesFor(id FieldID) ([]ColumnElementType, bool)
	// TypeVersion returns the on-disk type version recorded for the field.
	TypeVersion(id FieldID) (uint32, bool)
}
