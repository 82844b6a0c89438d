package field

import (
	"strings"
	"unsafe"
)

// ReadCallback is invoked, in insertion order, after a successful Read.
type ReadCallback func(to unsafe.Pointer)

// CallbackHandle identifies a previously installed ReadCallback so it can be
// removed later.
type CallbackHandle int

// ValueBinding is a non-owning binding of a child field over a slice of the
// parent's value address (spec §4.4 SplitValue).
type ValueBinding struct {
	Field *Field
	Addr  unsafe.Pointer
}

// Kind is the small, kind-specific arm of the tagged-variant field tree
// (spec §9 "Recursive type-directed polymorphism"). Every leaf/composite
// field kind (kinds/ package) implements this interface; Field (the common
// header) dispatches to it.
type Kind interface {
	// KindName identifies the arm for debugging and Visitor fallback.
	KindName() string
	// ValueSize/ValueAlignment describe the in-memory layout of one value.
	ValueSize() uintptr
	ValueAlignment() uintptr
	// DefaultTraits reports the traits of this kind. Field does not fold
	// children's traits in; a composite kind learns its children's
	// triviality through its constructor arguments.
	DefaultTraits() Traits
	// ColumnRepresentations returns the static table for this kind.
	ColumnRepresentations() ColumnRepresentations
	// Append writes the value at from to the bound column(s), returning
	// bytes contributed.
	Append(f *Field, from unsafe.Pointer) (int, error)
	// Read reconstructs the value at the already-resolved column element
	// index elem into to. Callers needing entry-to-element conversion use
	// Field.Read; composite kinds addressing a child at a directly
	// computed element offset (array/vector items) call Field.ReadAtElement.
	Read(f *Field, elem uint64, to unsafe.Pointer) error
	// GenerateValue placement-constructs a default value at where.
	GenerateValue(f *Field, where unsafe.Pointer)
	// DestroyValue placement-destructs the value at ptr; when dtorOnly is
	// false the outer allocation is also released.
	DestroyValue(f *Field, ptr unsafe.Pointer, dtorOnly bool)
	// SplitValue returns non-owning child bindings over value.
	SplitValue(f *Field, value unsafe.Pointer) ([]ValueBinding, error)
	// Accept performs the Visitor double-dispatch (Visit<Kind>(f)).
	Accept(f *Field, v Visitor)
	// Clone returns a fresh copy of this kind's auxiliary state (N for
	// bitsets, item size for vectors, offsets for records, ...) for use by
	// a cloned Field.
	Clone() Kind
	// CommitCluster resets any cumulative, cluster-local counter this kind
	// carries across Append calls (spec §4.5 "CommitCluster"); a no-op for
	// kinds that track no such state.
	CommitCluster()
}

// Field is a node in the schema tree (spec §3). It is the common header
// shared by every kind arm; kind-specific behavior is dispatched through
// Impl.
type Field struct {
	name         string
	typeName     string // canonical
	typeAlias    string
	hasAlias     bool
	structure    Structure
	nRepetitions int // 0 = variable, N = fixed-length array
	traits       Traits

	parent   *Field
	children []*Field

	onDiskID          FieldID
	hasOnDiskID       bool
	onDiskTypeVersion uint32
	hasTypeVersion    bool

	representative Representative
	isSimple       bool

	writers []ColumnWriter
	readers []ColumnReader

	connectedWrite bool
	connectedRead  bool

	readCallbacks  []readCallbackEntry
	nextCallbackID CallbackHandle

	Impl Kind
}

type readCallbackEntry struct {
	id CallbackHandle
	fn ReadCallback
}

// NewField constructs the common header for a kind. Used by factory/ and by
// kinds/ constructors; not normally called directly by application code.
func NewField(name, typeName string, structure Structure, nRepetitions int, impl Kind) (*Field, error) {
	if err := EnsureValidFieldName(name); err != nil {
		return nil, err
	}
	if typeName == "" {
		return nil, Issues{{Path: name, Code: CodeEmptyTypeName, Message: "empty canonical type name"}}
	}
	f := &Field{
		name:         name,
		typeName:     typeName,
		structure:    structure,
		nRepetitions: nRepetitions,
		Impl:         impl,
	}
	f.traits = impl.DefaultTraits()
	f.recomputeIsSimple()
	return f, nil
}

// EnsureValidFieldName checks the non-empty, no-"." invariant (spec §3, §7).
func EnsureValidFieldName(name string) error {
	if name == "" {
		return Issues{{Path: name, Code: CodeInvalidFieldName, Message: "field name must not be empty"}}
	}
	if strings.Contains(name, ".") {
		return Issues{{Path: name, Code: CodeInvalidFieldName, Message: "field name must not contain '.'"}}
	}
	return nil
}

// Name returns the field's own (unqualified) name.
func (f *Field) Name() string { return f.name }

// TypeName returns the canonical type name.
func (f *Field) TypeName() string { return f.typeName }

// TypeAlias returns the original user spelling when it differs from the
// canonical type name.
func (f *Field) TypeAlias() (string, bool) { return f.typeAlias, f.hasAlias }

// SetTypeAlias attaches the alias the factory resolved the canonical type
// name from (spec §4.3 step 6).
func (f *Field) SetTypeAlias(alias string) {
	f.typeAlias = alias
	f.hasAlias = alias != ""
}

// Structure returns the node's structural classification.
func (f *Field) Structure() Structure { return f.structure }

// NRepetitions returns 0 for variable-length fields, N for fixed-length
// arrays.
func (f *Field) NRepetitions() int { return f.nRepetitions }

// Traits returns the accumulated traits bitset.
func (f *Field) Traits() Traits { return f.traits }

// IsSimple reports whether the field has exactly one bound/declared column
// and is layout-compatible with raw column bytes, and no read callback has
// been installed (spec §3, §4.4).
func (f *Field) IsSimple() bool { return f.isSimple }

// recomputeIsSimple refreshes IsSimple() whenever the representation or the
// callback list changes.
func (f *Field) recomputeIsSimple() {
	rep := f.Impl.ColumnRepresentations().Default()
	f.isSimple = len(rep) == 1 && f.traits.Has(TraitMappable) && len(f.readCallbacks) == 0
}

// Parent returns the non-owning back-reference, or nil at the root.
func (f *Field) Parent() *Field { return f.parent }

// Children returns the ordered child list.
func (f *Field) Children() []*Field { return f.children }

// QualifiedName returns ancestor names "."-joined down to this field,
// used in every user-visible failure message (spec §3, §7).
func (f *Field) QualifiedName() string {
	if f.parent == nil {
		return f.name
	}
	return f.parent.QualifiedName() + "." + f.name
}

// OnDiskID returns the assigned on-disk field id, if any.
func (f *Field) OnDiskID() (FieldID, bool) { return f.onDiskID, f.hasOnDiskID }

// SetOnDiskID assigns the on-disk field id (normally done by the descriptor
// catalog/factory, not application code).
func (f *Field) SetOnDiskID(id FieldID) {
	f.onDiskID = id
	f.hasOnDiskID = true
}

// OnDiskTypeVersion returns the on-disk type version recorded at connect
// time, if the field has been connected to a source.
func (f *Field) OnDiskTypeVersion() (uint32, bool) { return f.onDiskTypeVersion, f.hasTypeVersion }

// Attach appends child to f's child list and sets its parent back-link.
func (f *Field) Attach(child *Field) {
	child.parent = f
	f.children = append(f.children, child)
}

// ValueSize/ValueAlignment forward to the kind arm.
func (f *Field) ValueSize() uintptr      { return f.Impl.ValueSize() }
func (f *Field) ValueAlignment() uintptr { return f.Impl.ValueAlignment() }

// Clone produces a deep, structurally isomorphic copy: children are
// recreated (not shared), and onDiskId/typeAlias/representative are
// preserved (spec §3 Lifecycle, §8 testable property).
func (f *Field) Clone(newName string) (*Field, error) {
	if err := EnsureValidFieldName(newName); err != nil {
		return nil, err
	}
	nf := &Field{
		name:              newName,
		typeName:          f.typeName,
		typeAlias:         f.typeAlias,
		hasAlias:          f.hasAlias,
		structure:         f.structure,
		nRepetitions:      f.nRepetitions,
		traits:            f.traits,
		onDiskID:          f.onDiskID,
		hasOnDiskID:       f.hasOnDiskID,
		onDiskTypeVersion: f.onDiskTypeVersion,
		hasTypeVersion:    f.hasTypeVersion,
		representative:    f.representative,
		Impl:              f.Impl.Clone(),
	}
	nf.recomputeIsSimple()
	for _, c := range f.children {
		cc, err := c.Clone(c.name)
		if err != nil {
			return nil, err
		}
		nf.Attach(cc)
	}
	return nf, nil
}

// Append dispatches to the kind-specific write path (spec §4.4).
func (f *Field) Append(from unsafe.Pointer) (int, error) {
	return f.Impl.Append(f, from)
}

// Read dispatches to the kind-specific read path, then invokes every
// installed read callback in insertion order (spec §4.4). globalIndex is
// this field's own local entry counter (the dataset-wide entry for fields
// outside any Collection/Variant ancestor, reset to a per-item counter for
// fields inside one); it is converted to a column element index once, here,
// via EntryToColumnElementIndex.
func (f *Field) Read(globalIndex uint64, to unsafe.Pointer) error {
	return f.ReadAtElement(f.EntryToColumnElementIndex(globalIndex), to)
}

// ReadAtElement reconstructs the value at an already-resolved column
// element index, bypassing entry-to-element conversion. Composite kinds
// (Array, Vector, SmallVector, ...) use this to address a child at a
// directly computed element offset such as parentElem*N+i.
func (f *Field) ReadAtElement(elem uint64, to unsafe.Pointer) error {
	if err := f.Impl.Read(f, elem, to); err != nil {
		return err
	}
	for _, cb := range f.readCallbacks {
		cb.fn(to)
	}
	return nil
}

// GenerateValue placement-constructs a default value at where.
func (f *Field) GenerateValue(where unsafe.Pointer) { f.Impl.GenerateValue(f, where) }

// DestroyValue placement-destructs the value at ptr.
func (f *Field) DestroyValue(ptr unsafe.Pointer, dtorOnly bool) { f.Impl.DestroyValue(f, ptr, dtorOnly) }

// SplitValue returns non-owning bindings of children over value.
func (f *Field) SplitValue(value unsafe.Pointer) ([]ValueBinding, error) {
	return f.Impl.SplitValue(f, value)
}

// GetColumnRepresentations returns the static table for this kind.
func (f *Field) GetColumnRepresentations() ColumnRepresentations { return f.Impl.ColumnRepresentations() }

// GetColumnRepresentative inspects the chosen representation.
func (f *Field) GetColumnRepresentative() Representative { return f.representative }

// SetColumnRepresentative fixes the representation before binding. Fatal if
// already connected or if rep is not an accepted serialization row
// (spec §7).
func (f *Field) SetColumnRepresentative(rep Representation) {
	if f.connectedWrite || f.connectedRead {
		Fatalf(f.QualifiedName(), "SetColumnRepresentative: field is already connected")
	}
	idx, ok := f.Impl.ColumnRepresentations().AcceptsForWrite(rep)
	if !ok {
		Fatalf(f.QualifiedName(), "SetColumnRepresentative: %v is not an accepted serialization representation", rep)
	}
	f.representative = Representative{Row: rep, IsDefault: idx == 0}
	f.recomputeIsSimple()
}

// AddReadCallback installs fn; any installed callback disables the simple
// path (spec §4.4).
func (f *Field) AddReadCallback(fn ReadCallback) CallbackHandle {
	id := f.nextCallbackID
	f.nextCallbackID++
	f.readCallbacks = append(f.readCallbacks, readCallbackEntry{id: id, fn: fn})
	f.recomputeIsSimple()
	return id
}

// RemoveReadCallback removes a previously installed callback, if present.
func (f *Field) RemoveReadCallback(h CallbackHandle) {
	for i, cb := range f.readCallbacks {
		if cb.id == h {
			f.readCallbacks = append(f.readCallbacks[:i], f.readCallbacks[i+1:]...)
			break
		}
	}
	f.recomputeIsSimple()
}

// EntryToColumnElementIndex walks from f to the root, multiplying the
// running index by max(nRepetitions,1) at every fixed-length ancestor, and
// returning 0 as soon as a Collection or Variant ancestor is crossed (spec
// §4.4).
func (f *Field) EntryToColumnElementIndex(entry uint64) uint64 {
	idx := entry
	p := f.parent
	for p != nil {
		if p.structure == StructureCollection || p.structure == StructureVariant {
			return 0
		}
		rep := p.nRepetitions
		if rep < 1 {
			rep = 1
		}
		idx *= uint64(rep)
		p = p.parent
	}
	return idx
}

// PrincipalWriter returns the field's first bound write column, if any.
func (f *Field) PrincipalWriter() (ColumnWriter, bool) {
	if len(f.writers) == 0 {
		return nil, false
	}
	return f.writers[0], true
}

// PrincipalReader returns the field's first bound read column, if any.
func (f *Field) PrincipalReader() (ColumnReader, bool) {
	if len(f.readers) == 0 {
		return nil, false
	}
	return f.readers[0], true
}

// Writers/Readers expose all bound columns in representation order, for
// kinds with more than one column (string, nullable, variant, vector, ...).
func (f *Field) Writers() []ColumnWriter { return f.writers }
func (f *Field) Readers() []ColumnReader { return f.readers }

// AutoAdjustColumnTypes applies the observable write-option-driven
// representation adjustments (spec §4.4, §8, §9 open question 3). It only
// rewrites the representative when the field is not already pinned to a
// non-default row, except for the Double32_t hint which always applies.
func (f *Field) AutoAdjustColumnTypes(opts WriteOptions) {
	table := f.Impl.ColumnRepresentations()
	cur := f.representative.Row
	pinnedNonDefault := cur != nil && !f.representative.IsDefault
	base := cur
	if base == nil {
		base = table.Default()
	}
	adjusted := append(Representation(nil), base...)

	if !pinnedNonDefault {
		if !opts.CompressionEnabled {
			adjusted = preferNonSplit(adjusted)
		}
		if opts.SmallClusterMode {
			adjusted = narrowIndexTypes(adjusted)
		}
	}
	if f.hasAlias && f.typeAlias == "Double32_t" {
		adjusted = forceReal32(adjusted)
	}

	if !adjusted.Equal(base) {
		if idx, ok := table.AcceptsForWrite(adjusted); ok {
			f.representative = Representative{Row: adjusted, IsDefault: idx == 0}
		}
	} else if cur == nil {
		f.representative = Representative{Row: base, IsDefault: true}
	}
	f.recomputeIsSimple()
}

func preferNonSplit(rep Representation) Representation {
	out := make(Representation, len(rep))
	for i, e := range rep {
		out[i] = nonSplitOf(e)
	}
	return out
}

func narrowIndexTypes(rep Representation) Representation {
	out := make(Representation, len(rep))
	for i, e := range rep {
		switch e {
		case ElemIndex64:
			out[i] = ElemIndex32
		case ElemSplitIndex64:
			out[i] = ElemSplitIndex32
		default:
			out[i] = e
		}
	}
	return out
}

func forceReal32(rep Representation) Representation {
	out := make(Representation, len(rep))
	for i, e := range rep {
		switch e {
		case ElemReal64:
			out[i] = ElemReal32
		case ElemSplitReal64:
			out[i] = ElemSplitReal32
		default:
			out[i] = e
		}
	}
	return out
}

func nonSplitOf(e ColumnElementType) ColumnElementType {
	switch e {
	case ElemSplitInt16:
		return ElemInt16
	case ElemSplitUInt16:
		return ElemUInt16
	case ElemSplitInt32:
		return ElemInt32
	case ElemSplitUInt32:
		return ElemUInt32
	case ElemSplitInt64:
		return ElemInt64
	case ElemSplitUInt64:
		return ElemUInt64
	case ElemSplitReal32:
		return ElemReal32
	case ElemSplitReal64:
		return ElemReal64
	case ElemSplitIndex32:
		return ElemIndex32
	case ElemSplitIndex64:
		return ElemIndex64
	default:
		return e
	}
}

// ConnectPageSink generates columns matching the chosen (or auto-negotiated)
// representation and wires them to sink, recursing into children. Binding
// is one-shot: reconnecting is fatal (spec §3 Lifecycle, §4.7).
func (f *Field) ConnectPageSink(sink ColumnSink, firstEntry uint64) error {
	if f.connectedWrite || f.connectedRead {
		Fatalf(f.QualifiedName(), "ConnectPageSink: field is already connected")
	}
	f.AutoAdjustColumnTypes(sink.WriteOptions())
	rep := f.representative.Row
	if rep == nil {
		rep = f.Impl.ColumnRepresentations().Default()
	}
	writers := make([]ColumnWriter, 0, len(rep))
	for i, elem := range rep {
		var first uint64
		if i == 0 {
			first = f.EntryToColumnElementIndex(firstEntry)
		}
		w, err := sink.Connect(f.onDiskID, elem, first)
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}
	f.writers = writers
	f.connectedWrite = true
	f.recomputeIsSimple()
	for _, c := range f.children {
		if err := c.ConnectPageSink(sink, firstEntry); err != nil {
			return err
		}
	}
	return nil
}

// ConnectPageSource negotiates the on-disk representation against the
// descriptor, then wires columns to source, recursing into children.
// Connecting without an onDiskId, or failing to match any accepted
// deserialization row, is fatal (spec §7, §8).
func (f *Field) ConnectPageSource(source ColumnSource) error {
	if f.connectedWrite || f.connectedRead {
		Fatalf(f.QualifiedName(), "ConnectPageSource: field is already connected")
	}
	if !f.hasOnDiskID {
		Fatalf(f.QualifiedName(), "ConnectPageSource: connecting to a source without an onDiskId")
	}
	desc := source.Descriptor()
	onDiskTypes, ok := desc.ColumnTypesFor(f.onDiskID)
	table := f.Impl.ColumnRepresentations()
	// A kind with no deserialization rows (Enum, Array, Record, Pair, Tuple)
	// owns no column, so it has nothing recorded and nothing to negotiate.
	columnless := len(table.Deserialization) == 0
	if !ok && !columnless {
		Fatalf(f.QualifiedName(), "ConnectPageSource: no on-disk column types recorded for field id %d", f.onDiskID)
	}
	idx, ok := table.AcceptsForRead(Representation(onDiskTypes))
	if !ok && !columnless {
		Fatalf(f.QualifiedName(), "ConnectPageSource: on-disk column types %v not accepted; known deserialization rows: %v", onDiskTypes, table.Deserialization)
	}
	var rep Representation
	if ok {
		rep = table.Deserialization[idx]
	}
	readers := make([]ColumnReader, 0, len(rep))
	for _, elem := range rep {
		r, err := source.Connect(f.onDiskID, elem)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}
	f.readers = readers
	defIdx, isDef := table.AcceptsForWrite(rep)
	f.representative = Representative{Row: rep, IsDefault: isDef && defIdx == 0}
	if tv, ok := desc.TypeVersion(f.onDiskID); ok {
		f.onDiskTypeVersion = tv
		f.hasTypeVersion = true
	}
	f.connectedRead = true
	f.recomputeIsSimple()
	for _, c := range f.children {
		if err := c.ConnectPageSource(source); err != nil {
			return err
		}
	}
	return nil
}

// Accept performs the Visitor double-dispatch.
func (f *Field) Accept(v Visitor) { f.Impl.Accept(f, v) }

// CommitCluster resets this field's cumulative write counter, then
// recurses into every child (spec §4.5 "CommitCluster"). Called at every
// cluster boundary so per-cluster index/offset columns restart from zero
// the way the on-disk format requires.
func (f *Field) CommitCluster() {
	f.Impl.CommitCluster()
	for _, c := range f.children {
		c.CommitCluster()
	}
}
