// Package columnstore provides reference implementations of the field
// layer's external column I/O collaborator (spec §6 ColumnSink/ColumnSource,
// explicitly out of scope for the field layer itself). Store is an
// in-process, non-persistent backing used by the kinds/, columnstore/ and
// concurrent/ tests and by the CLI's "roundtrip" demo command; columnstore/bboltstore provides a
// durable, file-backed alternative built the same way.
//
// Grounded on source.go's adapter-over-interface shape: one small struct
// implementing the collaborator interface, built to be trivially swappable.
package columnstore

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/rfield/rfield/field"
)

// Store is an in-memory ColumnSink + ColumnSource + Descriptor all at once,
// so a single instance can back a write-then-read round trip in tests
// without a real file on disk.
type Store struct {
	mu      sync.Mutex
	opts    field.WriteOptions
	byField map[field.FieldID][]*memColumn
	typever map[field.FieldID]uint32
	pool    bytebufferpool.Pool
}

// NewStore returns an empty Store using the given write-time options
// (spec §6 ColumnSink.GetWriteOptions).
func NewStore(opts field.WriteOptions) *Store {
	return &Store{
		opts:    opts,
		byField: make(map[field.FieldID][]*memColumn),
		typever: make(map[field.FieldID]uint32),
	}
}

// SetTypeVersion records the on-disk type version a ConnectPageSource call
// should observe for id (spec §6 Descriptor.TypeVersion).
func (s *Store) SetTypeVersion(id field.FieldID, version uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typever[id] = version
}

// CommitCluster resets root's (and every descendant's) cumulative write
// counters via field.Field.CommitCluster, and marks the point each bound
// column has reached as the start of a new cluster, so later reads compute
// index deltas against a restarted count rather than the whole dataset's
// running total (spec §4.5 "CommitCluster"). GetSwitchInfo does not consult
// these boundaries: a switch record's within-tag index is returned as stored.
func (s *Store) CommitCluster(root *field.Field) {
	root.CommitCluster()
	s.markClusterBoundaries(root)
}

func (s *Store) markClusterBoundaries(f *field.Field) {
	if id, ok := f.OnDiskID(); ok {
		s.mu.Lock()
		for _, c := range s.byField[id] {
			c.markClusterBoundary()
		}
		s.mu.Unlock()
	}
	for _, c := range f.Children() {
		s.markClusterBoundaries(c)
	}
}

// Sink returns the field.ColumnSink view of this store (write side). Go
// cannot satisfy both ColumnSink.Connect and ColumnSource.Connect on one
// type (identical method name, different signatures), so Store exposes two
// thin wrapper views instead of implementing both interfaces itself.
func (s *Store) Sink() field.ColumnSink { return sinkView{s} }

// Source returns the field.ColumnSource view of this store (read side).
func (s *Store) Source() field.ColumnSource { return sourceView{s} }

type sinkView struct{ s *Store }

func (v sinkView) WriteOptions() field.WriteOptions { return v.s.opts }

func (v sinkView) Connect(id field.FieldID, elem field.ColumnElementType, firstElementIndex uint64) (field.ColumnWriter, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	col := &memColumn{elem: elem, buf: s.pool.Get()}
	s.byField[id] = append(s.byField[id], col)
	return col, nil
}

func (v sinkView) Flush() error { return nil }

type sourceView struct{ s *Store }

func (v sourceView) Descriptor() field.Descriptor { return storeDescriptor{v.s} }

// Connect binds the next not-yet-read column of the requested element type
// previously written for id, in the order they were created.
func (v sourceView) Connect(id field.FieldID, elem field.ColumnElementType) (field.ColumnReader, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := s.byField[id]
	for _, c := range cols {
		if c.elem == elem && !c.boundForRead {
			c.boundForRead = true
			return c, nil
		}
	}
	return nil, fmt.Errorf("columnstore: no column of type %v bound for field %d", elem, id)
}

type storeDescriptor struct{ s *Store }

func (d storeDescriptor) ColumnTypesFor(id field.FieldID) ([]field.ColumnElementType, bool) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	cols, ok := d.s.byField[id]
	if !ok {
		return nil, false
	}
	out := make([]field.ColumnElementType, len(cols))
	for i, c := range cols {
		out[i] = c.elem
	}
	return out, true
}

func (d storeDescriptor) TypeVersion(id field.FieldID) (uint32, bool) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	v, ok := d.s.typever[id]
	return v, ok
}

// memColumn is a single bound column: an ordered list of decoded element
// values. Index/switch semantics (GetCollectionInfo/GetSwitchInfo) are
// derived from the same cumulative-count convention String and Vector both
// write (spec §4.5): each entry's stored value is a monotonically
// non-decreasing running total, and (start,count) is the delta from the
// previous entry.
type memColumn struct {
	elem         field.ColumnElementType
	vals         []any
	buf          *bytebufferpool.ByteBuffer
	boundForRead bool
	// clusterStarts records, for each entry index, whether that entry opens
	// a new cluster (spec §4.5 "CommitCluster"): GetCollectionInfo treats a
	// cluster-opening entry's previous cumulative value as 0 rather than
	// looking at the prior entry, which belongs to a different cluster, and
	// adds the element totals of all earlier clusters to the returned start,
	// since the child column it addresses is one flat, dataset-wide slice.
	clusterStarts map[int]struct{}
}

func (c *memColumn) markClusterBoundary() {
	if c.clusterStarts == nil {
		c.clusterStarts = make(map[int]struct{})
	}
	c.clusterStarts[len(c.vals)] = struct{}{}
}

func (c *memColumn) isClusterStart(i uint64) bool {
	_, ok := c.clusterStarts[int(i)]
	return ok
}

func (c *memColumn) ElementType() field.ColumnElementType { return c.elem }

func (c *memColumn) Append(v any) (int, error) {
	if c.elem == field.ElemByte {
		b, ok := v.(byte)
		if !ok {
			return 0, fmt.Errorf("columnstore: char column Append expects a byte, got %T", v)
		}
		_ = c.buf.WriteByte(b)
		return 1, nil
	}
	c.vals = append(c.vals, v)
	return c.packedSize(v), nil
}

func (c *memColumn) AppendBulk(v any, count int) (int, error) {
	if c.elem == field.ElemByte {
		if b, ok := v.([]byte); ok {
			n, _ := c.buf.Write(b[:count])
			return n, nil
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("columnstore: AppendBulk expects a slice, got %T", v)
	}
	total := 0
	for i := 0; i < count; i++ {
		el := rv.Index(i).Interface()
		n, err := c.Append(el)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *memColumn) PackedSize(v any) int { return c.packedSize(v) }

func (c *memColumn) packedSize(v any) int {
	switch c.elem {
	case field.ElemBit:
		return 1
	case field.ElemByte, field.ElemInt8, field.ElemUInt8:
		return 1
	case field.ElemInt16, field.ElemUInt16, field.ElemSplitInt16, field.ElemSplitUInt16:
		return 2
	case field.ElemInt32, field.ElemUInt32, field.ElemSplitInt32, field.ElemSplitUInt32, field.ElemReal32, field.ElemSplitReal32, field.ElemIndex32, field.ElemSplitIndex32:
		return 4
	case field.ElemInt64, field.ElemUInt64, field.ElemSplitInt64, field.ElemSplitUInt64, field.ElemReal64, field.ElemSplitReal64, field.ElemIndex64, field.ElemSplitIndex64:
		return 8
	case field.ElemSwitch:
		return 9
	default:
		return 0
	}
}

func (c *memColumn) GetCollectionInfo(globalIndex uint64) (start uint64, count uint64, err error) {
	cur, err := c.asUint64(globalIndex)
	if err != nil {
		return 0, 0, err
	}
	var prev uint64
	if globalIndex > 0 && !c.isClusterStart(globalIndex) {
		prev, err = c.asUint64(globalIndex - 1)
		if err != nil {
			return 0, 0, err
		}
	}
	var base uint64
	for b := range c.clusterStarts {
		if b > 0 && uint64(b) <= globalIndex {
			last, err := c.asUint64(uint64(b - 1))
			if err != nil {
				return 0, 0, err
			}
			base += last
		}
	}
	return base + prev, cur - prev, nil
}

func (c *memColumn) GetSwitchInfo(globalIndex uint64) (tag int8, withinTagIndex uint64, err error) {
	if int(globalIndex) >= len(c.vals) {
		return 0, 0, fmt.Errorf("columnstore: switch index %d out of range (len %d)", globalIndex, len(c.vals))
	}
	rec, ok := c.vals[globalIndex].(field.SwitchRecord)
	if !ok {
		return 0, 0, fmt.Errorf("columnstore: element %d is not a switch record", globalIndex)
	}
	return rec.Tag, rec.WithinTagIndex, nil
}

func (c *memColumn) Map(i uint64, out any) error {
	if c.elem == field.ElemByte {
		b := c.buf.B
		if int(i) >= len(b) {
			return fmt.Errorf("columnstore: Map index %d out of range (len %d)", i, len(b))
		}
		return assign(out, b[i])
	}
	if int(i) >= len(c.vals) {
		return fmt.Errorf("columnstore: Map index %d out of range (len %d)", i, len(c.vals))
	}
	return assign(out, c.vals[i])
}

func (c *memColumn) ReadV(start uint64, n uint64, out any) error {
	if c.elem == field.ElemByte {
		b := c.buf.B
		if int(start+n) > len(b) {
			return fmt.Errorf("columnstore: ReadV range [%d,%d) out of range (len %d)", start, start+n, len(b))
		}
		rv := reflect.ValueOf(out)
		if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
			return fmt.Errorf("columnstore: ReadV expects a pointer to a slice, got %T", out)
		}
		sl := rv.Elem()
		result := reflect.MakeSlice(sl.Type(), int(n), int(n))
		reflect.Copy(result, reflect.ValueOf(b[start:start+n]))
		sl.Set(result)
		return nil
	}
	if int(start+n) > len(c.vals) {
		return fmt.Errorf("columnstore: ReadV range [%d,%d) out of range (len %d)", start, start+n, len(c.vals))
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("columnstore: ReadV expects a pointer to a slice, got %T", out)
	}
	sl := rv.Elem()
	elemType := sl.Type().Elem()
	result := reflect.MakeSlice(sl.Type(), int(n), int(n))
	for i := uint64(0); i < n; i++ {
		ev := reflect.ValueOf(c.vals[start+i])
		if ev.Type() != elemType && ev.Type().ConvertibleTo(elemType) {
			ev = ev.Convert(elemType)
		}
		result.Index(int(i)).Set(ev)
	}
	sl.Set(result)
	return nil
}

func (c *memColumn) asUint64(i uint64) (uint64, error) {
	if int(i) >= len(c.vals) {
		return 0, fmt.Errorf("columnstore: index %d out of range (len %d)", i, len(c.vals))
	}
	v := reflect.ValueOf(c.vals[i])
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int()), nil
	default:
		return 0, fmt.Errorf("columnstore: element %d (%T) is not an integer index value", i, c.vals[i])
	}
}

func assign(out any, v any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("columnstore: Map expects a pointer, got %T", out)
	}
	target := rv.Elem()
	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(target.Type()) {
		target.Set(sv)
		return nil
	}
	if sv.Type().ConvertibleTo(target.Type()) {
		target.Set(sv.Convert(target.Type()))
		return nil
	}
	return fmt.Errorf("columnstore: cannot assign %T into %s", v, target.Type())
}

var (
	_ field.ColumnWriter = (*memColumn)(nil)
	_ field.ColumnReader = (*memColumn)(nil)
	_ field.ColumnSink   = sinkView{}
	_ field.ColumnSource = sourceView{}
)
