// Package bboltstore provides a durable, file-backed implementation of the
// field layer's column I/O collaborator (spec §6 ColumnSink/ColumnSource),
// using the same Sink()/Source() view-split shape as columnstore.Store but
// persisting every column to a single bbolt file instead of keeping it in
// process memory.
//
// Grounded on columnstore/memory.go's adapter-over-interface shape; bbolt's
// per-bucket NextSequence is used to allocate column indices durably and in
// creation order, the same role memory.go's append-only slice plays.
package bboltstore

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/rfield/rfield/field"
)

var (
	bucketColumns = []byte("columns")
	bucketMeta    = []byte("meta")

	metaRunIDKey = []byte("run_id")
)

// Store is a durable ColumnSink + ColumnSource + Descriptor backed by a
// single bbolt file. One Store instance owns the file for its lifetime;
// Close releases it.
type Store struct {
	db    *bolt.DB
	opts  field.WriteOptions
	runID uuid.UUID

	mu    sync.Mutex
	bound map[string]bool // in-process cache of which columns this instance has already bound for read
}

// Open opens (creating if necessary) a bbolt file at path and returns a
// Store backed by it. A random run id is recorded on first creation and
// reused verbatim on subsequent opens of the same file, so RunID is stable
// for the file's lifetime.
func Open(path string, opts field.WriteOptions) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("bboltstore: open %s: %w", path, err)
	}
	s := &Store{db: db, opts: opts, bound: make(map[string]bool)}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketColumns); err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if existing := mb.Get(metaRunIDKey); existing != nil {
			id, err := uuid.ParseBytes(existing)
			if err != nil {
				return fmt.Errorf("bboltstore: corrupt run id: %w", err)
			}
			s.runID = id
			return nil
		}
		s.runID = uuid.New()
		return mb.Put(metaRunIDKey, []byte(s.runID.String()))
	})
}

// RunID identifies this store's file across process restarts.
func (s *Store) RunID() uuid.UUID { return s.runID }

// Close releases the underlying bbolt file.
func (s *Store) Close() error { return s.db.Close() }

// SetTypeVersion records the on-disk type version a ConnectPageSource call
// should observe for id (spec §6 Descriptor.TypeVersion).
func (s *Store) SetTypeVersion(id field.FieldID, version uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, version)
		return mb.Put(typeVerKey(id), b)
	})
}

// Sink returns the field.ColumnSink view of this store (write side). Go
// cannot satisfy both ColumnSink.Connect and ColumnSource.Connect on one
// type (identical method name, different signatures), so Store exposes two
// thin wrapper views instead of implementing both interfaces itself.
func (s *Store) Sink() field.ColumnSink { return sinkView{s} }

// Source returns the field.ColumnSource view of this store (read side).
func (s *Store) Source() field.ColumnSource { return sourceView{s} }

func fieldBucketKey(id field.FieldID) []byte {
	return []byte(fmt.Sprintf("f:%020d", uint64(id)))
}

func colBucketKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("c:%020d", seq))
}

func entryKey(i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return b
}

func typeVerKey(id field.FieldID) []byte {
	return []byte(fmt.Sprintf("tv:%020d", uint64(id)))
}

var (
	colKeyElem  = []byte("elem")
	colKeyBytes = []byte("bytes")
)

type sinkView struct{ s *Store }

func (v sinkView) WriteOptions() field.WriteOptions { return v.s.opts }

// Connect allocates a brand-new column for id via the field bucket's
// NextSequence, the same "always a new column" semantics memory.go's
// append-only byField slice has.
func (v sinkView) Connect(id field.FieldID, elem field.ColumnElementType, firstElementIndex uint64) (field.ColumnWriter, error) {
	s := v.s
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketColumns)
		fb, err := root.CreateBucketIfNotExists(fieldBucketKey(id))
		if err != nil {
			return err
		}
		seq, err = fb.NextSequence()
		if err != nil {
			return err
		}
		cb, err := fb.CreateBucketIfNotExists(colBucketKey(seq))
		if err != nil {
			return err
		}
		return cb.Put(colKeyElem, []byte{byte(elem)})
	})
	if err != nil {
		return nil, fmt.Errorf("bboltstore: Connect(%d): %w", id, err)
	}
	return &column{s: s, fieldID: id, seq: seq, elem: elem}, nil
}

func (v sinkView) Flush() error { return nil }

type sourceView struct{ s *Store }

func (v sourceView) Descriptor() field.Descriptor { return storeDescriptor{v.s} }

// Connect binds the first not-yet-read column of the requested element
// type previously written for id, in creation order.
func (v sourceView) Connect(id field.FieldID, elem field.ColumnElementType) (field.ColumnReader, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *column
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketColumns)
		fb := root.Bucket(fieldBucketKey(id))
		if fb == nil {
			return fmt.Errorf("no columns recorded for field %d", id)
		}
		c := fb.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			cb := fb.Bucket(k)
			if cb == nil {
				continue
			}
			key := string(k)
			if s.bound[fieldColKey(id, key)] {
				continue
			}
			if cb.Get(colKeyElem)[0] != byte(elem) {
				continue
			}
			seq, perr := parseColSeq(key)
			if perr != nil {
				return perr
			}
			s.bound[fieldColKey(id, key)] = true
			found = &column{s: s, fieldID: id, seq: seq, elem: elem}
			return nil
		}
		return fmt.Errorf("no unbound column of type %v for field %d", elem, id)
	})
	if err != nil {
		return nil, fmt.Errorf("bboltstore: %w", err)
	}
	return found, nil
}

func fieldColKey(id field.FieldID, colKey string) string {
	return fmt.Sprintf("%d/%s", uint64(id), colKey)
}

func parseColSeq(colKey string) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(colKey, "c:%020d", &seq); err != nil {
		return 0, fmt.Errorf("bboltstore: malformed column key %q: %w", colKey, err)
	}
	return seq, nil
}

type storeDescriptor struct{ s *Store }

func (d storeDescriptor) ColumnTypesFor(id field.FieldID) ([]field.ColumnElementType, bool) {
	var out []field.ColumnElementType
	err := d.s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketColumns)
		fb := root.Bucket(fieldBucketKey(id))
		if fb == nil {
			return fmt.Errorf("no such field")
		}
		c := fb.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			cb := fb.Bucket(k)
			if cb == nil {
				continue
			}
			out = append(out, field.ColumnElementType(cb.Get(colKeyElem)[0]))
		}
		return nil
	})
	if err != nil {
		return nil, false
	}
	return out, true
}

func (d storeDescriptor) TypeVersion(id field.FieldID) (uint32, bool) {
	var v uint32
	var ok bool
	_ = d.s.db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		b := mb.Get(typeVerKey(id))
		if b == nil {
			return nil
		}
		v = binary.BigEndian.Uint32(b)
		ok = true
		return nil
	})
	return v, ok
}

// column is a single bound bbolt-backed column, implementing both
// field.ColumnWriter and field.ColumnReader (never both roles at once on
// the same instance, but the same struct serves either, mirroring
// memory.go's single memColumn type).
type column struct {
	s       *Store
	fieldID field.FieldID
	seq     uint64
	elem    field.ColumnElementType
}

func (c *column) ElementType() field.ColumnElementType { return c.elem }

func (c *column) colBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	root := tx.Bucket(bucketColumns)
	fb := root.Bucket(fieldBucketKey(c.fieldID))
	if fb == nil {
		return nil, fmt.Errorf("bboltstore: field %d has no bucket", c.fieldID)
	}
	cb := fb.Bucket(colBucketKey(c.seq))
	if cb == nil {
		return nil, fmt.Errorf("bboltstore: field %d column %d missing", c.fieldID, c.seq)
	}
	return cb, nil
}

func (c *column) Append(v any) (int, error) {
	if c.elem == field.ElemByte {
		b, ok := v.(byte)
		if !ok {
			return 0, fmt.Errorf("bboltstore: char column Append expects a byte, got %T", v)
		}
		err := c.s.db.Update(func(tx *bolt.Tx) error {
			cb, err := c.colBucket(tx)
			if err != nil {
				return err
			}
			cur := append([]byte(nil), cb.Get(colKeyBytes)...)
			cur = append(cur, b)
			return cb.Put(colKeyBytes, cur)
		})
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	data, err := msgpack.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("bboltstore: encode column value: %w", err)
	}
	var n int
	err = c.s.db.Update(func(tx *bolt.Tx) error {
		cb, err := c.colBucket(tx)
		if err != nil {
			return err
		}
		seq, err := cb.NextSequence()
		if err != nil {
			return err
		}
		n = c.packedSize(v)
		return cb.Put(entryKey(seq-1), data)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *column) AppendBulk(v any, count int) (int, error) {
	if c.elem == field.ElemByte {
		if b, ok := v.([]byte); ok {
			err := c.s.db.Update(func(tx *bolt.Tx) error {
				cb, err := c.colBucket(tx)
				if err != nil {
					return err
				}
				cur := append([]byte(nil), cb.Get(colKeyBytes)...)
				cur = append(cur, b[:count]...)
				return cb.Put(colKeyBytes, cur)
			})
			if err != nil {
				return 0, err
			}
			return count, nil
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("bboltstore: AppendBulk expects a slice, got %T", v)
	}
	total := 0
	for i := 0; i < count; i++ {
		n, err := c.Append(rv.Index(i).Interface())
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *column) PackedSize(v any) int { return c.packedSize(v) }

func (c *column) packedSize(v any) int {
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

func (c *column) getEntry(tx *bolt.Tx, i uint64) (any, error) {
	cb, err := c.colBucket(tx)
	if err != nil {
		return nil, err
	}
	raw := cb.Get(entryKey(i))
	if raw == nil {
		return nil, fmt.Errorf("bboltstore: index %d out of range", i)
	}
	var v any
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("bboltstore: decode entry %d: %w", i, err)
	}
	return v, nil
}

func (c *column) GetCollectionInfo(globalIndex uint64) (start uint64, count uint64, err error) {
	var cur, prev uint64
	txErr := c.s.db.View(func(tx *bolt.Tx) error {
		v, gerr := c.getEntry(tx, globalIndex)
		if gerr != nil {
			return gerr
		}
		cur, err = asUint64(v)
		if err != nil {
			return err
		}
		if globalIndex > 0 {
			pv, gerr := c.getEntry(tx, globalIndex-1)
			if gerr != nil {
				return gerr
			}
			prev, err = asUint64(pv)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, 0, txErr
	}
	return prev, cur - prev, nil
}

func (c *column) GetSwitchInfo(globalIndex uint64) (tag int8, withinTagIndex uint64, err error) {
	txErr := c.s.db.View(func(tx *bolt.Tx) error {
		cb, cerr := c.colBucket(tx)
		if cerr != nil {
			return cerr
		}
		raw := cb.Get(entryKey(globalIndex))
		if raw == nil {
			return fmt.Errorf("bboltstore: switch index %d out of range", globalIndex)
		}
		var rec field.SwitchRecord
		if derr := msgpack.Unmarshal(raw, &rec); derr != nil {
			return fmt.Errorf("bboltstore: decode switch record %d: %w", globalIndex, derr)
		}
		tag = rec.Tag
		withinTagIndex = rec.WithinTagIndex
		return nil
	})
	return tag, withinTagIndex, txErr
}

func (c *column) Map(i uint64, out any) error {
	if c.elem == field.ElemByte {
		return c.s.db.View(func(tx *bolt.Tx) error {
			cb, err := c.colBucket(tx)
			if err != nil {
				return err
			}
			b := cb.Get(colKeyBytes)
			if int(i) >= len(b) {
				return fmt.Errorf("bboltstore: Map index %d out of range (len %d)", i, len(b))
			}
			return assign(out, b[i])
		})
	}
	return c.s.db.View(func(tx *bolt.Tx) error {
		v, err := c.getEntry(tx, i)
		if err != nil {
			return err
		}
		return assign(out, v)
	})
}

func (c *column) ReadV(start uint64, n uint64, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("bboltstore: ReadV expects a pointer to a slice, got %T", out)
	}
	sl := rv.Elem()

	if c.elem == field.ElemByte {
		return c.s.db.View(func(tx *bolt.Tx) error {
			cb, err := c.colBucket(tx)
			if err != nil {
				return err
			}
			b := cb.Get(colKeyBytes)
			if int(start+n) > len(b) {
				return fmt.Errorf("bboltstore: ReadV range [%d,%d) out of range (len %d)", start, start+n, len(b))
			}
			result := reflect.MakeSlice(sl.Type(), int(n), int(n))
			reflect.Copy(result, reflect.ValueOf(b[start:start+n]))
			sl.Set(result)
			return nil
		})
	}

	return c.s.db.View(func(tx *bolt.Tx) error {
		elemType := sl.Type().Elem()
		result := reflect.MakeSlice(sl.Type(), int(n), int(n))
		for i := uint64(0); i < n; i++ {
			v, err := c.getEntry(tx, start+i)
			if err != nil {
				return err
			}
			ev := reflect.ValueOf(v)
			if ev.Type() != elemType && ev.Type().ConvertibleTo(elemType) {
				ev = ev.Convert(elemType)
			}
			result.Index(int(i)).Set(ev)
		}
		sl.Set(result)
		return nil
	})
}

func asUint64(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("bboltstore: value %v (%T) is not an integer index value", v, v)
	}
}

func assign(out any, v any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("bboltstore: Map expects a pointer, got %T", out)
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
	return fmt.Errorf("bboltstore: cannot assign %T into %s", v, target.Type())
}

var (
	_ field.ColumnWriter = (*column)(nil)
	_ field.ColumnReader = (*column)(nil)
	_ field.ColumnSink   = sinkView{}
	_ field.ColumnSource = sourceView{}
)
