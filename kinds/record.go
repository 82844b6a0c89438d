package kinds

import (
	"fmt"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

// Record is the record-by-reflection field kind (spec §4.5 "Record by
// reflection"): built from the introspection service, with base classes
// and persistent members as children at their in-class offsets. Record
// itself owns no columns; children carry their own.
type Record struct {
	size      uintptr
	align     uintptr
	offsets   []uintptr // parallel to Field.Children()
	trivial   bool
	className string
	rules     []introspect.SchemaRule
}

// NewRecord constructs the record kind. offsets must be parallel, in
// order, to the children the caller subsequently Attach()es (bases first,
// then members, matching factory construction order).
func NewRecord(className string, size, align uintptr, offsets []uintptr, trivial bool, rules []introspect.SchemaRule) *Record {
	os := make([]uintptr, len(offsets))
	copy(os, offsets)
	return &Record{size: size, align: align, offsets: os, trivial: trivial, className: className, rules: rules}
}

func (r *Record) KindName() string { return "record:" + r.className }

func (r *Record) ValueSize() uintptr      { return r.size }
func (r *Record) ValueAlignment() uintptr { return r.align }

func (r *Record) DefaultTraits() field.Traits {
	if r.trivial {
		return field.TraitTrivialType
	}
	return 0
}

// ColumnRepresentations is empty: Record owns no column, only its children
// do.
func (r *Record) ColumnRepresentations() field.ColumnRepresentations {
	return field.ColumnRepresentations{}
}

func (r *Record) memberAddr(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, r.offsets[i])
}

func (r *Record) Append(f *field.Field, from unsafe.Pointer) (int, error) {
	total := 0
	for i, child := range f.Children() {
		n, err := child.Append(r.memberAddr(from, i))
		if err != nil {
			return total, fmt.Errorf("rfield: %s: %w", f.QualifiedName(), err)
		}
		total += n
	}
	return total, nil
}

func (r *Record) Read(f *field.Field, elem uint64, to unsafe.Pointer) error {
	for i, child := range f.Children() {
		if err := child.ReadAtElement(elem, r.memberAddr(to, i)); err != nil {
			return fmt.Errorf("rfield: %s: %w", f.QualifiedName(), err)
		}
	}
	return nil
}

func (r *Record) GenerateValue(f *field.Field, where unsafe.Pointer) {
	for i, child := range f.Children() {
		child.GenerateValue(r.memberAddr(where, i))
	}
}

func (r *Record) DestroyValue(f *field.Field, ptr unsafe.Pointer, dtorOnly bool) {
	if r.trivial {
		return
	}
	for i, child := range f.Children() {
		child.DestroyValue(r.memberAddr(ptr, i), dtorOnly)
	}
}

func (r *Record) SplitValue(f *field.Field, value unsafe.Pointer) ([]field.ValueBinding, error) {
	children := f.Children()
	out := make([]field.ValueBinding, len(children))
	for i, child := range children {
		out[i] = field.ValueBinding{Field: child, Addr: r.memberAddr(value, i)}
	}
	return out, nil
}

func (r *Record) Accept(f *field.Field, v field.Visitor) { v.VisitRecord(f) }

func (r *Record) Clone() field.Kind {
	return NewRecord(r.className, r.size, r.align, r.offsets, r.trivial, r.rules)
}

func (r *Record) CommitCluster() {}

// InstallSchemaRules attaches each rule whose target member is transient as
// a read callback on the record field f itself (a transient member has no
// child field), so Apply receives the record's address after its persistent
// members are read; a rule targeting a non-transient member is skipped and
// reported through warn (spec §4.5, §7: "non-transient targets cause the
// rule to be skipped with a warning").
func (r *Record) InstallSchemaRules(f *field.Field, ci *introspect.ClassInfo, warn func(msg string)) {
	transient := make(map[string]bool, len(ci.Members))
	for _, m := range ci.Members {
		transient[m.Name] = m.Transient
	}
	for _, rule := range r.rules {
		if !transient[rule.TargetMember] {
			if warn != nil {
				warn(fmt.Sprintf("rfield: %s: schema rule targets non-transient member %q, skipped", f.QualifiedName(), rule.TargetMember))
			}
			continue
		}
		apply := rule.Apply
		f.AddReadCallback(func(to unsafe.Pointer) { apply(to) })
	}
}

// BaseFieldName returns the reserved base-class child name, spec §4.5
// "__base_i__".
func BaseFieldName(i int) string { return fmt.Sprintf("__base_%d__", i) }
