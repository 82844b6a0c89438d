package kinds

import (
	"strconv"

	"github.com/rfield/rfield/field"
)

// layoutRecord is the by-layout record base shared by Pair and Tuple (spec
// §4.5 "Pair / Tuple (by layout)"): children and their offsets are supplied
// explicitly (from the introspection service, since a Go struct's own
// layout already gives reflect the same information Record uses — Pair and
// Tuple exist as distinct kinds only so Accept can dispatch to the right
// Visitor method and arity is enforced at construction).
type layoutRecord struct {
	*Record
	visit func(f *field.Field, v field.Visitor)
}

func (l *layoutRecord) Accept(f *field.Field, v field.Visitor) { l.visit(f, v) }

func (l *layoutRecord) Clone() field.Kind {
	return &layoutRecord{Record: l.Record.Clone().(*Record), visit: l.visit}
}

// Pair is the by-layout record for std::pair<A,B> (spec §4.5). Construction
// and destruction delegate to the introspected class the same way Record's
// do; Pair only differs in fixed arity (exactly 2 children: "first",
// "second") and its Visitor dispatch.
type Pair struct{ *layoutRecord }

// NewPair constructs the pair kind. offsets must have length 2, in
// (first, second) order.
func NewPair(size, align uintptr, offsets []uintptr, trivial bool) *Pair {
	if len(offsets) != 2 {
		panic("rfield: kinds.NewPair: std::pair requires exactly 2 members")
	}
	base := NewRecord("std::pair", size, align, offsets, trivial, nil)
	return &Pair{layoutRecord: &layoutRecord{
		Record: base,
		visit:  func(f *field.Field, v field.Visitor) { v.VisitPair(f) },
	}}
}

func (p *Pair) Clone() field.Kind {
	return &Pair{layoutRecord: p.layoutRecord.Clone().(*layoutRecord)}
}

// Tuple is the by-layout record for std::tuple<...> (spec §4.5). Member
// children are named "_0, _1, ..." by the factory; an empty tuple is
// rejected at construction (spec §8 "empty tuple is rejected").
type Tuple struct{ *layoutRecord }

// NewTuple constructs the tuple kind. offsets must be non-empty.
func NewTuple(size, align uintptr, offsets []uintptr, trivial bool) *Tuple {
	if len(offsets) == 0 {
		panic("rfield: kinds.NewTuple: std::tuple requires at least 1 member")
	}
	base := NewRecord("std::tuple", size, align, offsets, trivial, nil)
	return &Tuple{layoutRecord: &layoutRecord{
		Record: base,
		visit:  func(f *field.Field, v field.Visitor) { v.VisitTuple(f) },
	}}
}

func (t *Tuple) Clone() field.Kind {
	return &Tuple{layoutRecord: t.layoutRecord.Clone().(*layoutRecord)}
}

// TupleMemberName returns the reserved tuple child name "_i" (spec §4.5
// "tuple members are named _0, _1, …").
func TupleMemberName(i int) string {
	return "_" + strconv.Itoa(i)
}
