// Package factory implements the Field Factory (spec §4.3): the single
// entry point that turns a user-supplied type-name spelling into a bound
// field tree. It sits on top of typename (normalization/parsing), kinds
// (the concrete field.Kind arms) and introspect (the class/enum
// collaborator for anything the built-in dispatch doesn't recognize).
//
// Grounded on dsl/object_builder.go + dsl/bind.go: a builder resolves a
// declared shape down to a concrete schema exactly once, the way Create
// resolves a type-name spelling down to a concrete field.Kind exactly once.
package factory

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
	"github.com/rfield/rfield/kinds"
	"github.com/rfield/rfield/typename"
)

// elementChildName is the reserved single-child name used by every
// container kind whose sole child is an element type rather than a named
// member (spec §4.5 Array/Vector/SmallVector/UniquePtr/Nullable/
// ProxyCollection; matches the "_0" convention kinds/*_test.go already
// exercises for these kinds).
const elementChildName = "_0"

// enumUnderlyingChildName is the reserved name for an enum's wrapped
// integer child (spec §4.5 "Enum").
const enumUnderlyingChildName = "__underlying__"

// primitiveEntry pairs a canonical primitive name with the Go type backing
// it and the kinds.Kind constructor that builds it.
type primitiveEntry struct {
	goType reflect.Type
	build  func() field.Kind
}

var primitives = map[string]primitiveEntry{
	"bool": {reflect.TypeOf(false), func() field.Kind { return kinds.NewBool() }},
	"char": {reflect.TypeOf(byte(0)), func() field.Kind { return kinds.NewChar() }},
	"i8":   {reflect.TypeOf(int8(0)), func() field.Kind { return kinds.NewInt8() }},
	"u8":   {reflect.TypeOf(uint8(0)), func() field.Kind { return kinds.NewUInt8() }},
	"i16":  {reflect.TypeOf(int16(0)), func() field.Kind { return kinds.NewInt16() }},
	"u16":  {reflect.TypeOf(uint16(0)), func() field.Kind { return kinds.NewUInt16() }},
	"i32":  {reflect.TypeOf(int32(0)), func() field.Kind { return kinds.NewInt32() }},
	"u32":  {reflect.TypeOf(uint32(0)), func() field.Kind { return kinds.NewUInt32() }},
	"i64":  {reflect.TypeOf(int64(0)), func() field.Kind { return kinds.NewInt64() }},
	"u64":  {reflect.TypeOf(uint64(0)), func() field.Kind { return kinds.NewUInt64() }},
	"f32":  {reflect.TypeOf(float32(0)), func() field.Kind { return kinds.NewFloat32() }},
	"f64":  {reflect.TypeOf(float64(0)), func() field.Kind { return kinds.NewFloat64() }},
}

const stringTypeName = "std::string"

var stringGoType = reflect.TypeOf("")

// Create is the factory entry point (spec §4.3): name/typeName go in, a
// bound field tree comes out. typeName is the user's original spelling; if
// it differs from the resolved canonical type, the original is preserved as
// the field's type alias (step 6), which is how a Double32_t-style
// storage-narrowing hint survives to AutoAdjustColumnTypes.
func Create(svc introspect.Service, name, typeName string) (*field.Field, error) {
	alias := typename.Normalize(typeName)
	canonical := typename.Normalize(typename.Canonicalize(alias, svc))
	if canonical == "" {
		return nil, field.Issues{{Path: name, Code: field.CodeEmptyTypeName, Message: "empty canonical type name"}}
	}

	f, err := build(svc, name, canonical)
	if err != nil {
		return nil, err
	}
	if alias != canonical {
		f.SetTypeAlias(alias)
	}
	return f, nil
}

// build dispatches steps 3-5: array types, then built-in kinds by
// prefix/equality, then the introspection-service fallback.
func build(svc introspect.Service, name, canonical string) (*field.Field, error) {
	if typename.HasArraySuffix(canonical) {
		return createFixedArray(svc, name, canonical)
	}
	if f, handled, err := createBuiltin(svc, name, canonical); handled {
		return f, err
	}
	return createFromIntrospection(svc, name, canonical)
}

// buildElement recursively resolves one nested type spelling into a fully
// bound child field (spec §4.3 step 3's "recursively build the element
// field", generalized to every composite kind's element/member/alternative
// types). Reusing Create means a nested alias inside a template argument
// gets its own step 1/2/6 treatment.
func buildElement(svc introspect.Service, name, raw string) (*field.Field, error) {
	return Create(svc, name, raw)
}

// matchTemplate reports whether canonical is shaped like prefix+"...>" and
// returns the argument-list body between the outer angle brackets.
func matchTemplate(canonical, prefix string) (body string, ok bool) {
	if !strings.HasPrefix(canonical, prefix) || !strings.HasSuffix(canonical, ">") {
		return "", false
	}
	return canonical[len(prefix) : len(canonical)-1], true
}

func allTrivial(children []*field.Field) bool {
	for _, c := range children {
		if !c.Traits().Has(field.TraitTrivialType) {
			return false
		}
	}
	return true
}

// elemGoType recovers the Go type backing a canonical element type name,
// needed by the container kinds (Vector, SmallVector, UniquePtr,
// ProxyCollection) that manipulate their element storage directly via
// reflect rather than by delegating to a child field for the container's
// own construction/growth logic. Primitives and std::string resolve
// locally; std::vector<T> (including std::vector<bool>) recurses; anything
// else is looked up through introspect.ReflectTyped, so a registered class
// or enum can be an element type too. A kind with no plain-Go-type
// representation (SmallVector, Bitset, Variant, Nullable, Array,
// Pair/Tuple, Record-by-layout) cannot itself be used as a container
// element under this scheme — that combination is rejected rather than
// guessed at.
func elemGoType(svc introspect.Service, canonical string) (reflect.Type, error) {
	if pe, ok := primitives[canonical]; ok {
		return pe.goType, nil
	}
	if canonical == stringTypeName {
		return stringGoType, nil
	}
	if canonical == "std::vector<bool>" {
		return reflect.TypeOf([]bool(nil)), nil
	}
	if body, ok := matchTemplate(canonical, "std::vector<"); ok {
		args, err := typename.SplitTemplateArgs(body)
		if err != nil || len(args) != 1 {
			return nil, fmt.Errorf("rfield: malformed std::vector element type %q", canonical)
		}
		inner, err := elemGoType(svc, args[0])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(inner), nil
	}
	if rt, ok := svc.(introspect.ReflectTyped); ok {
		if t, found := rt.GoType(canonical); found {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no Go type available for element type %q", canonical)
}

// createBuiltin implements step 4: dispatch by prefix/equality to a
// concrete field kind (spec §4.5). handled reports whether canonical
// matched a built-in shape at all; when it is false the caller falls
// through to the introspection-service step.
func createBuiltin(svc introspect.Service, name, canonical string) (f *field.Field, handled bool, err error) {
	if pe, ok := primitives[canonical]; ok {
		f, err = field.NewField(name, canonical, field.StructureLeaf, 0, pe.build())
		return f, true, err
	}
	if canonical == "cardinality" {
		f, err = field.NewField(name, canonical, field.StructureLeaf, 0, kinds.NewCardinality())
		return f, true, err
	}
	if strings.HasPrefix(canonical, "cardinality<") {
		return nil, true, field.Issues{{Path: name, Code: field.CodeInvalidCardinality, Message: "cardinality takes no template argument"}}
	}
	if canonical == stringTypeName {
		f, err = field.NewField(name, canonical, field.StructureLeaf, 0, kinds.NewString())
		return f, true, err
	}
	if canonical == "std::vector<bool>" {
		f, err = field.NewField(name, canonical, field.StructureCollection, 0, kinds.NewVectorBool())
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::array<"); ok {
		f, err = createFixedArrayTemplate(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::vector<"); ok {
		f, err = createVector(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "ROOT::RVec<"); ok {
		f, err = createSmallVector(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::variant<"); ok {
		f, err = createVariant(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::pair<"); ok {
		f, err = createPair(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::tuple<"); ok {
		f, err = createTuple(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::bitset<"); ok {
		f, err = createBitset(name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::unique_ptr<"); ok {
		f, err = createUniquePtr(svc, name, canonical, body)
		return f, true, err
	}
	if body, ok := matchTemplate(canonical, "std::optional<"); ok {
		f, err = createNullable(svc, name, canonical, body)
		return f, true, err
	}
	if canonical == "ROOT::CollectionGroup" {
		f, err = field.NewField(name, canonical, field.StructureCollection, 0, kinds.NewCollectionGroup(nil, nil))
		return f, true, err
	}
	return nil, false, nil
}

// createFixedArray implements the T[N] form of step 3.
func createFixedArray(svc introspect.Service, name, canonical string) (*field.Field, error) {
	base, sizes, perr := typename.ParseArraySuffix(canonical)
	if perr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMultiDimArray, Message: perr.Error()}}
	}
	return assembleFixedArray(svc, name, canonical, base, sizes[0])
}

// createFixedArrayTemplate implements the std::array<T,N> spelling
// typename.Normalize produces from a bare "array<T,N>": structurally the
// same fixed-length-array construct as the T[N] suffix form, just reached
// through the template-dispatch branch instead of the array-suffix check.
func createFixedArrayTemplate(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 2 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "std::array requires exactly 2 template arguments (element type, size)"}}
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(args[1]))
	if convErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidArraySize, Message: fmt.Sprintf("invalid std::array size %q", args[1])}}
	}
	return assembleFixedArray(svc, name, canonical, args[0], n)
}

func assembleFixedArray(svc introspect.Service, name, canonical, elemTypeName string, n int) (*field.Field, error) {
	if n <= 0 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidArraySize, Message: fmt.Sprintf("invalid array size %d", n)}}
	}
	elem, err := buildElement(svc, elementChildName, elemTypeName)
	if err != nil {
		return nil, err
	}
	trivial := elem.Traits().Has(field.TraitTrivialType)
	impl := kinds.NewArray(n, elem.ValueSize(), elem.ValueAlignment(), trivial)
	f, err := field.NewField(name, canonical, field.StructureRecord, n, impl)
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

func createVector(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "std::vector requires exactly 1 template argument"}}
	}
	elem, err := buildElement(svc, elementChildName, args[0])
	if err != nil {
		return nil, err
	}
	elemType, terr := elemGoType(svc, elem.TypeName())
	if terr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: terr.Error()}}
	}
	trivialCtor := elem.Traits().Has(field.TraitTriviallyConstructible)
	trivialDtor := elem.Traits().Has(field.TraitTriviallyDestructible)
	f, err := field.NewField(name, canonical, field.StructureCollection, 0, kinds.NewVector(elemType, trivialCtor, trivialDtor))
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

func createSmallVector(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "ROOT::RVec requires exactly 1 template argument"}}
	}
	elem, err := buildElement(svc, elementChildName, args[0])
	if err != nil {
		return nil, err
	}
	elemType, terr := elemGoType(svc, elem.TypeName())
	if terr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: terr.Error()}}
	}
	trivialCtor := elem.Traits().Has(field.TraitTriviallyConstructible)
	trivialDtor := elem.Traits().Has(field.TraitTriviallyDestructible)
	f, err := field.NewField(name, canonical, field.StructureCollection, 0, kinds.NewSmallVector(elemType, trivialCtor, trivialDtor))
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

func createUniquePtr(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "std::unique_ptr requires exactly 1 template argument"}}
	}
	elem, err := buildElement(svc, elementChildName, args[0])
	if err != nil {
		return nil, err
	}
	elemType, terr := elemGoType(svc, elem.TypeName())
	if terr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: terr.Error()}}
	}
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, kinds.NewUniquePtr(elemType))
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

func createNullable(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "std::optional requires exactly 1 template argument"}}
	}
	elem, err := buildElement(svc, elementChildName, args[0])
	if err != nil {
		return nil, err
	}
	impl := kinds.NewNullable(elem.ValueSize(), elem.ValueAlignment())
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, impl)
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

func createVariant(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) < 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidVariantArgs, Message: "std::variant requires at least 1 alternative"}}
	}
	children := make([]*field.Field, len(args))
	altSizes := make([]uintptr, len(args))
	altAligns := make([]uintptr, len(args))
	for i, arg := range args {
		child, err := buildElement(svc, kinds.TupleMemberName(i), arg)
		if err != nil {
			return nil, err
		}
		children[i] = child
		altSizes[i] = child.ValueSize()
		altAligns[i] = child.ValueAlignment()
	}
	f, err := field.NewField(name, canonical, field.StructureVariant, 0, kinds.NewVariant(altSizes, altAligns))
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		f.Attach(c)
	}
	return f, nil
}

func createBitset(name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 1 {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: "std::bitset requires exactly 1 template argument"}}
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(args[0]))
	if convErr != nil || n <= 0 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidArraySize, Message: fmt.Sprintf("invalid bitset size %q", args[0])}}
	}
	return field.NewField(name, canonical, field.StructureLeaf, 0, kinds.NewBitset(n))
}

// createPair and createTuple both need the introspected class's byte layout
// (spec §4.5 "Pair / Tuple (by layout)"): the template arguments only give
// element types, not the offsets a caller's chosen std::pair/tuple
// representation actually uses, so the canonical name must be a class the
// introspection service has been told about ahead of time.
func createPair(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) != 2 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidPairArity, Message: fmt.Sprintf("std::pair requires exactly 2 template arguments, got %d", len(args))}}
	}
	ci, ok := svc.ClassInfo(canonical)
	if !ok {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: fmt.Sprintf("no introspection registration for %q", canonical)}}
	}
	if len(ci.Members) != 2 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidPairArity, Message: fmt.Sprintf("registered class for %q must have exactly 2 members, got %d", canonical, len(ci.Members))}}
	}
	names := [2]string{"first", "second"}
	children := make([]*field.Field, 2)
	offsets := make([]uintptr, 2)
	for i := 0; i < 2; i++ {
		child, err := buildElement(svc, names[i], args[i])
		if err != nil {
			return nil, err
		}
		children[i] = child
		offsets[i] = ci.Members[i].Offset
	}
	trivial := !ci.HasExplicitCtorDtor && allTrivial(children)
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, kinds.NewPair(ci.Size, ci.Alignment, offsets, trivial))
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		f.Attach(c)
	}
	return f, nil
}

func createTuple(svc introspect.Service, name, canonical, body string) (*field.Field, error) {
	args, splitErr := typename.SplitTemplateArgs(body)
	if splitErr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeMalformedTemplate, Message: splitErr.Error()}}
	}
	if len(args) == 0 {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidTupleArity, Message: "std::tuple requires at least 1 member (empty tuple is rejected)"}}
	}
	ci, ok := svc.ClassInfo(canonical)
	if !ok {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: fmt.Sprintf("no introspection registration for %q", canonical)}}
	}
	if len(ci.Members) != len(args) {
		return nil, field.Issues{{Path: name, Code: field.CodeInvalidTupleArity, Message: fmt.Sprintf("registered class for %q has %d members, expected %d", canonical, len(ci.Members), len(args))}}
	}
	children := make([]*field.Field, len(args))
	offsets := make([]uintptr, len(args))
	for i, arg := range args {
		child, err := buildElement(svc, kinds.TupleMemberName(i), arg)
		if err != nil {
			return nil, err
		}
		children[i] = child
		offsets[i] = ci.Members[i].Offset
	}
	trivial := !ci.HasExplicitCtorDtor && allTrivial(children)
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, kinds.NewTuple(ci.Size, ci.Alignment, offsets, trivial))
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		f.Attach(c)
	}
	return f, nil
}

// createFromIntrospection implements step 5.
func createFromIntrospection(svc introspect.Service, name, canonical string) (*field.Field, error) {
	if ei, ok := svc.EnumInfo(canonical); ok {
		return createEnum(name, canonical, ei)
	}
	ci, ok := svc.ClassInfo(canonical)
	if !ok {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: fmt.Sprintf("unknown type %q", canonical)}}
	}
	if ci.CollectionProxy != nil {
		return createProxyCollection(svc, name, canonical, ci)
	}
	if ci.StandardLibraryNamespace {
		return nil, field.Issues{{Path: name, Code: field.CodeUnsupportedClassKind, Message: fmt.Sprintf("%q is a standard-library type with no registered collection proxy", canonical)}}
	}
	return createRecord(svc, name, canonical, ci)
}

func createEnum(name, canonical string, ei *introspect.EnumInfo) (*field.Field, error) {
	pe, ok := primitives[ei.UnderlyingType]
	if !ok {
		return nil, field.Issues{{Path: name, Code: field.CodeUnsupportedClassKind, Message: fmt.Sprintf("enum %q has unsupported underlying type %q", canonical, ei.UnderlyingType)}}
	}
	underlying, err := field.NewField(enumUnderlyingChildName, ei.UnderlyingType, field.StructureLeaf, 0, pe.build())
	if err != nil {
		return nil, err
	}
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, kinds.NewEnum(underlying.ValueSize(), underlying.ValueAlignment()))
	if err != nil {
		return nil, err
	}
	f.Attach(underlying)
	return f, nil
}

func createProxyCollection(svc introspect.Service, name, canonical string, ci *introspect.ClassInfo) (*field.Field, error) {
	proxy := ci.CollectionProxy
	elem, err := buildElement(svc, elementChildName, proxy.ElementTypeName)
	if err != nil {
		return nil, err
	}
	elemType, terr := elemGoType(svc, elem.TypeName())
	if terr != nil {
		return nil, field.Issues{{Path: name, Code: field.CodeUnknownType, Message: terr.Error()}}
	}
	trivialCtor := elem.Traits().Has(field.TraitTriviallyConstructible)
	trivialDtor := elem.Traits().Has(field.TraitTriviallyDestructible)
	impl := kinds.NewProxyCollection(elemType, proxy, trivialCtor, trivialDtor)
	f, err := field.NewField(name, canonical, field.StructureCollection, 0, impl)
	if err != nil {
		return nil, err
	}
	f.Attach(elem)
	return f, nil
}

// createRecord implements record-by-reflection (spec §4.5): base classes
// first (named via kinds.BaseFieldName), then non-transient members in
// declaration order; a transient member has no child at all, since it
// carries no on-disk representation and is only ever populated through a
// schema-rule read callback (spec §4.5, §9 "Schema-rule callbacks").
func createRecord(svc introspect.Service, name, canonical string, ci *introspect.ClassInfo) (*field.Field, error) {
	var children []*field.Field
	var offsets []uintptr

	for i, b := range ci.Bases {
		child, err := buildElement(svc, kinds.BaseFieldName(i), b.Name)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		offsets = append(offsets, b.Offset)
	}
	for _, m := range ci.Members {
		if m.Transient {
			continue
		}
		typeName, err := memberTypeName(name, m)
		if err != nil {
			return nil, err
		}
		child, err := buildElement(svc, m.Name, typeName)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		offsets = append(offsets, m.Offset)
	}

	trivial := !ci.HasExplicitCtorDtor && allTrivial(children)
	impl := kinds.NewRecord(canonical, ci.Size, ci.Alignment, offsets, trivial, ci.Rules)
	f, err := field.NewField(name, canonical, field.StructureRecord, 0, impl)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		f.Attach(c)
	}
	impl.InstallSchemaRules(f, ci, warnFieldName(name))
	return f, nil
}

// memberTypeName reconstructs the type spelling to feed back into Create
// for one persistent member, folding a single C-style array dimension back
// into the "[N]" suffix step 3 already knows how to parse.
func memberTypeName(recordName string, m introspect.MemberInfo) (string, error) {
	if len(m.ArrayDims) > 1 {
		return "", field.Issues{{Path: recordName + "." + m.Name, Code: field.CodeMultiDimArray, Message: "multi-dimensional array members are not supported"}}
	}
	base := m.FullTypeName
	if base == "" {
		base = m.ResolvedTypeName
	}
	if len(m.ArrayDims) == 1 {
		elemBase := m.ResolvedTypeName
		if elemBase == "" {
			elemBase = base
		}
		return fmt.Sprintf("%s[%d]", elemBase, m.ArrayDims[0]), nil
	}
	return base, nil
}

// warnFieldName returns a schema-rule warning sink that prefixes messages
// with nothing extra (record.go already qualifies them by field name);
// stdlib-only since nothing in the pack's dependency set covers "print a
// diagnostic line," and this is the only place the field layer ever writes
// anything on its own initiative.
func warnFieldName(_ string) func(string) {
	return func(msg string) { fmt.Fprintln(os.Stderr, msg) }
}
