// Package lifecycle implements placement construction, destruction, and
// array resize for in-memory values addressed by unsafe.Pointer (spec §4.4
// GenerateValue/DestroyValue, §3 Lifecycle) as standalone helpers. No other
// package of this module imports it: the kinds/ package does its own
// construction and destruction, through reflect and through child fields.
//
// There is no teacher analogue for placement lifecycle management; this
// package is grounded on reflect_utils.go's approach of doing one targeted
// reflect operation (ResolveStructKey) per call rather than a general
// reflect-based framework, extended here to reflect.New/reflect.Zero-driven
// construction over unsafe.Pointer addresses.
package lifecycle

import (
	"reflect"
	"unsafe"
)

// Typed describes how to construct/destroy/copy one Go value of a fixed
// size and alignment at an arbitrary address.
type Typed struct {
	typ reflect.Type
}

// Of returns a Typed descriptor for sample's Go type (a struct, primitive,
// or slice/string header). sample is only consulted for its type.
func Of(sample any) Typed {
	return Typed{typ: reflect.TypeOf(sample)}
}

// OfType returns a Typed descriptor directly from a reflect.Type, for
// callers that already resolved one.
func OfType(t reflect.Type) Typed { return Typed{typ: t} }

// Size returns the in-memory footprint of one value of this type.
func (t Typed) Size() uintptr { return t.typ.Size() }

// Alignment returns the required alignment of one value of this type.
func (t Typed) Alignment() uintptr { return uintptr(t.typ.Align()) }

// Construct placement-constructs one zero-initialized value at where,
// equivalent to value-initializing a default-constructed instance in place
// (spec §4.4 GenerateValue default behavior for a leaf kind). where must
// point to at least Size() writable, correctly aligned bytes.
func (t Typed) Construct(where unsafe.Pointer) {
	zero := reflect.New(t.typ).Elem()
	reflect.NewAt(t.typ, where).Elem().Set(zero)
}

// Destroy placement-destructs the value at ptr. For Go's garbage-collected
// value types this only needs to clear any pointer-containing fields so the
// GC does not trace stale data through a reused buffer; it never reclaims
// ptr itself (DestroyValue's dtorOnly semantics, spec §4.4).
func (t Typed) Destroy(ptr unsafe.Pointer) {
	if !containsPointerData(t.typ) {
		return
	}
	zero := reflect.Zero(t.typ)
	reflect.NewAt(t.typ, ptr).Elem().Set(zero)
}

// CopyFrom copies one value from src to dst, both assumed to address Size()
// bytes of a value of this type.
func (t Typed) CopyFrom(dst, src unsafe.Pointer) {
	reflect.NewAt(t.typ, dst).Elem().Set(reflect.NewAt(t.typ, src).Elem())
}

func containsPointerData(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.String, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() > 0 && containsPointerData(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointerData(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Resizer manages a contiguous Go slice backing store for a variable-length
// array field (vector, small-vector, bitset; spec §4.5), exposing the
// element address arithmetic over a Grow-allocated array.
type Resizer struct {
	elem Typed
}

// NewResizer returns a Resizer for elements of elem's type.
func NewResizer(elem Typed) Resizer { return Resizer{elem: elem} }

// Grow allocates a backing array of n zero-valued elements (spec §4.5
// "Vector" resize-on-append). It returns the address of the first element
// and an opaque owner value the caller MUST retain for as long as the
// address is in use — the address is only safe from the GC's perspective
// while owner is reachable.
func (r Resizer) Grow(n int) (addr unsafe.Pointer, owner any) {
	if n == 0 {
		return nil, nil
	}
	ptr := reflect.New(reflect.ArrayOf(n, r.elem.typ))
	return unsafe.Pointer(ptr.Pointer()), ptr.Interface()
}

// ElementAddr returns the address of the i-th element in a backing array
// returned by Grow.
func (r Resizer) ElementAddr(base unsafe.Pointer, i int) unsafe.Pointer {
	return unsafe.Add(base, uintptr(i)*r.elem.Size())
}
