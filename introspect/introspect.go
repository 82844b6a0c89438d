// Package introspect declares the user-defined class introspection service
// (spec §6, explicitly an external collaborator): for a class name it
// supplies size/alignment, base classes, persistent data members,
// an optional collection proxy, and a schema-rule set. The field layer only
// consumes the Service interface; reflectintrospect.go provides the
// default Go-native implementation used by factory/ and the CLI, built on
// reflect.Type the way a generated dictionary backs the original's RTTI.
package introspect

import (
	"reflect"
	"unsafe"
)

// BaseClassInfo describes one base (sub-object) class and its byte offset
// within the derived class (spec §4.5 "Record by reflection").
type BaseClassInfo struct {
	Name   string
	Offset uintptr
}

// MemberInfo describes one persistent, non-static data member (spec §4.5).
type MemberInfo struct {
	Name             string
	FullTypeName     string // the member's declared (possibly aliased) type spelling
	ResolvedTypeName string // the member's true/resolved type spelling
	Offset           uintptr
	ArrayDims        []int // non-nil for C-style array members
	Transient        bool  // excluded from persistence; only reachable via schema rules
}

// CollectionProxyInfo describes a registered third-party-container proxy
// (spec §4.5 "Proxy-collection").
type CollectionProxyInfo struct {
	ElementTypeName string
	ElementSize     uintptr
	ElementAlign    uintptr
	Contiguous      bool // vector-like: elements may be iterated by stride, no per-element proxy calls
}

// SchemaRule is a post-read callback targeting one member (spec §4.5, §9
// "Schema-rule callbacks"). The factory installs it as a read callback on
// the record field when it builds that field, and Apply receives the
// record's address; a tree produced by Field.Clone carries no installed
// rules. Rules that target a non-transient member are skipped with a
// warning rather than failing the build (spec §4.5, §7).
type SchemaRule struct {
	TargetMember string
	Apply        func(recordAddr unsafe.Pointer)
}

// ClassInfo is everything the field factory needs to build a
// record-by-reflection, pair, or tuple field over a registered class
// (spec §6 "Introspection service").
type ClassInfo struct {
	Name                string
	Size                uintptr
	Alignment           uintptr
	Bases               []BaseClassInfo
	Members             []MemberInfo
	CollectionProxy     *CollectionProxyInfo
	Rules               []SchemaRule
	HasExplicitCtorDtor bool
	// StandardLibraryNamespace marks classes the factory must reject in
	// favor of the proxy-collection kind (spec §4.5 "a class in the
	// standard library namespace is rejected").
	StandardLibraryNamespace bool
}

// EnumInfo describes a registered enum's underlying integral width
// (spec §4.5 "Enum").
type EnumInfo struct {
	UnderlyingType string // one of i8,u8,i16,u16,i32,u32,i64,u64
}

// Service is the introspection collaborator (spec §6). TypeVersion rules are
// filtered by on-disk type version at the Descriptor/Service boundary; this
// package exposes only the current-version view the factory needs at
// Create time.
type Service interface {
	// ResolveAlias resolves a typedef/using alias to its underlying
	// spelling (typename.AliasResolver).
	ResolveAlias(name string) (underlying string, ok bool)
	ClassInfo(name string) (*ClassInfo, bool)
	EnumInfo(name string) (*EnumInfo, bool)
}

// ReflectTyped is an additive capability a Service may also implement: it
// recovers the concrete Go type backing a registered class name, which the
// factory needs to build the element kind of a container (vector, variant,
// unique-ptr, ...) whose element is a user-defined class rather than a
// built-in primitive. A Service that has no Go type to offer (e.g. one
// backed by a generated dictionary rather than reflect) simply does not
// implement this interface; callers type-assert for it.
type ReflectTyped interface {
	GoType(name string) (reflect.Type, bool)
}
