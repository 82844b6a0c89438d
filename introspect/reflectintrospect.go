package introspect

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry is the default reflect-based Service implementation: Go's
// substitute for the original's generated-dictionary RTTI. Types are
// registered explicitly (there is no equivalent of automatic template
// instantiation introspection), grounded on field_token.go's ResolveStructKey
// approach of keying struct handling off an explicit string.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]reflect.Type
	aliases  map[string]string
	proxies  map[string]*CollectionProxyInfo
	rules    map[string][]SchemaRule
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]reflect.Type),
		aliases: make(map[string]string),
		proxies: make(map[string]*CollectionProxyInfo),
		rules:   make(map[string][]SchemaRule),
	}
}

// Register associates name with sample's Go type (a struct, pointer-to-struct,
// or defined integer/enum type). sample is only used for reflect.TypeOf; it
// is never retained.
func (r *Registry) Register(name string, sample any) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = t
}

// RegisterAlias records that alias resolves to underlying (spec §4.1
// "typedef/using aliases").
func (r *Registry) RegisterAlias(alias, underlying string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = underlying
}

// ResolveAlias implements typename.AliasResolver.
func (r *Registry) ResolveAlias(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.aliases[name]
	return u, ok
}

// RegisterCollectionProxy registers a proxy-collection container type (spec
// §4.5 "Proxy-collection"), e.g. a ring buffer or intrusive list the factory
// cannot map onto vector/array/set directly.
func (r *Registry) RegisterCollectionProxy(name, elemTypeName string, elemSize, elemAlign uintptr, contiguous bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxies[name] = &CollectionProxyInfo{
		ElementTypeName: elemTypeName,
		ElementSize:     elemSize,
		ElementAlign:    elemAlign,
		Contiguous:      contiguous,
	}
}

// RegisterRule attaches a schema rule to a class (spec §4.5, §9). ClassInfo
// returns every registered rule unfiltered; a rule targeting a non-transient
// member is skipped with a warning later, by kinds.Record.InstallSchemaRules
// when the factory builds the record field.
func (r *Registry) RegisterRule(className string, rule SchemaRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[className] = append(r.rules[className], rule)
}

// GoType implements ReflectTyped: it exposes the concrete Go type behind a
// registered class name, letting the factory build container element kinds
// (vector, variant, unique-ptr, ...) over user classes the same way it does
// over built-in primitives.
func (r *Registry) GoType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// EnumInfo implements Service. A registered type qualifies as an enum when
// its Kind is an integer kind (int and uint map to i32 and u32); whether it
// is a defined type or a built-in integer type is not checked.
func (r *Registry) EnumInfo(name string) (*EnumInfo, bool) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	underlying, ok := underlyingIntName(t)
	if !ok {
		return nil, false
	}
	return &EnumInfo{UnderlyingType: underlying}, true
}

func underlyingIntName(t reflect.Type) (string, bool) {
	switch t.Kind() {
	case reflect.Int8:
		return "i8", true
	case reflect.Uint8:
		return "u8", true
	case reflect.Int16:
		return "i16", true
	case reflect.Uint16:
		return "u16", true
	case reflect.Int32, reflect.Int:
		return "i32", true
	case reflect.Uint32, reflect.Uint:
		return "u32", true
	case reflect.Int64:
		return "i64", true
	case reflect.Uint64:
		return "u64", true
	default:
		return "", false
	}
}

// ClassInfo implements Service, walking t's struct fields with reflect.
// Embedded (anonymous) struct fields become Bases entries, following the
// spec §4.5 "__base_i__" convention applied by kinds/record.go; ordinary
// fields become Members with their byte Offset taken directly from
// reflect.StructField, and a field tagged `rfield:"transient"` is marked
// Transient.
func (r *Registry) ClassInfo(name string) (*ClassInfo, bool) {
	r.mu.RLock()
	t, ok := r.byName[name]
	proxy := r.proxies[name]
	rules := r.rules[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if t.Kind() != reflect.Struct {
		if proxy != nil {
			return &ClassInfo{Name: name, CollectionProxy: proxy, Rules: rules}, true
		}
		return nil, false
	}

	ci := &ClassInfo{
		Name:            name,
		Size:            t.Size(),
		Alignment:       uintptr(t.Align()),
		CollectionProxy: proxy,
		Rules:           rules,
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous {
			ci.Bases = append(ci.Bases, BaseClassInfo{
				Name:   sf.Type.Name(),
				Offset: sf.Offset,
			})
			continue
		}
		m := MemberInfo{
			Name:      sf.Name,
			Offset:    sf.Offset,
			Transient: sf.Tag.Get("rfield") == "transient",
		}
		ft := sf.Type
		dims := []int(nil)
		for ft.Kind() == reflect.Array {
			dims = append(dims, ft.Len())
			ft = ft.Elem()
		}
		m.ArrayDims = dims
		m.FullTypeName = goTypeSpelling(sf.Type)
		m.ResolvedTypeName = goTypeSpelling(ft)
		ci.Members = append(ci.Members, m)
	}
	return ci, true
}

// goTypeSpelling renders a reflect.Type the way the factory expects a
// type-name string to look: struct type names pass through verbatim, while
// primitive kinds and defined integer (enum) types map to the engine's
// fixed-width spelling of their underlying integer kind.
func goTypeSpelling(t reflect.Type) string {
	if name, ok := underlyingIntName(t); ok && t.Name() != "" && t.PkgPath() != "" {
		return name
	}
	switch t.Kind() {
	case reflect.Int8:
		return "i8"
	case reflect.Uint8:
		return "u8"
	case reflect.Int16:
		return "i16"
	case reflect.Uint16:
		return "u16"
	case reflect.Int32, reflect.Int:
		return "i32"
	case reflect.Uint32, reflect.Uint:
		return "u32"
	case reflect.Int64:
		return "i64"
	case reflect.Uint64:
		return "u64"
	case reflect.Float32:
		return "f32"
	case reflect.Float64:
		return "f64"
	case reflect.Bool:
		return "bool"
	case reflect.String:
		return "std::string"
	case reflect.Struct:
		return t.Name()
	case reflect.Slice:
		return fmt.Sprintf("std::vector<%s>", goTypeSpelling(t.Elem()))
	case reflect.Ptr:
		return fmt.Sprintf("std::unique_ptr<%s>", goTypeSpelling(t.Elem()))
	default:
		return t.Name()
	}
}

var (
	_ Service      = (*Registry)(nil)
	_ ReflectTyped = (*Registry)(nil)
)
