package kinds

import (
	"reflect"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

// ProxyCollection is the field.Kind for container types with a collection
// proxy (spec §4.5 "Proxy-collection"). The proxy's read/write iterator
// triples are obtained once at construction, which in Go is realized by
// exposing the container through the same slice-header shape Vector already
// uses — ProxyCollection embeds a *Vector and adds only the introspected
// element metadata and its own Visitor identity. The distinction the
// original draws between "non-contiguous, per-element iteration" and
// "contiguous, stride iteration" is a performance concern only; both paths
// are observably identical once expressed through reflect.Value indexing,
// so proxy.Contiguous is retained for callers/printers but does not change
// Append/Read behavior here.
type ProxyCollection struct {
	*Vector
	proxy *introspect.CollectionProxyInfo
}

// NewProxyCollection constructs the proxy-collection kind over elements of
// elemType, described by the introspected proxy metadata.
func NewProxyCollection(elemType reflect.Type, proxy *introspect.CollectionProxyInfo, trivialCtor, trivialDtor bool) *ProxyCollection {
	return &ProxyCollection{Vector: NewVector(elemType, trivialCtor, trivialDtor), proxy: proxy}
}

func (p *ProxyCollection) KindName() string { return "proxycollection" }

func (p *ProxyCollection) Accept(f *field.Field, v field.Visitor) { v.VisitProxyCollection(f) }

func (p *ProxyCollection) Clone() field.Kind {
	return &ProxyCollection{Vector: p.Vector.Clone().(*Vector), proxy: p.proxy}
}

// Proxy exposes the introspected collection-proxy metadata (element type
// name, size/alignment, contiguous flag) this field was built from.
func (p *ProxyCollection) Proxy() *introspect.CollectionProxyInfo { return p.proxy }
