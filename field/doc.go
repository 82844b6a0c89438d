// Package field implements the field layer of a columnar event-data
// serialization engine: a recursive, type-directed tree of nodes ("fields")
// that bridges an in-memory Go value graph and a set of typed, append-only
// columns maintained by an external column I/O layer.
//
// Design policy:
//   - Keep the public contract (Field, FieldBase, the column interfaces, the
//     error model) in this package; put kind-specific implementations under
//     kinds/, type-name parsing under typename/, the factory under factory/,
//     and construct/destroy bookkeeping under lifecycle/.
//   - The column I/O layer, the on-disk descriptor catalog, and the class
//     introspection service are external collaborators. This package only
//     declares their contracts (column.go, introspect is a sibling package).
//
// Typical usage:
//
//	f, err := factory.Create(intro, "px", "f32")
//	f.SetOnDiskID(1)
//	f.ConnectPageSink(sink, 0)
//	n, err := f.Append(unsafe.Pointer(&x))
//	...
//	f2, err := f.Clone("px")
//	f2.ConnectPageSource(source)
//	err = f2.Read(42, unsafe.Pointer(&y))
package field
