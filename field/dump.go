package field

import (
	goccyjson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DumpFormat selects the encoding used by Dump.
type DumpFormat int

const (
	DumpYAML DumpFormat = iota
	DumpJSON
)

// dumpNode is the serializable projection of one Field, grounded on the
// teacher's JSONSchema() tree-walk output shape (dsl/object_core.go,
// dsl/union.go) but reshaped for the field tree's own attributes.
type dumpNode struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Alias       string      `yaml:"alias,omitempty" json:"alias,omitempty"`
	Kind        string      `yaml:"kind" json:"kind"`
	Structure   string      `yaml:"structure" json:"structure"`
	Repetitions int         `yaml:"repetitions,omitempty" json:"repetitions,omitempty"`
	OnDiskID    *uint64     `yaml:"onDiskId,omitempty" json:"onDiskId,omitempty"`
	Children    []*dumpNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// kindNameVisitor records each field's kind name via the Visitor
// double-dispatch (spec §4.6), so Dump never has to special-case kinds
// itself.
type kindNameVisitor struct {
	names map[*Field]string
}

func newKindNameVisitor() *kindNameVisitor { return &kindNameVisitor{names: map[*Field]string{}} }

func (k *kindNameVisitor) set(f *Field, name string) { k.names[f] = name }

func (k *kindNameVisitor) VisitField(f *Field)           { k.set(f, f.Impl.KindName()) }
func (k *kindNameVisitor) VisitPrimitive(f *Field)       { k.set(f, "primitive") }
func (k *kindNameVisitor) VisitString(f *Field)          { k.set(f, "string") }
func (k *kindNameVisitor) VisitRecord(f *Field)          { k.set(f, "record") }
func (k *kindNameVisitor) VisitArray(f *Field)           { k.set(f, "array") }
func (k *kindNameVisitor) VisitVector(f *Field)          { k.set(f, "vector") }
func (k *kindNameVisitor) VisitSmallVector(f *Field)     { k.set(f, "smallvector") }
func (k *kindNameVisitor) VisitVectorBool(f *Field)      { k.set(f, "vector<bool>") }
func (k *kindNameVisitor) VisitBitset(f *Field)          { k.set(f, "bitset") }
func (k *kindNameVisitor) VisitEnum(f *Field)            { k.set(f, "enum") }
func (k *kindNameVisitor) VisitVariant(f *Field)         { k.set(f, "variant") }
func (k *kindNameVisitor) VisitNullable(f *Field)        { k.set(f, "nullable") }
func (k *kindNameVisitor) VisitUniquePtr(f *Field)       { k.set(f, "unique_ptr") }
func (k *kindNameVisitor) VisitPair(f *Field)            { k.set(f, "pair") }
func (k *kindNameVisitor) VisitTuple(f *Field)           { k.set(f, "tuple") }
func (k *kindNameVisitor) VisitCardinality(f *Field)     { k.set(f, "cardinality") }
func (k *kindNameVisitor) VisitProxyCollection(f *Field) { k.set(f, "proxy-collection") }
func (k *kindNameVisitor) VisitCollectionGroup(f *Field) { k.set(f, "collection-group") }

func buildDumpNode(f *Field, names map[*Field]string) *dumpNode {
	n := &dumpNode{
		Name:        f.Name(),
		Type:        f.TypeName(),
		Kind:        names[f],
		Structure:   f.Structure().String(),
		Repetitions: f.NRepetitions(),
	}
	if alias, ok := f.TypeAlias(); ok {
		n.Alias = alias
	}
	if id, ok := f.OnDiskID(); ok {
		v := uint64(id)
		n.OnDiskID = &v
	}
	for _, c := range f.Children() {
		n.Children = append(n.Children, buildDumpNode(c, names))
	}
	return n
}

// Dump renders the field tree rooted at f as a schema descriptor document,
// standing in for the (out-of-scope) on-disk descriptor catalog.
func Dump(f *Field, format DumpFormat) ([]byte, error) {
	v := newKindNameVisitor()
	Walk(f, v)
	root := buildDumpNode(f, v.names)
	switch format {
	case DumpJSON:
		return goccyjson.MarshalIndent(root, "", "  ")
	default:
		return yaml.Marshal(root)
	}
}
