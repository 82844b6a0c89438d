package field

// Visitor is a double-dispatch hook invoked by descriptor builders and
// printers (spec §4.6). Each kind's Accept calls the matching Visit<Kind>
// method; kinds without a dedicated method fall back to VisitField.
//
// Grounded on the teacher's JSONSchema()-style tree walk (dsl/object_core.go,
// dsl/union.go), generalized here into an explicit double-dispatch interface
// since the field tree (unlike goskema's flat Schema[T] export) has many
// structurally distinct composite kinds worth visiting individually.
type Visitor interface {
	VisitField(f *Field)
	VisitPrimitive(f *Field)
	VisitString(f *Field)
	VisitRecord(f *Field)
	VisitArray(f *Field)
	VisitVector(f *Field)
	VisitSmallVector(f *Field)
	VisitVectorBool(f *Field)
	VisitBitset(f *Field)
	VisitEnum(f *Field)
	VisitVariant(f *Field)
	VisitNullable(f *Field)
	VisitUniquePtr(f *Field)
	VisitPair(f *Field)
	VisitTuple(f *Field)
	VisitCardinality(f *Field)
	VisitProxyCollection(f *Field)
	VisitCollectionGroup(f *Field)
}

// BaseVisitor implements Visitor with every method forwarding to
// VisitField, so concrete visitors can embed it and override only the
// kinds they care about.
type BaseVisitor struct {
	Fallback func(f *Field)
}

func (b BaseVisitor) VisitField(f *Field) {
	if b.Fallback != nil {
		b.Fallback(f)
	}
}
func (b BaseVisitor) VisitPrimitive(f *Field)       { b.VisitField(f) }
func (b BaseVisitor) VisitString(f *Field)          { b.VisitField(f) }
func (b BaseVisitor) VisitRecord(f *Field)          { b.VisitField(f) }
func (b BaseVisitor) VisitArray(f *Field)           { b.VisitField(f) }
func (b BaseVisitor) VisitVector(f *Field)          { b.VisitField(f) }
func (b BaseVisitor) VisitSmallVector(f *Field)     { b.VisitField(f) }
func (b BaseVisitor) VisitVectorBool(f *Field)      { b.VisitField(f) }
func (b BaseVisitor) VisitBitset(f *Field)          { b.VisitField(f) }
func (b BaseVisitor) VisitEnum(f *Field)            { b.VisitField(f) }
func (b BaseVisitor) VisitVariant(f *Field)         { b.VisitField(f) }
func (b BaseVisitor) VisitNullable(f *Field)        { b.VisitField(f) }
func (b BaseVisitor) VisitUniquePtr(f *Field)       { b.VisitField(f) }
func (b BaseVisitor) VisitPair(f *Field)            { b.VisitField(f) }
func (b BaseVisitor) VisitTuple(f *Field)           { b.VisitField(f) }
func (b BaseVisitor) VisitCardinality(f *Field)     { b.VisitField(f) }
func (b BaseVisitor) VisitProxyCollection(f *Field) { b.VisitField(f) }
func (b BaseVisitor) VisitCollectionGroup(f *Field) { b.VisitField(f) }

// Walk applies v to f and recursively to every descendant, depth-first,
// pre-order (matching the factory's pre-order child construction and the
// append-ordering requirement in spec §5).
func Walk(f *Field, v Visitor) {
	f.Accept(v)
	for _, c := range f.children {
		Walk(c, v)
	}
}
