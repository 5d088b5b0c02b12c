// Package lower implements §4.J: walking the final bound IR (post
// Canonicalize/Disambiguate) and constructing classfile.ClassFile values
// ready for classfile.Write. Every descriptor/signature computation reuses
// pkg/classfile's own Descriptor/SignatureWriter rather than re-deriving the
// JVMS grammar here.
package lower

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

// Lowerer holds the fully bound class set lowering needs: SourceHeaderBoundClass
// for owner-chain walks (InnerClasses, NestHost/NestMembers), SourceTypeBoundClass
// for everything else.
type Lowerer struct {
	headers map[sym.ClassSymbol]*bound.SourceHeaderBoundClass
	classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass
	sig     *classfile.SignatureWriter
	nests   map[sym.ClassSymbol][]sym.ClassSymbol // nest host -> its members, computed once
}

// NewLowerer constructs a Lowerer over a fully class-bound, canonicalized and
// disambiguated set. headers must be the same (or a superset) hierarchy-bound
// set classes was built from, since InnerClasses/NestHost/NestMembers walk
// Owner chains that only headers carries.
func NewLowerer(headers map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass) *Lowerer {
	return &Lowerer{headers: headers, classes: classes, sig: classfile.NewSignatureWriter(), nests: computeNests(headers)}
}

// LowerAll produces one ClassFile per class in the bound set.
func (l *Lowerer) LowerAll() map[sym.ClassSymbol]*classfile.ClassFile {
	out := make(map[sym.ClassSymbol]*classfile.ClassFile, len(l.classes))

	for cs, c := range l.classes {
		out[cs] = l.lowerOne(cs, c)
	}

	return out
}

// LowerOne produces a single class's ClassFile, for callers (tests, a
// driver that wants one class at a time) that don't need the whole set.
func (l *Lowerer) LowerOne(cs sym.ClassSymbol) *classfile.ClassFile {
	c, ok := l.classes[cs]
	if !ok {
		return nil
	}

	return l.lowerOne(cs, c)
}

func (l *Lowerer) lowerOne(cs sym.ClassSymbol, c *bound.SourceTypeBoundClass) *classfile.ClassFile {
	cf := &classfile.ClassFile{
		Version:     classfile.Java17,
		AccessFlags: c.Access,
		Name:        cs.BinaryName(),
		Interfaces:  make([]string, 0, len(c.InterfaceTypes)),
	}

	if c.SuperClassType != nil {
		cf.SuperName = classTypeSym(c.SuperClassType).BinaryName()
	}

	for _, it := range c.InterfaceTypes {
		cf.Interfaces = append(cf.Interfaces, classTypeSym(it).BinaryName())
	}

	if sig := l.classSignature(c); sig != "" {
		cf.Signature = sig
	}

	for i := range c.Fields {
		cf.Fields = append(cf.Fields, l.lowerField(&c.Fields[i]))
	}

	for i := range c.Methods {
		cf.Methods = append(cf.Methods, l.lowerMethod(&c.Methods[i]))
	}

	visible, invisible := l.partitionAnnotations(c.Annotations)
	cf.Annotations = visible
	cf.InvisibleAnnotations = invisible
	cf.Deprecated = hasAnnotation(c.Annotations, deprecatedSym)

	cf.InnerClasses = l.innerClasses(cs, c)

	if host, ok := l.nestHost(cs); ok {
		cf.NestHost = host.BinaryName()
	}

	if members, ok := l.nests[cs]; ok && len(members) > 0 {
		cf.NestMembers = make([]string, len(members))
		for i, m := range members {
			cf.NestMembers[i] = m.BinaryName()
		}
	}

	return cf
}

// classTypeSym returns the referenced class symbol of a (necessarily
// class-shaped, post-Canonicalize) sym.Type.
func classTypeSym(t sym.Type) sym.ClassSymbol {
	if ct, ok := t.(sym.ClassType); ok {
		return ct.Sym()
	}

	return sym.ClassSymbol{}
}

var deprecatedSym = sym.NewClassSymbol("java/lang/Deprecated")

// hasAnnotation reports whether annos contains a use of want.
func hasAnnotation(annos []bound.AnnotationUse, want sym.ClassSymbol) bool {
	for _, a := range annos {
		if a.Sym == want {
			return true
		}
	}

	return false
}

// classSignature renders this class's ClassSignature, or "" when neither its
// type parameters, superclass nor interfaces need one (§4.J "emit Signature
// only when generics or annotations require it": a non-generic class whose
// super/interfaces are all raw classes never needs one).
func (l *Lowerer) classSignature(c *bound.SourceTypeBoundClass) string {
	params := l.typeParamSigs(c.TypeParameters, c.TypeParameterBounds)

	if len(params) == 0 && !needsSignature(c.SuperClassType) && !anyNeedsSignature(c.InterfaceTypes) {
		return ""
	}

	super := c.SuperClassType
	if super == nil {
		super = sym.NewClassType(sym.SimpleClassTy{Sym: sym.NewClassSymbol("java/lang/Object")})
	}

	return l.sig.ClassSignature(params, super, c.InterfaceTypes)
}

// typeParamSigs converts a class or method's bound type parameters (in their
// declared order) into classfile.TypeParamSig values.
func (l *Lowerer) typeParamSigs(tps []sym.TyVarSymbol, bounds map[sym.TyVarSymbol]bound.TypeParameterBound) []classfile.TypeParamSig {
	if len(tps) == 0 {
		return nil
	}

	out := make([]classfile.TypeParamSig, len(tps))

	for i, tv := range tps {
		b := bounds[tv]
		out[i] = classfile.TypeParamSig{
			Name:            tv.Name,
			ClassBound:      b.ClassBound,
			HasClassBound:   b.HasClassBound,
			InterfaceBounds: b.InterfaceBounds,
		}
	}

	return out
}

// needsSignature reports whether t carries generic information a descriptor
// cannot express. Primitives, void and raw (non-generic, non-qualified-by-a-
// generic-enclosing) class types, and arrays of them, need no Signature; a
// class type needs one whenever it carries type arguments anywhere in its
// qualifier chain (JVMS 4.7.9.1 "a class signature ... is required if the
// class is generic, or has a generic superclass or superinterface"), and
// any other type (a type variable, a wildcard, an intersection, the error
// type) always counts as needing one.
func needsSignature(t sym.Type) bool {
	switch v := t.(type) {
	case nil, sym.PrimitiveType, sym.VoidType:
		return false
	case sym.ArrayType:
		return needsSignature(v.Element)
	case sym.ClassType:
		for _, comp := range v.Components {
			if len(comp.TypeArgs) > 0 {
				return true
			}
		}

		return false
	default:
		return true
	}
}

func anyNeedsSignature(ts []sym.Type) bool {
	for _, t := range ts {
		if needsSignature(t) {
			return true
		}
	}

	return false
}
