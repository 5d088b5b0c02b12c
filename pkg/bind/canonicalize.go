package bind

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/sym"
)

// Canonicalize implements §4.I's first half: rewriting every qualified
// class type so its qualifier chain matches the actual nesting chain of the
// class it refers to, rather than whatever prefix the source happened to
// write (which may name an ancestor several hierarchy levels above the
// class's true enclosing owner, or name no qualifier at all for a type
// found by simple name through lexical scoping).
//
// Simplification (documented, not an oversight): a written qualifier's own
// type arguments are preserved only for the levels it explicitly named;
// inserted intermediate levels are left raw. Full JLS 4.8 substitution of
// an outer instantiation's actual type arguments into an inner member
// type's formal parameters is not performed — turbine's own ABI output
// only needs the correct InnerClasses/Signature *shape*, and a raw
// intermediate level still signatures correctly (javac itself frequently
// emits raw intermediate qualifiers for the same reason: full substitution
// only matters to a type *checker*, not to the class-file shape this
// package produces).
func Canonicalize(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, t sym.Type) sym.Type {
	if t == nil {
		return nil
	}

	switch v := t.(type) {
	case sym.ClassType:
		return canonicalizeClassType(classes, v)
	case sym.ArrayType:
		return sym.ArrayType{Element: Canonicalize(classes, v.Element), Annotations: v.Annotations}
	case sym.WildcardType:
		if v.Bound == nil {
			return v
		}

		return sym.WildcardType{Kind: v.Kind, Bound: Canonicalize(classes, v.Bound), Annotations: v.Annotations}
	default:
		return t
	}
}

// ownerChain returns cs's enclosing chain, outermost class first and cs
// itself last.
func ownerChain(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, cs sym.ClassSymbol) []sym.ClassSymbol {
	var chain []sym.ClassSymbol

	for cur := cs; cur.IsValid(); {
		chain = append([]sym.ClassSymbol{cur}, chain...)

		header, ok := classes[cur]
		if !ok || header.Owner.IsEmpty() {
			break
		}

		cur = header.Owner.Unwrap()
	}

	return chain
}

func canonicalizeClassType(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, ct sym.ClassType) sym.ClassType {
	if len(ct.Components) == 0 {
		return ct
	}

	last := ct.Components[len(ct.Components)-1]

	chain := ownerChain(classes, last.Sym)
	if len(chain) <= 1 {
		return sym.NewClassType(sym.SimpleClassTy{
			Sym:         last.Sym,
			TypeArgs:    canonicalizeArgs(classes, last.TypeArgs),
			Annotations: last.Annotations,
		})
	}

	written := make(map[sym.ClassSymbol]sym.SimpleClassTy, len(ct.Components))
	for _, c := range ct.Components {
		written[c.Sym] = c
	}

	comps := make([]sym.SimpleClassTy, len(chain))

	for i, cs := range chain {
		if w, ok := written[cs]; ok {
			comps[i] = sym.SimpleClassTy{Sym: cs, TypeArgs: canonicalizeArgs(classes, w.TypeArgs), Annotations: w.Annotations}
		} else {
			comps[i] = sym.SimpleClassTy{Sym: cs}
		}
	}

	return sym.NewClassType(comps...)
}

func canonicalizeArgs(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, args []sym.Type) []sym.Type {
	if len(args) == 0 {
		return nil
	}

	out := make([]sym.Type, len(args))
	for i, a := range args {
		out[i] = Canonicalize(classes, a)
	}

	return out
}

// CanonicalizeAll rewrites every type reachable from a class-bound class's
// superclass, interfaces, field and method signatures in place.
func CanonicalizeAll(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, stb map[sym.ClassSymbol]*bound.SourceTypeBoundClass) {
	for _, c := range stb {
		if c.SuperClassType != nil {
			c.SuperClassType = Canonicalize(classes, c.SuperClassType)
		}

		for i, it := range c.InterfaceTypes {
			c.InterfaceTypes[i] = Canonicalize(classes, it)
		}

		for i := range c.Fields {
			c.Fields[i].Type = Canonicalize(classes, c.Fields[i].Type)
		}

		for i := range c.Methods {
			m := &c.Methods[i]

			m.Result = Canonicalize(classes, m.Result)

			for j := range m.Parameters {
				m.Parameters[j].Type = Canonicalize(classes, m.Parameters[j].Type)
			}

			for j, th := range m.Throws {
				m.Throws[j] = Canonicalize(classes, th)
			}
		}

		for k, b := range c.TypeParameterBounds {
			if b.HasClassBound {
				b.ClassBound = Canonicalize(classes, b.ClassBound)
			}

			for i, ib := range b.InterfaceBounds {
				b.InterfaceBounds[i] = Canonicalize(classes, ib)
			}

			c.TypeParameterBounds[k] = b
		}
	}
}
