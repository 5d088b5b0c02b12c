package lower

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

// computeNests groups every class by the top-level ancestor of its nesting
// chain (JVMS 4.7.28: the host is the outermost class, which lists every
// transitively nested member; nothing is recorded for a class that is
// itself top-level and has no nested members).
func computeNests(headers map[sym.ClassSymbol]*bound.SourceHeaderBoundClass) map[sym.ClassSymbol][]sym.ClassSymbol {
	nests := make(map[sym.ClassSymbol][]sym.ClassSymbol)

	for cs, h := range headers {
		if h.Owner.IsEmpty() {
			continue
		}

		host := topLevelOwner(headers, cs)
		nests[host] = append(nests[host], cs)
	}

	return nests
}

// topLevelOwner walks a class's Owner chain up to its outermost ancestor.
func topLevelOwner(headers map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, cs sym.ClassSymbol) sym.ClassSymbol {
	for {
		h, ok := headers[cs]
		if !ok || h.Owner.IsEmpty() {
			return cs
		}

		cs = h.Owner.Unwrap()
	}
}

// nestHost returns cs's nest host (its outermost ancestor) and true, unless
// cs has no owner (it IS the host, and gets no NestHost attribute of its
// own).
func (l *Lowerer) nestHost(cs sym.ClassSymbol) (sym.ClassSymbol, bool) {
	h, ok := l.headers[cs]
	if !ok || h.Owner.IsEmpty() {
		return sym.ClassSymbol{}, false
	}

	return topLevelOwner(l.headers, cs), true
}

// innerClasses synthesises one InnerClasses entry for every class
// referenced by cs that is itself a nested class: cs's own owner chain,
// plus any nested class reachable through a superclass, interface, field or
// method type, throws clause, or annotation argument (§4.J "InnerClasses
// entries for every referenced inner class").
func (l *Lowerer) innerClasses(cs sym.ClassSymbol, c *bound.SourceTypeBoundClass) []classfile.InnerClass {
	seen := make(map[sym.ClassSymbol]bool)
	var order []sym.ClassSymbol

	add := func(ref sym.ClassSymbol) {
		if !ref.IsValid() || seen[ref] {
			return
		}

		h, ok := l.headers[ref]
		if !ok || h.Owner.IsEmpty() {
			return
		}

		seen[ref] = true
		order = append(order, ref)
	}

	for owner, ok := cs, true; ok; {
		add(owner)
		h := l.headers[owner]
		ok = h != nil && h.Owner.HasValue()
		if ok {
			owner = h.Owner.Unwrap()
		}
	}

	walkType(c.SuperClassType, add)
	for _, it := range c.InterfaceTypes {
		walkType(it, add)
	}

	for i := range c.Fields {
		walkType(c.Fields[i].Type, add)
		walkAnnotations(c.Fields[i].Annotations, add)
	}

	for i := range c.Methods {
		m := &c.Methods[i]

		walkType(m.Result, add)

		for _, th := range m.Throws {
			walkType(th, add)
		}

		for _, p := range m.Parameters {
			walkType(p.Type, add)
		}

		walkAnnotations(m.Annotations, add)

		for _, pa := range m.ParamAnnotations {
			walkAnnotations(pa, add)
		}
	}

	walkAnnotations(c.Annotations, add)

	if len(order) == 0 {
		return nil
	}

	out := make([]classfile.InnerClass, len(order))

	for i, ref := range order {
		h := l.headers[ref]

		entry := classfile.InnerClass{
			InnerName:       ref.BinaryName(),
			InnerSimpleName: ref.SimpleName(),
			AccessFlags:     h.Access,
		}

		if owner := h.Owner.Unwrap(); owner.IsValid() {
			entry.OuterName = owner.BinaryName()
		}

		out[i] = entry
	}

	return out
}

// walkType visits every class symbol reachable from t: the class itself (if
// t is a ClassType), each qualifying component, each type argument, and
// recurses through arrays, wildcards and intersections.
func walkType(t sym.Type, add func(sym.ClassSymbol)) {
	switch v := t.(type) {
	case sym.ClassType:
		for _, comp := range v.Components {
			add(comp.Sym)

			for _, ta := range comp.TypeArgs {
				walkType(ta, add)
			}
		}
	case sym.ArrayType:
		walkType(v.Element, add)
	case sym.WildcardType:
		if v.Bound != nil {
			walkType(v.Bound, add)
		}
	case sym.IntersectionType:
		for _, comp := range v.Components {
			walkType(comp, add)
		}
	}
}

// walkAnnotations visits every class symbol referenced by a declaration
// annotation list: the annotation type itself, plus any class-literal or
// enum-constant argument (recursing into nested annotation/array values).
func walkAnnotations(annos []bound.AnnotationUse, add func(sym.ClassSymbol)) {
	for _, au := range annos {
		add(au.Sym)

		for _, arg := range au.Args {
			if arg.Value != nil {
				walkValue(*arg.Value, add)
			}
		}
	}
}

func walkValue(v sym.Value, add func(sym.ClassSymbol)) {
	switch v.Kind {
	case sym.ConstClass:
		walkType(v.ClassLit, add)
	case sym.ConstEnum:
		add(v.EnumOwner)
	case sym.ConstAnnotation:
		if v.Annotation != nil {
			walkAnnotations([]bound.AnnotationUse{{Sym: v.Annotation.Sym, Args: annotationValueArgs(v.Annotation.Args)}}, add)
		}
	case sym.ConstArray:
		for _, e := range v.Elements {
			walkValue(e, add)
		}
	}
}
