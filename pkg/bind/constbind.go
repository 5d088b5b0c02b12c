package bind

import (
	"fmt"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/env"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// fieldEnv memoizes each constant field's folded Value, letting one field's
// initializer reference another (in this class, a superclass, or any other
// class in the compilation) without re-evaluating it, and letting a
// self-referential initializer be reported as "not constant" rather than
// evaluated twice or looped forever.
type fieldEnv = env.LazyEnv[sym.FieldSymbol, sym.Value]

// ConstBinder implements §4.H: folding every field initializer, annotation
// argument and annotation-element default into a sym.Value, strictly
// following JLS 15.28/15.4 constant-expression evaluation. It runs after
// ClassBinder (§4.G) so every field, method and annotation-type signature it
// needs is already bound.
type ConstBinder struct {
	classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass
	types   *TypeBinder
	log     *diag.Log
}

// NewConstBinder constructs a ConstBinder over a fully class-bound set.
// types must be the same TypeBinder (or one sharing the same hierarchy-bound
// class set) used to produce classes, since class-literal and nested-
// annotation evaluation binds further tree.TypeExpr nodes.
func NewConstBinder(classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass, types *TypeBinder, log *diag.Log) *ConstBinder {
	return &ConstBinder{classes: classes, types: types, log: log}
}

// BindAll folds every field initializer, then every annotation use's
// arguments (including the annotation-default element value), across every
// class. A field whose initializer is not a constant expression is left
// with a nil FieldInfo.Value. When it is only non-constant because it refers
// to itself, directly or through a cycle of other fields, no diagnostic is
// logged; any other evaluation failure is logged as an EXPRESSION_ERROR
// warning, which does not fail the phase. This matches JLS 4.12.4's narrower
// notion of "constant variable" without turning every non-constant
// initializer into an error: turbine only needs the ones that are, for
// ConstantValue attributes and annotation arguments.
func (cbd *ConstBinder) BindAll() {
	fe := env.NewLazyEnv[sym.FieldSymbol, sym.Value](nil)

	for owner, stb := range cbd.classes {
		owner, stb := owner, stb

		for i := range stb.Fields {
			fi := stb.Fields[i]
			if fi.InitExpr == nil {
				continue
			}

			initExpr := fi.InitExpr

			fe.Put(fi.Sym, func(_ sym.FieldSymbol, self *fieldEnv) (sym.Value, error) {
				return cbd.eval(owner, initExpr, self)
			})
		}
	}

	for _, stb := range cbd.classes {
		for i := range stb.Fields {
			fi := &stb.Fields[i]
			if fi.InitExpr == nil {
				continue
			}

			v, err := fe.Get(fi.Sym)
			if err != nil {
				if _, ok := env.IsCycle[sym.FieldSymbol](err); !ok {
					cbd.log.Warn(diag.ExpressionError, fi.Sym.Owner.String(), "%s.%s: %s", fi.Sym.Owner, fi.Sym.Name, err)
				}

				continue
			}

			vv := v
			fi.Value = &vv
		}
	}

	for owner, stb := range cbd.classes {
		cbd.bindAnnotationUses(owner, stb.Annotations, fe)

		for i := range stb.Fields {
			cbd.bindAnnotationUses(owner, stb.Fields[i].Annotations, fe)
		}

		for i := range stb.Methods {
			m := &stb.Methods[i]

			cbd.bindAnnotationUses(owner, m.Annotations, fe)

			for _, pa := range m.ParamAnnotations {
				cbd.bindAnnotationUses(owner, pa, fe)
			}

			if m.AnnotationDefault != nil {
				v, err := cbd.eval(owner, m.AnnotationDefault, fe)
				if err != nil {
					cbd.log.Error(diag.InvalidAnnotationArgument, owner.String(), "%s.%s: default value: %s", owner, m.Sym.Name, err)
					continue
				}

				v = cbd.autoWrap(m.Result, v)
				m.AnnotationDefaultValue = &v
			}
		}
	}
}

// bindAnnotationUses folds every argument of each annotation use in annos,
// resolving the bare "value" shorthand and auto-wrapping a single value into
// a one-element array when the annotation type's declared element is itself
// an array (JLS 9.7.2).
func (cbd *ConstBinder) bindAnnotationUses(owner sym.ClassSymbol, annos []bound.AnnotationUse, fe *fieldEnv) {
	for i := range annos {
		au := &annos[i]

		annoType, hasSource := cbd.classes[au.Sym]

		for j := range au.Args {
			arg := &au.Args[j]

			name := arg.Name
			if name == "" {
				name = "value"
			}

			var elemType sym.Type

			if hasSource {
				for _, m := range annoType.Methods {
					if m.Sym.Name == name {
						elemType = m.Result
						break
					}
				}
			}

			v, err := cbd.eval(owner, arg.Expr, fe)
			if err != nil {
				cbd.log.Error(diag.InvalidAnnotationArgument, owner.String(), "@%s.%s: %s", au.Sym, name, err)
				continue
			}

			v = cbd.autoWrap(elemType, v)
			arg.Value = &v
		}
	}
}

// autoWrap implements the annotation-array shorthand: "@Foo(1)" for an
// element declared "int[] value()" means "@Foo({1})". elemType may be nil
// when the annotation type isn't source-bound (classpath annotation), in
// which case the value is left as evaluated.
func (cbd *ConstBinder) autoWrap(elemType sym.Type, v sym.Value) sym.Value {
	if _, isArray := elemType.(sym.ArrayType); isArray && v.Kind != sym.ConstArray {
		return sym.Value{Kind: sym.ConstArray, Elements: []sym.Value{v}}
	}

	return v
}

// evalAnnotation folds a nested annotation value (an annotation used as
// another annotation's argument, or as an element of an array argument).
func (cbd *ConstBinder) evalAnnotation(owner sym.ClassSymbol, a tree.Annotation, fe *fieldEnv) (*sym.AnnotationValue, error) {
	t, err := cbd.types.Bind(owner, tyVarScope{}, a.Type)
	if err != nil {
		return nil, err
	}

	ct, ok := t.(sym.ClassType)
	if !ok {
		return nil, fmt.Errorf("bind: %s is not an annotation type", t)
	}

	annoSym := ct.Sym()
	annoType, hasSource := cbd.classes[annoSym]

	args := make([]sym.AnnotationArg, 0, len(a.Args))

	for _, arg := range a.Args {
		name := arg.Name
		if name == "" {
			name = "value"
		}

		var elemType sym.Type

		if hasSource {
			for _, m := range annoType.Methods {
				if m.Sym.Name == name {
					elemType = m.Result
					break
				}
			}
		}

		v, err := cbd.eval(owner, arg.Value, fe)
		if err != nil {
			return nil, err
		}

		args = append(args, sym.AnnotationArg{Name: name, Value: cbd.autoWrap(elemType, v)})
	}

	return &sym.AnnotationValue{Sym: annoSym, Args: args}, nil
}
