package bind

import (
	"fmt"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// ClassBinder implements §4.G: binding a hierarchy-bound class's full type
// signature (superclass/interface types, type-parameter bounds, field and
// method types) and materializing the synthetic members javac itself adds
// (default constructor, enum (String,int) constructor, enum values()/
// valueOf(String)).
type ClassBinder struct {
	classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass
	types   *TypeBinder
	log     *diag.Log
}

// NewClassBinder constructs a ClassBinder over a hierarchy-bound class set.
func NewClassBinder(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, log *diag.Log) *ClassBinder {
	return &ClassBinder{classes: classes, types: NewTypeBinder(classes), log: log}
}

// BindAll binds every class, skipping (with a logged diagnostic) any that
// fails.
func (cb *ClassBinder) BindAll() map[sym.ClassSymbol]*bound.SourceTypeBoundClass {
	result := make(map[sym.ClassSymbol]*bound.SourceTypeBoundClass, len(cb.classes))

	for cs, header := range cb.classes {
		stb, err := cb.bindOne(cs, header)
		if err != nil {
			cb.log.Error(diag.CannotResolve, cs.String(), "%s", err)
			continue
		}

		result[cs] = stb
	}

	return result
}

// lexicalTypeVars gathers the type-parameter symbols in scope at cs: its
// own, then every lexically enclosing class's, innermost wins on a name
// collision (which JLS forbids anyway, but binding tolerates it).
func (cb *ClassBinder) lexicalTypeVars(cs sym.ClassSymbol) tyVarScope {
	var chain []sym.ClassSymbol

	for cur := cs; cur.IsValid(); {
		h, ok := cb.classes[cur]
		if !ok {
			break
		}

		chain = append(chain, cur)

		if h.Owner.IsEmpty() {
			break
		}

		cur = h.Owner.Unwrap()
	}

	vars := make(tyVarScope)

	for i := len(chain) - 1; i >= 0; i-- {
		for _, tv := range cb.classes[chain[i]].TypeParameters {
			vars[tv.Name] = tv
		}
	}

	return vars
}

func (cb *ClassBinder) bindOne(cs sym.ClassSymbol, header *bound.SourceHeaderBoundClass) (*bound.SourceTypeBoundClass, error) {
	decl := header.Decl
	vars := cb.lexicalTypeVars(cs)

	superType, err := cb.bindSuperclass(cs, vars, header)
	if err != nil {
		return nil, err
	}

	interfaceTypes, err := cb.bindInterfaces(cs, vars, header)
	if err != nil {
		return nil, err
	}

	tpBounds, err := cb.bindTypeParameterBounds(cs, vars, header)
	if err != nil {
		return nil, err
	}

	fields, err := cb.bindFields(cs, vars, header)
	if err != nil {
		return nil, err
	}

	methods, err := cb.bindMethods(cs, vars, header)
	if err != nil {
		return nil, err
	}

	annos := make([]bound.AnnotationUse, 0, len(decl.Annotations))

	for _, a := range decl.Annotations {
		au, err := cb.bindAnnotation(cs, vars, a)
		if err != nil {
			return nil, err
		}

		annos = append(annos, au)
	}

	stb := &bound.SourceTypeBoundClass{
		SourceHeaderBoundClass: *header,
		SuperClassType:         superType,
		InterfaceTypes:         interfaceTypes,
		TypeParameterBounds:    tpBounds,
		Fields:                 fields,
		Methods:                methods,
		Annotations:            annos,
	}

	applyAnnotationMetadata(stb)

	return stb, nil
}

func (cb *ClassBinder) bindSuperclass(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass) (sym.Type, error) {
	decl := header.Decl

	if decl.Kind != tree.KindClass && decl.Kind != tree.KindEnum {
		return nil, nil
	}

	if decl.Extends != nil {
		return cb.types.Bind(cs, vars, decl.Extends)
	}

	if !header.Superclass.IsValid() {
		return nil, nil
	}

	return sym.NewClassType(sym.SimpleClassTy{Sym: header.Superclass}), nil
}

func (cb *ClassBinder) bindInterfaces(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass) ([]sym.Type, error) {
	decl := header.Decl

	var out []sym.Type

	if decl.Kind == tree.KindAnnotation && len(header.Interfaces) > 0 {
		// The implicit java.lang.annotation.Annotation superinterface
		// HierarchyBinder synthesized; there's no source TypeExpr for it.
		out = append(out, sym.NewClassType(sym.SimpleClassTy{Sym: header.Interfaces[0]}))
	}

	for _, te := range decl.Implements {
		t, err := cb.types.Bind(cs, vars, te)
		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, nil
}

func (cb *ClassBinder) bindTypeParameterBounds(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass) (map[sym.TyVarSymbol]bound.TypeParameterBound, error) {
	result := make(map[sym.TyVarSymbol]bound.TypeParameterBound, len(header.TypeParameters))

	for i, tp := range header.Decl.TypeParameters {
		tv := header.TypeParameters[i]

		b := bound.TypeParameterBound{Sym: tv}

		for j, boundExpr := range tp.Bounds {
			t, err := cb.types.Bind(cs, vars, boundExpr)
			if err != nil {
				return nil, err
			}

			if j == 0 && !cb.isInterfaceType(t) {
				b.ClassBound = t
				b.HasClassBound = true
			} else {
				b.InterfaceBounds = append(b.InterfaceBounds, t)
			}
		}

		result[tv] = b
	}

	return result, nil
}

// isInterfaceType reports whether t names a source class bound on an
// interface kind. A classpath (not-yet-loaded) or otherwise unknown symbol
// is conservatively treated as a class bound, since javac only needs this
// distinction to pick the first-slot class bound out of an otherwise
// all-interfaces F-bound list, and a first bound is vanishingly rarely an
// interface in practice.
func (cb *ClassBinder) isInterfaceType(t sym.Type) bool {
	ct, ok := t.(sym.ClassType)
	if !ok {
		return false
	}

	h, ok := cb.classes[ct.Sym()]
	if !ok {
		return false
	}

	return h.Kind == tree.KindInterface || h.Kind == tree.KindAnnotation
}

func (cb *ClassBinder) bindFields(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass) ([]bound.FieldInfo, error) {
	decl := header.Decl
	seen := make(map[string]bool, len(decl.Fields))

	var out []bound.FieldInfo

	for _, fd := range decl.Fields {
		if seen[fd.Name] {
			cb.log.Error(diag.DuplicateDeclaration, cs.String(), "duplicate field %q", fd.Name)
			continue
		}

		seen[fd.Name] = true

		access := fd.Access
		if decl.Kind == tree.KindInterface || decl.Kind == tree.KindAnnotation {
			access |= classfile.AccPublic | classfile.AccStatic | classfile.AccFinal
		}

		ty, err := cb.types.Bind(cs, vars, fd.Type)
		if err != nil {
			return nil, err
		}

		annos := make([]bound.AnnotationUse, 0, len(fd.Annotations))

		for _, a := range fd.Annotations {
			au, err := cb.bindAnnotation(cs, vars, a)
			if err != nil {
				return nil, err
			}

			annos = append(annos, au)
		}

		out = append(out, bound.FieldInfo{
			Sym:             sym.FieldSymbol{Owner: cs, Name: fd.Name},
			Type:            ty,
			Access:          access,
			Decl:            &fd,
			InitExpr:        fd.Init,
			Annotations:     annos,
			TypeAnnotations: extractTypeAnnotations(ty),
		})
	}

	for _, ec := range decl.EnumConstants {
		// Each enum constant is itself a public static final field of the
		// enum's own type (JLS 8.9.1).
		annos := make([]bound.AnnotationUse, 0, len(ec.Annotations))

		for _, a := range ec.Annotations {
			au, err := cb.bindAnnotation(cs, vars, a)
			if err != nil {
				return nil, err
			}

			annos = append(annos, au)
		}

		out = append(out, bound.FieldInfo{
			Sym:         sym.FieldSymbol{Owner: cs, Name: ec.Name},
			Type:        sym.NewClassType(sym.SimpleClassTy{Sym: cs}),
			Access:      classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum,
			Annotations: annos,
		})
	}

	return out, nil
}

func (cb *ClassBinder) bindMethods(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass) ([]bound.MethodInfo, error) {
	decl := header.Decl

	var out []bound.MethodInfo

	hasCtor := false

	for _, md := range decl.Methods {
		if md.IsConstructor {
			hasCtor = true
		}

		mi, err := cb.bindMethod(cs, vars, header, md)
		if err != nil {
			return nil, err
		}

		out = append(out, mi)
	}

	if decl.Kind == tree.KindClass && !hasCtor {
		out = append(out, cb.syntheticDefaultConstructor(cs, header))
	}

	if decl.Kind == tree.KindEnum {
		if !hasEnumConstructor(decl.Methods) {
			out = append(out, cb.syntheticEnumConstructor(cs))
		}

		out = append(out, cb.syntheticEnumValues(cs), cb.syntheticEnumValueOf(cs))
	}

	return out, nil
}

func (cb *ClassBinder) bindMethod(cs sym.ClassSymbol, vars tyVarScope, header *bound.SourceHeaderBoundClass, md tree.MethodDecl) (bound.MethodInfo, error) {
	decl := header.Decl

	name := md.Name
	if md.IsConstructor {
		name = "<init>"
	}

	methodSym := sym.MethodSymbol{Owner: cs, Name: name}

	methodVars := make(tyVarScope, len(vars)+len(md.TypeParameters))
	for k, v := range vars {
		methodVars[k] = v
	}

	typeParams := make([]sym.TyVarSymbol, len(md.TypeParameters))
	tpBounds := make(map[sym.TyVarSymbol]bound.TypeParameterBound, len(md.TypeParameters))

	for i, tp := range md.TypeParameters {
		tv := sym.TyVarSymbol{Owner: sym.MethodOwner(methodSym), Name: tp.Name}
		typeParams[i] = tv
		methodVars[tp.Name] = tv
	}

	for i, tp := range md.TypeParameters {
		tv := typeParams[i]
		b := bound.TypeParameterBound{Sym: tv}

		for j, boundExpr := range tp.Bounds {
			t, err := cb.types.Bind(cs, methodVars, boundExpr)
			if err != nil {
				return bound.MethodInfo{}, err
			}

			if j == 0 && !cb.isInterfaceType(t) {
				b.ClassBound = t
				b.HasClassBound = true
			} else {
				b.InterfaceBounds = append(b.InterfaceBounds, t)
			}
		}

		tpBounds[tv] = b
	}

	params := make([]bound.ParamInfo, 0, len(md.Parameters))
	paramAnnos := make([][]bound.AnnotationUse, 0, len(md.Parameters))

	for _, p := range md.Parameters {
		ty, err := cb.types.Bind(cs, methodVars, p.Type)
		if err != nil {
			return bound.MethodInfo{}, err
		}

		params = append(params, bound.ParamInfo{Name: p.Name, Type: ty})

		var pa []bound.AnnotationUse

		for _, ta := range p.Annotations {
			au, err := cb.bindAnnotation(cs, methodVars, ta.Annotation)
			if err != nil {
				return bound.MethodInfo{}, err
			}

			pa = append(pa, au)
		}

		paramAnnos = append(paramAnnos, pa)
	}

	var result sym.Type = sym.VoidType{}

	if !md.IsConstructor {
		t, err := cb.types.Bind(cs, methodVars, md.Result)
		if err != nil {
			return bound.MethodInfo{}, err
		}

		result = t
	}

	throws := make([]sym.Type, 0, len(md.Throws))

	for _, te := range md.Throws {
		t, err := cb.types.Bind(cs, methodVars, te)
		if err != nil {
			return bound.MethodInfo{}, err
		}

		throws = append(throws, t)
	}

	annos := make([]bound.AnnotationUse, 0, len(md.Annotations))

	for _, a := range md.Annotations {
		au, err := cb.bindAnnotation(cs, methodVars, a)
		if err != nil {
			return bound.MethodInfo{}, err
		}

		annos = append(annos, au)
	}

	access := desugarMethodAccess(decl.Kind, md, header.Access)

	return bound.MethodInfo{
		Sym:                methodSym,
		Access:             access,
		IsConstructor:      md.IsConstructor,
		TypeParameters:     typeParams,
		TypeParameterBounds: tpBounds,
		Parameters:         params,
		Result:             result,
		Throws:             throws,
		Annotations:        annos,
		TypeAnnotations:    append(extractTypeAnnotations(result), typeAnnotationsOfThrows(throws)...),
		ParamAnnotations:   paramAnnos,
		AnnotationDefault:  md.AnnotationDefault,
	}, nil
}

func typeAnnotationsOfThrows(throws []sym.Type) []sym.TypeAnnotation {
	var out []sym.TypeAnnotation
	for _, t := range throws {
		out = append(out, extractTypeAnnotations(t)...)
	}

	return out
}

// desugarMethodAccess applies §4.G's method access-flag table: interface
// and annotation methods are implicitly public unless private, and abstract
// unless they carry a body, are static, or are private (Java 9+ private
// interface methods); enum constructors are forced private; ACC_STRICT
// propagates from the enclosing class to any non-abstract method.
func desugarMethodAccess(kind tree.TypeKind, md tree.MethodDecl, ownerAccess uint16) uint16 {
	access := md.Access

	if kind == tree.KindInterface || kind == tree.KindAnnotation {
		if access&classfile.AccPrivate == 0 {
			access |= classfile.AccPublic
		}

		if access&(classfile.AccStatic|classfile.AccPrivate) == 0 && !md.HasBody {
			access |= classfile.AccAbstract
		}
	}

	if kind == tree.KindEnum && md.IsConstructor {
		access &^= classfile.AccPublic | classfile.AccProtected
		access |= classfile.AccPrivate
	}

	if ownerAccess&classfile.AccStrict != 0 && access&classfile.AccAbstract == 0 {
		access |= classfile.AccStrict
	}

	return access
}

func hasEnumConstructor(methods []tree.MethodDecl) bool {
	for _, md := range methods {
		if md.IsConstructor && len(md.Parameters) == 2 &&
			isStringType(md.Parameters[0].Type) && isIntType(md.Parameters[1].Type) {
			return true
		}
	}

	return false
}

func isStringType(te tree.TypeExpr) bool {
	ct, ok := te.(tree.ClassTypeExpr)
	if !ok || len(ct.Segments) == 0 {
		return false
	}

	return ct.Segments[len(ct.Segments)-1].Name == "String"
}

func isIntType(te tree.TypeExpr) bool {
	pt, ok := te.(tree.PrimitiveTypeExpr)
	return ok && pt.Name == "int"
}

func (cb *ClassBinder) syntheticDefaultConstructor(cs sym.ClassSymbol, header *bound.SourceHeaderBoundClass) bound.MethodInfo {
	access := header.Access & (classfile.AccPublic | classfile.AccProtected | classfile.AccPrivate)

	var params []bound.ParamInfo

	if header.Owner.HasValue() && header.Access&classfile.AccStatic == 0 {
		// Non-static member classes get a mandated enclosing-instance
		// parameter ahead of any explicit ones (there are none here, since
		// this is the no-arg default constructor).
		params = append(params, bound.ParamInfo{
			Name:   "this$0",
			Type:   sym.NewClassType(sym.SimpleClassTy{Sym: header.Owner.Unwrap()}),
			Access: classfile.AccMandated | classfile.AccSynthetic,
		})
	}

	return bound.MethodInfo{
		Sym:           sym.MethodSymbol{Owner: cs, Name: "<init>"},
		Access:        access,
		IsConstructor: true,
		Parameters:    params,
		Result:        sym.VoidType{},
		Synthetic:     true,
	}
}

func (cb *ClassBinder) syntheticEnumConstructor(cs sym.ClassSymbol) bound.MethodInfo {
	return bound.MethodInfo{
		Sym:           sym.MethodSymbol{Owner: cs, Name: "<init>"},
		Access:        classfile.AccPrivate,
		IsConstructor: true,
		Parameters: []bound.ParamInfo{
			{Name: "$enum$name", Type: sym.NewClassType(sym.SimpleClassTy{Sym: sym.NewClassSymbol("java/lang/String")}), Access: classfile.AccSynthetic},
			{Name: "$enum$ordinal", Type: sym.PrimitiveType{Kind: sym.Int}, Access: classfile.AccSynthetic},
		},
		Result:    sym.VoidType{},
		Synthetic: true,
	}
}

func (cb *ClassBinder) syntheticEnumValues(cs sym.ClassSymbol) bound.MethodInfo {
	return bound.MethodInfo{
		Sym:       sym.MethodSymbol{Owner: cs, Name: "values"},
		Access:    classfile.AccPublic | classfile.AccStatic,
		Result:    sym.ArrayType{Element: sym.NewClassType(sym.SimpleClassTy{Sym: cs})},
		Synthetic: true,
	}
}

func (cb *ClassBinder) syntheticEnumValueOf(cs sym.ClassSymbol) bound.MethodInfo {
	return bound.MethodInfo{
		Sym:    sym.MethodSymbol{Owner: cs, Name: "valueOf"},
		Access: classfile.AccPublic | classfile.AccStatic,
		Parameters: []bound.ParamInfo{
			{Name: "name", Type: sym.NewClassType(sym.SimpleClassTy{Sym: sym.NewClassSymbol("java/lang/String")})},
		},
		Result:    sym.NewClassType(sym.SimpleClassTy{Sym: cs}),
		Synthetic: true,
	}
}

func (cb *ClassBinder) bindAnnotation(cs sym.ClassSymbol, vars tyVarScope, a tree.Annotation) (bound.AnnotationUse, error) {
	t, err := cb.types.Bind(cs, vars, a.Type)
	if err != nil {
		return bound.AnnotationUse{}, err
	}

	ct, ok := t.(sym.ClassType)
	if !ok {
		return bound.AnnotationUse{}, fmt.Errorf("bind: annotation type must be a class type")
	}

	args := make([]bound.AnnotationArgUse, len(a.Args))

	for i, arg := range a.Args {
		args[i] = bound.AnnotationArgUse{Name: arg.Name, Expr: arg.Value}
	}

	return bound.AnnotationUse{Sym: ct.Sym(), Args: args}, nil
}
