// Package sym implements the symbol and type IR (§4.A): value types for
// class, field, method and type-variable symbols, hashed and compared by the
// value of their tuple rather than by identity.
package sym

import "strings"

// ClassSymbol identifies a class, interface, enum or annotation type by its
// JVMS 4.2.1 binary name, e.g. "java/util/Map$Entry". Equality is by value.
type ClassSymbol struct {
	// Binary is the slash-separated, '$'-nested binary name.
	Binary string
}

// NewClassSymbol constructs a ClassSymbol for the given binary name.
func NewClassSymbol(binary string) ClassSymbol {
	return ClassSymbol{binary}
}

// BinaryName returns the JVMS 4.2.1 binary name, e.g. "java/util/Map$Entry".
func (c ClassSymbol) BinaryName() string {
	return c.Binary
}

// PackageName returns the slash-separated package name derived from the
// binary name, or "" for the unnamed package.
func (c ClassSymbol) PackageName() string {
	if i := strings.LastIndexByte(c.Binary, '/'); i >= 0 {
		return c.Binary[:i]
	}

	return ""
}

// SimpleName returns the innermost simple name, i.e. the portion after the
// last '/' and, for a nested class, after its last '$'.
func (c ClassSymbol) SimpleName() string {
	s := c.Binary
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}

	if i := strings.LastIndexByte(s, '$'); i >= 0 {
		return s[i+1:]
	}

	return s
}

// IsValid reports whether this symbol names an actual class, as opposed to
// the zero value used as a "no symbol" sentinel.
func (c ClassSymbol) IsValid() bool {
	return c.Binary != ""
}

// String implements fmt.Stringer.
func (c ClassSymbol) String() string {
	return c.Binary
}

// ModuleSymbol identifies a Java module by its module name (JLS, module
// declarations), e.g. "java.base".
type ModuleSymbol struct {
	Name string
}

// FieldSymbol identifies a field by its owning class and simple name.
// Fields are not overload-distinguished (there can be only one field of a
// given name per class), so the pair alone is a unique key.
type FieldSymbol struct {
	Owner ClassSymbol
	Name  string
}

// MethodSymbol identifies a method by its owning class and simple name.
// Methods ARE overload-distinguished, but not at the symbol level: resolving
// a particular overload additionally compares descriptors once the
// MethodInfo for every method named Name on Owner has been bound.
type MethodSymbol struct {
	Owner ClassSymbol
	Name  string
}

// TyVarOwner is either a ClassSymbol or a MethodSymbol; type variables are
// scoped to whichever declares them.
type TyVarOwner struct {
	Class  ClassSymbol
	Method MethodSymbol
	// IsMethod discriminates which of Class/Method is populated.
	IsMethod bool
}

// ClassOwner constructs a TyVarOwner owned by a class (e.g. class type
// parameters <T>).
func ClassOwner(c ClassSymbol) TyVarOwner {
	return TyVarOwner{Class: c}
}

// MethodOwner constructs a TyVarOwner owned by a method (e.g. method type
// parameters <T> on a generic method).
func MethodOwner(m MethodSymbol) TyVarOwner {
	return TyVarOwner{Method: m, IsMethod: true}
}

// TyVarSymbol identifies a type variable by its declaring owner and name.
// Owner + Name is unique: a class cannot redeclare a type parameter name,
// and a method's type parameters shadow the enclosing class's.
type TyVarSymbol struct {
	Owner TyVarOwner
	Name  string
}
