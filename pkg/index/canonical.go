package index

import (
	"fmt"

	"github.com/google/turbine/internal/util"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

// MemberLookup resolves one step of canonical name resolution: given the
// class currently being traversed and a simple name, it returns the member
// type found on owner (directly declared, or inherited from its superclass
// or interface chain) plus its access flags. The traversal itself (walking
// owner's supertypes) is the hierarchy binder's responsibility (§4.F); this
// package only orchestrates the chain of calls and enforces visibility plus
// cycle-breaking.
type MemberLookup func(owner sym.ClassSymbol, name string) (member sym.ClassSymbol, accessFlags uint16, ok bool)

// ResolveCanonical implements JLS 6.5.5.2 canonical resolution for a
// compound name already split into a root LookupResult (e.g. from
// TopLevelIndex.Lookup) plus the remaining simple names (§4.D): "resolve A,
// then consult the enclosing class's children() for B, then C, traversing
// superclass and interface chains". originPackage is the package of the
// compilation unit performing the lookup, used to check package-private
// visibility. Cycles (a member lookup that revisits a class already on the
// current chain) are broken by a seen-set and reported as an error rather
// than looping forever.
func ResolveCanonical(root LookupResult, lookup MemberLookup, originPackage string) (sym.ClassSymbol, error) {
	current := root.Sym
	seen := util.NewKeyedSeenSet[sym.ClassSymbol]()
	seen.Push(current)

	for _, name := range root.Remaining {
		member, flags, ok := lookup(current, name)
		if !ok {
			return sym.ClassSymbol{}, fmt.Errorf("index: cannot resolve member type %q of %s", name, current)
		}

		if seen.Contains(member) {
			return sym.ClassSymbol{}, fmt.Errorf("index: cyclic member resolution involving %s", member)
		}

		if !visible(flags, member.PackageName(), originPackage) {
			return sym.ClassSymbol{}, fmt.Errorf("index: %s is not visible from package %q", member, originPackage)
		}

		seen.Push(member)
		current = member
	}

	return current, nil
}

// visible applies the subset of JLS 6.6 accessibility that canonical
// resolution needs: public and protected members are visible everywhere
// (protected's "same subclass" restriction applies to non-type members and
// is enforced elsewhere, if at all, for member *types* protected behaves
// like public for this purpose); package-private members are visible only
// from the same package; private members are never visible through
// qualified-name resolution from outside their own class.
func visible(flags uint16, declaringPackage, originPackage string) bool {
	switch {
	case flags&classfile.AccPublic != 0, flags&classfile.AccProtected != 0:
		return true
	case flags&classfile.AccPrivate != 0:
		return false
	default:
		return declaringPackage == originPackage
	}
}
