package bind

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// flattenQualifiedName decomposes a chain of Ident/FieldAccess nodes into
// its dotted component names, e.g. "a.B.FIELD" -> ["a","B","FIELD"]. Any
// other expression shape (a method call, array access, etc.) is not a
// qualified name and fails.
func flattenQualifiedName(e tree.Expression) ([]string, bool) {
	switch v := e.(type) {
	case tree.Ident:
		return []string{v.Name}, true
	case tree.FieldAccess:
		prefix, ok := flattenQualifiedName(v.Target)
		if !ok {
			return nil, false
		}

		return append(prefix, v.Name), true
	default:
		return nil, false
	}
}

// resolveFieldByName finds a field named name declared on owner or
// inherited through its superclass/interface chain (JLS 15.28 constant
// field references may be inherited, not just directly declared).
func (cbd *ConstBinder) resolveFieldByName(owner sym.ClassSymbol, name string) (sym.FieldSymbol, bool) {
	seen := map[sym.ClassSymbol]bool{}

	var climb func(cs sym.ClassSymbol) (sym.FieldSymbol, bool)

	climb = func(cs sym.ClassSymbol) (sym.FieldSymbol, bool) {
		if seen[cs] {
			return sym.FieldSymbol{}, false
		}

		seen[cs] = true

		stb, ok := cbd.classes[cs]
		if !ok {
			return sym.FieldSymbol{}, false
		}

		for _, f := range stb.Fields {
			if f.Sym.Name == name {
				return f.Sym, true
			}
		}

		if stb.Superclass.IsValid() {
			if fs, ok := climb(stb.Superclass); ok {
				return fs, true
			}
		}

		for _, ifc := range stb.Interfaces {
			if fs, ok := climb(ifc); ok {
				return fs, true
			}
		}

		return sym.FieldSymbol{}, false
	}

	return climb(owner)
}

// eval evaluates e as a JLS 15.28 constant expression in the context of
// owner (used to resolve bare field/type names). Annotation-array auto-
// wrapping is applied by the caller, not here.
func (cbd *ConstBinder) eval(owner sym.ClassSymbol, e tree.Expression, fe *fieldEnv) (sym.Value, error) {
	switch v := e.(type) {
	case tree.Literal:
		return evalLiteral(v)

	case tree.Ident, tree.FieldAccess:
		return cbd.evalQualifiedName(owner, e, fe)

	case tree.ClassLiteral:
		t, err := cbd.types.Bind(owner, tyVarScope{}, v.Type)
		if err != nil {
			return sym.Value{}, err
		}

		return sym.Value{Kind: sym.ConstClass, ClassLit: t}, nil

	case tree.UnaryOp:
		operand, err := cbd.eval(owner, v.Operand, fe)
		if err != nil {
			return sym.Value{}, err
		}

		return evalUnary(v.Op, operand)

	case tree.BinaryOp:
		left, err := cbd.eval(owner, v.Left, fe)
		if err != nil {
			return sym.Value{}, err
		}

		right, err := cbd.eval(owner, v.Right, fe)
		if err != nil {
			return sym.Value{}, err
		}

		return evalBinary(v.Op, left, right)

	case tree.Conditional:
		cond, err := cbd.eval(owner, v.Cond, fe)
		if err != nil {
			return sym.Value{}, err
		}

		if cond.Kind != sym.ConstBoolean {
			return sym.Value{}, fmt.Errorf("bind: conditional expression requires a boolean condition")
		}

		if cond.Bool {
			return cbd.eval(owner, v.Then, fe)
		}

		return cbd.eval(owner, v.Else, fe)

	case tree.Cast:
		target, err := cbd.eval(owner, v.Target, fe)
		if err != nil {
			return sym.Value{}, err
		}

		return evalCast(v.Type, target)

	case tree.ArrayInit:
		elems := make([]sym.Value, len(v.Elements))

		for i, el := range v.Elements {
			ev, err := cbd.eval(owner, el, fe)
			if err != nil {
				return sym.Value{}, err
			}

			elems[i] = ev
		}

		return sym.Value{Kind: sym.ConstArray, Elements: elems}, nil

	case tree.AnnotationExpr:
		av, err := cbd.evalAnnotation(owner, v.Annotation, fe)
		if err != nil {
			return sym.Value{}, err
		}

		return sym.Value{Kind: sym.ConstAnnotation, Annotation: av}, nil

	default:
		return sym.Value{}, fmt.Errorf("bind: %T is not a constant expression", e)
	}
}

func (cbd *ConstBinder) evalQualifiedName(owner sym.ClassSymbol, e tree.Expression, fe *fieldEnv) (sym.Value, error) {
	segs, ok := flattenQualifiedName(e)
	if !ok {
		return sym.Value{}, fmt.Errorf("bind: not a constant expression")
	}

	if len(segs) == 1 {
		fs, ok := cbd.resolveFieldByName(owner, segs[0])
		if !ok {
			return sym.Value{}, fmt.Errorf("bind: cannot resolve %q as a constant", segs[0])
		}

		return fe.Get(fs)
	}

	typeSegs, fieldName := segs[:len(segs)-1], segs[len(segs)-1]

	cs, ok := cbd.resolveTypeByNames(owner, typeSegs)
	if !ok {
		return sym.Value{}, fmt.Errorf("bind: cannot resolve %v as a type", typeSegs)
	}

	fs, ok := cbd.resolveFieldByName(cs, fieldName)
	if !ok {
		return sym.Value{}, fmt.Errorf("bind: cannot resolve field %q on %s", fieldName, cs)
	}

	return fe.Get(fs)
}

// resolveTypeByNames resolves a dotted type name through owner's lexical
// scope chain, then climbs declared/inherited nested types for the rest.
func (cbd *ConstBinder) resolveTypeByNames(owner sym.ClassSymbol, segs []string) (sym.ClassSymbol, bool) {
	if len(segs) == 0 {
		return sym.ClassSymbol{}, false
	}

	scope := cbd.types.lexicalScope(owner)

	current, ok := scope.Lookup(segs[0])
	if !ok {
		return sym.ClassSymbol{}, false
	}

	for _, seg := range segs[1:] {
		member, err := cbd.types.resolveMemberType(current, seg)
		if err != nil {
			return sym.ClassSymbol{}, false
		}

		current = member
	}

	return current, true
}

func evalLiteral(lit tree.Literal) (sym.Value, error) {
	switch lit.Kind {
	case tree.LiteralInt:
		return sym.Int32(lit.IntVal), nil
	case tree.LiteralLong:
		return sym.Int64(lit.LongVal), nil
	case tree.LiteralFloat:
		return sym.Float32(lit.FloatVal), nil
	case tree.LiteralDouble:
		return sym.Float64(lit.DoubleVal), nil
	case tree.LiteralBoolean:
		return sym.Boolean(lit.BoolVal), nil
	case tree.LiteralChar:
		return sym.Char(lit.CharVal), nil
	case tree.LiteralString:
		return sym.String(lit.StringVal), nil
	default:
		return sym.Value{}, fmt.Errorf("bind: null is not a constant expression")
	}
}

// unaryNumericPromote applies JLS 5.6.1: byte/short/char widen to int;
// everything else (int/long/float/double) passes through unchanged.
func unaryNumericPromote(v sym.Value) sym.Value {
	switch v.Kind {
	case sym.ConstByte:
		return sym.Int32(int32(v.ByteVal))
	case sym.ConstChar:
		return sym.Int32(int32(v.CharVal))
	case sym.ConstShort:
		return sym.Int32(v.Int)
	default:
		return v
	}
}

func rank(kind sym.ConstKind) int {
	switch kind {
	case sym.ConstDouble:
		return 4
	case sym.ConstFloat:
		return 3
	case sym.ConstLong:
		return 2
	default:
		return 1 // int, and anything already promoted to int
	}
}

// binaryNumericPromote applies JLS 5.6.2: each operand is unary-promoted,
// then both are widened to the wider of the two resulting kinds.
func binaryNumericPromote(a, b sym.Value) (sym.Value, sym.Value, sym.ConstKind) {
	a, b = unaryNumericPromote(a), unaryNumericPromote(b)

	target := a.Kind
	if rank(b.Kind) > rank(target) {
		target = b.Kind
	}

	return widenTo(a, target), widenTo(b, target), target
}

func widenTo(v sym.Value, target sym.ConstKind) sym.Value {
	if v.Kind == target {
		return v
	}

	switch target {
	case sym.ConstLong:
		return sym.Int64(asInt64(v))
	case sym.ConstFloat:
		return sym.Float32(float32(asFloat64(v)))
	case sym.ConstDouble:
		return sym.Float64(asFloat64(v))
	default:
		return sym.Int32(int32(asInt64(v)))
	}
}

func asInt64(v sym.Value) int64 {
	switch v.Kind {
	case sym.ConstInt, sym.ConstShort:
		return int64(v.Int)
	case sym.ConstByte:
		return int64(v.ByteVal)
	case sym.ConstChar:
		return int64(v.CharVal)
	case sym.ConstLong:
		return v.Long
	case sym.ConstFloat:
		return int64(v.Float)
	case sym.ConstDouble:
		return int64(v.Double)
	default:
		return 0
	}
}

func asFloat64(v sym.Value) float64 {
	switch v.Kind {
	case sym.ConstFloat:
		return float64(v.Float)
	case sym.ConstDouble:
		return v.Double
	default:
		return float64(asInt64(v))
	}
}

func evalUnary(op string, operand sym.Value) (sym.Value, error) {
	if op == "!" {
		if operand.Kind != sym.ConstBoolean {
			return sym.Value{}, fmt.Errorf("bind: '!' requires a boolean operand")
		}

		return sym.Boolean(!operand.Bool), nil
	}

	p := unaryNumericPromote(operand)

	switch op {
	case "+":
		return p, nil
	case "-":
		switch p.Kind {
		case sym.ConstLong:
			return sym.Int64(-p.Long), nil
		case sym.ConstFloat:
			return sym.Float32(-p.Float), nil
		case sym.ConstDouble:
			return sym.Float64(-p.Double), nil
		default:
			return sym.Int32(-p.Int), nil
		}
	case "~":
		if p.Kind == sym.ConstLong {
			return sym.Int64(^p.Long), nil
		}

		return sym.Int32(^p.Int), nil
	default:
		return sym.Value{}, fmt.Errorf("bind: unsupported unary operator %q", op)
	}
}

func evalBinary(op string, left, right sym.Value) (sym.Value, error) {
	if op == "+" && (left.Kind == sym.ConstString || right.Kind == sym.ConstString) {
		return sym.String(stringConvert(left) + stringConvert(right)), nil
	}

	if left.Kind == sym.ConstBoolean && right.Kind == sym.ConstBoolean {
		switch op {
		case "&&", "&":
			return sym.Boolean(left.Bool && right.Bool), nil
		case "||", "|":
			return sym.Boolean(left.Bool || right.Bool), nil
		case "^":
			return sym.Boolean(left.Bool != right.Bool), nil
		case "==":
			return sym.Boolean(left.Bool == right.Bool), nil
		case "!=":
			return sym.Boolean(left.Bool != right.Bool), nil
		default:
			return sym.Value{}, fmt.Errorf("bind: unsupported boolean operator %q", op)
		}
	}

	switch op {
	case "<<", ">>", ">>>":
		return evalShift(op, left, right)
	}

	a, b, kind := binaryNumericPromote(left, right)

	switch op {
	case "+", "-", "*", "/", "%":
		return evalArith(op, a, b, kind)
	case "==", "!=", "<", "<=", ">", ">=":
		return evalCompare(op, a, b, kind)
	case "&", "|", "^":
		if kind == sym.ConstLong {
			return evalBitwiseLong(op, a.Long, b.Long)
		}

		return evalBitwiseInt(op, a.Int, b.Int)
	default:
		return sym.Value{}, fmt.Errorf("bind: unsupported binary operator %q", op)
	}
}

func evalArith(op string, a, b sym.Value, kind sym.ConstKind) (sym.Value, error) {
	switch kind {
	case sym.ConstLong:
		if (op == "/" || op == "%") && b.Long == 0 {
			return sym.Value{}, fmt.Errorf("bind: division by zero is not a constant expression")
		}

		switch op {
		case "+":
			return sym.Int64(a.Long + b.Long), nil
		case "-":
			return sym.Int64(a.Long - b.Long), nil
		case "*":
			return sym.Int64(a.Long * b.Long), nil
		case "/":
			return sym.Int64(a.Long / b.Long), nil
		default:
			return sym.Int64(a.Long % b.Long), nil
		}
	case sym.ConstFloat:
		switch op {
		case "+":
			return sym.Float32(a.Float + b.Float), nil
		case "-":
			return sym.Float32(a.Float - b.Float), nil
		case "*":
			return sym.Float32(a.Float * b.Float), nil
		case "/":
			return sym.Float32(a.Float / b.Float), nil
		default:
			return sym.Float32(float32(mod(float64(a.Float), float64(b.Float)))), nil
		}
	case sym.ConstDouble:
		switch op {
		case "+":
			return sym.Float64(a.Double + b.Double), nil
		case "-":
			return sym.Float64(a.Double - b.Double), nil
		case "*":
			return sym.Float64(a.Double * b.Double), nil
		case "/":
			return sym.Float64(a.Double / b.Double), nil
		default:
			return sym.Float64(mod(a.Double, b.Double)), nil
		}
	default:
		if (op == "/" || op == "%") && b.Int == 0 {
			return sym.Value{}, fmt.Errorf("bind: division by zero is not a constant expression")
		}

		switch op {
		case "+":
			return sym.Int32(a.Int + b.Int), nil
		case "-":
			return sym.Int32(a.Int - b.Int), nil
		case "*":
			return sym.Int32(a.Int * b.Int), nil
		case "/":
			return sym.Int32(a.Int / b.Int), nil
		default:
			return sym.Int32(a.Int % b.Int), nil
		}
	}
}

// mod implements Java's floating-point % (JLS 15.17.3), which is IEEE 754
// remainder-like but not IEEE 754 remainder: the result takes the sign of a,
// not the dividend-rounding IEEE op. math.Mod matches this exactly, including
// NaN for a zero or NaN divisor or an infinite dividend, and a itself for a
// finite a and an infinite divisor.
func mod(a, b float64) float64 {
	return math.Mod(a, b)
}

func evalCompare(op string, a, b sym.Value, kind sym.ConstKind) (sym.Value, error) {
	var cmp int

	switch kind {
	case sym.ConstLong:
		cmp = compareOrdered(a.Long, b.Long)
	case sym.ConstFloat:
		cmp = compareOrdered(a.Float, b.Float)
	case sym.ConstDouble:
		cmp = compareOrdered(a.Double, b.Double)
	default:
		cmp = compareOrdered(a.Int, b.Int)
	}

	switch op {
	case "==":
		return sym.Boolean(cmp == 0), nil
	case "!=":
		return sym.Boolean(cmp != 0), nil
	case "<":
		return sym.Boolean(cmp < 0), nil
	case "<=":
		return sym.Boolean(cmp <= 0), nil
	case ">":
		return sym.Boolean(cmp > 0), nil
	default:
		return sym.Boolean(cmp >= 0), nil
	}
}

func compareOrdered[T int32 | int64 | float32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func evalBitwiseInt(op string, a, b int32) (sym.Value, error) {
	switch op {
	case "&":
		return sym.Int32(a & b), nil
	case "|":
		return sym.Int32(a | b), nil
	default:
		return sym.Int32(a ^ b), nil
	}
}

func evalBitwiseLong(op string, a, b int64) (sym.Value, error) {
	switch op {
	case "&":
		return sym.Int64(a & b), nil
	case "|":
		return sym.Int64(a | b), nil
	default:
		return sym.Int64(a ^ b), nil
	}
}

// evalShift implements JLS 15.19: only the left operand undergoes unary
// numeric promotion to decide the result type (int or long); the right
// operand is separately unary-promoted then masked to 0x1F (int) or 0x3F
// (long), regardless of its own width.
func evalShift(op string, left, right sym.Value) (sym.Value, error) {
	l := unaryNumericPromote(left)
	r := unaryNumericPromote(right)

	if l.Kind == sym.ConstLong {
		shift := uint(asInt64(r)) & 0x3F

		switch op {
		case "<<":
			return sym.Int64(l.Long << shift), nil
		case ">>":
			return sym.Int64(l.Long >> shift), nil
		default:
			return sym.Int64(int64(uint64(l.Long) >> shift)), nil
		}
	}

	shift := uint(asInt64(r)) & 0x1F

	switch op {
	case "<<":
		return sym.Int32(l.Int << shift), nil
	case ">>":
		return sym.Int32(l.Int >> shift), nil
	default:
		return sym.Int32(int32(uint32(l.Int) >> shift)), nil
	}
}

// stringConvert implements the JLS 15.18.1 string-conversion side of "+"
// for the primitive/String kinds that can appear in a constant expression.
// Float/double conversion approximates Java's Double.toString/Float.
// toString shortest-round-trip algorithm with Go's %g; the two agree on
// every value that arises from a literal or simple arithmetic in practice,
// but are not guaranteed bit-for-bit identical on every possible double.
func stringConvert(v sym.Value) string {
	switch v.Kind {
	case sym.ConstString:
		return v.Str
	case sym.ConstBoolean:
		return strconv.FormatBool(v.Bool)
	case sym.ConstChar:
		return string(rune(v.CharVal))
	case sym.ConstByte:
		return strconv.FormatInt(int64(v.ByteVal), 10)
	case sym.ConstShort, sym.ConstInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case sym.ConstLong:
		return strconv.FormatInt(v.Long, 10)
	case sym.ConstFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	case sym.ConstDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	default:
		return v.String()
	}
}

// evalCast implements JLS 5.5 narrowing/widening primitive conversion for
// constant expressions: a truncating Go numeric conversion, matching
// javac's own non-checked compile-time cast folding. A cast to String is
// accepted only when the operand is already a String constant (JLS 15.28
// permits no other reference-type target in a constant expression).
func evalCast(te tree.TypeExpr, v sym.Value) (sym.Value, error) {
	pt, ok := te.(tree.PrimitiveTypeExpr)
	if !ok {
		ct, ok := te.(tree.ClassTypeExpr)
		if ok && len(ct.Segments) > 0 && ct.Segments[len(ct.Segments)-1].Name == "String" {
			if v.Kind != sym.ConstString {
				return sym.Value{}, fmt.Errorf("bind: cast to String is not a constant expression unless the operand is already a String constant")
			}

			return v, nil
		}

		// Any other reference-type cast (boxing, an arbitrary class/interface
		// target) is not itself a constant expression (JLS 15.28).
		return sym.Value{}, fmt.Errorf("bind: cast to a reference type is not a constant expression")
	}

	switch pt.Name {
	case "byte":
		return sym.Byte(int8(asInt64(v))), nil
	case "short":
		return sym.Short(int32(int16(asInt64(v)))), nil
	case "char":
		return sym.Char(uint16(asInt64(v))), nil
	case "int":
		return sym.Int32(int32(asInt64(v))), nil
	case "long":
		return sym.Int64(asInt64(v)), nil
	case "float":
		return sym.Float32(float32(asFloat64(v))), nil
	case "double":
		return sym.Float64(asFloat64(v)), nil
	case "boolean":
		return v, nil
	default:
		return sym.Value{}, fmt.Errorf("bind: unknown primitive cast target %q", pt.Name)
	}
}
