package expr

import (
	"math"
	"math/big"

	"github.com/calebcase/bitfmt/internal/berr"
)

// Truthy implements the boolean-context coercion used by If and
// Repeat: zero is false, non-zero is true.
func Truthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case *big.Int:
		return x.Sign() != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return v != nil
	}
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// ToCount coerces v to a non-negative int for use as a Repeat count,
// per §4.F: the value is coerced to an integer and must be >= 0. A
// value that is not a non-negative integer fails with OutOfRange.
func ToCount(v interface{}) (int, error) {
	i, err := toInt(v)
	if err != nil {
		if berr.BadDtype.Has(err) {
			return 0, berr.OutOfRange.New("repeat count must be a non-negative integer, got %T", v)
		}
		return 0, err
	}
	if i < 0 {
		return 0, berr.OutOfRange.New("repeat count must be >= 0, got %d", i)
	}
	return i, nil
}

func toInt(v interface{}) (int, error) {
	switch x := v.(type) {
	case *big.Int:
		if !x.IsInt64() {
			return 0, berr.OutOfRange.New("value %s does not fit a machine int", x)
		}
		return int(x.Int64()), nil
	case int:
		return x, nil
	case float64:
		if x != float64(int(x)) {
			return 0, berr.OutOfRange.New("value %v is not an integer", x)
		}
		return int(x), nil
	default:
		return 0, berr.BadDtype.New("cannot interpret %T as an integer", v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case *big.Int:
		f := new(big.Float).SetInt(x)
		out, _ := f.Float64()
		return out, true
	default:
		return 0, false
	}
}

func evalUnary(op string, v interface{}) (interface{}, error) {
	switch op {
	case "-":
		switch x := v.(type) {
		case *big.Int:
			return new(big.Int).Neg(x), nil
		case float64:
			return -x, nil
		default:
			return nil, berr.Arithmetic.New("unary - requires a numeric operand, got %T", v)
		}
	case "~":
		x, ok := v.(*big.Int)
		if !ok {
			return nil, berr.Arithmetic.New("unary ~ requires an integer operand, got %T", v)
		}
		return new(big.Int).Not(x), nil
	case "!":
		return boolInt(!Truthy(v)), nil
	default:
		return nil, berr.BadSyntax.New("unknown unary operator %q", op)
	}
}

func evalBinary(op string, l, r interface{}) (interface{}, error) {
	switch op {
	case "==":
		return boolInt(equalValues(l, r)), nil
	case "!=":
		return boolInt(!equalValues(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareValues(op, l, r)
	case "+", "-", "*", "/", "//", "%":
		return arith(op, l, r)
	case "<<", ">>", "&", "|", "^":
		return bitwise(op, l, r)
	default:
		return nil, berr.BadSyntax.New("unknown binary operator %q", op)
	}
}

// bitwise implements the shift (<< >>) and mask (& | ^) operators.
// These are integer-only, matching Python's (and this grammar's
// source language's) refusal to define bitwise ops over floats.
func bitwise(op string, l, r interface{}) (interface{}, error) {
	li, ok1 := l.(*big.Int)
	ri, ok2 := r.(*big.Int)
	if !ok1 || !ok2 {
		return nil, berr.Arithmetic.New("%s requires integer operands, got %T and %T", op, l, r)
	}
	switch op {
	case "<<":
		n, err := shiftCount(ri)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Lsh(li, n), nil
	case ">>":
		n, err := shiftCount(ri)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Rsh(li, n), nil
	case "&":
		return new(big.Int).And(li, ri), nil
	case "|":
		return new(big.Int).Or(li, ri), nil
	case "^":
		return new(big.Int).Xor(li, ri), nil
	}
	return nil, berr.BadSyntax.New("unknown bitwise operator %q", op)
}

func shiftCount(v *big.Int) (uint, error) {
	if v.Sign() < 0 {
		return 0, berr.OutOfRange.New("shift count must be >= 0, got %s", v)
	}
	if !v.IsUint64() {
		return 0, berr.OutOfRange.New("shift count %s is too large", v)
	}
	return uint(v.Uint64()), nil
}

func isFloaty(l, r interface{}) bool {
	_, lf := l.(float64)
	_, rf := r.(float64)
	return lf || rf
}

func arith(op string, l, r interface{}) (interface{}, error) {
	if isFloaty(l, r) {
		lf, ok1 := toFloat(l)
		rf, ok2 := toFloat(r)
		if !ok1 || !ok2 {
			return nil, berr.Arithmetic.New("%s requires numeric operands, got %T and %T", op, l, r)
		}
		switch op {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, berr.Arithmetic.New("division by zero")
			}
			return lf / rf, nil
		case "//":
			if rf == 0 {
				return nil, berr.Arithmetic.New("division by zero")
			}
			return math.Floor(lf / rf), nil
		case "%":
			return nil, berr.Arithmetic.New("%% is not defined over float operands")
		}
	}

	li, ok1 := l.(*big.Int)
	ri, ok2 := r.(*big.Int)
	if !ok1 || !ok2 {
		return nil, berr.Arithmetic.New("%s requires integer operands, got %T and %T", op, l, r)
	}
	switch op {
	case "+":
		return new(big.Int).Add(li, ri), nil
	case "-":
		return new(big.Int).Sub(li, ri), nil
	case "*":
		return new(big.Int).Mul(li, ri), nil
	case "/":
		if ri.Sign() == 0 {
			return nil, berr.Arithmetic.New("division by zero")
		}
		return new(big.Int).Quo(li, ri), nil
	case "//":
		if ri.Sign() == 0 {
			return nil, berr.Arithmetic.New("division by zero")
		}
		return floorDiv(li, ri), nil
	case "%":
		if ri.Sign() == 0 {
			return nil, berr.Arithmetic.New("division by zero")
		}
		return new(big.Int).Rem(li, ri), nil
	}
	return nil, berr.BadSyntax.New("unknown arithmetic operator %q", op)
}

// floorDiv is integer division that floors toward negative infinity
// (Python's //), as opposed to big.Int.Quo's truncation toward zero.
func floorDiv(l, r *big.Int) *big.Int {
	q, m := new(big.Int).QuoRem(l, r, new(big.Int))
	if m.Sign() != 0 && (m.Sign() < 0) != (r.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func equalValues(l, r interface{}) bool {
	if isFloaty(l, r) {
		lf, ok1 := toFloat(l)
		rf, ok2 := toFloat(r)
		return ok1 && ok2 && lf == rf
	}
	if li, ok := l.(*big.Int); ok {
		if ri, ok := r.(*big.Int); ok {
			return li.Cmp(ri) == 0
		}
	}
	return l == r
}

func compareValues(op string, l, r interface{}) (interface{}, error) {
	var cmp int
	if isFloaty(l, r) {
		lf, ok1 := toFloat(l)
		rf, ok2 := toFloat(r)
		if !ok1 || !ok2 {
			return nil, berr.Arithmetic.New("%s requires numeric operands, got %T and %T", op, l, r)
		}
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		li, ok1 := l.(*big.Int)
		ri, ok2 := r.(*big.Int)
		if !ok1 || !ok2 {
			return nil, berr.Arithmetic.New("%s requires integer operands, got %T and %T", op, l, r)
		}
		cmp = li.Cmp(ri)
	}
	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return boolInt(result), nil
}
