package typedarray

import (
	"math/big"

	"github.com/calebcase/bitfmt/internal/berr"
)

// isFloat reports whether either operand forces float64 arithmetic,
// mirroring the expr package's own arith promotion rule: float if
// either side is a float64, otherwise both must be *big.Int.
func isFloat(a, b interface{}) bool {
	_, af := a.(float64)
	_, bf := b.(float64)
	return af || bf
}

func asFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case *big.Int:
		f := new(big.Float).SetInt(n)
		out, _ := f.Float64()
		return out, nil
	default:
		return 0, berr.BadDtype.New("value %v is not numeric", v)
	}
}

func asBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	default:
		return nil, berr.BadDtype.New("value %v is not an integer", v)
	}
}

func addNumeric(elem, operand interface{}) (interface{}, error) {
	return numericOp2(elem, operand, func(x, y float64) float64 { return x + y }, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
}

func subNumeric(elem, operand interface{}) (interface{}, error) {
	return numericOp2(elem, operand, func(x, y float64) float64 { return x - y }, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

func mulNumeric(elem, operand interface{}) (interface{}, error) {
	return numericOp2(elem, operand, func(x, y float64) float64 { return x * y }, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

func divNumeric(elem, operand interface{}) (interface{}, error) {
	if isFloat(elem, operand) {
		x, err := asFloat(elem)
		if err != nil {
			return nil, err
		}
		y, err := asFloat(operand)
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, berr.Arithmetic.New("division by zero")
		}
		return x / y, nil
	}

	x, err := asBigInt(elem)
	if err != nil {
		return nil, err
	}
	y, err := asBigInt(operand)
	if err != nil {
		return nil, err
	}
	if y.Sign() == 0 {
		return nil, berr.Arithmetic.New("division by zero")
	}
	return new(big.Int).Quo(x, y), nil
}

func numericOp2(elem, operand interface{}, ff func(x, y float64) float64, fi func(x, y *big.Int) *big.Int) (interface{}, error) {
	if isFloat(elem, operand) {
		x, err := asFloat(elem)
		if err != nil {
			return nil, err
		}
		y, err := asFloat(operand)
		if err != nil {
			return nil, err
		}
		return ff(x, y), nil
	}

	x, err := asBigInt(elem)
	if err != nil {
		return nil, err
	}
	y, err := asBigInt(operand)
	if err != nil {
		return nil, err
	}
	return fi(x, y), nil
}
