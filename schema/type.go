package schema

import (
	"math/big"

	"github.com/calebcase/bitfmt/dtype"
	"github.com/calebcase/bitfmt/expr"
)

// Type is a dtype descriptor whose sizes may be expressions rather
// than concrete integers, resolved against an environment at bind
// time. A dtype.Dtype only ever carries concrete widths (see §4.E);
// Type is the schema layer's bridge from a field's size_expr to a
// concrete dtype.Dtype for that one invocation.
type Type struct {
	shape dtype.Shape

	// Single.
	kind   dtype.Kind
	endian dtype.Endian
	size   expr.Node

	// Array. count == nil means unsized (unpack-only).
	elem  *Type
	count expr.Node

	// Tuple.
	elems []Type
}

// SingleType builds a Type for a scalar kind whose width is size,
// evaluated fresh on every Resolve.
func SingleType(kind dtype.Kind, endian dtype.Endian, size expr.Node) Type {
	return Type{shape: dtype.Single, kind: kind, endian: endian, size: size}
}

// FixedType builds a Single Type with a concrete, unchanging width.
func FixedType(kind dtype.Kind, endian dtype.Endian, size int) Type {
	return SingleType(kind, endian, expr.Lit{Value: big.NewInt(int64(size))})
}

// ArrayType builds an Array Type of elements elem, count of them.
// A nil count means unsized: consume to the end of the available bits
// on unpack, and pack whatever length the value provides.
func ArrayType(elem Type, count expr.Node) Type {
	e := elem
	return Type{shape: dtype.Array, elem: &e, count: count}
}

// FixedArrayType builds an Array Type with a concrete, unchanging count.
func FixedArrayType(elem Type, count int) Type {
	return ArrayType(elem, expr.Lit{Value: big.NewInt(int64(count))})
}

// UnsizedArrayType builds an unpack-only Array Type with no declared count.
func UnsizedArrayType(elem Type) Type {
	return ArrayType(elem, nil)
}

// TupleType builds a Tuple Type of the given elements, in order.
func TupleType(elems ...Type) Type {
	cp := make([]Type, len(elems))
	copy(cp, elems)
	return Type{shape: dtype.Tuple, elems: cp}
}

// Resolve evaluates every size/count expression in t against env and
// returns the concrete dtype.Dtype for this one invocation.
func (t Type) Resolve(env *expr.Env) (dtype.Dtype, error) {
	switch t.shape {
	case dtype.Array:
		elemD, err := t.elem.Resolve(env)
		if err != nil {
			return dtype.Dtype{}, err
		}
		if t.count == nil {
			return dtype.NewArray(elemD, -1), nil
		}
		cv, err := t.count.Eval(env)
		if err != nil {
			return dtype.Dtype{}, err
		}
		n, err := expr.ToCount(cv)
		if err != nil {
			return dtype.Dtype{}, err
		}
		return dtype.NewArray(elemD, n), nil
	case dtype.Tuple:
		elems := make([]dtype.Dtype, len(t.elems))
		for i, e := range t.elems {
			d, err := e.Resolve(env)
			if err != nil {
				return dtype.Dtype{}, err
			}
			elems[i] = d
		}
		return dtype.NewTuple(elems...), nil
	default:
		sv, err := t.size.Eval(env)
		if err != nil {
			return dtype.Dtype{}, err
		}
		n, err := expr.ToCount(sv)
		if err != nil {
			return dtype.Dtype{}, err
		}
		return dtype.New(t.kind, t.endian, n)
	}
}
