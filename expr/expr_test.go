package expr_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebcase/bitfmt/expr"
	"github.com/calebcase/bitfmt/internal/berr"
)

func lit(v interface{}) expr.Node { return expr.Lit{Value: v} }
func ref(base string, accessors ...expr.Accessor) expr.Node {
	return expr.Ref{Base: base, Accessors: accessors}
}

func TestRefResolvesBoundName(t *testing.T) {
	env := expr.NewEnv(nil)
	env.Bind("w", big.NewInt(12))

	v, err := ref("w").Eval(env)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(12), v)
}

func TestRefUnresolvedNameErrors(t *testing.T) {
	env := expr.NewEnv(nil)

	_, err := ref("missing").Eval(env)
	require.Error(t, err)
	require.True(t, berr.UnresolvedName.Has(err))
}

func TestRefClimbsParentChain(t *testing.T) {
	root := expr.NewEnv(nil)
	root.Bind("w", big.NewInt(7))
	child := root.PushChild()

	v, err := ref("w").Eval(child)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(7), v)
}

func TestRefChildShadowsParent(t *testing.T) {
	root := expr.NewEnv(nil)
	root.Bind("w", big.NewInt(1))
	child := root.PushChild()
	child.Bind("w", big.NewInt(2))

	v, err := ref("w").Eval(child)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(2), v)
}

func TestDottedFieldAccess(t *testing.T) {
	env := expr.NewEnv(nil)
	env.Bind("header", map[string]interface{}{"size": big.NewInt(42)})

	v, err := ref("header", expr.Field("size")).Eval(env)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), v)
}

func TestDottedFieldAccessOnNonMapErrors(t *testing.T) {
	env := expr.NewEnv(nil)
	env.Bind("header", big.NewInt(1))

	_, err := ref("header", expr.Field("size")).Eval(env)
	require.Error(t, err)
	require.True(t, berr.UnresolvedName.Has(err))
}

func TestIndexedAccess(t *testing.T) {
	env := expr.NewEnv(nil)
	env.Bind("lengths", []interface{}{big.NewInt(10), big.NewInt(20), big.NewInt(30)})

	v, err := ref("lengths", expr.Index(lit(big.NewInt(1)))).Eval(env)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(20), v)
}

func TestIndexedAccessOutOfRange(t *testing.T) {
	env := expr.NewEnv(nil)
	env.Bind("lengths", []interface{}{big.NewInt(10)})

	_, err := ref("lengths", expr.Index(lit(big.NewInt(5)))).Eval(env)
	require.Error(t, err)
	require.True(t, berr.OutOfRange.Has(err))
}

func TestArithmetic(t *testing.T) {
	tcs := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"+", 3, 4, 7},
		{"-", 10, 4, 6},
		{"*", 6, 7, 42},
		{"/", 17, 5, 3},
		{"%", 17, 5, 2},
	}
	for i, tc := range tcs {
		t.Run(tc.op, func(t *testing.T) {
			n := expr.Binary{Op: tc.op, L: lit(big.NewInt(tc.l)), R: lit(big.NewInt(tc.r))}
			v, err := n.Eval(expr.NewEnv(nil))
			require.NoError(t, err, "case %d", i)
			require.Equal(t, big.NewInt(tc.want), v)
		})
	}
}

func TestDivisionByZeroIsArithmeticError(t *testing.T) {
	n := expr.Binary{Op: "/", L: lit(big.NewInt(1)), R: lit(big.NewInt(0))}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.Arithmetic.Has(err))
}

func TestModuloByZeroIsArithmeticError(t *testing.T) {
	n := expr.Binary{Op: "%", L: lit(big.NewInt(1)), R: lit(big.NewInt(0))}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.Arithmetic.Has(err))
}

func TestComparisonYieldsIntegerZeroOrOne(t *testing.T) {
	tcs := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"==", 3, 3, 1},
		{"==", 3, 4, 0},
		{"!=", 3, 4, 1},
		{"<", 3, 4, 1},
		{"<=", 4, 4, 1},
		{">", 5, 4, 1},
		{">=", 4, 4, 1},
	}
	for i, tc := range tcs {
		t.Run(tc.op, func(t *testing.T) {
			n := expr.Binary{Op: tc.op, L: lit(big.NewInt(tc.l)), R: lit(big.NewInt(tc.r))}
			v, err := n.Eval(expr.NewEnv(nil))
			require.NoError(t, err, "case %d", i)
			require.Equal(t, big.NewInt(tc.want), v)
		})
	}
}

func TestLogicalAndShortCircuits(t *testing.T) {
	poison := expr.Ref{Base: "never-bound"}
	n := expr.Binary{Op: "&&", L: lit(big.NewInt(0)), R: poison}

	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), v)
}

func TestLogicalOrShortCircuits(t *testing.T) {
	poison := expr.Ref{Base: "never-bound"}
	n := expr.Binary{Op: "||", L: lit(big.NewInt(1)), R: poison}

	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), v)
}

func TestLogicalAndEvaluatesRightWhenLeftTruthy(t *testing.T) {
	n := expr.Binary{Op: "&&", L: lit(big.NewInt(1)), R: lit(big.NewInt(5))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), v)
}

func TestUnaryNegate(t *testing.T) {
	n := expr.Unary{Op: "-", X: lit(big.NewInt(5))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(-5), v)
}

func TestUnaryNot(t *testing.T) {
	n := expr.Unary{Op: "!", X: lit(big.NewInt(0))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), v)
}

func TestCondSelectsThenBranch(t *testing.T) {
	n := expr.Cond{Cond: lit(big.NewInt(1)), Then: lit(big.NewInt(10)), Else: lit(big.NewInt(20))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10), v)
}

func TestCondSelectsElseBranch(t *testing.T) {
	n := expr.Cond{Cond: lit(big.NewInt(0)), Then: lit(big.NewInt(10)), Else: lit(big.NewInt(20))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(20), v)
}

func TestFloorDivision(t *testing.T) {
	tcs := []struct {
		l, r, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}
	for _, tc := range tcs {
		n := expr.Binary{Op: "//", L: lit(big.NewInt(tc.l)), R: lit(big.NewInt(tc.r))}
		v, err := n.Eval(expr.NewEnv(nil))
		require.NoError(t, err)
		require.Equal(t, big.NewInt(tc.want), v)
	}
}

func TestFloorDivisionOnFloatsFloors(t *testing.T) {
	n := expr.Binary{Op: "//", L: lit(7.0), R: lit(2.0)}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, 3.0, v)
}

func TestFloorDivisionByZeroIsArithmeticError(t *testing.T) {
	n := expr.Binary{Op: "//", L: lit(big.NewInt(1)), R: lit(big.NewInt(0))}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.Arithmetic.Has(err))
}

func TestShiftOperators(t *testing.T) {
	tcs := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"<<", 1, 4, 16},
		{">>", 16, 4, 1},
		{">>", -1, 1, -1},
	}
	for _, tc := range tcs {
		n := expr.Binary{Op: tc.op, L: lit(big.NewInt(tc.l)), R: lit(big.NewInt(tc.r))}
		v, err := n.Eval(expr.NewEnv(nil))
		require.NoError(t, err)
		require.Equal(t, big.NewInt(tc.want), v)
	}
}

func TestShiftByNegativeCountErrors(t *testing.T) {
	n := expr.Binary{Op: "<<", L: lit(big.NewInt(1)), R: lit(big.NewInt(-1))}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.OutOfRange.Has(err))
}

func TestBitwiseMaskOperators(t *testing.T) {
	tcs := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"&", 0b1100, 0b1010, 0b1000},
		{"|", 0b1100, 0b1010, 0b1110},
		{"^", 0b1100, 0b1010, 0b0110},
	}
	for _, tc := range tcs {
		n := expr.Binary{Op: tc.op, L: lit(big.NewInt(tc.l)), R: lit(big.NewInt(tc.r))}
		v, err := n.Eval(expr.NewEnv(nil))
		require.NoError(t, err)
		require.Equal(t, big.NewInt(tc.want), v)
	}
}

func TestBitwiseOperatorsRejectFloats(t *testing.T) {
	n := expr.Binary{Op: "&", L: lit(big.NewInt(1)), R: lit(1.5)}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.Arithmetic.Has(err))
}

func TestUnaryBitwiseComplement(t *testing.T) {
	n := expr.Unary{Op: "~", X: lit(big.NewInt(0))}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(-1), v)
}

func TestUnaryBitwiseComplementRejectsFloat(t *testing.T) {
	n := expr.Unary{Op: "~", X: lit(1.5)}
	_, err := n.Eval(expr.NewEnv(nil))
	require.Error(t, err)
	require.True(t, berr.Arithmetic.Has(err))
}

func TestFloatArithmeticPromotes(t *testing.T) {
	n := expr.Binary{Op: "+", L: lit(big.NewInt(1)), R: lit(1.5)}
	v, err := n.Eval(expr.NewEnv(nil))
	require.NoError(t, err)
	require.Equal(t, 2.5, v)
}

func TestTruthy(t *testing.T) {
	require.False(t, expr.Truthy(big.NewInt(0)))
	require.True(t, expr.Truthy(big.NewInt(1)))
	require.False(t, expr.Truthy(0.0))
	require.True(t, expr.Truthy(1.5))
	require.False(t, expr.Truthy(""))
	require.True(t, expr.Truthy("x"))
}

func TestToCountRejectsNegative(t *testing.T) {
	_, err := expr.ToCount(big.NewInt(-1))
	require.Error(t, err)
	require.True(t, berr.OutOfRange.Has(err))
}

func TestToCountAcceptsNonNegative(t *testing.T) {
	n, err := expr.ToCount(big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
