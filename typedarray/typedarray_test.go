package typedarray_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/dtype"
	"github.com/calebcase/bitfmt/typedarray"
)

func bitsxFromBytes(t *testing.T, data []byte) bitsx.Bits {
	b, err := bitsx.FromBytes(data, -1)
	require.NoError(t, err)
	return b
}

func bi(v int64) *big.Int { return big.NewInt(v) }

func u8() dtype.Dtype {
	dt, err := dtype.New(dtype.UINT, dtype.NONE, 8)
	if err != nil {
		panic(err)
	}
	return dt
}

func u16() dtype.Dtype {
	dt, err := dtype.New(dtype.UINT, dtype.NONE, 16)
	if err != nil {
		panic(err)
	}
	return dt
}

func TestNewRejectsUnsizedElement(t *testing.T) {
	elem := u8()
	unsized := dtype.NewArray(elem, -1)
	_, err := typedarray.New(unsized)
	require.Error(t, err)
}

func TestAppendAndUnpack(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)

	require.NoError(t, a.Append(bi(1)))
	require.NoError(t, a.Append(bi(2)))
	require.NoError(t, a.Append(bi(3)))

	require.Equal(t, 3, a.Len())

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(1), bi(2), bi(3)}, vals)
}

func TestExtend(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)

	require.NoError(t, a.Extend([]interface{}{bi(10), bi(20), bi(30)}))
	require.Equal(t, 3, a.Len())

	v, err := a.Get(1)
	require.NoError(t, err)
	require.Equal(t, bi(20), v)
}

func TestInsertShiftsRight(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(4)}))

	require.NoError(t, a.Insert(2, bi(3)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(1), bi(2), bi(3), bi(4)}, vals)
}

func TestInsertAtEndAppends(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Append(bi(1)))

	require.NoError(t, a.Insert(1, bi(2)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(1), bi(2)}, vals)
}

func TestInsertOutOfRange(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)

	err = a.Insert(5, bi(1))
	require.Error(t, err)
}

func TestPopDefaultLast(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	v, err := a.Pop(-1)
	require.NoError(t, err)
	require.Equal(t, bi(3), v)
	require.Equal(t, 2, a.Len())
}

func TestPopByIndex(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	v, err := a.Pop(0)
	require.NoError(t, err)
	require.Equal(t, bi(1), v)

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(2), bi(3)}, vals)
}

func TestPopEmptyErrors(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)

	_, err = a.Pop(-1)
	require.Error(t, err)
}

func TestSetOverwritesInPlace(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	require.NoError(t, a.Set(1, bi(99)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(1), bi(99), bi(3)}, vals)
}

func TestSetDtypeReinterpretsBits(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(0), bi(1)}))

	require.NoError(t, a.SetDtype(u16()))
	require.Equal(t, 1, a.Len())

	v, err := a.Get(0)
	require.NoError(t, err)
	require.Equal(t, bi(1), v)
}

func TestSetDtypeRejectsIncompatibleWidth(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	err = a.SetDtype(u16())
	require.Error(t, err)
}

func TestToBytes(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(0x01), bi(0x02)}))

	require.Equal(t, []byte{0x01, 0x02}, a.ToBytes())
}

func TestAddAssignBroadcasts(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	require.NoError(t, a.AddAssign(bi(10)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(11), bi(12), bi(13)}, vals)
}

func TestSubAssignBroadcasts(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(10), bi(20)}))

	require.NoError(t, a.SubAssign(bi(5)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(5), bi(15)}, vals)
}

func TestMulAssignBroadcasts(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(1), bi(2), bi(3)}))

	require.NoError(t, a.MulAssign(bi(4)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(4), bi(8), bi(12)}, vals)
}

func TestDivAssignBroadcasts(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Extend([]interface{}{bi(10), bi(20)}))

	require.NoError(t, a.DivAssign(bi(2)))

	vals, err := a.Unpack()
	require.NoError(t, err)
	require.Equal(t, []interface{}{bi(5), bi(10)}, vals)
}

func TestDivAssignByZeroErrors(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Append(bi(10)))

	err = a.DivAssign(bi(0))
	require.Error(t, err)
}

func TestMulAssignOverflowErrors(t *testing.T) {
	a, err := typedarray.New(u8())
	require.NoError(t, err)
	require.NoError(t, a.Append(bi(200)))

	err = a.MulAssign(bi(2))
	require.Error(t, err)
}

func TestFromBitsRejectsMisalignedLength(t *testing.T) {
	dt, err := dtype.New(dtype.UINT, dtype.NONE, 16)
	require.NoError(t, err)

	packed := bitsxFromBytes(t, []byte{0x01, 0x02, 0x03})
	_, err = typedarray.FromBits(dt, packed)
	require.Error(t, err)
}
