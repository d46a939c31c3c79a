package bits

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitAt(t *testing.T) {
	type TC struct {
		name string
		bits Bits
		i    int
		want bool
	}

	b, err := FromBytes([]byte{0b1010_0000}, 4)
	require.NoError(t, err)

	tcs := []TC{
		{name: "bit0", bits: b, i: 0, want: true},
		{name: "bit1", bits: b, i: 1, want: false},
		{name: "bit2", bits: b, i: 2, want: true},
		{name: "bit3", bits: b, i: 3, want: false},
	}

	for i, tc := range tcs {
		t.Run(fmt.Sprintf("[%d]%s", i, tc.name), func(t *testing.T) {
			got, err := tc.bits.BitAt(tc.i)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestBitAtOutOfRange(t *testing.T) {
	b, err := FromBytes([]byte{0xff}, 4)
	require.NoError(t, err)

	_, err = b.BitAt(4)
	require.Error(t, err)

	_, err = b.BitAt(-1)
	require.Error(t, err)
}

func TestSliceSharesStorageAndIsReadOnly(t *testing.T) {
	full, err := FromBytes([]byte{0b1111_0000, 0b0000_1111}, 16)
	require.NoError(t, err)

	mid, err := full.Slice(4, 12)
	require.NoError(t, err)
	require.Equal(t, 8, mid.Len())

	for i := 0; i < 8; i++ {
		want := i < 4
		got, err := mid.BitAt(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestEqual(t *testing.T) {
	a, err := FromBytes([]byte{0b1010_1010}, 8)
	require.NoError(t, err)
	b, err := FromBytes([]byte{0b1010_1010}, 8)
	require.NoError(t, err)
	c, err := FromBytes([]byte{0b1010_1011}, 8)
	require.NoError(t, err)

	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))

	short, err := a.Slice(0, 4)
	require.NoError(t, err)
	require.False(t, Equal(a, short))
}

func TestToBytesPadsTail(t *testing.T) {
	b := FromBools([]bool{true, false, true})
	require.Equal(t, []byte{0b1010_0000}, b.ToBytes())
}

func TestConcat(t *testing.T) {
	a := FromBools([]bool{true, false})
	b := FromBools([]bool{false, true, true})
	got := Concat(a, b)

	require.Equal(t, 5, got.Len())
	want := []bool{true, false, false, true, true}
	for i, w := range want {
		v, err := got.BitAt(i)
		require.NoError(t, err)
		require.Equal(t, w, v)
	}
}

func TestConcatOfSlicesRoundTrips(t *testing.T) {
	src, err := FromBytes([]byte{0xAB, 0xCD}, 16)
	require.NoError(t, err)

	head, err := src.Slice(0, 8)
	require.NoError(t, err)
	tail, err := src.Slice(8, 16)
	require.NoError(t, err)

	require.True(t, Equal(src, Concat(head, tail)))
}

func TestCount(t *testing.T) {
	b, err := FromBytes([]byte{0b1011_0010}, 8)
	require.NoError(t, err)
	require.Equal(t, 4, b.Count(true))
	require.Equal(t, 4, b.Count(false))
}

func TestZerosAndOnes(t *testing.T) {
	z, err := Zeros(5)
	require.NoError(t, err)
	require.Equal(t, 0, z.Count(true))

	o, err := Ones(5)
	require.NoError(t, err)
	require.Equal(t, 5, o.Count(true))
}

func TestChunks(t *testing.T) {
	b, err := FromBytes([]byte{0xAB, 0xCD, 0xEF}, 20)
	require.NoError(t, err)

	it, err := b.Chunks(8)
	require.NoError(t, err)

	var lens []int
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		lens = append(lens, c.Len())
	}
	require.Equal(t, []int{8, 8, 4}, lens)
}

func TestBitwiseAlgebra(t *testing.T) {
	type TC struct {
		name    string
		a, b    []byte
		wantAnd []byte
		wantOr  []byte
		wantXor []byte
	}

	tcs := []TC{
		{
			name:    "byte-aligned",
			a:       []byte{0b1100_1100},
			b:       []byte{0b1010_1010},
			wantAnd: []byte{0b1000_1000},
			wantOr:  []byte{0b1110_1110},
			wantXor: []byte{0b0110_0110},
		},
	}

	for i, tc := range tcs {
		t.Run(fmt.Sprintf("[%d]%s", i, tc.name), func(t *testing.T) {
			a, err := FromBytes(tc.a, 8)
			require.NoError(t, err)
			b, err := FromBytes(tc.b, 8)
			require.NoError(t, err)

			and, err := And(a, b)
			require.NoError(t, err)
			require.Equal(t, tc.wantAnd, and.ToBytes())

			or, err := Or(a, b)
			require.NoError(t, err)
			require.Equal(t, tc.wantOr, or.ToBytes())

			xor, err := Xor(a, b)
			require.NoError(t, err)
			require.Equal(t, tc.wantXor, xor.ToBytes())
		})
	}
}

func TestBitwiseAlgebraUnaligned(t *testing.T) {
	full, err := FromBytes([]byte{0b1111_0000, 0b0000_1111}, 16)
	require.NoError(t, err)

	a, err := full.Slice(4, 12)
	require.NoError(t, err)
	b, err := Ones(8)
	require.NoError(t, err)

	and, err := And(a, b)
	require.NoError(t, err)
	require.Equal(t, a.ToBytes(), and.ToBytes())
}

func TestBitwiseAlgebraLengthMismatch(t *testing.T) {
	a, err := Zeros(4)
	require.NoError(t, err)
	b, err := Zeros(8)
	require.NoError(t, err)

	_, err = And(a, b)
	require.Error(t, err)
}

func TestNot(t *testing.T) {
	a, err := FromBytes([]byte{0b1100_1100}, 8)
	require.NoError(t, err)
	got := Not(a)
	require.Equal(t, []byte{0b0011_0011}, got.ToBytes())
}

func TestNotInvolution(t *testing.T) {
	a := FromBools([]bool{true, false, true, true, false})
	require.True(t, Equal(a, Not(Not(a))))
}
