package bits

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendPrepend(t *testing.T) {
	m := NewMutableBits()
	m.Append(FromBools([]bool{true, false}))
	m.Prepend(FromBools([]bool{false, true, true}))

	got := m.Snapshot()
	require.Equal(t, 5, got.Len())
	want := []bool{false, true, true, true, false}
	for i, w := range want {
		v, err := got.BitAt(i)
		require.NoError(t, err)
		require.Equal(t, w, v)
	}
}

func TestInsert(t *testing.T) {
	m := FromBits(FromBools([]bool{true, true, true}))
	m.Insert(1, FromBools([]bool{false, false}))

	got := m.Snapshot()
	want := []bool{true, false, false, true, true}
	require.Equal(t, len(want), got.Len())
	for i, w := range want {
		v, err := got.BitAt(i)
		require.NoError(t, err)
		require.Equal(t, w, v)
	}
}

func TestInsertEOutOfRange(t *testing.T) {
	m := FromBits(FromBools([]bool{true, true}))
	_, err := m.InsertE(5, FromBools([]bool{false}))
	require.Error(t, err)
}

func TestInsertPanicsOnInvalidPosition(t *testing.T) {
	m := FromBits(FromBools([]bool{true}))
	require.Panics(t, func() {
		m.Insert(-1, FromBools([]bool{false}))
	})
}

func TestToBitsMovesOwnership(t *testing.T) {
	m := FromBits(FromBools([]bool{true, false, true}))
	v := m.ToBits()
	require.Equal(t, 3, v.Len())
	require.Equal(t, 0, m.Len())
}

func TestReplace(t *testing.T) {
	type TC struct {
		name        string
		src         string
		old         string
		new         string
		start       int
		count       int
		byteAligned bool
		want        string
	}

	tcs := []TC{
		{name: "replace all", src: "0x00FF00FF", old: "0xFF", new: "0x00", start: 0, count: -1, byteAligned: true, want: "0x00000000"},
		{name: "replace one", src: "0x00FF00FF", old: "0xFF", new: "0x00", start: 0, count: 1, byteAligned: true, want: "0x000000FF"},
	}

	for i, tc := range tcs {
		t.Run(fmt.Sprintf("[%d]%s", i, tc.name), func(t *testing.T) {
			srcBits, err := Parse(tc.src)
			require.NoError(t, err)
			oldBits, err := Parse(tc.old)
			require.NoError(t, err)
			newBits, err := Parse(tc.new)
			require.NoError(t, err)
			wantBits, err := Parse(tc.want)
			require.NoError(t, err)

			m := FromBits(srcBits)
			m.Replace(oldBits, newBits, tc.start, tc.count, tc.byteAligned)

			require.True(t, Equal(wantBits, m.Snapshot()))
		})
	}
}

func TestSetAndInvert(t *testing.T) {
	m := FromBits(FromBools([]bool{false, false, false, false}))
	m.Set(true, Positions(1, 2))
	require.Equal(t, []bool{false, true, true, false}, snapshotBools(m))

	m.Invert()
	require.Equal(t, []bool{true, false, false, true}, snapshotBools(m))

	m.Invert(Positions(0))
	require.Equal(t, []bool{false, false, false, true}, snapshotBools(m))
}

func TestSetOutOfRangePanics(t *testing.T) {
	m := FromBits(FromBools([]bool{false, false}))
	require.Panics(t, func() {
		m.Set(true, Positions(5))
	})
}

func TestReverse(t *testing.T) {
	m := FromBits(FromBools([]bool{true, false, false, true, true}))
	m.Reverse()
	require.Equal(t, []bool{true, true, false, false, true}, snapshotBools(m))
}

func TestByteSwap(t *testing.T) {
	m := FromBits(mustParse(t, "0x0102030405060708"))
	m.ByteSwap(4)
	want := mustParse(t, "0x0403020108070605")
	require.True(t, Equal(want, m.Snapshot()))
}

func TestByteSwapAlignmentPanics(t *testing.T) {
	m := FromBits(FromBools([]bool{true, false, true}))
	require.Panics(t, func() {
		m.ByteSwap(1)
	})
}

func TestRolRorAreInverses(t *testing.T) {
	m := FromBits(mustParse(t, "0b11000011"))
	orig := m.Snapshot()

	m.Rol(3)
	m.Ror(3)
	require.True(t, Equal(orig, m.Snapshot()))
}

func TestRol(t *testing.T) {
	m := FromBits(FromBools([]bool{true, true, false, false, false}))
	m.Rol(2)
	require.Equal(t, []bool{false, false, false, true, true}, snapshotBools(m))
}

func TestClear(t *testing.T) {
	m := FromBits(FromBools([]bool{true, true}))
	m.Clear()
	require.Equal(t, 0, m.Len())
}

func snapshotBools(m *MutableBits) []bool {
	v := m.Snapshot()
	out := make([]bool, v.Len())
	for i := range out {
		out[i] = v.MustBitAt(i)
	}
	return out
}

func mustParse(t *testing.T, s string) Bits {
	b, err := Parse(s)
	require.NoError(t, err)
	return b
}
