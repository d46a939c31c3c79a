// Package bits implements an immutable/mutable pair of arbitrary-length
// bit sequences with sub-byte addressing, efficient slicing, searching,
// bitwise algebra, and packed bit I/O.
//
// Bit zero is the most significant bit of the first storage byte (MSB0).
// LSB0 ordering is not implemented; the spec this package follows flags
// it as future work.
package bits

import (
	"github.com/calebcase/bitfmt/internal/berr"
)

// Bits is an immutable, cheaply sliceable window into shared bit storage.
//
// Two Bits values may share the same backing array; slicing never copies.
// Bits carries no interior mutability and is safe to share across
// goroutines once constructed.
type Bits struct {
	buf []byte // shared storage; never mutated after construction
	off int    // starting bit offset into buf, 0 <= off < 8*len(buf) (or 0 if len==0)
	n   int    // logical length in bits
}

// Len returns the number of bits in b.
func (b Bits) Len() int { return b.n }

// storageBit returns the absolute bit index into buf for logical index i.
func (b Bits) storageBit(i int) int { return b.off + i }

// BitAt returns the boolean value of the bit at logical index i.
func (b Bits) BitAt(i int) (bool, error) {
	if i < 0 || i >= b.n {
		return false, berr.OutOfRange.New("bit index %d out of range [0,%d)", i, b.n)
	}
	abs := b.storageBit(i)
	byteIdx := abs / 8
	bitIdx := 7 - (abs % 8)
	return (b.buf[byteIdx]>>uint(bitIdx))&1 == 1, nil
}

// MustBitAt is like BitAt but panics on error; intended for callers that
// have already validated i is in range.
func (b Bits) MustBitAt(i int) bool {
	v, err := b.BitAt(i)
	if err != nil {
		panic(err)
	}
	return v
}

// Slice returns the sub-window [a, b) as a new Bits sharing storage.
func (b Bits) Slice(a, z int) (Bits, error) {
	if a < 0 || z < a || z > b.n {
		return Bits{}, berr.OutOfRange.New("slice [%d,%d) out of range [0,%d]", a, z, b.n)
	}
	return Bits{buf: b.buf, off: b.off + a, n: z - a}, nil
}

// MustSlice is like Slice but panics on error.
func (b Bits) MustSlice(a, z int) Bits {
	s, err := b.Slice(a, z)
	if err != nil {
		panic(err)
	}
	return s
}

// Equal reports whether a and b have the same length and the same bits.
// This is the contract used by Find/Replace equality checks throughout
// the package.
func Equal(a, b Bits) bool {
	if a.n != b.n {
		return false
	}
	n := a.n
	// Compare bit by bit, so storage offsets and trailing padding never
	// affect the result.
	if n == 0 {
		return true
	}
	for i := 0; i < n; i++ {
		if a.MustBitAt(i) != b.MustBitAt(i) {
			return false
		}
	}
	return true
}

// ToBytes packs the logical bits into bytes, left-aligned and zero-padded
// at the tail to the next byte boundary. The result length is ceil(n/8).
func (b Bits) ToBytes() []byte {
	nbytes := (b.n + 7) / 8
	out := make([]byte, nbytes)
	for i := 0; i < b.n; i++ {
		if b.MustBitAt(i) {
			out[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return out
}

// Chunks returns a lazy, forward-only iterator over consecutive slices of
// length k (the last chunk may be shorter). Mutating the source that
// backs b during iteration is undefined, matching immutable-view
// semantics elsewhere in the package.
func (b Bits) Chunks(k int) (*ChunkIter, error) {
	if k <= 0 {
		return nil, berr.OutOfRange.New("chunk size must be > 0, got %d", k)
	}
	return &ChunkIter{src: b, k: k}, nil
}

// ChunkIter is a finite, forward-only, non-restartable iterator produced
// by Bits.Chunks.
type ChunkIter struct {
	src Bits
	k   int
	pos int
}

// Next returns the next chunk and true, or a zero Bits and false when
// exhausted.
func (it *ChunkIter) Next() (Bits, bool) {
	if it.pos >= it.src.n {
		return Bits{}, false
	}
	end := it.pos + it.k
	if end > it.src.n {
		end = it.src.n
	}
	c := it.src.MustSlice(it.pos, end)
	it.pos = end
	return c, true
}

// Count returns the number of set bits (value == true) or clear bits
// (value == false) in b.
func (b Bits) Count(value bool) int {
	c := 0
	for i := 0; i < b.n; i++ {
		if b.MustBitAt(i) == value {
			c++
		}
	}
	return c
}

// FromBytes returns a Bits view over data, optionally trimmed to bitLen
// bits. If bitLen < 0, the full byte length (8*len(data)) is used.
func FromBytes(data []byte, bitLen int) (Bits, error) {
	full := len(data) * 8
	if bitLen < 0 {
		bitLen = full
	}
	if bitLen > full {
		return Bits{}, berr.OutOfRange.New("bit length %d exceeds %d bits available", bitLen, full)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return Bits{buf: buf, off: 0, n: bitLen}, nil
}

// Zeros returns an all-zero Bits of length n.
func Zeros(n int) (Bits, error) {
	if n < 0 {
		return Bits{}, berr.OutOfRange.New("length must be >= 0, got %d", n)
	}
	return Bits{buf: make([]byte, (n+7)/8), off: 0, n: n}, nil
}

// Ones returns an all-one Bits of length n.
func Ones(n int) (Bits, error) {
	if n < 0 {
		return Bits{}, berr.OutOfRange.New("length must be >= 0, got %d", n)
	}
	buf := make([]byte, (n+7)/8)
	for i := range buf {
		buf[i] = 0xff
	}
	return Bits{buf: buf, off: 0, n: n}, nil
}

// FromBools builds a Bits from an ordered sequence of boolean values.
func FromBools(vals []bool) Bits {
	n := len(vals)
	buf := make([]byte, (n+7)/8)
	for i, v := range vals {
		if v {
			buf[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return Bits{buf: buf, off: 0, n: n}
}

// Concat concatenates a sequence of bit sources into a single new Bits.
func Concat(parts ...Bits) Bits {
	total := 0
	for _, p := range parts {
		total += p.n
	}
	out := make([]byte, (total+7)/8)
	pos := 0
	for _, p := range parts {
		for i := 0; i < p.n; i++ {
			if p.MustBitAt(i) {
				out[pos/8] |= 1 << uint(7-(pos%8))
			}
			pos++
		}
	}
	return Bits{buf: out, off: 0, n: total}
}

// And, Or, Xor, Not implement bitwise algebra over equal-length operands.
// Results share no storage with the inputs.

func requireSameLength(a, b Bits) error {
	if a.n != b.n {
		return berr.LengthMismatch.New("operand lengths differ: %d != %d", a.n, b.n)
	}
	return nil
}

// And returns the bitwise AND of a and b.
func And(a, b Bits) (Bits, error) {
	return combine(a, b,
		func(x, y byte) byte { return x & y },
		func(x, y bool) bool { return x && y },
	)
}

// Or returns the bitwise OR of a and b.
func Or(a, b Bits) (Bits, error) {
	return combine(a, b,
		func(x, y byte) byte { return x | y },
		func(x, y bool) bool { return x || y },
	)
}

// Xor returns the bitwise XOR of a and b.
func Xor(a, b Bits) (Bits, error) {
	return combine(a, b,
		func(x, y byte) byte { return x ^ y },
		func(x, y bool) bool { return x != y },
	)
}

func combine(a, b Bits, byteOp func(x, y byte) byte, bitOp func(x, y bool) bool) (Bits, error) {
	if err := requireSameLength(a, b); err != nil {
		return Bits{}, err
	}
	n := a.n
	if n == 0 {
		return Bits{}, nil
	}
	// Fast path: both operands byte-aligned, work a machine word (byte) at
	// a time instead of bit-by-bit.
	if a.off%8 == 0 && b.off%8 == 0 {
		nbytes := (n + 7) / 8
		out := make([]byte, nbytes)
		aStart := a.off / 8
		bStart := b.off / 8
		for i := 0; i < nbytes; i++ {
			out[i] = byteOp(a.buf[aStart+i], b.buf[bStart+i])
		}
		// Clear the unobserved tail bits of the last byte so Equal's
		// bit-for-bit contract holds regardless of trailing padding.
		if rem := n % 8; rem != 0 {
			mask := byte(0xff) << uint(8-rem)
			out[nbytes-1] &= mask
		}
		return Bits{buf: out, off: 0, n: n}, nil
	}
	vals := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i] = bitOp(a.MustBitAt(i), b.MustBitAt(i))
	}
	return FromBools(vals), nil
}

// Not returns the bitwise complement of a.
func Not(a Bits) Bits {
	n := a.n
	if a.off%8 == 0 {
		nbytes := (n + 7) / 8
		out := make([]byte, nbytes)
		start := a.off / 8
		for i := 0; i < nbytes; i++ {
			out[i] = ^a.buf[start+i]
		}
		if rem := n % 8; rem != 0 {
			mask := byte(0xff) << uint(8-rem)
			out[nbytes-1] &= mask
		}
		return Bits{buf: out, off: 0, n: n}
	}
	vals := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i] = !a.MustBitAt(i)
	}
	return FromBools(vals)
}
