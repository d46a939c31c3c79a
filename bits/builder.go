package bits

import "github.com/calebcase/bitfmt/internal/berr"

// MutableBits is a mutable, exclusively-owned builder over a bit sequence.
// Concurrent use of a single MutableBits from multiple goroutines is
// undefined and must be enforced by the caller; MutableBits itself
// performs no synchronization.
//
// Every mutator returns the receiver to permit chaining, e.g.
//
//	NewMutableBits().Append(a).Append(b).Reverse()
type MutableBits struct {
	buf []byte
	n   int
}

// NewMutableBits returns an empty builder.
func NewMutableBits() *MutableBits {
	return &MutableBits{}
}

// FromBits copies view into a new, independently owned builder. This is
// an O(n) copy, unlike the O(1) move performed by ToBits.
func FromBits(v Bits) *MutableBits {
	m := &MutableBits{buf: v.ToBytes(), n: v.n}
	return m
}

// Len returns the current length in bits.
func (m *MutableBits) Len() int { return m.n }

// ToBits transfers ownership of the builder's storage to an immutable
// Bits view in O(1); the builder must not be used afterward.
func (m *MutableBits) ToBits() Bits {
	v := Bits{buf: m.buf, off: 0, n: m.n}
	m.buf = nil
	m.n = 0
	return v
}

// Snapshot returns an immutable view over the builder's current bits,
// copying storage so subsequent mutation of m does not affect it. Unlike
// ToBits, the builder remains usable afterward.
func (m *MutableBits) Snapshot() Bits {
	buf := make([]byte, len(m.buf))
	copy(buf, m.buf)
	return Bits{buf: buf, off: 0, n: m.n}
}

func (m *MutableBits) ensureCap(extraBits int) {
	need := (m.n + extraBits + 7) / 8
	if need <= len(m.buf) {
		return
	}
	nb := make([]byte, need)
	copy(nb, m.buf)
	m.buf = nb
}

func (m *MutableBits) setBit(i int, v bool) {
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	if v {
		m.buf[byteIdx] |= 1 << uint(bitIdx)
	} else {
		m.buf[byteIdx] &^= 1 << uint(bitIdx)
	}
}

func (m *MutableBits) bitAt(i int) bool {
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	return (m.buf[byteIdx]>>uint(bitIdx))&1 == 1
}

// Append adds src to the end of m.
func (m *MutableBits) Append(src Bits) *MutableBits {
	base := m.n
	m.ensureCap(src.n)
	m.n += src.n
	for i := 0; i < src.n; i++ {
		m.setBit(base+i, src.MustBitAt(i))
	}
	return m
}

// Prepend adds src to the beginning of m.
func (m *MutableBits) Prepend(src Bits) *MutableBits {
	return m.insert(0, src)
}

// Insert inserts src at logical position at, shifting subsequent bits
// right. It returns an error wrapped into a panic-free form via the
// second chain method InsertE; Insert itself panics on an invalid
// position to keep the chaining interface uniform with the rest of the
// mutators, matching the spec's "every mutator returns the builder
// itself" contract for the common case, while InsertE exposes the error.
func (m *MutableBits) Insert(at int, src Bits) *MutableBits {
	if err := m.insertChecked(at, src); err != nil {
		panic(err)
	}
	return m
}

// InsertE is Insert but returns an error instead of panicking.
func (m *MutableBits) InsertE(at int, src Bits) (*MutableBits, error) {
	if err := m.insertChecked(at, src); err != nil {
		return m, err
	}
	return m, nil
}

func (m *MutableBits) insertChecked(at int, src Bits) error {
	if at < 0 || at > m.n {
		return berr.OutOfRange.New("insert position %d out of range [0,%d]", at, m.n)
	}
	m.insert(at, src)
	return nil
}

func (m *MutableBits) insert(at int, src Bits) *MutableBits {
	old := m.Snapshot()
	tail, _ := old.Slice(at, old.n)
	head, _ := old.Slice(0, at)
	merged := Concat(head, src, tail)
	m.buf = merged.ToBytes()
	m.n = merged.n
	return m
}

// Replace replaces occurrences of old with new, starting the search at
// start, replacing at most count occurrences (count < 0 means unlimited),
// optionally requiring byte-aligned match positions.
func (m *MutableBits) Replace(old, new Bits, start int, count int, byteAligned bool) *MutableBits {
	cur := m.Snapshot()
	it, err := cur.FindAll(old, start, byteAligned)
	if err != nil {
		panic(err)
	}
	type match struct{ at int }
	var matches []match
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		if count >= 0 && len(matches) >= count {
			break
		}
		matches = append(matches, match{at: i})
	}
	if len(matches) == 0 {
		return m
	}
	var parts []Bits
	prev := 0
	for _, mt := range matches {
		head, _ := cur.Slice(prev, mt.at)
		parts = append(parts, head, new)
		prev = mt.at + old.Len()
	}
	tail, _ := cur.Slice(prev, cur.n)
	parts = append(parts, tail)
	merged := Concat(parts...)
	m.buf = merged.ToBytes()
	m.n = merged.n
	return m
}

// posSet describes a set of bit positions: a single index, or a
// half-open range [Start, End).
type posSet struct {
	indices []int
}

// Positions builds a posSet from explicit indices, for use with Set and
// Invert.
func Positions(indices ...int) posSet { return posSet{indices: indices} }

// PositionRange builds a posSet covering [start, end).
func PositionRange(start, end int) posSet {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return posSet{indices: idx}
}

// Set assigns value to every position in positions.
func (m *MutableBits) Set(value bool, positions posSet) *MutableBits {
	for _, i := range positions.indices {
		if i < 0 || i >= m.n {
			panic(berr.OutOfRange.New("set position %d out of range [0,%d)", i, m.n))
		}
		m.setBit(i, value)
	}
	return m
}

// Invert flips the bits at positions; if no positions argument is given,
// it inverts the whole builder. A posSet with zero indices flips nothing.
func (m *MutableBits) Invert(positions ...posSet) *MutableBits {
	if len(positions) == 0 {
		for i := 0; i < m.n; i++ {
			m.setBit(i, !m.bitAt(i))
		}
		return m
	}
	for _, ps := range positions {
		for _, i := range ps.indices {
			if i < 0 || i >= m.n {
				panic(berr.OutOfRange.New("invert position %d out of range [0,%d)", i, m.n))
			}
			m.setBit(i, !m.bitAt(i))
		}
	}
	return m
}

// Reverse reverses the bit order in place.
func (m *MutableBits) Reverse() *MutableBits {
	for i, j := 0, m.n-1; i < j; i, j = i+1, j-1 {
		vi, vj := m.bitAt(i), m.bitAt(j)
		m.setBit(i, vj)
		m.setBit(j, vi)
	}
	return m
}

// ByteSwap reverses each contiguous group of k bytes. The builder's
// length must be divisible by 8*k.
func (m *MutableBits) ByteSwap(k int) *MutableBits {
	if k <= 0 || m.n%(8*k) != 0 {
		panic(berr.Alignment.New("byte-swap group size %d does not divide bit length %d", k, m.n))
	}
	nbytes := m.n / 8
	for g := 0; g+k <= nbytes; g += k {
		for i, j := g, g+k-1; i < j; i, j = i+1, j-1 {
			m.buf[i], m.buf[j] = m.buf[j], m.buf[i]
		}
	}
	return m
}

// Rol rotates the builder's bits left by n (n may be negative, which
// rotates right).
func (m *MutableBits) Rol(n int) *MutableBits {
	return m.rotate(n)
}

// Ror rotates the builder's bits right by n (n may be negative, which
// rotates left).
func (m *MutableBits) Ror(n int) *MutableBits {
	return m.rotate(-n)
}

func (m *MutableBits) rotate(n int) *MutableBits {
	if m.n == 0 {
		return m
	}
	n = ((n % m.n) + m.n) % m.n
	if n == 0 {
		return m
	}
	cur := m.Snapshot()
	head, _ := cur.Slice(0, n)
	tail, _ := cur.Slice(n, cur.n)
	merged := Concat(tail, head)
	m.buf = merged.ToBytes()
	m.n = merged.n
	return m
}

// Clear resets the builder to zero length.
func (m *MutableBits) Clear() *MutableBits {
	m.buf = nil
	m.n = 0
	return m
}
