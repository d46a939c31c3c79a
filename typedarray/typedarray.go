// Package typedarray implements a homogeneous, fixed-element-width
// sequence backed by a single contiguous bit buffer: every element is
// the same dtype, stored back to back with no padding between them,
// the same compose-a-codec-over-a-lower-codec shape the teacher uses to
// layer decimal.Block over integer.Block over a control.Decoder, here
// layering element access over dtype.Dtype over bits.MutableBits.
package typedarray

import (
	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/dtype"
	"github.com/calebcase/bitfmt/internal/berr"
)

// Array is a typed array: a dtype shared by every element, and the
// concatenated bits of all elements in order. The element dtype must
// have a fixed, concrete bit width (no unsized array/tuple elements),
// since elements are located by index*width.
type Array struct {
	dt  dtype.Dtype
	buf *bitsx.MutableBits
}

// New returns an empty Array of the given element dtype.
func New(dt dtype.Dtype) (*Array, error) {
	if err := checkElemWidth(dt); err != nil {
		return nil, err
	}
	return &Array{dt: dt, buf: bitsx.NewMutableBits()}, nil
}

// FromBits wraps an existing bit sequence as an Array of the given
// element dtype. b's length must be an exact multiple of the element
// width.
func FromBits(dt dtype.Dtype, b bitsx.Bits) (*Array, error) {
	if err := checkElemWidth(dt); err != nil {
		return nil, err
	}
	w := dt.BitWidth()
	if w > 0 && b.Len()%w != 0 {
		return nil, berr.LengthMismatch.New("bit length %d is not a multiple of element width %d", b.Len(), w)
	}
	return &Array{dt: dt, buf: bitsx.FromBits(b)}, nil
}

func checkElemWidth(dt dtype.Dtype) error {
	if dt.BitWidth() <= 0 {
		return berr.BadDtype.New("typed array element dtype must have a fixed, positive bit width")
	}
	return nil
}

// Dtype returns the array's element dtype.
func (a *Array) Dtype() dtype.Dtype { return a.dt }

// Len returns the number of elements currently stored.
func (a *Array) Len() int {
	w := a.dt.BitWidth()
	if w == 0 {
		return 0
	}
	return a.buf.Len() / w
}

// ToBytes returns the array's backing bits as a byte-padded slice,
// matching bits.Bits.ToBytes semantics (the final partial byte, if
// any, is padded with zero bits).
func (a *Array) ToBytes() []byte {
	return a.buf.Snapshot().ToBytes()
}

// ToBits returns an immutable view of the array's backing bits.
func (a *Array) ToBits() bitsx.Bits {
	return a.buf.Snapshot()
}

func (a *Array) elemBits(i int) (bitsx.Bits, error) {
	w := a.dt.BitWidth()
	n := a.Len()
	if i < 0 || i >= n {
		return bitsx.Bits{}, berr.OutOfRange.New("index %d out of range [0,%d)", i, n)
	}
	snap := a.buf.Snapshot()
	return snap.MustSlice(i*w, (i+1)*w), nil
}

// Get unpacks and returns the element at index i.
func (a *Array) Get(i int) (interface{}, error) {
	eb, err := a.elemBits(i)
	if err != nil {
		return nil, err
	}
	return a.dt.Unpack(eb)
}

// Set packs value and overwrites the element at index i in place.
func (a *Array) Set(i int, value interface{}) error {
	w := a.dt.BitWidth()
	n := a.Len()
	if i < 0 || i >= n {
		return berr.OutOfRange.New("index %d out of range [0,%d)", i, n)
	}
	packed, err := a.dt.Pack(value)
	if err != nil {
		return err
	}
	old, _ := a.elemBits(i)
	a.buf.Replace(old, packed, i*w, 1, false)
	return nil
}

// Unpack returns every element, unpacked, in order.
func (a *Array) Unpack() ([]interface{}, error) {
	n := a.Len()
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		v, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Append packs value and adds it to the end of the array.
func (a *Array) Append(value interface{}) error {
	packed, err := a.dt.Pack(value)
	if err != nil {
		return err
	}
	a.buf.Append(packed)
	return nil
}

// Extend appends every value in values, in order. On a packing error
// partway through, the elements packed before the failing value remain
// appended.
func (a *Array) Extend(values []interface{}) error {
	for _, v := range values {
		if err := a.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Insert packs value and inserts it at index i, shifting subsequent
// elements right. i == Len() appends.
func (a *Array) Insert(i int, value interface{}) error {
	n := a.Len()
	if i < 0 || i > n {
		return berr.OutOfRange.New("insert index %d out of range [0,%d]", i, n)
	}
	packed, err := a.dt.Pack(value)
	if err != nil {
		return err
	}
	w := a.dt.BitWidth()
	if _, err := a.buf.InsertE(i*w, packed); err != nil {
		return err
	}
	return nil
}

// Pop removes and unpacks the element at index i. i < 0 means the last
// element, matching the spec's pop(i=-1) default.
func (a *Array) Pop(i int) (interface{}, error) {
	n := a.Len()
	if n == 0 {
		return nil, berr.OutOfRange.New("pop from empty array")
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		return nil, berr.OutOfRange.New("index %d out of range [0,%d)", i, n)
	}

	w := a.dt.BitWidth()
	snap := a.buf.Snapshot()
	removed := snap.MustSlice(i*w, (i+1)*w)

	v, err := a.dt.Unpack(removed)
	if err != nil {
		return nil, err
	}

	head := snap.MustSlice(0, i*w)
	tail := snap.MustSlice((i+1)*w, snap.Len())
	merged := bitsx.FromBits(bitsx.Concat(head, tail))
	a.buf = merged

	return v, nil
}

// SetDtype reinterprets the array's existing bits under a new element
// dtype, without converting the stored values: the total bit length
// must be an exact multiple of the new dtype's width.
func (a *Array) SetDtype(newDt dtype.Dtype) error {
	if err := checkElemWidth(newDt); err != nil {
		return err
	}
	total := a.buf.Len()
	if total%newDt.BitWidth() != 0 {
		return berr.LengthMismatch.New("bit length %d is not a multiple of new element width %d", total, newDt.BitWidth())
	}
	a.dt = newDt
	return nil
}

// numericOp is one of the four broadcasting assignment operators.
type numericOp func(elem, operand interface{}) (interface{}, error)

// broadcast applies op(element, operand) to every element in place,
// repacking each result with the array's dtype. The dtype's kind must
// support the operation's arithmetic (checked by op itself via the
// dtype package's own Pack/Unpack, e.g. packing a non-numeric kind
// with a *big.Int or float64 fails with BadDtype).
func (a *Array) broadcast(operand interface{}, op numericOp) error {
	n := a.Len()
	for i := 0; i < n; i++ {
		cur, err := a.Get(i)
		if err != nil {
			return err
		}
		next, err := op(cur, operand)
		if err != nil {
			return err
		}
		if err := a.Set(i, next); err != nil {
			return err
		}
	}
	return nil
}

// AddAssign is the array's += operator: it adds operand to every
// element in place.
func (a *Array) AddAssign(operand interface{}) error { return a.broadcast(operand, addNumeric) }

// SubAssign is the array's -= operator.
func (a *Array) SubAssign(operand interface{}) error { return a.broadcast(operand, subNumeric) }

// MulAssign is the array's *= operator.
func (a *Array) MulAssign(operand interface{}) error { return a.broadcast(operand, mulNumeric) }

// DivAssign is the array's /= operator. Division by zero and integer
// division both follow arith's rules in the expr package's evaluator:
// float if either side is float64, exact big.Int division otherwise.
func (a *Array) DivAssign(operand interface{}) error { return a.broadcast(operand, divNumeric) }
