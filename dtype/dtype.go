package dtype

import (
	"github.com/calebcase/bitfmt/internal/berr"
)

// Shape distinguishes a plain dtype from its array/tuple compositions.
type Shape int

const (
	Single Shape = iota
	Array
	Tuple
)

// Dtype is an immutable, closed-taxonomy bit codec. Zero value is not
// meaningful; construct with New, NewArray, or NewTuple.
type Dtype struct {
	shape Shape

	// Single fields.
	kind   Kind
	endian Endian
	size   int // bit width or byte/character count, depending on kind (see New)

	// Array fields. count < 0 means "unsized" (consume to end on unpack).
	elem  *Dtype
	count int

	// Tuple fields.
	elems []Dtype
}

// New constructs a Single dtype. size is interpreted per kind: bit
// width for UINT/INT/FLOAT/BITS/PAD, always 1 for BOOL, a byte count
// for BYTES (8 bits each), a character count for HEX (4 bits each), BIN
// (1 bit each) and OCT (3 bits each), matching the grammar in Parse
// (e.g. "hex8" is 8 hex characters, 32 bits).
func New(kind Kind, endian Endian, size int) (Dtype, error) {
	d := Dtype{shape: Single, kind: kind, endian: endian, size: size}
	if err := d.validate(); err != nil {
		return Dtype{}, err
	}
	return d, nil
}

// NewArray constructs an Array dtype of count elements of elem. count
// < 0 means unsized (unpack-only, consumes all remaining bits).
func NewArray(elem Dtype, count int) Dtype {
	e := elem
	return Dtype{shape: Array, elem: &e, count: count}
}

// NewTuple constructs a Tuple dtype with the given element dtypes, in order.
func NewTuple(elems ...Dtype) Dtype {
	cp := make([]Dtype, len(elems))
	copy(cp, elems)
	return Dtype{shape: Tuple, elems: cp}
}

func (d Dtype) validate() error {
	if d.shape != Single {
		return nil
	}
	spec, ok := Registry[d.kind]
	if !ok {
		return berr.BadDtype.New("unknown kind %v", d.kind)
	}
	if len(spec.FixedWidths) > 0 {
		ok := false
		for _, w := range spec.FixedWidths {
			if d.size == w {
				ok = true
				break
			}
		}
		if !ok {
			return berr.BadDtype.New("%s requires width in %v, got %d", spec.Name, spec.FixedWidths, d.size)
		}
	} else if d.size < 0 {
		return berr.BadDtype.New("%s requires a non-negative width, got %d", spec.Name, d.size)
	}
	if d.endian == NATIVE && d.kind != FLOAT {
		return berr.BadDtype.New("%s does not accept a native-endian modifier", spec.Name)
	}
	if d.endian != NONE && !spec.AllowsEndian {
		return berr.BadDtype.New("%s does not accept an endianness modifier", spec.Name)
	}
	if d.endian != NONE && d.endian != NATIVE && d.bitWidth()%8 != 0 {
		return berr.BadDtype.New("endianness %v requires a byte-multiple width, got %d bits", d.endian, d.bitWidth())
	}
	return nil
}

// bitWidth returns the dtype's bit size. For Array/Tuple this is only
// meaningful when every component has a known concrete size (an
// unsized Array has no fixed width and returns -1).
func (d Dtype) bitWidth() int {
	switch d.shape {
	case Single:
		switch d.kind {
		case BOOL:
			return 1
		case BYTES:
			return d.size * 8
		case HEX:
			return d.size * 4
		case OCT:
			return d.size * 3
		default: // UINT, INT, FLOAT, BIN, BITS, PAD
			return d.size
		}
	case Array:
		if d.count < 0 {
			return -1
		}
		return d.count * d.elem.bitWidth()
	case Tuple:
		total := 0
		for _, e := range d.elems {
			total += e.bitWidth()
		}
		return total
	}
	return -1
}

// BitWidth is the exported form of bitWidth.
func (d Dtype) BitWidth() int { return d.bitWidth() }

// Kind returns the dtype's kind; only meaningful when Shape() == Single.
func (d Dtype) Kind() Kind { return d.kind }

// Shape returns the dtype's shape.
func (d Dtype) Shape() Shape { return d.shape }

// Endian returns the dtype's endianness; only meaningful when Shape() == Single.
func (d Dtype) Endian() Endian { return d.endian }

// Elem returns the element dtype of an Array; panics if Shape() != Array.
func (d Dtype) Elem() Dtype {
	if d.shape != Array {
		panic(berr.BadDtype.New("Elem called on non-array dtype"))
	}
	return *d.elem
}

// Count returns an Array's element count (-1 if unsized); panics if
// Shape() != Array.
func (d Dtype) Count() int {
	if d.shape != Array {
		panic(berr.BadDtype.New("Count called on non-array dtype"))
	}
	return d.count
}

// Elems returns a Tuple's element dtypes; panics if Shape() != Tuple.
func (d Dtype) Elems() []Dtype {
	if d.shape != Tuple {
		panic(berr.BadDtype.New("Elems called on non-tuple dtype"))
	}
	out := make([]Dtype, len(d.elems))
	copy(out, d.elems)
	return out
}
