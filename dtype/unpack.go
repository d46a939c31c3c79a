package dtype

import (
	"math"
	"math/big"
	"strings"

	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/internal/berr"
)

// Unpack decodes b according to d's kind/shape rules. For Single kinds
// other than an unsized Array element, b must have exactly d.BitWidth()
// bits.
func (d Dtype) Unpack(b bitsx.Bits) (interface{}, error) {
	switch d.shape {
	case Array:
		return d.unpackArray(b)
	case Tuple:
		return d.unpackTuple(b)
	default:
		return d.unpackSingle(b)
	}
}

func (d Dtype) unpackSingle(b bitsx.Bits) (interface{}, error) {
	want := d.bitWidth()
	if want >= 0 && b.Len() != want {
		return nil, berr.LengthMismatch.New("%s unpack expects %d bits, got %d", d.kind, want, b.Len())
	}
	switch d.kind {
	case UINT, INT:
		return unpackInt(b, d.kind == INT, d.endian)
	case FLOAT:
		return unpackFloat(b, d.endian)
	case BOOL:
		return b.MustBitAt(0), nil
	case BYTES:
		return b.ToBytes(), nil
	case HEX:
		return unpackDigitString(b, 4, "0123456789abcdef")
	case BIN:
		return unpackDigitString(b, 1, "01")
	case OCT:
		return unpackDigitString(b, 3, "01234567")
	case BITS:
		return b, nil
	case PAD:
		return nil, nil
	default:
		return nil, berr.BadDtype.New("unhandled kind %v", d.kind)
	}
}

func (d Dtype) unpackArray(b bitsx.Bits) (interface{}, error) {
	elemW := d.elem.bitWidth()
	if elemW <= 0 {
		return nil, berr.BadDtype.New("array element dtype has no fixed width")
	}
	count := d.count
	if count < 0 {
		if b.Len()%elemW != 0 {
			return nil, berr.LengthMismatch.New("unsized array input (%d bits) does not divide evenly by element width %d", b.Len(), elemW)
		}
		count = b.Len() / elemW
	} else if b.Len() != count*elemW {
		return nil, berr.LengthMismatch.New("array unpack expects %d bits, got %d", count*elemW, b.Len())
	}
	out := make([]interface{}, count)
	for i := 0; i < count; i++ {
		elemBits := b.MustSlice(i*elemW, (i+1)*elemW)
		v, err := d.elem.Unpack(elemBits)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d Dtype) unpackTuple(b bitsx.Bits) (interface{}, error) {
	total := d.bitWidth()
	if b.Len() != total {
		return nil, berr.LengthMismatch.New("tuple unpack expects %d bits, got %d", total, b.Len())
	}
	out := make([]interface{}, len(d.elems))
	pos := 0
	for i, e := range d.elems {
		w := e.bitWidth()
		elemBits := b.MustSlice(pos, pos+w)
		v, err := e.Unpack(elemBits)
		if err != nil {
			return nil, err
		}
		out[i] = v
		pos += w
	}
	return out, nil
}

func unpackInt(b bitsx.Bits, signed bool, endian Endian) (*big.Int, error) {
	if shouldSwap(endian) {
		b = swapByteOrder(b)
	}
	width := b.Len()
	uv := new(big.Int)
	for j := 0; j < width; j++ {
		if b.MustBitAt(width - 1 - j) {
			uv.SetBit(uv, j, 1)
		}
	}
	if !signed {
		return uv, nil
	}
	if uv.Bit(width-1) == 1 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
		uv.Sub(uv, mod)
	}
	return uv, nil
}

func unpackFloat(b bitsx.Bits, endian Endian) (float64, error) {
	if shouldSwap(endian) {
		b = swapByteOrder(b)
	}
	raw := b.ToBytes()
	switch b.Len() {
	case 32:
		bitsv := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])
		return float64(math.Float32frombits(bitsv)), nil
	case 64:
		var bitsv uint64
		for i := 0; i < 8; i++ {
			bitsv = bitsv<<8 | uint64(raw[i])
		}
		return math.Float64frombits(bitsv), nil
	case 16:
		bitsv := uint16(raw[0])<<8 | uint16(raw[1])
		return float64(float16To32(bitsv)), nil
	default:
		return 0, berr.BadDtype.New("unsupported float width %d", b.Len())
	}
}

func float16To32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := (h >> 10) & 0x1f
	mant := uint32(h & 0x3ff)
	switch exp {
	case 0:
		return math.Float32frombits(sign)
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	default:
		return math.Float32frombits(sign | (uint32(exp)-15+127)<<23 | mant<<13)
	}
}

func unpackDigitString(b bitsx.Bits, bitsPerDigit int, alphabet string) (string, error) {
	if b.Len()%bitsPerDigit != 0 {
		return "", berr.LengthMismatch.New("bit length %d is not a multiple of %d", b.Len(), bitsPerDigit)
	}
	n := b.Len() / bitsPerDigit
	var out strings.Builder
	for i := 0; i < n; i++ {
		v := 0
		for k := 0; k < bitsPerDigit; k++ {
			v <<= 1
			if b.MustBitAt(i*bitsPerDigit+k) {
				v |= 1
			}
		}
		out.WriteByte(alphabet[v])
	}
	return out.String(), nil
}
