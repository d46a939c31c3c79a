package dtype

import (
	"encoding/binary"
	"math"
	"math/big"
	"strings"

	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/internal/berr"
)

// nativeIsLittleEndian reports the host byte order, used to resolve
// the NATIVE endianness modifier.
var nativeIsLittleEndian = func() bool {
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, 1)
	return b[0] == 1
}()

func shouldSwap(endian Endian) bool {
	return endian == LE || (endian == NATIVE && nativeIsLittleEndian)
}

// Pack encodes value into bits according to d's kind/shape rules.
func (d Dtype) Pack(value interface{}) (bitsx.Bits, error) {
	switch d.shape {
	case Array:
		return d.packArray(value)
	case Tuple:
		return d.packTuple(value)
	default:
		return d.packSingle(value)
	}
}

func (d Dtype) packSingle(value interface{}) (bitsx.Bits, error) {
	switch d.kind {
	case UINT, INT:
		v, err := toBigInt(value)
		if err != nil {
			return bitsx.Bits{}, err
		}
		return packInt(v, d.size, d.kind == INT, d.endian)
	case FLOAT:
		v, err := toFloat64(value)
		if err != nil {
			return bitsx.Bits{}, err
		}
		return packFloat(v, d.size, d.endian)
	case BOOL:
		v, ok := value.(bool)
		if !ok {
			return bitsx.Bits{}, berr.BadDtype.New("bool pack requires a bool, got %T", value)
		}
		return bitsx.FromBools([]bool{v}), nil
	case BYTES:
		v, ok := value.([]byte)
		if !ok {
			return bitsx.Bits{}, berr.BadDtype.New("bytes pack requires []byte, got %T", value)
		}
		if len(v) != d.size {
			return bitsx.Bits{}, berr.OutOfRange.New("bytes value has %d bytes, dtype requires %d", len(v), d.size)
		}
		return bitsx.FromBytes(v, -1)
	case HEX:
		return packDigitString(value, d.bitWidth(), 4, "0123456789abcdef")
	case BIN:
		return packDigitString(value, d.bitWidth(), 1, "01")
	case OCT:
		return packDigitString(value, d.bitWidth(), 3, "01234567")
	case BITS:
		v, ok := value.(bitsx.Bits)
		if !ok {
			return bitsx.Bits{}, berr.BadDtype.New("bits pack requires a bits.Bits, got %T", value)
		}
		if v.Len() != d.size {
			return bitsx.Bits{}, berr.LengthMismatch.New("bits value has %d bits, dtype requires %d", v.Len(), d.size)
		}
		return v, nil
	case PAD:
		return bitsx.Zeros(d.size)
	default:
		return bitsx.Bits{}, berr.BadDtype.New("unhandled kind %v", d.kind)
	}
}

func (d Dtype) packArray(value interface{}) (bitsx.Bits, error) {
	seq, ok := value.([]interface{})
	if !ok {
		return bitsx.Bits{}, berr.BadDtype.New("array pack requires []interface{}, got %T", value)
	}
	if d.count >= 0 && len(seq) != d.count {
		return bitsx.Bits{}, berr.LengthMismatch.New("array has %d elements, dtype requires %d", len(seq), d.count)
	}
	parts := make([]bitsx.Bits, len(seq))
	for i, v := range seq {
		b, err := d.elem.Pack(v)
		if err != nil {
			return bitsx.Bits{}, err
		}
		parts[i] = b
	}
	return bitsx.Concat(parts...), nil
}

func (d Dtype) packTuple(value interface{}) (bitsx.Bits, error) {
	seq, ok := value.([]interface{})
	if !ok {
		return bitsx.Bits{}, berr.BadDtype.New("tuple pack requires []interface{}, got %T", value)
	}
	if len(seq) != len(d.elems) {
		return bitsx.Bits{}, berr.LengthMismatch.New("tuple has %d elements, dtype requires %d", len(seq), len(d.elems))
	}
	parts := make([]bitsx.Bits, len(seq))
	for i, v := range seq {
		b, err := d.elems[i].Pack(v)
		if err != nil {
			return bitsx.Bits{}, err
		}
		parts[i] = b
	}
	return bitsx.Concat(parts...), nil
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, berr.BadDtype.New("cannot interpret %T as an integer", value)
	}
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		return 0, berr.BadDtype.New("cannot interpret %T as a float", value)
	}
}

func packInt(v *big.Int, width int, signed bool, endian Endian) (bitsx.Bits, error) {
	lo, hi := rangeFor(width, signed)
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return bitsx.Bits{}, berr.OutOfRange.New("value %s out of range [%s,%s] for %d-bit integer", v, lo, hi, width)
	}
	uv := new(big.Int).Set(v)
	if signed && v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
		uv.Add(v, mod)
	}
	vals := make([]bool, width)
	for j := 0; j < width; j++ {
		vals[width-1-j] = uv.Bit(j) == 1
	}
	b := bitsx.FromBools(vals)
	if shouldSwap(endian) {
		b = swapByteOrder(b)
	}
	return b, nil
}

func rangeFor(width int, signed bool) (*big.Int, *big.Int) {
	if !signed {
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		return big.NewInt(0), hi
	}
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width-1)), big.NewInt(1))
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
	return lo, hi
}

func swapByteOrder(b bitsx.Bits) bitsx.Bits {
	nbytes := b.Len() / 8
	parts := make([]bitsx.Bits, nbytes)
	for i := 0; i < nbytes; i++ {
		parts[nbytes-1-i] = b.MustSlice(i*8, i*8+8)
	}
	return bitsx.Concat(parts...)
}

func packFloat(v float64, width int, endian Endian) (bitsx.Bits, error) {
	var raw []byte
	switch width {
	case 32:
		bitsv := math.Float32bits(float32(v))
		raw = []byte{byte(bitsv >> 24), byte(bitsv >> 16), byte(bitsv >> 8), byte(bitsv)}
	case 64:
		bitsv := math.Float64bits(v)
		raw = make([]byte, 8)
		for i := 0; i < 8; i++ {
			raw[i] = byte(bitsv >> uint(56-8*i))
		}
	case 16:
		bitsv := float32To16(float32(v))
		raw = []byte{byte(bitsv >> 8), byte(bitsv)}
	default:
		return bitsx.Bits{}, berr.BadDtype.New("unsupported float width %d", width)
	}
	b, err := bitsx.FromBytes(raw, -1)
	if err != nil {
		return bitsx.Bits{}, err
	}
	if shouldSwap(endian) {
		b = swapByteOrder(b)
	}
	return b, nil
}

func float32To16(f float32) uint16 {
	bitsv := math.Float32bits(f)
	sign := uint16((bitsv >> 16) & 0x8000)
	exp := int32((bitsv>>23)&0xff) - 127 + 15
	mant := bitsv & 0x7fffff
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1f:
		return sign | 0x7c00
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

func packDigitString(value interface{}, widthBits, bitsPerDigit int, alphabet string) (bitsx.Bits, error) {
	s, ok := value.(string)
	if !ok {
		return bitsx.Bits{}, berr.BadDtype.New("string-kind pack requires a string, got %T", value)
	}
	if len(s)*bitsPerDigit != widthBits {
		return bitsx.Bits{}, berr.OutOfRange.New("value %q has %d digits, dtype requires %d bits of digits", s, len(s), widthBits)
	}
	vals := make([]bool, 0, widthBits)
	for _, r := range strings.ToLower(s) {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return bitsx.Bits{}, berr.BadSyntax.New("invalid digit %q", r)
		}
		for k := bitsPerDigit - 1; k >= 0; k-- {
			vals = append(vals, (idx>>uint(k))&1 == 1)
		}
	}
	return bitsx.FromBools(vals), nil
}
