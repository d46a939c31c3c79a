package bits

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/calebcase/bitfmt/internal/berr"
)

// Parse builds a Bits from the bit-source string grammar:
//
//	0b[01]+                       binary literal, MSB first
//	0o[0-7]+                      octal, size = 3*digits
//	0x[0-9a-fA-F]+                hex, size = 4*digits
//	<kind>[size][_endian][=value] typed literal, e.g. u12=160, f64_le=3.14
//
// Comma-separated tokens concatenate, in order, into a single Bits.
// Tokens are scanned left to right, longest-match on the recognized
// prefixes (0b, 0o, 0x, then a kind name); whitespace around each
// comma-delimited token is trimmed.
func Parse(s string) (Bits, error) {
	if strings.TrimSpace(s) == "" {
		return Bits{}, nil
	}
	toks := strings.Split(s, ",")
	parts := make([]Bits, 0, len(toks))
	for _, raw := range toks {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return Bits{}, berr.BadSyntax.New("empty literal token")
		}
		b, err := parseToken(tok)
		if err != nil {
			return Bits{}, err
		}
		parts = append(parts, b)
	}
	return Concat(parts...), nil
}

func parseToken(tok string) (Bits, error) {
	switch {
	case strings.HasPrefix(tok, "0b"):
		return parseRadix(tok[2:], 1, "01")
	case strings.HasPrefix(tok, "0o"):
		return parseRadix(tok[2:], 3, "01234567")
	case strings.HasPrefix(tok, "0x"):
		return parseHexLiteral(tok[2:])
	default:
		return parseTypedLiteral(tok)
	}
}

func parseRadix(digits string, bitsPerDigit int, alphabet string) (Bits, error) {
	if digits == "" {
		return Bits{}, berr.BadSyntax.New("empty radix literal")
	}
	vals := make([]bool, 0, len(digits)*bitsPerDigit)
	for _, r := range digits {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return Bits{}, berr.BadSyntax.New("invalid digit %q for radix literal", r)
		}
		for k := bitsPerDigit - 1; k >= 0; k-- {
			vals = append(vals, (idx>>uint(k))&1 == 1)
		}
	}
	return FromBools(vals), nil
}

func parseHexLiteral(digits string) (Bits, error) {
	if digits == "" {
		return Bits{}, berr.BadSyntax.New("empty hex literal")
	}
	vals := make([]bool, 0, len(digits)*4)
	for _, r := range digits {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r >= 'a' && r <= 'f':
			v = int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v = int(r-'A') + 10
		default:
			return Bits{}, berr.BadSyntax.New("invalid hex digit %q", r)
		}
		for k := 3; k >= 0; k-- {
			vals = append(vals, (v>>uint(k))&1 == 1)
		}
	}
	return FromBools(vals), nil
}

var typedLiteralRE = regexp.MustCompile(
	`^([a-zA-Z]+)(?:_(be|le|ne))?(\d+)?(?:_(be|le|ne))?(?:\s*=\s*(.*))?$`,
)

func parseTypedLiteral(tok string) (Bits, error) {
	m := typedLiteralRE.FindStringSubmatch(tok)
	if m == nil {
		return Bits{}, berr.BadSyntax.New("malformed literal token %q", tok)
	}
	kind := strings.ToLower(m[1])
	endian := m[2]
	if endian == "" {
		endian = m[4]
	}
	sizeStr := m[3]
	hasValue := len(m) > 5 && strings.Contains(tok, "=")
	value := m[5]

	switch kind {
	case "u", "uint":
		return literalInt(sizeStr, endian, value, hasValue, false)
	case "i", "int":
		return literalInt(sizeStr, endian, value, hasValue, true)
	case "f", "float":
		return literalFloat(sizeStr, endian, value, hasValue)
	case "bool":
		if !hasValue {
			return Bits{}, berr.BadSyntax.New("bool literal requires a value")
		}
		v := strings.TrimSpace(value)
		switch v {
		case "1", "true", "True":
			return FromBools([]bool{true}), nil
		case "0", "false", "False":
			return FromBools([]bool{false}), nil
		}
		return Bits{}, berr.BadSyntax.New("invalid bool literal value %q", value)
	case "bytes":
		if !hasValue {
			return Bits{}, berr.BadSyntax.New("bytes literal requires a value")
		}
		return FromBytes([]byte(value), -1)
	case "hex":
		if !hasValue {
			return Bits{}, berr.BadSyntax.New("hex literal requires a value")
		}
		return parseHexLiteral(strings.TrimSpace(value))
	case "bin":
		if !hasValue {
			return Bits{}, berr.BadSyntax.New("bin literal requires a value")
		}
		return parseRadix(strings.TrimSpace(value), 1, "01")
	case "oct":
		if !hasValue {
			return Bits{}, berr.BadSyntax.New("oct literal requires a value")
		}
		return parseRadix(strings.TrimSpace(value), 3, "01234567")
	case "pad":
		n, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Bits{}, berr.BadSyntax.New("pad literal requires a size")
		}
		return Zeros(n)
	default:
		return Bits{}, berr.BadSyntax.New("unknown literal kind %q", kind)
	}
}

func literalInt(sizeStr, endian, value string, hasValue, signed bool) (Bits, error) {
	if sizeStr == "" {
		return Bits{}, berr.BadSyntax.New("integer literal requires a size")
	}
	width, err := strconv.Atoi(sizeStr)
	if err != nil || width <= 0 {
		return Bits{}, berr.BadSyntax.New("invalid integer literal size %q", sizeStr)
	}
	if endian != "" && endian != "be" && width%8 != 0 {
		return Bits{}, berr.BadDtype.New("endianness %q requires a byte-multiple size, got %d bits", endian, width)
	}
	if !hasValue {
		return Zeros(width)
	}
	iv := new(big.Int)
	_, ok := iv.SetString(strings.TrimSpace(value), 10)
	if !ok {
		return Bits{}, berr.BadSyntax.New("invalid integer literal value %q", value)
	}
	return packInt(iv, width, signed, endian)
}

func packInt(v *big.Int, width int, signed bool, endian string) (Bits, error) {
	lo, hi := rangeFor(width, signed)
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return Bits{}, berr.OutOfRange.New("value %s out of range [%s,%s] for %d-bit %s", v, lo, hi, width, kindLabel(signed))
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
	b := FromBools(vals)
	if endian == "le" && width%8 == 0 {
		b = swapByteOrder(b)
	}
	return b, nil
}

func swapByteOrder(b Bits) Bits {
	nbytes := b.n / 8
	out := make([]Bits, nbytes)
	for i := 0; i < nbytes; i++ {
		out[nbytes-1-i] = b.MustSlice(i*8, i*8+8)
	}
	return Concat(out...)
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

func kindLabel(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

func literalFloat(sizeStr, endian, value string, hasValue bool) (Bits, error) {
	width := 64
	if sizeStr != "" {
		w, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Bits{}, berr.BadSyntax.New("invalid float literal size %q", sizeStr)
		}
		width = w
	}
	if width != 16 && width != 32 && width != 64 {
		return Bits{}, berr.BadDtype.New("float size must be 16, 32, or 64, got %d", width)
	}
	fv := 0.0
	if hasValue {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Bits{}, berr.BadSyntax.New("invalid float literal value %q", value)
		}
		fv = v
	}
	var raw []byte
	switch width {
	case 32:
		bitsv := math.Float32bits(float32(fv))
		raw = []byte{byte(bitsv >> 24), byte(bitsv >> 16), byte(bitsv >> 8), byte(bitsv)}
	case 64:
		bitsv := math.Float64bits(fv)
		raw = make([]byte, 8)
		for i := 0; i < 8; i++ {
			raw[i] = byte(bitsv >> uint(56-8*i))
		}
	case 16:
		bitsv := float32bitsToFloat16(float32(fv))
		raw = []byte{byte(bitsv >> 8), byte(bitsv)}
	}
	b, err := FromBytes(raw, width)
	if err != nil {
		return Bits{}, err
	}
	if endian == "le" {
		b = swapByteOrder(b)
	}
	return b, nil
}

// float32bitsToFloat16 performs a basic IEEE-754 binary32 -> binary16
// conversion: the mantissa is truncated (every value rounds toward
// zero), values below the binary16 normal range become a signed zero,
// and values above it become a signed infinity.
func float32bitsToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1f:
		return sign | 0x7c00
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}
