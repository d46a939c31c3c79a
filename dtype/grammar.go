package dtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calebcase/bitfmt/internal/berr"
)

// Parse builds a Dtype from its canonical textual form (§6 Dtype
// grammar): a single token (kind[_endian][size]), an array
// `[single;count]` (count may be omitted for an unsized, unpack-only
// array), or a tuple `(dtype,dtype,...)` with an optional trailing
// comma. Size expressions other than a literal non-negative integer
// (the `{...}` expression form) are not accepted here: those are
// resolved by the schema layer before a concrete Dtype is built.
func Parse(s string) (Dtype, error) {
	s = strings.TrimSpace(s)
	d, rest, err := parseDtype(s)
	if err != nil {
		return Dtype{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return Dtype{}, berr.BadSyntax.New("unexpected trailing input %q", rest)
	}
	return d, nil
}

func parseDtype(s string) (Dtype, string, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "["):
		return parseArray(s)
	case strings.HasPrefix(s, "("):
		return parseTuple(s)
	default:
		return parseSingle(s)
	}
}

func parseSingle(s string) (Dtype, string, error) {
	i := 0
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	if i == 0 {
		return Dtype{}, s, berr.BadSyntax.New("expected a kind name in %q", s)
	}
	name := s[:i]
	rest := s[i:]

	kind, ok := kindByName(name)
	if !ok {
		return Dtype{}, s, berr.BadSyntax.New("unknown dtype kind %q", name)
	}

	endian := NONE
	rest, endian, err := consumeEndianSuffix(rest, endian)
	if err != nil {
		return Dtype{}, s, err
	}

	size := 0
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j > 0 {
		n, err := strconv.Atoi(rest[:j])
		if err != nil {
			return Dtype{}, s, berr.BadSyntax.New("invalid size %q", rest[:j])
		}
		size = n
		rest = rest[j:]
	} else if kind == BOOL {
		size = 1
	}

	rest, endian, err = consumeEndianSuffix(rest, endian)
	if err != nil {
		return Dtype{}, s, err
	}

	d, err := New(kind, endian, size)
	if err != nil {
		return Dtype{}, s, err
	}
	return d, rest, nil
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// consumeEndianSuffix consumes a leading "_be"/"_le"/"_ne" from rest, if
// present, folding it into already. It is called both before and after
// the size digits, since the grammar's examples place the endian
// suffix after the size (e.g. "f64_le") while the stated grammar order
// is kind/endian/size; accepting either keeps Parse lenient on input
// while String always emits the post-size form.
func consumeEndianSuffix(rest string, already Endian) (string, Endian, error) {
	if !strings.HasPrefix(rest, "_") {
		return rest, already, nil
	}
	j := 1
	for j < len(rest) && isNameChar(rest[j]) {
		j++
	}
	e, err := parseEndian(rest[1:j])
	if err != nil {
		return rest, already, err
	}
	return rest[j:], e, nil
}

func parseArray(s string) (Dtype, string, error) {
	// s starts with '['.
	inner := s[1:]
	elem, rest, err := parseDtype(inner)
	if err != nil {
		return Dtype{}, s, err
	}
	rest = strings.TrimSpace(rest)
	count := -1
	if strings.HasPrefix(rest, ";") {
		rest = rest[1:]
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return Dtype{}, s, berr.BadSyntax.New("expected a count after ';' in array dtype %q", s)
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return Dtype{}, s, berr.BadSyntax.New("invalid array count %q", rest[:i])
		}
		count = n
		rest = rest[i:]
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "]") {
		return Dtype{}, s, berr.BadSyntax.New("expected ']' closing array dtype in %q", s)
	}
	return NewArray(elem, count), rest[1:], nil
}

func parseTuple(s string) (Dtype, string, error) {
	rest := s[1:]
	var elems []Dtype
	for {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, ")") {
			return NewTuple(elems...), rest[1:], nil
		}
		d, r, err := parseDtype(rest)
		if err != nil {
			return Dtype{}, s, err
		}
		elems = append(elems, d)
		rest = strings.TrimSpace(r)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, ")") {
			return NewTuple(elems...), rest[1:], nil
		}
		return Dtype{}, s, berr.BadSyntax.New("expected ',' or ')' in tuple dtype, got %q", rest)
	}
}

// String renders d in the canonical form accepted by Parse, satisfying
// Parse(d.String()) == d for every constructed Dtype.
func (d Dtype) String() string {
	switch d.shape {
	case Array:
		if d.count < 0 {
			return fmt.Sprintf("[%s]", d.elem.String())
		}
		return fmt.Sprintf("[%s;%d]", d.elem.String(), d.count)
	case Tuple:
		parts := make([]string, len(d.elems))
		for i, e := range d.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return Registry[d.kind].Format(d)
	}
}
