// Package dtype implements the closed taxonomy of typed bit codecs
// (UINT, INT, FLOAT, BOOL, BYTES, HEX, BIN, OCT, BITS, PAD) used to give
// a bit_range meaning, plus their array/tuple compositions.
package dtype

import (
	"strconv"

	"github.com/calebcase/bitfmt/internal/berr"
)

// Kind enumerates the closed set of dtype kinds. No other kind exists;
// adding one means extending this file, Registry, and every switch
// over Kind in this package.
type Kind int

const (
	UINT Kind = iota
	INT
	FLOAT
	BOOL
	BYTES
	HEX
	BIN
	OCT
	BITS
	PAD
)

func (k Kind) String() string {
	spec, ok := Registry[k]
	if !ok {
		return "unknown"
	}
	return spec.Name
}

// Endian is the byte-order modifier on a dtype.
type Endian int

const (
	// NONE means no endianness applies (e.g. a non-byte-multiple UINT/INT).
	NONE Endian = iota
	BE
	LE
	NATIVE
)

func (e Endian) String() string {
	switch e {
	case NONE:
		return ""
	case BE:
		return "be"
	case LE:
		return "le"
	case NATIVE:
		return "ne"
	default:
		return "?"
	}
}

func parseEndian(s string) (Endian, error) {
	switch s {
	case "":
		return NONE, nil
	case "be":
		return BE, nil
	case "le":
		return LE, nil
	case "ne":
		return NATIVE, nil
	default:
		return NONE, berr.BadDtype.New("unknown endianness suffix %q", s)
	}
}

// KindSpec describes the static constraints of a Kind, advertised via
// Registry for introspection. Prefixes lists every token Parse accepts
// as this kind's name (kindByName is built from these, not a
// hand-written switch); Format renders a single (non-array, non-tuple)
// Dtype of this kind back to its canonical token, the inverse Parse
// consults Prefixes[0] for.
type KindSpec struct {
	Kind           Kind
	Name           string
	Prefixes       []string
	FixedWidths    []int // empty means "any" width is legal
	AllowsEndian   bool
	DefaultEndian  Endian
	RequiresString bool // value domain is a string (HEX/BIN/OCT)
	Format         func(d Dtype) string
}

func defaultFormat(spec KindSpec) func(Dtype) string {
	return func(d Dtype) string {
		endianSuffix := ""
		if d.endian != NONE {
			endianSuffix = "_" + d.endian.String()
		}
		sizeSuffix := ""
		if len(spec.FixedWidths) != 1 {
			sizeSuffix = strconv.Itoa(d.size)
		}
		return spec.Name + sizeSuffix + endianSuffix
	}
}

// Registry is the process-wide, read-only table of dtype kinds and
// their constraints. It is built once in init and never mutated
// afterward; concurrent reads from multiple goroutines are safe.
var Registry map[Kind]KindSpec

// byName is the Parse-side inverse of Registry's Prefixes, built once
// in init alongside Registry.
var byName map[string]Kind

func init() {
	Registry = map[Kind]KindSpec{
		UINT:  {Kind: UINT, Name: "uint", Prefixes: []string{"uint", "u"}, AllowsEndian: true},
		INT:   {Kind: INT, Name: "int", Prefixes: []string{"int", "i"}, AllowsEndian: true},
		FLOAT: {Kind: FLOAT, Name: "float", Prefixes: []string{"float", "f"}, FixedWidths: []int{16, 32, 64}, AllowsEndian: true},
		BOOL:  {Kind: BOOL, Name: "bool", Prefixes: []string{"bool"}, FixedWidths: []int{1}},
		BYTES: {Kind: BYTES, Name: "bytes", Prefixes: []string{"bytes"}},
		HEX:   {Kind: HEX, Name: "hex", Prefixes: []string{"hex"}, RequiresString: true},
		BIN:   {Kind: BIN, Name: "bin", Prefixes: []string{"bin"}, RequiresString: true},
		OCT:   {Kind: OCT, Name: "oct", Prefixes: []string{"oct"}, RequiresString: true},
		BITS:  {Kind: BITS, Name: "bits", Prefixes: []string{"bits"}},
		PAD:   {Kind: PAD, Name: "pad", Prefixes: []string{"pad"}},
	}

	byName = make(map[string]Kind)
	for k, spec := range Registry {
		for _, p := range spec.Prefixes {
			byName[p] = k
		}
		spec.Format = defaultFormat(spec)
		Registry[k] = spec
	}
}

// Kinds returns the closed set of registered kinds, in declaration order.
func Kinds() []Kind {
	return []Kind{UINT, INT, FLOAT, BOOL, BYTES, HEX, BIN, OCT, BITS, PAD}
}

func kindByName(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}
