// Package berr defines the closed error-kind taxonomy shared by every
// bitfmt package. Each kind is its own errs.Class so callers can test
// membership with errors.Is/errs.Is without string matching.
package berr

import "github.com/zeebo/errs"

var (
	// BadSyntax marks a schema or bit-literal string rejected by the grammar.
	BadSyntax = errs.Class("bad syntax")

	// BadDtype marks an inconsistent kind/size/endianness combination.
	BadDtype = errs.Class("bad dtype")

	// OutOfRange marks a value that does not fit a dtype, a negative
	// count, or an index outside bounds.
	OutOfRange = errs.Class("out of range")

	// LengthMismatch marks operand lengths that disagree where equality
	// is required.
	LengthMismatch = errs.Class("length mismatch")

	// Alignment marks an operation that requires byte or k-byte alignment.
	Alignment = errs.Class("alignment")

	// ShortInput marks a parse that reached the end of the bits.
	ShortInput = errs.Class("short input")

	// ConstMismatch marks a const field that did not match its declared value.
	ConstMismatch = errs.Class("const mismatch")

	// UnresolvedName marks an expression referencing an unbound name.
	UnresolvedName = errs.Class("unresolved name")

	// Arithmetic marks division by zero or a comparable arithmetic fault.
	Arithmetic = errs.Class("arithmetic")

	// SchemaError marks a structural defect in a schema tree, such as
	// duplicate sibling names.
	SchemaError = errs.Class("schema error")
)
