package schema

import (
	bitsx "github.com/calebcase/bitfmt/bits"
)

// Bound is the mutable, per-invocation result of walking a Node tree:
// the value(s) it bound and the bits it occupies. Node trees are
// immutable and shareable; Bound trees are the "per-invocation
// resolved values attached to nodes" that spec'd state allows to vary
// invocation to invocation, kept as a tree parallel to Node rather
// than as mutation on Node itself.
type Bound struct {
	// value holds a Field's unpacked scalar, a Let's evaluated value,
	// or a Format's map of named children (set by Parse/Pack); it is
	// unused for If/Repeat/While/Pass.
	value interface{}

	// occupied is the exact bits a Field occupies, which ToBits reads;
	// a Format's Bound from Parse also records its span here. It is
	// zero-length for Let, Pass, If, Repeat and While, whose bits ToBits
	// assembles from children.
	occupied bitsx.Bits

	// children holds, in order: a Format's per-child Bound (parallel
	// to Format.children); a Repeat's per-iteration body Bound; or an
	// If's single taken-branch Bound (length 0 if no branch was taken).
	children []*Bound

	// branch records which arm an If took: 0 = then, 1 = else (also
	// when the condition was false and there is no else, in which case
	// children is empty). It is -1 for every other node and for a
	// cleared If.
	branch int
}
