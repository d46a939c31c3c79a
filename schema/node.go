// Package schema implements the declarative field-type tree (Field,
// Format, If, Repeat, While, Let, Pass) and the interpreter that walks
// it to parse, build, pack, unpack, clear, and reassemble bits. Trees
// are built programmatically; the text grammar that would parse
// schema source into this tree is out of scope (see cmd/bitfmt for
// the CLI boundary that constructs dtypes and literals directly
// instead).
package schema

import (
	"github.com/calebcase/bitfmt/expr"
	"github.com/calebcase/bitfmt/internal/berr"
)

// Node is a field_type in the schema tree: Field, Format, If, Repeat,
// While, Let, or Pass. The taxonomy is closed; sealed prevents other
// packages from adding variants.
type Node interface {
	sealed()

	// names lists the binding names node directly introduces into its
	// enclosing Format's scope, used for duplicate-sibling detection.
	names() []string
}

// Field is a single dtype-typed value, optionally named and optionally
// const (fixed at construction, checked rather than pulled on pack).
type Field struct {
	name       string
	dt         Type
	isConst    bool
	constValue interface{}
}

// NewField builds a plain Field. An empty name makes the field
// anonymous: it still occupies bits but binds nothing.
func NewField(name string, dt Type) Field {
	return Field{name: name, dt: dt}
}

// NewConstField builds a Field whose value is fixed at construction.
// On parse, the declared bits must equal dt.Pack(value) or the parse
// fails with ConstMismatch; clear leaves it bound, and pack never
// pulls a value for it.
func NewConstField(name string, dt Type, value interface{}) Field {
	return Field{name: name, dt: dt, isConst: true, constValue: value}
}

func (Field) sealed() {}
func (f Field) names() []string {
	if f.name == "" {
		return nil
	}
	return []string{f.name}
}

// Format groups an ordered sequence of children. A named Format
// occupies one slot (and one name) in its enclosing scope and its own
// children see a fresh scope nested under the enclosing one. An
// anonymous Format is transparent: its children share the enclosing
// scope directly, equivalent to inlining them at this position.
type Format struct {
	name     string
	children []Node
}

// NewFormat builds a Format from children, in document order.
// Duplicate sibling names among the direct/flattened-through children
// (per Node.names) are rejected with SchemaError.
func NewFormat(name string, children ...Node) (Format, error) {
	cp := make([]Node, len(children))
	copy(cp, children)

	seen := map[string]bool{}
	for _, c := range cp {
		for _, n := range c.names() {
			if seen[n] {
				return Format{}, berr.SchemaError.New("duplicate sibling name %q", n)
			}
			seen[n] = true
		}
	}

	return Format{name: name, children: cp}, nil
}

func (Format) sealed() {}

// names returns its own name if named; an anonymous Format is
// transparent, so it returns the union of its children's names
// instead, matching how its bindings actually land in the enclosing
// scope at walk time.
func (f Format) names() []string {
	if f.name != "" {
		return []string{f.name}
	}
	var out []string
	for _, c := range f.children {
		out = append(out, c.names()...)
	}
	return out
}

// If evaluates cond once and walks exactly one of then/els (els may be
// nil, meaning "no else": if cond is false the node binds nothing and
// occupies no bits). The taken branch is recorded so to_bits is
// deterministic; the non-taken branch remains unbound.
type If struct {
	cond expr.Node
	then Node
	els  Node
}

// NewIf builds an If node. els may be nil.
func NewIf(cond expr.Node, then Node, els Node) If {
	return If{cond: cond, then: then, els: els}
}

func (If) sealed() {}
func (n If) names() []string {
	var out []string
	out = append(out, n.then.names()...)
	if n.els != nil {
		out = append(out, n.els.names()...)
	}
	return out
}

// Repeat evaluates count once, then walks body that many times, each
// iteration in its own child scope with the loop index bound to "_".
// Names the body would bind are promoted, as a slice across
// iterations, into Repeat's own enclosing scope once every iteration
// has run.
type Repeat struct {
	count expr.Node
	body  Node
}

// NewRepeat builds a Repeat node.
func NewRepeat(count expr.Node, body Node) Repeat {
	return Repeat{count: count, body: body}
}

func (Repeat) sealed() {}

// names returns nil: the body's bindings are scoped per iteration and
// only promoted to the enclosing scope after the fact, so they cannot
// collide with a sibling's name at construction time the way a direct
// Field/Format/Let binding can.
func (Repeat) names() []string { return nil }

// While walks body repeatedly, re-evaluating cond against the
// enclosing scope before each iteration (unlike Repeat, whose count is
// evaluated once up front): as long as cond is truthy, body runs once
// more, in its own child scope with the loop index bound to "_", and
// whatever names body binds are immediately folded back into the
// enclosing scope so the next cond evaluation can see them — the usual
// shape is a body ending in a Let that decrements a name cond tests,
// e.g. `while {x > 5}: (u8, let x = {x - 2})`. Once the loop ends, the
// body's names are re-bound as a slice across iterations, the same
// promotion Repeat does.
type While struct {
	cond expr.Node
	body Node
}

// NewWhile builds a While node.
func NewWhile(cond expr.Node, body Node) While {
	return While{cond: cond, body: body}
}

func (While) sealed() {}

// names returns nil, for the same reason as Repeat: the body's
// bindings are scoped per iteration and only promoted to the
// enclosing scope after the fact.
func (While) names() []string { return nil }

// Let evaluates expr once, binds it under name, and emits no bits.
type Let struct {
	name string
	expr expr.Node
}

// NewLet builds a Let node.
func NewLet(name string, e expr.Node) Let {
	return Let{name: name, expr: e}
}

func (Let) sealed() {}
func (l Let) names() []string { return []string{l.name} }

// Pass is a no-op: it binds nothing and occupies no bits.
type Pass struct{}

func (Pass) sealed()         {}
func (Pass) names() []string { return nil }
