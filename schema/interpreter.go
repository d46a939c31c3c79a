package schema

import (
	"math/big"

	"github.com/calebcase/oops"

	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/expr"
	"github.com/calebcase/bitfmt/internal/berr"
)

// Interpreter walks a Node tree to parse bits into a Bound result,
// pack a ValueSeq into bits (keeping the Bound result for inspection),
// build bits without keeping that result, unpack a Bound into a
// structured value tree, clear a tree to its all-unbound (const
// excepted) state, and reassemble bits from a Bound tree.
//
// An Interpreter holds no state of its own; every operation is a pure
// function of the Node tree and the Bound/ValueSeq/bits it is given.
// Two goroutines may therefore call Parse/Pack on the same Node tree
// concurrently: each call constructs its own expr.Env and Bound tree.
type Interpreter struct{}

// NewInterpreter returns a stateless Interpreter.
func NewInterpreter() *Interpreter { return &Interpreter{} }

// Parse binds root from b starting at offset bits in, returning the
// Bound result tree and the new cursor position (offset + bits
// consumed). On error the returned Bound is nil, so bindings made before
// the failure are not returned; the returned position is the cursor
// position before the failing step at root level (for a Format root,
// where its failing direct child began).
func (in *Interpreter) Parse(root Node, b bitsx.Bits, offset int) (*Bound, int, error) {
	env := expr.NewEnv(nil)
	bound, pos, err := in.parseNode(root, env, b, offset)
	if err != nil {
		return bound, pos, oops.Trace(err)
	}
	return bound, pos, nil
}

// Pack pulls values from values in document order, producing root's
// bits and the Bound tree that records what was pulled/evaluated.
func (in *Interpreter) Pack(root Node, values *ValueSeq) (bitsx.Bits, *Bound, error) {
	env := expr.NewEnv(nil)
	bound, err := in.packNode(root, env, values)
	if err != nil {
		return bitsx.Bits{}, nil, oops.Trace(err)
	}
	b, err := in.ToBits(root, bound)
	if err != nil {
		return bitsx.Bits{}, nil, oops.Trace(err)
	}
	return b, bound, nil
}

// Build is Pack without keeping the Bound tree, for callers who only
// want the resulting bits.
func (in *Interpreter) Build(root Node, values *ValueSeq) (bitsx.Bits, error) {
	b, _, err := in.Pack(root, values)
	return b, err
}

// Unpack walks bound against root and returns a structured value
// tree: a Field/Let's scalar value, a Format's map[string]interface{}
// of its named (possibly flattened-through) children, an If's taken
// branch value (nil if none taken), or a Repeat's []interface{} of
// per-iteration values.
func (in *Interpreter) Unpack(root Node, bound *Bound) (interface{}, error) {
	return unpackValue(root, bound)
}

// ToBits reassembles root's bits from bound's recorded state.
func (in *Interpreter) ToBits(root Node, bound *Bound) (bitsx.Bits, error) {
	return toBitsValue(root, bound)
}

// Clear returns a fresh Bound tree for root with every non-const node
// unbound. Const fields stay bound to their declared value, per the
// const-bound state being invariant against clear.
func (in *Interpreter) Clear(root Node) *Bound {
	return clearNode(root)
}

func (in *Interpreter) parseNode(n Node, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	switch node := n.(type) {
	case Field:
		return in.parseField(node, env, b, pos)
	case Format:
		return in.parseFormat(node, env, b, pos)
	case If:
		return in.parseIf(node, env, b, pos)
	case Repeat:
		return in.parseRepeat(node, env, b, pos)
	case While:
		return in.parseWhile(node, env, b, pos)
	case Let:
		return in.parseLet(node, env, b, pos)
	case Pass:
		return &Bound{branch: -1}, pos, nil
	default:
		return nil, pos, berr.SchemaError.New("unknown node type %T", n)
	}
}

func (in *Interpreter) parseField(f Field, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	dt, err := f.dt.Resolve(env)
	if err != nil {
		return nil, pos, err
	}

	width := dt.BitWidth()
	if width < 0 {
		width = b.Len() - pos
	}
	if pos+width > b.Len() || width < 0 {
		return nil, pos, berr.ShortInput.New("field %q needs %d bits, only %d remain", f.name, width, b.Len()-pos)
	}

	fieldBits := b.MustSlice(pos, pos+width)
	value, err := dt.Unpack(fieldBits)
	if err != nil {
		return nil, pos, err
	}

	if f.isConst {
		wantBits, err := dt.Pack(f.constValue)
		if err != nil {
			return nil, pos, err
		}
		if !bitsx.Equal(wantBits, fieldBits) {
			return nil, pos, berr.ConstMismatch.New("const field %q: input does not match declared value", f.name)
		}
		value = f.constValue
	}

	if f.name != "" {
		env.Bind(f.name, value)
	}

	return &Bound{value: value, occupied: fieldBits, branch: -1}, pos + width, nil
}

func (in *Interpreter) parseFormat(fmtNode Format, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	e := env
	if fmtNode.name != "" {
		e = env.PushChild()
	}

	start := pos
	children := make([]*Bound, len(fmtNode.children))
	for i, c := range fmtNode.children {
		cb, next, err := in.parseNode(c, e, b, pos)
		if err != nil {
			return nil, pos, err
		}
		children[i] = cb
		pos = next
	}

	occupied := b.MustSlice(start, pos)
	value, err := unpackValue(fmtNode, &Bound{children: children})
	if err != nil {
		return nil, pos, err
	}
	if fmtNode.name != "" {
		env.Bind(fmtNode.name, value)
	}

	return &Bound{value: value, occupied: occupied, children: children, branch: -1}, pos, nil
}

func (in *Interpreter) parseIf(n If, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	c, err := n.cond.Eval(env)
	if err != nil {
		return nil, pos, err
	}

	which := 1
	branch := n.els
	if expr.Truthy(c) {
		which = 0
		branch = n.then
	}
	if branch == nil {
		return &Bound{branch: which}, pos, nil
	}

	cb, next, err := in.parseNode(branch, env, b, pos)
	if err != nil {
		return nil, pos, err
	}
	return &Bound{branch: which, children: []*Bound{cb}}, next, nil
}

func (in *Interpreter) parseRepeat(n Repeat, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	cv, err := n.count.Eval(env)
	if err != nil {
		return nil, pos, err
	}
	count, err := expr.ToCount(cv)
	if err != nil {
		return nil, pos, err
	}

	children := make([]*Bound, count)
	for i := 0; i < count; i++ {
		iterEnv := env.PushChild()
		iterEnv.Bind("_", big.NewInt(int64(i)))

		cb, next, err := in.parseNode(n.body, iterEnv, b, pos)
		if err != nil {
			return nil, pos, err
		}
		children[i] = cb
		pos = next
	}

	bound := &Bound{children: children, branch: -1}
	for k, v := range contributedValues(n, bound) {
		env.Bind(k, v)
	}
	return bound, pos, nil
}

func (in *Interpreter) parseWhile(n While, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	var children []*Bound
	for {
		c, err := n.cond.Eval(env)
		if err != nil {
			return nil, pos, err
		}
		if !expr.Truthy(c) {
			break
		}

		iterEnv := env.PushChild()
		iterEnv.Bind("_", big.NewInt(int64(len(children))))

		cb, next, err := in.parseNode(n.body, iterEnv, b, pos)
		if err != nil {
			return nil, pos, err
		}
		children = append(children, cb)
		pos = next

		for k, v := range contributedValues(n.body, cb) {
			env.Bind(k, v)
		}
	}

	bound := &Bound{children: children, branch: -1}
	for k, v := range contributedValues(n, bound) {
		env.Bind(k, v)
	}
	return bound, pos, nil
}

func (in *Interpreter) parseLet(n Let, env *expr.Env, b bitsx.Bits, pos int) (*Bound, int, error) {
	v, err := n.expr.Eval(env)
	if err != nil {
		return nil, pos, err
	}
	env.Bind(n.name, v)
	return &Bound{value: v, branch: -1}, pos, nil
}

func (in *Interpreter) packNode(n Node, env *expr.Env, values *ValueSeq) (*Bound, error) {
	switch node := n.(type) {
	case Field:
		return in.packField(node, env, values)
	case Format:
		return in.packFormat(node, env, values)
	case If:
		return in.packIf(node, env, values)
	case Repeat:
		return in.packRepeat(node, env, values)
	case While:
		return in.packWhile(node, env, values)
	case Let:
		return in.packLet(node, env)
	case Pass:
		return &Bound{branch: -1}, nil
	default:
		return nil, berr.SchemaError.New("unknown node type %T", n)
	}
}

func (in *Interpreter) packField(f Field, env *expr.Env, values *ValueSeq) (*Bound, error) {
	dt, err := f.dt.Resolve(env)
	if err != nil {
		return nil, err
	}

	value := f.constValue
	if !f.isConst {
		v, ok := values.Next()
		if !ok {
			return nil, berr.ShortInput.New("no value available for field %q", f.name)
		}
		value = v
	}

	b, err := dt.Pack(value)
	if err != nil {
		return nil, err
	}

	if f.name != "" {
		env.Bind(f.name, value)
	}

	return &Bound{value: value, occupied: b, branch: -1}, nil
}

func (in *Interpreter) packFormat(fmtNode Format, env *expr.Env, values *ValueSeq) (*Bound, error) {
	e := env
	if fmtNode.name != "" {
		e = env.PushChild()
	}

	children := make([]*Bound, len(fmtNode.children))
	for i, c := range fmtNode.children {
		cb, err := in.packNode(c, e, values)
		if err != nil {
			return nil, err
		}
		children[i] = cb
	}

	value, err := unpackValue(fmtNode, &Bound{children: children})
	if err != nil {
		return nil, err
	}
	if fmtNode.name != "" {
		env.Bind(fmtNode.name, value)
	}

	return &Bound{value: value, children: children, branch: -1}, nil
}

func (in *Interpreter) packIf(n If, env *expr.Env, values *ValueSeq) (*Bound, error) {
	c, err := n.cond.Eval(env)
	if err != nil {
		return nil, err
	}

	which := 1
	branch := n.els
	if expr.Truthy(c) {
		which = 0
		branch = n.then
	}
	if branch == nil {
		return &Bound{branch: which}, nil
	}

	cb, err := in.packNode(branch, env, values)
	if err != nil {
		return nil, err
	}
	return &Bound{branch: which, children: []*Bound{cb}}, nil
}

func (in *Interpreter) packRepeat(n Repeat, env *expr.Env, values *ValueSeq) (*Bound, error) {
	cv, err := n.count.Eval(env)
	if err != nil {
		return nil, err
	}
	count, err := expr.ToCount(cv)
	if err != nil {
		return nil, err
	}

	children := make([]*Bound, count)
	for i := 0; i < count; i++ {
		iterEnv := env.PushChild()
		iterEnv.Bind("_", big.NewInt(int64(i)))

		cb, err := in.packNode(n.body, iterEnv, values)
		if err != nil {
			return nil, err
		}
		children[i] = cb
	}

	bound := &Bound{children: children, branch: -1}
	for k, v := range contributedValues(n, bound) {
		env.Bind(k, v)
	}
	return bound, nil
}

func (in *Interpreter) packWhile(n While, env *expr.Env, values *ValueSeq) (*Bound, error) {
	var children []*Bound
	for {
		c, err := n.cond.Eval(env)
		if err != nil {
			return nil, err
		}
		if !expr.Truthy(c) {
			break
		}

		iterEnv := env.PushChild()
		iterEnv.Bind("_", big.NewInt(int64(len(children))))

		cb, err := in.packNode(n.body, iterEnv, values)
		if err != nil {
			return nil, err
		}
		children = append(children, cb)

		for k, v := range contributedValues(n.body, cb) {
			env.Bind(k, v)
		}
	}

	bound := &Bound{children: children, branch: -1}
	for k, v := range contributedValues(n, bound) {
		env.Bind(k, v)
	}
	return bound, nil
}

func (in *Interpreter) packLet(n Let, env *expr.Env) (*Bound, error) {
	v, err := n.expr.Eval(env)
	if err != nil {
		return nil, err
	}
	env.Bind(n.name, v)
	return &Bound{value: v, branch: -1}, nil
}

// unpackValue computes node's own structured value from bound, without
// reference to any environment.
func unpackValue(node Node, bound *Bound) (interface{}, error) {
	switch n := node.(type) {
	case Field:
		return bound.value, nil
	case Let:
		return bound.value, nil
	case Pass:
		return nil, nil
	case Format:
		out := map[string]interface{}{}
		for i, c := range n.children {
			for k, v := range contributedValues(c, bound.children[i]) {
				out[k] = v
			}
		}
		return out, nil
	case If:
		branch := ifBranch(n, bound.branch)
		if branch == nil {
			return nil, nil
		}
		return unpackValue(branch, bound.children[0])
	case Repeat:
		out := make([]interface{}, len(bound.children))
		for i, cb := range bound.children {
			v, err := unpackValue(n.body, cb)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case While:
		out := make([]interface{}, len(bound.children))
		for i, cb := range bound.children {
			v, err := unpackValue(n.body, cb)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, berr.SchemaError.New("unknown node type %T", node)
	}
}

// contributedValues returns the named bindings node contributes to
// whichever scope encloses it. Field/Let contribute themselves; a
// named Format contributes itself nested under its name; an anonymous
// Format and an If are transparent and flatten their chosen content;
// Repeat promotes each name its body would contribute to a slice
// across iterations; Pass contributes nothing.
func contributedValues(node Node, bound *Bound) map[string]interface{} {
	switch n := node.(type) {
	case Field:
		if n.name == "" {
			return nil
		}
		return map[string]interface{}{n.name: bound.value}
	case Let:
		return map[string]interface{}{n.name: bound.value}
	case Pass:
		return nil
	case Format:
		if n.name != "" {
			v, _ := unpackValue(n, bound)
			return map[string]interface{}{n.name: v}
		}
		out := map[string]interface{}{}
		for i, c := range n.children {
			for k, v := range contributedValues(c, bound.children[i]) {
				out[k] = v
			}
		}
		return out
	case If:
		branch := ifBranch(n, bound.branch)
		if branch == nil {
			return nil
		}
		return contributedValues(branch, bound.children[0])
	case Repeat:
		if len(bound.children) == 0 {
			return nil
		}
		first := contributedValues(n.body, bound.children[0])
		out := map[string]interface{}{}
		for k := range first {
			arr := make([]interface{}, len(bound.children))
			for i, cb := range bound.children {
				arr[i] = contributedValues(n.body, cb)[k]
			}
			out[k] = arr
		}
		return out
	case While:
		if len(bound.children) == 0 {
			return nil
		}
		first := contributedValues(n.body, bound.children[0])
		out := map[string]interface{}{}
		for k := range first {
			arr := make([]interface{}, len(bound.children))
			for i, cb := range bound.children {
				arr[i] = contributedValues(n.body, cb)[k]
			}
			out[k] = arr
		}
		return out
	default:
		return nil
	}
}

func toBitsValue(node Node, bound *Bound) (bitsx.Bits, error) {
	switch n := node.(type) {
	case Field, Let, Pass:
		return bound.occupied, nil
	case Format:
		parts := make([]bitsx.Bits, len(n.children))
		for i, c := range n.children {
			b, err := toBitsValue(c, bound.children[i])
			if err != nil {
				return bitsx.Bits{}, err
			}
			parts[i] = b
		}
		return bitsx.Concat(parts...), nil
	case If:
		branch := ifBranch(n, bound.branch)
		if branch == nil {
			return bitsx.Bits{}, nil
		}
		return toBitsValue(branch, bound.children[0])
	case Repeat:
		parts := make([]bitsx.Bits, len(bound.children))
		for i, cb := range bound.children {
			b, err := toBitsValue(n.body, cb)
			if err != nil {
				return bitsx.Bits{}, err
			}
			parts[i] = b
		}
		return bitsx.Concat(parts...), nil
	case While:
		parts := make([]bitsx.Bits, len(bound.children))
		for i, cb := range bound.children {
			b, err := toBitsValue(n.body, cb)
			if err != nil {
				return bitsx.Bits{}, err
			}
			parts[i] = b
		}
		return bitsx.Concat(parts...), nil
	default:
		return bitsx.Bits{}, berr.SchemaError.New("unknown node type %T", node)
	}
}

func ifBranch(n If, which int) Node {
	switch which {
	case 0:
		return n.then
	case 1:
		return n.els
	default:
		return nil
	}
}

func clearNode(node Node) *Bound {
	switch n := node.(type) {
	case Field:
		if !n.isConst {
			return &Bound{branch: -1}
		}
		dt, err := n.dt.Resolve(expr.NewEnv(nil))
		if err != nil {
			return &Bound{branch: -1}
		}
		b, err := dt.Pack(n.constValue)
		if err != nil {
			return &Bound{branch: -1}
		}
		return &Bound{value: n.constValue, occupied: b, branch: -1}
	case Format:
		children := make([]*Bound, len(n.children))
		for i, c := range n.children {
			children[i] = clearNode(c)
		}
		return &Bound{children: children, branch: -1}
	case If:
		return &Bound{branch: -1}
	case Repeat:
		return &Bound{branch: -1}
	case While:
		return &Bound{branch: -1}
	case Let, Pass:
		return &Bound{branch: -1}
	default:
		return &Bound{branch: -1}
	}
}
