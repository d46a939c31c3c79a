// Package expr implements the small expression language used for
// dynamic field sizes, If conditions, Repeat counts, and Let bindings:
// integer/float/bool/string literals, dotted/indexed name references,
// arithmetic, comparison, and a conditional form, evaluated against a
// chain of name environments.
package expr

import "github.com/calebcase/bitfmt/internal/berr"

// Env is a lexical binding frame with a parent link; lookups climb
// toward the root until a name is found or the chain is exhausted.
type Env struct {
	parent *Env
	vars   map[string]interface{}
}

// NewEnv creates a frame whose enclosing scope is parent (nil for a root).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]interface{})}
}

// PushChild returns a new frame scoped under e, used when entering a
// nested Format so its bindings shadow but do not pollute e.
func (e *Env) PushChild() *Env {
	return NewEnv(e)
}

// Bind assigns name to v in e's own frame, shadowing any outer binding
// of the same name.
func (e *Env) Bind(name string, v interface{}) {
	e.vars[name] = v
}

// Lookup climbs the parent chain for name, returning (value, true) if
// found in e or an ancestor, or (nil, false) otherwise.
func (e *Env) Lookup(name string) (interface{}, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve looks up base, then drills through accessors (dotted field
// names into map[string]interface{} values, or integer indices into
// []interface{} values), matching the dotted/indexed path grammar
// (`header.size`, `lengths[0]`).
func Resolve(env *Env, base string, accessors []Accessor) (interface{}, error) {
	v, ok := env.Lookup(base)
	if !ok {
		return nil, berr.UnresolvedName.New("unresolved name %q", base)
	}
	cur := v
	path := base
	for _, a := range accessors {
		switch {
		case a.Field != "":
			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil, berr.UnresolvedName.New("%q has no field %q", path, a.Field)
			}
			next, ok := m[a.Field]
			if !ok {
				return nil, berr.UnresolvedName.New("%q has no field %q", path, a.Field)
			}
			cur = next
			path = path + "." + a.Field
		case a.Index != nil:
			idxVal, err := a.Index.Eval(env)
			if err != nil {
				return nil, err
			}
			i, err := toInt(idxVal)
			if err != nil {
				return nil, err
			}
			seq, ok := cur.([]interface{})
			if !ok {
				return nil, berr.UnresolvedName.New("%q is not indexable", path)
			}
			if i < 0 || i >= len(seq) {
				return nil, berr.OutOfRange.New("index %d out of range [0,%d) for %q", i, len(seq), path)
			}
			cur = seq[i]
		}
	}
	return cur, nil
}
