package schema

// ValueSeq is the flat, forward-only sequence of values consumed by
// Build/Pack, pulled one per non-const Field encountered in document
// order (including fields nested inside Format/If/Repeat).
type ValueSeq struct {
	vals []interface{}
	i    int
}

// NewValueSeq wraps vals as a ValueSeq.
func NewValueSeq(vals ...interface{}) *ValueSeq {
	return &ValueSeq{vals: vals}
}

// Next returns the next value and true, or (nil, false) once exhausted.
func (s *ValueSeq) Next() (interface{}, bool) {
	if s.i >= len(s.vals) {
		return nil, false
	}
	v := s.vals[s.i]
	s.i++
	return v, true
}
