package bits

import "github.com/calebcase/bitfmt/internal/berr"

// Find returns the lowest index i >= start such that b.Slice(i, i+pat.Len())
// equals pat. If byteAligned is true, i must additionally be a multiple of
// 8. It returns ok == false if no match exists.
//
// The byte-alignment requirement is checked against the logical index of
// the view being searched, not against the underlying storage's physical
// byte grid; a view's own indexing always starts at 0 regardless of how
// its backing bytes happen to be offset in memory.
func (b Bits) Find(pat Bits, start int, byteAligned bool) (i int, ok bool) {
	m := pat.Len()
	if start < 0 {
		start = 0
	}
	if m == 0 {
		if start <= b.n {
			return start, true
		}
		return 0, false
	}
	for i := start; i+m <= b.n; i++ {
		if byteAligned && i%8 != 0 {
			continue
		}
		if regionEqual(b, i, pat) {
			return i, true
		}
	}
	return 0, false
}

// RFind is symmetric to Find, searching from the high end downward. It
// returns the highest index i <= end-len(pat) (end defaults to b.Len())
// such that the match holds.
func (b Bits) RFind(pat Bits, byteAligned bool) (i int, ok bool) {
	m := pat.Len()
	if m == 0 {
		return b.n, true
	}
	for i := b.n - m; i >= 0; i-- {
		if byteAligned && i%8 != 0 {
			continue
		}
		if regionEqual(b, i, pat) {
			return i, true
		}
	}
	return 0, false
}

func regionEqual(b Bits, at int, pat Bits) bool {
	for k := 0; k < pat.Len(); k++ {
		if b.MustBitAt(at+k) != pat.MustBitAt(k) {
			return false
		}
	}
	return true
}

// FindAllIter is a finite, forward-only, non-restartable iterator over
// non-overlapping matches produced by FindAll.
type FindAllIter struct {
	src         Bits
	pat         Bits
	pos         int
	byteAligned bool
	done        bool
}

// FindAll produces a lazy iterator over non-overlapping matches of pat in
// b, scanning from low to high starting at start.
func (b Bits) FindAll(pat Bits, start int, byteAligned bool) (*FindAllIter, error) {
	if start < 0 || start > b.n {
		return nil, berr.OutOfRange.New("start %d out of range [0,%d]", start, b.n)
	}
	return &FindAllIter{src: b, pat: pat, pos: start, byteAligned: byteAligned}, nil
}

// Next returns the next match index and true, or false when exhausted.
func (it *FindAllIter) Next() (int, bool) {
	if it.done {
		return 0, false
	}
	i, ok := it.src.Find(it.pat, it.pos, it.byteAligned)
	if !ok {
		it.done = true
		return 0, false
	}
	step := it.pat.Len()
	if step == 0 {
		step = 1
	}
	it.pos = i + step
	return i, true
}

// RFindAllIter is the high-to-low counterpart of FindAllIter.
type RFindAllIter struct {
	src         Bits
	pat         Bits
	end         int
	byteAligned bool
	done        bool
}

// RFindAll produces a lazy iterator over non-overlapping matches of pat in
// b, scanning from high to low.
func (b Bits) RFindAll(pat Bits, byteAligned bool) *RFindAllIter {
	return &RFindAllIter{src: b, pat: pat, end: b.n, byteAligned: byteAligned}
}

// Next returns the next match index (scanning downward) and true, or
// false when exhausted.
func (it *RFindAllIter) Next() (int, bool) {
	if it.done {
		return 0, false
	}
	m := it.pat.Len()
	if m == 0 {
		if it.end < 0 {
			it.done = true
			return 0, false
		}
		i := it.end
		it.end--
		return i, true
	}
	searchSpace, err := it.src.Slice(0, it.end)
	if err != nil {
		it.done = true
		return 0, false
	}
	i, ok := searchSpace.RFind(it.pat, it.byteAligned)
	if !ok {
		it.done = true
		return 0, false
	}
	it.end = i
	if it.end <= 0 {
		it.done = true
	}
	return i, true
}
