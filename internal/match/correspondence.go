package match

import "sort"

// Correspondence is a partial injective mapping between the vertices of
// two call graphs. Pairs are only ever added, never retracted.
type Correspondence struct {
	aToB map[uint64]uint64
	bToA map[uint64]uint64
}

// NewCorrespondence returns an empty Correspondence.
func NewCorrespondence() *Correspondence {
	return &Correspondence{
		aToB: make(map[uint64]uint64),
		bToA: make(map[uint64]uint64),
	}
}

// Len returns the number of confirmed pairs.
func (c *Correspondence) Len() int { return len(c.aToB) }

// GetA returns the right-graph vertex matched to a.
func (c *Correspondence) GetA(a uint64) (uint64, bool) {
	b, ok := c.aToB[a]
	return b, ok
}

// GetB returns the left-graph vertex matched to b.
func (c *Correspondence) GetB(b uint64) (uint64, bool) {
	a, ok := c.bToA[b]
	return a, ok
}

// MatchedA reports whether the left-graph vertex a is matched.
func (c *Correspondence) MatchedA(a uint64) bool {
	_, ok := c.aToB[a]
	return ok
}

// MatchedB reports whether the right-graph vertex b is matched.
func (c *Correspondence) MatchedB(b uint64) bool {
	_, ok := c.bToA[b]
	return ok
}

// add confirms the pair (a, b). It returns false without mutating if
// either endpoint is already matched, preserving injectivity.
func (c *Correspondence) add(a, b uint64) bool {
	if _, taken := c.aToB[a]; taken {
		return false
	}
	if _, taken := c.bToA[b]; taken {
		return false
	}
	c.aToB[a] = b
	c.bToA[b] = a
	return true
}

// Pairs returns all confirmed pairs ordered by ascending left address.
func (c *Correspondence) Pairs() [][2]uint64 {
	out := make([][2]uint64, 0, len(c.aToB))
	for a, b := range c.aToB {
		out = append(out, [2]uint64{a, b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
