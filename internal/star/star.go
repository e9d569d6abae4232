// Package star scores the similarity of two functions, one from each
// graph, by combining opcode-sequence edit distance with a degree term.
package star

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/editdist"
)

// Comparator computes star similarity scores between vertices of two
// fixed call graphs. Scores are in [0,1], 1 meaning identical. A
// comparator is safe for concurrent use: both graphs are read-only and
// the score cache is internally synchronized.
type Comparator struct {
	lhs, rhs     *callgraph.Graph
	opcodeWeight float64
	degreeWeight float64
	cache        *lru.Cache
}

type pairKey struct {
	a, b uint64
}

// NewComparator returns a Comparator over the two graphs with the given
// opcode/degree weighting and score cache size.
func NewComparator(lhs, rhs *callgraph.Graph, opcodeWeight, degreeWeight float64, cacheSize int) *Comparator {
	cache, err := lru.New(cacheSize)
	if err != nil {
		// Only reachable with a non-positive size, which config
		// validation rejects.
		panic(err)
	}
	return &Comparator{
		lhs:          lhs,
		rhs:          rhs,
		opcodeWeight: opcodeWeight,
		degreeWeight: degreeWeight,
		cache:        cache,
	}
}

// Similarity returns the star score of the pair (a, b), where a is a
// vertex address of the left graph and b of the right. Unknown addresses
// score 0.
func (c *Comparator) Similarity(a, b uint64) float64 {
	key := pairKey{a, b}
	if v, ok := c.cache.Get(key); ok {
		return v.(float64)
	}

	va, okA := c.lhs.Vertex(a)
	vb, okB := c.rhs.Vertex(b)
	if !okA || !okB {
		return 0
	}

	score := c.opcodeWeight*opcodeSimilarity(va.Opcodes, vb.Opcodes) +
		c.degreeWeight*degreeSimilarity(va, vb)
	c.cache.Add(key, score)
	return score
}

// opcodeSimilarity is 1 - distance/max(len). Two empty sequences are
// identical and score 1.
func opcodeSimilarity(a, b []string) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 1
	}
	return 1 - float64(editdist.Distance(a, b))/float64(n)
}

// degreeSimilarity averages the closeness of out-degrees and in-degrees.
func degreeSimilarity(a, b *callgraph.Vertex) float64 {
	return (closeness(a.OutDegree(), b.OutDegree()) + closeness(a.InDegree(), b.InDegree())) / 2
}

func closeness(a, b int) float64 {
	if a == b {
		return 1
	}
	max := a
	if b > max {
		max = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(max)
}
