// Package match implements error-tolerant call graph matching: starting
// from a trusted seed correspondence it propagates outward along call
// edges, extending the matching one neighborhood at a time. The approach
// follows "Error-tolerant graph matching in linear computational cost
// using an initial small partial matching" (Rodenas et al.).
package match

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/config"
	"github.com/jac3km4/graphmat/internal/heuristics"
	"github.com/jac3km4/graphmat/internal/logflags"
	"github.com/jac3km4/graphmat/internal/star"
)

// ErrInvalidSeed is returned when the seed matching is not injective or
// references vertices absent from either graph. No propagation is
// performed in that case.
var ErrInvalidSeed = errors.New("match: invalid seed")

// Matcher grows a vertex correspondence between two call graphs from a
// seed matching. A Matcher is stateless across calls; every call to
// Match is a pure function of the graphs, the seed and the
// configuration.
type Matcher struct {
	cfg config.Config
	log *logrus.Entry
}

// NewMatcher returns a Matcher with the given configuration.
func NewMatcher(cfg config.Config) *Matcher {
	return &Matcher{cfg: cfg, log: logflags.MatcherLogger()}
}

// Match computes a correspondence between lhs and rhs starting from the
// seed pairs. Seed pairs are always part of the result. Vertices
// unreachable from any seed stay unmatched. ctx is only consulted
// between worklist iterations; on cancellation the partial result is
// discarded and ctx.Err() returned.
func (m *Matcher) Match(ctx context.Context, lhs, rhs *callgraph.Graph, seed [][2]uint64) (*Correspondence, error) {
	corr := NewCorrespondence()
	if err := validateSeed(lhs, rhs, seed); err != nil {
		return nil, err
	}

	cmp := star.NewComparator(lhs, rhs, m.cfg.OpcodeWeight, m.cfg.DegreeWeight, m.cfg.ScoreCacheSize)
	resolver := heuristics.NewResolver(cmp, m.cfg.MinScore)

	// Seed pairs are trusted: confirm them unconditionally and use them
	// as the initial anchors.
	worklist := &anchorHeap{}
	for _, pair := range seed {
		if !corr.add(pair[0], pair[1]) {
			// Exact duplicate of an earlier seed pair.
			continue
		}
		heap.Push(worklist, anchor{
			a:     pair[0],
			b:     pair[1],
			score: cmp.Similarity(pair[0], pair[1]),
		})
	}
	m.log.Debugf("seeded %d pairs", corr.Len())

	expansions := 0
	for worklist.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		an := heap.Pop(worklist).(anchor)
		expansions++

		m.expand(worklist, corr, resolver, lhs, rhs, an, calleesOf)
		if m.cfg.MatchCallers {
			m.expand(worklist, corr, resolver, lhs, rhs, an, callersOf)
		}
	}

	m.log.Debugf("converged: %d pairs after %d expansions", corr.Len(), expansions)
	return corr, nil
}

type neighborFunc func(g *callgraph.Graph, addr uint64) []uint64

func calleesOf(g *callgraph.Graph, addr uint64) []uint64 { return g.Callees(addr) }
func callersOf(g *callgraph.Graph, addr uint64) []uint64 { return g.Callers(addr) }

// expand resolves one neighborhood of the anchor pair and confirms the
// resulting pairs. Newly confirmed pairs become anchors themselves.
func (m *Matcher) expand(worklist *anchorHeap, corr *Correspondence, resolver *heuristics.Resolver,
	lhs, rhs *callgraph.Graph, an anchor, neighbors neighborFunc) {

	la := unmatchedA(corr, neighbors(lhs, an.a))
	rb := unmatchedB(corr, neighbors(rhs, an.b))
	if len(la) == 0 || len(rb) == 0 {
		return
	}

	confirmed, _, _ := resolver.Resolve(la, rb, lhs, rhs)
	for _, p := range confirmed {
		if !corr.add(p.A, p.B) {
			continue
		}
		heap.Push(worklist, anchor{a: p.A, b: p.B, score: p.Score})
	}
}

func unmatchedA(corr *Correspondence, addrs []uint64) []uint64 {
	var out []uint64
	for _, a := range addrs {
		if !corr.MatchedA(a) {
			out = append(out, a)
		}
	}
	return out
}

func unmatchedB(corr *Correspondence, addrs []uint64) []uint64 {
	var out []uint64
	for _, b := range addrs {
		if !corr.MatchedB(b) {
			out = append(out, b)
		}
	}
	return out
}

// validateSeed checks endpoint existence and injectivity in both
// directions before any propagation happens.
func validateSeed(lhs, rhs *callgraph.Graph, seed [][2]uint64) error {
	seenA := make(map[uint64]uint64, len(seed))
	seenB := make(map[uint64]uint64, len(seed))
	for _, pair := range seed {
		a, b := pair[0], pair[1]
		if !lhs.Has(a) {
			return fmt.Errorf("%w: %#x is not a vertex of the first graph", ErrInvalidSeed, a)
		}
		if !rhs.Has(b) {
			return fmt.Errorf("%w: %#x is not a vertex of the second graph", ErrInvalidSeed, b)
		}
		// Exact repeats of a pair are tolerated; conflicting pairs are
		// not.
		if prev, ok := seenA[a]; ok && prev != b {
			return fmt.Errorf("%w: %#x paired with both %#x and %#x", ErrInvalidSeed, a, prev, b)
		}
		if prev, ok := seenB[b]; ok && prev != a {
			return fmt.Errorf("%w: %#x paired with both %#x and %#x", ErrInvalidSeed, b, prev, a)
		}
		seenA[a] = b
		seenB[b] = a
	}
	return nil
}

// anchorHeap orders anchors by score descending; ties break by ascending
// address pair so runs are reproducible.
type anchorHeap []anchor

type anchor struct {
	a, b  uint64
	score float64
}

func (h anchorHeap) Len() int { return len(h) }

func (h anchorHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	if h[i].a != h[j].a {
		return h[i].a < h[j].a
	}
	return h[i].b < h[j].b
}

func (h anchorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *anchorHeap) Push(x any) { *h = append(*h, x.(anchor)) }

func (h *anchorHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
