// Package heuristics labels and pairs the callees (or callers) on both
// sides of an anchor pair. Each labeling heuristic reduces the two
// address lists to comparable label sequences; the Levenshtein alignment
// of the cheapest labeling proposes candidate pairs, which are then
// scored and resolved greedily into a one-to-one assignment.
package heuristics

import (
	"sort"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/editdist"
	"github.com/jac3km4/graphmat/internal/star"
)

// Labeling reduces the two neighbor lists to integer label sequences.
// Equal labels mark positions the heuristic considers equivalent.
type Labeling interface {
	Name() string
	Label(lhs, rhs []uint64, lhsGraph, rhsGraph *callgraph.Graph) (ll, rl []int)
}

// Pair is a candidate or confirmed vertex pair with its star score.
type Pair struct {
	A, B  uint64
	Score float64
}

// Resolver turns neighbor lists around an anchor into confirmed pairs.
type Resolver struct {
	cmp       *star.Comparator
	labelings []Labeling
	minScore  float64
}

// NewResolver returns a Resolver using the given comparator and
// acceptance threshold, with the CallOrder and RelativeCodeSize
// labelings.
func NewResolver(cmp *star.Comparator, minScore float64) *Resolver {
	return &Resolver{
		cmp:       cmp,
		labelings: []Labeling{CallOrder{}, RelativeCodeSize{}},
		minScore:  minScore,
	}
}

// Resolve pairs the unmatched neighbors lhs (from the left graph) and
// rhs (from the right graph) of an anchor. It returns the confirmed
// pairs, highest score first, plus the residual addresses on each side
// that stayed unmatched. Resolve never mutates its inputs and has no
// side effects beyond score computation, so the caller owns all state
// changes.
func (r *Resolver) Resolve(lhs, rhs []uint64, lhsGraph, rhsGraph *callgraph.Graph) (confirmed []Pair, residueL, residueR []uint64) {
	if len(lhs) == 0 || len(rhs) == 0 {
		return nil, dedup(lhs), dedup(rhs)
	}

	candidates := r.candidates(lhs, rhs, lhsGraph, rhsGraph)

	for i := range candidates {
		candidates[i].Score = r.cmp.Similarity(candidates[i].A, candidates[i].B)
	}

	// Deterministic greedy selection: best score first, ties by
	// ascending address pair.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.A != b.A {
			return a.A < b.A
		}
		return a.B < b.B
	})

	takenL := make(map[uint64]bool)
	takenR := make(map[uint64]bool)
	for _, c := range candidates {
		if c.Score < r.minScore {
			break
		}
		if takenL[c.A] || takenR[c.B] {
			continue
		}
		takenL[c.A] = true
		takenR[c.B] = true
		confirmed = append(confirmed, c)
	}

	for _, a := range dedup(lhs) {
		if !takenL[a] {
			residueL = append(residueL, a)
		}
	}
	for _, b := range dedup(rhs) {
		if !takenR[b] {
			residueR = append(residueR, b)
		}
	}
	return confirmed, residueL, residueR
}

// candidates aligns the two lists under the labeling with the smallest
// edit distance and returns the aligned address pairs. On a distance
// tie the earlier labeling wins, keeping the result deterministic.
func (r *Resolver) candidates(lhs, rhs []uint64, lhsGraph, rhsGraph *callgraph.Graph) []Pair {
	var best *editdist.Matrix
	bestDist := -1

	for _, lab := range r.labelings {
		ll, rl := lab.Label(lhs, rhs, lhsGraph, rhsGraph)
		m := editdist.NewMatrix(ll, rl)
		if d := m.Distance(); bestDist < 0 || d < bestDist {
			best, bestDist = m, d
		}
	}

	seen := make(map[pairKey]bool)
	var out []Pair
	for _, pos := range best.Alignment() {
		p := Pair{A: lhs[pos[0]], B: rhs[pos[1]]}
		k := pairKey{p.A, p.B}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

type pairKey struct {
	a, b uint64
}

// dedup keeps the first occurrence of each address, preserving order.
func dedup(addrs []uint64) []uint64 {
	if len(addrs) == 0 {
		return nil
	}
	seen := make(map[uint64]bool, len(addrs))
	out := make([]uint64, 0, len(addrs))
	for _, a := range addrs {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
