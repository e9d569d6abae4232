package heuristics

import (
	"sort"

	"github.com/jac3km4/graphmat/internal/callgraph"
)

// RelativeCodeSize labels the two call lists by relative function size:
// each callee's opcode count is normalized by the largest count on its
// own side, both sides are ranked by that weight, and the closest weights
// across sides are greedily paired and given a shared label. Positions
// left unpaired receive fresh labels so they never compare equal.
type RelativeCodeSize struct{}

// Name implements Labeling.
func (RelativeCodeSize) Name() string { return "relative-code-size" }

type idxWeight struct {
	idx int
	w   float64
}

// Label implements Labeling.
func (RelativeCodeSize) Label(lhs, rhs []uint64, lhsGraph, rhsGraph *callgraph.Graph) ([]int, []int) {
	wl := sizeWeights(lhs, lhsGraph)
	wr := sizeWeights(rhs, rhsGraph)

	const unset = -1
	ll := make([]int, len(lhs))
	rl := make([]int, len(rhs))
	for i := range ll {
		ll[i] = unset
	}
	for i := range rl {
		rl[i] = unset
	}

	counter := 0
	j := 0
	for _, p := range wl {
		if j >= len(wr) {
			break
		}
		q := wr[j]
		j++
		diff := abs(p.w - q.w)
		for j < len(wr) && abs(p.w-wr[j].w) < diff {
			q = wr[j]
			j++
		}
		ll[p.idx] = p.idx
		rl[q.idx] = p.idx
		if p.idx > counter {
			counter = p.idx
		}
		counter++
	}

	for i := range ll {
		if ll[i] == unset {
			ll[i] = counter
			counter++
		}
	}
	for i := range rl {
		if rl[i] == unset {
			rl[i] = counter
			counter++
		}
	}
	return ll, rl
}

// sizeWeights returns (index, opcodeCount/maxCount) sorted by weight
// ascending. The sort is stable so equal weights keep list order.
func sizeWeights(addrs []uint64, g *callgraph.Graph) []idxWeight {
	if len(addrs) == 0 {
		return nil
	}
	lens := make([]int, len(addrs))
	maxLen := 0
	for i, a := range addrs {
		if v, ok := g.Vertex(a); ok {
			lens[i] = len(v.Opcodes)
		}
		if lens[i] > maxLen {
			maxLen = lens[i]
		}
	}

	out := make([]idxWeight, len(addrs))
	for i, l := range lens {
		w := 0.0
		if maxLen > 0 {
			w = float64(l) / float64(maxLen)
		}
		out[i] = idxWeight{idx: i, w: w}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].w < out[j].w })
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
