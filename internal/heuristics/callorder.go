package heuristics

import "github.com/jac3km4/graphmat/internal/callgraph"

// CallOrder labels each call list by the first-appearance ordinal of the
// target address, so repeated calls to the same function share a label
// and two lists with the same call shape compare equal regardless of
// concrete addresses.
type CallOrder struct{}

// Name implements Labeling.
func (CallOrder) Name() string { return "call-order" }

// Label implements Labeling.
func (CallOrder) Label(lhs, rhs []uint64, _, _ *callgraph.Graph) ([]int, []int) {
	return orderLabels(lhs), orderLabels(rhs)
}

func orderLabels(addrs []uint64) []int {
	labels := make([]int, len(addrs))
	seen := make(map[uint64]int, len(addrs))
	next := 0
	for i, a := range addrs {
		l, ok := seen[a]
		if !ok {
			l = next
			next++
			seen[a] = l
		}
		labels[i] = l
	}
	return labels
}
