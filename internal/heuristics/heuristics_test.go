package heuristics

import (
	"reflect"
	"testing"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/star"
)

func TestCallOrderLabels(t *testing.T) {
	cases := []struct {
		edges []uint64
		want  []int
	}{
		{[]uint64{512, 513, 514}, []int{0, 1, 2}},
		{[]uint64{512, 513, 513, 514, 513}, []int{0, 1, 1, 2, 1}},
		{[]uint64{512, 513, 514, 513, 514, 515, 513, 514, 512}, []int{0, 1, 2, 1, 2, 3, 1, 2, 0}},
		{nil, []int{}},
	}
	for _, c := range cases {
		if got := orderLabels(c.edges); !reflect.DeepEqual(got, c.want) {
			t.Errorf("orderLabels(%v) = %v, want %v", c.edges, got, c.want)
		}
	}
}

// sizeGraph builds a graph whose functions at the given addresses have
// opcode sequences of decreasing length: 2, 1, 0, ...
func sizeGraph(addrs ...uint64) *callgraph.Graph {
	bodies := [][]string{{"call", "mov"}, {"mov"}, {}}
	b := callgraph.NewBuilder()
	for i, a := range addrs {
		var ops []string
		if i < len(bodies) {
			ops = bodies[i]
		}
		b.AddFunc(a, ops)
	}
	return b.Build()
}

func TestRelativeCodeSizeLabels(t *testing.T) {
	lhsGraph := sizeGraph(512, 513, 514)
	rhsGraph := sizeGraph(1024, 1025, 1026)

	cases := []struct {
		lhs, rhs []uint64
		wantL    []int
		wantR    []int
	}{
		{[]uint64{512, 513, 514}, []uint64{1024, 1025, 1026}, []int{0, 1, 2}, []int{0, 1, 2}},
		{[]uint64{512, 513, 514}, []uint64{1025, 1026}, []int{4, 1, 2}, []int{1, 2}},
		{[]uint64{514}, []uint64{1024, 1025, 1026}, []int{0}, []int{1, 2, 0}},
		{nil, []uint64{1024, 1025, 1026}, []int{}, []int{0, 1, 2}},
		{[]uint64{512, 513, 514}, nil, []int{0, 1, 2}, []int{}},
		{[]uint64{514, 512, 513}, []uint64{1024, 1025, 1026}, []int{0, 1, 2}, []int{1, 2, 0}},
	}
	for _, c := range cases {
		ll, rl := RelativeCodeSize{}.Label(c.lhs, c.rhs, lhsGraph, rhsGraph)
		if !reflect.DeepEqual(ll, c.wantL) || !reflect.DeepEqual(rl, c.wantR) {
			t.Errorf("Label(%v, %v) = %v, %v; want %v, %v",
				c.lhs, c.rhs, ll, rl, c.wantL, c.wantR)
		}
	}
}

func twin() (*callgraph.Graph, *callgraph.Graph) {
	build := func(base uint64) *callgraph.Graph {
		b := callgraph.NewBuilder()
		b.AddFunc(base, []string{"push", "call", "call", "ret"})
		b.AddFunc(base+1, []string{"mov", "add", "ret"})
		b.AddFunc(base+2, []string{"xor", "ret"})
		b.AddEdge(base, base+1)
		b.AddEdge(base, base+2)
		return b.Build()
	}
	return build(0x100), build(0x200)
}

func TestResolveIdenticalNeighborhoods(t *testing.T) {
	lhs, rhs := twin()
	cmp := star.NewComparator(lhs, rhs, 0.8, 0.2, 64)
	r := NewResolver(cmp, 0.35)

	confirmed, resL, resR := r.Resolve(
		[]uint64{0x101, 0x102}, []uint64{0x201, 0x202}, lhs, rhs)
	if len(confirmed) != 2 {
		t.Fatalf("confirmed %d pairs, want 2: %v", len(confirmed), confirmed)
	}
	wantPairs := map[uint64]uint64{0x101: 0x201, 0x102: 0x202}
	for _, p := range confirmed {
		if wantPairs[p.A] != p.B {
			t.Errorf("pair %#x->%#x, want %#x", p.A, p.B, wantPairs[p.A])
		}
		if p.Score != 1 {
			t.Errorf("pair %#x score %v, want 1", p.A, p.Score)
		}
	}
	if len(resL) != 0 || len(resR) != 0 {
		t.Errorf("residue %v / %v, want empty", resL, resR)
	}
}

func TestResolveThresholdRejects(t *testing.T) {
	lhs, rhs := twin()
	cmp := star.NewComparator(lhs, rhs, 0.8, 0.2, 64)
	r := NewResolver(cmp, 1.01) // impossible threshold

	confirmed, resL, resR := r.Resolve(
		[]uint64{0x101}, []uint64{0x201}, lhs, rhs)
	if len(confirmed) != 0 {
		t.Fatalf("confirmed %v despite threshold", confirmed)
	}
	if !reflect.DeepEqual(resL, []uint64{0x101}) || !reflect.DeepEqual(resR, []uint64{0x201}) {
		t.Errorf("residue %v / %v", resL, resR)
	}
}

func TestResolveEmptySide(t *testing.T) {
	lhs, rhs := twin()
	cmp := star.NewComparator(lhs, rhs, 0.8, 0.2, 64)
	r := NewResolver(cmp, 0.35)

	confirmed, resL, resR := r.Resolve([]uint64{0x101, 0x101}, nil, lhs, rhs)
	if len(confirmed) != 0 {
		t.Fatalf("confirmed %v with empty rhs", confirmed)
	}
	if !reflect.DeepEqual(resL, []uint64{0x101}) {
		t.Errorf("residueL = %v, want deduplicated [0x101]", resL)
	}
	if resR != nil {
		t.Errorf("residueR = %v, want nil", resR)
	}
}

func TestResolveConflictRemoval(t *testing.T) {
	// Both lhs callees resemble the single rhs callee; only the better
	// scoring one may take it.
	b := callgraph.NewBuilder()
	b.AddFunc(0x101, []string{"mov", "add", "ret"})
	b.AddFunc(0x102, []string{"mov", "add", "sub", "ret"})
	lhs := b.Build()

	b = callgraph.NewBuilder()
	b.AddFunc(0x201, []string{"mov", "add", "ret"})
	rhs := b.Build()

	cmp := star.NewComparator(lhs, rhs, 1, 0, 64)
	r := NewResolver(cmp, 0.1)

	confirmed, resL, _ := r.Resolve([]uint64{0x101, 0x102}, []uint64{0x201}, lhs, rhs)
	if len(confirmed) != 1 || confirmed[0].A != 0x101 || confirmed[0].B != 0x201 {
		t.Fatalf("confirmed = %v, want exactly 0x101->0x201", confirmed)
	}
	if !reflect.DeepEqual(resL, []uint64{0x102}) {
		t.Errorf("residueL = %v, want [0x102]", resL)
	}
}
