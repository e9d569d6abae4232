package render

import (
	"context"
	"strings"
	"testing"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/config"
	"github.com/jac3km4/graphmat/internal/match"
	"github.com/jac3km4/graphmat/internal/star"
)

func TestDiffDOT(t *testing.T) {
	build := func(base uint64) *callgraph.Graph {
		b := callgraph.NewBuilder()
		b.AddFunc(base+0, []string{"push", "call", "ret"})
		b.AddFunc(base+1, []string{"mov", "ret"})
		b.AddFunc(base+5, []string{"nop", "ret"}) // unreachable
		b.AddEdge(base+0, base+1)
		return b.Build()
	}
	lhs, rhs := build(0x100), build(0x200)

	cfg := config.Default()
	corr, err := match.NewMatcher(cfg).Match(context.Background(), lhs, rhs,
		[][2]uint64{{0x100, 0x200}})
	if err != nil {
		t.Fatal(err)
	}
	cmp := star.NewComparator(lhs, rhs, cfg.OpcodeWeight, cfg.DegreeWeight, cfg.ScoreCacheSize)

	dot := DiffDOT(lhs, corr, cmp, "a vs b", Plain, 0)

	if !strings.HasPrefix(dot, "digraph diff {") {
		t.Fatalf("not a digraph: %q", dot[:20])
	}
	for _, want := range []string{
		`"0x100 -> 0x200"`, // matched with its twin
		`"0x105"`,          // unmatched keeps its address
		Plain.MatchStrong,  // identical pair gets the strong band
		Plain.Unmatched,
		"f_100 -> f_101;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Stable across renders.
	if again := DiffDOT(lhs, corr, cmp, "a vs b", Plain, 0); again != dot {
		t.Error("repeated render differs")
	}
}

func TestDiffDOTMaxNodes(t *testing.T) {
	b := callgraph.NewBuilder()
	for i := uint64(0); i < 10; i++ {
		b.AddFunc(i, []string{"ret"})
	}
	g := b.Build()

	dot := DiffDOT(g, match.NewCorrespondence(), nil, "", Plain, 3)
	if strings.Contains(dot, `"0x9"`) {
		t.Error("node beyond maxNodes rendered")
	}
}
