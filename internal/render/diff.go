// Package render emits Graphviz DOT for a matched call graph pair: the
// left graph's structure with each vertex colored by how it fared in
// the matching.
package render

import (
	"fmt"
	"strings"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/match"
	"github.com/jac3km4/graphmat/internal/star"
)

const strongScore = 0.9

// DiffDOT renders the left call graph as DOT. Matched vertices are
// labeled "a -> b" and filled by similarity band; unmatched vertices
// keep their address and the unmatched fill. maxNodes caps the rendered
// vertices (0 = all); vertices are taken in ascending address order so
// the output is stable.
func DiffDOT(lhs *callgraph.Graph, corr *match.Correspondence, cmp *star.Comparator, title string, t Theme, maxNodes int) string {
	addrs := lhs.Addrs()
	if maxNodes > 0 && len(addrs) > maxNodes {
		addrs = addrs[:maxNodes]
	}
	rendered := make(map[uint64]bool, len(addrs))
	for _, a := range addrs {
		rendered[a] = true
	}

	var b strings.Builder
	b.WriteString("digraph diff {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.6;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, color=%q, penwidth=0.5, fontsize=9, fontcolor=%q];\n",
		t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee, color=%q];\n", t.EdgeColor)
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=t;\n  label=%q;\n", title)
	}
	b.WriteByte('\n')

	for _, a := range addrs {
		label := fmt.Sprintf("%#x", a)
		fill := t.Unmatched
		if mb, ok := corr.GetA(a); ok {
			label = fmt.Sprintf("%#x -> %#x", a, mb)
			fill = t.MatchWeak
			if cmp != nil && cmp.Similarity(a, mb) >= strongScore {
				fill = t.MatchStrong
			}
		}
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n", dotID(a), label, fill)
	}
	b.WriteByte('\n')

	// One edge per caller/callee pair; parallel call sites collapse.
	for _, a := range addrs {
		seen := make(map[uint64]bool)
		for _, callee := range lhs.Callees(a) {
			if !rendered[callee] || seen[callee] {
				continue
			}
			seen[callee] = true
			fmt.Fprintf(&b, "  %s -> %s;\n", dotID(a), dotID(callee))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func dotID(addr uint64) string {
	return fmt.Sprintf("f_%x", addr)
}
