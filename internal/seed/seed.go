// Package seed derives an initial partial matching from the symbol
// tables of the two binaries: functions carrying the same name on both
// sides are trusted anchor pairs for the matcher.
package seed

import (
	"sort"
	"strings"

	"github.com/derekparker/trie"

	"github.com/jac3km4/graphmat/internal/objfile"
)

// Discover pairs left and right functions by exact symbol name. Names
// appearing more than once on a side are ignored beyond their first
// (lowest-address) occurrence, so the result is always injective. If
// prefix is non-empty only symbols starting with it participate. Pairs
// are ordered by ascending left address.
func Discover(lhs, rhs []objfile.Symbol, prefix string) [][2]uint64 {
	idx := trie.New()
	for _, s := range rhs {
		if _, ok := idx.Find(s.Name); !ok {
			idx.Add(s.Name, s.Addr)
		}
	}

	// With a prefix, restrict to the names below it in the index.
	var allowed map[string]bool
	if prefix != "" {
		names := idx.PrefixSearch(prefix)
		allowed = make(map[string]bool, len(names))
		for _, n := range names {
			allowed[n] = true
		}
	}

	ordered := make([]objfile.Symbol, len(lhs))
	copy(ordered, lhs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Addr < ordered[j].Addr })

	var out [][2]uint64
	seenName := make(map[string]bool, len(ordered))
	usedB := make(map[uint64]bool)
	for _, s := range ordered {
		if s.Name == "" || seenName[s.Name] {
			continue
		}
		seenName[s.Name] = true
		if prefix != "" && !strings.HasPrefix(s.Name, prefix) {
			continue
		}
		if allowed != nil && !allowed[s.Name] {
			continue
		}
		node, ok := idx.Find(s.Name)
		if !ok {
			continue
		}
		b := node.Meta().(uint64)
		if usedB[b] {
			continue
		}
		usedB[b] = true
		out = append(out, [2]uint64{s.Addr, b})
	}
	return out
}
