// Package editseq converts a finalized correspondence plus the two call
// graphs into an edit sequence: the matched pairs and the vertices that
// exist on only one side.
package editseq

import (
	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/match"
)

// OpKind describes one edit sequence operation.
type OpKind string

const (
	// OpMatch pairs a left vertex with a right vertex.
	OpMatch OpKind = "match"
	// OpInsertA is a left-graph vertex with no counterpart.
	OpInsertA OpKind = "insert_a"
	// OpInsertB is a right-graph vertex with no counterpart.
	OpInsertB OpKind = "insert_b"
)

// Op is one operation of an edit sequence. AddrA is meaningful for
// OpMatch and OpInsertA, AddrB for OpMatch and OpInsertB.
type Op struct {
	Kind  OpKind `json:"kind"`
	AddrA uint64 `json:"addr_a,omitempty"`
	AddrB uint64 `json:"addr_b,omitempty"`
}

// Sequence is an ordered, read-only edit sequence.
type Sequence struct {
	Ops []Op `json:"ops"`
}

// Counts returns the number of match, insert-A and insert-B operations.
func (s *Sequence) Counts() (matches, insertsA, insertsB int) {
	for _, op := range s.Ops {
		switch op.Kind {
		case OpMatch:
			matches++
		case OpInsertA:
			insertsA++
		case OpInsertB:
			insertsB++
		}
	}
	return
}

// Build produces the edit sequence for the two graphs under the given
// correspondence. The order is stable: matches by ascending left
// address, then left-only vertices ascending, then right-only vertices
// ascending, so repeated runs emit byte-identical output.
func Build(lhs, rhs *callgraph.Graph, corr *match.Correspondence) *Sequence {
	seq := &Sequence{Ops: make([]Op, 0, lhs.Len()+rhs.Len()-corr.Len())}

	for _, p := range corr.Pairs() {
		seq.Ops = append(seq.Ops, Op{Kind: OpMatch, AddrA: p[0], AddrB: p[1]})
	}
	for _, a := range lhs.Addrs() {
		if !corr.MatchedA(a) {
			seq.Ops = append(seq.Ops, Op{Kind: OpInsertA, AddrA: a})
		}
	}
	for _, b := range rhs.Addrs() {
		if !corr.MatchedB(b) {
			seq.Ops = append(seq.Ops, Op{Kind: OpInsertB, AddrB: b})
		}
	}
	return seq
}
