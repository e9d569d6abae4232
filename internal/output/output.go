// Package output writes matching results to files: the CSV address
// mapping, the edit sequence as JSON, and call graph exports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zboralski/lattice"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/editseq"
)

// WriteMappingCSV writes the edit sequence as CSV rows of
// address_a,address_b,operation. Addresses are rebased onto the given
// section bases and formatted as hex; the side missing from an insert
// row is left empty. Row order follows the sequence, so output is
// byte-identical across runs.
func WriteMappingCSV(w io.Writer, seq *editseq.Sequence, baseA, baseB uint64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"address_a", "address_b", "operation"}); err != nil {
		return fmt.Errorf("output: write csv: %w", err)
	}
	for _, op := range seq.Ops {
		row := []string{"", "", string(op.Kind)}
		switch op.Kind {
		case editseq.OpMatch:
			row[0] = fmt.Sprintf("%#x", baseA+op.AddrA)
			row[1] = fmt.Sprintf("%#x", baseB+op.AddrB)
		case editseq.OpInsertA:
			row[0] = fmt.Sprintf("%#x", baseA+op.AddrA)
		case editseq.OpInsertB:
			row[1] = fmt.Sprintf("%#x", baseB+op.AddrB)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("output: write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMappingFile writes the CSV mapping to path.
func WriteMappingFile(path string, seq *editseq.Sequence, baseA, baseB uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	if err := WriteMappingCSV(f, seq, baseA, baseB); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteEditSequenceJSON writes the edit sequence to edit_sequence.json
// in dir.
func WriteEditSequenceJSON(dir string, seq *editseq.Sequence) error {
	return writeJSON(filepath.Join(dir, "edit_sequence.json"), seq)
}

// GraphExport converts a call graph to the shared lattice graph model,
// with vertices named by hex address. Node order is ascending and edges
// follow call-site order, so the export is deterministic.
func GraphExport(g *callgraph.Graph) *lattice.Graph {
	lg := &lattice.Graph{}
	for _, addr := range g.Addrs() {
		name := fmt.Sprintf("%#x", addr)
		lg.Nodes = append(lg.Nodes, name)
		for _, callee := range g.Callees(addr) {
			lg.Edges = append(lg.Edges, lattice.Edge{
				Caller: name,
				Callee: fmt.Sprintf("%#x", callee),
			})
		}
	}
	lg.Dedup()
	return lg
}

// WriteGraphJSON writes one call graph to <name>.json in dir using the
// lattice graph model.
func WriteGraphJSON(dir, name string, g *callgraph.Graph) error {
	return writeJSON(filepath.Join(dir, name+".json"), GraphExport(g))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("output: marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}
