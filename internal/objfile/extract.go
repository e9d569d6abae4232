package objfile

import (
	"bytes"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"github.com/jac3km4/graphmat/internal/callgraph"
	"github.com/jac3km4/graphmat/internal/logflags"
)

// alignSeqs are the padding byte sequences compilers emit between
// functions: int3 runs and multi-byte NOPs.
var alignSeqs = [][]byte{
	{0xCC, 0xCC},
	{0x0F, 0x1F, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
}

const endpWindow = 16

// isEndp reports whether the 16-byte window starts at a function
// terminator: a call or ret directly followed by alignment padding.
func isEndp(window []byte) bool {
	switch window[0] {
	case 0xE8: // call rel32
		return hasAlignPrefix(window[5:])
	case 0xC3: // ret
		return hasAlignPrefix(window[1:])
	}
	return false
}

func hasAlignPrefix(rem []byte) bool {
	for _, seq := range alignSeqs {
		if bytes.HasPrefix(rem, seq) {
			return true
		}
	}
	return false
}

// bodyLen returns the length of the function starting at addr: up to and
// including the first terminator, or to the end of the section when none
// is found.
func bodyLen(text []byte, addr uint64) int {
	rest := text[addr:]
	for i := 0; i+endpWindow <= len(rest); i++ {
		if isEndp(rest[i : i+endpWindow]) {
			if rest[i] == 0xE8 {
				return i + 5
			}
			return i + 1
		}
	}
	return len(rest)
}

// Graph discovers functions reachable from the entrypoint plus the given
// extra roots (relative addresses) and returns the call graph.
func (f *File) Graph(extraRoots ...uint64) *callgraph.Graph {
	roots := append([]uint64{f.Entry()}, extraRoots...)
	return ExtractGraph(f.text, roots)
}

// ExtractGraph builds a call graph from raw x86-64 text bytes, starting
// at the given root offsets. Function bodies are delimited by alignment
// padding; direct calls and tail jumps leaving a body become call edges.
// Targets outside the text region stay in the graph as opcode-less stub
// vertices.
func ExtractGraph(text []byte, roots []uint64) *callgraph.Graph {
	log := logflags.ObjfileLogger()
	b := callgraph.NewBuilder()
	done := make(map[uint64]bool)

	var work []uint64
	for _, r := range roots {
		if r < uint64(len(text)) {
			work = append(work, r)
		}
	}

	for len(work) > 0 {
		addr := work[len(work)-1]
		work = work[:len(work)-1]
		if done[addr] {
			continue
		}
		done[addr] = true

		n := bodyLen(text, addr)
		body := text[addr : addr+uint64(n)]
		opcodes, calls := decodeBody(body, addr)
		b.AddFunc(addr, opcodes)

		for _, target := range calls {
			// Branches within the body are ordinary control flow,
			// not calls.
			if target >= addr && target < addr+uint64(n) {
				continue
			}
			b.AddEdge(addr, target)
			if target < uint64(len(text)) {
				work = append(work, target)
			}
		}
	}

	g := b.Build()
	log.Debugf("extracted %d functions from %d bytes of text", g.Len(), len(text))
	return g
}

// decodeBody decodes one function body, returning its opcode tokens and
// the targets of direct call/jmp instructions (relative to the text
// base). Undecodable bytes become a "(bad)" token and are skipped one
// byte at a time.
func decodeBody(body []byte, addr uint64) (opcodes []string, calls []uint64) {
	off := 0
	for off < len(body) {
		inst, err := x86asm.Decode(body[off:], 64)
		if err != nil {
			opcodes = append(opcodes, "(bad)")
			off++
			continue
		}

		opcodes = append(opcodes, strings.ToLower(inst.Op.String()))

		if inst.Op == x86asm.CALL || inst.Op == x86asm.JMP {
			if rel, ok := inst.Args[0].(x86asm.Rel); ok {
				next := addr + uint64(off) + uint64(inst.Len)
				target := int64(next) + int64(rel)
				if target >= 0 {
					calls = append(calls, uint64(target))
				}
			}
		}
		off += inst.Len
	}
	return opcodes, calls
}
