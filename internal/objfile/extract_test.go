package objfile

import (
	"reflect"
	"testing"
)

// synthetic .text image:
//
//	0x00: push rbp
//	0x01: call 0x10
//	0x06: ret
//	0x07: int3 padding
//	0x10: mov eax, 1
//	0x15: ret
//	0x16: int3 padding
func textImage() []byte {
	text := []byte{
		0x55,                         // push rbp
		0xE8, 0x0A, 0x00, 0x00, 0x00, // call +0x0a -> 0x10
		0xC3, // ret
	}
	for len(text) < 0x10 {
		text = append(text, 0xCC)
	}
	text = append(text, 0xB8, 0x01, 0x00, 0x00, 0x00, 0xC3) // mov eax,1; ret
	for len(text) < 0x26 {
		text = append(text, 0xCC)
	}
	return text
}

func TestExtractGraph(t *testing.T) {
	g := ExtractGraph(textImage(), []uint64{0})
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2 functions", g.Len())
	}

	v, ok := g.Vertex(0)
	if !ok {
		t.Fatal("root function missing")
	}
	if want := []string{"push", "call", "ret"}; !reflect.DeepEqual(v.Opcodes, want) {
		t.Errorf("root opcodes = %v, want %v", v.Opcodes, want)
	}
	if want := []uint64{0x10}; !reflect.DeepEqual(g.Callees(0), want) {
		t.Errorf("Callees(0) = %#v, want %#v", g.Callees(0), want)
	}

	callee, ok := g.Vertex(0x10)
	if !ok {
		t.Fatal("callee missing")
	}
	if want := []string{"mov", "ret"}; !reflect.DeepEqual(callee.Opcodes, want) {
		t.Errorf("callee opcodes = %v, want %v", callee.Opcodes, want)
	}
}

func TestExtractGraphOutOfTextTarget(t *testing.T) {
	// call to an address beyond the section: edge plus a stub vertex.
	text := []byte{
		0xE8, 0xFB, 0x0F, 0x00, 0x00, // call +0xffb -> 0x1000
		0xC3, // ret
	}
	for len(text) < 0x20 {
		text = append(text, 0xCC)
	}

	g := ExtractGraph(text, []uint64{0})
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want root + stub", g.Len())
	}
	stub, ok := g.Vertex(0x1000)
	if !ok {
		t.Fatal("stub vertex missing")
	}
	if len(stub.Opcodes) != 0 {
		t.Errorf("stub has opcodes: %v", stub.Opcodes)
	}
}

func TestExtractGraphRootOutsideText(t *testing.T) {
	g := ExtractGraph(textImage(), []uint64{0xFFFF})
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0 for out-of-range root", g.Len())
	}
}

func TestBodyLenNoTerminator(t *testing.T) {
	// No ret/call + padding anywhere: body runs to end of section.
	text := []byte{0x90, 0x90, 0x90, 0x90}
	if got := bodyLen(text, 0); got != 4 {
		t.Errorf("bodyLen = %d, want 4", got)
	}
}

func TestIsEndp(t *testing.T) {
	win := make([]byte, endpWindow)

	// ret + int3 padding.
	win[0] = 0xC3
	win[1], win[2] = 0xCC, 0xCC
	if !isEndp(win) {
		t.Error("ret + int3 not detected")
	}

	// ret + multi-byte nop.
	copy(win[1:], []byte{0x0F, 0x1F, 0x40, 0x00})
	if !isEndp(win) {
		t.Error("ret + nop not detected")
	}

	// ret followed by ordinary code is not a terminator.
	copy(win[1:], []byte{0x55, 0x48, 0x89, 0xE5})
	if isEndp(win) {
		t.Error("ret inside code detected as terminator")
	}
}

func TestDecodeBodySkipsBadBytes(t *testing.T) {
	// 0x06 is not a valid x86-64 opcode.
	opcodes, _ := decodeBody([]byte{0x06, 0x90, 0xC3}, 0)
	want := []string{"(bad)", "nop", "ret"}
	if !reflect.DeepEqual(opcodes, want) {
		t.Errorf("opcodes = %v, want %v", opcodes, want)
	}
}

func TestDecodeBodyJmpTarget(t *testing.T) {
	// jmp rel8 (-2): infinite loop onto itself, target inside body.
	_, calls := decodeBody([]byte{0xEB, 0xFE}, 0x40)
	if want := []uint64{0x40}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %#v, want %#v", calls, want)
	}
}
