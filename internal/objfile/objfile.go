// Package objfile loads x86-64 ELF executables and extracts the inputs
// of the matcher from their .text section: per-function opcode
// sequences and the call graph.
package objfile

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	ErrNotELF   = errors.New("objfile: not an ELF file")
	ErrNot64Bit = errors.New("objfile: not 64-bit ELF")
	ErrNotX86   = errors.New("objfile: not x86-64 (EM_X86_64)")
	ErrNoText   = errors.New("objfile: missing .text section")
)

// File is an opened x86-64 ELF file with its .text section loaded.
type File struct {
	elf      *elf.File
	raw      *os.File
	text     []byte
	textBase uint64
	entry    uint64
}

// Open opens an ELF file and validates it is a 64-bit x86-64 binary with
// a .text section.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: open: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}
	if ef.Class != elf.ELFCLASS64 {
		f.Close()
		return nil, ErrNot64Bit
	}
	if ef.Machine != elf.EM_X86_64 {
		f.Close()
		return nil, ErrNotX86
	}

	sec := ef.Section(".text")
	if sec == nil {
		f.Close()
		return nil, ErrNoText
	}
	text, err := sec.Data()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("objfile: read .text: %w", err)
	}

	return &File{
		elf:      ef,
		raw:      f,
		text:     text,
		textBase: sec.Addr,
		entry:    ef.Entry,
	}, nil
}

// Close releases the underlying file.
func (f *File) Close() error { return f.raw.Close() }

// TextBase returns the virtual address of the .text section. All
// addresses produced by this package are relative to it.
func (f *File) TextBase() uint64 { return f.textBase }

// Entry returns the program entrypoint relative to the text base.
func (f *File) Entry() uint64 { return f.entry - f.textBase }

// Symbol is a named function address relative to the text base.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Symbols returns the function symbols located inside .text, relative to
// the text base and ordered by address. Both the static and the dynamic
// symbol table are consulted; binaries stripped of both yield an empty
// slice, not an error.
func (f *File) Symbols() []Symbol {
	var out []Symbol
	seen := make(map[uint64]bool)

	collect := func(syms []elf.Symbol) {
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) != elf.STT_FUNC {
				continue
			}
			if s.Value < f.textBase || s.Value >= f.textBase+uint64(len(f.text)) {
				continue
			}
			addr := s.Value - f.textBase
			if s.Name == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, Symbol{Name: s.Name, Addr: addr, Size: s.Size})
		}
	}

	if syms, err := f.elf.Symbols(); err == nil {
		collect(syms)
	}
	if syms, err := f.elf.DynamicSymbols(); err == nil {
		collect(syms)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
