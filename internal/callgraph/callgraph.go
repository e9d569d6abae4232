// Package callgraph holds the call graph model shared by the matcher:
// functions indexed by entry address, opcode token sequences, and call
// edges in call-site order.
package callgraph

import "sort"

// Vertex is one function: its entry address, the ordered opcode tokens of
// its body, and its call edges. A vertex is immutable once its graph is
// built.
type Vertex struct {
	Addr    uint64
	Opcodes []string
	Callees []uint64 // call-site order, parallel edges preserved
	Callers []uint64 // ascending, deduplicated
}

// OutDegree returns the number of call sites in the function.
func (v *Vertex) OutDegree() int { return len(v.Callees) }

// InDegree returns the number of distinct callers.
func (v *Vertex) InDegree() int { return len(v.Callers) }

// CallsSelf reports whether the function calls itself (direct recursion).
func (v *Vertex) CallsSelf() bool {
	for _, c := range v.Callees {
		if c == v.Addr {
			return true
		}
	}
	return false
}

// Graph is an immutable call graph indexed by function entry address.
type Graph struct {
	vertices map[uint64]*Vertex
	addrs    []uint64
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// Vertex returns the vertex at addr.
func (g *Graph) Vertex(addr uint64) (*Vertex, bool) {
	v, ok := g.vertices[addr]
	return v, ok
}

// Has reports whether addr is a vertex of the graph.
func (g *Graph) Has(addr uint64) bool {
	_, ok := g.vertices[addr]
	return ok
}

// Addrs returns all vertex addresses in ascending order.
// Callers must not modify the returned slice.
func (g *Graph) Addrs() []uint64 { return g.addrs }

// Callees returns the call targets of addr in call-site order, or nil if
// addr is not a vertex. Callers must not modify the returned slice.
func (g *Graph) Callees(addr uint64) []uint64 {
	if v, ok := g.vertices[addr]; ok {
		return v.Callees
	}
	return nil
}

// Callers returns the distinct callers of addr in ascending order, or nil
// if addr is not a vertex. Callers must not modify the returned slice.
func (g *Graph) Callers(addr uint64) []uint64 {
	if v, ok := g.vertices[addr]; ok {
		return v.Callers
	}
	return nil
}

// Builder accumulates functions and call edges, then freezes them into a
// Graph. Edge endpoints that were never added as functions are
// materialized as empty stub vertices so that every edge endpoint exists
// in the finished graph.
type Builder struct {
	opcodes map[uint64][]string
	callees map[uint64][]uint64
	order   []uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		opcodes: make(map[uint64][]string),
		callees: make(map[uint64][]uint64),
	}
}

// AddFunc records a function body. Re-adding an address replaces its
// opcode sequence but keeps previously recorded edges.
func (b *Builder) AddFunc(addr uint64, opcodes []string) {
	if _, seen := b.opcodes[addr]; !seen {
		b.order = append(b.order, addr)
	}
	b.opcodes[addr] = opcodes
}

// AddEdge records a call from one function to another. Call-site order per
// caller is preserved; parallel edges are kept. Self edges (recursion) are
// permitted.
func (b *Builder) AddEdge(from, to uint64) {
	b.callees[from] = append(b.callees[from], to)
}

// Build freezes the accumulated functions and edges into an immutable
// Graph. The builder may be reused afterwards, but vertices are shared
// with the returned graph and must not be mutated.
func (b *Builder) Build() *Graph {
	g := &Graph{vertices: make(map[uint64]*Vertex, len(b.opcodes))}

	add := func(addr uint64) *Vertex {
		if v, ok := g.vertices[addr]; ok {
			return v
		}
		v := &Vertex{Addr: addr}
		g.vertices[addr] = v
		return v
	}

	for _, addr := range b.order {
		v := add(addr)
		v.Opcodes = b.opcodes[addr]
	}
	for from, targets := range b.callees {
		v := add(from)
		v.Callees = append(v.Callees, targets...)
		for _, to := range targets {
			add(to)
		}
	}

	// Derive callers: distinct, ascending.
	callers := make(map[uint64]map[uint64]bool)
	for from, targets := range b.callees {
		for _, to := range targets {
			set, ok := callers[to]
			if !ok {
				set = make(map[uint64]bool)
				callers[to] = set
			}
			set[from] = true
		}
	}
	for to, set := range callers {
		v := g.vertices[to]
		v.Callers = make([]uint64, 0, len(set))
		for from := range set {
			v.Callers = append(v.Callers, from)
		}
		sort.Slice(v.Callers, func(i, j int) bool { return v.Callers[i] < v.Callers[j] })
	}

	g.addrs = make([]uint64, 0, len(g.vertices))
	for addr := range g.vertices {
		g.addrs = append(g.addrs, addr)
	}
	sort.Slice(g.addrs, func(i, j int) bool { return g.addrs[i] < g.addrs[j] })

	return g
}
