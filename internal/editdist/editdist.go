// Package editdist implements Levenshtein edit distance over token
// sequences. Distance computes only the distance using two rolling rows;
// NewMatrix keeps the full dynamic-programming matrix so an optimal
// alignment can be read back.
package editdist

// Distance returns the Levenshtein distance between s and t.
func Distance[T comparable](s, t []T) int {
	n := len(t)
	v0 := make([]int, n+1)
	v1 := make([]int, n+1)
	for j := 0; j <= n; j++ {
		v0[j] = j
	}

	for i, sc := range s {
		v1[0] = i + 1
		for j := 0; j < n; j++ {
			del := v0[j+1] + 1
			ins := v1[j] + 1
			sub := v0[j]
			if sc != t[j] {
				sub++
			}
			v1[j+1] = min3(del, ins, sub)
		}
		v0, v1 = v1, v0
	}
	return v0[n]
}

// Matrix is a full Levenshtein dynamic-programming matrix for two
// sequences of lengths rows-1 and cols-1.
type Matrix struct {
	rows, cols int
	cells      []int
}

// NewMatrix computes the matrix for s (rows) and t (columns).
func NewMatrix[T comparable](s, t []T) *Matrix {
	m := &Matrix{rows: len(s) + 1, cols: len(t) + 1}
	m.cells = make([]int, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		m.set(i, 0, i)
	}
	for j := 0; j < m.cols; j++ {
		m.set(0, j, j)
	}

	for i, sc := range s {
		for j, tc := range t {
			sub := m.get(i, j)
			if sc != tc {
				sub++
			}
			cost := min3(m.get(i, j+1)+1, m.get(i+1, j)+1, sub)
			m.set(i+1, j+1, cost)
		}
	}
	return m
}

func (m *Matrix) get(i, j int) int { return m.cells[i*m.cols+j] }
func (m *Matrix) set(i, j, v int)  { m.cells[i*m.cols+j] = v }

// Distance returns the edit distance between the two sequences.
func (m *Matrix) Distance() int { return m.get(m.rows-1, m.cols-1) }

// Alignment returns the index pairs (i, j) that an optimal edit script
// aligns, covering both exact matches and substitutions, in ascending
// order. Inserted and deleted positions do not appear. The backtrace
// prefers the diagonal, so the alignment is deterministic.
func (m *Matrix) Alignment() [][2]int {
	var rev [][2]int
	i, j := m.rows-1, m.cols-1
	for i > 0 || j > 0 {
		cur := m.get(i, j)
		diag, up, left := maxInt, maxInt, maxInt
		if i > 0 && j > 0 {
			diag = m.get(i-1, j-1)
		}
		if i > 0 {
			up = m.get(i-1, j)
		}
		if j > 0 {
			left = m.get(i, j-1)
		}

		switch {
		case diag <= up && diag <= left && diag <= cur:
			i--
			j--
			rev = append(rev, [2]int{i, j})
		case up <= left && up <= cur:
			i--
		default:
			j--
		}
	}

	for k, l := 0, len(rev)-1; k < l; k, l = k+1, l-1 {
		rev[k], rev[l] = rev[l], rev[k]
	}
	return rev
}

const maxInt = int(^uint(0) >> 1)

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
