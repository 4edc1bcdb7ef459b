// Package alignment provides the local sequence-alignment kernel.
//
// The kernel is a Smith-Waterman local alignment scored with the NUC4.4
// nucleotide substitution matrix and a linear gap penalty. It reports the
// percentage of identity of the best local alignment, which is the similarity
// measure the sliding-window scan compares between parents.
package alignment

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// AlignDirection represents the traceback direction in the alignment matrix.
type AlignDirection uint8

const (
	// Stop represents the end of alignment (a zero-valued cell)
	Stop AlignDirection = iota
	// Diagonal represents a match or mismatch
	Diagonal
	// Up represents a gap in sequence 2
	Up
	// Left represents a gap in sequence 1
	Left
)

// nuc44 is the NUC4.4 (EDNAFULL) matrix as distributed with EMBOSS/NCBI.
const nuc44 = `
   A  T  G  C  S  W  R  Y  K  M  B  V  H  D  N
A  5 -4 -4 -4 -4  1  1 -4 -4  1 -4 -1 -1 -1 -2
T -4  5 -4 -4 -4  1 -4  1  1 -4 -1 -4 -1 -1 -2
G -4 -4  5 -4  1 -4  1 -4  1 -4 -1 -1 -4 -1 -2
C -4 -4 -4  5  1 -4 -4  1 -4  1 -1 -1 -1 -4 -2
S -4 -4  1  1 -1 -4 -2 -2 -2 -2 -1 -1 -3 -3 -1
W  1  1 -4 -4 -4 -1 -2 -2 -2 -2 -3 -3 -1 -1 -1
R  1 -4  1 -4 -2 -2 -1 -4 -2 -2 -3 -1 -3 -1 -1
Y -4  1 -4  1 -2 -2 -4 -1 -2 -2 -1 -3 -1 -3 -1
K -4  1  1 -4 -2 -2 -2 -2 -1 -4 -1 -3 -3 -1 -1
M  1 -4 -4  1 -2 -2 -2 -2 -4 -1 -3 -1 -1 -3 -1
B -4 -1 -1 -1 -1 -3 -3 -1 -1 -3 -1 -2 -2 -2 -1
V -1 -4 -1 -1 -1 -3 -1 -3 -3 -1 -2 -1 -2 -2 -1
H -1 -1 -4 -1 -3 -1 -3 -1 -3 -1 -2 -2 -1 -2 -1
D -1 -1 -1 -4 -3 -1 -1 -3 -1 -3 -2 -2 -2 -1 -1
N -2 -2 -2 -2 -1 -1 -1 -1 -1 -1 -1 -1 -1 -1 -1
`

// SubstitutionMatrix maps pairs of nucleotide symbols to integer scores.
// It is read-only after construction and safe for concurrent use.
type SubstitutionMatrix struct {
	Name    string
	symbols string
	index   [256]int8
	scores  [][]int
}

// ParseMatrix reads a whitespace separated substitution matrix: a header
// line of column symbols followed by one row per symbol, row symbol first.
// Aliases map extra symbols onto existing ones (for example U onto T).
func ParseMatrix(name, text string, aliases map[byte]byte) (*SubstitutionMatrix, error) {
	m := &SubstitutionMatrix{Name: name}
	for i := range m.index {
		m.index[i] = -1
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	var header []string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if header == nil {
			header = fields
			for i, sym := range header {
				if len(sym) != 1 {
					return nil, fmt.Errorf("matrix %s: bad column symbol %q", name, sym)
				}
				m.index[sym[0]] = int8(i)
			}
			m.symbols = strings.Join(header, "")
			continue
		}
		if len(fields) != len(header)+1 {
			return nil, fmt.Errorf("matrix %s: row %q has %d scores, want %d",
				name, fields[0], len(fields)-1, len(header))
		}
		if fields[0] != header[len(m.scores)] {
			return nil, fmt.Errorf("matrix %s: row %q out of order", name, fields[0])
		}
		row := make([]int, len(header))
		for j, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("matrix %s: row %q: %w", name, fields[0], err)
			}
			row[j] = v
		}
		m.scores = append(m.scores, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(m.scores) != len(header) {
		return nil, fmt.Errorf("matrix %s: %d rows for %d columns", name, len(m.scores), len(header))
	}

	for from, to := range aliases {
		if m.index[to] < 0 {
			return nil, fmt.Errorf("matrix %s: alias target %q not in matrix", name, to)
		}
		m.index[from] = m.index[to]
	}
	return m, nil
}

var nuc44Matrix = mustParse("NUC.4.4", nuc44, map[byte]byte{'U': 'T'})

func mustParse(name, text string, aliases map[byte]byte) *SubstitutionMatrix {
	m, err := ParseMatrix(name, text, aliases)
	if err != nil {
		panic(err)
	}
	return m
}

// NUC44 returns the shared NUC4.4 matrix. U scores as T so the same matrix
// serves RNA.
func NUC44() *SubstitutionMatrix {
	return nuc44Matrix
}

// Has reports whether the matrix defines scores for symbol c.
func (m *SubstitutionMatrix) Has(c byte) bool {
	return m.index[c] >= 0
}

// Score returns the score for aligning a against b. Both symbols must be in
// the matrix (see Has); the kernel checks this before filling the table.
func (m *SubstitutionMatrix) Score(a, b byte) int {
	return m.scores[m.index[a]][m.index[b]]
}

// Symbols returns the column symbols of the matrix in header order.
func (m *SubstitutionMatrix) Symbols() string {
	return m.symbols
}

func (m *SubstitutionMatrix) String() string {
	return fmt.Sprintf("SubstitutionMatrix { name: %s, symbols: %s }", m.Name, m.symbols)
}

// DefaultGapPenalty is the cost of every gap column.
const DefaultGapPenalty = 10

// GapPenalty is a linear (non-affine) gap cost: every inserted or deleted
// position costs the same amount, subtracted from the running score.
type GapPenalty int

// NewGapPenalty validates a gap penalty.
func NewGapPenalty(p int) (GapPenalty, error) {
	if p < 0 {
		return 0, fmt.Errorf("gap penalty must be non-negative, got %d", p)
	}
	return GapPenalty(p), nil
}
