package alignment

import (
	"fmt"
	"strings"

	"github.com/Desperadko/rat-prototype/internal/sequence"
)

// Alignment represents the best local alignment between two sequences.
// Start/End coordinates are 0-based, end-exclusive positions in the inputs.
type Alignment struct {
	AlignedSeq1 string
	AlignedSeq2 string
	Score       int
	Start1      int
	End1        int
	Start2      int
	End2        int
	Identity    float64
}

// Length returns the number of aligned columns.
func (a *Alignment) Length() int {
	return len(a.AlignedSeq1)
}

// MatchCount returns the number of identical columns.
func (a *Alignment) MatchCount() int {
	count := 0
	for i := 0; i < len(a.AlignedSeq1); i++ {
		if a.AlignedSeq1[i] == a.AlignedSeq2[i] && a.AlignedSeq1[i] != '-' {
			count++
		}
	}
	return count
}

// MismatchCount returns the number of substituted columns.
func (a *Alignment) MismatchCount() int {
	count := 0
	for i := 0; i < len(a.AlignedSeq1); i++ {
		if a.AlignedSeq1[i] != a.AlignedSeq2[i] &&
			a.AlignedSeq1[i] != '-' && a.AlignedSeq2[i] != '-' {
			count++
		}
	}
	return count
}

// TotalGaps returns the number of gap columns on either side.
func (a *Alignment) TotalGaps() int {
	return strings.Count(a.AlignedSeq1, "-") + strings.Count(a.AlignedSeq2, "-")
}

// ToCIGAR generates a CIGAR string representation.
func (a *Alignment) ToCIGAR() string {
	if len(a.AlignedSeq1) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	flush := func() {
		if count > 0 {
			fmt.Fprintf(&cigar, "%d%c", count, currentOp)
		}
	}

	for i := 0; i < len(a.AlignedSeq1); i++ {
		var op byte
		switch {
		case a.AlignedSeq1[i] == '-':
			op = 'I'
		case a.AlignedSeq2[i] == '-':
			op = 'D'
		case a.AlignedSeq1[i] == a.AlignedSeq2[i]:
			op = 'M'
		default:
			op = 'X'
		}

		if op == currentOp {
			count++
			continue
		}
		flush()
		currentOp = op
		count = 1
	}
	flush()

	return cigar.String()
}

// Format returns a formatted string representation of the alignment.
func (a *Alignment) Format() string {
	var matchLine strings.Builder
	for i := 0; i < len(a.AlignedSeq1); i++ {
		switch {
		case a.AlignedSeq1[i] == a.AlignedSeq2[i] && a.AlignedSeq1[i] != '-':
			matchLine.WriteByte('|')
		case a.AlignedSeq1[i] == '-' || a.AlignedSeq2[i] == '-':
			matchLine.WriteByte(' ')
		default:
			matchLine.WriteByte('.')
		}
	}

	return fmt.Sprintf("Seq1: %s\n      %s\nSeq2: %s\nScore: %d\nIdentity: %.1f%%\nCIGAR: %s",
		a.AlignedSeq1, matchLine.String(), a.AlignedSeq2,
		a.Score, a.Identity*100, a.ToCIGAR())
}

func (a *Alignment) String() string {
	return fmt.Sprintf("Alignment { score: %d, identity: %.1f%%, length: %d }",
		a.Score, a.Identity*100, a.Length())
}

// Kernel computes Smith-Waterman local alignments for one sequence type.
// A Kernel holds no mutable state and may be shared by any number of
// goroutines.
type Kernel struct {
	Matrix  *SubstitutionMatrix
	Gap     GapPenalty
	SeqType sequence.SequenceType
}

// NewKernel returns a NUC4.4 kernel for seqType with the given gap penalty.
func NewKernel(seqType sequence.SequenceType, gap GapPenalty) *Kernel {
	return &Kernel{Matrix: NUC44(), Gap: gap, SeqType: seqType}
}

// DefaultKernel returns a NUC4.4 kernel with DefaultGapPenalty.
func DefaultKernel(seqType sequence.SequenceType) *Kernel {
	return NewKernel(seqType, DefaultGapPenalty)
}

// Identity returns the percentage of identity, in [0,1], of the best local
// alignment of a against b. Gap columns count towards the alignment length.
// If no cell scores above zero the result is 0.
func (k *Kernel) Identity(a, b string) (float64, error) {
	t, err := k.fill(a, b)
	if err != nil {
		return 0, err
	}
	tb := t.traceback(a, b, false)
	return tb.identity(), nil
}

// Align returns the full best local alignment of a against b.
func (k *Kernel) Align(a, b string) (*Alignment, error) {
	t, err := k.fill(a, b)
	if err != nil {
		return nil, err
	}
	tb := t.traceback(a, b, true)
	return &Alignment{
		AlignedSeq1: tb.aligned1,
		AlignedSeq2: tb.aligned2,
		Score:       t.maxScore,
		Start1:      tb.startI,
		End1:        t.maxI,
		Start2:      tb.startJ,
		End2:        t.maxJ,
		Identity:    tb.identity(),
	}, nil
}

func (k *Kernel) check(s string) error {
	if len(s) == 0 {
		return &sequence.EmptySequenceError{}
	}
	if err := sequence.Validate(s, k.SeqType); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		if !k.Matrix.Has(s[i]) {
			return &sequence.InvalidBaseError{Position: i, Found: rune(s[i]), SeqType: k.SeqType}
		}
	}
	return nil
}

// table is a filled alignment matrix. Only the traceback directions are
// kept for every cell; scores are computed two rows at a time.
type table struct {
	trace    []AlignDirection
	cols     int
	maxScore int
	maxI     int
	maxJ     int
}

func (k *Kernel) fill(a, b string) (*table, error) {
	if err := k.check(a); err != nil {
		return nil, fmt.Errorf("sequence 1: %w", err)
	}
	if err := k.check(b); err != nil {
		return nil, fmt.Errorf("sequence 2: %w", err)
	}

	m, n := len(a), len(b)
	cols := n + 1
	t := &table{
		trace: make([]AlignDirection, (m+1)*cols),
		cols:  cols,
	}
	gap := int(k.Gap)

	prevRow := make([]int, cols)
	currRow := make([]int, cols)

	for i := 1; i <= m; i++ {
		currRow[0] = 0
		ai := a[i-1]
		trace := t.trace[i*cols : (i+1)*cols]

		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + k.Matrix.Score(ai, b[j-1])
			up := prevRow[j] - gap
			left := currRow[j-1] - gap

			// Strict comparisons: a tie keeps the earlier candidate, so the
			// diagonal wins over up and up wins over left. A best of zero
			// stays a Stop cell.
			best := 0
			direction := Stop
			if diag > best {
				best = diag
				direction = Diagonal
			}
			if up > best {
				best = up
				direction = Up
			}
			if left > best {
				best = left
				direction = Left
			}

			currRow[j] = best
			trace[j] = direction

			// Row-major scan with a strict comparison keeps the earliest
			// (smallest i, then smallest j) maximum.
			if best > t.maxScore {
				t.maxScore = best
				t.maxI, t.maxJ = i, j
			}
		}

		prevRow, currRow = currRow, prevRow
	}

	return t, nil
}

type tracebackResult struct {
	matches  int
	columns  int
	startI   int
	startJ   int
	aligned1 string
	aligned2 string
}

func (r tracebackResult) identity() float64 {
	if r.columns == 0 {
		return 0.0
	}
	return float64(r.matches) / float64(r.columns)
}

// traceback walks from the maximum cell back to the first Stop cell.
func (t *table) traceback(a, b string, build bool) tracebackResult {
	var buf1, buf2 []byte
	if build {
		buf1 = make([]byte, 0, t.maxI+t.maxJ)
		buf2 = make([]byte, 0, t.maxI+t.maxJ)
	}

	var r tracebackResult
	i, j := t.maxI, t.maxJ

walk:
	for i > 0 && j > 0 {
		switch t.trace[i*t.cols+j] {
		case Stop:
			break walk
		case Diagonal:
			if a[i-1] == b[j-1] {
				r.matches++
			}
			if build {
				buf1 = append(buf1, a[i-1])
				buf2 = append(buf2, b[j-1])
			}
			i--
			j--
		case Up:
			if build {
				buf1 = append(buf1, a[i-1])
				buf2 = append(buf2, '-')
			}
			i--
		case Left:
			if build {
				buf1 = append(buf1, '-')
				buf2 = append(buf2, b[j-1])
			}
			j--
		}
		r.columns++
	}

	r.startI, r.startJ = i, j
	if build {
		reverse(buf1)
		reverse(buf2)
		r.aligned1 = string(buf1)
		r.aligned2 = string(buf2)
	}
	return r
}

func reverse(s []byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
