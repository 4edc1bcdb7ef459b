// Package stats provides summaries of scan inputs and scan results.
package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Desperadko/rat-prototype/internal/recomb"
	"github.com/Desperadko/rat-prototype/internal/sequence"
)

// SequenceStats represents composition statistics for a single sequence.
// For RNA the TCount field counts U.
type SequenceStats struct {
	ID             string  `json:"id,omitempty"`
	Length         int     `json:"length"`
	GCContent      float64 `json:"gc_content"`
	ACount         int     `json:"a"`
	CCount         int     `json:"c"`
	GCount         int     `json:"g"`
	TCount         int     `json:"t"`
	NCount         int     `json:"n"`
	AmbiguousCount int     `json:"ambiguous"`
}

// FromSequence calculates statistics for a sequence.
func FromSequence(seq *sequence.Sequence) *SequenceStats {
	s := &SequenceStats{ID: seq.ID, Length: seq.Len(), AmbiguousCount: seq.CountAmbiguous()}
	for i := 0; i < len(seq.Bases); i++ {
		switch seq.Bases[i] {
		case 'A':
			s.ACount++
		case 'C':
			s.CCount++
		case 'G':
			s.GCount++
		case 'T', 'U':
			s.TCount++
		case 'N':
			s.NCount++
		}
	}
	if s.Length > 0 {
		s.GCContent = float64(s.GCount+s.CCount) / float64(s.Length)
	}
	return s
}

func (s *SequenceStats) String() string {
	return fmt.Sprintf(`SequenceStats {
  length: %s
  GC content: %.1f%%
  A: %d, C: %d, G: %d, T/U: %d, N: %d
  ambiguous: %d
}`, humanize.Comma(int64(s.Length)), s.GCContent*100,
		s.ACount, s.CCount, s.GCount, s.TCount, s.NCount, s.AmbiguousCount)
}

// VerdictDistribution counts windows per recombination category and per
// closer parent.
type VerdictDistribution struct {
	None         int `json:"none"`
	Ambiguous    int `json:"ambiguous"`
	Hard         int `json:"hard"`
	FirstParent  int `json:"first_parent"`
	SecondParent int `json:"second_parent"`
	Equal        int `json:"equal"`
	Total        int `json:"total"`
}

// FromResults builds the distribution of results.
func FromResults(results []recomb.Result) *VerdictDistribution {
	d := &VerdictDistribution{Total: len(results)}
	for _, r := range results {
		switch r.Recombination {
		case recomb.Hard:
			d.Hard++
		case recomb.Ambiguous:
			d.Ambiguous++
		default:
			d.None++
		}
		switch r.MoreSimilarTo {
		case recomb.FirstParent:
			d.FirstParent++
		case recomb.SecondParent:
			d.SecondParent++
		default:
			d.Equal++
		}
	}
	return d
}

// EventRatio returns the proportion of windows flagged Ambiguous or Hard.
func (d *VerdictDistribution) EventRatio() float64 {
	if d.Total == 0 {
		return 0.0
	}
	return float64(d.Ambiguous+d.Hard) / float64(d.Total)
}

// Breakpoint is a window flagged as a recombination event.
type Breakpoint struct {
	Start    int              `json:"segment_start"`
	End      int              `json:"segment_end"`
	Category recomb.Category  `json:"recombination"`
	From     recomb.SimilarTo `json:"from"`
	To       recomb.SimilarTo `json:"to"`
}

// RunSummary aggregates one scan.
type RunSummary struct {
	Windows          int                  `json:"windows"`
	Distribution     *VerdictDistribution `json:"distribution"`
	Breakpoints      []Breakpoint         `json:"breakpoints"`
	MeanSimilarityP1 float64              `json:"mean_similarity_parent1"`
	MeanSimilarityP2 float64              `json:"mean_similarity_parent2"`
	MajorChanges     int                  `json:"major_changes"`
}

// Summarize aggregates results, which must be ordered by segment start.
// From of a breakpoint is the parent of the preceding window, Equal for the
// first window.
func Summarize(results []recomb.Result) *RunSummary {
	s := &RunSummary{
		Windows:      len(results),
		Distribution: FromResults(results),
		Breakpoints:  []Breakpoint{},
	}
	if len(results) == 0 {
		return s
	}

	var sum1, sum2 float64
	prev := recomb.Equal
	for _, r := range results {
		sum1 += r.SimilarityP1
		sum2 += r.SimilarityP2
		if r.MajorChange {
			s.MajorChanges++
		}
		if r.Recombination != recomb.None {
			s.Breakpoints = append(s.Breakpoints, Breakpoint{
				Start:    r.Start,
				End:      r.End,
				Category: r.Recombination,
				From:     prev,
				To:       r.MoreSimilarTo,
			})
		}
		prev = r.MoreSimilarTo
	}
	s.MeanSimilarityP1 = sum1 / float64(len(results))
	s.MeanSimilarityP2 = sum2 / float64(len(results))
	return s
}

// HardBreakpoints returns only the breakpoints with strong evidence.
func (s *RunSummary) HardBreakpoints() []Breakpoint {
	var out []Breakpoint
	for _, b := range s.Breakpoints {
		if b.Category == recomb.Hard {
			out = append(out, b)
		}
	}
	return out
}

func (s *RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `RunSummary {
  windows: %s
  first parent: %d, second parent: %d, equal: %d
  recombination: none %d, possibly %d, yes %d (%.1f%%)
  mean similarity: first parent %.2f%%, second parent %.2f%%
  major changes: %d
`, humanize.Comma(int64(s.Windows)),
		s.Distribution.FirstParent, s.Distribution.SecondParent, s.Distribution.Equal,
		s.Distribution.None, s.Distribution.Ambiguous, s.Distribution.Hard,
		s.Distribution.EventRatio()*100,
		s.MeanSimilarityP1*100, s.MeanSimilarityP2*100,
		s.MajorChanges)
	for _, bp := range s.HardBreakpoints() {
		fmt.Fprintf(&b, "  breakpoint: [%d - %d] %s -> %s\n", bp.Start, bp.End, bp.From, bp.To)
	}
	b.WriteString("}")
	return b.String()
}
