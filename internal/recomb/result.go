// Package recomb holds the per-window analysis result and the recombination
// classifier that labels each window from a short history of its
// predecessors.
package recomb

import (
	"fmt"
	"math"
)

// MajorChangeThreshold is the minimum difference between the two parent
// similarities of one window that counts as a major change.
const MajorChangeThreshold = 0.1

// SimilarTo names the parent a window is more similar to.
type SimilarTo int

const (
	// Equal means both parents scored the same similarity
	Equal SimilarTo = iota
	// FirstParent means parent 1 scored higher
	FirstParent
	// SecondParent means parent 2 scored higher
	SecondParent
)

func (s SimilarTo) String() string {
	switch s {
	case FirstParent:
		return "FirstParent"
	case SecondParent:
		return "SecondParent"
	default:
		return "Equal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SimilarTo) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SimilarTo) UnmarshalText(b []byte) error {
	switch string(b) {
	case "FirstParent":
		*s = FirstParent
	case "SecondParent":
		*s = SecondParent
	case "Equal":
		*s = Equal
	default:
		return fmt.Errorf("unknown parent %q", b)
	}
	return nil
}

// Category is the recombination-event verdict for a window.
type Category int

const (
	// None means no recombination event
	None Category = iota
	// Ambiguous means a possible event with weak evidence
	Ambiguous
	// Hard means strong evidence of a breakpoint
	Hard
)

func (c Category) String() string {
	switch c {
	case Ambiguous:
		return "Ambiguous"
	case Hard:
		return "Hard"
	default:
		return "None"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "None":
		*c = None
	case "Ambiguous":
		*c = Ambiguous
	case "Hard":
		*c = Hard
	default:
		return fmt.Errorf("unknown recombination category %q", b)
	}
	return nil
}

// Measurement is the raw outcome of aligning one window against both
// parents, before classification.
type Measurement struct {
	Start        int
	End          int
	SimilarityP1 float64
	SimilarityP2 float64
}

// NewMeasurement builds the measurement of window [start, end).
func NewMeasurement(start, end int, sim1, sim2 float64) Measurement {
	return Measurement{Start: start, End: end, SimilarityP1: sim1, SimilarityP2: sim2}
}

// MoreSimilarTo compares the two similarities exactly.
func (m Measurement) MoreSimilarTo() SimilarTo {
	switch {
	case m.SimilarityP1 > m.SimilarityP2:
		return FirstParent
	case m.SimilarityP1 < m.SimilarityP2:
		return SecondParent
	default:
		return Equal
	}
}

// MajorChange reports whether the similarities differ by at least
// MajorChangeThreshold.
func (m Measurement) MajorChange() bool {
	return math.Abs(m.SimilarityP1-m.SimilarityP2) >= MajorChangeThreshold
}

// Result is the classified analysis of one window. Positions are absolute,
// 0-based and end-exclusive. A Result is never modified once created.
type Result struct {
	Start         int       `json:"segment_start"`
	End           int       `json:"segment_end"`
	MoreSimilarTo SimilarTo `json:"more_similar_to"`
	SimilarityP1  float64   `json:"similarity_parent1"`
	SimilarityP2  float64   `json:"similarity_parent2"`
	MajorChange   bool      `json:"major_change"`
	Recombination Category  `json:"recombination"`
}

func (r Result) String() string {
	var similarTo string
	switch r.MoreSimilarTo {
	case FirstParent:
		similarTo = "more similar to the First parent"
	case SecondParent:
		similarTo = "more similar to the Second parent"
	default:
		similarTo = "Equal to both"
	}

	var happened string
	switch r.Recombination {
	case Hard:
		happened = "Yes"
	case Ambiguous:
		happened = "Possibly"
	default:
		happened = "No"
	}

	return fmt.Sprintf("Analysis result for [%d - %d]: Segment is - %s, with similarities -> "+
		"First parent: %.2f%% | Second parent: %.2f%%. Has a recombination happened: %s.",
		r.Start, r.End, similarTo, r.SimilarityP1*100, r.SimilarityP2*100, happened)
}
