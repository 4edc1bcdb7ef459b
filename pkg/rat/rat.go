// Package rat provides a high-level API for recombination analysis.
//
// A recombinant sequence is compared window by window against two parent
// sequences; every window is labelled with the parent it resembles more and
// with a recombination verdict.
//
// Example usage:
//
//	rec, err := rat.LoadFASTA("recombinant.fasta", rat.DNA)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... load parent1 and parent2 the same way
//
//	analysis, err := rat.Analyze(ctx, rec, parent1, parent2, rat.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range analysis.Results {
//	    fmt.Println(r)
//	}
package rat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Desperadko/rat-prototype/internal/alignment"
	"github.com/Desperadko/rat-prototype/internal/config"
	"github.com/Desperadko/rat-prototype/internal/loader"
	"github.com/Desperadko/rat-prototype/internal/recomb"
	"github.com/Desperadko/rat-prototype/internal/scan"
	"github.com/Desperadko/rat-prototype/internal/sequence"
	"github.com/Desperadko/rat-prototype/internal/stats"
)

// Re-export types for convenience
type (
	Sequence     = sequence.Sequence
	SequenceType = sequence.SequenceType
	Alignment    = alignment.Alignment
	Result       = recomb.Result
	Category     = recomb.Category
	SimilarTo    = recomb.SimilarTo
	RunSummary   = stats.RunSummary
)

// Constants
const (
	DNA     = sequence.DNA
	RNA     = sequence.RNA
	Unknown = sequence.Unknown

	None      = recomb.None
	Ambiguous = recomb.Ambiguous
	Hard      = recomb.Hard

	FirstParent  = recomb.FirstParent
	SecondParent = recomb.SecondParent
	Equal        = recomb.Equal
)

// NewSequence creates a validated sequence of the given type.
func NewSequence(bases string, t SequenceType) (*Sequence, error) {
	return sequence.New(bases, t)
}

// ParseType maps "d"/"r" (or "dna"/"rna") to a sequence type.
func ParseType(code string) (SequenceType, error) {
	return sequence.ParseType(code)
}

// LoadFASTA reads the first record of a FASTA file.
func LoadFASTA(path string, t SequenceType) (*Sequence, error) {
	return loader.Load(path, t)
}

// DefaultGapPenalty is the linear gap cost used by DefaultOptions.
const DefaultGapPenalty = alignment.DefaultGapPenalty

// Align performs a Smith-Waterman local alignment with NUC4.4 scores and a
// linear gap penalty, which must not be negative.
func Align(seq1, seq2 *Sequence, gapPenalty int) (*Alignment, error) {
	k, err := kernelFor(seq1.SeqType, gapPenalty)
	if err != nil {
		return nil, err
	}
	return k.Align(seq1.Bases, seq2.Bases)
}

func kernelFor(t SequenceType, gapPenalty int) (*alignment.Kernel, error) {
	gap, err := alignment.NewGapPenalty(gapPenalty)
	if err != nil {
		return nil, err
	}
	return alignment.NewKernel(t, gap), nil
}

// Options tunes Analyze.
type Options struct {
	Threads    int
	Window     int
	Step       int
	GapPenalty int
	Timeout    time.Duration
	// Stream carries classifier history across chunk boundaries.
	Stream bool
	// Progress is called once per measured window, possibly concurrently.
	Progress func(windows int)
	Logger   *slog.Logger
}

// DefaultOptions returns two threads, window 20, step 5, gap penalty 10 and
// a 60 second timeout.
func DefaultOptions() Options {
	return Options{
		Threads:    config.DefaultThreads,
		Window:     config.DefaultWindow,
		Step:       config.DefaultStep,
		GapPenalty: config.DefaultGapPenalty,
		Timeout:    config.DefaultTimeout,
	}
}

// Analysis is the outcome of one run.
type Analysis struct {
	RunID   uuid.UUID     `json:"run_id"`
	Results []Result      `json:"results"`
	Elapsed time.Duration `json:"-"`
	Windows int           `json:"windows"`
	Mode    string        `json:"mode"`
}

// ElapsedMS is the run time in whole milliseconds.
func (a *Analysis) ElapsedMS() int64 {
	return a.Elapsed.Milliseconds()
}

// Summary aggregates the results.
func (a *Analysis) Summary() *RunSummary {
	return stats.Summarize(a.Results)
}

// WindowCount returns how many windows a scan of a sequence of the given
// length produces.
func WindowCount(length, window, step int) int {
	return scan.WindowCount(length, window, step)
}

// Analyze scans recombinant against parent1 and parent2. All three must be
// of the recombinant's sequence type.
func Analyze(ctx context.Context, recombinant, parent1, parent2 *Sequence, opts Options) (*Analysis, error) {
	for i, p := range []*Sequence{parent1, parent2} {
		if p.SeqType != recombinant.SeqType {
			return nil, fmt.Errorf("parent %d is %s but the recombinant is %s", i+1, p.SeqType, recombinant.SeqType)
		}
	}

	mode := scan.ModeChunked
	if opts.Stream {
		mode = scan.ModeStream
	}

	kernel, err := kernelFor(recombinant.SeqType, opts.GapPenalty)
	if err != nil {
		return nil, err
	}

	coord, err := scan.NewCoordinator(kernel, scan.Config{
		Threads:  opts.Threads,
		Window:   opts.Window,
		Step:     opts.Step,
		Mode:     mode,
		Timeout:  opts.Timeout,
		Progress: opts.Progress,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	results, err := coord.Run(ctx, recombinant.Bases, parent1.Bases, parent2.Bases)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		RunID:   uuid.New(),
		Results: results,
		Elapsed: time.Since(started),
		Windows: len(results),
		Mode:    mode.String(),
	}, nil
}
