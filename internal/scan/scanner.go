// Package scan runs the sliding-window comparison of a recombinant sequence
// against two parents and coordinates it across worker goroutines.
package scan

import (
	"context"
	"fmt"

	"github.com/Desperadko/rat-prototype/internal/recomb"
)

// Aligner is the minimal capability the scanner needs from the alignment
// kernel. It must be safe for concurrent use.
type Aligner interface {
	Identity(a, b string) (float64, error)
}

// Scanner slides a window over one chunk of the recombinant sequence and
// aligns every window against both parents.
type Scanner struct {
	Aligner Aligner
	Parent1 string
	Parent2 string
	Window  int
	Step    int

	// Progress, if set, is called once per measured window. It may be called
	// from several scanners at once.
	Progress func(windows int)
}

// NewScanner validates the window geometry and returns a Scanner.
func NewScanner(a Aligner, parent1, parent2 string, window, step int) (*Scanner, error) {
	if err := validateGeometry(window, step); err != nil {
		return nil, err
	}
	return &Scanner{Aligner: a, Parent1: parent1, Parent2: parent2, Window: window, Step: step}, nil
}

func validateGeometry(window, step int) error {
	if window <= 0 {
		return &InvalidParameterError{Name: "window size", Value: window}
	}
	if step <= 0 {
		return &InvalidParameterError{Name: "step size", Value: step}
	}
	return nil
}

// Measure aligns every window of chunk against both parents. chunkStart is
// the absolute position of chunk[0] in the recombinant and fullLen the
// recombinant length; reported positions are absolute. A chunk shorter than
// the window yields no measurements.
func (s *Scanner) Measure(ctx context.Context, chunk string, chunkStart, fullLen int) ([]recomb.Measurement, error) {
	if err := validateGeometry(s.Window, s.Step); err != nil {
		return nil, err
	}

	length := len(chunk)
	if length < s.Window {
		return nil, nil
	}

	out := make([]recomb.Measurement, 0, (length-s.Window)/s.Step+1)
	for start := 0; start <= length-s.Window; start += s.Step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+s.Window, length)
		absStart := chunkStart + start
		absEnd := min(chunkStart+end, fullLen)
		window := chunk[start:end]

		sim1, err := s.Aligner.Identity(window, s.Parent1)
		if err != nil {
			return nil, fmt.Errorf("window [%d, %d) against parent 1: %w", absStart, absEnd, err)
		}
		sim2, err := s.Aligner.Identity(window, s.Parent2)
		if err != nil {
			return nil, fmt.Errorf("window [%d, %d) against parent 2: %w", absStart, absEnd, err)
		}

		out = append(out, recomb.NewMeasurement(absStart, absEnd, sim1, sim2))
		if s.Progress != nil {
			s.Progress(1)
		}
	}
	return out, nil
}

// Scan measures chunk and classifies the windows in order with a history
// private to this call, so patterns never span two chunks.
func (s *Scanner) Scan(ctx context.Context, chunk string, chunkStart, fullLen int) ([]recomb.Result, error) {
	ms, err := s.Measure(ctx, chunk, chunkStart, fullLen)
	if err != nil {
		return nil, err
	}
	return Classify(ms), nil
}

// Classify runs one classifier over measurements in the given order.
func Classify(ms []recomb.Measurement) []recomb.Result {
	var c recomb.Classifier
	results := make([]recomb.Result, len(ms))
	for i, m := range ms {
		results[i] = c.Next(m)
	}
	return results
}
