package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Desperadko/rat-prototype/internal/recomb"
)

// Mode selects how classifier history relates to chunks.
type Mode int

const (
	// ModeChunked gives every chunk its own classifier history. Patterns
	// that straddle a chunk boundary are not seen.
	ModeChunked Mode = iota
	// ModeStream parallelises only the alignments and classifies all
	// windows in one sequential pass, so history crosses chunk boundaries.
	ModeStream
)

func (m Mode) String() string {
	if m == ModeStream {
		return "stream"
	}
	return "chunked"
}

// Defaults.
const (
	DefaultThreads = 2
	DefaultTimeout = 60 * time.Second
)

// Config controls the parallel scan.
type Config struct {
	Threads int           // number of worker goroutines (>=1)
	Window  int           // window size (>=1)
	Step    int           // step between window starts (>=1)
	Mode    Mode          // classifier history scope
	Timeout time.Duration // bound on the whole run; 0 means DefaultTimeout

	// Progress, if set, is called once per measured window from the
	// worker goroutines. It must be safe for concurrent use.
	Progress func(windows int)

	Logger *slog.Logger
}

// Coordinator splits the recombinant into chunks, scans them on a bounded
// pool of goroutines and merges the results into one ordered slice.
type Coordinator struct {
	aligner Aligner
	cfg     Config
	log     *slog.Logger
}

// NewCoordinator validates cfg and returns a Coordinator.
func NewCoordinator(a Aligner, cfg Config) (*Coordinator, error) {
	if cfg.Threads <= 0 {
		return nil, &InvalidParameterError{Name: "thread count", Value: cfg.Threads}
	}
	if err := validateGeometry(cfg.Window, cfg.Step); err != nil {
		return nil, err
	}
	if cfg.Timeout < 0 {
		return nil, &InvalidParameterError{Name: "timeout", Value: cfg.Timeout}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{aligner: a, cfg: cfg, log: log}, nil
}

// Config returns the effective configuration.
func (c *Coordinator) Config() Config {
	return c.cfg
}

type chunkOutput struct {
	chunk        Chunk
	measurements []recomb.Measurement
	results      []recomb.Result
	err          error
}

// Run scans recombinant against parent1 and parent2. The returned results
// are ordered by segment start, one per window start. The first failing
// chunk cancels the others and its error, wrapped in a *WorkerError, is
// returned. A run that outlives the configured timeout fails with an error
// wrapping context.DeadlineExceeded.
func (c *Coordinator) Run(ctx context.Context, recombinant, parent1, parent2 string) ([]recomb.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	fullLen := len(recombinant)
	chunks := Partition(fullLen, c.cfg.Threads, c.cfg.Window, c.cfg.Step)
	if len(chunks) == 0 {
		c.log.Debug("recombinant shorter than one window, nothing to scan",
			"length", fullLen, "window", c.cfg.Window)
		return []recomb.Result{}, nil
	}

	c.log.Debug("dispatching chunks",
		"chunks", len(chunks),
		"threads", c.cfg.Threads,
		"mode", c.cfg.Mode.String(),
		"recombinant", humanize.Comma(int64(fullLen)))

	scanner := &Scanner{
		Aligner:  c.aligner,
		Parent1:  parent1,
		Parent2:  parent2,
		Window:   c.cfg.Window,
		Step:     c.cfg.Step,
		Progress: c.cfg.Progress,
	}

	jobs := make(chan Chunk)
	outputs := make(chan chunkOutput, len(chunks))

	// Workers
	workers := min(c.cfg.Threads, len(chunks))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for ch := range jobs {
				outputs <- c.work(ctx, scanner, recombinant, ch)
			}
		}()
	}

	// Feed work
	go func() {
		defer close(jobs)
		for _, ch := range chunks {
			select {
			case <-ctx.Done():
				return
			case jobs <- ch:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outputs)
	}()

	// Collect in chunk order so the merge does not depend on scheduling.
	byChunk := make([]chunkOutput, len(chunks))
	var firstErr error
	for out := range outputs {
		if out.err != nil {
			if firstErr == nil {
				firstErr = &WorkerError{Chunk: out.chunk, Err: out.err}
				cancel()
			}
			continue
		}
		byChunk[out.chunk.Index] = out
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan did not complete within %s: %w", c.cfg.Timeout, err)
	}

	if c.cfg.Mode == ModeStream {
		var ms []recomb.Measurement
		for _, out := range byChunk {
			ms = append(ms, out.measurements...)
		}
		return Classify(mergeMeasurements(ms)), nil
	}

	var results []recomb.Result
	for _, out := range byChunk {
		results = append(results, out.results...)
	}
	return MergeResults(results), nil
}

func (c *Coordinator) work(ctx context.Context, s *Scanner, recombinant string, ch Chunk) (out chunkOutput) {
	out.chunk = ch
	defer func() {
		if r := recover(); r != nil {
			out.err = fmt.Errorf("panic: %v", r)
		}
	}()

	started := time.Now()
	sub := recombinant[ch.Start:ch.End]
	if c.cfg.Mode == ModeStream {
		out.measurements, out.err = s.Measure(ctx, sub, ch.Start, len(recombinant))
	} else {
		out.results, out.err = s.Scan(ctx, sub, ch.Start, len(recombinant))
	}

	if out.err == nil {
		c.log.Debug("chunk done",
			"chunk", ch.Index,
			"start", ch.Start,
			"end", ch.End,
			"elapsed", time.Since(started))
	}
	return out
}

// MergeResults orders results by segment start (stable) and drops every
// result whose start was already seen, keeping the first.
func MergeResults(results []recomb.Result) []recomb.Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})

	merged := results[:0]
	for i, r := range results {
		if i > 0 && r.Start == merged[len(merged)-1].Start {
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func mergeMeasurements(ms []recomb.Measurement) []recomb.Measurement {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Start < ms[j].Start
	})

	merged := ms[:0]
	for i, m := range ms {
		if i > 0 && m.Start == merged[len(merged)-1].Start {
			continue
		}
		merged = append(merged, m)
	}
	return merged
}
