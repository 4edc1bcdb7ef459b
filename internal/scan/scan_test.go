package scan

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desperadko/rat-prototype/internal/alignment"
	"github.com/Desperadko/rat-prototype/internal/recomb"
	"github.com/Desperadko/rat-prototype/internal/sequence"
)

var _ Aligner = (*alignment.Kernel)(nil)

// fractionAligner scores a window by the fraction of its bases equal to the
// first base of the parent.
type fractionAligner struct{}

func (fractionAligner) Identity(window, parent string) (float64, error) {
	if window == "" {
		return 0, nil
	}
	return float64(strings.Count(window, parent[:1])) / float64(len(window)), nil
}

type alignerFunc func(a, b string) (float64, error)

func (f alignerFunc) Identity(a, b string) (float64, error) { return f(a, b) }

func starts(results []recomb.Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Start
	}
	return out
}

func categories(results []recomb.Result) []recomb.Category {
	out := make([]recomb.Category, len(results))
	for i, r := range results {
		out[i] = r.Recombination
	}
	return out
}

func TestScannerMeasure(t *testing.T) {
	s, err := NewScanner(fractionAligner{}, "AAAA", "CCCC", 4, 2)
	require.NoError(t, err)

	ms, err := s.Measure(context.Background(), "AAAACCCCGG", 0, 10)
	require.NoError(t, err)
	require.Len(t, ms, 4)

	wantBounds := [][2]int{{0, 4}, {2, 6}, {4, 8}, {6, 10}}
	for i, m := range ms {
		assert.Equal(t, wantBounds[i][0], m.Start)
		assert.Equal(t, wantBounds[i][1], m.End)
	}
	assert.Equal(t, 1.0, ms[0].SimilarityP1)
	assert.Equal(t, 0.5, ms[1].SimilarityP1)
	assert.Equal(t, 0.5, ms[1].SimilarityP2)
	assert.Equal(t, 0.5, ms[3].SimilarityP2)
}

func TestScannerAbsolutePositions(t *testing.T) {
	s, err := NewScanner(fractionAligner{}, "AAAA", "CCCC", 4, 2)
	require.NoError(t, err)

	ms, err := s.Measure(context.Background(), "AAAACC", 100, 106)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 100, ms[0].Start)
	assert.Equal(t, 104, ms[0].End)
	assert.Equal(t, 102, ms[1].Start)
	assert.Equal(t, 106, ms[1].End)
}

func TestScannerShortChunk(t *testing.T) {
	s, err := NewScanner(fractionAligner{}, "AAAA", "CCCC", 20, 5)
	require.NoError(t, err)

	results, err := s.Scan(context.Background(), "ACGTACGT", 0, 8)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScannerInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		window int
		step   int
		param  string
	}{
		{"zero window", 0, 5, "window size"},
		{"negative window", -3, 5, "window size"},
		{"zero step", 20, 0, "step size"},
		{"negative step", 20, -1, "step size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(fractionAligner{}, "A", "C", tt.window, tt.step)
			require.Error(t, err)

			var perr *InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.param, perr.Name)
		})
	}
}

func TestScannerCancelled(t *testing.T) {
	s, err := NewScanner(fractionAligner{}, "AAAA", "CCCC", 4, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Measure(ctx, "AAAACCCCGG", 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	t.Run("example", func(t *testing.T) {
		chunks := Partition(10, 2, 4, 2)
		assert.Equal(t, []Chunk{
			{Index: 0, Start: 0, End: 6},
			{Index: 1, Start: 4, End: 10},
		}, chunks)
	})

	t.Run("shorter than window", func(t *testing.T) {
		assert.Nil(t, Partition(3, 2, 4, 1))
	})

	t.Run("more parts than windows", func(t *testing.T) {
		chunks := Partition(6, 8, 4, 1)
		assert.Len(t, chunks, 3)
	})

	t.Run("every start owned once", func(t *testing.T) {
		for length := 1; length <= 60; length++ {
			for parts := 1; parts <= 7; parts++ {
				for window := 1; window <= 10; window++ {
					for step := 1; step <= 6; step++ {
						checkPartition(t, length, parts, window, step)
					}
				}
			}
		}
	})
}

func checkPartition(t *testing.T, length, parts, window, step int) {
	t.Helper()

	var want []int
	for s := 0; s <= length-window; s += step {
		want = append(want, s)
	}

	chunks := Partition(length, parts, window, step)
	require.LessOrEqual(t, len(chunks), parts)

	var got []int
	for i, c := range chunks {
		require.Equal(t, i, c.Index)
		require.Zero(t, c.Start%step)
		require.LessOrEqual(t, c.End, length)
		for k := 0; k < c.Windows(window, step); k++ {
			got = append(got, c.Start+k*step)
		}
	}
	require.Equal(t, want, got, "length=%d parts=%d window=%d step=%d", length, parts, window, step)
}

func TestWindowCount(t *testing.T) {
	assert.Equal(t, 4, WindowCount(10, 4, 2))
	assert.Equal(t, 1, WindowCount(20, 20, 5))
	assert.Equal(t, 0, WindowCount(19, 20, 5))
	assert.Equal(t, 0, WindowCount(10, 0, 5))
	assert.Equal(t, 17, WindowCount(100, 20, 5))
}

func TestNewCoordinatorInvalid(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		param string
	}{
		{"zero threads", Config{Threads: 0, Window: 20, Step: 5}, "thread count"},
		{"zero window", Config{Threads: 2, Window: 0, Step: 5}, "window size"},
		{"zero step", Config{Threads: 2, Window: 20, Step: 0}, "step size"},
		{"negative timeout", Config{Threads: 2, Window: 20, Step: 5, Timeout: -time.Second}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinator(fractionAligner{}, tt.cfg)
			var perr *InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.param, perr.Name)
		})
	}
}

func TestCoordinatorDefaultTimeout(t *testing.T) {
	c, err := NewCoordinator(fractionAligner{}, Config{Threads: 1, Window: 4, Step: 2})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Config().Timeout)
}

func TestCoordinatorRun(t *testing.T) {
	recombinant := strings.Repeat("A", 10) + strings.Repeat("C", 10)

	for _, mode := range []Mode{ModeChunked, ModeStream} {
		for threads := 1; threads <= 4; threads++ {
			c, err := NewCoordinator(fractionAligner{}, Config{
				Threads: threads, Window: 4, Step: 2, Mode: mode,
			})
			require.NoError(t, err)

			results, err := c.Run(context.Background(), recombinant, "AAAA", "CCCC")
			require.NoError(t, err)

			assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16}, starts(results),
				"mode=%s threads=%d", mode, threads)
			assert.Equal(t, recomb.Equal, results[4].MoreSimilarTo)
			assert.Equal(t, recomb.SecondParent, results[5].MoreSimilarTo)
		}
	}
}

func TestCoordinatorStreamClassification(t *testing.T) {
	c, err := NewCoordinator(fractionAligner{}, Config{Threads: 1, Window: 4, Step: 2})
	require.NoError(t, err)

	results, err := c.Run(context.Background(),
		strings.Repeat("A", 10)+strings.Repeat("C", 10), "AAAA", "CCCC")
	require.NoError(t, err)

	assert.Equal(t, []recomb.Category{
		recomb.None, recomb.None, recomb.None, recomb.None, recomb.None,
		recomb.Ambiguous, recomb.None, recomb.None, recomb.None,
	}, categories(results))
}

func TestCoordinatorChunkBoundary(t *testing.T) {
	recombinant := "AAAAAACCCCCC"

	stream, err := NewCoordinator(fractionAligner{}, Config{Threads: 2, Window: 2, Step: 2, Mode: ModeStream})
	require.NoError(t, err)
	streamed, err := stream.Run(context.Background(), recombinant, "AA", "CC")
	require.NoError(t, err)

	chunked, err := NewCoordinator(fractionAligner{}, Config{Threads: 2, Window: 2, Step: 2, Mode: ModeChunked})
	require.NoError(t, err)
	isolated, err := chunked.Run(context.Background(), recombinant, "AA", "CC")
	require.NoError(t, err)

	require.Len(t, streamed, 6)
	require.Len(t, isolated, 6)

	// The flip at 6 is the first window of the second chunk.
	assert.Equal(t, 6, streamed[3].Start)
	assert.Equal(t, recomb.Hard, streamed[3].Recombination)
	assert.Equal(t, recomb.None, isolated[3].Recombination)
}

func TestCoordinatorIdenticalParents(t *testing.T) {
	seq := "ACGTTGCAACGGTACCATGGACGTTAGCATCGATCGGATCCAAGTC"
	kernel := alignment.DefaultKernel(sequence.DNA)

	c, err := NewCoordinator(kernel, Config{Threads: 3, Window: 20, Step: 5})
	require.NoError(t, err)

	results, err := c.Run(context.Background(), seq, seq, seq)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Equal(t, recomb.Equal, r.MoreSimilarTo)
		assert.Equal(t, recomb.None, r.Recombination)
		assert.Equal(t, 1.0, r.SimilarityP1)
		assert.False(t, r.MajorChange)
	}

	again, err := c.Run(context.Background(), seq, seq, seq)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestCoordinatorShortRecombinant(t *testing.T) {
	c, err := NewCoordinator(fractionAligner{}, Config{Threads: 2, Window: 20, Step: 5})
	require.NoError(t, err)

	results, err := c.Run(context.Background(), "ACGT", "AAAA", "CCCC")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCoordinatorWorkerFailure(t *testing.T) {
	errBad := errors.New("bad window")
	failing := alignerFunc(func(a, b string) (float64, error) {
		if strings.Contains(a, "N") {
			return 0, errBad
		}
		return 1, nil
	})

	c, err := NewCoordinator(failing, Config{Threads: 3, Window: 4, Step: 2})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), "AAAAAAAAAANAAAAAAAAAAAAAA", "AAAA", "CCCC")
	require.Error(t, err)

	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, errBad)
	assert.Contains(t, err.Error(), "scan of chunk")
}

func TestCoordinatorWorkerPanic(t *testing.T) {
	panicking := alignerFunc(func(a, b string) (float64, error) {
		panic("boom")
	})

	c, err := NewCoordinator(panicking, Config{Threads: 2, Window: 4, Step: 2})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), "ACGTACGTACGT", "AAAA", "CCCC")
	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Contains(t, err.Error(), "boom")
}

func TestCoordinatorTimeout(t *testing.T) {
	slow := alignerFunc(func(a, b string) (float64, error) {
		time.Sleep(20 * time.Millisecond)
		return 1, nil
	})

	c, err := NewCoordinator(slow, Config{Threads: 1, Window: 4, Step: 1, Timeout: 30 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), strings.Repeat("ACGT", 25), "AAAA", "CCCC")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinatorProgress(t *testing.T) {
	var seen atomic.Int64
	c, err := NewCoordinator(fractionAligner{}, Config{
		Threads: 3, Window: 4, Step: 2,
		Progress: func(n int) { seen.Add(int64(n)) },
	})
	require.NoError(t, err)

	results, err := c.Run(context.Background(), strings.Repeat("ACGT", 10), "AAAA", "CCCC")
	require.NoError(t, err)
	assert.Equal(t, int64(len(results)), seen.Load())
}

func TestMergeResults(t *testing.T) {
	in := []recomb.Result{
		{Start: 10, Recombination: recomb.Hard},
		{Start: 0},
		{Start: 10, Recombination: recomb.None},
		{Start: 5},
	}

	merged := MergeResults(in)
	assert.Equal(t, []int{0, 5, 10}, starts(merged))
	assert.Equal(t, recomb.Hard, merged[2].Recombination)
}

func BenchmarkCoordinatorRun(b *testing.B) {
	kernel := alignment.DefaultKernel(sequence.DNA)
	p1 := strings.Repeat("ACGTTGCAAC", 30)
	p2 := strings.Repeat("ACGATGCTAC", 30)
	rec := p1[:150] + p2[150:]

	c, err := NewCoordinator(kernel, Config{Threads: 4, Window: 20, Step: 5})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Run(context.Background(), rec, p1, p2); err != nil {
			b.Fatal(err)
		}
	}
}
