package scan

// Chunk is the slice [Start, End) of the recombinant handed to one worker.
// A chunk owns the window starts Start, Start+step, ... up to End-window;
// End reaches one full window past its last owned start.
type Chunk struct {
	Index int
	Start int
	End   int
}

// Partition splits a sequence of the given length into at most parts
// chunks. Chunk boundaries fall on the global step grid and the owned window
// starts of different chunks never overlap, so every start 0, step, 2*step,
// ... <= length-window belongs to exactly one chunk. Returns nil when the
// sequence is shorter than one window.
func Partition(length, parts, window, step int) []Chunk {
	if length < window || parts < 1 || window < 1 || step < 1 {
		return nil
	}

	lastStart := length - window
	windows := lastStart/step + 1
	perChunk := (windows + parts - 1) / parts
	span := perChunk * step

	chunks := make([]Chunk, 0, parts)
	for start := 0; start <= lastStart; start += span {
		lastOwned := min(start+span-step, lastStart-lastStart%step)
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   lastOwned + window,
		})
	}
	return chunks
}

// Windows returns the number of windows the chunk owns.
func (c Chunk) Windows(window, step int) int {
	if c.End-c.Start < window {
		return 0
	}
	return (c.End-c.Start-window)/step + 1
}

// WindowCount returns the number of windows a scan of a sequence of the
// given length produces.
func WindowCount(length, window, step int) int {
	if window < 1 || step < 1 || length < window {
		return 0
	}
	return (length-window)/step + 1
}
