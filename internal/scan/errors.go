package scan

import "fmt"

// InvalidParameterError is returned for scan parameters outside their
// allowed range.
type InvalidParameterError struct {
	Name  string
	Value any
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %v (must be greater than zero)", e.Name, e.Value)
}

// WorkerError is returned when scanning one chunk failed. The run is
// aborted; results of other chunks are discarded.
type WorkerError struct {
	Chunk Chunk
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("scan of chunk %d [%d, %d) failed: %v",
		e.Chunk.Index, e.Chunk.Start, e.Chunk.End, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}
