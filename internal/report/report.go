// Package report writes scan results for humans and machines.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Desperadko/rat-prototype/internal/recomb"
	"github.com/Desperadko/rat-prototype/internal/stats"
)

// Writer emits the results of one run.
type Writer interface {
	WriteResults(results []recomb.Result) error
	WriteElapsed(d time.Duration) error
	WriteSummary(s *stats.RunSummary) error
	Flush() error
}

// ElapsedLine formats the closing line of a text report.
func ElapsedLine(d time.Duration) string {
	return fmt.Sprintf("Time elapsed to complete task: %dms.", d.Milliseconds())
}

// TextWriter writes one line per result followed by the elapsed time.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter wraps w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

func (t *TextWriter) WriteResults(results []recomb.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(t.w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextWriter) WriteElapsed(d time.Duration) error {
	_, err := fmt.Fprintln(t.w, ElapsedLine(d))
	return err
}

func (t *TextWriter) WriteSummary(s *stats.RunSummary) error {
	_, err := fmt.Fprintln(t.w, s.String())
	return err
}

func (t *TextWriter) Flush() error {
	return t.w.Flush()
}

// JSONWriter writes one JSON object per line. Every record carries the run
// id so that lines of concurrent runs can be told apart once interleaved.
type JSONWriter struct {
	w     *bufio.Writer
	enc   *json.Encoder
	RunID uuid.UUID
}

// NewJSONWriter wraps w and tags every record with runID.
func NewJSONWriter(w io.Writer, runID uuid.UUID) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: json.NewEncoder(bw), RunID: runID}
}

type resultRecord struct {
	RunID uuid.UUID `json:"run_id"`
	recomb.Result
}

type elapsedRecord struct {
	RunID     uuid.UUID `json:"run_id"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

type summaryRecord struct {
	RunID   uuid.UUID         `json:"run_id"`
	Summary *stats.RunSummary `json:"summary"`
}

func (j *JSONWriter) WriteResults(results []recomb.Result) error {
	for _, r := range results {
		if err := j.enc.Encode(resultRecord{RunID: j.RunID, Result: r}); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONWriter) WriteElapsed(d time.Duration) error {
	return j.enc.Encode(elapsedRecord{RunID: j.RunID, ElapsedMS: d.Milliseconds()})
}

func (j *JSONWriter) WriteSummary(s *stats.RunSummary) error {
	return j.enc.Encode(summaryRecord{RunID: j.RunID, Summary: s})
}

func (j *JSONWriter) Flush() error {
	return j.w.Flush()
}

// New returns the writer for format ("text" or "json").
func New(format string, w io.Writer, runID uuid.UUID) (Writer, error) {
	switch format {
	case "text", "":
		return NewTextWriter(w), nil
	case "json":
		return NewJSONWriter(w, runID), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
