package handlers

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Desperadko/rat-prototype/internal/stats"
	"github.com/Desperadko/rat-prototype/pkg/rat"
)

// ScanRequest represents a recombination scan request. Omitted numeric
// fields take their defaults: 2 threads, window 20, step 5, gap penalty 10.
type ScanRequest struct {
	SeqType     string `json:"seq_type,omitempty"`
	Recombinant string `json:"recombinant"`
	Parent1     string `json:"parent1"`
	Parent2     string `json:"parent2"`
	Threads     *int   `json:"threads,omitempty"`
	Window      *int   `json:"window,omitempty"`
	Step        *int   `json:"step,omitempty"`
	GapPenalty  *int   `json:"gap_penalty,omitempty"`
	Stream      bool   `json:"stream,omitempty"`
}

// ScanResponse represents the response for a scan.
type ScanResponse struct {
	RunID     uuid.UUID    `json:"run_id"`
	Mode      string       `json:"mode"`
	Windows   int          `json:"windows"`
	ElapsedMS int64        `json:"elapsed_ms"`
	Results   []rat.Result `json:"results"`
}

// SummaryResponse represents the response for a scan summary.
type SummaryResponse struct {
	RunID       uuid.UUID            `json:"run_id"`
	ElapsedMS   int64                `json:"elapsed_ms"`
	Summary     *rat.RunSummary      `json:"summary"`
	Recombinant *stats.SequenceStats `json:"recombinant"`
	Parent1     *stats.SequenceStats `json:"parent1"`
	Parent2     *stats.SequenceStats `json:"parent2"`
}

type scanInputs struct {
	recombinant, parent1, parent2 *rat.Sequence
	opts                          rat.Options
}

func (req *ScanRequest) inputs() (*scanInputs, error) {
	t, err := parseType(req.SeqType)
	if err != nil {
		return nil, err
	}

	in := &scanInputs{opts: rat.DefaultOptions()}
	for _, f := range []struct {
		name  string
		bases string
		dst   **rat.Sequence
	}{
		{"recombinant", req.Recombinant, &in.recombinant},
		{"parent1", req.Parent1, &in.parent1},
		{"parent2", req.Parent2, &in.parent2},
	} {
		seq, err := rat.NewSequence(f.bases, t)
		if err != nil {
			return nil, prefixed(f.name, err)
		}
		*f.dst = seq
	}

	if req.Threads != nil {
		in.opts.Threads = *req.Threads
	}
	if req.Window != nil {
		in.opts.Window = *req.Window
	}
	if req.Step != nil {
		in.opts.Step = *req.Step
	}
	if req.GapPenalty != nil {
		in.opts.GapPenalty = *req.GapPenalty
	}
	in.opts.Stream = req.Stream
	return in, nil
}

func runScan(w http.ResponseWriter, r *http.Request) (*rat.Analysis, *scanInputs, bool) {
	var req ScanRequest
	if !decode(w, r, &req) {
		return nil, nil, false
	}

	in, err := req.inputs()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	log := slog.Default().With("request_id", chimiddleware.GetReqID(r.Context()))
	in.opts.Logger = log

	started := time.Now()
	analysis, err := rat.Analyze(r.Context(), in.recombinant, in.parent1, in.parent2, in.opts)
	if err != nil {
		log.Warn("scan failed", "error", err, "elapsed", time.Since(started))
		writeError(w, statusFor(err), err.Error())
		return nil, nil, false
	}

	log.Info("scan finished",
		"run_id", analysis.RunID,
		"windows", analysis.Windows,
		"mode", analysis.Mode,
		"elapsed", analysis.Elapsed)
	return analysis, in, true
}

// ScanHandler runs a recombination scan and returns every window result.
func ScanHandler(w http.ResponseWriter, r *http.Request) {
	analysis, _, ok := runScan(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{
		RunID:     analysis.RunID,
		Mode:      analysis.Mode,
		Windows:   analysis.Windows,
		ElapsedMS: analysis.ElapsedMS(),
		Results:   analysis.Results,
	})
}

// SummaryHandler runs a recombination scan and returns its aggregate only.
func SummaryHandler(w http.ResponseWriter, r *http.Request) {
	analysis, in, ok := runScan(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		RunID:       analysis.RunID,
		ElapsedMS:   analysis.ElapsedMS(),
		Summary:     analysis.Summary(),
		Recombinant: stats.FromSequence(in.recombinant),
		Parent1:     stats.FromSequence(in.parent1),
		Parent2:     stats.FromSequence(in.parent2),
	})
}
