// Package handlers provides HTTP handlers for the recombination analysis API.
package handlers

import (
	"net/http"

	"github.com/Desperadko/rat-prototype/internal/stats"
	"github.com/Desperadko/rat-prototype/pkg/rat"
)

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
	// SeqType is "d" (default) or "r".
	SeqType string `json:"seq_type,omitempty"`
}

// parseType treats an empty code as DNA.
func parseType(code string) (rat.SequenceType, error) {
	if code == "" {
		return rat.DNA, nil
	}
	return rat.ParseType(code)
}

func newSequence(bases, code string) (*rat.Sequence, error) {
	t, err := parseType(code)
	if err != nil {
		return nil, err
	}
	return rat.NewSequence(bases, t)
}

// ValidateResponse represents the response for sequence validation.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Type   string `json:"type,omitempty"`
	Length int    `json:"length,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidateHandler reports whether a sequence is valid for its type.
func ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	seq, err := newSequence(req.Sequence, req.SeqType)
	if err != nil {
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:  true,
		Type:   seq.SeqType.String(),
		Length: seq.Len(),
	})
}

// SequenceStatsHandler handles sequence statistics requests.
func SequenceStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	seq, err := newSequence(req.Sequence, req.SeqType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats.FromSequence(seq))
}
