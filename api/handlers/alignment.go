package handlers

import (
	"net/http"

	"github.com/Desperadko/rat-prototype/pkg/rat"
)

// AlignmentRequest represents an alignment request.
type AlignmentRequest struct {
	Sequence1 string `json:"sequence1"`
	Sequence2 string `json:"sequence2"`
	SeqType   string `json:"seq_type,omitempty"`
	// GapPenalty defaults to 10 when omitted.
	GapPenalty *int `json:"gap_penalty,omitempty"`
}

// AlignmentResponse represents the response for alignment.
type AlignmentResponse struct {
	AlignedSeq1 string  `json:"aligned_seq1"`
	AlignedSeq2 string  `json:"aligned_seq2"`
	Score       int     `json:"score"`
	Identity    float64 `json:"identity"`
	Start1      int     `json:"start1"`
	End1        int     `json:"end1"`
	Start2      int     `json:"start2"`
	End2        int     `json:"end2"`
	CIGAR       string  `json:"cigar"`
	Matches     int     `json:"matches"`
	Mismatches  int     `json:"mismatches"`
	Gaps        int     `json:"gaps"`
}

func (req *AlignmentRequest) align() (*rat.Alignment, error) {
	seq1, err := newSequence(req.Sequence1, req.SeqType)
	if err != nil {
		return nil, prefixed("sequence1", err)
	}
	seq2, err := newSequence(req.Sequence2, req.SeqType)
	if err != nil {
		return nil, prefixed("sequence2", err)
	}

	gap := rat.DefaultGapPenalty
	if req.GapPenalty != nil {
		gap = *req.GapPenalty
	}
	return rat.Align(seq1, seq2, gap)
}

// LocalAlignHandler handles local alignment requests.
func LocalAlignHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if !decode(w, r, &req) {
		return
	}

	alignment, err := req.align()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AlignmentResponse{
		AlignedSeq1: alignment.AlignedSeq1,
		AlignedSeq2: alignment.AlignedSeq2,
		Score:       alignment.Score,
		Identity:    alignment.Identity,
		Start1:      alignment.Start1,
		End1:        alignment.End1,
		Start2:      alignment.Start2,
		End2:        alignment.End2,
		CIGAR:       alignment.ToCIGAR(),
		Matches:     alignment.MatchCount(),
		Mismatches:  alignment.MismatchCount(),
		Gaps:        alignment.TotalGaps(),
	})
}

// IdentityResponse represents the response for an identity request.
type IdentityResponse struct {
	Score    int     `json:"score"`
	Identity float64 `json:"identity"`
	Percent  float64 `json:"percent"`
}

// IdentityHandler returns only the score and percentage of identity of the
// local alignment, as used by the window scan.
func IdentityHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if !decode(w, r, &req) {
		return
	}

	alignment, err := req.align()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, IdentityResponse{
		Score:    alignment.Score,
		Identity: alignment.Identity,
		Percent:  alignment.Identity * 100,
	})
}
