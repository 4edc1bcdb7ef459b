package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desperadko/rat-prototype/internal/scan"
	"github.com/Desperadko/rat-prototype/pkg/rat"
)

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func postJSON(t *testing.T, h http.HandlerFunc, v any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return post(t, h, string(b))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func intPtr(n int) *int { return &n }

const testSeq = "ACGTTGCAACGGTACCATGGACGTTAGCATCGATCGGATCCAAGTC"

func TestLocalAlignHandler(t *testing.T) {
	rec := postJSON(t, LocalAlignHandler, AlignmentRequest{
		Sequence1: "ACGTACGTAC",
		Sequence2: "ACGTAACGTAC",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp AlignmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 40, resp.Score)
	assert.Equal(t, "4M1I6M", resp.CIGAR)
	assert.Equal(t, 10, resp.Matches)
	assert.Equal(t, 1, resp.Gaps)
}

func TestLocalAlignHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"sequence1": `, "invalid request body"},
		{"invalid base", `{"sequence1": "ACGX", "sequence2": "ACGT"}`, "sequence1: invalid DNA base 'X' at position 3"},
		{"empty second", `{"sequence1": "ACGT", "sequence2": ""}`, "sequence2"},
		{"unknown type", `{"sequence1": "ACGT", "sequence2": "ACGT", "seq_type": "p"}`, "unknown sequence type"},
		{"negative gap", `{"sequence1": "ACGT", "sequence2": "ACGT", "gap_penalty": -2}`, "gap penalty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, LocalAlignHandler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.want)
		})
	}
}

func TestIdentityHandler(t *testing.T) {
	rec := postJSON(t, IdentityHandler, AlignmentRequest{
		Sequence1: "ACGU",
		Sequence2: "ACGUACGU",
		SeqType:   "r",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IdentityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Identity)
	assert.Equal(t, 100.0, resp.Percent)
	assert.Equal(t, 20, resp.Score)
}

func TestValidateHandler(t *testing.T) {
	rec := postJSON(t, ValidateHandler, SequenceRequest{Sequence: "acgtn"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "DNA", resp.Type)
	assert.Equal(t, 5, resp.Length)

	rec = postJSON(t, ValidateHandler, SequenceRequest{Sequence: "ACGT", SeqType: "r"})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Error, "invalid RNA base 'T'")
}

func TestSequenceStatsHandler(t *testing.T) {
	rec := postJSON(t, SequenceStatsHandler, SequenceRequest{Sequence: "GGCCAT"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(6), resp["length"])
	assert.InDelta(t, 4.0/6.0, resp["gc_content"], 1e-9)
}

func TestScanHandler(t *testing.T) {
	rec := postJSON(t, ScanHandler, ScanRequest{
		Recombinant: testSeq,
		Parent1:     testSeq,
		Parent2:     testSeq,
		Threads:     intPtr(3),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", resp.RunID.String())
	assert.Equal(t, "chunked", resp.Mode)
	assert.Equal(t, rat.WindowCount(len(testSeq), 20, 5), resp.Windows)
	require.Len(t, resp.Results, resp.Windows)
	for i, r := range resp.Results {
		assert.Equal(t, i*5, r.Start)
		assert.Equal(t, rat.Equal, r.MoreSimilarTo)
		assert.Equal(t, rat.None, r.Recombination)
	}
}

func TestScanHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		req  ScanRequest
		want string
	}{
		{
			name: "invalid parent",
			req:  ScanRequest{Recombinant: testSeq, Parent1: "ACGZ", Parent2: testSeq},
			want: "parent1: invalid DNA base 'Z'",
		},
		{
			name: "zero window",
			req:  ScanRequest{Recombinant: testSeq, Parent1: testSeq, Parent2: testSeq, Window: intPtr(0)},
			want: "invalid window size",
		},
		{
			name: "negative threads",
			req:  ScanRequest{Recombinant: testSeq, Parent1: testSeq, Parent2: testSeq, Threads: intPtr(-1)},
			want: "invalid thread count",
		},
		{
			name: "unknown type",
			req:  ScanRequest{SeqType: "q", Recombinant: testSeq, Parent1: testSeq, Parent2: testSeq},
			want: "unknown sequence type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, ScanHandler, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.want)
		})
	}
}

func TestSummaryHandler(t *testing.T) {
	rec := postJSON(t, SummaryHandler, ScanRequest{
		Recombinant: testSeq,
		Parent1:     testSeq,
		Parent2:     testSeq,
		Window:      intPtr(10),
		Step:        intPtr(4),
		Stream:      true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, rat.WindowCount(len(testSeq), 10, 4), resp.Summary.Windows)
	assert.Equal(t, resp.Summary.Windows, resp.Summary.Distribution.Equal)
	assert.Empty(t, resp.Summary.Breakpoints)
	assert.Equal(t, len(testSeq), resp.Recombinant.Length)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&scan.InvalidParameterError{Name: "window size", Value: 0}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&scan.WorkerError{Err: errors.New("boom")}))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(&scan.WorkerError{Err: context.DeadlineExceeded}))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	ScanHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", errorBody(t, rec))
}
