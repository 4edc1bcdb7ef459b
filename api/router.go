// Package api wires the HTTP handlers into a chi router.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Desperadko/rat-prototype/api/handlers"
	"github.com/Desperadko/rat-prototype/api/middleware"
)

// RequestTimeout bounds every request, scans included.
const RequestTimeout = 60 * time.Second

// NewRouter returns the API router. Requests are logged to log.
func NewRouter(log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", handlers.ScanHandler)
		r.Post("/summary", handlers.SummaryHandler)

		r.Route("/alignment", func(r chi.Router) {
			r.Post("/local", handlers.LocalAlignHandler)
			r.Post("/identity", handlers.IdentityHandler)
		})

		r.Route("/sequence", func(r chi.Router) {
			r.Post("/validate", handlers.ValidateHandler)
			r.Post("/stats", handlers.SequenceStatsHandler)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(homePage))
	})

	return r
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>Recombination Analysis API</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
        pre { background: #f3f4f6; padding: 1rem; border-radius: 0.5rem; overflow-x: auto; }
        .endpoint { margin: 1rem 0; padding: 1rem; border: 1px solid #e5e7eb; border-radius: 0.5rem; }
        .method { display: inline-block; padding: 0.25rem 0.5rem; background: #10b981; color: white; border-radius: 0.25rem; font-size: 0.875rem; }
    </style>
</head>
<body>
    <h1>Recombination Analysis API</h1>
    <p>Sliding-window recombination breakpoint detection against two parent sequences.</p>

    <h2>Endpoints</h2>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/scan</code>
        <p>Classify every window of the recombinant.</p>
        <pre>{"seq_type": "d", "recombinant": "...", "parent1": "...", "parent2": "...", "threads": 2, "window": 20, "step": 5}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/summary</code>
        <p>Same input as /api/scan; returns counts, breakpoints and input composition.</p>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/alignment/local</code>
        <p>Smith-Waterman local alignment with NUC4.4 scores.</p>
        <pre>{"sequence1": "ACGTACGTAC", "sequence2": "ACGTAACGTAC", "gap_penalty": 10}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/sequence/validate</code>
        <pre>{"sequence": "ACGU", "seq_type": "r"}</pre>
    </div>
</body>
</html>`
