// Package httpapi serves the extraction pipeline over a small REST API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
)

// MaxUploadBytes caps the multipart body accepted by POST /v1/extract.
const MaxUploadBytes = 64 << 20

type Processor interface {
	ProcessFile(ctx context.Context, path string, opts pipeline.Options) (pipeline.Outcome, error)
	ProcessText(ctx context.Context, name, text string, opts pipeline.Options) (pipeline.Outcome, error)
}

type Exporter interface {
	Export(ctx context.Context, runID uuid.UUID, format constants.ExportFormat) (export.File, error)
}

// API holds the handler dependencies.
type API struct {
	proc     Processor
	runs     repository.RunRepository
	exporter Exporter
	logger   *slog.Logger
}

func New(proc Processor, runs repository.RunRepository, exporter Exporter, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{proc: proc, runs: runs, exporter: exporter, logger: logger}
}

// Router builds the chi router with request id, recovery and access logging.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "cibil-extractor"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", a.extract)
		r.Get("/runs", a.listRuns)
		r.Get("/runs/{id}", a.getRun)
		r.Get("/runs/{id}/export", a.exportRun)
	})
	return r
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		common.Logger(ctx, a.logger).Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
