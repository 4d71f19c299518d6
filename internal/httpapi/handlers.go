package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
)

const defaultListLimit = 50

type statsView struct {
	Blocks       int  `json:"blocks"`
	Accepted     int  `json:"accepted"`
	Rejected     int  `json:"rejected"`
	ClosedFound  bool `json:"closed_found"`
	ClosedOffset int  `json:"closed_offset"`
}

type outcomeView struct {
	RunID        string           `json:"run_id"`
	SourceName   string           `json:"source_name"`
	Method       string           `json:"method"`
	Pages        int              `json:"pages"`
	Deduplicated bool             `json:"deduplicated"`
	Warnings     []string         `json:"warnings,omitempty"`
	Stats        statsView        `json:"stats"`
	Accounts     []map[string]any `json:"accounts"`
}

type runView struct {
	ID           string     `json:"id"`
	SourceName   string     `json:"source_name"`
	SourcePath   string     `json:"source_path,omitempty"`
	ContentHash  string     `json:"content_hash"`
	Method       string     `json:"method,omitempty"`
	Pages        int        `json:"pages"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Stats        statsView  `json:"stats"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func toRunView(r repository.Run) runView {
	st := r.Stats()
	return runView{
		ID:           r.ID.String(),
		SourceName:   r.SourceName,
		SourcePath:   r.SourcePath,
		ContentHash:  r.ContentHash,
		Method:       r.Method,
		Pages:        r.Pages,
		Status:       string(r.Status),
		ErrorMessage: r.ErrorMessage,
		Stats: statsView{
			Blocks: st.Blocks, Accepted: st.Accepted, Rejected: st.Rejected,
			ClosedFound: st.Boundary.Found, ClosedOffset: st.Boundary.Offset,
		},
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func toOutcomeView(out pipeline.Outcome) outcomeView {
	return outcomeView{
		RunID:        out.RunID.String(),
		SourceName:   out.SourceName,
		Method:       out.Method,
		Pages:        out.Pages,
		Deduplicated: out.Deduplicated,
		Warnings:     out.Warnings,
		Stats: statsView{
			Blocks: out.Stats.Blocks, Accepted: out.Stats.Accepted, Rejected: out.Stats.Rejected,
			ClosedFound: out.Stats.Boundary.Found, ClosedOffset: out.Stats.Boundary.Offset,
		},
		Accounts: export.Records(out.Accounts),
	}
}

// extract accepts either a multipart "file" upload or a "text" form field.
func (a *API) extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	opts := pipeline.Options{}
	if v := r.URL.Query().Get("force"); v != "" {
		force, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		opts.Force = force
	}

	var (
		out pipeline.Outcome
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		name := r.FormValue("name")
		if name == "" {
			name = "inline.txt"
		}
		out, err = a.proc.ProcessText(r.Context(), name, text, opts)
	} else {
		path, cleanup, uerr := a.saveUpload(r)
		if uerr != nil {
			writeFailure(w, uerr)
			return
		}
		defer cleanup()
		out, err = a.proc.ProcessFile(r.Context(), path, opts)
	}
	if err != nil {
		common.Logger(r.Context(), a.logger).Warn("http.extract.failed", "err", err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeView(out))
}

// saveUpload copies the "file" part to a temp file that keeps the original
// base name so the pipeline sees the right extension and source name.
func (a *API) saveUpload(r *http.Request) (string, func(), error) {
	if r.MultipartForm == nil {
		return "", nil, fmt.Errorf("%w: a multipart file or a text field is required", common.ErrInvalidInput)
	}
	src, fh, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: file: %v", common.ErrInvalidInput, err)
	}
	defer func() { _ = src.Close() }()

	dir, err := os.MkdirTemp("", "cibil-upload-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		cleanup()
		return "", nil, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (a *API) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			if verr := common.NewValidator().Field("limit", n, common.Range(1, 1000)).Error(); verr != nil {
				err = verr
			}
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	runs, err := a.runs.List(r.Context(), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]runView, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunView(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

func (a *API) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "run id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) getRun(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	run, err := a.runs.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunView(*run))
}

func (a *API) exportRun(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(constants.ExportCSV)
	}
	format, ok := constants.ParseExportFormat(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "format must be one of "+strings.Join(constants.ExportFormats, ", "))
		return
	}

	f, err := a.exporter.Export(r.Context(), id, format)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			common.Logger(r.Context(), a.logger).Error("http.export.failed", "run_id", id, "format", format, "err", err)
		}
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}
