package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"revoice/internal/fileutil"
	"revoice/internal/logging"
	"revoice/internal/pipeline"
	"revoice/internal/runlog"
	"revoice/internal/services"
)

const uploadField = "video"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"history":      s.history != nil,
		"runs_active":  len(s.slots),
		"runs_allowed": cap(s.slots),
	})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	default:
		w.Header().Set("Retry-After", "30")
		s.writeError(w, http.StatusServiceUnavailable, "too many runs in progress")
		return
	}

	limit := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	part, err := findPart(r, uploadField)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	defer part.Close()

	name := filepath.Base(strings.TrimSpace(part.FileName()))
	if name == "" || name == "." || name == string(filepath.Separator) {
		s.writeError(w, http.StatusBadRequest, "video upload requires a file name")
		return
	}
	if !s.cfg.IsAllowedVideo(name) {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("unsupported video type %q (accepted: %s)", filepath.Ext(name), strings.Join(s.cfg.Media.AllowedExtensions, ", ")),
			Kind:  services.Kind(services.ErrValidation),
		})
		return
	}

	runID := uuid.NewString()
	uploadDir := filepath.Join(s.cfg.Paths.WorkDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		s.writeError(w, http.StatusInternalServerError, "upload storage unavailable")
		return
	}
	upload := filepath.Join(uploadDir, runID+strings.ToLower(filepath.Ext(name)))
	written, err := fileutil.WriteStream(upload, part, limit)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	defer func() {
		if err := os.Remove(upload); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "failed to remove upload", "upload_cleanup_failed",
				logging.Error(err),
				logging.String("path", upload),
			)
		}
	}()

	logging.WithContext(r.Context(), s.logger).Info("video uploaded",
		logging.String(logging.FieldEventType, "upload_received"),
		logging.String("run_id", runID),
		logging.String("file_name", name),
		logging.Int64("bytes", written),
	)

	outputDir := filepath.Join(s.cfg.Paths.OutputDir, runID)
	result, runErr := s.runner.Run(r.Context(), pipeline.Request{
		SourcePath: upload,
		SourceName: name,
		RunID:      runID,
		OutputPath: pipeline.DefaultOutputPath(outputDir, name),
	})
	resp := fromResult(result)
	if resp.RunID == "" {
		resp.RunID = runID
	}
	if runErr != nil {
		_ = os.Remove(outputDir)
		resp.Error = runErr.Error()
		resp.ErrorKind = services.Kind(runErr)
		resp.VideoURL = ""
		s.writeJSON(w, statusForError(runErr), resp)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "run history is disabled")
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	s.writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path := ""
	if s.history != nil {
		run, ok := s.lookupRun(w, r)
		if !ok {
			return
		}
		if run.Status != runlog.StatusSucceeded {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("run %s has no video (status %s)", run.ID, run.Status))
			return
		}
		path = run.OutputPath
	} else {
		if _, err := uuid.Parse(id); err != nil {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		matches, _ := filepath.Glob(filepath.Join(s.cfg.Paths.OutputDir, id, "*_revoiced.*"))
		if len(matches) == 1 {
			path = matches[0]
		}
	}
	if path == "" {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusGone, "video is no longer available")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*runlog.Run, bool) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "run history is disabled")
		return nil, false
	}
	id := chi.URLParam(r, "id")
	run, err := s.history.Get(r.Context(), id)
	if errors.Is(err, runlog.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load run", logging.Error(err), logging.String("run_id", id))
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return nil, false
	}
	return run, true
}

var errMissingUpload = errors.New("missing video upload")

// findPart returns the first multipart part named field without buffering the body.
func findPart(r *http.Request, field string) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingUpload
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == field {
			return part, nil
		}
		part.Close()
	}
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, fileutil.ErrTooLarge), errors.As(err, &maxErr):
		// The body is capped by MaxBytesReader; draining lets the client read the reply.
		_, _ = io.Copy(io.Discard, r.Body)
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
	case errors.Is(err, errMissingUpload):
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("multipart field %q is required", uploadField))
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		s.writeError(w, http.StatusBadRequest, "expected a multipart/form-data upload")
	default:
		s.logger.Warn("upload failed", logging.Error(err))
		s.writeError(w, http.StatusBadRequest, "upload failed")
	}
}
