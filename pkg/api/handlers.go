package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/isulog/pkg/catalog"
	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/isulog"
)

// statusFor maps an error to an HTTP status code
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidID):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errs.IsIntegrity(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, "error", err)
	}
	sendError(w, fmt.Sprintf("%s: %v", msg, err), status)
}

// readLog reads a log from the request body
func readLog(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) skipCRC(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("skip_crc")
	if v == "" {
		return s.config.Parser.SkipCRCCheck, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleInspect parses the request body and returns its summary and records
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	skip, err := s.skipCRC(r)
	if err != nil {
		sendError(w, "Invalid skip_crc parameter", http.StatusBadRequest)
		return
	}

	body, err := readLog(w, r)
	if err != nil {
		s.sendErr(w, "Failed to read request body", err)
		return
	}
	if len(body) == 0 {
		sendError(w, "Request body is empty", http.StatusBadRequest)
		return
	}

	start := time.Now()
	lg, err := isulog.LoadWithOptions(bytes.NewReader(body), isulog.LoadOptions{
		SkipCRCCheck: skip,
		Logger:       s.logger,
	})
	if s.metrics != nil {
		s.metrics.RecordLoad(lg, int64(len(body)), err, time.Since(start))
	}
	if err != nil {
		s.sendErr(w, "Failed to parse log", err)
		return
	}

	sendSuccess(w, InspectResponse{Summary: lg.Summary(), Records: recordViews(lg)})
}

// handlePutLog stores the request body in the catalogue
func (s *Server) handlePutLog(w http.ResponseWriter, r *http.Request) {
	body, err := readLog(w, r)
	if err != nil {
		s.sendErr(w, "Failed to read request body", err)
		return
	}
	if len(body) == 0 {
		sendError(w, "Request body is empty", http.StatusBadRequest)
		return
	}

	start := time.Now()
	entry, err := s.catalog.Put(r.URL.Query().Get("name"), body)
	if s.metrics != nil {
		s.metrics.RecordLoad(nil, int64(len(body)), err, time.Since(start))
	}
	if err != nil {
		s.sendErr(w, "Failed to store log", err)
		return
	}

	s.refreshCatalogEntries()
	sendStatus(w, entry, http.StatusCreated)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		s.sendErr(w, "Failed to list logs", err)
		return
	}
	if s.metrics != nil {
		s.metrics.SetCatalogEntries(len(entries))
	}
	sendSuccess(w, entries)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := s.catalog.Get(id)
	if err != nil {
		s.sendErr(w, "Failed to get log", err)
		return
	}
	lg, err := s.catalog.Log(id)
	if err != nil {
		s.sendErr(w, "Failed to load log", err)
		return
	}

	sendSuccess(w, LogResponse{Entry: entry, Records: recordViews(lg)})
}

func (s *Server) handleGetRaw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := s.catalog.Get(id)
	if err != nil {
		s.sendErr(w, "Failed to get log", err)
		return
	}
	raw, err := s.catalog.Raw(id)
	if err != nil {
		s.sendErr(w, "Failed to read log", err)
		return
	}

	name := entry.Name
	if name == "" {
		name = entry.ID + ".dat"
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.catalog.Delete(id); err != nil {
		s.sendErr(w, "Failed to delete log", err)
		return
	}

	s.refreshCatalogEntries()
	sendSuccess(w, map[string]string{"status": "deleted", "id": id})
}
