package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"docaudit/internal/extract"
	"docaudit/internal/helper"
	"docaudit/internal/models"
)

const (
	maxUploadSize = 50 << 20
	minUploadSize = 100
)

type analyzeRequest struct {
	FileID string `json:"file_id"`
	Query  string `json:"query"`
}

type analyzeResponse struct {
	FileID     string           `json:"file_id"`
	Errors     []models.Finding `json:"errors"`
	ReportPath string           `json:"report_path"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extract.SupportedExt(ext) {
		s.respondError(w, http.StatusBadRequest, "unsupported file format: "+ext)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(content) < minUploadSize {
		s.respondError(w, http.StatusBadRequest, "uploaded file is empty or too small")
		return
	}

	fileID, err := helper.GenerateUUID()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The upload is staged on disk for extraction and removed again on
	// every exit path.
	tempPath := filepath.Join(s.tempRoot, fileID+ext)
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Failed to stage upload")
		s.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", tempPath).Msg("Failed to clean up temp file")
		}
	}()

	text, err := extract.Text(tempPath)
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Extraction failed")
		s.respondServiceError(w, err)
		return
	}

	if err := s.core.Index(r.Context(), fileID, header.Filename, text); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Upload failed")
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"file_id": fileID,
		"message": "Document uploaded and indexed successfully.",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileID == "" {
		s.respondError(w, http.StatusBadRequest, "file_id is required")
		return
	}
	if req.Query == "" {
		req.Query = models.DefaultQuery
	}

	state, err := s.core.Analyze(r.Context(), req.FileID, req.Query)
	if err != nil {
		log.Error().Err(err).Str("file_id", req.FileID).Msg("Analysis failed")
		s.respondServiceError(w, err)
		return
	}

	findings := state.Findings
	if findings == nil {
		findings = []models.Finding{}
	}
	s.respondJSON(w, http.StatusOK, analyzeResponse{
		FileID:     state.FileID,
		Errors:     findings,
		ReportPath: state.ReportPath,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if err := s.core.Remove(r.Context(), fileID); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Deletion failed")
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Document " + fileID + " deleted successfully.",
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.core.List(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"detail": message})
}

// respondServiceError maps core errors to HTTP status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrIndexNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
