package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// Upload limits. The request cap bounds the whole multipart body; the file
// cap bounds each individual document.
const (
	maxUploadBytes int64 = 32 << 20
	maxFileBytes   int64 = 10 << 20
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Probe endpoints

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness: every configured backend must answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	probes := []struct {
		name   string
		pinger Pinger
	}{
		{"vector-index", s.index},
		{"document-store", s.store},
		{"result-cache", s.cache},
	}

	for _, probe := range probes {
		if probe.pinger == nil {
			continue
		}
		if err := probe.pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, probe.name+" unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion reports the build version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Engine endpoints

// healthResponse reports engine health and the available pipeline variants
// @Description Engine health with available architectures
type healthResponse struct {
	Status        string                  `json:"status" example:"healthy"`
	Timestamp     time.Time               `json:"timestamp"`
	Architectures []domain.ArchitectureID `json:"architectures"`
}

// handleEngineHealth godoc
// @Summary      Engine health
// @Description  Returns engine health and the registered architecture ids
// @Tags         Health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /health [get]
func (s *Server) handleEngineHealth(w http.ResponseWriter, r *http.Request) {
	archs := s.queryService.ListArchitectures()
	ids := make([]domain.ArchitectureID, 0, len(archs))
	for _, arch := range archs {
		ids = append(ids, arch.ID)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Architectures: ids,
	})
}

// handleStatus godoc
// @Summary      Index status
// @Description  Returns the index lifecycle status, document and chunk counts, and the last ingestion outcome
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  domain.IndexState
// @Router       /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ingestService.Status(r.Context()))
}

// architecturesResponse lists registered variants with their descriptions
// @Description Registered architectures
type architecturesResponse struct {
	Architectures []domain.Architecture            `json:"architectures"`
	Descriptions  map[domain.ArchitectureID]string `json:"descriptions"`
}

// handleListArchitectures godoc
// @Summary      List architectures
// @Description  Returns the registered RAG pipeline variants in registration order
// @Tags         Query
// @Produce      json
// @Success      200  {object}  architecturesResponse
// @Router       /architectures [get]
func (s *Server) handleListArchitectures(w http.ResponseWriter, r *http.Request) {
	archs := s.queryService.ListArchitectures()

	descriptions := make(map[domain.ArchitectureID]string, len(archs))
	for _, arch := range archs {
		descriptions[arch.ID] = arch.Description
	}

	writeJSON(w, http.StatusOK, architecturesResponse{
		Architectures: archs,
		Descriptions:  descriptions,
	})
}

// Query endpoints

// queryRequest represents a comparison query request
// @Description Comparison query request. Omitted fields fall back to defaults: architectures ["simple"], k 5, show_context true.
type queryRequest struct {
	Query            string                  `json:"query" example:"how does chunk overlap affect retrieval"`
	Architectures    []domain.ArchitectureID `json:"architectures,omitempty"`
	K                int                     `json:"k,omitempty" example:"5"`
	ShowContext      *bool                   `json:"show_context,omitempty" example:"true"`
	RerankWeight     float64                 `json:"rerank_weight,omitempty" example:"0.6"`
	HydeDocLength    domain.HydeDocLength    `json:"hyde_doc_length,omitempty" example:"medium" enums:"short,medium,long"`
	UseOriginalQuery bool                    `json:"use_original_query,omitempty" example:"false"`
}

// handleQuery godoc
// @Summary      Run comparison query
// @Description  Executes one query against the requested architectures concurrently and returns the per-architecture results in request order. A failed architecture is reported inside its own result slot and never fails the comparison.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      queryRequest  true  "Comparison query"
// @Success      200      {object}  domain.ComparisonResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      409      {object}  ErrorResponse  "Index in failed state"
// @Failure      500      {object}  ErrorResponse  "Query failed"
// @Router       /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// API-level defaults. The core rejects zero values instead of guessing,
	// so they are resolved here.
	domainReq := domain.QueryRequest{
		Query:            req.Query,
		Architectures:    req.Architectures,
		K:                req.K,
		ShowContext:      true,
		RerankWeight:     req.RerankWeight,
		HydeDocLength:    req.HydeDocLength,
		UseOriginalQuery: req.UseOriginalQuery,
	}
	if len(domainReq.Architectures) == 0 {
		domainReq.Architectures = []domain.ArchitectureID{domain.ArchitectureSimple}
	}
	if domainReq.K == 0 {
		domainReq.K = domain.DefaultK
	}
	if req.ShowContext != nil {
		domainReq.ShowContext = *req.ShowContext
	}

	result, err := s.queryService.Query(r.Context(), domainReq)
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, domain.ErrIndexFailed):
			writeError(w, http.StatusConflict, "index in failed state, clear documents first")
		default:
			writeError(w, http.StatusInternalServerError, "query failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Document endpoints

// uploadResponse acknowledges an accepted ingestion batch
// @Description Upload acknowledgement
type uploadResponse struct {
	Status  string `json:"status" example:"accepted"`
	JobID   string `json:"job_id" example:"1f0d6a0a-9c3e-4e04-accc-1d2f7f9eadf1"`
	Message string `json:"message" example:"processing 2 documents"`
}

// handleUploadDocuments godoc
// @Summary      Upload documents
// @Description  Accepts a multipart batch of documents, extracts their text, and enqueues one background ingestion job. The batch is atomic: it is indexed completely or not at all.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Documents to ingest"
// @Success      202    {object}  uploadResponse
// @Failure      400    {object}  ErrorResponse  "No files, unreadable file, or file too large"
// @Failure      409    {object}  ErrorResponse  "Index in failed state"
// @Failure      429    {object}  ErrorResponse  "Ingest queue full"
// @Failure      500    {object}  ErrorResponse  "Failed to accept batch"
// @Router       /upload-documents [post]
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	// A FAILED index rejects every batch until cleared; failing fast here
	// beats queueing jobs that cannot run.
	if state := s.ingestService.Status(r.Context()); state.Status == domain.IndexStatusFailed {
		writeError(w, http.StatusConflict, "index in failed state, clear documents first")
		return
	}

	docs := make([]domain.RawDocument, 0, len(files))
	for _, header := range files {
		if header.Size > maxFileBytes {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file too large: %s", header.Filename))
			return
		}

		doc, err := s.readUpload(header)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		docs = append(docs, doc)
	}

	job, err := s.ingestService.IngestAsync(r.Context(), docs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQueueFull):
			writeError(w, http.StatusTooManyRequests, "ingest queue full, retry later")
		case errors.Is(err, domain.ErrQueueClosed):
			writeError(w, http.StatusServiceUnavailable, "ingestion unavailable")
		case errors.Is(err, domain.ErrNoDocuments), errors.Is(err, domain.ErrEmptyDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to accept documents")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		Status:  "accepted",
		JobID:   job.ID,
		Message: fmt.Sprintf("processing %d documents", len(docs)),
	})
}

// readUpload reads one uploaded file and converts it to plain text through
// the extractor registry.
func (s *Server) readUpload(header *multipart.FileHeader) (domain.RawDocument, error) {
	file, err := header.Open()
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("unreadable file: %s", header.Filename)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("unreadable file: %s", header.Filename)
	}

	extractor := s.extractors.Get(mimeTypeFor(header))
	if extractor == nil {
		return domain.RawDocument{}, fmt.Errorf("unsupported file type: %s", header.Filename)
	}

	text, err := extractor.Extract(content)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("text extraction failed: %s", header.Filename)
	}

	return domain.RawDocument{
		Filename: header.Filename,
		Content:  []byte(text),
	}, nil
}

// mimeTypeFor resolves the MIME type of one upload. The part header wins;
// blanks and application/octet-stream fall back to the filename extension,
// with a local table for the document types /etc/mime.types may not know.
func mimeTypeFor(header *multipart.FileHeader) string {
	mimeType := header.Header.Get("Content-Type")
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt", ".text", ".log":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	}

	return mime.TypeByExtension(ext)
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  Returns the ingested documents, newest first
// @Tags         Documents
// @Produce      json
// @Success      200  {array}   domain.Document
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingestService.Documents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []*domain.Document{}
	}

	writeJSON(w, http.StatusOK, docs)
}

// handleClearDocuments godoc
// @Summary      Clear documents
// @Description  Drops every chunk and document and resets the index to empty. Also the only way out of a FAILED index.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  ErrorResponse  "Ingestion in progress"
// @Failure      500  {object}  ErrorResponse  "Clear failed"
// @Router       /documents [delete]
func (s *Server) handleClearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestService.Clear(r.Context()); err != nil {
		switch {
		case errors.Is(err, domain.ErrIngestInProgress):
			writeError(w, http.StatusConflict, "ingestion already in progress")
		default:
			writeError(w, http.StatusInternalServerError, "failed to clear documents")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "documents cleared"})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
