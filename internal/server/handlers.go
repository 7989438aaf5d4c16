package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/scanbar/internal/pipeline"
	"github.com/MeKo-Tech/scanbar/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ver, _, _ := version.Info()
	response := HealthResponse{
		Status:  "healthy",
		Version: ver,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// extractHandler processes barcode extraction requests. It accepts a
// multipart upload under the "pdf" field and optional "strict" and "pages"
// form values overriding the server defaults.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "body too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	path, err := s.spoolUpload(file, header.Filename)
	if err != nil {
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(filepath.Dir(path)) }()

	p, err := s.requestPipeline(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := p.ProcessFile(r.Context(), path)
	extractDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		extractRequestsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusInternalServerError)
		return
	}
	extractRequestsTotal.WithLabelValues("ok").Inc()

	count := 0
	for _, id := range result.PageIDs() {
		count += len(result.Page(id).Barcodes)
	}
	barcodesDetected.Observe(float64(count))

	// Report the client's filename, not the spool path
	result.Common.File = header.Filename

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Failed to encode extraction response", "error", err)
	}
}

// requestPipeline builds a pipeline from the server defaults plus any
// per-request overrides.
func (s *Server) requestPipeline(r *http.Request) (*pipeline.Pipeline, error) {
	opts := s.opts
	if v := r.FormValue("strict"); v != "" {
		opts.Strict = v == "1" || strings.EqualFold(v, "true")
	}
	if v := r.FormValue("pages"); v != "" {
		opts.Pages = v
	}

	p, err := pipeline.NewBuilder().WithOptions(opts).Build()
	if err != nil {
		return nil, fmt.Errorf("invalid request parameters: %w", err)
	}
	return p, nil
}

// spoolUpload writes the uploaded file into a private temp directory and
// returns its path. The extraction engines only operate on files.
func (s *Server) spoolUpload(file io.Reader, name string) (string, error) {
	dir, err := os.MkdirTemp("", "scanbar-upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "upload.pdf"
	}
	path := filepath.Join(dir, base)

	out, err := os.Create(path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
