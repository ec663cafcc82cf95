package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/pipeline"
	"github.com/ppiankov/marketlens/internal/util"
)

const maxRequestBytes = 64 << 10

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Query      string `json:"query"`
	AllowLive  *bool  `json:"allow_live,omitempty"`  // Server default when omitted
	OutputJSON *bool  `json:"output_json,omitempty"` // Server default when omitted
}

// AnalyzeResponse is returned by a successful analysis
type AnalyzeResponse struct {
	RequestID string                `json:"request_id"`
	ReportURL string                `json:"report_url"`
	JSONURL   string                `json:"json_url,omitempty"`
	Result    *model.AnalysisResult `json:"result"`
}

type handler struct {
	analyzer Analyzer
	base     model.RunConfig
	version  string
	logger   *util.Logger
}

func newHandler(analyzer Analyzer, base model.RunConfig, version string, logger *util.Logger) *handler {
	return &handler{analyzer: analyzer, base: base, version: version, logger: logger}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	cfg := h.base
	if req.AllowLive != nil {
		cfg.AllowLive = *req.AllowLive
	}
	if req.OutputJSON != nil {
		cfg.WriteJSON = *req.OutputJSON
	}

	reqID := middleware.GetReqID(r.Context())
	result, err := h.analyzer.Run(r.Context(), req.Query, cfg)
	if err != nil {
		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			h.logger.Error("request %s: analysis of %q failed: %v", reqID, req.Query, err)
		}
		respondWithError(w, code, msg, err)
		return
	}

	resp := AnalyzeResponse{
		RequestID: reqID,
		ReportURL: "/reports/" + filepath.Base(result.ReportPath),
		Result:    result,
	}
	if result.JSONPath != "" {
		resp.JSONURL = "/reports/" + filepath.Base(result.JSONPath)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		respondWithError(w, http.StatusBadRequest, "Invalid report name", nil)
		return
	}

	var contentType string
	switch filepath.Ext(name) {
	case ".html":
		contentType = "text/html; charset=utf-8"
	case ".json":
		contentType = "application/json"
	default:
		respondWithError(w, http.StatusNotFound, "Report not found", nil)
		return
	}

	path := filepath.Join(h.base.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		respondWithError(w, http.StatusNotFound, "Report not found", nil)
		return
	}

	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}

// statusFor maps a run error kind to an HTTP status and client message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidQuery):
		return http.StatusBadRequest, "Query must not be empty"
	case errors.Is(err, pipeline.ErrCanceled):
		return http.StatusServiceUnavailable, "Analysis canceled"
	case errors.Is(err, pipeline.ErrArtifactWrite):
		return http.StatusInternalServerError, "Failed to write report"
	default:
		return http.StatusInternalServerError, "Analysis failed"
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil && code < http.StatusInternalServerError {
		response["detail"] = err.Error()
	}
	respondWithJSON(w, code, response)
}
