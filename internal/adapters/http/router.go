package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/core/ports"
)

const maxRequestBodyBytes = 1 << 20

// MetricsRecorder is the slice of the metrics package the router needs.
type MetricsRecorder interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

type Router struct {
	cfg        config.Config
	router     ports.QueryRouter
	classifier ports.QueryClassifier
	docs       ports.DocumentReader
	metrics    MetricsRecorder
}

func NewRouter(
	cfg config.Config,
	router ports.QueryRouter,
	classifier ports.QueryClassifier,
	docs ports.DocumentReader,
) *Router {
	return &Router{
		cfg:        cfg,
		router:     router,
		classifier: classifier,
		docs:       docs,
	}
}

func (rt *Router) WithMetrics(m MetricsRecorder) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("POST /v1/route", rt.routeQuery)
	mux.HandleFunc("POST /v1/classify", rt.classifyQuery)
	mux.HandleFunc("POST /v1/documents/match", rt.matchDocuments)
	mux.HandleFunc("GET /v1/documents/{document_id}", rt.getDocumentByID)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) routeQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.RouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := rt.router.Route(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	annotateClassification(r.Context(), decision.Classification)
	annotateRequest(r.Context(),
		"decision_id", decision.ID,
		"matched_documents", len(decision.MatchedDocumentIDs),
	)
	writeJSON(w, http.StatusOK, decision)
}

type classifyRequest struct {
	Query     string            `json:"query"`
	Documents []domain.Document `json:"documents"`
}

func (rt *Router) classifyQuery(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	classification := rt.classifier.Classify(req.Query, req.Documents)
	annotateClassification(r.Context(), classification)
	writeJSON(w, http.StatusOK, classification)
}

type matchResponse struct {
	DocumentIDs []string              `json:"document_ids"`
	BestMatch   *domain.DocumentMatch `json:"best_match,omitempty"`
}

func (rt *Router) matchDocuments(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	resp := matchResponse{DocumentIDs: rt.classifier.MatchingDocumentIDs(req.Query, req.Documents)}
	if best, ok := rt.classifier.BestDocumentMatch(req.Query, req.Documents); ok {
		resp.BestMatch = &best
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("document_id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if status := mapErrorToHTTPStatus(err); status == http.StatusRequestEntityTooLarge {
			writeJSON(w, status, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid json: %v", err)})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error_kind", domain.KindLabel(err),
			"error", err,
		)
	}
	annotateRequest(r.Context(), "error_kind", domain.KindLabel(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
