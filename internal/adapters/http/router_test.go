package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/core/usecase"
	"github.com/kirillkom/query-router/internal/observability/metrics"
)

type routerFake struct {
	err     error
	lastReq domain.RouteRequest
}

func (f *routerFake) Route(_ context.Context, req domain.RouteRequest) (*domain.RouteDecision, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RouteDecision{
		ID:     "decision-1",
		UserID: req.UserID,
		Query:  req.Query,
		Classification: domain.QueryClassification{
			Intent:        domain.IntentWeb,
			SuggestedTool: domain.ToolWebSearch,
			Confidence:    0.5,
		},
		MatchedDocumentIDs: []string{},
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, UserID: "u-1", Filename: "UAOL.pdf", Status: domain.StatusCompleted}, nil
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &routerFake{}, usecase.NewDefaultQueryClassifier(), docsFake{}).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestRouteReturnsDecision(t *testing.T) {
	fake := &routerFake{}
	handler := NewRouter(config.Config{}, fake, usecase.NewDefaultQueryClassifier(), docsFake{}).Handler()

	res := postJSON(t, handler, "/v1/route", map[string]any{"user_id": "u-1", "query": "weather in Paris"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if fake.lastReq.UserID != "u-1" || fake.lastReq.Documents != nil {
		t.Fatalf("unexpected forwarded request %+v", fake.lastReq)
	}

	var decision domain.RouteDecision
	if err := json.NewDecoder(res.Body).Decode(&decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.ID != "decision-1" || decision.Classification.Intent != domain.IntentWeb {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouteForwardsInlineEmptyCatalog(t *testing.T) {
	fake := &routerFake{}
	handler := NewRouter(config.Config{}, fake, usecase.NewDefaultQueryClassifier(), docsFake{}).Handler()

	res := postJSON(t, handler, "/v1/route", map[string]any{"query": "hello", "documents": []any{}})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if fake.lastReq.Documents == nil {
		t.Fatalf("an explicit empty documents array must stay non-nil")
	}
}

func TestRouteMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", domain.WrapError(domain.ErrInvalidInput, "route", errors.New("query is required")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "catalog", errors.New("db down")), http.StatusServiceUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(config.Config{}, &routerFake{err: tc.err}, usecase.NewDefaultQueryClassifier(), docsFake{}).Handler()
			res := postJSON(t, handler, "/v1/route", map[string]any{"user_id": "u-1", "query": "x"})
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
		})
	}
}

func TestRouteRejectsMalformedJSON(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/route", strings.NewReader("{"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestClassifyUsesInlineCatalog(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := postJSON(t, handler, "/v1/classify", map[string]any{
		"query": "tell me about UAOL",
		"documents": []map[string]any{
			{"id": "u", "filename": "UAOL.pdf", "status": "completed"},
		},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var classification domain.QueryClassification
	if err := json.NewDecoder(res.Body).Decode(&classification); err != nil {
		t.Fatalf("decode classification: %v", err)
	}
	if classification.Intent != domain.IntentDocument || classification.SuggestedTool != domain.ToolSearchDocuments {
		t.Fatalf("unexpected classification %+v", classification)
	}
	if classification.Context.DocumentName != "UAOL.pdf" {
		t.Fatalf("expected resolved document name, got %q", classification.Context.DocumentName)
	}
}

func TestClassifyRequiresQuery(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := postJSON(t, handler, "/v1/classify", map[string]any{"query": "  "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestMatchDocumentsReturnsIDs(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := postJSON(t, handler, "/v1/documents/match", map[string]any{
		"query": "compare the budget and UAOL",
		"documents": []map[string]any{
			{"id": "b", "filename": "Budget 2024.pdf"},
			{"id": "x", "filename": "Holiday Photos.png"},
			{"id": "u", "filename": "UAOL Report.pdf"},
		},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp matchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode match response: %v", err)
	}
	if strings.Join(resp.DocumentIDs, ",") != "b,u" {
		t.Fatalf("expected [b u], got %v", resp.DocumentIDs)
	}
	if resp.BestMatch == nil || resp.BestMatch.DocumentID != "b" {
		t.Fatalf("expected best match b, got %+v", resp.BestMatch)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		&routerFake{},
		usecase.NewDefaultQueryClassifier(),
		docsFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
	).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentByIDReturnsDocument(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-7", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.ID != "doc-7" {
		t.Fatalf("expected doc-7, got %q", doc.ID)
	}
}

func TestMetricsEndpointExposesRoutingMetrics(t *testing.T) {
	m := metrics.NewRoutingMetrics("api")
	handler := NewRouter(config.Config{}, &routerFake{}, usecase.NewDefaultQueryClassifier(), docsFake{}).
		WithMetrics(m).
		Handler()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `path="/healthz"`) {
		t.Fatalf("expected healthz request to be counted")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
