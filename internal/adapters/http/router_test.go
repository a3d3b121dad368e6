package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/partdesk/parts-assistant/internal/config"
	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
)

type queryProcFake struct {
	result     *domain.ChatResult
	processErr error
	history    []domain.ChatMessage
	historyErr error
	resetErr   error

	lastRequest domain.ChatRequest
	resetThread string
}

func (f *queryProcFake) ProcessQuery(_ context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	f.lastRequest = req
	if f.processErr != nil {
		return nil, f.processErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.ChatResult{Response: "ok", ThreadID: "thread-1", Intent: domain.IntentPartSearch}, nil
}

func (f *queryProcFake) History(context.Context, string) ([]domain.ChatMessage, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *queryProcFake) Reset(_ context.Context, threadID string) error {
	f.resetThread = threadID
	return f.resetErr
}

type queueFake struct {
	published []ports.CatalogEvent
	err       error
}

func (f *queueFake) PublishCatalogEvent(_ context.Context, event ports.CatalogEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func (f *queueFake) SubscribeCatalogEvents(context.Context, func(context.Context, ports.CatalogEvent) error) error {
	return nil
}

func newTestHandler(cfg config.Config, queries ports.QueryProcessor, queue ports.MessageQueue) http.Handler {
	if queries == nil {
		queries = &queryProcFake{}
	}
	return NewRouter(cfg, queries, queue, nil).Handler()
}

func postJSONRequest(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
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

func TestChatReturnsResult(t *testing.T) {
	queries := &queryProcFake{result: &domain.ChatResult{
		Response:     "The PS11752778 filter fits most Whirlpool side-by-side models.",
		ThreadID:     "thread-9",
		Intent:       domain.IntentSpecificPart,
		Confidence:   0.9,
		SourceCounts: domain.SourceCounts{Primary: 1},
	}}
	handler := newTestHandler(config.Config{}, queries, nil)

	res := postJSONRequest(t, handler, "/v1/chat", map[string]string{
		"message":   "Is part PS11752778 compatible with my fridge?",
		"thread_id": "thread-9",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var result domain.ChatResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ThreadID != "thread-9" || result.Intent != domain.IntentSpecificPart {
		t.Fatalf("result = %+v", result)
	}
	if queries.lastRequest.Message == "" || queries.lastRequest.ThreadID != "thread-9" {
		t.Fatalf("request not forwarded: %+v", queries.lastRequest)
	}
}

func TestChatMapsDomainInvalidInputTo400(t *testing.T) {
	queries := &queryProcFake{
		processErr: domain.WrapError(domain.ErrInvalidInput, "process_query", errors.New("empty message")),
	}
	handler := newTestHandler(config.Config{}, queries, nil)

	res := postJSONRequest(t, handler, "/v1/chat", map[string]string{"message": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatRejectsMalformedJSON(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte("{not json")))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatRejectsGet(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestConversationHistoryReturnsMessages(t *testing.T) {
	queries := &queryProcFake{history: []domain.ChatMessage{
		{ID: "m1", ThreadID: "thread-2", Role: "user", Content: "hi"},
		{ID: "m2", ThreadID: "thread-2", Role: "assistant", Content: "hello"},
	}}
	handler := newTestHandler(config.Config{}, queries, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/thread-2", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		ThreadID string               `json:"thread_id"`
		Messages []domain.ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ThreadID != "thread-2" || len(body.Messages) != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestConversationHistoryMapsThreadNotFoundTo404(t *testing.T) {
	queries := &queryProcFake{
		historyErr: domain.WrapError(domain.ErrThreadNotFound, "history", errors.New("thread_id=missing")),
	}
	handler := newTestHandler(config.Config{}, queries, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestConversationResetForwardsThreadID(t *testing.T) {
	queries := &queryProcFake{}
	handler := newTestHandler(config.Config{}, queries, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/thread-7/reset", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if queries.resetThread != "thread-7" {
		t.Fatalf("reset thread = %q", queries.resetThread)
	}
}

func TestCatalogImportPublishesEvent(t *testing.T) {
	queue := &queueFake{}
	handler := newTestHandler(config.Config{}, nil, queue)

	res := postJSONRequest(t, handler, "/v1/catalog/imports", map[string]string{
		"kind": "parts",
		"path": "/data/scraped/parts.json",
	})
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if len(queue.published) != 1 || queue.published[0].Kind != "parts" {
		t.Fatalf("published = %+v", queue.published)
	}
}

func TestCatalogImportRejectsUnknownKind(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, &queueFake{})

	res := postJSONRequest(t, handler, "/v1/catalog/imports", map[string]string{
		"kind": "manuals",
		"path": "/data/manuals.json",
	})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestCatalogImportWithoutQueueReturns503(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	res := postJSONRequest(t, handler, "/v1/catalog/imports", map[string]string{
		"kind": "parts",
		"path": "/data/parts.json",
	})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected %s header", requestIDHeader)
	}
}

func TestRequestIDHeaderIsPreserved(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("request id = %q, want req-42", got)
	}
}
