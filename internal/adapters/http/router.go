package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/partdesk/parts-assistant/internal/config"
	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/core/ports"
	"github.com/partdesk/parts-assistant/internal/observability/metrics"
)

const serviceName = "parts-api"

type Router struct {
	cfg     config.Config
	queries ports.QueryProcessor
	queue   ports.MessageQueue
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	queries ports.QueryProcessor,
	queue ports.MessageQueue,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		queries: queries,
		queue:   queue,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.handleChat)
	mux.HandleFunc("/v1/conversations/", rt.handleConversation)
	mux.HandleFunc("/v1/catalog/imports", rt.handleCatalogImport)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIQueueWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message  string `json:"message"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.queries.ProcessQuery(r.Context(), domain.ChatRequest{
		Message:  req.Message,
		ThreadID: req.ThreadID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChat(
			serviceName,
			string(result.Intent),
			result.SourceCounts.Primary,
			result.SourceCounts.Supplementary,
			time.Since(start),
		)
		if result.Error != "" {
			rt.metrics.RecordChatDegraded(serviceName, result.Error)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleConversation(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")

	if threadID, ok := strings.CutSuffix(rest, "/reset"); ok {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if threadID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "thread id is required"})
			return
		}
		if err := rt.queries.Reset(r.Context(), threadID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "thread_id": threadID})
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "thread id is required"})
		return
	}

	messages, err := rt.queries.History(r.Context(), rest)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thread_id": rest,
		"messages":  messages,
	})
}

func (rt *Router) handleCatalogImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "catalog import queue is not configured"})
		return
	}

	var req struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	switch req.Kind {
	case "parts", "repairs", "articles":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be parts, repairs or articles"})
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	if err := rt.queue.PublishCatalogEvent(r.Context(), ports.CatalogEvent{Kind: req.Kind, Path: req.Path}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "kind": req.Kind})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
