// Package server exposes the conversational engine over HTTP. The chat
// endpoint streams newline-delimited JSON: one reasoning record per executed
// workflow step, then the final response record.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/savvythreads/server/internal/assistant"
	"github.com/savvythreads/server/internal/assistant/model"
	errx "github.com/savvythreads/server/internal/core/error"
	logx "github.com/savvythreads/server/pkg/logger"
)

// maxRequestBodySize caps chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

// ChatRequest is the chat endpoint's input.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// StreamRecord is one NDJSON line of the chat response stream: a reasoning
// record per executed step, with the last one carrying the turn detail, then
// the final response. Stream failures emit an error record and terminate.
type StreamRecord struct {
	Type            string               `json:"type"`
	Step            string               `json:"step,omitempty"`
	Status          string               `json:"status,omitempty"`
	Response        string               `json:"response,omitempty"`
	AgentUsed       string               `json:"agent_used,omitempty"`
	RouteDecision   string               `json:"route_decision,omitempty"`
	ConfidenceScore float64              `json:"confidence_score,omitempty"`
	ToolResponses   []model.ToolResponse `json:"tool_responses,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// Handler serves the chat API over an orchestrator.
type Handler struct {
	engine *assistant.Orchestrator
}

// NewHandler creates the chat API handler.
func NewHandler(engine *assistant.Orchestrator) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the chat API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/chat", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Get("/{userID}/history", h.HandleHistory)
		r.Get("/{userID}/long-term", h.HandleLongTerm)
		r.Delete("/{userID}", h.HandleClear)
	})
}

// HandleChat runs one conversational turn and streams the workflow trace as
// NDJSON, finishing with the final response record.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errx.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, errx.New(nil, http.StatusBadRequest, "user_id is required"))
		return
	}

	logx.Info().
		Str("user_id", req.UserID).
		Int("message_length", len(req.Message)).
		Msg("chat request")

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	res := h.engine.Chat(r.Context(), req.UserID, req.Message)

	emit := func(rec StreamRecord) bool {
		if err := enc.Encode(rec); err != nil {
			logx.Warn().Err(err).Str("type", rec.Type).Msg("failed to write stream record")
			// Best effort; if the connection is gone this fails too.
			_ = enc.Encode(StreamRecord{Type: "error", Error: err.Error()})
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	for i, step := range res.ExecutedSteps {
		rec := StreamRecord{Type: "reasoning", Step: step, Status: "completed"}
		if i == len(res.ExecutedSteps)-1 {
			// The last reasoning record carries the turn detail.
			rec.Response = res.Response
			rec.AgentUsed = res.AgentUsed
			rec.RouteDecision = res.RouteDecision
			rec.ConfidenceScore = res.ConfidenceScore
			rec.ToolResponses = res.ToolResponses
			rec.Error = res.Error
		}
		if !emit(rec) {
			return
		}
	}
	emit(StreamRecord{Type: "final", Response: res.Response})
}

// HandleHistory returns the user's chat messages.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	history := h.engine.ChatHistory(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"messages": history,
		"count":    len(history),
	})
}

// HandleLongTerm returns the user's accumulated chat summaries.
func (h *Handler) HandleLongTerm(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	summaries := h.engine.LongTermSummaries(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":   userID,
		"summaries": summaries,
		"count":     len(summaries),
	})
}

// HandleClear drops the user's chat thread.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.engine.ClearChat(r.Context(), userID) {
		writeError(w, errx.New(nil, http.StatusNotFound, "no chat history for user"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "cleared": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, appErr *errx.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message}); err != nil {
		logx.Warn().Err(err).Msg("failed to write error response")
	}
}
