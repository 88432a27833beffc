package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/answer"
)

const (
	emptyMessage   = "Empty message"
	maxRequestBody = 64 << 10
	formatHTML     = "html"
)

// ChatHandler serves the JSON and SSE chat endpoints
type ChatHandler struct {
	answers  interfaces.AnswerService
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(answers interfaces.AnswerService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		answers:  answers,
		validate: validator.New(),
		logger:   logger,
	}
}

// ChatHandler handles POST /api/chat requests
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, emptyMessage)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: format must be text or html")
		return
	}

	h.logger.Info().
		Int("message_length", len(req.Message)).
		Int("history", len(req.History)).
		Msg("Processing chat request")

	result, err := h.answers.Answer(r.Context(), req.Message, nil)
	if errors.Is(err, answer.ErrEmptyQuestion) {
		WriteError(w, http.StatusBadRequest, emptyMessage)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to answer chat request")
		WriteError(w, http.StatusInternalServerError, "Failed to generate response")
		return
	}

	h.renderHTML(result, req.Format)
	WriteJSON(w, http.StatusOK, result)
}

// StreamHandler handles GET /api/chat/stream?message= as Server-Sent Events
func (h *ChatHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		WriteError(w, http.StatusBadRequest, emptyMessage)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "SSE not supported")
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	send := func(phase models.Phase) {
		if err := writeSSEData(w, flusher, phase); err != nil {
			h.logger.Debug().Err(err).Str("phase", phase.Phase).Msg("Failed to write SSE event")
		}
	}

	result, err := h.answers.Answer(r.Context(), message, send)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to answer streamed request")
		send(models.ErrorPhase("Failed to generate response"))
		return
	}

	h.renderHTML(result, r.URL.Query().Get("format"))
	send(models.AnswerPhase(result))
}

// renderHTML fills ReplyHTML when the client asked for it
func (h *ChatHandler) renderHTML(result *models.Answer, format string) {
	if format != formatHTML {
		return
	}
	html, err := answer.RenderHTML(result.Reply)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to render reply as HTML")
		return
	}
	result.ReplyHTML = html
}
