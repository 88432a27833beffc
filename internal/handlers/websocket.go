package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/interfaces"
	"github.com/ternarybob/scout/internal/models"
	"github.com/ternarybob/scout/internal/services/answer"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Same permissive policy as the CORS middleware
	},
}

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 64 << 10
)

// wsRequest is one question frame sent by the client
type wsRequest struct {
	Message string `json:"message"`
	Format  string `json:"format,omitempty"`
}

// ChatWebSocketHandler answers questions over a WebSocket, streaming the same phase
// objects as the SSE endpoint. Questions on one connection are answered in order.
type ChatWebSocketHandler struct {
	answers  interfaces.AnswerService
	logger   arbor.ILogger
	interval time.Duration // Minimum spacing between questions per connection
	burst    int
	clients  atomic.Int64
}

// NewChatWebSocketHandler creates a WebSocket chat handler
func NewChatWebSocketHandler(answers interfaces.AnswerService, logger arbor.ILogger) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		answers:  answers,
		logger:   logger,
		interval: time.Second,
		burst:    3,
	}
}

// HandleWebSocket handles GET /ws/chat
func (h *ChatWebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	h.logger.Debug().Int64("clients", h.clients.Add(1)).Msg("WebSocket client connected")
	defer func() {
		h.logger.Debug().Int64("clients", h.clients.Add(-1)).Msg("WebSocket client disconnected")
	}()

	var writeMu sync.Mutex
	send := func(phase models.Phase) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(phase); err != nil {
			h.logger.Debug().Err(err).Str("phase", phase.Phase).Msg("Failed to write WebSocket frame")
		}
	}

	limiter := rate.NewLimiter(rate.Every(h.interval), h.burst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("WebSocket read failed")
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			send(models.ErrorPhase("Invalid request"))
			continue
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			send(models.ErrorPhase(emptyMessage))
			continue
		}
		if !limiter.Allow() {
			send(models.ErrorPhase("Too many requests"))
			continue
		}

		result, err := h.answers.Answer(r.Context(), message, send)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to answer WebSocket request")
			send(models.ErrorPhase("Failed to generate response"))
			continue
		}

		if req.Format == formatHTML {
			if html, err := answer.RenderHTML(result.Reply); err == nil {
				result.ReplyHTML = html
			}
		}
		send(models.AnswerPhase(result))
	}
}
