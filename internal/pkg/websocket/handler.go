package websocket

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/assistant"
)

// Handler upgrades authenticated requests to assistant chat sockets.
type Handler struct {
	hub     *Hub
	respond Responder
	logger  zerolog.Logger
}

// NewHandler creates a websocket handler answering with respond
func NewHandler(hub *Hub, respond Responder, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, respond: respond, logger: logger}
}

// HandleConnection godoc
// @Summary Open an assistant chat socket
// @Description Upgrades to a WebSocket. Send {"message": "..."}; the question and the reply are pushed to every open socket of the caller.
// @Tags assistant
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /assistant/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("userID", principal.ID.String()).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  principal.ID,
		respond: h.respond,
		logger:  h.logger,
	}
	// The greeting goes to this socket only, queued before the hub can see
	// (and close) send.
	if data, err := json.Marshal(&Message{
		ID:        uuid.New(),
		Role:      "assistant",
		Content:   assistant.Greeting.Content,
		Category:  string(assistant.Greeting.Category),
		Timestamp: time.Now(),
	}); err == nil {
		client.send <- data
	}

	if !h.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("userID", principal.ID.String()).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Assistant WebSocket connection established")
}
