package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/models"
	ws "github.com/isdelr/leadgate-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler streams audit events to connected administrators.
type WebSocketHandler struct {
	hub      *ws.Hub
	resolver *auth.Resolver
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, resolver *auth.Resolver) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, resolver: resolver}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The API is open to any origin; the token is the gate.
		return true
	},
}

// Serve authenticates the admin, then upgrades the connection. Browsers cannot
// set headers on websocket requests, so the token may come from ?token=.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	user, ok := h.resolver.ResolvePrincipal(r.Context(), token)
	if !ok {
		writeError(w, r, models.NewAuthError("Invalid or missing token"))
		return
	}
	if !user.IsAdmin {
		writeError(w, r, models.NewAuthorizationError("Admin access required"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, user.ID)
	if !h.hub.Attach(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Detach(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.reply(client, ws.NewErrorMessage("Malformed message"))
		return
	}

	switch msg.Action {
	case ws.ActionPing:
		h.reply(client, ws.NewPongMessage())
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.reply(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}

// reply must not block the read loop.
func (h *WebSocketHandler) reply(client *ws.Client, data []byte) {
	if !client.Enqueue(data) {
		log.Warn().Str("user_id", client.UserID).Msg("Websocket reply dropped")
	}
}
