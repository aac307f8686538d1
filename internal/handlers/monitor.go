package handlers

import (
	"net/http"

	"gym-checkin-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MonitorHandler handles WebSocket connections from front-desk monitors
type MonitorHandler struct {
	hub    *services.MonitorHub
	tokens *services.TokenService
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(hub *services.MonitorHub, tokens *services.TokenService) *MonitorHandler {
	return &MonitorHandler{hub: hub, tokens: tokens}
}

// HandleMonitor handles GET /ws. The connection receives one JSON event
// per successful check-in until it closes. Inbound messages are ignored.
func (h *MonitorHandler) HandleMonitor(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	memberID, err := h.tokens.ParseAuth(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	log.Info().Str("member_id", memberID).Msg("Monitor connection established")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("Monitor WebSocket error")
			}
			break
		}
	}
}
