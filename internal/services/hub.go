package services

import (
	"encoding/json"
	"sync"
	"time"

	"gym-checkin-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// CheckInEvent is pushed to every connected monitor when a member
// checks in
type CheckInEvent struct {
	Type        string    `json:"type"`
	MemberID    string    `json:"member_id"`
	SessionName string    `json:"session_name"`
	Date        string    `json:"date"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// MonitorHub fans successful check-ins out to connected front-desk
// monitor sockets. Connections that fail a write are dropped.
type MonitorHub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewMonitorHub creates a new monitor hub
func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Register adds a monitor connection to the hub
func (h *MonitorHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}

	log.Info().Int("connections", len(h.conns)).Msg("Monitor connected")
}

// Unregister removes a monitor connection from the hub
func (h *MonitorHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.conns[conn]; exists {
		conn.Close()
		delete(h.conns, conn)
		log.Info().Int("connections", len(h.conns)).Msg("Monitor disconnected")
	}
}

// BroadcastCheckIn pushes a check-in record to every connected monitor
func (h *MonitorHub) BroadcastCheckIn(rec *models.CheckIn) {
	event := CheckInEvent{
		Type:        "checkin",
		MemberID:    rec.MemberID,
		SessionName: rec.SessionName,
		Date:        rec.Date,
		ScannedAt:   rec.ScannedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal check-in event")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Msg("Failed to push check-in event, dropping monitor")
			h.Unregister(conn)
		}
	}
}
