package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gym-checkin-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CheckinHandler handles check-in related HTTP requests
type CheckinHandler struct {
	checkinService *services.CheckInService
	memberService  *services.MemberService
	hub            *services.MonitorHub
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(checkinService *services.CheckInService, memberService *services.MemberService, hub *services.MonitorHub) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		memberService:  memberService,
		hub:            hub,
	}
}

// ScanCheckinRequest represents the request body for a scan
type ScanCheckinRequest struct {
	Token       string `json:"token"`
	CurrentTime string `json:"current_time,omitempty"` // RFC3339, optional
}

// ScanCheckinResponse represents a successful scan
type ScanCheckinResponse struct {
	SessionName string    `json:"session_name"`
	Date        string    `json:"date"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// ScanCheckin handles POST /api/v1/scan-checkin
func (h *CheckinHandler) ScanCheckin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScanCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var clientTime *time.Time
	if req.CurrentTime != "" {
		t, err := time.Parse(time.RFC3339, req.CurrentTime)
		if err != nil {
			respondError(w, "current_time must be RFC3339", http.StatusBadRequest)
			return
		}
		clientTime = &t
	}

	rec, err := h.checkinService.CheckIn(ctx, req.Token, clientTime)
	if err != nil {
		var denial *services.CheckInError
		if errors.As(err, &denial) {
			log.Info().
				Str("code", string(denial.Code)).
				Msg("Check-in refused")
			respondError(w, denial.Message, denialStatus(denial.Code))
			return
		}

		log.Error().Err(err).Msg("Check-in failed")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.hub.BroadcastCheckIn(rec)

	respondJSON(w, ScanCheckinResponse{
		SessionName: rec.SessionName,
		Date:        rec.Date,
		ScannedAt:   rec.ScannedAt,
	}, http.StatusOK)
}

// denialStatus maps a denial code to its HTTP status
func denialStatus(code services.DenialCode) int {
	switch code {
	case services.DenialMissingToken:
		return http.StatusBadRequest
	case services.DenialExpiredToken:
		return http.StatusUnauthorized
	case services.DenialInvalidToken,
		services.DenialNoActiveSession,
		services.DenialDisciplineNotSubscribed,
		services.DenialDisciplineForbidden,
		services.DenialSubscriptionExpired:
		return http.StatusForbidden
	case services.DenialUnknownUser, services.DenialScheduleNotFound:
		return http.StatusNotFound
	case services.DenialDuplicateCheckIn:
		return http.StatusConflict
	default:
		// malformed stored data and anything unclassified
		return http.StatusInternalServerError
	}
}

// ScanStatus handles GET /api/v1/scan-status/{member_id}
func (h *CheckinHandler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := chi.URLParam(r, "member_id")

	scanned, err := h.memberService.ScannedToday(ctx, memberID)
	if err != nil {
		log.Error().Err(err).Str("member_id", memberID).Msg("Failed to get scan status")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]bool{"scanned_today": scanned}, http.StatusOK)
}

// MemberStats handles GET /api/v1/members/{member_id}/stats
func (h *CheckinHandler) MemberStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := chi.URLParam(r, "member_id")

	stats, err := h.memberService.MonthlyStats(ctx, memberID)
	if err != nil {
		log.Error().Err(err).Str("member_id", memberID).Msg("Failed to get member stats")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, stats, http.StatusOK)
}
