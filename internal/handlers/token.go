package handlers

import (
	"net/http"

	"gym-checkin-backend/internal/middleware"
	"gym-checkin-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// TokenHandler handles QR token issuance
type TokenHandler struct {
	tokens *services.TokenService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// GenerateQRToken handles POST /api/v1/qr-token. The caller must be
// authenticated; re-issuance is unlimited and stateless.
func (h *TokenHandler) GenerateQRToken(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	token, err := h.tokens.IssueQR(memberID)
	if err != nil {
		log.Error().Err(err).Str("member_id", memberID).Msg("Failed to issue QR token")
		respondError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]string{"token": token}, http.StatusOK)
}
