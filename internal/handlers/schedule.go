package handlers

import (
	"errors"
	"net/http"

	"gym-checkin-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ScheduleHandler handles schedule lookups
type ScheduleHandler struct {
	schedules *repository.ScheduleRepository
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedules *repository.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// GetCalendar handles GET /api/v1/calendar/{category}
func (h *ScheduleHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := chi.URLParam(r, "category")

	schedule, err := h.schedules.Get(ctx, category)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "Schedule not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("category", category).Msg("Failed to get schedule")
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, schedule.Days, http.StatusOK)
}
