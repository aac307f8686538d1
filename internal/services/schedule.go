package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gym-checkin-backend/internal/models"
)

// parseClockTime converts an HHhMM string ("18h30", "10h") to minutes
// since midnight. The minutes part is optional and defaults to zero.
func parseClockTime(s string) (int, error) {
	parts := strings.SplitN(s, "h", 2)
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}

	minutes := 0
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		minutes, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
		}
	}

	return hours*60 + minutes, nil
}

// MatchSession returns the first session whose tolerance-widened window
// contains the given instant and whose category restriction, if any,
// matches the caller's category. Sessions are tried in list order and
// the search stops at the first hit; a nil result means no session is
// active. Sessions with unparsable times are skipped.
func MatchSession(sessions []models.Session, at time.Time, category models.Category, earlyTolerance, lateTolerance int) *models.Session {
	nowMinutes := at.Hour()*60 + at.Minute()

	for i := range sessions {
		session := &sessions[i]

		start, err := parseClockTime(session.StartTime)
		if err != nil {
			continue
		}
		end, err := parseClockTime(session.EndTime)
		if err != nil {
			continue
		}

		if nowMinutes < start-earlyTolerance || nowMinutes > end+lateTolerance {
			continue
		}

		if session.Category != "" && !strings.EqualFold(session.Category, string(category)) {
			continue
		}

		return session
	}

	return nil
}
