package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-checkin-backend/internal/models"
	"gym-checkin-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemberStore resolves member ids to member records.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
}

// ScheduleStore resolves a category to its weekly schedule document.
type ScheduleStore interface {
	Get(ctx context.Context, category string) (*models.Schedule, error)
}

// CheckinLog is the append-only attendance log. AppendIfNoneSince must
// perform the recent-record check and the append as one isolated
// operation and report false when a recent record blocked the append.
type CheckinLog interface {
	AppendIfNoneSince(ctx context.Context, memberID string, rec *models.CheckIn, since time.Time) (bool, error)
}

// CheckInService decides, in one pass, whether the bearer of a scanned
// QR token may check in right now and records the visit exactly once.
// Every gate before the final append is read-only.
type CheckInService struct {
	members   MemberStore
	schedules ScheduleStore
	checkins  CheckinLog
	tokens    *TokenService

	loc             *time.Location
	earlyTolerance  int
	lateTolerance   int
	duplicateWindow time.Duration
	now             func() time.Time
}

// NewCheckInService creates a new check-in service
func NewCheckInService(
	members MemberStore,
	schedules ScheduleStore,
	checkins CheckinLog,
	tokens *TokenService,
	loc *time.Location,
	earlyTolerance, lateTolerance int,
	duplicateWindow time.Duration,
) *CheckInService {
	return &CheckInService{
		members:         members,
		schedules:       schedules,
		checkins:        checkins,
		tokens:          tokens,
		loc:             loc,
		earlyTolerance:  earlyTolerance,
		lateTolerance:   lateTolerance,
		duplicateWindow: duplicateWindow,
		now:             time.Now,
	}
}

// CheckIn validates a scanned QR token and records the attendance.
// clientTime, when supplied, drives weekday selection, session matching
// and the duplicate window; subscription validity and the stored
// timestamp always use server time. The first failing gate wins and
// nothing is written on any failure path.
func (s *CheckInService) CheckIn(ctx context.Context, token string, clientTime *time.Time) (*models.CheckIn, error) {
	if token == "" {
		return nil, denied(DenialMissingToken, "QR token required")
	}

	memberID, err := s.tokens.VerifyQR(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, denied(DenialExpiredToken, "QR token expired")
		}
		return nil, denied(DenialInvalidToken, "QR token invalid")
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, denied(DenialUnknownUser, "member not found")
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	schedule, err := s.schedules.Get(ctx, string(member.Category))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, denied(DenialScheduleNotFound, "no schedule for category")
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	serverNow := s.now().In(s.loc)
	evalTime := serverNow
	if clientTime != nil {
		evalTime = clientTime.In(s.loc)
	}

	sessions := schedule.SessionsOn(evalTime.Weekday())
	session := MatchSession(sessions, evalTime, member.Category, s.earlyTolerance, s.lateTolerance)
	if session == nil {
		return nil, denied(DenialNoActiveSession, "no active session in your schedule")
	}

	allowed, ok := member.Disciplines[session.Name]
	if !ok {
		return nil, denied(DenialDisciplineNotSubscribed, "discipline not subscribed")
	}
	if !allowed {
		return nil, denied(DenialDisciplineForbidden, "discipline access not allowed")
	}

	paidAt, err := ParsePaymentInstant(member.PaidAt, s.loc)
	if err != nil {
		return nil, denied(DenialMalformedTimestamp, "payment date unreadable")
	}
	if !SubscriptionValid(member.Plan, paidAt, serverNow) {
		return nil, denied(DenialSubscriptionExpired, "subscription expired")
	}

	rec := &models.CheckIn{
		ID:          uuid.New().String(),
		MemberID:    member.ID,
		Date:        serverNow.Format("2006-01-02"),
		SessionName: session.Name,
	}

	inserted, err := s.checkins.AppendIfNoneSince(ctx, member.ID, rec, evalTime.Add(-s.duplicateWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}
	if !inserted {
		return nil, denied(DenialDuplicateCheckIn, "already checked in recently")
	}

	log.Info().
		Str("member_id", member.ID).
		Str("session", session.Name).
		Str("date", rec.Date).
		Msg("Check-in recorded")

	return rec, nil
}
