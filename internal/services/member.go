package services

import (
	"context"
	"fmt"
	"time"

	"gym-checkin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type memberWriter interface {
	Create(ctx context.Context, member *models.Member) error
}

type checkinReader interface {
	ListSince(ctx context.Context, memberID string, since time.Time) ([]*models.CheckIn, error)
	ExistsOnDate(ctx context.Context, memberID, date string) (bool, error)
}

// EnrollInput carries the fields needed to register a new member.
type EnrollInput struct {
	FirstName   string
	LastName    string
	Sex         string
	BirthDate   time.Time
	Disciplines map[string]bool
	Plan        string
	PaidAt      string
}

// MemberStats summarizes a member's attendance for the current month.
type MemberStats struct {
	TotalThisMonth int            `json:"total_this_month"`
	LastCheckin    *time.Time     `json:"last_checkin"`
	BySession      map[string]int `json:"by_session"`
}

// MemberService handles enrollment and attendance reporting
type MemberService struct {
	members  memberWriter
	checkins checkinReader
	loc      *time.Location
	now      func() time.Time
}

// NewMemberService creates a new member service
func NewMemberService(members memberWriter, checkins checkinReader, loc *time.Location) *MemberService {
	return &MemberService{
		members:  members,
		checkins: checkins,
		loc:      loc,
		now:      time.Now,
	}
}

// Enroll registers a new member. The category is derived here, once,
// from age and sex, and never changes afterwards.
func (s *MemberService) Enroll(ctx context.Context, input EnrollInput) (*models.Member, error) {
	now := s.now().In(s.loc)
	age := Age(input.BirthDate, now)

	member := &models.Member{
		ID:          uuid.New().String(),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Sex:         input.Sex,
		BirthDate:   input.BirthDate,
		Category:    CategoryFor(age, input.Sex),
		Disciplines: input.Disciplines,
		Plan:        input.Plan,
		PaidAt:      input.PaidAt,
		CreatedAt:   now,
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to enroll member: %w", err)
	}

	log.Info().
		Str("member_id", member.ID).
		Str("category", string(member.Category)).
		Msg("Member enrolled")

	return member, nil
}

// MonthlyStats reports the member's check-ins since the first of the
// current month: total, per-session counts and the last scan instant
func (s *MemberService) MonthlyStats(ctx context.Context, memberID string) (*MemberStats, error) {
	now := s.now().In(s.loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	checkins, err := s.checkins.ListSince(ctx, memberID, firstOfMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	stats := &MemberStats{
		TotalThisMonth: len(checkins),
		BySession:      make(map[string]int),
	}
	for _, rec := range checkins {
		stats.BySession[rec.SessionName]++
	}
	if len(checkins) > 0 {
		// ListSince returns newest first
		stats.LastCheckin = &checkins[0].ScannedAt
	}

	return stats, nil
}

// ScannedToday reports whether the member already has a check-in for
// today's local calendar date
func (s *MemberService) ScannedToday(ctx context.Context, memberID string) (bool, error) {
	today := s.now().In(s.loc).Format("2006-01-02")
	return s.checkins.ExistsOnDate(ctx, memberID, today)
}
