package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gym-checkin-backend/internal/models"
	"gym-checkin-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberStore struct {
	members map[string]*models.Member
}

func (f *fakeMemberStore) GetByID(_ context.Context, id string) (*models.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, repository.ErrNotFound)
	}
	return member, nil
}

type fakeScheduleStore struct {
	schedules map[string]*models.Schedule
}

func (f *fakeScheduleStore) Get(_ context.Context, category string) (*models.Schedule, error) {
	schedule, ok := f.schedules[strings.ToLower(category)]
	if !ok {
		return nil, fmt.Errorf("schedule %s: %w", category, repository.ErrNotFound)
	}
	return schedule, nil
}

type fakeCheckinLog struct {
	records   []*models.CheckIn
	appends   int
	serverNow time.Time
}

func (f *fakeCheckinLog) AppendIfNoneSince(_ context.Context, memberID string, rec *models.CheckIn, since time.Time) (bool, error) {
	for _, existing := range f.records {
		if existing.MemberID == memberID && existing.ScannedAt.After(since) {
			return false, nil
		}
	}
	rec.ScannedAt = f.serverNow
	f.records = append(f.records, rec)
	f.appends++
	return true, nil
}

// Monday, June 10 2024, 18:05.
var mondayEvening = time.Date(2024, time.June, 10, 18, 5, 0, 0, time.UTC)

type engineFixture struct {
	svc      *CheckInService
	tokens   *TokenService
	checkins *fakeCheckinLog
	members  *fakeMemberStore
}

func newEngineFixture(t *testing.T, now time.Time) *engineFixture {
	t.Helper()

	members := &fakeMemberStore{members: map[string]*models.Member{
		"member-1": {
			ID:          "member-1",
			Category:    models.CategoryMale,
			Disciplines: map[string]bool{"Boxe": true},
			Plan:        models.PlanAnnual,
			PaidAt:      "01/01/2024 00:00:00",
		},
	}}
	schedules := &fakeScheduleStore{schedules: map[string]*models.Schedule{
		"male": {
			Category: "male",
			Days: map[time.Weekday][]models.Session{
				time.Monday: {
					{Day: "Lundi", Name: "Boxe", StartTime: "18h00", EndTime: "19h30"},
				},
			},
		},
	}}
	checkins := &fakeCheckinLog{serverNow: now}

	tokens := NewTokenService(testSecret, 5*time.Minute)
	tokens.now = func() time.Time { return now }

	svc := NewCheckInService(members, schedules, checkins, tokens, time.UTC, 20, 30, 2*time.Hour)
	svc.now = func() time.Time { return now }

	return &engineFixture{svc: svc, tokens: tokens, checkins: checkins, members: members}
}

func (f *engineFixture) mintQR(t *testing.T, memberID string) string {
	t.Helper()
	token, err := f.tokens.IssueQR(memberID)
	require.NoError(t, err)
	return token
}

func requireDenial(t *testing.T, err error, code DenialCode) {
	t.Helper()
	var denial *CheckInError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, code, denial.Code)
}

func TestCheckInSuccess(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	rec, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
	require.NoError(t, err)

	assert.Equal(t, "Boxe", rec.SessionName)
	assert.Equal(t, "2024-06-10", rec.Date)
	assert.Equal(t, "member-1", rec.MemberID)
	assert.Equal(t, 1, f.checkins.appends)
}

func TestCheckInMissingToken(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	_, err := f.svc.CheckIn(context.Background(), "", nil)
	requireDenial(t, err, DenialMissingToken)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInInvalidToken(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	_, err := f.svc.CheckIn(context.Background(), "not-a-token", nil)
	requireDenial(t, err, DenialInvalidToken)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInExpiredToken(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	// Mint six minutes before "now"; the five minute TTL has elapsed.
	issuer := NewTokenService(testSecret, 5*time.Minute)
	issuer.now = func() time.Time { return mondayEvening.Add(-6 * time.Minute) }
	token, err := issuer.IssueQR("member-1")
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), token, nil)
	requireDenial(t, err, DenialExpiredToken)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInUnknownUser(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "ghost"), nil)
	requireDenial(t, err, DenialUnknownUser)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInScheduleNotFound(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)
	f.members.members["member-1"].Category = models.CategoryFemale

	_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
	requireDenial(t, err, DenialScheduleNotFound)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInNoActiveSession(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)

	t.Run("outside the window", func(t *testing.T) {
		noon := mondayEvening.Add(-6 * time.Hour)
		_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), &noon)
		requireDenial(t, err, DenialNoActiveSession)
	})

	t.Run("day without sessions", func(t *testing.T) {
		tuesday := mondayEvening.AddDate(0, 0, 1)
		_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), &tuesday)
		requireDenial(t, err, DenialNoActiveSession)
	})

	assert.Zero(t, f.checkins.appends)
}

func TestCheckInClientTimeDrivesMatching(t *testing.T) {
	// Server clock is Tuesday noon; the scanner supplies Monday evening.
	f := newEngineFixture(t, mondayEvening.AddDate(0, 0, 1).Add(-6*time.Hour))

	rec, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), &mondayEvening)
	require.NoError(t, err)
	assert.Equal(t, "Boxe", rec.SessionName)
}

func TestCheckInDisciplineGates(t *testing.T) {
	t.Run("not subscribed", func(t *testing.T) {
		f := newEngineFixture(t, mondayEvening)
		f.members.members["member-1"].Disciplines = map[string]bool{"Grappling": true}

		_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
		requireDenial(t, err, DenialDisciplineNotSubscribed)
		assert.Zero(t, f.checkins.appends)
	})

	t.Run("forbidden", func(t *testing.T) {
		f := newEngineFixture(t, mondayEvening)
		f.members.members["member-1"].Disciplines = map[string]bool{"Boxe": false}

		_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
		requireDenial(t, err, DenialDisciplineForbidden)
		assert.Zero(t, f.checkins.appends)
	})
}

func TestCheckInSubscriptionExpired(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)
	f.members.members["member-1"].Plan = "Ponctuel"

	_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
	requireDenial(t, err, DenialSubscriptionExpired)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInMalformedPaymentDate(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)
	f.members.members["member-1"].PaidAt = "janvier 2024"

	_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
	requireDenial(t, err, DenialMalformedTimestamp)
	assert.Zero(t, f.checkins.appends)
}

func TestCheckInDuplicateWindow(t *testing.T) {
	t.Run("rejected within two hours", func(t *testing.T) {
		f := newEngineFixture(t, mondayEvening)
		f.checkins.records = append(f.checkins.records, &models.CheckIn{
			MemberID:  "member-1",
			ScannedAt: mondayEvening.Add(-time.Hour),
		})

		_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
		requireDenial(t, err, DenialDuplicateCheckIn)
		assert.Zero(t, f.checkins.appends)
	})

	t.Run("accepted once the window has passed", func(t *testing.T) {
		f := newEngineFixture(t, mondayEvening)
		f.checkins.records = append(f.checkins.records, &models.CheckIn{
			MemberID:  "member-1",
			ScannedAt: mondayEvening.Add(-2 * time.Hour),
		})

		rec, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
		require.NoError(t, err)
		assert.Equal(t, "Boxe", rec.SessionName)
		assert.Equal(t, 1, f.checkins.appends)
	})
}

func TestCheckInStorageFaultIsNotADenial(t *testing.T) {
	f := newEngineFixture(t, mondayEvening)
	f.members.members = nil // lookups now miss, but swap in a failing store instead

	failing := &failingMemberStore{}
	f.svc.members = failing

	_, err := f.svc.CheckIn(context.Background(), f.mintQR(t, "member-1"), nil)
	require.Error(t, err)

	var denial *CheckInError
	assert.False(t, errors.As(err, &denial))
	assert.Zero(t, f.checkins.appends)
}

type failingMemberStore struct{}

func (f *failingMemberStore) GetByID(context.Context, string) (*models.Member, error) {
	return nil, errors.New("connection refused")
}
