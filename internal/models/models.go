package models

import "time"

// Category is the member category derived once at enrollment.
type Category string

const (
	CategoryKids   Category = "KIDS"
	CategoryFemale Category = "FEMALE"
	CategoryMale   Category = "MALE"
)

// Payment plan tiers. Any other value means the subscription expires
// at the payment instant itself.
const (
	PlanQuarterly = "Trimestriel"
	PlanAnnual    = "Annuel"
)

// Member represents a gym member in the system
type Member struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Sex         string          `json:"sex"`
	BirthDate   time.Time       `json:"birth_date"`
	Category    Category        `json:"category"`
	Disciplines map[string]bool `json:"disciplines"`
	Plan        string          `json:"plan"`
	PaidAt      string          `json:"paid_at"` // DD/MM/YYYY HH:MM:SS
	CreatedAt   time.Time       `json:"created_at"`
}

// Session is one recurring class slot in a weekly schedule. Times are
// in HHhMM form with the minutes part optional. Category, when set,
// restricts the slot to that member category.
type Session struct {
	Day       string `json:"day"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Category  string `json:"type,omitempty"`
}

// Schedule is the weekly recurring plan for one member category.
// Days is keyed 0=Sunday..6=Saturday; the order of sessions within a
// day is significant, the matcher returns the first qualifying entry.
type Schedule struct {
	Category string                     `json:"category"`
	Days     map[time.Weekday][]Session `json:"days"`
}

// SessionsOn returns the session list for a weekday, or nil when the
// schedule has no entry for that day.
func (s *Schedule) SessionsOn(day time.Weekday) []Session {
	if s.Days == nil {
		return nil
	}
	return s.Days[day]
}

// CheckIn is one append-only attendance record, owned by its member.
type CheckIn struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	Date        string    `json:"date"` // YYYY-MM-DD, local calendar date
	SessionName string    `json:"session_name"`
	ScannedAt   time.Time `json:"scanned_at"`
}
