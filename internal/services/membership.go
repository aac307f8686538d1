package services

import (
	"errors"
	"strings"
	"time"

	"gym-checkin-backend/internal/models"
)

// ErrMalformedTimestamp signals an unparsable payment timestamp.
var ErrMalformedTimestamp = errors.New("malformed payment timestamp")

// paymentLayout is the fixed shape payment instants are stored in.
const paymentLayout = "02/01/2006 15:04:05"

const kidsAgeLimit = 13

// Age returns the number of whole years between birth and today,
// decremented by one when today's month/day precedes the birthday.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// CategoryFor derives the member category from age and declared sex.
// Members under 13 are KIDS regardless of sex.
func CategoryFor(age int, sex string) models.Category {
	if age < kidsAgeLimit {
		return models.CategoryKids
	}
	if strings.HasPrefix(strings.ToUpper(sex), "F") {
		return models.CategoryFemale
	}
	return models.CategoryMale
}

// ParsePaymentInstant parses a DD/MM/YYYY HH:MM:SS payment timestamp
// in the given location
func ParsePaymentInstant(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(paymentLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrMalformedTimestamp
	}
	return t, nil
}

// SubscriptionExpiry computes when a subscription paid at paidAt runs
// out. Unknown plans expire at the payment instant itself. Calendar
// rollover follows AddDate semantics (Nov 30 + 3 months lands in March).
func SubscriptionExpiry(plan string, paidAt time.Time) time.Time {
	switch plan {
	case models.PlanQuarterly:
		return paidAt.AddDate(0, 3, 0)
	case models.PlanAnnual:
		return paidAt.AddDate(1, 0, 0)
	default:
		return paidAt
	}
}

// SubscriptionValid reports whether the subscription is still running
// at the given instant. Validity ends exactly at the expiry instant.
func SubscriptionValid(plan string, paidAt, now time.Time) bool {
	return now.Before(SubscriptionExpiry(plan, paidAt))
}
