package services

// DenialCode identifies why a check-in attempt was refused. Every code
// is an expected, caller-recoverable outcome rather than a fault.
type DenialCode string

const (
	DenialMissingToken            DenialCode = "missing_token"
	DenialInvalidToken            DenialCode = "invalid_token"
	DenialExpiredToken            DenialCode = "expired_token"
	DenialUnknownUser             DenialCode = "unknown_user"
	DenialScheduleNotFound        DenialCode = "schedule_not_found"
	DenialNoActiveSession         DenialCode = "no_active_session"
	DenialDisciplineNotSubscribed DenialCode = "discipline_not_subscribed"
	DenialDisciplineForbidden     DenialCode = "discipline_forbidden"
	DenialSubscriptionExpired     DenialCode = "subscription_expired"
	DenialDuplicateCheckIn        DenialCode = "duplicate_checkin"
	DenialMalformedTimestamp      DenialCode = "malformed_timestamp"
)

// CheckInError is a refused check-in attempt. The code drives the
// transport-level status; the message is safe to show to the caller.
type CheckInError struct {
	Code    DenialCode
	Message string
}

func (e *CheckInError) Error() string {
	return e.Message
}

func denied(code DenialCode, message string) *CheckInError {
	return &CheckInError{Code: code, Message: message}
}
