package booking

import (
	"fmt"

	"schedly/models"
)

// ErrorCode classifies expected business-rule failures. These are returned
// as values, never panicked or treated as infrastructure errors.
type ErrorCode string

const (
	CodeNotFound          ErrorCode = "not_found"
	CodeValidation        ErrorCode = "validation_error"
	CodeClosedDay         ErrorCode = "closed_day"
	CodeOutOfHours        ErrorCode = "out_of_hours"
	CodeConflict          ErrorCode = "conflict"
	CodePastTime          ErrorCode = "past_time"
	CodeAdvanceWindow     ErrorCode = "advance_window_exceeded"
	CodeInvalidTransition ErrorCode = "invalid_state_transition"
	CodeSeriesUnavailable ErrorCode = "series_partially_unavailable"
)

// Error is a structured booking failure. Conflicts carries the overlapping
// interval(s) when the code is CodeConflict or CodeSeriesUnavailable, so a
// caller can explain why a slot or series failed, not just that it did.
type Error struct {
	Code      ErrorCode             `json:"code"`
	Message   string                `json:"message"`
	Conflicts []models.ConflictInfo `json:"conflicts,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
