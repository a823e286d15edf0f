package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/drillsched/internal/api/shared"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/service/activity"
	"github.com/phrazzld/drillsched/internal/service/auth"
	"github.com/phrazzld/drillsched/internal/service/practice"
	"github.com/phrazzld/drillsched/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrDrillNotFound),
		errors.Is(err, store.ErrPracticeNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidReps),
		errors.Is(err, domain.ErrNotesTooLong),
		errors.Is(err, practice.ErrInvalidWindow),
		errors.Is(err, activity.ErrInvalidWindow),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrDrillNotFound):
		return "Drill not found"

	case errors.Is(err, store.ErrPracticeNotFound):
		return "Practice record not found"

	case errors.Is(err, domain.ErrInvalidQuality):
		return "Quality must be an integer between 0 and 5"

	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date, expected YYYY-MM-DD"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid drill ID format"

	case errors.Is(err, domain.ErrInvalidReps):
		return "Reps must be a positive integer"

	case errors.Is(err, domain.ErrNotesTooLong):
		return "Notes must be at most 1000 characters"

	case errors.Is(err, practice.ErrInvalidWindow):
		return "Invalid forecast window"

	case errors.Is(err, activity.ErrInvalidWindow):
		return "Invalid activity window"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
