package handler

import (
	"errors"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// sessionError maps a session service error to its HTTP response.
// Only internal failures carry the cause, so only they get logged.
func sessionError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return common.NewKindError(http.StatusBadRequest, "DuplicateEmail", "Email already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewKindError(http.StatusBadRequest, "InvalidCredentials", "Invalid credentials", nil)
	case errors.Is(err, service.ErrMissingToken):
		return common.NewKindError(http.StatusUnauthorized, "MissingToken", "No token", nil)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewKindError(http.StatusUnauthorized, "InvalidToken", "Invalid token", nil)
	case errors.Is(err, service.ErrUnauthenticated):
		return common.NewKindError(http.StatusUnauthorized, "Unauthenticated", "Not authenticated", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewKindError(http.StatusNotFound, "UserNotFound", "User not found", nil)
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewKindError(http.StatusBadRequest, "EmailTaken", "Email already taken", nil)
	case errors.Is(err, service.ErrNoChanges):
		return common.NewKindError(http.StatusBadRequest, "NoChanges", "No changes provided", nil)
	case errors.Is(err, service.ErrInvalidInput):
		return common.NewKindError(http.StatusBadRequest, "InvalidInput", err.Error(), nil)
	default:
		return common.NewKindError(http.StatusInternalServerError, "Internal", "Internal server error", err)
	}
}
