package autherrors

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/pkg/apperror"
)

var (
	ErrAuthenticationFailed = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid email or password",
		http.StatusUnauthorized,
	)

	ErrAuthUnavailable = apperror.New(
		apperror.CodeUpstream,
		"Sign-in is temporarily unavailable, please try again",
		http.StatusServiceUnavailable,
	)

	ErrSessionRequired = apperror.New(
		apperror.CodeUnauthorized,
		"Please sign in to continue",
		http.StatusUnauthorized,
	)

	ErrAdminRequired = apperror.New(
		apperror.CodeForbidden,
		"Administrator access required",
		http.StatusForbidden,
	)

	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid authentication token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Authentication token expired",
		http.StatusUnauthorized,
	)

	// ErrCorruptPersistedState is only logged; a malformed session record is
	// purged and the visitor is treated as signed out.
	ErrCorruptPersistedState = apperror.New(
		apperror.CodeInvalidState,
		"Persisted session record is malformed",
		http.StatusInternalServerError,
	)

	ErrTooManyRequests = apperror.New(
		"TOO_MANY_REQUESTS",
		"Too many requests, please slow down",
		http.StatusTooManyRequests,
	)
)
