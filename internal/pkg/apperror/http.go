package apperror

import (
	"context"
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps err onto a response status. AppErrors anywhere in the chain
// win; bare context errors mean the commerce backend did not answer in time.
func ToHTTP(err error) *HTTPError {
	if err == nil {
		return &HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &HTTPError{
			Status:  http.StatusGatewayTimeout,
			Code:    CodeUpstream,
			Message: "upstream request timed out",
		}
	case errors.Is(err, context.Canceled):
		return &HTTPError{
			Status:  http.StatusRequestTimeout,
			Code:    CodeCanceled,
			Message: "request canceled",
		}
	}

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
	}
}
