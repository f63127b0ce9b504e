package middleware

import (
	"net/http"

	apperrors "agenda/pkg/errors"
)

const (
	codeRateLimited          = "RATE_LIMITED"
	codeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	codeRequestTimeout       = "REQUEST_TIMEOUT"
	codeRequestTooLarge      = "REQUEST_TOO_LARGE"
)

func reject(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(apperrors.New(code, message, status).ToJSON())
}
