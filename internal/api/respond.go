package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/matzehuels/threadline/pkg/cache"
	apperrors "github.com/matzehuels/threadline/pkg/errors"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, statusFor(err, code), errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(code),
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error, code apperrors.Code) int {
	if errors.Is(err, cache.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}
	switch code {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidOrder,
		apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidRecord,
		apperrors.ErrCodeInvalidFeed,
		apperrors.ErrCodeInvalidPath,
		apperrors.ErrCodeInvalidSource,
		apperrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeSource:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
