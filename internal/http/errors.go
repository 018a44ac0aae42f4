package httpx

import (
	"net/http"

	apperrors "github.com/target/jobwatch/internal/errors"
)

// WriteAppError renders a service error as a JSON error response, mapping
// application error codes to HTTP status codes.
func WriteAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errCode := "internal_error"

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
		errCode = "not_found"
	case apperrors.ErrCodeValidation:
		status = http.StatusBadRequest
		errCode = "validation_error"
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		status = http.StatusConflict
		errCode = "conflict"
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
		errCode = "timeout"
	case apperrors.ErrCodeCanceled:
		status = http.StatusServiceUnavailable
		errCode = "canceled"
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: errCode, Err: err})
}
