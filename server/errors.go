package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flashbots/fee-manager/config/keyset"
	"github.com/flashbots/fee-manager/config/rcm"
	"github.com/flashbots/fee-manager/storage"
)

var (
	errServerAlreadyRunning = errors.New("server already running")
	errMissingStore         = errors.New("store is required")
	errNoAuthTokens         = errors.New("auth is enabled but no tokens are configured")

	// ErrInvalidTokenHash is returned if a configured token hash is not a hex SHA-256 digest.
	ErrInvalidTokenHash = errors.New("invalid token hash")

	errMalformedBody  = errors.New("malformed request body")
	errMalformedQuery = errors.New("malformed query")
)

// APIError is the error response of every endpoint.
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

var (
	apiErrUnauthorized = APIError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	apiErrRateLimited  = APIError{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"}
	apiErrInternal     = APIError{Code: http.StatusInternalServerError, Message: "internal server error"}
)

// toAPIError maps err to the response sent to the client. Unknown errors become a generic 500.
func toAPIError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var notFound *rcm.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return APIError{Code: http.StatusNotFound, Message: notFound.Error()}
	case errors.Is(err, keyset.ErrMuxConfigNotFound),
		errors.Is(err, storage.ErrNotFound):
		return APIError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, storage.ErrAlreadyExists):
		return APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, errMalformedBody),
		errors.Is(err, errMalformedQuery):
		return APIError{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		return apiErrInternal
	}
}
