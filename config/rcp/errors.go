package rcp

import (
	"errors"
	"fmt"
)

type Error struct {
	Cause   error
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}

var (
	ErrCannotFetchConfig     = errors.New("cannot fetch config")
	ErrHTTPRequestFailed     = errors.New("http request failed")
	ErrMalformedProviderURL  = errors.New("malformed config provider url")
	ErrMalformedResponseBody = errors.New("malformed response body")
	ErrMalformedSeed         = errors.New("malformed seed")
)

// APIError is an error response of the service.
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("api error: %d: %s", e.Code, e.Message)
}

func (e APIError) Unwrap() error {
	return ErrCannotFetchConfig
}
