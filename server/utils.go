package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/sirupsen/logrus"
)

// DecodeJSON reads JSON from io.Reader and decodes it into a struct
func DecodeJSON(r io.Reader, dst any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

// decodeBody decodes the request body into dst, reporting any failure as a malformed body.
func (m *Service) decodeBody(w http.ResponseWriter, req *http.Request, dst any) error {
	body := http.MaxBytesReader(w, req.Body, m.maxBodyBytes)
	if err := DecodeJSON(body, dst); err != nil {
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}

	return nil
}

func (m *Service) respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.log.WithError(err).Error("could not write response")
	}
}

func (m *Service) respondOK(w http.ResponseWriter, v any) {
	m.respondJSON(w, http.StatusOK, v)
}

// respondError writes the APIError of err. Internal errors are logged with their cause.
func (m *Service) respondError(w http.ResponseWriter, log *logrus.Entry, err error) {
	apiErr := toAPIError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	} else {
		log.WithError(err).Debug("request rejected")
	}

	m.respondJSON(w, apiErr.Code, apiErr)
}

// requestLog returns the service log with the fields identifying req.
func (m *Service) requestLog(req *http.Request) *logrus.Entry {
	return m.log.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"request_id": audit.RequestID(req.Context()),
	})
}
