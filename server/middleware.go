package server

import (
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// requestIDMiddleware keeps a valid X-Request-Id of the request or generates one, and echoes it in the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id, err := uuid.Parse(req.Header.Get(headerRequestID))
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(headerRequestID, id.String())
		next.ServeHTTP(w, req.WithContext(audit.WithRequestID(req.Context(), id.String())))
	})
}

func (m *Service) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if m.limiter != nil && !m.limiter.Allow() {
			m.respondJSON(w, apiErrRateLimited.Code, apiErrRateLimited)
			return
		}

		next.ServeHTTP(w, req)
	})
}
