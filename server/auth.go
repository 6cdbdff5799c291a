package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/flashbots/fee-manager/audit"
)

// AuthToken is an admin token configured by the SHA-256 hex digest of its secret.
type AuthToken struct {
	Name string `yaml:"name"`
	Hash string `yaml:"hash"`
}

// HashToken returns the SHA-256 hex digest of token, as configured in AuthToken.Hash.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (t AuthToken) validate() error {
	b, err := hex.DecodeString(t.Hash)
	if err != nil || len(b) != sha256.Size {
		return fmt.Errorf("%w: token '%s'", ErrInvalidTokenHash, t.Name)
	}

	return nil
}

// authenticate returns the token matching the bearer token of req.
func (m *Service) authenticate(req *http.Request) (AuthToken, bool) {
	scheme, token, ok := strings.Cut(req.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return AuthToken{}, false
	}

	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))

	var (
		found AuthToken
		match int
	)
	for _, t := range m.authTokens {
		want, err := hex.DecodeString(t.Hash)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare(sum[:], want) == 1 {
			found, match = t, 1
		}
	}

	return found, match == 1
}

func (m *Service) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !m.authEnabled {
			next.ServeHTTP(w, req)
			return
		}

		token, ok := m.authenticate(req)
		if !ok {
			m.respondJSON(w, apiErrUnauthorized.Code, apiErrUnauthorized)
			return
		}

		ctx := audit.WithActor(req.Context(), audit.Actor{TokenName: token.Name})
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
