package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceErrors(t *testing.T) {
	t.Parallel()

	t.Run("it requires a store", func(t *testing.T) {
		t.Parallel()

		_, err := NewService(ServiceOpts{Log: testLog})

		require.ErrorIs(t, err, errMissingStore)
	})

	t.Run("it requires tokens when auth is enabled", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)
		_, err := NewService(ServiceOpts{Log: testLog, Store: be.store, AuthEnabled: true})

		require.ErrorIs(t, err, errNoAuthTokens)
	})

	t.Run("it rejects a malformed token hash", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)
		_, err := NewService(ServiceOpts{
			Log:         testLog,
			Store:       be.store,
			AuthEnabled: true,
			AuthTokens:  []AuthToken{{Name: "ops", Hash: "not-a-digest"}},
		})

		require.ErrorIs(t, err, ErrInvalidTokenHash)
	})
}

func TestWebserver(t *testing.T) {
	t.Parallel()

	t.Run("it errors when the webserver is already running", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)
		be.service.srv = &http.Server{}

		err := be.service.StartHTTPServer(context.Background())

		require.ErrorIs(t, err, errServerAlreadyRunning)
	})

	t.Run("it errors on an invalid listen address", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)
		be.service.listenAddr = "localhost:876543"

		err := be.service.StartHTTPServer(context.Background())

		require.Error(t, err)
	})

	t.Run("it shuts down when the context is done", func(t *testing.T) {
		t.Parallel()

		// arrange
		be := newTestBackend(t)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- be.service.StartHTTPServer(ctx)
		}()

		// act
		time.Sleep(50 * time.Millisecond)
		cancel()

		// assert
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("it reports health with the version", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, pathHealth, nil)

		requireStatus(t, rr, http.StatusOK)
		got := decodeResponse[map[string]string](t, rr)
		assert.Equal(t, "ok", got["status"])
		assert.NotEmpty(t, got["version"])
	})

	t.Run("it is ready when the store answers", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, pathReady, nil)

		requireStatus(t, rr, http.StatusOK)
	})

	t.Run("it is not ready when the store is closed", func(t *testing.T) {
		t.Parallel()

		// arrange
		be := newTestBackend(t)
		require.NoError(t, be.store.Close())

		// act
		rr := be.request(t, http.MethodGet, pathReady, nil)

		// assert
		requireStatus(t, rr, http.StatusServiceUnavailable)
		assert.Equal(t, "store unavailable", errorMessage(t, rr))
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("it answers unknown routes with a json error", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, "/unknown", nil)

		requireStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "route not found", errorMessage(t, rr))
	})

	t.Run("it answers a wrong method with a json error", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, "/vouch/v2/execution-config/main", nil)

		requireStatus(t, rr, http.StatusMethodNotAllowed)
		assert.Equal(t, "method not allowed", errorMessage(t, rr))
	})

	t.Run("it generates a request id", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, pathHealth, nil)

		_, err := uuid.Parse(rr.Header().Get(headerRequestID))
		require.NoError(t, err)
	})

	t.Run("it keeps a valid request id", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)
		id := uuid.NewString()

		rr := be.request(t, http.MethodGet, pathHealth, nil, headerRequestID, id)

		assert.Equal(t, id, rr.Header().Get(headerRequestID))
	})

	t.Run("it replaces an invalid request id", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t)

		rr := be.request(t, http.MethodGet, pathHealth, nil, headerRequestID, "<script>")

		assert.NotEqual(t, "<script>", rr.Header().Get(headerRequestID))
	})

	t.Run("it exports http metrics by route template", func(t *testing.T) {
		t.Parallel()

		// arrange
		be := newTestBackend(t)
		be.request(t, http.MethodGet, "/commit-boost/v1/mux/unknown", nil)

		// act
		rr := be.request(t, http.MethodGet, pathMetrics, nil)

		// assert
		requireStatus(t, rr, http.StatusOK)
		body := rr.Body.String()
		assert.True(t, strings.Contains(body,
			`fee_manager_inbound_http_requests_total{code="404",method="GET",path="/commit-boost/v1/mux/{name}"} 1`), body)
	})

	t.Run("it hides metrics when disabled", func(t *testing.T) {
		t.Parallel()

		be := newTestBackend(t, func(opts *ServiceOpts) { opts.MetricsEnabled = false })

		rr := be.request(t, http.MethodGet, pathMetrics, nil)

		requireStatus(t, rr, http.StatusNotFound)
	})
}
