package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcp"
	"github.com/flashbots/fee-manager/storage/sqlstore"
	"github.com/flashbots/fee-manager/storage/sqlstore/storetest"
	"github.com/flashbots/fee-manager/testdata"
	"github.com/stretchr/testify/require"
)

// testLog is used to log information in the test methods
var testLog = storetest.TestLog()

const testAdminToken = "s3cr3t-admin-token"

type testBackend struct {
	service *Service
	store   *sqlstore.Store
	audit   *bytes.Buffer
}

type backendOption func(opts *ServiceOpts)

func withAuth() backendOption {
	return func(opts *ServiceOpts) {
		opts.AuthEnabled = true
		opts.AuthTokens = []AuthToken{{Name: "ops", Hash: HashToken(testAdminToken)}}
	}
}

func withRateLimit(limit float64, burst int) backendOption {
	return func(opts *ServiceOpts) {
		opts.RateLimit = limit
		opts.RateBurst = burst
	}
}

// newTestBackend creates a service backed by a private in-memory store.
func newTestBackend(tb testing.TB, opt ...backendOption) *testBackend {
	tb.Helper()

	store := storetest.NewStore(tb)
	buf := new(bytes.Buffer)

	opts := ServiceOpts{
		Log:            testLog,
		ListenAddr:     "localhost:0",
		Store:          store,
		Audit:          audit.NewWithWriter(buf),
		MetricsEnabled: true,
		Timeouts:       HTTPServerTimeouts{Shutdown: time.Second},
	}
	for _, o := range opt {
		o(&opts)
	}

	service, err := NewService(opts)
	require.NoError(tb, err)

	return &testBackend{service: service, store: store, audit: buf}
}

// seed imports the records of testdata/valid-seed.json.
func (be *testBackend) seed(t *testing.T) {
	t.Helper()

	_, err := rcp.Import(context.Background(), testLog, be.store, testdata.ValidSeed(t))
	require.NoError(t, err)
}

// request serves a request through the router. A string payload is sent as the raw body,
// any other non-nil payload is JSON encoded. headers are name/value pairs.
func (be *testBackend) request(tb testing.TB, method, path string, payload any, headers ...string) *httptest.ResponseRecorder {
	tb.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		b, err := json.Marshal(p)
		require.NoError(tb, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	be.service.getRouter().ServeHTTP(rr, req)

	return rr
}

// admin is request with the admin bearer token.
func (be *testBackend) admin(tb testing.TB, method, path string, payload any) *httptest.ResponseRecorder {
	tb.Helper()

	return be.request(tb, method, pathAdmin+path, payload, "Authorization", "Bearer "+testAdminToken)
}

// auditEvents returns the audit events written so far.
func (be *testBackend) auditEvents(tb testing.TB) []map[string]any {
	tb.Helper()

	var events []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(be.audit.Bytes()))
	for scanner.Scan() {
		var ev map[string]any
		require.NoError(tb, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(tb, scanner.Err())

	return events
}

func decodeResponse[T any](tb testing.TB, rr *httptest.ResponseRecorder) T {
	tb.Helper()

	var v T
	require.NoError(tb, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())

	return v
}

func requireStatus(tb testing.TB, rr *httptest.ResponseRecorder, code int) {
	tb.Helper()

	require.Equal(tb, code, rr.Code, rr.Body.String())
}

func errorMessage(tb testing.TB, rr *httptest.ResponseRecorder) string {
	tb.Helper()

	require.Equal(tb, "application/json", rr.Header().Get("Content-Type"))

	return decodeResponse[APIError](tb, rr).Message
}
