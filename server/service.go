package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config"
	"github.com/flashbots/fee-manager/config/keyset"
	"github.com/flashbots/fee-manager/config/rcm"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/go-utils/httplogger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	pathReady   = "/ready"
	pathHealth  = "/health"
	pathMetrics = "/metrics"

	pathExecutionConfig = "/vouch/v2/execution-config/{config}"
	pathMuxKeys         = "/commit-boost/v1/mux/{name}"

	pathAdmin            = "/api/admin"
	pathDefaultConfigs   = "/vouch/configs/default"
	pathDefaultConfig    = "/vouch/configs/default/{name}"
	pathProposers        = "/vouch/proposers"
	pathProposer         = "/vouch/proposers/{public_key}"
	pathProposerPatterns = "/vouch/proposer-patterns"
	pathProposerPattern  = "/vouch/proposer-patterns/{name}"
	pathMuxConfigs       = "/commit-boost/mux"
	pathMuxConfig        = "/commit-boost/mux/{name}"
	pathMuxConfigKeys    = "/commit-boost/mux/{name}/keys"
)

// HTTPServerTimeouts are various timeouts for requests to the HTTP server
type HTTPServerTimeouts struct {
	Read       time.Duration // Timeout for body reads. None if 0.
	ReadHeader time.Duration // Timeout for header reads. None if 0.
	Write      time.Duration // Timeout for writes. None if 0.
	Idle       time.Duration // Timeout to disconnect idle client connections. None if 0.
	Shutdown   time.Duration // Timeout for the graceful shutdown.
}

// NewDefaultHTTPServerTimeouts creates server timeouts from the environment
func NewDefaultHTTPServerTimeouts() HTTPServerTimeouts {
	return HTTPServerTimeouts{
		Read:       time.Duration(config.ServerReadTimeoutMs) * time.Millisecond,
		ReadHeader: time.Duration(config.ServerReadHeaderTimeoutMs) * time.Millisecond,
		Write:      time.Duration(config.ServerWriteTimeoutMs) * time.Millisecond,
		Idle:       time.Duration(config.ServerIdleTimeoutMs) * time.Millisecond,
		Shutdown:   time.Duration(config.ServerShutdownTimeoutMs) * time.Millisecond,
	}
}

// ServiceOpts provides all available options for use with NewService
type ServiceOpts struct {
	Log        *logrus.Entry
	ListenAddr string
	Store      storage.Store

	// Audit receives one event per successful admin write. Nil disables auditing.
	Audit *audit.Logger

	AuthEnabled bool
	AuthTokens  []AuthToken

	// RateLimit is the number of public requests allowed per second. Zero disables rate limiting.
	RateLimit float64
	RateBurst int

	MetricsEnabled bool
	// Registry holds the service metrics. A new one is created if nil.
	Registry *prometheus.Registry
	// InventorySyncInterval is the refresh interval of the stored records gauges.
	InventorySyncInterval time.Duration

	Timeouts HTTPServerTimeouts
}

// Service serves the execution-config, mux and admin APIs.
type Service struct {
	listenAddr string
	log        *logrus.Entry
	srv        *http.Server

	store    storage.Store
	resolver *rcm.Resolver
	keys     *keyset.Lookup
	audit    *audit.Logger

	authEnabled bool
	authTokens  []AuthToken
	limiter     *rate.Limiter

	metricsEnabled bool
	registry       *prometheus.Registry
	httpMetrics    *InboundHTTPMetrics
	inventory      *rcm.Inventory
	syncInterval   time.Duration

	serverTimeouts HTTPServerTimeouts
	maxBodyBytes   int64
}

// NewService created a new Service
func NewService(opts ServiceOpts) (*Service, error) {
	if opts.Store == nil {
		return nil, errMissingStore
	}

	if opts.AuthEnabled && len(opts.AuthTokens) == 0 {
		return nil, errNoAuthTokens
	}
	for _, token := range opts.AuthTokens {
		if err := token.validate(); err != nil {
			return nil, err
		}
	}

	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.New())
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = int(opts.RateLimit) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	log := opts.Log.WithField("module", "service")

	return &Service{
		listenAddr: opts.ListenAddr,
		log:        log,

		store: opts.Store,
		resolver: rcm.NewResolver(opts.Store,
			rcm.ResolverWithLog(opts.Log),
			rcm.ResolverWithMetrics(rcm.NewResolverMetrics(registry))),
		keys:  keyset.NewLookup(opts.Store),
		audit: opts.Audit,

		authEnabled: opts.AuthEnabled,
		authTokens:  opts.AuthTokens,
		limiter:     limiter,

		metricsEnabled: opts.MetricsEnabled,
		registry:       registry,
		httpMetrics:    NewInboundHTTPMetrics(registry),
		inventory:      rcm.NewInventory(opts.Store, registry),
		syncInterval:   opts.InventorySyncInterval,

		serverTimeouts: opts.Timeouts,
		maxBodyBytes:   int64(config.ServerMaxBodyBytes),
	}, nil
}

func (m *Service) getRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(pathReady, m.handleReady).Methods(http.MethodGet)
	r.HandleFunc(pathHealth, m.handleHealth).Methods(http.MethodGet)
	if m.metricsEnabled {
		r.Handle(pathMetrics, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.Handle(pathExecutionConfig, m.rateLimitMiddleware(http.HandlerFunc(m.handleExecutionConfig))).Methods(http.MethodPost)
	r.Handle(pathMuxKeys, m.rateLimitMiddleware(http.HandlerFunc(m.handleMuxKeys))).Methods(http.MethodGet)

	admin := r.PathPrefix(pathAdmin).Subrouter()
	admin.HandleFunc(pathDefaultConfigs, m.handleListDefaultConfigs).Methods(http.MethodGet)
	admin.HandleFunc(pathDefaultConfigs, m.handleCreateDefaultConfig).Methods(http.MethodPost)
	admin.HandleFunc(pathDefaultConfig, m.handleGetDefaultConfig).Methods(http.MethodGet)
	admin.HandleFunc(pathDefaultConfig, m.handleUpdateDefaultConfig).Methods(http.MethodPut)
	admin.HandleFunc(pathDefaultConfig, m.handleDeleteDefaultConfig).Methods(http.MethodDelete)

	admin.HandleFunc(pathProposers, m.handleListProposers).Methods(http.MethodGet)
	admin.HandleFunc(pathProposer, m.handleGetProposer).Methods(http.MethodGet)
	admin.HandleFunc(pathProposer, m.handlePutProposer).Methods(http.MethodPut)
	admin.HandleFunc(pathProposer, m.handleDeleteProposer).Methods(http.MethodDelete)

	admin.HandleFunc(pathProposerPatterns, m.handleListProposerPatterns).Methods(http.MethodGet)
	admin.HandleFunc(pathProposerPatterns, m.handleCreateProposerPattern).Methods(http.MethodPost)
	admin.HandleFunc(pathProposerPattern, m.handleGetProposerPattern).Methods(http.MethodGet)
	admin.HandleFunc(pathProposerPattern, m.handleUpdateProposerPattern).Methods(http.MethodPut)
	admin.HandleFunc(pathProposerPattern, m.handleDeleteProposerPattern).Methods(http.MethodDelete)

	admin.HandleFunc(pathMuxConfigs, m.handleListMuxConfigs).Methods(http.MethodGet)
	admin.HandleFunc(pathMuxConfigs, m.handleCreateMuxConfig).Methods(http.MethodPost)
	admin.HandleFunc(pathMuxConfig, m.handleGetMuxConfig).Methods(http.MethodGet)
	admin.HandleFunc(pathMuxConfig, m.handleReplaceMuxConfig).Methods(http.MethodPut)
	admin.HandleFunc(pathMuxConfig, m.handleDeleteMuxConfig).Methods(http.MethodDelete)
	admin.HandleFunc(pathMuxConfigKeys, m.handleAddMuxKeys).Methods(http.MethodPost)
	admin.HandleFunc(pathMuxConfigKeys, m.handleRemoveMuxKeys).Methods(http.MethodDelete)
	admin.Use(m.authMiddleware)

	r.NotFoundHandler = http.HandlerFunc(m.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(m.handleMethodNotAllowed)

	r.Use(InboundHTTPMetricMiddleware(m.httpMetrics))

	return Chain(r, requestIDMiddleware, func(next http.Handler) http.Handler {
		return httplogger.LoggingMiddlewareLogrus(m.log, next)
	})
}

// StartHTTPServer starts the HTTP server and blocks until ctx is done or the server fails.
//
// When ctx is done the server is shut down gracefully.
func (m *Service) StartHTTPServer(ctx context.Context) error {
	if m.srv != nil {
		return errServerAlreadyRunning
	}

	m.srv = &http.Server{
		Addr:    m.listenAddr,
		Handler: m.getRouter(),

		ReadTimeout:       m.serverTimeouts.Read,
		ReadHeaderTimeout: m.serverTimeouts.ReadHeader,
		WriteTimeout:      m.serverTimeouts.Write,
		IdleTimeout:       m.serverTimeouts.Idle,
		MaxHeaderBytes:    config.ServerMaxHeaderBytes,
	}

	if m.metricsEnabled {
		syncCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go rcm.NewSyncer(m.inventory.Sync,
			rcm.SyncerWithInterval(m.syncInterval),
			rcm.SyncerWithOnSyncHandler(m.onInventorySync),
		).Run(syncCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	m.log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.serverTimeouts.Shutdown)
	defer cancel()

	if err := m.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (m *Service) onInventorySync(_ time.Time, err error) {
	if err != nil {
		m.log.WithError(err).Warn("could not refresh stored records metrics")
	}
}

func (m *Service) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := m.store.Ping(req.Context()); err != nil {
		m.log.WithError(err).Warn("store is not ready")
		m.respondJSON(w, http.StatusServiceUnavailable, APIError{Code: http.StatusServiceUnavailable, Message: "store unavailable"})
		return
	}

	m.respondOK(w, map[string]string{"status": "ready"})
}

func (m *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m.respondOK(w, map[string]string{"status": "ok", "version": config.Version})
}

func (m *Service) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	m.respondJSON(w, http.StatusNotFound, APIError{Code: http.StatusNotFound, Message: "route not found"})
}

func (m *Service) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	m.respondJSON(w, http.StatusMethodNotAllowed, APIError{Code: http.StatusMethodNotAllowed, Message: "method not allowed"})
}
