package rcm

import (
	"context"
	"time"
)

// DefaultSyncTime is the default sync time.
// It equals to half an epoch.
// Every epoch has 32 slots each of which lasts 12 seconds.
const DefaultSyncTime = 32 * 12 / 2 * time.Second

// SyncFunc is the job run on every synchronisation call.
type SyncFunc = func(ctx context.Context) error

// OnSyncHandler an even handler which is invoked on every synchronisation call.
type OnSyncHandler = func(t time.Time, err error)

// NopSyncHandler the default sync handler which does nothing.
func NopSyncHandler(_ time.Time, _ error) {}

// SyncConfig holds synchronisation options.
type SyncConfig struct {
	interval      time.Duration
	onSyncHandler OnSyncHandler
}

// SyncOption is a synchronisation option.
type SyncOption = func(cfg *SyncConfig)

// SyncerWithOnSyncHandler specifies an OnSyncHandler.
func SyncerWithOnSyncHandler(h OnSyncHandler) SyncOption {
	return func(cfg *SyncConfig) {
		cfg.onSyncHandler = h
	}
}

// SyncerWithInterval specifies synchronisation interval.
func SyncerWithInterval(d time.Duration) SyncOption {
	return func(cfg *SyncConfig) {
		cfg.interval = d
	}
}

// Syncer runs a SyncFunc periodically.
type Syncer struct {
	sync          SyncFunc
	interval      time.Duration
	onSyncHandler OnSyncHandler
}

// NewSyncer creates a new instance of Syncer.
//
// It panics if no sync func is passed.
// If no interval option is passed, then the DefaultSyncTime will be used.
func NewSyncer(sync SyncFunc, opt ...SyncOption) *Syncer {
	if sync == nil {
		panic("sync func is required and cannot be nil")
	}

	cfg := &SyncConfig{}
	for _, o := range opt {
		o(cfg)
	}

	if cfg.interval < 1 {
		cfg.interval = DefaultSyncTime
	}

	if cfg.onSyncHandler == nil {
		cfg.onSyncHandler = NopSyncHandler
	}

	return &Syncer{
		sync:          sync,
		interval:      cfg.interval,
		onSyncHandler: cfg.onSyncHandler,
	}
}

// Run runs the sync func once and then every interval until the context is done.
//
// It blocks until the context is done.
func (s *Syncer) Run(ctx context.Context) {
	s.onSyncHandler(time.Now(), s.sync(ctx))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.onSyncHandler(t, s.sync(ctx))
		}
	}
}
