// Package storage defines the persisted fee configuration model and the store
// interfaces used by the resolver and the admin API.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ExecutionConfigSource is the read side used to resolve execution configs.
type ExecutionConfigSource interface {
	// ActiveDefaultConfig returns the named default config if it is active.
	ActiveDefaultConfig(ctx context.Context, name string) (DefaultConfig, error)
	// ProposersByKeys returns the proposers stored for keys, in no particular order.
	ProposersByKeys(ctx context.Context, keys []string) ([]Proposer, error)
	// ProposerPatternsByTags returns the patterns carrying any of tags, ordered by name.
	ProposerPatternsByTags(ctx context.Context, tags []string) ([]ProposerPattern, error)
}

type DefaultConfigs interface {
	ListDefaultConfigs(ctx context.Context, filter DefaultConfigFilter) ([]DefaultConfig, int, error)
	GetDefaultConfig(ctx context.Context, name string) (DefaultConfig, error)
	CreateDefaultConfig(ctx context.Context, cfg DefaultConfig) (DefaultConfig, error)
	UpdateDefaultConfig(ctx context.Context, cfg DefaultConfig) (DefaultConfig, error)
	DeleteDefaultConfig(ctx context.Context, name string) error
}

type Proposers interface {
	ListProposers(ctx context.Context, filter ProposerFilter) ([]Proposer, int, error)
	GetProposer(ctx context.Context, publicKey string) (Proposer, error)
	// PutProposer creates or replaces a proposer and reports whether it was created.
	PutProposer(ctx context.Context, p Proposer) (Proposer, bool, error)
	DeleteProposer(ctx context.Context, publicKey string) error
}

type ProposerPatterns interface {
	ListProposerPatterns(ctx context.Context, filter ProposerPatternFilter) ([]ProposerPattern, int, error)
	GetProposerPattern(ctx context.Context, name string) (ProposerPattern, error)
	CreateProposerPattern(ctx context.Context, p ProposerPattern) (ProposerPattern, error)
	UpdateProposerPattern(ctx context.Context, p ProposerPattern) (ProposerPattern, error)
	DeleteProposerPattern(ctx context.Context, name string) error
}

type MuxConfigs interface {
	ListMuxConfigs(ctx context.Context, filter MuxConfigFilter) ([]MuxConfigSummary, int, error)
	GetMuxConfig(ctx context.Context, name string) (MuxConfig, error)
	CreateMuxConfig(ctx context.Context, cfg MuxConfig) (MuxConfig, error)
	// ReplaceMuxKeys replaces the whole key set of a mux config.
	ReplaceMuxKeys(ctx context.Context, name string, keys []string) (MuxConfig, error)
	DeleteMuxConfig(ctx context.Context, name string) error
	// AddMuxKeys adds keys not yet present and returns the number added and the new total.
	AddMuxKeys(ctx context.Context, name string, keys []string) (int, int, error)
	// RemoveMuxKeys removes keys and returns the number removed and the new total.
	RemoveMuxKeys(ctx context.Context, name string, keys []string) (int, int, error)
}

// Store is the complete persistence layer.
type Store interface {
	ExecutionConfigSource
	DefaultConfigs
	Proposers
	ProposerPatterns
	MuxConfigs

	Ping(ctx context.Context) error
	Close() error
}
