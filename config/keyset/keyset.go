// Package keyset serves the named validator key sets consumed by the Commit-Boost mux.
package keyset

import (
	"context"
	"errors"
	"fmt"

	"github.com/flashbots/fee-manager/storage"
)

var ErrMuxConfigNotFound = errors.New("mux config not found")

// Source returns a stored mux config by name.
type Source interface {
	GetMuxConfig(ctx context.Context, name string) (storage.MuxConfig, error)
}

type Lookup struct {
	source Source
}

func NewLookup(source Source) *Lookup {
	if source == nil {
		panic("source is required and cannot be nil")
	}

	return &Lookup{source: source}
}

// Keys returns the keys of the named mux config in insertion order.
func (l *Lookup) Keys(ctx context.Context, name string) ([]string, error) {
	cfg, err := l.source.GetMuxConfig(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMuxConfigNotFound, name)
		}

		return nil, fmt.Errorf("get mux config: %w", err)
	}

	if cfg.Keys == nil {
		return []string{}, nil
	}

	return cfg.Keys, nil
}
