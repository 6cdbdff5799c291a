package rcm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flashbots/fee-manager/config/pattern"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ResolverConfig holds resolver options.
type ResolverConfig struct {
	log     *logrus.Entry
	metrics *ResolverMetrics
}

// ResolverOption is a resolver option.
type ResolverOption = func(cfg *ResolverConfig)

// ResolverWithLog specifies the logger.
func ResolverWithLog(log *logrus.Entry) ResolverOption {
	return func(cfg *ResolverConfig) {
		cfg.log = log
	}
}

// ResolverWithMetrics specifies the metrics to record resolutions in.
func ResolverWithMetrics(m *ResolverMetrics) ResolverOption {
	return func(cfg *ResolverConfig) {
		cfg.metrics = m
	}
}

// Resolver builds execution configs from an execution config source.
type Resolver struct {
	source  storage.ExecutionConfigSource
	log     *logrus.Entry
	metrics *ResolverMetrics
}

// NewResolver creates a new instance of Resolver.
//
// It panics if no source is passed.
// If no logger is passed, log output is discarded.
func NewResolver(source storage.ExecutionConfigSource, opt ...ResolverOption) *Resolver {
	if source == nil {
		panic("source is required and cannot be nil")
	}

	cfg := &ResolverConfig{}
	for _, o := range opt {
		o(cfg)
	}

	if cfg.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.log = logrus.NewEntry(l)
	}

	return &Resolver{
		source:  source,
		log:     cfg.log.WithField("module", "rcm"),
		metrics: cfg.metrics,
	}
}

// Resolve returns the execution config of the default config name for the given keys and tags.
//
// It returns a *NotFoundError wrapping ErrDefaultConfigNotFound if the default config does not exist or is inactive.
// Any other source failure is wrapped with ErrStorage and no partial result is returned.
func (r *Resolver) Resolve(ctx context.Context, name string, keys, tags []string) (*dto.ExecutionConfig, error) {
	defaults, err := r.source.ActiveDefaultConfig(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = &NotFoundError{Name: name}
		} else {
			err = fmt.Errorf("%w: default config: %w", ErrStorage, err)
		}
		r.metrics.observe(0, 0, err)

		return nil, err
	}

	keys = normalizeKeys(keys)
	tags = pattern.NormalizeTags(tags)

	var (
		proposers []storage.Proposer
		patterns  []storage.ProposerPattern
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(keys) == 0 {
			return nil
		}

		var err error
		if proposers, err = r.source.ProposersByKeys(gctx, keys); err != nil {
			return fmt.Errorf("%w: proposers: %w", ErrStorage, err)
		}

		return nil
	})
	g.Go(func() error {
		if len(tags) == 0 {
			return nil
		}

		candidates, err := r.source.ProposerPatternsByTags(gctx, tags)
		if err != nil {
			return fmt.Errorf("%w: proposer patterns: %w", ErrStorage, err)
		}
		patterns = pattern.MatchTags(candidates, tags)

		return nil
	})

	if err := g.Wait(); err != nil {
		r.log.WithError(err).WithField("config", name).Error("could not resolve execution config")
		r.metrics.observe(0, 0, err)

		return nil, err
	}

	cfg := assemble(defaults, keys, proposers, patterns)
	r.metrics.observe(len(cfg.Proposers)-len(patterns), len(patterns), nil)

	r.log.WithFields(logrus.Fields{
		"config":    name,
		"keys":      len(keys),
		"tags":      tags,
		"proposers": len(cfg.Proposers),
	}).Debug("resolved execution config")

	return cfg, nil
}

func assemble(defaults storage.DefaultConfig, keys []string, proposers []storage.Proposer, patterns []storage.ProposerPattern) *dto.ExecutionConfig {
	base := defaults.Record()
	cfg := base.Defaults()

	byKey := make(map[string]storage.Proposer, len(proposers))
	for _, p := range proposers {
		byKey[p.PublicKey] = p
	}

	entries := make([]dto.ProposerEntry, 0, len(proposers)+len(patterns))
	for _, key := range keys {
		if p, ok := byKey[key]; ok {
			entries = append(entries, p.Project(p.PublicKey, base.Relays))
		}
	}

	for _, p := range patterns {
		entries = append(entries, p.Project(p.Pattern, base.Relays))
	}

	if len(entries) > 0 {
		cfg.Proposers = entries
	}

	return &cfg
}

// normalizeKeys lowercases keys and drops blanks and repeats, keeping the first occurrence.
func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))

	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}
