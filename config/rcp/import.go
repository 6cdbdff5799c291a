package rcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/sirupsen/logrus"
)

// SeedStore is the part of the store a seed is imported into.
type SeedStore interface {
	storage.DefaultConfigs
	storage.Proposers
	storage.ProposerPatterns
	storage.MuxConfigs
}

// ImportCounts holds the number of records created and updated for one resource.
type ImportCounts struct {
	Created int
	Updated int
}

func (c *ImportCounts) add(created bool) {
	if created {
		c.Created++
		return
	}
	c.Updated++
}

type ImportResult struct {
	DefaultConfigs   ImportCounts
	Proposers        ImportCounts
	ProposerPatterns ImportCounts
	MuxConfigs       ImportCounts
}

// Import validates every record of seed and then writes them to store.
//
// Missing records are created. Existing default configs and proposer patterns are updated with the fields set in
// the seed, proposers are replaced and mux configs get their key set replaced.
// Nothing is written if any record is invalid.
func Import(ctx context.Context, log *logrus.Entry, store SeedStore, seed *dto.Seed) (ImportResult, error) {
	if err := validateSeed(seed); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	log = log.WithField("module", "rcp")

	for _, req := range seed.DefaultConfigs {
		created, err := importDefaultConfig(ctx, store, req)
		if err != nil {
			return res, fmt.Errorf("default config '%s': %w", req.Name, err)
		}
		res.DefaultConfigs.add(created)
	}

	for _, req := range seed.Proposers {
		p, err := storage.NewProposer(req.PublicKey, req.ProposerRequest)
		if err != nil {
			return res, fmt.Errorf("proposer '%s': %w", req.PublicKey, err)
		}

		_, created, err := store.PutProposer(ctx, p)
		if err != nil {
			return res, fmt.Errorf("proposer '%s': %w", req.PublicKey, err)
		}
		res.Proposers.add(created)
	}

	for _, req := range seed.ProposerPatterns {
		created, err := importProposerPattern(ctx, store, req)
		if err != nil {
			return res, fmt.Errorf("proposer pattern '%s': %w", req.Name, err)
		}
		res.ProposerPatterns.add(created)
	}

	for _, req := range seed.MuxConfigs {
		created, err := importMuxConfig(ctx, store, req)
		if err != nil {
			return res, fmt.Errorf("mux config '%s': %w", req.Name, err)
		}
		res.MuxConfigs.add(created)
	}

	log.WithFields(logrus.Fields{
		"defaultConfigs":   res.DefaultConfigs,
		"proposers":        res.Proposers,
		"proposerPatterns": res.ProposerPatterns,
		"muxConfigs":       res.MuxConfigs,
	}).Info("imported seed")

	return res, nil
}

func validateSeed(seed *dto.Seed) error {
	var errs []error

	for _, req := range seed.DefaultConfigs {
		if _, err := storage.NewDefaultConfig(req); err != nil {
			errs = append(errs, fmt.Errorf("default config '%s': %w", req.Name, err))
		}
	}

	for _, req := range seed.Proposers {
		if _, err := storage.NewProposer(req.PublicKey, req.ProposerRequest); err != nil {
			errs = append(errs, fmt.Errorf("proposer '%s': %w", req.PublicKey, err))
		}
	}

	for _, req := range seed.ProposerPatterns {
		if _, err := storage.NewProposerPattern(req); err != nil {
			errs = append(errs, fmt.Errorf("proposer pattern '%s': %w", req.Name, err))
		}
	}

	for _, req := range seed.MuxConfigs {
		if _, err := storage.NewMuxConfig(req); err != nil {
			errs = append(errs, fmt.Errorf("mux config '%s': %w", req.Name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMalformedSeed, errors.Join(errs...))
	}

	return nil
}

func importDefaultConfig(ctx context.Context, store SeedStore, req dto.DefaultConfigRequest) (bool, error) {
	cfg, err := storage.NewDefaultConfig(req)
	if err != nil {
		return false, err
	}

	existing, err := store.GetDefaultConfig(ctx, cfg.Name)
	if errors.Is(err, storage.ErrNotFound) {
		_, err = store.CreateDefaultConfig(ctx, cfg)
		return true, err
	}
	if err != nil {
		return false, err
	}

	if cfg, err = existing.Apply(req); err != nil {
		return false, err
	}

	_, err = store.UpdateDefaultConfig(ctx, cfg)

	return false, err
}

func importProposerPattern(ctx context.Context, store SeedStore, req dto.ProposerPatternRequest) (bool, error) {
	p, err := storage.NewProposerPattern(req)
	if err != nil {
		return false, err
	}

	existing, err := store.GetProposerPattern(ctx, p.Name)
	if errors.Is(err, storage.ErrNotFound) {
		_, err = store.CreateProposerPattern(ctx, p)
		return true, err
	}
	if err != nil {
		return false, err
	}

	if p, err = existing.Apply(req); err != nil {
		return false, err
	}

	_, err = store.UpdateProposerPattern(ctx, p)

	return false, err
}

func importMuxConfig(ctx context.Context, store SeedStore, req dto.MuxConfigRequest) (bool, error) {
	cfg, err := storage.NewMuxConfig(req)
	if err != nil {
		return false, err
	}

	_, err = store.GetMuxConfig(ctx, cfg.Name)
	if errors.Is(err, storage.ErrNotFound) {
		_, err = store.CreateMuxConfig(ctx, cfg)
		return true, err
	}
	if err != nil {
		return false, err
	}

	_, err = store.ReplaceMuxKeys(ctx, cfg.Name, cfg.Keys)

	return false, err
}
