package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flashbots/fee-manager/config/override"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
	"github.com/jmoiron/sqlx"
)

const selectProposerPatterns = `SELECT p.name, p.pattern, p.fee_recipient, p.gas_limit, p.min_value, p.reset_relays, p.created_at, p.updated_at FROM vouch_proposer_patterns p`

func (r proposerPatternRow) model(tags []string, relays relay.Set) storage.ProposerPattern {
	if tags == nil {
		tags = []string{}
	}
	if relays == nil {
		relays = relay.NewRelaySet()
	}

	return storage.ProposerPattern{
		Name:    r.Name,
		Pattern: r.Pattern,
		Tags:    tags,
		Record: override.Record{
			FeeRecipient: types.FromPtr(r.FeeRecipient),
			GasLimit:     types.FromPtr(r.GasLimit),
			MinValue:     types.FromPtr(r.MinValue),
			ResetRelays:  r.ResetRelays,
			Relays:       relays,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func errProposerPatternNotFound(name string) error {
	return fmt.Errorf("proposer pattern '%s': %w", name, storage.ErrNotFound)
}

// patternsWithDetails loads tags and relays of rows, keeping the row order.
func patternsWithDetails(ctx context.Context, q queryer, rows []proposerPatternRow) ([]storage.ProposerPattern, error) {
	if len(rows) == 0 {
		return []storage.ProposerPattern{}, nil
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}

	query, args, err := sqlx.In(`SELECT pattern_name, tag FROM vouch_proposer_pattern_tags WHERE pattern_name IN (?) ORDER BY pattern_name, position`, names)
	if err != nil {
		return nil, err
	}

	var tagRows []tagRow
	if err := sqlx.SelectContext(ctx, q, &tagRows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select pattern tags: %w", err)
	}

	tags := make(map[string][]string, len(rows))
	for _, t := range tagRows {
		tags[t.PatternName] = append(tags[t.PatternName], t.Tag)
	}

	relays, err := patternRelays.load(ctx, q, names)
	if err != nil {
		return nil, err
	}

	patterns := make([]storage.ProposerPattern, 0, len(rows))
	for _, r := range rows {
		patterns = append(patterns, r.model(tags[r.Name], relays[r.Name]))
	}

	return patterns, nil
}

func (s *Store) ProposerPatternsByTags(ctx context.Context, tags []string) ([]storage.ProposerPattern, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(selectProposerPatterns+
		` WHERE EXISTS (SELECT 1 FROM vouch_proposer_pattern_tags t WHERE t.pattern_name = p.name AND t.tag IN (?)) ORDER BY p.name`, tags)
	if err != nil {
		return nil, err
	}

	var rows []proposerPatternRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select proposer patterns: %w", err)
	}

	return patternsWithDetails(ctx, s.db, rows)
}

func (s *Store) GetProposerPattern(ctx context.Context, name string) (storage.ProposerPattern, error) {
	return getProposerPattern(ctx, s.db, name)
}

func getProposerPattern(ctx context.Context, q queryer, name string) (storage.ProposerPattern, error) {
	var row proposerPatternRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(selectProposerPatterns+` WHERE p.name = ?`), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProposerPattern{}, errProposerPatternNotFound(name)
		}
		return storage.ProposerPattern{}, fmt.Errorf("select proposer pattern: %w", err)
	}

	patterns, err := patternsWithDetails(ctx, q, []proposerPatternRow{row})
	if err != nil {
		return storage.ProposerPattern{}, err
	}

	return patterns[0], nil
}

func (s *Store) ListProposerPatterns(ctx context.Context, filter storage.ProposerPatternFilter) ([]storage.ProposerPattern, int, error) {
	page := filter.Page.Normalize()

	var w where
	w.prefix("p.name", filter.Name)
	w.contains("p.pattern", filter.Pattern)
	w.equal("p.fee_recipient", filter.FeeRecipient)
	w.equal("p.gas_limit", filter.GasLimit)
	w.equal("p.min_value", filter.MinValue)
	w.equalBool("p.reset_relays", filter.ResetRelays)
	if tag, ok := filter.Tag.Get(); ok {
		w.add(`EXISTS (SELECT 1 FROM vouch_proposer_pattern_tags t WHERE t.pattern_name = p.name AND t.tag = ?)`, tag)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM vouch_proposer_patterns p`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count proposer patterns: %w", err)
	}

	limit, args := w.page(page)

	var rows []proposerPatternRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectProposerPatterns+w.String()+` ORDER BY p.name`+limit), args...); err != nil {
		return nil, 0, fmt.Errorf("select proposer patterns: %w", err)
	}

	patterns, err := patternsWithDetails(ctx, s.db, rows)
	if err != nil {
		return nil, 0, err
	}

	return patterns, total, nil
}

func (s *Store) CreateProposerPattern(ctx context.Context, p storage.ProposerPattern) (storage.ProposerPattern, error) {
	var created storage.ProposerPattern

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO vouch_proposer_patterns (name, pattern, fee_recipient, gas_limit, min_value, reset_relays) VALUES (?, ?, ?, ?, ?, ?)`),
			p.Name, p.Pattern, p.FeeRecipient.Ptr(), p.GasLimit.Ptr(), p.MinValue.Ptr(), p.ResetRelays,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("proposer pattern '%s': %w", p.Name, storage.ErrAlreadyExists)
			}
			return fmt.Errorf("insert proposer pattern: %w", err)
		}

		if err := replaceTags(ctx, tx, p.Name, p.Tags); err != nil {
			return err
		}
		if err := patternRelays.replace(ctx, tx, p.Name, p.Relays); err != nil {
			return err
		}

		created, err = getProposerPattern(ctx, tx, p.Name)
		return err
	})

	return created, err
}

func (s *Store) UpdateProposerPattern(ctx context.Context, p storage.ProposerPattern) (storage.ProposerPattern, error) {
	var updated storage.ProposerPattern

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE vouch_proposer_patterns SET pattern = ?, fee_recipient = ?, gas_limit = ?, min_value = ?, reset_relays = ? WHERE name = ?`),
			p.Pattern, p.FeeRecipient.Ptr(), p.GasLimit.Ptr(), p.MinValue.Ptr(), p.ResetRelays, p.Name,
		)
		if err != nil {
			return fmt.Errorf("update proposer pattern: %w", err)
		}
		if err := expectRow(res, errProposerPatternNotFound(p.Name)); err != nil {
			return err
		}

		if err := replaceTags(ctx, tx, p.Name, p.Tags); err != nil {
			return err
		}
		if err := patternRelays.replace(ctx, tx, p.Name, p.Relays); err != nil {
			return err
		}

		updated, err = getProposerPattern(ctx, tx, p.Name)
		return err
	})

	return updated, err
}

func (s *Store) DeleteProposerPattern(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM vouch_proposer_patterns WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete proposer pattern: %w", err)
	}

	return expectRow(res, errProposerPatternNotFound(name))
}

func replaceTags(ctx context.Context, tx *sqlx.Tx, name string, tags []string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM vouch_proposer_pattern_tags WHERE pattern_name = ?`), name); err != nil {
		return fmt.Errorf("delete pattern tags: %w", err)
	}

	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO vouch_proposer_pattern_tags (pattern_name, tag, position) VALUES (?, ?, ?)`),
			name, tag, i,
		); err != nil {
			return fmt.Errorf("insert pattern tag: %w", err)
		}
	}

	return nil
}
