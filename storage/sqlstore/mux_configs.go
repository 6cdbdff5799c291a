package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flashbots/fee-manager/storage"
	"github.com/jmoiron/sqlx"
)

type muxConfigRow struct {
	Name      string    `db:"name"`
	KeyCount  int       `db:"key_count"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func errMuxConfigNotFound(name string) error {
	return fmt.Errorf("mux config '%s': %w", name, storage.ErrNotFound)
}

func (s *Store) ListMuxConfigs(ctx context.Context, filter storage.MuxConfigFilter) ([]storage.MuxConfigSummary, int, error) {
	page := filter.Page.Normalize()

	var w where
	w.prefix("c.name", filter.Name)

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM commit_boost_mux_configs c`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count mux configs: %w", err)
	}

	limit, args := w.page(page)
	query := `SELECT c.name, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM commit_boost_mux_keys k WHERE k.mux_name = c.name) AS key_count
		FROM commit_boost_mux_configs c` + w.String() + ` ORDER BY c.name` + limit

	var rows []muxConfigRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("select mux configs: %w", err)
	}

	configs := make([]storage.MuxConfigSummary, 0, len(rows))
	for _, r := range rows {
		configs = append(configs, storage.MuxConfigSummary(r))
	}

	return configs, total, nil
}

func (s *Store) GetMuxConfig(ctx context.Context, name string) (storage.MuxConfig, error) {
	return getMuxConfig(ctx, s.db, name)
}

func getMuxConfig(ctx context.Context, q queryer, name string) (storage.MuxConfig, error) {
	var row muxConfigRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(`SELECT name, created_at, updated_at FROM commit_boost_mux_configs WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MuxConfig{}, errMuxConfigNotFound(name)
		}
		return storage.MuxConfig{}, fmt.Errorf("select mux config: %w", err)
	}

	keys, err := muxKeys(ctx, q, name)
	if err != nil {
		return storage.MuxConfig{}, err
	}

	return storage.MuxConfig{
		Name:      row.Name,
		Keys:      keys,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// muxKeys returns the keys of a mux config in insertion order.
func muxKeys(ctx context.Context, q queryer, name string) ([]string, error) {
	keys := []string{}
	if err := sqlx.SelectContext(ctx, q, &keys, q.Rebind(`SELECT public_key FROM commit_boost_mux_keys WHERE mux_name = ? ORDER BY id`), name); err != nil {
		return nil, fmt.Errorf("select mux keys: %w", err)
	}

	return keys, nil
}

func countMuxKeys(ctx context.Context, q queryer, name string) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, q, &total, q.Rebind(`SELECT COUNT(*) FROM commit_boost_mux_keys WHERE mux_name = ?`), name); err != nil {
		return 0, fmt.Errorf("count mux keys: %w", err)
	}

	return total, nil
}

func (s *Store) CreateMuxConfig(ctx context.Context, cfg storage.MuxConfig) (storage.MuxConfig, error) {
	var created storage.MuxConfig

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO commit_boost_mux_configs (name) VALUES (?)`), cfg.Name)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("mux config '%s': %w", cfg.Name, storage.ErrAlreadyExists)
			}
			return fmt.Errorf("insert mux config: %w", err)
		}

		if _, err := insertMuxKeys(ctx, tx, cfg.Name, cfg.Keys); err != nil {
			return err
		}

		created, err = getMuxConfig(ctx, tx, cfg.Name)
		return err
	})

	return created, err
}

func (s *Store) ReplaceMuxKeys(ctx context.Context, name string, keys []string) (storage.MuxConfig, error) {
	var updated storage.MuxConfig

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := touchMuxConfig(ctx, tx, name); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM commit_boost_mux_keys WHERE mux_name = ?`), name); err != nil {
			return fmt.Errorf("delete mux keys: %w", err)
		}
		if _, err := insertMuxKeys(ctx, tx, name, keys); err != nil {
			return err
		}

		var err error
		updated, err = getMuxConfig(ctx, tx, name)
		return err
	})

	return updated, err
}

func (s *Store) DeleteMuxConfig(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM commit_boost_mux_configs WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete mux config: %w", err)
	}

	return expectRow(res, errMuxConfigNotFound(name))
}

func (s *Store) AddMuxKeys(ctx context.Context, name string, keys []string) (int, int, error) {
	var added, total int

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := touchMuxConfig(ctx, tx, name); err != nil {
			return err
		}

		var err error
		if added, err = insertMuxKeys(ctx, tx, name, keys); err != nil {
			return err
		}

		total, err = countMuxKeys(ctx, tx, name)
		return err
	})

	return added, total, err
}

func (s *Store) RemoveMuxKeys(ctx context.Context, name string, keys []string) (int, int, error) {
	var removed, total int

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := touchMuxConfig(ctx, tx, name); err != nil {
			return err
		}

		if len(keys) > 0 {
			query, args, err := sqlx.In(`DELETE FROM commit_boost_mux_keys WHERE mux_name = ? AND public_key IN (?)`, name, keys)
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
			if err != nil {
				return fmt.Errorf("delete mux keys: %w", err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed = int(n)
		}

		var err error
		total, err = countMuxKeys(ctx, tx, name)
		return err
	})

	return removed, total, err
}

// touchMuxConfig bumps updated_at and fails if the mux config does not exist.
func touchMuxConfig(ctx context.Context, tx *sqlx.Tx, name string) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE commit_boost_mux_configs SET name = name WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("update mux config: %w", err)
	}

	return expectRow(res, errMuxConfigNotFound(name))
}

// insertMuxKeys inserts the keys not yet present and returns how many were added.
func insertMuxKeys(ctx context.Context, tx *sqlx.Tx, name string, keys []string) (int, error) {
	added := 0
	for _, key := range keys {
		res, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO commit_boost_mux_keys (mux_name, public_key) VALUES (?, ?) ON CONFLICT (mux_name, public_key) DO NOTHING`),
			name, key,
		)
		if err != nil {
			return 0, fmt.Errorf("insert mux key: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	return added, nil
}
