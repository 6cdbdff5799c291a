package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
	"github.com/jmoiron/sqlx"
)

const selectDefaultConfigs = `SELECT name, fee_recipient, gas_limit, min_value, active, created_at, updated_at FROM vouch_default_configs`

func (r defaultConfigRow) model(relays relay.Set) storage.DefaultConfig {
	if relays == nil {
		relays = relay.NewRelaySet()
	}

	return storage.DefaultConfig{
		Name:         r.Name,
		FeeRecipient: types.FromPtr(r.FeeRecipient),
		GasLimit:     types.FromPtr(r.GasLimit),
		MinValue:     types.FromPtr(r.MinValue),
		Active:       r.Active,
		Relays:       relays,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func errDefaultConfigNotFound(name string) error {
	return fmt.Errorf("default config '%s': %w", name, storage.ErrNotFound)
}

func (s *Store) ActiveDefaultConfig(ctx context.Context, name string) (storage.DefaultConfig, error) {
	return getDefaultConfig(ctx, s.db, name, true)
}

func (s *Store) GetDefaultConfig(ctx context.Context, name string) (storage.DefaultConfig, error) {
	return getDefaultConfig(ctx, s.db, name, false)
}

func getDefaultConfig(ctx context.Context, q queryer, name string, activeOnly bool) (storage.DefaultConfig, error) {
	query := selectDefaultConfigs + ` WHERE name = ?`
	if activeOnly {
		query += ` AND active = ?`
	}
	args := []any{name}
	if activeOnly {
		args = append(args, true)
	}

	var row defaultConfigRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DefaultConfig{}, errDefaultConfigNotFound(name)
		}
		return storage.DefaultConfig{}, fmt.Errorf("select default config: %w", err)
	}

	relays, err := defaultRelays.load(ctx, q, []string{row.Name})
	if err != nil {
		return storage.DefaultConfig{}, err
	}

	return row.model(relays[row.Name]), nil
}

func (s *Store) ListDefaultConfigs(ctx context.Context, filter storage.DefaultConfigFilter) ([]storage.DefaultConfig, int, error) {
	page := filter.Page.Normalize()

	var w where
	w.prefix("name", filter.Name)
	w.equal("fee_recipient", filter.FeeRecipient)
	w.equal("gas_limit", filter.GasLimit)
	w.equal("min_value", filter.MinValue)
	w.equalBool("active", filter.Active)

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM vouch_default_configs`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count default configs: %w", err)
	}

	limit, args := w.page(page)

	var rows []defaultConfigRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectDefaultConfigs+w.String()+` ORDER BY name`+limit), args...); err != nil {
		return nil, 0, fmt.Errorf("select default configs: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}

	relays, err := defaultRelays.load(ctx, s.db, names)
	if err != nil {
		return nil, 0, err
	}

	configs := make([]storage.DefaultConfig, 0, len(rows))
	for _, r := range rows {
		configs = append(configs, r.model(relays[r.Name]))
	}

	return configs, total, nil
}

func (s *Store) CreateDefaultConfig(ctx context.Context, cfg storage.DefaultConfig) (storage.DefaultConfig, error) {
	var created storage.DefaultConfig

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO vouch_default_configs (name, fee_recipient, gas_limit, min_value, active) VALUES (?, ?, ?, ?, ?)`),
			cfg.Name, cfg.FeeRecipient.Ptr(), cfg.GasLimit.Ptr(), cfg.MinValue.Ptr(), cfg.Active,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("default config '%s': %w", cfg.Name, storage.ErrAlreadyExists)
			}
			return fmt.Errorf("insert default config: %w", err)
		}

		if err := defaultRelays.replace(ctx, tx, cfg.Name, cfg.Relays); err != nil {
			return err
		}

		created, err = getDefaultConfig(ctx, tx, cfg.Name, false)
		return err
	})

	return created, err
}

func (s *Store) UpdateDefaultConfig(ctx context.Context, cfg storage.DefaultConfig) (storage.DefaultConfig, error) {
	var updated storage.DefaultConfig

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE vouch_default_configs SET fee_recipient = ?, gas_limit = ?, min_value = ?, active = ? WHERE name = ?`),
			cfg.FeeRecipient.Ptr(), cfg.GasLimit.Ptr(), cfg.MinValue.Ptr(), cfg.Active, cfg.Name,
		)
		if err != nil {
			return fmt.Errorf("update default config: %w", err)
		}
		if err := expectRow(res, errDefaultConfigNotFound(cfg.Name)); err != nil {
			return err
		}

		if err := defaultRelays.replace(ctx, tx, cfg.Name, cfg.Relays); err != nil {
			return err
		}

		updated, err = getDefaultConfig(ctx, tx, cfg.Name, false)
		return err
	})

	return updated, err
}

func (s *Store) DeleteDefaultConfig(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM vouch_default_configs WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete default config: %w", err)
	}

	return expectRow(res, errDefaultConfigNotFound(name))
}

// expectRow returns notFound when res affected no rows.
func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}

	return nil
}
