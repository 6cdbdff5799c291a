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

const selectProposers = `SELECT public_key, fee_recipient, gas_limit, min_value, reset_relays, created_at, updated_at FROM vouch_proposers`

func (r proposerRow) model(relays relay.Set) storage.Proposer {
	if relays == nil {
		relays = relay.NewRelaySet()
	}

	return storage.Proposer{
		PublicKey: r.PublicKey,
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

func errProposerNotFound(publicKey string) error {
	return fmt.Errorf("proposer '%s': %w", publicKey, storage.ErrNotFound)
}

func proposersWithRelays(ctx context.Context, q queryer, rows []proposerRow) ([]storage.Proposer, error) {
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.PublicKey)
	}

	relays, err := proposerRelays.load(ctx, q, keys)
	if err != nil {
		return nil, err
	}

	proposers := make([]storage.Proposer, 0, len(rows))
	for _, r := range rows {
		proposers = append(proposers, r.model(relays[r.PublicKey]))
	}

	return proposers, nil
}

func (s *Store) ProposersByKeys(ctx context.Context, keys []string) ([]storage.Proposer, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(selectProposers+` WHERE public_key IN (?)`, keys)
	if err != nil {
		return nil, err
	}

	var rows []proposerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select proposers: %w", err)
	}

	return proposersWithRelays(ctx, s.db, rows)
}

func (s *Store) GetProposer(ctx context.Context, publicKey string) (storage.Proposer, error) {
	return getProposer(ctx, s.db, publicKey)
}

func getProposer(ctx context.Context, q queryer, publicKey string) (storage.Proposer, error) {
	var row proposerRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(selectProposers+` WHERE public_key = ?`), publicKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Proposer{}, errProposerNotFound(publicKey)
		}
		return storage.Proposer{}, fmt.Errorf("select proposer: %w", err)
	}

	proposers, err := proposersWithRelays(ctx, q, []proposerRow{row})
	if err != nil {
		return storage.Proposer{}, err
	}

	return proposers[0], nil
}

func (s *Store) ListProposers(ctx context.Context, filter storage.ProposerFilter) ([]storage.Proposer, int, error) {
	page := filter.Page.Normalize()

	var w where
	w.prefix("p.public_key", filter.PublicKey)
	w.equal("p.fee_recipient", filter.FeeRecipient)
	w.equal("p.gas_limit", filter.GasLimit)
	w.equal("p.min_value", filter.MinValue)
	w.equalBool("p.reset_relays", filter.ResetRelays)

	const relayExists = `EXISTS (SELECT 1 FROM vouch_proposer_relays r WHERE r.proposer_public_key = p.public_key AND `
	if v, ok := filter.RelayURL.Get(); ok {
		w.add(relayExists+`r.url LIKE ? ESCAPE '\')`, likeEscaper.Replace(v)+"%")
	}
	if v, ok := filter.RelayMinValue.Get(); ok {
		w.add(relayExists+`r.min_value = ?)`, v)
	}
	if v, ok := filter.RelayDisabled.Get(); ok {
		w.add(relayExists+`r.disabled = ?)`, v)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM vouch_proposers p`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("count proposers: %w", err)
	}

	limit, args := w.page(page)
	query := `SELECT p.public_key, p.fee_recipient, p.gas_limit, p.min_value, p.reset_relays, p.created_at, p.updated_at FROM vouch_proposers p` +
		w.String() + ` ORDER BY p.created_at DESC, p.public_key` + limit

	var rows []proposerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("select proposers: %w", err)
	}

	proposers, err := proposersWithRelays(ctx, s.db, rows)
	if err != nil {
		return nil, 0, err
	}

	return proposers, total, nil
}

func (s *Store) PutProposer(ctx context.Context, p storage.Proposer) (storage.Proposer, bool, error) {
	var (
		stored  storage.Proposer
		created bool
	)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE vouch_proposers SET fee_recipient = ?, gas_limit = ?, min_value = ?, reset_relays = ? WHERE public_key = ?`),
			p.FeeRecipient.Ptr(), p.GasLimit.Ptr(), p.MinValue.Ptr(), p.ResetRelays, p.PublicKey,
		)
		if err != nil {
			return fmt.Errorf("update proposer: %w", err)
		}

		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			created = true
			_, err := tx.ExecContext(ctx, tx.Rebind(
				`INSERT INTO vouch_proposers (public_key, fee_recipient, gas_limit, min_value, reset_relays) VALUES (?, ?, ?, ?, ?)`),
				p.PublicKey, p.FeeRecipient.Ptr(), p.GasLimit.Ptr(), p.MinValue.Ptr(), p.ResetRelays,
			)
			if err != nil {
				return fmt.Errorf("insert proposer: %w", err)
			}
		}

		if err := proposerRelays.replace(ctx, tx, p.PublicKey, p.Relays); err != nil {
			return err
		}

		stored, err = getProposer(ctx, tx, p.PublicKey)
		return err
	})

	return stored, created, err
}

func (s *Store) DeleteProposer(ctx context.Context, publicKey string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM vouch_proposers WHERE public_key = ?`), publicKey)
	if err != nil {
		return fmt.Errorf("delete proposer: %w", err)
	}

	return expectRow(res, errProposerNotFound(publicKey))
}
