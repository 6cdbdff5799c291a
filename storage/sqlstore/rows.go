package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/types"
	"github.com/jmoiron/sqlx"
)

// queryer is implemented by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type defaultConfigRow struct {
	Name         string    `db:"name"`
	FeeRecipient *string   `db:"fee_recipient"`
	GasLimit     *string   `db:"gas_limit"`
	MinValue     *string   `db:"min_value"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type proposerRow struct {
	PublicKey    string    `db:"public_key"`
	FeeRecipient *string   `db:"fee_recipient"`
	GasLimit     *string   `db:"gas_limit"`
	MinValue     *string   `db:"min_value"`
	ResetRelays  bool      `db:"reset_relays"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type proposerPatternRow struct {
	Name         string    `db:"name"`
	Pattern      string    `db:"pattern"`
	FeeRecipient *string   `db:"fee_recipient"`
	GasLimit     *string   `db:"gas_limit"`
	MinValue     *string   `db:"min_value"`
	ResetRelays  bool      `db:"reset_relays"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type tagRow struct {
	PatternName string `db:"pattern_name"`
	Tag         string `db:"tag"`
}

// relayRow is a row of any of the relay tables, with the parent key aliased to owner.
type relayRow struct {
	Owner        string  `db:"owner"`
	URL          string  `db:"url"`
	PublicKey    string  `db:"public_key"`
	FeeRecipient *string `db:"fee_recipient"`
	GasLimit     *string `db:"gas_limit"`
	MinValue     *string `db:"min_value"`
	Disabled     bool    `db:"disabled"`
}

// relayTable describes one of the relay tables.
type relayTable struct {
	name        string
	ownerColumn string
	hasDisabled bool
}

var (
	defaultRelays = relayTable{
		name:        "vouch_default_relays",
		ownerColumn: "config_name",
	}
	proposerRelays = relayTable{
		name:        "vouch_proposer_relays",
		ownerColumn: "proposer_public_key",
		hasDisabled: true,
	}
	patternRelays = relayTable{
		name:        "vouch_proposer_pattern_relays",
		ownerColumn: "pattern_name",
		hasDisabled: true,
	}
)

func (t relayTable) selectQuery() string {
	disabled := "disabled"
	if !t.hasDisabled {
		disabled = "FALSE AS disabled"
	}

	return fmt.Sprintf(
		`SELECT %s AS owner, url, public_key, fee_recipient, gas_limit, min_value, %s FROM %s WHERE %s IN (?) ORDER BY url`,
		t.ownerColumn, disabled, t.name, t.ownerColumn,
	)
}

// load returns the relay sets of owners keyed by owner. Owners without relays
// get an empty set.
func (t relayTable) load(ctx context.Context, q queryer, owners []string) (map[string]relay.Set, error) {
	sets := make(map[string]relay.Set, len(owners))
	for _, o := range owners {
		sets[o] = relay.NewRelaySet()
	}
	if len(owners) == 0 {
		return sets, nil
	}

	query, args, err := sqlx.In(t.selectQuery(), owners)
	if err != nil {
		return nil, err
	}

	var rows []relayRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}

	for _, r := range rows {
		entry, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		sets[r.Owner].Add(entry)
	}

	return sets, nil
}

// replace deletes the relays of owner and inserts s.
func (t relayTable) replace(ctx context.Context, tx *sqlx.Tx, owner string, s relay.Set) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, t.name, t.ownerColumn)), owner); err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}

	for _, entry := range s.ToList() {
		var err error
		if t.hasDisabled {
			_, err = tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(
				`INSERT INTO %s (%s, url, public_key, fee_recipient, gas_limit, min_value, disabled) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.name, t.ownerColumn,
			)), owner, entry.URL, entry.PublicKey.String(), entry.FeeRecipient.Ptr(), entry.GasLimit.Ptr(), entry.MinValue.Ptr(), entry.Disabled)
		} else {
			_, err = tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(
				`INSERT INTO %s (%s, url, public_key, fee_recipient, gas_limit, min_value) VALUES (?, ?, ?, ?, ?, ?)`,
				t.name, t.ownerColumn,
			)), owner, entry.URL, entry.PublicKey.String(), entry.FeeRecipient.Ptr(), entry.GasLimit.Ptr(), entry.MinValue.Ptr())
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}

	return nil
}

func (r relayRow) entry() (relay.Entry, error) {
	pubKey, err := types.ParsePublicKey(r.PublicKey)
	if err != nil {
		return relay.Entry{}, err
	}

	return relay.Entry{
		URL:          r.URL,
		PublicKey:    pubKey,
		FeeRecipient: types.FromPtr(r.FeeRecipient),
		GasLimit:     types.FromPtr(r.GasLimit),
		MinValue:     types.FromPtr(r.MinValue),
		Disabled:     r.Disabled,
	}, nil
}
