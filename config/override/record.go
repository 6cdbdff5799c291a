// Package override holds the fee and relay settings of one configuration scope
// and projects them into execution-config response entries.
package override

import (
	"fmt"

	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/types"
)

// Record is the override of one scope: the default config, a validator or a pattern.
//
// Unset fields defer to the enclosing scope on the consumer side, they are never
// filled in from another scope here.
type Record struct {
	FeeRecipient types.Optional[string]
	GasLimit     types.Optional[string]
	MinValue     types.Optional[string]
	ResetRelays  bool
	Relays       relay.Set
}

// NewRecord validates the optional fields and returns them in canonical form.
func NewRecord(feeRecipient, gasLimit, minValue types.Optional[string], resetRelays bool, relays relay.Set) (Record, error) {
	r := Record{ResetRelays: resetRelays, Relays: relays}

	var err error
	if r.FeeRecipient, err = feeRecipient.Map(types.NormalizeAddress); err != nil {
		return Record{}, fmt.Errorf("fee_recipient: %w", err)
	}
	if r.GasLimit, err = gasLimit.Map(types.ParseGasLimit); err != nil {
		return Record{}, fmt.Errorf("gas_limit: %w", err)
	}
	if r.MinValue, err = minValue.Map(types.ParseMinValue); err != nil {
		return Record{}, fmt.Errorf("min_value: %w", err)
	}
	if r.Relays == nil {
		r.Relays = relay.NewRelaySet()
	}

	return r, nil
}

// EmittedRelays returns the relay set this scope emits on top of defaults.
func (r Record) EmittedRelays(defaults relay.Set) relay.Set {
	return relay.Resolve(defaults, r.Relays, r.ResetRelays).Enabled()
}

// Project renders the record as a proposers entry identified by proposer.
func (r Record) Project(proposer string, defaults relay.Set) dto.ProposerEntry {
	return dto.ProposerEntry{
		Proposer:     proposer,
		FeeRecipient: r.FeeRecipient,
		GasLimit:     r.GasLimit,
		MinValue:     r.MinValue,
		ResetRelays:  r.ResetRelays,
		Relays:       dto.RelayConfigs(r.EmittedRelays(defaults)),
	}
}

// Defaults renders the record as the top-level part of an execution config.
func (r Record) Defaults() dto.ExecutionConfig {
	return dto.ExecutionConfig{
		Version:      dto.ExecutionConfigVersion,
		FeeRecipient: r.FeeRecipient,
		GasLimit:     r.GasLimit,
		MinValue:     r.MinValue,
		Relays:       dto.RelayConfigs(r.Relays.Enabled()),
	}
}
