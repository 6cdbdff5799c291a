package dto

import (
	"fmt"

	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/types"
)

// ExecutionConfigVersion is the version of the execution-config protocol served.
const ExecutionConfigVersion = 2

// ExecutionConfigRequest is the body of an execution-config request.
type ExecutionConfigRequest struct {
	Keys []string `json:"keys"`
}

// ExecutionConfig is the resolved execution config returned to the validator client.
type ExecutionConfig struct {
	Version      int                    `json:"version"`
	FeeRecipient types.Optional[string] `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string] `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string] `json:"min_value,omitzero"`
	Relays       map[string]RelayConfig `json:"relays,omitempty"`
	Proposers    []ProposerEntry        `json:"proposers,omitempty"`
}

// ProposerEntry is one per-validator or per-pattern entry of an execution config.
// Proposer holds either a validator public key or a pattern regex.
type ProposerEntry struct {
	Proposer     string                 `json:"proposer"`
	FeeRecipient types.Optional[string] `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string] `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string] `json:"min_value,omitzero"`
	ResetRelays  bool                   `json:"reset_relays,omitempty"`
	Relays       map[string]RelayConfig `json:"relays,omitempty"`
}

type RelayConfig struct {
	PublicKey    string                 `json:"public_key"`
	FeeRecipient types.Optional[string] `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string] `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string] `json:"min_value,omitzero"`
}

// ProposerRelayConfig is a relay of a proposer or pattern scope, which may be disabled.
type ProposerRelayConfig struct {
	RelayConfig
	Disabled bool `json:"disabled"`
}

// RelayConfigs renders a relay set as the execution-config relays object.
// It returns nil for an empty set.
func RelayConfigs(s relay.Set) map[string]RelayConfig {
	if len(s) == 0 {
		return nil
	}

	out := make(map[string]RelayConfig, len(s))
	for u, entry := range s {
		out[u] = relayConfigFromEntry(entry)
	}

	return out
}

// ProposerRelayConfigs renders a relay set including the disabled flag.
func ProposerRelayConfigs(s relay.Set) map[string]ProposerRelayConfig {
	if len(s) == 0 {
		return nil
	}

	out := make(map[string]ProposerRelayConfig, len(s))
	for u, entry := range s {
		out[u] = ProposerRelayConfig{
			RelayConfig: relayConfigFromEntry(entry),
			Disabled:    entry.Disabled,
		}
	}

	return out
}

// DefaultRelaySet validates the relays of a default config.
// Default relays are never disabled.
func DefaultRelaySet(in map[string]RelayConfig) (relay.Set, error) {
	s := relay.NewRelaySet()
	for u, cfg := range in {
		entry, err := entryFromRelayConfig(u, cfg)
		if err != nil {
			return nil, err
		}
		if err := addUnique(s, entry); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ProposerRelaySet validates the relays of a proposer or pattern scope.
func ProposerRelaySet(in map[string]ProposerRelayConfig) (relay.Set, error) {
	s := relay.NewRelaySet()
	for u, cfg := range in {
		entry, err := entryFromRelayConfig(u, cfg.RelayConfig)
		if err != nil {
			return nil, err
		}
		entry.Disabled = cfg.Disabled
		if err := addUnique(s, entry); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func relayConfigFromEntry(entry relay.Entry) RelayConfig {
	return RelayConfig{
		PublicKey:    entry.PublicKey.String(),
		FeeRecipient: entry.FeeRecipient,
		GasLimit:     entry.GasLimit,
		MinValue:     entry.MinValue,
	}
}

func entryFromRelayConfig(relayURL string, cfg RelayConfig) (relay.Entry, error) {
	entry, err := relay.NewRelayEntry(relayURL, cfg.PublicKey)
	if err != nil {
		return relay.Entry{}, err
	}

	return entry.WithOverrides(cfg.FeeRecipient, cfg.GasLimit, cfg.MinValue)
}

func addUnique(s relay.Set, entry relay.Entry) error {
	if _, ok := s[entry.URL]; ok {
		return fmt.Errorf("%w: %s", relay.ErrDuplicateRelayURL, entry.URL)
	}
	s.Add(entry)

	return nil
}
