package dto

import (
	"time"

	"github.com/flashbots/fee-manager/types"
)

// ListResponse is a page of admin list results.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultConfigRequest is the body of default config create and update requests.
// On update unset fields keep the stored value, and a present relays object
// replaces the stored set.
type DefaultConfigRequest struct {
	Name         string                 `json:"name"`
	FeeRecipient types.Optional[string] `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string] `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string] `json:"min_value,omitzero"`
	Active       types.Optional[bool]   `json:"active,omitzero"`
	Relays       map[string]RelayConfig `json:"relays,omitempty"`
}

type DefaultConfigResponse struct {
	Name         string                 `json:"name"`
	FeeRecipient types.Optional[string] `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string] `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string] `json:"min_value,omitzero"`
	Active       bool                   `json:"active"`
	Relays       map[string]RelayConfig `json:"relays,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ProposerRequest is the body of a proposer upsert. It replaces the stored proposer.
type ProposerRequest struct {
	FeeRecipient types.Optional[string]         `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string]         `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string]         `json:"min_value,omitzero"`
	ResetRelays  bool                           `json:"reset_relays"`
	Relays       map[string]ProposerRelayConfig `json:"relays,omitempty"`
}

type ProposerResponse struct {
	PublicKey    string                         `json:"public_key"`
	FeeRecipient types.Optional[string]         `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string]         `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string]         `json:"min_value,omitzero"`
	ResetRelays  bool                           `json:"reset_relays"`
	Relays       map[string]ProposerRelayConfig `json:"relays,omitempty"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}

// ProposerPatternRequest is the body of pattern create and update requests.
// Name and pattern are required on create. On update unset fields keep the
// stored value.
type ProposerPatternRequest struct {
	Name         string                         `json:"name"`
	Pattern      types.Optional[string]         `json:"pattern,omitzero"`
	Tags         types.Optional[[]string]       `json:"tags,omitzero"`
	FeeRecipient types.Optional[string]         `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string]         `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string]         `json:"min_value,omitzero"`
	ResetRelays  types.Optional[bool]           `json:"reset_relays,omitzero"`
	Relays       map[string]ProposerRelayConfig `json:"relays,omitempty"`
}

type ProposerPatternResponse struct {
	Name         string                         `json:"name"`
	Pattern      string                         `json:"pattern"`
	Tags         []string                       `json:"tags"`
	FeeRecipient types.Optional[string]         `json:"fee_recipient,omitzero"`
	GasLimit     types.Optional[string]         `json:"gas_limit,omitzero"`
	MinValue     types.Optional[string]         `json:"min_value,omitzero"`
	ResetRelays  bool                           `json:"reset_relays"`
	Relays       map[string]ProposerRelayConfig `json:"relays,omitempty"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}

// MuxConfigRequest is the body of mux config create and replace requests.
type MuxConfigRequest struct {
	Name string   `json:"name,omitempty"`
	Keys []string `json:"keys"`
}

type MuxConfigResponse struct {
	Name      string    `json:"name"`
	Keys      []string  `json:"keys"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MuxConfigListItem struct {
	Name      string    `json:"name"`
	KeyCount  int       `json:"key_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MuxKeysRequest struct {
	Keys []string `json:"keys"`
}

// MuxKeysResponse reports the outcome of adding or removing mux keys.
type MuxKeysResponse struct {
	Added     *int `json:"added,omitempty"`
	Removed   *int `json:"removed,omitempty"`
	TotalKeys int  `json:"total_keys"`
}

// Seed is the content of a seed file.
type Seed struct {
	DefaultConfigs   []DefaultConfigRequest   `json:"default_configs"`
	Proposers        []SeedProposer           `json:"proposers"`
	ProposerPatterns []ProposerPatternRequest `json:"proposer_patterns"`
	MuxConfigs       []MuxConfigRequest       `json:"mux_configs"`
}

type SeedProposer struct {
	PublicKey string `json:"public_key"`
	ProposerRequest
}
