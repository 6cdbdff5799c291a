package storage

import "github.com/flashbots/fee-manager/types"

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page selects a window of list results.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit, caps it and clamps a negative offset.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	return p
}

// DefaultConfigFilter filters default configs. Name is a prefix match.
type DefaultConfigFilter struct {
	Name         types.Optional[string]
	FeeRecipient types.Optional[string]
	GasLimit     types.Optional[string]
	MinValue     types.Optional[string]
	Active       types.Optional[bool]
	Page
}

// ProposerFilter filters proposers. PublicKey and RelayURL are prefix matches,
// the relay fields select proposers having at least one matching relay.
type ProposerFilter struct {
	PublicKey     types.Optional[string]
	FeeRecipient  types.Optional[string]
	GasLimit      types.Optional[string]
	MinValue      types.Optional[string]
	ResetRelays   types.Optional[bool]
	RelayURL      types.Optional[string]
	RelayMinValue types.Optional[string]
	RelayDisabled types.Optional[bool]
	Page
}

// ProposerPatternFilter filters patterns. Name is a prefix match, Pattern a
// substring match and Tag selects patterns carrying that tag.
type ProposerPatternFilter struct {
	Name         types.Optional[string]
	Pattern      types.Optional[string]
	Tag          types.Optional[string]
	FeeRecipient types.Optional[string]
	GasLimit     types.Optional[string]
	MinValue     types.Optional[string]
	ResetRelays  types.Optional[bool]
	Page
}

// MuxConfigFilter filters mux configs. Name is a prefix match.
type MuxConfigFilter struct {
	Name types.Optional[string]
	Page
}
