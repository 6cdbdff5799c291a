package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flashbots/fee-manager/config/override"
	"github.com/flashbots/fee-manager/config/pattern"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/types"
)

var (
	// ErrInvalidInput wraps every validation failure of an admin write.
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingName  = errors.New("missing name")
)

type DefaultConfig struct {
	Name         string
	FeeRecipient types.Optional[string]
	GasLimit     types.Optional[string]
	MinValue     types.Optional[string]
	Active       bool
	Relays       relay.Set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Proposer struct {
	PublicKey string
	override.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProposerPattern struct {
	Name    string
	Pattern string
	Tags    []string
	override.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MuxConfig struct {
	Name      string
	Keys      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MuxConfigSummary is a list entry of mux configs.
type MuxConfigSummary struct {
	Name      string
	KeyCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(ErrMissingName)
	}

	return name, nil
}

// keep returns upd when set, cur otherwise.
func keep[T any](cur, upd types.Optional[T]) types.Optional[T] {
	if upd.IsSet() {
		return upd
	}

	return cur
}

// Record returns the default config as an override record of the default scope.
func (d DefaultConfig) Record() override.Record {
	return override.Record{
		FeeRecipient: d.FeeRecipient,
		GasLimit:     d.GasLimit,
		MinValue:     d.MinValue,
		Relays:       d.Relays,
	}
}

// NewDefaultConfig validates a create request. Active defaults to true.
func NewDefaultConfig(req dto.DefaultConfigRequest) (DefaultConfig, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return DefaultConfig{}, err
	}

	return DefaultConfig{Name: name, Active: true}.Apply(req)
}

// Apply returns d updated with the fields set in req. The name is never changed.
func (d DefaultConfig) Apply(req dto.DefaultConfigRequest) (DefaultConfig, error) {
	relays := d.Relays
	if req.Relays != nil {
		var err error
		if relays, err = dto.DefaultRelaySet(req.Relays); err != nil {
			return DefaultConfig{}, invalid(err)
		}
	}

	rec, err := override.NewRecord(
		keep(d.FeeRecipient, req.FeeRecipient),
		keep(d.GasLimit, req.GasLimit),
		keep(d.MinValue, req.MinValue),
		false,
		relays,
	)
	if err != nil {
		return DefaultConfig{}, invalid(err)
	}

	d.FeeRecipient, d.GasLimit, d.MinValue, d.Relays = rec.FeeRecipient, rec.GasLimit, rec.MinValue, rec.Relays
	d.Active = req.Active.OrElse(d.Active)

	return d, nil
}

func (d DefaultConfig) Response() dto.DefaultConfigResponse {
	return dto.DefaultConfigResponse{
		Name:         d.Name,
		FeeRecipient: d.FeeRecipient,
		GasLimit:     d.GasLimit,
		MinValue:     d.MinValue,
		Active:       d.Active,
		Relays:       dto.RelayConfigs(d.Relays),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// NewProposer validates an upsert request for publicKey.
func NewProposer(publicKey string, req dto.ProposerRequest) (Proposer, error) {
	key, err := types.NormalizePublicKey(publicKey)
	if err != nil {
		return Proposer{}, invalid(err)
	}

	relays, err := dto.ProposerRelaySet(req.Relays)
	if err != nil {
		return Proposer{}, invalid(err)
	}

	rec, err := override.NewRecord(req.FeeRecipient, req.GasLimit, req.MinValue, req.ResetRelays, relays)
	if err != nil {
		return Proposer{}, invalid(err)
	}

	return Proposer{PublicKey: key, Record: rec}, nil
}

func (p Proposer) Response() dto.ProposerResponse {
	return dto.ProposerResponse{
		PublicKey:    p.PublicKey,
		FeeRecipient: p.FeeRecipient,
		GasLimit:     p.GasLimit,
		MinValue:     p.MinValue,
		ResetRelays:  p.ResetRelays,
		Relays:       dto.ProposerRelayConfigs(p.Relays),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewProposerPattern validates a create request. Name and pattern are required.
func NewProposerPattern(req dto.ProposerPatternRequest) (ProposerPattern, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return ProposerPattern{}, err
	}
	if !req.Pattern.IsSet() {
		return ProposerPattern{}, invalid(fmt.Errorf("%w: missing pattern", pattern.ErrInvalidPattern))
	}

	return ProposerPattern{Name: name}.Apply(req)
}

// Apply returns p updated with the fields set in req. The name is never changed.
func (p ProposerPattern) Apply(req dto.ProposerPatternRequest) (ProposerPattern, error) {
	if expr, ok := req.Pattern.Get(); ok {
		if _, err := pattern.Compile(expr); err != nil {
			return ProposerPattern{}, invalid(err)
		}
		p.Pattern = expr
	}

	if tags, ok := req.Tags.Get(); ok {
		p.Tags = pattern.NormalizeTags(tags)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	relays := p.Relays
	if req.Relays != nil {
		var err error
		if relays, err = dto.ProposerRelaySet(req.Relays); err != nil {
			return ProposerPattern{}, invalid(err)
		}
	}

	rec, err := override.NewRecord(
		keep(p.FeeRecipient, req.FeeRecipient),
		keep(p.GasLimit, req.GasLimit),
		keep(p.MinValue, req.MinValue),
		req.ResetRelays.OrElse(p.ResetRelays),
		relays,
	)
	if err != nil {
		return ProposerPattern{}, invalid(err)
	}
	p.Record = rec

	return p, nil
}

// PatternTags implements pattern.Tagged.
func (p ProposerPattern) PatternTags() []string {
	return p.Tags
}

func (p ProposerPattern) Response() dto.ProposerPatternResponse {
	return dto.ProposerPatternResponse{
		Name:         p.Name,
		Pattern:      p.Pattern,
		Tags:         p.Tags,
		FeeRecipient: p.FeeRecipient,
		GasLimit:     p.GasLimit,
		MinValue:     p.MinValue,
		ResetRelays:  p.ResetRelays,
		Relays:       dto.ProposerRelayConfigs(p.Relays),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewMuxConfig validates a create request.
func NewMuxConfig(req dto.MuxConfigRequest) (MuxConfig, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return MuxConfig{}, err
	}

	keys, err := NormalizeKeys(req.Keys)
	if err != nil {
		return MuxConfig{}, err
	}

	return MuxConfig{Name: name, Keys: keys}, nil
}

// NormalizeKeys validates public keys and returns them lowercased, with repeats
// dropped and the first occurrence kept.
func NormalizeKeys(keys []string) ([]string, error) {
	normalized := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))

	for _, k := range keys {
		key, err := types.NormalizePublicKey(k)
		if err != nil {
			return nil, invalid(err)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, key)
	}

	return normalized, nil
}

func (m MuxConfig) Response() dto.MuxConfigResponse {
	keys := m.Keys
	if keys == nil {
		keys = []string{}
	}

	return dto.MuxConfigResponse{
		Name:      m.Name,
		Keys:      keys,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m MuxConfigSummary) ListItem() dto.MuxConfigListItem {
	return dto.MuxConfigListItem(m)
}
