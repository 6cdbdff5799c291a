package rcptest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/config/relay/reltest"
	"github.com/flashbots/fee-manager/types"
	"github.com/stretchr/testify/require"
)

type SeedOption func(seed *dto.Seed)

// RandomSeed returns a valid seed with one record of every kind.
func RandomSeed(tb testing.TB, opt ...SeedOption) *dto.Seed {
	tb.Helper()

	key := reltest.RandomBLSPublicKey(tb).String()

	seed := &dto.Seed{
		DefaultConfigs: []dto.DefaultConfigRequest{{
			Name:     "main",
			GasLimit: types.Some("30000000"),
			Relays:   dto.RelayConfigs(reltest.RandomRelaySet(tb, 2)),
		}},
		Proposers: []dto.SeedProposer{{
			PublicKey: key,
			ProposerRequest: dto.ProposerRequest{
				FeeRecipient: types.Some(reltest.RandomFeeRecipient(tb)),
				Relays:       dto.ProposerRelayConfigs(reltest.RelaySetFromList(reltest.DisabledRelayEntry(tb))),
			},
		}},
		ProposerPatterns: []dto.ProposerPatternRequest{{
			Name:    "P1",
			Pattern: types.Some("^0x8"),
			Tags:    types.Some([]string{"pool-1"}),
		}},
		MuxConfigs: []dto.MuxConfigRequest{{
			Name: "pool-1",
			Keys: []string{key},
		}},
	}

	for _, o := range opt {
		o(seed)
	}

	return seed
}

// WithDefaultRelays replaces the relays of the first default config.
func WithDefaultRelays(relays relay.Set) SeedOption {
	return func(seed *dto.Seed) {
		seed.DefaultConfigs[0].Relays = dto.RelayConfigs(relays)
	}
}

// WithInvalidPattern adds a pattern which does not compile.
func WithInvalidPattern() SeedOption {
	return func(seed *dto.Seed) {
		seed.ProposerPatterns = append(seed.ProposerPatterns, dto.ProposerPatternRequest{
			Name:    "broken",
			Pattern: types.Some("0x["),
		})
	}
}

// WriteSeedFile writes seed to a temporary file and returns its path.
func WriteSeedFile(tb testing.TB, seed *dto.Seed) string {
	tb.Helper()

	b, err := json.Marshal(seed)
	require.NoError(tb, err)

	path := filepath.Join(tb.TempDir(), "seed.json")
	require.NoError(tb, os.WriteFile(path, b, 0o600))

	return path
}
