package testdata

import (
	_ "embed"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/types"
	"github.com/stretchr/testify/require"
)

//go:embed valid-seed.json
var ValidSeedBytes []byte

var (
	_, curPath, _, _ = runtime.Caller(0)
	curDir           = filepath.Join(filepath.Dir(curPath))

	ValidSeedFilePath     = filepath.Join(curDir, "valid-seed.json")
	CorruptedSeedFilePath = filepath.Join(curDir, "corrupted-seed.json")
)

const (
	ValidatorKey1 = "0xa1d1ad0714035353258038e964ae9675dc0252ee22cea896825c01458e1807bfad2f9969338798548d9858a571f7425c"
	ValidatorKey2 = "0xb2ff4716ed345b05dd1dfc6a5a9fa70856d8c75dcc9e881dd2f766d5f891326f0d10e96f3a444ce6c912b69c22c6754d"

	FlashbotsRelayURL = "https://boost-relay.flashbots.net/"
	MaxProfitRelayURL = "https://bloxroute.max-profit.blxrbdn.com/"
	EthicalRelayURL   = "https://bloxroute.ethical.blxrbdn.com/"

	flashbotsRelayKey = "0x8b66d47c8bd32211c0ed807048e7f6467a8a046db020db2d7097f5afd6996545ecc07b827efaa8f1524cb14ca268afa2"
	maxProfitRelayKey = "0xb075a426a903150254d8c4b5672b9d6d6b1c925b8d0d2d74b7798229a9b8141c20716d3bff452adacf8c4a61f859bce6"
	ethicalRelayKey   = "0x84f4b47474dfd6f2e0f4f05d9a056fbf8414e8c5a02e3363a29272262ee136c2bca0872b2f3cfa10e2017d52ce03a9d6"
)

func ValidSeed(t *testing.T) *dto.Seed {
	t.Helper()

	want := validSeed()

	// we want to make sure that json version of the seed
	// is the same as the manually crafted seed struct
	var got *dto.Seed
	require.NoError(t, json.Unmarshal(ValidSeedBytes, &got))
	require.Equal(t, want, got)

	return want
}

func validSeed() *dto.Seed {
	return &dto.Seed{
		DefaultConfigs: []dto.DefaultConfigRequest{
			{
				Name:         "main",
				FeeRecipient: types.Some("0x50155530FCE8a85ec7055A5F8b2bE214B3DaeFd3"),
				GasLimit:     types.Some("30000000"),
				MinValue:     types.Some("0.05"),
				Relays: map[string]dto.RelayConfig{
					FlashbotsRelayURL: {PublicKey: flashbotsRelayKey},
					MaxProfitRelayURL: {PublicKey: maxProfitRelayKey, MinValue: types.Some("0.1")},
				},
			},
		},
		Proposers: []dto.SeedProposer{
			{
				PublicKey: ValidatorKey1,
				ProposerRequest: dto.ProposerRequest{
					FeeRecipient: types.Some("0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5"),
					GasLimit:     types.Some("12345654321"),
					ResetRelays:  true,
					Relays: map[string]dto.ProposerRelayConfig{
						EthicalRelayURL: {RelayConfig: dto.RelayConfig{PublicKey: ethicalRelayKey}},
					},
				},
			},
			{
				PublicKey: ValidatorKey2,
				ProposerRequest: dto.ProposerRequest{
					Relays: map[string]dto.ProposerRelayConfig{
						FlashbotsRelayURL: {RelayConfig: dto.RelayConfig{PublicKey: flashbotsRelayKey}, Disabled: true},
					},
				},
			},
		},
		ProposerPatterns: []dto.ProposerPatternRequest{
			{
				Name:     "pool-1-high-value",
				Pattern:  types.Some("^0xa"),
				Tags:     types.Some([]string{"pool-1", "high-value"}),
				MinValue: types.Some("0.2"),
			},
		},
		MuxConfigs: []dto.MuxConfigRequest{
			{Name: "pool-1", Keys: []string{ValidatorKey1, ValidatorKey2}},
		},
	}
}
