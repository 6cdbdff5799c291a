package reltest

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/types"
	"github.com/flashbots/go-boost-utils/bls"
	"github.com/stretchr/testify/require"
)

func RandomRelaySet(tb testing.TB, num int) relay.Set {
	tb.Helper()

	s := relay.NewRelaySet()
	for i := 0; i < num; i++ {
		s.Add(RandomRelayEntry(tb))
	}

	return s
}

func RelaySetWithRelaysHavingTheSameURL(tb testing.TB, num int) relay.Set {
	tb.Helper()

	relayURL := RandomRelayURL(tb)

	s := relay.NewRelaySet()
	for i := 0; i < num; i++ {
		s.Add(RelayEntryFromURL(tb, relayURL))
	}

	return s
}

func RandomRelayEntry(tb testing.TB) relay.Entry {
	tb.Helper()

	return RelayEntryFromURL(tb, RandomRelayURL(tb))
}

func RelayEntryFromURL(tb testing.TB, relayURL string) relay.Entry {
	tb.Helper()

	relayEntry, err := relay.NewRelayEntry(relayURL, RandomBLSPublicKey(tb).String())
	require.NoError(tb, err)

	return relayEntry
}

// DisabledRelayEntry returns a random entry with the disabled flag set.
func DisabledRelayEntry(tb testing.TB) relay.Entry {
	tb.Helper()

	entry := RandomRelayEntry(tb)
	entry.Disabled = true

	return entry
}

func RandomRelayURL(tb testing.TB) string {
	tb.Helper()

	return fmt.Sprintf("https://relay-%d.test.net/", rand.Uint64()) //nolint:gosec
}

func RandomBLSPublicKey(tb testing.TB) types.PublicKey {
	tb.Helper()

	_, blsPublicKey, err := bls.GenerateNewKeypair()
	require.NoError(tb, err)

	var publicKey types.PublicKey
	publicKey.FromSlice(bls.PublicKeyToBytes(blsPublicKey))

	return publicKey
}

// RandomFeeRecipient returns a random checksummed execution address.
func RandomFeeRecipient(tb testing.TB) string {
	tb.Helper()

	var a types.Address
	_, err := rand.Read(a[:]) //nolint:gosec
	require.NoError(tb, err)

	return a.String()
}

func JoinSets(sets ...relay.Set) relay.Set {
	want := relay.NewRelaySet()

	for _, set := range sets {
		for _, entry := range set {
			want.Add(entry)
		}
	}

	return want
}

func PopulateSetFromList(s relay.Set, relays []relay.Entry) {
	for _, entry := range relays {
		s.Add(entry)
	}
}

func RelaySetFromList(relays ...relay.Entry) relay.Set {
	s := relay.NewRelaySet()
	PopulateSetFromList(s, relays)

	return s
}
