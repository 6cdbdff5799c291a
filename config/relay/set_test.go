package relay_test

import (
	"strings"
	"testing"

	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/config/relay/reltest"
	"github.com/flashbots/fee-manager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelaySet(t *testing.T) {
	t.Parallel()

	t.Run("it adds a relay entry", func(t *testing.T) {
		t.Parallel()

		// arrange
		want := reltest.RandomRelayEntry(t)
		sut := relay.NewRelaySet()

		// act
		sut.Add(want)

		// assert
		assert.Contains(t, sut.ToList(), want)
	})

	t.Run("it keeps only the last entry for the same url", func(t *testing.T) {
		t.Parallel()

		// arrange
		sut := reltest.RelaySetWithRelaysHavingTheSameURL(t, 3)

		// act
		got := sut.ToList()

		// assert
		assert.Len(t, got, 1)
	})

	t.Run("it renders as a sorted slice of relay urls", func(t *testing.T) {
		t.Parallel()

		// arrange
		a := reltest.RelayEntryFromURL(t, "https://a.test.net/")
		b := reltest.RelayEntryFromURL(t, "https://b.test.net/")
		sut := reltest.RelaySetFromList(b, a)

		// act
		got := sut.ToStringSlice()

		// assert
		assert.Equal(t, []string{a.URL, b.URL}, got)
		assert.Equal(t, a.URL+","+b.URL, sut.String())
	})

	t.Run("it filters disabled entries", func(t *testing.T) {
		t.Parallel()

		// arrange
		enabled := reltest.RandomRelayEntry(t)
		disabled := reltest.DisabledRelayEntry(t)
		sut := reltest.RelaySetFromList(enabled, disabled)

		// act
		got := sut.Enabled()

		// assert
		assert.Equal(t, reltest.RelaySetFromList(enabled), got)
		assert.Len(t, sut, 2, "source set must not be modified")
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("it replaces base entries sharing a url with overlay entries", func(t *testing.T) {
		t.Parallel()

		// arrange
		baseA := reltest.RelayEntryFromURL(t, "https://a/")
		baseOnly := reltest.RelayEntryFromURL(t, "https://c/")
		overlayA := reltest.RelayEntryFromURL(t, "https://a/")
		overlayA.FeeRecipient = types.Some(reltest.RandomFeeRecipient(t))
		overlayOnly := reltest.RelayEntryFromURL(t, "https://b/")

		base := reltest.RelaySetFromList(baseA, baseOnly)
		overlay := reltest.RelaySetFromList(overlayA, overlayOnly)

		// act
		got := relay.Merge(base, overlay)

		// assert
		assert.Equal(t, reltest.RelaySetFromList(overlayA, baseOnly, overlayOnly), got)
		assert.Equal(t, baseA, base["https://a/"], "base must not be modified")
		assert.Len(t, overlay, 2, "overlay must not be modified")
	})

	t.Run("it returns the base set when the overlay is empty", func(t *testing.T) {
		t.Parallel()

		// arrange
		base := reltest.RandomRelaySet(t, 3)

		// act
		got := relay.Merge(base, nil)

		// assert
		assert.Equal(t, base, got)
	})

	t.Run("it is a union for disjoint sets", func(t *testing.T) {
		t.Parallel()

		// arrange
		base := reltest.RandomRelaySet(t, 2)
		overlay := reltest.RandomRelaySet(t, 3)

		// act
		got := relay.Merge(base, overlay)

		// assert
		assert.Equal(t, reltest.JoinSets(base, overlay), got)
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("it discards the base set on reset", func(t *testing.T) {
		t.Parallel()

		// arrange
		base := reltest.RandomRelaySet(t, 3)
		overlay := reltest.RandomRelaySet(t, 1)

		// act
		got := relay.Resolve(base, overlay, true)

		// assert
		assert.Equal(t, overlay, got)
	})

	t.Run("it returns an empty set on reset with an empty overlay", func(t *testing.T) {
		t.Parallel()

		// act
		got := relay.Resolve(reltest.RandomRelaySet(t, 2), nil, true)

		// assert
		assert.Empty(t, got)
	})

	t.Run("it merges without reset", func(t *testing.T) {
		t.Parallel()

		// arrange
		base := reltest.RandomRelaySet(t, 2)
		overlay := reltest.RandomRelaySet(t, 2)

		// act
		got := relay.Resolve(base, overlay, false)

		// assert
		assert.Len(t, got, 4)
	})

	t.Run("disabled entries never survive emission in either mode", func(t *testing.T) {
		t.Parallel()

		// arrange
		shared := reltest.RelayEntryFromURL(t, "https://shared/")
		disabledShared := shared
		disabledShared.Disabled = true
		base := reltest.RelaySetFromList(shared, reltest.RandomRelayEntry(t))
		overlay := reltest.RelaySetFromList(disabledShared, reltest.DisabledRelayEntry(t))

		for _, reset := range []bool{true, false} {
			// act
			got := relay.Resolve(base, overlay, reset).Enabled()

			// assert
			for _, entry := range got {
				assert.False(t, entry.Disabled)
			}
			assert.NotContains(t, got, "https://shared/")
		}
	})
}

func TestNewRelayEntry(t *testing.T) {
	t.Parallel()

	t.Run("it creates an entry", func(t *testing.T) {
		t.Parallel()

		// arrange
		pubKey := reltest.RandomBLSPublicKey(t)

		// act
		got, err := relay.NewRelayEntry(" https://relay.test.net/ ", pubKey.String())

		// assert
		require.NoError(t, err)
		assert.Equal(t, "https://relay.test.net/", got.URL)
		assert.Equal(t, pubKey, got.PublicKey)
		assert.False(t, got.Disabled)
	})

	t.Run("it fails on a malformed url", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{"invalid-relay-url", "ftp://relay.test.net", "https://"} {
			_, err := relay.NewRelayEntry(u, reltest.RandomBLSPublicKey(t).String())
			assert.ErrorIs(t, err, relay.ErrInvalidRelayURL, u)
		}
	})

	t.Run("it fails without a public key", func(t *testing.T) {
		t.Parallel()

		_, err := relay.NewRelayEntry("https://relay.test.net", "")
		assert.ErrorIs(t, err, relay.ErrMissingRelayPubKey)
	})

	t.Run("it fails on the point-at-infinity", func(t *testing.T) {
		t.Parallel()

		_, err := relay.NewRelayEntry("https://relay.test.net", types.PublicKey{}.String())
		assert.ErrorIs(t, err, relay.ErrPointAtInfinityPubkey)
	})

	t.Run("it fails on a key that is not on the curve", func(t *testing.T) {
		t.Parallel()

		_, err := relay.NewRelayEntry("https://relay.test.net", "0x"+strings.Repeat("11", 48))
		assert.ErrorIs(t, err, types.ErrInvalidPublicKey)
	})

	t.Run("it validates overrides", func(t *testing.T) {
		t.Parallel()

		// arrange
		entry := reltest.RandomRelayEntry(t)

		// act
		_, errGas := entry.WithOverrides(types.None[string](), types.Some("x"), types.None[string]())
		got, err := entry.WithOverrides(
			types.Some("0xdb65fed33dc262fe09d9a2ba8f80b329ba25f941"),
			types.Some("30000000"),
			types.Some("0.1"),
		)

		// assert
		assert.ErrorIs(t, errGas, types.ErrInvalidGasLimit)
		require.NoError(t, err)
		assert.Equal(t, types.Some("0xdb65fEd33dc262Fe09D9a2Ba8F80b329BA25f941"), got.FeeRecipient)
		assert.Equal(t, types.Some("30000000"), got.GasLimit)
		assert.Equal(t, types.Some("0.1"), got.MinValue)
	})
}
