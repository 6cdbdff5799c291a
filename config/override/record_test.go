package override_test

import (
	"encoding/json"
	"testing"

	"github.com/flashbots/fee-manager/config/override"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/config/relay/reltest"
	"github.com/flashbots/fee-manager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	t.Parallel()

	t.Run("it normalizes the set fields", func(t *testing.T) {
		t.Parallel()

		// act
		got, err := override.NewRecord(
			types.Some("0xdb65fed33dc262fe09d9a2ba8f80b329ba25f941"),
			types.Some(" 30000000 "),
			types.None[string](),
			true,
			nil,
		)

		// assert
		require.NoError(t, err)
		assert.Equal(t, types.Some("0xdb65fEd33dc262Fe09D9a2Ba8F80b329BA25f941"), got.FeeRecipient)
		assert.Equal(t, types.Some("30000000"), got.GasLimit)
		assert.False(t, got.MinValue.IsSet())
		assert.True(t, got.ResetRelays)
		assert.NotNil(t, got.Relays)
	})

	t.Run("it rejects invalid values", func(t *testing.T) {
		t.Parallel()

		_, err := override.NewRecord(types.Some("0x123"), types.None[string](), types.None[string](), false, nil)
		assert.ErrorIs(t, err, types.ErrInvalidAddress)

		_, err = override.NewRecord(types.None[string](), types.Some("-1"), types.None[string](), false, nil)
		assert.ErrorIs(t, err, types.ErrInvalidGasLimit)

		_, err = override.NewRecord(types.None[string](), types.None[string](), types.Some("-0.5"), false, nil)
		assert.ErrorIs(t, err, types.ErrInvalidMinValue)
	})
}

func TestRecordProject(t *testing.T) {
	t.Parallel()

	t.Run("it emits only its own fields", func(t *testing.T) {
		t.Parallel()

		// arrange
		sut := override.Record{GasLimit: types.Some("36000000")}

		// act
		got := sut.Project("0xkey", relay.NewRelaySet())
		raw, err := json.Marshal(got)

		// assert
		require.NoError(t, err)
		assert.JSONEq(t, `{"proposer":"0xkey","gas_limit":"36000000"}`, string(raw))
	})

	t.Run("it merges relays with the defaults without reset", func(t *testing.T) {
		t.Parallel()

		// arrange
		defaults := reltest.RandomRelaySet(t, 2)
		own := reltest.RandomRelaySet(t, 1)
		sut := override.Record{Relays: own}

		// act
		got := sut.Project("0xkey", defaults)

		// assert
		assert.Len(t, got.Relays, 3)
		assert.False(t, got.ResetRelays)
	})

	t.Run("it emits only its own relays on reset", func(t *testing.T) {
		t.Parallel()

		// arrange
		own := reltest.RandomRelayEntry(t)
		sut := override.Record{ResetRelays: true, Relays: reltest.RelaySetFromList(own)}

		// act
		got := sut.Project("0xkey", reltest.RandomRelaySet(t, 2))
		raw, err := json.Marshal(got)

		// assert
		require.NoError(t, err)
		assert.Len(t, got.Relays, 1)
		assert.Contains(t, got.Relays, own.URL)
		assert.Contains(t, string(raw), `"reset_relays":true`)
	})

	t.Run("it drops disabled relays", func(t *testing.T) {
		t.Parallel()

		// arrange
		disabled := reltest.DisabledRelayEntry(t)
		sut := override.Record{Relays: reltest.RelaySetFromList(disabled)}

		// act
		got := sut.Project("0xkey", nil)

		// assert
		assert.Empty(t, got.Relays)
	})
}

func TestRecordDefaults(t *testing.T) {
	t.Parallel()

	t.Run("it renders version 2 with the fields verbatim", func(t *testing.T) {
		t.Parallel()

		// arrange
		relays := reltest.RandomRelaySet(t, 2)
		sut := override.Record{FeeRecipient: types.Some("0xAAA"), Relays: relays}

		// act
		got := sut.Defaults()

		// assert
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, types.Some("0xAAA"), got.FeeRecipient)
		assert.False(t, got.GasLimit.IsSet())
		assert.Len(t, got.Relays, 2)
		assert.Empty(t, got.Proposers)
	})
}
