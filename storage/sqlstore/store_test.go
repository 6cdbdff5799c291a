package sqlstore_test

import (
	"context"
	"testing"

	"github.com/flashbots/fee-manager/config/override"
	"github.com/flashbots/fee-manager/config/relay"
	"github.com/flashbots/fee-manager/config/relay/reltest"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/storage/sqlstore"
	"github.com/flashbots/fee-manager/storage/sqlstore/storetest"
	"github.com/flashbots/fee-manager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(tb testing.TB) string {
	tb.Helper()

	return reltest.RandomBLSPublicKey(tb).String()
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	t.Run("it is idempotent", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)

		// act
		err := store.Migrate(context.Background())

		// assert
		require.NoError(t, err)
		require.NoError(t, store.Ping(context.Background()))
	})

	t.Run("it rejects unknown drivers", func(t *testing.T) {
		t.Parallel()

		_, err := sqlstore.Open(context.Background(), storetest.TestLog(), "mysql", "")

		assert.ErrorIs(t, err, sqlstore.ErrUnsupportedDriver)
	})
}

func TestDefaultConfigs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("it creates and reads a default config with relays", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		relays := reltest.RandomRelaySet(t, 2)
		cfg := storage.DefaultConfig{
			Name:         "main",
			FeeRecipient: types.Some(reltest.RandomFeeRecipient(t)),
			GasLimit:     types.Some("30000000"),
			Active:       true,
			Relays:       relays,
		}

		// act
		created, err := store.CreateDefaultConfig(ctx, cfg)
		require.NoError(t, err)
		got, err := store.GetDefaultConfig(ctx, "main")

		// assert
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, cfg.FeeRecipient, got.FeeRecipient)
		assert.Equal(t, cfg.GasLimit, got.GasLimit)
		assert.False(t, got.MinValue.IsSet())
		assert.Equal(t, relays, got.Relays)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("it rejects a duplicate name", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		_, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: "main", Active: true})
		require.NoError(t, err)

		// act
		_, err = store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: "main", Active: true})

		// assert
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("it hides inactive configs from resolution", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		_, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: "paused"})
		require.NoError(t, err)

		// act
		_, errActive := store.ActiveDefaultConfig(ctx, "paused")
		_, errGet := store.GetDefaultConfig(ctx, "paused")

		// assert
		assert.ErrorIs(t, errActive, storage.ErrNotFound)
		assert.NoError(t, errGet)
	})

	t.Run("it updates fields and replaces relays", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		cfg, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{
			Name:   "main",
			Active: true,
			Relays: reltest.RandomRelaySet(t, 3),
		})
		require.NoError(t, err)

		replacement := reltest.RandomRelaySet(t, 1)
		cfg.MinValue = types.Some("0.05")
		cfg.Relays = replacement

		// act
		got, err := store.UpdateDefaultConfig(ctx, cfg)

		// assert
		require.NoError(t, err)
		assert.Equal(t, types.Some("0.05"), got.MinValue)
		assert.Equal(t, replacement, got.Relays)
	})

	t.Run("it fails to update or delete an unknown config", func(t *testing.T) {
		t.Parallel()

		store := storetest.NewStore(t)

		_, err := store.UpdateDefaultConfig(ctx, storage.DefaultConfig{Name: "nope"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteDefaultConfig(ctx, "nope"), storage.ErrNotFound)
	})

	t.Run("it cascades deletes to relays", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		relays := reltest.RandomRelaySet(t, 2)
		_, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: "main", Active: true, Relays: relays})
		require.NoError(t, err)

		// act
		require.NoError(t, store.DeleteDefaultConfig(ctx, "main"))
		_, err = store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: "main", Active: true})
		require.NoError(t, err)
		got, err := store.GetDefaultConfig(ctx, "main")

		// assert
		require.NoError(t, err)
		assert.Empty(t, got.Relays)
	})

	t.Run("it lists with filters and pagination", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		for _, name := range []string{"pool-b", "pool-a", "other", "pool-c"} {
			_, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: name, Active: name != "pool-c"})
			require.NoError(t, err)
		}

		// act
		page, total, err := store.ListDefaultConfigs(ctx, storage.DefaultConfigFilter{
			Name: types.Some("pool-"),
			Page: storage.Page{Limit: 2, Offset: 1},
		})
		require.NoError(t, err)
		active, activeTotal, err := store.ListDefaultConfigs(ctx, storage.DefaultConfigFilter{Active: types.Some(false)})
		require.NoError(t, err)

		// assert
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.Equal(t, "pool-b", page[0].Name)
		assert.Equal(t, "pool-c", page[1].Name)
		assert.Equal(t, 1, activeTotal)
		assert.Equal(t, "pool-c", active[0].Name)
	})

	t.Run("it treats like wildcards in prefixes literally", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		for _, name := range []string{"a_b", "axb"} {
			_, err := store.CreateDefaultConfig(ctx, storage.DefaultConfig{Name: name, Active: true})
			require.NoError(t, err)
		}

		// act
		got, total, err := store.ListDefaultConfigs(ctx, storage.DefaultConfigFilter{Name: types.Some("a_")})

		// assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "a_b", got[0].Name)
	})
}

func TestProposers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("it creates then replaces a proposer", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		key := randomKey(t)
		disabled := reltest.DisabledRelayEntry(t)
		p := storage.Proposer{
			PublicKey: key,
			Record: override.Record{
				GasLimit: types.Some("36000000"),
				Relays:   reltest.RelaySetFromList(reltest.RandomRelayEntry(t), disabled),
			},
		}

		// act
		first, created, err := store.PutProposer(ctx, p)
		require.NoError(t, err)

		p.GasLimit = types.None[string]()
		p.ResetRelays = true
		p.Relays = reltest.RelaySetFromList(disabled)
		second, createdAgain, err := store.PutProposer(ctx, p)
		require.NoError(t, err)

		// assert
		assert.True(t, created)
		assert.Len(t, first.Relays, 2)
		assert.False(t, createdAgain)
		assert.False(t, second.GasLimit.IsSet())
		assert.True(t, second.ResetRelays)
		assert.Equal(t, reltest.RelaySetFromList(disabled), second.Relays)
		assert.True(t, second.Relays[disabled.URL].Disabled)
	})

	t.Run("it returns only stored proposers for a key batch", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		known := randomKey(t)
		_, _, err := store.PutProposer(ctx, storage.Proposer{PublicKey: known, Record: override.Record{Relays: relay.NewRelaySet()}})
		require.NoError(t, err)

		// act
		got, err := store.ProposersByKeys(ctx, []string{randomKey(t), known})

		// assert
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, known, got[0].PublicKey)
	})

	t.Run("it filters on relay attributes", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		withDisabled := randomKey(t)
		withEnabled := randomKey(t)
		_, _, err := store.PutProposer(ctx, storage.Proposer{
			PublicKey: withDisabled,
			Record:    override.Record{Relays: reltest.RelaySetFromList(reltest.DisabledRelayEntry(t))},
		})
		require.NoError(t, err)
		entry := reltest.RelayEntryFromURL(t, "https://special.test.net/")
		entry.MinValue = types.Some("0.1")
		_, _, err = store.PutProposer(ctx, storage.Proposer{
			PublicKey: withEnabled,
			Record:    override.Record{Relays: reltest.RelaySetFromList(entry)},
		})
		require.NoError(t, err)

		// act
		disabled, _, err := store.ListProposers(ctx, storage.ProposerFilter{RelayDisabled: types.Some(true)})
		require.NoError(t, err)
		byURL, _, err := store.ListProposers(ctx, storage.ProposerFilter{RelayURL: types.Some("https://special")})
		require.NoError(t, err)
		byMinValue, total, err := store.ListProposers(ctx, storage.ProposerFilter{RelayMinValue: types.Some("0.1")})
		require.NoError(t, err)

		// assert
		require.Len(t, disabled, 1)
		assert.Equal(t, withDisabled, disabled[0].PublicKey)
		require.Len(t, byURL, 1)
		assert.Equal(t, withEnabled, byURL[0].PublicKey)
		assert.Equal(t, 1, total)
		assert.Equal(t, withEnabled, byMinValue[0].PublicKey)
	})

	t.Run("it deletes a proposer", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		key := randomKey(t)
		_, _, err := store.PutProposer(ctx, storage.Proposer{PublicKey: key, Record: override.Record{Relays: reltest.RandomRelaySet(t, 1)}})
		require.NoError(t, err)

		// act
		err = store.DeleteProposer(ctx, key)

		// assert
		require.NoError(t, err)
		_, err = store.GetProposer(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteProposer(ctx, key), storage.ErrNotFound)
	})
}

func TestProposerPatterns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newPattern := func(name string, tags ...string) storage.ProposerPattern {
		return storage.ProposerPattern{
			Name:    name,
			Pattern: "^0x8",
			Tags:    tags,
			Record:  override.Record{Relays: relay.NewRelaySet()},
		}
	}

	t.Run("it selects patterns by any tag ordered by name", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		for _, p := range []storage.ProposerPattern{
			newPattern("P2", "pool-1", "high-value"),
			newPattern("P1", "pool-1"),
			newPattern("P3", "pool-2"),
		} {
			_, err := store.CreateProposerPattern(ctx, p)
			require.NoError(t, err)
		}

		// act
		pool1, err := store.ProposerPatternsByTags(ctx, []string{"pool-1"})
		require.NoError(t, err)
		highOrPool2, err := store.ProposerPatternsByTags(ctx, []string{"high-value", "pool-2"})
		require.NoError(t, err)
		none, err := store.ProposerPatternsByTags(ctx, nil)
		require.NoError(t, err)

		// assert
		require.Len(t, pool1, 2)
		assert.Equal(t, "P1", pool1[0].Name)
		assert.Equal(t, "P2", pool1[1].Name)
		assert.Equal(t, []string{"pool-1", "high-value"}, pool1[1].Tags)
		require.Len(t, highOrPool2, 2)
		assert.Equal(t, "P2", highOrPool2[0].Name)
		assert.Equal(t, "P3", highOrPool2[1].Name)
		assert.Empty(t, none)
	})

	t.Run("it updates tags and relays", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		p, err := store.CreateProposerPattern(ctx, newPattern("P1", "pool-1"))
		require.NoError(t, err)

		p.Tags = []string{"pool-2"}
		p.Relays = reltest.RandomRelaySet(t, 2)
		p.ResetRelays = true

		// act
		got, err := store.UpdateProposerPattern(ctx, p)
		require.NoError(t, err)
		byOldTag, err := store.ProposerPatternsByTags(ctx, []string{"pool-1"})
		require.NoError(t, err)

		// assert
		assert.Equal(t, []string{"pool-2"}, got.Tags)
		assert.Len(t, got.Relays, 2)
		assert.True(t, got.ResetRelays)
		assert.Empty(t, byOldTag)
	})

	t.Run("it lists by tag and pattern substring", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		other := newPattern("P2", "pool-2")
		other.Pattern = "^0xa"
		for _, p := range []storage.ProposerPattern{newPattern("P1", "pool-1"), other} {
			_, err := store.CreateProposerPattern(ctx, p)
			require.NoError(t, err)
		}

		// act
		byTag, _, err := store.ListProposerPatterns(ctx, storage.ProposerPatternFilter{Tag: types.Some("pool-2")})
		require.NoError(t, err)
		byPattern, total, err := store.ListProposerPatterns(ctx, storage.ProposerPatternFilter{Pattern: types.Some("0x8")})
		require.NoError(t, err)

		// assert
		require.Len(t, byTag, 1)
		assert.Equal(t, "P2", byTag[0].Name)
		assert.Equal(t, 1, total)
		assert.Equal(t, "P1", byPattern[0].Name)
	})

	t.Run("it rejects duplicates and unknown names", func(t *testing.T) {
		t.Parallel()

		store := storetest.NewStore(t)
		_, err := store.CreateProposerPattern(ctx, newPattern("P1"))
		require.NoError(t, err)

		_, err = store.CreateProposerPattern(ctx, newPattern("P1"))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		_, err = store.UpdateProposerPattern(ctx, newPattern("P9"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, store.DeleteProposerPattern(ctx, "P1"))
		assert.ErrorIs(t, store.DeleteProposerPattern(ctx, "P1"), storage.ErrNotFound)
	})
}

func TestMuxConfigs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("it adds and removes keys", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		k1, k2, k3 := randomKey(t), randomKey(t), randomKey(t)
		_, err := store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "pool-1", Keys: []string{k1, k2}})
		require.NoError(t, err)

		// act
		added, totalAfterAdd, err := store.AddMuxKeys(ctx, "pool-1", []string{k3, k1})
		require.NoError(t, err)
		removed, totalAfterRemove, err := store.RemoveMuxKeys(ctx, "pool-1", []string{k3})
		require.NoError(t, err)

		// assert
		assert.Equal(t, 1, added)
		assert.Equal(t, 3, totalAfterAdd)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 2, totalAfterRemove)
	})

	t.Run("it keeps keys in insertion order", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		keys := []string{randomKey(t), randomKey(t), randomKey(t)}

		// act
		_, err := store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "pool-1", Keys: keys})
		require.NoError(t, err)
		got, err := store.GetMuxConfig(ctx, "pool-1")

		// assert
		require.NoError(t, err)
		assert.Equal(t, keys, got.Keys)
	})

	t.Run("it replaces the key set", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		_, err := store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "pool-1", Keys: []string{randomKey(t)}})
		require.NoError(t, err)
		replacement := []string{randomKey(t), randomKey(t)}

		// act
		got, err := store.ReplaceMuxKeys(ctx, "pool-1", replacement)

		// assert
		require.NoError(t, err)
		assert.Equal(t, replacement, got.Keys)
	})

	t.Run("it fails on an unknown mux config", func(t *testing.T) {
		t.Parallel()

		store := storetest.NewStore(t)

		_, err := store.GetMuxConfig(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, _, err = store.AddMuxKeys(ctx, "nope", []string{randomKey(t)})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, _, err = store.RemoveMuxKeys(ctx, "nope", []string{randomKey(t)})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.ReplaceMuxKeys(ctx, "nope", nil)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteMuxConfig(ctx, "nope"), storage.ErrNotFound)
	})

	t.Run("it lists mux configs with key counts", func(t *testing.T) {
		t.Parallel()

		// arrange
		store := storetest.NewStore(t)
		_, err := store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "b", Keys: []string{randomKey(t), randomKey(t)}})
		require.NoError(t, err)
		_, err = store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "a"})
		require.NoError(t, err)

		// act
		got, total, err := store.ListMuxConfigs(ctx, storage.MuxConfigFilter{})

		// assert
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Name)
		assert.Equal(t, 0, got[0].KeyCount)
		assert.Equal(t, 2, got[1].KeyCount)
	})

	t.Run("it rejects a duplicate name", func(t *testing.T) {
		t.Parallel()

		store := storetest.NewStore(t)
		_, err := store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "a"})
		require.NoError(t, err)

		_, err = store.CreateMuxConfig(ctx, storage.MuxConfig{Name: "a"})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}
