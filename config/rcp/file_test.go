package rcp_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/flashbots/fee-manager/config/rcp"
	"github.com/flashbots/fee-manager/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSeedProvider(t *testing.T) {
	t.Parallel()

	t.Run("it returns the seed", func(t *testing.T) {
		t.Parallel()

		// arrange
		want := testdata.ValidSeed(t)
		sut := rcp.NewFile(testdata.ValidSeedFilePath)

		// act
		got, err := sut.FetchSeed()

		// assert
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("it returns an error if it cannot open the seed file", func(t *testing.T) {
		t.Parallel()

		// arrange
		sut := rcp.NewFile("/non/existent/file/path")

		// act
		_, err := sut.FetchSeed()

		// assert
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("it returns an error if the seed file has malformed contents", func(t *testing.T) {
		t.Parallel()

		// arrange
		sut := rcp.NewFile(testdata.CorruptedSeedFilePath)

		// act
		_, err := sut.FetchSeed()

		// assert
		assert.ErrorIs(t, err, rcp.ErrMalformedSeed)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("it rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		// arrange
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"default_config":[]}`), 0o600))

		// act
		_, err := rcp.NewFile(path).FetchSeed()

		// assert
		assert.ErrorIs(t, err, rcp.ErrMalformedSeed)
	})
}
