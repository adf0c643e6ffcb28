package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForName(t *testing.T) {
	c, err := ForName("none")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())

	c, err = ForName("lz4")
	require.NoError(t, err)
	assert.Equal(t, "lz4", c.Name())

	c, err = ForName("")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())

	_, err = ForName("zstd")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("short"),
		bytes.Repeat([]byte("compressible payload "), 100),
		{0x00, 0x01, 0xFF, 0xFE},
	}
	for _, name := range []string{"none", "lz4"} {
		c, err := ForName(name)
		require.NoError(t, err)
		for _, input := range inputs {
			encoded, err := c.Compress(input)
			require.NoError(t, err)
			decoded, err := c.Decompress(encoded)
			require.NoError(t, err)
			assert.Equal(t, input, decoded, "%s: %q", name, input)
		}
	}
}

func TestCompressibleDataShrinks(t *testing.T) {
	c, err := ForName("lz4")
	require.NoError(t, err)

	input := bytes.Repeat([]byte("aaaaaaaabbbbbbbb"), 256)
	encoded, err := c.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(input))
}

func TestCrossFormatDecode(t *testing.T) {
	// values written with one compressor are readable by the other
	none, _ := ForName("none")
	lz, _ := ForName("lz4")

	input := bytes.Repeat([]byte("xyz"), 200)

	encoded, err := none.Compress(input)
	require.NoError(t, err)
	decoded, err := lz.Decompress(encoded)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)

	encoded, err = lz.Compress(input)
	require.NoError(t, err)
	decoded, err = none.Decompress(encoded)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestDecodeCorrupt(t *testing.T) {
	c, _ := ForName("lz4")

	_, err := c.Decompress(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = c.Decompress([]byte{0x7F, 1, 2})
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = c.Decompress([]byte{1, 0, 0})
	assert.ErrorIs(t, err, ErrCorrupt)
}
