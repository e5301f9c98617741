package ledger

import (
	"bytes"
	"reactledger/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompression_RoundTrip(t *testing.T) {
	z, err := NewZstdCompressor()
	require.NoError(t, err)
	defer z.Close()

	data := bytes.Repeat([]byte(`{"author_id":"1234","reactions":{}}`), 100)
	compressed, err := z.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))
	assert.True(t, bytes.HasPrefix(compressed, zstdMagic))

	out, err := z.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestZstdCompression_PassesPlainThrough(t *testing.T) {
	z, err := NewZstdCompressor()
	require.NoError(t, err)
	defer z.Close()

	out, err := z.Decompress([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), out)
}

func TestZstdCompression_CorruptFrame(t *testing.T) {
	z, err := NewZstdCompressor()
	require.NoError(t, err)
	defer z.Close()

	_, err = z.Decompress(append(append([]byte{}, zstdMagic...), 0xff, 0xff, 0xff))
	assert.Error(t, err)
}

func TestNewCompressor(t *testing.T) {
	plain, cleanup, err := NewCompressor(&structures.Config{})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &PlainCompression{}, plain)

	out, err := plain.Compress([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	zc, zcleanup, err := NewCompressor(&structures.Config{Persistence: structures.Persistence{Compress: true}})
	require.NoError(t, err)
	defer zcleanup()
	assert.IsType(t, &ZstdCompression{}, zc)
}

func TestNewCompressor_CleanupClosesCodec(t *testing.T) {
	for _, compress := range []bool{false, true} {
		comp, cleanup, err := NewCompressor(&structures.Config{Persistence: structures.Persistence{Compress: compress}})
		require.NoError(t, err)

		z, ok := comp.(*ZstdCompression)
		if !ok {
			z = comp.(*PlainCompression).zstd
		}
		assert.False(t, z.closed)

		cleanup()
		assert.True(t, z.closed)
		assert.NotPanics(t, comp.Close)
	}
}
