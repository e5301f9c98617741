package ledger

import (
	"bytes"
	"fmt"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/structures"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type ZstdCompression struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	closeOnce sync.Once
	closed    bool
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

// Decompress passes plain snapshots through untouched so that a ledger
// written without compression can still be loaded after enabling it.
func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		return val, nil
	}
	return z.decoder.DecodeAll(val, nil)
}

// Close releases the encoder and decoder. Later calls are no-ops.
func (z *ZstdCompression) Close() {
	z.closeOnce.Do(func() {
		_ = z.encoder.Close()
		z.decoder.Close()
		z.closed = true
	})
}

func NewZstdCompressor() (*ZstdCompression, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// PlainCompression stores snapshots as plain JSON. Compressed snapshots
// are still readable.
type PlainCompression struct {
	zstd *ZstdCompression
}

func (p *PlainCompression) Compress(val []byte) ([]byte, error) {
	return val, nil
}

func (p *PlainCompression) Decompress(val []byte) ([]byte, error) {
	return p.zstd.Decompress(val)
}

func (p *PlainCompression) Close() {
	p.zstd.Close()
}

// NewCompressor returns the compressor for the configured mode and the
// cleanup that closes it.
func NewCompressor(conf *structures.Config) (interfaces.CompressorInterface, func(), error) {
	z, err := NewZstdCompressor()
	if err != nil {
		return nil, nil, err
	}
	if conf.Persistence.Compress {
		return z, z.Close, nil
	}
	return &PlainCompression{zstd: z}, z.Close, nil
}
