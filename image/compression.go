package image

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the payload compression algorithm.
type CompressionType uint8

const (
	// CompressionNone stores entries uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast, moderate ratio).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD compression (better ratio, still fast).
	CompressionZSTD CompressionType = 2
)

func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

func (t CompressionType) valid() bool {
	return t <= CompressionZSTD
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressEntry compresses one entry's content. Stored bytes are smaller
// than the input iff they are compressed; incompressible content is stored
// raw, so decompressEntry can tell the two apart by comparing sizes.
func compressEntry(data []byte, t CompressionType) ([]byte, error) {
	if t == CompressionNone || len(data) == 0 {
		return data, nil
	}

	var compressed []byte
	switch t {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible
			return data, nil
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		compressed = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("image: unknown compression type %d", t)
	}

	if len(compressed) >= len(data) {
		return data, nil
	}
	return compressed, nil
}

// decompressEntry restores one entry's content. size is the uncompressed
// size recorded in the manifest; stored bytes of exactly that size are raw.
func decompressEntry(stored []byte, size uint32, t CompressionType) ([]byte, error) {
	if uint32(len(stored)) == size {
		out := make([]byte, size)
		copy(out, stored)
		return out, nil
	}

	switch t {
	case CompressionNone:
		return nil, fmt.Errorf("image: stored size %d does not match entry size %d", len(stored), size)
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("image: decompressed size %d does not match entry size %d", n, size)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(stored, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != size {
			return nil, fmt.Errorf("image: decompressed size %d does not match entry size %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("image: unknown compression type %d", t)
	}
}
