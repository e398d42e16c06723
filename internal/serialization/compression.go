package serialization

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how the payload is stored.
type Compression uint8

// Supported payload compressions.
const (
	CompressionNone Compression = iota
	CompressionLZ4              // fast
	CompressionZstd             // better ratio
)

// String returns the name stored in the header.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression converts a name produced by String back to a Compression.
// The empty string means no compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

func (c Compression) flag() uint32 {
	switch c {
	case CompressionLZ4:
		return FlagLZ4
	case CompressionZstd:
		return FlagZstd
	default:
		return 0
	}
}

// zstdInitialRatio sizes the first decode buffer relative to the stored bytes.
const zstdInitialRatio = 8

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadSize))
}

// compress returns nil without error when the data can not be compressed.
func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		if len(data) == 0 {
			return data, nil
		}
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		return out[:n], nil
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}

func decompress(data []byte, c Compression, size int64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if int64(len(data)) != size {
			return nil, fmt.Errorf("%w: payload has %d bytes, header says %d", ErrTruncated, len(data), size)
		}
		return data, nil
	case CompressionLZ4:
		out := make([]byte, size)
		if size == 0 {
			return out, nil
		}
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if int64(n) != size {
			return nil, fmt.Errorf("lz4: decompressed %d bytes, expected %d", n, size)
		}
		return out, nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zstdDecoderPool.Put(dec)
		// size is bounded by MaxPayloadSize only, so let the buffer grow
		out, err := dec.DecodeAll(data, make([]byte, 0, min(size, zstdInitialRatio*int64(len(data)))))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if int64(len(out)) != size {
			return nil, fmt.Errorf("zstd: decompressed %d bytes, expected %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}
}
