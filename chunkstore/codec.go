package chunkstore

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec compresses and decompresses chunk payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	// Decode decompresses data. size is the exact uncompressed length,
	// known to the caller from the block dimensions.
	Decode(data []byte, size int) ([]byte, error)
}

// Default is the codec used for newly written artifacts. Existing artifacts
// are self-describing (the codec name is recorded in meta.json) and are opened
// with the codec they were written with.
var Default Codec = Zstd{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	case "raw":
		return Raw{}, true
	default:
		return nil, false
	}
}

// Raw stores payloads uncompressed.
type Raw struct{}

func (Raw) Name() string { return "raw" }

func (Raw) Encode(data []byte) ([]byte, error) { return data, nil }

func (Raw) Decode(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("raw payload: got %d bytes, want %d", len(data), size)
	}
	return data, nil
}

// Zstd compresses payloads with zstd. Better ratio, good default for grids
// that are read many times.
type Zstd struct{}

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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Encode(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (Zstd) Decode(data []byte, size int) ([]byte, error) {
	dec := getZstdDecoder()
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("zstd payload: got %d bytes, want %d", len(out), size)
	}
	return out, nil
}

// LZ4 compresses payloads with lz4 block compression. Faster, lower ratio.
// Payloads carry a one-byte flag: 0 means the block was incompressible and
// is stored as-is, 1 means an lz4 block follows.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Encode(data []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 encode: %w", err)
	}
	if n == 0 {
		// Incompressible.
		return append([]byte{0}, data...), nil
	}
	return append([]byte{1}, buf[:n]...), nil
}

func (LZ4) Decode(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("lz4 payload: missing flag byte")
	}
	flag, body := data[0], data[1:]
	if flag == 0 {
		if len(body) != size {
			return nil, fmt.Errorf("lz4 payload: got %d bytes, want %d", len(body), size)
		}
		return body, nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decode: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 payload: got %d bytes, want %d", n, size)
	}
	return out, nil
}
