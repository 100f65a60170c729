package snapshot

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4"
)

// Compressor is the compression contract for snapshot payloads.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)

	// Decompress inflates data into a buffer of exactly uncompressedSize
	// bytes. The size is carried in the snapshot header.
	Decompress(data []byte, uncompressedSize int) ([]byte, error)
}

// Factory creates a compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register makes a compressor available under name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor instance for name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
	return factory(), nil
}

func init() {
	Register("none", func() Compressor { return &NoCompressor{} })
	Register("lz4", func() Compressor { return &LZ4Compressor{} })
}

// NoCompressor passes payloads through unchanged.
type NoCompressor struct{}

func (c *NoCompressor) Name() string { return "none" }

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *NoCompressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) != uncompressedSize {
		return nil, fmt.Errorf("payload size %d does not match header size %d", len(data), uncompressedSize)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// LZ4Compressor compresses payloads with LZ4 block compression.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// Incompressible input; CompressBlock signals this with zero.
		return nil, errIncompressible
	}
	return compressed[:n], nil
}

var errIncompressible = fmt.Errorf("lz4: input is incompressible")

func (c *LZ4Compressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if uncompressedSize == 0 {
		return []byte{}, nil
	}
	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return out[:n], nil
}
