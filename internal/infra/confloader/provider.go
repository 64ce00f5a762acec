package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider feeds an in-memory map to koanf. Keys may be dotted
// ("server.redis.addr") or nested maps.
type mapProvider map[string]any

// ReadBytes is not supported; koanf falls back to Read.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map, expanding dotted keys.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		insertDotted(out, k, v)
	}
	return out, nil
}

func insertDotted(dst map[string]any, key string, v any) {
	for {
		i := strings.IndexByte(key, '.')
		if i < 0 {
			dst[key] = v
			return
		}
		head := key[:i]
		next, ok := dst[head].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[head] = next
		}
		dst, key = next, key[i+1:]
	}
}
