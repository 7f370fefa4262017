package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// cacheMagic identifies an on-disk frequency dump so the cache never
// silently misreads a stray file. The exact encoding is implementation
// private per the external interface; callers must not depend on it.
const cacheMagic = "PTFV"

// FrequencyCache is a read-through key-value store of FrequencyVectors
// keyed by dump filename. It is purely a performance optimization: the
// reader must produce identical results whether or not a cache is wired
// in, and whether or not it is already populated.
type FrequencyCache struct{}

// NewFrequencyCache constructs an empty cache handle. The cache itself has
// no in-memory state; every entry lives on disk at its derived key path.
func NewFrequencyCache() *FrequencyCache {
	return &FrequencyCache{}
}

// Load reads the vector stored at key, if any. ok is false and err is nil
// when no file exists at key.
func (c *FrequencyCache) Load(key string, depth int) (v FrequencyVector, ok bool, err error) {
	f, err := os.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &ErrIO{Path: key, Err: err}
	}
	defer f.Close()

	var header [9]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, false, &ErrIO{Path: key, Err: err}
	}
	if string(header[:4]) != cacheMagic {
		return nil, false, fmt.Errorf("engine: corrupt cache file %s: bad magic", key)
	}
	gotDepth := int(header[4])
	if gotDepth != depth {
		return nil, false, fmt.Errorf("engine: cache file %s built for depth %d, want %d", key, gotDepth, depth)
	}
	length := binary.BigEndian.Uint32(header[5:9])

	vec, err := NewFrequencyVector(depth)
	if err != nil {
		return nil, false, err
	}
	if int(length) != len(vec) {
		return nil, false, fmt.Errorf("engine: cache file %s has length %d, want %d", key, length, len(vec))
	}

	raw := make([]byte, 4*length)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, false, &ErrIO{Path: key, Err: err}
	}
	for i := range vec {
		vec[i] = uint64(binary.BigEndian.Uint32(raw[i*4:]))
	}
	return vec, true, nil
}

// Store writes v to key in the cache's self-identifying format, overwriting
// any existing entry (last-writer-wins, per the concurrency model).
func (c *FrequencyCache) Store(key string, depth int, v FrequencyVector) error {
	f, err := os.Create(key)
	if err != nil {
		return &ErrIO{Path: key, Err: err}
	}
	defer f.Close()

	var header [9]byte
	copy(header[:4], cacheMagic)
	header[4] = byte(depth)
	binary.BigEndian.PutUint32(header[5:9], uint32(len(v)))
	if _, err := f.Write(header[:]); err != nil {
		return &ErrIO{Path: key, Err: err}
	}

	raw := make([]byte, 4*len(v))
	for i, c := range v {
		binary.BigEndian.PutUint32(raw[i*4:], uint32(c))
	}
	if _, err := f.Write(raw); err != nil {
		return &ErrIO{Path: key, Err: err}
	}
	return nil
}
