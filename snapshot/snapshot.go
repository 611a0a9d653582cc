package snapshot

import (
	"bytes"
	"fmt"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/google/uuid"
)

// Encode captures the used prefix of a's block.
func Encode(codec dtcbor.CBORCodec, a arena.Allocator, id uuid.UUID, now time.Time) ([]byte, Manifest, error) {
	block := a.Used()
	m := Manifest{
		ID:        id,
		RefWidth:  uint8(a.Width()),
		Used:      uint32(len(block)),
		Root:      uint32(a.Root()),
		Digest:    digest(block),
		Timestamp: now.UnixMilli(),
	}
	manifest, err := codec.MarshalCBOR(m)
	if err != nil {
		return nil, Manifest{}, err
	}

	env := EnvelopeV1{ManifestLen: uint32(len(manifest)), BlockLen: uint32(len(block))}
	data := make([]byte, 0, EnvelopeBytesV1+len(manifest)+len(block))
	data = append(data, env.Encode()...)
	data = append(data, manifest...)
	data = append(data, block...)
	return data, m, nil
}

// Decode checks an encoded snapshot and returns its manifest and block. The
// block aliases data.
func Decode(codec dtcbor.CBORCodec, data []byte) (Manifest, []byte, error) {
	env, err := DecodeEnvelopeV1(data)
	if err != nil {
		return Manifest{}, nil, err
	}
	manifestEnd := EnvelopeBytesV1 + int(env.ManifestLen)

	var m Manifest
	if err := codec.UnmarshalInto(data[EnvelopeBytesV1:manifestEnd], &m); err != nil {
		return Manifest{}, nil, err
	}
	block := data[manifestEnd:]

	if m.Used != env.BlockLen {
		return Manifest{}, nil, fmt.Errorf("%w: used %d, block %d", ErrManifestMismatch, m.Used, env.BlockLen)
	}
	if !bytes.Equal(m.Digest, digest(block)) {
		return Manifest{}, nil, ErrDigestMismatch
	}
	h, ok, err := arena.DecodeHeaderV1(block)
	if err != nil {
		return Manifest{}, nil, err
	}
	if !ok || uint8(h.Width) != m.RefWidth || h.Top != m.Used || uint32(h.Root) != m.Root {
		return Manifest{}, nil, fmt.Errorf("%w: arena header disagrees", ErrManifestMismatch)
	}
	return m, block, nil
}

// Restore decodes data into a fresh block of capacity bytes and opens an
// arena over it. A capacity of zero sizes the block to the saved prefix.
func Restore(codec dtcbor.CBORCodec, data []byte, capacity int, opts ...arena.Option) (*arena.Arena, Manifest, error) {
	m, block, err := Decode(codec, data)
	if err != nil {
		return nil, Manifest{}, err
	}
	a, err := restoreBlock(block, m, capacity, opts...)
	if err != nil {
		return nil, Manifest{}, err
	}
	return a, m, nil
}

func restoreBlock(block []byte, m Manifest, capacity int, opts ...arena.Option) (*arena.Arena, error) {
	if capacity == 0 {
		capacity = len(block)
	}
	limit := arena.RefWidth(m.RefWidth).MaxBlockBytes()
	if capacity < len(block) || uint64(capacity) > limit {
		return nil, fmt.Errorf("%w: capacity %d, saved %d, limit %d", ErrCapacity, capacity, len(block), limit)
	}
	buf := make([]byte, capacity)
	copy(buf, block)
	return arena.Open(buf, opts...)
}
