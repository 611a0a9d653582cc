package snapshot

import (
	"context"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/google/uuid"
)

// Reader loads snapshots from a Store.
type Reader struct {
	log   logger.Logger
	store Store
	opts  options
}

func NewReader(log logger.Logger, store Store, opts ...Option) (*Reader, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reader{log: log, store: store, opts: o}, nil
}

// Load reads snapshot id and restores it into a block of capacity bytes (zero
// for just the saved prefix). If the reader has a verify key the seal must be
// present and valid.
func (r *Reader) Load(ctx context.Context, id uuid.UUID, capacity int, opts ...arena.Option) (*arena.Arena, Manifest, error) {
	data, err := r.store.Get(ctx, SnapshotName(id))
	if err != nil {
		return nil, Manifest{}, err
	}
	m, block, err := Decode(*r.opts.codec, data)
	if err != nil {
		return nil, Manifest{}, err
	}
	if m.ID != id {
		return nil, Manifest{}, fmt.Errorf("%w: id %s, want %s", ErrManifestMismatch, m.ID, id)
	}

	if r.opts.verifyKey != nil {
		seal, err := r.store.Get(ctx, SealName(id))
		if err != nil {
			return nil, Manifest{}, err
		}
		claims, err := VerifySeal(*r.opts.codec, seal, r.opts.verifyKey, m)
		if err != nil {
			return nil, Manifest{}, err
		}
		r.log.Debugf("snapshot: %s sealed by %s for %s", id, claims.Issuer, claims.Subject)
	}

	a, err := restoreBlock(block, m, capacity, opts...)
	if err != nil {
		return nil, Manifest{}, err
	}
	r.log.Infof("snapshot: loaded %s used=%d capacity=%d", id, m.Used, capacity)
	return a, m, nil
}
