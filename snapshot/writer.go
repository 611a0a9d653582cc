package snapshot

import (
	"context"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/google/uuid"
)

// Writer saves snapshots to a Store.
type Writer struct {
	log   logger.Logger
	store Store
	opts  options
}

func NewWriter(log logger.Logger, store Store, opts ...Option) (*Writer, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Writer{log: log, store: store, opts: o}, nil
}

// Save writes a snapshot of a under a new id, and its seal if the writer
// has a sealer.
func (w *Writer) Save(ctx context.Context, a arena.Allocator) (Manifest, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Manifest{}, err
	}
	data, m, err := Encode(*w.opts.codec, a, id, w.opts.now())
	if err != nil {
		return Manifest{}, err
	}
	if err := w.store.Put(ctx, SnapshotName(id), data); err != nil {
		return Manifest{}, err
	}

	if w.opts.sealer != nil {
		seal, err := w.opts.sealer.Seal(w.opts.signer, w.opts.subject, m)
		if err != nil {
			return Manifest{}, err
		}
		if err := w.store.Put(ctx, SealName(id), seal); err != nil {
			return Manifest{}, err
		}
	}

	w.log.Infof("snapshot: saved %s used=%d root=%d sealed=%t", id, m.Used, m.Root, w.opts.sealer != nil)
	return m, nil
}
