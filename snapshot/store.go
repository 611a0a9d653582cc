package snapshot

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	SnapshotExt = ".snap"
	SealExt     = ".seal"
)

// Store is where encoded snapshots and seals are kept, by name.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	// Get returns ErrNotFound (possibly wrapped) for an unknown name.
	Get(ctx context.Context, name string) ([]byte, error)
}

func SnapshotName(id uuid.UUID) string { return id.String() + SnapshotExt }
func SealName(id uuid.UUID) string     { return id.String() + SealExt }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
