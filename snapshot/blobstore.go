package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

const (
	azblobBlobNotFound = "BlobNotFound"
)

// BlobStorer is the part of the azblob storer a BlobStore uses.
type BlobStorer interface {
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
}

// BlobStore keeps snapshots as blobs under a path prefix. Blobs are written
// once, a second Put of the same name fails.
type BlobStore struct {
	log    logger.Logger
	storer BlobStorer
	prefix string
}

func NewBlobStore(log logger.Logger, storer BlobStorer, prefix string) *BlobStore {
	return &BlobStore{log: log, storer: storer, prefix: prefix}
}

func (b *BlobStore) blobPath(name string) string { return b.prefix + name }

func (b *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	path := b.blobPath(name)
	_, err := b.storer.Put(ctx, path, azblob.NewBytesReaderCloser(data),
		azblob.WithEtagNoneMatch("*"),
		azblob.WithTags(map[string]string{"kind": kindTag(name)}),
	)
	if err != nil {
		return err
	}
	b.log.Debugf("snapshot: put blob %s (%d bytes)", path, len(data))
	return nil
}

func (b *BlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	path := b.blobPath(name)
	rr, err := b.storer.Reader(ctx, path)
	if err != nil {
		return nil, WrapBlobNotFound(err)
	}
	if rr.Reader == nil {
		return nil, fmt.Errorf("%w: %s has no content", ErrNotFound, path)
	}
	defer rr.Reader.Close()
	return io.ReadAll(rr.Reader)
}

func kindTag(name string) string {
	if strings.HasSuffix(name, SealExt) {
		return "seal"
	}
	return "snapshot"
}

func asStorageError(err error) (azStorageBlob.StorageError, bool) {
	serr := &azStorageBlob.StorageError{}
	//nolint
	ierr, ok := err.(*azStorageBlob.InternalError)
	if ierr == nil || !ok {
		return azStorageBlob.StorageError{}, false
	}
	if !ierr.As(&serr) {
		return azStorageBlob.StorageError{}, false
	}
	return *serr, true
}

// WrapBlobNotFound maps the azure blob not found error to ErrNotFound. Any
// other err is returned as is, including nil.
func WrapBlobNotFound(err error) error {
	if err == nil {
		return nil
	}
	serr, ok := asStorageError(err)
	if !ok {
		return err
	}
	if serr.ErrorCode != azblobBlobNotFound {
		return err
	}
	return fmt.Errorf("%s: %w", err.Error(), ErrNotFound)
}

func IsBlobNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	serr, ok := asStorageError(err)
	if !ok {
		return false
	}
	return serr.ErrorCode == azblobBlobNotFound
}
