package snapshot

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-jsonarena/arena"
	"github.com/forestrie/go-jsonarena/codec"
	"github.com/forestrie/go-jsonarena/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

const sampleDoc = `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}}}`

var fixedNow = time.UnixMilli(1700000000123)

func newSampleArena(t *testing.T, size int) *arena.Arena {
	t.Helper()
	a, err := arena.New(make([]byte, size))
	require.NoError(t, err)
	s := store.New(a)
	o, err := codec.Parse(s, []byte(sampleDoc))
	require.NoError(t, err)
	require.NoError(t, s.SetRoot(o))
	return a
}

func requireRootDump(t *testing.T, a arena.Allocator, want string) {
	t.Helper()
	o, ok := store.New(a).Root()
	require.True(t, ok)
	got, err := codec.Dump(o)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func newTestSigner(t *testing.T) (cose.Signer, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	require.NoError(t, err)
	return signer, key
}

func TestDecodeEnvelopeV1(t *testing.T) {
	good := EnvelopeV1{ManifestLen: 2, BlockLen: 3}.Encode()
	good = append(good, 1, 2, 3, 4, 5)

	tests := []struct {
		name    string
		data    []byte
		want    EnvelopeV1
		wantErr error
	}{
		{name: "valid", data: good, want: EnvelopeV1{ManifestLen: 2, BlockLen: 3}},
		{name: "short", data: good[:10], wantErr: ErrTruncated},
		{name: "truncated body", data: good[:len(good)-1], wantErr: ErrTruncated},
		{name: "extra body", data: append(bytes.Clone(good), 0), wantErr: ErrTruncated},
		{name: "magic", data: append([]byte("XSS1"), good[4:]...), wantErr: ErrBadMagic},
		{name: "version", data: append(append([]byte("JSS1"), 9), good[5:]...), wantErr: ErrBadVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEnvelopeV1(tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRestore(t *testing.T) {
	cborCodec, err := NewCodec()
	require.NoError(t, err)
	a := newSampleArena(t, 2048)
	id := uuid.New()

	data, m, err := Encode(cborCodec, a, id, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	assert.Equal(t, uint8(arena.RefWidth16), m.RefWidth)
	assert.Equal(t, uint32(len(a.Used())), m.Used)
	assert.Equal(t, uint32(a.Root()), m.Root)
	assert.Equal(t, fixedNow.UnixMilli(), m.Time().UnixMilli())

	restored, got, err := Restore(cborCodec, data, 4096)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, 4096, len(restored.Bytes()))
	assert.Equal(t, a.Used(), restored.Used())
	requireRootDump(t, restored, `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}}}`)

	// the restored arena keeps allocating after the saved prefix
	o, _ := store.New(restored).Root()
	require.NoError(t, o.SetString("z", "new"))
	requireRootDump(t, restored, `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}},"z":"new"}`)

	exact, _, err := Restore(cborCodec, data, 0)
	require.NoError(t, err)
	assert.Equal(t, int(m.Used), len(exact.Bytes()))

	_, _, err = Restore(cborCodec, data, int(m.Used)-1)
	require.ErrorIs(t, err, ErrCapacity)
	_, _, err = Restore(cborCodec, data, 1<<17)
	require.ErrorIs(t, err, ErrCapacity)
}

func TestEncodeFromHeap(t *testing.T) {
	cborCodec, err := NewCodec()
	require.NoError(t, err)
	h, err := arena.NewHeap()
	require.NoError(t, err)
	s := store.New(h)
	o, err := codec.Parse(s, []byte(sampleDoc))
	require.NoError(t, err)
	require.NoError(t, s.SetRoot(o))

	data, _, err := Encode(cborCodec, h, uuid.New(), fixedNow)
	require.NoError(t, err)
	restored, _, err := Restore(cborCodec, data, 0)
	require.NoError(t, err)
	requireRootDump(t, restored, `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}}}`)
}

func TestDecodeDetectsCorruption(t *testing.T) {
	cborCodec, err := NewCodec()
	require.NoError(t, err)
	data, _, err := Encode(cborCodec, newSampleArena(t, 1024), uuid.New(), fixedNow)
	require.NoError(t, err)

	flipped := bytes.Clone(data)
	flipped[len(flipped)-1] ^= 0xff
	_, _, err = Decode(cborCodec, flipped)
	require.ErrorIs(t, err, ErrDigestMismatch)

	_, _, err = Decode(cborCodec, data[:len(data)-1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestSealVerify(t *testing.T) {
	cborCodec, err := NewCodec()
	require.NoError(t, err)
	signer, key := newTestSigner(t)
	_, m, err := Encode(cborCodec, newSampleArena(t, 1024), uuid.New(), fixedNow)
	require.NoError(t, err)

	sealer := NewSealer("jsonarena.test", cborCodec)
	seal, err := sealer.Seal(signer, "documents", m)
	require.NoError(t, err)

	claims, err := VerifySeal(cborCodec, seal, &key.PublicKey, m)
	require.NoError(t, err)
	assert.Equal(t, Claims{Issuer: "jsonarena.test", Subject: "documents"}, claims)

	_, sealed, _, err := DecodeSeal(cborCodec, seal)
	require.NoError(t, err)
	assert.Equal(t, m, sealed)

	_, other := newTestSigner(t)
	_, err = VerifySeal(cborCodec, seal, &other.PublicKey, m)
	require.Error(t, err)

	changed := m
	changed.Used++
	_, err = VerifySeal(cborCodec, seal, &key.PublicKey, changed)
	require.ErrorIs(t, err, ErrSealMismatch)
}

func TestDirStoreWriterReader(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()
	log := logger.Sugar.WithServiceName("snapshot-test")
	ctx := context.Background()

	dir, err := NewDirStore(log, t.TempDir())
	require.NoError(t, err)
	cborCodec, err := NewCodec()
	require.NoError(t, err)
	signer, key := newTestSigner(t)

	w, err := NewWriter(log, dir,
		WithCodec(cborCodec),
		WithClock(func() time.Time { return fixedNow }),
		WithSealer(NewSealer("jsonarena.test", cborCodec), signer, "documents"))
	require.NoError(t, err)
	m, err := w.Save(ctx, newSampleArena(t, 1024))
	require.NoError(t, err)

	r, err := NewReader(log, dir, WithVerifyKey(&key.PublicKey))
	require.NoError(t, err)
	a, got, err := r.Load(ctx, m.ID, 2048)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	requireRootDump(t, a, `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}}}`)

	_, _, err = r.Load(ctx, uuid.New(), 0)
	require.True(t, IsNotFound(err))

	_, other := newTestSigner(t)
	strict, err := NewReader(log, dir, WithVerifyKey(&other.PublicKey))
	require.NoError(t, err)
	_, _, err = strict.Load(ctx, m.ID, 0)
	require.Error(t, err)

	// an unsealed snapshot cannot be loaded by a verifying reader
	plain, err := NewWriter(log, dir)
	require.NoError(t, err)
	pm, err := plain.Save(ctx, newSampleArena(t, 1024))
	require.NoError(t, err)
	_, _, err = r.Load(ctx, pm.ID, 0)
	require.True(t, IsNotFound(err))

	require.Error(t, dir.Put(ctx, "../escape", []byte("x")))
}

var errFakeMissing = errors.New("fake: blob missing")

type fakeBlobs struct {
	blobs map[string][]byte
}

func (f *fakeBlobs) Put(_ context.Context, identity string, source io.ReadSeekCloser, _ ...azblob.Option) (*azblob.WriteResponse, error) {
	if _, ok := f.blobs[identity]; ok {
		return nil, errors.New("fake: blob exists")
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	f.blobs[identity] = data
	return &azblob.WriteResponse{}, nil
}

func (f *fakeBlobs) Reader(_ context.Context, identity string, _ ...azblob.Option) (*azblob.ReaderResponse, error) {
	data, ok := f.blobs[identity]
	if !ok {
		return nil, errFakeMissing
	}
	return &azblob.ReaderResponse{Reader: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestBlobStore(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()
	log := logger.Sugar.WithServiceName("snapshot-test")
	ctx := context.Background()

	fake := &fakeBlobs{blobs: map[string][]byte{}}
	bs := NewBlobStore(log, fake, "snapshots/")

	w, err := NewWriter(log, bs)
	require.NoError(t, err)
	m, err := w.Save(ctx, newSampleArena(t, 1024))
	require.NoError(t, err)
	assert.Contains(t, fake.blobs, "snapshots/"+SnapshotName(m.ID))

	r, err := NewReader(log, bs)
	require.NoError(t, err)
	a, _, err := r.Load(ctx, m.ID, 0)
	require.NoError(t, err)
	requireRootDump(t, a, `{"a":1,"b":[true,null,"s"],"c":{"d":-2.5,"":{}}}`)

	require.Error(t, bs.Put(ctx, SnapshotName(m.ID), []byte("again")))

	_, err = bs.Get(ctx, "missing.snap")
	require.ErrorIs(t, err, errFakeMissing)
	assert.False(t, IsBlobNotFound(err))
	assert.True(t, IsBlobNotFound(ErrNotFound))
	assert.Nil(t, WrapBlobNotFound(nil))
}
