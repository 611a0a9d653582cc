package snapshot

import "errors"

var (
	ErrNotFound         = errors.New("snapshot: not found")
	ErrBadMagic         = errors.New("snapshot: envelope magic invalid")
	ErrBadVersion       = errors.New("snapshot: envelope version invalid")
	ErrTruncated        = errors.New("snapshot: data shorter than the envelope declares")
	ErrDigestMismatch   = errors.New("snapshot: block digest does not match the manifest")
	ErrManifestMismatch = errors.New("snapshot: manifest does not describe the block")
	ErrCapacity         = errors.New("snapshot: capacity cannot hold the block")
	ErrSealMismatch     = errors.New("snapshot: sealed manifest differs from the snapshot")
	ErrNoSealClaims     = errors.New("snapshot: seal has no CWT claims")
)
