package snapshot

import (
	"crypto"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/veraison/go-cose"
)

type options struct {
	codec *dtcbor.CBORCodec
	now   func() time.Time

	sealer  *Sealer
	signer  cose.Signer
	subject string

	verifyKey crypto.PublicKey
}

type Option func(*options)

// WithCodec sets the manifest codec, by default NewCodec is used.
func WithCodec(codec dtcbor.CBORCodec) Option {
	return func(o *options) { o.codec = &codec }
}

// WithClock sets the time source for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSealer makes a Writer seal every snapshot it saves.
func WithSealer(sealer Sealer, signer cose.Signer, subject string) Option {
	return func(o *options) {
		o.sealer = &sealer
		o.signer = signer
		o.subject = subject
	}
}

// WithVerifyKey makes a Reader require a valid seal for every snapshot it
// loads.
func WithVerifyKey(publicKey crypto.PublicKey) Option {
	return func(o *options) { o.verifyKey = publicKey }
}

func newOptions(opts ...Option) (options, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		codec, err := NewCodec()
		if err != nil {
			return options{}, err
		}
		o.codec = &codec
	}
	return o, nil
}
