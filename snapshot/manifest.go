package snapshot

import (
	"crypto/sha256"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/google/uuid"
)

// Manifest describes a snapshot block.
type Manifest struct {
	ID       uuid.UUID `cbor:"1,keyasint"`
	RefWidth uint8     `cbor:"2,keyasint"`
	// Used is the length of the block prefix that was saved.
	Used uint32 `cbor:"3,keyasint"`
	Root uint32 `cbor:"4,keyasint"`
	// Digest is the sha256 of the saved block prefix.
	Digest []byte `cbor:"5,keyasint"`
	// Timestamp is unix milliseconds at the time of the save.
	Timestamp int64 `cbor:"6,keyasint"`
}

func (m Manifest) Time() time.Time { return time.UnixMilli(m.Timestamp) }

// NewCodec returns the deterministic CBOR codec used for manifests.
func NewCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

func digest(block []byte) []byte {
	sum := sha256.Sum256(block)
	return sum[:]
}
