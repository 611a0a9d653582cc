package snapshot

import (
	"encoding/binary"
	"fmt"
)

const (
	EnvelopeMagicV1   = "JSS1"
	EnvelopeVersionV1 = uint8(1)
	EnvelopeBytesV1   = 16
)

// EnvelopeV1 is the fixed size prefix of an encoded snapshot.
type EnvelopeV1 struct {
	ManifestLen uint32
	BlockLen    uint32
}

func (e EnvelopeV1) Encode() []byte {
	b := make([]byte, EnvelopeBytesV1)
	copy(b[0:4], EnvelopeMagicV1)
	b[4] = EnvelopeVersionV1
	binary.BigEndian.PutUint32(b[8:12], e.ManifestLen)
	binary.BigEndian.PutUint32(b[12:16], e.BlockLen)
	return b
}

// DecodeEnvelopeV1 reads the envelope at the start of data and checks that
// data is long enough for the lengths it declares.
func DecodeEnvelopeV1(data []byte) (EnvelopeV1, error) {
	if len(data) < EnvelopeBytesV1 {
		return EnvelopeV1{}, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if string(data[0:4]) != EnvelopeMagicV1 {
		return EnvelopeV1{}, ErrBadMagic
	}
	if data[4] != EnvelopeVersionV1 {
		return EnvelopeV1{}, fmt.Errorf("%w: %d", ErrBadVersion, data[4])
	}
	e := EnvelopeV1{
		ManifestLen: binary.BigEndian.Uint32(data[8:12]),
		BlockLen:    binary.BigEndian.Uint32(data[12:16]),
	}
	need := uint64(EnvelopeBytesV1) + uint64(e.ManifestLen) + uint64(e.BlockLen)
	if uint64(len(data)) != need {
		return EnvelopeV1{}, fmt.Errorf("%w: have %d bytes, want %d", ErrTruncated, len(data), need)
	}
	return e, nil
}
