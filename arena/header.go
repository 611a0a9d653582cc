package arena

import "bytes"

const (
	MagicV1       = "JSA1"
	VersionV1     = 1
	HeaderBytesV1 = 16
)

// HeaderV1 is the fixed record at offset zero of every block.
type HeaderV1 struct {
	Width RefWidth
	Top   uint32
	Root  Ref
}

// EncodeHeaderV1 writes h into block.
func EncodeHeaderV1(block []byte, h HeaderV1) error {
	if len(block) < HeaderBytesV1 {
		return ErrBlockTooSmall
	}
	if !h.Width.Valid() {
		return ErrBadRefWidth
	}
	copy(block[0:4], []byte(MagicV1))
	block[4] = VersionV1
	block[5] = byte(h.Width)
	block[6] = 0
	block[7] = 0
	writeU32BE(block[8:12], h.Top)
	writeU32BE(block[12:16], uint32(h.Root))
	return nil
}

// DecodeHeaderV1 decodes the header from block.
//
// ok=false indicates the block is zero filled / uninitialized.
func DecodeHeaderV1(block []byte) (h HeaderV1, ok bool, err error) {
	if len(block) < HeaderBytesV1 {
		return HeaderV1{}, false, ErrBlockTooSmall
	}
	if bytes.Equal(block[0:4], []byte{0, 0, 0, 0}) {
		return HeaderV1{}, false, nil
	}
	if string(block[0:4]) != MagicV1 {
		return HeaderV1{}, false, ErrBadMagic
	}
	if block[4] != VersionV1 {
		return HeaderV1{}, false, ErrBadVersion
	}
	h.Width = RefWidth(block[5])
	if !h.Width.Valid() {
		return HeaderV1{}, false, ErrBadRefWidth
	}
	h.Top = readU32BE(block[8:12])
	h.Root = Ref(readU32BE(block[12:16]))
	if h.Top < HeaderBytesV1 || uint64(h.Top) > uint64(len(block)) {
		return HeaderV1{}, false, ErrBadTop
	}
	return h, true, nil
}
