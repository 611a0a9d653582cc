package arena

import "encoding/binary"

func readU16BE(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func readU32BE(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

func writeU16BE(dst []byte, v uint16) { binary.BigEndian.PutUint16(dst, v) }
func writeU32BE(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }

// alignUp returns the smallest multiple of align >= off. align must be a power
// of two.
func alignUp(off uint64, align uint32) uint64 {
	a := uint64(align)
	return (off + a - 1) &^ (a - 1)
}

func checkAlign(align uint32) error {
	if align == 0 || align&(align-1) != 0 {
		return ErrBadAlignment
	}
	return nil
}
