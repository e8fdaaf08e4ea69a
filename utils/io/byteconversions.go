package io

import "encoding/binary"

// EncodeUint32BE returns x in big-endian byte order.
func EncodeUint32BE(x uint32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], x)
	return b
}

// PutUint32BE writes x into the first 4 bytes of dst in big-endian byte order.
// dst must be at least 4 bytes long.
func PutUint32BE(dst []byte, x uint32) {
	binary.BigEndian.PutUint32(dst, x)
}

// DecodeUint32BE reads a big-endian uint32 from the first 4 bytes of b.
func DecodeUint32BE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
