package wal

import (
	"hash"
	"hash/crc32"
)

// crcTable is the 256-entry table for the reflected IEEE 802.3 polynomial
// (0xEDB88320). It is built once at package initialisation and never mutated.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum returns the IEEE CRC32 of p (init and final XOR 0xFFFFFFFF).
func Checksum(p []byte) uint32 {
	return crc32.Checksum(p, crcTable)
}

// NewHash returns a streaming CRC32 over the same table as Checksum.
func NewHash() hash.Hash32 {
	return crc32.New(crcTable)
}
