package wal

import (
	"fmt"

	"github.com/alpacahq/walrecover/utils/io"
)

/*
	On-disk layout, no file header, footer or version byte:

		record := length(4, BE) || payload(length bytes) || crc32(4, BE, over payload)
		file   := record*
*/

const (
	// MaxRecord is the largest payload length the Scanner accepts as plausible.
	MaxRecord = 32 * 1024 * 1024

	lengthSize   = 4
	checksumSize = 4
	// FrameOverhead is the number of bytes a record occupies besides its payload.
	FrameOverhead = lengthSize + checksumSize
)

// Record is one verified entry of the log.
type Record struct {
	// Offset of the length prefix from the head of the file.
	Offset   int64
	Payload  []byte
	Checksum uint32
}

// Size is the number of bytes the record occupies on disk.
func (r Record) Size() int64 {
	return int64(FrameOverhead + len(r.Payload))
}

func (r Record) String() string {
	return fmt.Sprintf("Record[off:%d len:%d crc:%08x]", r.Offset, len(r.Payload), r.Checksum)
}

// EncodeRecord frames payload as length || payload || crc32.
func EncodeRecord(payload []byte) []byte {
	buf := make([]byte, FrameOverhead+len(payload))
	io.PutUint32BE(buf, uint32(len(payload)))
	copy(buf[lengthSize:], payload)
	io.PutUint32BE(buf[lengthSize+len(payload):], Checksum(payload))
	return buf
}

// PlausibleLength reports whether a decoded length prefix can start a valid record.
func PlausibleLength(n uint32) bool {
	return n > 0 && n <= MaxRecord
}
