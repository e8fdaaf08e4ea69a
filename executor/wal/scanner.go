package wal

import (
	"fmt"
	goio "io"

	"github.com/alpacahq/walrecover/executor/buffile"
	"github.com/alpacahq/walrecover/utils/io"
	"github.com/alpacahq/walrecover/utils/log"
)

// StopReason tells why a scan ended.
type StopReason int8

const (
	// CleanEnd means the file ends on a record boundary (or with fewer bytes
	// than a length prefix after the last record).
	CleanEnd StopReason = iota
	// ImplausibleLength means a length prefix was 0 or above MaxRecord.
	ImplausibleLength
	// TornRecord means the file ends in the middle of a record.
	TornRecord
	// ChecksumMismatch means a record's payload does not match its CRC32.
	ChecksumMismatch
	// ReadFailed means the file could not be read; the result is partial.
	ReadFailed
)

func (r StopReason) String() string {
	switch r {
	case CleanEnd:
		return "clean end"
	case ImplausibleLength:
		return "implausible length"
	case TornRecord:
		return "torn record"
	case ChecksumMismatch:
		return "checksum mismatch"
	case ReadFailed:
		return "read failed"
	default:
		return fmt.Sprintf("StopReason(%d)", int8(r))
	}
}

// ScanResult describes the verified prefix of a log. It is produced once at
// the end of a scan and is not modified afterwards.
type ScanResult struct {
	// GoodRecords is the number of records verified intact from offset 0.
	GoodRecords int64
	// LastGoodOffset is the offset right after the last verified record. It is
	// also where corruption or truncation was detected, if any.
	LastGoodOffset int64
	// Clean is true iff no partial or corrupt record follows LastGoodOffset.
	Clean bool
	// Size is the file size the scan was bounded by.
	Size   int64
	Reason StopReason
}

// TornBytes is the number of bytes recovery would discard.
func (r ScanResult) TornBytes() int64 {
	if r.Clean {
		return 0
	}
	return r.Size - r.LastGoodOffset
}

// Violation returns an IntegrityViolation error describing an unclean result,
// or nil when the log is clean.
func (r ScanResult) Violation() error {
	if r.Clean {
		return nil
	}
	return newError(IntegrityViolation, "scan", "", nil,
		"%s at offset %d after %d good records", r.Reason, r.LastGoodOffset, r.GoodRecords)
}

func (r ScanResult) String() string {
	return fmt.Sprintf("ScanResult[good:%d lastGoodOffset:%d clean:%v size:%d reason:%s]",
		r.GoodRecords, r.LastGoodOffset, r.Clean, r.Size, r.Reason)
}

// Scan walks the first size bytes of r from offset 0 and reports the verified
// prefix. Malformed content never produces an error: it only ends the scan.
// The error is reserved for read failures, in which case the returned result
// covers what was verified before the failure.
func Scan(r goio.ReaderAt, size int64) (ScanResult, error) {
	return walk(r, size, nil)
}

// ScanFile scans the log file at path.
func ScanFile(path string) (ScanResult, error) {
	var res ScanResult
	err := withFile("scan", path, func(bf *buffile.BufferedFile, size int64) (err error) {
		res, err = Scan(bf, size)
		return err
	})
	if err == nil && !res.Clean {
		log.Debug("scan of %s stopped: %v", path, res)
	}
	return res, err
}

// Replay walks the log like Scan and hands every verified record to fn, in
// file order. A record is delivered only after its checksum matched. An error
// from fn stops the walk and is returned as is.
func Replay(path string, fn func(Record) error) (ScanResult, error) {
	var res ScanResult
	err := withFile("replay", path, func(bf *buffile.BufferedFile, size int64) (err error) {
		res, err = walk(bf, size, fn)
		return err
	})
	return res, err
}

func withFile(op, path string, f func(bf *buffile.BufferedFile, size int64) error) error {
	bf, err := buffile.New(path)
	if err != nil {
		return newError(OpenFailed, op, path, err, "")
	}
	defer bf.Close()

	fi, err := bf.Stat()
	if err != nil {
		return newError(OpenFailed, op, path, err, "stat")
	}
	if err = f(bf, fi.Size()); err != nil {
		if e, ok := err.(*Error); ok && e.Path == "" {
			e.Path = path
		}
		return err
	}
	return nil
}

func walk(r goio.ReaderAt, size int64, visit func(Record) error) (ScanResult, error) {
	var (
		off, good int64
		prefix    [lengthSize]byte
		trailer   [checksumSize]byte
		copyBuf   []byte
	)
	result := func(clean bool, reason StopReason) ScanResult {
		return ScanResult{
			GoodRecords:    good,
			LastGoodOffset: off,
			Clean:          clean,
			Size:           size,
			Reason:         reason,
		}
	}
	hash := NewHash()

	for {
		if size-off < lengthSize {
			return result(true, CleanEnd), nil
		}
		if err := readFull(r, prefix[:], off); err != nil {
			return result(false, ReadFailed), err
		}
		length := io.DecodeUint32BE(prefix[:])
		if !PlausibleLength(length) {
			return result(false, ImplausibleLength), nil
		}
		if size-off-lengthSize < int64(length)+checksumSize {
			return result(false, TornRecord), nil
		}

		payloadOff := off + lengthSize
		var (
			payload []byte
			sum     uint32
		)
		if visit == nil {
			// Stream the payload through the hash so that large records are
			// verified without being held in memory.
			if copyBuf == nil {
				copyBuf = make([]byte, buffile.DefaultBlockSize)
			}
			hash.Reset()
			n, err := goio.CopyBuffer(hash, goio.NewSectionReader(r, payloadOff, int64(length)), copyBuf)
			if err == nil && n != int64(length) {
				err = newError(ShortIO, "scan", "", nil, "read %d of %d payload bytes at offset %d",
					n, length, payloadOff)
			}
			if err != nil {
				return result(false, ReadFailed), asShortIO(err, payloadOff)
			}
			sum = hash.Sum32()
		} else {
			payload = make([]byte, length)
			if err := readFull(r, payload, payloadOff); err != nil {
				return result(false, ReadFailed), err
			}
			sum = Checksum(payload)
		}

		if err := readFull(r, trailer[:], payloadOff+int64(length)); err != nil {
			return result(false, ReadFailed), err
		}
		if sum != io.DecodeUint32BE(trailer[:]) {
			return result(false, ChecksumMismatch), nil
		}

		if visit != nil {
			if err := visit(Record{Offset: off, Payload: payload, Checksum: sum}); err != nil {
				return result(false, ReadFailed), err
			}
		}

		off += FrameOverhead + int64(length)
		good++
		if off == size {
			return result(true, CleanEnd), nil
		}
	}
}

func readFull(r goio.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		// ReadAt may return io.EOF together with a full read at the end of input.
		return nil
	}
	if err == nil || err == goio.EOF {
		return newError(ShortIO, "scan", "", nil, "read %d of %d bytes at offset %d", n, len(p), off)
	}
	return newError(ShortIO, "scan", "", err, "read %d of %d bytes at offset %d", n, len(p), off)
}

func asShortIO(err error, off int64) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return newError(ShortIO, "scan", "", err, "read at offset %d", off)
}
