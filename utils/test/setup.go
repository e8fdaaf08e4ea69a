// Package test holds fixtures and fault-injection helpers for log files.
// Nothing here is part of the durable log contract.
package test

import (
	"fmt"
	"os"

	"github.com/alpacahq/walrecover/utils/log"
)

// DeterministicPayload returns an n-byte payload for record i whose byte j is (i+j) & 0xFF.
func DeterministicPayload(i, n int) []byte {
	buf := make([]byte, n)
	for j := range buf {
		buf[j] = byte((i + j) & 0xFF)
	}
	return buf
}

// CorruptTail simulates a crash by cutting bytesToCut raw bytes from the end
// of the file. When bytesToCut is not smaller than the file, half of the file
// is cut instead.
func CorruptTail(path string, bytesToCut int64) (oldSize, newSize int64, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	oldSize = fi.Size()
	if bytesToCut < 0 {
		return oldSize, oldSize, fmt.Errorf("negative number of bytes to cut: %d", bytesToCut)
	}
	if bytesToCut >= oldSize {
		bytesToCut = oldSize / 2
	}
	newSize = oldSize - bytesToCut
	log.Info("[corrupt] truncating %d bytes: %d -> %d", bytesToCut, oldSize, newSize)
	if err = os.Truncate(path, newSize); err != nil {
		return oldSize, oldSize, err
	}
	return oldSize, newSize, nil
}

// FlipBit inverts one bit (0-7) of the byte at offset.
func FlipBit(path string, offset int64, bit uint) error {
	if bit > 7 {
		return fmt.Errorf("bit index out of range: %d", bit)
	}
	fp, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer fp.Close()

	var b [1]byte
	if _, err = fp.ReadAt(b[:], offset); err != nil {
		return fmt.Errorf("read byte at %d: %w", offset, err)
	}
	b[0] ^= 1 << bit
	if _, err = fp.WriteAt(b[:], offset); err != nil {
		return fmt.Errorf("write byte at %d: %w", offset, err)
	}
	return nil
}

// WriteRaw overwrites len(data) bytes at offset, extending the file if needed.
func WriteRaw(path string, offset int64, data []byte) error {
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer fp.Close()
	_, err = fp.WriteAt(data, offset)
	return err
}

func FileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		log.Error("failed to stat %s: %v", path, err)
		return -1
	}
	return fi.Size()
}

func CleanupDummyDataDir(root string) {
	if err := os.RemoveAll(root); err != nil {
		log.Error("Failed to clean up dummy data directory - Error: %v", err)
	}
}
