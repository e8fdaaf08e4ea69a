// Package buffile groups small positional reads of a file into block-sized
// reads under the assumption that consecutive reads hit neighbouring offsets,
// as they do when a log is scanned from head to tail.
package buffile

import (
	"errors"
	"io"
	"os"
)

type fileLike interface {
	io.ReaderAt
	io.Closer
}

type nopCloser struct {
	io.ReaderAt
}

func (nopCloser) Close() error { return nil }

// BufferedFile abstracts a file with a block-sized read buffer. This object does
// not provide any mean of concurrency guarantee. The file content is assumed not
// to change while it is being read.
type BufferedFile struct {
	fp           fileLike
	blockSize    int
	buffer       []byte
	valid        []byte
	bufferOffset int64
	reads        int
}

const DefaultBlockSize = 32 * 1024

var errNegativeOffset = errors.New("buffile: negative offset")

// New opens filePath read-only.
func New(filePath string) (*BufferedFile, error) {
	fp, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &BufferedFile{
		fp:        fp,
		blockSize: DefaultBlockSize,
	}, nil
}

// NewReader wraps an existing ReaderAt. Close does not close r.
func NewReader(r io.ReaderAt, blockSize int) *BufferedFile {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &BufferedFile{
		fp:        nopCloser{r},
		blockSize: blockSize,
	}
}

func (f *BufferedFile) Close() error {
	f.buffer, f.valid = nil, nil
	return f.fp.Close()
}

// Stat returns the FileInfo of the underlying file when it is an *os.File.
func (f *BufferedFile) Stat() (os.FileInfo, error) {
	st, ok := f.fp.(interface{ Stat() (os.FileInfo, error) })
	if !ok {
		return nil, errors.New("buffile: underlying reader has no Stat")
	}
	return st.Stat()
}

// Reads returns how many reads were issued to the underlying file.
func (f *BufferedFile) Reads() int {
	return f.reads
}

func (f *BufferedFile) readBuffer(offset int64, size int) error {
	// we always read from block boundary
	readOffset := offset - offset%int64(f.blockSize)

	// read size is block lower + offset residual + actual size
	readSize := int(offset%int64(f.blockSize)) + size
	// align to block size
	readSize += f.blockSize
	readSize -= readSize % f.blockSize

	// len(nil slice) is 0
	if len(f.buffer) < readSize {
		f.buffer = make([]byte, readSize)
	}
	f.reads++
	n, err := f.fp.ReadAt(f.buffer[:readSize], readOffset)
	if err != nil && !errors.Is(err, io.EOF) {
		f.valid = nil
		return err
	}
	// read short is fine at the end of file
	f.valid = f.buffer[:n]
	f.bufferOffset = readOffset
	return nil
}

func (f *BufferedFile) covers(offset int64, size int) bool {
	return f.valid != nil &&
		offset >= f.bufferOffset &&
		offset+int64(size) <= f.bufferOffset+int64(len(f.valid))
}

// ReadAt implements io.ReaderAt. Reads larger than one block bypass the buffer.
func (f *BufferedFile) ReadAt(p []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, errNegativeOffset
	}
	if len(p) > f.blockSize {
		f.reads++
		return f.fp.ReadAt(p, offset)
	}
	if !f.covers(offset, len(p)) {
		if err := f.readBuffer(offset, len(p)); err != nil {
			return 0, err
		}
	}
	readPos := offset - f.bufferOffset
	if readPos >= int64(len(f.valid)) {
		return 0, io.EOF
	}
	n := copy(p, f.valid[readPos:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
