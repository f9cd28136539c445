// Package lines reads text files one line at a time.
package lines

import (
	"bufio"
	"fmt"
	"os"
)

// DefaultMaxLineBytes bounds a single line. Longer lines stop the reader with
// bufio.ErrTooLong.
const DefaultMaxLineBytes = 1024 * 1024

// Reader is a forward-only, finite sequence of lines.
type Reader interface {
	// Next advances to the next line. It returns false at end of input or on error.
	Next() bool
	// Text returns the current line without its terminator.
	Text() string
	// Err returns the first non-EOF error encountered.
	Err() error
	// Close releases the underlying file. It is safe to call more than once.
	Close() error
}

// OpenFunc opens path as a Reader. A missing file must yield an error that
// matches fs.ErrNotExist.
type OpenFunc func(path string) (Reader, error)

// Option configures a file reader.
type Option func(*FileReader)

// WithMaxLineBytes sets the maximum accepted line length.
func WithMaxLineBytes(n int) Option {
	return func(r *FileReader) {
		if n > 0 {
			r.maxLine = n
		}
	}
}

// FileReader reads lines from a file on disk.
type FileReader struct {
	file    *os.File
	scanner *bufio.Scanner
	maxLine int
	closed  bool
}

// Open opens path for line reading.
func Open(path string, opts ...Option) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r := &FileReader{file: f, maxLine: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(r)
	}

	r.scanner = bufio.NewScanner(f)
	initial := 64 * 1024
	if initial > r.maxLine {
		initial = r.maxLine
	}
	r.scanner.Buffer(make([]byte, 0, initial), r.maxLine)
	return r, nil
}

// Opener returns an OpenFunc that opens files with the given options.
func Opener(opts ...Option) OpenFunc {
	return func(path string) (Reader, error) {
		r, err := Open(path, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// Next implements Reader.
func (r *FileReader) Next() bool {
	if r.closed {
		return false
	}
	return r.scanner.Scan()
}

// Text implements Reader.
func (r *FileReader) Text() string {
	return r.scanner.Text()
}

// Err implements Reader.
func (r *FileReader) Err() error {
	return r.scanner.Err()
}

// Close implements Reader.
func (r *FileReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Exists reports whether path is a regular, non-empty file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

var _ Reader = (*FileReader)(nil)
