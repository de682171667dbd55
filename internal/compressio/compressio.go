// Package compressio opens input files and transparently decompresses them
// based on their extension.
package compressio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrCorrupt marks input that the selected decoder rejected, whether the
// damage sits in the stream header or further into the data.
var ErrCorrupt = errors.New("compressio: corrupt compressed input")

// Codec identifies the compression applied to an input file.
type Codec int

const (
	// CodecNone reads the file as-is.
	CodecNone Codec = iota
	// CodecGzip reads gzip-compressed files (.gz).
	CodecGzip
	// CodecZstd reads zstandard-compressed files (.zst, .zstd).
	CodecZstd
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	default:
		return "none"
	}
}

// CodecFor returns the codec implied by the file extension of path.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CodecGzip
	case ".zst", ".zstd":
		return CodecZstd
	default:
		return CodecNone
	}
}

// Open opens path and wraps it in the decoder selected by [CodecFor].
// Errors from os.Open are returned unwrapped so callers can match
// fs.ErrNotExist.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc, err := NewReader(f, CodecFor(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &stackedCloser{ReadCloser: rc, under: f}, nil
}

// NewReader wraps r in the decoder for codec. Closing the returned reader
// does not close r. Decoder failures, at construction or on Read, match
// [ErrCorrupt].
func NewReader(r io.Reader, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, corrupt(err)
		}
		return &decodeReader{ReadCloser: zr}, nil
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, corrupt(err)
		}
		return &decodeReader{ReadCloser: zr.IOReadCloser()}, nil
	default:
		return io.NopCloser(r), nil
	}
}

func corrupt(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}

// decodeReader tags decoder errors other than io.EOF with ErrCorrupt.
type decodeReader struct {
	io.ReadCloser
}

func (d *decodeReader) Read(p []byte) (int, error) {
	n, err := d.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = corrupt(err)
	}
	return n, err
}

// stackedCloser closes the decoder first and then the underlying file.
type stackedCloser struct {
	io.ReadCloser
	under io.Closer
}

func (s *stackedCloser) Close() error {
	err := s.ReadCloser.Close()
	if cerr := s.under.Close(); err == nil {
		err = cerr
	}
	return err
}
