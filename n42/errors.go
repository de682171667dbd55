package n42

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-gamma/internal/compressio"
)

// ErrNotFound is returned by [ReadFile] when the input file does not exist.
// The returned error also matches fs.ErrNotExist.
var ErrNotFound = errors.New("n42: file not found")

// ErrCorruptInput is matched by errors from damaged gzip or zstd files. They
// are reported as a [ParseError] wherever the damage sits in the stream.
var ErrCorruptInput = compressio.ErrCorrupt

// ParseError reports markup that is not well-formed XML, or compressed input
// too damaged to yield any.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("n42: malformed XML: %v", e.Err)
	}
	return fmt.Sprintf("n42: malformed XML in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingDataError reports a required element that is absent.
type MissingDataError struct {
	Element string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("n42: %s element not found", e.Element)
}

// MalformedDataError reports a token inside a numeric list that could not be
// parsed. Index is the zero-based token position within the element text.
type MalformedDataError struct {
	Element string
	Index   int
	Token   string
	Err     error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("n42: malformed %s token %d %q: %v", e.Element, e.Index, e.Token, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

var (
	errNegativeCount  = errors.New("count must be non-negative")
	errZeroRunLength  = errors.New("counted-zeroes run is missing its length")
	errZeroRunTooLong = errors.New("counted-zeroes run exceeds the channel limit")
	errNoRootElement  = errors.New("no root element")
)
