package compressio

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func TestCodecFor(t *testing.T) {
	tests := map[string]Codec{
		"spectrum.xml":    CodecNone,
		"spectrum.XML.GZ": CodecGzip,
		"events.csv.gzip": CodecGzip,
		"events.csv.zst":  CodecZstd,
		"events.csv.zstd": CodecZstd,
		"no-extension":    CodecNone,
		"archive.tar.lz4": CodecNone,
		"dir.gz/file.xml": CodecNone,
	}
	for path, want := range tests {
		if got := CodecFor(path); got != want {
			t.Errorf("CodecFor(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestOpenRoundTrip(t *testing.T) {
	payload := []byte("0.661657,1,0,0,0\n0.032,2,1,1,1\n")
	dir := t.TempDir()

	write := func(name string, encode func(io.Writer) io.WriteCloser) string {
		t.Helper()
		var buf bytes.Buffer
		w := encode(&buf)
		if _, err := w.Write(payload); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	paths := []string{
		write("plain.csv", func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} }),
		write("events.csv.gz", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }),
		write("events.csv.zst", func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				t.Fatal(err)
			}
			return zw
		}),
	}

	for _, path := range paths {
		rc, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", path, err)
		}
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll(%s): %v", path, err)
		}
		if err := rc.Close(); err != nil {
			t.Fatalf("Close(%s): %v", path, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("%s: got %q", path, got)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.xml.gz"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestOpenCorrupt(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write(bytes.Repeat([]byte("0.5,1,0,0,0\n"), 64)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"gzip header", "bad.csv.gz", []byte("not gzip")},
		{"empty gzip", "empty.csv.gz", nil},
		{"truncated gzip", "short.csv.gz", gz.Bytes()[:gz.Len()-4]},
		{"zstd header", "bad.csv.zst", []byte("not zstd at all")},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			err := readAll(path)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

// readAll opens and drains path, returning the first error.
func readAll(path string) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.ReadAll(rc)
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
