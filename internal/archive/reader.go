// Package archive opens source files that may be stored compressed.
// MorphGNT distributions are large plain-text files; they are commonly kept
// as .xz or .gz next to (or instead of) the uncompressed originals.
package archive

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Extensions lists the compressed variants tried by Resolve, in order.
var Extensions = []string{".xz", ".gz"}

// Reader wraps a source file with automatic decompression handling.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens path for reading, decompressing .xz and .gz files transparently.
// Any other suffix is read as-is.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	}

	return &Reader{
		Reader:       reader,
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Resolve returns the first existing file among path and its compressed
// variants. The returned error wraps fs.ErrNotExist when none exist.
func Resolve(path string) (string, error) {
	candidates := append([]string{path}, withExtensions(path)...)
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
}

// ReadAll resolves path, then reads and decompresses the whole file.
func ReadAll(path string) ([]byte, string, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, "", err
	}
	r, err := Open(resolved)
	if err != nil {
		return nil, resolved, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, resolved, fmt.Errorf("read %s: %w", resolved, err)
	}
	return data, resolved, nil
}

func withExtensions(path string) []string {
	out := make([]string, len(Extensions))
	for i, ext := range Extensions {
		out[i] = path + ext
	}
	return out
}
