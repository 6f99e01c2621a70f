// Package archive implements the portable container format for account
// transfers: a zip file holding one JSON document per record under data/
// and raw blob bytes under storage/.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/klauspost/compress/zip"
)

// Writer appends entries to a new archive. Entries are written once; the
// archive is not readable until Close has been called.
type Writer struct {
	f  *os.File
	zw *zip.Writer
}

// Create opens a new archive at name, truncating any existing file.
func Create(name string) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create archive %s: %w", name, err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f)}, nil
}

// AddFile writes a complete entry from in-memory content.
func (w *Writer) AddFile(name string, content []byte) error {
	out, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := out.Write(content); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

// Create returns a streaming writer for a compressed entry. The returned
// writer is valid until the next Create/AddFile call.
func (w *Writer) Create(name string) (io.Writer, error) {
	out, err := w.zw.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create archive entry %s: %w", name, err)
	}
	return out, nil
}

// CreateStored returns a streaming writer for an entry kept uncompressed.
// Use it for payloads that are already compressed, such as uploaded files.
func (w *Writer) CreateStored(name string) (io.Writer, error) {
	out, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("create archive entry %s: %w", name, err)
	}
	return out, nil
}

func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	return w.f.Close()
}

// Reader reads entries from an existing archive.
type Reader struct {
	zr *zip.ReadCloser
}

// Open opens the archive at name for reading.
func Open(name string) (*Reader, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", name, err)
	}
	return &Reader{zr: zr}, nil
}

func (r *Reader) find(name string) *zip.File {
	for _, f := range r.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Read returns the full content of the named entry. Reading a missing entry
// is a caller bug and fails immediately.
func (r *Reader) Read(name string) ([]byte, error) {
	rc, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", name, err)
	}
	return content, nil
}

// Open returns a streaming reader over the named entry.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	f := r.find(name)
	if f == nil {
		return nil, fmt.Errorf("no such archive entry: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", name, err)
	}
	return rc, nil
}

// Glob returns the entry names matching pattern, lexicographically sorted.
// The sort order is load-bearing: resumption cursors are defined relative
// to it.
func (r *Reader) Glob(pattern string) ([]string, error) {
	var names []string
	for _, f := range r.zr.File {
		ok, err := path.Match(pattern, f.Name)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
		}
		if ok {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the named entry is present.
func (r *Reader) Exists(name string) bool {
	return r.find(name) != nil
}

func (r *Reader) Close() error {
	return r.zr.Close()
}
