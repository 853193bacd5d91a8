// Package archive reads JUnit report entries out of zip archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// DefaultSuffixes are the entry name suffixes treated as reports.
var DefaultSuffixes = []string{".xml"}

var (
	// ErrInvalidArchive means the input is not a readable zip container.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrNotFound means the archive path does not exist.
	ErrNotFound = errors.New("archive not found")
	// ErrEntryDecode means one entry could not be read or decoded as text.
	ErrEntryDecode = errors.New("entry decode failure")
)

// Error describes a failure tied to one archive or one entry within it.
type Error struct {
	Path  string
	Entry string // empty for archive-level failures
	Kind  error  // ErrInvalidArchive, ErrNotFound, or ErrEntryDecode
	Err   error
}

func (e *Error) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("%s: %s: %v: %v", e.Path, e.Entry, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Is matches the sentinel kind so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Entry is one decoded report file from an archive.
type Entry struct {
	Name string
	Text string
}

// Reader opens archives and filters their entries by suffix.
type Reader struct {
	suffixes []string
}

// NewReader returns a reader for entries ending in any of suffixes
// (case-insensitive). With no suffixes, DefaultSuffixes is used.
func NewReader(suffixes ...string) *Reader {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	norm := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			norm = append(norm, s)
		}
	}
	return &Reader{suffixes: norm}
}

// Matches reports whether an entry name carries a report suffix.
func (r *Reader) Matches(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range r.suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Archive is an open zip file. Close it when done.
type Archive struct {
	path   string
	zr     *zip.ReadCloser
	reader *Reader
}

// Open opens the zip archive at path.
func (r *Reader) Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		kind := ErrInvalidArchive
		if errors.Is(err, fs.ErrNotExist) {
			kind = ErrNotFound
		}
		return nil, &Error{Path: path, Kind: kind, Err: err}
	}
	return &Archive{path: path, zr: zr, reader: r}, nil
}

// Name is the archive's base file name, used as the origin of its records.
func (a *Archive) Name() string {
	return filepath.Base(a.path)
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.zr.Close()
}

// Entries yields each report entry in archive order. An entry that cannot be
// read yields a non-nil *Error and iteration continues with the next entry.
func (a *Archive) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for _, f := range a.zr.File {
			if f.FileInfo().IsDir() || !a.reader.Matches(f.Name) {
				continue
			}
			text, err := readEntry(f)
			if err != nil {
				err = &Error{Path: a.path, Entry: f.Name, Kind: ErrEntryDecode, Err: err}
				if !yield(Entry{Name: f.Name}, err) {
					return
				}
				continue
			}
			if !yield(Entry{Name: f.Name, Text: text}, nil) {
				return
			}
		}
	}
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return Decode(data)
}
