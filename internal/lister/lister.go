package lister

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"
	"unicode/utf8"
)

const (
	// batchSize is the number of names requested per enumeration call
	batchSize = 256
	// maxConsecutiveFailures bounds how many failing batches in a row are skipped
	// before enumeration gives up and returns what it has
	maxConsecutiveFailures = 3
)

// Kind classifies why a directory could not be listed
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindNotADirectory
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotADirectory:
		return "not_a_directory"
	default:
		return "other"
	}
}

// ListError is returned when a directory cannot be opened for listing.
// Error() is the OS description so it can be shown to the user as is.
type ListError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *ListError) Error() string {
	return e.Err.Error()
}

func (e *ListError) Unwrap() error {
	return e.Err
}

func newListError(path string, err error) *ListError {
	return &ListError{Path: path, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotADirectory
	default:
		return KindOther
	}
}

// Result carries the names of a listing together with the number of
// enumeration batches that failed and were skipped
type Result struct {
	Names   []string
	Skipped int
}

// List returns the names of the immediate entries of dir
func List(dir string) ([]string, error) {
	res, err := ListDetailed(dir)
	if err != nil {
		return nil, err
	}
	return res.Names, nil
}

// ListDetailed is List plus the count of skipped enumeration failures
func ListDetailed(dir string) (*Result, error) {
	// Stat first: opening a FIFO for reading blocks until a writer shows up
	info, err := os.Stat(dir)
	if err != nil {
		return nil, newListError(dir, err)
	}
	if !info.IsDir() {
		return nil, notADirectory(dir)
	}

	f, err := os.Open(dir)
	if err != nil {
		return nil, newListError(dir, err)
	}
	defer f.Close()

	// the path may have been replaced between Stat and Open
	if info, err = f.Stat(); err != nil {
		return nil, newListError(dir, err)
	}
	if !info.IsDir() {
		return nil, notADirectory(dir)
	}

	return readNames(f), nil
}

func notADirectory(dir string) *ListError {
	return newListError(dir, &fs.PathError{Op: "open", Path: dir, Err: syscall.ENOTDIR})
}

// namesReader is the part of *os.File the enumeration loop needs
type namesReader interface {
	Readdirnames(n int) ([]string, error)
}

// readNames drains r batch by batch. A failing batch is skipped; after
// maxConsecutiveFailures failing batches in a row that yield no names the
// names read so far are returned.
func readNames(r namesReader) *Result {
	res := &Result{Names: []string{}}
	failures := 0
	for {
		names, err := r.Readdirnames(batchSize)
		for _, name := range names {
			res.Names = append(res.Names, sanitize(name))
		}
		if err == nil {
			failures = 0
			continue
		}
		if errors.Is(err, io.EOF) {
			return res
		}

		res.Skipped++
		if len(names) > 0 {
			failures = 0
			continue
		}
		failures++
		if failures >= maxConsecutiveFailures {
			return res
		}
	}
}

// sanitize replaces every byte that is not part of a valid UTF-8 sequence
// with U+FFFD, so distinct raw names stay distinct
func sanitize(name string) string {
	if utf8.ValidString(name) {
		return name
	}
	return string([]rune(name))
}
