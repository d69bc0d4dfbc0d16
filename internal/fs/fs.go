package fs

import (
	"errors"
	"strings"
	"syscall"
)

type EntryKind uint8

const (
	DirEntry  EntryKind = 1
	FileEntry EntryKind = 2
)

type Entry struct {
	Kind    EntryKind
	Symlink string
}

// The file system seen by the resolver and the bundler. Paths are absolute.
type FS interface {
	// The returned map is immutable and is cached across invocations. Do not
	// mutate it.
	ReadDirectory(path string) (map[string]Entry, error)
	ReadFile(path string) (contents string, err error)

	// This is part of the interface because the mock interface used for tests
	// should not depend on file system behavior (i.e. different slashes for
	// Windows) while the real interface should.
	Abs(path string) (string, bool)
	Dir(path string) string
	Base(path string) string
	Ext(path string) string
	Join(parts ...string) string
	Cwd() string
	Rel(base string, target string) (string, bool)
}

// Both file systems report a missing file with this error so callers can
// tell it apart from a read failure
var ErrNotExist = syscall.ENOENT

func IsNotExist(err error) bool {
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ENOTDIR)
}

// Strips the trailing extension, if any. "a/b.test.js" becomes "a/b.test".
func TrimExt(fs FS, path string) string {
	return strings.TrimSuffix(path, fs.Ext(path))
}
