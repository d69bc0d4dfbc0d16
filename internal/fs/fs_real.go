package fs

import (
	"os"
	"path/filepath"
	"sync"
)

type realFS struct {
	// Stores the file entries for directories we've listed before
	entriesMutex sync.RWMutex
	entries      map[string]entriesOrErr

	// For the current working directory
	cwd string
}

type entriesOrErr struct {
	entries map[string]Entry
	err     error
}

func RealFS() FS {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	} else if path, err := filepath.EvalSymlinks(cwd); err == nil {
		// Resolve symlinks in the current working directory. Input paths are
		// resolved the same way, so the relative paths used as module ids
		// stay stable even when run from inside a symlinked directory.
		cwd = path
	}
	return &realFS{
		entries: make(map[string]entriesOrErr),
		cwd:     cwd,
	}
}

func (fs *realFS) ReadDirectory(dir string) (map[string]Entry, error) {
	// First, check the cache
	fs.entriesMutex.RLock()
	cached, ok := fs.entries[dir]
	fs.entriesMutex.RUnlock()

	// Cache hit: stop now
	if ok {
		return cached.entries, cached.err
	}

	// Cache miss: read the directory entries
	names, err := readdir(dir)
	var entries map[string]Entry
	if err == nil {
		entries = make(map[string]Entry)
		for _, name := range names {
			entryPath := filepath.Join(dir, name)

			// Use "lstat" since we want information about symbolic links
			stat, err := os.Lstat(entryPath)
			if err != nil {
				continue
			}
			mode := stat.Mode()
			symlink := ""

			// Follow symlinks now so the cache contains the translation
			if (mode & os.ModeSymlink) != 0 {
				link, err := filepath.EvalSymlinks(entryPath)
				if err != nil {
					continue // Skip over this entry
				}
				symlink = link
				stat2, err := os.Stat(symlink)
				if err != nil {
					continue // Skip over this entry
				}
				mode = stat2.Mode()
			}

			// We consider the entry either a directory or a file
			if (mode & os.ModeDir) != 0 {
				entries[name] = Entry{Kind: DirEntry, Symlink: symlink}
			} else {
				entries[name] = Entry{Kind: FileEntry, Symlink: symlink}
			}
		}
	}

	// Update the cache unconditionally. Even if the read failed, we don't want to
	// retry again later. The directory is inaccessible so trying again is wasted.
	fs.entriesMutex.Lock()
	defer fs.entriesMutex.Unlock()
	fs.entries[dir] = entriesOrErr{entries: entries, err: err}
	return entries, err
}

func (fs *realFS) ReadFile(path string) (string, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(buffer), nil
}

func (*realFS) Abs(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	return abs, err == nil
}

func (*realFS) Dir(p string) string {
	return filepath.Dir(p)
}

func (*realFS) Base(p string) string {
	return filepath.Base(p)
}

func (*realFS) Ext(p string) string {
	return filepath.Ext(p)
}

func (*realFS) Join(parts ...string) string {
	return filepath.Clean(filepath.Join(parts...))
}

func (fs *realFS) Cwd() string {
	return fs.cwd
}

func (*realFS) Rel(base string, target string) (string, bool) {
	if rel, err := filepath.Rel(base, target); err == nil {
		return rel, true
	}
	return "", false
}

func readdir(dirname string) ([]string, error) {
	f, err := os.Open(dirname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}
