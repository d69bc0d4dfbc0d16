package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evanw/treeshake/internal/test"
)

func TestMockFSBasic(t *testing.T) {
	fs := MockFS(map[string]string{
		"/README.md":    "// README.md",
		"/package.json": "// package.json",
		"/src/index.js": "// src/index.js",
		"/src/util.js":  "// src/util.js",
	})

	// Test a missing file
	_, err := fs.ReadFile("/missing.txt")
	test.AssertEqual(t, IsNotExist(err), true)

	// Test an existing file
	readme, err := fs.ReadFile("/README.md")
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, readme, "// README.md")

	// Test an existing nested file
	index, err := fs.ReadFile("/src/index.js")
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, index, "// src/index.js")

	// Test a missing directory
	_, err = fs.ReadDirectory("/missing")
	test.AssertEqual(t, IsNotExist(err), true)

	// Test a nested directory
	src, err := fs.ReadDirectory("/src")
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, src, map[string]Entry{
		"index.js": {Kind: FileEntry},
		"util.js":  {Kind: FileEntry},
	})

	// Test the top-level directory
	slash, err := fs.ReadDirectory("/")
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, slash, map[string]Entry{
		"README.md":    {Kind: FileEntry},
		"package.json": {Kind: FileEntry},
		"src":          {Kind: DirEntry},
	})
}

func TestMockFSRel(t *testing.T) {
	fs := MockFS(map[string]string{})

	expect := func(a string, b string, c string) {
		t.Helper()
		t.Run(a+" "+b, func(t *testing.T) {
			rel, ok := fs.Rel(a, b)
			test.AssertEqual(t, ok, true)
			test.AssertEqualWithDiff(t, rel, c)
		})
	}

	expect("/a/b", "/a/b", ".")
	expect("/a/b", "/a/b/c", "c")
	expect("/a/b", "/a/b/c/d", "c/d")
	expect("/a/b/c", "/a/b", "..")
	expect("/a/b/c/d", "/a/b", "../..")
	expect("/a/b/c", "/a/b/x", "../x")
	expect("/a/b/c/d", "/a/x/y", "../../../x/y")
	expect("/", "/a/b", "a/b")
	expect("/a/b", "/", "../..")
}

func TestRealFSReadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	fs := RealFS()
	entries, err := fs.ReadDirectory(dir)
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, entries["a.js"].Kind, FileEntry)
	test.AssertEqual(t, entries["sub"].Kind, DirEntry)

	contents, err := fs.ReadFile(filepath.Join(dir, "a.js"))
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, contents, "export {}")

	_, err = fs.ReadFile(filepath.Join(dir, "missing.js"))
	test.AssertEqual(t, IsNotExist(err), true)

	_, err = fs.ReadDirectory(filepath.Join(dir, "missing"))
	test.AssertEqual(t, IsNotExist(err), true)
}
