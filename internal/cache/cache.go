package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/js_parser"
	"github.com/evanw/treeshake/internal/logger"
)

// This is a cache of the parsed contents of a set of files. The idea is to be
// able to reuse the results of parsing between builds and make subsequent
// builds faster by avoiding redundant parsing work. This only works if:
//
//   - The cached trees must be considered immutable. Every build converts
//     the concrete tree into a fresh analysis tree because linking and
//     inclusion mutate the analysis tree.
//
//   - The information in the cache must not depend at all on anything other
//     than the contents of the file being cached. Entries are keyed by a hash
//     of the contents, so two files with the same contents share a tree.
type CacheSet struct {
	JSCache JSCache
}

func MakeCacheSet() *CacheSet {
	return &CacheSet{
		JSCache: JSCache{
			entries: make(map[uint64]*jsCacheEntry),
		},
	}
}

type JSCache struct {
	mutex   sync.Mutex
	entries map[uint64]*jsCacheEntry

	hits   atomic.Uint32
	misses atomic.Uint32
}

type jsCacheEntry struct {
	contents string
	tree     *sitter.Tree
	used     bool

	// Reading nodes of a tree is not safe from more than one goroutine
	convertMutex sync.Mutex
}

func contentsKey(contents string) uint64 {
	return xxhash.Sum64String(contents)
}

// Parses the source with the given parser unless a tree for the same
// contents is cached, then converts the tree. The parser must not be shared
// with another goroutine but the cache can be.
func (c *JSCache) Parse(ctx context.Context, parser *js_parser.Parser, log logger.Log, source logger.Source) (*js_ast.Program, bool) {
	key := contentsKey(source.Contents)

	// Check the cache
	c.mutex.Lock()
	entry := c.entries[key]
	if entry != nil && entry.contents == source.Contents {
		entry.used = true
	} else {
		entry = nil
	}
	c.mutex.Unlock()

	// Cache miss
	if entry == nil {
		c.misses.Add(1)
		tree, err := parser.ParseTree(ctx, source.Contents)
		if err != nil {
			log.AddError(&source, logger.Range{}, err.Error())
			return nil, false
		}
		entry = &jsCacheEntry{contents: source.Contents, tree: tree, used: true}

		// Save for next time. Another goroutine may have parsed the same
		// contents in the meantime, in which case its tree wins.
		c.mutex.Lock()
		if existing := c.entries[key]; existing != nil && existing.contents == source.Contents {
			tree.Close()
			entry = existing
		} else {
			if existing != nil {
				existing.close()
			}
			c.entries[key] = entry
		}
		c.mutex.Unlock()
	} else {
		c.hits.Add(1)
	}

	entry.convertMutex.Lock()
	defer entry.convertMutex.Unlock()
	return js_parser.Convert(log, source, entry.tree)
}

func (entry *jsCacheEntry) close() {
	entry.convertMutex.Lock()
	defer entry.convertMutex.Unlock()
	entry.tree.Close()
}

// Frees the trees that were not used since the last call. Call this between
// builds so files that were deleted or changed do not keep their trees.
func (c *JSCache) Prune() (removed int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key, entry := range c.entries {
		if !entry.used {
			entry.close()
			delete(c.entries, key)
			removed++
			continue
		}
		entry.used = false
	}
	return
}

func (c *JSCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

func (c *JSCache) Stats() (hits uint32, misses uint32) {
	return c.hits.Load(), c.misses.Load()
}
