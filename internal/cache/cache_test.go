package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/js_parser"
	"github.com/evanw/treeshake/internal/logger"
)

func source(path string, contents string) logger.Source {
	return logger.Source{KeyPath: logger.Path{Text: path}, PrettyPath: path, Contents: contents}
}

func TestJSCacheReusesTrees(t *testing.T) {
	caches := MakeCacheSet()
	parser := js_parser.NewParser()
	ctx := context.Background()

	first, ok := caches.JSCache.Parse(ctx, parser, logger.NewDeferLog(), source("a.js", "export const a = 1"))
	require.True(t, ok)
	second, ok := caches.JSCache.Parse(ctx, parser, logger.NewDeferLog(), source("same.js", "export const a = 1"))
	require.True(t, ok)

	hits, misses := caches.JSCache.Stats()
	assert.Equal(t, uint32(1), hits)
	assert.Equal(t, uint32(1), misses)
	assert.Equal(t, 1, caches.JSCache.Len())

	// Each call gets its own analysis tree
	assert.NotSame(t, first, second)
	assert.IsType(t, &js_ast.SLocal{}, second.Stmts[0])
}

func TestJSCacheReportsErrorsEveryTime(t *testing.T) {
	caches := MakeCacheSet()
	parser := js_parser.NewParser()

	for i := 0; i < 2; i++ {
		log := logger.NewDeferLog()
		_, ok := caches.JSCache.Parse(context.Background(), parser, log, source("bad.js", "let = ;"))
		assert.False(t, ok)
		msgs := log.Done()
		require.NotEmpty(t, msgs)
		assert.Equal(t, "bad.js", msgs[0].Data.Location.File)
	}
}

func TestJSCachePrune(t *testing.T) {
	caches := MakeCacheSet()
	parser := js_parser.NewParser()
	ctx := context.Background()

	caches.JSCache.Parse(ctx, parser, logger.NewDeferLog(), source("a.js", "a()"))
	caches.JSCache.Parse(ctx, parser, logger.NewDeferLog(), source("b.js", "b()"))
	assert.Equal(t, 0, caches.JSCache.Prune(), "everything was used since the last prune")

	caches.JSCache.Parse(ctx, parser, logger.NewDeferLog(), source("a.js", "a()"))
	assert.Equal(t, 1, caches.JSCache.Prune())
	assert.Equal(t, 1, caches.JSCache.Len())
}

func TestJSCacheConcurrentUse(t *testing.T) {
	caches := MakeCacheSet()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			parser := js_parser.NewParser()
			path := fmt.Sprintf("file%d.js", i)
			_, ok := caches.JSCache.Parse(context.Background(), parser, logger.NewDeferLog(), source(path, "export default 1"))
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, caches.JSCache.Len())
}
