package treesitter

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores parsed SyntaxTrees keyed by URI with LRU eviction,
// adapted from the teacher's content-hash-keyed tree Cache
// (internal/treesitter/cache.go) to the workspace index's per-URI model
// (spec.md §3's treesByUri). Evicted and explicitly-invalidated entries
// are Close()'d so the underlying tree-sitter memory is freed promptly.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *SyntaxTree]
	closed  bool
}

// NewCache creates a cache bounded to maxEntries. maxEntries <= 0 means
// unbounded (workspace.New passes 0 for the `eager` strategy, and for
// `full` when its cacheSize is <= 0).
func NewCache(maxEntries int) *Cache {
	c := &Cache{}
	if maxEntries <= 0 {
		maxEntries = 1 << 30 // effectively unbounded, still a concrete LRU
	}
	c.entries, _ = lru.NewWithEvict[string, *SyntaxTree](maxEntries, c.onEvicted)
	return c
}

func (c *Cache) onEvicted(_ string, tree *SyntaxTree) {
	tree.Close()
}

// Get retrieves a cached tree for uri, if present.
func (c *Cache) Get(uri string) (*SyntaxTree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(uri)
}

// Put stores tree under uri, evicting and closing any previous entry for
// that key first.
func (c *Cache) Put(uri string, tree *SyntaxTree) {
	if tree == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		tree.Close()
		return
	}
	if old, ok := c.entries.Peek(uri); ok {
		old.Close()
	}
	c.entries.Add(uri, tree)
}

// Invalidate evicts and closes the entry for uri, if any.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.entries.Remove(uri)
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Close evicts and closes every resident entry.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.entries.Purge()
	c.closed = true
	return nil
}
