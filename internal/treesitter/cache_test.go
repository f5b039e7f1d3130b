package treesitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newFakeTree(marker string) *SyntaxTree {
	// A SyntaxTree with a nil underlying tree is sufficient to exercise
	// cache bookkeeping: Close/Clone short-circuit on a nil tree, and the
	// cache never dereferences Source.
	return &SyntaxTree{Source: []byte(marker)}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(4)
	defer c.Close()

	tree := newFakeTree("a")
	c.Put("file:///a.pl", tree)

	got, ok := c.Get("file:///a.pl")
	require.True(t, ok)
	require.Same(t, tree, got)

	_, ok = c.Get("file:///missing.pl")
	require.False(t, ok)
}

func TestCacheEvictsOldestBeyondCapacity(t *testing.T) {
	c := NewCache(2)
	defer c.Close()

	c.Put("a", newFakeTree("a"))
	c.Put("b", newFakeTree("b"))
	c.Put("c", newFakeTree("c"))

	require.LessOrEqual(t, c.Len(), 2)
	_, ok := c.Get("a")
	require.False(t, ok, "oldest entry should have been evicted")
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(4)
	defer c.Close()

	c.Put("a", newFakeTree("a"))
	c.Invalidate("a")

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestCacheCloseRejectsFurtherPuts(t *testing.T) {
	c := NewCache(4)
	require.NoError(t, c.Close())

	// Put after Close must not panic, and the tree must not be retained.
	c.Put("a", newFakeTree("a"))
	_, ok := c.Get("a")
	require.False(t, ok)
}
