package workspace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

func newTestIndex(t *testing.T, strategy config.CachingStrategy, files map[uri.URI][]byte) *Index {
	t.Helper()
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	readFile := func(u uri.URI) ([]byte, error) {
		content, ok := files[u]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", u)
		}
		return content, nil
	}
	idx := New(host, strategy, 0, readFile)
	t.Cleanup(func() { idx.CloseAll() })
	return idx
}

func TestAnalyzePopulatesDeclarationsAndReferences(t *testing.T) {
	idx := newTestIndex(t, config.CachingEager, nil)

	const aSrc = "package Foo::Bar;\nsub greet { return \"hi\"; }\n1;\n"
	_, err := idx.Analyze(uri.URI("a.pm"), []byte(aSrc), OnWorkspaceOpen, true)
	require.NoError(t, err)

	const bSrc = "Foo::Bar::greet();\n"
	_, err = idx.Analyze(uri.URI("b.pl"), []byte(bSrc), OnWorkspaceOpen, true)
	require.NoError(t, err)

	decls := idx.Declarations(uri.URI("a.pm"))
	require.Len(t, decls, 1)
	require.Equal(t, "greet", decls[0].FunctionName)
	require.Equal(t, "Foo::Bar", decls[0].PackageName)

	refs := idx.References(uri.URI("b.pl"))
	require.Len(t, refs["greet"], 1)
}

func TestAnalyzeReplacesPreviousExtraction(t *testing.T) {
	idx := newTestIndex(t, config.CachingEager, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("sub one { 1; }\nsub two { 2; }\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)
	require.Len(t, idx.Declarations(uri.URI("a.pm")), 2)

	_, err = idx.Analyze(uri.URI("a.pm"), []byte("sub only { 1; }\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)

	decls := idx.Declarations(uri.URI("a.pm"))
	require.Len(t, decls, 1, "re-analyzing must not carry over the previous extraction")
	require.Equal(t, "only", decls[0].FunctionName)
}

func TestCloseRemovesEveryEntryForURI(t *testing.T) {
	idx := newTestIndex(t, config.CachingFull, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("sub greet { 1; }\n"), OnFileOpen, false)
	require.NoError(t, err)
	require.NotEmpty(t, idx.Declarations(uri.URI("a.pm")))

	idx.Close(uri.URI("a.pm"))

	require.Empty(t, idx.Declarations(uri.URI("a.pm")))
	require.Empty(t, idx.References(uri.URI("a.pm")))
	_, cached := idx.trees.Get("a.pm")
	require.False(t, cached)
}

func TestEagerStrategyDiscardsWorkspaceScanTrees(t *testing.T) {
	idx := newTestIndex(t, config.CachingEager, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("sub greet { 1; }\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)

	_, cached := idx.trees.Get("a.pm")
	require.False(t, cached, "eager strategy must discard workspace-scan parses")
}

func TestOnFileOpenForcesTreeRetentionUnderEagerStrategy(t *testing.T) {
	idx := newTestIndex(t, config.CachingEager, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("sub greet { 1; }\n"), OnFileOpen, false)
	require.NoError(t, err)

	_, cached := idx.trees.Get("a.pm")
	require.True(t, cached, "OnFileOpen must retain the tree even under the eager strategy")
}

func TestFullStrategyRetainsEveryAnalyzedTree(t *testing.T) {
	idx := newTestIndex(t, config.CachingFull, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("sub greet { 1; }\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)

	_, cached := idx.trees.Get("a.pm")
	require.True(t, cached)
}

func TestTreeForParsesOnMissAndCachesUnderFullStrategy(t *testing.T) {
	files := map[uri.URI][]byte{uri.URI("a.pm"): []byte("sub greet { 1; }\n")}
	idx := newTestIndex(t, config.CachingFull, files)

	tree, err := idx.TreeFor(uri.URI("a.pm"))
	require.NoError(t, err)
	require.NotNil(t, tree.Root())

	_, cached := idx.trees.Get("a.pm")
	require.True(t, cached)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	idx := newTestIndex(t, config.CachingEager, nil)

	_, err := idx.Analyze(uri.URI("a.pm"), []byte("package Foo::Bar;\nsub greet { 1; }\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)
	_, err = idx.Analyze(uri.URI("b.pl"), []byte("Foo::Bar::greet();\n"), OnWorkspaceOpen, false)
	require.NoError(t, err)

	snap := idx.Snapshot()

	restored := newTestIndex(t, config.CachingEager, nil)
	restored.Restore(snap)

	require.Equal(t, idx.Declarations(uri.URI("a.pm")), restored.Declarations(uri.URI("a.pm")))
	require.Equal(t, idx.References(uri.URI("b.pl")), restored.References(uri.URI("b.pl")))
}
