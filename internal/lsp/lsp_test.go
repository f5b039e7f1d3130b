package lsp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

func newHost(t *testing.T) *treesitter.Host {
	t.Helper()
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })
	return host
}

func TestByteOffsetAtFindsStartOfLine(t *testing.T) {
	src := []byte("my $x = 1;\nmy $y = 2;\n")
	require.Equal(t, 0, byteOffsetAt(src, uri.Position{Row: 0, Column: 0}))
	require.Equal(t, 11, byteOffsetAt(src, uri.Position{Row: 1, Column: 0}))
	require.Equal(t, 14, byteOffsetAt(src, uri.Position{Row: 1, Column: 3}))
}

func TestScanTypedWordFindsSigilAndPrefix(t *testing.T) {
	sigil, word := scanTypedWord([]byte("my $fo"))
	require.Equal(t, byte('$'), sigil)
	require.Equal(t, "fo", word)

	sigil, word = scanTypedWord([]byte("Some::Modu"))
	require.Equal(t, byte(0), sigil)
	require.Equal(t, "Some::Modu", word)
}

func TestCompletionTriggerAtDetectsVariableSigil(t *testing.T) {
	host := newHost(t)
	const src = "my $outer = 1;\nmy $o"
	tree, err := host.Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(func() { host.Free(tree) })

	trig := completionTriggerAt(tree.Root(), tree.Source, uri.Position{Row: 1, Column: 5})
	require.True(t, trig.IsVariable)
	require.Equal(t, "o", trig.TypedWord)
}

func TestCompletionTriggerAtDetectsUseStatement(t *testing.T) {
	host := newHost(t)
	const src = "use Some::Mod"
	tree, err := host.Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(func() { host.Free(tree) })

	trig := completionTriggerAt(tree.Root(), tree.Source, uri.Position{Row: 0, Column: 13})
	require.False(t, trig.IsVariable)
	require.Equal(t, "Some::Mod", trig.TypedWord)
}

func TestDocumentStoreReadFallsBackToFilesystem(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "doc-*.pl")
	require.NoError(t, err)
	_, err = f.WriteString("print 1;\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	docs := newDocumentStore()
	content, err := docs.Read(uri.URI("file://" + f.Name()))
	require.NoError(t, err)
	require.Equal(t, "print 1;\n", string(content))
}

func TestDocumentStoreReadPrefersOpenBuffer(t *testing.T) {
	docs := newDocumentStore()
	u := uri.URI("file:///does/not/exist.pl")
	docs.set(u, []byte("# buffered\n"))

	content, err := docs.Read(u)
	require.NoError(t, err)
	require.Equal(t, "# buffered\n", string(content))

	docs.delete(u)
	_, err = docs.Read(u)
	require.Error(t, err)
}

func TestGlobPatternHonorsEnvOverride(t *testing.T) {
	require.Equal(t, defaultGlobPattern, globPattern())

	t.Setenv("GLOB_PATTERN", "**/*.pl")
	require.Equal(t, "**/*.pl", globPattern())
}

func TestResolveWorkspaceRootsPrefersFolders(t *testing.T) {
	params := initializeParams{
		RootURI: "file:///root",
		WorkspaceFolders: []workspaceFolder{
			{URI: "file:///a", Name: "a"},
			{URI: "file:///b", Name: "b"},
		},
	}
	roots := resolveWorkspaceRoots(params)
	require.Equal(t, []string{"/a", "/b"}, roots)
}

func TestResolveWorkspaceRootsFallsBackToRootURI(t *testing.T) {
	params := initializeParams{RootURI: "file:///root"}
	roots := resolveWorkspaceRoots(params)
	require.Equal(t, []string{"/root"}, roots)
}
