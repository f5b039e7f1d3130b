package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// fakeIndex is a minimal IndexReader for query tests that don't need a
// full workspace.Index.
type fakeIndex struct {
	decls map[uri.URI][]model.FunctionReference
	refs  map[uri.URI]map[string][]model.FunctionReference
}

func (f *fakeIndex) AllDeclarations() map[uri.URI][]model.FunctionReference { return f.decls }
func (f *fakeIndex) AllReferences() map[uri.URI]map[string][]model.FunctionReference {
	return f.refs
}
func (f *fakeIndex) Declarations(u uri.URI) []model.FunctionReference { return f.decls[u] }
func (f *fakeIndex) References(u uri.URI) map[string][]model.FunctionReference {
	return f.refs[u]
}

func parseForTest(t *testing.T, host *treesitter.Host, src string) *treesitter.SyntaxTree {
	t.Helper()
	tree, err := host.Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(func() { host.Free(tree) })
	return tree
}

func newHost(t *testing.T) *treesitter.Host {
	t.Helper()
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })
	return host
}

// TestVariableScopingDefinition exercises spec.md scenario S3.
func TestVariableScopingDefinition(t *testing.T) {
	host := newHost(t)
	const src = "my $outer = 1;\nsub f {\n    my $inner = 2;\n    $inner;\n}\n$outer;\n"
	tree := parseForTest(t, host, src)
	root := tree.Root()

	innerUse := treesitter.NodeAtPosition(root, uri.Position{Row: 3, Column: 4})
	require.NotNil(t, innerUse)
	locs := Definition(&fakeIndex{}, uri.URI("s.pl"), innerUse, root, tree.Source)
	require.Len(t, locs, 1)
	require.Equal(t, uri.Position{Row: 2, Column: 7}, locs[0].Range.Start)
	require.Equal(t, uri.Position{Row: 2, Column: 13}, locs[0].Range.End)

	outerUse := treesitter.NodeAtPosition(root, uri.Position{Row: 5, Column: 0})
	require.NotNil(t, outerUse)
	locs = Definition(&fakeIndex{}, uri.URI("s.pl"), outerUse, root, tree.Source)
	require.Len(t, locs, 1)
	require.Equal(t, uri.Position{Row: 0, Column: 3}, locs[0].Range.Start)
	require.Equal(t, uri.Position{Row: 0, Column: 9}, locs[0].Range.End)
}

func TestFunctionDefinitionAcrossFiles(t *testing.T) {
	host := newHost(t)
	aTree := parseForTest(t, host, "package Foo::Bar;\nsub greet { return \"hi\"; }\n1;\n")
	bTree := parseForTest(t, host, "Foo::Bar::greet();\n")

	idx := &fakeIndex{
		decls: map[uri.URI][]model.FunctionReference{
			uri.URI("a.pm"): {{URI: uri.URI("a.pm"), FunctionName: "greet", PackageName: "Foo::Bar",
				Position: uri.Range{Start: uri.Position{Row: 1, Column: 4}, End: uri.Position{Row: 1, Column: 9}}}},
		},
	}

	bRoot := bTree.Root()
	callNode := treesitter.NodeAtPosition(bRoot, uri.Position{Row: 0, Column: 12})
	require.NotNil(t, callNode)

	locs := Definition(idx, uri.URI("b.pl"), callNode, bRoot, bTree.Source)
	require.Len(t, locs, 1)
	require.Equal(t, uri.URI("a.pm"), locs[0].URI)

	_ = aTree
}

func TestDefinitionOfUndeclaredFunctionReturnsEmpty(t *testing.T) {
	host := newHost(t)
	tree := parseForTest(t, host, "missing();\n")
	root := tree.Root()
	node := treesitter.NodeAtPosition(root, uri.Position{Row: 0, Column: 1})
	require.NotNil(t, node)

	locs := Definition(&fakeIndex{}, uri.URI("s.pl"), node, root, tree.Source)
	require.Empty(t, locs)
}

func TestWorkspaceSymbolsEmptyQueryReturnsEmpty(t *testing.T) {
	idx := &fakeIndex{decls: map[uri.URI][]model.FunctionReference{
		uri.URI("a.pm"): {{FunctionName: "greet"}},
	}}
	require.Empty(t, WorkspaceSymbols(idx, ""))
}

func TestWorkspaceSymbolsSubstringMatch(t *testing.T) {
	idx := &fakeIndex{decls: map[uri.URI][]model.FunctionReference{
		uri.URI("a.pm"): {{FunctionName: "greetLoudly"}, {FunctionName: "other"}},
	}}
	syms := WorkspaceSymbols(idx, "REET")
	require.Len(t, syms, 1)
	require.Equal(t, "greetLoudly", syms[0].Name)
}

// TestImportSynthesis exercises spec.md scenario S4.
func TestImportSynthesis(t *testing.T) {
	host := newHost(t)
	const src = "use strict;\nuse Data::Dumper qw( Dumper );\n"
	tree := parseForTest(t, host, src)

	edit := SynthesizeImport(uri.URI("cur.pl"), tree.Root(), tree.Source, "Foo", "helper", config.ImportStyleFull)
	require.Equal(t, "use strict;\n\nuse Data::Dumper qw( Dumper );\nuse Foo qw( helper );", edit.NewText)
}

func TestImportSynthesisIsIdempotent(t *testing.T) {
	host := newHost(t)
	const src = "use strict;\nuse Data::Dumper qw( Dumper );\nuse Foo qw( helper );\n"
	tree := parseForTest(t, host, src)

	edit := SynthesizeImport(uri.URI("cur.pl"), tree.Root(), tree.Source, "Foo", "helper", config.ImportStyleFull)
	require.Equal(t, "use strict;\n\nuse Data::Dumper qw( Dumper );\nuse Foo qw( helper );", edit.NewText)
}

func TestImportSynthesisAddsToExistingFunctionOnlyImport(t *testing.T) {
	host := newHost(t)
	const src = "use strict;\nuse Foo qw( helper );\n"
	tree := parseForTest(t, host, src)

	edit := SynthesizeImport(uri.URI("cur.pl"), tree.Root(), tree.Source, "Foo", "another", config.ImportStyleFull)
	require.Equal(t, "use strict;\n\nuse Foo qw( another helper );", edit.NewText)
}

func TestRenameEmptyNameIsInvalidParams(t *testing.T) {
	host := newHost(t)
	tree := parseForTest(t, host, "my $x = 1;\n$x;\n")
	root := tree.Root()
	node := treesitter.NodeAtPosition(root, uri.Position{Row: 1, Column: 0})
	require.NotNil(t, node)

	_, err := Rename(&fakeIndex{}, uri.URI("s.pl"), node, "", root, tree.Source)
	require.Error(t, err)
}

func TestRenameVariableReplacesEveryVisibleOccurrence(t *testing.T) {
	host := newHost(t)
	tree := parseForTest(t, host, "my $x = 1;\n$x;\n")
	root := tree.Root()
	node := treesitter.NodeAtPosition(root, uri.Position{Row: 1, Column: 0})
	require.NotNil(t, node)

	edits, err := Rename(&fakeIndex{}, uri.URI("s.pl"), node, "y", root, tree.Source)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	for _, e := range edits {
		require.Equal(t, "y", e.NewText)
	}
}

func TestHoverOnVariable(t *testing.T) {
	host := newHost(t)
	tree := parseForTest(t, host, "my $x = 1;\n")
	root := tree.Root()
	node := treesitter.NodeAtPosition(root, uri.Position{Row: 0, Column: 3})
	require.NotNil(t, node)

	h := Hover(node, tree.Source)
	require.NotNil(t, h)
	require.Equal(t, "my $x; # Scalar", h.Markdown)
}

func TestCompletionSuppressedAfterScopeToken(t *testing.T) {
	idx := &fakeIndex{}
	items := Completion(idx, uri.URI("s.pl"), config.Default(), CompletionTrigger{PrecedingTokenKind: "scope", TypedWord: "gre"})
	require.Empty(t, items)
}

func TestCompletionFunctionCurrentFileSortsFirst(t *testing.T) {
	idx := &fakeIndex{decls: map[uri.URI][]model.FunctionReference{
		uri.URI("a.pm"): {{FunctionName: "greetOther", PackageName: "Foo"}},
		uri.URI("b.pm"): {{FunctionName: "greetHere", PackageName: "Bar"}},
	}}
	items := Completion(idx, uri.URI("b.pm"), config.Default(), CompletionTrigger{TypedWord: "greet"})
	require.Len(t, items, 2)
	require.Equal(t, "greetHere", trimPackage(items[0].Label))
}

func trimPackage(label string) string {
	for i := len(label) - 1; i >= 0; i-- {
		if label[i] == ':' {
			return label[i+1:]
		}
	}
	return label
}
