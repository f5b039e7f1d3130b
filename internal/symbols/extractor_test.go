package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

func mustParse(t *testing.T, host *treesitter.Host, src string) *treesitter.SyntaxTree {
	t.Helper()
	tree, err := host.Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(func() { host.Free(tree) })
	return tree
}

// TestFunctionDeclarationExtraction exercises spec.md scenario S1.
func TestFunctionDeclarationExtraction(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	const src = "package Foo::Bar;\nsub greet { return \"hi\"; }\n1;\n"
	tree := mustParse(t, host, src)

	idx, diags := Extract(uri.URI("a.pm"), tree, true)
	require.Empty(t, diags)
	require.Len(t, idx.Declarations, 1)

	decl := idx.Declarations[0]
	require.Equal(t, uri.URI("a.pm"), decl.URI)
	require.Equal(t, "greet", decl.FunctionName)
	require.Equal(t, "Foo::Bar", decl.PackageName)
	require.Equal(t, uri.Position{Row: 1, Column: 4}, decl.Position.Start)
	require.Equal(t, uri.Position{Row: 1, Column: 9}, decl.Position.End)
}

// TestCrossFileReferenceExtraction exercises spec.md scenario S2.
func TestCrossFileReferenceExtraction(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	tree := mustParse(t, host, "Foo::Bar::greet();\n")

	idx, _ := Extract(uri.URI("b.pl"), tree, false)
	refs := idx.References["greet"]
	require.Len(t, refs, 1)
	require.Equal(t, uri.URI("b.pl"), refs[0].URI)
	require.Equal(t, uri.Position{Row: 0, Column: 10}, refs[0].Position.Start)
	require.Equal(t, uri.Position{Row: 0, Column: 15}, refs[0].Position.End)
}

func TestNestedPackageUsesLastEnclosingPackageStatement(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	const src = "package Outer;\npackage Inner;\nsub m { 1; }\n"
	tree := mustParse(t, host, src)

	idx, _ := Extract(uri.URI("nested.pm"), tree, false)
	require.Len(t, idx.Declarations, 1)
	require.Equal(t, "Inner", idx.Declarations[0].PackageName)
}

func TestTopLevelScriptHasEmptyPackageName(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	tree := mustParse(t, host, "sub run { 1; }\n")

	idx, _ := Extract(uri.URI("script.pl"), tree, false)
	require.Len(t, idx.Declarations, 1)
	require.Equal(t, "", idx.Declarations[0].PackageName)
}

func TestDiagnosticsFromMalformedSource(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	tree := mustParse(t, host, "sub broken {\n")

	_, diags := Extract(uri.URI("broken.pl"), tree, true)
	require.NotEmpty(t, diags, "an unterminated block must surface at least one diagnostic")
}

func TestNoDiagnosticsWhenDisabled(t *testing.T) {
	host, err := treesitter.NewHost()
	require.NoError(t, err)
	defer host.Close()

	tree := mustParse(t, host, "sub broken {\n")

	_, diags := Extract(uri.URI("broken.pl"), tree, false)
	require.Nil(t, diags)
}
