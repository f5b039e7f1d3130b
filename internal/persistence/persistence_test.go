package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	snap := model.NewIndexSnapshot()
	snap.DeclsByURI[uri.URI("a.pm")] = []model.FunctionReference{
		{URI: uri.URI("a.pm"), FunctionName: "greet", PackageName: "Foo::Bar",
			Position: uri.Range{Start: uri.Position{Row: 1, Column: 4}, End: uri.Position{Row: 1, Column: 9}}},
	}
	snap.RefsByURI[uri.URI("b.pl")] = map[string][]model.FunctionReference{
		"greet": {
			{URI: uri.URI("b.pl"), FunctionName: "greet", PackageName: "Foo::Bar",
				Position: uri.Range{Start: uri.Position{Row: 0, Column: 10}, End: uri.Position{Row: 0, Column: 15}}},
		},
	}

	require.NoError(t, Save(dir, snap, logging.Discard()))

	loaded, ok := Load(dir, logging.Discard())
	require.True(t, ok)
	require.Equal(t, snap, loaded)
}

func TestSidecarNameIsKeptDespiteNotBeingAZip(t *testing.T) {
	require.Equal(t, filepath.Join("/ws", ".vscode", "function_map.zip"), SidecarPath("/ws"))
}

func TestLoadMissingSidecarIsNotAnError(t *testing.T) {
	_, ok := Load(t.TempDir(), logging.Discard())
	require.False(t, ok)
}

func TestLoadCorruptSidecarIsBestEffort(t *testing.T) {
	dir := t.TempDir()
	path := SidecarPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not a brotli stream"), 0o644))

	snap, ok := Load(dir, logging.Discard())
	require.False(t, ok)
	require.Zero(t, snap)
}

func TestSaveCreatesSidecarDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, model.NewIndexSnapshot(), logging.Discard()))
	_, err := os.Stat(SidecarPath(dir))
	require.NoError(t, err)
}
