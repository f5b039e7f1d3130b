package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	d := Default()
	require.Equal(t, 100, d.MaxNumberOfProblems)
	require.Equal(t, CachingEager, d.Caching)
	require.Equal(t, ImportStyleFull, d.ImportStyle)
	require.Equal(t, FunctionCallStylePackageAndName, d.FunctionCallStyle)
	require.False(t, d.ShowAllErrors)
}

func TestMergeOverridesOnlyNonZeroFields(t *testing.T) {
	merged := Merge(Settings{Caching: CachingFull})
	require.Equal(t, CachingFull, merged.Caching)
	require.Equal(t, 100, merged.MaxNumberOfProblems, "unset fields keep defaults")

	merged = Merge(Settings{MaxNumberOfProblems: 5, ShowAllErrors: true})
	require.Equal(t, 5, merged.MaxNumberOfProblems)
	require.True(t, merged.ShowAllErrors)
	require.Equal(t, CachingEager, merged.Caching, "untouched field keeps default")
}

func TestLoadOverrideFileMissingIsDefault(t *testing.T) {
	s, err := LoadOverrideFile("/nonexistent/.perl-ls.yaml")
	require.NoError(t, err)
	require.Equal(t, Default(), s)
}
