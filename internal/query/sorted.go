package query

import (
	"sort"

	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// sortedDeclURIs returns m's keys sorted, so a scan across every
// indexed URI is deterministic — spec.md's "insertion order across
// URIs" has no single meaning over a Go map, and a sorted URI order is
// a stable, reproducible substitute.
func sortedDeclURIs[V any](m map[uri.URI]V) []uri.URI {
	out := make([]uri.URI, 0, len(m))
	for u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
