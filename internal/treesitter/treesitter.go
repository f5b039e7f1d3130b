// Package treesitter is the Parser Host (spec.md C1): it owns the single
// tree-sitter language handle for Perl, parses source text into syntax
// trees, and exposes the cursor-navigation helpers the symbol extractor
// and query engine walk. Grounded on the teacher's internal/treesitter
// package (github.com/tree-sitter/go-tree-sitter pool + LRU cache),
// generalized from many languages down to the one grammar this server
// speaks.
package treesitter

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_perl "github.com/tree-sitter/tree-sitter-perl/bindings/go"
)

// SyntaxTree is the opaque parse tree type spec.md §3 describes. It pairs
// the tree-sitter tree with the source bytes it was parsed from, since
// every node-to-text projection (identifier names, package names) needs
// the original bytes.
type SyntaxTree struct {
	tree   *tree_sitter.Tree
	Source []byte
}

// Root returns the tree's root node.
func (t *SyntaxTree) Root() *tree_sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil
// receiver or an already-closed tree.
func (t *SyntaxTree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

// Clone returns an independent copy sharing the immutable tree storage;
// tree-sitter trees are copy-on-write, so Clone is cheap. This backs the
// Parser Host's `copy` contract operation (spec.md §4.1).
func (t *SyntaxTree) Clone() *SyntaxTree {
	if t == nil || t.tree == nil {
		return nil
	}
	return &SyntaxTree{tree: t.tree.Clone(), Source: t.Source}
}

var (
	perlLanguage     *tree_sitter.Language
	perlLanguageOnce  sync.Once
	perlLanguageError error
)

// initLanguage lazily constructs the single process-wide Perl grammar
// handle. spec.md §4.1 requires this to complete before any request is
// serviced; Host's constructor forces that by calling it eagerly.
func initLanguage() (*tree_sitter.Language, error) {
	perlLanguageOnce.Do(func() {
		perlLanguage = tree_sitter.NewLanguage(tree_sitter_perl.Language())
		if perlLanguage == nil {
			perlLanguageError = fmt.Errorf("treesitter: failed to initialize perl grammar")
		}
	})
	return perlLanguage, perlLanguageError
}

// Host owns the parser pool for the Perl grammar. Parsing is synchronous
// and deterministic per spec.md §4.1; the pool exists only so multiple
// goroutines (workspace scan vs. interactive requests) are not serialized
// on a single *tree_sitter.Parser.
type Host struct {
	language *tree_sitter.Language
	pool     *ParserPool
}

// NewHost initializes the language handle and a parser pool sized to
// the number of CPUs (see NewParserPool). Returns an
// error if the grammar fails to initialize — callers must not service
// requests in that case (spec.md §4.1).
func NewHost() (*Host, error) {
	lang, err := initLanguage()
	if err != nil {
		return nil, err
	}
	return &Host{
		language: lang,
		pool:     NewParserPool(),
	}, nil
}

// Parse parses source text into a SyntaxTree. Contract: parse(text) ->
// SyntaxTree (spec.md §4.1).
func (h *Host) Parse(text []byte) (*SyntaxTree, error) {
	lp, err := h.pool.Get()
	if err != nil {
		return nil, err
	}
	defer h.pool.Release(lp)

	if err := lp.parser.SetLanguage(h.language); err != nil {
		return nil, fmt.Errorf("treesitter: set language: %w", err)
	}

	tree := lp.parser.Parse(text, nil)
	if tree == nil {
		return nil, fmt.Errorf("treesitter: parse returned nil tree")
	}
	return &SyntaxTree{tree: tree, Source: text}, nil
}

// Copy implements the Parser Host's `copy` contract operation.
func (h *Host) Copy(t *SyntaxTree) *SyntaxTree {
	return t.Clone()
}

// Free implements the Parser Host's `free` contract operation.
func (h *Host) Free(t *SyntaxTree) {
	t.Close()
}

// Close releases all pooled parsers.
func (h *Host) Close() error {
	if h.pool != nil {
		return h.pool.Close()
	}
	return nil
}
