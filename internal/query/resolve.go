package query

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// CompletionResolve implements spec.md §4.5's `completionResolve`: for
// a function completion selected from another file, attach the
// ImportStyle-dependent import-synthesis edit (spec.md §4.5.1). Returns
// nil when item has no Declaration (variable/package items) or the
// declaration's package is empty or already belongs to the requesting
// file — nothing to import in those cases. Idempotent by construction:
// SynthesizeImport re-extracts the current import block on every call,
// so resolving the same item twice against the same document text
// yields the identical edit.
func CompletionResolve(u uri.URI, item CompletionItem, style config.ImportStyle, root *tree_sitter.Node, source []byte) []TextEdit {
	if item.Declaration == nil {
		return nil
	}
	decl := item.Declaration
	if decl.PackageName == "" || decl.URI == u {
		return nil
	}

	edit := SynthesizeImport(u, root, source, decl.PackageName, decl.FunctionName, style)
	return []TextEdit{edit}
}
