// Package query is the Query Engine (spec.md C5): pure functions over
// the Workspace Index answering definition, references, rename,
// completion (+resolve and import synthesis), hover, and document /
// workspace symbol requests. Node classification is by tree-sitter node
// kind only, per spec.md §4.5. Grounded on the teacher's query-style
// read-only helpers over internal/repomap's index (no mutation, only
// lookups keyed by the caller-supplied node/position).
package query

import (
	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// IndexReader is the read-only subset of *workspace.Index the query
// engine needs. workspace.Index satisfies this structurally; tests
// substitute a fake.
type IndexReader interface {
	AllDeclarations() map[uri.URI][]model.FunctionReference
	AllReferences() map[uri.URI]map[string][]model.FunctionReference
	Declarations(u uri.URI) []model.FunctionReference
	References(u uri.URI) map[string][]model.FunctionReference
}

// HighlightKind mirrors LSP's DocumentHighlightKind; spec.md §4.5 only
// ever produces Read.
type HighlightKind int

const HighlightRead HighlightKind = 1

// Highlight is one documentHighlight result.
type Highlight struct {
	Range uri.Range
	Kind  HighlightKind
}

// TextEdit is a single replacement within one document, the currency of
// rename and completionResolve's import-synthesis edits.
type TextEdit struct {
	URI     uri.URI
	Range   uri.Range
	NewText string
}

// CompletionKind distinguishes the three completion item shapes spec.md
// §4.5 produces.
type CompletionKind int

const (
	CompletionVariable CompletionKind = iota + 1
	CompletionFunction
	CompletionPackage
)

// CompletionItem is one completion candidate. Declaration is populated
// for every CompletionFunction item, carrying what CompletionResolve
// needs to synthesize an import edit (spec.md §4.5.1; CompletionResolve
// returns no edit when it points at the requesting file); nil otherwise.
type CompletionItem struct {
	Label       string
	InsertText  string
	Kind        CompletionKind
	Declaration *model.FunctionReference
}

// SymbolKind mirrors LSP's SymbolKind; C2 only ever produces functions.
type SymbolKind int

const SymbolKindFunction SymbolKind = 12

// DocumentSymbol is one entry of a textDocument/documentSymbol reply
// (spec.md §4.5's "range and selectionRange both equal the name range").
type DocumentSymbol struct {
	Name          string
	Kind          SymbolKind
	Range         uri.Range
	SelectionRange uri.Range
}

// WorkspaceSymbol is one entry of a workspace/symbol reply.
type WorkspaceSymbol struct {
	Name     string
	Location uri.Location
}

// Hover is a hover result. When there is nothing to show, Hover returns
// a nil *Hover rather than an empty one (spec.md §4.5 "Otherwise null").
type Hover struct {
	Markdown string
	Range    uri.Range
}
