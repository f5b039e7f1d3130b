// Package model holds the index's shared value types (spec.md §3): the
// canonical FunctionReference record and the per-file index it composes
// into. Kept separate from symbols/workspace/query/persistence so those
// packages can all depend on it without an import cycle.
package model

import "github.com/perl-language-tools/perl-ls/internal/uri"

// FunctionReference is the canonical index record. Both a function's
// declaration and each of its call sites use this same shape
// (spec.md §3).
type FunctionReference struct {
	URI         uri.URI   `json:"uri"`
	FunctionName string   `json:"functionName"`
	PackageName string    `json:"packageName"`
	Position    uri.Range `json:"position"`
}

// PerFileIndex is one file's extracted declarations and call-site
// references, keyed by function name for the latter (spec.md §3).
type PerFileIndex struct {
	Declarations []FunctionReference
	References   map[string][]FunctionReference
}

// NewPerFileIndex returns an index with an initialized References map,
// so callers can append without a nil-map check.
func NewPerFileIndex() PerFileIndex {
	return PerFileIndex{References: make(map[string][]FunctionReference)}
}

// Severity distinguishes diagnostic kinds for the LSP facade's
// publishDiagnostics payload. Only Error is produced by C2 today
// (spec.md §4.2 emits exclusively syntax-error diagnostics), but the
// type exists so the facade's wire mapping doesn't need a special case.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is a syntactic problem found while extracting a file's
// symbols (spec.md §4.2).
type Diagnostic struct {
	Range    uri.Range
	Message  string
	Severity Severity
}

// IndexSnapshot is the persisted subset of the WorkspaceIndex (spec.md
// §4.4): declsByUri and refsByUri. treesByUri is deliberately excluded —
// syntax trees are never serialized.
type IndexSnapshot struct {
	DeclsByURI map[uri.URI][]FunctionReference            `json:"uriToFunctionDeclarations"`
	RefsByURI  map[uri.URI]map[string][]FunctionReference `json:"functionReference"`
}

// NewIndexSnapshot returns a snapshot with both maps initialized.
func NewIndexSnapshot() IndexSnapshot {
	return IndexSnapshot{
		DeclsByURI: make(map[uri.URI][]FunctionReference),
		RefsByURI:  make(map[uri.URI]map[string][]FunctionReference),
	}
}
