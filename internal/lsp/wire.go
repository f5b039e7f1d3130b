// Package lsp is the LSP Facade (spec.md C6): request routing,
// client-capability negotiation, the workspace scan protocol, and
// diagnostics/progress publication. It is the thinnest layer in the
// server — every method here decodes a wire request, calls into C3
// (internal/workspace) or C5 (internal/query), and re-encodes the
// result, following the same jsonrpc2.HandlerWithError shape
// internal/dap's Facade uses.
package lsp

import "github.com/perl-language-tools/perl-ls/internal/uri"

// wirePosition is LSP's line/character position, zero-based like
// uri.Position but with LSP's field names on the wire.
type wirePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wireLocation struct {
	URI   string    `json:"uri"`
	Range wireRange `json:"range"`
}

func toWirePosition(p uri.Position) wirePosition {
	return wirePosition{Line: p.Row, Character: p.Column}
}

func fromWirePosition(p wirePosition) uri.Position {
	return uri.Position{Row: p.Line, Column: p.Character}
}

func toWireRange(r uri.Range) wireRange {
	return wireRange{Start: toWirePosition(r.Start), End: toWirePosition(r.End)}
}

func toWireLocation(l uri.Location) wireLocation {
	return wireLocation{URI: string(l.URI), Range: toWireRange(l.Range)}
}

func toWireLocations(ls []uri.Location) []wireLocation {
	out := make([]wireLocation, len(ls))
	for i, l := range ls {
		out[i] = toWireLocation(l)
	}
	return out
}

// textDocumentIdentifier is the {uri} shape common to every
// textDocument/* request.
type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     wirePosition           `json:"position"`
}

type didOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type diagnostic struct {
	Range    wireRange `json:"range"`
	Message  string    `json:"message"`
	Severity int       `json:"severity"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

type renameParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     wirePosition           `json:"position"`
	NewName      string                  `json:"newName"`
}

type textEdit struct {
	Range   wireRange `json:"range"`
	NewText string    `json:"newText"`
}

// workspaceEdit groups per-document edits into LSP's `changes` map,
// keyed by document URI.
type workspaceEdit struct {
	Changes map[string][]textEdit `json:"changes"`
}

type completionItem struct {
	Label      string `json:"label"`
	Kind       int    `json:"kind"`
	InsertText string `json:"insertText"`
	Data       *completionData `json:"data,omitempty"`
}

// completionData round-trips through completionResolve, carrying enough
// to recompute the import-synthesis edit without re-running Completion.
type completionData struct {
	URI             string `json:"uri"`
	DeclURI         string `json:"declUri"`
	DeclPackageName string `json:"declPackageName"`
	DeclFunctionName string `json:"declFunctionName"`
}

type documentSymbol struct {
	Name           string    `json:"name"`
	Kind           int       `json:"kind"`
	Range          wireRange `json:"range"`
	SelectionRange wireRange `json:"selectionRange"`
}

type workspaceSymbol struct {
	Name     string       `json:"name"`
	Location wireLocation `json:"location"`
}

type hoverResult struct {
	Contents markupContent `json:"contents"`
	Range    wireRange     `json:"range"`
}

type markupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type documentHighlight struct {
	Range wireRange `json:"range"`
	Kind  int       `json:"kind"`
}

type progressParams struct {
	Token string      `json:"token"`
	Value progressVal `json:"value"`
}

type progressVal struct {
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	Percentage  int    `json:"percentage,omitempty"`
}
