package lsp

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/query"
	"github.com/perl-language-tools/perl-ls/internal/rpcerr"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// completionTriggerAt derives a query.CompletionTrigger from the raw
// document text and cursor position: the typed-word prefix and its
// sigil are read directly off the source bytes (completion fires
// mid-token, before the grammar has a settled node for the partial
// text), while the preceding token's kind and enclosing use-statement
// come from the last successfully parsed tree.
func completionTriggerAt(root *tree_sitter.Node, source []byte, pos uri.Position) query.CompletionTrigger {
	offset := byteOffsetAt(source, pos)
	prefix := source[:offset]

	sigil, word := scanTypedWord(prefix)
	trig := query.CompletionTrigger{
		IsVariable: sigil == '$' || sigil == '@' || sigil == '%',
		TypedWord:  word,
	}

	if offset > 0 {
		before := uri.Position{Row: pos.Row, Column: pos.Column}
		if pos.Column > 0 {
			before.Column--
		}
		node := treesitter.NodeAtPosition(root, before)
		if node != nil {
			trig.PrecedingTokenKind = node.Kind()
			trig.InUseStatement = hasAncestorOfKind(node, treesitter.KindUseNoStatement)
		}
		if trig.IsVariable {
			trig.VariableScope = query.ScopeVariables(root, source, node)
		}
	}

	return trig
}

// scanTypedWord walks backward from the end of prefix collecting
// identifier characters, returning the sigil (0 if none) immediately
// before them and the identifier text itself (sigil excluded).
func scanTypedWord(prefix []byte) (sigil byte, word string) {
	i := len(prefix)
	end := i
	for i > 0 && isIdentByte(prefix[i-1]) {
		i--
	}
	word = string(prefix[i:end])
	if i > 0 {
		switch prefix[i-1] {
		case '$', '@', '%':
			sigil = prefix[i-1]
		}
	}
	return sigil, word
}

func isIdentByte(b byte) bool {
	return b == '_' || b == ':' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func hasAncestorOfKind(n *tree_sitter.Node, kind string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == kind {
			return true
		}
	}
	return false
}

// byteOffsetAt converts a zero-based row/column position into a byte
// offset into source, matching tree-sitter's point convention (column
// counts bytes within the line, not runes).
func byteOffsetAt(source []byte, pos uri.Position) int {
	row := 0
	lineStart := 0
	for i := 0; i < len(source); i++ {
		if row == pos.Row {
			break
		}
		if source[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	if row < pos.Row {
		return len(source)
	}
	offset := lineStart + pos.Column
	if offset > len(source) {
		offset = len(source)
	}
	return offset
}

func (s *Server) completion(req *jsonrpc2.Request) (interface{}, error) {
	var params textDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	u := uri.URI(params.TextDocument.URI)
	root, source, err := s.documentContext(u)
	if err != nil {
		return nil, rpcerr.Internal(err)
	}

	trig := completionTriggerAt(root, source, fromWirePosition(params.Position))
	settings := s.settingsSnapshot()
	items := query.Completion(s.index, u, settings, trig)

	out := make([]completionItem, len(items))
	for i, item := range items {
		wi := completionItem{Label: item.Label, Kind: completionItemKind(item.Kind), InsertText: item.InsertText}
		if item.Declaration != nil {
			wi.Data = &completionData{
				URI:              string(u),
				DeclURI:          string(item.Declaration.URI),
				DeclPackageName:  item.Declaration.PackageName,
				DeclFunctionName: item.Declaration.FunctionName,
			}
		}
		out[i] = wi
	}
	return out, nil
}

// completionItemKind maps query.CompletionKind to LSP's
// CompletionItemKind enum (6 = Variable, 3 = Function, 9 = Module).
func completionItemKind(k query.CompletionKind) int {
	switch k {
	case query.CompletionVariable:
		return 6
	case query.CompletionFunction:
		return 3
	case query.CompletionPackage:
		return 9
	default:
		return 1
	}
}

func (s *Server) completionResolve(req *jsonrpc2.Request) (interface{}, error) {
	var item completionItem
	if err := unmarshalParams(req, &item); err != nil {
		return nil, err
	}
	if item.Data == nil || item.Data.DeclPackageName == "" {
		return item, nil
	}

	u := uri.URI(item.Data.URI)
	root, source, err := s.documentContext(u)
	if err != nil {
		return item, nil
	}

	settings := s.settingsSnapshot()
	decl := model.FunctionReference{
		URI:          uri.URI(item.Data.DeclURI),
		FunctionName: item.Data.DeclFunctionName,
		PackageName:  item.Data.DeclPackageName,
	}
	ci := query.CompletionItem{Declaration: &decl}
	edits := query.CompletionResolve(u, ci, settings.ImportStyle, root, source)
	if len(edits) == 0 {
		return item, nil
	}
	item.Data = nil
	return struct {
		completionItem
		AdditionalTextEdits []textEdit `json:"additionalTextEdits"`
	}{
		completionItem:      item,
		AdditionalTextEdits: []textEdit{{Range: toWireRange(edits[0].Range), NewText: edits[0].NewText}},
	}, nil
}
