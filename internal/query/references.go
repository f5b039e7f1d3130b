package query

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// isFunctionIdentifier reports whether node's parent kind marks it as a
// function-name identifier, per spec.md §4.5: "node's parent kind
// contains call_expression, method_invocation, or function_definition".
func isFunctionIdentifier(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	pk := parent.Kind()
	return strings.Contains(pk, "call_expression") ||
		pk == treesitter.KindMethodInvocation ||
		pk == treesitter.KindFunctionDefinition
}

// References implements spec.md §4.5's `references` query.
func References(idx IndexReader, u uri.URI, node *tree_sitter.Node, onlyCurrentFile bool, root *tree_sitter.Node, source []byte) []uri.Location {
	if node == nil {
		return nil
	}

	if treesitter.IsVariableKind(node.Kind()) {
		target := treesitter.NodeText(node, source)
		var locs []uri.Location
		for _, v := range ScopeVariables(root, source, node) {
			if v.Name == target {
				locs = append(locs, uri.Location{URI: u, Range: v.Range})
			}
		}
		return locs
	}

	if !isFunctionIdentifier(node) {
		return nil
	}
	name := treesitter.NodeText(node, source)

	var locs []uri.Location
	refsByUri := idx.AllReferences()
	if onlyCurrentFile {
		for _, r := range refsByUri[u][name] {
			locs = append(locs, uri.Location{URI: r.URI, Range: r.Position})
		}
	} else {
		for _, du := range sortedDeclURIs(refsByUri) {
			for _, r := range refsByUri[du][name] {
				locs = append(locs, uri.Location{URI: r.URI, Range: r.Position})
			}
		}
	}

	declsByUri := idx.AllDeclarations()
	appendDecl := func(du uri.URI) {
		for _, d := range declsByUri[du] {
			if d.FunctionName == name {
				locs = append(locs, uri.Location{URI: d.URI, Range: d.Position})
			}
		}
	}
	if onlyCurrentFile {
		appendDecl(u)
	} else {
		for _, du := range sortedDeclURIs(declsByUri) {
			appendDecl(du)
		}
	}
	return locs
}

// DocumentHighlight is References(onlyCurrentFile=true) rendered with
// kind Read (spec.md §4.5).
func DocumentHighlight(idx IndexReader, u uri.URI, node *tree_sitter.Node, root *tree_sitter.Node, source []byte) []Highlight {
	locs := References(idx, u, node, true, root, source)
	out := make([]Highlight, len(locs))
	for i, loc := range locs {
		out[i] = Highlight{Range: loc.Range, Kind: HighlightRead}
	}
	return out
}
