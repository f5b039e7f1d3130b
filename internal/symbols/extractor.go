// Package symbols is the Symbol Extractor (spec.md C2): a single pass
// over a parsed file's syntax tree that produces its PerFileIndex
// (declarations + call-site references, each package-scoped) and its
// syntactic diagnostics. Grounded on the teacher's tag-extraction pass
// (internal/repomap/tags.go), replacing tree-sitter-query capture
// matching with the manual cursor walk spec.md §4.2 specifies, since
// this server's node-kind set is fixed and small.
package symbols

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// Extract runs the single-pass visitor described in spec.md §4.2 over
// tree, returning u's PerFileIndex. Diagnostics are computed only when
// collectDiagnostics is true — the caller (the LSP facade's workspace
// scan, spec.md §4.6) turns this off once the workspace-wide problem
// cap is reached.
func Extract(u uri.URI, tree *treesitter.SyntaxTree, collectDiagnostics bool) (model.PerFileIndex, []model.Diagnostic) {
	idx := model.NewPerFileIndex()
	root := tree.Root()
	if root == nil {
		return idx, nil
	}
	source := tree.Source

	treesitter.ForEachDescendant(root, func(n *tree_sitter.Node) {
		switch {
		case n.Kind() == treesitter.KindFunctionDefinition:
			extractDeclaration(u, n, source, &idx)
		case isCallExpressionKind(n.Kind()):
			extractReference(u, n, source, &idx)
		}
	})

	var diags []model.Diagnostic
	if collectDiagnostics {
		diags = diagnostics(root, source)
	}
	return idx, diags
}

func isCallExpressionKind(kind string) bool {
	_, ok := treesitter.CallExpressionKinds[kind]
	return ok
}

func extractDeclaration(u uri.URI, n *tree_sitter.Node, source []byte, idx *model.PerFileIndex) {
	nameNode := n.ChildByFieldName(treesitter.FieldName)
	if nameNode == nil {
		return
	}
	idx.Declarations = append(idx.Declarations, model.FunctionReference{
		URI:          u,
		FunctionName: treesitter.NodeText(nameNode, source),
		PackageName:  treesitter.EnclosingPackageName(n, source),
		Position:     treesitter.NodeRange(nameNode),
	})
}

// nameNodeForCallSite resolves the `function_name` identifier for a call
// expression node: spec.md §4.2 says the field may live "on the node
// itself or on its first child".
func nameNodeForCallSite(n *tree_sitter.Node) *tree_sitter.Node {
	if nameNode := n.ChildByFieldName(treesitter.FieldFunctionName); nameNode != nil {
		return nameNode
	}
	if n.ChildCount() == 0 {
		return nil
	}
	first := n.Child(0)
	if first == nil {
		return nil
	}
	return first.ChildByFieldName(treesitter.FieldFunctionName)
}

func extractReference(u uri.URI, n *tree_sitter.Node, source []byte, idx *model.PerFileIndex) {
	nameNode := nameNodeForCallSite(n)
	if nameNode == nil {
		return
	}
	name := treesitter.NodeText(nameNode, source)
	if name == "" {
		return
	}
	ref := model.FunctionReference{
		URI:          u,
		FunctionName: name,
		PackageName:  treesitter.EnclosingPackageName(n, source),
		Position:     treesitter.NodeRange(nameNode),
	}
	idx.References[name] = append(idx.References[name], ref)
}

// diagnostics walks root with the short-circuiting visitor from
// spec.md §4.2: it descends into a node only if that node has an error
// somewhere in its subtree or is itself a synthetic "missing" node.
func diagnostics(root *tree_sitter.Node, source []byte) []model.Diagnostic {
	var diags []model.Diagnostic
	treesitter.ForEachNode(root, func(n *tree_sitter.Node) bool {
		if !(n.HasError() || n.IsMissing()) {
			return false
		}
		switch {
		case n.IsMissing():
			diags = append(diags, model.Diagnostic{
				Range:    treesitter.NodeRange(n),
				Message:  fmt.Sprintf("Syntax error: expected %q", n.Kind()),
				Severity: model.SeverityError,
			})
		case n.IsError():
			diags = append(diags, model.Diagnostic{
				Range:    treesitter.NodeRange(n),
				Message:  fmt.Sprintf("Syntax Error near expression «%s»", treesitter.NodeText(n, source)),
				Severity: model.SeverityError,
			})
		}
		return true
	})
	return diags
}
