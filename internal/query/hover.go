package query

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
)

var variableKindLabel = map[string]string{
	treesitter.KindScalarVariable:        "Scalar",
	treesitter.KindArrayVariable:         "Array",
	treesitter.KindHashVariable:          "Hash",
	treesitter.KindSpecialScalarVariable: "Scalar",
}

// Hover implements spec.md §4.5's `hover` query.
func Hover(node *tree_sitter.Node, source []byte) *Hover {
	if node == nil {
		return nil
	}

	if treesitter.IsVariableKind(node.Kind()) {
		label, ok := variableKindLabel[node.Kind()]
		if !ok {
			label = node.Kind()
		}
		return &Hover{
			Markdown: fmt.Sprintf("my %s; # %s", treesitter.NodeText(node, source), label),
			Range:    treesitter.NodeRange(node),
		}
	}

	if parent := node.Parent(); parent != nil && isCallExpressionParentKind(parent.Kind()) {
		return &Hover{
			Markdown: fmt.Sprintf("sub %s; # function", treesitter.NodeText(parent, source)),
			Range:    treesitter.NodeRange(node),
		}
	}
	return nil
}

func isCallExpressionParentKind(kind string) bool {
	_, ok := treesitter.CallExpressionKinds[kind]
	return ok
}
