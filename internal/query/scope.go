package query

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// ScopeVariable is one `*_variable` node found while computing the
// variable scope entity (spec.md §3): not a stored index record, always
// recomputed from the tree at query time.
type ScopeVariable struct {
	Name  string
	Range uri.Range
}

// ScopeVariables computes the set of variables lexically visible at
// node, per spec.md §3: the `*_variable` nodes in the outermost
// enclosing `block` of node, unioned with the file's root-level
// variables (those found walking the whole tree without descending into
// any `block`). When node has no enclosing block (a file with no
// `block` at all, or a top-level statement), the result is exactly the
// root-level set — spec.md §8's documented boundary behavior.
//
// This is a deliberate over-approximation (spec.md §3): it does not
// exclude variables declared after node, nor variables in sibling
// blocks nested inside the same enclosing block.
func ScopeVariables(root *tree_sitter.Node, source []byte, node *tree_sitter.Node) []ScopeVariable {
	vars := rootLevelVariables(root, source)
	if outer := treesitter.OutermostEnclosingBlock(node); outer != nil {
		vars = append(vars, blockVariables(outer, source)...)
	}
	sort.SliceStable(vars, func(i, j int) bool {
		return vars[i].Range.Start.Less(vars[j].Range.Start)
	})
	return vars
}

func rootLevelVariables(root *tree_sitter.Node, source []byte) []ScopeVariable {
	var vars []ScopeVariable
	treesitter.ForEachNode(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == treesitter.KindBlock {
			return false
		}
		if treesitter.IsVariableKind(n.Kind()) {
			vars = append(vars, ScopeVariable{Name: treesitter.NodeText(n, source), Range: treesitter.NodeRange(n)})
		}
		return true
	})
	return vars
}

func blockVariables(block *tree_sitter.Node, source []byte) []ScopeVariable {
	var vars []ScopeVariable
	treesitter.ForEachDescendant(block, func(n *tree_sitter.Node) {
		if treesitter.IsVariableKind(n.Kind()) {
			vars = append(vars, ScopeVariable{Name: treesitter.NodeText(n, source), Range: treesitter.NodeRange(n)})
		}
	})
	return vars
}
