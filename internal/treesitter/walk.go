package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// NodeText returns a node's source text, or "" for a nil node.
func NodeText(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(source)
}

// NodeRange converts a node's span to the uri.Range value type.
func NodeRange(n *tree_sitter.Node) uri.Range {
	if n == nil {
		return uri.Range{}
	}
	start := n.StartPosition()
	end := n.EndPosition()
	return uri.Range{
		Start: uri.Position{Row: int(start.Row), Column: int(start.Column)},
		End:   uri.Position{Row: int(end.Row), Column: int(end.Column)},
	}
}

// ForEachNode performs an iterative depth-first walk of every descendant
// of root (cursor-based, to avoid recursion depth limits per the
// teacher's TreeContext.walkTree idiom), calling visit for each. If
// visit returns false for a node, its children are not descended into
// -- this implements the "stop descending into blocks" rule spec.md §3
// uses for variable scope computation, and the "descend only on
// hasError/isMissing" rule §4.2 uses for diagnostics.
func ForEachNode(root *tree_sitter.Node, visit func(n *tree_sitter.Node) bool) {
	if root == nil {
		return
	}
	cursor := root.Walk()
	defer cursor.Close()

	for {
		node := cursor.Node()
		descend := visit(node)

		if descend && cursor.GotoFirstChild() {
			continue
		}
		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() {
				return
			}
			if cursor.Node().Id() == root.Id() {
				return
			}
		}
	}
}

// ForEachDescendant walks every descendant unconditionally (visit's
// return value is ignored for descent purposes); a convenience wrapper
// over ForEachNode for full-tree passes like C2's single pass.
func ForEachDescendant(root *tree_sitter.Node, visit func(n *tree_sitter.Node)) {
	ForEachNode(root, func(n *tree_sitter.Node) bool {
		visit(n)
		return true
	})
}

// EnclosingPackageName walks n's ancestors to find the innermost
// enclosing package_statement, per spec.md §3's packageName invariant:
// "equals the package_name of the innermost enclosing package_statement
// at the node's position, or "" if none". Because Perl packages are not
// necessarily block-scoped (`package Foo;` without braces applies from
// that point to the next package statement or EOF), this climbs to the
// root and walks the whole tree in document order, keeping the name of
// the last package_statement that starts at or before n — not just
// direct ancestors — and returns "" if there is none.
func EnclosingPackageName(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}

	root := n
	for root.Parent() != nil {
		root = root.Parent()
	}

	var lastPkg string
	var found bool
	nStart := n.StartPosition()

	ForEachNode(root, func(candidate *tree_sitter.Node) bool {
		if candidate.Kind() != KindPackageStatement {
			return true
		}
		// Only package statements textually before (or enclosing) n count.
		if candidate.StartPosition().Row > nStart.Row ||
			(candidate.StartPosition().Row == nStart.Row && candidate.StartPosition().Column > nStart.Column) {
			return true
		}
		if nameNode := candidate.ChildByFieldName(FieldPackageName); nameNode != nil {
			lastPkg = NodeText(nameNode, source)
			found = true
		} else if pkgChild := firstChildOfKind(candidate, KindPackageName); pkgChild != nil {
			lastPkg = NodeText(pkgChild, source)
			found = true
		}
		return true
	})

	if !found {
		return ""
	}
	return lastPkg
}

// NodeAtPosition returns the smallest named descendant of root spanning
// pos, the "node" input every Query Engine operation in spec.md §4.5
// takes alongside a URI. Returns nil if root is nil or pos lies outside
// the tree.
func NodeAtPosition(root *tree_sitter.Node, pos uri.Position) *tree_sitter.Node {
	if root == nil {
		return nil
	}
	point := tree_sitter.Point{Row: uint(pos.Row), Column: uint(pos.Column)}
	n := root.NamedDescendantForPointRange(point, point)
	return n
}

func firstChildOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// OutermostEnclosingBlock returns the outermost `block` node enclosing n,
// per spec.md §3's variable scope entity: "the outermost enclosing block
// of the query node". Returns nil if n is not inside any block (a
// root-level script).
func OutermostEnclosingBlock(n *tree_sitter.Node) *tree_sitter.Node {
	var outer *tree_sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == KindBlock {
			outer = p
		}
	}
	return outer
}
