package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// Import is one classified use/no statement in a file, per spec.md
// §4.5.1.
type Import struct {
	PackageName    string
	Functions      []string // non-nil (possibly empty) only when IsFunctionOnly
	IsFunctionOnly bool
	Range          uri.Range
}

var wordRE = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ExtractImports reads every use_no_statement in root, classified full
// vs. function-only by the presence of a word_list_qw child.
func ExtractImports(root *tree_sitter.Node, source []byte) []Import {
	var imports []Import
	treesitter.ForEachDescendant(root, func(n *tree_sitter.Node) {
		if n.Kind() != treesitter.KindUseNoStatement {
			return
		}
		pkgNode := n.ChildByFieldName(treesitter.FieldPackageName)
		if pkgNode == nil {
			return
		}
		imp := Import{PackageName: treesitter.NodeText(pkgNode, source), Range: treesitter.NodeRange(n)}

		if qw := findDescendantOfKind(n, treesitter.KindWordListQw); qw != nil {
			imp.IsFunctionOnly = true
			imp.Functions = parseWordListQw(qw, source)
		}
		imports = append(imports, imp)
	})
	return imports
}

func findDescendantOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	var found *tree_sitter.Node
	treesitter.ForEachNode(n, func(candidate *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if candidate.Kind() == kind {
			found = candidate
			return false
		}
		return true
	})
	return found
}

func parseWordListQw(qw *tree_sitter.Node, source []byte) []string {
	text := treesitter.NodeText(qw, source)
	words := wordRE.FindAllString(text, -1)
	if len(words) > 0 && strings.EqualFold(words[0], "qw") {
		words = words[1:]
	}
	return words
}

func isStrictOrWarnings(pkg string) bool {
	return pkg == "strict" || pkg == "warnings"
}

// renderImport renders one Import back to Perl source text.
func renderImport(imp Import) string {
	if !imp.IsFunctionOnly {
		return fmt.Sprintf("use %s;", imp.PackageName)
	}
	fns := append([]string(nil), imp.Functions...)
	sort.Strings(fns)
	fns = dedupeSorted(fns)
	return fmt.Sprintf("use %s qw( %s );", imp.PackageName, strings.Join(fns, " "))
}

func dedupeSorted(sorted []string) []string {
	out := sorted[:0]
	var prev string
	first := true
	for _, s := range sorted {
		if !first && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
		first = false
	}
	return out
}

// renderImportBlock implements the canonical ordering from spec.md
// §4.5.1: `use strict;`/`use warnings;` first (each retaining its own
// full-vs-function-only classification, sorted within that group), then
// remaining full imports (sorted), then remaining function-only imports
// (sorted), blank-line separated where each group is non-empty.
func renderImportBlock(imports []Import) string {
	var topGroup, fullGroup, fnGroup []Import
	for _, imp := range imports {
		switch {
		case isStrictOrWarnings(imp.PackageName):
			topGroup = append(topGroup, imp)
		case imp.IsFunctionOnly:
			fnGroup = append(fnGroup, imp)
		default:
			fullGroup = append(fullGroup, imp)
		}
	}
	sortByPackage(topGroup)
	sortByPackage(fullGroup)
	sortByPackage(fnGroup)

	var blocks []string
	for _, group := range [][]Import{topGroup, fullGroup, fnGroup} {
		if len(group) == 0 {
			continue
		}
		lines := make([]string, len(group))
		for i, imp := range group {
			lines[i] = renderImport(imp)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func sortByPackage(imports []Import) {
	sort.Slice(imports, func(i, j int) bool { return imports[i].PackageName < imports[j].PackageName })
}

// SynthesizeImport implements spec.md §4.5.1: given a target package
// and function selected from another file's declaration, compute the
// single replacement TextEdit spanning the file's existing import
// block. Idempotent: calling it again once the edits are applied
// produces the identical text (spec.md §8 round-trip law), since
// re-extracting an already-synthesized import and re-rendering it is a
// fixed point of renderImportBlock.
func SynthesizeImport(u uri.URI, root *tree_sitter.Node, source []byte, targetPackage, targetFunction string, style config.ImportStyle) TextEdit {
	imports := ExtractImports(root, source)

	found := false
	for i := range imports {
		if imports[i].PackageName == targetPackage && imports[i].IsFunctionOnly {
			imports[i].Functions = append(imports[i].Functions, targetFunction)
			found = true
			break
		}
	}
	if !found {
		hasAny := false
		for _, imp := range imports {
			if imp.PackageName == targetPackage {
				hasAny = true
				break
			}
		}
		if !hasAny {
			if style == config.ImportStyleFull {
				imports = append(imports, Import{PackageName: targetPackage, IsFunctionOnly: false})
			} else {
				imports = append(imports, Import{PackageName: targetPackage, IsFunctionOnly: true, Functions: []string{targetFunction}})
			}
		}
	}

	newText := renderImportBlock(imports)

	if len(imports) == 0 || allZeroRange(imports) {
		return TextEdit{URI: u, Range: uri.Range{}, NewText: newText + "\n\n"}
	}
	return TextEdit{URI: u, Range: spanningRange(imports), NewText: newText}
}

func allZeroRange(imports []Import) bool {
	for _, imp := range imports {
		if imp.Range != (uri.Range{}) {
			return false
		}
	}
	return true
}

// spanningRange computes the range from the first to the last existing
// import's range (spec.md §4.5.1: "a single replacement edit spanning
// the first to the last existing import range"). Newly-appended imports
// with a zero Range (no prior on-disk statement) do not extend it.
func spanningRange(imports []Import) uri.Range {
	var start, end uri.Position
	initialized := false
	for _, imp := range imports {
		if imp.Range == (uri.Range{}) {
			continue
		}
		if !initialized {
			start, end = imp.Range.Start, imp.Range.End
			initialized = true
			continue
		}
		if imp.Range.Start.Less(start) {
			start = imp.Range.Start
		}
		if end.Less(imp.Range.End) {
			end = imp.Range.End
		}
	}
	return uri.Range{Start: start, End: end}
}
