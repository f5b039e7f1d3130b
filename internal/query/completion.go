package query

import (
	"strings"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// CompletionTrigger carries the cursor-context facts the LSP facade
// derives from the document's tree before calling Completion — keeping
// this function a pure lookup over IndexReader plus these facts, rather
// than reaching back into tree-sitter itself.
type CompletionTrigger struct {
	// IsVariable is true when triggered by $, @ or %.
	IsVariable bool
	// TypedWord is the identifier prefix already typed.
	TypedWord string
	// PrecedingTokenKind is the tree-sitter kind of the token
	// immediately before the cursor. Completions are suppressed entirely
	// when it equals "scope" (spec.md §8 boundary behavior).
	PrecedingTokenKind string
	// InUseStatement is true when the cursor sits inside a
	// use_no_statement, affecting package-completion insert text.
	InUseStatement bool
	// VariableScope is the precomputed in-scope variable set (see
	// ScopeVariables), supplied only when IsVariable is true.
	VariableScope []ScopeVariable
}

// Completion implements spec.md §4.5's `completion` query.
func Completion(idx IndexReader, u uri.URI, settings config.Settings, trig CompletionTrigger) []CompletionItem {
	if trig.PrecedingTokenKind == treesitter.KindScope {
		return nil
	}

	if trig.IsVariable {
		seen := make(map[string]bool)
		var items []CompletionItem
		for _, v := range trig.VariableScope {
			if seen[v.Name] {
				continue
			}
			seen[v.Name] = true
			items = append(items, CompletionItem{Label: v.Name, InsertText: v.Name, Kind: CompletionVariable})
		}
		return items
	}

	word := strings.ToLower(trig.TypedWord)
	declsByUri := idx.AllDeclarations()

	var items []CompletionItem
	for _, du := range sortedDeclURIs(declsByUri) {
		decls := declsByUri[du]
		if len(decls) == 0 {
			continue
		}
		pkg := decls[0].PackageName
		if pkg == "" || !strings.Contains(strings.ToLower(pkg), word) {
			continue
		}
		insertText := pkg + "::"
		if trig.InUseStatement {
			insertText = pkg
		}
		items = append(items, CompletionItem{Label: pkg, InsertText: insertText, Kind: CompletionPackage})
	}

	var current, other []CompletionItem
	for _, du := range sortedDeclURIs(declsByUri) {
		decls := declsByUri[du]
		for i := range decls {
			d := decls[i]
			if !strings.Contains(strings.ToLower(d.FunctionName), word) {
				continue
			}
			label := d.FunctionName
			if d.PackageName != "" && settings.FunctionCallStyle != config.FunctionCallStyleNameOnly {
				label = d.PackageName + "::" + d.FunctionName
			}
			item := CompletionItem{Label: label, InsertText: d.FunctionName + "()", Kind: CompletionFunction, Declaration: &decls[i]}
			if du == u {
				current = append(current, item)
			} else {
				other = append(other, item)
			}
		}
	}
	items = append(items, current...)
	items = append(items, other...)
	return items
}
