// Package config holds the settings record the editor supplies over
// workspace/configuration (spec.md §6.6) plus the on-disk override file
// used when the server runs headless (no editor to ask).
package config

import "cmp"

// CachingStrategy selects how the workspace index retains parsed syntax
// trees. See spec.md §4.3.
type CachingStrategy string

const (
	CachingEager CachingStrategy = "eager"
	CachingFull  CachingStrategy = "full"
)

// ImportStyle controls the shape of a synthesized `use` statement.
type ImportStyle string

const (
	ImportStyleFull         ImportStyle = "Full"
	ImportStyleFunctionOnly ImportStyle = "Function Only"
)

// FunctionCallStyle controls how a completion item's label is rendered.
type FunctionCallStyle string

const (
	FunctionCallStylePackageAndName FunctionCallStyle = "packageName+functionName"
	FunctionCallStyleNameOnly       FunctionCallStyle = "functionName only"
)

// Settings is the settings record received from the editor (spec.md §6.6).
// json tags mirror the `perl.*` configuration keys; jsonschema tags back
// the `perl-lsp schema` CLI subcommand.
type Settings struct {
	ShowAllErrors     bool              `json:"showAllErrors,omitempty" jsonschema:"description=Enable full-file diagnostic walk on every analyze"`
	MaxNumberOfProblems int             `json:"maxNumberOfProblems,omitempty" jsonschema:"description=Workspace-wide cap on diagnostics published before analysis stops collecting them"`
	Caching           CachingStrategy   `json:"caching,omitempty" jsonschema:"description=Syntax tree cache policy: eager (open files only) or full (all analyzed files),enum=eager,enum=full"`
	ImportStyle       ImportStyle       `json:"importStyle,omitempty" jsonschema:"description=Shape of a synthesized import: Full or Function Only,enum=Full,enum=Function Only"`
	FunctionCallStyle FunctionCallStyle `json:"functionCallStyle,omitempty" jsonschema:"description=Completion label form,enum=packageName+functionName,enum=functionName only"`
}

// Default returns the settings in effect before any editor configuration
// arrives, following the teacher's DefaultXxxOptions() idiom.
func Default() Settings {
	return Settings{
		MaxNumberOfProblems: 100,
		Caching:             CachingEager,
		ImportStyle:         ImportStyleFull,
		FunctionCallStyle:   FunctionCallStylePackageAndName,
	}
}

// merge overlays t on top of o: zero-valued fields in t fall back to o,
// mirroring RepoMapOptions.merge in the teacher's config package.
func (o Settings) merge(t Settings) Settings {
	o.ShowAllErrors = o.ShowAllErrors || t.ShowAllErrors
	o.MaxNumberOfProblems = cmp.Or(t.MaxNumberOfProblems, o.MaxNumberOfProblems)
	o.Caching = cmp.Or(t.Caching, o.Caching)
	o.ImportStyle = cmp.Or(t.ImportStyle, o.ImportStyle)
	o.FunctionCallStyle = cmp.Or(t.FunctionCallStyle, o.FunctionCallStyle)
	return o
}

// Merge overlays override on top of Default(), the form callers use when
// wiring workspace/didChangeConfiguration or a YAML override file.
func Merge(override Settings) Settings {
	return Default().merge(override)
}
