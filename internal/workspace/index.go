// Package workspace is the Workspace Index (spec.md C3): the global
// URI→tree, URI→declarations and URI→references mappings, their
// invalidation, and the two client-selectable tree-caching strategies.
// Grounded on the teacher's internal/treesitter cache wiring plus its
// index-mutation patterns in internal/repomap, generalized to the single
// read/write lock spec.md §5 calls for ("a single logical writer at a
// time").
package workspace

import (
	"fmt"
	"sync"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/symbols"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// Mode selects an analyze() call's tree-retention behavior (spec.md
// §4.6): OnFileOpen forces a treesByUri insertion even under the eager
// caching strategy, since the editor has the document open; OnWorkspaceOpen
// is the bulk-scan path that defers to the configured strategy.
type Mode int

const (
	OnWorkspaceOpen Mode = iota
	OnFileOpen
)

// ReadFile resolves a URI to its current file content. Swappable in
// tests; production wiring reads from disk.
type ReadFile func(u uri.URI) ([]byte, error)

// Index is the Workspace Index. All exported methods are safe for
// concurrent read access; analyze/close/restore take the write lock,
// matching spec.md §5's "any number of concurrent readers; writes must
// not overlap with readers" policy.
type Index struct {
	mu sync.RWMutex

	host     *treesitter.Host
	trees    *treesitter.Cache
	strategy config.CachingStrategy
	readFile ReadFile

	declsByUri map[uri.URI][]model.FunctionReference
	refsByUri  map[uri.URI]map[string][]model.FunctionReference

	// openURIs tracks documents the editor currently has open, so an
	// `eager` strategy keeps exactly those trees resident.
	openURIs map[uri.URI]bool
}

// New constructs an empty Index. cacheSize bounds the resident tree
// cache under the `full` strategy (<=0 means unbounded); under `eager`
// cacheSize is ignored and the cache is unbounded, with only open
// documents' trees placed in it.
func New(host *treesitter.Host, strategy config.CachingStrategy, cacheSize int, readFile ReadFile) *Index {
	size := cacheSize
	if strategy == config.CachingEager {
		size = 0 // unbounded container; eager pruning happens in Close/analyze, not LRU eviction
	}
	return &Index{
		host:       host,
		trees:      treesitter.NewCache(size),
		strategy:   strategy,
		readFile:   readFile,
		declsByUri: make(map[uri.URI][]model.FunctionReference),
		refsByUri:  make(map[uri.URI]map[string][]model.FunctionReference),
		openURIs:   make(map[uri.URI]bool),
	}
}

// Analyze runs one full extraction pass over content and installs its
// result as U's current declarations/references (spec.md invariant 5:
// no carry-over from a previous version). Whether the parsed tree is
// retained depends on mode and the configured caching strategy.
func (idx *Index) Analyze(u uri.URI, content []byte, mode Mode, collectDiagnostics bool) ([]model.Diagnostic, error) {
	tree, err := idx.host.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("workspace: parse %s: %w", u, err)
	}

	perFile, diags := symbols.Extract(u, tree, collectDiagnostics)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.declsByUri[u] = perFile.Declarations
	idx.refsByUri[u] = perFile.References

	if mode == OnFileOpen {
		idx.openURIs[u] = true
	}
	if idx.shouldRetainTreeLocked(u, mode) {
		idx.trees.Put(string(u), tree)
	} else {
		tree.Close()
	}

	return diags, nil
}

func (idx *Index) shouldRetainTreeLocked(u uri.URI, mode Mode) bool {
	if mode == OnFileOpen {
		return true
	}
	return idx.strategy == config.CachingFull
}

// SetCachingStrategy updates the tree-retention policy in effect for
// future Analyze/TreeFor calls (spec.md §6.6's `perl.caching` setting,
// applied live on workspace/didChangeConfiguration without discarding
// the decls/refs already extracted).
func (idx *Index) SetCachingStrategy(strategy config.CachingStrategy) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.strategy = strategy
}

// TreeFor returns U's syntax tree, parsing and (per strategy) caching it
// on a miss. Errors if the file cannot be read or parsed.
func (idx *Index) TreeFor(u uri.URI) (*treesitter.SyntaxTree, error) {
	idx.mu.RLock()
	if tree, ok := idx.trees.Get(string(u)); ok {
		idx.mu.RUnlock()
		return tree, nil
	}
	idx.mu.RUnlock()

	content, err := idx.readFile(u)
	if err != nil {
		return nil, fmt.Errorf("workspace: read %s: %w", u, err)
	}
	tree, err := idx.host.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("workspace: parse %s: %w", u, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	open := idx.openURIs[u]
	if open || idx.strategy == config.CachingFull {
		idx.trees.Put(string(u), tree)
	}
	return tree, nil
}

// Close evicts every entry keyed by u (spec.md invariant 3): tree,
// declarations and references. A subsequent analyze re-populates them.
func (idx *Index) Close(u uri.URI) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.trees.Invalidate(string(u))
	delete(idx.declsByUri, u)
	delete(idx.refsByUri, u)
	delete(idx.openURIs, u)
}

// Declarations returns a copy of u's declaration slice.
func (idx *Index) Declarations(u uri.URI) []model.FunctionReference {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	decls := idx.declsByUri[u]
	out := make([]model.FunctionReference, len(decls))
	copy(out, decls)
	return out
}

// AllDeclarations returns every URI's declarations, keyed by URI, for
// query-engine operations that scan the whole workspace (definition,
// rename, workspace symbols). The returned maps/slices are copies.
func (idx *Index) AllDeclarations() map[uri.URI][]model.FunctionReference {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[uri.URI][]model.FunctionReference, len(idx.declsByUri))
	for u, decls := range idx.declsByUri {
		cp := make([]model.FunctionReference, len(decls))
		copy(cp, decls)
		out[u] = cp
	}
	return out
}

// References returns a copy of u's reference map.
func (idx *Index) References(u uri.URI) map[string][]model.FunctionReference {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return copyRefs(idx.refsByUri[u])
}

// AllReferences returns every URI's reference map, keyed by URI.
func (idx *Index) AllReferences() map[uri.URI]map[string][]model.FunctionReference {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[uri.URI]map[string][]model.FunctionReference, len(idx.refsByUri))
	for u, refs := range idx.refsByUri {
		out[u] = copyRefs(refs)
	}
	return out
}

func copyRefs(refs map[string][]model.FunctionReference) map[string][]model.FunctionReference {
	out := make(map[string][]model.FunctionReference, len(refs))
	for name, rs := range refs {
		cp := make([]model.FunctionReference, len(rs))
		copy(cp, rs)
		out[name] = cp
	}
	return out
}

// Snapshot returns the persisted subset of the index (spec.md §4.4):
// declsByUri and refsByUri, with treesByUri deliberately excluded.
func (idx *Index) Snapshot() model.IndexSnapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	snap := model.NewIndexSnapshot()
	for u, decls := range idx.declsByUri {
		cp := make([]model.FunctionReference, len(decls))
		copy(cp, decls)
		snap.DeclsByURI[u] = cp
	}
	for u, refs := range idx.refsByUri {
		snap.RefsByURI[u] = copyRefs(refs)
	}
	return snap
}

// Restore installs a previously persisted snapshot, replacing whatever
// decls/refs are currently resident. Trees are untouched — a restored
// URI is re-parsed lazily on its next TreeFor call.
func (idx *Index) Restore(snap model.IndexSnapshot) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.declsByUri = make(map[uri.URI][]model.FunctionReference, len(snap.DeclsByURI))
	for u, decls := range snap.DeclsByURI {
		cp := make([]model.FunctionReference, len(decls))
		copy(cp, decls)
		idx.declsByUri[u] = cp
	}
	idx.refsByUri = make(map[uri.URI]map[string][]model.FunctionReference, len(snap.RefsByURI))
	for u, refs := range snap.RefsByURI {
		idx.refsByUri[u] = copyRefs(refs)
	}
}

// CloseAll releases the parser-host-independent resources the index owns
// (the tree cache). It does not close the Host, which outlives any one
// Index in cmd/perl-lsp's wiring.
func (idx *Index) CloseAll() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.trees.Close()
}
