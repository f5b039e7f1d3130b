package lsp

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/persistence"
	"github.com/perl-language-tools/perl-ls/internal/uri"
	"github.com/perl-language-tools/perl-ls/internal/workspace"
)

const defaultGlobPattern = "**/*@(.pl|.pm|.t|.esp)"

func globPattern() string {
	if p := os.Getenv("GLOB_PATTERN"); p != "" {
		return p
	}
	return defaultGlobPattern
}

// scanWorkspace implements spec.md §4.6's six-step workspace scan
// protocol. It runs once, in its own goroutine started from the
// initialized notification handler — not inside the request/response
// cycle, so a large workspace never blocks the client's `initialize`
// response.
func (s *Server) scanWorkspace(ctx context.Context, conn *jsonrpc2.Conn, roots []string) {
	s.mu.Lock()
	root := root0(roots)
	s.workspaceRoot = root
	s.workspaceFolders = roots
	s.mu.Unlock()

	snap, loaded := persistence.Load(root, s.logger)
	if loaded {
		s.index.Restore(snap)
	}

	token := s.nextProgressToken()
	title := "(Please wait) Indexing"
	if loaded {
		title = "Re-indexing"
	}
	s.beginProgress(ctx, conn, token, title)

	files := s.discoverFiles(roots)
	settings := s.settingsSnapshot()

	problemsCounter := 0
	for i, path := range files {
		select {
		case <-ctx.Done():
			return
		default:
		}

		u := uri.URI("file://" + path)
		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("lsp: skipping unreadable file during scan", "path", path, "error", err)
			s.reportProgress(ctx, conn, token, i+1, len(files))
			continue
		}

		collect := problemsCounter <= settings.MaxNumberOfProblems
		diags, err := s.index.Analyze(u, content, workspace.OnWorkspaceOpen, collect)
		if err != nil {
			s.logger.Warn("lsp: analyze failed during scan", "path", path, "error", err)
			s.reportProgress(ctx, conn, token, i+1, len(files))
			continue
		}
		if collect {
			problemsCounter += len(diags)
			s.publishDiagnostics(ctx, conn, u, diags)
		}
		s.reportProgress(ctx, conn, token, i+1, len(files))
	}

	s.endProgress(ctx, conn, token)

	if err := persistence.Save(root, s.index.Snapshot(), s.logger); err != nil {
		s.logger.Warn("lsp: failed to persist index after scan", "error", err)
	}
}

func root0(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	return roots[0]
}

// discoverFiles resolves every workspace root's glob matches, per step 3
// of the scan protocol, deduplicated and sorted for deterministic
// ordering across runs.
func (s *Server) discoverFiles(roots []string) []string {
	pattern := globPattern()
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			s.logger.Warn("lsp: malformed glob pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files
}

func (s *Server) beginProgress(ctx context.Context, conn *jsonrpc2.Conn, token, title string) {
	_ = conn.Call(ctx, "window/workDoneProgress/create", struct {
		Token string `json:"token"`
	}{Token: token}, nil)
	_ = conn.Notify(ctx, "$/progress", progressParams{
		Token: token,
		Value: progressVal{Kind: "begin", Title: title, Percentage: 0},
	})
}

func (s *Server) reportProgress(ctx context.Context, conn *jsonrpc2.Conn, token string, processed, total int) {
	pct := 100
	if total > 0 {
		pct = (processed*100 + total/2) / total // round(processed/total*100)
	}
	_ = conn.Notify(ctx, "$/progress", progressParams{
		Token: token,
		Value: progressVal{Kind: "report", Percentage: pct},
	})
}

func (s *Server) endProgress(ctx context.Context, conn *jsonrpc2.Conn, token string) {
	_ = conn.Notify(ctx, "$/progress", progressParams{
		Token: token,
		Value: progressVal{Kind: "end"},
	})
}
