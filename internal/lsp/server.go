package lsp

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
	"github.com/perl-language-tools/perl-ls/internal/workspace"
)

// Server is the LSP Facade's per-connection state: the workspace index,
// the in-memory document buffers backing it, negotiated client
// capabilities, and the live settings record. Grounded on the teacher's
// internal/app wiring (one long-lived struct holding every subsystem a
// request handler needs), narrowed to what this server's six workspace
// components require.
type Server struct {
	logger logging.Logger
	host   *treesitter.Host
	docs   *documentStore

	mu               sync.Mutex
	index            *workspace.Index
	settings         config.Settings
	workspaceRoot    string
	workspaceFolders []string
	caps             negotiatedCapabilities
	progressToken    int
	lastInitializeParams initializeParams
}

// NewServer constructs a Server ready to receive an initialize request.
// host is shared with the rest of the process (the parser pool outlives
// any one connection); Server owns only the workspace index built atop
// it.
func NewServer(host *treesitter.Host, logger logging.Logger) *Server {
	docs := newDocumentStore()
	settings := config.Default()
	return &Server{
		logger:   logger,
		host:     host,
		docs:     docs,
		settings: settings,
		index:    workspace.New(host, settings.Caching, 0, docs.Read),
	}
}

// Handler returns the jsonrpc2.Handler to hand to jsonrpc2.NewConn,
// following the same HandlerWithError shape internal/dap's Facade uses.
func (s *Server) Handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(s.handle)
}

func (s *Server) settingsSnapshot() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Server) applySettings(override config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = config.Merge(override)
}

// nextProgressToken mints a fresh $/progress token for one workspace
// scan run.
func (s *Server) nextProgressToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressToken++
	return "perl-ls/indexing/" + strconv.Itoa(s.progressToken)
}

// requestConfiguration asks the client for the current `perl.*` settings
// over workspace/configuration, when the client advertised support for
// it; otherwise the server keeps running with config.Default() overlaid
// by whatever didChangeConfiguration notifications arrive later.
func (s *Server) requestConfiguration(ctx context.Context, conn *jsonrpc2.Conn) {
	if !s.caps.Configuration {
		return
	}
	var results []config.Settings
	params := struct {
		Items []struct {
			Section string `json:"section"`
		} `json:"items"`
	}{Items: []struct {
		Section string `json:"section"`
	}{{Section: "perl"}}}

	if err := conn.Call(ctx, "workspace/configuration", params, &results); err != nil {
		s.logger.Warn("lsp: workspace/configuration request failed", "error", err)
		return
	}
	if len(results) > 0 {
		s.applySettings(results[0])
	}
}

// resolveWorkspaceRoots returns the absolute filesystem directories to
// scan: every client-supplied workspace folder's path, falling back to
// rootUri / rootPath-equivalent cwd when the client declared no folders.
func resolveWorkspaceRoots(params initializeParams) []string {
	var roots []string
	for _, f := range params.WorkspaceFolders {
		if p, err := filePath(uri.URI(f.URI)); err == nil {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 && params.RootURI != "" {
		if p, err := filePath(uri.URI(params.RootURI)); err == nil {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		if wd, err := os.Getwd(); err == nil {
			roots = append(roots, wd)
		}
	}
	return roots
}
