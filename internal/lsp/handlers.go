package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/query"
	"github.com/perl-language-tools/perl-ls/internal/rpcerr"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
	"github.com/perl-language-tools/perl-ls/internal/workspace"
)

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		var params initializeParams
		_ = unmarshalParams(req, &params)
		s.mu.Lock()
		s.caps = negotiatedCapabilities{
			Configuration:                 params.Capabilities.Workspace.Configuration,
			WorkspaceFolders:              params.Capabilities.Workspace.WorkspaceFolders,
			DiagnosticsRelatedInformation: params.Capabilities.TextDocument.PublishDiagnostics.RelatedInformation,
		}
		s.lastInitializeParams = params
		s.mu.Unlock()
		return initializeResult{Capabilities: advertisedCapabilities()}, nil

	case "initialized":
		s.mu.Lock()
		params := s.lastInitializeParams
		s.mu.Unlock()
		roots := resolveWorkspaceRoots(params)
		s.requestConfiguration(ctx, conn)
		go s.scanWorkspace(context.Background(), conn, roots)
		return nil, nil

	case "shutdown":
		return nil, nil

	case "exit":
		return nil, nil

	case "textDocument/didOpen":
		var params didOpenParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		u := uri.URI(params.TextDocument.URI)
		s.docs.set(u, []byte(params.TextDocument.Text))
		s.analyzeAndPublish(ctx, conn, u, []byte(params.TextDocument.Text))
		return nil, nil

	case "textDocument/didChange":
		var params didChangeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		u := uri.URI(params.TextDocument.URI)
		text := []byte(params.ContentChanges[len(params.ContentChanges)-1].Text)
		s.docs.set(u, text)
		s.analyzeAndPublish(ctx, conn, u, text)
		return nil, nil

	case "textDocument/didClose":
		var params didCloseParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		u := uri.URI(params.TextDocument.URI)
		s.docs.delete(u)
		s.index.Close(u)
		return nil, nil

	case "textDocument/definition":
		return s.withNode(req, func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error) {
			return toWireLocations(query.Definition(s.index, u, node, root, source)), nil
		})

	case "textDocument/references":
		return s.withNode(req, func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error) {
			return toWireLocations(query.References(s.index, u, node, false, root, source)), nil
		})

	case "textDocument/documentHighlight":
		return s.withNode(req, func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error) {
			hls := query.DocumentHighlight(s.index, u, node, root, source)
			out := make([]documentHighlight, len(hls))
			for i, h := range hls {
				out[i] = documentHighlight{Range: toWireRange(h.Range), Kind: int(h.Kind)}
			}
			return out, nil
		})

	case "textDocument/hover":
		return s.withNode(req, func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error) {
			h := query.Hover(node, source)
			if h == nil {
				return nil, nil
			}
			return hoverResult{Contents: markupContent{Kind: "markdown", Value: h.Markdown}, Range: toWireRange(h.Range)}, nil
		})

	case "textDocument/prepareRename":
		return s.withNode(req, func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error) {
			if node == nil {
				return nil, nil
			}
			r, _ := query.PrepareRename(node, source)
			return struct {
				Range wireRange `json:"range"`
			}{Range: toWireRange(r)}, nil
		})

	case "textDocument/rename":
		var params renameParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		u := uri.URI(params.TextDocument.URI)
		root, source, err := s.documentContext(u)
		if err != nil {
			return nil, rpcerr.Internal(err)
		}
		node := treesitter.NodeAtPosition(root, fromWirePosition(params.Position))
		edits, err := query.Rename(s.index, u, node, params.NewName, root, source)
		if err != nil {
			return nil, err
		}
		return workspaceEditFromEdits(edits), nil

	case "textDocument/documentSymbol":
		var params struct {
			TextDocument textDocumentIdentifier `json:"textDocument"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		u := uri.URI(params.TextDocument.URI)
		syms := query.DocumentSymbols(s.index, u)
		out := make([]documentSymbol, len(syms))
		for i, sym := range syms {
			out[i] = documentSymbol{
				Name:           sym.Name,
				Kind:           int(sym.Kind),
				Range:          toWireRange(sym.Range),
				SelectionRange: toWireRange(sym.SelectionRange),
			}
		}
		return out, nil

	case "workspace/symbol":
		var params struct {
			Query string `json:"query"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		syms := query.WorkspaceSymbols(s.index, params.Query)
		out := make([]workspaceSymbol, len(syms))
		for i, sym := range syms {
			out[i] = workspaceSymbol{Name: sym.Name, Location: toWireLocation(sym.Location)}
		}
		return out, nil

	case "textDocument/completion":
		return s.completion(req)

	case "completionItem/resolve":
		return s.completionResolve(req)

	case "workspace/didChangeConfiguration":
		var params struct {
			Settings struct {
				Perl config.Settings `json:"perl"`
			} `json:"settings"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.applySettings(params.Settings.Perl)
		s.index.SetCachingStrategy(s.settingsSnapshot().Caching)
		return nil, nil

	case "workspace/didChangeWatchedFiles":
		return nil, nil

	default:
		return nil, fmt.Errorf("lsp: unsupported method %q", req.Method)
	}
}

// documentContext returns the document's current tree root and source
// bytes, parsing on demand via the workspace index's tree cache.
func (s *Server) documentContext(u uri.URI) (*tree_sitter.Node, []byte, error) {
	tree, err := s.index.TreeFor(u)
	if err != nil {
		return nil, nil, err
	}
	return tree.Root(), tree.Source, nil
}

func (s *Server) withNode(req *jsonrpc2.Request, fn func(u uri.URI, node, root *tree_sitter.Node, source []byte) (interface{}, error)) (interface{}, error) {
	var params textDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	u := uri.URI(params.TextDocument.URI)
	root, source, err := s.documentContext(u)
	if err != nil {
		return nil, rpcerr.Internal(err)
	}
	node := treesitter.NodeAtPosition(root, fromWirePosition(params.Position))
	return fn(u, node, root, source)
}

func (s *Server) analyzeAndPublish(ctx context.Context, conn *jsonrpc2.Conn, u uri.URI, content []byte) {
	diags, err := s.index.Analyze(u, content, workspace.OnFileOpen, true)
	if err != nil {
		s.logger.Warn("lsp: analyze failed on document change", "uri", u, "error", err)
		return
	}
	s.publishDiagnostics(ctx, conn, u, diags)
}

func workspaceEditFromEdits(edits []query.TextEdit) workspaceEdit {
	changes := make(map[string][]textEdit)
	for _, e := range edits {
		changes[string(e.URI)] = append(changes[string(e.URI)], textEdit{Range: toWireRange(e.Range), NewText: e.NewText})
	}
	return workspaceEdit{Changes: changes}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return fmt.Errorf("lsp: %s: missing params", req.Method)
	}
	return json.Unmarshal(*req.Params, v)
}
