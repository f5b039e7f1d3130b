package lsp

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/perl-language-tools/perl-ls/internal/model"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

func toWireDiagnostic(d model.Diagnostic) diagnostic {
	sev := int(d.Severity)
	if sev == 0 {
		sev = int(model.SeverityError)
	}
	return diagnostic{Range: toWireRange(d.Range), Message: d.Message, Severity: sev}
}

func (s *Server) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, u uri.URI, diags []model.Diagnostic) {
	wire := make([]diagnostic, len(diags))
	for i, d := range diags {
		wire[i] = toWireDiagnostic(d)
	}
	_ = conn.Notify(ctx, "textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         string(u),
		Diagnostics: wire,
	})
}
