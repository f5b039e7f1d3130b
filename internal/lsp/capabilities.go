package lsp

// clientCapabilities is the narrow subset of the initialize request's
// capabilities object the facade negotiates, per spec.md §4.6: three
// flags, everything else left to its LSP default.
type clientCapabilities struct {
	Workspace struct {
		Configuration    bool `json:"configuration"`
		WorkspaceFolders bool `json:"workspaceFolders"`
	} `json:"workspace"`
	TextDocument struct {
		PublishDiagnostics struct {
			RelatedInformation bool `json:"relatedInformation"`
		} `json:"publishDiagnostics"`
	} `json:"textDocument"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type initializeParams struct {
	RootURI      string             `json:"rootUri"`
	Capabilities clientCapabilities `json:"capabilities"`
	WorkspaceFolders []workspaceFolder `json:"workspaceFolders"`
}

type negotiatedCapabilities struct {
	Configuration              bool
	WorkspaceFolders            bool
	DiagnosticsRelatedInformation bool
}

type textDocumentSyncOptions struct {
	OpenClose bool `json:"openClose"`
	Change    int  `json:"change"` // 2 = incremental
}

type completionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters"`
	ResolveProvider   bool     `json:"resolveProvider"`
}

type renameOptions struct {
	PrepareProvider bool `json:"prepareProvider"`
}

type workDoneProgressOptions struct {
	WorkDoneProgress bool `json:"workDoneProgress"`
}

// serverCapabilities is spec.md §4.6's advertised capability set.
type serverCapabilities struct {
	TextDocumentSync   textDocumentSyncOptions `json:"textDocumentSync"`
	CompletionProvider completionOptions       `json:"completionProvider"`
	DefinitionProvider bool                    `json:"definitionProvider"`
	HoverProvider      bool                    `json:"hoverProvider"`
	ReferencesProvider bool                    `json:"referencesProvider"`
	RenameProvider     renameOptions           `json:"renameProvider"`
	DocumentHighlightProvider bool             `json:"documentHighlightProvider"`
	DocumentSymbolProvider    bool             `json:"documentSymbolProvider"`
	WorkspaceSymbolProvider   bool             `json:"workspaceSymbolProvider"`
	Workspace struct {
		WorkspaceFolders workDoneProgressOptions `json:"workspaceFolders"`
	} `json:"workspace"`
}

func advertisedCapabilities() serverCapabilities {
	return serverCapabilities{
		TextDocumentSync:   textDocumentSyncOptions{OpenClose: true, Change: 2},
		CompletionProvider: completionOptions{TriggerCharacters: []string{"$", "@", "%", ".", ":", "::"}, ResolveProvider: true},
		DefinitionProvider: true,
		HoverProvider:      true,
		ReferencesProvider: true,
		RenameProvider:     renameOptions{PrepareProvider: true},
		DocumentHighlightProvider: true,
		DocumentSymbolProvider:    true,
		WorkspaceSymbolProvider:   true,
	}
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}
