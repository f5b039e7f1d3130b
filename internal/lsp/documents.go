package lsp

import (
	"fmt"
	"os"
	"sync"

	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// documentStore holds the in-memory text of every document the editor
// currently has open. It backs workspace.Index's ReadFile callback: an
// open document's text wins over whatever is on disk, since the editor
// may hold unsaved changes.
type documentStore struct {
	mu    sync.RWMutex
	texts map[uri.URI][]byte
}

func newDocumentStore() *documentStore {
	return &documentStore{texts: make(map[uri.URI][]byte)}
}

func (d *documentStore) set(u uri.URI, text []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts[u] = text
}

func (d *documentStore) delete(u uri.URI) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.texts, u)
}

// Read implements workspace.ReadFile: an open document's buffered text,
// falling back to the filesystem (the URI is assumed to be a `file://`
// path; filePath strips that scheme before the file is read).
func (d *documentStore) Read(u uri.URI) ([]byte, error) {
	d.mu.RLock()
	text, ok := d.texts[u]
	d.mu.RUnlock()
	if ok {
		return text, nil
	}

	path, err := filePath(u)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func filePath(u uri.URI) (string, error) {
	const prefix = "file://"
	s := string(u)
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], nil
	}
	if s == "" {
		return "", fmt.Errorf("lsp: empty document uri")
	}
	return s, nil
}
