// Package persistence is C4: Brotli-compressed serialization of the
// WorkspaceIndex's decls/refs subset to a well-known workspace sidecar
// (spec.md §4.4, §6.4). Grounded on the teacher's archive-handling code
// in internal/lcm/explorer/archive.go, which streams a compressed
// payload through a single reader/writer pair; this package keeps that
// shape but swaps zstd for Brotli and a fixed struct for the teacher's
// generic archive entries.
package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/dustin/go-humanize"

	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/model"
)

// SidecarPath returns the path persistence reads from and writes to for
// a workspace rooted at workspaceRoot (spec.md §6.4). The name is kept
// literally as "function_map.zip" though the bytes underneath are a raw
// Brotli stream, not a ZIP container — see the project's Open Questions:
// implementations must preserve this filename for compatibility with
// whatever tooling already expects it.
func SidecarPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".vscode", "function_map.zip")
}

// Save serializes snap to JSON, compresses it with Brotli, and writes it
// to SidecarPath(workspaceRoot), creating the .vscode directory if
// necessary.
func Save(workspaceRoot string, snap model.IndexSnapshot, logger logging.Logger) error {
	path := SidecarPath(workspaceRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("persistence: create sidecar directory: %w", err)
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: marshal index: %w", err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("persistence: compress index: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("persistence: compress index: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("persistence: write sidecar: %w", err)
	}
	logger.Info("persistence: index persisted", "path", path, "size", humanize.Bytes(uint64(buf.Len())))
	return nil
}

// Load attempts to read and decompress the sidecar under workspaceRoot.
// Per spec.md §4.4, loading is best-effort: a missing file is not an
// error (ok=false, nothing logged); any other failure (unreadable file,
// corrupt Brotli stream, malformed JSON) is logged at Info and reported
// as ok=false so the caller starts with an empty index rather than
// treating it as fatal (spec.md §7 PersistenceLoadFailure).
func Load(workspaceRoot string, logger logging.Logger) (snap model.IndexSnapshot, ok bool) {
	path := SidecarPath(workspaceRoot)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.IndexSnapshot{}, false
		}
		logger.Info("persistence: sidecar unreadable, starting with an empty index", "path", path, "error", err)
		return model.IndexSnapshot{}, false
	}

	decoded, err := decompressAndUnmarshal(raw)
	if err != nil {
		logger.Info("persistence: sidecar corrupt, starting with an empty index", "path", path, "error", err)
		return model.IndexSnapshot{}, false
	}
	return decoded, true
}

func decompressAndUnmarshal(raw []byte) (model.IndexSnapshot, error) {
	r := brotli.NewReader(bytes.NewReader(raw))
	payload, err := io.ReadAll(r)
	if err != nil {
		return model.IndexSnapshot{}, fmt.Errorf("decompress: %w", err)
	}

	snap := model.NewIndexSnapshot()
	if err := json.Unmarshal(payload, &snap); err != nil {
		return model.IndexSnapshot{}, fmt.Errorf("unmarshal: %w", err)
	}
	return snap, nil
}
