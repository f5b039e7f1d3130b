package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/perl-language-tools/perl-ls/internal/config"
	"github.com/perl-language-tools/perl-ls/internal/logging"
	"github.com/perl-language-tools/perl-ls/internal/persistence"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
	"github.com/perl-language-tools/perl-ls/internal/workspace"
)

var indexRoot string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Scan a workspace once and persist its sidecar index, without starting a server",
	Long:  "index runs the same extraction pass `serve` performs on startup, then exits. Useful for pre-warming the .vscode/function_map.zip sidecar in CI before an editor ever opens the workspace.",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexRoot, "root", "", "workspace root to scan (default: current directory)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, "perl-lsp")

	root := indexRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("perl-lsp: resolve working directory: %w", err)
		}
		root = wd
	}

	host, err := treesitter.NewHost()
	if err != nil {
		return fmt.Errorf("perl-lsp: start parser host: %w", err)
	}
	defer host.Close()

	settings := config.Default()
	idx := workspace.New(host, settings.Caching, 0, func(u uri.URI) ([]byte, error) {
		return os.ReadFile(filepath.FromSlash(string(u)[len("file://"):]))
	})

	if snap, loaded := persistence.Load(root, logger); loaded {
		idx.Restore(snap)
	}

	files, err := discoverFilesStandalone(root)
	if err != nil {
		return fmt.Errorf("perl-lsp: discover files: %w", err)
	}

	problemsCounter := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("perl-lsp: skipping unreadable file", "path", path, "error", err)
			continue
		}
		u := uri.URI("file://" + path)
		collect := problemsCounter <= settings.MaxNumberOfProblems
		diags, err := idx.Analyze(u, content, workspace.OnWorkspaceOpen, collect)
		if err != nil {
			logger.Warn("perl-lsp: analyze failed", "path", path, "error", err)
			continue
		}
		problemsCounter += len(diags)
	}

	if err := persistence.Save(root, idx.Snapshot(), logger); err != nil {
		return fmt.Errorf("perl-lsp: persist index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files under %s\n", len(files), root)
	return nil
}

func discoverFilesStandalone(root string) ([]string, error) {
	pattern := defaultGlobPattern
	if p := os.Getenv("GLOB_PATTERN"); p != "" {
		pattern = p
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

const defaultGlobPattern = "**/*@(.pl|.pm|.t|.esp)"
