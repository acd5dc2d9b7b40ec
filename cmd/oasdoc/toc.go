package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/oasdoc/internal/config"
	"github.com/dshills/oasdoc/internal/example"
	"github.com/dshills/oasdoc/internal/openapi"
	"github.com/dshills/oasdoc/internal/runner"
	"github.com/dshills/oasdoc/internal/toc"
)

// defaultBasePath prefixes the spec file references inside docs.json page
// strings, matching where the docs site serves the spec files from.
const defaultBasePath = "openapi/product"

// tocFlags holds the parsed flags for the toc command.
type tocFlags struct {
	input       string
	docsJSON    string
	basePath    string
	copyTo      string
	changedOnly bool
	dryRun      bool
}

func newTocCmd(cfg *config.Config) *cobra.Command {
	var tf tocFlags
	cmd := &cobra.Command{
		Use:   "toc [spec-file ...]",
		Short: "Update docs.json navigation from OpenAPI specs",
		Long:  "Toc builds one navigation group per spec, with endpoints grouped by tag and\npages sorted by method and path, then inserts or replaces those groups in the\nMintlify docs.json target section. No model calls are made.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToc(args, tf, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&tf.input, "input", cfg.InputPath, "Directory scanned for OpenAPI spec files")
	f.StringVar(&tf.docsJSON, "docs-json", cfg.DocsJSONPath, "Mintlify docs.json file to update")
	f.StringVar(&tf.basePath, "base-path", defaultBasePath, "Base path for spec references in page strings")
	f.StringVar(&tf.copyTo, "copy-to", "", "Also copy the processed spec files into this directory")
	f.BoolVar(&tf.changedOnly, "changed-only", cfg.ProcessChangedOnly, "Process only the files listed in CHANGED_FILES")
	f.BoolVar(&tf.dryRun, "dry-run", false, "Build the navigation but do not write docs.json")
	return cmd
}

func runToc(args []string, tf tocFlags, cfg *config.Config) error {
	log := slog.Default()

	files := args
	var err error
	if len(files) == 0 {
		files, err = runner.Files(tf.input, cfg.ChangedFiles, tf.changedOnly)
		if err != nil {
			return codeError(3, "%s", err)
		}
	}
	if len(files) == 0 {
		log.Warn("no spec files to process", "input", tf.input)
		return nil
	}

	var entries []toc.Group
	failures := 0
	for _, path := range files {
		diags := &openapi.Diagnostics{}
		doc, err := openapi.Load(path, diags)
		if err != nil {
			log.Error("spec rejected", "file", path, "error", err)
			failures++
			continue
		}
		records, err := openapi.ExtractEndpoints(doc, openapi.NewResolver(doc, diags), example.New(), diags)
		if err != nil {
			log.Error("endpoint extraction failed", "file", path, "error", err)
			failures++
			continue
		}
		entry := toc.BuildNavigation(doc.Title(), filepath.Base(path), tf.basePath, records)
		entries = append(entries, entry)
		log.Info("navigation entry built", "file", path, "group", entry.Group, "pages", len(entry.Pages))
	}
	if len(entries) == 0 {
		return codeError(3, "no navigation entries could be built from %d spec file(s)", len(files))
	}

	m := toc.NewManager(tf.docsJSON)
	if err := m.Load(); err != nil {
		return codeError(3, "%s", err)
	}
	if existing, err := m.Groups(); err == nil && len(existing) > 0 {
		log.Debug("existing navigation groups", "groups", strings.Join(existing, ", "))
	}
	updated, err := m.InsertAll(entries)
	if err != nil {
		return codeError(3, "updating navigation: %s", err)
	}

	if tf.dryRun {
		log.Info("dry run, docs.json not written", "file", tf.docsJSON, "groups", updated)
	} else {
		if err := m.Save(); err != nil {
			return codeError(3, "%s", err)
		}
		log.Info("navigation updated", "file", tf.docsJSON, "groups", updated)

		if tf.copyTo != "" {
			copied, err := copySpecs(files, tf.copyTo, log)
			if err != nil {
				return codeError(3, "%s", err)
			}
			log.Info("spec files copied", "destination", tf.copyTo, "count", copied)
		}
	}

	if failures > 0 {
		return codeError(3, "%d of %d spec files could not be processed", failures, len(files))
	}
	return nil
}

// copySpecs copies each spec file into dest so the docs site can serve it
// next to the navigation that references it. Unreadable sources are skipped
// with a warning; a failed write aborts.
func copySpecs(files []string, dest string, log *slog.Logger) (int, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dest, err)
	}
	copied := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Warn("copy skipped", "file", f, "error", err)
			continue
		}
		target := filepath.Join(dest, filepath.Base(f))
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return copied, fmt.Errorf("writing %s: %w", target, err)
		}
		copied++
	}
	return copied, nil
}
