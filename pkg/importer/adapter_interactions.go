package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supptracker/compound-registry/pkg/catalog"
)

func init() {
	Register(&interactionsAdapter{})
	Register(&sourcesAdapter{})
}

// interactionsAdapter refreshes interactions.csv, the pairwise
// interaction records between catalog compounds.
type interactionsAdapter struct{}

func (a *interactionsAdapter) ID() string      { return "interactions-csv" }
func (a *interactionsAdapter) Dataset() string { return catalog.InteractionsFile }
func (a *interactionsAdapter) Description() string {
	return "Pairwise compound interaction records (severity, evidence, mechanisms)"
}
func (a *interactionsAdapter) DefaultURL() string {
	return "https://data.supptracker.dev/datasets/interactions.csv"
}
func (a *interactionsAdapter) License() string { return "ODbL" }

func (a *interactionsAdapter) Import(ctx context.Context, sourceURL, dataDir string) error {
	return importCSV(ctx, sourceURL, dataDir, catalog.InteractionsFile, func(path string) (int, error) {
		records, err := catalog.LoadInteractions(path, catalog.Options{})
		return len(records), err
	})
}

// sourcesAdapter refreshes sources.csv, the literature references that
// interaction records cite.
type sourcesAdapter struct{}

func (a *sourcesAdapter) ID() string      { return "sources-csv" }
func (a *sourcesAdapter) Dataset() string { return catalog.SourcesFile }
func (a *sourcesAdapter) Description() string {
	return "Literature references cited by interaction records"
}
func (a *sourcesAdapter) DefaultURL() string {
	return "https://data.supptracker.dev/datasets/sources.csv"
}
func (a *sourcesAdapter) License() string { return "ODbL" }

func (a *sourcesAdapter) Import(ctx context.Context, sourceURL, dataDir string) error {
	return importCSV(ctx, sourceURL, dataDir, catalog.SourcesFile, func(path string) (int, error) {
		sources, err := catalog.LoadSources(path, catalog.Options{})
		return len(sources), err
	})
}

// importCSV is the shared download-validate-install flow for single-file
// CSV datasets.
func importCSV(ctx context.Context, sourceURL, dataDir, name string, validate func(string) (int, error)) error {
	dlDir := filepath.Join(dataDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	tmp := filepath.Join(dlDir, name)
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, tmp); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	n, err := validate(tmp)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	fmt.Printf("  %d records validated\n", n)

	return installFile(tmp, filepath.Join(dataDir, name))
}
