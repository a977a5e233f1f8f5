package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supptracker/compound-registry/pkg/catalog"
)

func init() {
	Register(&bundleAdapter{})
}

// bundleAdapter fetches a full dataset release: one zip holding all the
// catalog CSVs plus the optional risk rules file. The whole bundle is
// validated as a unit before any file is installed, so a release never
// lands half-applied.
type bundleAdapter struct{}

func (a *bundleAdapter) ID() string      { return "catalog-bundle" }
func (a *bundleAdapter) Dataset() string { return "bundle" }
func (a *bundleAdapter) Description() string {
	return "Full catalog release bundle (compounds, interactions, sources, risk rules)"
}
func (a *bundleAdapter) DefaultURL() string {
	return "https://data.supptracker.dev/releases/catalog-latest.zip"
}
func (a *bundleAdapter) License() string { return "ODbL" }

func (a *bundleAdapter) Import(ctx context.Context, sourceURL, dataDir string) error {
	dlDir := filepath.Join(dataDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	zipPath := filepath.Join(dlDir, "bundle.zip")
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	files, err := unzipFile(zipPath, dlDir)
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}

	wanted := map[string]bool{
		catalog.CompoundsFile:    false,
		catalog.InteractionsFile: false,
		catalog.SourcesFile:      false,
		catalog.RulesFile:        false,
	}
	var install []string
	for _, f := range files {
		base := filepath.Base(f)
		if _, ok := wanted[base]; !ok {
			continue
		}
		wanted[base] = true
		install = append(install, f)
	}
	if !wanted[catalog.CompoundsFile] {
		return fmt.Errorf("bundle is missing %s", catalog.CompoundsFile)
	}

	// Validate the bundle as one catalog before touching dataDir.
	data, err := catalog.LoadDir(dlDir, catalog.Options{})
	if err != nil {
		return fmt.Errorf("validate bundle: %w", err)
	}
	fmt.Printf("  bundle validated: %d compounds, %d interactions, %d sources\n",
		len(data.Compounds), len(data.Interactions), len(data.Sources))

	for _, f := range install {
		if err := installFile(f, filepath.Join(dataDir, filepath.Base(f))); err != nil {
			return fmt.Errorf("install %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}
