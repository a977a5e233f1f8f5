package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supptracker/compound-registry/pkg/catalog"
)

func init() {
	Register(&compoundsAdapter{})
}

// compoundsAdapter refreshes compounds.csv from the curated upstream
// dataset. The download is parsed before it replaces the live file, so a
// truncated or malformed upload never reaches the serving catalog.
type compoundsAdapter struct{}

func (a *compoundsAdapter) ID() string      { return "compounds-csv" }
func (a *compoundsAdapter) Dataset() string { return catalog.CompoundsFile }
func (a *compoundsAdapter) Description() string {
	return "Curated supplement and drug compound catalog (ids, names, synonyms, external ids)"
}
func (a *compoundsAdapter) DefaultURL() string {
	return "https://data.supptracker.dev/datasets/compounds.csv"
}
func (a *compoundsAdapter) License() string { return "ODbL" }

func (a *compoundsAdapter) Import(ctx context.Context, sourceURL, dataDir string) error {
	dlDir := filepath.Join(dataDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	tmp := filepath.Join(dlDir, catalog.CompoundsFile)
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, tmp); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	compounds, err := catalog.LoadCompounds(tmp, catalog.Options{})
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if len(compounds) == 0 {
		return fmt.Errorf("validate: dataset contains no compounds")
	}
	fmt.Printf("  %d compounds validated\n", len(compounds))

	return installFile(tmp, filepath.Join(dataDir, catalog.CompoundsFile))
}
