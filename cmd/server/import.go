package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/supptracker/compound-registry/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("source", "", "adapter ID to import (e.g. compounds-csv)")
	all := fs.Bool("all", false, "import all available sources")
	dataDir := fs.String("data-dir", "data", "data directory to install datasets into")
	fs.Parse(args)

	sdb := openSourceDB(*dataDir)
	defer sdb.Close()

	if !*all && *source == "" {
		fmt.Println("Available sources:")
		fmt.Println()
		sources, _ := sdb.List()
		for _, src := range sources {
			status := ""
			if src.LastStatus != nil {
				status = fmt.Sprintf("  [%d]", *src.LastStatus)
			}
			fmt.Printf("  %-20s  %s  (-> %s)%s\n", src.AdapterID, src.Description, src.Dataset, status)
		}
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  compound-registry import --source <id> [--data-dir <dir>]")
		fmt.Println("  compound-registry import --all [--data-dir <dir>]")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if *all {
		for _, a := range importer.All() {
			runImport(ctx, sdb, a, *dataDir)
		}
		return
	}

	a, err := importer.Get(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Println("\nAvailable sources:")
		for _, a := range importer.All() {
			fmt.Printf("  %s\n", a.ID())
		}
		os.Exit(1)
	}
	if !runImport(ctx, sdb, a, *dataDir) {
		os.Exit(1)
	}
}

func runImport(ctx context.Context, sdb *importer.SourceDB, a importer.Adapter, dataDir string) bool {
	url, err := sdb.URL(a.ID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR (url): %v\n", a.ID(), err)
		return false
	}
	fmt.Printf("[%s] importing...\n", a.ID())
	if err := a.Import(ctx, url, dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", a.ID(), err)
		return false
	}
	fmt.Printf("[%s] OK\n", a.ID())
	return true
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	dataDir := fs.String("data-dir", "data", "data directory holding sources.db")
	interval := fs.Duration("interval", 0, "repeat checks at this interval (0 = run once)")
	fs.Parse(args)

	sdb := openSourceDB(*dataDir)
	defer sdb.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *interval <= 0 {
		importer.NewChecker(sdb, logger, time.Hour).RunOnce(context.Background())
		return
	}
	importer.NewChecker(sdb, logger, *interval).Start(context.Background())
}

// openSourceDB opens data-dir/sources.db and seeds rows for every
// registered adapter, leaving existing rows untouched.
func openSourceDB(dataDir string) *importer.SourceDB {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create data dir: %v\n", err)
		os.Exit(1)
	}
	sdb, err := importer.OpenSourceDB(filepath.Join(dataDir, "sources.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sources.db: %v\n", err)
		os.Exit(1)
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		fmt.Fprintf(os.Stderr, "seed sources: %v\n", err)
		os.Exit(1)
	}
	return sdb
}
