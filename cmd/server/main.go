package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/supptracker/compound-registry/pkg/api"
	"github.com/supptracker/compound-registry/pkg/catalog"
	"github.com/supptracker/compound-registry/pkg/chassis"
)

const version = "1.0.0"

type config struct {
	Addr      string `yaml:"addr"`
	DataDir   string `yaml:"data_dir"`
	Watch     bool   `yaml:"watch"`
	Encoding  string `yaml:"encoding"`
	Delimiter string `yaml:"delimiter"`
	QUIC      struct {
		Enabled  bool   `yaml:"enabled"`
		CertFile string `yaml:"cert_file"`
		KeyFile  string `yaml:"key_file"`
	} `yaml:"quic"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "compile":
		cmdCompile(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "mcp-ping":
		cmdMCPPing(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: compound-registry <command>

Commands:
  serve     Start the API server
  compile   Compile the CSV datasets into a gob snapshot
  import    Download datasets from upstream sources
  check     Verify upstream source availability
  mcp-ping  Connect to a running server over QUIC and list its MCP tools
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)
	opts := catalog.Options{Encoding: cfg.Encoding, Delimiter: cfg.Delimiter}

	data, err := catalog.LoadDir(cfg.DataDir, opts)
	if err != nil {
		logger.Error("failed to load catalog", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	svc := api.NewService(data)
	api.ObserveCatalog(len(data.Compounds), len(data.Interactions))
	logger.Info("catalog loaded",
		"compounds", len(data.Compounds),
		"interactions", len(data.Interactions),
		"sources", len(data.Sources),
	)

	router := api.NewRouter(svc, logger)

	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := func() {
		fresh, err := catalog.LoadDir(cfg.DataDir, opts)
		if err != nil {
			logger.Error("reload failed, keeping previous catalog", "error", err)
			return
		}
		svc.Reload(fresh)
		api.ObserveCatalog(len(fresh.Compounds), len(fresh.Interactions))
		logger.Info("catalog reloaded",
			"compounds", len(fresh.Compounds),
			"interactions", len(fresh.Interactions),
		)
	}

	// SIGHUP: hot reload the catalog.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading catalog")
			reload()
		}
	}()

	// Optional data-directory watcher for editor-driven reloads.
	if cfg.Watch {
		watcher := catalog.NewWatcher(cfg.DataDir, logger, reload)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	if cfg.QUIC.Enabled {
		serveChassis(ctx, cfg, svc, router, logger)
		return
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		logger.Info("compound registry listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Shutdown(context.Background())
}

// serveChassis runs the dual-transport server: HTTP/1.1+2 over TCP and
// HTTP/3 plus MCP tool sessions over QUIC on the same port.
func serveChassis(ctx context.Context, cfg config, svc *api.Service, router http.Handler, logger *slog.Logger) {
	mcpSrv := server.NewMCPServer("compound-registry", version)
	api.RegisterMCPTools(mcpSrv, svc)

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.QUIC.CertFile,
		KeyFile:   cfg.QUIC.KeyFile,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	srv.Stop(context.Background())
}

func cmdCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	dataDir := fs.String("data-dir", "data", "directory holding the CSV datasets")
	out := fs.String("out", "", "snapshot path (default <data-dir>/catalog.gob)")
	encoding := fs.String("encoding", "", "CSV charset (IANA name)")
	fs.Parse(args)

	snap := *out
	if snap == "" {
		snap = filepath.Join(*dataDir, catalog.SnapshotFile)
	}
	// Compile from the CSVs even when a stale snapshot is present.
	if err := os.Remove(snap); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "remove old snapshot: %v\n", err)
		os.Exit(1)
	}

	data, err := catalog.LoadDir(*dataDir, catalog.Options{Encoding: *encoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}
	if err := catalog.SaveSnapshot(snap, data); err != nil {
		fmt.Fprintf(os.Stderr, "write snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("compiled %d compounds, %d interactions, %d sources -> %s\n",
		len(data.Compounds), len(data.Interactions), len(data.Sources), snap)
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:    ":8420",
		DataDir: "data",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
