// # cmd/phpnav/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"phpnav/internal/config"
	"phpnav/internal/core/errors"
	"phpnav/internal/data/store"
	"phpnav/internal/importer"
	"phpnav/internal/resolver"
	"phpnav/internal/scanner"
	"phpnav/internal/server"
	"phpnav/internal/shared/observability"
	"phpnav/internal/watcher"
)

var (
	configPath = flag.String("config", "./phpnav.toml", "Path to config file")
	rootFlag   = flag.String("root", "", "Project root to scan (overrides config)")
	serve      = flag.Bool("serve", false, "Run the HTTP lookup server")
	watch      = flag.Bool("watch", false, "Rebuild the index on file changes")
	refresh    = flag.Bool("refresh", false, "Force a rescan even when a persisted index exists")
	importFile = flag.String("import", "", "Compute a use-statement insertion for this file")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("phpnav v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	root := cfg.Root
	if *rootFlag != "" {
		root = *rootFlag
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing.OTLPEndpoint, VERSION)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	sc, err := scanner.New(scanner.Options{
		Extensions:   cfg.Scan.Extensions,
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
		Workers:      cfg.Scan.Workers,
	})
	if err != nil {
		slog.Error("failed to initialize scanner", "error", err)
		os.Exit(1)
	}

	res, err := resolver.New(root, sc)
	if err != nil {
		slog.Error("failed to initialize resolver", "error", err)
		os.Exit(1)
	}

	var declStore *store.Store
	if cfg.Store.Path != "" {
		declStore, err = store.Open(cfg.Store.Path)
		if err != nil {
			slog.Warn("declaration store unavailable, continuing without it", "path", cfg.Store.Path, "error", err)
		} else {
			defer declStore.Close()
		}
	}

	if err := buildIndex(ctx, res, declStore, root); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	for _, name := range flag.Args() {
		resolveAndPrint(res, name)
	}

	if !*serve && !*watch {
		os.Exit(0)
	}

	if *watch {
		if err := startWatcher(ctx, cfg, res, declStore, root); err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
	}

	if *serve {
		srv := server.New(cfg.Server.Addr, res)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}

	// Block forever
	select {}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./phpnav.toml" {
			cfg, err = config.Load("./phpnav.example.toml")
		}
		if err != nil {
			slog.Debug("no config file, using defaults", "path", *configPath)
			cfg = config.Default()
		}
	}
	return cfg
}

// buildIndex restores a persisted scan when one exists and -refresh was not
// given, otherwise rescans and persists the result.
func buildIndex(ctx context.Context, res *resolver.Resolver, declStore *store.Store, root string) error {
	if declStore != nil && !*refresh {
		decls, scannedAt, err := declStore.LoadScan(root)
		if err == nil {
			res.Restore(decls)
			slog.Info("restored persisted index", "root", root, "declarations", len(decls), "scanned_at", scannedAt)
			return nil
		}
		if err != store.ErrNoScan {
			slog.Warn("failed to load persisted scan, rescanning", "error", err)
		}
	}

	if err := res.Rebuild(ctx); err != nil {
		return err
	}
	persistIndex(res, declStore, root)
	return nil
}

func persistIndex(res *resolver.Resolver, declStore *store.Store, root string) {
	if declStore == nil {
		return
	}
	// Rescan through the resolver keeps the index authoritative; the store
	// only mirrors the latest result.
	ix := res.Snapshot()
	if ix == nil {
		return
	}
	if err := declStore.SaveScan(root, ix.BuiltAt(), res.Declarations()); err != nil {
		slog.Warn("failed to persist scan", "error", err)
	}
}

func startWatcher(ctx context.Context, cfg *config.Config, res *resolver.Resolver, declStore *store.Store, root string) error {
	// The debounce batches events; the limiter bounds how often an event storm
	// can trigger a full rescan.
	limiter := rate.NewLimiter(rate.Every(cfg.Watch.MinRescanInterval), 1)

	w, err := watcher.New(
		cfg.Watch.Debounce,
		cfg.Scan.Extensions,
		cfg.Exclude.Dirs,
		cfg.Exclude.Files,
		func(paths []string) {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			slog.Debug("rebuilding index", "changed", len(paths))
			if err := res.Rebuild(ctx); err != nil {
				slog.Error("rebuild after change failed", "error", err)
				return
			}
			persistIndex(res, declStore, root)
		},
	)
	if err != nil {
		return err
	}
	return w.Watch(root)
}

func resolveAndPrint(res *resolver.Resolver, name string) {
	decl, err := res.ResolveSelection(name)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			fmt.Fprintf(os.Stderr, "not found: %s\n", name)
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return
	}

	fmt.Printf("%s\t%s\t%s:%d\n", decl.FQN, decl.Kind, decl.SourcePath, decl.Offset)

	if *importFile != "" {
		content, err := os.ReadFile(*importFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", *importFile, err)
			return
		}
		ins := importer.UseStatement(content, decl.FQN)
		fmt.Printf("insert %q at offset %d in %s\n", ins.Text, ins.Offset, *importFile)
	}
}
