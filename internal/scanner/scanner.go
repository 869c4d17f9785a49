// # internal/scanner/scanner.go
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"phpnav/internal/core/errors"
	"phpnav/internal/shared/observability"
)

type Options struct {
	Extensions   []string // Defaults to [".php"]
	ExcludeDirs  []string // Glob patterns matched against directory base names
	ExcludeFiles []string // Glob patterns matched against file base names
	Workers      int      // Parallel file reads, defaults to GOMAXPROCS
}

type Scanner struct {
	exts         map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	workers      int
}

func New(opts Options) (*Scanner, error) {
	exts := make(map[string]bool)
	for _, ext := range opts.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		exts[normalized] = true
	}
	if len(exts) == 0 {
		exts[".php"] = true
	}

	dirGlobs := make([]glob.Glob, 0, len(opts.ExcludeDirs))
	for _, p := range opts.ExcludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude dir pattern %q", p))
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(opts.ExcludeFiles))
	for _, p := range opts.ExcludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude file pattern %q", p))
		}
		fileGlobs = append(fileGlobs, g)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Scanner{
		exts:         exts,
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		workers:      workers,
	}, nil
}

// Scan walks root and returns every accepted declaration in lexicographic
// file-path order, so key collisions resolve deterministically when the result
// is merged into an index. Unreadable files are skipped, never fatal.
//
// WalkDir visits entries in lexical order and does not follow symlinked
// directories, which keeps traversal bounded on cyclic link layouts.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Declaration, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanner.Scan")
	defer span.End()

	started := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNoRoot, "root directory unavailable")
	}
	if !info.IsDir() {
		return nil, errors.New(errors.CodeNoRoot, fmt.Sprintf("root %q is not a directory", root))
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNoRoot, "resolve root path")
	}

	files, err := s.collectFiles(absRoot)
	if err != nil {
		return nil, err
	}

	// Parse in parallel, merge sequentially: results keep the walk's slot so
	// last-write-wins ordering survives the fan-out.
	results := make([][]Declaration, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", path, "error", err)
				observability.FilesSkipped.Inc()
				return nil
			}
			observability.FilesScanned.Inc()
			results[i] = ExtractDeclarations(path, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var decls []Declaration
	for _, r := range results {
		decls = append(decls, r...)
	}

	observability.ScanDuration.Observe(time.Since(started).Seconds())
	slog.Debug("scan complete", "root", absRoot, "files", len(files), "declarations", len(decls))
	return decls, nil
}

func (s *Scanner) collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep scanning.
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range s.excludeDirs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !s.exts[strings.ToLower(filepath.Ext(base))] {
			return nil
		}
		for _, g := range s.excludeFiles {
			if g.Match(base) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "walk root directory")
	}
	return files, nil
}
