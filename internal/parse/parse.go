// Package parse extracts declarations from source files using tree-sitter.
package parse

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/lang"
	"github.com/phobologic/codeinventory/internal/logging"
	"github.com/phobologic/codeinventory/internal/model"
)

// DefaultMaxFileSize is the size above which files are skipped.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// ExtractDeclarations parses a source file and returns its declarations.
// The parser must be created for the correct language.
// filePath is used only for Declaration.File and should be the repo-relative path.
func ExtractDeclarations(ctx context.Context, l *lang.Language, parser *sitter.Parser, source []byte, filePath string) []model.Declaration {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	return l.Declarations(tree.RootNode(), source, filePath)
}

// Reader reads declarations from workspace files. It is safe for concurrent
// use: each call builds its own parsers.
type Reader struct {
	Logger      *slog.Logger
	MaxFileSize int64 // 0 means DefaultMaxFileSize
	Workers     int   // 0 means GOMAXPROCS
}

// Declarations parses every source file in files and returns their
// declarations in file order. Files that cannot be read, are too large or have
// no registered language are skipped. Only context cancellation is an error.
func (r *Reader) Declarations(ctx context.Context, root string, files []discover.FileEntry) ([]model.Declaration, error) {
	logger := logging.OrDiscard(r.Logger)
	maxSize := r.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	type result struct {
		index int
		decls []model.Declaration
	}

	numWorkers := r.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser per language
			parsers := make(map[string]*sitter.Parser)

			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				f := files[idx]
				l, ok := lang.Languages[f.Language]
				if !ok {
					continue
				}
				p, ok := parsers[f.Language]
				if !ok {
					p = l.NewParser()
					parsers[f.Language] = p
				}

				absPath := filepath.Join(root, filepath.FromSlash(f.Path))
				fi, err := os.Stat(absPath)
				if err != nil {
					logger.Debug("skipping unreadable file", "path", f.Path, "err", err)
					continue
				}
				if fi.Size() > maxSize {
					logger.Warn("skipping large file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
					continue
				}
				source, err := os.ReadFile(absPath)
				if err != nil {
					logger.Debug("skipping unreadable file", "path", f.Path, "err", err)
					continue
				}

				results <- result{
					index: idx,
					decls: ExtractDeclarations(ctx, l, p, source, f.Path),
				}
			}

			for _, p := range parsers {
				p.Close()
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([][]model.Declaration, len(files))
	for res := range results {
		indexed[res.index] = res.decls
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decls []model.Declaration
	for _, d := range indexed {
		decls = append(decls, d...)
	}
	return decls, nil
}
