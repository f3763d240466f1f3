// Package enumerate produces exhaustive, deduplicated inventories of the
// entities in one category across a workspace.
package enumerate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/codeinventory/internal/category"
	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/endpoint"
	"github.com/phobologic/codeinventory/internal/logging"
	"github.com/phobologic/codeinventory/internal/model"
	"github.com/phobologic/codeinventory/internal/parse"
)

// DefaultMaxEntities is the safety ceiling on entities returned per result.
const DefaultMaxEntities = 10000

// Walker lists the files of a workspace.
type Walker interface {
	Files(ctx context.Context, root string) ([]discover.FileEntry, error)
}

// DeclarationSource yields the structural declarations of source files.
type DeclarationSource interface {
	Declarations(ctx context.Context, root string, files []discover.FileEntry) ([]model.Declaration, error)
}

// Enumerator runs category enumerations. Zero-value fields fall back to
// defaults, so &Enumerator{} is ready to use. Each call is independent; an
// Enumerator may be shared across goroutines.
type Enumerator struct {
	Walker       Walker
	Declarations DeclarationSource
	Logger       *slog.Logger

	MaxEntities int   // 0 means DefaultMaxEntities
	PageSize    int   // 0 means DefaultPageSize
	MaxFileSize int64 // 0 means parse.DefaultMaxFileSize

	// ConfigPatterns are extra filename globs, matched against the lowercase
	// base name, that mark a file as config.
	ConfigPatterns []glob.Glob
}

func (e *Enumerator) logger() *slog.Logger { return logging.OrDiscard(e.Logger) }

func (e *Enumerator) walker() Walker {
	if e.Walker == nil {
		return discover.Walker{}
	}
	return e.Walker
}

func (e *Enumerator) declarations() DeclarationSource {
	if e.Declarations == nil {
		return &parse.Reader{Logger: e.Logger, MaxFileSize: e.MaxFileSize}
	}
	return e.Declarations
}

func (e *Enumerator) maxEntities() int {
	if e.MaxEntities <= 0 {
		return DefaultMaxEntities
	}
	return e.MaxEntities
}

func (e *Enumerator) maxFileSize() int64 {
	if e.MaxFileSize <= 0 {
		return parse.DefaultMaxFileSize
	}
	return e.MaxFileSize
}

// EnumerateByCategory lists every entity of category c under root.
//
// An unknown category yields an empty result explaining why. Unreadable files
// are skipped and an unreadable root yields an empty result; the only error is
// a cancelled context.
func (e *Enumerator) EnumerateByCategory(ctx context.Context, c model.Category, root string) (*model.EnumerationResult, error) {
	start := time.Now()
	logger := e.logger()

	def, ok := category.Lookup(c)
	if !ok {
		return unknownResult(c, start), nil
	}

	files, err := e.walker().Files(ctx, root)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("cannot walk workspace", "root", root, "err", err)
		files = nil
	}

	var entities []model.Entity
	switch def.Source {
	case category.Files:
		entities, err = e.fileEntities(ctx, root, def, files)
	case category.Declarations:
		entities, err = e.declarationEntities(ctx, root, def, files)
	case category.Routes:
		entities, err = e.endpointEntities(ctx, root, files)
	}
	if err != nil {
		return nil, err
	}

	res := assemble(def, entities, start, e.maxEntities())
	logger.Debug("enumerated category",
		"category", c, "count", res.TotalCount, "truncated", res.Truncated, "ms", res.DurationMs)
	return res, nil
}

func (e *Enumerator) fileEntities(ctx context.Context, root string, def *category.Definition, files []discover.FileEntry) ([]model.Entity, error) {
	var matched []discover.FileEntry
	for _, f := range files {
		if def.MatchFile(f.Path) || (def.Category == model.Config &&
			category.MatchAny(e.ConfigPatterns, strings.ToLower(path.Base(f.Path)))) {
			matched = append(matched, f)
		}
	}

	names := make([]string, len(matched))
	if def.Category == model.CLICommand {
		err := e.eachSource(ctx, root, matched, func(i int, src []byte) {
			names[i] = commandName(src)
		})
		if err != nil {
			return nil, err
		}
	}

	entities := make([]model.Entity, 0, len(matched))
	for i, f := range matched {
		name := names[i]
		if name == "" {
			name = fileStem(f.Path, def.Category == model.CLICommand)
		}
		meta := map[string]any{}
		if f.Language != "" {
			meta["language"] = f.Language
		}
		entities = append(entities, model.Entity{
			ID:          f.Path,
			Name:        name,
			FilePath:    f.Path,
			Category:    def.Category,
			Description: fileDescription(def, f.Path),
			Metadata:    meta,
		})
	}
	return entities, nil
}

var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.command\(\s*['"]([\w:-]+)`), // commander, yargs
	regexp.MustCompile(`\bcommand\s*:\s*['"]([\w:-]+)`),
	regexp.MustCompile(`\bUse:\s*"([\w:-]+)`), // cobra
	regexp.MustCompile(`@click\.command\(\s*(?:name\s*=\s*)?['"]([\w:-]+)`),
}

// commandName returns the first command name declared in src.
func commandName(src []byte) string {
	for _, re := range commandPatterns {
		if m := re.FindSubmatch(src); m != nil {
			return string(m[1])
		}
	}
	return ""
}

// fileStem returns the file name without its extension. Entry points named
// main or index take their directory's name when dirName is set.
func fileStem(p string, dirName bool) string {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return base
	}
	if dirName && (stem == "main" || stem == "index") {
		if dir := path.Dir(p); dir != "." {
			return path.Base(dir)
		}
	}
	return stem
}

func fileDescription(def *category.Definition, p string) string {
	return fmt.Sprintf("%s %s", strings.TrimSuffix(def.Plural, "s"), path.Base(p))
}

func (e *Enumerator) declarationEntities(ctx context.Context, root string, def *category.Definition, files []discover.FileEntry) ([]model.Entity, error) {
	var sources []discover.FileEntry
	for _, f := range files {
		if f.Language != "" {
			sources = append(sources, f)
		}
	}
	decls, err := e.declarations().Declarations(ctx, root, sources)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}

	var entities []model.Entity
	for _, d := range decls {
		if !def.HasKind(d.Kind) {
			continue
		}
		entities = append(entities, declarationEntity(def.Category, d))
	}
	return entities, nil
}

func declarationEntity(c model.Category, d model.Declaration) model.Entity {
	decorators := d.Decorators
	if decorators == nil {
		decorators = []string{}
	}
	meta := map[string]any{
		"kind":       string(d.Kind),
		"exported":   d.Exported,
		"isAsync":    d.IsAsync,
		"isStatic":   d.IsStatic,
		"decorators": decorators,
	}
	if d.Visibility != "" {
		meta["visibility"] = d.Visibility
	}
	if d.Signature != "" {
		meta["signature"] = d.Signature
	}
	if d.Container != "" {
		meta["container"] = d.Container
	}
	return model.Entity{
		ID:          fmt.Sprintf("%s:%d:%s", d.File, d.Line, d.Name),
		Name:        d.Name,
		FilePath:    d.File,
		Category:    c,
		Description: declarationDescription(d),
		Line:        d.Line,
		Metadata:    meta,
	}
}

// declarationDescription renders e.g. "exported async function" or
// "static method of UsersController".
func declarationDescription(d model.Declaration) string {
	var parts []string
	if d.Exported {
		parts = append(parts, "exported")
	}
	if d.IsStatic {
		parts = append(parts, "static")
	}
	if d.IsAsync {
		parts = append(parts, "async")
	}
	parts = append(parts, strings.ReplaceAll(string(d.Kind), "_", " "))
	desc := strings.Join(parts, " ")
	if d.Container != "" {
		desc += " of " + d.Container
	}
	return desc
}

func (e *Enumerator) endpointEntities(ctx context.Context, root string, files []discover.FileEntry) ([]model.Entity, error) {
	var sources []discover.FileEntry
	for _, f := range files {
		if endpoint.Supports(f.Language) {
			sources = append(sources, f)
		}
	}

	matches := make([][]endpoint.Match, len(sources))
	err := e.eachSource(ctx, root, sources, func(i int, src []byte) {
		matches[i] = endpoint.Extract(sources[i].Path, sources[i].Language, src)
	})
	if err != nil {
		return nil, err
	}

	var entities []model.Entity
	for i, f := range sources {
		for _, m := range matches[i] {
			entities = append(entities, endpointEntity(f.Path, m))
		}
	}
	return entities, nil
}

func endpointEntity(file string, m endpoint.Match) model.Entity {
	meta := map[string]any{
		"method":    m.Method,
		"path":      m.Path,
		"framework": string(m.Framework),
		"handler":   m.Handler,
	}
	if m.Controller != "" {
		meta["controller"] = m.Controller
	}
	return model.Entity{
		ID:          fmt.Sprintf("endpoint:%s:%s:%s:%d", m.Method, m.Path, file, m.Line),
		Name:        m.Method + " " + m.Path,
		FilePath:    file,
		Category:    model.Endpoint,
		Description: fmt.Sprintf("%s endpoint handled by %s", m.Framework, m.Handler),
		Line:        m.Line,
		Metadata:    meta,
	}
}

// eachSource reads files concurrently and calls fn with each file's index
// and contents. Unreadable and oversized files are skipped. fn must only
// write to its own index.
func (e *Enumerator) eachSource(ctx context.Context, root string, files []discover.FileEntry, fn func(i int, src []byte)) error {
	logger := e.logger()
	maxSize := e.maxFileSize()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			absPath := filepath.Join(root, filepath.FromSlash(f.Path))
			fi, err := os.Stat(absPath)
			if err != nil {
				logger.Debug("skipping unreadable file", "path", f.Path, "err", err)
				return nil
			}
			if fi.Size() > maxSize {
				logger.Warn("skipping large file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
				return nil
			}
			src, err := os.ReadFile(absPath)
			if err != nil {
				logger.Debug("skipping unreadable file", "path", f.Path, "err", err)
				return nil
			}
			fn(i, src)
			return nil
		})
	}
	return g.Wait()
}

// GetEndpoints returns every endpoint under root in flattened form.
func (e *Enumerator) GetEndpoints(ctx context.Context, root string) ([]model.EndpointInfo, error) {
	res, err := e.EnumerateByCategory(ctx, model.Endpoint, root)
	if err != nil {
		return nil, err
	}
	out := make([]model.EndpointInfo, 0, len(res.Entities))
	for _, ent := range res.Entities {
		method, _ := ent.Metadata["method"].(string)
		p, _ := ent.Metadata["path"].(string)
		handler, _ := ent.Metadata["handler"].(string)
		fw, _ := ent.Metadata["framework"].(string)
		out = append(out, model.EndpointInfo{
			Method:    method,
			Path:      p,
			File:      ent.FilePath,
			Line:      ent.Line,
			Handler:   handler,
			Framework: model.Framework(fw),
		})
	}
	return out, nil
}
