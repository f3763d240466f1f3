// Package discover finds files in a repository workspace.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/codeinventory/internal/lang"
)

// FileEntry represents a discovered file.
type FileEntry struct {
	Path     string // Relative to repo root, forward slashes
	Language string // "" when the file is not a parseable source file
}

var skipDirs = map[string]struct{}{
	"__pycache__":      {},
	"node_modules":     {},
	"bower_components": {},
	"vendor":           {},
	"venv":             {},
	"env":              {},
	"build":            {},
	"dist":             {},
	"out":              {},
	"target":           {},
	"coverage":         {},
	"site-packages":    {},
}

// Walker lists workspace files, excluding dependency, build and hidden
// directories and anything matched by .gitignore.
type Walker struct {
	// SkipDirs are directory names skipped in addition to the built-in set.
	SkipDirs []string
	// Languages restricts results to source files of the listed languages.
	Languages []string
}

// Files returns every file under root outside skipped directories, in path
// order. Hidden files are kept so dotfile configs are visible. Unreadable
// entries are skipped; only a missing root or cancellation is an error.
func (w Walker) Files(ctx context.Context, root string) ([]FileEntry, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	langSet := make(map[string]struct{}, len(w.Languages))
	for _, l := range w.Languages {
		langSet[l] = struct{}{}
	}
	extraSkip := make(map[string]struct{}, len(w.SkipDirs))
	for _, d := range w.SkipDirs {
		extraSkip[d] = struct{}{}
	}

	gitFiles := gitLsFiles(ctx, root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := d.Name()

		if d.IsDir() {
			if p == root {
				return nil
			}
			if skipDir(name, extraSkip) {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		langName := lang.ForExtension(strings.ToLower(path.Ext(name)))
		if len(langSet) > 0 {
			if _, ok := langSet[langName]; !ok {
				return nil
			}
		}

		results = append(results, FileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func skipDir(name string, extra map[string]struct{}) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := skipDirs[name]; ok {
		return true
	}
	if _, ok := extra[name]; ok {
		return true
	}
	return strings.HasSuffix(name, ".egg-info")
}

var testDirs = map[string]struct{}{
	"test":      {},
	"tests":     {},
	"__tests__": {},
	"spec":      {},
}

// IsTestFile reports whether a repo-relative path looks like a test file,
// either by a test directory component or by a test filename convention.
func IsTestFile(p string) bool {
	p = filepath.ToSlash(p)
	if strings.Contains(p, ".test.") || strings.Contains(p, ".spec.") {
		return true
	}

	dir, base := path.Split(p)
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if _, ok := testDirs[seg]; ok {
			return true
		}
	}

	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	switch ext {
	case ".go", ".exs", ".ex":
		return strings.HasSuffix(stem, "_test")
	case ".py":
		return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test")
	case ".rb":
		return strings.HasSuffix(stem, "_spec") || strings.HasSuffix(stem, "_test")
	case ".java", ".kt":
		return strings.HasSuffix(stem, "Test") || strings.HasSuffix(stem, "Tests")
	}
	return false
}

func gitLsFiles(ctx context.Context, root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	p := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil
	}
	return gi
}
