// Package category is the registry of enumerable categories: their aliases
// and the rules used to match files or declarations against them.
package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/phobologic/codeinventory/internal/model"
)

// Source says where a category's entities come from.
type Source int

const (
	// Files categories match whole files by path.
	Files Source = iota
	// Declarations categories match structural declarations by kind.
	Declarations
	// Routes categories are produced by the endpoint extractor.
	Routes
)

// Definition describes one category.
type Definition struct {
	Category model.Category
	Plural   string
	Aliases  []string
	Source   Source

	// MatchFile reports whether a repo-relative, slash-separated path belongs
	// to the category. Set for Files categories.
	MatchFile func(relPath string) bool

	// Kinds lists the declaration kinds that belong to the category. Set for
	// Declarations categories.
	Kinds []model.DeclKind
}

// HasKind reports whether k is one of the definition's declaration kinds.
func (d *Definition) HasKind(k model.DeclKind) bool {
	for _, kind := range d.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

var (
	registry = map[model.Category]*Definition{}
	order    []model.Category
)

// Register adds a category definition. It panics on a duplicate category or
// alias, since both indicate a programming error in the registry tables.
func Register(d *Definition) {
	if _, dup := registry[d.Category]; dup {
		panic(fmt.Sprintf("category %q registered twice", d.Category))
	}
	for i, a := range d.Aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		for _, other := range registry {
			for _, oa := range other.Aliases {
				if oa == a {
					panic(fmt.Sprintf("alias %q used by %q and %q", a, other.Category, d.Category))
				}
			}
		}
		d.Aliases[i] = a
	}
	registry[d.Category] = d
	order = append(order, d.Category)
}

// Lookup returns the definition for c.
func Lookup(c model.Category) (*Definition, bool) {
	d, ok := registry[c]
	return d, ok
}

// SupportedCategories returns every canonical category name in registration order.
func SupportedCategories() []model.Category {
	out := make([]model.Category, len(order))
	copy(out, order)
	return out
}

// Aliases returns the lowercase alias -> category mapping.
func Aliases() map[string]model.Category {
	out := make(map[string]model.Category)
	for _, c := range order {
		for _, a := range registry[c].Aliases {
			out[a] = c
		}
	}
	return out
}

// SortedAliases returns every alias ordered longest first, then alphabetically.
func SortedAliases() []string {
	var out []string
	for a := range Aliases() {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Parse resolves a canonical name or alias ("endpoints", "test files") to a category.
func Parse(s string) (model.Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := registry[model.Category(s)]; ok {
		return model.Category(s), true
	}
	c, ok := Aliases()[s]
	return c, ok
}

// CompilePatterns compiles filename glob patterns such as "*.config.{js,ts}".
func CompilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
