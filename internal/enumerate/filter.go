package enumerate

import (
	"context"
	"strings"

	"github.com/phobologic/codeinventory/internal/model"
)

// Filters narrows an enumeration. Set fields are AND-combined; an entity
// lacking the metadata a filter needs does not match it.
type Filters struct {
	InDirectory string // Directory prefix, matched on whole path segments
	InFile      string // Exact relative path
	Name        string // Entity name, case-insensitive

	Exported      *bool
	IsAsync       *bool
	IsStatic      *bool
	HasDecorators *bool

	Visibility    string // "" or "all" disables the check
	DecoratorName string
}

// Bool returns a pointer to b, for Filters fields.
func Bool(b bool) *bool { return &b }

// Match reports whether ent passes every set filter.
func (f Filters) Match(ent model.Entity) bool {
	if dir := normalizeDir(f.InDirectory); dir != "" {
		if ent.FilePath != dir && !strings.HasPrefix(ent.FilePath, dir+"/") {
			return false
		}
	}
	if f.InFile != "" && ent.FilePath != strings.TrimPrefix(f.InFile, "./") {
		return false
	}
	if f.Name != "" && !strings.EqualFold(ent.Name, f.Name) {
		return false
	}
	if !matchBool(ent, "exported", f.Exported) ||
		!matchBool(ent, "isAsync", f.IsAsync) ||
		!matchBool(ent, "isStatic", f.IsStatic) {
		return false
	}
	if f.Visibility != "" && f.Visibility != "all" {
		v, ok := ent.Metadata["visibility"].(string)
		if !ok || v != f.Visibility {
			return false
		}
	}
	if f.HasDecorators != nil || f.DecoratorName != "" {
		decorators, ok := ent.Metadata["decorators"].([]string)
		if !ok {
			return false
		}
		if f.HasDecorators != nil && (len(decorators) > 0) != *f.HasDecorators {
			return false
		}
		if f.DecoratorName != "" && !hasDecorator(decorators, f.DecoratorName) {
			return false
		}
	}
	return true
}

func matchBool(ent model.Entity, key string, want *bool) bool {
	if want == nil {
		return true
	}
	v, ok := ent.Metadata[key].(bool)
	return ok && v == *want
}

func hasDecorator(decorators []string, name string) bool {
	name = strings.TrimPrefix(name, "@")
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

func normalizeDir(d string) string {
	d = strings.ReplaceAll(strings.TrimSpace(d), "\\", "/")
	d = strings.TrimPrefix(d, "./")
	d = strings.TrimSuffix(d, "/")
	if d == "." {
		return ""
	}
	return d
}

// FilterEntities returns the entities that pass f, in input order.
func FilterEntities(entities []model.Entity, f Filters) []model.Entity {
	out := make([]model.Entity, 0, len(entities))
	for _, ent := range entities {
		if f.Match(ent) {
			out = append(out, ent)
		}
	}
	return out
}

// EnumerateWithFilters enumerates category c under root and keeps the
// entities that pass f.
func (e *Enumerator) EnumerateWithFilters(ctx context.Context, c model.Category, root string, f Filters) ([]model.Entity, error) {
	res, err := e.EnumerateByCategory(ctx, c, root)
	if err != nil {
		return nil, err
	}
	return FilterEntities(res.Entities, f), nil
}

// EnumerateExported lists the exported entities of category c.
func (e *Enumerator) EnumerateExported(ctx context.Context, c model.Category, root string) ([]model.Entity, error) {
	return e.EnumerateWithFilters(ctx, c, root, Filters{Exported: Bool(true)})
}

// EnumerateInDirectory lists the entities of category c under dir.
func (e *Enumerator) EnumerateInDirectory(ctx context.Context, c model.Category, root, dir string) ([]model.Entity, error) {
	return e.EnumerateWithFilters(ctx, c, root, Filters{InDirectory: dir})
}
