package enumerate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/phobologic/codeinventory/internal/model"
)

// DefaultPageSize is the page limit used when none is given.
const DefaultPageSize = 100

// ErrInvalidOptions is returned, wrapped, for malformed pagination options.
var ErrInvalidOptions = errors.New("invalid pagination options")

// SortField names the entity field a page is sorted by.
type SortField string

const (
	SortByName SortField = "name"
	SortByFile SortField = "file"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// PageOptions selects a window of a sorted enumeration. Zero values select
// the defaults: offset 0, the enumerator's page size, name, ascending.
type PageOptions struct {
	Offset    int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

func (o PageOptions) validate(defaultLimit int) (PageOptions, error) {
	if o.Offset < 0 {
		return o, fmt.Errorf("%w: negative offset %d", ErrInvalidOptions, o.Offset)
	}
	if o.Limit < 0 {
		return o, fmt.Errorf("%w: negative limit %d", ErrInvalidOptions, o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = defaultLimit
	}
	switch SortField(strings.ToLower(string(o.SortBy))) {
	case "":
		o.SortBy = SortByName
	case SortByName, SortByFile:
		o.SortBy = SortField(strings.ToLower(string(o.SortBy)))
	default:
		return o, fmt.Errorf("%w: unknown sort field %q", ErrInvalidOptions, o.SortBy)
	}
	switch SortOrder(strings.ToLower(string(o.SortOrder))) {
	case "":
		o.SortOrder = Ascending
	case Ascending, Descending:
		o.SortOrder = SortOrder(strings.ToLower(string(o.SortOrder)))
	default:
		return o, fmt.Errorf("%w: unknown sort order %q", ErrInvalidOptions, o.SortOrder)
	}
	return o, nil
}

func (e *Enumerator) pageSize() int {
	if e.PageSize <= 0 {
		return DefaultPageSize
	}
	return e.PageSize
}

// EnumerateByCategoryPaginated enumerates category c, sorts the entities and
// returns one page. Options are validated before any scanning. Total counts
// the entities in the result, so it never exceeds the safety ceiling.
func (e *Enumerator) EnumerateByCategoryPaginated(ctx context.Context, c model.Category, root string, opts PageOptions) (model.PaginatedResult[model.Entity], error) {
	return e.EnumerateWithFiltersPaginated(ctx, c, root, Filters{}, opts)
}

// EnumerateWithFiltersPaginated is EnumerateByCategoryPaginated over the
// entities that pass f. Total counts the filtered entities.
func (e *Enumerator) EnumerateWithFiltersPaginated(ctx context.Context, c model.Category, root string, f Filters, opts PageOptions) (model.PaginatedResult[model.Entity], error) {
	opts, err := opts.validate(e.pageSize())
	if err != nil {
		return model.PaginatedResult[model.Entity]{}, err
	}
	entities, err := e.EnumerateWithFilters(ctx, c, root, f)
	if err != nil {
		return model.PaginatedResult[model.Entity]{}, err
	}
	sorted := SortEntities(entities, opts.SortBy, opts.SortOrder)
	return Paginate(sorted, opts.Offset, opts.Limit), nil
}

// SortEntities returns a sorted copy of entities. Names and paths compare
// with English collation; ties fall back to path, line and finally ID, so
// the order is total whenever IDs are unique. Descending reverses the whole
// ordering.
func SortEntities(entities []model.Entity, by SortField, order SortOrder) []model.Entity {
	out := make([]model.Entity, len(entities))
	copy(out, entities)

	col := collate.New(language.English)
	compare := func(a, b model.Entity) int {
		var c int
		if by == SortByFile {
			if c = col.CompareString(a.FilePath, b.FilePath); c != 0 {
				return c
			}
			if a.Line != b.Line {
				return cmpInt(a.Line, b.Line)
			}
			if c = col.CompareString(a.Name, b.Name); c != 0 {
				return c
			}
		} else {
			if c = col.CompareString(a.Name, b.Name); c != 0 {
				return c
			}
			if c = col.CompareString(a.FilePath, b.FilePath); c != 0 {
				return c
			}
			if a.Line != b.Line {
				return cmpInt(a.Line, b.Line)
			}
		}
		return strings.Compare(a.ID, b.ID)
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate slices items to [offset, offset+limit). A limit of zero or less
// takes everything after offset.
func Paginate[T any](items []T, offset, limit int) model.PaginatedResult[T] {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	start := min(offset, total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return model.PaginatedResult[T]{
		Items:   page,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(page) < total,
	}
}
