package enumerate

import (
	"fmt"
	"path"
	"time"

	"github.com/phobologic/codeinventory/internal/category"
	"github.com/phobologic/codeinventory/internal/model"
)

// assemble deduplicates entities by ID, keeping the first, applies the
// safety ceiling and derives the directory grouping from what remains.
func assemble(def *category.Definition, entities []model.Entity, start time.Time, maxEntities int) *model.EnumerationResult {
	seen := make(map[string]struct{}, len(entities))
	unique := make([]model.Entity, 0, len(entities))
	for _, ent := range entities {
		if _, dup := seen[ent.ID]; dup {
			continue
		}
		seen[ent.ID] = struct{}{}
		unique = append(unique, ent)
	}

	res := &model.EnumerationResult{
		Category:    def.Category,
		TotalCount:  len(unique),
		Explanation: fmt.Sprintf("Found %d %s in the codebase.", len(unique), def.Plural),
	}
	if maxEntities > 0 && len(unique) > maxEntities {
		unique = unique[:maxEntities]
		res.Truncated = true
		res.MaxLimit = maxEntities
		res.Explanation += fmt.Sprintf(" Showing the first %d.", maxEntities)
	}
	res.Entities = unique
	res.ByDirectory = GroupByDirectory(unique)
	res.DurationMs = elapsedMs(start)
	return res
}

func unknownResult(c model.Category, start time.Time) *model.EnumerationResult {
	return &model.EnumerationResult{
		Category:    c,
		Entities:    []model.Entity{},
		ByDirectory: map[string][]model.Entity{},
		Explanation: fmt.Sprintf("Unknown category: %s", c),
		DurationMs:  elapsedMs(start),
	}
}

// GroupByDirectory buckets entities by the directory of their file, keeping
// input order within each bucket. Root-level and file-less entities share
// the "" bucket.
func GroupByDirectory(entities []model.Entity) map[string][]model.Entity {
	out := make(map[string][]model.Entity)
	for _, ent := range entities {
		dir := ""
		if ent.FilePath != "" {
			if d := path.Dir(ent.FilePath); d != "." {
				dir = d
			}
		}
		out[dir] = append(out[dir], ent)
	}
	return out
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
