// Package format renders enumeration results as plain text.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/codeinventory/internal/model"
)

// EnumerationResult renders r with its entities grouped by directory.
func EnumerationResult(r *model.EnumerationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enumeration: %s\n", r.Category)
	fmt.Fprintf(&b, "%s\n", r.Explanation)

	if len(r.ByDirectory) > 0 {
		b.WriteString("\nBy Directory:\n")
		dirs := make([]string, 0, len(r.ByDirectory))
		for d := range r.ByDirectory {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		for _, d := range dirs {
			fmt.Fprintf(&b, "  %s (%d)\n", dirLabel(d), len(r.ByDirectory[d]))
			for _, ent := range r.ByDirectory[d] {
				fmt.Fprintf(&b, "    %s\n", entityLine(ent))
			}
		}
	}

	fmt.Fprintf(&b, "\n%.2fms\n", r.DurationMs)
	if r.Truncated {
		fmt.Fprintf(&b, "Results truncated at the limit of %d entities; %d matched in total.\n", r.MaxLimit, r.TotalCount)
	}
	return b.String()
}

// Page renders one page of entities.
func Page(p model.PaginatedResult[model.Entity]) string {
	var b strings.Builder
	if len(p.Items) == 0 {
		fmt.Fprintf(&b, "Showing 0 of %d\n", p.Total)
		return b.String()
	}
	fmt.Fprintf(&b, "Showing %d-%d of %d\n", p.Offset+1, p.Offset+len(p.Items), p.Total)
	for _, ent := range p.Items {
		fmt.Fprintf(&b, "  %s\n", entityLine(ent))
	}
	if p.HasMore {
		fmt.Fprintf(&b, "More results available from offset %d.\n", p.Offset+len(p.Items))
	}
	return b.String()
}

// Endpoints renders endpoints one per line.
func Endpoints(endpoints []model.EndpointInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Endpoints: %d\n", len(endpoints))
	for _, ep := range endpoints {
		fmt.Fprintf(&b, "  %-7s %s -> %s (%s:%d) [%s]\n",
			ep.Method, ep.Path, ep.Handler, ep.File, ep.Line, ep.Framework)
	}
	return b.String()
}

func dirLabel(d string) string {
	if d == "" {
		return "./"
	}
	return d + "/"
}

func entityLine(ent model.Entity) string {
	switch {
	case ent.FilePath == "":
		return ent.Name
	case ent.Line > 0:
		return fmt.Sprintf("%s (%s:%d)", ent.Name, ent.FilePath, ent.Line)
	default:
		return fmt.Sprintf("%s (%s)", ent.Name, ent.FilePath)
	}
}
