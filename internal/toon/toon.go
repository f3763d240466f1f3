// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// enumeration results for agent consumption.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/codeinventory/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

var entityColumns = []string{"id", "name", "file", "line", "description"}

// EncodeResult converts an enumeration result into TOON format.
func EncodeResult(r *model.EnumerationResult) string {
	parts := []string{
		fmt.Sprintf("category: %s", encodeValue(string(r.Category))),
		fmt.Sprintf("total: %d", r.TotalCount),
		fmt.Sprintf("explanation: %s", encodeValue(r.Explanation)),
	}
	if r.Truncated {
		parts = append(parts, "truncated: true", fmt.Sprintf("maxLimit: %d", r.MaxLimit))
	}
	parts = append(parts, formatTabular("entities", entityColumns, entityRows(r.Entities)))
	return strings.Join(parts, "\n")
}

// EncodePage converts one page of entities into TOON format.
func EncodePage(p model.PaginatedResult[model.Entity]) string {
	parts := []string{
		fmt.Sprintf("total: %d", p.Total),
		fmt.Sprintf("offset: %d", p.Offset),
		fmt.Sprintf("limit: %d", p.Limit),
		fmt.Sprintf("hasMore: %t", p.HasMore),
		formatTabular("entities", entityColumns, entityRows(p.Items)),
	}
	return strings.Join(parts, "\n")
}

// EncodeEndpoints converts flattened endpoints into TOON format.
func EncodeEndpoints(endpoints []model.EndpointInfo) string {
	var rows [][]string
	for i := range endpoints {
		ep := &endpoints[i]
		rows = append(rows, []string{
			ep.Method,
			ep.Path,
			ep.File,
			strconv.Itoa(ep.Line),
			ep.Handler,
			string(ep.Framework),
		})
	}
	return formatTabular("endpoints", []string{"method", "path", "file", "line", "handler", "framework"}, rows)
}

func entityRows(entities []model.Entity) [][]string {
	var rows [][]string
	for i := range entities {
		ent := &entities[i]
		line := ""
		if ent.Line > 0 {
			line = strconv.Itoa(ent.Line)
		}
		rows = append(rows, []string{
			ent.ID,
			ent.Name,
			ent.FilePath,
			line,
			ent.Description,
		})
	}
	return rows
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
