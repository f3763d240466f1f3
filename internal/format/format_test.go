package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/codeinventory/internal/model"
)

func TestEnumerationResult(t *testing.T) {
	t.Parallel()

	readme := model.Entity{ID: "README.md", Name: "README", FilePath: "README.md"}
	get := model.Entity{ID: "e1", Name: "GET /users", FilePath: "src/api/users.ts", Line: 12}
	post := model.Entity{ID: "e2", Name: "POST /users", FilePath: "src/api/users.ts", Line: 20}
	orphan := model.Entity{ID: "x", Name: "orphan"}

	r := &model.EnumerationResult{
		Category:    model.Endpoint,
		TotalCount:  4,
		Entities:    []model.Entity{readme, get, post, orphan},
		ByDirectory: map[string][]model.Entity{"src/api": {get, post}, "": {readme, orphan}},
		DurationMs:  1.5,
		Explanation: "Found 4 endpoints in the codebase.",
	}

	want := `Enumeration: endpoint
Found 4 endpoints in the codebase.

By Directory:
  ./ (2)
    README (README.md)
    orphan
  src/api/ (2)
    GET /users (src/api/users.ts:12)
    POST /users (src/api/users.ts:20)

1.50ms
`
	assert.Equal(t, want, EnumerationResult(r))
}

func TestEnumerationResultTruncatedAndEmpty(t *testing.T) {
	t.Parallel()

	r := &model.EnumerationResult{
		Category:    "widget",
		Explanation: "Unknown category: widget",
		ByDirectory: map[string][]model.Entity{},
	}
	assert.Equal(t, "Enumeration: widget\nUnknown category: widget\n\n0.00ms\n", EnumerationResult(r))

	r = &model.EnumerationResult{
		Category:    model.Class,
		TotalCount:  12,
		Entities:    []model.Entity{{ID: "a", Name: "A", FilePath: "a.go", Line: 1}},
		ByDirectory: map[string][]model.Entity{"": {{ID: "a", Name: "A", FilePath: "a.go", Line: 1}}},
		Explanation: "Found 12 classes in the codebase. Showing the first 1.",
		Truncated:   true,
		MaxLimit:    1,
		DurationMs:  0.126,
	}
	out := EnumerationResult(r)
	assert.Contains(t, out, "0.13ms\n")
	assert.Contains(t, out, "Results truncated at the limit of 1 entities; 12 matched in total.\n")
}

func TestPage(t *testing.T) {
	t.Parallel()

	p := model.PaginatedResult[model.Entity]{
		Items: []model.Entity{
			{Name: "b", FilePath: "b.go", Line: 3},
			{Name: "c", FilePath: "c.go"},
		},
		Total:   5,
		Offset:  1,
		Limit:   2,
		HasMore: true,
	}
	assert.Equal(t, "Showing 2-3 of 5\n  b (b.go:3)\n  c (c.go)\nMore results available from offset 3.\n", Page(p))

	assert.Equal(t, "Showing 0 of 5\n", Page(model.PaginatedResult[model.Entity]{Total: 5, Offset: 9}))
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	out := Endpoints([]model.EndpointInfo{
		{Method: "GET", Path: "/users", File: "src/app.ts", Line: 4, Handler: "list", Framework: model.Express},
	})
	assert.Equal(t, "Endpoints: 1\n  GET     /users -> list (src/app.ts:4) [express]\n", out)
}
