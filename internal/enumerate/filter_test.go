package enumerate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/model"
)

func filterEnumerator() *Enumerator {
	return &Enumerator{
		Walker: fakeWalker{files: []discover.FileEntry{
			{Path: "src/api/users.ts", Language: "typescript"},
			{Path: "src/apiv2/items.ts", Language: "typescript"},
			{Path: "src/util.ts", Language: "typescript"},
			{Path: "src/api/users.test.ts", Language: "typescript"},
		}},
		Declarations: fakeSource{decls: []model.Declaration{
			{Name: "listUsers", Kind: model.FunctionDecl, File: "src/api/users.ts", Line: 1, Exported: true, IsAsync: true},
			{Name: "findAll", Kind: model.MethodDecl, File: "src/api/users.ts", Line: 10, Exported: true,
				Decorators: []string{"Get"}, Visibility: model.Public, Container: "UsersController"},
			{Name: "secret", Kind: model.MethodDecl, File: "src/api/users.ts", Line: 20,
				Visibility: model.Private, IsStatic: true, Container: "UsersController"},
			{Name: "listItems", Kind: model.FunctionDecl, File: "src/apiv2/items.ts", Line: 3, Exported: true},
			{Name: "helper", Kind: model.FunctionDecl, File: "src/util.ts", Line: 7},
		}},
	}
}

func TestEnumerateWithFilters(t *testing.T) {
	t.Parallel()

	e := filterEnumerator()
	ctx := context.Background()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"none", Filters{}, []string{"listUsers", "findAll", "secret", "listItems", "helper"}},
		{"directory is segment aware", Filters{InDirectory: "src/api"}, []string{"listUsers", "findAll", "secret"}},
		{"directory normalized", Filters{InDirectory: "./src/api/"}, []string{"listUsers", "findAll", "secret"}},
		{"file", Filters{InFile: "src/util.ts"}, []string{"helper"}},
		{"name", Filters{Name: "LISTITEMS"}, []string{"listItems"}},
		{"exported", Filters{Exported: Bool(true)}, []string{"listUsers", "findAll", "listItems"}},
		{"not exported", Filters{Exported: Bool(false)}, []string{"secret", "helper"}},
		{"async", Filters{IsAsync: Bool(true)}, []string{"listUsers"}},
		{"static", Filters{IsStatic: Bool(true)}, []string{"secret"}},
		{"has decorators", Filters{HasDecorators: Bool(true)}, []string{"findAll"}},
		{"no decorators", Filters{HasDecorators: Bool(false)}, []string{"listUsers", "secret", "listItems", "helper"}},
		{"decorator name", Filters{DecoratorName: "@Get"}, []string{"findAll"}},
		{"visibility private", Filters{Visibility: model.Private}, []string{"secret"}},
		{"visibility all", Filters{Visibility: "all"}, []string{"listUsers", "findAll", "secret", "listItems", "helper"}},
		{"combined", Filters{InDirectory: "src", Exported: Bool(true), IsAsync: Bool(false)}, []string{"findAll", "listItems"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.EnumerateWithFilters(ctx, model.Function, "/nowhere", tc.filters)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestFiltersMissingMetadata(t *testing.T) {
	t.Parallel()

	e := filterEnumerator()
	ctx := context.Background()

	// Test-file entities carry no declaration metadata: metadata filters miss
	// instead of failing.
	got, err := e.EnumerateWithFilters(ctx, model.TestFile, "/nowhere", Filters{Exported: Bool(true)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.EnumerateWithFilters(ctx, model.TestFile, "/nowhere", Filters{HasDecorators: Bool(false)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.EnumerateWithFilters(ctx, model.TestFile, "/nowhere", Filters{Visibility: model.Public})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.EnumerateWithFilters(ctx, model.TestFile, "/nowhere", Filters{InDirectory: "src/api"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/api/users.test.ts"}, ids(got))
}

func TestEnumerateExportedAndInDirectory(t *testing.T) {
	t.Parallel()

	e := filterEnumerator()
	ctx := context.Background()

	got, err := e.EnumerateExported(ctx, model.Function, "/nowhere")
	require.NoError(t, err)
	assert.Equal(t, []string{"listUsers", "findAll", "listItems"}, names(got))

	got, err = e.EnumerateInDirectory(ctx, model.Function, "/nowhere", "src/apiv2")
	require.NoError(t, err)
	assert.Equal(t, []string{"listItems"}, names(got))

	got, err = e.EnumerateInDirectory(ctx, model.Function, "/nowhere", ".")
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
