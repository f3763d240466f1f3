package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/codeinventory/internal/model"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query    string
		category model.Category
		qt       model.QueryType
	}{
		{"list all CLI commands", model.CLICommand, model.List},
		{"how many test files exist", model.TestFile, model.Count},
		{"enumerate all spec files", model.TestFile, model.Enumerate},
		{"show me all endpoints", model.Endpoint, model.ShowAll},
		{"show all API routes", model.Endpoint, model.ShowAll},
		{"find all interfaces", model.Interface, model.FindAll},
		{"What are all the React hooks?", model.Hook, model.List},
		{"give me all config files", model.Config, model.ShowAll},
		{"count the classes", model.Class, model.Count},
		{"list  the   type aliases", model.TypeAlias, model.List},
		{"Enumerate documentation", model.Documentation, model.Enumerate},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			t.Parallel()
			got := Detect(tc.query)
			assert.True(t, got.IsEnumeration)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.qt, got.QueryType)
			assert.GreaterOrEqual(t, got.Confidence, Threshold)
			assert.LessOrEqual(t, got.Confidence, 1.0)
			assert.True(t, ShouldUseEnumerationMode(tc.query))
		})
	}
}

func TestDetectNotEnumeration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query    string
		category model.Category
	}{
		{"what does the query function do", model.Function},
		{"commands", model.CLICommand},
		{"how does the parser work", ""},
		{"list all the things", ""},
		{"why is this slow", ""},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			t.Parallel()
			got := Detect(tc.query)
			assert.False(t, got.IsEnumeration)
			assert.Equal(t, tc.category, got.Category)
			assert.Less(t, got.Confidence, Threshold)
			assert.LessOrEqual(t, got.Confidence, 0.3)
			assert.False(t, ShouldUseEnumerationMode(tc.query))
		})
	}
}

func TestDetectEmpty(t *testing.T) {
	t.Parallel()

	for _, q := range []string{"", "   ", "\n\t"} {
		got := Detect(q)
		assert.Equal(t, model.EnumerationIntent{}, got)
		assert.Empty(t, got.Filters)
		assert.False(t, ShouldUseEnumerationMode(q))
	}
}

func TestLongestAliasWins(t *testing.T) {
	t.Parallel()

	got := Detect("list all test files")
	assert.Equal(t, model.TestFile, got.Category)

	// "cli commands" beats both "cli" and "commands".
	got = Detect("list all cli commands")
	assert.Equal(t, model.CLICommand, got.Category)

	// "api endpoints" beats "endpoints" but both resolve to the same category.
	got = Detect("list all api endpoints")
	assert.Equal(t, model.Endpoint, got.Category)
}

func TestConfidenceMonotone(t *testing.T) {
	t.Parallel()

	weak := Detect("list classes")
	strong := Detect("list all classes")
	assert.Greater(t, strong.Confidence, weak.Confidence)

	plain := Detect("list all struct")
	specific := Detect("list all structs")
	assert.GreaterOrEqual(t, specific.Confidence, plain.Confidence)

	// Category before trigger loses the ordering bonus.
	before := Detect("classes, list all")
	assert.True(t, before.IsEnumeration)
	assert.Less(t, before.Confidence, strong.Confidence)
	assert.GreaterOrEqual(t, before.Confidence, Threshold)
}

func TestFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		filters []string
		cat     model.Category
	}{
		{"list all classes in src/Services", []string{"in:src/Services"}, model.Class},
		{"list all functions named handleRequest", []string{"named:handleRequest"}, model.Function},
		{"list all functions named Parse in pkg/api?", []string{"named:Parse", "in:pkg/api"}, model.Function},
		{"list all classes in src/commands", []string{"in:src/commands"}, model.Class},
		{"list all classes in the codebase", nil, model.Class},
		{"how many endpoints in this project", nil, model.Endpoint},
		{"how many test files in src", []string{"in:src"}, model.TestFile},
		{"how many test files in:src", nil, model.TestFile},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			t.Parallel()
			got := Detect(tc.query)
			assert.Equal(t, tc.filters, got.Filters)
			assert.Equal(t, tc.cat, got.Category)
			assert.True(t, got.IsEnumeration)
		})
	}
}

func TestFiltersDoNotChangeClassification(t *testing.T) {
	t.Parallel()

	base := Detect("list all hooks")
	scoped := Detect("list all hooks named useAuth in src/hooks")
	assert.Equal(t, base.Category, scoped.Category)
	assert.Equal(t, base.QueryType, scoped.QueryType)
	assert.Equal(t, base.Confidence, scoped.Confidence)
	assert.Equal(t, []string{"named:useAuth", "in:src/hooks"}, scoped.Filters)
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Scope{}, ParseScope(nil))
	assert.Equal(t, Scope{Directory: "src/api", Name: "Foo"},
		ParseScope([]string{"in:./src/api/", "named:Foo"}))
	assert.Equal(t, Scope{Directory: ""}, ParseScope([]string{"in:."}))
	assert.Equal(t, Scope{Directory: "b"}, ParseScope([]string{"in:a", "bogus", "in:b"}))
}
