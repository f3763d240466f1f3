package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeinventory/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"dotted name", "Foo.__init__", "Foo.__init__"},
		{"signature no special", "run(self) -> None", "run(self) -> None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, encodeValue(tt.in))
		})
	}
}

func TestEncodeResult(t *testing.T) {
	t.Parallel()

	r := &model.EnumerationResult{
		Category:    model.Function,
		TotalCount:  2,
		Explanation: "Found 2 functions in the codebase.",
		Entities: []model.Entity{
			{
				ID:          "src/main.py:1:main",
				Name:        "main",
				FilePath:    "src/main.py",
				Line:        1,
				Description: "exported function",
			},
			{
				ID:       "README.md",
				Name:     "README",
				FilePath: "README.md",
			},
		},
	}

	got := EncodeResult(r)

	lines := strings.Split(got, "\n")
	want := []string{
		"category: function",
		"total: 2",
		"explanation: Found 2 functions in the codebase.",
		"entities[2]{id,name,file,line,description}:",
		`  "src/main.py:1:main",main,src/main.py,1,exported function`,
		`  README.md,README,README.md,"",""`,
	}
	require.Len(t, lines, len(want), got)
	assert.Equal(t, want, lines)
}

func TestEncodeResultTruncated(t *testing.T) {
	t.Parallel()

	r := &model.EnumerationResult{
		Category:   model.Class,
		TotalCount: 20,
		Truncated:  true,
		MaxLimit:   10,
	}
	got := EncodeResult(r)
	assert.Contains(t, got, "truncated: true\nmaxLimit: 10\n")
	assert.True(t, strings.HasSuffix(got, "entities[0]{id,name,file,line,description}:"), got)
}

func TestEncodePage(t *testing.T) {
	t.Parallel()

	p := model.PaginatedResult[model.Entity]{
		Items:   []model.Entity{{ID: "a.go:3:Run", Name: "Run", FilePath: "a.go", Line: 3}},
		Total:   4,
		Offset:  2,
		Limit:   1,
		HasMore: true,
	}
	want := "total: 4\noffset: 2\nlimit: 1\nhasMore: true\n" +
		"entities[1]{id,name,file,line,description}:\n" +
		`  "a.go:3:Run",Run,a.go,3,""`
	assert.Equal(t, want, EncodePage(p))
}

func TestEncodeEndpoints(t *testing.T) {
	t.Parallel()

	got := EncodeEndpoints([]model.EndpointInfo{
		{Method: "GET", Path: "/users/:id", File: "src/app.ts", Line: 7, Handler: "show", Framework: model.Express},
		{Method: "POST", Path: "/users", File: "src/app.ts", Line: 9, Handler: "anonymous", Framework: model.Unknown},
	})
	want := "endpoints[2]{method,path,file,line,handler,framework}:\n" +
		`  GET,"/users/:id",src/app.ts,7,show,express` + "\n" +
		"  POST,/users,src/app.ts,9,anonymous,unknown"
	assert.Equal(t, want, got)
	assert.Equal(t, "endpoints[0]{method,path,file,line,handler,framework}:", EncodeEndpoints(nil))
}
