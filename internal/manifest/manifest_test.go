package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeinventory/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectFrameworkPackageJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
  "name": "web",
  "dependencies": {"express": "^4.18.0", "react": "^18.2.0", "lodash": "^4.0.0"},
  "devDependencies": {"@nestjs/common": "^10.0.0"},
  "peerDependencies": {"vue": "^3.0.0"}
}`)

	assert.Equal(t,
		[]model.Framework{model.React, model.Vue, model.Express, model.NestJS},
		DetectFramework(dir))
}

func TestDetectFrameworkGoMod(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", `module example.com/svc

go 1.22

require (
	github.com/go-chi/chi/v5 v5.0.12
	github.com/gin-gonic/gin v1.9.1
	github.com/stretchr/testify v1.9.0
)
`)

	assert.Equal(t, []model.Framework{model.Gin, model.Chi}, DetectFramework(dir))
}

func TestDetectFrameworkPython(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", `[project]
name = "api"
dependencies = ["FastAPI[all]>=0.100", "pydantic"]

[tool.poetry.dependencies]
python = "^3.11"
Django = "^5.0"
`)
	writeFile(t, dir, "requirements.txt", `# web
-r base.txt
flask==3.0.0
fastapi
`)

	assert.Equal(t, []model.Framework{model.FastAPI, model.Django, model.Flask}, DetectFramework(dir))
}

func TestDetectFrameworkAcrossManifests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies": {"next": "14.0.0"}}`)
	writeFile(t, dir, "go.mod", "module x\n\nrequire github.com/labstack/echo/v4 v4.11.0\n")

	assert.Equal(t, []model.Framework{model.Next, model.Echo}, DetectFramework(dir))
}

func TestDetectFrameworkUnknown(t *testing.T) {
	t.Parallel()

	unknown := []model.Framework{model.Unknown}

	assert.Equal(t, unknown, DetectFramework(filepath.Join(t.TempDir(), "missing")))
	assert.Equal(t, unknown, DetectFramework(t.TempDir()))

	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{not json`)
	assert.Equal(t, unknown, DetectFramework(dir))

	dir = t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies": {"lodash": "1"}}`)
	assert.Equal(t, unknown, DetectFramework(dir))
}

func TestFrameworkCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []model.Framework
		want []model.Category
	}{
		{"react", []model.Framework{model.React}, []model.Category{model.Component, model.Hook}},
		{"vue", []model.Framework{model.Vue}, []model.Category{model.Component}},
		{"express", []model.Framework{model.Express}, []model.Category{model.Endpoint}},
		{"next", []model.Framework{model.Next}, []model.Category{model.Component, model.Endpoint}},
		{"dedupe", []model.Framework{model.Express, model.React, model.Svelte, model.Koa},
			[]model.Category{model.Endpoint, model.Component, model.Hook}},
		{"unknown", []model.Framework{model.Unknown}, nil},
		{"empty", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FrameworkCategories(tc.in))
		})
	}
}

func TestRequirementName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fastapi", requirementName("fastapi[all]>=0.100"))
	assert.Equal(t, "django-cors-headers", requirementName("django-cors-headers==4.0 ; python_version>'3'"))
	assert.Equal(t, "", requirementName("./vendor/pkg"))
}
