// Package manifest reads dependency manifests to detect the web and UI
// frameworks a workspace uses.
package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"

	"github.com/phobologic/codeinventory/internal/logging"
	"github.com/phobologic/codeinventory/internal/model"
)

// Manifest file names, in the order they are read.
const (
	PackageJSON   = "package.json"
	GoMod         = "go.mod"
	PyprojectTOML = "pyproject.toml"
	Requirements  = "requirements.txt"
)

// frameworkOrder is the canonical framework order.
var frameworkOrder = []model.Framework{
	model.React, model.Vue, model.Angular, model.Svelte,
	model.Express, model.NestJS, model.Fastify, model.Koa, model.Hapi,
	model.Next, model.Nuxt,
	model.Gin, model.Echo, model.Chi, model.Fiber,
	model.Flask, model.FastAPI, model.Django,
}

// packages maps dependency names to frameworks. Go module paths are listed
// without their major-version suffix.
var packages = map[string]model.Framework{
	"react":                    model.React,
	"vue":                      model.Vue,
	"@angular/core":            model.Angular,
	"svelte":                   model.Svelte,
	"express":                  model.Express,
	"@nestjs/core":             model.NestJS,
	"@nestjs/common":           model.NestJS,
	"fastify":                  model.Fastify,
	"koa":                      model.Koa,
	"@koa/router":              model.Koa,
	"koa-router":               model.Koa,
	"@hapi/hapi":               model.Hapi,
	"hapi":                     model.Hapi,
	"next":                     model.Next,
	"nuxt":                     model.Nuxt,
	"nuxt3":                    model.Nuxt,
	"github.com/gin-gonic/gin": model.Gin,
	"github.com/labstack/echo": model.Echo,
	"github.com/go-chi/chi":    model.Chi,
	"github.com/gofiber/fiber": model.Fiber,
	"flask":                    model.Flask,
	"fastapi":                  model.FastAPI,
	"django":                   model.Django,
	"djangorestframework":      model.Django,
}

var majorVersion = regexp.MustCompile(`/v\d+$`)

// Detector reads manifests. The zero value is ready to use.
type Detector struct {
	Logger *slog.Logger
}

// DetectFramework returns the frameworks declared by the manifests in root.
// It never fails: a missing or unreadable workspace, or one declaring no
// known framework, yields ["unknown"].
func DetectFramework(root string) []model.Framework {
	return (&Detector{}).Frameworks(root)
}

// Frameworks returns the frameworks declared by the manifests in root,
// grouped by manifest in read order and in canonical order within a manifest.
func (d *Detector) Frameworks(root string) []model.Framework {
	logger := logging.OrDiscard(d.Logger)

	readers := []struct {
		name string
		read func(data []byte) ([]string, error)
	}{
		{PackageJSON, packageJSONDeps},
		{GoMod, goModDeps},
		{PyprojectTOML, pyprojectDeps},
		{Requirements, requirementsDeps},
	}

	seen := make(map[model.Framework]bool)
	var out []model.Framework
	for _, r := range readers {
		data, err := os.ReadFile(filepath.Join(root, r.name))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Debug("skipping unreadable manifest", "path", r.name, "err", err)
			}
			continue
		}
		deps, err := r.read(data)
		if err != nil {
			logger.Debug("skipping malformed manifest", "path", r.name, "err", err)
			continue
		}
		found := make(map[model.Framework]bool)
		for _, dep := range deps {
			if fw, ok := packages[normalize(dep)]; ok {
				found[fw] = true
			}
		}
		for _, fw := range frameworkOrder {
			if found[fw] && !seen[fw] {
				seen[fw] = true
				out = append(out, fw)
			}
		}
	}
	if len(out) == 0 {
		return []model.Framework{model.Unknown}
	}
	return out
}

func normalize(dep string) string {
	dep = strings.ToLower(strings.TrimSpace(dep))
	return majorVersion.ReplaceAllString(dep, "")
}

func packageJSONDeps(data []byte) ([]string, error) {
	var pkg struct {
		Dependencies     map[string]string `json:"dependencies"`
		DevDependencies  map[string]string `json:"devDependencies"`
		PeerDependencies map[string]string `json:"peerDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PackageJSON, err)
	}
	var deps []string
	for _, m := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies} {
		for name := range m {
			deps = append(deps, name)
		}
	}
	return deps, nil
}

func goModDeps(data []byte) ([]string, error) {
	f, err := modfile.ParseLax(GoMod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", GoMod, err)
	}
	deps := make([]string, 0, len(f.Require))
	for _, r := range f.Require {
		deps = append(deps, r.Mod.Path)
	}
	return deps, nil
}

func pyprojectDeps(data []byte) ([]string, error) {
	var doc struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PyprojectTOML, err)
	}
	var deps []string
	for _, req := range doc.Project.Dependencies {
		deps = append(deps, requirementName(req))
	}
	for _, group := range doc.Project.OptionalDependencies {
		for _, req := range group {
			deps = append(deps, requirementName(req))
		}
	}
	for name := range doc.Tool.Poetry.Dependencies {
		deps = append(deps, name)
	}
	for name := range doc.Tool.Poetry.DevDependencies {
		deps = append(deps, name)
	}
	return deps, nil
}

func requirementsDeps(data []byte) ([]string, error) {
	var deps []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			deps = append(deps, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", Requirements, err)
	}
	return deps, nil
}

var requirementNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// requirementName returns the distribution name of a PEP 508 requirement
// such as "fastapi[all]>=0.100".
func requirementName(req string) string {
	return requirementNameRe.FindString(strings.TrimSpace(req))
}

// FrameworkCategories maps frameworks to the categories worth enumerating for
// them. The result is deduplicated in first-seen order.
func FrameworkCategories(frameworks []model.Framework) []model.Category {
	seen := make(map[model.Category]bool)
	var out []model.Category
	for _, fw := range frameworks {
		for _, c := range frameworkCategories[fw] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

var frameworkCategories = map[model.Framework][]model.Category{
	model.React:   {model.Component, model.Hook},
	model.Vue:     {model.Component},
	model.Angular: {model.Component},
	model.Svelte:  {model.Component},
	model.Express: {model.Endpoint},
	model.NestJS:  {model.Endpoint},
	model.Fastify: {model.Endpoint},
	model.Koa:     {model.Endpoint},
	model.Hapi:    {model.Endpoint},
	model.Next:    {model.Component, model.Endpoint},
	model.Nuxt:    {model.Component, model.Endpoint},
	model.Gin:     {model.Endpoint},
	model.Echo:    {model.Endpoint},
	model.Chi:     {model.Endpoint},
	model.Fiber:   {model.Endpoint},
	model.Flask:   {model.Endpoint},
	model.FastAPI: {model.Endpoint},
	model.Django:  {model.Endpoint},
}
