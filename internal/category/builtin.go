package category

import (
	"path"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/lang"
	"github.com/phobologic/codeinventory/internal/model"
)

func init() {
	Register(&Definition{
		Category:  model.CLICommand,
		Plural:    "CLI commands",
		Aliases:   []string{"cli command", "cli commands", "command", "commands", "cli", "subcommands"},
		Source:    Files,
		MatchFile: IsCLICommandFile,
	})
	Register(&Definition{
		Category: model.TestFile,
		Plural:   "test files",
		Aliases: []string{"test", "tests", "test file", "test files", "spec", "specs",
			"spec file", "spec files", "test suite", "test suites"},
		Source:    Files,
		MatchFile: discover.IsTestFile,
	})
	Register(&Definition{
		Category: model.Interface,
		Plural:   "interfaces",
		Aliases:  []string{"interface", "interfaces", "protocol", "protocols"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.InterfaceDecl},
	})
	Register(&Definition{
		Category: model.Class,
		Plural:   "classes",
		Aliases:  []string{"class", "classes", "struct", "structs"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.ClassDecl},
	})
	Register(&Definition{
		Category: model.Config,
		Plural:   "config files",
		Aliases: []string{"config", "configs", "config file", "config files",
			"configuration", "configuration file", "configuration files", "settings file", "settings files"},
		Source:    Files,
		MatchFile: IsConfigFile,
	})
	Register(&Definition{
		Category:  model.Module,
		Plural:    "modules",
		Aliases:   []string{"module", "modules", "source file", "source files"},
		Source:    Files,
		MatchFile: IsModuleFile,
	})
	Register(&Definition{
		Category: model.Documentation,
		Plural:   "documentation files",
		Aliases: []string{"doc", "docs", "documentation", "documentation file", "documentation files",
			"readme", "readmes", "markdown file", "markdown files"},
		Source:    Files,
		MatchFile: IsDocumentationFile,
	})
	Register(&Definition{
		Category: model.Component,
		Plural:   "components",
		Aliases:  []string{"component", "components", "react component", "react components", "ui component", "ui components"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.ComponentDecl},
	})
	Register(&Definition{
		Category: model.Hook,
		Plural:   "hooks",
		Aliases:  []string{"hook", "hooks", "react hook", "react hooks", "custom hook", "custom hooks"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.HookDecl},
	})
	Register(&Definition{
		Category: model.Function,
		Plural:   "functions",
		Aliases:  []string{"function", "functions", "method", "methods"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.FunctionDecl, model.MethodDecl},
	})
	Register(&Definition{
		Category: model.Enum,
		Plural:   "enums",
		Aliases:  []string{"enum", "enums"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.EnumDecl},
	})
	Register(&Definition{
		Category: model.Constant,
		Plural:   "constants",
		Aliases:  []string{"constant", "constants", "const", "consts"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.ConstantDecl},
	})
	Register(&Definition{
		Category: model.TypeAlias,
		Plural:   "type aliases",
		Aliases:  []string{"type alias", "type aliases", "type definition", "type definitions"},
		Source:   Declarations,
		Kinds:    []model.DeclKind{model.TypeAliasDecl},
	})
	Register(&Definition{
		Category: model.Endpoint,
		Plural:   "endpoints",
		Aliases: []string{"endpoint", "endpoints", "api endpoint", "api endpoints", "route", "routes",
			"api route", "api routes", "http endpoint", "http endpoints", "http route", "http routes"},
		Source: Routes,
	})
}

var cliDirs = map[string]struct{}{
	"bin":      {},
	"cli":      {},
	"commands": {},
	"cmd":      {},
}

// IsCLICommandFile reports whether p is a command entry point: a source file
// under a bin/, cli/, commands/ or cmd/ directory. Extensionless scripts under
// bin/ also count.
func IsCLICommandFile(p string) bool {
	if discover.IsTestFile(p) {
		return false
	}
	dir, base := path.Split(p)
	inBin := false
	inCLI := false
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if _, ok := cliDirs[seg]; ok {
			inCLI = true
			inBin = inBin || seg == "bin"
		}
	}
	if !inCLI {
		return false
	}
	ext := path.Ext(base)
	if lang.ForExtension(strings.ToLower(ext)) != "" {
		return true
	}
	return inBin && ext == ""
}

var configFiles = map[string]struct{}{
	"package.json":        {},
	"tsconfig.json":       {},
	"jsconfig.json":       {},
	"angular.json":        {},
	"nest-cli.json":       {},
	"vercel.json":         {},
	"composer.json":       {},
	"go.mod":              {},
	"go.work":             {},
	"cargo.toml":          {},
	"pyproject.toml":      {},
	"setup.cfg":           {},
	"setup.py":            {},
	"requirements.txt":    {},
	"pipfile":             {},
	"gemfile":             {},
	"dockerfile":          {},
	"makefile":            {},
	"procfile":            {},
	"pom.xml":             {},
	"build.gradle":        {},
	"build.gradle.kts":    {},
	".gitignore":          {},
	".dockerignore":       {},
	".editorconfig":       {},
	".nvmrc":              {},
	".npmrc":              {},
	".env":                {},
	"docker-compose.yml":  {},
	"docker-compose.yaml": {},
}

// configPatterns are naming conventions for configuration files, matched
// against the lowercase base name.
var configPatterns = mustCompile(
	"*.config.{js,cjs,mjs,ts,cts,mts,json}",
	".*rc",
	".*rc.{js,cjs,json,yml,yaml}",
	"tsconfig.*.json",
	"*.{yaml,yml,toml,ini,cfg,conf}",
	".env.*",
)

func mustCompile(patterns ...string) []glob.Glob {
	globs, err := CompilePatterns(patterns)
	if err != nil {
		panic(err)
	}
	return globs
}

// IsConfigFile reports whether p is a known configuration file or follows a
// configuration naming convention.
func IsConfigFile(p string) bool {
	base := strings.ToLower(path.Base(p))
	if _, ok := configFiles[base]; ok {
		return true
	}
	if strings.HasPrefix(base, "dockerfile.") {
		return true
	}
	return MatchAny(configPatterns, base)
}

// MatchAny reports whether name matches any of the globs.
func MatchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

var markdownExts = map[string]struct{}{
	".md":       {},
	".mdx":      {},
	".markdown": {},
}

var docNameRe = regexp.MustCompile(`(?i)readme|changelog|contributing`)

// IsDocumentationFile reports whether p is a markdown file or a conventional
// README / CHANGELOG / CONTRIBUTING file.
func IsDocumentationFile(p string) bool {
	base := path.Base(p)
	if _, ok := markdownExts[strings.ToLower(path.Ext(base))]; ok {
		return true
	}
	return docNameRe.MatchString(base)
}

// IsModuleFile reports whether p is a non-test source file of a supported language.
func IsModuleFile(p string) bool {
	if lang.ForExtension(strings.ToLower(path.Ext(p))) == "" {
		return false
	}
	return !discover.IsTestFile(p)
}
