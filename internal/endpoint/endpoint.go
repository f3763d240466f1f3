// Package endpoint extracts HTTP route registrations from source text.
//
// Each supported framework idiom is an independent Matcher. Extract runs every
// matcher that applies to a file's language, in order, and merges the results.
package endpoint

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/codeinventory/internal/model"
)

const anonymous = "anonymous"

// Match is one route registration found in a file.
type Match struct {
	Method     string // Uppercase, one of model.HTTPMethods
	Path       string
	Handler    string
	Framework  model.Framework
	Line       int
	Controller string // NestJS controller prefix, if any
}

// Source is a file being scanned.
type Source struct {
	Path     string
	Language string
	Text     string

	lineStarts []int
	imports    map[model.Framework]bool
	httpClient bool
}

// NewSource prepares text for matching.
func NewSource(path, language string, text []byte) *Source {
	s := &Source{Path: path, Language: language, Text: string(text)}
	s.lineStarts = append(s.lineStarts, 0)
	for i, c := range text {
		if c == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	s.imports = make(map[model.Framework]bool)
	for _, ip := range importPatterns {
		if ip.re.MatchString(s.Text) {
			s.imports[ip.framework] = true
		}
	}
	s.httpClient = httpClientRe.MatchString(s.Text)
	return s
}

// Line returns the 1-based line containing byte offset.
func (s *Source) Line(offset int) int {
	return sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset })
}

// Imports reports whether the file imports framework fw.
func (s *Source) Imports(fw model.Framework) bool {
	return s.imports[fw]
}

// Matcher is one framework idiom.
type Matcher struct {
	Name      string
	Languages []string
	Match     func(s *Source) []Match
}

func (m *Matcher) applies(language string) bool {
	for _, l := range m.Languages {
		if l == language {
			return true
		}
	}
	return false
}

var jsLanguages = []string{"javascript", "typescript", "tsx"}

// Matchers lists the route idioms in the order they are tried.
var Matchers = []Matcher{
	{Name: "router-call", Languages: append([]string{"go"}, jsLanguages...), Match: matchRouterCalls},
	{Name: "route-chain", Languages: jsLanguages, Match: matchRouteChains},
	{Name: "decorator", Languages: jsLanguages, Match: matchDecorators},
	{Name: "structured", Languages: jsLanguages, Match: matchStructured},
	{Name: "python-decorator", Languages: []string{"python"}, Match: matchPythonDecorators},
	{Name: "method-argument", Languages: []string{"go"}, Match: matchMethodArgument},
}

// Supports reports whether any matcher applies to language.
func Supports(language string) bool {
	for i := range Matchers {
		if Matchers[i].applies(language) {
			return true
		}
	}
	return false
}

// Extract returns the routes registered in text, ordered by line then method.
// A registration found by more than one matcher is reported once. Comments
// are ignored.
func Extract(path, language string, text []byte) []Match {
	if !Supports(language) || len(text) == 0 {
		return nil
	}
	s := NewSource(path, language, maskComments(context.Background(), language, text))

	type key struct {
		method, path string
		line         int
	}
	seen := make(map[key]bool)
	var out []Match
	for i := range Matchers {
		m := &Matchers[i]
		if !m.applies(language) {
			continue
		}
		for _, match := range m.Match(s) {
			if !model.IsHTTPMethod(match.Method) {
				continue
			}
			k := key{match.Method, match.Path, match.Line}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, match)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Method < out[j].Method
	})
	return out
}

type importPattern struct {
	framework model.Framework
	re        *regexp.Regexp
}

func jsImport(module string) *regexp.Regexp {
	return regexp.MustCompile(`(?:from\s+|require\(\s*|import\s+)['"]` + module + `['"]`)
}

func goImport(module string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(module) + `(?:/v\d+)?"`)
}

func pyImport(module string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^\s*(?:from|import)\s+` + module + `\b`)
}

var importPatterns = []importPattern{
	{model.NestJS, regexp.MustCompile(`['"]@nestjs/`)},
	{model.Express, jsImport(`express`)},
	{model.Koa, jsImport(`(?:koa|@koa/router|koa-router)`)},
	{model.Fastify, jsImport(`fastify`)},
	{model.Hapi, jsImport(`@hapi/hapi`)},
	{model.Gin, goImport("github.com/gin-gonic/gin")},
	{model.Echo, goImport("github.com/labstack/echo")},
	{model.Chi, goImport("github.com/go-chi/chi")},
	{model.Fiber, goImport("github.com/gofiber/fiber")},
	{model.FastAPI, pyImport(`fastapi`)},
	{model.Flask, pyImport(`flask`)},
}

// httpClientRe detects JavaScript HTTP clients, whose get/post calls send
// requests rather than register routes.
var httpClientRe = regexp.MustCompile(
	`(?:from\s+|require\(\s*|import\s+)['"](?:axios|ky|node-fetch|got|superagent|ofetch|undici)['"]|\baxios\s*\.\s*create\s*\(`)

// routerFrameworks are the frameworks whose routers use the
// receiver.verb(path, ...) idiom, in preference order.
var routerFrameworks = []model.Framework{
	model.Express, model.Koa, model.Fastify, model.Gin, model.Echo, model.Chi, model.Fiber,
}

const verbs = `get|post|put|delete|patch|options|head`

const receivers = `app|router|server|fastify|api|apiRouter|routes|route|r|e|g|mux|group|grp|rg|` +
	`v1|v2|v3|admin|auth|public|private|protected|authorized|subrouter|srv|engine|instance`

var routerCallRe = regexp.MustCompile(`\b(` + receivers + `)\s*\.\s*(?i:(` + verbs + `))\s*([(<])`)

func matchRouterCalls(s *Source) []Match {
	var out []Match
	for _, m := range routerCallRe.FindAllStringSubmatchIndex(s.Text, -1) {
		receiver := s.Text[m[2]:m[3]]
		verb := strings.ToUpper(s.Text[m[4]:m[5]])
		open := m[6]
		if s.Text[open] == '<' {
			if open = afterTypeArgs(s.Text, open); open < 0 {
				continue
			}
		}
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		args := splitArgs(s.Text[open+1 : end])
		if len(args) == 0 {
			continue
		}
		path, _, ok := readString(args[0], 0)
		if !ok || !looksLikeRoute(path) {
			continue
		}
		framework := routerFramework(s, receiver)
		if framework == model.Unknown && (s.httpClient || !handlerShaped(args)) {
			continue
		}
		handler := anonymous
		if len(args) > 1 {
			handler = handlerName(args[len(args)-1])
		}
		out = append(out, Match{
			Method:    verb,
			Path:      normalizePath(path),
			Handler:   handler,
			Framework: framework,
			Line:      s.Line(m[0]),
		})
	}
	return out
}

func routerFramework(s *Source, receiver string) model.Framework {
	for _, fw := range routerFrameworks {
		if s.Imports(fw) {
			return fw
		}
	}
	if receiver == "fastify" {
		return model.Fastify
	}
	return model.Unknown
}

var (
	routeChainRe = regexp.MustCompile(`\.\s*route\s*\(`)
	chainVerbRe  = regexp.MustCompile(`^\s*\.\s*(?i:(` + verbs + `))\s*\(`)
)

// matchRouteChains finds Express route chains: .route('/p').get(h).post(h).
func matchRouteChains(s *Source) []Match {
	var out []Match
	for _, loc := range routeChainRe.FindAllStringIndex(s.Text, -1) {
		open := loc[1] - 1
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		args := splitArgs(s.Text[open+1 : end])
		if len(args) != 1 {
			continue
		}
		path, _, ok := readString(args[0], 0)
		if !ok || !looksLikeRoute(path) {
			continue
		}
		pos := end + 1
		for {
			vm := chainVerbRe.FindStringSubmatchIndex(s.Text[pos:])
			if vm == nil {
				break
			}
			verbOpen := pos + vm[1] - 1
			verbEnd := closing(s.Text, verbOpen)
			if verbEnd < 0 {
				break
			}
			handler := anonymous
			if hargs := splitArgs(s.Text[verbOpen+1 : verbEnd]); len(hargs) > 0 {
				handler = handlerName(hargs[len(hargs)-1])
			}
			out = append(out, Match{
				Method:    strings.ToUpper(s.Text[pos+vm[2] : pos+vm[3]]),
				Path:      normalizePath(path),
				Handler:   handler,
				Framework: model.Express,
				Line:      s.Line(pos + vm[2]),
			})
			pos = verbEnd + 1
		}
	}
	return out
}

var (
	decoratorRe  = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch|Options|Head)\s*(\()`)
	controllerRe = regexp.MustCompile(`@Controller\s*(\()`)
	pathKeyRe    = regexp.MustCompile(`\bpath\s*:\s*`)
	memberNameRe = regexp.MustCompile(`^(?:\s*@[\w.]+\s*(?:\([^)]*\))?)*\s*(?:(?:public|private|protected|static|async|readonly|override)\s+)*([A-Za-z_$#][\w$]*)\s*[(<]`)
)

// matchDecorators finds NestJS-style verb decorators on handler methods.
func matchDecorators(s *Source) []Match {
	controllers := controllerPrefixes(s)
	var out []Match
	for _, m := range decoratorRe.FindAllStringSubmatchIndex(s.Text, -1) {
		open := m[4]
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		path := "/"
		if args := splitArgs(s.Text[open+1 : end]); len(args) > 0 {
			if lit, _, ok := readString(args[0], 0); ok {
				path = normalizePath(lit)
			} else {
				path = "{" + args[0] + "}"
			}
		}
		handler := anonymous
		if hm := memberNameRe.FindStringSubmatch(s.Text[end+1:]); hm != nil {
			handler = hm[1]
		}
		out = append(out, Match{
			Method:     strings.ToUpper(s.Text[m[2]:m[3]]),
			Path:       path,
			Handler:    handler,
			Framework:  model.NestJS,
			Line:       s.Line(m[0]),
			Controller: controllerFor(controllers, m[0]),
		})
	}
	return out
}

type controllerPrefix struct {
	offset int
	prefix string
}

func controllerPrefixes(s *Source) []controllerPrefix {
	var out []controllerPrefix
	for _, m := range controllerRe.FindAllStringSubmatchIndex(s.Text, -1) {
		open := m[2]
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		arg := strings.TrimSpace(s.Text[open+1 : end])
		prefix := ""
		if lit, _, ok := readString(arg, 0); ok {
			prefix = lit
		} else if loc := pathKeyRe.FindStringIndex(arg); loc != nil {
			prefix, _, _ = readString(arg, loc[1])
		}
		out = append(out, controllerPrefix{offset: m[0], prefix: prefix})
	}
	return out
}

// controllerFor returns the prefix of the nearest @Controller before offset.
func controllerFor(controllers []controllerPrefix, offset int) string {
	prefix := ""
	for _, c := range controllers {
		if c.offset > offset {
			break
		}
		prefix = c.prefix
	}
	return prefix
}

var (
	methodKeyRe  = regexp.MustCompile(`\bmethods?\s*:\s*`)
	urlKeyRe     = regexp.MustCompile(`\burl\s*:\s*`)
	handlerKeyRe = regexp.MustCompile(`\bhandler\s*:\s*`)
	quotedRe     = regexp.MustCompile(`['"]([A-Za-z]+|\*)['"]`)
)

// matchStructured finds object-form route definitions: { method, url }
// (Fastify) and { method, path } (hapi). method may be an array.
func matchStructured(s *Source) []Match {
	var out []Match
	done := make(map[int]bool)
	for _, loc := range methodKeyRe.FindAllStringIndex(s.Text, -1) {
		open := enclosingBrace(s.Text, loc[0])
		if open < 0 || done[open] {
			continue
		}
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		done[open] = true
		obj := s.Text[open : end+1]

		var methods []string
		rest := s.Text[loc[1]:end]
		if strings.HasPrefix(rest, "[") {
			if stop := closing(rest, 0); stop > 0 {
				for _, q := range quotedRe.FindAllStringSubmatch(rest[:stop], -1) {
					methods = append(methods, strings.ToUpper(q[1]))
				}
			}
		} else if v, _, ok := readString(rest, 0); ok {
			methods = append(methods, strings.ToUpper(v))
		}
		if len(methods) == 0 {
			continue
		}

		framework := model.Fastify
		path, ok := stringValue(obj, urlKeyRe)
		if !ok {
			if path, ok = stringValue(obj, pathKeyRe); !ok {
				continue
			}
			framework = model.Hapi
		}
		if !strings.HasPrefix(path, "/") {
			continue
		}

		handler := anonymous
		if hl := handlerKeyRe.FindStringIndex(obj); hl != nil {
			expr := obj[hl[1]:]
			if i := strings.IndexAny(expr, ",\n}"); i >= 0 {
				expr = expr[:i]
			}
			handler = handlerName(expr)
		}

		for _, method := range methods {
			out = append(out, Match{
				Method:    method,
				Path:      path,
				Handler:   handler,
				Framework: framework,
				Line:      s.Line(open),
			})
		}
	}
	return out
}

func stringValue(obj string, key *regexp.Regexp) (string, bool) {
	loc := key.FindStringIndex(obj)
	if loc == nil {
		return "", false
	}
	v, _, ok := readString(obj, loc[1])
	return v, ok
}

var (
	pyDecoratorRe = regexp.MustCompile(`(?m)^[ \t]*@(\w+)\.(` + verbs + `|route|api_route)\s*(\()`)
	pyDefRe       = regexp.MustCompile(`(?:async\s+)?def\s+(\w+)`)
	pyMethodsRe   = regexp.MustCompile(`\bmethods\s*=\s*`)
)

// matchPythonDecorators finds FastAPI and Flask route decorators.
func matchPythonDecorators(s *Source) []Match {
	var out []Match
	for _, m := range pyDecoratorRe.FindAllStringSubmatchIndex(s.Text, -1) {
		open := m[6]
		end := closing(s.Text, open)
		if end < 0 {
			continue
		}
		argText := s.Text[open+1 : end]
		args := splitArgs(argText)
		if len(args) == 0 {
			continue
		}
		path, _, ok := readString(args[0], 0)
		if !ok {
			continue
		}

		kind := s.Text[m[4]:m[5]]
		var methods []string
		switch kind {
		case "route", "api_route":
			if loc := pyMethodsRe.FindStringIndex(argText); loc != nil {
				if stop := closing(argText, loc[1]); stop > 0 {
					for _, q := range quotedRe.FindAllStringSubmatch(argText[loc[1]:stop], -1) {
						methods = append(methods, strings.ToUpper(q[1]))
					}
				}
			}
			if len(methods) == 0 {
				methods = []string{"GET"}
			}
		default:
			methods = []string{strings.ToUpper(kind)}
		}

		handler := anonymous
		if dm := pyDefRe.FindStringSubmatch(s.Text[end+1:]); dm != nil {
			handler = dm[1]
		}
		framework := pythonFramework(s, kind)
		for _, method := range methods {
			out = append(out, Match{
				Method:    method,
				Path:      normalizePath(path),
				Handler:   handler,
				Framework: framework,
				Line:      s.Line(m[0]),
			})
		}
	}
	return out
}

func pythonFramework(s *Source, kind string) model.Framework {
	switch {
	case s.Imports(model.FastAPI):
		return model.FastAPI
	case s.Imports(model.Flask):
		return model.Flask
	case kind == "route":
		return model.Flask
	default:
		return model.FastAPI
	}
}

var (
	// mux.HandleFunc("GET /users/{id}", h)
	muxPatternRe = regexp.MustCompile(`\.(?:HandleFunc|Handle)\s*(\()\s*"(` + upperVerbs + `)\s+(/[^"]*)"`)
	// r.Handle("GET", "/x", h), e.Add("GET", "/x", h), r.Method("GET", "/x", h)
	methodArgRe = regexp.MustCompile(`\.(?:Handle|Add|Method|MethodFunc)\s*(\()\s*"(` + upperVerbs + `)"\s*,\s*"([^"]*)"`)
)

const upperVerbs = `GET|POST|PUT|DELETE|PATCH|OPTIONS|HEAD`

// matchMethodArgument finds Go registrations that name the method in an
// argument rather than the function: ServeMux patterns and Handle/Add/Method
// style router calls.
func matchMethodArgument(s *Source) []Match {
	var out []Match
	add := func(m []int, framework model.Framework) {
		open := m[2]
		handler := anonymous
		if end := closing(s.Text, open); end > 0 {
			if args := splitArgs(s.Text[open+1 : end]); len(args) > 1 {
				handler = handlerName(args[len(args)-1])
			}
		}
		out = append(out, Match{
			Method:    s.Text[m[4]:m[5]],
			Path:      normalizePath(s.Text[m[6]:m[7]]),
			Handler:   handler,
			Framework: framework,
			Line:      s.Line(m[0]),
		})
	}
	for _, m := range muxPatternRe.FindAllStringSubmatchIndex(s.Text, -1) {
		add(m, model.Unknown)
	}
	for _, m := range methodArgRe.FindAllStringSubmatchIndex(s.Text, -1) {
		add(m, routerFramework(s, ""))
	}
	return out
}
