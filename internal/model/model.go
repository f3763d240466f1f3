// Package model defines core data structures for codeinventory.
package model

// Category is a closed kind of code or file artifact being inventoried.
type Category string

const (
	CLICommand    Category = "cli_command"
	TestFile      Category = "test_file"
	Interface     Category = "interface"
	Class         Category = "class"
	Config        Category = "config"
	Module        Category = "module"
	Documentation Category = "documentation"
	Component     Category = "component"
	Hook          Category = "hook"
	Function      Category = "function"
	Enum          Category = "enum"
	Constant      Category = "constant"
	TypeAlias     Category = "type_alias"
	Endpoint      Category = "endpoint"
)

// QueryType is the sub-kind of answer an enumeration query asks for.
type QueryType string

const (
	List      QueryType = "list"
	Count     QueryType = "count"
	ShowAll   QueryType = "show_all"
	Enumerate QueryType = "enumerate"
	FindAll   QueryType = "find_all"
)

// EnumerationIntent is the classifier's reading of a free-text query.
// Category and QueryType are empty when not detected.
type EnumerationIntent struct {
	IsEnumeration bool
	Category      Category
	QueryType     QueryType
	Confidence    float64
	Filters       []string
}

// Entity is one inventoried item.
type Entity struct {
	ID          string
	Name        string
	FilePath    string // Relative to workspace root, forward slashes
	Category    Category
	Description string
	Line        int // 0 when the entity is a whole file
	Metadata    map[string]any
}

// EnumerationResult is the complete inventory for one category.
type EnumerationResult struct {
	Category    Category
	TotalCount  int
	Entities    []Entity
	ByDirectory map[string][]Entity
	DurationMs  float64
	Explanation string
	Truncated   bool
	MaxLimit    int // Set only when Truncated
}

// PaginatedResult is one page of a sorted sequence.
type PaginatedResult[T any] struct {
	Items   []T
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// EndpointInfo is the flattened form of an endpoint entity.
type EndpointInfo struct {
	Method    string
	Path      string
	File      string
	Line      int
	Handler   string
	Framework Framework
}

// DeclKind is the syntactic kind of a declaration.
type DeclKind string

const (
	FunctionDecl  DeclKind = "function"
	MethodDecl    DeclKind = "method"
	ClassDecl     DeclKind = "class"
	InterfaceDecl DeclKind = "interface"
	EnumDecl      DeclKind = "enum"
	ConstantDecl  DeclKind = "constant"
	TypeAliasDecl DeclKind = "type_alias"
	ComponentDecl DeclKind = "component"
	HookDecl      DeclKind = "hook"
)

// Visibility values carried by declarations.
const (
	Public    = "public"
	Private   = "private"
	Protected = "protected"
)

// Declaration is a single structural declaration extracted from a source file.
type Declaration struct {
	Name       string
	Kind       DeclKind
	File       string
	Line       int
	Exported   bool
	IsAsync    bool
	IsStatic   bool
	Decorators []string
	Visibility string
	Signature  string
	Container  string // Enclosing class for methods
}

// Framework is a recognized web or UI library.
type Framework string

const (
	React   Framework = "react"
	Vue     Framework = "vue"
	Angular Framework = "angular"
	Svelte  Framework = "svelte"
	Express Framework = "express"
	NestJS  Framework = "nestjs"
	Fastify Framework = "fastify"
	Koa     Framework = "koa"
	Hapi    Framework = "hapi"
	Next    Framework = "next"
	Nuxt    Framework = "nuxt"
	Gin     Framework = "gin"
	Echo    Framework = "echo"
	Chi     Framework = "chi"
	Fiber   Framework = "fiber"
	Flask   Framework = "flask"
	FastAPI Framework = "fastapi"
	Django  Framework = "django"
	Unknown Framework = "unknown"
)

// HTTPMethods lists the recognized route verbs in canonical order.
var HTTPMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"}

// IsHTTPMethod reports whether m is one of the recognized uppercase verbs.
func IsHTTPMethod(m string) bool {
	for _, v := range HTTPMethods {
		if v == m {
			return true
		}
	}
	return false
}
