// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and their declaration extractors.
package lang

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/codeinventory/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Declarations walks a parsed syntax tree and returns the declarations it
	// defines. file is the repo-relative path recorded on each declaration.
	Declarations func(root *sitter.Node, source []byte, file string) []model.Declaration
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// line returns the 1-based line a node starts on.
func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// hasChild reports whether node has a direct child (named or anonymous) of the given type.
func hasChild(node *sitter.Node, typ string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

// containsType reports whether any node in the subtree has one of the given types.
func containsType(node *sitter.Node, types map[string]struct{}) bool {
	if _, ok := types[node.Type()]; ok {
		return true
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if containsType(node.NamedChild(i), types) {
			return true
		}
	}
	return false
}

func isUpperFirst(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// isScreamingCase reports whether s looks like a CONSTANT_NAME.
func isScreamingCase(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			hasLetter = true
		}
	}
	return hasLetter
}
