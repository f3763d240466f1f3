package lang

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/phobologic/codeinventory/internal/model"
)

func init() {
	Languages["javascript"] = &Language{
		Name:         "javascript",
		Extensions:   []string{".js", ".jsx", ".mjs", ".cjs"},
		lang:         javascript.GetLanguage(),
		Declarations: jsDeclarations,
	}
	Languages["typescript"] = &Language{
		Name:         "typescript",
		Extensions:   []string{".ts", ".mts", ".cts"},
		lang:         typescript.GetLanguage(),
		Declarations: jsDeclarations,
	}
	Languages["tsx"] = &Language{
		Name:         "tsx",
		Extensions:   []string{".tsx"},
		lang:         tsx.GetLanguage(),
		Declarations: jsDeclarations,
	}
}

var hookNameRe = regexp.MustCompile(`^use[A-Z0-9]`)

var jsxTypes = map[string]struct{}{
	"jsx_element":              {},
	"jsx_self_closing_element": {},
	"jsx_fragment":             {},
}

var jsFunctionValues = map[string]struct{}{
	"arrow_function":      {},
	"function":            {},
	"function_expression": {},
	"generator_function":  {},
}

// jsWalker accumulates declarations for one JavaScript/TypeScript file.
type jsWalker struct {
	source   []byte
	file     string
	decls    []model.Declaration
	exported map[string]struct{} // names listed in `export { ... }` clauses
}

func jsDeclarations(root *sitter.Node, source []byte, file string) []model.Declaration {
	w := &jsWalker{source: source, file: file, exported: make(map[string]struct{})}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		w.topLevel(root.NamedChild(i), false, nil)
	}
	for i := range w.decls {
		d := &w.decls[i]
		if d.Container != "" {
			continue
		}
		if _, ok := w.exported[d.Name]; ok {
			d.Exported = true
		}
	}
	return w.decls
}

func (w *jsWalker) topLevel(node *sitter.Node, exported bool, decorators []string) {
	switch node.Type() {
	case "export_statement":
		decorators = append(decorators, w.decoratorsOf(node)...)
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			w.topLevel(decl, true, decorators)
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "export_clause":
				w.collectExportClause(child)
			case "function_declaration", "generator_function_declaration",
				"class_declaration", "abstract_class_declaration", "class":
				// export default function Foo() {} / export default class Foo {}
				w.topLevel(child, true, decorators)
			}
		}

	case "function_declaration", "generator_function_declaration", "function":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		w.addFunction(node, nameNode, exported)

	case "class_declaration", "abstract_class_declaration", "class":
		w.addClass(node, exported, append(decorators, w.decoratorsOf(node)...))

	case "interface_declaration":
		w.addNamed(node, model.InterfaceDecl, exported)

	case "type_alias_declaration":
		w.addNamed(node, model.TypeAliasDecl, exported)

	case "enum_declaration":
		w.addNamed(node, model.EnumDecl, exported)

	case "lexical_declaration", "variable_declaration":
		isConst := node.ChildCount() > 0 && node.Child(0).Type() == "const"
		for i := 0; i < int(node.NamedChildCount()); i++ {
			declarator := node.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			nameNode := declarator.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue
			}
			value := declarator.ChildByFieldName("value")
			if value != nil {
				if _, ok := jsFunctionValues[value.Type()]; ok {
					w.addFunction(value, nameNode, exported)
					continue
				}
			}
			if isConst {
				w.decls = append(w.decls, model.Declaration{
					Name:       NodeText(nameNode, w.source),
					Kind:       model.ConstantDecl,
					File:       w.file,
					Line:       line(nameNode),
					Exported:   exported,
					Visibility: model.Public,
					Signature:  CollapseWhitespace(NodeText(declarator, w.source)),
				})
			}
		}
	}
}

func (w *jsWalker) collectExportClause(clause *sitter.Node) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			w.exported[NodeText(name, w.source)] = struct{}{}
		}
	}
}

func (w *jsWalker) addNamed(node *sitter.Node, kind model.DeclKind, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.decls = append(w.decls, model.Declaration{
		Name:       NodeText(nameNode, w.source),
		Kind:       kind,
		File:       w.file,
		Line:       line(nameNode),
		Exported:   exported,
		Visibility: model.Public,
	})
}

// addFunction records a function-like node, classifying React hooks and
// components by naming convention and JSX content.
func (w *jsWalker) addFunction(fn, nameNode *sitter.Node, exported bool) {
	name := NodeText(nameNode, w.source)
	kind := model.FunctionDecl
	switch {
	case hookNameRe.MatchString(name):
		kind = model.HookDecl
	case isUpperFirst(name) && containsType(fn, jsxTypes):
		kind = model.ComponentDecl
	}

	var params string
	if p := fn.ChildByFieldName("parameters"); p != nil {
		params = CollapseWhitespace(NodeText(p, w.source))
	} else if p := fn.ChildByFieldName("parameter"); p != nil {
		params = "(" + NodeText(p, w.source) + ")"
	}

	w.decls = append(w.decls, model.Declaration{
		Name:       name,
		Kind:       kind,
		File:       w.file,
		Line:       line(nameNode),
		Exported:   exported,
		IsAsync:    hasChild(fn, "async"),
		Visibility: model.Public,
		Signature:  name + params,
	})
}

func (w *jsWalker) addClass(node *sitter.Node, exported bool, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := NodeText(nameNode, w.source)

	var heritage string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "class_heritage" {
			heritage = CollapseWhitespace(NodeText(child, w.source))
		}
	}

	decl := model.Declaration{
		Name:       name,
		Kind:       model.ClassDecl,
		File:       w.file,
		Line:       line(nameNode),
		Exported:   exported,
		Decorators: decorators,
		Visibility: model.Public,
		Signature:  strings.TrimSpace(name + " " + heritage),
	}
	w.decls = append(w.decls, decl)

	// class Foo extends React.Component is also a component.
	if strings.Contains(heritage, "Component") {
		decl.Kind = model.ComponentDecl
		w.decls = append(w.decls, decl)
	}

	if body := node.ChildByFieldName("body"); body != nil {
		w.addMethods(body, name, exported)
	}
}

func (w *jsWalker) addMethods(body *sitter.Node, className string, classExported bool) {
	var pending []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "decorator":
			pending = append(pending, decoratorName(member, w.source))
			continue
		case "method_definition":
		default:
			pending = nil
			continue
		}

		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			pending = nil
			continue
		}
		name := NodeText(nameNode, w.source)
		if name == "constructor" {
			pending = nil
			continue
		}

		visibility := model.Public
		if nameNode.Type() == "private_property_identifier" {
			visibility = model.Private
		}
		decorators := append(pending, w.decoratorsOf(member)...)
		pending = nil
		for j := 0; j < int(member.NamedChildCount()); j++ {
			child := member.NamedChild(j)
			if child.Type() == "accessibility_modifier" {
				visibility = strings.TrimSpace(NodeText(child, w.source))
			}
		}

		var params string
		if p := member.ChildByFieldName("parameters"); p != nil {
			params = CollapseWhitespace(NodeText(p, w.source))
		}

		w.decls = append(w.decls, model.Declaration{
			Name:       name,
			Kind:       model.MethodDecl,
			File:       w.file,
			Line:       line(nameNode),
			Exported:   classExported && visibility == model.Public,
			IsAsync:    hasChild(member, "async"),
			IsStatic:   hasChild(member, "static"),
			Decorators: decorators,
			Visibility: visibility,
			Signature:  name + params,
			Container:  className,
		})
	}
}

func (w *jsWalker) decoratorsOf(node *sitter.Node) []string {
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "decorator" {
			names = append(names, decoratorName(child, w.source))
		}
	}
	return names
}

// decoratorName returns the callee of a decorator: "Get" for @Get('/x'),
// "Injectable" for @Injectable, "Input" for @core.Input().
func decoratorName(dec *sitter.Node, source []byte) string {
	if dec.NamedChildCount() == 0 {
		return strings.TrimPrefix(NodeText(dec, source), "@")
	}
	expr := dec.NamedChild(0)
	if expr.Type() == "call_expression" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			expr = fn
		}
	}
	if expr.Type() == "member_expression" {
		if prop := expr.ChildByFieldName("property"); prop != nil {
			return NodeText(prop, source)
		}
	}
	return NodeText(expr, source)
}
