package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/phobologic/codeinventory/internal/model"
)

func init() {
	Languages["ruby"] = &Language{
		Name:         "ruby",
		Extensions:   []string{".rb"},
		lang:         ruby.GetLanguage(),
		Declarations: rubyDeclarations,
	}
}

func rubyDeclarations(root *sitter.Node, source []byte, file string) []model.Declaration {
	r := &rubyWalker{source: source, file: file}
	r.body(root, "")
	return r.decls
}

type rubyWalker struct {
	source []byte
	file   string
	decls  []model.Declaration
}

// body visits the statements of a program, class or module. A bare `private`
// or `protected` call switches the visibility of the methods that follow.
func (r *rubyWalker) body(node *sitter.Node, container string) {
	visibility := model.Public
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "body_statement":
			r.body(child, container)

		case "identifier":
			switch text := NodeText(child, r.source); text {
			case "private", "protected", "public":
				if container != "" {
					visibility = text
				}
			}

		case "class", "module":
			name := rubyClassName(child, r.source)
			if name == "" {
				continue
			}
			if child.Type() == "class" {
				r.decls = append(r.decls, model.Declaration{
					Name:       name,
					Kind:       model.ClassDecl,
					File:       r.file,
					Line:       line(child),
					Exported:   true,
					Visibility: model.Public,
					Signature:  rubyExtractClassSignature(child, r.source),
					Container:  container,
				})
			}
			r.body(child, name)

		case "method", "singleton_method":
			name := rubyMethodName(child, r.source)
			if name == "" {
				continue
			}
			kind := model.FunctionDecl
			if container != "" {
				kind = model.MethodDecl
			}
			r.decls = append(r.decls, model.Declaration{
				Name:       name,
				Kind:       kind,
				File:       r.file,
				Line:       line(child),
				Exported:   visibility == model.Public,
				IsStatic:   child.Type() == "singleton_method",
				Visibility: visibility,
				Signature:  rubyExtractMethodSignature(child, r.source),
				Container:  container,
			})

		case "assignment":
			left := child.ChildByFieldName("left")
			if left == nil || left.Type() != "constant" {
				continue
			}
			r.decls = append(r.decls, model.Declaration{
				Name:       NodeText(left, r.source),
				Kind:       model.ConstantDecl,
				File:       r.file,
				Line:       line(left),
				Exported:   true,
				Visibility: model.Public,
				Signature:  CollapseWhitespace(NodeText(child, r.source)),
				Container:  container,
			})
		}
	}
}

// rubyClassName extracts the name from a class or module node.
func rubyClassName(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "constant" || child.Type() == "scope_resolution" {
			return NodeText(child, source)
		}
	}
	return ""
}

// rubyMethodName returns the method name, skipping the `self` receiver of
// singleton methods.
func rubyMethodName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return NodeText(n, source)
	}
	var name string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			name = NodeText(child, source)
		}
	}
	return name
}

func rubyExtractClassSignature(node *sitter.Node, source []byte) string {
	var name, superclass string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "constant", "scope_resolution":
			if name == "" {
				name = NodeText(child, source)
			}
		case "superclass":
			// superclass node contains "< ClassName"
			for j := 0; j < int(child.ChildCount()); j++ {
				sc := child.Child(j)
				if sc.Type() == "constant" || sc.Type() == "scope_resolution" {
					superclass = NodeText(sc, source)
				}
			}
		}
	}
	if superclass != "" {
		return name + " < " + superclass
	}
	return name
}

func rubyExtractMethodSignature(node *sitter.Node, source []byte) string {
	name := rubyMethodName(node, source)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "method_parameters" {
			return name + CollapseWhitespace(NodeText(child, source))
		}
	}
	return name
}
