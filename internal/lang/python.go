package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/codeinventory/internal/model"
)

func init() {
	Languages["python"] = &Language{
		Name:         "python",
		Extensions:   []string{".py"},
		lang:         python.GetLanguage(),
		Declarations: pythonDeclarations,
	}
}

func pythonDeclarations(root *sitter.Node, source []byte, file string) []model.Declaration {
	var decls []model.Declaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decls = pythonStatement(root.NamedChild(i), source, file, "", nil, decls)
	}
	return decls
}

// pythonStatement handles one module- or class-level statement. container is
// the enclosing class name ("" at module level).
func pythonStatement(node *sitter.Node, source []byte, file, container string, decorators []string, decls []model.Declaration) []model.Declaration {
	switch node.Type() {
	case "decorated_definition":
		var names []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				names = append(names, pythonDecoratorName(child, source))
			}
		}
		if def := node.ChildByFieldName("definition"); def != nil {
			return pythonStatement(def, source, file, container, names, decls)
		}

	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return decls
		}
		name := NodeText(nameNode, source)
		kind := model.FunctionDecl
		if container != "" {
			if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
				return decls
			}
			kind = model.MethodDecl
		}
		d := pythonDecl(name, kind, nameNode, file)
		d.IsAsync = hasChild(node, "async")
		d.Decorators = decorators
		d.Container = container
		d.Signature = pythonExtractFunctionSignature(node, source)
		for _, dec := range decorators {
			if dec == "staticmethod" || dec == "classmethod" {
				d.IsStatic = true
			}
		}
		decls = append(decls, d)

	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return decls
		}
		name := NodeText(nameNode, source)
		d := pythonDecl(name, pythonClassKind(node, source), nameNode, file)
		d.Decorators = decorators
		d.Container = container
		d.Signature = pythonExtractClassSignature(node, source)
		decls = append(decls, d)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				decls = pythonStatement(body.NamedChild(i), source, file, name, nil, decls)
			}
		}

	case "expression_statement":
		if container != "" || node.NamedChildCount() == 0 {
			return decls
		}
		assign := node.NamedChild(0)
		if assign.Type() != "assignment" {
			return decls
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			return decls
		}
		name := NodeText(left, source)
		if !isScreamingCase(strings.TrimLeft(name, "_")) {
			return decls
		}
		d := pythonDecl(name, model.ConstantDecl, left, file)
		d.Signature = CollapseWhitespace(NodeText(assign, source))
		decls = append(decls, d)
	}
	return decls
}

func pythonDecl(name string, kind model.DeclKind, nameNode *sitter.Node, file string) model.Declaration {
	private := strings.HasPrefix(name, "_")
	visibility := model.Public
	if private {
		visibility = model.Private
	}
	return model.Declaration{
		Name:       name,
		Kind:       kind,
		File:       file,
		Line:       line(nameNode),
		Exported:   !private,
		Visibility: visibility,
	}
}

// pythonClassKind maps Enum subclasses to enums and Protocol/ABC subclasses
// to interfaces.
func pythonClassKind(node *sitter.Node, source []byte) model.DeclKind {
	supers := node.ChildByFieldName("superclasses")
	if supers == nil {
		return model.ClassDecl
	}
	for i := 0; i < int(supers.NamedChildCount()); i++ {
		base := NodeText(supers.NamedChild(i), source)
		if dot := strings.LastIndex(base, "."); dot >= 0 {
			base = base[dot+1:]
		}
		switch {
		case strings.HasSuffix(base, "Enum"), base == "Flag", base == "IntFlag":
			return model.EnumDecl
		case base == "Protocol", base == "ABC":
			return model.InterfaceDecl
		}
	}
	return model.ClassDecl
}

// pythonDecoratorName returns the dotted decorator target without call
// arguments: "app.get" for @app.get("/x").
func pythonDecoratorName(dec *sitter.Node, source []byte) string {
	if dec.NamedChildCount() == 0 {
		return strings.TrimPrefix(NodeText(dec, source), "@")
	}
	expr := dec.NamedChild(0)
	if expr.Type() == "call" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			expr = fn
		}
	}
	return NodeText(expr, source)
}

func pythonExtractClassSignature(node *sitter.Node, source []byte) string {
	var name, args string
	if n := node.ChildByFieldName("name"); n != nil {
		name = NodeText(n, source)
	}
	if s := node.ChildByFieldName("superclasses"); s != nil {
		args = CollapseWhitespace(NodeText(s, source))
	}
	return name + args
}

func pythonExtractFunctionSignature(node *sitter.Node, source []byte) string {
	var name, params, returnType string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = NodeText(child, source)
			}
		case "parameters":
			params = CollapseWhitespace(NodeText(child, source))
		case "type":
			returnType = NodeText(child, source)
		}
	}
	sig := name + params
	if returnType != "" {
		sig += " -> " + returnType
	}
	return sig
}
