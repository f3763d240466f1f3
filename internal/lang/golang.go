package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/phobologic/codeinventory/internal/model"
)

func init() {
	Languages["go"] = &Language{
		Name:         "go",
		Extensions:   []string{".go"},
		lang:         golang.GetLanguage(),
		Declarations: goDeclarations,
	}
}

func goDeclarations(root *sitter.Node, source []byte, file string) []model.Declaration {
	var decls []model.Declaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "function_declaration":
			if d, ok := goFunc(node, model.FunctionDecl, source, file); ok {
				decls = append(decls, d)
			}
		case "method_declaration":
			if d, ok := goFunc(node, model.MethodDecl, source, file); ok {
				d.Container = goFindReceiverType(node, source)
				decls = append(decls, d)
			}
		case "type_declaration":
			for j := 0; j < int(node.NamedChildCount()); j++ {
				spec := node.NamedChild(j)
				if d, ok := goTypeSpec(spec, source, file); ok {
					decls = append(decls, d)
				}
			}
		case "const_declaration":
			for j := 0; j < int(node.NamedChildCount()); j++ {
				spec := node.NamedChild(j)
				if spec.Type() != "const_spec" {
					continue
				}
				for k := 0; k < int(spec.NamedChildCount()); k++ {
					ident := spec.NamedChild(k)
					if ident.Type() != "identifier" {
						continue
					}
					name := NodeText(ident, source)
					if name == "_" {
						continue
					}
					decls = append(decls, goDecl(name, model.ConstantDecl, ident, file))
				}
			}
		}
	}
	return decls
}

func goDecl(name string, kind model.DeclKind, nameNode *sitter.Node, file string) model.Declaration {
	exported := isUpperFirst(name)
	visibility := model.Private
	if exported {
		visibility = model.Public
	}
	return model.Declaration{
		Name:       name,
		Kind:       kind,
		File:       file,
		Line:       line(nameNode),
		Exported:   exported,
		Visibility: visibility,
	}
}

func goFunc(node *sitter.Node, kind model.DeclKind, source []byte, file string) (model.Declaration, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return model.Declaration{}, false
	}
	d := goDecl(NodeText(nameNode, source), kind, nameNode, file)
	d.Signature = goExtractSignature(node, source)
	return d, true
}

func goTypeSpec(spec *sitter.Node, source []byte, file string) (model.Declaration, bool) {
	nameNode := spec.ChildByFieldName("name")
	if nameNode == nil {
		return model.Declaration{}, false
	}

	kind := model.TypeAliasDecl
	if spec.Type() == "type_spec" {
		if t := spec.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_type":
				kind = model.ClassDecl
			case "interface_type":
				kind = model.InterfaceDecl
			}
		}
	} else if spec.Type() != "type_alias" {
		return model.Declaration{}, false
	}

	d := goDecl(NodeText(nameNode, source), kind, nameNode, file)
	d.Signature = CollapseWhitespace(NodeText(spec, source))
	if kind == model.ClassDecl || kind == model.InterfaceDecl {
		d.Signature = d.Name
	}
	return d, true
}

// goFindReceiverType extracts the receiver type name from a method_declaration node.
// Navigates: method_declaration → parameter_list (receiver) → parameter_declaration → type.
func goFindReceiverType(node *sitter.Node, source []byte) string {
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}
	for j := 0; j < int(receiver.NamedChildCount()); j++ {
		param := receiver.NamedChild(j)
		if param.Type() == "parameter_declaration" {
			return goExtractTypeName(param, source)
		}
	}
	return ""
}

// goExtractTypeName extracts the type name from a parameter_declaration,
// unwrapping pointer_type and generic_type if present.
func goExtractTypeName(param *sitter.Node, source []byte) string {
	for i := 0; i < int(param.NamedChildCount()); i++ {
		child := param.NamedChild(i)
		switch child.Type() {
		case "type_identifier":
			return NodeText(child, source)
		case "pointer_type", "generic_type":
			return goExtractTypeName(child, source)
		}
	}
	return ""
}

func goExtractSignature(defNode *sitter.Node, source []byte) string {
	var name, params, result string
	if n := defNode.ChildByFieldName("name"); n != nil {
		name = NodeText(n, source)
	}
	if p := defNode.ChildByFieldName("parameters"); p != nil {
		params = CollapseWhitespace(NodeText(p, source))
	}
	if r := defNode.ChildByFieldName("result"); r != nil {
		result = CollapseWhitespace(NodeText(r, source))
	}

	sig := name + params
	if result != "" {
		sig += " " + result
	}
	return sig
}
