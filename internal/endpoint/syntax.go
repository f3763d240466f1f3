package endpoint

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/codeinventory/internal/lang"
)

// blankNode reports whether a syntax node's text is invisible to the route
// matchers. Regex literals are blanked with comments because a quote inside
// either would read as the start of a string.
func blankNode(typ string) bool {
	return strings.HasSuffix(typ, "comment") || typ == "regex"
}

// maskComments returns text with every comment and regex literal replaced by
// spaces. Newlines are kept, so byte offsets and line numbers are unchanged.
// Text in a language without a registered grammar is returned as is.
func maskComments(ctx context.Context, language string, text []byte) []byte {
	l, ok := lang.Languages[language]
	if !ok {
		return text
	}
	tree, err := l.NewParser().ParseCtx(ctx, nil, text)
	if err != nil {
		return text
	}
	defer tree.Close()

	out := make([]byte, len(text))
	copy(out, text)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if blankNode(n.Type()) {
			for i := n.StartByte(); i < n.EndByte() && int(i) < len(out); i++ {
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return out
}
