package endpoint

import "strings"

// readString reads the quoted literal starting at text[i] and returns its
// contents and the index just past the closing quote.
func readString(text string, i int) (string, int, bool) {
	if i >= len(text) {
		return "", i, false
	}
	q := text[i]
	if q != '\'' && q != '"' && q != '`' {
		return "", i, false
	}
	var b strings.Builder
	for j := i + 1; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '\\' && j+1 < len(text):
			j++
			b.WriteByte(text[j])
		case c == q:
			return b.String(), j + 1, true
		case c == '\n' && q != '`':
			return "", j, false
		default:
			b.WriteByte(c)
		}
	}
	return "", len(text), false
}

// skipString returns the index just past the literal starting at text[i],
// or len(text) if it is unterminated.
func skipString(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(text)
}

// closing returns the index of the bracket matching the opener at text[open],
// skipping string literals. It returns -1 when the brackets are unbalanced.
func closing(text string, open int) int {
	depth := 0
	for i := open; i < len(text); {
		switch c := text[i]; c {
		case '\'', '"', '`':
			i = skipString(text, i)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// afterTypeArgs returns the index of the '(' following the type argument
// list that opens at text[open], as in get<{ Params: P }>(...). It returns
// -1 when no call follows.
func afterTypeArgs(text string, open int) int {
	angle, nest := 0, 0
	for i := open; i < len(text); {
		switch c := text[i]; c {
		case '\'', '"', '`':
			i = skipString(text, i)
			continue
		case '(', '[', '{':
			nest++
		case ')', ']', '}':
			nest--
			if nest < 0 {
				return -1
			}
		case ';':
			if nest == 0 {
				return -1
			}
		case '<':
			angle++
		case '>':
			if i > 0 && text[i-1] == '=' {
				break
			}
			angle--
			if angle == 0 && nest == 0 {
				j := i + 1
				for j < len(text) && strings.ContainsRune(" \t\r\n", rune(text[j])) {
					j++
				}
				if j < len(text) && text[j] == '(' {
					return j
				}
				return -1
			}
		}
		i++
	}
	return -1
}

// enclosingBrace returns the index of the innermost unmatched '{' before pos.
// String literals are not tracked when scanning backwards.
func enclosingBrace(text string, pos int) int {
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// splitArgs splits an argument list on top-level commas.
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\'', '"', '`':
			i = skipString(s, i)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
		i++
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		args = append(args, last)
	}
	return args
}

// handlerName resolves a handler argument to a name: the last segment of an
// identifier or member expression, with a trailing .bind(...) removed.
// Anything else is an inline handler.
func handlerName(arg string) string {
	arg = strings.TrimSpace(arg)
	if i := strings.Index(arg, ".bind("); i > 0 {
		arg = arg[:i]
	}
	if !isMemberExpr(arg) {
		return anonymous
	}
	if i := strings.LastIndexByte(arg, '.'); i >= 0 {
		return arg[i+1:]
	}
	return arg
}

func isMemberExpr(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !isIdent(part) {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// handlerShaped reports whether a router-call argument list ends in
// something that can handle a request: a function literal, or a named
// function or member after at least a path.
func handlerShaped(args []string) bool {
	if len(args) < 2 {
		return false
	}
	last := strings.TrimSpace(args[len(args)-1])
	if strings.HasPrefix(last, "func") || strings.HasPrefix(last, "async") || strings.Contains(last, "=>") {
		return true
	}
	return handlerName(last) != anonymous
}

// normalizePath gives a path a leading slash. An empty path is the root.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// looksLikeRoute reports whether a router-call path argument is a route
// pattern rather than a settings key such as app.get('env').
func looksLikeRoute(p string) bool {
	return p == "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "*") || strings.HasPrefix(p, "${")
}
