// Package intent classifies free-text queries as enumeration requests.
//
// Classification is keyword based: a query-type trigger ("list all",
// "how many", ...) and a category alias from the registry must both be
// present for a query to count as an enumeration.
package intent

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/codeinventory/internal/category"
	"github.com/phobologic/codeinventory/internal/model"
)

// Threshold is the confidence at or above which a detected enumeration
// should switch callers into enumeration mode.
const Threshold = 0.7

// Confidence weights.
const (
	strongTrigger    = 0.5
	weakTrigger      = 0.4
	specificCategory = 0.4
	plainCategory    = 0.3
	orderBonus       = 0.1
	loneCategory     = 0.3
	loneTrigger      = 0.2
)

// Filter prefixes used in EnumerationIntent.Filters.
const (
	InPrefix    = "in:"
	NamedPrefix = "named:"
)

type trigger struct {
	re     *regexp.Regexp
	qt     model.QueryType
	strong func(match string) bool
}

func always(string) bool { return true }

func hasAll(m string) bool { return strings.HasSuffix(m, " all") }

func hasQualifier(m string) bool { return strings.Contains(m, " ") }

var triggers = []trigger{
	{regexp.MustCompile(`\bhow many\b`), model.Count, always},
	{regexp.MustCompile(`\bwhat are all\b`), model.List, always},
	{regexp.MustCompile(`\bgive me all\b`), model.ShowAll, always},
	{regexp.MustCompile(`\bshow (?:me )?all\b`), model.ShowAll, always},
	{regexp.MustCompile(`\bfind all\b`), model.FindAll, always},
	{regexp.MustCompile(`\benumerate(?: all)?\b`), model.Enumerate, hasAll},
	{regexp.MustCompile(`\blist(?: all)?\b`), model.List, hasAll},
	{regexp.MustCompile(`\bcount(?: all| the)?\b`), model.Count, hasQualifier},
}

var (
	namedRe = regexp.MustCompile(`(?i)\bnamed\s+([A-Za-z_$][\w$.-]*)`)
	inRe    = regexp.MustCompile(`(?i)\bin\s+(\S+)$`)
)

// Words that follow "in" without naming a directory.
var genericScopes = map[string]struct{}{
	"codebase":   {},
	"project":    {},
	"repo":       {},
	"repository": {},
	"workspace":  {},
	"here":       {},
	"it":         {},
}

type aliasMatcher struct {
	alias    string
	category model.Category
	specific bool
	re       *regexp.Regexp
}

var aliasMatchers = compileAliases()

func compileAliases() []aliasMatcher {
	aliases := category.Aliases()
	var out []aliasMatcher
	for _, a := range category.SortedAliases() {
		c := aliases[a]
		specific := strings.Contains(a, " ")
		if d, ok := category.Lookup(c); ok && strings.ToLower(d.Plural) == a {
			specific = true
		}
		out = append(out, aliasMatcher{
			alias:    a,
			category: c,
			specific: specific,
			re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`),
		})
	}
	return out
}

// Detect classifies query. It never fails: empty or unrecognized input yields
// a zero-confidence, non-enumeration intent.
func Detect(query string) model.EnumerationIntent {
	text := strings.Join(strings.Fields(query), " ")
	if text == "" {
		return model.EnumerationIntent{}
	}

	filters, stripped := extractFilters(text)
	lower := strings.ToLower(stripped)

	qt, trigPos, trigWeight := detectTrigger(lower)
	cat, catPos, catWeight := detectCategory(lower)

	in := model.EnumerationIntent{
		Category:  cat,
		QueryType: qt,
		Filters:   filters,
	}
	switch {
	case qt != "" && cat != "":
		score := trigWeight + catWeight
		if trigPos < catPos {
			score += orderBonus
		}
		in.IsEnumeration = true
		in.Confidence = round(math.Min(score, 1))
	case cat != "":
		in.Confidence = loneCategory
	case qt != "":
		in.Confidence = loneTrigger
	}
	return in
}

// ShouldUseEnumerationMode reports whether query is an enumeration request
// with confidence at or above Threshold.
func ShouldUseEnumerationMode(query string) bool {
	in := Detect(query)
	return in.IsEnumeration && in.Confidence >= Threshold
}

// detectTrigger returns the earliest trigger in text. Earlier table entries
// win at the same position.
func detectTrigger(text string) (model.QueryType, int, float64) {
	best := -1
	var qt model.QueryType
	var weight float64
	for _, t := range triggers {
		loc := t.re.FindStringIndex(text)
		if loc == nil || (best >= 0 && loc[0] >= best) {
			continue
		}
		best = loc[0]
		qt = t.qt
		weight = weakTrigger
		if t.strong(text[loc[0]:loc[1]]) {
			weight = strongTrigger
		}
	}
	return qt, best, weight
}

// detectCategory returns the category of the longest alias in text, the
// earliest one on a tie.
func detectCategory(text string) (model.Category, int, float64) {
	var best *aliasMatcher
	bestPos := -1
	for i := range aliasMatchers {
		m := &aliasMatchers[i]
		if best != nil && len(m.alias) < len(best.alias) {
			// Sorted longest first: nothing shorter can win.
			break
		}
		loc := m.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < bestPos {
			best, bestPos = m, loc[0]
		}
	}
	if best == nil {
		return "", -1, 0
	}
	if best.specific {
		return best.category, bestPos, specificCategory
	}
	return best.category, bestPos, plainCategory
}

// extractFilters captures "named <ident>" and a trailing "in <path>" clause
// from text, preserving case, and returns the filters in the order they appear
// together with text minus those clauses.
func extractFilters(text string) ([]string, string) {
	type found struct {
		pos    int
		filter string
	}
	var all []found

	rest := text
	for _, m := range namedRe.FindAllStringSubmatchIndex(text, -1) {
		all = append(all, found{m[0], NamedPrefix + text[m[2]:m[3]]})
	}
	rest = namedRe.ReplaceAllString(rest, "")
	rest = strings.Join(strings.Fields(rest), " ")

	trimmed := strings.TrimRight(rest, "?!")
	if m := inRe.FindStringSubmatchIndex(trimmed); m != nil {
		p := strings.TrimRight(trimmed[m[2]:m[3]], ",;:")
		if _, generic := genericScopes[strings.ToLower(p)]; !generic && p != "" {
			// Position in the original text for ordering.
			pos := strings.LastIndex(text, trimmed[m[0]:m[1]])
			all = append(all, found{pos, InPrefix + p})
			rest = trimmed[:m[0]]
		}
	}

	if len(all) == 0 {
		return nil, rest
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })
	filters := make([]string, len(all))
	for i, f := range all {
		filters[i] = f.filter
	}
	return filters, rest
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Scope is the structured form of an intent's filters.
type Scope struct {
	Directory string
	Name      string
}

// ParseScope decodes filters produced by Detect. Directory is normalized to
// a slash-separated relative path without a leading "./" or trailing slash.
// Unrecognized filters are ignored; when a kind repeats, the last one wins.
func ParseScope(filters []string) Scope {
	var s Scope
	for _, f := range filters {
		switch {
		case strings.HasPrefix(f, InPrefix):
			d := strings.ReplaceAll(strings.TrimPrefix(f, InPrefix), "\\", "/")
			d = strings.TrimPrefix(d, "./")
			d = strings.TrimSuffix(d, "/")
			if d == "." {
				d = ""
			}
			s.Directory = d
		case strings.HasPrefix(f, NamedPrefix):
			s.Name = strings.TrimPrefix(f, NamedPrefix)
		}
	}
	return s
}
