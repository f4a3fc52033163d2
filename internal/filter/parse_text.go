package filter

import (
	"sort"
	"strings"
	"unicode"

	"github.com/obadir/obad/internal/ldaperr"
)

// Parse builds a Filter tree from RFC-4515-style text: "(<attr><op><value>)"
// or "(<combiner><filter>...)". Grounded on parseFilter/parseFilterList in
// the original program's filter.cpp, resolving the two divergent
// look-ahead implementations the distillation found there in favor of the
// explicit rule in spec.md §4.3.
func Parse(s string) (*Filter, error) {
	runes := []rune(s)
	i := skipWhitespace(runes, 0)

	if i >= len(runes) || runes[i] != '(' {
		return nil, ldaperr.New(ldaperr.ProtocolError, "search filter does not begin with (")
	}

	closeIdx, err := findMatchingParen(runes, i)
	if err != nil {
		return nil, err
	}

	body := runes[i+1 : closeIdx]
	if len(body) == 0 {
		return nil, ldaperr.New(ldaperr.ProtocolError, "search filter is empty")
	}

	switch body[0] {
	case '&':
		children, err := parseFilterList(string(body[1:]))
		if err != nil {
			return nil, err
		}
		return &Filter{Type: And, Children: children}, nil
	case '|':
		children, err := parseFilterList(string(body[1:]))
		if err != nil {
			return nil, err
		}
		return &Filter{Type: Or, Children: children}, nil
	case '!':
		children, err := parseFilterList(string(body[1:]))
		if err != nil {
			return nil, err
		}
		if len(children) != 1 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "not filter requires exactly one sub-filter")
		}
		return &Filter{Type: Not, Child: children[0]}, nil
	}

	return parseSimpleFilter(string(body))
}

// parseFilterList parses a run of one or more parenthesized sub-filters
// (the combiner character has already been stripped) and stable-sorts the
// result so semantically equal And/Or filters produce identical trees,
// per spec.md §4.3's filter-identity caching requirement.
func parseFilterList(s string) ([]*Filter, error) {
	runes := []rune(s)
	var filters []*Filter

	i := 0
	for i < len(runes) {
		i = skipWhitespace(runes, i)
		if i >= len(runes) {
			break
		}
		if runes[i] != '(' {
			return nil, ldaperr.New(ldaperr.ProtocolError, "expected ( in filter list")
		}
		closeIdx, err := findMatchingParen(runes, i)
		if err != nil {
			return nil, err
		}
		f, err := Parse(string(runes[i : closeIdx+1]))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
		i = closeIdx + 1
	}

	if len(filters) == 0 {
		return nil, ldaperr.New(ldaperr.ProtocolError, "combiner filter requires at least one sub-filter")
	}

	sort.SliceStable(filters, func(a, b int) bool { return Less(filters[a], filters[b]) })
	return filters, nil
}

// parseSimpleFilter handles the "attr<op>value" leaf case.
func parseSimpleFilter(s string) (*Filter, error) {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return nil, ldaperr.New(ldaperr.ProtocolError, "search filter is missing or has invalid attribute name")
	}

	attr := s[:eq]
	value := s[eq+1:]

	typ := Equal
	if eq > 0 {
		switch s[eq-1] {
		case '~':
			typ, attr = Approx, attr[:len(attr)-1]
		case '<':
			typ, attr = Lte, attr[:len(attr)-1]
		case '>':
			typ, attr = Gte, attr[:len(attr)-1]
		}
	}

	if value == "*" {
		return &Filter{Type: Present, Attribute: attr}, nil
	}

	if !strings.Contains(value, "*") {
		return &Filter{Type: typ, Attribute: attr, Value: value}, nil
	}

	if typ != Equal {
		return nil, ldaperr.New(ldaperr.ProtocolError, "substring filters only support the equality operator")
	}

	return &Filter{Type: Substring, Attribute: attr, Parts: parseSubstringParts(value)}, nil
}

// parseSubstringParts implements the explicit look-ahead rule of
// spec.md §4.3: split on '*', keep non-empty literals, classify by
// whether a star immediately preceded or follows.
func parseSubstringParts(value string) []SubPart {
	tokens := strings.Split(value, "*")
	var parts []SubPart

	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		switch {
		case i == 0:
			parts = append(parts, SubPart{Kind: Initial, Literal: tok})
		case i == len(tokens)-1:
			parts = append(parts, SubPart{Kind: Final, Literal: tok})
		default:
			parts = append(parts, SubPart{Kind: Any, Literal: tok})
		}
	}

	return parts
}

func skipWhitespace(r []rune, i int) int {
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return i
}

// findMatchingParen returns the index of the ')' matching the '(' at
// openIdx, respecting backslash escaping: a backslash toggles escape; an
// escaped paren does not affect the balance.
func findMatchingParen(r []rune, openIdx int) (int, error) {
	balance := 1
	escape := false
	i := openIdx + 1
	for i < len(r) {
		if !escape {
			switch r[i] {
			case '(':
				balance++
			case ')':
				balance--
				if balance == 0 {
					return i, nil
				}
			}
		}
		escape = r[i] == '\\' && !escape
		i++
	}
	return 0, ldaperr.New(ldaperr.ProtocolError, "search filter's parentheses aren't balanced")
}
