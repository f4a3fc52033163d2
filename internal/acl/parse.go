package acl

import (
	"strings"

	"github.com/obadir/obad/internal/filter"
	"github.com/obadir/obad/internal/ldaperr"
)

// Parse parses one access directive of the form
// "to <what> [by <who> <level> [control]]*", per spec.md §4.4, grounded on
// the whitespace-tokenized grammar of Entry::Entry/ACE::ACE in the
// original program's access.cpp.
func Parse(directive string) (*Rule, error) {
	tokens := strings.Fields(directive)
	if len(tokens) == 0 || tokens[0] != "to" {
		return nil, ldaperr.New(ldaperr.ProtocolError, "access directive doesn't start with \"to\"")
	}
	if len(tokens) < 2 {
		return nil, ldaperr.New(ldaperr.OperationsError, "access directive missing \"what\" clause")
	}

	what, err := parseWhat(tokens[1])
	if err != nil {
		return nil, err
	}

	rule := &Rule{What: what, Source: directive}

	i := 2
	for i < len(tokens) {
		if tokens[i] != "by" {
			return nil, ldaperr.New(ldaperr.OperationsError, "expected \"by\" clause in access directive")
		}
		i++

		ace, consumed, err := parseACE(tokens[i:])
		if err != nil {
			return nil, err
		}
		rule.ACEs = append(rule.ACEs, ace)
		i += consumed
	}

	return rule, nil
}

func parseWhat(tok string) (What, error) {
	if tok == "*" {
		return What{Kind: WhatAll}, nil
	}

	typeStr, valStr, ok := strings.Cut(tok, "=")
	if !ok || valStr == "" {
		return What{}, ldaperr.New(ldaperr.OperationsError, "error parsing \"what\" of access directive")
	}

	switch {
	case strings.HasPrefix(typeStr, "dn"):
		scope, err := dnScopeFor(typeStr)
		if err != nil {
			return What{}, err
		}
		return What{Kind: WhatDN, Scope: scope, Pattern: valStr}, nil

	case typeStr == "filter":
		f, err := filter.Parse(valStr)
		if err != nil {
			return What{}, err
		}
		return What{Kind: WhatFilter, Filter: f}, nil

	case typeStr == "attrs":
		attrs := make(map[string]bool)
		for _, a := range strings.Split(valStr, ",") {
			attrs[strings.ToLower(strings.TrimSpace(a))] = true
		}
		return What{Kind: WhatAttrs, Attrs: attrs}, nil

	default:
		return What{}, ldaperr.New(ldaperr.OperationsError, "unrecognized \"what\" clause: "+tok)
	}
}

func dnScopeFor(typeStr string) (DNScope, error) {
	switch typeStr {
	case "dn.exact", "dn.base":
		return ScopeExact, nil
	case "dn.regex", "dn":
		return ScopeRegex, nil
	case "dn.one":
		return ScopeOne, nil
	case "dn.subtree":
		return ScopeSubtree, nil
	case "dn.children":
		return ScopeChildren, nil
	default:
		return 0, ldaperr.New(ldaperr.OperationsError, "unrecognized dn scope: "+typeStr)
	}
}

// parseACE parses "<who> <level> [control]" from the front of tokens and
// returns the number of tokens consumed.
func parseACE(tokens []string) (ACE, int, error) {
	if len(tokens) < 2 {
		return ACE{}, 0, ldaperr.New(ldaperr.ProtocolError, "ACE must consist of a <who> <access> [control] triplet")
	}

	who, err := parseWho(tokens[0])
	if err != nil {
		return ACE{}, 0, err
	}

	level, ok := parseLevel(tokens[1])
	if !ok {
		return ACE{}, 0, ldaperr.New(ldaperr.OperationsError, "unrecognized access level: "+tokens[1])
	}

	ace := ACE{Who: who, Level: level, Control: ControlBreak}
	consumed := 2

	if len(tokens) > 2 {
		if control, ok := parseControl(tokens[2]); ok {
			ace.Control = control
			consumed = 3
		}
	}

	return ace, consumed, nil
}

func parseWho(tok string) (Who, error) {
	switch tok {
	case "*":
		return Who{Kind: WhoAll}, nil
	case "anonymous":
		return Who{Kind: WhoAnonymous}, nil
	case "users":
		return Who{Kind: WhoUsers}, nil
	case "self":
		return Who{Kind: WhoSelf}, nil
	}

	typeStr, valStr, hasEq := strings.Cut(tok, "=")

	switch {
	case strings.HasPrefix(typeStr, "dn"):
		if !hasEq || valStr == "" {
			return Who{}, ldaperr.New(ldaperr.OperationsError, "error parsing dn of \"who\" clause")
		}
		scope, err := dnScopeFor(typeStr)
		if err != nil {
			return Who{}, err
		}
		return Who{Kind: WhoDN, Scope: scope, Pattern: valStr}, nil

	case typeStr == "dnattr":
		if !hasEq || valStr == "" {
			return Who{}, ldaperr.New(ldaperr.ProtocolError, "error parsing dnattr of \"who\" clause")
		}
		return Who{Kind: WhoDNAttr, Attribute: valStr}, nil

	case strings.HasPrefix(typeStr, "group"):
		parts := strings.Split(typeStr, "/")
		who := Who{Kind: WhoGroup, GroupDN: valStr}
		if len(parts) > 1 {
			who.Attribute = parts[1]
		}
		return who, nil

	default:
		return Who{}, ldaperr.New(ldaperr.OperationsError, "unrecognized \"who\" clause: "+tok)
	}
}

func parseLevel(tok string) (Level, bool) {
	switch tok {
	case "none":
		return LevelNone, true
	case "disclose":
		return LevelDisclose, true
	case "auth":
		return LevelAuth, true
	case "compare":
		return LevelCompare, true
	case "search":
		return LevelSearch, true
	case "read":
		return LevelRead, true
	case "selfwrite":
		return LevelSelfWrite, true
	case "write":
		return LevelWrite, true
	case "manage":
		return LevelManage, true
	default:
		return 0, false
	}
}

func parseControl(tok string) (Control, bool) {
	switch tok {
	case "stop":
		return ControlStop, true
	case "continue":
		return ControlContinue, true
	case "break":
		return ControlBreak, true
	default:
		return 0, false
	}
}
