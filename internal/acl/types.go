// Package acl implements the access-control policy engine: the "to <what>
// by <who> <level> [control]" rule grammar, DN-scope matching, level-based
// decisions with Stop/Continue/Break control flow, and a hot-reloading
// ruleset snapshot. Grounded structurally on the teacher's (oba)
// types/matcher/evaluator/manager/watcher file split; the grammar and
// decision semantics themselves come from spec.md §4.4 and the original
// program's access.h/access.cpp, which this rewrite matches closely (the
// Level enum below is in the same order as Ldap::Access::Level).
package acl

import "github.com/obadir/obad/internal/filter"

// Level is a totally ordered access level.
type Level int

const (
	LevelNone Level = iota
	LevelDisclose
	LevelAuth
	LevelCompare
	LevelSearch
	LevelRead
	LevelSelfWrite
	LevelWrite
	LevelManage
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelDisclose:
		return "disclose"
	case LevelAuth:
		return "auth"
	case LevelCompare:
		return "compare"
	case LevelSearch:
		return "search"
	case LevelRead:
		return "read"
	case LevelSelfWrite:
		return "selfwrite"
	case LevelWrite:
		return "write"
	case LevelManage:
		return "manage"
	default:
		return "unknown"
	}
}

// Control is the action taken after an ACE fails to grant the required
// level.
type Control int

const (
	ControlBreak Control = iota
	ControlStop
	ControlContinue
)

// DNScope is a DN-matching scope, shared by What and Who clauses. Each
// scope translates a literal DN pattern into a regex anchor per spec.md
// §4.4's table.
type DNScope int

const (
	ScopeExact DNScope = iota // dn.exact / dn.base
	ScopeRegex
	ScopeOne
	ScopeSubtree
	ScopeChildren
)

// WhatKind discriminates the target clause of a rule.
type WhatKind int

const (
	WhatAll WhatKind = iota
	WhatDN
	WhatFilter
	WhatAttrs
)

// What is the "to <what>" clause of a rule.
type What struct {
	Kind    WhatKind
	Scope   DNScope // valid when Kind == WhatDN
	Pattern string         // raw DN pattern, valid when Kind == WhatDN
	Filter  *filter.Filter // valid when Kind == WhatFilter
	Attrs   map[string]bool
}

// WhoKind discriminates the subject clause of an ACE.
type WhoKind int

const (
	WhoAll WhoKind = iota
	WhoAnonymous
	WhoUsers
	WhoSelf
	WhoDN
	WhoDNAttr
	WhoGroup
)

// Who is the "by <who>" subject of an ACE.
type Who struct {
	Kind        WhoKind
	Scope       DNScope // valid when Kind == WhoDN
	Pattern     string  // valid when Kind == WhoDN
	Attribute   string  // valid when Kind == WhoDNAttr or WhoGroup (member attribute)
	GroupDN     string  // valid when Kind == WhoGroup
}

// ACE is one "by <who> <level> [control]" clause.
type ACE struct {
	Who     Who
	Level   Level
	Control Control
}

// Rule is one parsed access directive: a What target plus an ordered list
// of ACEs.
type Rule struct {
	What What
	ACEs []ACE

	// Source is the raw directive text, kept for diagnostics.
	Source string
}
