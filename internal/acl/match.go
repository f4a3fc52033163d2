package acl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/obadir/obad/internal/filter"
	"github.com/obadir/obad/internal/ldaperr"
)

// dnPattern compiles a DN pattern under the given scope into an anchored
// regex. DNs are written leaf first, so the base pattern is matched as a
// suffix: exact matches the pattern alone, one matches a single RDN
// directly under it, subtree matches the pattern itself and everything
// under it, children matches everything under it but not the pattern
// itself, and regex uses the pattern as given.
func dnPattern(scope DNScope, pattern string) (*regexp.Regexp, error) {
	var expr string
	switch scope {
	case ScopeExact:
		expr = "^" + pattern + "$"
	case ScopeRegex:
		expr = pattern
	case ScopeOne:
		expr = "^[^,]+," + pattern + "$"
	case ScopeSubtree:
		expr = "^(.+,)?" + pattern + "$"
	case ScopeChildren:
		expr = "^.+," + pattern + "$"
	default:
		return nil, fmt.Errorf("acl: unknown dn scope %d", scope)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, ldaperr.Wrap(ldaperr.OperationsError, "invalid dn pattern in access rule", err)
	}
	return re, nil
}

// MatchesWhat decides whether a rule's target clause selects the given
// entry, per spec.md §4.4's Selection rule: DN scopes match by regex
// against the entry DN; a filter clause matches if it is structurally
// equal to the request's filter or if it evaluates true against the
// entry; an attrs-only clause matches if the requested attribute set
// intersects the rule's attribute set.
func MatchesWhat(w What, entryDN string, entry filter.Entry, requestFilter *filter.Filter, requestedAttrs []string) (bool, error) {
	switch w.Kind {
	case WhatAll:
		return true, nil

	case WhatDN:
		re, err := dnPattern(w.Scope, w.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(entryDN), nil

	case WhatFilter:
		if requestFilter != nil && filter.Equal_(w.Filter, requestFilter) {
			return true, nil
		}
		return filter.Match(w.Filter, entry)

	case WhatAttrs:
		for _, a := range requestedAttrs {
			if w.Attrs[strings.ToLower(a)] {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, nil
	}
}

// GroupLookup resolves whether memberDN appears in memberAttr of the
// entry at groupDN. The caller supplies this via the storage backend, so
// the acl package stays free of a storage dependency.
type GroupLookup func(groupDN, memberAttr, memberDN string) (bool, error)

// MatchesWho decides whether an ACE's subject clause matches the
// requester, per spec.md §4.4.
func MatchesWho(who Who, requesterDN string, anonymous bool, targetDN string, targetEntry filter.Entry, lookupGroup GroupLookup) (bool, error) {
	switch who.Kind {
	case WhoAll:
		return true, nil

	case WhoAnonymous:
		return anonymous, nil

	case WhoUsers:
		return !anonymous, nil

	case WhoSelf:
		return !anonymous && requesterDN == targetDN, nil

	case WhoDN:
		re, err := dnPattern(who.Scope, who.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(requesterDN), nil

	case WhoDNAttr:
		values, ok := targetEntry.Get(who.Attribute)
		if !ok {
			return false, nil
		}
		for _, v := range values {
			if v == requesterDN {
				return true, nil
			}
		}
		return false, nil

	case WhoGroup:
		if lookupGroup == nil {
			return false, nil
		}
		attr := who.Attribute
		if attr == "" {
			attr = "member"
		}
		return lookupGroup(who.GroupDN, attr, requesterDN)

	default:
		return false, nil
	}
}
