package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/obadir/obad/internal/filter"
	"github.com/obadir/obad/internal/ldaperr"
	"github.com/obadir/obad/internal/message"
)

// Memory is a minimal in-memory StorageBackend, useful for tests and for
// running the server without an external database wired up. It is not a
// production engine: no durability, no indexing beyond a DN map, linear
// scan for searches.
type Memory struct {
	mu    sync.RWMutex
	byDN  map[string]*message.Entry
	rules []string
}

// NewMemory constructs an empty backend seeded with the given access
// directives.
func NewMemory(rules []string) *Memory {
	return &Memory{byDN: make(map[string]*message.Entry), rules: rules}
}

func normalizeDN(dn string) string {
	return strings.ToLower(strings.TrimSpace(dn))
}

func (m *Memory) FindEntry(dn string) (*message.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.byDN[normalizeDN(dn)]
	if !ok {
		return nil, ldaperr.New(ldaperr.NoSuchObject, "no such entry: "+dn)
	}
	return e.Clone(), nil
}

func (m *Memory) SaveEntry(e *message.Entry, insert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeDN(e.DN)
	_, exists := m.byDN[key]
	if insert && exists {
		return ldaperr.New(ldaperr.Other, "entry already exists: "+e.DN)
	}
	if !insert && !exists {
		return ldaperr.New(ldaperr.NoSuchObject, "no such entry: "+e.DN)
	}
	m.byDN[key] = e.Clone()
	return nil
}

// DeleteEntry removes dn and every entry whose DN is a descendant of it,
// per spec.md's subtree-delete resolution of the original's ambiguous
// single-entry delete.
func (m *Memory) DeleteEntry(dn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeDN(dn)
	if _, ok := m.byDN[key]; !ok {
		return ldaperr.New(ldaperr.NoSuchObject, "no such entry: "+dn)
	}

	suffix := "," + key
	for candidate := range m.byDN {
		if candidate == key || strings.HasSuffix(candidate, suffix) {
			delete(m.byDN, candidate)
		}
	}
	return nil
}

func (m *Memory) AccessRules() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

// SetAccessRules replaces the directive set the ACL manager refreshes
// from, for tests exercising hot reload.
func (m *Memory) SetAccessRules(rules []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
}

// LookupGroup implements acl.GroupLookup against this backend's entries.
func (m *Memory) LookupGroup(groupDN, memberAttr, memberDN string) (bool, error) {
	e, err := m.FindEntry(groupDN)
	if err != nil {
		return false, nil
	}
	for _, v := range e.Attributes[memberAttr] {
		if normalizeDN(v) == normalizeDN(memberDN) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) FindEntries(req message.SearchRequest) (Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*message.Entry
	base := normalizeDN(req.Base)

	for key, e := range m.byDN {
		if !inScope(key, base, req.Scope) {
			continue
		}

		if req.Filter != nil {
			fe := filter.Entry{DN: e.DN, Attributes: e.Attributes}
			ok, err := filter.Match(req.Filter, fe)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		matches = append(matches, e.Clone())
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].DN < matches[j].DN })
	return &sliceCursor{entries: matches}, nil
}

func inScope(candidateDN, base string, scope message.Scope) bool {
	switch scope {
	case message.ScopeBase:
		return candidateDN == base
	case message.ScopeOne:
		if candidateDN == base {
			return false
		}
		return strings.HasSuffix(candidateDN, ","+base) &&
			!strings.Contains(strings.TrimSuffix(candidateDN, ","+base), ",")
	case message.ScopeSub:
		return candidateDN == base || strings.HasSuffix(candidateDN, ","+base)
	default:
		return false
	}
}

type sliceCursor struct {
	entries []*message.Entry
	pos     int
}

func (c *sliceCursor) Next() (*message.Entry, error) {
	if c.pos >= len(c.entries) {
		return nil, nil
	}
	e := c.entries[c.pos]
	c.pos++
	return e, nil
}

func (c *sliceCursor) Close() error { return nil }
