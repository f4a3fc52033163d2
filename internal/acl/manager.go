package acl

import (
	"sync/atomic"
	"time"
)

// Logger is the minimal logging surface the manager needs. Satisfied by
// internal/logging.Logger.
type Logger interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// RuleSource fetches the current set of raw directive strings, typically
// backed by the storage backend's AccessRules method.
type RuleSource func() ([]string, error)

// Manager holds a hot-reloadable, atomically-swapped snapshot of parsed
// rules, per spec.md §5's "readers take a cheap cloned reference; the
// refresher builds a new snapshot off to the side and atomically
// publishes it" model. Grounded on the teacher's atomic-swap manager
// pattern, generalized from its RWMutex-guarded copy to a lock-free
// atomic.Value since readers here never mutate the snapshot they see.
type Manager struct {
	snapshot atomic.Value // holds []*Rule
	source   RuleSource
	log      Logger
	lookup   GroupLookup

	stop chan struct{}
}

// NewManager constructs a Manager with an empty snapshot; call Refresh or
// Start to populate it.
func NewManager(source RuleSource, log Logger, lookup GroupLookup) *Manager {
	m := &Manager{source: source, log: log, lookup: lookup, stop: make(chan struct{})}
	m.snapshot.Store([]*Rule{})
	return m
}

// Rules returns the currently published snapshot. Safe for concurrent use.
func (m *Manager) Rules() []*Rule {
	return m.snapshot.Load().([]*Rule)
}

// Decide evaluates req against the current snapshot.
func (m *Manager) Decide(req Request) (bool, error) {
	return Decide(m.Rules(), req, m.lookup)
}

// Refresh fetches rule text from the source, parses each directive, logs
// and skips any that fail to parse, and atomically publishes the result.
// A single malformed rule never fails the whole refresh.
func (m *Manager) Refresh() error {
	raw, err := m.source()
	if err != nil {
		return err
	}

	rules := make([]*Rule, 0, len(raw))
	for _, directive := range raw {
		rule, err := Parse(directive)
		if err != nil {
			if m.log != nil {
				m.log.Warnf("acl: skipping malformed rule %q: %v", directive, err)
			}
			continue
		}
		rules = append(rules, rule)
	}

	m.snapshot.Store(rules)
	return nil
}

// Start runs Refresh once immediately, then repeats every period until
// Stop is called. A non-positive period matches the original refresh
// thread's behavior of running exactly once and returning.
func (m *Manager) Start(period time.Duration) {
	if err := m.Refresh(); err != nil && m.log != nil {
		m.log.Errorf("acl: initial refresh failed: %v", err)
	}
	if period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Refresh(); err != nil && m.log != nil {
					m.log.Errorf("acl: refresh failed: %v", err)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the background refresh loop started by Start.
func (m *Manager) Stop() {
	close(m.stop)
}
