// Package storage defines the persistence boundary the session dispatcher
// and ACL manager read and write through. The directory server itself
// carries no database driver: callers supply a StorageBackend backed by
// whatever store fits their deployment. This mirrors the split the
// original program drew between its protocol/access layers and a
// MongoDB-specific backend — the wire and policy logic here never
// reference a specific store, only this interface.
package storage

import "github.com/obadir/obad/internal/message"

// Cursor iterates search results one entry at a time. Implementations
// may stream from a database cursor or return a pre-fetched slice.
type Cursor interface {
	Next() (*message.Entry, error) // returns nil, nil at end of results
	Close() error
}

// StorageBackend is the persistence contract the session dispatcher and
// ACL manager depend on.
type StorageBackend interface {
	// FindEntry fetches a single entry by its exact DN. Returns
	// ldaperr with code NoSuchObject when absent.
	FindEntry(dn string) (*message.Entry, error)

	// FindEntries runs a search rooted at base, honoring scope and
	// filter, returning a Cursor over matching entries.
	FindEntries(req message.SearchRequest) (Cursor, error)

	// SaveEntry persists e. If insert is true the entry must not
	// already exist (Add semantics); otherwise it replaces an
	// existing entry in place (Modify semantics).
	SaveEntry(e *message.Entry, insert bool) error

	// DeleteEntry removes the entry at dn and, per spec, its entire
	// subtree.
	DeleteEntry(dn string) error

	// AccessRules returns the current set of raw "to ... by ..."
	// access directives, used by the ACL manager's refresh cycle.
	AccessRules() ([]string, error)
}
