// Package filter implements the LDAP search-filter grammar: parsing from
// the BER wire form and from RFC-4515-style text, structural evaluation
// against a directory entry, and a total order used to sort combiner
// children so equivalent filters compare structurally equal.
package filter

// Type is the kind of node in a filter tree.
type Type int

const (
	And        Type = 0
	Or         Type = 1
	Not        Type = 2
	Equal      Type = 3
	Substring  Type = 4
	Gte        Type = 5
	Lte        Type = 6
	Present    Type = 7
	Approx     Type = 8
	Extensible Type = 9
)

// SubPartKind is the position of a substring filter's literal.
type SubPartKind int

const (
	Initial SubPartKind = iota
	Any
	Final
)

// SubPart is one literal of a Substring filter.
type SubPart struct {
	Kind    SubPartKind
	Literal string
}

// Filter is a node of the filter tree described by spec.md §3: And/Or hold
// Children, Not holds exactly one Child, Equal/Gte/Lte/Approx hold
// Attribute+Value, Substring holds Attribute+Parts, Present holds just
// Attribute.
type Filter struct {
	Type      Type
	Attribute string
	Value     string
	Children  []*Filter
	Child     *Filter
	Parts     []SubPart
}

// Entry is the minimal view of a directory entry the filter engine needs
// to evaluate against. It is a distinct type from message.Entry (which
// would import this package for Filter) to avoid a circular dependency,
// grounded on the same split in the teacher's internal/filter/types.go.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

func (e Entry) Get(name string) ([]string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}
