// Package message implements the LDAPv3 protocol data unit model: parsing
// operation request bodies out of a decoded BER tree and building the
// Application-tagged result envelopes the dispatcher sends back.
package message

// Tag is an LDAP application tag number, per RFC 4511 §4.2 and grounded on
// the MessageTag enum in the original ldap program's ldapproto.h.
type Tag int

const (
	TagBindRequest          Tag = 0
	TagBindResponse         Tag = 1
	TagUnbindRequest        Tag = 2
	TagSearchRequest        Tag = 3
	TagSearchResEntry       Tag = 4
	TagSearchResDone        Tag = 5
	TagModifyRequest        Tag = 6
	TagModifyResponse       Tag = 7
	TagAddRequest           Tag = 8
	TagAddResponse          Tag = 9
	TagDelRequest           Tag = 10
	TagDelResponse          Tag = 11
	TagModDNRequest         Tag = 12
	TagModDNResponse        Tag = 13
	TagCompareRequest       Tag = 14
	TagCompareResponse      Tag = 15
	TagAbandonRequest       Tag = 16
	TagExtendedRequest      Tag = 23
	TagExtendedResponse     Tag = 24
	TagIntermediateResponse Tag = 25
)

// ErrorResponseTag returns the application tag to use when the given
// request tag's operation fails: SearchRequest maps to SearchResDone (a
// search producing zero entries still ends in exactly one Done PDU); every
// other operation maps to the tag numerically one greater than the request,
// which is how the response/request pairs above are numbered.
func ErrorResponseTag(request Tag) Tag {
	if request == TagSearchRequest {
		return TagSearchResDone
	}
	return request + 1
}

// Entry is a directory entry: a DN plus an attribute map of ordered,
// duplicate-preserving string values. Attribute names are kept exactly as
// given and looked up exactly; names differing only in case are distinct
// keys. Grounded on Ldap::Entry in the original program's ldapproto.h.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

func NewEntry(dn string) *Entry {
	return &Entry{DN: dn, Attributes: make(map[string][]string)}
}

// AppendValue adds one value to a (possibly new) attribute, preserving
// insertion order and duplicates.
func (e *Entry) AppendValue(name, value string) {
	e.Attributes[name] = append(e.Attributes[name], value)
}

// Clone returns a deep copy so callers can mutate a working copy before
// persisting it as a replace.
func (e *Entry) Clone() *Entry {
	c := NewEntry(e.DN)
	for k, v := range e.Attributes {
		values := make([]string, len(v))
		copy(values, v)
		c.Attributes[k] = values
	}
	return c
}
