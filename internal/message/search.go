package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/filter"
	"github.com/obadir/obad/internal/ldaperr"
)

// Scope is the search scope, per RFC 4511.
type Scope int

const (
	ScopeBase Scope = 0
	ScopeOne  Scope = 1
	ScopeSub  Scope = 2
)

// DerefAliases is the alias-dereferencing policy. The server has no alias
// objects, so this is parsed and otherwise ignored.
type DerefAliases int

const (
	DerefNever     DerefAliases = 0
	DerefSearching DerefAliases = 1
	DerefFinding   DerefAliases = 2
	DerefAlways    DerefAliases = 3
)

// SearchRequest is the parsed body of a SearchRequest PDU.
type SearchRequest struct {
	Base         string
	Scope        Scope
	DerefAliases DerefAliases
	SizeLimit    int64
	TimeLimit    int64
	TypesOnly    bool
	Filter       *filter.Filter
	Attributes   []string
}

// ParseSearchRequest walks the fixed 8-child SearchRequest shape.
func ParseSearchRequest(body ber.Packet) (SearchRequest, error) {
	if body.Tag != int(TagSearchRequest) || len(body.Children) != 8 {
		return SearchRequest{}, ldaperr.New(ldaperr.ProtocolError, "SearchRequest must have exactly 8 fields")
	}

	c := body.Children
	req := SearchRequest{
		Base:         c[0].String(),
		Scope:        Scope(c[1].Int64()),
		DerefAliases: DerefAliases(c[2].Int64()),
		SizeLimit:    c[3].Int64(),
		TimeLimit:    c[4].Int64(),
		TypesOnly:    c[5].Bool(),
	}

	if req.Scope < ScopeBase || req.Scope > ScopeSub {
		return SearchRequest{}, ldaperr.New(ldaperr.ProtocolError, "SearchRequest scope out of range")
	}
	if req.DerefAliases < DerefNever || req.DerefAliases > DerefAlways {
		return SearchRequest{}, ldaperr.New(ldaperr.ProtocolError, "SearchRequest derefAliases out of range")
	}

	f, err := filter.ParseWire(c[6])
	if err != nil {
		return SearchRequest{}, err
	}
	req.Filter = f

	attrsPkt := c[7]
	if attrsPkt.Class != ber.ClassUniversal || attrsPkt.Form != ber.Constructed {
		return SearchRequest{}, ldaperr.New(ldaperr.ProtocolError, "SearchRequest attributes is not a sequence")
	}
	for _, a := range attrsPkt.Children {
		req.Attributes = append(req.Attributes, a.String())
	}

	return req, nil
}

// BuildSearchResEntry builds one SearchResEntry body: {objectName,
// attributes:[(type, Set-of value)]}.
func BuildSearchResEntry(e *Entry) ber.Packet {
	attrSeq := ber.NewSequence()
	for name, values := range e.Attributes {
		valuePackets := make([]ber.Packet, len(values))
		for i, v := range values {
			valuePackets[i] = ber.NewOctetString(v)
		}
		attrSeq.Children = append(attrSeq.Children,
			ber.NewSequence(ber.NewOctetString(name), ber.NewSet(valuePackets...)))
	}
	return ber.NewApp(int(TagSearchResEntry), ber.NewOctetString(e.DN), attrSeq)
}

// BuildSearchResDone builds the terminating SearchResDone body.
func BuildSearchResDone(code ldaperr.Code, matchedDN, diagnosticMessage string) ber.Packet {
	return BuildLdapResult(code, matchedDN, diagnosticMessage, TagSearchResDone)
}
