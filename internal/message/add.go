package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// ParseAddRequest walks {dn, attributes:[(name,[value])]}.
func ParseAddRequest(body ber.Packet) (*Entry, error) {
	if body.Tag != int(TagAddRequest) || len(body.Children) != 2 {
		return nil, ldaperr.New(ldaperr.ProtocolError, "malformed AddRequest")
	}

	dn, attrs := body.Children[0], body.Children[1]
	if dn.Class != ber.ClassUniversal || dn.Tag != ber.TagOctetString {
		return nil, ldaperr.New(ldaperr.ProtocolError, "AddRequest dn is not an octet string")
	}
	if attrs.Class != ber.ClassUniversal || attrs.Form != ber.Constructed {
		return nil, ldaperr.New(ldaperr.ProtocolError, "AddRequest attributes is not a sequence")
	}

	entry := NewEntry(dn.String())
	for _, av := range attrs.Children {
		if len(av.Children) != 2 {
			return nil, ldaperr.New(ldaperr.ProtocolError, "AddRequest attribute must be (name, values)")
		}
		name := av.Children[0].String()
		values := av.Children[1]
		if values.Class != ber.ClassUniversal || values.Tag != ber.TagSet {
			return nil, ldaperr.New(ldaperr.ProtocolError, "AddRequest attribute values is not a set")
		}
		for _, v := range values.Children {
			entry.AppendValue(name, v.String())
		}
	}

	return entry, nil
}

func BuildAddResponse(code ldaperr.Code, matchedDN, diagnosticMessage string) ber.Packet {
	return BuildLdapResult(code, matchedDN, diagnosticMessage, TagAddResponse)
}
