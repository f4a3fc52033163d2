package message

import (
	"github.com/obadir/obad/internal/ber"
	"github.com/obadir/obad/internal/ldaperr"
)

// CompareRequest is the parsed body of a CompareRequest PDU: {dn,
// ava:(attr, value)}. Not named in spec.md's core operations, but
// implemented alongside Unbind as supplemental coverage grounded on the
// teacher (oba) and jldap, which both implement Compare — see
// SPEC_FULL.md.
type CompareRequest struct {
	DN        string
	Attribute string
	Value     string
}

func ParseCompareRequest(body ber.Packet) (CompareRequest, error) {
	if body.Tag != int(TagCompareRequest) || len(body.Children) != 2 {
		return CompareRequest{}, ldaperr.New(ldaperr.ProtocolError, "malformed CompareRequest")
	}

	dn, ava := body.Children[0], body.Children[1]
	if dn.Class != ber.ClassUniversal || dn.Tag != ber.TagOctetString {
		return CompareRequest{}, ldaperr.New(ldaperr.ProtocolError, "CompareRequest dn is not an octet string")
	}
	if len(ava.Children) != 2 {
		return CompareRequest{}, ldaperr.New(ldaperr.ProtocolError, "CompareRequest ava malformed")
	}

	return CompareRequest{
		DN:        dn.String(),
		Attribute: ava.Children[0].String(),
		Value:     ava.Children[1].String(),
	}, nil
}

// BuildCompareResponse builds a CompareResponse carrying CompareTrue or
// CompareFalse (or an error code on failure).
func BuildCompareResponse(code ldaperr.Code) ber.Packet {
	return BuildLdapResult(code, "", "", TagCompareResponse)
}
